package payment

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// MockRoundTripper allows us to mock the HTTP response
type MockRoundTripper func(req *http.Request) *http.Response

func (f MockRoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	return f(req), nil
}

type MockRoundTripperWithError func(req *http.Request) (*http.Response, error)

func (f MockRoundTripperWithError) RoundTrip(req *http.Request) (*http.Response, error) {
	return f(req)
}

func jsonResponse(status int, body string) *http.Response {
	return &http.Response{
		StatusCode: status,
		Body:       io.NopCloser(bytes.NewBufferString(body)),
		Header:     make(http.Header),
	}
}

const tokenBody = `{"access_token":"test-token","expires_in":3600}`

// routeByPath dispatches the token endpoint plus per-path handlers, so a test
// only describes the provider calls it cares about.
func routeByPath(t *testing.T, handlers map[string]func(req *http.Request) *http.Response) MockRoundTripper {
	return func(req *http.Request) *http.Response {
		if strings.HasSuffix(req.URL.Path, "/v1/oauth2/token") {
			user, _, ok := req.BasicAuth()
			assert.True(t, ok)
			assert.Equal(t, "client-id", user)
			return jsonResponse(http.StatusOK, tokenBody)
		}
		h, ok := handlers[req.URL.Path]
		if !ok {
			t.Fatalf("unexpected request to %s", req.URL.Path)
			return nil
		}
		assert.Equal(t, "Bearer test-token", req.Header.Get("Authorization"))
		return h(req)
	}
}

func newTestGateway(rt http.RoundTripper) *paypalGateway {
	gw := NewPayPalGateway("client-id", "client-secret", "sandbox").(*paypalGateway)
	gw.httpClient.Transport = rt
	return gw
}

func TestPayPalGateway_GetOrder(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		gw := newTestGateway(routeByPath(t, map[string]func(req *http.Request) *http.Response{
			"/v2/checkout/orders/EXT-1": func(req *http.Request) *http.Response {
				assert.Equal(t, http.MethodGet, req.Method)
				return jsonResponse(http.StatusOK, `{"id":"EXT-1","status":"APPROVED"}`)
			},
		}))

		o, err := gw.GetOrder(context.Background(), "EXT-1")
		require.NoError(t, err)
		assert.Equal(t, "EXT-1", o.ID)
		assert.Equal(t, GatewayStatusApproved, o.Status)
	})

	t.Run("UnknownOrder", func(t *testing.T) {
		gw := newTestGateway(routeByPath(t, map[string]func(req *http.Request) *http.Response{
			"/v2/checkout/orders/EXT-1": func(req *http.Request) *http.Response {
				return jsonResponse(http.StatusNotFound, `{"name":"RESOURCE_NOT_FOUND"}`)
			},
		}))

		_, err := gw.GetOrder(context.Background(), "EXT-1")
		assert.ErrorIs(t, err, ErrRemoteOrderNotFound)
		assert.NotErrorIs(t, err, ErrCaptureFailed)
	})

	t.Run("ProviderError", func(t *testing.T) {
		gw := newTestGateway(routeByPath(t, map[string]func(req *http.Request) *http.Response{
			"/v2/checkout/orders/EXT-1": func(req *http.Request) *http.Response {
				return jsonResponse(http.StatusInternalServerError, `{"name":"INTERNAL_SERVICE_ERROR"}`)
			},
		}))

		_, err := gw.GetOrder(context.Background(), "EXT-1")
		assert.ErrorIs(t, err, ErrGatewayUnavailable)
	})
}

func TestPayPalGateway_CaptureOrder(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		captured := false
		gw := newTestGateway(routeByPath(t, map[string]func(req *http.Request) *http.Response{
			"/v2/checkout/orders/EXT-1": func(req *http.Request) *http.Response {
				return jsonResponse(http.StatusOK, `{"id":"EXT-1","status":"APPROVED"}`)
			},
			"/v2/checkout/orders/EXT-1/capture": func(req *http.Request) *http.Response {
				captured = true
				assert.Equal(t, http.MethodPost, req.Method)
				return jsonResponse(http.StatusCreated, `{"id":"CAP-1","status":"COMPLETED"}`)
			},
		}))

		o, err := gw.CaptureOrder(context.Background(), "EXT-1")
		require.NoError(t, err)
		assert.True(t, captured)
		assert.Equal(t, "CAP-1", o.ID)
		assert.Equal(t, GatewayStatusCompleted, o.Status)
	})

	t.Run("AlreadyCompleted_SkipsCapture", func(t *testing.T) {
		gw := newTestGateway(routeByPath(t, map[string]func(req *http.Request) *http.Response{
			"/v2/checkout/orders/EXT-1": func(req *http.Request) *http.Response {
				return jsonResponse(http.StatusOK, `{"id":"EXT-1","status":"COMPLETED"}`)
			},
		}))

		o, err := gw.CaptureOrder(context.Background(), "EXT-1")
		require.NoError(t, err)
		assert.Equal(t, GatewayStatusCompleted, o.Status)
	})

	t.Run("NotApproved", func(t *testing.T) {
		gw := newTestGateway(routeByPath(t, map[string]func(req *http.Request) *http.Response{
			"/v2/checkout/orders/EXT-1": func(req *http.Request) *http.Response {
				return jsonResponse(http.StatusOK, `{"id":"EXT-1","status":"CREATED"}`)
			},
		}))

		_, err := gw.CaptureOrder(context.Background(), "EXT-1")
		assert.ErrorIs(t, err, ErrNotCapturable)
	})

	t.Run("ConcurrentCapture_ConvergesOnWinner", func(t *testing.T) {
		// First GetOrder sees APPROVED, capture loses the race, the re-fetch
		// returns the winner's completed state.
		gets := 0
		gw := newTestGateway(routeByPath(t, map[string]func(req *http.Request) *http.Response{
			"/v2/checkout/orders/EXT-1": func(req *http.Request) *http.Response {
				gets++
				if gets == 1 {
					return jsonResponse(http.StatusOK, `{"id":"EXT-1","status":"APPROVED"}`)
				}
				return jsonResponse(http.StatusOK, `{"id":"EXT-1","status":"COMPLETED"}`)
			},
			"/v2/checkout/orders/EXT-1/capture": func(req *http.Request) *http.Response {
				return jsonResponse(http.StatusUnprocessableEntity,
					`{"name":"UNPROCESSABLE_ENTITY","details":[{"issue":"ORDER_ALREADY_CAPTURED"}]}`)
			},
		}))

		o, err := gw.CaptureOrder(context.Background(), "EXT-1")
		require.NoError(t, err)
		assert.Equal(t, GatewayStatusCompleted, o.Status)
		assert.Equal(t, 2, gets)
	})

	t.Run("CaptureRejected", func(t *testing.T) {
		gw := newTestGateway(routeByPath(t, map[string]func(req *http.Request) *http.Response{
			"/v2/checkout/orders/EXT-1": func(req *http.Request) *http.Response {
				return jsonResponse(http.StatusOK, `{"id":"EXT-1","status":"APPROVED"}`)
			},
			"/v2/checkout/orders/EXT-1/capture": func(req *http.Request) *http.Response {
				return jsonResponse(http.StatusUnprocessableEntity,
					`{"name":"UNPROCESSABLE_ENTITY","details":[{"issue":"INSTRUMENT_DECLINED"}]}`)
			},
		}))

		_, err := gw.CaptureOrder(context.Background(), "EXT-1")
		assert.ErrorIs(t, err, ErrCaptureFailed)
	})

	t.Run("Timeout_MapsToGatewayUnavailable", func(t *testing.T) {
		gw := newTestGateway(MockRoundTripperWithError(func(req *http.Request) (*http.Response, error) {
			return nil, &url.Error{Op: "Post", URL: req.URL.String(), Err: context.DeadlineExceeded}
		}))

		_, err := gw.CaptureOrder(context.Background(), "EXT-1")
		assert.ErrorIs(t, err, ErrGatewayUnavailable)
	})
}

func TestPayPalGateway_TokenCaching(t *testing.T) {
	tokenCalls := 0
	gw := newTestGateway(MockRoundTripper(func(req *http.Request) *http.Response {
		if strings.HasSuffix(req.URL.Path, "/v1/oauth2/token") {
			tokenCalls++
			return jsonResponse(http.StatusOK, tokenBody)
		}
		return jsonResponse(http.StatusOK, `{"id":"EXT-1","status":"APPROVED"}`)
	}))

	ctx := context.Background()
	_, err := gw.GetOrder(ctx, "EXT-1")
	require.NoError(t, err)
	_, err = gw.GetOrder(ctx, "EXT-1")
	require.NoError(t, err)

	assert.Equal(t, 1, tokenCalls, "token should be cached between calls")
	assert.True(t, gw.tokenExpiry.After(time.Now()))
}

func TestPayPalGateway_TokenFailure(t *testing.T) {
	gw := newTestGateway(MockRoundTripper(func(req *http.Request) *http.Response {
		return jsonResponse(http.StatusUnauthorized, `{"error":"invalid_client"}`)
	}))

	_, err := gw.GetOrder(context.Background(), "EXT-1")
	assert.ErrorIs(t, err, ErrGatewayUnavailable)
}

func TestHasIssue(t *testing.T) {
	t.Run("InDetails", func(t *testing.T) {
		body := []byte(`{"name":"UNPROCESSABLE_ENTITY","details":[{"issue":"ORDER_ALREADY_CAPTURED"}]}`)
		assert.True(t, hasIssue(body, "ORDER_ALREADY_CAPTURED"))
		assert.False(t, hasIssue(body, "INSTRUMENT_DECLINED"))
	})

	t.Run("MalformedBodyFallsBackToSubstring", func(t *testing.T) {
		body := []byte(`not-json ORDER_ALREADY_CAPTURED`)
		assert.True(t, hasIssue(body, "ORDER_ALREADY_CAPTURED"))
	})
}
