package payment

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"storefront-be/internal/logger"

	"go.uber.org/zap"
)

const (
	sandboxBaseURL = "https://api-m.sandbox.paypal.com"
	liveBaseURL    = "https://api-m.paypal.com"

	// Provider error issue for the race where two capture attempts for the
	// same remote order both get past the status check.
	issueAlreadyCaptured = "ORDER_ALREADY_CAPTURED"
)

type paypalGateway struct {
	clientID     string
	clientSecret string
	baseURL      string
	httpClient   *http.Client

	mu          sync.Mutex
	accessToken string
	tokenExpiry time.Time
}

// NewPayPalGateway builds the gateway client. mode is "sandbox" or "live".
func NewPayPalGateway(clientID, clientSecret, mode string) Gateway {
	if clientID == "" || clientSecret == "" {
		logger.L().Warn("PayPal credentials are empty")
	}

	baseURL := sandboxBaseURL
	if strings.EqualFold(mode, "live") {
		baseURL = liveBaseURL
	}

	return &paypalGateway{
		clientID:     clientID,
		clientSecret: clientSecret,
		baseURL:      baseURL,
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
}

// ----------------- GetOrder -----------------

func (g *paypalGateway) GetOrder(ctx context.Context, externalID string) (*GatewayOrder, error) {
	log := logger.FromCtx(ctx).With(zap.String("external_order_id", externalID))

	body, status, err := g.do(ctx, http.MethodGet, "/v2/checkout/orders/"+externalID, nil)
	if err != nil {
		log.Error("failed to fetch remote order", zap.Error(err))
		return nil, err
	}
	if status == http.StatusNotFound {
		log.Warn("provider has no order under this id")
		return nil, fmt.Errorf("%w: %s", ErrRemoteOrderNotFound, externalID)
	}
	if status != http.StatusOK {
		log.Error("provider returned non-success status for get order",
			zap.Int("status", status),
			zap.ByteString("response", body),
		)
		return nil, fmt.Errorf("%w: get order returned %d", ErrGatewayUnavailable, status)
	}

	var o GatewayOrder
	if err := json.Unmarshal(body, &remoteOrder{&o}); err != nil {
		log.Error("failed decoding remote order", zap.Error(err))
		return nil, err
	}
	return &o, nil
}

// ----------------- CaptureOrder -----------------

// CaptureOrder finalizes a previously-authorized payment. The sequence is
// read-before-act so duplicate capture attempts converge on the same result:
//  1. already COMPLETED remotely -> return as-is
//  2. not APPROVED -> ErrNotCapturable
//  3. capture; the provider reporting ORDER_ALREADY_CAPTURED means a
//     concurrent attempt won the race, so re-fetch and return the completed
//     state instead of an error.
func (g *paypalGateway) CaptureOrder(ctx context.Context, externalID string) (*GatewayOrder, error) {
	log := logger.FromCtx(ctx).With(zap.String("external_order_id", externalID))

	current, err := g.GetOrder(ctx, externalID)
	if err != nil {
		return nil, err
	}

	if current.Status == GatewayStatusCompleted {
		log.Info("remote order already captured, returning as-is")
		return current, nil
	}

	if current.Status != GatewayStatusApproved {
		log.Warn("capture requested before buyer approval",
			zap.String("remote_status", current.Status),
		)
		return nil, fmt.Errorf("%w: remote status %s", ErrNotCapturable, current.Status)
	}

	body, status, err := g.do(ctx, http.MethodPost, "/v2/checkout/orders/"+externalID+"/capture", []byte(`{}`))
	if err != nil {
		log.Error("capture request failed", zap.Error(err))
		return nil, err
	}

	if status != http.StatusCreated && status != http.StatusOK {
		if hasIssue(body, issueAlreadyCaptured) {
			// A concurrent capture won; converge on its result.
			log.Info("order captured by concurrent attempt, re-fetching")
			return g.GetOrder(ctx, externalID)
		}

		log.Error("provider rejected capture",
			zap.Int("status", status),
			zap.ByteString("response", body),
		)
		return nil, fmt.Errorf("%w: status %d", ErrCaptureFailed, status)
	}

	var o GatewayOrder
	if err := json.Unmarshal(body, &remoteOrder{&o}); err != nil {
		log.Error("failed decoding capture response", zap.Error(err))
		return nil, err
	}

	log.Info("payment captured",
		zap.String("capture_id", o.ID),
		zap.String("remote_status", o.Status),
	)
	return &o, nil
}

// ----------------- HTTP plumbing -----------------

func (g *paypalGateway) do(ctx context.Context, method, path string, reqBody []byte) ([]byte, int, error) {
	token, err := g.token(ctx)
	if err != nil {
		return nil, 0, err
	}

	var bodyReader io.Reader
	if reqBody != nil {
		bodyReader = bytes.NewReader(reqBody)
	}

	req, err := http.NewRequestWithContext(ctx, method, g.baseURL+path, bodyReader)
	if err != nil {
		return nil, 0, err
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return nil, 0, classifyTransportErr(err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to read provider response: %w", err)
	}

	return body, resp.StatusCode, nil
}

// token returns a cached OAuth2 access token, refreshing when expired.
func (g *paypalGateway) token(ctx context.Context) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.accessToken != "" && time.Now().Before(g.tokenExpiry) {
		return g.accessToken, nil
	}

	form := url.Values{"grant_type": {"client_credentials"}}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		g.baseURL+"/v1/oauth2/token", strings.NewReader(form.Encode()))
	if err != nil {
		return "", err
	}
	req.SetBasicAuth(g.clientID, g.clientSecret)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return "", classifyTransportErr(err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read token response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%w: token request returned %d", ErrGatewayUnavailable, resp.StatusCode)
	}

	var tok struct {
		AccessToken string `json:"access_token"`
		ExpiresIn   int    `json:"expires_in"`
	}
	if err := json.Unmarshal(body, &tok); err != nil {
		return "", err
	}

	g.accessToken = tok.AccessToken
	// Refresh a minute early to avoid using a token at its expiry boundary.
	g.tokenExpiry = time.Now().Add(time.Duration(tok.ExpiresIn)*time.Second - time.Minute)

	return g.accessToken, nil
}

// classifyTransportErr maps network-level failures to ErrGatewayUnavailable
// so callers can retry with backoff instead of treating them as rejections.
func classifyTransportErr(err error) error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return fmt.Errorf("%w: %v", ErrGatewayUnavailable, err)
	}
	var uerr *url.Error
	if errors.As(err, &uerr) {
		return fmt.Errorf("%w: %v", ErrGatewayUnavailable, err)
	}
	return err
}

// remoteOrder adapts the provider's order payload to GatewayOrder.
type remoteOrder struct {
	order *GatewayOrder
}

func (r *remoteOrder) UnmarshalJSON(data []byte) error {
	var raw struct {
		ID     string `json:"id"`
		Status string `json:"status"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	r.order.ID = raw.ID
	r.order.Status = raw.Status
	return nil
}

// hasIssue reports whether the provider error body names the given issue.
func hasIssue(body []byte, issue string) bool {
	var raw struct {
		Name    string `json:"name"`
		Details []struct {
			Issue string `json:"issue"`
		} `json:"details"`
	}
	if err := json.Unmarshal(body, &raw); err != nil {
		// Fall back to a substring match on malformed error bodies.
		return bytes.Contains(body, []byte(issue))
	}
	for _, d := range raw.Details {
		if d.Issue == issue {
			return true
		}
	}
	return raw.Name == issue
}
