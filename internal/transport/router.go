package transport

import (
	"net/http"

	"storefront-be/internal/logger"
	"storefront-be/internal/metrics"
	"storefront-be/internal/middleware"
)

type Handlers struct {
	Auth    *AuthHandler
	Order   *OrderHandler
	Product *ProductHandler
}

// NewRouter builds the HTTP surface with the full middleware stack applied:
// request id, access log, identity resolution, then per-tier rate limiting.
func NewRouter(h Handlers) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /auth/register", h.Auth.Register)
	mux.HandleFunc("POST /auth/login", h.Auth.Login)

	mux.HandleFunc("GET /products", h.Product.List)
	mux.HandleFunc("GET /products/{id}", h.Product.Get)
	mux.Handle("POST /products", requireAuth(h.Product.Create))
	mux.Handle("PUT /products/{id}", requireAuth(h.Product.Update))
	mux.HandleFunc("GET /brands", h.Product.ListBrands)
	mux.HandleFunc("GET /brands/{id}", h.Product.GetBrand)

	mux.Handle("POST /order", requireAuth(h.Order.Create))
	mux.Handle("GET /order/{id}", requireAuth(h.Order.Get))
	mux.Handle("GET /orders", requireAuth(h.Order.List))
	mux.Handle("POST /order/{id}/cancel", requireAuth(h.Order.Cancel))
	mux.Handle("PATCH /order/{id}/status", requireAuth(h.Order.Transition))

	mux.Handle("POST /payment/confirm", requireAuth(h.Order.ConfirmPayment))

	mux.Handle("GET /metrics", metrics.Handler())

	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	var handler http.Handler = mux
	handler = middleware.RateLimitMiddleware(handler)
	handler = middleware.AuthMiddleware(handler)
	handler = logger.LoggingMiddleware(handler)
	handler = logger.RequestIDMiddleware(handler)

	return handler
}

func requireAuth(h http.HandlerFunc) http.Handler {
	return middleware.RequireAuth(h)
}
