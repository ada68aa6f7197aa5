// Package handler exposes checkout over HTTP.
package handler

import (
	"net/http"

	"github.com/go-faster/jx"
	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"

	"github.com/xenking/kart-checkout/internal/domain/checkout"
	"github.com/xenking/kart-checkout/internal/domain/order"
)

// maxBodyBytes bounds request bodies.
const maxBodyBytes = 1 << 20

// Handler serves the checkout API.
type Handler struct {
	checkout *checkout.Service
	orders   order.Reader
}

// NewHandler constructs a Handler with the required domain dependencies.
func NewHandler(checkoutService *checkout.Service, orders order.Reader) *Handler {
	return &Handler{
		checkout: checkoutService,
		orders:   orders,
	}
}

// Routes returns the API mux:
//
//	POST /api/checkout
//	GET  /api/orders/{id}
func (h *Handler) Routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/checkout", h.Checkout)
	mux.HandleFunc("GET /api/orders/{id}", h.GetOrder)
	return mux
}

func writeJSON(w http.ResponseWriter, status int, body []byte) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(body)
}

// writeError writes {"code":status,"message":msg}.
func writeError(w http.ResponseWriter, status int, msg string) {
	var e jx.Encoder
	e.Obj(func(e *jx.Encoder) {
		e.Field("code", func(e *jx.Encoder) { e.Int(status) })
		e.Field("message", func(e *jx.Encoder) { e.Str(msg) })
	})
	writeJSON(w, status, e.Bytes())
}

func writeInternalError(w http.ResponseWriter, r *http.Request, err error) {
	zctx.From(r.Context()).Error("Request failed", zap.Error(err))
	writeError(w, http.StatusInternalServerError, "internal error")
}
