package handler

import (
	"io"
	"net/http"

	"github.com/go-faster/errors"

	"github.com/xenking/kart-checkout/internal/domain/order"
	"github.com/xenking/kart-checkout/internal/domain/user"
)

// Checkout decodes a checkout request, runs it through the checkout service
// and responds with the persisted order (201) or a decline (402).
func (h *Handler) Checkout(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		writeError(w, http.StatusBadRequest, "cannot read request body")
		return
	}

	req, err := decodeCheckout(body)
	if err != nil {
		mapCheckoutError(w, r, err)
		return
	}

	o, err := h.checkout.ProcessOrder(r.Context(), req.Cart, req.PaymentToken)
	if err != nil {
		writeInternalError(w, r, err)
		return
	}
	if o == nil {
		writeError(w, http.StatusPaymentRequired, "payment declined")
		return
	}

	w.Header().Set("Location", "/api/orders/"+o.ID)
	writeJSON(w, http.StatusCreated, encodeOrder(o))
}

// GetOrder responds with a stored order or 404.
func (h *Handler) GetOrder(w http.ResponseWriter, r *http.Request) {
	o, err := h.orders.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		if errors.Is(err, order.ErrNotFound) {
			writeError(w, http.StatusNotFound, "order not found")
			return
		}
		writeInternalError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, encodeOrder(o))
}

// mapCheckoutError converts request decoding errors to error responses.
func mapCheckoutError(w http.ResponseWriter, r *http.Request, err error) {
	var malformed *malformedError
	switch {
	case errors.As(err, &malformed):
		writeError(w, http.StatusBadRequest, malformed.Error())
	case errors.Is(err, user.ErrUnknownTier),
		errors.Is(err, errNegativePrice),
		errors.Is(err, errPriceOutOfRange):
		writeError(w, http.StatusUnprocessableEntity, err.Error())
	default:
		writeInternalError(w, r, err)
	}
}
