package http

import (
	"log/slog"
	"net/http"

	"github.com/Emirlan007/Cassini-shop-sub000/internal/service"
	"github.com/Emirlan007/Cassini-shop-sub000/pkg/httputil"
	"github.com/Emirlan007/Cassini-shop-sub000/pkg/middleware"
)

// CartHandler serves the cart of the signed-in user or the guest session.
type CartHandler struct {
	service *service.CartService
	logger  *slog.Logger
}

func NewCartHandler(svc *service.CartService, logger *slog.Logger) *CartHandler {
	return &CartHandler{service: svc, logger: logger}
}

// GetCart handles GET /api/v1/cart
func (h *CartHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	cart, err := h.service.GetCart(r.Context(), cartOwner(r))
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteData(w, http.StatusOK, cart)
}

// AddItem handles POST /api/v1/cart/items
func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	var req service.AddItemInput
	if !httputil.Decode(w, r, &req) {
		return
	}
	req.Lang = requestLang(r)

	cart, err := h.service.AddItem(r.Context(), cartOwner(r), req)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteData(w, http.StatusOK, cart)
}

// UpdateItem handles PUT /api/v1/cart/items
func (h *CartHandler) UpdateItem(w http.ResponseWriter, r *http.Request) {
	var req service.LineInput
	if !httputil.Decode(w, r, &req) {
		return
	}

	cart, err := h.service.UpdateQuantity(r.Context(), cartOwner(r), req)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteData(w, http.StatusOK, cart)
}

// RemoveItem handles DELETE /api/v1/cart/items
func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	var req service.LineInput
	if !httputil.Decode(w, r, &req) {
		return
	}

	cart, err := h.service.RemoveItem(r.Context(), cartOwner(r), req)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteData(w, http.StatusOK, cart)
}

// ClearCart handles DELETE /api/v1/cart
func (h *CartHandler) ClearCart(w http.ResponseWriter, r *http.Request) {
	if err := h.service.ClearCart(r.Context(), cartOwner(r)); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// MergeCart handles POST /api/v1/cart/merge
func (h *CartHandler) MergeCart(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	cart, err := h.service.MergeGuestCart(ctx, middleware.SessionIDFromContext(ctx), middleware.UserIDFromContext(ctx))
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteData(w, http.StatusOK, cart)
}
