package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/Emirlan007/Cassini-shop-sub000/internal/domain"
	"github.com/Emirlan007/Cassini-shop-sub000/internal/repository"
	"github.com/Emirlan007/Cassini-shop-sub000/internal/service"
	"github.com/Emirlan007/Cassini-shop-sub000/pkg/httputil"
	"github.com/Emirlan007/Cassini-shop-sub000/pkg/middleware"
	"github.com/Emirlan007/Cassini-shop-sub000/pkg/pagination"
)

// OrderHandler serves checkout, order status and order history.
type OrderHandler struct {
	service *service.OrderService
	logger  *slog.Logger
}

func NewOrderHandler(svc *service.OrderService, logger *slog.Logger) *OrderHandler {
	return &OrderHandler{service: svc, logger: logger}
}

// PlaceOrder handles POST /api/v1/orders
func (h *OrderHandler) PlaceOrder(w http.ResponseWriter, r *http.Request) {
	var req service.PlaceOrderInput
	if !httputil.Decode(w, r, &req) {
		return
	}

	order, err := h.service.PlaceOrder(r.Context(), middleware.UserIDFromContext(r.Context()), req)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteData(w, http.StatusCreated, order)
}

// ListMyOrders handles GET /api/v1/orders/my
func (h *OrderHandler) ListMyOrders(w http.ResponseWriter, r *http.Request) {
	page := pagination.FromRequest(r)

	orders, total, err := h.service.ListMyOrders(r.Context(), middleware.UserIDFromContext(r.Context()), page.Page, page.PerPage)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteData(w, http.StatusOK, httputil.NewPage(orders, total, page.Page, page.PerPage))
}

// ListOrders handles GET /api/v1/orders (admin)
func (h *OrderHandler) ListOrders(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	page := pagination.FromRequest(r)
	filter := repository.OrderFilter{Page: page.Page, PerPage: page.PerPage}

	if raw := q.Get("deliveryStatus"); raw != "" {
		st, err := domain.ParseDeliveryStatus(raw)
		if err != nil {
			httputil.WriteError(w, r, err, h.logger)
			return
		}
		filter.DeliveryStatus = &st
	}
	if raw := q.Get("paymentStatus"); raw != "" {
		st, err := domain.ParsePaymentStatus(raw)
		if err != nil {
			httputil.WriteError(w, r, err, h.logger)
			return
		}
		filter.PaymentStatus = &st
	}
	if raw := q.Get("userId"); raw != "" {
		id, ok := httputil.ParseUUID(w, raw)
		if !ok {
			return
		}
		userID := id.String()
		filter.UserID = &userID
	}

	orders, total, err := h.service.ListOrders(r.Context(), filter)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteData(w, http.StatusOK, httputil.NewPage(orders, total, page.Page, page.PerPage))
}

// GetOrder handles GET /api/v1/orders/{id}
func (h *OrderHandler) GetOrder(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParseUUID(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}

	ctx := r.Context()
	order, err := h.service.GetOrder(ctx, id.String(), middleware.UserIDFromContext(ctx), middleware.IsAdmin(ctx))
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteData(w, http.StatusOK, order)
}

// SetStatus handles PATCH /api/v1/orders/{id}/status (admin)
func (h *OrderHandler) SetStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParseUUID(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}
	var req service.StatusInput
	if !httputil.Decode(w, r, &req) {
		return
	}

	res, err := h.service.SetStatus(r.Context(), id.String(), req)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteData(w, http.StatusOK, res)
}

// AddAdminComment handles POST /api/v1/orders/{id}/admin-comment (admin)
func (h *OrderHandler) AddAdminComment(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParseUUID(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}
	var req service.CommentInput
	if !httputil.Decode(w, r, &req) {
		return
	}

	order, err := h.service.AddAdminComment(r.Context(), id.String(), req)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteData(w, http.StatusOK, order)
}

// SetUserComment handles PUT /api/v1/orders/{id}/user-comment
func (h *OrderHandler) SetUserComment(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParseUUID(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}
	var req service.CommentInput
	if !httputil.Decode(w, r, &req) {
		return
	}

	order, err := h.service.SetUserComment(r.Context(), id.String(), middleware.UserIDFromContext(r.Context()), req)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteData(w, http.StatusOK, order)
}

// Archive handles POST /api/v1/orders/{id}/archive (admin). A first archive
// answers 201, a repeated one 200 with the stored entry.
func (h *OrderHandler) Archive(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParseUUID(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}

	res, err := h.service.ArchiveToHistory(r.Context(), id.String())
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	status := http.StatusOK
	if res.Created {
		status = http.StatusCreated
	}
	httputil.WriteData(w, status, res)
}

// ListMyHistory handles GET /api/v1/order-history/my
func (h *OrderHandler) ListMyHistory(w http.ResponseWriter, r *http.Request) {
	page := pagination.FromRequest(r)

	entries, total, err := h.service.ListHistory(r.Context(), middleware.UserIDFromContext(r.Context()), page.Page, page.PerPage)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteData(w, http.StatusOK, httputil.NewPage(entries, total, page.Page, page.PerPage))
}
