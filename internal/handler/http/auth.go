package http

import (
	"log/slog"
	"net/http"

	"github.com/Emirlan007/Cassini-shop-sub000/internal/service"
	"github.com/Emirlan007/Cassini-shop-sub000/pkg/httputil"
	"github.com/Emirlan007/Cassini-shop-sub000/pkg/middleware"
)

// AuthHandler serves registration, login and the caller's profile.
type AuthHandler struct {
	users  *service.UserService
	carts  *service.CartService
	logger *slog.Logger
}

func NewAuthHandler(users *service.UserService, carts *service.CartService, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{users: users, carts: carts, logger: logger}
}

// Register handles POST /api/v1/auth/register
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req service.RegisterInput
	if !httputil.Decode(w, r, &req) {
		return
	}

	res, err := h.users.Register(r.Context(), req)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteData(w, http.StatusCreated, res)
}

// Login handles POST /api/v1/auth/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req service.LoginInput
	if !httputil.Decode(w, r, &req) {
		return
	}

	res, err := h.users.Login(r.Context(), req)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteData(w, http.StatusOK, res)
}

// Refresh handles POST /api/v1/auth/refresh
func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	var req service.RefreshInput
	if !httputil.Decode(w, r, &req) {
		return
	}

	res, err := h.users.Refresh(r.Context(), req)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteData(w, http.StatusOK, res)
}

// Logout handles POST /api/v1/auth/logout. Tokens are stateless, so logging
// out only empties the caller's cart.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if err := h.carts.ClearCart(r.Context(), middleware.UserIDFromContext(r.Context())); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Me handles GET /api/v1/users/me
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	u, err := h.users.Me(r.Context(), middleware.UserIDFromContext(r.Context()))
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteData(w, http.StatusOK, u)
}
