package http

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/Emirlan007/Cassini-shop-sub000/internal/service"
	apperrors "github.com/Emirlan007/Cassini-shop-sub000/pkg/errors"
	"github.com/Emirlan007/Cassini-shop-sub000/pkg/httputil"
)

type AnalyticsHandler struct {
	service *service.AnalyticsService
	logger  *slog.Logger
}

func NewAnalyticsHandler(svc *service.AnalyticsService, logger *slog.Logger) *AnalyticsHandler {
	return &AnalyticsHandler{service: svc, logger: logger}
}

// Track handles POST /api/v1/analytics/event. A valid event is always
// accepted, whether or not it can be delivered.
func (h *AnalyticsHandler) Track(w http.ResponseWriter, r *http.Request) {
	var req service.TrackInput
	if !httputil.Decode(w, r, &req) {
		return
	}

	if err := h.service.Track(r.Context(), req); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteData(w, http.StatusAccepted, map[string]string{"status": "accepted"})
}

// TopProducts handles GET /api/v1/analytics/top-products (admin)
func (h *AnalyticsHandler) TopProducts(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	in := service.TopProductsInput{Type: q.Get("type")}

	if raw := q.Get("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil {
			httputil.WriteError(w, r, apperrors.InvalidInput("limit must be an integer"), h.logger)
			return
		}
		in.Limit = limit
	}
	if raw := q.Get("since"); raw != "" {
		since, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			httputil.WriteError(w, r, apperrors.InvalidInput("since must be an RFC 3339 timestamp"), h.logger)
			return
		}
		in.Since = since
	}

	stats, err := h.service.TopProducts(r.Context(), in)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteData(w, http.StatusOK, stats)
}
