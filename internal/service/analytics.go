package service

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/Emirlan007/Cassini-shop-sub000/internal/analytics"
	"github.com/Emirlan007/Cassini-shop-sub000/internal/domain"
	"github.com/Emirlan007/Cassini-shop-sub000/internal/repository"
	apperrors "github.com/Emirlan007/Cassini-shop-sub000/pkg/errors"
)

const (
	defaultTopLimit  = 10
	maxTopLimit      = 100
	defaultTopWindow = 7 * 24 * time.Hour
)

// TrackInput is an event reported by the storefront client.
type TrackInput struct {
	Type      string `json:"type" validate:"required,analytics_type"`
	SessionID string `json:"sessionId" validate:"max=128"`
	ProductID string `json:"productId" validate:"required,max=64"`
	Qty       int    `json:"qty" validate:"gte=0,lte=10000"`
}

// TopProductsInput selects a ranking window.
type TopProductsInput struct {
	Type  string
	Since time.Time
	Limit int
}

// AnalyticsService accepts client events and serves aggregates built from
// consumed events.
type AnalyticsService struct {
	emitter analytics.Emitter
	repo    repository.AnalyticsRepository
	logger  *slog.Logger
	now     func() time.Time
}

func NewAnalyticsService(emitter analytics.Emitter, repo repository.AnalyticsRepository, logger *slog.Logger) *AnalyticsService {
	return &AnalyticsService{emitter: emitter, repo: repo, logger: logger, now: time.Now}
}

// Track hands the event to the emitter and returns at once. The session comes
// from the body or, failing that, the session header. Delivery failures are
// never reported to the caller.
func (s *AnalyticsService) Track(ctx context.Context, in TrackInput) error {
	if !slices.Contains(domain.AnalyticsEventTypes(), in.Type) {
		return apperrors.Validation(fmt.Sprintf("unknown event type %q", in.Type))
	}
	if in.ProductID == "" {
		return apperrors.Validation("productId is required")
	}

	e := analytics.NewEvent(ctx, in.Type, in.ProductID, in.Qty)
	if in.SessionID != "" {
		e.SessionID = in.SessionID
	}
	if e.SessionID == "" {
		return apperrors.Validation("sessionId is required")
	}
	s.emitter.Emit(ctx, e)
	return nil
}

// TopProducts ranks products by event count. Type defaults to product views,
// the window to the last seven days.
func (s *AnalyticsService) TopProducts(ctx context.Context, in TopProductsInput) ([]domain.ProductStat, error) {
	if in.Type == "" {
		in.Type = domain.EventProductView
	}
	if !slices.Contains(domain.AnalyticsEventTypes(), in.Type) {
		return nil, apperrors.Validation(fmt.Sprintf("unknown event type %q", in.Type))
	}
	if in.Since.IsZero() {
		in.Since = s.now().Add(-defaultTopWindow)
	}
	switch {
	case in.Limit <= 0:
		in.Limit = defaultTopLimit
	case in.Limit > maxTopLimit:
		in.Limit = maxTopLimit
	}

	stats, err := s.repo.TopProducts(ctx, in.Type, in.Since, in.Limit)
	if err != nil {
		return nil, fmt.Errorf("top products: %w", err)
	}
	return stats, nil
}
