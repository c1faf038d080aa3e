package analytics

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/Emirlan007/Cassini-shop-sub000/internal/domain"
	"github.com/Emirlan007/Cassini-shop-sub000/internal/event"
	apperrors "github.com/Emirlan007/Cassini-shop-sub000/pkg/errors"
	"github.com/Emirlan007/Cassini-shop-sub000/pkg/httpclient"
	pkgkafka "github.com/Emirlan007/Cassini-shop-sub000/pkg/kafka"
	"github.com/Emirlan007/Cassini-shop-sub000/pkg/middleware"
)

// TopicEvents carries raw analytics events from the API to the consumer.
var TopicEvents = pkgkafka.Topic("analytics", "events")

// Sink names used in logs and the failure counter.
const (
	SinkKafka     = "kafka"
	SinkCollector = "http"
	SinkNone      = "none"
)

// DefaultEmitTimeout bounds a single background delivery.
const DefaultEmitTimeout = 3 * time.Second

var emitFailures = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "storefront",
	Name:      "analytics_emit_failures_total",
	Help:      "Analytics events that could not be delivered.",
}, []string{"sink"})

// Emitter delivers analytics events without blocking the caller. Delivery
// errors never reach the caller.
type Emitter interface {
	Emit(ctx context.Context, e domain.AnalyticsEvent)
}

// NewEvent builds an event of eventType for productID, tagged with the
// session and user found in ctx.
func NewEvent(ctx context.Context, eventType, productID string, qty int) domain.AnalyticsEvent {
	return domain.AnalyticsEvent{
		ID:         uuid.NewString(),
		Type:       eventType,
		SessionID:  middleware.SessionIDFromContext(ctx),
		UserID:     middleware.UserIDFromContext(ctx),
		ProductID:  productID,
		Qty:        qty,
		OccurredAt: time.Now().UTC(),
	}
}

type sendFunc func(ctx context.Context, e *domain.AnalyticsEvent) error

// dispatcher runs each delivery in its own goroutine on a context detached
// from the request, so a finished request does not cancel the delivery.
type dispatcher struct {
	sink    string
	send    sendFunc
	timeout time.Duration
	logger  *slog.Logger
	wg      sync.WaitGroup
}

func newDispatcher(sink string, send sendFunc, timeout time.Duration, logger *slog.Logger) *dispatcher {
	if timeout <= 0 {
		timeout = DefaultEmitTimeout
	}
	return &dispatcher{sink: sink, send: send, timeout: timeout, logger: logger}
}

func (d *dispatcher) Emit(ctx context.Context, e domain.AnalyticsEvent) {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.OccurredAt.IsZero() {
		e.OccurredAt = time.Now().UTC()
	}

	detached := context.WithoutCancel(ctx)
	d.wg.Add(1)
	go func() {
		defer d.wg.Done()

		ctx, cancel := context.WithTimeout(detached, d.timeout)
		defer cancel()

		if err := d.send(ctx, &e); err != nil {
			emitFailures.WithLabelValues(d.sink).Inc()
			d.logger.WarnContext(ctx, "analytics emit failed",
				slog.String("sink", d.sink),
				slog.String("event_type", e.Type),
				slog.String("product_id", e.ProductID),
				slog.String("error", err.Error()),
			)
		}
	}()
}

// Wait blocks until every pending delivery has finished.
func (d *dispatcher) Wait() {
	d.wg.Wait()
}

// KafkaEmitter publishes events to TopicEvents.
type KafkaEmitter struct {
	*dispatcher
}

func NewKafkaEmitter(publisher event.Publisher, timeout time.Duration, logger *slog.Logger) *KafkaEmitter {
	send := func(ctx context.Context, e *domain.AnalyticsEvent) error {
		evt, err := pkgkafka.NewEvent(TopicEvents, "product", e.ProductID, e)
		if err != nil {
			return err
		}
		evt.ID = e.ID
		return publisher.Publish(ctx, TopicEvents, evt)
	}
	return &KafkaEmitter{dispatcher: newDispatcher(SinkKafka, send, timeout, logger)}
}

// CollectorEmitter POSTs events to an external collector through a
// retrying client guarded by a circuit breaker.
type CollectorEmitter struct {
	*dispatcher
}

func NewCollectorEmitter(client *httpclient.CircuitBreakerClient, url string, timeout time.Duration, logger *slog.Logger) *CollectorEmitter {
	send := func(ctx context.Context, e *domain.AnalyticsEvent) error {
		resp, err := client.PostJSON(ctx, url, e)
		if httpclient.IsOpen(err) {
			return fmt.Errorf("analytics collector circuit open: %w", err)
		}
		if err != nil {
			return apperrors.Network("analytics collector", err)
		}
		if resp.StatusCode >= http.StatusMultipleChoices {
			return httpclient.ParseResponseError(resp, "analytics collector")
		}
		_, _ = io.Copy(io.Discard, resp.Body)
		if err := resp.Body.Close(); err != nil {
			return fmt.Errorf("close collector response: %w", err)
		}
		return nil
	}
	return &CollectorEmitter{dispatcher: newDispatcher(SinkCollector, send, timeout, logger)}
}

// NopEmitter drops every event.
type NopEmitter struct{}

func (NopEmitter) Emit(context.Context, domain.AnalyticsEvent) {}

// Wait returns immediately.
func (NopEmitter) Wait() {}
