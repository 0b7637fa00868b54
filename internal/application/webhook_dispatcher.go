package application

import (
	"context"
	"fmt"

	"pickupstand/internal/domain"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
)

var webhookCounter = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "shopify_webhooks_total",
	Help: "Shopify webhooks received, by topic and outcome.",
}, []string{"topic", "result"})

// WebhookHandler processes webhook events for the topics it claims.
type WebhookHandler interface {
	// CanHandle returns true if this handler can process the given topic
	CanHandle(topic string) bool
	// Handle processes a webhook event
	Handle(ctx context.Context, event *domain.WebhookEvent) error
}

// WebhookDispatcher routes webhook events to registered handlers.
type WebhookDispatcher struct {
	handlers []WebhookHandler
	logger   zerolog.Logger
}

// NewWebhookDispatcher creates a new webhook dispatcher.
func NewWebhookDispatcher(logger zerolog.Logger) *WebhookDispatcher {
	return &WebhookDispatcher{logger: logger}
}

// RegisterHandler adds a handler to the dispatch chain.
func (d *WebhookDispatcher) RegisterHandler(h WebhookHandler) {
	d.handlers = append(d.handlers, h)
}

// Dispatch routes the event to the first handler claiming its topic.
// An unclaimed topic is logged and dropped, not an error: the shop may
// have stale subscriptions from an older app version.
func (d *WebhookDispatcher) Dispatch(ctx context.Context, event *domain.WebhookEvent) error {
	for _, h := range d.handlers {
		if !h.CanHandle(event.Topic) {
			continue
		}
		if err := h.Handle(ctx, event); err != nil {
			return fmt.Errorf("handler for %s: %w", event.Topic, err)
		}
		return nil
	}
	d.logger.Warn().
		Str("topic", event.Topic).
		Str("shop", event.ShopDomain).
		Msg("No handler registered for webhook topic")
	webhookCounter.WithLabelValues(event.Topic, "unhandled").Inc()
	return nil
}
