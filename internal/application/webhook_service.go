package application

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"strconv"
	"time"

	"pickupstand/internal/domain"
	"pickupstand/internal/ports"

	"github.com/rs/zerolog"
)

// dedupeKeyTTL bounds the Redis fast-path dedupe window. Shopify stops
// retrying a webhook long before this.
const dedupeKeyTTL = 48 * time.Hour

// WebhookService ingests Shopify webhooks: dedupe, ledger, dispatch.
type WebhookService struct {
	events     ports.WebhookEventRepository
	cache      ports.Cache
	dispatcher *WebhookDispatcher
	logger     zerolog.Logger
}

// NewWebhookService creates a new webhook service.
func NewWebhookService(
	events ports.WebhookEventRepository,
	cache ports.Cache,
	dispatcher *WebhookDispatcher,
	logger zerolog.Logger,
) *WebhookService {
	return &WebhookService{
		events:     events,
		cache:      cache,
		dispatcher: dispatcher,
		logger:     logger,
	}
}

// Process runs the ingestion pipeline for one verified webhook
// delivery. Duplicates of a processed event return nil so the HTTP
// layer acknowledges them; a handler failure is returned so the HTTP
// layer can answer 500, and the Shopify redelivery gets dispatched
// again until it succeeds.
func (s *WebhookService) Process(ctx context.Context, shopDomain, topic, webhookID string, payload []byte) error {
	// Fast path. The delivery id is stable across Shopify's retries of
	// the same event, so the key is only written after a successful
	// dispatch — a failed attempt must stay retryable. A lost Redis key
	// just falls through to the ledger.
	if webhookID != "" {
		if _, seen, err := s.cache.Get(ctx, "webhook:"+webhookID); err == nil && seen {
			s.logger.Debug().Str("webhookId", webhookID).Str("topic", topic).Msg("Duplicate webhook suppressed by cache")
			webhookCounter.WithLabelValues(topic, "duplicate").Inc()
			return nil
		}
	}

	event := &domain.WebhookEvent{
		ShopDomain: shopDomain,
		Topic:      topic,
		ShopifyID:  payloadResourceID(payload, webhookID),
		Digest:     payloadDigest(payload),
		Status:     domain.WebhookStatusReceived,
		Payload:    payload,
	}
	if err := s.events.Insert(ctx, event); err != nil {
		if errors.Is(err, domain.ErrDuplicate) {
			return s.retryExisting(ctx, shopDomain, topic, webhookID, payload)
		}
		return err
	}

	return s.dispatch(ctx, event, webhookID)
}

// retryExisting handles a ledger collision: the event was already
// recorded by an earlier delivery. A failed event gets dispatched
// again; anything else is a true duplicate.
func (s *WebhookService) retryExisting(ctx context.Context, shopDomain, topic, webhookID string, payload []byte) error {
	existing, err := s.events.Get(ctx, shopDomain, topic, payloadResourceID(payload, webhookID))
	if err != nil {
		return err
	}
	if existing.Status != domain.WebhookStatusFailed {
		s.logger.Info().
			Str("shop", shopDomain).
			Str("topic", topic).
			Str("shopifyId", existing.ShopifyID).
			Msg("Duplicate webhook suppressed by ledger")
		webhookCounter.WithLabelValues(topic, "duplicate").Inc()
		return nil
	}

	s.logger.Info().
		Str("shop", shopDomain).
		Str("topic", topic).
		Str("shopifyId", existing.ShopifyID).
		Msg("Redelivery of failed webhook, dispatching again")
	existing.Payload = payload
	return s.dispatch(ctx, existing, webhookID)
}

func (s *WebhookService) dispatch(ctx context.Context, event *domain.WebhookEvent, webhookID string) error {
	if err := s.dispatcher.Dispatch(ctx, event); err != nil {
		s.logger.Error().Err(err).
			Str("shop", event.ShopDomain).
			Str("topic", event.Topic).
			Msg("Webhook processing failed")
		if markErr := s.events.MarkFailed(ctx, event.ID, err.Error()); markErr != nil {
			s.logger.Error().Err(markErr).Str("event", event.ID.String()).Msg("Failed to mark webhook event failed")
		}
		webhookCounter.WithLabelValues(event.Topic, "failed").Inc()
		return err
	}

	if err := s.events.MarkProcessed(ctx, event.ID); err != nil {
		s.logger.Error().Err(err).Str("event", event.ID.String()).Msg("Failed to mark webhook event processed")
	}
	s.markSeen(ctx, webhookID)
	webhookCounter.WithLabelValues(event.Topic, "processed").Inc()
	return nil
}

// markSeen claims the delivery id in Redis once the event is fully
// processed, so retries of the same delivery short-circuit.
func (s *WebhookService) markSeen(ctx context.Context, webhookID string) {
	if webhookID == "" {
		return
	}
	if _, err := s.cache.SetNX(ctx, "webhook:"+webhookID, dedupeKeyTTL); err != nil {
		s.logger.Debug().Err(err).Str("webhookId", webhookID).Msg("Failed to record webhook dedupe key")
	}
}

// payloadResourceID extracts the numeric resource id from a webhook
// body. Bodies without one (app/uninstalled) fall back to the delivery
// id so the ledger row is still unique.
func payloadResourceID(payload []byte, fallback string) string {
	var probe struct {
		ID int64 `json:"id"`
	}
	if err := json.Unmarshal(payload, &probe); err == nil && probe.ID != 0 {
		return strconv.FormatInt(probe.ID, 10)
	}
	return fallback
}

func payloadDigest(payload []byte) string {
	sum := sha256.Sum256(payload)
	return hex.EncodeToString(sum[:])
}
