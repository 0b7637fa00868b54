package domain

import (
	"time"

	"github.com/google/uuid"
)

// WebhookStatus tracks processing of a received webhook.
type WebhookStatus string

const (
	WebhookStatusReceived  WebhookStatus = "received"
	WebhookStatusProcessed WebhookStatus = "processed"
	WebhookStatusFailed    WebhookStatus = "failed"
)

// WebhookEvent is the idempotency ledger for inbound Shopify webhooks.
// The unique index on (shop_domain, topic, shopify_id) is the source of
// truth for duplicate suppression; the Redis check in front of it is
// only a fast path, written after an event processes successfully.
type WebhookEvent struct {
	ID         uuid.UUID     `json:"id" gorm:"type:uuid;primaryKey"`
	ShopDomain string        `json:"shop_domain" gorm:"uniqueIndex:idx_webhook_events_dedupe;not null"`
	Topic      string        `json:"topic" gorm:"uniqueIndex:idx_webhook_events_dedupe;not null"`
	ShopifyID  string        `json:"shopify_id" gorm:"uniqueIndex:idx_webhook_events_dedupe;not null"`
	Digest     string        `json:"digest"`
	Status     WebhookStatus `json:"status" gorm:"default:received"`
	Error      string        `json:"error"`
	CreatedAt  time.Time     `json:"created_at"`
	UpdatedAt  time.Time     `json:"updated_at"`

	// Payload is the raw webhook body. Carried in memory for dispatch,
	// not persisted.
	Payload []byte `json:"-" gorm:"-"`
}
