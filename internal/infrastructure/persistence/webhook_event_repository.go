package persistence

import (
	"context"
	"fmt"

	"pickupstand/internal/domain"
	"pickupstand/internal/ports"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormWebhookEventRepository implements the webhook idempotency ledger.
type GormWebhookEventRepository struct {
	db *gorm.DB
}

// NewGormWebhookEventRepository creates a new webhook event repository.
func NewGormWebhookEventRepository(db *gorm.DB) ports.WebhookEventRepository {
	return &GormWebhookEventRepository{db: db}
}

// Insert records a received webhook. The unique index on
// (shop_domain, topic, shopify_id) makes duplicate deliveries fail
// with domain.ErrDuplicate, which callers treat as "already handled".
func (r *GormWebhookEventRepository) Insert(ctx context.Context, event *domain.WebhookEvent) error {
	if event.ID == uuid.Nil {
		event.ID = uuid.New()
	}
	if event.Status == "" {
		event.Status = domain.WebhookStatusReceived
	}
	if err := r.db.WithContext(ctx).Create(event).Error; err != nil {
		if translate(err) == domain.ErrDuplicate {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("failed to insert webhook event: %w", err)
	}
	return nil
}

// MarkProcessed flags an event as successfully handled.
func (r *GormWebhookEventRepository) MarkProcessed(ctx context.Context, id uuid.UUID) error {
	return r.setStatus(ctx, id, domain.WebhookStatusProcessed, "")
}

// MarkFailed records the handler error so the Shopify redelivery can be
// matched against it later.
func (r *GormWebhookEventRepository) MarkFailed(ctx context.Context, id uuid.UUID, reason string) error {
	return r.setStatus(ctx, id, domain.WebhookStatusFailed, reason)
}

func (r *GormWebhookEventRepository) setStatus(ctx context.Context, id uuid.UUID, status domain.WebhookStatus, errText string) error {
	res := r.db.WithContext(ctx).Model(&domain.WebhookEvent{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{"status": status, "error": errText})
	if res.Error != nil {
		return fmt.Errorf("failed to update webhook event: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// Get retrieves an event by its dedupe key.
func (r *GormWebhookEventRepository) Get(ctx context.Context, shopDomain, topic, shopifyID string) (*domain.WebhookEvent, error) {
	var event domain.WebhookEvent
	if err := r.db.WithContext(ctx).
		Where("shop_domain = ? AND topic = ? AND shopify_id = ?", shopDomain, topic, shopifyID).
		First(&event).Error; err != nil {
		return nil, translate(err)
	}
	return &event, nil
}
