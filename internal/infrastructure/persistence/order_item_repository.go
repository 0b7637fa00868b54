package persistence

import (
	"context"
	"fmt"

	"pickupstand/internal/domain"
	"pickupstand/internal/ports"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormOrderItemRepository implements OrderItemRepository using GORM.
type GormOrderItemRepository struct {
	db *gorm.DB
}

// NewGormOrderItemRepository creates a new order item repository.
func NewGormOrderItemRepository(db *gorm.DB) ports.OrderItemRepository {
	return &GormOrderItemRepository{db: db}
}

// CreateBatch persists all line items of an order in one insert.
func (r *GormOrderItemRepository) CreateBatch(ctx context.Context, items []*domain.OrderItem) error {
	if len(items) == 0 {
		return nil
	}
	for _, item := range items {
		if item.ID == uuid.Nil {
			item.ID = uuid.New()
		}
	}
	if err := r.db.WithContext(ctx).Create(&items).Error; err != nil {
		return fmt.Errorf("failed to create order items: %w", err)
	}
	return nil
}

// ListByOrder lists the captured line items of an order.
func (r *GormOrderItemRepository) ListByOrder(ctx context.Context, shopDomain string, shopifyOrderID int64) ([]*domain.OrderItem, error) {
	var items []*domain.OrderItem
	if err := r.db.WithContext(ctx).
		Where("shop_domain = ? AND shopify_order_id = ?", shopDomain, shopifyOrderID).
		Order("created_at").
		Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}
