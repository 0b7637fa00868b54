package persistence

import (
	"context"
	"fmt"

	"pickupstand/internal/domain"
	"pickupstand/internal/ports"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormSmsRepository implements SmsRepository using GORM.
type GormSmsRepository struct {
	db *gorm.DB
}

// NewGormSmsRepository creates a new SMS repository.
func NewGormSmsRepository(db *gorm.DB) ports.SmsRepository {
	return &GormSmsRepository{db: db}
}

// Create persists a message.
func (r *GormSmsRepository) Create(ctx context.Context, msg *domain.SmsMessage) error {
	if msg.ID == uuid.Nil {
		msg.ID = uuid.New()
	}
	if err := r.db.WithContext(ctx).Create(msg).Error; err != nil {
		return fmt.Errorf("failed to create sms message: %w", translate(err))
	}
	return nil
}

// UpdateStatusBySID applies a Twilio status callback.
func (r *GormSmsRepository) UpdateStatusBySID(ctx context.Context, sid string, status domain.SmsStatus) error {
	res := r.db.WithContext(ctx).Model(&domain.SmsMessage{}).
		Where("twilio_sid = ?", sid).
		Update("status", status)
	if res.Error != nil {
		return fmt.Errorf("failed to update sms status: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// ListByCustomer returns a customer's conversation oldest first.
func (r *GormSmsRepository) ListByCustomer(ctx context.Context, customerID uuid.UUID) ([]*domain.SmsMessage, error) {
	var msgs []*domain.SmsMessage
	if err := r.db.WithContext(ctx).
		Where("customer_id = ?", customerID).
		Order("created_at").
		Find(&msgs).Error; err != nil {
		return nil, err
	}
	return msgs, nil
}

// ListRecentByCustomer returns the newest messages for the customer
// detail aggregate.
func (r *GormSmsRepository) ListRecentByCustomer(ctx context.Context, customerID uuid.UUID, limit int) ([]*domain.SmsMessage, error) {
	var msgs []*domain.SmsMessage
	if err := r.db.WithContext(ctx).
		Where("customer_id = ?", customerID).
		Order("created_at DESC").
		Limit(limit).
		Find(&msgs).Error; err != nil {
		return nil, err
	}
	return msgs, nil
}
