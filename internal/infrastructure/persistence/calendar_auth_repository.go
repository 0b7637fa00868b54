package persistence

import (
	"context"
	"fmt"

	"pickupstand/internal/domain"
	"pickupstand/internal/ports"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormCalendarAuthRepository implements CalendarAuthRepository.
type GormCalendarAuthRepository struct {
	db *gorm.DB
}

// NewGormCalendarAuthRepository creates a new calendar auth repository.
func NewGormCalendarAuthRepository(db *gorm.DB) ports.CalendarAuthRepository {
	return &GormCalendarAuthRepository{db: db}
}

// Save upserts the shop's Google OAuth grant.
func (r *GormCalendarAuthRepository) Save(ctx context.Context, auth *domain.GoogleCalendarAuth) error {
	if auth.ID == uuid.Nil {
		auth.ID = uuid.New()
	}
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "shop_domain"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"access_token", "refresh_token", "token_expiry", "calendar_id", "updated_at",
		}),
	}).Create(auth).Error
	if err != nil {
		return fmt.Errorf("failed to save calendar auth: %w", err)
	}
	return nil
}

// GetByShop retrieves the shop's grant.
func (r *GormCalendarAuthRepository) GetByShop(ctx context.Context, shopDomain string) (*domain.GoogleCalendarAuth, error) {
	var auth domain.GoogleCalendarAuth
	if err := r.db.WithContext(ctx).Where("shop_domain = ?", shopDomain).First(&auth).Error; err != nil {
		return nil, translate(err)
	}
	return &auth, nil
}

// Delete removes the grant, e.g. on app uninstall.
func (r *GormCalendarAuthRepository) Delete(ctx context.Context, shopDomain string) error {
	return r.db.WithContext(ctx).Where("shop_domain = ?", shopDomain).Delete(&domain.GoogleCalendarAuth{}).Error
}
