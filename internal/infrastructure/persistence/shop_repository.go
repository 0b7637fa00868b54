package persistence

import (
	"context"
	"fmt"
	"time"

	"pickupstand/internal/domain"
	"pickupstand/internal/ports"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormShopRepository implements ShopRepository using GORM.
type GormShopRepository struct {
	db *gorm.DB
}

// NewGormShopRepository creates a new shop repository.
func NewGormShopRepository(db *gorm.DB) ports.ShopRepository {
	return &GormShopRepository{db: db}
}

// Save upserts a shop by domain.
func (r *GormShopRepository) Save(ctx context.Context, shop *domain.Shop) error {
	if shop.ID == uuid.Nil {
		shop.ID = uuid.New()
	}
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "domain"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"access_token", "scopes", "timezone", "uninstalled", "uninstalled_at", "updated_at",
		}),
	}).Create(shop).Error
	if err != nil {
		return fmt.Errorf("failed to save shop: %w", err)
	}
	return nil
}

// GetByDomain retrieves a shop by its myshopify domain.
func (r *GormShopRepository) GetByDomain(ctx context.Context, shopDomain string) (*domain.Shop, error) {
	var shop domain.Shop
	if err := r.db.WithContext(ctx).Where("domain = ?", shopDomain).First(&shop).Error; err != nil {
		return nil, translate(err)
	}
	return &shop, nil
}

// List retrieves all shops.
func (r *GormShopRepository) List(ctx context.Context) ([]*domain.Shop, error) {
	var shops []*domain.Shop
	if err := r.db.WithContext(ctx).Order("domain").Find(&shops).Error; err != nil {
		return nil, err
	}
	return shops, nil
}

// MarkUninstalled clears the shop's token and flags it uninstalled.
// The row is kept for audit.
func (r *GormShopRepository) MarkUninstalled(ctx context.Context, shopDomain string) error {
	now := time.Now()
	res := r.db.WithContext(ctx).Model(&domain.Shop{}).
		Where("domain = ?", shopDomain).
		Updates(map[string]interface{}{
			"access_token":   "",
			"uninstalled":    true,
			"uninstalled_at": &now,
		})
	if res.Error != nil {
		return fmt.Errorf("failed to mark shop uninstalled: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// GormInstallSessionRepository implements InstallSessionRepository.
type GormInstallSessionRepository struct {
	db *gorm.DB
}

// NewGormInstallSessionRepository creates a new install session repository.
func NewGormInstallSessionRepository(db *gorm.DB) ports.InstallSessionRepository {
	return &GormInstallSessionRepository{db: db}
}

// Create persists a new OAuth session.
func (r *GormInstallSessionRepository) Create(ctx context.Context, session *domain.InstallSession) error {
	if err := r.db.WithContext(ctx).Create(session).Error; err != nil {
		return fmt.Errorf("failed to create install session: %w", translate(err))
	}
	return nil
}

// Get retrieves a session by state token. Expired sessions are treated
// as not found.
func (r *GormInstallSessionRepository) Get(ctx context.Context, state string) (*domain.InstallSession, error) {
	var session domain.InstallSession
	if err := r.db.WithContext(ctx).Where("state = ?", state).First(&session).Error; err != nil {
		return nil, translate(err)
	}
	if session.Expired(time.Now()) {
		return nil, domain.ErrNotFound
	}
	return &session, nil
}

// Delete removes a consumed session.
func (r *GormInstallSessionRepository) Delete(ctx context.Context, state string) error {
	return r.db.WithContext(ctx).Where("state = ?", state).Delete(&domain.InstallSession{}).Error
}
