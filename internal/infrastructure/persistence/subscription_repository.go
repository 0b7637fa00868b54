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

// GormSubscriptionRepository implements SubscriptionRepository: plan
// groups with their frequencies, the per-shop config row, and the
// forward-projected subscription pickups.
type GormSubscriptionRepository struct {
	db *gorm.DB
}

// NewGormSubscriptionRepository creates a new subscription repository.
func NewGormSubscriptionRepository(db *gorm.DB) ports.SubscriptionRepository {
	return &GormSubscriptionRepository{db: db}
}

// SavePlanGroup upserts a plan group and replaces its frequencies.
func (r *GormSubscriptionRepository) SavePlanGroup(ctx context.Context, g *domain.SubscriptionPlanGroup) error {
	if g.ID == uuid.Nil {
		g.ID = uuid.New()
	}
	for i := range g.Frequencies {
		if g.Frequencies[i].ID == uuid.Nil {
			g.Frequencies[i].ID = uuid.New()
		}
		g.Frequencies[i].GroupID = g.ID
	}

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Frequencies").Save(g).Error; err != nil {
			return fmt.Errorf("failed to save plan group: %w", err)
		}
		if err := tx.Delete(&domain.SubscriptionPlanFrequency{}, "group_id = ?", g.ID).Error; err != nil {
			return err
		}
		if len(g.Frequencies) > 0 {
			if err := tx.Create(&g.Frequencies).Error; err != nil {
				return fmt.Errorf("failed to save plan frequencies: %w", err)
			}
		}
		return nil
	})
}

// GetPlanGroup finds a plan group with frequencies.
func (r *GormSubscriptionRepository) GetPlanGroup(ctx context.Context, id uuid.UUID) (*domain.SubscriptionPlanGroup, error) {
	var g domain.SubscriptionPlanGroup
	if err := r.db.WithContext(ctx).Preload("Frequencies").First(&g, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &g, nil
}

// DeletePlanGroup removes a group and its frequencies.
func (r *GormSubscriptionRepository) DeletePlanGroup(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(&domain.SubscriptionPlanFrequency{}, "group_id = ?", id).Error; err != nil {
			return err
		}
		res := tx.Delete(&domain.SubscriptionPlanGroup{}, "id = ?", id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return domain.ErrNotFound
		}
		return nil
	})
}

// ListPlanGroups lists a shop's plan groups with frequencies.
func (r *GormSubscriptionRepository) ListPlanGroups(ctx context.Context, shopDomain string) ([]*domain.SubscriptionPlanGroup, error) {
	var groups []*domain.SubscriptionPlanGroup
	if err := r.db.WithContext(ctx).
		Preload("Frequencies").
		Where("shop_domain = ?", shopDomain).
		Order("name").
		Find(&groups).Error; err != nil {
		return nil, err
	}
	return groups, nil
}

// FindFrequencyByPlanGID resolves a frequency from a selling plan GID
// carried on a legacy subscription order's line item.
func (r *GormSubscriptionRepository) FindFrequencyByPlanGID(ctx context.Context, shopDomain, planGID string) (*domain.SubscriptionPlanFrequency, error) {
	var f domain.SubscriptionPlanFrequency
	if err := r.db.WithContext(ctx).
		Joins("JOIN subscription_plan_groups g ON g.id = subscription_plan_frequencies.group_id").
		Where("g.shop_domain = ? AND subscription_plan_frequencies.shopify_gid = ?", shopDomain, planGID).
		First(&f).Error; err != nil {
		return nil, translate(err)
	}
	return &f, nil
}

// FindFrequencyByPlanName resolves a frequency from a selling plan
// display name ("Every 2 Weeks") when the GID is absent.
func (r *GormSubscriptionRepository) FindFrequencyByPlanName(ctx context.Context, shopDomain, name string) (*domain.SubscriptionPlanFrequency, error) {
	freq, err := domain.ParseFrequency(name)
	if err != nil {
		return nil, domain.ErrNotFound
	}
	var f domain.SubscriptionPlanFrequency
	if err := r.db.WithContext(ctx).
		Joins("JOIN subscription_plan_groups g ON g.id = subscription_plan_frequencies.group_id").
		Where("g.shop_domain = ? AND subscription_plan_frequencies.interval_unit = ? AND subscription_plan_frequencies.interval_count = ?",
			shopDomain, freq.Unit, freq.Count).
		First(&f).Error; err != nil {
		return nil, translate(err)
	}
	return &f, nil
}

// GetConfig returns the shop's selling plan config, or the defaults
// when the shop never customized it.
func (r *GormSubscriptionRepository) GetConfig(ctx context.Context, shopDomain string) (*domain.SellingPlanConfig, error) {
	var cfg domain.SellingPlanConfig
	err := r.db.WithContext(ctx).Where("shop_domain = ?", shopDomain).First(&cfg).Error
	if err != nil {
		if translate(err) == domain.ErrNotFound {
			return domain.DefaultSellingPlanConfig(shopDomain), nil
		}
		return nil, err
	}
	cfg.Normalize()
	return &cfg, nil
}

// SaveConfig upserts the per-shop config row.
func (r *GormSubscriptionRepository) SaveConfig(ctx context.Context, cfg *domain.SellingPlanConfig) error {
	if cfg.ID == uuid.Nil {
		cfg.ID = uuid.New()
	}
	cfg.Normalize()
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "shop_domain"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"projection_horizon", "default_frequency", "date_attribute", "time_attribute",
			"location_attribute", "frequency_attribute", "handle_legacy_plans", "updated_at",
		}),
	}).Create(cfg).Error
	if err != nil {
		return fmt.Errorf("failed to save selling plan config: %w", err)
	}
	return nil
}

// CreatePickups persists a projection chain in one insert.
func (r *GormSubscriptionRepository) CreatePickups(ctx context.Context, pickups []*domain.SubscriptionPickup) error {
	if len(pickups) == 0 {
		return nil
	}
	for _, p := range pickups {
		if p.ID == uuid.Nil {
			p.ID = uuid.New()
		}
		if p.Status == "" {
			p.Status = domain.SubscriptionPickupProjected
		}
	}
	if err := r.db.WithContext(ctx).Create(&pickups).Error; err != nil {
		return fmt.Errorf("failed to create subscription pickups: %w", err)
	}
	return nil
}

// ListPickupsByContract lists a contract's projected pickups in order.
func (r *GormSubscriptionRepository) ListPickupsByContract(ctx context.Context, shopDomain, contractGID string) ([]*domain.SubscriptionPickup, error) {
	var pickups []*domain.SubscriptionPickup
	if err := r.db.WithContext(ctx).
		Where("shop_domain = ? AND contract_gid = ?", shopDomain, contractGID).
		Order("sequence").
		Find(&pickups).Error; err != nil {
		return nil, err
	}
	return pickups, nil
}

// ListPickupsByCustomer lists a customer's projected pickups in order.
func (r *GormSubscriptionRepository) ListPickupsByCustomer(ctx context.Context, customerID uuid.UUID) ([]*domain.SubscriptionPickup, error) {
	var pickups []*domain.SubscriptionPickup
	if err := r.db.WithContext(ctx).
		Where("customer_id = ?", customerID).
		Order("projected_date").
		Find(&pickups).Error; err != nil {
		return nil, err
	}
	return pickups, nil
}

// UpdatePickupStatusByContract moves all of a contract's pickups from
// one status to another and returns how many rows changed.
func (r *GormSubscriptionRepository) UpdatePickupStatusByContract(ctx context.Context, shopDomain, contractGID string, from, to domain.SubscriptionPickupStatus) (int64, error) {
	res := r.db.WithContext(ctx).Model(&domain.SubscriptionPickup{}).
		Where("shop_domain = ? AND contract_gid = ? AND status = ?", shopDomain, contractGID, from).
		Update("status", to)
	if res.Error != nil {
		return 0, fmt.Errorf("failed to update subscription pickup status: %w", res.Error)
	}
	return res.RowsAffected, nil
}
