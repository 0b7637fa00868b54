package persistence

import (
	"context"
	"fmt"
	"time"

	"pickupstand/internal/domain"
	"pickupstand/internal/ports"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormPickupRepository implements PickupRepository: locations, weekly
// time slots, and blackout dates.
type GormPickupRepository struct {
	db *gorm.DB
}

// NewGormPickupRepository creates a new pickup repository.
func NewGormPickupRepository(db *gorm.DB) ports.PickupRepository {
	return &GormPickupRepository{db: db}
}

// CreateLocation persists a new pickup location.
func (r *GormPickupRepository) CreateLocation(ctx context.Context, loc *domain.PickupLocation) error {
	if loc.ID == uuid.Nil {
		loc.ID = uuid.New()
	}
	if err := r.db.WithContext(ctx).Create(loc).Error; err != nil {
		return fmt.Errorf("failed to create location: %w", err)
	}
	return nil
}

// UpdateLocation saves changes to a location.
func (r *GormPickupRepository) UpdateLocation(ctx context.Context, loc *domain.PickupLocation) error {
	res := r.db.WithContext(ctx).Model(&domain.PickupLocation{}).
		Where("id = ?", loc.ID).
		Updates(map[string]interface{}{
			"name":        loc.Name,
			"address":     loc.Address,
			"calendar_id": loc.CalendarID,
			"active":      loc.Active,
		})
	if res.Error != nil {
		return fmt.Errorf("failed to update location: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// DeleteLocation removes a location and its slots.
func (r *GormPickupRepository) DeleteLocation(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(&domain.TimeSlot{}, "location_id = ?", id).Error; err != nil {
			return err
		}
		res := tx.Delete(&domain.PickupLocation{}, "id = ?", id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return domain.ErrNotFound
		}
		return nil
	})
}

// GetLocation finds a location by ID.
func (r *GormPickupRepository) GetLocation(ctx context.Context, id uuid.UUID) (*domain.PickupLocation, error) {
	var loc domain.PickupLocation
	if err := r.db.WithContext(ctx).First(&loc, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &loc, nil
}

// GetLocationByName finds a location by its display name. Used when
// matching the "Pickup Location" note attribute from order webhooks.
func (r *GormPickupRepository) GetLocationByName(ctx context.Context, shopDomain, name string) (*domain.PickupLocation, error) {
	var loc domain.PickupLocation
	if err := r.db.WithContext(ctx).
		Where("shop_domain = ? AND LOWER(name) = LOWER(?)", shopDomain, name).
		First(&loc).Error; err != nil {
		return nil, translate(err)
	}
	return &loc, nil
}

// ListLocations lists a shop's locations, optionally active only.
func (r *GormPickupRepository) ListLocations(ctx context.Context, shopDomain string, activeOnly bool) ([]*domain.PickupLocation, error) {
	q := r.db.WithContext(ctx).Where("shop_domain = ?", shopDomain)
	if activeOnly {
		q = q.Where("active = ?", true)
	}
	var locs []*domain.PickupLocation
	if err := q.Order("name").Find(&locs).Error; err != nil {
		return nil, err
	}
	return locs, nil
}

// CreateSlot persists a new weekly time slot.
func (r *GormPickupRepository) CreateSlot(ctx context.Context, slot *domain.TimeSlot) error {
	if slot.ID == uuid.Nil {
		slot.ID = uuid.New()
	}
	if err := r.db.WithContext(ctx).Create(slot).Error; err != nil {
		return fmt.Errorf("failed to create time slot: %w", err)
	}
	return nil
}

// UpdateSlot saves changes to a time slot.
func (r *GormPickupRepository) UpdateSlot(ctx context.Context, slot *domain.TimeSlot) error {
	res := r.db.WithContext(ctx).Model(&domain.TimeSlot{}).
		Where("id = ?", slot.ID).
		Updates(map[string]interface{}{
			"weekday":     slot.Weekday,
			"start_label": slot.StartLabel,
			"end_label":   slot.EndLabel,
			"capacity":    slot.Capacity,
			"active":      slot.Active,
		})
	if res.Error != nil {
		return fmt.Errorf("failed to update time slot: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// DeleteSlot removes a time slot.
func (r *GormPickupRepository) DeleteSlot(ctx context.Context, id uuid.UUID) error {
	res := r.db.WithContext(ctx).Delete(&domain.TimeSlot{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// ListSlotsByLocation lists a location's slots ordered by weekday.
func (r *GormPickupRepository) ListSlotsByLocation(ctx context.Context, locationID uuid.UUID) ([]*domain.TimeSlot, error) {
	var slots []*domain.TimeSlot
	if err := r.db.WithContext(ctx).
		Where("location_id = ?", locationID).
		Order("weekday, start_label").
		Find(&slots).Error; err != nil {
		return nil, err
	}
	return slots, nil
}

// CreateBlackout persists a blackout date.
func (r *GormPickupRepository) CreateBlackout(ctx context.Context, b *domain.BlackoutDate) error {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	if err := r.db.WithContext(ctx).Create(b).Error; err != nil {
		return fmt.Errorf("failed to create blackout date: %w", err)
	}
	return nil
}

// DeleteBlackout removes a blackout date.
func (r *GormPickupRepository) DeleteBlackout(ctx context.Context, id uuid.UUID) error {
	res := r.db.WithContext(ctx).Delete(&domain.BlackoutDate{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// ListBlackouts lists blackout dates in [from, to].
func (r *GormPickupRepository) ListBlackouts(ctx context.Context, shopDomain string, from, to time.Time) ([]*domain.BlackoutDate, error) {
	var blackouts []*domain.BlackoutDate
	if err := r.db.WithContext(ctx).
		Where("shop_domain = ? AND date >= ? AND date <= ?", shopDomain, from, to).
		Order("date").
		Find(&blackouts).Error; err != nil {
		return nil, err
	}
	return blackouts, nil
}
