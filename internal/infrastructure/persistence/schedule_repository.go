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

// GormScheduleRepository implements ScheduleRepository using GORM.
type GormScheduleRepository struct {
	db *gorm.DB
}

// NewGormScheduleRepository creates a new schedule repository.
func NewGormScheduleRepository(db *gorm.DB) ports.ScheduleRepository {
	return &GormScheduleRepository{db: db}
}

// Create persists a new pickup schedule.
func (r *GormScheduleRepository) Create(ctx context.Context, s *domain.PickupSchedule) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	if s.Status == "" {
		s.Status = domain.PickupStatusScheduled
	}
	if err := r.db.WithContext(ctx).Create(s).Error; err != nil {
		return fmt.Errorf("failed to create pickup schedule: %w", err)
	}
	return nil
}

// Get finds a schedule by ID.
func (r *GormScheduleRepository) Get(ctx context.Context, id uuid.UUID) (*domain.PickupSchedule, error) {
	var s domain.PickupSchedule
	if err := r.db.WithContext(ctx).First(&s, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &s, nil
}

// Update saves the full schedule row.
func (r *GormScheduleRepository) Update(ctx context.Context, s *domain.PickupSchedule) error {
	res := r.db.WithContext(ctx).Model(&domain.PickupSchedule{}).
		Where("id = ?", s.ID).
		Updates(map[string]interface{}{
			"location_id":       s.LocationID,
			"slot_label":        s.SlotLabel,
			"pickup_date":       s.PickupDate,
			"status":            s.Status,
			"calendar_event_id": s.CalendarEventID,
		})
	if res.Error != nil {
		return fmt.Errorf("failed to update pickup schedule: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// ListByDate lists all pickups on a calendar date for the packing
// list, earliest slot first.
func (r *GormScheduleRepository) ListByDate(ctx context.Context, shopDomain string, date time.Time) ([]*domain.PickupSchedule, error) {
	dayStart := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, date.Location())
	dayEnd := dayStart.AddDate(0, 0, 1)

	var schedules []*domain.PickupSchedule
	if err := r.db.WithContext(ctx).
		Where("shop_domain = ? AND pickup_date >= ? AND pickup_date < ?", shopDomain, dayStart, dayEnd).
		Order("slot_label, created_at").
		Find(&schedules).Error; err != nil {
		return nil, err
	}
	return schedules, nil
}

// ListByCustomer lists a customer's pickups, newest first.
func (r *GormScheduleRepository) ListByCustomer(ctx context.Context, customerID uuid.UUID, limit int) ([]*domain.PickupSchedule, error) {
	q := r.db.WithContext(ctx).
		Where("customer_id = ?", customerID).
		Order("pickup_date DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	var schedules []*domain.PickupSchedule
	if err := q.Find(&schedules).Error; err != nil {
		return nil, err
	}
	return schedules, nil
}
