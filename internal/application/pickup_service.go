package application

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"pickupstand/internal/domain"
	"pickupstand/internal/ports"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// AvailabilityOption is one bookable slot on a given day.
type AvailabilityOption struct {
	LocationID   uuid.UUID `json:"location_id"`
	LocationName string    `json:"location_name"`
	SlotID       uuid.UUID `json:"slot_id"`
	Label        string    `json:"label"`
	Capacity     int       `json:"capacity"`
}

// AvailabilityDay is the availability for one calendar date.
type AvailabilityDay struct {
	Date    string               `json:"date"`
	Options []AvailabilityOption `json:"options"`
}

// DayPickup is one schedule in the daily pickup sheet, with the
// customer resolved for display.
type DayPickup struct {
	Schedule *domain.PickupSchedule `json:"schedule"`
	Customer *domain.Customer       `json:"customer"`
}

// PickupService owns pickup locations, time slots, blackout dates,
// availability computation, and the schedule lifecycle.
type PickupService struct {
	pickups   ports.PickupRepository
	schedules ports.ScheduleRepository
	customers ports.CustomerRepository
	shops     *ShopService
	calendar  *CalendarService
	cache     ports.Cache
	logger    zerolog.Logger

	cutoffHour      int
	availabilityTTL time.Duration
}

// NewPickupService creates a new pickup service.
func NewPickupService(
	pickups ports.PickupRepository,
	schedules ports.ScheduleRepository,
	customers ports.CustomerRepository,
	shops *ShopService,
	calendar *CalendarService,
	cache ports.Cache,
	logger zerolog.Logger,
	cutoffHour int,
	availabilityTTL time.Duration,
) *PickupService {
	return &PickupService{
		pickups:         pickups,
		schedules:       schedules,
		customers:       customers,
		shops:           shops,
		calendar:        calendar,
		cache:           cache,
		logger:          logger,
		cutoffHour:      cutoffHour,
		availabilityTTL: availabilityTTL,
	}
}

// CreateLocation creates a pickup location.
func (s *PickupService) CreateLocation(ctx context.Context, loc *domain.PickupLocation) error {
	if loc.Name == "" {
		return fmt.Errorf("location name is required")
	}
	return s.pickups.CreateLocation(ctx, loc)
}

// UpdateLocation updates a pickup location.
func (s *PickupService) UpdateLocation(ctx context.Context, loc *domain.PickupLocation) error {
	if _, err := s.pickups.GetLocation(ctx, loc.ID); err != nil {
		return err
	}
	return s.pickups.UpdateLocation(ctx, loc)
}

// DeleteLocation removes a location and its slots.
func (s *PickupService) DeleteLocation(ctx context.Context, id uuid.UUID) error {
	return s.pickups.DeleteLocation(ctx, id)
}

// ListLocations lists a shop's pickup locations.
func (s *PickupService) ListLocations(ctx context.Context, shopDomain string, activeOnly bool) ([]*domain.PickupLocation, error) {
	return s.pickups.ListLocations(ctx, shopDomain, activeOnly)
}

// CreateSlot creates a recurring weekly time slot on a location.
func (s *PickupService) CreateSlot(ctx context.Context, slot *domain.TimeSlot) error {
	if err := validateSlot(slot); err != nil {
		return err
	}
	if _, err := s.pickups.GetLocation(ctx, slot.LocationID); err != nil {
		return fmt.Errorf("slot location: %w", err)
	}
	return s.pickups.CreateSlot(ctx, slot)
}

// UpdateSlot updates a time slot.
func (s *PickupService) UpdateSlot(ctx context.Context, slot *domain.TimeSlot) error {
	if err := validateSlot(slot); err != nil {
		return err
	}
	return s.pickups.UpdateSlot(ctx, slot)
}

// DeleteSlot removes a time slot.
func (s *PickupService) DeleteSlot(ctx context.Context, id uuid.UUID) error {
	return s.pickups.DeleteSlot(ctx, id)
}

// ListSlots lists the slots on a location.
func (s *PickupService) ListSlots(ctx context.Context, locationID uuid.UUID) ([]*domain.TimeSlot, error) {
	return s.pickups.ListSlotsByLocation(ctx, locationID)
}

func validateSlot(slot *domain.TimeSlot) error {
	if slot.Weekday < time.Sunday || slot.Weekday > time.Saturday {
		return fmt.Errorf("invalid weekday %d", slot.Weekday)
	}
	if _, ok := parseSlotTime(slot.StartLabel); !ok {
		return fmt.Errorf("unrecognized start time %q", slot.StartLabel)
	}
	if _, ok := parseSlotTime(slot.EndLabel); !ok {
		return fmt.Errorf("unrecognized end time %q", slot.EndLabel)
	}
	if slot.Capacity < 0 {
		return fmt.Errorf("capacity cannot be negative")
	}
	return nil
}

// CreateBlackout adds a blackout date.
func (s *PickupService) CreateBlackout(ctx context.Context, b *domain.BlackoutDate) error {
	if b.Date.IsZero() {
		return fmt.Errorf("blackout date is required")
	}
	return s.pickups.CreateBlackout(ctx, b)
}

// DeleteBlackout removes a blackout date.
func (s *PickupService) DeleteBlackout(ctx context.Context, id uuid.UUID) error {
	return s.pickups.DeleteBlackout(ctx, id)
}

// ListBlackouts lists blackout dates in a window.
func (s *PickupService) ListBlackouts(ctx context.Context, shopDomain string, from, to time.Time) ([]*domain.BlackoutDate, error) {
	return s.pickups.ListBlackouts(ctx, shopDomain, from, to)
}

// Availability computes the bookable pickup days for the next `days`
// days starting at `from` (the shop's today when zero). Blackouts
// remove days; the same-day cutoff removes today once the shop-local
// clock passes the cutoff hour. Responses are cached briefly since the
// storefront widget polls this.
func (s *PickupService) Availability(ctx context.Context, shopDomain string, locationID *uuid.UUID, from time.Time, days int) ([]AvailabilityDay, error) {
	if days <= 0 || days > 60 {
		days = 14
	}

	shop, err := s.shops.Get(ctx, shopDomain)
	if err != nil {
		return nil, err
	}
	tz := shop.Location()
	now := time.Now().In(tz)
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, tz)
	if from.IsZero() {
		from = today
	} else {
		from = time.Date(from.Year(), from.Month(), from.Day(), 0, 0, 0, 0, tz)
	}

	cacheKey := availabilityCacheKey(shopDomain, locationID, from, days)
	if cached, ok, err := s.cache.Get(ctx, cacheKey); err == nil && ok {
		var out []AvailabilityDay
		if err := json.Unmarshal([]byte(cached), &out); err == nil {
			return out, nil
		}
	}

	var locations []*domain.PickupLocation
	if locationID != nil {
		loc, err := s.pickups.GetLocation(ctx, *locationID)
		if err != nil {
			return nil, err
		}
		if loc.Active {
			locations = append(locations, loc)
		}
	} else {
		locations, err = s.pickups.ListLocations(ctx, shopDomain, true)
		if err != nil {
			return nil, err
		}
	}

	// weekday -> options, precomputed once per location set
	slotsByWeekday := make(map[time.Weekday][]AvailabilityOption)
	for _, loc := range locations {
		slots, err := s.pickups.ListSlotsByLocation(ctx, loc.ID)
		if err != nil {
			return nil, err
		}
		for _, slot := range slots {
			if !slot.Active {
				continue
			}
			slotsByWeekday[slot.Weekday] = append(slotsByWeekday[slot.Weekday], AvailabilityOption{
				LocationID:   loc.ID,
				LocationName: loc.Name,
				SlotID:       slot.ID,
				Label:        slot.Label(),
				Capacity:     slot.Capacity,
			})
		}
	}

	blackouts, err := s.pickups.ListBlackouts(ctx, shopDomain, from, from.AddDate(0, 0, days))
	if err != nil {
		return nil, err
	}
	globalBlackouts := make(map[string]bool)
	locationBlackouts := make(map[string]map[uuid.UUID]bool)
	for _, b := range blackouts {
		key := b.Date.Format("2006-01-02")
		if b.LocationID == nil {
			globalBlackouts[key] = true
			continue
		}
		if locationBlackouts[key] == nil {
			locationBlackouts[key] = make(map[uuid.UUID]bool)
		}
		locationBlackouts[key][*b.LocationID] = true
	}

	var result []AvailabilityDay
	for i := 0; i < days; i++ {
		day := from.AddDate(0, 0, i)
		dateKey := day.Format("2006-01-02")
		if day.Before(today) || globalBlackouts[dateKey] {
			continue
		}
		if day.Equal(today) && now.Hour() >= s.cutoffHour {
			continue
		}

		var options []AvailabilityOption
		for _, opt := range slotsByWeekday[day.Weekday()] {
			if blocked := locationBlackouts[dateKey]; blocked != nil && blocked[opt.LocationID] {
				continue
			}
			options = append(options, opt)
		}
		if len(options) > 0 {
			result = append(result, AvailabilityDay{Date: dateKey, Options: options})
		}
	}

	if encoded, err := json.Marshal(result); err == nil {
		_ = s.cache.Set(ctx, cacheKey, string(encoded), s.availabilityTTL)
	}
	return result, nil
}

func availabilityCacheKey(shopDomain string, locationID *uuid.UUID, from time.Time, days int) string {
	loc := "all"
	if locationID != nil {
		loc = locationID.String()
	}
	return fmt.Sprintf("avail:%s:%s:%s:%d", shopDomain, loc, from.Format("2006-01-02"), days)
}

// CreateSchedule books a pickup manually from the admin UI.
func (s *PickupService) CreateSchedule(ctx context.Context, schedule *domain.PickupSchedule) error {
	if schedule.PickupDate.IsZero() {
		return fmt.Errorf("pickup date is required")
	}
	if _, err := s.customers.GetByID(ctx, schedule.CustomerID); err != nil {
		return fmt.Errorf("schedule customer: %w", err)
	}
	if schedule.LocationID != nil {
		if _, err := s.pickups.GetLocation(ctx, *schedule.LocationID); err != nil {
			return fmt.Errorf("schedule location: %w", err)
		}
	}
	if err := s.schedules.Create(ctx, schedule); err != nil {
		return err
	}
	s.syncCalendar(ctx, schedule)
	return nil
}

// GetSchedule returns one pickup schedule.
func (s *PickupService) GetSchedule(ctx context.Context, id uuid.UUID) (*domain.PickupSchedule, error) {
	return s.schedules.Get(ctx, id)
}

// DayView returns the pickup sheet for one date with customers
// resolved.
func (s *PickupService) DayView(ctx context.Context, shopDomain string, date time.Time) ([]DayPickup, error) {
	schedules, err := s.schedules.ListByDate(ctx, shopDomain, date)
	if err != nil {
		return nil, err
	}
	out := make([]DayPickup, 0, len(schedules))
	for _, schedule := range schedules {
		entry := DayPickup{Schedule: schedule}
		if customer, err := s.customers.GetByID(ctx, schedule.CustomerID); err == nil {
			entry.Customer = customer
		}
		out = append(out, entry)
	}
	return out, nil
}

// UpdateStatus moves a schedule through its lifecycle. Terminal states
// reject further transitions.
func (s *PickupService) UpdateStatus(ctx context.Context, id uuid.UUID, target domain.PickupStatus) (*domain.PickupSchedule, error) {
	schedule, err := s.schedules.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !schedule.Status.CanTransitionTo(target) {
		return nil, fmt.Errorf("cannot transition pickup from %s to %s", schedule.Status, target)
	}
	schedule.Status = target
	if err := s.schedules.Update(ctx, schedule); err != nil {
		return nil, err
	}

	if target == domain.PickupStatusCanceled {
		if err := s.calendar.DeleteScheduleEvent(ctx, schedule.ShopDomain, schedule); err != nil {
			s.logger.Warn().Err(err).Str("schedule", id.String()).Msg("Failed to remove calendar event for canceled pickup")
		}
	}
	return schedule, nil
}

// Reschedule moves a scheduled pickup to a new date, slot, or location
// and re-syncs the calendar event.
func (s *PickupService) Reschedule(ctx context.Context, id uuid.UUID, newDate time.Time, slotLabel string, locationID *uuid.UUID) (*domain.PickupSchedule, error) {
	schedule, err := s.schedules.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if schedule.Status != domain.PickupStatusScheduled {
		return nil, fmt.Errorf("cannot reschedule a %s pickup", schedule.Status)
	}
	if newDate.IsZero() {
		return nil, fmt.Errorf("pickup date is required")
	}
	if locationID != nil {
		if _, err := s.pickups.GetLocation(ctx, *locationID); err != nil {
			return nil, fmt.Errorf("schedule location: %w", err)
		}
		schedule.LocationID = locationID
	}

	schedule.PickupDate = newDate
	if slotLabel != "" {
		schedule.SlotLabel = slotLabel
	}
	if err := s.schedules.Update(ctx, schedule); err != nil {
		return nil, err
	}
	s.syncCalendar(ctx, schedule)
	return schedule, nil
}

// syncCalendar pushes the schedule to Google Calendar. Sync failures
// never fail the booking.
func (s *PickupService) syncCalendar(ctx context.Context, schedule *domain.PickupSchedule) {
	if err := s.calendar.SyncSchedule(ctx, schedule.ShopDomain, schedule); err != nil && !errors.Is(err, domain.ErrNotFound) {
		s.logger.Warn().Err(err).
			Str("shop", schedule.ShopDomain).
			Str("schedule", schedule.ID.String()).
			Msg("Failed to sync pickup to calendar")
	}
}
