package application

import (
	"context"
	"testing"
	"time"

	"pickupstand/internal/domain"
	"pickupstand/internal/infrastructure/cache"
	"pickupstand/internal/infrastructure/persistence"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newPickupFixture(t *testing.T, cutoffHour int) (*PickupService, *gormFixture, *fakeCalendarClient) {
	db := newTestDB(t)
	shops := seedShop(t, db)
	fix := &gormFixture{
		auths:     persistence.NewGormCalendarAuthRepository(db),
		sessions:  persistence.NewGormInstallSessionRepository(db),
		schedules: persistence.NewGormScheduleRepository(db),
		pickups:   persistence.NewGormPickupRepository(db),
		customers: persistence.NewGormCustomerRepository(db),
	}
	calClient := &fakeCalendarClient{}
	calendar := NewCalendarService(
		fix.auths, fix.sessions, fix.schedules, fix.pickups, fix.customers,
		shops, calClient, plainCrypt{}, zerolog.Nop(),
	)
	svc := NewPickupService(
		fix.pickups, fix.schedules, fix.customers, shops, calendar,
		cache.NoopCache{}, zerolog.Nop(), cutoffHour, time.Minute,
	)
	return svc, fix, calClient
}

// nextWeekday returns the first day strictly after `after` falling on
// the given weekday, truncated to midnight UTC.
func nextWeekday(after time.Time, weekday time.Weekday) time.Time {
	d := time.Date(after.Year(), after.Month(), after.Day(), 0, 0, 0, 0, time.UTC).AddDate(0, 0, 1)
	for d.Weekday() != weekday {
		d = d.AddDate(0, 0, 1)
	}
	return d
}

func seedLocation(t *testing.T, svc *PickupService, name string, weekday time.Weekday) *domain.PickupLocation {
	t.Helper()
	ctx := context.Background()
	loc := &domain.PickupLocation{ShopDomain: testShop, Name: name, Active: true}
	require.NoError(t, svc.CreateLocation(ctx, loc))
	require.NoError(t, svc.CreateSlot(ctx, &domain.TimeSlot{
		LocationID: loc.ID,
		Weekday:    weekday,
		StartLabel: "10:00 AM",
		EndLabel:   "12:00 PM",
		Capacity:   20,
		Active:     true,
	}))
	return loc
}

func TestAvailabilityListsSlotDays(t *testing.T) {
	svc, _, _ := newPickupFixture(t, 12)
	ctx := context.Background()
	seedLocation(t, svc, "Farm Stand", time.Saturday)

	from := nextWeekday(time.Now().AddDate(0, 0, 7), time.Monday)
	days, err := svc.Availability(ctx, testShop, nil, from, 7)
	require.NoError(t, err)

	require.Len(t, days, 1)
	saturday := nextWeekday(from.AddDate(0, 0, -1), time.Saturday)
	assert.Equal(t, saturday.Format("2006-01-02"), days[0].Date)
	require.Len(t, days[0].Options, 1)
	assert.Equal(t, "Farm Stand", days[0].Options[0].LocationName)
	assert.Equal(t, "10:00 AM – 12:00 PM", days[0].Options[0].Label)
	assert.Equal(t, 20, days[0].Options[0].Capacity)
}

func TestAvailabilityGlobalBlackoutRemovesDay(t *testing.T) {
	svc, _, _ := newPickupFixture(t, 12)
	ctx := context.Background()
	seedLocation(t, svc, "Farm Stand", time.Saturday)

	from := nextWeekday(time.Now().AddDate(0, 0, 7), time.Monday)
	saturday := nextWeekday(from.AddDate(0, 0, -1), time.Saturday)
	require.NoError(t, svc.CreateBlackout(ctx, &domain.BlackoutDate{
		ShopDomain: testShop,
		Date:       saturday,
		Reason:     "market closed",
	}))

	days, err := svc.Availability(ctx, testShop, nil, from, 7)
	require.NoError(t, err)
	assert.Empty(t, days)
}

func TestAvailabilityLocationBlackoutOnlyRemovesThatLocation(t *testing.T) {
	svc, _, _ := newPickupFixture(t, 12)
	ctx := context.Background()
	farm := seedLocation(t, svc, "Farm Stand", time.Saturday)
	seedLocation(t, svc, "Market Booth", time.Saturday)

	from := nextWeekday(time.Now().AddDate(0, 0, 7), time.Monday)
	saturday := nextWeekday(from.AddDate(0, 0, -1), time.Saturday)
	require.NoError(t, svc.CreateBlackout(ctx, &domain.BlackoutDate{
		ShopDomain: testShop,
		LocationID: &farm.ID,
		Date:       saturday,
	}))

	days, err := svc.Availability(ctx, testShop, nil, from, 7)
	require.NoError(t, err)
	require.Len(t, days, 1)
	require.Len(t, days[0].Options, 1)
	assert.Equal(t, "Market Booth", days[0].Options[0].LocationName)
}

func TestAvailabilitySameDayCutoff(t *testing.T) {
	ctx := context.Background()

	// Cutoff hour 0 always excludes today; 24 never does.
	svc, _, _ := newPickupFixture(t, 0)
	seedLocation(t, svc, "Farm Stand", time.Now().Weekday())

	days, err := svc.Availability(ctx, testShop, nil, time.Time{}, 1)
	require.NoError(t, err)
	assert.Empty(t, days)

	svc, _, _ = newPickupFixture(t, 24)
	seedLocation(t, svc, "Farm Stand", time.Now().Weekday())

	days, err = svc.Availability(ctx, testShop, nil, time.Time{}, 1)
	require.NoError(t, err)
	assert.Len(t, days, 1)
}

func TestAvailabilityInactiveExcluded(t *testing.T) {
	svc, _, _ := newPickupFixture(t, 12)
	ctx := context.Background()
	loc := seedLocation(t, svc, "Farm Stand", time.Saturday)

	loc.Active = false
	require.NoError(t, svc.UpdateLocation(ctx, loc))

	from := nextWeekday(time.Now().AddDate(0, 0, 7), time.Monday)
	days, err := svc.Availability(ctx, testShop, nil, from, 7)
	require.NoError(t, err)
	assert.Empty(t, days)
}

func TestScheduleStatusTransitions(t *testing.T) {
	svc, fix, _ := newPickupFixture(t, 12)
	ctx := context.Background()

	customer := &domain.Customer{ShopDomain: testShop, FirstName: "Ada"}
	require.NoError(t, fix.customers.Upsert(ctx, customer))

	schedule := &domain.PickupSchedule{
		ShopDomain: testShop,
		CustomerID: customer.ID,
		PickupDate: nextWeekday(time.Now(), time.Saturday),
	}
	require.NoError(t, svc.CreateSchedule(ctx, schedule))
	assert.Equal(t, domain.PickupStatusScheduled, schedule.Status)

	updated, err := svc.UpdateStatus(ctx, schedule.ID, domain.PickupStatusPickedUp)
	require.NoError(t, err)
	assert.Equal(t, domain.PickupStatusPickedUp, updated.Status)

	// Terminal states reject further transitions.
	_, err = svc.UpdateStatus(ctx, schedule.ID, domain.PickupStatusMissed)
	require.Error(t, err)
}

func TestReschedule(t *testing.T) {
	svc, fix, _ := newPickupFixture(t, 12)
	ctx := context.Background()

	customer := &domain.Customer{ShopDomain: testShop, FirstName: "Ada"}
	require.NoError(t, fix.customers.Upsert(ctx, customer))

	original := nextWeekday(time.Now(), time.Saturday)
	schedule := &domain.PickupSchedule{
		ShopDomain: testShop,
		CustomerID: customer.ID,
		PickupDate: original,
		SlotLabel:  "10:00 AM – 12:00 PM",
	}
	require.NoError(t, svc.CreateSchedule(ctx, schedule))

	moved, err := svc.Reschedule(ctx, schedule.ID, original.AddDate(0, 0, 7), "", nil)
	require.NoError(t, err)
	assert.Equal(t, original.AddDate(0, 0, 7).Format("2006-01-02"), moved.PickupDate.Format("2006-01-02"))
	assert.Equal(t, "10:00 AM – 12:00 PM", moved.SlotLabel)

	// Picked-up pickups cannot move.
	_, err = svc.UpdateStatus(ctx, schedule.ID, domain.PickupStatusPickedUp)
	require.NoError(t, err)
	_, err = svc.Reschedule(ctx, schedule.ID, original.AddDate(0, 0, 14), "", nil)
	require.Error(t, err)
}

func TestDayView(t *testing.T) {
	svc, fix, _ := newPickupFixture(t, 12)
	ctx := context.Background()

	customer := &domain.Customer{ShopDomain: testShop, FirstName: "Ada", LastName: "Lovelace"}
	require.NoError(t, fix.customers.Upsert(ctx, customer))

	day := nextWeekday(time.Now(), time.Saturday)
	require.NoError(t, svc.CreateSchedule(ctx, &domain.PickupSchedule{
		ShopDomain: testShop,
		CustomerID: customer.ID,
		PickupDate: day,
	}))
	require.NoError(t, svc.CreateSchedule(ctx, &domain.PickupSchedule{
		ShopDomain: testShop,
		CustomerID: customer.ID,
		PickupDate: day.AddDate(0, 0, 7),
	}))

	view, err := svc.DayView(ctx, testShop, day)
	require.NoError(t, err)
	require.Len(t, view, 1)
	require.NotNil(t, view[0].Customer)
	assert.Equal(t, "Ada Lovelace", view[0].Customer.DisplayName())
}
