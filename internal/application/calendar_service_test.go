package application

import (
	"context"
	"testing"
	"time"

	"pickupstand/internal/domain"
	"pickupstand/internal/infrastructure/persistence"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEventWindow(t *testing.T) {
	tz, err := time.LoadLocation("America/New_York")
	require.NoError(t, err)
	day := time.Date(2026, time.March, 7, 0, 0, 0, 0, time.UTC)

	start, end := eventWindow(day, "10:00 AM – 12:00 PM", tz)
	assert.Equal(t, 10, start.Hour())
	assert.Equal(t, 12, end.Hour())
	assert.Equal(t, tz, start.Location())

	// Start only: default one-hour window.
	start, end = eventWindow(day, "2:30 PM", tz)
	assert.Equal(t, 14, start.Hour())
	assert.Equal(t, 30, start.Minute())
	assert.Equal(t, time.Hour, end.Sub(start))

	// Unparseable labels fall back to morning.
	start, end = eventWindow(day, "whenever", tz)
	assert.Equal(t, 9, start.Hour())
	assert.Equal(t, time.Hour, end.Sub(start))
}

func newCalendarFixture(t *testing.T) (*CalendarService, *fakeCalendarClient, *ShopService, *gormFixture) {
	db := newTestDB(t)
	shops := seedShop(t, db)
	client := &fakeCalendarClient{}
	fix := &gormFixture{
		auths:     persistence.NewGormCalendarAuthRepository(db),
		sessions:  persistence.NewGormInstallSessionRepository(db),
		schedules: persistence.NewGormScheduleRepository(db),
		pickups:   persistence.NewGormPickupRepository(db),
		customers: persistence.NewGormCustomerRepository(db),
	}
	svc := NewCalendarService(
		fix.auths,
		fix.sessions,
		fix.schedules,
		fix.pickups,
		fix.customers,
		shops,
		client,
		plainCrypt{},
		zerolog.Nop(),
	)
	return svc, client, shops, fix
}

func connectCalendar(t *testing.T, svc *CalendarService) {
	t.Helper()
	ctx := context.Background()
	url, err := svc.BeginAuth(ctx, testShop, "/settings")
	require.NoError(t, err)
	state := url[len("https://google.test/auth?state="):]
	shop, returnURL, err := svc.CompleteAuth(ctx, state, "code-1")
	require.NoError(t, err)
	assert.Equal(t, testShop, shop)
	assert.Equal(t, "/settings", returnURL)
}

func TestCalendarAuthRoundTrip(t *testing.T) {
	svc, _, _, _ := newCalendarFixture(t)
	ctx := context.Background()

	connected, _, err := svc.Status(ctx, testShop)
	require.NoError(t, err)
	assert.False(t, connected)

	connectCalendar(t, svc)

	connected, calendarID, err := svc.Status(ctx, testShop)
	require.NoError(t, err)
	assert.True(t, connected)
	assert.Equal(t, "primary", calendarID)

	require.NoError(t, svc.Disconnect(ctx, testShop))
	connected, _, err = svc.Status(ctx, testShop)
	require.NoError(t, err)
	assert.False(t, connected)
}

func TestCalendarSyncSchedule(t *testing.T) {
	svc, client, _, fix := newCalendarFixture(t)
	ctx := context.Background()
	connectCalendar(t, svc)

	customer := &domain.Customer{ShopDomain: testShop, FirstName: "Ada", LastName: "Lovelace", Phone: "+15551234567"}
	require.NoError(t, fix.customers.Upsert(ctx, customer))

	schedule := &domain.PickupSchedule{
		ShopDomain: testShop,
		CustomerID: customer.ID,
		SlotLabel:  "10:00 AM – 12:00 PM",
		PickupDate: time.Date(2026, time.March, 7, 0, 0, 0, 0, time.UTC),
		OrderName:  "#1001",
	}
	require.NoError(t, fix.schedules.Create(ctx, schedule))

	require.NoError(t, svc.SyncSchedule(ctx, testShop, schedule))
	require.Len(t, client.created, 1)
	assert.Equal(t, "Pickup: Ada Lovelace", client.created[0].Summary)
	assert.Contains(t, client.created[0].Description, "#1001")
	assert.NotEmpty(t, schedule.CalendarEventID)

	// Second sync updates instead of duplicating.
	require.NoError(t, svc.SyncSchedule(ctx, testShop, schedule))
	assert.Len(t, client.created, 1)
	assert.Len(t, client.updated, 1)

	require.NoError(t, svc.DeleteScheduleEvent(ctx, testShop, schedule))
	assert.Len(t, client.deleted, 1)
	assert.Empty(t, schedule.CalendarEventID)
}

func TestCalendarSyncWithoutGrantIsNoop(t *testing.T) {
	svc, client, _, fix := newCalendarFixture(t)
	ctx := context.Background()

	customer := &domain.Customer{ShopDomain: testShop, FirstName: "Ada"}
	require.NoError(t, fix.customers.Upsert(ctx, customer))
	schedule := &domain.PickupSchedule{
		ShopDomain: testShop,
		CustomerID: customer.ID,
		PickupDate: time.Date(2026, time.March, 7, 0, 0, 0, 0, time.UTC),
	}
	require.NoError(t, fix.schedules.Create(ctx, schedule))

	require.NoError(t, svc.SyncSchedule(ctx, testShop, schedule))
	assert.Empty(t, client.created)
}
