package webhook_handlers

import (
	"context"
	"fmt"
	"testing"
	"time"

	"pickupstand/internal/application"
	"pickupstand/internal/domain"
	"pickupstand/internal/infrastructure/persistence"
	"pickupstand/internal/ports"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

const testShop = "test-shop.myshopify.com"

type fakeShopifyClient struct {
	ports.ShopifyClient
}

type plainCrypt struct{}

func (plainCrypt) Encrypt(plaintext string) (string, error)  { return plaintext, nil }
func (plainCrypt) Decrypt(ciphertext string) (string, error) { return ciphertext, nil }

type fakeCalendarClient struct {
	created int
}

func (f *fakeCalendarClient) AuthCodeURL(state string) string { return "" }

func (f *fakeCalendarClient) Exchange(ctx context.Context, code string) (*domain.GoogleCalendarAuth, error) {
	return &domain.GoogleCalendarAuth{RefreshToken: "rt"}, nil
}

func (f *fakeCalendarClient) ListCalendars(ctx context.Context, auth *domain.GoogleCalendarAuth) ([]*domain.CalendarRef, error) {
	return nil, nil
}

func (f *fakeCalendarClient) CreateEvent(ctx context.Context, auth *domain.GoogleCalendarAuth, calendarID string, ev domain.CalendarEvent) (string, error) {
	f.created++
	return fmt.Sprintf("event-%d", f.created), nil
}

func (f *fakeCalendarClient) UpdateEvent(ctx context.Context, auth *domain.GoogleCalendarAuth, calendarID, eventID string, ev domain.CalendarEvent) error {
	return nil
}

func (f *fakeCalendarClient) DeleteEvent(ctx context.Context, auth *domain.GoogleCalendarAuth, calendarID, eventID string) error {
	return nil
}

// fixture wires the order handler against in-memory SQLite.
type fixture struct {
	handler       *OrderCreatedHandler
	shops         *application.ShopService
	customers     ports.CustomerRepository
	schedules     ports.ScheduleRepository
	orderItems    ports.OrderItemRepository
	subscriptions ports.SubscriptionRepository
	pickups       ports.PickupRepository
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)
	require.NoError(t, persistence.AutoMigrate(db))

	shopsRepo := persistence.NewGormShopRepository(db)
	require.NoError(t, shopsRepo.Save(context.Background(), &domain.Shop{
		Domain:      testShop,
		AccessToken: "token",
		Timezone:    "America/New_York",
	}))

	fix := &fixture{
		customers:     persistence.NewGormCustomerRepository(db),
		schedules:     persistence.NewGormScheduleRepository(db),
		orderItems:    persistence.NewGormOrderItemRepository(db),
		subscriptions: persistence.NewGormSubscriptionRepository(db),
		pickups:       persistence.NewGormPickupRepository(db),
	}
	fix.shops = application.NewShopService(
		shopsRepo,
		persistence.NewGormInstallSessionRepository(db),
		persistence.NewGormCalendarAuthRepository(db),
		fakeShopifyClient{},
		plainCrypt{},
		zerolog.Nop(),
		"http://localhost:8080",
		"read_orders",
		"America/New_York",
	)
	crm := application.NewCRMService(
		fix.customers,
		persistence.NewGormNoteRepository(db),
		fix.schedules,
		persistence.NewGormSmsRepository(db),
		fix.shops,
		fakeShopifyClient{},
		zerolog.Nop(),
	)
	calendar := application.NewCalendarService(
		persistence.NewGormCalendarAuthRepository(db),
		persistence.NewGormInstallSessionRepository(db),
		fix.schedules,
		fix.pickups,
		fix.customers,
		fix.shops,
		&fakeCalendarClient{},
		plainCrypt{},
		zerolog.Nop(),
	)
	fix.handler = NewOrderCreatedHandler(
		crm, calendar, fix.subscriptions, fix.schedules, fix.orderItems, fix.pickups, zerolog.Nop(),
	)
	return fix
}

func (f *fixture) event(topic string, payload string) *domain.WebhookEvent {
	return &domain.WebhookEvent{
		ShopDomain: testShop,
		Topic:      topic,
		ShopifyID:  "1",
		Payload:    []byte(payload),
	}
}

func (f *fixture) seedLocation(t *testing.T, name string) *domain.PickupLocation {
	t.Helper()
	loc := &domain.PickupLocation{ShopDomain: testShop, Name: name, Active: true}
	require.NoError(t, f.pickups.CreateLocation(context.Background(), loc))
	return loc
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
