package application

import (
	"context"
	"fmt"
	"testing"

	"pickupstand/internal/domain"
	"pickupstand/internal/ports"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"pickupstand/internal/infrastructure/persistence"
)

const testShop = "test-shop.myshopify.com"

// newTestDB opens an in-memory SQLite database with the full schema.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)
	require.NoError(t, persistence.AutoMigrate(db))
	return db
}

// fakeShopifyClient satisfies ports.ShopifyClient; tests that never
// reach Shopify leave the embedded interface nil.
type fakeShopifyClient struct {
	ports.ShopifyClient
}

// plainCrypt is a pass-through encryption service for tests.
type plainCrypt struct{}

func (plainCrypt) Encrypt(plaintext string) (string, error)  { return plaintext, nil }
func (plainCrypt) Decrypt(ciphertext string) (string, error) { return ciphertext, nil }

// fakeCalendarClient records the events pushed to it.
type fakeCalendarClient struct {
	created []domain.CalendarEvent
	updated []domain.CalendarEvent
	deleted []string
	nextID  int
	fail    error
}

func (f *fakeCalendarClient) AuthCodeURL(state string) string {
	return "https://google.test/auth?state=" + state
}

func (f *fakeCalendarClient) Exchange(ctx context.Context, code string) (*domain.GoogleCalendarAuth, error) {
	return &domain.GoogleCalendarAuth{RefreshToken: "refresh-" + code}, nil
}

func (f *fakeCalendarClient) ListCalendars(ctx context.Context, auth *domain.GoogleCalendarAuth) ([]*domain.CalendarRef, error) {
	return []*domain.CalendarRef{{ID: "primary", Summary: "Main", Primary: true}}, nil
}

func (f *fakeCalendarClient) CreateEvent(ctx context.Context, auth *domain.GoogleCalendarAuth, calendarID string, ev domain.CalendarEvent) (string, error) {
	if f.fail != nil {
		return "", f.fail
	}
	f.created = append(f.created, ev)
	f.nextID++
	return fmt.Sprintf("event-%d", f.nextID), nil
}

func (f *fakeCalendarClient) UpdateEvent(ctx context.Context, auth *domain.GoogleCalendarAuth, calendarID, eventID string, ev domain.CalendarEvent) error {
	if f.fail != nil {
		return f.fail
	}
	f.updated = append(f.updated, ev)
	return nil
}

func (f *fakeCalendarClient) DeleteEvent(ctx context.Context, auth *domain.GoogleCalendarAuth, calendarID, eventID string) error {
	f.deleted = append(f.deleted, eventID)
	return nil
}

// fakeSmsClient records outbound sends.
type fakeSmsClient struct {
	sent []string
	fail error
}

func (f *fakeSmsClient) Send(ctx context.Context, to, body string) (string, string, error) {
	if f.fail != nil {
		return "", "", f.fail
	}
	f.sent = append(f.sent, body)
	return "SM" + to, "queued", nil
}

func (f *fakeSmsClient) ValidateSignature(url string, params map[string]string, signature string) bool {
	return true
}

// gormFixture bundles the repositories tests reach into directly.
type gormFixture struct {
	auths     ports.CalendarAuthRepository
	sessions  ports.InstallSessionRepository
	schedules ports.ScheduleRepository
	pickups   ports.PickupRepository
	customers ports.CustomerRepository
}

// seedShop installs a shop and returns a ShopService wired to the db.
func seedShop(t *testing.T, db *gorm.DB) *ShopService {
	t.Helper()
	shops := persistence.NewGormShopRepository(db)
	require.NoError(t, shops.Save(context.Background(), &domain.Shop{
		Domain:      testShop,
		AccessToken: "token",
		Timezone:    "America/New_York",
	}))
	return NewShopService(
		shops,
		persistence.NewGormInstallSessionRepository(db),
		persistence.NewGormCalendarAuthRepository(db),
		fakeShopifyClient{},
		plainCrypt{},
		zerolog.Nop(),
		"http://localhost:8080",
		"read_orders,read_customers",
		"America/New_York",
	)
}
