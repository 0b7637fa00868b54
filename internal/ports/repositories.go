package ports

import (
	"context"
	"time"

	"pickupstand/internal/domain"

	"github.com/google/uuid"
)

// ShopRepository persists installed shops.
type ShopRepository interface {
	Save(ctx context.Context, shop *domain.Shop) error
	GetByDomain(ctx context.Context, shopDomain string) (*domain.Shop, error)
	List(ctx context.Context) ([]*domain.Shop, error)
	MarkUninstalled(ctx context.Context, shopDomain string) error
}

// InstallSessionRepository persists in-flight OAuth install sessions.
type InstallSessionRepository interface {
	Create(ctx context.Context, session *domain.InstallSession) error
	Get(ctx context.Context, state string) (*domain.InstallSession, error)
	Delete(ctx context.Context, state string) error
}

// CustomerRepository persists the local CRM customer mirror.
type CustomerRepository interface {
	Upsert(ctx context.Context, customer *domain.Customer) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Customer, error)
	GetByShopifyID(ctx context.Context, shopDomain string, shopifyCustomerID int64) (*domain.Customer, error)
	GetByPhone(ctx context.Context, shopDomain string, phone string) (*domain.Customer, error)
	Search(ctx context.Context, shopDomain string, query string, limit, offset int) ([]*domain.Customer, int64, error)
}

// NoteRepository persists CRM notes.
type NoteRepository interface {
	Create(ctx context.Context, note *domain.CustomerNote) error
	Get(ctx context.Context, id uuid.UUID) (*domain.CustomerNote, error)
	ListByCustomer(ctx context.Context, customerID uuid.UUID) ([]*domain.CustomerNote, error)
	CountByCustomer(ctx context.Context, customerID uuid.UUID) (int64, error)
	Update(ctx context.Context, note *domain.CustomerNote) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// PickupRepository persists locations, time slots, and blackout dates.
type PickupRepository interface {
	CreateLocation(ctx context.Context, loc *domain.PickupLocation) error
	UpdateLocation(ctx context.Context, loc *domain.PickupLocation) error
	DeleteLocation(ctx context.Context, id uuid.UUID) error
	GetLocation(ctx context.Context, id uuid.UUID) (*domain.PickupLocation, error)
	GetLocationByName(ctx context.Context, shopDomain, name string) (*domain.PickupLocation, error)
	ListLocations(ctx context.Context, shopDomain string, activeOnly bool) ([]*domain.PickupLocation, error)

	CreateSlot(ctx context.Context, slot *domain.TimeSlot) error
	UpdateSlot(ctx context.Context, slot *domain.TimeSlot) error
	DeleteSlot(ctx context.Context, id uuid.UUID) error
	ListSlotsByLocation(ctx context.Context, locationID uuid.UUID) ([]*domain.TimeSlot, error)

	CreateBlackout(ctx context.Context, b *domain.BlackoutDate) error
	DeleteBlackout(ctx context.Context, id uuid.UUID) error
	ListBlackouts(ctx context.Context, shopDomain string, from, to time.Time) ([]*domain.BlackoutDate, error)
}

// ScheduleRepository persists pickup schedules.
type ScheduleRepository interface {
	Create(ctx context.Context, s *domain.PickupSchedule) error
	Get(ctx context.Context, id uuid.UUID) (*domain.PickupSchedule, error)
	Update(ctx context.Context, s *domain.PickupSchedule) error
	ListByDate(ctx context.Context, shopDomain string, date time.Time) ([]*domain.PickupSchedule, error)
	ListByCustomer(ctx context.Context, customerID uuid.UUID, limit int) ([]*domain.PickupSchedule, error)
}

// OrderItemRepository persists line items captured from order webhooks.
type OrderItemRepository interface {
	CreateBatch(ctx context.Context, items []*domain.OrderItem) error
	ListByOrder(ctx context.Context, shopDomain string, shopifyOrderID int64) ([]*domain.OrderItem, error)
}

// SubscriptionRepository persists plan groups, per-shop config, and
// projected subscription pickups.
type SubscriptionRepository interface {
	SavePlanGroup(ctx context.Context, g *domain.SubscriptionPlanGroup) error
	GetPlanGroup(ctx context.Context, id uuid.UUID) (*domain.SubscriptionPlanGroup, error)
	DeletePlanGroup(ctx context.Context, id uuid.UUID) error
	ListPlanGroups(ctx context.Context, shopDomain string) ([]*domain.SubscriptionPlanGroup, error)
	FindFrequencyByPlanGID(ctx context.Context, shopDomain, planGID string) (*domain.SubscriptionPlanFrequency, error)
	FindFrequencyByPlanName(ctx context.Context, shopDomain, name string) (*domain.SubscriptionPlanFrequency, error)

	GetConfig(ctx context.Context, shopDomain string) (*domain.SellingPlanConfig, error)
	SaveConfig(ctx context.Context, cfg *domain.SellingPlanConfig) error

	CreatePickups(ctx context.Context, pickups []*domain.SubscriptionPickup) error
	ListPickupsByContract(ctx context.Context, shopDomain, contractGID string) ([]*domain.SubscriptionPickup, error)
	ListPickupsByCustomer(ctx context.Context, customerID uuid.UUID) ([]*domain.SubscriptionPickup, error)
	UpdatePickupStatusByContract(ctx context.Context, shopDomain, contractGID string, from, to domain.SubscriptionPickupStatus) (int64, error)
}

// WebhookEventRepository is the idempotency ledger. Insert returns
// domain.ErrDuplicate when the (shop, topic, shopify_id) tuple exists.
type WebhookEventRepository interface {
	Insert(ctx context.Context, event *domain.WebhookEvent) error
	MarkProcessed(ctx context.Context, id uuid.UUID) error
	MarkFailed(ctx context.Context, id uuid.UUID, reason string) error
	Get(ctx context.Context, shopDomain, topic, shopifyID string) (*domain.WebhookEvent, error)
}

// SmsRepository persists SMS conversation messages.
type SmsRepository interface {
	Create(ctx context.Context, msg *domain.SmsMessage) error
	UpdateStatusBySID(ctx context.Context, sid string, status domain.SmsStatus) error
	ListByCustomer(ctx context.Context, customerID uuid.UUID) ([]*domain.SmsMessage, error)
	ListRecentByCustomer(ctx context.Context, customerID uuid.UUID, limit int) ([]*domain.SmsMessage, error)
}

// CalendarAuthRepository persists per-shop Google OAuth grants.
type CalendarAuthRepository interface {
	Save(ctx context.Context, auth *domain.GoogleCalendarAuth) error
	GetByShop(ctx context.Context, shopDomain string) (*domain.GoogleCalendarAuth, error)
	Delete(ctx context.Context, shopDomain string) error
}
