package domain

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// IntervalUnit is the unit of a subscription delivery interval.
type IntervalUnit string

const (
	IntervalWeek  IntervalUnit = "week"
	IntervalMonth IntervalUnit = "month"
)

// Frequency is a parsed subscription frequency ("every 2 weeks").
type Frequency struct {
	Unit  IntervalUnit `json:"unit"`
	Count int          `json:"count"`
}

// Next returns the occurrence following from in the frequency's cadence.
func (f Frequency) Next(from time.Time) time.Time {
	switch f.Unit {
	case IntervalMonth:
		return from.AddDate(0, f.Count, 0)
	default:
		return from.AddDate(0, 0, 7*f.Count)
	}
}

// String renders the frequency in the form stored on note attributes.
func (f Frequency) String() string {
	if f.Count == 1 {
		return fmt.Sprintf("every %s", f.Unit)
	}
	return fmt.Sprintf("every %d %ss", f.Count, f.Unit)
}

// ParseFrequency parses the loose frequency strings that appear in
// order note attributes and selling plan names: "Weekly", "Bi-Weekly",
// "Every 2 Weeks", "Monthly", "Deliver every 1 month".
func ParseFrequency(raw string) (Frequency, error) {
	s := strings.ToLower(strings.TrimSpace(raw))
	if s == "" {
		return Frequency{}, fmt.Errorf("empty frequency")
	}

	switch {
	case strings.Contains(s, "biweekly"), strings.Contains(s, "bi-weekly"), strings.Contains(s, "bi weekly"):
		return Frequency{Unit: IntervalWeek, Count: 2}, nil
	case strings.Contains(s, "weekly"):
		return Frequency{Unit: IntervalWeek, Count: 1}, nil
	case strings.Contains(s, "monthly"):
		return Frequency{Unit: IntervalMonth, Count: 1}, nil
	}

	// "every N weeks" / "every N months", with the count optional
	fields := strings.Fields(s)
	count := 1
	unit := IntervalUnit("")
	for _, f := range fields {
		if n, err := strconv.Atoi(f); err == nil && n > 0 {
			count = n
			continue
		}
		switch strings.TrimSuffix(f, "s") {
		case "week", "wk":
			unit = IntervalWeek
		case "month", "mo":
			unit = IntervalMonth
		}
	}
	if unit == "" {
		return Frequency{}, fmt.Errorf("unrecognized frequency %q", raw)
	}
	return Frequency{Unit: unit, Count: count}, nil
}

// SubscriptionPlanGroup is the local record of a Shopify selling plan
// group. ShopifyGID is empty until the group has been created upstream.
type SubscriptionPlanGroup struct {
	ID           uuid.UUID                   `json:"id" gorm:"type:uuid;primaryKey"`
	ShopDomain   string                      `json:"shop_domain" gorm:"index;not null"`
	Name         string                      `json:"name" gorm:"not null"`
	MerchantCode string                      `json:"merchant_code"`
	ShopifyGID   string                      `json:"shopify_gid" gorm:"column:shopify_gid;index"`
	Frequencies  []SubscriptionPlanFrequency `json:"frequencies" gorm:"foreignKey:GroupID;constraint:OnDelete:CASCADE"`
	CreatedAt    time.Time                   `json:"created_at"`
	UpdatedAt    time.Time                   `json:"updated_at"`
}

// SubscriptionPlanFrequency is one delivery option inside a plan group.
type SubscriptionPlanFrequency struct {
	ID              uuid.UUID       `json:"id" gorm:"type:uuid;primaryKey"`
	GroupID         uuid.UUID       `json:"group_id" gorm:"type:uuid;index;not null"`
	IntervalUnit    IntervalUnit    `json:"interval_unit"`
	IntervalCount   int             `json:"interval_count"`
	DiscountPercent decimal.Decimal `json:"discount_percent" gorm:"type:numeric"`
	ShopifyGID      string          `json:"shopify_gid" gorm:"column:shopify_gid;index"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

// Frequency returns the frequency value of the plan option.
func (f *SubscriptionPlanFrequency) Frequency() Frequency {
	return Frequency{Unit: f.IntervalUnit, Count: f.IntervalCount}
}

// SellingPlanConfig is the per-shop tuning for subscription ingestion:
// how many pickups to project forward, which note-attribute names to
// recognize, and whether legacy selling-plan orders are handled.
type SellingPlanConfig struct {
	ID                 uuid.UUID `json:"id" gorm:"type:uuid;primaryKey"`
	ShopDomain         string    `json:"shop_domain" gorm:"uniqueIndex;not null"`
	ProjectionHorizon  int       `json:"projection_horizon"`
	DefaultFrequency   string    `json:"default_frequency"`
	DateAttribute      string    `json:"date_attribute"`
	TimeAttribute      string    `json:"time_attribute"`
	LocationAttribute  string    `json:"location_attribute"`
	FrequencyAttribute string    `json:"frequency_attribute"`
	HandleLegacyPlans  bool      `json:"handle_legacy_plans"`
	CreatedAt          time.Time `json:"created_at"`
	UpdatedAt          time.Time `json:"updated_at"`
}

// Default attribute names and projection horizon used when a shop has
// no explicit config row.
const (
	DefaultProjectionHorizon  = 8
	DefaultDateAttribute      = "Pickup Date"
	DefaultTimeAttribute      = "Pickup Time"
	DefaultLocationAttribute  = "Pickup Location"
	DefaultFrequencyAttribute = "Subscription Frequency"
)

// DefaultSellingPlanConfig returns the config applied when a shop has
// not customized anything.
func DefaultSellingPlanConfig(shopDomain string) *SellingPlanConfig {
	return &SellingPlanConfig{
		ShopDomain:         shopDomain,
		ProjectionHorizon:  DefaultProjectionHorizon,
		DefaultFrequency:   "weekly",
		DateAttribute:      DefaultDateAttribute,
		TimeAttribute:      DefaultTimeAttribute,
		LocationAttribute:  DefaultLocationAttribute,
		FrequencyAttribute: DefaultFrequencyAttribute,
		HandleLegacyPlans:  true,
	}
}

// Normalize fills zero-valued fields with defaults so half-filled
// config rows behave.
func (c *SellingPlanConfig) Normalize() {
	if c.ProjectionHorizon <= 0 {
		c.ProjectionHorizon = DefaultProjectionHorizon
	}
	if c.DateAttribute == "" {
		c.DateAttribute = DefaultDateAttribute
	}
	if c.TimeAttribute == "" {
		c.TimeAttribute = DefaultTimeAttribute
	}
	if c.LocationAttribute == "" {
		c.LocationAttribute = DefaultLocationAttribute
	}
	if c.FrequencyAttribute == "" {
		c.FrequencyAttribute = DefaultFrequencyAttribute
	}
	if c.DefaultFrequency == "" {
		c.DefaultFrequency = "weekly"
	}
}

// SubscriptionPickupStatus is the state of one projected occurrence.
type SubscriptionPickupStatus string

const (
	SubscriptionPickupProjected SubscriptionPickupStatus = "projected"
	SubscriptionPickupPaused    SubscriptionPickupStatus = "paused"
	SubscriptionPickupCanceled  SubscriptionPickupStatus = "canceled"
	SubscriptionPickupCompleted SubscriptionPickupStatus = "completed"
)

// SubscriptionPickup is one forward-projected pickup occurrence of a
// subscription. Sequence starts at 1 for the occurrence after the
// anchor pickup.
type SubscriptionPickup struct {
	ID            uuid.UUID                `json:"id" gorm:"type:uuid;primaryKey"`
	ShopDomain    string                   `json:"shop_domain" gorm:"index;not null"`
	ContractGID   string                   `json:"contract_gid" gorm:"column:contract_gid;index"`
	CustomerID    uuid.UUID                `json:"customer_id" gorm:"type:uuid;index;not null"`
	Sequence      int                      `json:"sequence"`
	ProjectedDate time.Time                `json:"projected_date" gorm:"index"`
	SlotLabel     string                   `json:"slot_label"`
	LocationID    *uuid.UUID               `json:"location_id,omitempty" gorm:"type:uuid"`
	Status        SubscriptionPickupStatus `json:"status" gorm:"default:projected"`
	CreatedAt     time.Time                `json:"created_at"`
	UpdatedAt     time.Time                `json:"updated_at"`
}
