package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Customer is the local CRM mirror of a Shopify customer. One row per
// (shop_domain, shopify_customer_id). ShopifyCustomerID is nil for
// bare customers created from an unknown inbound SMS number; the
// unique index ignores NULLs so those never collide.
type Customer struct {
	ID                uuid.UUID `json:"id" gorm:"type:uuid;primaryKey"`
	ShopDomain        string    `json:"shop_domain" gorm:"uniqueIndex:idx_customers_shop_shopify_id;not null"`
	ShopifyCustomerID *int64    `json:"shopify_customer_id,omitempty" gorm:"uniqueIndex:idx_customers_shop_shopify_id"`
	FirstName         string    `json:"first_name"`
	LastName          string    `json:"last_name"`
	Email             string    `json:"email" gorm:"index"`
	Phone             string    `json:"phone" gorm:"index"`
	Tags              string    `json:"tags"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

// DisplayName returns "First Last", falling back to email or phone for
// bare customers created from inbound SMS.
func (c *Customer) DisplayName() string {
	name := strings.TrimSpace(c.FirstName + " " + c.LastName)
	if name != "" {
		return name
	}
	if c.Email != "" {
		return c.Email
	}
	return c.Phone
}

// CustomerNote is a free-text CRM note attached to a customer.
type CustomerNote struct {
	ID         uuid.UUID `json:"id" gorm:"type:uuid;primaryKey"`
	CustomerID uuid.UUID `json:"customer_id" gorm:"type:uuid;index;not null"`
	Body       string    `json:"body" gorm:"not null"`
	Author     string    `json:"author"`
	Pinned     bool      `json:"pinned"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// CustomerDetail is the read-side aggregate served by the customer
// detail endpoint: the customer plus derived counts and recent activity.
type CustomerDetail struct {
	Customer      *Customer         `json:"customer"`
	Notes         []*CustomerNote   `json:"notes"`
	NoteCount     int64             `json:"note_count"`
	RecentPickups []*PickupSchedule `json:"recent_pickups"`
	RecentSms     []*SmsMessage     `json:"recent_sms"`
	LastContactAt *time.Time        `json:"last_contact_at,omitempty"`
}
