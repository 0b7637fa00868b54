package domain

import (
	"time"

	"github.com/google/uuid"
)

// PickupStatus is the lifecycle state of a pickup schedule.
type PickupStatus string

const (
	PickupStatusScheduled PickupStatus = "scheduled"
	PickupStatusPickedUp  PickupStatus = "picked_up"
	PickupStatusMissed    PickupStatus = "missed"
	PickupStatusCanceled  PickupStatus = "canceled"
)

// CanTransitionTo reports whether a schedule may move to the target
// status. Only scheduled pickups transition; terminal states are final.
func (s PickupStatus) CanTransitionTo(target PickupStatus) bool {
	if s != PickupStatusScheduled {
		return false
	}
	switch target {
	case PickupStatusPickedUp, PickupStatusMissed, PickupStatusCanceled:
		return true
	}
	return false
}

// PickupLocation is a named pickup point. CalendarID, when set, is the
// Google calendar that pickup events for this location sync into.
type PickupLocation struct {
	ID         uuid.UUID `json:"id" gorm:"type:uuid;primaryKey"`
	ShopDomain string    `json:"shop_domain" gorm:"index;not null"`
	Name       string    `json:"name" gorm:"not null"`
	Address    string    `json:"address"`
	CalendarID string    `json:"calendar_id"`
	Active     bool      `json:"active"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// TimeSlot is a weekly recurring pickup window at a location, e.g.
// Saturday "10:00 AM" – "12:00 PM" with capacity 20.
type TimeSlot struct {
	ID         uuid.UUID    `json:"id" gorm:"type:uuid;primaryKey"`
	LocationID uuid.UUID    `json:"location_id" gorm:"type:uuid;index;not null"`
	Weekday    time.Weekday `json:"weekday"`
	StartLabel string       `json:"start_label"`
	EndLabel   string       `json:"end_label"`
	Capacity   int          `json:"capacity"`
	Active     bool         `json:"active"`
	CreatedAt  time.Time    `json:"created_at"`
	UpdatedAt  time.Time    `json:"updated_at"`
}

// Label renders the slot as shown to customers ("10:00 AM – 12:00 PM").
func (t *TimeSlot) Label() string {
	return t.StartLabel + " – " + t.EndLabel
}

// BlackoutDate removes a date from pickup availability. A nil
// LocationID makes the blackout global for the shop.
type BlackoutDate struct {
	ID         uuid.UUID  `json:"id" gorm:"type:uuid;primaryKey"`
	ShopDomain string     `json:"shop_domain" gorm:"index;not null"`
	LocationID *uuid.UUID `json:"location_id,omitempty" gorm:"type:uuid"`
	Date       time.Time  `json:"date" gorm:"index;not null"`
	Reason     string     `json:"reason"`
	CreatedAt  time.Time  `json:"created_at"`
}

// PickupSchedule is one scheduled order pickup. CalendarEventID is set
// once the schedule has been synced to Google Calendar.
type PickupSchedule struct {
	ID              uuid.UUID    `json:"id" gorm:"type:uuid;primaryKey"`
	ShopDomain      string       `json:"shop_domain" gorm:"index;not null"`
	CustomerID      uuid.UUID    `json:"customer_id" gorm:"type:uuid;index;not null"`
	LocationID      *uuid.UUID   `json:"location_id,omitempty" gorm:"type:uuid"`
	SlotLabel       string       `json:"slot_label"`
	PickupDate      time.Time    `json:"pickup_date" gorm:"index;not null"`
	ShopifyOrderID  int64        `json:"shopify_order_id" gorm:"index"`
	OrderName       string       `json:"order_name"`
	Status          PickupStatus `json:"status" gorm:"default:scheduled"`
	CalendarEventID string       `json:"calendar_event_id"`
	CreatedAt       time.Time    `json:"created_at"`
	UpdatedAt       time.Time    `json:"updated_at"`
}
