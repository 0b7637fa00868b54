package domain

import (
	"time"

	"github.com/google/uuid"
)

// SmsDirection distinguishes inbound from outbound messages.
type SmsDirection string

const (
	SmsInbound  SmsDirection = "inbound"
	SmsOutbound SmsDirection = "outbound"
)

// SmsStatus mirrors the Twilio delivery lifecycle for outbound
// messages; inbound messages are always "received".
type SmsStatus string

const (
	SmsStatusQueued    SmsStatus = "queued"
	SmsStatusSent      SmsStatus = "sent"
	SmsStatusDelivered SmsStatus = "delivered"
	SmsStatusFailed    SmsStatus = "failed"
	SmsStatusReceived  SmsStatus = "received"
)

// SmsMessage is one SMS in a customer conversation. TwilioSID is
// unique when present and keys status-callback updates.
type SmsMessage struct {
	ID         uuid.UUID    `json:"id" gorm:"type:uuid;primaryKey"`
	ShopDomain string       `json:"shop_domain" gorm:"index;not null"`
	CustomerID uuid.UUID    `json:"customer_id" gorm:"type:uuid;index;not null"`
	Direction  SmsDirection `json:"direction"`
	Body       string       `json:"body"`
	TwilioSID  *string      `json:"twilio_sid,omitempty" gorm:"column:twilio_sid;uniqueIndex"`
	Status     SmsStatus    `json:"status"`
	CreatedAt  time.Time    `json:"created_at"`
	UpdatedAt  time.Time    `json:"updated_at"`
}
