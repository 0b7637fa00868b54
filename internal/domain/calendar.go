package domain

import (
	"time"

	"github.com/google/uuid"
)

// GoogleCalendarAuth holds a shop's Google OAuth2 grant. RefreshToken
// is stored AES-GCM encrypted; the application layer decrypts it before
// handing it to the calendar client.
type GoogleCalendarAuth struct {
	ID           uuid.UUID `json:"id" gorm:"type:uuid;primaryKey"`
	ShopDomain   string    `json:"shop_domain" gorm:"uniqueIndex;not null"`
	AccessToken  string    `json:"-"`
	RefreshToken string    `json:"-"`
	TokenExpiry  time.Time `json:"token_expiry"`
	CalendarID   string    `json:"calendar_id"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// CalendarEvent is the shape handed to the calendar client when syncing
// a pickup schedule.
type CalendarEvent struct {
	Summary     string
	Description string
	Start       time.Time
	End         time.Time
	Timezone    string
}

// CalendarRef is one entry from the shop's calendar list, used by the
// admin UI to pick a sync target.
type CalendarRef struct {
	ID      string `json:"id"`
	Summary string `json:"summary"`
	Primary bool   `json:"primary"`
}
