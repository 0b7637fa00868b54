package domain

import (
	"time"

	"github.com/google/uuid"
)

// Shop represents an installed Shopify shop. AccessToken is stored
// AES-GCM encrypted; the application layer decrypts it on read.
type Shop struct {
	ID            uuid.UUID  `json:"id" gorm:"type:uuid;primaryKey"`
	Domain        string     `json:"domain" gorm:"uniqueIndex;not null"`
	AccessToken   string     `json:"-" gorm:"column:access_token"`
	Scopes        string     `json:"scopes"`
	Timezone      string     `json:"timezone"`
	Uninstalled   bool       `json:"uninstalled"`
	UninstalledAt *time.Time `json:"uninstalled_at,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

// Location returns the shop's IANA timezone, falling back to UTC.
func (s *Shop) Location() *time.Location {
	if s.Timezone != "" {
		if loc, err := time.LoadLocation(s.Timezone); err == nil {
			return loc
		}
	}
	return time.UTC
}

// InstallSession represents an in-flight OAuth install. The state token
// doubles as the primary key; sessions expire after a few minutes.
type InstallSession struct {
	State     string    `json:"state" gorm:"primaryKey"`
	Shop      string    `json:"shop" gorm:"not null"`
	Scopes    string    `json:"scopes"`
	ReturnURL string    `json:"return_url"`
	ExpiresAt time.Time `json:"expires_at"`
	CreatedAt time.Time `json:"created_at"`
}

// Expired reports whether the session is past its expiry.
func (s *InstallSession) Expired(now time.Time) bool {
	return now.After(s.ExpiresAt)
}
