package ports

import (
	"context"

	"pickupstand/internal/domain"
)

// CalendarClient defines the Google Calendar operations used for
// pickup-event sync. Methods take the shop's auth with the refresh
// token already decrypted; adapters refresh access tokens internally.
type CalendarClient interface {
	AuthCodeURL(state string) string
	Exchange(ctx context.Context, code string) (*domain.GoogleCalendarAuth, error)

	ListCalendars(ctx context.Context, auth *domain.GoogleCalendarAuth) ([]*domain.CalendarRef, error)
	CreateEvent(ctx context.Context, auth *domain.GoogleCalendarAuth, calendarID string, ev domain.CalendarEvent) (string, error)
	UpdateEvent(ctx context.Context, auth *domain.GoogleCalendarAuth, calendarID, eventID string, ev domain.CalendarEvent) error
	DeleteEvent(ctx context.Context, auth *domain.GoogleCalendarAuth, calendarID, eventID string) error
}
