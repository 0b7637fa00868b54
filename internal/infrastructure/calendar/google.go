package calendar

import (
	"context"
	"fmt"

	"pickupstand/internal/domain"
	"pickupstand/internal/ports"

	"github.com/rs/zerolog"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	gcal "google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"
)

// GoogleClient adapts the Google Calendar API to the CalendarClient
// port. The oauth2 TokenSource refreshes access tokens from the
// stored refresh token transparently on use.
type GoogleClient struct {
	conf   *oauth2.Config
	logger zerolog.Logger
}

// NewGoogleClient creates a calendar adapter for the app's OAuth
// client. redirectURI must match the Google console configuration.
func NewGoogleClient(clientID, clientSecret, redirectURI string, logger zerolog.Logger) ports.CalendarClient {
	return &GoogleClient{
		conf: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			RedirectURL:  redirectURI,
			Scopes:       []string{gcal.CalendarScope},
			Endpoint:     google.Endpoint,
		},
		logger: logger,
	}
}

// AuthCodeURL builds the consent URL. Offline access plus forced
// approval so Google always returns a refresh token.
func (c *GoogleClient) AuthCodeURL(state string) string {
	return c.conf.AuthCodeURL(state, oauth2.AccessTypeOffline, oauth2.ApprovalForce)
}

// Exchange trades the authorization code for tokens.
func (c *GoogleClient) Exchange(ctx context.Context, code string) (*domain.GoogleCalendarAuth, error) {
	tok, err := c.conf.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("failed to exchange google auth code: %w", err)
	}
	if tok.RefreshToken == "" {
		return nil, fmt.Errorf("google did not return a refresh token")
	}
	return &domain.GoogleCalendarAuth{
		AccessToken:  tok.AccessToken,
		RefreshToken: tok.RefreshToken,
		TokenExpiry:  tok.Expiry,
	}, nil
}

func (c *GoogleClient) service(ctx context.Context, auth *domain.GoogleCalendarAuth) (*gcal.Service, error) {
	tok := &oauth2.Token{
		AccessToken:  auth.AccessToken,
		RefreshToken: auth.RefreshToken,
		Expiry:       auth.TokenExpiry,
	}
	svc, err := gcal.NewService(ctx, option.WithTokenSource(c.conf.TokenSource(ctx, tok)))
	if err != nil {
		return nil, fmt.Errorf("failed to create calendar service: %w", err)
	}
	return svc, nil
}

// ListCalendars returns the calendars visible to the grant.
func (c *GoogleClient) ListCalendars(ctx context.Context, auth *domain.GoogleCalendarAuth) ([]*domain.CalendarRef, error) {
	svc, err := c.service(ctx, auth)
	if err != nil {
		return nil, err
	}
	list, err := svc.CalendarList.List().Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("failed to list calendars: %w", err)
	}

	refs := make([]*domain.CalendarRef, 0, len(list.Items))
	for _, item := range list.Items {
		refs = append(refs, &domain.CalendarRef{
			ID:      item.Id,
			Summary: item.Summary,
			Primary: item.Primary,
		})
	}
	return refs, nil
}

func toGoogleEvent(ev domain.CalendarEvent) *gcal.Event {
	return &gcal.Event{
		Summary:     ev.Summary,
		Description: ev.Description,
		Start: &gcal.EventDateTime{
			DateTime: ev.Start.Format("2006-01-02T15:04:05"),
			TimeZone: ev.Timezone,
		},
		End: &gcal.EventDateTime{
			DateTime: ev.End.Format("2006-01-02T15:04:05"),
			TimeZone: ev.Timezone,
		},
	}
}

// CreateEvent inserts an event and returns its ID.
func (c *GoogleClient) CreateEvent(ctx context.Context, auth *domain.GoogleCalendarAuth, calendarID string, ev domain.CalendarEvent) (string, error) {
	svc, err := c.service(ctx, auth)
	if err != nil {
		return "", err
	}
	created, err := svc.Events.Insert(calendarID, toGoogleEvent(ev)).Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("failed to create calendar event: %w", err)
	}
	return created.Id, nil
}

// UpdateEvent rewrites an existing event.
func (c *GoogleClient) UpdateEvent(ctx context.Context, auth *domain.GoogleCalendarAuth, calendarID, eventID string, ev domain.CalendarEvent) error {
	svc, err := c.service(ctx, auth)
	if err != nil {
		return err
	}
	if _, err := svc.Events.Update(calendarID, eventID, toGoogleEvent(ev)).Context(ctx).Do(); err != nil {
		return fmt.Errorf("failed to update calendar event: %w", err)
	}
	return nil
}

// DeleteEvent removes an event.
func (c *GoogleClient) DeleteEvent(ctx context.Context, auth *domain.GoogleCalendarAuth, calendarID, eventID string) error {
	svc, err := c.service(ctx, auth)
	if err != nil {
		return err
	}
	if err := svc.Events.Delete(calendarID, eventID).Context(ctx).Do(); err != nil {
		return fmt.Errorf("failed to delete calendar event: %w", err)
	}
	return nil
}
