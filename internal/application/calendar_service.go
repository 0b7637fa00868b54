package application

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"pickupstand/internal/domain"
	"pickupstand/internal/ports"

	"github.com/rs/zerolog"
)

// defaultPickupDuration is used when a slot label carries no end time.
const defaultPickupDuration = time.Hour

// CalendarService owns the Google Calendar integration: the per-shop
// OAuth grant and the pickup-event sync.
type CalendarService struct {
	auths     ports.CalendarAuthRepository
	sessions  ports.InstallSessionRepository
	schedules ports.ScheduleRepository
	pickups   ports.PickupRepository
	customers ports.CustomerRepository
	shops     *ShopService
	client    ports.CalendarClient
	crypt     ports.EncryptionService
	logger    zerolog.Logger
}

// NewCalendarService creates a new calendar service.
func NewCalendarService(
	auths ports.CalendarAuthRepository,
	sessions ports.InstallSessionRepository,
	schedules ports.ScheduleRepository,
	pickups ports.PickupRepository,
	customers ports.CustomerRepository,
	shops *ShopService,
	client ports.CalendarClient,
	crypt ports.EncryptionService,
	logger zerolog.Logger,
) *CalendarService {
	return &CalendarService{
		auths:     auths,
		sessions:  sessions,
		schedules: schedules,
		pickups:   pickups,
		customers: customers,
		shops:     shops,
		client:    client,
		crypt:     crypt,
		logger:    logger,
	}
}

// BeginAuth starts the Google OAuth flow for a shop and returns the
// consent URL. The state round-trips through the same session table the
// Shopify install uses.
func (s *CalendarService) BeginAuth(ctx context.Context, shopDomain, returnURL string) (string, error) {
	stateBytes := make([]byte, 16)
	if _, err := rand.Read(stateBytes); err != nil {
		return "", fmt.Errorf("failed to generate state: %w", err)
	}
	state := hex.EncodeToString(stateBytes)

	session := &domain.InstallSession{
		State:     state,
		Shop:      shopDomain,
		ReturnURL: returnURL,
		ExpiresAt: time.Now().Add(10 * time.Minute),
	}
	if err := s.sessions.Create(ctx, session); err != nil {
		return "", fmt.Errorf("failed to create auth session: %w", err)
	}
	return s.client.AuthCodeURL(state), nil
}

// CompleteAuth exchanges the consent code and stores the grant with the
// refresh token encrypted. Returns the shop domain and the return URL
// for the final redirect.
func (s *CalendarService) CompleteAuth(ctx context.Context, state, code string) (string, string, error) {
	session, err := s.sessions.Get(ctx, state)
	if err != nil {
		return "", "", fmt.Errorf("invalid or expired auth session: %w", err)
	}
	if session.Expired(time.Now()) {
		_ = s.sessions.Delete(ctx, state)
		return "", "", fmt.Errorf("auth session expired")
	}
	_ = s.sessions.Delete(ctx, state)

	auth, err := s.client.Exchange(ctx, code)
	if err != nil {
		s.logger.Error().Err(err).Str("shop", session.Shop).Msg("Failed to exchange Google auth code")
		return "", "", fmt.Errorf("failed to exchange auth code: %w", err)
	}

	encrypted, err := s.crypt.Encrypt(auth.RefreshToken)
	if err != nil {
		return "", "", fmt.Errorf("failed to encrypt refresh token: %w", err)
	}
	auth.RefreshToken = encrypted
	auth.ShopDomain = session.Shop
	if auth.CalendarID == "" {
		auth.CalendarID = "primary"
	}
	if err := s.auths.Save(ctx, auth); err != nil {
		return "", "", fmt.Errorf("failed to save calendar auth: %w", err)
	}

	s.logger.Info().Str("shop", session.Shop).Msg("Connected Google Calendar")
	return session.Shop, session.ReturnURL, nil
}

// Status reports whether the shop has a calendar connected and which
// calendar it syncs into.
func (s *CalendarService) Status(ctx context.Context, shopDomain string) (connected bool, calendarID string, err error) {
	auth, err := s.auths.GetByShop(ctx, shopDomain)
	if errors.Is(err, domain.ErrNotFound) {
		return false, "", nil
	}
	if err != nil {
		return false, "", err
	}
	return true, auth.CalendarID, nil
}

// ListCalendars lists the calendars on the connected account.
func (s *CalendarService) ListCalendars(ctx context.Context, shopDomain string) ([]*domain.CalendarRef, error) {
	auth, err := s.decryptedAuth(ctx, shopDomain)
	if err != nil {
		return nil, err
	}
	return s.client.ListCalendars(ctx, auth)
}

// SelectCalendar sets the shop-level sync target calendar.
func (s *CalendarService) SelectCalendar(ctx context.Context, shopDomain, calendarID string) error {
	auth, err := s.auths.GetByShop(ctx, shopDomain)
	if err != nil {
		return err
	}
	auth.CalendarID = calendarID
	return s.auths.Save(ctx, auth)
}

// Disconnect removes the shop's Google grant. Existing events are left
// on the calendar.
func (s *CalendarService) Disconnect(ctx context.Context, shopDomain string) error {
	return s.auths.Delete(ctx, shopDomain)
}

// SyncSchedule creates or updates the calendar event for a pickup
// schedule and persists the event id. A shop with no calendar connected
// is a no-op, not an error.
func (s *CalendarService) SyncSchedule(ctx context.Context, shopDomain string, schedule *domain.PickupSchedule) error {
	auth, err := s.decryptedAuth(ctx, shopDomain)
	if errors.Is(err, domain.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}

	shop, err := s.shops.Get(ctx, shopDomain)
	if err != nil {
		return err
	}
	customer, err := s.customers.GetByID(ctx, schedule.CustomerID)
	if err != nil {
		return err
	}

	calendarID := auth.CalendarID
	var locationName string
	if schedule.LocationID != nil {
		if loc, err := s.pickups.GetLocation(ctx, *schedule.LocationID); err == nil {
			locationName = loc.Name
			if loc.CalendarID != "" {
				calendarID = loc.CalendarID
			}
		}
	}

	start, end := eventWindow(schedule.PickupDate, schedule.SlotLabel, shop.Location())
	event := domain.CalendarEvent{
		Summary:  "Pickup: " + customer.DisplayName(),
		Start:    start,
		End:      end,
		Timezone: shop.Timezone,
	}
	var desc strings.Builder
	if schedule.OrderName != "" {
		fmt.Fprintf(&desc, "Order %s\n", schedule.OrderName)
	}
	if locationName != "" {
		fmt.Fprintf(&desc, "Location: %s\n", locationName)
	}
	if customer.Phone != "" {
		fmt.Fprintf(&desc, "Phone: %s\n", customer.Phone)
	}
	event.Description = desc.String()

	if schedule.CalendarEventID != "" {
		if err := s.client.UpdateEvent(ctx, auth, calendarID, schedule.CalendarEventID, event); err != nil {
			return fmt.Errorf("failed to update calendar event: %w", err)
		}
		return nil
	}

	eventID, err := s.client.CreateEvent(ctx, auth, calendarID, event)
	if err != nil {
		return fmt.Errorf("failed to create calendar event: %w", err)
	}
	schedule.CalendarEventID = eventID
	if err := s.schedules.Update(ctx, schedule); err != nil {
		return fmt.Errorf("failed to persist calendar event id: %w", err)
	}
	return nil
}

// DeleteScheduleEvent removes the calendar event for a schedule, if one
// was ever created.
func (s *CalendarService) DeleteScheduleEvent(ctx context.Context, shopDomain string, schedule *domain.PickupSchedule) error {
	if schedule.CalendarEventID == "" {
		return nil
	}
	auth, err := s.decryptedAuth(ctx, shopDomain)
	if errors.Is(err, domain.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}

	calendarID := auth.CalendarID
	if schedule.LocationID != nil {
		if loc, err := s.pickups.GetLocation(ctx, *schedule.LocationID); err == nil && loc.CalendarID != "" {
			calendarID = loc.CalendarID
		}
	}
	if err := s.client.DeleteEvent(ctx, auth, calendarID, schedule.CalendarEventID); err != nil {
		return fmt.Errorf("failed to delete calendar event: %w", err)
	}
	schedule.CalendarEventID = ""
	return s.schedules.Update(ctx, schedule)
}

func (s *CalendarService) decryptedAuth(ctx context.Context, shopDomain string) (*domain.GoogleCalendarAuth, error) {
	auth, err := s.auths.GetByShop(ctx, shopDomain)
	if err != nil {
		return nil, err
	}
	refreshToken, err := s.crypt.Decrypt(auth.RefreshToken)
	if err != nil {
		return nil, fmt.Errorf("failed to decrypt refresh token: %w", err)
	}
	out := *auth
	out.RefreshToken = refreshToken
	return &out, nil
}

// Slot labels come from note attributes, so the time formats vary.
var slotTimeLayouts = []string{"3:04 PM", "3:04PM", "15:04", "3 PM", "3PM"}

func parseSlotTime(raw string) (time.Duration, bool) {
	raw = strings.TrimSpace(raw)
	for _, layout := range slotTimeLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return time.Duration(t.Hour())*time.Hour + time.Duration(t.Minute())*time.Minute, true
		}
	}
	return 0, false
}

// eventWindow resolves a pickup date plus a slot label like
// "10:00 AM – 12:00 PM" (or just "10:00 AM") into concrete event times
// in the shop's timezone. An unparseable label falls back to 9 AM.
func eventWindow(date time.Time, slotLabel string, loc *time.Location) (time.Time, time.Time) {
	day := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, loc)

	startOffset := 9 * time.Hour
	endOffset := startOffset + defaultPickupDuration

	parts := strings.FieldsFunc(slotLabel, func(r rune) bool { return r == '–' || r == '-' })
	if len(parts) > 0 {
		if d, ok := parseSlotTime(parts[0]); ok {
			startOffset = d
			endOffset = d + defaultPickupDuration
		}
	}
	if len(parts) > 1 {
		if d, ok := parseSlotTime(parts[len(parts)-1]); ok && d > startOffset {
			endOffset = d
		}
	}
	return day.Add(startOffset), day.Add(endOffset)
}
