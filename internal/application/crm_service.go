package application

import (
	"context"
	"fmt"
	"strings"

	"pickupstand/internal/domain"
	"pickupstand/internal/ports"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// CRMService owns the local customer mirror and its notes.
type CRMService struct {
	customers ports.CustomerRepository
	notes     ports.NoteRepository
	schedules ports.ScheduleRepository
	sms       ports.SmsRepository
	shops     *ShopService
	shopify   ports.ShopifyClient
	logger    zerolog.Logger
}

// NewCRMService creates a new CRM service.
func NewCRMService(
	customers ports.CustomerRepository,
	notes ports.NoteRepository,
	schedules ports.ScheduleRepository,
	sms ports.SmsRepository,
	shops *ShopService,
	shopify ports.ShopifyClient,
	logger zerolog.Logger,
) *CRMService {
	return &CRMService{
		customers: customers,
		notes:     notes,
		schedules: schedules,
		sms:       sms,
		shops:     shops,
		shopify:   shopify,
		logger:    logger,
	}
}

// CustomerSync is the data upserted into the local mirror, sourced
// from a webhook payload or an Admin API fetch.
type CustomerSync struct {
	ShopifyCustomerID int64
	FirstName         string
	LastName          string
	Email             string
	Phone             string
	Tags              string
}

// SyncCustomer upserts the local customer from Shopify data.
func (s *CRMService) SyncCustomer(ctx context.Context, shopDomain string, data CustomerSync) (*domain.Customer, error) {
	id := data.ShopifyCustomerID
	customer := &domain.Customer{
		ShopDomain:        shopDomain,
		ShopifyCustomerID: &id,
		FirstName:         data.FirstName,
		LastName:          data.LastName,
		Email:             data.Email,
		Phone:             NormalizePhone(data.Phone),
		Tags:              data.Tags,
	}
	if err := s.customers.Upsert(ctx, customer); err != nil {
		return nil, fmt.Errorf("failed to sync customer: %w", err)
	}
	return customer, nil
}

// SyncCustomerFromShopify fetches a customer from the Admin API and
// upserts the local mirror.
func (s *CRMService) SyncCustomerFromShopify(ctx context.Context, shopDomain string, shopifyCustomerID int64) (*domain.Customer, error) {
	token, err := s.shops.AccessToken(ctx, shopDomain)
	if err != nil {
		return nil, err
	}
	remote, err := s.shopify.GetCustomer(ctx, shopDomain, token, shopifyCustomerID)
	if err != nil {
		s.logger.Error().Err(err).Str("shop", shopDomain).Int64("customerId", shopifyCustomerID).Msg("Failed to fetch customer from Shopify")
		return nil, fmt.Errorf("failed to fetch customer: %w", err)
	}
	return s.SyncCustomer(ctx, shopDomain, CustomerSync{
		ShopifyCustomerID: int64(remote.Id),
		FirstName:         remote.FirstName,
		LastName:          remote.LastName,
		Email:             remote.Email,
		Phone:             remote.Phone,
		Tags:              remote.Tags,
	})
}

// Search lists customers matching the query with paging.
func (s *CRMService) Search(ctx context.Context, shopDomain, query string, limit, offset int) ([]*domain.Customer, int64, error) {
	if limit <= 0 || limit > 100 {
		limit = 25
	}
	return s.customers.Search(ctx, shopDomain, query, limit, offset)
}

// Detail returns the customer detail aggregate: notes pinned-first,
// note count, recent pickups, and recent SMS. Last contact is the
// newest SMS timestamp.
func (s *CRMService) Detail(ctx context.Context, customerID uuid.UUID) (*domain.CustomerDetail, error) {
	customer, err := s.customers.GetByID(ctx, customerID)
	if err != nil {
		return nil, err
	}

	notes, err := s.notes.ListByCustomer(ctx, customerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list notes: %w", err)
	}
	count, err := s.notes.CountByCustomer(ctx, customerID)
	if err != nil {
		return nil, fmt.Errorf("failed to count notes: %w", err)
	}
	pickups, err := s.schedules.ListByCustomer(ctx, customerID, 5)
	if err != nil {
		return nil, fmt.Errorf("failed to list pickups: %w", err)
	}
	recentSms, err := s.sms.ListRecentByCustomer(ctx, customerID, 5)
	if err != nil {
		return nil, fmt.Errorf("failed to list sms: %w", err)
	}

	detail := &domain.CustomerDetail{
		Customer:      customer,
		Notes:         notes,
		NoteCount:     count,
		RecentPickups: pickups,
		RecentSms:     recentSms,
	}
	if len(recentSms) > 0 {
		detail.LastContactAt = &recentSms[0].CreatedAt
	}
	return detail, nil
}

// AddNote creates a note on a customer.
func (s *CRMService) AddNote(ctx context.Context, customerID uuid.UUID, body, author string) (*domain.CustomerNote, error) {
	if strings.TrimSpace(body) == "" {
		return nil, fmt.Errorf("note body cannot be empty")
	}
	if _, err := s.customers.GetByID(ctx, customerID); err != nil {
		return nil, err
	}
	note := &domain.CustomerNote{
		CustomerID: customerID,
		Body:       body,
		Author:     author,
	}
	if err := s.notes.Create(ctx, note); err != nil {
		return nil, err
	}
	return note, nil
}

// UpdateNote replaces a note's body.
func (s *CRMService) UpdateNote(ctx context.Context, noteID uuid.UUID, body string) (*domain.CustomerNote, error) {
	if strings.TrimSpace(body) == "" {
		return nil, fmt.Errorf("note body cannot be empty")
	}
	note, err := s.notes.Get(ctx, noteID)
	if err != nil {
		return nil, err
	}
	note.Body = body
	if err := s.notes.Update(ctx, note); err != nil {
		return nil, err
	}
	return note, nil
}

// SetNotePinned pins or unpins a note.
func (s *CRMService) SetNotePinned(ctx context.Context, noteID uuid.UUID, pinned bool) (*domain.CustomerNote, error) {
	note, err := s.notes.Get(ctx, noteID)
	if err != nil {
		return nil, err
	}
	note.Pinned = pinned
	if err := s.notes.Update(ctx, note); err != nil {
		return nil, err
	}
	return note, nil
}

// DeleteNote removes a note.
func (s *CRMService) DeleteNote(ctx context.Context, noteID uuid.UUID) error {
	return s.notes.Delete(ctx, noteID)
}

// NormalizePhone reduces a phone number to E.164. Ten-digit numbers
// are assumed NANP. Unparseable input passes through trimmed so data
// is never silently dropped.
func NormalizePhone(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	var digits strings.Builder
	for _, r := range raw {
		if r >= '0' && r <= '9' {
			digits.WriteRune(r)
		}
	}
	d := digits.String()
	switch {
	case len(d) == 10:
		return "+1" + d
	case len(d) == 11 && strings.HasPrefix(d, "1"):
		return "+" + d
	case strings.HasPrefix(raw, "+") && len(d) > 0:
		return "+" + d
	default:
		return raw
	}
}
