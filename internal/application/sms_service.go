package application

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"pickupstand/internal/domain"
	"pickupstand/internal/ports"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// SmsService owns the SMS conversation log: outbound sends, inbound
// webhook ingestion, and delivery status callbacks.
type SmsService struct {
	sms       ports.SmsRepository
	customers ports.CustomerRepository
	client    ports.SmsClient
	logger    zerolog.Logger
}

// NewSmsService creates a new SMS service.
func NewSmsService(
	sms ports.SmsRepository,
	customers ports.CustomerRepository,
	client ports.SmsClient,
	logger zerolog.Logger,
) *SmsService {
	return &SmsService{
		sms:       sms,
		customers: customers,
		client:    client,
		logger:    logger,
	}
}

// Send sends an SMS to a customer and records it in the conversation.
func (s *SmsService) Send(ctx context.Context, shopDomain string, customerID uuid.UUID, body string) (*domain.SmsMessage, error) {
	if strings.TrimSpace(body) == "" {
		return nil, fmt.Errorf("message body cannot be empty")
	}
	customer, err := s.customers.GetByID(ctx, customerID)
	if err != nil {
		return nil, err
	}
	if customer.Phone == "" {
		return nil, fmt.Errorf("customer has no phone number")
	}

	sid, status, err := s.client.Send(ctx, customer.Phone, body)
	if err != nil {
		s.logger.Error().Err(err).Str("shop", shopDomain).Str("customer", customerID.String()).Msg("Failed to send SMS")
		return nil, fmt.Errorf("failed to send sms: %w", err)
	}

	msg := &domain.SmsMessage{
		ShopDomain: shopDomain,
		CustomerID: customerID,
		Direction:  domain.SmsOutbound,
		Body:       body,
		Status:     mapProviderStatus(status),
	}
	if sid != "" {
		msg.TwilioSID = &sid
	}
	if err := s.sms.Create(ctx, msg); err != nil {
		// Already sent; losing the record is worth surfacing loudly.
		s.logger.Error().Err(err).Str("sid", sid).Msg("SMS sent but failed to persist")
		return nil, err
	}

	s.logger.Info().
		Str("shop", shopDomain).
		Str("customer", customerID.String()).
		Str("sid", sid).
		Msg("Sent SMS")
	return msg, nil
}

// HandleInbound records an inbound SMS, matching the sender to an
// existing customer by phone or creating a bare customer for unknown
// numbers so the message is never dropped.
func (s *SmsService) HandleInbound(ctx context.Context, shopDomain, from, body, messageSID string) (*domain.SmsMessage, error) {
	phone := NormalizePhone(from)
	customer, err := s.customers.GetByPhone(ctx, shopDomain, phone)
	if errors.Is(err, domain.ErrNotFound) {
		customer = &domain.Customer{
			ShopDomain: shopDomain,
			Phone:      phone,
		}
		if err := s.customers.Upsert(ctx, customer); err != nil {
			return nil, fmt.Errorf("failed to create customer for inbound sms: %w", err)
		}
		s.logger.Info().Str("shop", shopDomain).Str("phone", phone).Msg("Created customer from unknown inbound SMS number")
	} else if err != nil {
		return nil, err
	}

	msg := &domain.SmsMessage{
		ShopDomain: shopDomain,
		CustomerID: customer.ID,
		Direction:  domain.SmsInbound,
		Body:       body,
		Status:     domain.SmsStatusReceived,
	}
	if messageSID != "" {
		msg.TwilioSID = &messageSID
	}
	if err := s.sms.Create(ctx, msg); err != nil {
		if errors.Is(err, domain.ErrDuplicate) {
			// Twilio retried delivery; the first copy won.
			return nil, nil
		}
		return nil, err
	}
	return msg, nil
}

// HandleStatusCallback applies a Twilio delivery status update. Unknown
// SIDs are ignored; callbacks can race message persistence.
func (s *SmsService) HandleStatusCallback(ctx context.Context, sid, providerStatus string) error {
	if sid == "" {
		return fmt.Errorf("missing message sid")
	}
	err := s.sms.UpdateStatusBySID(ctx, sid, mapProviderStatus(providerStatus))
	if errors.Is(err, domain.ErrNotFound) {
		s.logger.Warn().Str("sid", sid).Str("status", providerStatus).Msg("Status callback for unknown SMS")
		return nil
	}
	return err
}

// Conversation returns a customer's full SMS history, oldest first.
func (s *SmsService) Conversation(ctx context.Context, customerID uuid.UUID) ([]*domain.SmsMessage, error) {
	return s.sms.ListByCustomer(ctx, customerID)
}

// mapProviderStatus folds Twilio's status vocabulary into ours.
func mapProviderStatus(status string) domain.SmsStatus {
	switch strings.ToLower(status) {
	case "sent":
		return domain.SmsStatusSent
	case "delivered":
		return domain.SmsStatusDelivered
	case "failed", "undelivered", "canceled":
		return domain.SmsStatusFailed
	default:
		return domain.SmsStatusQueued
	}
}
