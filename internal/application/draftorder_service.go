package application

import (
	"context"
	"fmt"

	"pickupstand/internal/domain"
	"pickupstand/internal/ports"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// DraftOrderService creates and completes draft orders for phone and
// manual orders.
type DraftOrderService struct {
	shops         *ShopService
	shopify       ports.ShopifyClient
	schedules     ports.ScheduleRepository
	pickups       ports.PickupRepository
	subscriptions ports.SubscriptionRepository
	logger        zerolog.Logger
}

// NewDraftOrderService creates a new draft order service.
func NewDraftOrderService(
	shops *ShopService,
	shopify ports.ShopifyClient,
	schedules ports.ScheduleRepository,
	pickups ports.PickupRepository,
	subscriptions ports.SubscriptionRepository,
	logger zerolog.Logger,
) *DraftOrderService {
	return &DraftOrderService{
		shops:         shops,
		shopify:       shopify,
		schedules:     schedules,
		pickups:       pickups,
		subscriptions: subscriptions,
		logger:        logger,
	}
}

// Create runs draftOrderCreate. userErrors from the mutation surface
// as regular errors.
func (s *DraftOrderService) Create(ctx context.Context, shopDomain string, input domain.DraftOrderInput) (*domain.DraftOrder, error) {
	if len(input.LineItems) == 0 {
		return nil, fmt.Errorf("draft order needs at least one line item")
	}
	token, err := s.shops.AccessToken(ctx, shopDomain)
	if err != nil {
		return nil, err
	}

	draft, err := s.shopify.DraftOrderCreate(ctx, shopDomain, token, input)
	if err != nil {
		s.logger.Error().Err(err).Str("shop", shopDomain).Msg("Failed to create draft order")
		return nil, err
	}

	s.logger.Info().
		Str("shop", shopDomain).
		Str("draft", draft.Name).
		Msg("Created draft order")
	return draft, nil
}

// Complete completes a draft order with payment pending. When the
// draft carried pickup attributes and the admin named the local
// customer, the pickup schedule is recorded locally right away rather
// than waiting for the orders/create webhook round trip.
func (s *DraftOrderService) Complete(ctx context.Context, shopDomain, draftGID string, customerID *uuid.UUID) (*domain.DraftOrder, error) {
	token, err := s.shops.AccessToken(ctx, shopDomain)
	if err != nil {
		return nil, err
	}

	draft, err := s.shopify.DraftOrderComplete(ctx, shopDomain, token, draftGID)
	if err != nil {
		s.logger.Error().Err(err).Str("shop", shopDomain).Str("draft", draftGID).Msg("Failed to complete draft order")
		return nil, err
	}

	if customerID != nil {
		if err := s.recordPickup(ctx, shopDomain, draft, *customerID); err != nil {
			// The order exists upstream either way; scheduling can be
			// redone from the admin UI.
			s.logger.Warn().Err(err).Str("shop", shopDomain).Str("draft", draft.Name).Msg("Failed to record pickup from completed draft")
		}
	}
	return draft, nil
}

func (s *DraftOrderService) recordPickup(ctx context.Context, shopDomain string, draft *domain.DraftOrder, customerID uuid.UUID) error {
	cfg, err := s.subscriptions.GetConfig(ctx, shopDomain)
	if err != nil {
		return err
	}
	intent := ParsePickupIntent(draft.Attributes, cfg)
	if !intent.HasDate() {
		return nil
	}

	schedule := &domain.PickupSchedule{
		ShopDomain: shopDomain,
		CustomerID: customerID,
		SlotLabel:  intent.SlotLabel,
		PickupDate: *intent.Date,
		OrderName:  draft.Name,
	}
	if intent.LocationName != "" {
		if loc, err := s.pickups.GetLocationByName(ctx, shopDomain, intent.LocationName); err == nil {
			schedule.LocationID = &loc.ID
		}
	}
	return s.schedules.Create(ctx, schedule)
}

// ListOpen lists open draft orders for the admin UI.
func (s *DraftOrderService) ListOpen(ctx context.Context, shopDomain string) ([]*domain.DraftOrder, error) {
	token, err := s.shops.AccessToken(ctx, shopDomain)
	if err != nil {
		return nil, err
	}
	return s.shopify.ListOpenDraftOrders(ctx, shopDomain, token, 50)
}
