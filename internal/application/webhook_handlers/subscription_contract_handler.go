package webhook_handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"pickupstand/internal/domain"
	"pickupstand/internal/ports"

	"github.com/rs/zerolog"
)

// SubscriptionContractHandler applies contract status changes to the
// projected pickups of that contract.
type SubscriptionContractHandler struct {
	subscriptions ports.SubscriptionRepository
	logger        zerolog.Logger
}

// NewSubscriptionContractHandler creates a new subscription contract
// webhook handler.
func NewSubscriptionContractHandler(subscriptions ports.SubscriptionRepository, logger zerolog.Logger) *SubscriptionContractHandler {
	return &SubscriptionContractHandler{
		subscriptions: subscriptions,
		logger:        logger,
	}
}

// CanHandle returns true if this handler can process the given topic
func (h *SubscriptionContractHandler) CanHandle(topic string) bool {
	return topic == "subscription_contracts/update"
}

// Handle processes a subscription_contracts/update webhook event
func (h *SubscriptionContractHandler) Handle(ctx context.Context, event *domain.WebhookEvent) error {
	var contract struct {
		ID                int64  `json:"id"`
		AdminGraphqlAPIID string `json:"admin_graphql_api_id"`
		Status            string `json:"status"`
	}
	if err := json.Unmarshal(event.Payload, &contract); err != nil {
		return fmt.Errorf("failed to parse subscription contract payload: %w", err)
	}

	gid := contract.AdminGraphqlAPIID
	if gid == "" {
		gid = fmt.Sprintf("gid://shopify/SubscriptionContract/%d", contract.ID)
	}

	var updated int64
	switch strings.ToLower(contract.Status) {
	case "paused":
		n, err := h.subscriptions.UpdatePickupStatusByContract(ctx, event.ShopDomain, gid,
			domain.SubscriptionPickupProjected, domain.SubscriptionPickupPaused)
		if err != nil {
			return fmt.Errorf("failed to pause projected pickups: %w", err)
		}
		updated = n
	case "cancelled", "expired", "failed":
		for _, from := range []domain.SubscriptionPickupStatus{domain.SubscriptionPickupProjected, domain.SubscriptionPickupPaused} {
			n, err := h.subscriptions.UpdatePickupStatusByContract(ctx, event.ShopDomain, gid,
				from, domain.SubscriptionPickupCanceled)
			if err != nil {
				return fmt.Errorf("failed to cancel %s pickups: %w", from, err)
			}
			updated += n
		}
	case "active":
		// Resume: only paused pickups come back, canceled ones stay gone.
		n, err := h.subscriptions.UpdatePickupStatusByContract(ctx, event.ShopDomain, gid,
			domain.SubscriptionPickupPaused, domain.SubscriptionPickupProjected)
		if err != nil {
			return fmt.Errorf("failed to resume paused pickups: %w", err)
		}
		updated = n
	default:
		h.logger.Info().
			Str("shop", event.ShopDomain).
			Str("contract", gid).
			Str("status", contract.Status).
			Msg("Ignoring subscription contract status")
		return nil
	}

	h.logger.Info().
		Str("shop", event.ShopDomain).
		Str("contract", gid).
		Str("status", contract.Status).
		Int64("pickupsUpdated", updated).
		Msg("Applied subscription contract transition")
	return nil
}
