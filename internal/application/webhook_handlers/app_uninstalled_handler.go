package webhook_handlers

import (
	"context"
	"encoding/json"
	"fmt"

	"pickupstand/internal/application"
	"pickupstand/internal/domain"

	"github.com/rs/zerolog"
)

// AppUninstalledHandler handles app uninstalled webhook events.
type AppUninstalledHandler struct {
	shops  *application.ShopService
	logger zerolog.Logger
}

// NewAppUninstalledHandler creates a new app uninstalled webhook handler.
func NewAppUninstalledHandler(shops *application.ShopService, logger zerolog.Logger) *AppUninstalledHandler {
	return &AppUninstalledHandler{
		shops:  shops,
		logger: logger,
	}
}

// CanHandle returns true if this handler can process the given topic
func (h *AppUninstalledHandler) CanHandle(topic string) bool {
	return topic == "app/uninstalled"
}

// Handle processes an app/uninstalled webhook event
func (h *AppUninstalledHandler) Handle(ctx context.Context, event *domain.WebhookEvent) error {
	shopDomain := event.ShopDomain
	if shopDomain == "" {
		var shopData struct {
			Domain          string `json:"domain"`
			MyshopifyDomain string `json:"myshopify_domain"`
		}
		if err := json.Unmarshal(event.Payload, &shopData); err != nil {
			return fmt.Errorf("failed to parse app uninstalled payload: %w", err)
		}
		shopDomain = shopData.MyshopifyDomain
		if shopDomain == "" {
			shopDomain = shopData.Domain
		}
	}
	if shopDomain == "" {
		return fmt.Errorf("app uninstalled webhook carried no shop domain")
	}
	return h.shops.HandleUninstalled(ctx, shopDomain)
}
