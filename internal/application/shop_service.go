package application

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"pickupstand/internal/domain"
	"pickupstand/internal/ports"

	"github.com/rs/zerolog"
)

// WebhookTopics are the subscriptions registered on install.
var WebhookTopics = []string{
	"orders/create",
	"subscription_contracts/update",
	"app/uninstalled",
}

// ShopService owns the install lifecycle: OAuth, token storage, webhook
// registration, and uninstall cleanup.
type ShopService struct {
	shops         ports.ShopRepository
	sessions      ports.InstallSessionRepository
	calendarAuths ports.CalendarAuthRepository
	shopify       ports.ShopifyClient
	encryptionSvc ports.EncryptionService
	logger        zerolog.Logger
	appURL        string
	scopes        []string

	// defaultTimezone is used when Shopify reports no IANA timezone for
	// a shop at install time.
	defaultTimezone string
}

// NewShopService creates a new shop service.
func NewShopService(
	shops ports.ShopRepository,
	sessions ports.InstallSessionRepository,
	calendarAuths ports.CalendarAuthRepository,
	shopify ports.ShopifyClient,
	encryptionSvc ports.EncryptionService,
	logger zerolog.Logger,
	appURL string,
	scopes string,
	defaultTimezone string,
) *ShopService {
	return &ShopService{
		shops:           shops,
		sessions:        sessions,
		calendarAuths:   calendarAuths,
		shopify:         shopify,
		encryptionSvc:   encryptionSvc,
		logger:          logger,
		appURL:          appURL,
		scopes:          strings.Split(scopes, ","),
		defaultTimezone: defaultTimezone,
	}
}

// BeginInstall creates the OAuth state session and returns the Shopify
// authorization URL to redirect to.
func (s *ShopService) BeginInstall(ctx context.Context, shop, returnURL string) (string, error) {
	stateBytes := make([]byte, 16)
	if _, err := rand.Read(stateBytes); err != nil {
		return "", fmt.Errorf("failed to generate state: %w", err)
	}
	state := hex.EncodeToString(stateBytes)

	session := &domain.InstallSession{
		State:     state,
		Shop:      shop,
		Scopes:    strings.Join(s.scopes, ","),
		ReturnURL: returnURL,
		ExpiresAt: time.Now().Add(10 * time.Minute),
	}
	if err := s.sessions.Create(ctx, session); err != nil {
		return "", fmt.Errorf("failed to create install session: %w", err)
	}

	redirectURI := s.appURL + "/auth/callback"
	return s.shopify.AuthorizeURL(shop, s.scopes, redirectURI, state), nil
}

// CompleteInstall verifies the callback state, exchanges the code,
// stores the encrypted token, and registers the webhook subscriptions.
// Returns the session's return URL for the final redirect.
func (s *ShopService) CompleteInstall(ctx context.Context, shop, code, state string) (*domain.Shop, string, error) {
	session, err := s.sessions.Get(ctx, state)
	if err != nil {
		return nil, "", fmt.Errorf("invalid or expired install session: %w", err)
	}
	if session.Shop != shop {
		return nil, "", fmt.Errorf("install session shop mismatch")
	}
	// One-shot: consumed regardless of what happens below.
	_ = s.sessions.Delete(ctx, state)

	accessToken, err := s.shopify.ExchangeToken(ctx, shop, code)
	if err != nil {
		s.logger.Error().Err(err).Str("shop", shop).Msg("Failed to exchange token")
		return nil, "", fmt.Errorf("failed to exchange token: %w", err)
	}

	shopInfo, err := s.shopify.GetShop(ctx, shop, accessToken)
	if err != nil {
		s.logger.Error().Err(err).Str("shop", shop).Msg("Failed to get shop info")
		return nil, "", fmt.Errorf("failed to get shop info: %w", err)
	}

	encryptedToken, err := s.encryptionSvc.Encrypt(accessToken)
	if err != nil {
		return nil, "", fmt.Errorf("failed to encrypt access token: %w", err)
	}

	timezone := shopInfo.IanaTimezone
	if timezone == "" {
		timezone = s.defaultTimezone
	}
	domainShop := &domain.Shop{
		Domain:      shop,
		AccessToken: encryptedToken,
		Scopes:      session.Scopes,
		Timezone:    timezone,
	}
	if err := s.shops.Save(ctx, domainShop); err != nil {
		return nil, "", fmt.Errorf("failed to save shop: %w", err)
	}

	for _, topic := range WebhookTopics {
		if _, err := s.shopify.RegisterWebhook(ctx, shop, accessToken, topic, s.appURL+"/webhooks/shopify"); err != nil {
			// Registration failures are logged, not fatal: the install
			// itself succeeded and topics can be re-registered later.
			s.logger.Warn().Err(err).Str("shop", shop).Str("topic", topic).Msg("Failed to register webhook")
		}
	}

	s.logger.Info().
		Str("shop", shop).
		Str("scopes", session.Scopes).
		Msg("Completed app install")
	return domainShop, session.ReturnURL, nil
}

// Get returns the shop record with the access token still encrypted.
func (s *ShopService) Get(ctx context.Context, shopDomain string) (*domain.Shop, error) {
	return s.shops.GetByDomain(ctx, shopDomain)
}

// AccessToken returns the decrypted Admin API token for a shop.
func (s *ShopService) AccessToken(ctx context.Context, shopDomain string) (string, error) {
	shop, err := s.shops.GetByDomain(ctx, shopDomain)
	if err != nil {
		return "", fmt.Errorf("failed to get shop: %w", err)
	}
	if shop.Uninstalled || shop.AccessToken == "" {
		return "", fmt.Errorf("shop %s has no usable token", shopDomain)
	}
	token, err := s.encryptionSvc.Decrypt(shop.AccessToken)
	if err != nil {
		return "", fmt.Errorf("failed to decrypt access token: %w", err)
	}
	return token, nil
}

// HandleUninstalled wipes the shop's credentials and calendar grant.
// Rows are kept for audit.
func (s *ShopService) HandleUninstalled(ctx context.Context, shopDomain string) error {
	if err := s.shops.MarkUninstalled(ctx, shopDomain); err != nil {
		return fmt.Errorf("failed to mark shop uninstalled: %w", err)
	}
	if err := s.calendarAuths.Delete(ctx, shopDomain); err != nil {
		s.logger.Warn().Err(err).Str("shop", shopDomain).Msg("Failed to delete calendar auth on uninstall")
	}
	s.logger.Info().Str("shop", shopDomain).Msg("App uninstalled, credentials wiped")
	return nil
}
