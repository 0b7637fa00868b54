package shopify

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"pickupstand/internal/ports"

	goshopify "github.com/bold-commerce/go-shopify/v4"
	"github.com/rs/zerolog"
)

// Client adapts go-shopify to the ShopifyClient port. A goshopify
// client is constructed per call from (shop, token); the library does
// its own connection reuse underneath.
type Client struct {
	apiKey    string
	apiSecret string
	app       goshopify.App
	logger    zerolog.Logger
}

// NewClient creates a Shopify client adapter for the app credentials.
func NewClient(apiKey, apiSecret string, logger zerolog.Logger) ports.ShopifyClient {
	return &Client{
		apiKey:    apiKey,
		apiSecret: apiSecret,
		app:       goshopify.App{ApiKey: apiKey, ApiSecret: apiSecret},
		logger:    logger,
	}
}

func (c *Client) createClient(shopDomain, accessToken string) (*goshopify.Client, error) {
	client, err := goshopify.NewClient(c.app, shopDomain, accessToken)
	if err != nil {
		return nil, fmt.Errorf("failed to create client: %w", err)
	}
	return client, nil
}

// AuthorizeURL builds the install authorization URL. Shopify expects
// scopes comma-separated with no spaces.
func (c *Client) AuthorizeURL(shop string, scopes []string, redirectURI, state string) string {
	return fmt.Sprintf(
		"https://%s/admin/oauth/authorize?client_id=%s&scope=%s&redirect_uri=%s&state=%s",
		shop,
		c.apiKey,
		url.QueryEscape(strings.Join(scopes, ",")),
		url.QueryEscape(redirectURI),
		url.QueryEscape(state),
	)
}

// ExchangeToken exchanges the authorization code for an access token.
func (c *Client) ExchangeToken(ctx context.Context, shop, code string) (string, error) {
	token, err := c.app.GetAccessToken(ctx, shop, code)
	if err != nil {
		return "", fmt.Errorf("failed to exchange token: %w", err)
	}
	return token, nil
}

// GetShop fetches the shop resource.
func (c *Client) GetShop(ctx context.Context, shopDomain, accessToken string) (*goshopify.Shop, error) {
	client, err := c.createClient(shopDomain, accessToken)
	if err != nil {
		return nil, err
	}
	shop, err := client.Shop.Get(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to get shop: %w", err)
	}
	return shop, nil
}

// GetCustomer fetches a customer by numeric ID.
func (c *Client) GetCustomer(ctx context.Context, shopDomain, accessToken string, customerID int64) (*goshopify.Customer, error) {
	client, err := c.createClient(shopDomain, accessToken)
	if err != nil {
		return nil, err
	}
	customer, err := client.Customer.Get(ctx, uint64(customerID), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to get customer: %w", err)
	}
	return customer, nil
}

// RegisterWebhook subscribes the app to a webhook topic.
func (c *Client) RegisterWebhook(ctx context.Context, shopDomain, accessToken, topic, address string) (*goshopify.Webhook, error) {
	client, err := c.createClient(shopDomain, accessToken)
	if err != nil {
		return nil, err
	}
	webhook, err := client.Webhook.Create(ctx, goshopify.Webhook{
		Topic:   topic,
		Address: address,
		Format:  "json",
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create webhook %s: %w", topic, err)
	}
	c.logger.Info().
		Str("shop", shopDomain).
		Str("topic", topic).
		Str("address", address).
		Msg("Registered webhook subscription")
	return webhook, nil
}
