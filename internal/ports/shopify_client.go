package ports

import (
	"context"

	"pickupstand/internal/domain"

	goshopify "github.com/bold-commerce/go-shopify/v4"
)

// ShopifyClient defines the Shopify Admin API operations the app uses.
// REST operations go through the go-shopify services; everything the
// REST surface does not cover (draft orders, selling plans, discounts)
// goes through the Admin GraphQL endpoint.
type ShopifyClient interface {
	// OAuth
	AuthorizeURL(shop string, scopes []string, redirectURI, state string) string
	ExchangeToken(ctx context.Context, shop, code string) (string, error)

	// REST
	GetShop(ctx context.Context, shop, accessToken string) (*goshopify.Shop, error)
	GetCustomer(ctx context.Context, shop, accessToken string, customerID int64) (*goshopify.Customer, error)
	RegisterWebhook(ctx context.Context, shop, accessToken, topic, address string) (*goshopify.Webhook, error)

	// Draft orders (GraphQL)
	DraftOrderCreate(ctx context.Context, shop, accessToken string, input domain.DraftOrderInput) (*domain.DraftOrder, error)
	DraftOrderComplete(ctx context.Context, shop, accessToken, draftGID string) (*domain.DraftOrder, error)
	ListOpenDraftOrders(ctx context.Context, shop, accessToken string, first int) ([]*domain.DraftOrder, error)

	// Selling plans (GraphQL)
	SellingPlanGroupCreate(ctx context.Context, shop, accessToken string, def domain.SellingPlanGroupDefinition) (*domain.SellingPlanGroupResult, error)
	SellingPlanGroupUpdate(ctx context.Context, shop, accessToken, groupGID string, def domain.SellingPlanGroupDefinition) error
	SellingPlanGroupDelete(ctx context.Context, shop, accessToken, groupGID string) error
	SellingPlanGroupAddProducts(ctx context.Context, shop, accessToken, groupGID string, productGIDs []string) error
	SellingPlanGroupRemoveProducts(ctx context.Context, shop, accessToken, groupGID string, productGIDs []string) error

	// Discount codes (GraphQL)
	DiscountCodeCreate(ctx context.Context, shop, accessToken string, input domain.DiscountCodeInput) (string, error)
	DiscountCodeUpdate(ctx context.Context, shop, accessToken, discountGID string, input domain.DiscountCodeInput) error
	DiscountCodeDeactivate(ctx context.Context, shop, accessToken, discountGID string) error
}
