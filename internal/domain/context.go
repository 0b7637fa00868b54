package domain

import "context"

// contextKey is a private type for context keys to avoid collisions
type contextKey string

const shopDomainKey contextKey = "shop_domain"

// WithShopDomain returns a context carrying the myshopify domain of the
// shop the request is acting on behalf of.
func WithShopDomain(ctx context.Context, shop string) context.Context {
	return context.WithValue(ctx, shopDomainKey, shop)
}

// GetShopDomainFromContext extracts the shop domain from the context.
// Returns "" when not set.
func GetShopDomainFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(shopDomainKey).(string); ok {
		return v
	}
	return ""
}
