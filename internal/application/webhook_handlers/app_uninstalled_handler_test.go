package webhook_handlers

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppUninstalledWipesCredentials(t *testing.T) {
	fix := newFixture(t)
	handler := NewAppUninstalledHandler(fix.shops, zerolog.Nop())
	ctx := context.Background()

	_, err := fix.shops.AccessToken(ctx, testShop)
	require.NoError(t, err)

	require.NoError(t, handler.Handle(ctx, fix.event("app/uninstalled", `{"domain": "`+testShop+`"}`)))

	_, err = fix.shops.AccessToken(ctx, testShop)
	require.Error(t, err)

	shop, err := fix.shops.Get(ctx, testShop)
	require.NoError(t, err)
	assert.True(t, shop.Uninstalled)
}

func TestAppUninstalledFallsBackToPayloadDomain(t *testing.T) {
	fix := newFixture(t)
	handler := NewAppUninstalledHandler(fix.shops, zerolog.Nop())
	ctx := context.Background()

	event := fix.event("app/uninstalled", `{"myshopify_domain": "`+testShop+`"}`)
	event.ShopDomain = ""
	require.NoError(t, handler.Handle(ctx, event))

	shop, err := fix.shops.Get(ctx, testShop)
	require.NoError(t, err)
	assert.True(t, shop.Uninstalled)
}
