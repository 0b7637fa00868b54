package persistence

import (
	"context"
	"testing"

	"pickupstand/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGormWebhookEventRepository_Insert(t *testing.T) {
	repo := NewGormWebhookEventRepository(newTestDB(t))
	ctx := context.Background()

	event := &domain.WebhookEvent{
		ShopDomain: "farm.myshopify.com",
		Topic:      "orders/create",
		ShopifyID:  "5551212",
	}
	require.NoError(t, repo.Insert(ctx, event))
	assert.Equal(t, domain.WebhookStatusReceived, event.Status)

	t.Run("duplicate delivery hits the unique index", func(t *testing.T) {
		dup := &domain.WebhookEvent{
			ShopDomain: "farm.myshopify.com",
			Topic:      "orders/create",
			ShopifyID:  "5551212",
		}
		err := repo.Insert(ctx, dup)
		assert.ErrorIs(t, err, domain.ErrDuplicate)
	})

	t.Run("same id under another topic is a new event", func(t *testing.T) {
		other := &domain.WebhookEvent{
			ShopDomain: "farm.myshopify.com",
			Topic:      "subscription_contracts/update",
			ShopifyID:  "5551212",
		}
		assert.NoError(t, repo.Insert(ctx, other))
	})

	t.Run("mark failed records the reason", func(t *testing.T) {
		require.NoError(t, repo.MarkFailed(ctx, event.ID, "boom"))
		saved, err := repo.Get(ctx, "farm.myshopify.com", "orders/create", "5551212")
		require.NoError(t, err)
		assert.Equal(t, domain.WebhookStatusFailed, saved.Status)
		assert.Equal(t, "boom", saved.Error)
	})

	t.Run("mark processed clears the error", func(t *testing.T) {
		require.NoError(t, repo.MarkProcessed(ctx, event.ID))
		saved, err := repo.Get(ctx, "farm.myshopify.com", "orders/create", "5551212")
		require.NoError(t, err)
		assert.Equal(t, domain.WebhookStatusProcessed, saved.Status)
		assert.Empty(t, saved.Error)
	})
}
