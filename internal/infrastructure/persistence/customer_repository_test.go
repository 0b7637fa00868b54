package persistence

import (
	"context"
	"testing"

	"pickupstand/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func i64(n int64) *int64 { return &n }

func TestGormCustomerRepository_Upsert(t *testing.T) {
	repo := NewGormCustomerRepository(newTestDB(t))
	ctx := context.Background()

	t.Run("creates then updates on same shopify id", func(t *testing.T) {
		c := &domain.Customer{
			ShopDomain:        "farm.myshopify.com",
			ShopifyCustomerID: i64(1001),
			FirstName:         "Ada",
			LastName:          "Lovelace",
			Email:             "ada@example.com",
		}
		require.NoError(t, repo.Upsert(ctx, c))
		firstID := c.ID

		again := &domain.Customer{
			ShopDomain:        "farm.myshopify.com",
			ShopifyCustomerID: i64(1001),
			FirstName:         "Ada",
			LastName:          "King",
			Email:             "ada@example.com",
		}
		require.NoError(t, repo.Upsert(ctx, again))
		assert.Equal(t, firstID, again.ID, "upsert must not create a second row")

		saved, err := repo.GetByShopifyID(ctx, "farm.myshopify.com", 1001)
		require.NoError(t, err)
		assert.Equal(t, "King", saved.LastName)
	})

	t.Run("same shopify id on another shop is a new row", func(t *testing.T) {
		c := &domain.Customer{ShopDomain: "other.myshopify.com", ShopifyCustomerID: i64(1001)}
		require.NoError(t, repo.Upsert(ctx, c))

		a, err := repo.GetByShopifyID(ctx, "farm.myshopify.com", 1001)
		require.NoError(t, err)
		b, err := repo.GetByShopifyID(ctx, "other.myshopify.com", 1001)
		require.NoError(t, err)
		assert.NotEqual(t, a.ID, b.ID)
	})
}

func TestGormCustomerRepository_Search(t *testing.T) {
	repo := NewGormCustomerRepository(newTestDB(t))
	ctx := context.Background()

	seed := []*domain.Customer{
		{ShopDomain: "farm.myshopify.com", ShopifyCustomerID: i64(1), FirstName: "Grace", LastName: "Hopper", Email: "grace@example.com", Phone: "+15550001111"},
		{ShopDomain: "farm.myshopify.com", ShopifyCustomerID: i64(2), FirstName: "Alan", LastName: "Turing", Email: "alan@example.com"},
		{ShopDomain: "other.myshopify.com", ShopifyCustomerID: i64(3), FirstName: "Grace", LastName: "Murray", Email: "gm@example.com"},
	}
	for _, c := range seed {
		require.NoError(t, repo.Upsert(ctx, c))
	}

	t.Run("matches name case-insensitively within the shop", func(t *testing.T) {
		got, total, err := repo.Search(ctx, "farm.myshopify.com", "grace", 10, 0)
		require.NoError(t, err)
		assert.EqualValues(t, 1, total)
		require.Len(t, got, 1)
		assert.Equal(t, "Hopper", got[0].LastName)
	})

	t.Run("matches phone", func(t *testing.T) {
		_, total, err := repo.Search(ctx, "farm.myshopify.com", "5550001111", 10, 0)
		require.NoError(t, err)
		assert.EqualValues(t, 1, total)
	})

	t.Run("empty query lists all for shop", func(t *testing.T) {
		_, total, err := repo.Search(ctx, "farm.myshopify.com", "", 10, 0)
		require.NoError(t, err)
		assert.EqualValues(t, 2, total)
	})

	t.Run("not found by phone returns sentinel", func(t *testing.T) {
		_, err := repo.GetByPhone(ctx, "farm.myshopify.com", "+15559999999")
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})
}
