package webhook_handlers

import (
	"context"
	"testing"
	"time"

	"pickupstand/internal/domain"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const contractGID = "gid://shopify/SubscriptionContract/777"

func seedContractPickups(t *testing.T, fix *fixture, statuses ...domain.SubscriptionPickupStatus) uuid.UUID {
	t.Helper()
	customerID := uuid.New()
	pickups := make([]*domain.SubscriptionPickup, 0, len(statuses))
	for i, st := range statuses {
		pickups = append(pickups, &domain.SubscriptionPickup{
			ShopDomain:    testShop,
			ContractGID:   contractGID,
			CustomerID:    customerID,
			Sequence:      i + 1,
			ProjectedDate: date(2026, time.March, 7).AddDate(0, 0, 7*i),
			Status:        st,
		})
	}
	require.NoError(t, fix.subscriptions.CreatePickups(context.Background(), pickups))
	return customerID
}

func contractEvent(fix *fixture, status string) *domain.WebhookEvent {
	return fix.event("subscription_contracts/update",
		`{"id": 777, "admin_graphql_api_id": "`+contractGID+`", "status": "`+status+`"}`)
}

func statuses(t *testing.T, fix *fixture) []domain.SubscriptionPickupStatus {
	t.Helper()
	pickups, err := fix.subscriptions.ListPickupsByContract(context.Background(), testShop, contractGID)
	require.NoError(t, err)
	out := make([]domain.SubscriptionPickupStatus, len(pickups))
	for i, p := range pickups {
		out[i] = p.Status
	}
	return out
}

func TestContractPausedPausesProjected(t *testing.T) {
	fix := newFixture(t)
	handler := NewSubscriptionContractHandler(fix.subscriptions, zerolog.Nop())
	seedContractPickups(t, fix,
		domain.SubscriptionPickupProjected,
		domain.SubscriptionPickupProjected,
		domain.SubscriptionPickupCompleted,
	)

	require.NoError(t, handler.Handle(context.Background(), contractEvent(fix, "paused")))

	assert.Equal(t, []domain.SubscriptionPickupStatus{
		domain.SubscriptionPickupPaused,
		domain.SubscriptionPickupPaused,
		domain.SubscriptionPickupCompleted,
	}, statuses(t, fix))
}

func TestContractActiveResumesOnlyPaused(t *testing.T) {
	fix := newFixture(t)
	handler := NewSubscriptionContractHandler(fix.subscriptions, zerolog.Nop())
	seedContractPickups(t, fix,
		domain.SubscriptionPickupPaused,
		domain.SubscriptionPickupCanceled,
	)

	require.NoError(t, handler.Handle(context.Background(), contractEvent(fix, "active")))

	assert.Equal(t, []domain.SubscriptionPickupStatus{
		domain.SubscriptionPickupProjected,
		domain.SubscriptionPickupCanceled,
	}, statuses(t, fix))
}

func TestContractCancelledCancelsProjectedAndPaused(t *testing.T) {
	fix := newFixture(t)
	handler := NewSubscriptionContractHandler(fix.subscriptions, zerolog.Nop())
	seedContractPickups(t, fix,
		domain.SubscriptionPickupProjected,
		domain.SubscriptionPickupPaused,
		domain.SubscriptionPickupCompleted,
	)

	require.NoError(t, handler.Handle(context.Background(), contractEvent(fix, "cancelled")))

	assert.Equal(t, []domain.SubscriptionPickupStatus{
		domain.SubscriptionPickupCanceled,
		domain.SubscriptionPickupCanceled,
		domain.SubscriptionPickupCompleted,
	}, statuses(t, fix))
}

func TestContractUnknownStatusIgnored(t *testing.T) {
	fix := newFixture(t)
	handler := NewSubscriptionContractHandler(fix.subscriptions, zerolog.Nop())
	seedContractPickups(t, fix, domain.SubscriptionPickupProjected)

	require.NoError(t, handler.Handle(context.Background(), contractEvent(fix, "in_review")))

	assert.Equal(t, []domain.SubscriptionPickupStatus{domain.SubscriptionPickupProjected}, statuses(t, fix))
}

func TestContractGIDFallsBackToNumericID(t *testing.T) {
	fix := newFixture(t)
	handler := NewSubscriptionContractHandler(fix.subscriptions, zerolog.Nop())
	seedContractPickups(t, fix, domain.SubscriptionPickupProjected)

	event := fix.event("subscription_contracts/update", `{"id": 777, "status": "paused"}`)
	require.NoError(t, handler.Handle(context.Background(), event))

	assert.Equal(t, []domain.SubscriptionPickupStatus{domain.SubscriptionPickupPaused}, statuses(t, fix))
}
