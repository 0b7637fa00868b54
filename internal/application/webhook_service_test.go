package application

import (
	"context"
	"errors"
	"testing"

	"pickupstand/internal/domain"
	"pickupstand/internal/ports"
	"pickupstand/internal/infrastructure/cache"
	"pickupstand/internal/infrastructure/persistence"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recordingHandler claims every topic and counts deliveries.
type recordingHandler struct {
	events []*domain.WebhookEvent
	fail   error
}

func (h *recordingHandler) CanHandle(topic string) bool { return true }

func (h *recordingHandler) Handle(ctx context.Context, event *domain.WebhookEvent) error {
	if h.fail != nil {
		return h.fail
	}
	h.events = append(h.events, event)
	return nil
}

func newWebhookFixture(t *testing.T, handler WebhookHandler) (*WebhookService, ports.WebhookEventRepository) {
	db := newTestDB(t)
	events := persistence.NewGormWebhookEventRepository(db)
	dispatcher := NewWebhookDispatcher(zerolog.Nop())
	if handler != nil {
		dispatcher.RegisterHandler(handler)
	}
	svc := NewWebhookService(events, cache.NoopCache{}, dispatcher, zerolog.Nop())
	return svc, events
}

func TestWebhookProcessDispatchesOnce(t *testing.T) {
	handler := &recordingHandler{}
	svc, events := newWebhookFixture(t, handler)
	ctx := context.Background()
	payload := []byte(`{"id": 820982911946154500, "name": "#1001"}`)

	require.NoError(t, svc.Process(ctx, testShop, "orders/create", "delivery-1", payload))
	require.Len(t, handler.events, 1)
	assert.Equal(t, payload, handler.events[0].Payload)

	// A redelivery with a fresh delivery id still dedupes on the
	// resource id.
	require.NoError(t, svc.Process(ctx, testShop, "orders/create", "delivery-2", payload))
	assert.Len(t, handler.events, 1)

	event, err := events.Get(ctx, testShop, "orders/create", "820982911946154500")
	require.NoError(t, err)
	assert.Equal(t, domain.WebhookStatusProcessed, event.Status)
}

func TestWebhookProcessSameIDDifferentTopic(t *testing.T) {
	handler := &recordingHandler{}
	svc, _ := newWebhookFixture(t, handler)
	ctx := context.Background()
	payload := []byte(`{"id": 42}`)

	require.NoError(t, svc.Process(ctx, testShop, "orders/create", "d-1", payload))
	require.NoError(t, svc.Process(ctx, testShop, "subscription_contracts/update", "d-2", payload))
	assert.Len(t, handler.events, 2)
}

func TestWebhookProcessHandlerFailureMarksFailed(t *testing.T) {
	handler := &recordingHandler{fail: errors.New("downstream exploded")}
	svc, events := newWebhookFixture(t, handler)
	ctx := context.Background()

	err := svc.Process(ctx, testShop, "orders/create", "d-1", []byte(`{"id": 7}`))
	require.Error(t, err)

	event, getErr := events.Get(ctx, testShop, "orders/create", "7")
	require.NoError(t, getErr)
	assert.Equal(t, domain.WebhookStatusFailed, event.Status)
	assert.Contains(t, event.Error, "downstream exploded")
}

func TestWebhookProcessFailedRedeliveryIsRetried(t *testing.T) {
	handler := &recordingHandler{fail: errors.New("downstream exploded")}
	svc, events := newWebhookFixture(t, handler)
	ctx := context.Background()
	payload := []byte(`{"id": 777}`)

	require.Error(t, svc.Process(ctx, testShop, "orders/create", "d-1", payload))
	require.Empty(t, handler.events)

	// Shopify redelivers with a fresh delivery id once the downstream
	// recovers; the failed ledger row must not suppress the retry.
	handler.fail = nil
	require.NoError(t, svc.Process(ctx, testShop, "orders/create", "d-2", payload))
	require.Len(t, handler.events, 1)
	assert.Equal(t, payload, handler.events[0].Payload)

	event, err := events.Get(ctx, testShop, "orders/create", "777")
	require.NoError(t, err)
	assert.Equal(t, domain.WebhookStatusProcessed, event.Status)
	assert.Empty(t, event.Error)
}

func TestWebhookProcessUnhandledTopicIsAcknowledged(t *testing.T) {
	svc, _ := newWebhookFixture(t, nil)
	require.NoError(t, svc.Process(context.Background(), testShop, "products/delete", "d-1", []byte(`{"id": 9}`)))
}

func TestPayloadResourceIDFallback(t *testing.T) {
	assert.Equal(t, "99", payloadResourceID([]byte(`{"id": 99}`), "d-1"))
	assert.Equal(t, "d-1", payloadResourceID([]byte(`{"domain": "x.myshopify.com"}`), "d-1"))
	assert.Equal(t, "d-1", payloadResourceID([]byte(`not json`), "d-1"))
}
