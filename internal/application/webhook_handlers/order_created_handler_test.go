package webhook_handlers

import (
	"context"
	"testing"
	"time"

	"pickupstand/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const attributeOrderPayload = `{
	"id": 5001,
	"admin_graphql_api_id": "gid://shopify/Order/5001",
	"name": "#1001",
	"customer": {
		"id": 42,
		"first_name": "Ada",
		"last_name": "Lovelace",
		"email": "ada@example.com",
		"phone": "+1 555 123 4567"
	},
	"note_attributes": [
		{"name": "Pickup Date", "value": "2026-03-07"},
		{"name": "Pickup Time", "value": "10:00 AM – 12:00 PM"},
		{"name": "Pickup Location", "value": "Farm Stand"},
		{"name": "Subscription Frequency", "value": "Every 2 Weeks"}
	],
	"line_items": [
		{"title": "Veggie Box", "variant_title": "Large", "quantity": 1}
	]
}`

func TestOrderCreatedAttributeSubscription(t *testing.T) {
	fix := newFixture(t)
	ctx := context.Background()
	loc := fix.seedLocation(t, "Farm Stand")

	require.NoError(t, fix.handler.Handle(ctx, fix.event("orders/create", attributeOrderPayload)))

	customer, err := fix.customers.GetByShopifyID(ctx, testShop, 42)
	require.NoError(t, err)
	assert.Equal(t, "Ada Lovelace", customer.DisplayName())
	assert.Equal(t, "+15551234567", customer.Phone)

	items, err := fix.orderItems.ListByOrder(ctx, testShop, 5001)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "Veggie Box", items[0].Title)
	assert.Empty(t, items[0].SellingPlanName)

	schedules, err := fix.schedules.ListByDate(ctx, testShop, date(2026, time.March, 7))
	require.NoError(t, err)
	require.Len(t, schedules, 1)
	assert.Equal(t, "#1001", schedules[0].OrderName)
	assert.Equal(t, "10:00 AM – 12:00 PM", schedules[0].SlotLabel)
	require.NotNil(t, schedules[0].LocationID)
	assert.Equal(t, loc.ID, *schedules[0].LocationID)

	pickups, err := fix.subscriptions.ListPickupsByContract(ctx, testShop, "gid://shopify/Order/5001")
	require.NoError(t, err)
	require.Len(t, pickups, domain.DefaultProjectionHorizon)
	assert.Equal(t, 1, pickups[0].Sequence)
	assert.Equal(t, date(2026, time.March, 21).Format("2006-01-02"), pickups[0].ProjectedDate.Format("2006-01-02"))
	assert.Equal(t, date(2026, time.April, 4).Format("2006-01-02"), pickups[1].ProjectedDate.Format("2006-01-02"))
	for _, p := range pickups {
		assert.Equal(t, domain.SubscriptionPickupProjected, p.Status)
		assert.Equal(t, customer.ID, p.CustomerID)
	}
}

func TestOrderCreatedLegacySellingPlan(t *testing.T) {
	fix := newFixture(t)
	ctx := context.Background()

	require.NoError(t, fix.subscriptions.SavePlanGroup(ctx, &domain.SubscriptionPlanGroup{
		ShopDomain: testShop,
		Name:       "Veggie Club",
		ShopifyGID: "gid://shopify/SellingPlanGroup/1",
		Frequencies: []domain.SubscriptionPlanFrequency{{
			IntervalUnit:  domain.IntervalWeek,
			IntervalCount: 1,
			ShopifyGID:    "gid://shopify/SellingPlan/900",
		}},
	}))

	payload := `{
		"id": 5002,
		"admin_graphql_api_id": "gid://shopify/Order/5002",
		"name": "#1002",
		"customer": {"id": 43, "first_name": "Grace"},
		"note_attributes": [
			{"name": "Pickup Date", "value": "2026-03-07"},
			{"name": "Pickup Time", "value": "10:00 AM"}
		],
		"line_items": [
			{
				"title": "Veggie Box",
				"quantity": 1,
				"selling_plan_allocation": {
					"selling_plan": {"selling_plan_id": 900, "name": "Deliver every week"}
				}
			}
		]
	}`
	require.NoError(t, fix.handler.Handle(ctx, fix.event("orders/create", payload)))

	items, err := fix.orderItems.ListByOrder(ctx, testShop, 5002)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "Deliver every week", items[0].SellingPlanName)

	pickups, err := fix.subscriptions.ListPickupsByContract(ctx, testShop, "gid://shopify/Order/5002")
	require.NoError(t, err)
	require.Len(t, pickups, domain.DefaultProjectionHorizon)
	// Weekly cadence from the local plan record.
	assert.Equal(t, date(2026, time.March, 14).Format("2006-01-02"), pickups[0].ProjectedDate.Format("2006-01-02"))
}

func TestOrderCreatedLegacyPlansDisabled(t *testing.T) {
	fix := newFixture(t)
	ctx := context.Background()

	cfg := domain.DefaultSellingPlanConfig(testShop)
	cfg.HandleLegacyPlans = false
	require.NoError(t, fix.subscriptions.SaveConfig(ctx, cfg))

	payload := `{
		"id": 5003,
		"admin_graphql_api_id": "gid://shopify/Order/5003",
		"name": "#1003",
		"customer": {"id": 44},
		"note_attributes": [{"name": "Pickup Date", "value": "2026-03-07"}],
		"line_items": [
			{
				"title": "Veggie Box",
				"quantity": 1,
				"selling_plan_allocation": {
					"selling_plan": {"selling_plan_id": 901, "name": "Weekly"}
				}
			}
		]
	}`
	require.NoError(t, fix.handler.Handle(ctx, fix.event("orders/create", payload)))

	pickups, err := fix.subscriptions.ListPickupsByContract(ctx, testShop, "gid://shopify/Order/5003")
	require.NoError(t, err)
	assert.Empty(t, pickups)
}

func TestOrderCreatedOneOff(t *testing.T) {
	fix := newFixture(t)
	ctx := context.Background()

	payload := `{
		"id": 5004,
		"name": "#1004",
		"customer": {"id": 45, "first_name": "Mary"},
		"note_attributes": [
			{"name": "Pickup Date", "value": "2026-03-07"},
			{"name": "Pickup Time", "value": "2:00 PM"}
		],
		"line_items": [{"title": "Sourdough", "quantity": 2}]
	}`
	require.NoError(t, fix.handler.Handle(ctx, fix.event("orders/create", payload)))

	schedules, err := fix.schedules.ListByDate(ctx, testShop, date(2026, time.March, 7))
	require.NoError(t, err)
	assert.Len(t, schedules, 1)

	customer, err := fix.customers.GetByShopifyID(ctx, testShop, 45)
	require.NoError(t, err)
	pickups, err := fix.subscriptions.ListPickupsByCustomer(ctx, customer.ID)
	require.NoError(t, err)
	assert.Empty(t, pickups)
}

func TestOrderCreatedWithoutPickupAttributes(t *testing.T) {
	fix := newFixture(t)
	ctx := context.Background()

	payload := `{
		"id": 5005,
		"name": "#1005",
		"customer": {"id": 46},
		"line_items": [{"title": "Gift Card", "quantity": 1}]
	}`
	require.NoError(t, fix.handler.Handle(ctx, fix.event("orders/create", payload)))

	// Customer and items land even without a pickup.
	_, err := fix.customers.GetByShopifyID(ctx, testShop, 46)
	require.NoError(t, err)
	items, err := fix.orderItems.ListByOrder(ctx, testShop, 5005)
	require.NoError(t, err)
	assert.Len(t, items, 1)
	schedules, err := fix.schedules.ListByDate(ctx, testShop, date(2026, time.March, 7))
	require.NoError(t, err)
	assert.Empty(t, schedules)
}

func TestOrderCreatedWithoutCustomerIsSkipped(t *testing.T) {
	fix := newFixture(t)
	ctx := context.Background()

	payload := `{"id": 5006, "name": "#1006", "line_items": [{"title": "Eggs", "quantity": 1}]}`
	require.NoError(t, fix.handler.Handle(ctx, fix.event("orders/create", payload)))

	items, err := fix.orderItems.ListByOrder(ctx, testShop, 5006)
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestOrderCreatedRepeatOrderSameCustomer(t *testing.T) {
	fix := newFixture(t)
	ctx := context.Background()
	fix.seedLocation(t, "Farm Stand")

	require.NoError(t, fix.handler.Handle(ctx, fix.event("orders/create", attributeOrderPayload)))
	require.NoError(t, fix.handler.Handle(ctx, fix.event("orders/create", attributeOrderPayload)))

	// One customer row despite two syncs.
	customers, total, err := fix.customers.Search(ctx, testShop, "ada", 10, 0)
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	assert.Len(t, customers, 1)
}

func TestOrderCreatedMalformedPayload(t *testing.T) {
	fix := newFixture(t)
	err := fix.handler.Handle(context.Background(), fix.event("orders/create", `{not json`))
	require.Error(t, err)
}

func TestCanHandle(t *testing.T) {
	fix := newFixture(t)
	assert.True(t, fix.handler.CanHandle("orders/create"))
	assert.False(t, fix.handler.CanHandle("orders/updated"))
}
