package application

import (
	"context"
	"testing"

	"pickupstand/internal/domain"
	"pickupstand/internal/infrastructure/persistence"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizePhone(t *testing.T) {
	cases := map[string]string{
		"(555) 123-4567":   "+15551234567",
		"555-123-4567":     "+15551234567",
		"1 555 123 4567":   "+15551234567",
		"+1 555 123 4567":  "+15551234567",
		"+44 20 7946 0958": "+442079460958",
		"":                 "",
		"ext. 12":          "ext. 12",
	}
	for raw, want := range cases {
		assert.Equal(t, want, NormalizePhone(raw), "raw %q", raw)
	}
}

func TestMapProviderStatus(t *testing.T) {
	assert.Equal(t, domain.SmsStatusSent, mapProviderStatus("sent"))
	assert.Equal(t, domain.SmsStatusDelivered, mapProviderStatus("delivered"))
	assert.Equal(t, domain.SmsStatusFailed, mapProviderStatus("undelivered"))
	assert.Equal(t, domain.SmsStatusFailed, mapProviderStatus("failed"))
	assert.Equal(t, domain.SmsStatusQueued, mapProviderStatus("accepted"))
}

func newSmsFixture(t *testing.T) (*SmsService, *CRMService, *fakeSmsClient) {
	db := newTestDB(t)
	customers := persistence.NewGormCustomerRepository(db)
	smsRepo := persistence.NewGormSmsRepository(db)
	client := &fakeSmsClient{}

	crm := NewCRMService(
		customers,
		persistence.NewGormNoteRepository(db),
		persistence.NewGormScheduleRepository(db),
		smsRepo,
		seedShop(t, db),
		fakeShopifyClient{},
		zerolog.Nop(),
	)
	return NewSmsService(smsRepo, customers, client, zerolog.Nop()), crm, client
}

func TestSmsSendRecordsOutbound(t *testing.T) {
	svc, crm, client := newSmsFixture(t)
	ctx := context.Background()

	customer, err := crm.SyncCustomer(ctx, testShop, CustomerSync{
		ShopifyCustomerID: 42,
		FirstName:         "Ada",
		Phone:             "(555) 123-4567",
	})
	require.NoError(t, err)

	msg, err := svc.Send(ctx, testShop, customer.ID, "Your basket is ready")
	require.NoError(t, err)

	assert.Equal(t, domain.SmsOutbound, msg.Direction)
	assert.Equal(t, domain.SmsStatusQueued, msg.Status)
	require.NotNil(t, msg.TwilioSID)
	assert.Equal(t, []string{"Your basket is ready"}, client.sent)

	conv, err := svc.Conversation(ctx, customer.ID)
	require.NoError(t, err)
	require.Len(t, conv, 1)
}

func TestSmsSendRejectsCustomerWithoutPhone(t *testing.T) {
	svc, crm, client := newSmsFixture(t)
	ctx := context.Background()

	customer, err := crm.SyncCustomer(ctx, testShop, CustomerSync{ShopifyCustomerID: 42, Email: "ada@example.com"})
	require.NoError(t, err)

	_, err = svc.Send(ctx, testShop, customer.ID, "hello")
	require.Error(t, err)
	assert.Empty(t, client.sent)
}

func TestSmsHandleInboundMatchesByPhone(t *testing.T) {
	svc, crm, _ := newSmsFixture(t)
	ctx := context.Background()

	customer, err := crm.SyncCustomer(ctx, testShop, CustomerSync{
		ShopifyCustomerID: 42,
		Phone:             "555-123-4567",
	})
	require.NoError(t, err)

	msg, err := svc.HandleInbound(ctx, testShop, "+15551234567", "Running late!", "SM123")
	require.NoError(t, err)
	require.NotNil(t, msg)

	assert.Equal(t, customer.ID, msg.CustomerID)
	assert.Equal(t, domain.SmsInbound, msg.Direction)
	assert.Equal(t, domain.SmsStatusReceived, msg.Status)
}

func TestSmsHandleInboundCreatesBareCustomer(t *testing.T) {
	svc, crm, _ := newSmsFixture(t)
	ctx := context.Background()

	msg, err := svc.HandleInbound(ctx, testShop, "(555) 999-0000", "Do you have eggs?", "SM200")
	require.NoError(t, err)
	require.NotNil(t, msg)

	// A second unknown number gets its own bare customer.
	msg2, err := svc.HandleInbound(ctx, testShop, "(555) 999-1111", "hi", "SM201")
	require.NoError(t, err)
	assert.NotEqual(t, msg.CustomerID, msg2.CustomerID)

	detail, err := crm.Detail(ctx, msg.CustomerID)
	require.NoError(t, err)
	assert.Equal(t, "+15559990000", detail.Customer.DisplayName())
	assert.NotNil(t, detail.LastContactAt)
}

func TestSmsHandleInboundDuplicateSID(t *testing.T) {
	svc, _, _ := newSmsFixture(t)
	ctx := context.Background()

	first, err := svc.HandleInbound(ctx, testShop, "(555) 999-0000", "hello", "SM300")
	require.NoError(t, err)
	require.NotNil(t, first)

	dup, err := svc.HandleInbound(ctx, testShop, "(555) 999-0000", "hello", "SM300")
	require.NoError(t, err)
	assert.Nil(t, dup)

	conv, err := svc.Conversation(ctx, first.CustomerID)
	require.NoError(t, err)
	assert.Len(t, conv, 1)
}

func TestSmsStatusCallback(t *testing.T) {
	svc, crm, _ := newSmsFixture(t)
	ctx := context.Background()

	customer, err := crm.SyncCustomer(ctx, testShop, CustomerSync{ShopifyCustomerID: 42, Phone: "5551234567"})
	require.NoError(t, err)

	msg, err := svc.Send(ctx, testShop, customer.ID, "on the way")
	require.NoError(t, err)

	require.NoError(t, svc.HandleStatusCallback(ctx, *msg.TwilioSID, "delivered"))

	conv, err := svc.Conversation(ctx, customer.ID)
	require.NoError(t, err)
	require.Len(t, conv, 1)
	assert.Equal(t, domain.SmsStatusDelivered, conv[0].Status)

	// Unknown SIDs are tolerated.
	require.NoError(t, svc.HandleStatusCallback(ctx, "SM-unknown", "delivered"))
}
