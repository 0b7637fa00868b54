package application

import (
	"testing"
	"time"

	"pickupstand/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePickupDate(t *testing.T) {
	want := time.Date(2026, time.March, 7, 0, 0, 0, 0, time.UTC)

	for _, raw := range []string{
		"2026-03-07",
		"03/07/2026",
		"3/7/2026",
		"March 7, 2026",
		"Mar 7, 2026",
		"Sat Mar 7 2026",
	} {
		got, err := parsePickupDate(raw)
		require.NoError(t, err, raw)
		assert.True(t, got.Equal(want), "%s parsed to %s", raw, got)
	}

	_, err := parsePickupDate("next saturday")
	assert.Error(t, err)
}

func TestParsePickupIntent(t *testing.T) {
	cfg := domain.DefaultSellingPlanConfig(testShop)

	intent := ParsePickupIntent([]domain.Attribute{
		{Name: "pickup date", Value: "2026-03-07"},
		{Name: "Pickup Time", Value: "10:00 AM – 12:00 PM"},
		{Name: "PICKUP LOCATION", Value: "Farm Stand"},
		{Name: "Subscription Frequency", Value: "Bi-Weekly"},
		{Name: "Gift Note", Value: "ignored"},
	}, cfg)

	require.True(t, intent.HasDate())
	assert.Equal(t, "2026-03-07", intent.Date.Format("2006-01-02"))
	assert.Equal(t, "10:00 AM – 12:00 PM", intent.SlotLabel)
	assert.Equal(t, "Farm Stand", intent.LocationName)
	assert.Equal(t, "Bi-Weekly", intent.FrequencyRaw)
}

func TestParsePickupIntentCustomAttributeNames(t *testing.T) {
	cfg := domain.DefaultSellingPlanConfig(testShop)
	cfg.DateAttribute = "Abholdatum"

	intent := ParsePickupIntent([]domain.Attribute{
		{Name: "Abholdatum", Value: "2026-03-07"},
		{Name: "Pickup Date", Value: "2026-04-01"},
	}, cfg)

	require.True(t, intent.HasDate())
	assert.Equal(t, "2026-03-07", intent.Date.Format("2006-01-02"))
}

func TestParsePickupIntentBadDateKeepsRaw(t *testing.T) {
	cfg := domain.DefaultSellingPlanConfig(testShop)

	intent := ParsePickupIntent([]domain.Attribute{
		{Name: "Pickup Date", Value: "whenever works"},
	}, cfg)

	assert.False(t, intent.HasDate())
	assert.Equal(t, "whenever works", intent.DateRaw)
}
