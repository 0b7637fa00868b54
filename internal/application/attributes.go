package application

import (
	"fmt"
	"strings"
	"time"

	"pickupstand/internal/domain"
)

// PickupIntent is what the loosely-structured note attributes of an
// order resolve to.
type PickupIntent struct {
	DateRaw      string
	Date         *time.Time
	SlotLabel    string
	LocationName string
	FrequencyRaw string
}

// HasDate reports whether a pickup date was present and parseable.
func (p PickupIntent) HasDate() bool { return p.Date != nil }

// The date formats observed in the wild on pickup attributes. Tried in
// order; first hit wins.
var pickupDateLayouts = []string{
	"2006-01-02",
	"01/02/2006",
	"1/2/2006",
	"January 2, 2006",
	"Jan 2, 2006",
	"Mon Jan 2 2006",
	"Mon Jan 02 2006",
}

// parsePickupDate parses a pickup date attribute value.
func parsePickupDate(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	for _, layout := range pickupDateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized pickup date %q", raw)
}

// ParsePickupIntent extracts the pickup attributes an order carries.
// Attribute names come from the shop's config; matching is
// case-insensitive because checkout extensions have not been
// consistent about casing over the years.
func ParsePickupIntent(attrs []domain.Attribute, cfg *domain.SellingPlanConfig) PickupIntent {
	var intent PickupIntent
	for _, a := range attrs {
		name := strings.TrimSpace(a.Name)
		value := strings.TrimSpace(a.Value)
		if value == "" {
			continue
		}
		switch {
		case strings.EqualFold(name, cfg.DateAttribute):
			intent.DateRaw = value
			if t, err := parsePickupDate(value); err == nil {
				intent.Date = &t
			}
		case strings.EqualFold(name, cfg.TimeAttribute):
			intent.SlotLabel = value
		case strings.EqualFold(name, cfg.LocationAttribute):
			intent.LocationName = value
		case strings.EqualFold(name, cfg.FrequencyAttribute):
			intent.FrequencyRaw = value
		}
	}
	return intent
}
