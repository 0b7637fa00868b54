package application

import (
	"time"

	"pickupstand/internal/domain"
)

// maxBlackoutBumps bounds how far a projected date slides forward when
// consecutive weeks are blacked out.
const maxBlackoutBumps = 8

// ProjectOccurrences returns the next `horizon` pickup dates after
// anchor in the frequency's cadence. A blocked date slides forward a
// week at a time, keeping the weekday, without shifting the cadence of
// later occurrences.
func ProjectOccurrences(anchor time.Time, freq domain.Frequency, horizon int, blocked func(time.Time) bool) []time.Time {
	if horizon <= 0 {
		return nil
	}
	out := make([]time.Time, 0, horizon)
	cursor := anchor
	for i := 0; i < horizon; i++ {
		cursor = freq.Next(cursor)
		date := cursor
		for bumps := 0; blocked != nil && blocked(date) && bumps < maxBlackoutBumps; bumps++ {
			date = date.AddDate(0, 0, 7)
		}
		out = append(out, date)
	}
	return out
}
