// Package busdate maps wall-clock time onto a logical event date. Venue
// nights run past midnight, so until the cutoff hour the "current" event
// date is still yesterday's calendar date.
package busdate

import (
	"time"

	"guestlist/internal/utils"
)

// DefaultCutoffHour is when a venue night rolls over to the next date.
const DefaultCutoffHour = 6

// At resolves the business date for a given instant and cutoff hour.
func At(now time.Time, cutoffHour int) string {
	if now.Hour() < cutoffHour {
		now = now.AddDate(0, 0, -1)
	}
	return utils.FormatDate(now)
}

// Today resolves the business date for the current local time.
func Today(cutoffHour int) string {
	return At(time.Now(), cutoffHour)
}
