package deadline

import (
	"fmt"
	"time"
)

const secondsPerDay = 24 * 60 * 60

// DaysUntil returns the signed number of calendar days from today to date.
func DaysUntil(date, today time.Time) int {
	return int((Day(date).Unix() - Day(today).Unix()) / secondsPerDay)
}

// Describe renders the distance to date as "in n days" or "n days ago".
// due is true when the date is today or already past.
func Describe(date, today time.Time) (text string, due bool) {
	days := DaysUntil(date, today)
	if days < 0 {
		return fmt.Sprintf("%d days ago", -days), true
	}
	return fmt.Sprintf("in %d days", days), days == 0
}
