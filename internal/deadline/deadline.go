// Package deadline turns free-form deadline expressions into calendar dates.
//
// Parsing is a pure function of the input and the supplied current date. The
// recognised forms are tried in a fixed order and the first match wins:
// keywords, weekday names, fixed shorthands, period ends, relative durations
// and finally exact dates.
package deadline

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Layout is the storage and display format of a deadline.
const Layout = "2006-01-02"

// Formats documents every accepted expression. Front ends show it as help text.
const Formats = `Supported formats:
  Keywords:
    today               - Today's date
    tomorrow, tmr       - Tomorrow
    monday, mon         - Next Monday (or any weekday, never today)

  Shorthands:
    week, 1week, 1w     - 7 days from now
    2weeks, 2w          - 14 days from now
    month, 1month, 1m   - 30 days from now
    3months, 3m         - 90 days from now

  Relative:
    +5d, 5d, in 5 days  - 5 days from now
    +2w, 2 weeks        - 2 weeks from now
    +1m, 1 month        - 30 days from now
    -3d                 - 3 days ago

  Period ends:
    eow, endofweek      - End of current week (Sunday)
    eom, endofmonth     - Last day of current month
    eoy, endofyear      - December 31st

  Exact dates:
    2026-02-10          - ISO format (YYYY-MM-DD)
    10/02/2026          - Day first (DD/MM/YYYY)
    02-10-2026          - Month first (MM-DD-YYYY)`

// ParseError is returned when an expression matches none of the known forms.
type ParseError struct {
	Input string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("unrecognised deadline %q: use a keyword (today, tomorrow), a weekday (friday), "+
		"a shorthand (2w, eom), a relative duration (+5d, in 3 weeks) or a date (2026-02-10, 10/02/2026, 02-10-2026)", e.Input)
}

const (
	minYear = 1
	maxYear = 9999
)

// matcher reports the date an expression denotes, if it recognises it.
// Input is already trimmed and lower-cased; today is a calendar day in UTC.
type matcher func(input string, today time.Time) (time.Time, bool)

var matchers = []matcher{
	offsetTable(map[string]int{
		"today":    0,
		"tomorrow": 1,
		"tmr":      1,
	}),
	matchWeekday,
	offsetTable(map[string]int{
		"week":    7,
		"1week":   7,
		"1w":      7,
		"2weeks":  14,
		"2w":      14,
		"month":   30,
		"1month":  30,
		"1m":      30,
		"3months": 90,
		"3m":      90,
	}),
	matchPeriodEnd,
	matchRelative,
	matchExactDate,
}

// Parse resolves input relative to today. Only the calendar date of today
// is used; the result is midnight UTC of the resolved day.
func Parse(input string, today time.Time) (time.Time, error) {
	normalized := strings.ToLower(strings.TrimSpace(input))
	day := Day(today)
	for _, match := range matchers {
		if date, ok := match(normalized, day); ok {
			if !storable(date) {
				break
			}
			return date, nil
		}
	}
	return time.Time{}, &ParseError{Input: input}
}

// storable reports whether date survives a round trip through Layout,
// which holds four-digit years only.
func storable(date time.Time) bool {
	return date.Year() >= minYear && date.Year() <= maxYear
}

// Day strips the time of day from t, keeping its calendar date.
func Day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// Format renders a deadline in its storage form.
func Format(t time.Time) string {
	return t.Format(Layout)
}

func offsetTable(table map[string]int) matcher {
	return func(input string, today time.Time) (time.Time, bool) {
		days, ok := table[input]
		if !ok {
			return time.Time{}, false
		}
		return today.AddDate(0, 0, days), true
	}
}

var weekdays = map[string]time.Weekday{
	"monday":    time.Monday,
	"mon":       time.Monday,
	"tuesday":   time.Tuesday,
	"tue":       time.Tuesday,
	"wednesday": time.Wednesday,
	"wed":       time.Wednesday,
	"thursday":  time.Thursday,
	"thu":       time.Thursday,
	"friday":    time.Friday,
	"fri":       time.Friday,
	"saturday":  time.Saturday,
	"sat":       time.Saturday,
	"sunday":    time.Sunday,
	"sun":       time.Sunday,
}

// matchWeekday resolves to the next occurrence strictly after today.
func matchWeekday(input string, today time.Time) (time.Time, bool) {
	target, ok := weekdays[input]
	if !ok {
		return time.Time{}, false
	}
	ahead := (int(target) - int(today.Weekday()) + 7) % 7
	if ahead == 0 {
		ahead = 7
	}
	return today.AddDate(0, 0, ahead), true
}

func matchPeriodEnd(input string, today time.Time) (time.Time, bool) {
	switch input {
	case "eow", "endofweek":
		// Weeks start on Monday, so Sunday closes the week.
		return today.AddDate(0, 0, (7-int(today.Weekday()))%7), true
	case "eom", "endofmonth":
		return time.Date(today.Year(), today.Month()+1, 0, 0, 0, 0, 0, time.UTC), true
	case "eoy", "endofyear":
		return time.Date(today.Year(), time.December, 31, 0, 0, 0, 0, time.UTC), true
	}
	return time.Time{}, false
}

// A leading minus backdates the deadline.
var relativePattern = regexp.MustCompile(`^(?:in\s+)?([+-])?\s*(\d{1,6})\s*(d|days?|w|weeks?|m|months?)$`)

var unitDays = map[byte]int{'d': 1, 'w': 7, 'm': 30}

func matchRelative(input string, today time.Time) (time.Time, bool) {
	groups := relativePattern.FindStringSubmatch(input)
	if groups == nil {
		return time.Time{}, false
	}
	n, err := strconv.Atoi(groups[2])
	if err != nil {
		return time.Time{}, false
	}
	if groups[1] == "-" {
		n = -n
	}
	return today.AddDate(0, 0, n*unitDays[groups[3][0]]), true
}

// Single-digit day and month layouts also accept zero-padded values.
var exactLayouts = []string{
	"2006-1-2",
	"2/1/2006",
	"1-2-2006",
}

func matchExactDate(input string, _ time.Time) (time.Time, bool) {
	for _, layout := range exactLayouts {
		if date, err := time.Parse(layout, input); err == nil {
			return date, true
		}
	}
	return time.Time{}, false
}
