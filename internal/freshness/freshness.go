// Package freshness reads and rewrites the "Last Updated" stamp carried by
// generated documents.
package freshness

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

// DateLayout is the stamp's date format.
const DateLayout = "2006-01-02"

// stampPattern matches "Last Updated: 2024-01-31" with optional bold markers.
var stampPattern = regexp.MustCompile(`(?mi)^(\s*\**last updated:?\**:?\s*\**\s*)(\d{4}-\d{2}-\d{2})`)

// Line renders a stamp line for date.
func Line(date time.Time) string {
	return fmt.Sprintf("**Last Updated:** %s", date.Format(DateLayout))
}

// Parse returns the first stamp date in text.
func Parse(text string) (time.Time, bool) {
	m := stampPattern.FindStringSubmatch(text)
	if m == nil {
		return time.Time{}, false
	}
	date, err := time.ParseInLocation(DateLayout, m[2], time.UTC)
	if err != nil {
		return time.Time{}, false
	}
	return date, true
}

// Restamp replaces every stamp date in text with date. If text has no stamp,
// one is appended on its own line. Nothing else in text changes.
func Restamp(text string, date time.Time) string {
	formatted := date.Format(DateLayout)
	if stampPattern.MatchString(text) {
		return stampPattern.ReplaceAllString(text, "${1}"+formatted)
	}
	if text != "" && !strings.HasSuffix(text, "\n") {
		text += "\n"
	}
	return text + "\n" + Line(date) + "\n"
}

// Age is how long ago last was, measured at now. Never negative.
func Age(last, now time.Time) time.Duration {
	if now.Before(last) {
		return 0
	}
	return now.Sub(last)
}

// Days renders a duration in whole days.
func Days(d time.Duration) int {
	return int(d / (24 * time.Hour))
}
