package money

import (
	"time"
)

// ISODate is the canonical zero-padded date layout. All stored dates use it
// so that lexicographic comparison matches chronological order.
const ISODate = "2006-01-02"

// dateLayouts are tried in order when canonicalizing a date string. Receipts
// commonly print day-first dates, so those come right after ISO.
var dateLayouts = []string{
	ISODate,
	"02-01-2006",
	"02/01/2006",
	"2006/01/02",
	time.RFC3339,
}

// ToCanonicalDate parses a date string in any supported layout and returns
// it truncated to the calendar day. Unparseable input falls back to now --
// a deliberate lenient policy so a bad date never blocks the pipeline.
// Callers needing strict validation should check the input themselves.
func ToCanonicalDate(input string, now time.Time) time.Time {
	trimmed := input
	if len(trimmed) > 10 {
		// Timestamps like "2024-07-19T10:00:00Z" still parse below, but a
		// plain date with trailing junk should use its date part.
		if t, err := time.Parse(ISODate, trimmed[:10]); err == nil {
			return t
		}
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, trimmed); err == nil {
			return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
		}
	}
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
}

// CanonicalDateString canonicalizes a date string to zero-padded ISO form.
func CanonicalDateString(input string, now time.Time) string {
	return ToCanonicalDate(input, now).Format(ISODate)
}

// DateString formats a time as a canonical ISO date.
func DateString(t time.Time) string {
	return t.Format(ISODate)
}
