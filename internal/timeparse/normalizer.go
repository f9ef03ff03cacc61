// Package timeparse converts loosely-formatted date and time strings into
// absolute instants fixed to the assistant's home timezone.
package timeparse

import (
	"strings"
	"time"

	apperrors "github.com/Pomiro/assistant/internal/errors"
)

// TimeZoneName is the IANA label attached to every event the assistant builds.
const TimeZoneName = "Asia/Yekaterinburg"

// homeZone is the fixed UTC+5 offset of the service's home locale. All
// date/time arithmetic happens in this one zone; instants are serialized
// without the offset.
var homeZone = time.FixedZone("UTC+5", 5*60*60)

// HomeZone returns the fixed home timezone.
func HomeZone() *time.Location {
	return homeZone
}

// dateFormats are tried in order for numeric date tokens.
var dateFormats = []string{
	"2006-01-02",
	"02-01-2006",
	"02.01.2006",
	"02/01/2006",
}

// Relative date words, English and Russian.
var (
	todayWords    = []string{"today", "сегодня"}
	tomorrowWords = []string{"tomorrow", "завтра"}
)

// Normalizer resolves date and time tokens against the current wall clock.
type Normalizer struct {
	now func() time.Time
}

// NewNormalizer creates a normalizer using the system clock.
func NewNormalizer() *Normalizer {
	return &Normalizer{now: time.Now}
}

// WithNow returns a normalizer with a fixed clock, for tests.
func (n *Normalizer) WithNow(now func() time.Time) *Normalizer {
	return &Normalizer{now: now}
}

// Normalize combines a date token and a time token into a single instant in
// the home timezone.
//
// The date token resolves as: "today"/"сегодня"/empty to the current date,
// "tomorrow"/"завтра" to the next date, otherwise the first of the four
// supported numeric formats that parses. The time token must be a 24-hour
// HH:MM clock reading. The resulting instant is rejected as past only when
// the date resolved through the today branch; explicit dates are accepted
// even when they lie in the past.
func (n *Normalizer) Normalize(dateStr, timeStr string) (time.Time, error) {
	now := n.now().In(homeZone)

	date, isToday, err := n.resolveDate(dateStr, now)
	if err != nil {
		return time.Time{}, err
	}

	clock, err := parseClock(timeStr)
	if err != nil {
		return time.Time{}, err
	}

	instant := time.Date(date.Year(), date.Month(), date.Day(),
		clock.Hour(), clock.Minute(), 0, 0, homeZone)

	if isToday && instant.Before(now) {
		return time.Time{}, apperrors.PastInstant(
			"Cannot create events in the past. Please specify a future time.")
	}

	return instant, nil
}

// resolveDate resolves the date token and reports whether it took the today
// branch, which is the only branch subject to the past-instant check.
func (n *Normalizer) resolveDate(dateStr string, now time.Time) (time.Time, bool, error) {
	token := strings.ToLower(strings.TrimSpace(dateStr))

	if token == "" || containsWord(todayWords, token) {
		return now, true, nil
	}
	if containsWord(tomorrowWords, token) {
		return now.AddDate(0, 0, 1), false, nil
	}

	for _, format := range dateFormats {
		if d, err := time.ParseInLocation(format, token, homeZone); err == nil {
			return d, false, nil
		}
	}

	return time.Time{}, false, apperrors.Format(
		"Please provide date in YYYY-MM-DD format or use 'today'/'tomorrow'")
}

// parseClock parses a strict 24-hour HH:MM reading.
func parseClock(timeStr string) (time.Time, error) {
	clock, err := time.Parse("15:04", strings.TrimSpace(timeStr))
	if err != nil {
		return time.Time{}, apperrors.Format(
			"Please provide time in HH:MM format (24-hour)")
	}
	return clock, nil
}

func containsWord(words []string, token string) bool {
	for _, w := range words {
		if token == w {
			return true
		}
	}
	return false
}
