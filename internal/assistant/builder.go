package assistant

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	apperrors "github.com/Pomiro/assistant/internal/errors"
	"github.com/Pomiro/assistant/internal/timeparse"
)

// defaultDurationHours is used whenever the extracted duration is absent or
// not a usable number. Falling back silently is a deliberate leniency policy.
const defaultDurationHours = 1.0

// Builder combines extracted slots with a normalized start instant into a
// calendar-service-ready event.
type Builder struct {
	normalizer *timeparse.Normalizer
}

// NewBuilder creates an event builder.
func NewBuilder(normalizer *timeparse.Normalizer) *Builder {
	return &Builder{normalizer: normalizer}
}

// Build constructs the event. Time is the one required slot; an absent date
// resolves to today inside the normalizer. Normalization failures are wrapped
// as schedule errors.
func (b *Builder) Build(slots EventSlots) (*CalendarEvent, error) {
	if strings.TrimSpace(slots.Time) == "" {
		return nil, apperrors.MissingField("Time is required")
	}

	start, err := b.normalizer.Normalize(slots.Date, slots.Time)
	if err != nil {
		return nil, apperrors.Schedule(err)
	}

	duration := parseDuration(slots.Duration)

	event := &CalendarEvent{
		Summary:  slots.Title,
		Start:    start,
		End:      start.Add(time.Duration(duration * float64(time.Hour))),
		TimeZone: timeparse.TimeZoneName,
	}

	if slots.Person != "" {
		event.Description = fmt.Sprintf("Meeting with %s", slots.Person)
	}

	return event, nil
}

// parseDuration interprets the duration token as a floating-point number of
// hours. Anything unusable, including non-positive values, defaults.
func parseDuration(token string) float64 {
	d, err := strconv.ParseFloat(strings.TrimSpace(token), 64)
	if err != nil || d <= 0 {
		return defaultDurationHours
	}
	return d
}
