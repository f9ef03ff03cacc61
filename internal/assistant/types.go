// Package assistant implements the natural-language-to-calendar pipeline:
// intent classification, slot extraction, event building and request routing.
package assistant

import (
	"context"
	"time"
)

// RawMessage is one incoming free-text message. It is created per message
// and discarded after handling.
type RawMessage struct {
	ChatID     int64
	Text       string
	ReceivedAt time.Time
}

// IntentType is the classified purpose of a user message.
type IntentType string

const (
	// IntentAddEvent asks to create a calendar event.
	IntentAddEvent IntentType = "add_event"
	// IntentShowToday asks to list the current day's events.
	IntentShowToday IntentType = "show_today"
	// IntentUnknown covers everything the classifier does not recognize.
	IntentUnknown IntentType = "unknown"
)

// Intent is the classification result with the original text passed through.
type Intent struct {
	Type         IntentType
	OriginalText string
}

// EventSlots holds the named event fields extracted from free text. Absent
// fields are empty strings, never nil.
type EventSlots struct {
	EventType string `json:"event_type"`
	Title     string `json:"title"`
	Date      string `json:"date"`
	Time      string `json:"time"`
	Person    string `json:"person"`
	Duration  string `json:"event_duration"`
}

// CalendarEvent is a calendar-service-ready event. End is always after Start.
type CalendarEvent struct {
	Summary     string
	Start       time.Time
	End         time.Time
	Description string
	TimeZone    string
}

// CalendarEntry is one listed event: a start instant plus its summary.
type CalendarEntry struct {
	Start   time.Time
	Summary string
}

// Completer is the opaque text-completion collaborator: one prompt in, one
// completion out.
type Completer interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// Calendar is the calendar collaborator. It owns persistence and
// authentication; ListToday returns entries pre-sorted by start time.
type Calendar interface {
	CreateEvent(ctx context.Context, event *CalendarEvent) (string, error)
	ListToday(ctx context.Context) ([]CalendarEntry, error)
}
