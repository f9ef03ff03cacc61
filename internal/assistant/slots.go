package assistant

import (
	"context"
	"fmt"
	"strconv"

	apperrors "github.com/Pomiro/assistant/internal/errors"
)

// Extractor pulls named event fields out of free text using the
// text-completion collaborator.
type Extractor struct {
	completer Completer
}

// NewExtractor creates a slot extractor.
func NewExtractor(completer Completer) *Extractor {
	return &Extractor{completer: completer}
}

// Extract parses the completion reply into the event slot record. Fields the
// model leaves out come back blank; a reply that does not match the schema
// fails with an extraction parse error.
func (e *Extractor) Extract(ctx context.Context, text string) (EventSlots, error) {
	prompt := fmt.Sprintf(slotsPromptTemplate, text)

	reply, err := e.completer.Complete(ctx, prompt)
	if err != nil {
		return EventSlots{}, apperrors.ExtractionParse(err)
	}
	logCompletion(ctx, "slot completion received", reply)

	// event_duration arrives either as a JSON number or a quoted string,
	// depending on the model's mood. Both are kept as the raw token.
	var raw struct {
		EventType string `json:"event_type"`
		Title     string `json:"title"`
		Date      string `json:"date"`
		Time      string `json:"time"`
		Person    string `json:"person"`
		Duration  any    `json:"event_duration"`
	}
	if err := unmarshalStructured(reply, &raw); err != nil {
		return EventSlots{}, apperrors.ExtractionParse(err)
	}

	return EventSlots{
		EventType: raw.EventType,
		Title:     raw.Title,
		Date:      raw.Date,
		Time:      raw.Time,
		Person:    raw.Person,
		Duration:  durationToken(raw.Duration),
	}, nil
}

// durationToken renders the loosely-typed duration value as a string token,
// blank when absent.
func durationToken(v any) string {
	switch d := v.(type) {
	case nil:
		return ""
	case string:
		return d
	case float64:
		return strconv.FormatFloat(d, 'f', -1, 64)
	default:
		return fmt.Sprint(d)
	}
}

// slotsPromptTemplate is the fixed extraction prompt listing the six event
// fields, with format instructions appended.
const slotsPromptTemplate = `Extract calendar event information from the following text. If any information is missing, leave it blank.

Text: %s

The output should be a markdown code snippet formatted in the following schema, including the leading and trailing "` + "```json" + `" and "` + "```" + `":

` + "```json" + `
{
	"event_type": string  // Type of calendar event (meeting, task, etc.)
	"title": string  // Title or description of the event
	"date": string  // Date of the event
	"time": string  // Time of the event
	"person": string  // Person involved in the event (if any)
	"event_duration": float  // Duration of event in hours
}
` + "```"
