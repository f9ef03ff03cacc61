package assistant

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Pomiro/assistant/internal/timeparse"
)

// mockCalendar records created events and returns canned listings.
type mockCalendar struct {
	link    string
	entries []CalendarEntry
	err     error

	created []*CalendarEvent
}

func (m *mockCalendar) CreateEvent(_ context.Context, event *CalendarEvent) (string, error) {
	if m.err != nil {
		return "", m.err
	}
	m.created = append(m.created, event)
	return m.link, nil
}

func (m *mockCalendar) ListToday(context.Context) ([]CalendarEntry, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.entries, nil
}

// routerCompleter answers the classification and extraction prompts with
// canned replies, telling them apart by their fixed leading line.
type routerCompleter struct {
	intentReply string
	slotsReply  string
}

func (r *routerCompleter) Complete(_ context.Context, prompt string) (string, error) {
	if strings.HasPrefix(prompt, "Classify") {
		return r.intentReply, nil
	}
	return r.slotsReply, nil
}

func newTestRouter(completer Completer, cal Calendar) *Router {
	return newTestRouterWithLogger(completer, cal, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func newTestRouterWithLogger(completer Completer, cal Calendar, logger *slog.Logger) *Router {
	// The clock is pinned to noon so "today" tests are deterministic.
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, timeparse.HomeZone())
	normalizer := timeparse.NewNormalizer().WithNow(func() time.Time { return now })
	return NewRouter(
		NewClassifier(completer),
		NewExtractor(completer),
		NewBuilder(normalizer),
		cal,
		logger,
	)
}

func intentReply(label string) string {
	return "```json\n{\"type\": \"" + label + "\", \"original_text\": \"x\"}\n```"
}

func TestRouter_AddEvent(t *testing.T) {
	completer := &routerCompleter{
		intentReply: intentReply("add_event"),
		slotsReply: "```json\n" +
			`{"title": "Sync", "date": "tomorrow", "time": "09:00", "person": "Ana"}` +
			"\n```",
	}
	cal := &mockCalendar{link: "https://calendar.example/ev1"}
	r := newTestRouter(completer, cal)

	reply := r.Handle(context.Background(), RawMessage{ChatID: 7, Text: "sync with Ana tomorrow at 9"})

	assert.Equal(t, "Event created successfully!\nView it here: https://calendar.example/ev1", reply)
	require.Len(t, cal.created, 1)
	created := cal.created[0]
	assert.Equal(t, "Sync", created.Summary)
	assert.Equal(t, "Meeting with Ana", created.Description)
	assert.Equal(t, time.Hour, created.End.Sub(created.Start))
}

func TestRouter_ShowTodayEmpty(t *testing.T) {
	completer := &routerCompleter{intentReply: intentReply("show_today")}
	r := newTestRouter(completer, &mockCalendar{})

	reply := r.Handle(context.Background(), RawMessage{ChatID: 7, Text: "what do I have today?"})

	assert.Equal(t, NoEventsMessage, reply)
}

func TestRouter_ShowTodayRendersChronologicalLines(t *testing.T) {
	day := time.Date(2025, 6, 15, 0, 0, 0, 0, timeparse.HomeZone())
	completer := &routerCompleter{intentReply: intentReply("show_today")}
	cal := &mockCalendar{entries: []CalendarEntry{
		{Start: day.Add(9 * time.Hour), Summary: "Standup"},
		{Start: day.Add(15*time.Hour + 30*time.Minute), Summary: "Sync with Ana"},
	}}
	r := newTestRouter(completer, cal)

	reply := r.Handle(context.Background(), RawMessage{ChatID: 7, Text: "today?"})

	assert.Equal(t, "Your events for today:\n- 09:00 - Standup\n- 15:30 - Sync with Ana", reply)
}

func TestRouter_UnknownIntentGetsHelp(t *testing.T) {
	completer := &routerCompleter{intentReply: intentReply("tell_joke")}
	r := newTestRouter(completer, &mockCalendar{})

	reply := r.Handle(context.Background(), RawMessage{ChatID: 7, Text: "tell me a joke"})

	assert.Equal(t, HelpMessage, reply)
}

func TestRouter_ClassificationParseFailureIsErrorLine(t *testing.T) {
	completer := &routerCompleter{intentReply: "definitely not json"}
	r := newTestRouter(completer, &mockCalendar{})

	reply := r.Handle(context.Background(), RawMessage{ChatID: 7, Text: "x"})

	assert.True(t, strings.HasPrefix(reply, "Sorry, I couldn't process that request. Error: "), reply)
}

func TestRouter_MissingTimeIsErrorLine(t *testing.T) {
	completer := &routerCompleter{
		intentReply: intentReply("add_event"),
		slotsReply:  "```json\n{\"title\": \"Sync\", \"date\": \"tomorrow\"}\n```",
	}
	r := newTestRouter(completer, &mockCalendar{})

	reply := r.Handle(context.Background(), RawMessage{ChatID: 7, Text: "x"})

	assert.Contains(t, reply, "Sorry, I couldn't process that request. Error: ")
	assert.Contains(t, reply, "Time is required")
}

func TestRouter_PastInstantIsErrorLine(t *testing.T) {
	completer := &routerCompleter{
		intentReply: intentReply("add_event"),
		// 08:00 precedes the pinned noon clock.
		slotsReply: "```json\n{\"title\": \"Sync\", \"date\": \"today\", \"time\": \"08:00\"}\n```",
	}
	r := newTestRouter(completer, &mockCalendar{})

	reply := r.Handle(context.Background(), RawMessage{ChatID: 7, Text: "x"})

	assert.Contains(t, reply, "Cannot create events in the past")
}

func TestRouter_LogsRawCompletionReplies(t *testing.T) {
	completer := &routerCompleter{
		intentReply: intentReply("add_event"),
		slotsReply:  "```json\n{\"title\": \"Sync\", \"date\": \"tomorrow\", \"time\": \"09:00\"}\n```",
	}
	cal := &mockCalendar{link: "https://calendar.example/ev1"}

	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))
	r := newTestRouterWithLogger(completer, cal, logger)

	r.Handle(context.Background(), RawMessage{ChatID: 7, Text: "sync tomorrow at 9"})

	logs := buf.String()
	assert.Contains(t, logs, "intent completion received")
	assert.Contains(t, logs, "add_event")
	assert.Contains(t, logs, "slot completion received")
	assert.Contains(t, logs, "Sync")
}

func TestRouter_CalendarFailureIsErrorLine(t *testing.T) {
	completer := &routerCompleter{
		intentReply: intentReply("add_event"),
		slotsReply:  "```json\n{\"title\": \"Sync\", \"date\": \"tomorrow\", \"time\": \"09:00\"}\n```",
	}
	cal := &mockCalendar{err: errors.New("insert: 503")}
	r := newTestRouter(completer, cal)

	reply := r.Handle(context.Background(), RawMessage{ChatID: 7, Text: "x"})

	assert.Contains(t, reply, "Failed to create calendar event")
}
