package assistant

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	apperrors "github.com/Pomiro/assistant/internal/errors"
	"github.com/Pomiro/assistant/internal/observability"
)

// Fixed user-facing replies.
const (
	// HelpMessage lists the assistant's capabilities. It answers both the
	// start command and anything the classifier does not recognize.
	HelpMessage = "Hi! I'm your Calendar Bot. You can tell me to create events like:\n" +
		"'Set a meeting with Mikhail today at 17:00'\n" +
		"Or ask me 'What do I have today?'"

	// NoEventsMessage answers a today query with an empty calendar.
	NoEventsMessage = "You have no events scheduled for today."

	createdReplyFormat = "Event created successfully!\nView it here: %s"
	errorReplyFormat   = "Sorry, I couldn't process that request. Error: %s"
	todayHeader        = "Your events for today:"
)

// Router orchestrates classification, extraction, event building and the
// calendar calls for one message at a time.
type Router struct {
	classifier *Classifier
	extractor  *Extractor
	builder    *Builder
	calendar   Calendar
	logger     *slog.Logger
}

// NewRouter creates the request router.
func NewRouter(classifier *Classifier, extractor *Extractor, builder *Builder, calendar Calendar, logger *slog.Logger) *Router {
	return &Router{
		classifier: classifier,
		extractor:  extractor,
		builder:    builder,
		calendar:   calendar,
		logger:     logger,
	}
}

// Handle processes one incoming message and returns the single reply text.
// Every pipeline failure is caught here and rendered as one user-facing
// error line; nothing is retried.
func (r *Router) Handle(ctx context.Context, msg RawMessage) string {
	reqCtx := observability.NewRequestContext(r.logger, msg.ChatID)
	ctx = observability.WithRequestContext(ctx, reqCtx)
	reqCtx.Info("message received",
		slog.String("text", msg.Text),
		slog.Int(observability.LogFieldMessageLen, len(msg.Text)))

	reply, err := r.handle(ctx, reqCtx, msg)
	if err != nil {
		reqCtx.Error("request failed", err,
			slog.String(observability.LogFieldErrorCode, string(apperrors.CodeOf(err))),
			slog.Int64(observability.LogFieldDuration, reqCtx.DurationMs()))
		return fmt.Sprintf(errorReplyFormat, apperrors.UserMessageOf(err))
	}

	reqCtx.Info("request handled",
		slog.Int64(observability.LogFieldDuration, reqCtx.DurationMs()))
	return reply
}

func (r *Router) handle(ctx context.Context, reqCtx *observability.RequestContext, msg RawMessage) (string, error) {
	intent, err := r.classifier.Classify(ctx, msg.Text)
	if err != nil {
		return "", err
	}
	reqCtx.Info("intent classified",
		slog.String(observability.LogFieldIntent, string(intent.Type)))

	switch intent.Type {
	case IntentAddEvent:
		return r.handleAddEvent(ctx, reqCtx, intent.OriginalText)
	case IntentShowToday:
		return r.handleShowToday(ctx, reqCtx)
	default:
		return HelpMessage, nil
	}
}

func (r *Router) handleAddEvent(ctx context.Context, reqCtx *observability.RequestContext, text string) (string, error) {
	slots, err := r.extractor.Extract(ctx, text)
	if err != nil {
		return "", err
	}
	reqCtx.Info("slots extracted",
		slog.String("title", slots.Title),
		slog.String("date", slots.Date),
		slog.String("time", slots.Time),
		slog.String("person", slots.Person),
		slog.String("duration", slots.Duration))

	event, err := r.builder.Build(slots)
	if err != nil {
		return "", err
	}
	reqCtx.Info("event built",
		slog.String("summary", event.Summary),
		slog.Time("start", event.Start),
		slog.Time("end", event.End))

	link, err := r.calendar.CreateEvent(ctx, event)
	if err != nil {
		return "", apperrors.CalendarService("Failed to create calendar event", err)
	}

	return fmt.Sprintf(createdReplyFormat, link), nil
}

func (r *Router) handleShowToday(ctx context.Context, reqCtx *observability.RequestContext) (string, error) {
	entries, err := r.calendar.ListToday(ctx)
	if err != nil {
		return "", apperrors.CalendarService("Failed to list today's events", err)
	}
	reqCtx.Info("today's events listed", slog.Int("count", len(entries)))

	if len(entries) == 0 {
		return NoEventsMessage, nil
	}

	// The calendar collaborator returns entries pre-sorted by start time.
	lines := make([]string, 0, len(entries)+1)
	lines = append(lines, todayHeader)
	for _, entry := range entries {
		lines = append(lines, fmt.Sprintf("- %s - %s", entry.Start.Format("15:04"), entry.Summary))
	}

	return strings.Join(lines, "\n"), nil
}
