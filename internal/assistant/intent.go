package assistant

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	apperrors "github.com/Pomiro/assistant/internal/errors"
	"github.com/Pomiro/assistant/internal/observability"
)

// Classifier classifies free text into one of the recognized intents using
// the text-completion collaborator.
type Classifier struct {
	completer Completer
}

// NewClassifier creates an intent classifier.
func NewClassifier(completer Completer) *Classifier {
	return &Classifier{completer: completer}
}

// Classify determines the intent of the user input. Labels outside the
// recognized set map to IntentUnknown; a completion that does not match the
// schema fails with a classification parse error.
func (c *Classifier) Classify(ctx context.Context, text string) (Intent, error) {
	prompt := fmt.Sprintf(intentPromptTemplate, text)

	reply, err := c.completer.Complete(ctx, prompt)
	if err != nil {
		return Intent{}, apperrors.ClassificationParse(err)
	}
	logCompletion(ctx, "intent completion received", reply)

	var raw struct {
		Type         string `json:"type"`
		OriginalText string `json:"original_text"`
	}
	if err := unmarshalStructured(reply, &raw); err != nil {
		return Intent{}, apperrors.ClassificationParse(err)
	}

	original := raw.OriginalText
	if original == "" {
		original = text
	}

	switch strings.ToLower(strings.TrimSpace(raw.Type)) {
	case "add_event":
		return Intent{Type: IntentAddEvent, OriginalText: original}, nil
	case "show_today":
		return Intent{Type: IntentShowToday, OriginalText: original}, nil
	default:
		// Classification never blocks the conversation; anything else
		// routes to the help reply.
		return Intent{Type: IntentUnknown, OriginalText: original}, nil
	}
}

// logCompletion records a raw completion reply to the diagnostic log under
// the current request context. Raw replies are logged before parsing so
// schema mismatches stay debuggable postmortem.
func logCompletion(ctx context.Context, msg, reply string) {
	attr := slog.String("content", reply)
	if reqCtx, ok := observability.FromContext(ctx); ok {
		reqCtx.Info(msg, attr)
		return
	}
	slog.Default().LogAttrs(ctx, slog.LevelInfo, msg, attr)
}

// jsonFencePattern strips a markdown code fence around the structured reply.
var jsonFencePattern = regexp.MustCompile("```(?:json)?\\s*([\\s\\S]*?)\\s*```")

// unmarshalStructured parses a schema-constrained completion reply. Models
// often wrap the JSON block in a markdown fence; both shapes are accepted.
func unmarshalStructured(reply string, v any) error {
	content := strings.TrimSpace(reply)

	if matches := jsonFencePattern.FindStringSubmatch(content); len(matches) > 1 {
		content = matches[1]
	}

	if err := json.Unmarshal([]byte(content), v); err != nil {
		return fmt.Errorf("reply does not match schema: %w", err)
	}
	return nil
}

// intentPromptTemplate is the fixed classification prompt. The appended
// format instructions constrain the reply to a machine-readable block.
const intentPromptTemplate = `Classify the user's request into one of the allowed intents.

Allowed intents:
- add_event: the user wants to create a calendar event
- show_today: the user asks what is scheduled for today

Text: %s

The output should be a markdown code snippet formatted in the following schema, including the leading and trailing "` + "```json" + `" and "` + "```" + `":

` + "```json" + `
{
	"type": string  // one of: add_event, show_today
	"original_text": string  // the user's text, unchanged
}
` + "```"
