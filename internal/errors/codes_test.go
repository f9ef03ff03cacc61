package errors

import (
	stderrors "errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPipelineError_Unwrap(t *testing.T) {
	cause := stderrors.New("boom")
	err := CalendarService("Failed to create calendar event", cause)

	assert.True(t, stderrors.Is(err, cause))
	assert.Equal(t, ErrCodeCalendarService, CodeOf(err))
}

func TestUserMessage_FlattensCauseChain(t *testing.T) {
	inner := Format("Please provide time in HH:MM format (24-hour)")
	outer := Schedule(inner)

	assert.Equal(t, "date/time error: Please provide time in HH:MM format (24-hour)", outer.UserMessage())
}

func TestCodeOf_PlainError(t *testing.T) {
	assert.Equal(t, ErrorCode(""), CodeOf(stderrors.New("plain")))
}

func TestUserMessageOf_PlainError(t *testing.T) {
	assert.Equal(t, "plain", UserMessageOf(stderrors.New("plain")))
}
