// Package errors defines the error taxonomy of the message handling pipeline.
package errors

import (
	stderrors "errors"
	"fmt"
)

// ErrorCode identifies a specific failure class in the pipeline.
type ErrorCode string

const (
	// ErrCodeFormat indicates an unparseable date or time string.
	ErrCodeFormat ErrorCode = "FORMAT"
	// ErrCodePastInstant indicates a same-day event scheduled before the current time.
	ErrCodePastInstant ErrorCode = "PAST_INSTANT"
	// ErrCodeMissingField indicates a required event slot is absent.
	ErrCodeMissingField ErrorCode = "MISSING_FIELD"
	// ErrCodeClassificationParse indicates the intent completion did not match the schema.
	ErrCodeClassificationParse ErrorCode = "CLASSIFICATION_PARSE"
	// ErrCodeExtractionParse indicates the slot completion did not match the schema.
	ErrCodeExtractionParse ErrorCode = "EXTRACTION_PARSE"
	// ErrCodeSchedule wraps normalization failures during event build.
	ErrCodeSchedule ErrorCode = "SCHEDULE"
	// ErrCodeCalendarService indicates a downstream calendar create/list failure.
	ErrCodeCalendarService ErrorCode = "CALENDAR_SERVICE"
)

// PipelineError is a structured error carrying a code and a user-presentable message.
type PipelineError struct {
	Code    ErrorCode
	Message string
	Cause   error
}

// Error implements the error interface.
func (e *PipelineError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause.
func (e *PipelineError) Unwrap() error {
	return e.Cause
}

// UserMessage returns the message suitable for a user-facing reply,
// with the cause chain appended when present.
func (e *PipelineError) UserMessage() string {
	if e.Cause != nil {
		var cause *PipelineError
		if stderrors.As(e.Cause, &cause) {
			return fmt.Sprintf("%s: %s", e.Message, cause.UserMessage())
		}
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

// Format creates a bad date/time format error.
func Format(msg string) *PipelineError {
	return &PipelineError{Code: ErrCodeFormat, Message: msg}
}

// PastInstant creates a past-instant error.
func PastInstant(msg string) *PipelineError {
	return &PipelineError{Code: ErrCodePastInstant, Message: msg}
}

// MissingField creates a missing required slot error.
func MissingField(msg string) *PipelineError {
	return &PipelineError{Code: ErrCodeMissingField, Message: msg}
}

// ClassificationParse creates an intent reply schema mismatch error.
func ClassificationParse(cause error) *PipelineError {
	return &PipelineError{Code: ErrCodeClassificationParse, Message: "could not understand the request", Cause: cause}
}

// ExtractionParse creates a slot reply schema mismatch error.
func ExtractionParse(cause error) *PipelineError {
	return &PipelineError{Code: ErrCodeExtractionParse, Message: "could not extract event details", Cause: cause}
}

// Schedule wraps a normalization failure raised while building an event.
func Schedule(cause error) *PipelineError {
	return &PipelineError{Code: ErrCodeSchedule, Message: "date/time error", Cause: cause}
}

// CalendarService wraps a downstream calendar failure.
func CalendarService(msg string, cause error) *PipelineError {
	return &PipelineError{Code: ErrCodeCalendarService, Message: msg, Cause: cause}
}

// CodeOf returns the pipeline error code of err, or an empty code when err
// carries none.
func CodeOf(err error) ErrorCode {
	var pe *PipelineError
	if stderrors.As(err, &pe) {
		return pe.Code
	}
	return ""
}

// UserMessageOf renders err for a user-facing reply line.
func UserMessageOf(err error) string {
	var pe *PipelineError
	if stderrors.As(err, &pe) {
		return pe.UserMessage()
	}
	return err.Error()
}
