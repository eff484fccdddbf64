package generation

import (
	"errors"
	"fmt"
)

var (
	ErrServiceUnavailable = errors.New("question generation service unavailable")
	ErrTimeout            = errors.New("question generation timed out")
	ErrEmptyResult        = errors.New("model response contained no questions")
	ErrProRequired        = errors.New("feature requires a paid tier")
)

// ValidationError rejects a request before any I/O happens.
type ValidationError struct {
	Field string
	Issue string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Issue)
}

// UserMessage is the message shown to the caller.
func (e *ValidationError) UserMessage() string {
	return fmt.Sprintf("Please check your %s. %s", fieldLabel(e.Field), e.Issue)
}

func fieldLabel(field string) string {
	switch field {
	case FieldJobDescription:
		return "job description"
	case FieldResume:
		return "resume"
	default:
		return field
	}
}

// StageError records the stage a generation failed in.
type StageError struct {
	Stage Stage
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("generation %s: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error {
	return e.Err
}
