package quiz

import (
	"errors"
	"fmt"
)

// Error taxonomy shared by the engine packages. Callers match with errors.Is.
var (
	// ErrInvalidQuestionData marks a source pair with empty text or an answer
	// that normalizes to nothing. Non-fatal during partitioning.
	ErrInvalidQuestionData = errors.New("invalid question data")

	// ErrEmptyPool means no usable questions remained after filtering.
	ErrEmptyPool = errors.New("no usable questions")

	// ErrInvalidConfiguration rejects a call before any work is attempted.
	ErrInvalidConfiguration = errors.New("invalid configuration")

	// ErrAttemptState indicates a caller bug in the attempt lifecycle.
	ErrAttemptState = errors.New("invalid attempt state")
)

// ConfigError describes a rejected configuration value.
type ConfigError struct {
	Field string
	Value any
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("invalid configuration: %s = %v", e.Field, e.Value)
}

func (e *ConfigError) Unwrap() error { return ErrInvalidConfiguration }

// QuestionError reports a single pool row that could not become a Question.
// Index is the 0-based position of the pair in the source pool.
type QuestionError struct {
	Index  int
	Reason string
}

func (e QuestionError) Error() string {
	return fmt.Sprintf("pool entry %d: %s", e.Index+1, e.Reason)
}

func (e QuestionError) Unwrap() error { return ErrInvalidQuestionData }
