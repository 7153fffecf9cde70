package errors

import (
	"errors"
	"fmt"
)

// Category groups errors by subsystem
type Category string

const (
	CategoryLLM     Category = "llm"
	CategoryShell   Category = "shell"
	CategoryConfig  Category = "config"
	CategoryInput   Category = "input"
	CategorySession Category = "session"
)

// AskError is the structured error type for the project
type AskError struct {
	Category  Category
	Code      string
	Message   string
	Retryable bool
	Cause     error
}

func (e *AskError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %s: %v", e.Category, e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s: %s", e.Category, e.Code, e.Message)
}

func (e *AskError) Unwrap() error {
	return e.Cause
}

func (e *AskError) Is(target error) bool {
	t, ok := target.(*AskError)
	if !ok {
		return false
	}
	return e.Code == t.Code && e.Category == t.Category
}

// IsRetryable checks whether an error is retryable.
// Returns false for nil errors or non-AskError types.
func IsRetryable(err error) bool {
	var ae *AskError
	if errors.As(err, &ae) {
		return ae.Retryable
	}
	return false
}

// GetCategory extracts the error category from an AskError.
// Returns an empty Category for nil errors or non-AskError types.
func GetCategory(err error) Category {
	var ae *AskError
	if errors.As(err, &ae) {
		return ae.Category
	}
	return ""
}

// GetCode extracts the error code from an AskError, or "" when absent.
func GetCode(err error) string {
	var ae *AskError
	if errors.As(err, &ae) {
		return ae.Code
	}
	return ""
}

// GetUserMessage returns a user-friendly message for the error.
// For AskError it returns the Message field; for other errors it returns Error().
func GetUserMessage(err error) string {
	if err == nil {
		return ""
	}
	var ae *AskError
	if errors.As(err, &ae) {
		return ae.Message
	}
	return err.Error()
}
