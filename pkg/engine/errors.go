package engine

import (
	"errors"
	"fmt"
)

// ErrorCode classifies rendering failures.
type ErrorCode string

const (
	// ErrCodeUnresolvedJoiner means a bucket has fragments but no kind related
	// to it registered a joiner.
	ErrCodeUnresolvedJoiner ErrorCode = "UNRESOLVED_JOINER"

	// ErrCodeMissingPlaceholder means the template references a key that is
	// neither a bucket nor a placeholder option.
	ErrCodeMissingPlaceholder ErrorCode = "MISSING_PLACEHOLDER"

	// ErrCodeMalformedTemplate means the template has an unmatched brace.
	ErrCodeMalformedTemplate ErrorCode = "MALFORMED_TEMPLATE"

	// ErrCodeCancelled means the expansion context ended.
	ErrCodeCancelled ErrorCode = "CANCELLED"
)

// Error is a classified expansion error with context.
type Error struct {
	// Code is the error classification.
	Code ErrorCode `json:"code"`

	// Message is the human-readable error message.
	Message string `json:"message"`

	// Bucket is the capability bucket involved, if any.
	Bucket string `json:"bucket,omitempty"`

	// Key is the template key involved, if any.
	Key string `json:"key,omitempty"`

	// Index is the 1-based combination index, zero when not tied to one.
	Index int `json:"index,omitempty"`

	// Err is the underlying error.
	Err error `json:"-"`
}

// Error implements the error interface.
func (e *Error) Error() string {
	msg := fmt.Sprintf("[%s] %s", e.Code, e.Message)
	switch {
	case e.Bucket != "":
		msg += fmt.Sprintf(" (bucket=%s)", e.Bucket)
	case e.Key != "":
		msg += fmt.Sprintf(" (key=%s)", e.Key)
	}
	if e.Index > 0 {
		msg += fmt.Sprintf(" at combination %d", e.Index)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Unwrap returns the underlying error for error chain inspection.
func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches errors with the same code.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// WithIndex ties the error to a combination.
func (e *Error) WithIndex(index int) *Error {
	e.Index = index
	return e
}

// NewUnresolvedJoinerError creates an error for a bucket without a joiner.
func NewUnresolvedJoinerError(bucket string) *Error {
	return &Error{
		Code:    ErrCodeUnresolvedJoiner,
		Message: "no joiner registered for bucket",
		Bucket:  bucket,
	}
}

// NewMissingPlaceholderError creates an error for an unknown template key.
func NewMissingPlaceholderError(key string) *Error {
	return &Error{
		Code:    ErrCodeMissingPlaceholder,
		Message: "template references unknown key",
		Key:     key,
	}
}

// NewMalformedTemplateError creates an error for a template with bad braces.
func NewMalformedTemplateError(message string, offset int) *Error {
	return &Error{
		Code:    ErrCodeMalformedTemplate,
		Message: fmt.Sprintf("%s at offset %d", message, offset),
	}
}

// NewCancelledError wraps a context error.
func NewCancelledError(err error) *Error {
	return &Error{
		Code:    ErrCodeCancelled,
		Message: "expansion cancelled",
		Err:     err,
	}
}

// CodeOf returns the code of err, or an empty code when err is not an *Error.
func CodeOf(err error) ErrorCode {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// IsUnresolvedJoiner reports whether err is an unresolved joiner error.
func IsUnresolvedJoiner(err error) bool {
	return CodeOf(err) == ErrCodeUnresolvedJoiner
}

// IsMissingPlaceholder reports whether err is a missing placeholder error.
func IsMissingPlaceholder(err error) bool {
	return CodeOf(err) == ErrCodeMissingPlaceholder
}

// IsMalformedTemplate reports whether err is a malformed template error.
func IsMalformedTemplate(err error) bool {
	return CodeOf(err) == ErrCodeMalformedTemplate
}
