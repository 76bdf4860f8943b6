package errors

import (
	"fmt"
)

// Category represents the type of error.
type Category string

const (
	CategoryReactive  Category = "reactive"
	CategoryComponent Category = "component"
	CategoryRender    Category = "render"
	CategoryBridge    Category = "bridge"
	CategoryProtocol  Category = "protocol"
	CategoryConfig    Category = "config"
	CategoryCLI       Category = "cli"
)

// EghactError is a structured error with a registered code, an explanation
// and an optional hint on how to fix it.
type EghactError struct {
	// Code is a unique error identifier (e.g., "E001").
	Code string

	// Category is the error type (reactive, component, etc.).
	Category Category

	// Message is a short description of the error.
	Message string

	// Detail is a longer explanation of the error.
	Detail string

	// Subject names the component, context or module the error is about.
	Subject string

	// Suggestion is a hint on how to fix the error.
	Suggestion string

	// DocURL is a link to documentation about this error.
	DocURL string

	// Wrapped is the underlying error, if any.
	Wrapped error
}

// Error implements the error interface.
func (e *EghactError) Error() string {
	msg := e.Message
	if e.Subject != "" {
		msg = fmt.Sprintf("%s (%s)", msg, e.Subject)
	}
	if e.Wrapped != nil {
		msg = msg + ": " + e.Wrapped.Error()
	}
	if e.Code != "" {
		return fmt.Sprintf("%s: %s", e.Code, msg)
	}
	return msg
}

// Unwrap returns the wrapped error for errors.Is/As support.
func (e *EghactError) Unwrap() error {
	return e.Wrapped
}

// Is reports whether target carries the same error code.
func (e *EghactError) Is(target error) bool {
	t, ok := target.(*EghactError)
	if !ok {
		return false
	}
	return t.Code != "" && t.Code == e.Code
}

// WithSubject records what the error is about.
func (e *EghactError) WithSubject(s string) *EghactError {
	e.Subject = s
	return e
}

// WithSuggestion adds a fix suggestion to the error.
func (e *EghactError) WithSuggestion(s string) *EghactError {
	e.Suggestion = s
	return e
}

// WithDetail adds a detailed explanation to the error.
func (e *EghactError) WithDetail(d string) *EghactError {
	e.Detail = d
	return e
}

// Wrap wraps another error.
func (e *EghactError) Wrap(err error) *EghactError {
	e.Wrapped = err
	return e
}

// New creates an EghactError from a registered error code.
func New(code string) *EghactError {
	template, ok := registry[code]
	if !ok {
		return &EghactError{
			Code:    code,
			Message: "Unknown error",
		}
	}
	return &EghactError{
		Code:     code,
		Category: template.Category,
		Message:  template.Message,
		Detail:   template.Detail,
		DocURL:   template.DocURL,
	}
}

// Newf creates a new EghactError with a formatted message (no code).
func Newf(category Category, format string, args ...any) *EghactError {
	return &EghactError{
		Category: category,
		Message:  fmt.Sprintf(format, args...),
	}
}

// FromError wraps a standard error in an EghactError.
func FromError(err error, code string) *EghactError {
	if err == nil {
		return nil
	}
	if ee, ok := err.(*EghactError); ok {
		return ee
	}
	return New(code).Wrap(err)
}

// HasCode reports whether err (or anything it wraps) carries code.
func HasCode(err error, code string) bool {
	for err != nil {
		if ee, ok := err.(*EghactError); ok && ee.Code == code {
			return true
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			return false
		}
		err = u.Unwrap()
	}
	return false
}
