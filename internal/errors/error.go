package errors

import (
	stderrors "errors"
	"fmt"
)

// Category represents the type of error.
type Category string

const (
	CategoryResolution Category = "resolution"
	CategoryTransport  Category = "transport"
	CategoryProtocol   Category = "protocol"
	CategoryConfig     Category = "config"
	CategoryStorage    Category = "storage"
	CategoryCLI        Category = "cli"
)

// Sentinels for errors.Is. They match any HydroError with the same code.
var (
	ErrComponentNotFound = &HydroError{Code: "H001"}
	ErrStateMissing      = &HydroError{Code: "H002"}
	ErrHTTPStatus        = &HydroError{Code: "H010"}
	ErrTargetMissing     = &HydroError{Code: "H040"}
)

// HydroError is a structured error with a code, explanation and hint.
type HydroError struct {
	// Code is a unique error identifier (e.g., "H001").
	Code string

	// Category is the error type (resolution, transport, etc.).
	Category Category

	// Message is a short description of the error.
	Message string

	// Detail is a longer explanation of the error.
	Detail string

	// Suggestion is a hint on how to fix the error.
	Suggestion string

	// Status is the HTTP status code for transport errors, 0 otherwise.
	Status int

	// Wrapped is the underlying error, if any.
	Wrapped error
}

// Error implements the error interface.
func (e *HydroError) Error() string {
	msg := e.Message
	if e.Detail != "" {
		msg += ": " + e.Detail
	}
	if e.Wrapped != nil {
		msg += ": " + e.Wrapped.Error()
	}
	if e.Code != "" {
		return fmt.Sprintf("%s: %s", e.Code, msg)
	}
	return msg
}

// Unwrap returns the wrapped error for errors.Is/As support.
func (e *HydroError) Unwrap() error {
	return e.Wrapped
}

// Is reports whether target is a *HydroError with the same code.
func (e *HydroError) Is(target error) bool {
	t, ok := target.(*HydroError)
	if !ok || t.Code == "" {
		return false
	}
	return t.Code == e.Code
}

// WithSuggestion adds a fix suggestion to the error.
func (e *HydroError) WithSuggestion(s string) *HydroError {
	e.Suggestion = s
	return e
}

// WithDetail adds a detailed explanation to the error.
func (e *HydroError) WithDetail(d string) *HydroError {
	e.Detail = d
	return e
}

// WithStatus attaches an HTTP status code.
func (e *HydroError) WithStatus(status int) *HydroError {
	e.Status = status
	return e
}

// Wrap wraps another error.
func (e *HydroError) Wrap(err error) *HydroError {
	e.Wrapped = err
	return e
}

// New creates a HydroError from a registered error code.
func New(code string) *HydroError {
	template, ok := registry[code]
	if !ok {
		return &HydroError{
			Code:    code,
			Message: "Unknown error",
		}
	}
	return &HydroError{
		Code:     code,
		Category: template.Category,
		Message:  template.Message,
	}
}

// Newf creates a new HydroError with a formatted message (no code).
func Newf(category Category, format string, args ...any) *HydroError {
	return &HydroError{
		Category: category,
		Message:  fmt.Sprintf(format, args...),
	}
}

// FromError wraps a standard error in a HydroError.
func FromError(err error, code string) *HydroError {
	if err == nil {
		return nil
	}
	var he *HydroError
	if stderrors.As(err, &he) {
		return he
	}
	return New(code).Wrap(err)
}

// HasCode reports whether any error in err's chain is a HydroError with code.
func HasCode(err error, code string) bool {
	return stderrors.Is(err, &HydroError{Code: code})
}

// StatusOf returns the HTTP status attached to err's chain, or 0.
func StatusOf(err error) int {
	var he *HydroError
	for err != nil {
		if !stderrors.As(err, &he) {
			return 0
		}
		if he.Status != 0 {
			return he.Status
		}
		err = he.Wrapped
	}
	return 0
}
