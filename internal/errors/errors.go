// Package errors provides a lightweight structured error type (ForgeError)
// for category-based classification of build-fatal failures. Per-field
// validation failures are not errors in this sense; they travel as
// schema.Issues and never abort a build.
package errors

import (
	"fmt"
)

// ErrorCategory classifies a ForgeError.
type ErrorCategory string

const (
	// User-facing configuration and input errors
	CategoryConfig     ErrorCategory = "config"
	CategoryValidation ErrorCategory = "validation"

	// Build and processing errors
	CategoryBuild      ErrorCategory = "build"
	CategoryAsset      ErrorCategory = "asset"
	CategoryFileSystem ErrorCategory = "filesystem"

	// Runtime and infrastructure errors
	CategoryRuntime ErrorCategory = "runtime"
	CategoryState   ErrorCategory = "state"
)

// ErrorSeverity indicates how critical an error is.
type ErrorSeverity string

const (
	SeverityFatal   ErrorSeverity = "fatal"   // Stops execution
	SeverityError   ErrorSeverity = "error"   // Error, but not fatal
	SeverityWarning ErrorSeverity = "warning" // Continues with degraded functionality
)

// ForgeError is a structured error with category, severity and context.
type ForgeError struct {
	Category ErrorCategory `json:"category"`
	Severity ErrorSeverity `json:"severity"`
	Message  string        `json:"message"`
	Cause    error         `json:"cause,omitempty"`
	Context  ContextFields `json:"context,omitempty"`
}

// ContextFields carries structured context for ForgeError.
type ContextFields map[string]any

// Error implements the error interface.
func (e *ForgeError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s (%s): %s: %v", e.Category, e.Severity, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s (%s): %s", e.Category, e.Severity, e.Message)
}

// Unwrap implements error unwrapping.
func (e *ForgeError) Unwrap() error {
	return e.Cause
}

// WithContext adds context information to the error.
func (e *ForgeError) WithContext(key string, value any) *ForgeError {
	if e.Context == nil {
		e.Context = make(ContextFields)
	}
	e.Context[key] = value
	return e
}

// New creates a new ForgeError.
func New(category ErrorCategory, severity ErrorSeverity, message string) *ForgeError {
	return &ForgeError{
		Category: category,
		Severity: severity,
		Message:  message,
	}
}

// Wrap creates a new ForgeError that wraps an existing error.
func Wrap(err error, category ErrorCategory, severity ErrorSeverity, message string) *ForgeError {
	return &ForgeError{
		Category: category,
		Severity: severity,
		Message:  message,
		Cause:    err,
	}
}
