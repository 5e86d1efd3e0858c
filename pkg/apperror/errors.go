// Package apperror provides a structured way to handle application errors
// with specific codes, severity levels, and additional details. It also
// maps errors to process exit statuses for the command line front end.
package apperror

import (
	"context"
	"errors"
	"fmt"
)

// ErrorCode represents a specific application error code.
type ErrorCode string

const (
	// Input
	CodeInvalidGraph     ErrorCode = "INVALID_GRAPH"
	CodeEmptyGraph       ErrorCode = "EMPTY_GRAPH"
	CodeDanglingEdge     ErrorCode = "DANGLING_EDGE"
	CodeNegativeCapacity ErrorCode = "NEGATIVE_CAPACITY"
	CodeSourceEqualsSink ErrorCode = "SOURCE_EQUALS_SINK"
	CodeParse            ErrorCode = "PARSE_ERROR"
	CodeInvalidArgument  ErrorCode = "INVALID_ARGUMENT"

	// Configuration
	CodeInvalidConfig ErrorCode = "INVALID_CONFIG"

	// Algorithm invariants
	CodeCapacityOverflow      ErrorCode = "CAPACITY_OVERFLOW"
	CodeConservationViolation ErrorCode = "CONSERVATION_VIOLATION"
	CodeNegativeFlow          ErrorCode = "NEGATIVE_FLOW"
	CodeHeightDecrease        ErrorCode = "HEIGHT_DECREASE"
	CodeOwnershipViolation    ErrorCode = "OWNERSHIP_VIOLATION"
	CodeDoubleAdmission       ErrorCode = "DOUBLE_ADMISSION"
	CodeStalled               ErrorCode = "STALLED"
	CodeIterationLimit        ErrorCode = "ITERATION_LIMIT"

	// Runtime
	CodeWorkerFailure ErrorCode = "WORKER_FAILURE"
	CodeCanceled      ErrorCode = "CANCELED"
	CodeReport        ErrorCode = "REPORT_ERROR"
	CodeInternal      ErrorCode = "INTERNAL_ERROR"
)

// Process exit statuses returned by ExitCode.
const (
	ExitOK        = 0
	ExitFailure   = 1
	ExitInput     = 2
	ExitConfig    = 3
	ExitInvariant = 4
	ExitCanceled  = 5
)

// Severity defines the criticality level of an error.
type Severity int

const (
	// SeverityWarning indicates a non-critical issue that can be ignored or automatically resolved.
	SeverityWarning Severity = iota
	// SeverityError indicates a standard error that requires attention.
	SeverityError
	// SeverityCritical indicates a broken internal invariant. The computation
	// result must not be trusted.
	SeverityCritical
)

// String returns the string representation of the Severity.
func (s Severity) String() string {
	switch s {
	case SeverityWarning:
		return "warning"
	case SeverityError:
		return "error"
	case SeverityCritical:
		return "critical"
	default:
		return "unknown"
	}
}

// Error is a custom error type that includes an ErrorCode, message,
// an optional field, additional details, an underlying cause, and a severity level.
type Error struct {
	Code     ErrorCode      // Code is a unique identifier for the type of error.
	Message  string         // Message is a human-readable description of the error.
	Field    string         // Field indicates which input field caused the error, if applicable.
	Details  map[string]any // Details provides additional structured information about the error.
	Cause    error          // Cause is the underlying error that triggered this application error.
	Severity Severity       // Severity indicates the criticality level of the error.
}

// Error implements the error interface, returning a string representation of the error.
func (e *Error) Error() string {
	msg := fmt.Sprintf("[%s] %s", e.Code, e.Message)
	if e.Field != "" {
		msg = fmt.Sprintf("%s (field: %s)", msg, e.Field)
	}
	if e.Cause != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Cause)
	}
	return msg
}

// Unwrap returns the wrapped error, allowing for error chain introspection.
func (e *Error) Unwrap() error {
	return e.Cause
}

// New creates a new application error with the given code and message.
// The default severity is SeverityError.
func New(code ErrorCode, message string) *Error {
	return &Error{
		Code:     code,
		Message:  message,
		Details:  make(map[string]any),
		Severity: SeverityError,
	}
}

// Newf is New with a formatted message.
func Newf(code ErrorCode, format string, args ...any) *Error {
	return New(code, fmt.Sprintf(format, args...))
}

// NewWithField creates a new application error with the given code, message, and field.
// The default severity is SeverityError.
func NewWithField(code ErrorCode, message, field string) *Error {
	return &Error{
		Code:     code,
		Message:  message,
		Field:    field,
		Details:  make(map[string]any),
		Severity: SeverityError,
	}
}

// NewCritical creates a new application error with SeverityCritical.
func NewCritical(code ErrorCode, message string) *Error {
	return &Error{
		Code:     code,
		Message:  message,
		Details:  make(map[string]any),
		Severity: SeverityCritical,
	}
}

// Criticalf is NewCritical with a formatted message.
func Criticalf(code ErrorCode, format string, args ...any) *Error {
	return NewCritical(code, fmt.Sprintf(format, args...))
}

// Wrap creates a new application error that wraps an existing error,
// providing additional context with a code and message.
// The default severity is SeverityError.
func Wrap(cause error, code ErrorCode, message string) *Error {
	return &Error{
		Code:     code,
		Message:  message,
		Cause:    cause,
		Details:  make(map[string]any),
		Severity: SeverityError,
	}
}

// WithDetails adds a key-value pair to the error's details map and returns the modified error.
func (e *Error) WithDetails(key string, value any) *Error {
	e.Details[key] = value
	return e
}

// WithField sets the field associated with the error and returns the modified error.
func (e *Error) WithField(field string) *Error {
	e.Field = field
	return e
}

// WithSeverity sets the severity level of the error and returns the modified error.
func (e *Error) WithSeverity(s Severity) *Error {
	e.Severity = s
	return e
}

// Is checks if the given error is an application error with a matching ErrorCode.
// It uses errors.As to unwrap the error chain.
func Is(err error, code ErrorCode) bool {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Code == code
	}
	return false
}

// Code extracts the ErrorCode from an error. If the error is not an *Error,
// it returns CodeCanceled for context errors and CodeInternal otherwise.
func Code(err error) ErrorCode {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return CodeCanceled
	}
	return CodeInternal
}

// IsCritical checks if the given error is an application error with SeverityCritical.
func IsCritical(err error) bool {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Severity == SeverityCritical
	}
	return false
}

// ExitCode maps an error to the process exit status reported by the
// command line front end.
func ExitCode(err error) int {
	if err == nil {
		return ExitOK
	}

	switch Code(err) {
	case CodeInvalidGraph, CodeEmptyGraph, CodeDanglingEdge, CodeNegativeCapacity,
		CodeSourceEqualsSink, CodeParse, CodeInvalidArgument:
		return ExitInput

	case CodeInvalidConfig:
		return ExitConfig

	case CodeCapacityOverflow, CodeConservationViolation, CodeNegativeFlow,
		CodeHeightDecrease, CodeOwnershipViolation, CodeDoubleAdmission,
		CodeStalled, CodeIterationLimit, CodeWorkerFailure, CodeInternal:
		return ExitInvariant

	case CodeCanceled:
		return ExitCanceled

	default:
		return ExitFailure
	}
}

// Predefined errors for common scenarios.
var (
	ErrEmptyGraph       = New(CodeEmptyGraph, "graph is empty")
	ErrSourceEqualsSink = New(CodeSourceEqualsSink, "source and sink cannot be the same")
	ErrNilGraph         = New(CodeInvalidArgument, "graph is nil")
)

// ValidationErrors is a collection of application errors,
// typically used for aggregating results of multiple invariant checks.
type ValidationErrors struct {
	Errors []*Error // Errors contains all collected errors.
}

// NewValidationErrors creates and returns a new empty ValidationErrors collection.
func NewValidationErrors() *ValidationErrors {
	return &ValidationErrors{
		Errors: make([]*Error, 0),
	}
}

// Add appends an *Error to the collection. Nil errors are ignored.
func (v *ValidationErrors) Add(err *Error) {
	if err == nil {
		return
	}
	v.Errors = append(v.Errors, err)
}

// HasErrors returns true if the collection contains any errors.
func (v *ValidationErrors) HasErrors() bool {
	return len(v.Errors) > 0
}

// First returns the first collected error, or nil.
func (v *ValidationErrors) First() *Error {
	if len(v.Errors) == 0 {
		return nil
	}
	return v.Errors[0]
}

// Err returns the first collected error with the remaining messages attached
// as details, or nil when the collection is empty.
func (v *ValidationErrors) Err() error {
	first := v.First()
	if first == nil {
		return nil
	}
	if len(v.Errors) > 1 {
		first.WithDetails("additional", v.ErrorMessages()[1:])
	}
	return first
}

// ErrorMessages returns a slice of string messages for all collected errors.
func (v *ValidationErrors) ErrorMessages() []string {
	messages := make([]string, len(v.Errors))
	for i, err := range v.Errors {
		messages[i] = err.Error()
	}
	return messages
}
