package relm

import (
	"errors"
	"fmt"
	"strings"
)

// Standard sentinel errors for declaration and resolution failures.
var (
	// ErrArgument is returned for invalid model or relationship declarations.
	ErrArgument = errors.New("relm: invalid argument")

	// ErrUnknownModel is returned when a relationship targets a model that
	// is not registered.
	ErrUnknownModel = errors.New("relm: unknown model")

	// ErrUnknownTable is returned when a relationship names a secondary
	// table that is not part of the metadata.
	ErrUnknownTable = errors.New("relm: unknown table")

	// ErrInvalidRequest is returned when two relationships cannot be linked.
	ErrInvalidRequest = errors.New("relm: invalid request")
)

// ArgumentError represents an invalid declaration on a model, optionally
// scoped to one of its properties or relationships.
type ArgumentError struct {
	Model string // Model name
	Key   string // Property or relationship key, if any
	Msg   string
	Err   error // Optional underlying error
}

// Error returns the error string.
func (e *ArgumentError) Error() string {
	var sb strings.Builder
	sb.WriteString("relm: ")
	if e.Model != "" {
		sb.WriteString(e.Model)
		if e.Key != "" {
			sb.WriteString(".")
			sb.WriteString(e.Key)
		}
		sb.WriteString(": ")
	}
	switch {
	case e.Msg != "" && e.Err != nil:
		fmt.Fprintf(&sb, "%s: %v", e.Msg, e.Err)
	case e.Err != nil:
		sb.WriteString(e.Err.Error())
	default:
		sb.WriteString(e.Msg)
	}
	return sb.String()
}

// Is reports whether the target error matches ArgumentError.
// This allows errors.Is(argErr, ErrArgument) to return true.
func (e *ArgumentError) Is(err error) bool {
	return err == ErrArgument
}

// Unwrap returns the underlying error.
func (e *ArgumentError) Unwrap() error {
	return e.Err
}

// NewArgumentError returns a new ArgumentError for the given model key.
func NewArgumentError(model, key, format string, args ...any) *ArgumentError {
	return &ArgumentError{Model: model, Key: key, Msg: fmt.Sprintf(format, args...)}
}

func wrapArgumentError(model, key string, err error) *ArgumentError {
	return &ArgumentError{Model: model, Key: key, Err: err}
}

// IsArgumentError returns true if the error is an ArgumentError.
func IsArgumentError(err error) bool {
	if err == nil {
		return false
	}
	var e *ArgumentError
	return errors.As(err, &e) || errors.Is(err, ErrArgument)
}

// UnknownModelError is returned when a relationship targets a model that is
// not part of the registry.
type UnknownModelError struct {
	Name     string // Target model name
	Model    string // Declaring model
	Relation string // Declaring relationship
}

// Error returns the error string.
func (e *UnknownModelError) Error() string {
	return fmt.Sprintf("relm: %s.%s: unknown model %q", e.Model, e.Relation, e.Name)
}

// Is reports whether the target error matches UnknownModelError.
func (e *UnknownModelError) Is(err error) bool {
	return err == ErrUnknownModel
}

// IsUnknownModel returns true if the error is an UnknownModelError.
func IsUnknownModel(err error) bool {
	if err == nil {
		return false
	}
	var e *UnknownModelError
	return errors.As(err, &e) || errors.Is(err, ErrUnknownModel)
}

// UnknownTableError is returned when a secondary table is not part of the
// metadata.
type UnknownTableError struct {
	Table    string
	Model    string
	Relation string
}

// Error returns the error string.
func (e *UnknownTableError) Error() string {
	return fmt.Sprintf("relm: %s.%s: unknown secondary table %q", e.Model, e.Relation, e.Table)
}

// Is reports whether the target error matches UnknownTableError.
func (e *UnknownTableError) Is(err error) bool {
	return err == ErrUnknownTable
}

// IsUnknownTable returns true if the error is an UnknownTableError.
func IsUnknownTable(err error) bool {
	if err == nil {
		return false
	}
	var e *UnknownTableError
	return errors.As(err, &e) || errors.Is(err, ErrUnknownTable)
}

// InvalidRequestError is returned when a relationship cannot be linked with
// its counterpart on the target model.
type InvalidRequestError struct {
	Model    string
	Relation string
	Msg      string
}

// Error returns the error string.
func (e *InvalidRequestError) Error() string {
	return fmt.Sprintf("relm: %s.%s: %s", e.Model, e.Relation, e.Msg)
}

// Is reports whether the target error matches InvalidRequestError.
func (e *InvalidRequestError) Is(err error) bool {
	return err == ErrInvalidRequest
}

// IsInvalidRequest returns true if the error is an InvalidRequestError.
func IsInvalidRequest(err error) bool {
	if err == nil {
		return false
	}
	var e *InvalidRequestError
	return errors.As(err, &e) || errors.Is(err, ErrInvalidRequest)
}

// AggregateError represents multiple errors collected during an operation.
type AggregateError struct {
	Errors []error
}

// Error returns the error string.
func (e *AggregateError) Error() string {
	if len(e.Errors) == 0 {
		return "relm: no errors"
	}
	if len(e.Errors) == 1 {
		return e.Errors[0].Error()
	}
	var sb strings.Builder
	sb.WriteString("relm: multiple errors:")
	for i, err := range e.Errors {
		fmt.Fprintf(&sb, "\n  [%d] %v", i+1, err)
	}
	return sb.String()
}

// Unwrap returns the collected errors, so errors.Is and errors.As match any
// of them.
func (e *AggregateError) Unwrap() []error {
	return e.Errors
}

// NewAggregateError returns a new AggregateError if there are errors,
// otherwise returns nil.
func NewAggregateError(errs ...error) error {
	var filtered []error
	for _, err := range errs {
		if err != nil {
			filtered = append(filtered, err)
		}
	}
	if len(filtered) == 0 {
		return nil
	}
	if len(filtered) == 1 {
		return filtered[0]
	}
	return &AggregateError{Errors: filtered}
}
