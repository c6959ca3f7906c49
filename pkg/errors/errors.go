// Package errors provides custom error types for the waypoint system.
// These errors enable programmatic error checking across the dispatch,
// render and send phases and carry enough context to debug a failed request.
package errors

import (
	"errors"
	"fmt"
)

// New returns an error that formats as the given text.
// It's an alias for the standard library errors.New for convenience.
var New = errors.New

// Is reports whether any error in err's tree matches target.
var Is = errors.Is

// As finds the first error in err's tree that matches target.
var As = errors.As

// Common sentinel errors for the waypoint system
var (
	// ErrNotFound indicates that a requested resource was not found
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates that provided input was invalid
	ErrInvalidInput = errors.New("invalid input")

	// ErrInvalidService indicates a registry entry that does not satisfy
	// the contract the registry guards (for example a non-dispatchable handler)
	ErrInvalidService = errors.New("invalid service")

	// ErrIllegalTransition indicates a request tried to move between two
	// pipeline phases that may not follow each other
	ErrIllegalTransition = errors.New("illegal phase transition")

	// ErrRender indicates that a view could not be rendered
	ErrRender = errors.New("render failed")
)

// NotFoundError represents an error when a resource is not found
type NotFoundError struct {
	Resource string
	ID       string
}

// Error implements the error interface
func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %q not found", e.Resource, e.ID)
}

// Is implements errors.Is support
func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

// NewNotFoundError creates a new NotFoundError
func NewNotFoundError(resource, id string) *NotFoundError {
	return &NotFoundError{Resource: resource, ID: id}
}

// InvalidServiceError is returned by a registry when the instance built for
// a name does not implement the required contract.
type InvalidServiceError struct {
	Name     string
	Type     string
	Expected string
}

// Error implements the error interface
func (e *InvalidServiceError) Error() string {
	return fmt.Sprintf("service %q of type %s does not implement %s", e.Name, e.Type, e.Expected)
}

// Is implements errors.Is support
func (e *InvalidServiceError) Is(target error) bool {
	return target == ErrInvalidService
}

// NewInvalidServiceError creates a new InvalidServiceError
func NewInvalidServiceError(name string, instance any, expected string) *InvalidServiceError {
	return &InvalidServiceError{
		Name:     name,
		Type:     fmt.Sprintf("%T", instance),
		Expected: expected,
	}
}

// ValidationError represents a validation failure
type ValidationError struct {
	Field   string
	Value   any
	Message string
}

// Error implements the error interface
func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("validation failed for field %s: %s", e.Field, e.Message)
	}
	return fmt.Sprintf("validation failed: %s", e.Message)
}

// Is implements errors.Is support
func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalidInput
}

// NewValidationError creates a new ValidationError
func NewValidationError(field string, value any, message string) *ValidationError {
	return &ValidationError{Field: field, Value: value, Message: message}
}

// HandlerError wraps a failure raised while a handler was executing,
// including recovered panics.
type HandlerError struct {
	Handler string
	Panic   any
	Err     error
}

// Error implements the error interface
func (e *HandlerError) Error() string {
	if e.Panic != nil {
		return fmt.Sprintf("handler %s panicked: %v", e.Handler, e.Panic)
	}
	return fmt.Sprintf("handler %s failed: %v", e.Handler, e.Err)
}

// Unwrap implements errors.Unwrap
func (e *HandlerError) Unwrap() error {
	return e.Err
}

// NewHandlerError creates a new HandlerError
func NewHandlerError(handler string, err error) *HandlerError {
	return &HandlerError{Handler: handler, Err: err}
}

// NewPanicError converts a recovered panic value into a HandlerError.
func NewPanicError(handler string, recovered any) *HandlerError {
	err, _ := recovered.(error)
	return &HandlerError{Handler: handler, Panic: recovered, Err: err}
}

// TransitionError is returned when a request moves between phases that may
// not follow each other.
type TransitionError struct {
	From string
	To   string
}

// Error implements the error interface
func (e *TransitionError) Error() string {
	return fmt.Sprintf("illegal phase transition from %s to %s", e.From, e.To)
}

// Is implements errors.Is support
func (e *TransitionError) Is(target error) bool {
	return target == ErrIllegalTransition
}

// NewTransitionError creates a new TransitionError
func NewTransitionError(from, to string) *TransitionError {
	return &TransitionError{From: from, To: to}
}

// RenderError represents a failure while rendering a view model.
type RenderError struct {
	Template string
	Renderer string
	Err      error
}

// Error implements the error interface
func (e *RenderError) Error() string {
	if e.Template != "" {
		return fmt.Sprintf("render error in %s for template %q: %v", e.Renderer, e.Template, e.Err)
	}
	return fmt.Sprintf("render error in %s: %v", e.Renderer, e.Err)
}

// Unwrap implements errors.Unwrap
func (e *RenderError) Unwrap() error {
	return e.Err
}

// Is implements errors.Is support
func (e *RenderError) Is(target error) bool {
	return target == ErrRender
}

// NewRenderError creates a new RenderError
func NewRenderError(renderer, template string, err error) *RenderError {
	return &RenderError{Renderer: renderer, Template: template, Err: err}
}

// ConfigError represents a configuration error
type ConfigError struct {
	Component string
	Message   string
	Err       error
}

// Error implements the error interface
func (e *ConfigError) Error() string {
	if e.Component != "" {
		return fmt.Sprintf("configuration error in %s: %s", e.Component, e.Message)
	}
	return fmt.Sprintf("configuration error: %s", e.Message)
}

// Unwrap implements errors.Unwrap
func (e *ConfigError) Unwrap() error {
	return e.Err
}

// NewConfigError creates a new ConfigError
func NewConfigError(component, message string, err error) *ConfigError {
	return &ConfigError{
		Component: component,
		Message:   message,
		Err:       err,
	}
}

// ParseError represents an error when parsing data formats
type ParseError struct {
	Format  string // "json", "yaml", "template", etc.
	File    string
	Message string
	Err     error
}

// Error implements the error interface
func (e *ParseError) Error() string {
	if e.File != "" {
		return fmt.Sprintf("parse error in %s file %s: %s", e.Format, e.File, e.Message)
	}
	return fmt.Sprintf("%s parse error: %s", e.Format, e.Message)
}

// Unwrap implements errors.Unwrap
func (e *ParseError) Unwrap() error {
	return e.Err
}

// NewParseError creates a new ParseError
func NewParseError(format, file string, message string, err error) *ParseError {
	return &ParseError{
		Format:  format,
		File:    file,
		Message: message,
		Err:     err,
	}
}

// IOError represents an error during I/O operations
type IOError struct {
	Operation string // "read", "write", "send", "open"
	Path      string
	Message   string
	Err       error
}

// Error implements the error interface
func (e *IOError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("IO error during %s of %s: %s", e.Operation, e.Path, e.Message)
	}
	return fmt.Sprintf("IO error during %s: %s", e.Operation, e.Message)
}

// Unwrap implements errors.Unwrap
func (e *IOError) Unwrap() error {
	return e.Err
}

// NewIOError creates a new IOError
func NewIOError(operation, path string, err error) *IOError {
	message := ""
	if err != nil {
		message = err.Error()
	}
	return &IOError{
		Operation: operation,
		Path:      path,
		Message:   message,
		Err:       err,
	}
}

// Helper functions for error checking

// IsNotFound checks if an error is a not found error
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsInvalidService checks if an error reports a registry entry of the wrong kind
func IsInvalidService(err error) bool {
	return errors.Is(err, ErrInvalidService)
}

// IsValidationError checks if an error is a validation error
func IsValidationError(err error) bool {
	return errors.Is(err, ErrInvalidInput)
}

// IsRenderError checks if an error came from the view layer
func IsRenderError(err error) bool {
	return errors.Is(err, ErrRender)
}

// IsIllegalTransition checks if an error is a phase transition error
func IsIllegalTransition(err error) bool {
	return errors.Is(err, ErrIllegalTransition)
}

// Helper wrapping functions for common patterns

// WrapValidation wraps an error as a ValidationError
func WrapValidation(field string, err error) error {
	if err == nil {
		return nil
	}
	return &ValidationError{Field: field, Message: err.Error()}
}

// WrapIO wraps an error as an IOError
func WrapIO(operation, path string, err error) error {
	if err == nil {
		return nil
	}
	return NewIOError(operation, path, err)
}

// WrapParse wraps an error as a ParseError
func WrapParse(format, file string, err error) error {
	if err == nil {
		return nil
	}
	return NewParseError(format, file, err.Error(), err)
}

// WrapRender wraps an error as a RenderError
func WrapRender(renderer, template string, err error) error {
	if err == nil {
		return nil
	}
	return NewRenderError(renderer, template, err)
}
