package bondgraph

import (
	"errors"
	"fmt"
)

// Common sentinel errors
var (
	ErrFrozenModel      = errors.New("model is frozen")
	ErrUnitMismatch     = errors.New("unit mismatch")
	ErrPortMismatch     = errors.New("port is incompatible with host node")
	ErrTemplateNotFound = errors.New("template not found")
	ErrMultipleModels   = errors.New("multiple models in source")
)

// ModelError provides structured error information for model operations.
type ModelError struct {
	Op      string // Operation that failed (e.g., "add_node", "set_value")
	Entity  string // Entity type (e.g., "model", "node", "template")
	URI     string // Entity URI (if applicable)
	Field   string // Quantity or attribute involved
	Cause   error  // Underlying error
	Context string // Additional context
}

// Error implements the error interface.
func (e *ModelError) Error() string {
	msg := e.Op
	if e.Entity != "" {
		msg += " " + e.Entity
	}
	if e.URI != "" {
		msg += " " + e.URI
	}
	if e.Field != "" {
		msg += fmt.Sprintf(" (field %s)", e.Field)
	}
	if e.Context != "" {
		msg += fmt.Sprintf(" [%s]", e.Context)
	}
	return fmt.Sprintf("%s: %v", msg, e.Cause)
}

// Unwrap returns the underlying cause for error chain support.
func (e *ModelError) Unwrap() error {
	return e.Cause
}

// Is reports whether the target error matches this error's cause.
func (e *ModelError) Is(target error) bool {
	if target == nil {
		return false
	}
	return errors.Is(e.Cause, target)
}

// ErrorBuilder provides a fluent interface for building ModelErrors.
type ErrorBuilder struct {
	err ModelError
}

// NewError creates a new error builder with the given operation.
func NewError(op string) *ErrorBuilder {
	return &ErrorBuilder{err: ModelError{Op: op}}
}

func (b *ErrorBuilder) entity(kind, uri string) *ErrorBuilder {
	b.err.Entity = kind
	b.err.URI = uri
	return b
}

// Model sets the entity to "model" with the given URI.
func (b *ErrorBuilder) Model(uri string) *ErrorBuilder { return b.entity("model", uri) }

// Node sets the entity to "node" with the given URI.
func (b *ErrorBuilder) Node(uri string) *ErrorBuilder { return b.entity("node", uri) }

// Bond sets the entity to "bond" with the given URI.
func (b *ErrorBuilder) Bond(uri string) *ErrorBuilder { return b.entity("bond", uri) }

// Template sets the entity to "template" with the given URI.
func (b *ErrorBuilder) Template(uri string) *ErrorBuilder { return b.entity("template", uri) }

// Field sets the quantity or attribute name.
func (b *ErrorBuilder) Field(name string) *ErrorBuilder {
	b.err.Field = name
	return b
}

// Context sets additional context information.
func (b *ErrorBuilder) Context(format string, args ...any) *ErrorBuilder {
	b.err.Context = fmt.Sprintf(format, args...)
	return b
}

// Cause sets the underlying error cause.
func (b *ErrorBuilder) Cause(err error) *ErrorBuilder {
	b.err.Cause = err
	return b
}

// Build returns the constructed ModelError.
func (b *ErrorBuilder) Build() *ModelError {
	e := b.err
	return &e
}

// Err returns the error as an error interface.
func (b *ErrorBuilder) Err() error {
	return b.Build()
}

// FrozenError creates the error returned by mutations on a frozen model.
func FrozenError(op, modelURI string) error {
	return NewError(op).Model(modelURI).Cause(ErrFrozenModel).Err()
}

// TemplateNotFoundError creates a template lookup error.
func TemplateNotFoundError(op, templateURI string) error {
	return NewError(op).Template(templateURI).Cause(ErrTemplateNotFound).Err()
}

// IsFrozen returns true if the error was caused by mutating a frozen model.
func IsFrozen(err error) bool {
	return errors.Is(err, ErrFrozenModel)
}

// IsUnitMismatch returns true if the error was caused by inconsistent units.
func IsUnitMismatch(err error) bool {
	return errors.Is(err, ErrUnitMismatch)
}
