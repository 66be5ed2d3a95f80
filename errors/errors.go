package errors

import (
	"errors"
	"fmt"
	"strings"
)

// Phase indicates which operation produced the error
type Phase string

const (
	PhaseConstruct Phase = "construct" // building a container
	PhaseReplace   Phase = "replace"   // swapping the held value
	PhaseAccess    Phase = "access"    // rebuilding a view
	PhaseAppend    Phase = "append"    // growing text or a slice
	PhaseExtend    Phase = "extend"    // bulk slice growth
	PhaseTruncate  Phase = "truncate"  // shrinking text
	PhasePop       Phase = "pop"       // removing items
	PhasePush      Phase = "push"      // stack growth
	PhaseStorage   Phase = "storage"   // backing storage operations
	PhaseDispatch  Phase = "dispatch"  // dispatch table lookups
	PhaseConfig    Phase = "config"    // inspector configuration
)

// Kind categorizes the error
type Kind string

const (
	KindCapacity     Kind = "capacity"
	KindAlignment    Kind = "alignment"
	KindLayout       Kind = "layout"
	KindInvalidView  Kind = "invalid_view"
	KindBoundary     Kind = "boundary"
	KindDisposed     Kind = "disposed"
	KindBorrowed     Kind = "borrowed"
	KindInvalidUTF8  Kind = "invalid_utf8"
	KindOutOfBounds  Kind = "out_of_bounds"
	KindOverflow     Kind = "overflow"
	KindNotFound     Kind = "not_found"
	KindInvalidInput Kind = "invalid_input"
)

// Error is the structured error type used throughout the module.
// Value holds the input that could not be stored, if any.
type Error struct {
	Value  any
	Cause  error
	Phase  Phase
	Kind   Kind
	GoType string
	View   string
	Detail string
}

// Error implements the error interface
func (e *Error) Error() string {
	var b strings.Builder

	b.WriteByte('[')
	b.WriteString(string(e.Phase))
	b.WriteString("] ")
	b.WriteString(string(e.Kind))

	if e.GoType != "" || e.View != "" {
		b.WriteString(": ")
		if e.GoType != "" && e.View != "" {
			b.WriteString("Go type ")
			b.WriteString(e.GoType)
			b.WriteString(", view ")
			b.WriteString(e.View)
		} else if e.GoType != "" {
			b.WriteString("Go type ")
			b.WriteString(e.GoType)
		} else {
			b.WriteString("view ")
			b.WriteString(e.View)
		}
	}

	if e.Detail != "" {
		if e.GoType != "" || e.View != "" {
			b.WriteString(" - ")
		} else {
			b.WriteString(": ")
		}
		b.WriteString(e.Detail)
	}

	if e.Cause != nil {
		b.WriteString(" (caused by: ")
		b.WriteString(e.Cause.Error())
		b.WriteByte(')')
	}

	return b.String()
}

// Unwrap returns the underlying error
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target matches this error
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Phase == t.Phase && e.Kind == t.Kind
	}
	return false
}

// IsKind reports whether err is an *Error of the given kind, in any phase.
func IsKind(err error, kind Kind) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind == kind
	}
	return false
}

// Builder provides structured error construction
type Builder struct {
	err Error
}

// New creates a new error builder
func New(phase Phase, kind Kind) *Builder {
	return &Builder{
		err: Error{
			Phase: phase,
			Kind:  kind,
		},
	}
}

// GoType sets the Go type name
func (b *Builder) GoType(t string) *Builder {
	b.err.GoType = t
	return b
}

// View sets the view name
func (b *Builder) View(v string) *Builder {
	b.err.View = v
	return b
}

// Value sets the rejected value
func (b *Builder) Value(v any) *Builder {
	b.err.Value = v
	return b
}

// Cause sets the underlying error
func (b *Builder) Cause(err error) *Builder {
	b.err.Cause = err
	return b
}

// Detail sets the human-readable detail message
func (b *Builder) Detail(msg string, args ...any) *Builder {
	if len(args) > 0 {
		b.err.Detail = fmt.Sprintf(msg, args...)
	} else {
		b.err.Detail = msg
	}
	return b
}

// Build returns the constructed error
func (b *Builder) Build() *Error {
	return &b.err
}

// Convenience constructors for common error patterns

// InsufficientCapacity creates a capacity error. value is the input handed
// back to the caller and may be nil.
func InsufficientCapacity(phase Phase, need, have int, value any) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindCapacity,
		Detail: fmt.Sprintf("need %d words, storage can hold %d", need, have),
		Value:  value,
	}
}

// Rejected returns a copy of err with Value set to the rejected input and
// phase rewritten. Non-*Error causes are wrapped.
func Rejected(phase Phase, err error, value any) *Error {
	var e *Error
	if errors.As(err, &e) {
		out := *e
		out.Phase = phase
		out.Value = value
		return &out
	}
	return &Error{
		Phase:  phase,
		Kind:   KindCapacity,
		Detail: "storage extend failed",
		Cause:  err,
		Value:  value,
	}
}

// Misaligned creates an alignment compatibility error
func Misaligned(goType string, align, wordSize uintptr) *Error {
	return &Error{
		Phase:  PhaseConstruct,
		Kind:   KindAlignment,
		GoType: goType,
		Detail: fmt.Sprintf("alignment %d exceeds storage word size %d", align, wordSize),
	}
}

// PointerBearing creates an error for types holding Go pointers
func PointerBearing(goType, where string) *Error {
	return &Error{
		Phase:  PhaseConstruct,
		Kind:   KindLayout,
		GoType: goType,
		Detail: fmt.Sprintf("contains Go pointers at %s", where),
	}
}

// InvalidView creates an error for a narrowing function that does not view its argument
func InvalidView(goType, view, detail string) *Error {
	return &Error{
		Phase:  PhaseConstruct,
		Kind:   KindInvalidView,
		GoType: goType,
		View:   view,
		Detail: detail,
	}
}

// NotBoundary creates a text boundary error
func NotBoundary(offset, length int) *Error {
	return &Error{
		Phase:  PhaseTruncate,
		Kind:   KindBoundary,
		Detail: fmt.Sprintf("offset %d is not a UTF-8 boundary (length %d)", offset, length),
		Value:  offset,
	}
}

// Disposed creates an error for use after Close
func Disposed(phase Phase, what string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindDisposed,
		Detail: fmt.Sprintf("%s already closed", what),
	}
}

// Borrowed creates an error for mutation during an exclusive borrow
func Borrowed(phase Phase, what string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindBorrowed,
		Detail: fmt.Sprintf("%s is exclusively borrowed", what),
	}
}

// InvalidUTF8 creates an invalid UTF-8 error
func InvalidUTF8(phase Phase, data []byte) *Error {
	preview := data
	if len(preview) > 32 {
		preview = preview[:32]
	}
	return &Error{
		Phase:  phase,
		Kind:   KindInvalidUTF8,
		Detail: fmt.Sprintf("invalid UTF-8 sequence: %x", preview),
	}
}

// OutOfBounds creates an out of bounds error
func OutOfBounds(phase Phase, index, length int) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindOutOfBounds,
		Detail: fmt.Sprintf("index %d out of bounds (length %d)", index, length),
		Value:  index,
	}
}

// Overflow creates an overflow error
func Overflow(phase Phase, value any, target string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindOverflow,
		Detail: fmt.Sprintf("value %v overflows %s", value, target),
		Value:  value,
	}
}

// NotFound creates a not-found error
func NotFound(phase Phase, what, name string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindNotFound,
		Detail: fmt.Sprintf("%s %q not found", what, name),
	}
}

// InvalidInput creates an invalid input error
func InvalidInput(phase Phase, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindInvalidInput,
		Detail: detail,
	}
}

// Wrap wraps an existing error with additional context
func Wrap(phase Phase, kind Kind, cause error, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   kind,
		Detail: detail,
		Cause:  cause,
	}
}
