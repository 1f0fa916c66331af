package errors

import (
	"fmt"
	"strings"
)

// Phase indicates where in processing the error occurred
type Phase string

const (
	PhaseConfigure Phase = "configure" // descriptor construction
	PhaseAlloc     Phase = "alloc"     // zero-filled materialization
	PhaseLoad      Phase = "load"      // decoding from a source
	PhaseCommit    Phase = "commit"    // writing back to a source
	PhaseAccess    Phase = "access"    // field/index lookup
	PhaseResolve   Phase = "resolve"   // pointer resolution
	PhaseSource    Phase = "source"    // byte provider operations
)

// Kind categorizes the error
type Kind string

const (
	KindInvalidArgument Kind = "invalid_argument"
	KindLimitExceeded   Kind = "limit_exceeded"
	KindKeyNotFound     Kind = "key_not_found"
	KindFieldDecode     Kind = "field_decode"
	KindOutOfBounds     Kind = "out_of_bounds"
	KindNotInitialized  Kind = "not_initialized"
	KindUnsupported     Kind = "unsupported"
	KindOverflow        Kind = "overflow"
)

// Sentinels for errors.Is matching on Kind alone.
var (
	ErrInvalidArgument = &Error{Kind: KindInvalidArgument}
	ErrLimitExceeded   = &Error{Kind: KindLimitExceeded}
	ErrKeyNotFound     = &Error{Kind: KindKeyNotFound}
	ErrFieldDecode     = &Error{Kind: KindFieldDecode}
	ErrOutOfBounds     = &Error{Kind: KindOutOfBounds}
	ErrNotInitialized  = &Error{Kind: KindNotInitialized}
	ErrUnsupported     = &Error{Kind: KindUnsupported}
	ErrOverflow        = &Error{Kind: KindOverflow}
)

// Error is the structured error type used throughout the module
type Error struct {
	Value  any
	Cause  error
	Phase  Phase
	Kind   Kind
	Type   string
	Detail string
	Path   []string
}

// Error implements the error interface
func (e *Error) Error() string {
	var b strings.Builder

	if e.Phase != "" {
		b.WriteByte('[')
		b.WriteString(string(e.Phase))
		b.WriteString("] ")
	}
	b.WriteString(string(e.Kind))

	if len(e.Path) > 0 {
		b.WriteString(" at ")
		b.WriteString(strings.Join(e.Path, "."))
	}

	if e.Type != "" {
		b.WriteString(": type ")
		b.WriteString(e.Type)
	}

	if e.Detail != "" {
		if e.Type != "" {
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

// Is reports whether target matches this error. A target without a phase
// matches on kind alone.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	if t.Phase == "" {
		return e.Kind == t.Kind
	}
	return e.Phase == t.Phase && e.Kind == t.Kind
}

// Within returns a copy of err with name prepended to its path. Errors that
// are not *Error are wrapped as the cause of a new error of the given phase.
func Within(phase Phase, name string, err error) error {
	if err == nil {
		return nil
	}
	if e, ok := err.(*Error); ok {
		cp := *e
		if name != "" {
			cp.Path = append([]string{name}, e.Path...)
		}
		return &cp
	}
	var path []string
	if name != "" {
		path = []string{name}
	}
	return &Error{Phase: phase, Kind: KindFieldDecode, Path: path, Cause: err}
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

// Path sets the field path
func (b *Builder) Path(path ...string) *Builder {
	b.err.Path = path
	return b
}

// Type sets the descriptor name
func (b *Builder) Type(t string) *Builder {
	b.err.Type = t
	return b
}

// Value sets the offending value
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

// InvalidArgument creates an invalid argument error for a factory parameter
func InvalidArgument(phase Phase, typ, arg string, value any) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindInvalidArgument,
		Type:   typ,
		Detail: fmt.Sprintf("argument %s must be integral: %T -> %v", arg, value, value),
		Value:  value,
	}
}

// LimitExceeded creates an array count limit error
func LimitExceeded(phase Phase, typ string, count, limit int) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindLimitExceeded,
		Type:   typ,
		Detail: fmt.Sprintf("requested count %d is larger than max_array_count %d", count, limit),
		Value:  count,
	}
}

// KeyNotFound creates a missing field error
func KeyNotFound(phase Phase, path []string, name string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindKeyNotFound,
		Path:   path,
		Detail: fmt.Sprintf("field %q not found", name),
		Value:  name,
	}
}

// FieldDecode creates an error for a view that failed to materialize
func FieldDecode(phase Phase, path []string, cause error) *Error {
	return &Error{
		Phase: phase,
		Kind:  KindFieldDecode,
		Path:  path,
		Cause: cause,
	}
}

// OutOfBounds creates an out of bounds error for a byte range
func OutOfBounds(phase Phase, path []string, offset, length, size uint64) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindOutOfBounds,
		Path:   path,
		Detail: fmt.Sprintf("range [%#x, %#x) out of bounds (size %#x)", offset, offset+length, size),
		Value:  offset,
	}
}

// IndexOutOfBounds creates an out of bounds error for an element index
func IndexOutOfBounds(phase Phase, path []string, index, length int) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindOutOfBounds,
		Path:   path,
		Detail: fmt.Sprintf("index %d out of bounds (length %d)", index, length),
		Value:  index,
	}
}

// NotInitialized creates an error for an operation on unloaded content
func NotInitialized(phase Phase, path []string, what string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindNotInitialized,
		Path:   path,
		Detail: what,
	}
}

// Unsupported creates an unsupported operation error
func Unsupported(phase Phase, typ, what string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindUnsupported,
		Type:   typ,
		Detail: what,
	}
}

// Overflow creates an overflow error
func Overflow(phase Phase, path []string, value any, limit string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindOverflow,
		Path:   path,
		Detail: fmt.Sprintf("value %v overflows %s", value, limit),
		Value:  value,
	}
}
