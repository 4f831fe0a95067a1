package errors

import (
	"fmt"
	"strings"
)

// Phase indicates where in processing the error occurred
type Phase string

const (
	PhaseClassify Phase = "classify" // type -> codec resolution
	PhaseEmit     Phase = "emit"     // program construction
	PhaseGenerate Phase = "generate" // aggregate generation
	PhaseEncode   Phase = "encode"   // value to container
	PhaseDecode   Phase = "decode"   // container to value
	PhaseLoad     Phase = "load"     // schema loading
	PhaseConfig   Phase = "config"   // configuration
	PhaseRender   Phase = "render"   // source rendering
)

// Kind categorizes the error
type Kind string

const (
	KindUnsupportedType Kind = "unsupported_type"
	KindTypeMismatch    Kind = "type_mismatch"
	KindInvalidProgram  Kind = "invalid_program"
	KindOutOfBounds     Kind = "out_of_bounds"
	KindInvalidData     Kind = "invalid_data"
	KindNilPointer      Kind = "nil_pointer"
	KindInvalidEnum     Kind = "invalid_enum"
	KindNotFound        Kind = "not_found"
	KindInvalidInput    Kind = "invalid_input"
	KindDuplicate       Kind = "duplicate"
	KindCycle           Kind = "cycle"
)

// Error is the structured error type used throughout parcelgen
type Error struct {
	Value  any
	Cause  error
	Phase  Phase
	Kind   Kind
	Owner  string
	Type   string
	Detail string
	Path   []string
}

// Error implements the error interface
func (e *Error) Error() string {
	var b strings.Builder

	b.WriteByte('[')
	b.WriteString(string(e.Phase))
	b.WriteString("] ")
	b.WriteString(string(e.Kind))

	if e.Owner != "" {
		b.WriteString(" in ")
		b.WriteString(e.Owner)
	}

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

// Is reports whether target matches this error
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Phase == t.Phase && e.Kind == t.Kind
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

// Owner sets the owning aggregate
func (b *Builder) Owner(name string) *Builder {
	b.err.Owner = name
	return b
}

// Path sets the field path
func (b *Builder) Path(path ...string) *Builder {
	b.err.Path = path
	return b
}

// Type sets the offending type
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

// UnsupportedType reports that no codec resolves the type of owner.field.
// It rejects the whole aggregate.
func UnsupportedType(owner, field, typ string) *Error {
	var path []string
	if field != "" {
		path = []string{field}
	}
	return &Error{
		Phase:  PhaseClassify,
		Kind:   KindUnsupportedType,
		Owner:  owner,
		Path:   path,
		Type:   typ,
		Detail: fmt.Sprintf("property %q of %s has unsupported type %s", field, owner, typ),
	}
}

// TypeMismatch creates a type mismatch error
func TypeMismatch(phase Phase, path []string, got, want string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindTypeMismatch,
		Path:   path,
		Type:   got,
		Detail: fmt.Sprintf("expected %s", want),
	}
}

// InvalidProgram reports emitter misuse
func InvalidProgram(program, detail string) *Error {
	return &Error{
		Phase:  PhaseEmit,
		Kind:   KindInvalidProgram,
		Owner:  program,
		Detail: detail,
	}
}

// OutOfBounds creates an out of bounds error
func OutOfBounds(phase Phase, path []string, index, length int) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindOutOfBounds,
		Path:   path,
		Detail: fmt.Sprintf("index %d out of bounds (length %d)", index, length),
		Value:  index,
	}
}

// NilPointer creates a nil pointer error
func NilPointer(phase Phase, path []string, typ string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindNilPointer,
		Path:   path,
		Type:   typ,
		Detail: "nil value for non-nullable codec",
	}
}

// InvalidEnum creates an invalid enum ordinal error
func InvalidEnum(phase Phase, path []string, ordinal int32, enumType string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindInvalidEnum,
		Path:   path,
		Type:   enumType,
		Detail: fmt.Sprintf("ordinal %d out of range for %s", ordinal, enumType),
		Value:  ordinal,
	}
}

// NotFound creates a missing entity error
func NotFound(phase Phase, what, name string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindNotFound,
		Type:   name,
		Detail: what + " not found",
	}
}

// InvalidInput creates an invalid input error
func InvalidInput(phase Phase, detail string, args ...any) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindInvalidInput,
		Detail: fmt.Sprintf(detail, args...),
	}
}
