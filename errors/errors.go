package errors

import (
	"errors"
	"fmt"
	"strings"
)

// Phase indicates where in processing the error occurred
type Phase string

const (
	PhaseCompile Phase = "compile" // schema compilation and coder construction
	PhaseEncode  Phase = "encode"  // value to bytes
	PhaseDecode  Phase = "decode"  // bytes to value
	PhaseLoad    Phase = "load"    // schema file loading
)

// Kind categorizes the error
type Kind string

const (
	KindUnresolvedTypeReference Kind = "unresolved_type_reference"
	KindUnsupportedTypeShape    Kind = "unsupported_type_shape"
	KindCyclicTypeDefinition    Kind = "cyclic_type_definition"
	KindDiscriminatorCollision  Kind = "discriminator_collision"
	KindUnknownAccountType      Kind = "unknown_account_type"
	KindValueShapeMismatch      Kind = "value_shape_mismatch"
	KindTruncatedInput          Kind = "truncated_input"
	KindDiscriminatorMismatch   Kind = "discriminator_mismatch"
	KindTrailingBytes           Kind = "trailing_bytes"
	KindInvalidUTF8             Kind = "invalid_utf8"
	KindInvalidVariant          Kind = "invalid_variant"
	KindOverflow                Kind = "overflow"
	KindInvalidInput            Kind = "invalid_input"
)

// Error is the structured error type used throughout the module
type Error struct {
	Value      any
	Cause      error
	Phase      Phase
	Kind       Kind
	SchemaType string
	Detail     string
	Path       []string
}

// Error implements the error interface
func (e *Error) Error() string {
	var b strings.Builder

	b.WriteByte('[')
	b.WriteString(string(e.Phase))
	b.WriteString("] ")
	b.WriteString(string(e.Kind))

	if len(e.Path) > 0 {
		b.WriteString(" at ")
		b.WriteString(strings.Join(e.Path, "."))
	}

	if e.SchemaType != "" {
		b.WriteString(": type ")
		b.WriteString(e.SchemaType)
	}

	if e.Detail != "" {
		if e.SchemaType != "" {
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

// IsKind reports whether any *Error in err's chain has the given kind.
func IsKind(err error, kind Kind) bool {
	var e *Error
	for err != nil {
		if !errors.As(err, &e) {
			return false
		}
		if e.Kind == kind {
			return true
		}
		err = e.Cause
	}
	return false
}

// KindOf returns the kind of the first *Error in err's chain, or "" if none.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
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

// SchemaType sets the schema type name
func (b *Builder) SchemaType(t string) *Builder {
	b.err.SchemaType = t
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

// UnresolvedReference creates an error for a named type missing from the shared pool
func UnresolvedReference(path []string, name string) *Error {
	return &Error{
		Phase:  PhaseCompile,
		Kind:   KindUnresolvedTypeReference,
		Path:   path,
		Detail: fmt.Sprintf("type %q is not defined", name),
		Value:  name,
	}
}

// UnsupportedShape creates an error for a descriptor the layout engine cannot represent
func UnsupportedShape(path []string, detail string, args ...any) *Error {
	if len(args) > 0 {
		detail = fmt.Sprintf(detail, args...)
	}
	return &Error{
		Phase:  PhaseCompile,
		Kind:   KindUnsupportedTypeShape,
		Path:   path,
		Detail: detail,
	}
}

// Cycle creates a cyclic type definition error; chain lists the shared types in resolution order
func Cycle(path []string, chain []string) *Error {
	return &Error{
		Phase:  PhaseCompile,
		Kind:   KindCyclicTypeDefinition,
		Path:   path,
		Detail: "type cycle without vec or option: " + strings.Join(chain, " -> "),
	}
}

// DiscriminatorCollision creates an error for two records sharing a discriminator
func DiscriminatorCollision(first, second string, disc fmt.Stringer) *Error {
	return &Error{
		Phase:  PhaseCompile,
		Kind:   KindDiscriminatorCollision,
		Detail: fmt.Sprintf("accounts %q and %q share discriminator %s", first, second, disc),
	}
}

// UnknownAccountType creates an error for an unregistered record name
func UnknownAccountType(phase Phase, name string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindUnknownAccountType,
		Detail: fmt.Sprintf("unknown account %q", name),
		Value:  name,
	}
}

// ShapeMismatch creates a value shape error for the encoder
func ShapeMismatch(path []string, schemaType string, detail string, args ...any) *Error {
	if len(args) > 0 {
		detail = fmt.Sprintf(detail, args...)
	}
	return &Error{
		Phase:      PhaseEncode,
		Kind:       KindValueShapeMismatch,
		Path:       path,
		SchemaType: schemaType,
		Detail:     detail,
	}
}

// FieldMissing creates a missing field error
func FieldMissing(phase Phase, path []string, fieldName string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindValueShapeMismatch,
		Path:   path,
		Detail: fmt.Sprintf("required field %q not found", fieldName),
	}
}

// Truncated creates a truncated input error; need is the byte count the read required
func Truncated(path []string, need, have int) *Error {
	return &Error{
		Phase:  PhaseDecode,
		Kind:   KindTruncatedInput,
		Path:   path,
		Detail: fmt.Sprintf("need %d bytes, have %d", need, have),
		Value:  need,
	}
}

// DiscriminatorMismatch creates an error for a buffer tagged with another account's discriminator
func DiscriminatorMismatch(name string, want, got fmt.Stringer) *Error {
	return &Error{
		Phase:  PhaseDecode,
		Kind:   KindDiscriminatorMismatch,
		Detail: fmt.Sprintf("account %q expects discriminator %s, got %s", name, want, got),
	}
}

// TrailingBytes creates an error for unconsumed input in strict mode
func TrailingBytes(name string, extra int) *Error {
	return &Error{
		Phase:  PhaseDecode,
		Kind:   KindTrailingBytes,
		Detail: fmt.Sprintf("account %q: %d trailing bytes after payload", name, extra),
		Value:  extra,
	}
}

// InvalidUTF8 creates an invalid UTF-8 error
func InvalidUTF8(phase Phase, path []string, data []byte) *Error {
	preview := data
	if len(preview) > 32 {
		preview = preview[:32]
	}
	return &Error{
		Phase:  phase,
		Kind:   KindInvalidUTF8,
		Path:   path,
		Detail: fmt.Sprintf("invalid UTF-8 sequence: %x", preview),
	}
}

// InvalidDiscriminant creates an invalid variant index error for enums
func InvalidDiscriminant(phase Phase, path []string, disc uint32, maxValid uint32) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindInvalidVariant,
		Path:   path,
		Detail: fmt.Sprintf("variant index %d out of range (max %d)", disc, maxValid),
		Value:  disc,
	}
}

// Overflow creates an overflow error
func Overflow(phase Phase, path []string, value any, targetType string) *Error {
	return &Error{
		Phase:      phase,
		Kind:       KindOverflow,
		Path:       path,
		SchemaType: targetType,
		Detail:     fmt.Sprintf("value %v overflows %s", value, targetType),
		Value:      value,
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

// Load creates a schema loading error
func Load(detail string, cause error) *Error {
	return &Error{
		Phase:  PhaseLoad,
		Kind:   KindInvalidInput,
		Detail: detail,
		Cause:  cause,
	}
}

// Is, As and Unwrap forward to the standard library so callers that import
// this package under the name errors keep the usual helpers.
func Is(err, target error) bool { return errors.Is(err, target) }
func As(err error, target any) bool { return errors.As(err, target) }
func Unwrap(err error) error { return errors.Unwrap(err) }
