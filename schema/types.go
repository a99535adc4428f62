package schema

import (
	"strconv"
	"strings"
)

// PublicKeySize is the width of a public key in bytes.
const PublicKeySize = 32

// Type is a type descriptor. The set of implementations is closed.
type Type interface {
	Kind() Kind
	String() string
	isType()
}

// Primitive is a leaf type: integers, floats, bool, publicKey, string, bytes.
type Primitive Kind

const (
	Bool      = Primitive(KindBool)
	U8        = Primitive(KindU8)
	I8        = Primitive(KindI8)
	U16       = Primitive(KindU16)
	I16       = Primitive(KindI16)
	U32       = Primitive(KindU32)
	I32       = Primitive(KindI32)
	U64       = Primitive(KindU64)
	I64       = Primitive(KindI64)
	U128      = Primitive(KindU128)
	I128      = Primitive(KindI128)
	F32       = Primitive(KindF32)
	F64       = Primitive(KindF64)
	PublicKey = Primitive(KindPublicKey)
	String    = Primitive(KindString)
	Bytes     = Primitive(KindBytes)
)

func (p Primitive) Kind() Kind     { return Kind(p) }
func (p Primitive) String() string { return Kind(p).String() }
func (Primitive) isType()          {}

// Vec is a u32-count-prefixed sequence.
type Vec struct {
	Elem Type
}

func (*Vec) Kind() Kind { return KindVec }
func (v *Vec) String() string {
	return "vec<" + typeString(v.Elem) + ">"
}
func (*Vec) isType() {}

// Option is a presence byte followed by the value when present.
type Option struct {
	Elem Type
}

func (*Option) Kind() Kind { return KindOption }
func (o *Option) String() string {
	return "option<" + typeString(o.Elem) + ">"
}
func (*Option) isType() {}

// Array is a fixed number of elements with no length prefix.
type Array struct {
	Elem Type
	Len  int
}

func (*Array) Kind() Kind { return KindArray }
func (a *Array) String() string {
	return "[" + typeString(a.Elem) + "; " + strconv.Itoa(a.Len) + "]"
}
func (*Array) isType() {}

// Defined references a Shared Type Definition by name.
type Defined string

func (Defined) Kind() Kind       { return KindDefined }
func (d Defined) String() string { return string(d) }
func (Defined) isType()          {}

// Field is a named, typed member of a record, struct or enum variant.
type Field struct {
	Type Type
	Name string
}

// Struct is an ordered list of fields.
type Struct struct {
	Fields []Field
}

func (*Struct) Kind() Kind { return KindStruct }
func (s *Struct) String() string {
	return "struct {" + fieldsString(s.Fields) + "}"
}
func (*Struct) isType() {}

// Variant is one case of an Enum. Unit variants have no fields.
type Variant struct {
	Name   string
	Fields []Field
}

// Enum is a tagged union; the variant index is written as a single byte.
type Enum struct {
	Variants []Variant
}

func (*Enum) Kind() Kind { return KindEnum }
func (e *Enum) String() string {
	var b strings.Builder
	b.WriteString("enum {")
	for i, v := range e.Variants {
		if i > 0 {
			b.WriteString(",")
		}
		b.WriteString(" ")
		b.WriteString(v.Name)
		if len(v.Fields) > 0 {
			b.WriteString(" {")
			b.WriteString(fieldsString(v.Fields))
			b.WriteString("}")
		}
	}
	if len(e.Variants) > 0 {
		b.WriteString(" ")
	}
	b.WriteString("}")
	return b.String()
}
func (*Enum) isType() {}

// VariantIndex returns the position of the named variant, or -1.
func (e *Enum) VariantIndex(name string) int {
	for i, v := range e.Variants {
		if v.Name == name {
			return i
		}
	}
	return -1
}

func typeString(t Type) string {
	if t == nil {
		return "<nil>"
	}
	return t.String()
}

func fieldsString(fields []Field) string {
	if len(fields) == 0 {
		return ""
	}
	parts := make([]string, len(fields))
	for i, f := range fields {
		parts[i] = f.Name + ": " + typeString(f.Type)
	}
	return " " + strings.Join(parts, ", ") + " "
}
