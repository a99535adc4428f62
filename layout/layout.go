package layout

import (
	"strconv"
	"strings"

	"github.com/wippyai/accounts-coder/schema"
)

// MaxVariants is the largest enum a one-byte variant index can address.
const MaxVariants = 256

// Rule is the compiled encode/decode rule for one type.
type Rule struct {
	Elem     *Rule // vec, option, array
	TypeName string
	Fields   []Field   // struct
	Variants []Variant // enum
	Len      int       // array
	MinSize  int
	Kind     schema.Kind
	Fixed    bool
}

// Field is a compiled struct or variant member. Offset is the static byte
// offset from the start of the enclosing struct, or -1 when a preceding
// field has variable size.
type Field struct {
	Rule   *Rule
	Name   string
	Offset int
}

// Variant is a compiled enum case.
type Variant struct {
	Name    string
	Fields  []Field
	MinSize int
	Index   uint8
}

// Layout is the compiled layout of one account record.
type Layout struct {
	Root    *Rule
	Name    string
	MinSize int
	Fixed   bool
}

// Fields returns the record's fields in wire order.
func (l *Layout) Fields() []Field {
	return l.Root.Fields
}

// Field returns the named top-level field.
func (l *Layout) Field(name string) (Field, bool) {
	for _, f := range l.Root.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}

// String renders the rule as a type expression. Named shared types render
// as their name, which also bounds recursion.
func (r *Rule) String() string {
	if r == nil {
		return "<nil>"
	}
	if r.TypeName != "" {
		return r.TypeName
	}
	switch r.Kind {
	case schema.KindVec:
		return "vec<" + r.Elem.String() + ">"
	case schema.KindOption:
		return "option<" + r.Elem.String() + ">"
	case schema.KindArray:
		return "[" + r.Elem.String() + "; " + strconv.Itoa(r.Len) + "]"
	case schema.KindStruct:
		return "struct {" + fieldsString(r.Fields) + "}"
	case schema.KindEnum:
		names := make([]string, len(r.Variants))
		for i, v := range r.Variants {
			names[i] = v.Name
		}
		return "enum { " + strings.Join(names, ", ") + " }"
	default:
		return r.Kind.String()
	}
}

// Variant returns the named variant.
func (r *Rule) Variant(name string) (Variant, bool) {
	for _, v := range r.Variants {
		if v.Name == name {
			return v, true
		}
	}
	return Variant{}, false
}

func fieldsString(fields []Field) string {
	if len(fields) == 0 {
		return ""
	}
	parts := make([]string, len(fields))
	for i, f := range fields {
		parts[i] = f.Name + ": " + f.Rule.String()
	}
	return " " + strings.Join(parts, ", ") + " "
}
