package schema

import (
	"strconv"
	"strings"

	"github.com/wippyai/accounts-coder/errors"
)

// ParseType parses a type expression:
//
//	u8 .. i128, f32, f64, bool, publicKey, string, bytes
//	vec<T>, option<T>
//	[T; N]
//	Name        (reference to a shared type)
func ParseType(expr string) (Type, error) {
	p := &typeParser{src: expr}
	t, err := p.parseType()
	if err != nil {
		return nil, err
	}
	p.skipSpace()
	if p.pos != len(p.src) {
		return nil, p.errorf("unexpected %q", p.src[p.pos:])
	}
	return t, nil
}

// MustParseType is ParseType that panics on error. Intended for tests and
// package-level schema literals.
func MustParseType(expr string) Type {
	t, err := ParseType(expr)
	if err != nil {
		panic(err)
	}
	return t
}

type typeParser struct {
	src string
	pos int
}

func (p *typeParser) errorf(format string, args ...any) error {
	return errors.New(errors.PhaseLoad, errors.KindInvalidInput).
		Detail("type expression %q at %d: "+format, append([]any{p.src, p.pos}, args...)...).
		Build()
}

func (p *typeParser) skipSpace() {
	for p.pos < len(p.src) && (p.src[p.pos] == ' ' || p.src[p.pos] == '\t') {
		p.pos++
	}
}

func (p *typeParser) expect(c byte) error {
	p.skipSpace()
	if p.pos >= len(p.src) || p.src[p.pos] != c {
		return p.errorf("expected %q", c)
	}
	p.pos++
	return nil
}

func (p *typeParser) ident() string {
	p.skipSpace()
	start := p.pos
	for p.pos < len(p.src) {
		c := p.src[p.pos]
		if c == '_' || c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c >= '0' && c <= '9' {
			p.pos++
			continue
		}
		break
	}
	return p.src[start:p.pos]
}

func (p *typeParser) parseType() (Type, error) {
	p.skipSpace()
	if p.pos < len(p.src) && p.src[p.pos] == '[' {
		return p.parseArray()
	}

	name := p.ident()
	if name == "" {
		return nil, p.errorf("expected type name")
	}

	switch name {
	case "vec", "Vec", "option", "Option":
		if err := p.expect('<'); err != nil {
			return nil, err
		}
		elem, err := p.parseType()
		if err != nil {
			return nil, err
		}
		if err := p.expect('>'); err != nil {
			return nil, err
		}
		if strings.EqualFold(name, "vec") {
			return &Vec{Elem: elem}, nil
		}
		return &Option{Elem: elem}, nil
	}

	if k, ok := PrimitiveKind(name); ok {
		return Primitive(k), nil
	}
	return Defined(name), nil
}

func (p *typeParser) parseArray() (Type, error) {
	p.pos++ // '['
	elem, err := p.parseType()
	if err != nil {
		return nil, err
	}
	if err := p.expect(';'); err != nil {
		return nil, err
	}
	digits := p.ident()
	n, err := strconv.Atoi(digits)
	if err != nil {
		return nil, p.errorf("invalid array length %q", digits)
	}
	if err := p.expect(']'); err != nil {
		return nil, err
	}
	return &Array{Elem: elem, Len: n}, nil
}
