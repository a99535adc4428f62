package layout

import (
	"math"

	"go.uber.org/zap"

	"github.com/wippyai/accounts-coder/errors"
	"github.com/wippyai/accounts-coder/internal/coerce"
	"github.com/wippyai/accounts-coder/schema"
)

// Compiler turns a schema into account layouts. A Compiler is single-use
// and not safe for concurrent use; the layouts it returns are.
type Compiler struct {
	schema   *schema.Schema
	shared   map[string]schema.TypeDef
	rules    map[string]*Rule // shared type name -> rule, complete or in progress
	measured map[*Rule]struct{}
	pending  []*Rule
	vecs     []*Rule
	stack    []frame
}

// frame is one entry of the resolution stack: either a shared type being
// resolved or a vec/option boundary (name == "").
type frame struct {
	name string
}

func NewCompiler(s *schema.Schema) *Compiler {
	return &Compiler{
		schema:   s,
		shared:   make(map[string]schema.TypeDef),
		rules:    make(map[string]*Rule),
		measured: make(map[*Rule]struct{}),
	}
}

// Compile is shorthand for NewCompiler(s).Compile().
func Compile(s *schema.Schema) (map[string]*Layout, error) {
	return NewCompiler(s).Compile()
}

// Compile resolves all shared types and returns one layout per account.
// A nil or empty schema yields an empty map.
func (c *Compiler) Compile() (map[string]*Layout, error) {
	layouts := make(map[string]*Layout)
	if c.schema == nil {
		return layouts, nil
	}

	for _, td := range c.schema.Types {
		if td.Name == "" {
			return nil, errors.UnsupportedShape(nil, "shared type without a name")
		}
		if _, dup := c.shared[td.Name]; dup {
			return nil, errors.UnsupportedShape([]string{td.Name}, "duplicate shared type %q", td.Name)
		}
		c.shared[td.Name] = td
	}

	// Shared types compile even when unreferenced so that a broken pool is
	// reported regardless of which accounts use it.
	for _, td := range c.schema.Types {
		rule, err := c.resolveDefined(td.Name, []string{td.Name})
		if err != nil {
			return nil, err
		}
		if err := c.measure(rule); err != nil {
			return nil, err
		}
	}

	order := make([]string, 0, len(c.schema.Accounts))
	for _, rec := range c.schema.Accounts {
		if rec.Name == "" {
			return nil, errors.UnsupportedShape(nil, "account without a name")
		}
		if _, dup := layouts[rec.Name]; dup {
			return nil, errors.UnsupportedShape([]string{rec.Name}, "duplicate account %q", rec.Name)
		}

		fields, err := c.compileFields(rec.Fields, []string{rec.Name})
		if err != nil {
			return nil, err
		}
		root := &Rule{Kind: schema.KindStruct, TypeName: rec.Name, Fields: fields}
		if err := c.measure(root); err != nil {
			return nil, err
		}

		layouts[rec.Name] = &Layout{Name: rec.Name, Root: root}
		order = append(order, rec.Name)
	}

	if err := c.drain(); err != nil {
		return nil, err
	}

	for _, name := range order {
		l := layouts[name]
		l.MinSize = l.Root.MinSize
		l.Fixed = l.Root.Fixed

		Logger().Debug("compiled account layout",
			zap.String("account", name),
			zap.Int("fields", len(l.Root.Fields)),
			zap.Int("min_size", l.MinSize),
			zap.Bool("fixed", l.Fixed),
		)
	}

	return layouts, nil
}

func (c *Compiler) compile(t schema.Type, path []string) (*Rule, error) {
	switch typ := t.(type) {
	case nil:
		return nil, errors.UnsupportedShape(path, "missing type descriptor")
	case schema.Primitive:
		if !typ.Kind().IsPrimitive() {
			return nil, errors.UnsupportedShape(path, "unknown primitive kind %d", uint8(typ))
		}
		return &Rule{Kind: typ.Kind()}, nil
	case *schema.Vec:
		if typ == nil {
			return nil, errors.UnsupportedShape(path, "missing type descriptor")
		}
		return c.compileContainer(schema.KindVec, typ.Elem, path)
	case *schema.Option:
		if typ == nil {
			return nil, errors.UnsupportedShape(path, "missing type descriptor")
		}
		return c.compileContainer(schema.KindOption, typ.Elem, path)
	case *schema.Array:
		return c.compileArray(typ, path)
	case schema.Defined:
		return c.resolveDefined(string(typ), path)
	case *schema.Struct:
		if typ == nil {
			return nil, errors.UnsupportedShape(path, "missing type descriptor")
		}
		fields, err := c.compileFields(typ.Fields, path)
		if err != nil {
			return nil, err
		}
		return &Rule{Kind: schema.KindStruct, Fields: fields}, nil
	case *schema.Enum:
		return c.compileEnum(typ, path)
	default:
		return nil, errors.UnsupportedShape(path, "unsupported type descriptor %T", t)
	}
}

// compileContainer handles vec and option. Both break type cycles: the
// element is resolved below a boundary frame.
func (c *Compiler) compileContainer(kind schema.Kind, elem schema.Type, path []string) (*Rule, error) {
	c.stack = append(c.stack, frame{})
	elemRule, err := c.compile(elem, appendPath(path, "["+kind.String()+"]"))
	c.stack = c.stack[:len(c.stack)-1]
	if err != nil {
		return nil, err
	}
	return &Rule{Kind: kind, Elem: elemRule}, nil
}

func (c *Compiler) compileArray(a *schema.Array, path []string) (*Rule, error) {
	if a == nil {
		return nil, errors.UnsupportedShape(path, "missing type descriptor")
	}
	if a.Len <= 0 {
		return nil, errors.UnsupportedShape(path, "array length must be positive, got %d", a.Len)
	}

	elemRule, err := c.compile(a.Elem, appendPath(path, "[array]"))
	if err != nil {
		return nil, err
	}
	return &Rule{Kind: schema.KindArray, Elem: elemRule, Len: a.Len}, nil
}

func (c *Compiler) compileFields(fields []schema.Field, path []string) ([]Field, error) {
	compiled := make([]Field, 0, len(fields))
	seen := make(map[string]struct{}, len(fields))

	for _, f := range fields {
		if f.Name == "" {
			return nil, errors.UnsupportedShape(path, "field without a name")
		}
		if _, dup := seen[f.Name]; dup {
			return nil, errors.UnsupportedShape(path, "duplicate field %q", f.Name)
		}
		seen[f.Name] = struct{}{}

		rule, err := c.compile(f.Type, appendPath(path, f.Name))
		if err != nil {
			return nil, err
		}
		compiled = append(compiled, Field{Name: f.Name, Rule: rule, Offset: -1})
	}

	return compiled, nil
}

func (c *Compiler) compileEnum(e *schema.Enum, path []string) (*Rule, error) {
	if e == nil {
		return nil, errors.UnsupportedShape(path, "missing type descriptor")
	}
	if len(e.Variants) == 0 {
		return nil, errors.UnsupportedShape(path, "enum without variants")
	}
	if len(e.Variants) > MaxVariants {
		return nil, errors.UnsupportedShape(path, "enum has %d variants, max %d", len(e.Variants), MaxVariants)
	}

	variants := make([]Variant, 0, len(e.Variants))
	seen := make(map[string]struct{}, len(e.Variants))

	for i, v := range e.Variants {
		if v.Name == "" {
			return nil, errors.UnsupportedShape(path, "variant %d without a name", i)
		}
		if _, dup := seen[v.Name]; dup {
			return nil, errors.UnsupportedShape(path, "duplicate variant %q", v.Name)
		}
		seen[v.Name] = struct{}{}

		fields, err := c.compileFields(v.Fields, appendPath(path, v.Name))
		if err != nil {
			return nil, err
		}
		variants = append(variants, Variant{Name: v.Name, Index: uint8(i), Fields: fields})
	}

	return &Rule{Kind: schema.KindEnum, Variants: variants}, nil
}

// resolveDefined returns the rule for a shared type, compiling it on first
// use. A name already on the resolution stack is a cycle; the cycle is
// legal only if a vec/option boundary was crossed since that entry.
func (c *Compiler) resolveDefined(name string, path []string) (*Rule, error) {
	name, err := c.canonical(name, path)
	if err != nil {
		return nil, err
	}

	for i := len(c.stack) - 1; i >= 0; i-- {
		if c.stack[i].name != name {
			continue
		}
		if c.mediatedSince(i) {
			return c.rules[name], nil
		}
		return nil, errors.Cycle(path, c.cycleChain(i, name))
	}

	if rule, ok := c.rules[name]; ok {
		return rule, nil
	}

	// Publish a placeholder before descending so mediated self-references
	// resolve to the same pointer; it is filled in below.
	rule := &Rule{TypeName: name}
	c.rules[name] = rule

	c.stack = append(c.stack, frame{name: name})
	inner, err := c.compile(c.shared[name].Type, path)
	c.stack = c.stack[:len(c.stack)-1]
	if err != nil {
		return nil, err
	}

	*rule = *inner
	rule.TypeName = name
	return rule, nil
}

// canonical follows alias chains (a shared type defined as another name)
// to the shared type that carries an actual shape.
func (c *Compiler) canonical(name string, path []string) (string, error) {
	var chain []string
	for {
		td, ok := c.shared[name]
		if !ok {
			return "", errors.UnresolvedReference(path, name)
		}
		next, isAlias := td.Type.(schema.Defined)
		if !isAlias {
			return name, nil
		}
		for _, seen := range chain {
			if seen == name {
				return "", errors.Cycle(path, append(chain, name))
			}
		}
		chain = append(chain, name)
		name = string(next)
	}
}

func (c *Compiler) mediatedSince(i int) bool {
	for _, f := range c.stack[i+1:] {
		if f.name == "" {
			return true
		}
	}
	return false
}

func (c *Compiler) cycleChain(i int, name string) []string {
	chain := make([]string, 0, len(c.stack)-i+1)
	for _, f := range c.stack[i:] {
		if f.name != "" {
			chain = append(chain, f.name)
		}
	}
	return append(chain, name)
}

// measure fills MinSize, Fixed and field offsets. Vec and option sizes do
// not depend on their element, so their elements are deferred to drain;
// every other edge is acyclic once resolution succeeded.
func (c *Compiler) measure(r *Rule) error {
	if _, done := c.measured[r]; done {
		return nil
	}
	c.measured[r] = struct{}{}

	switch r.Kind {
	case schema.KindVec:
		r.MinSize = 4 // u32 count
		c.pending = append(c.pending, r.Elem)
		c.vecs = append(c.vecs, r)

	case schema.KindOption:
		r.MinSize = 1 // presence flag
		c.pending = append(c.pending, r.Elem)

	case schema.KindString, schema.KindBytes:
		r.MinSize = 4

	case schema.KindArray:
		if err := c.measure(r.Elem); err != nil {
			return err
		}
		if r.Elem.MinSize == 0 {
			return errors.UnsupportedShape(nil, "%s: array element always encodes to zero bytes", r)
		}
		size, ok := coerce.SafeMul(r.Len, r.Elem.MinSize)
		if !ok {
			return errors.UnsupportedShape(nil, "%s: size overflows", r)
		}
		r.MinSize = size
		r.Fixed = r.Elem.Fixed

	case schema.KindStruct:
		size, fixed, err := c.measureFields(r.Fields, 0)
		if err != nil {
			return err
		}
		r.MinSize, r.Fixed = size, fixed

	case schema.KindEnum:
		minPayload, maxPayload := -1, 0
		fixed := true
		for i := range r.Variants {
			v := &r.Variants[i]
			size, variantFixed, err := c.measureFields(v.Fields, 1)
			if err != nil {
				return err
			}
			v.MinSize = 1 + size
			if minPayload < 0 || size < minPayload {
				minPayload = size
			}
			if size > maxPayload {
				maxPayload = size
			}
			fixed = fixed && variantFixed
		}
		r.MinSize = 1 + minPayload
		r.Fixed = fixed && minPayload == maxPayload

	default:
		r.MinSize = r.Kind.FixedSize()
		r.Fixed = true
	}
	return nil
}

// measureFields sizes fields laid out from base and assigns static offsets.
func (c *Compiler) measureFields(fields []Field, base int) (int, bool, error) {
	size := 0
	fixed := true
	for i := range fields {
		if err := c.measure(fields[i].Rule); err != nil {
			return 0, false, err
		}
		if fixed {
			fields[i].Offset = base + size
		}
		next, ok := coerce.SafeAdd(size, fields[i].Rule.MinSize)
		if !ok || next > math.MaxInt-base {
			return 0, false, errors.UnsupportedShape(nil, "size overflows at field %q", fields[i].Name)
		}
		size = next
		fixed = fixed && fields[i].Rule.Fixed
	}
	return size, fixed, nil
}

// drain measures deferred vec and option elements, then rejects vecs whose
// element encodes to zero bytes.
func (c *Compiler) drain() error {
	for len(c.pending) > 0 {
		r := c.pending[len(c.pending)-1]
		c.pending = c.pending[:len(c.pending)-1]
		if err := c.measure(r); err != nil {
			return err
		}
	}
	for _, v := range c.vecs {
		if v.Elem.MinSize == 0 {
			return errors.UnsupportedShape(nil, "%s: vec element always encodes to zero bytes", v)
		}
	}
	return nil
}

func appendPath(path []string, elem string) []string {
	return append(append(make([]string, 0, len(path)+1), path...), elem)
}
