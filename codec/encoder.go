package codec

import (
	"encoding/base64"
	"encoding/binary"
	"fmt"
	"math"
	"math/big"
	"reflect"
	"strconv"
	"unicode/utf8"

	"github.com/wippyai/accounts-coder/internal/coerce"
	"github.com/wippyai/accounts-coder/errors"
	"github.com/wippyai/accounts-coder/layout"
	"github.com/wippyai/accounts-coder/schema"
	"github.com/wippyai/accounts-coder/value"
)

// Safety limits applied to length prefixes on both encode and decode.
const (
	MaxStringSize = 1 << 24 // bytes in one string or bytes value
	MaxListLength = 1 << 24 // elements in one vec
	MaxDepth      = 512     // nesting of recursive values
)

// Encoder writes values according to compiled rules. It holds no per-call
// state and is safe for concurrent use.
type Encoder struct{}

func NewEncoder() *Encoder {
	return &Encoder{}
}

// Encode normalizes v, sizes it and writes it into an exactly sized buffer.
func (e *Encoder) Encode(rule *layout.Rule, v any) ([]byte, error) {
	val, err := e.Normalize(rule, v)
	if err != nil {
		return nil, err
	}

	buf := make([]byte, e.Size(rule, val))
	if _, err := e.EncodeTo(buf, rule, val); err != nil {
		return nil, err
	}
	return buf, nil
}

// Normalize validates v against rule and converts it to the canonical
// value tree that Size and EncodeTo expect.
func (e *Encoder) Normalize(rule *layout.Rule, v any) (value.Value, error) {
	if rule == nil {
		return nil, errors.InvalidInput(errors.PhaseEncode, "nil rule")
	}
	return e.normalize(rule, v, nil, 0)
}

func (e *Encoder) normalize(rule *layout.Rule, v any, path []string, depth int) (value.Value, error) {
	if depth > MaxDepth {
		return nil, errors.New(errors.PhaseEncode, errors.KindInvalidInput).
			Path(path...).
			Detail("value nested deeper than %d levels", MaxDepth).
			Build()
	}

	if rule.Kind == schema.KindOption {
		return e.normalizeOption(rule, v, path, depth)
	}

	v = deref(v)
	if v == nil {
		return nil, mismatch(path, rule, "missing value")
	}

	switch rule.Kind {
	case schema.KindBool:
		if b, ok := v.(value.Bool); ok {
			return b, nil
		}
		if rv := reflect.ValueOf(v); rv.Kind() == reflect.Bool {
			return value.Bool(rv.Bool()), nil
		}
		return nil, mismatch(path, rule, "expected bool, got %s", coerce.TypeName(v))

	case schema.KindU8, schema.KindU16, schema.KindU32, schema.KindU64:
		return normalizeUnsigned(rule, v, path)

	case schema.KindI8, schema.KindI16, schema.KindI32, schema.KindI64:
		return normalizeSigned(rule, v, path)

	case schema.KindU128, schema.KindI128:
		return normalizeWide(rule, v, path)

	case schema.KindF32, schema.KindF64:
		f, ok := coerce.Float64(v)
		if !ok {
			return nil, mismatch(path, rule, "expected number, got %s", coerce.TypeName(v))
		}
		if rule.Kind == schema.KindF32 {
			return value.F32(f), nil
		}
		return value.F64(f), nil

	case schema.KindPublicKey:
		return normalizePublicKey(rule, v, path)

	case schema.KindString:
		return normalizeString(rule, v, path)

	case schema.KindBytes:
		return normalizeBytes(rule, v, path)

	case schema.KindVec, schema.KindArray:
		return e.normalizeList(rule, v, path, depth)

	case schema.KindStruct:
		fields, err := e.normalizeFields(rule.Fields, v, path, depth)
		if err != nil {
			return nil, err
		}
		return fields, nil

	case schema.KindEnum:
		return e.normalizeEnum(rule, v, path, depth)

	default:
		return nil, mismatch(path, rule, "unsupported kind %s", rule.Kind)
	}
}

func normalizeUnsigned(rule *layout.Rule, v any, path []string) (value.Value, error) {
	u, ok := coerce.Uint64(v)
	if !ok || !coerce.FitsUnsigned(u, rule.Kind.FixedSize()*8) {
		return nil, mismatch(path, rule, "cannot represent %v (%s) as %s", v, coerce.TypeName(v), rule.Kind)
	}
	switch rule.Kind {
	case schema.KindU8:
		return value.U8(u), nil
	case schema.KindU16:
		return value.U16(u), nil
	case schema.KindU32:
		return value.U32(u), nil
	default:
		return value.U64(u), nil
	}
}

func normalizeSigned(rule *layout.Rule, v any, path []string) (value.Value, error) {
	i, ok := coerce.Int64(v)
	if !ok || !coerce.FitsSigned(i, rule.Kind.FixedSize()*8) {
		return nil, mismatch(path, rule, "cannot represent %v (%s) as %s", v, coerce.TypeName(v), rule.Kind)
	}
	switch rule.Kind {
	case schema.KindI8:
		return value.I8(i), nil
	case schema.KindI16:
		return value.I16(i), nil
	case schema.KindI32:
		return value.I32(i), nil
	default:
		return value.I64(i), nil
	}
}

var byteType = reflect.TypeOf(byte(0))

type bigger interface {
	Big() *big.Int
}

func normalizeWide(rule *layout.Rule, v any, path []string) (value.Value, error) {
	switch x := v.(type) {
	case value.U128:
		if rule.Kind == schema.KindU128 {
			return x, nil
		}
	case value.I128:
		if rule.Kind == schema.KindI128 {
			return x, nil
		}
	}

	var b *big.Int
	if bv, ok := v.(bigger); ok {
		b = bv.Big()
	} else if parsed, ok := coerce.Big(v); ok {
		b = parsed
	} else {
		return nil, mismatch(path, rule, "expected integer, got %s", coerce.TypeName(v))
	}

	if rule.Kind == schema.KindU128 {
		if u, ok := value.U128FromBig(b); ok {
			return u, nil
		}
	} else if i, ok := value.I128FromBig(b); ok {
		return i, nil
	}
	return nil, mismatch(path, rule, "cannot represent %s as %s", b, rule.Kind)
}

func normalizePublicKey(rule *layout.Rule, v any, path []string) (value.Value, error) {
	switch k := v.(type) {
	case value.PublicKey:
		return k, nil
	case string:
		if pk, ok := value.ParsePublicKey(k); ok {
			return pk, nil
		}
		return nil, mismatch(path, rule, "invalid base58 public key %q", k)
	case fmt.Stringer:
		if rv := reflect.ValueOf(v); rv.Kind() != reflect.Array && rv.Kind() != reflect.Slice {
			if pk, ok := value.ParsePublicKey(k.String()); ok {
				return pk, nil
			}
			return nil, mismatch(path, rule, "invalid base58 public key %q", k.String())
		}
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Array, reflect.Slice:
		if rv.Type().Elem().Kind() != reflect.Uint8 {
			break
		}
		if rv.Len() != value.PublicKeySize {
			return nil, mismatch(path, rule, "public key must be %d bytes, got %d", value.PublicKeySize, rv.Len())
		}
		var pk value.PublicKey
		for i := range pk {
			pk[i] = byte(rv.Index(i).Uint())
		}
		return pk, nil
	case reflect.String:
		if pk, ok := value.ParsePublicKey(rv.String()); ok {
			return pk, nil
		}
		return nil, mismatch(path, rule, "invalid base58 public key %q", rv.String())
	}
	return nil, mismatch(path, rule, "expected public key, got %s", coerce.TypeName(v))
}

func normalizeString(rule *layout.Rule, v any, path []string) (value.Value, error) {
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.String {
		return nil, mismatch(path, rule, "expected string, got %s", coerce.TypeName(v))
	}
	s := rv.String()
	if len(s) > MaxStringSize {
		return nil, tooLong(errors.PhaseEncode, path, "string", len(s), MaxStringSize)
	}
	if !utf8.ValidString(s) {
		return nil, errors.InvalidUTF8(errors.PhaseEncode, path, []byte(s))
	}
	return value.String(s), nil
}

// normalizeBytes accepts byte slices and arrays, base64 strings and lists
// of small integers (the shape JSON input arrives in).
func normalizeBytes(rule *layout.Rule, v any, path []string) (value.Value, error) {
	var out []byte

	rv := reflect.ValueOf(v)
	switch {
	case rv.Kind() == reflect.String:
		raw, err := base64.StdEncoding.DecodeString(rv.String())
		if err != nil {
			return nil, mismatch(path, rule, "bytes given as string must be base64: %v", err)
		}
		out = raw
	case (rv.Kind() == reflect.Slice || rv.Kind() == reflect.Array) && rv.Type().Elem() == byteType:
		out = make([]byte, rv.Len())
		reflect.Copy(reflect.ValueOf(out), rv)
	case rv.Kind() == reflect.Slice || rv.Kind() == reflect.Array:
		out = make([]byte, rv.Len())
		for i := range out {
			item := rv.Index(i).Interface()
			u, ok := coerce.Uint64(item)
			if !ok || u > math.MaxUint8 {
				return nil, mismatch(appendPath(path, index(i)), rule, "expected byte, got %v", item)
			}
			out[i] = byte(u)
		}
	default:
		return nil, mismatch(path, rule, "expected bytes, got %s", coerce.TypeName(v))
	}

	if len(out) > MaxListLength {
		return nil, tooLong(errors.PhaseEncode, path, "bytes", len(out), MaxListLength)
	}
	return value.Bytes(out), nil
}

func (e *Encoder) normalizeList(rule *layout.Rule, v any, path []string, depth int) (value.Value, error) {
	items, ok := listItems(v)
	if !ok {
		return nil, mismatch(path, rule, "expected list, got %s", coerce.TypeName(v))
	}

	if rule.Kind == schema.KindArray && len(items) != rule.Len {
		return nil, mismatch(path, rule, "expected %d elements, got %d", rule.Len, len(items))
	}
	if len(items) > MaxListLength {
		return nil, tooLong(errors.PhaseEncode, path, "vec", len(items), MaxListLength)
	}

	out := make([]value.Value, len(items))
	for i, item := range items {
		elem, err := e.normalize(rule.Elem, item, appendPath(path, index(i)), depth+1)
		if err != nil {
			return nil, err
		}
		out[i] = elem
	}

	if rule.Kind == schema.KindArray {
		return value.Array(out), nil
	}
	return value.Vec(out), nil
}

func (e *Encoder) normalizeOption(rule *layout.Rule, v any, path []string, depth int) (value.Value, error) {
	switch o := v.(type) {
	case nil:
		return value.None(), nil
	case value.Option:
		if !o.IsSome() {
			return value.None(), nil
		}
		v = o.Value
	default:
		rv := reflect.ValueOf(v)
		if rv.Kind() == reflect.Pointer {
			if rv.IsNil() {
				return value.None(), nil
			}
			// One pointer level per option level.
			if _, isBig := v.(*big.Int); !isBig {
				v = rv.Elem().Interface()
			}
		}
	}

	// Nested options arrive from ToNative as one-element lists per level.
	if rule.Elem.Kind == schema.KindOption {
		if items, ok := v.([]any); ok && len(items) == 1 {
			v = items[0]
		}
	}

	inner, err := e.normalize(rule.Elem, v, path, depth+1)
	if err != nil {
		return nil, err
	}
	return value.Some(inner), nil
}

func (e *Encoder) normalizeFields(fields []layout.Field, v any, path []string, depth int) (value.Struct, error) {
	lookup, ok := fieldSource(v)
	if !ok {
		return nil, errors.ShapeMismatch(path, "struct", "expected struct or map, got %s", coerce.TypeName(v))
	}

	out := newStruct(len(fields))
	for _, f := range fields {
		raw, found := lookup(f.Name)
		if !found {
			return nil, errors.FieldMissing(errors.PhaseEncode, path, f.Name)
		}
		fv, err := e.normalize(f.Rule, raw, appendPath(path, f.Name), depth+1)
		if err != nil {
			return nil, err
		}
		out = append(out, value.Field{Name: f.Name, Value: fv})
	}
	return out, nil
}

// normalizeEnum accepts value.Enum, a bare variant name for variants without
// fields, or a single-key map {"Variant": fields}.
func (e *Encoder) normalizeEnum(rule *layout.Rule, v any, path []string, depth int) (value.Value, error) {
	var name string
	var payload any

	switch x := v.(type) {
	case value.Enum:
		name, payload = x.Variant, x.Fields
	default:
		rv := reflect.ValueOf(v)
		switch {
		case rv.Kind() == reflect.String:
			name = rv.String()
		case rv.Kind() == reflect.Map && rv.Type().Key().Kind() == reflect.String:
			if rv.Len() != 1 {
				return nil, mismatch(path, rule, "enum map must have exactly one key, got %d", rv.Len())
			}
			iter := rv.MapRange()
			iter.Next()
			name = iter.Key().String()
			payload = iter.Value().Interface()
		default:
			return nil, mismatch(path, rule, "expected enum variant, got %s", coerce.TypeName(v))
		}
	}

	variant, ok := rule.Variant(name)
	if !ok {
		return nil, mismatch(path, rule, "unknown variant %q", name)
	}

	vpath := appendPath(path, name)
	if len(variant.Fields) == 0 {
		return value.Enum{Variant: name}, nil
	}
	if payload == nil {
		return nil, errors.FieldMissing(errors.PhaseEncode, vpath, variant.Fields[0].Name)
	}

	fields, err := e.normalizeFields(variant.Fields, payload, vpath, depth+1)
	if err != nil {
		return nil, err
	}
	return value.Enum{Variant: name, Fields: fields}, nil
}

// Size returns the encoded size of a value produced by Normalize.
func (e *Encoder) Size(rule *layout.Rule, v value.Value) int {
	if rule.Fixed {
		return rule.MinSize
	}

	switch rule.Kind {
	case schema.KindString:
		s, _ := v.(value.String)
		return 4 + len(s)
	case schema.KindBytes:
		b, _ := v.(value.Bytes)
		return 4 + len(b)
	case schema.KindVec:
		items, _ := v.(value.Vec)
		return 4 + e.sizeItems(rule.Elem, items)
	case schema.KindArray:
		items, _ := v.(value.Array)
		return e.sizeItems(rule.Elem, items)
	case schema.KindOption:
		o, _ := v.(value.Option)
		if !o.IsSome() {
			return 1
		}
		return 1 + e.Size(rule.Elem, o.Value)
	case schema.KindStruct:
		s, _ := v.(value.Struct)
		return e.sizeFields(rule.Fields, s)
	case schema.KindEnum:
		en, _ := v.(value.Enum)
		variant, _ := rule.Variant(en.Variant)
		return 1 + e.sizeFields(variant.Fields, en.Fields)
	default:
		return rule.Kind.FixedSize()
	}
}

func (e *Encoder) sizeItems(elem *layout.Rule, items []value.Value) int {
	if elem.Fixed {
		return len(items) * elem.MinSize
	}
	n := 0
	for _, item := range items {
		n += e.Size(elem, item)
	}
	return n
}

func (e *Encoder) sizeFields(fields []layout.Field, s value.Struct) int {
	n := 0
	for i, f := range fields {
		if i < len(s) {
			n += e.Size(f.Rule, s[i].Value)
		}
	}
	return n
}

// EncodeTo writes a value produced by Normalize at the start of dst and
// returns the number of bytes written.
func (e *Encoder) EncodeTo(dst []byte, rule *layout.Rule, v value.Value) (int, error) {
	w := &writer{buf: dst}
	if err := e.write(w, rule, v, nil); err != nil {
		return 0, err
	}
	return w.off, nil
}

type writer struct {
	buf []byte
	off int
}

func (w *writer) next(n int, path []string) ([]byte, error) {
	if len(w.buf)-w.off < n {
		return nil, errors.New(errors.PhaseEncode, errors.KindInvalidInput).
			Path(path...).
			Detail("destination too short: need %d bytes at offset %d, have %d", n, w.off, len(w.buf)).
			Build()
	}
	b := w.buf[w.off : w.off+n]
	w.off += n
	return b, nil
}

func (w *writer) u8(v uint8, path []string) error {
	b, err := w.next(1, path)
	if err != nil {
		return err
	}
	b[0] = v
	return nil
}

func (w *writer) u16(v uint16, path []string) error {
	b, err := w.next(2, path)
	if err != nil {
		return err
	}
	binary.LittleEndian.PutUint16(b, v)
	return nil
}

func (w *writer) u32(v uint32, path []string) error {
	b, err := w.next(4, path)
	if err != nil {
		return err
	}
	binary.LittleEndian.PutUint32(b, v)
	return nil
}

func (w *writer) u64(v uint64, path []string) error {
	b, err := w.next(8, path)
	if err != nil {
		return err
	}
	binary.LittleEndian.PutUint64(b, v)
	return nil
}

func (w *writer) u128(hi, lo uint64, path []string) error {
	b, err := w.next(16, path)
	if err != nil {
		return err
	}
	binary.LittleEndian.PutUint64(b[:8], lo)
	binary.LittleEndian.PutUint64(b[8:], hi)
	return nil
}

func (w *writer) raw(p []byte, path []string) error {
	b, err := w.next(len(p), path)
	if err != nil {
		return err
	}
	copy(b, p)
	return nil
}

func (e *Encoder) write(w *writer, rule *layout.Rule, v value.Value, path []string) error {
	switch rule.Kind {
	case schema.KindBool:
		b, ok := v.(value.Bool)
		if !ok {
			return unexpected(path, rule, v)
		}
		if b {
			return w.u8(1, path)
		}
		return w.u8(0, path)

	case schema.KindU8:
		x, ok := v.(value.U8)
		if !ok {
			return unexpected(path, rule, v)
		}
		return w.u8(uint8(x), path)

	case schema.KindI8:
		x, ok := v.(value.I8)
		if !ok {
			return unexpected(path, rule, v)
		}
		return w.u8(uint8(x), path)

	case schema.KindU16:
		x, ok := v.(value.U16)
		if !ok {
			return unexpected(path, rule, v)
		}
		return w.u16(uint16(x), path)

	case schema.KindI16:
		x, ok := v.(value.I16)
		if !ok {
			return unexpected(path, rule, v)
		}
		return w.u16(uint16(x), path)

	case schema.KindU32:
		x, ok := v.(value.U32)
		if !ok {
			return unexpected(path, rule, v)
		}
		return w.u32(uint32(x), path)

	case schema.KindI32:
		x, ok := v.(value.I32)
		if !ok {
			return unexpected(path, rule, v)
		}
		return w.u32(uint32(x), path)

	case schema.KindU64:
		x, ok := v.(value.U64)
		if !ok {
			return unexpected(path, rule, v)
		}
		return w.u64(uint64(x), path)

	case schema.KindI64:
		x, ok := v.(value.I64)
		if !ok {
			return unexpected(path, rule, v)
		}
		return w.u64(uint64(x), path)

	case schema.KindU128:
		x, ok := v.(value.U128)
		if !ok {
			return unexpected(path, rule, v)
		}
		return w.u128(x.Hi, x.Lo, path)

	case schema.KindI128:
		x, ok := v.(value.I128)
		if !ok {
			return unexpected(path, rule, v)
		}
		return w.u128(x.Hi, x.Lo, path)

	case schema.KindF32:
		x, ok := v.(value.F32)
		if !ok {
			return unexpected(path, rule, v)
		}
		return w.u32(math.Float32bits(float32(x)), path)

	case schema.KindF64:
		x, ok := v.(value.F64)
		if !ok {
			return unexpected(path, rule, v)
		}
		return w.u64(math.Float64bits(float64(x)), path)

	case schema.KindPublicKey:
		x, ok := v.(value.PublicKey)
		if !ok {
			return unexpected(path, rule, v)
		}
		return w.raw(x[:], path)

	case schema.KindString:
		x, ok := v.(value.String)
		if !ok {
			return unexpected(path, rule, v)
		}
		if err := w.u32(uint32(len(x)), path); err != nil {
			return err
		}
		b, err := w.next(len(x), path)
		if err != nil {
			return err
		}
		copy(b, string(x))
		return nil

	case schema.KindBytes:
		x, ok := v.(value.Bytes)
		if !ok {
			return unexpected(path, rule, v)
		}
		if err := w.u32(uint32(len(x)), path); err != nil {
			return err
		}
		return w.raw(x, path)

	case schema.KindVec:
		x, ok := v.(value.Vec)
		if !ok {
			return unexpected(path, rule, v)
		}
		if err := w.u32(uint32(len(x)), path); err != nil {
			return err
		}
		return e.writeItems(w, rule.Elem, x, path)

	case schema.KindArray:
		x, ok := v.(value.Array)
		if !ok || len(x) != rule.Len {
			return unexpected(path, rule, v)
		}
		return e.writeItems(w, rule.Elem, x, path)

	case schema.KindOption:
		x, ok := v.(value.Option)
		if !ok {
			return unexpected(path, rule, v)
		}
		if !x.IsSome() {
			return w.u8(0, path)
		}
		if err := w.u8(1, path); err != nil {
			return err
		}
		return e.write(w, rule.Elem, x.Value, path)

	case schema.KindStruct:
		x, ok := v.(value.Struct)
		if !ok {
			return unexpected(path, rule, v)
		}
		return e.writeFields(w, rule.Fields, x, path)

	case schema.KindEnum:
		x, ok := v.(value.Enum)
		if !ok {
			return unexpected(path, rule, v)
		}
		variant, found := rule.Variant(x.Variant)
		if !found {
			return mismatch(path, rule, "unknown variant %q", x.Variant)
		}
		if err := w.u8(variant.Index, path); err != nil {
			return err
		}
		return e.writeFields(w, variant.Fields, x.Fields, appendPath(path, variant.Name))

	default:
		return mismatch(path, rule, "unsupported kind %s", rule.Kind)
	}
}

func (e *Encoder) writeItems(w *writer, elem *layout.Rule, items []value.Value, path []string) error {
	for i, item := range items {
		if err := e.write(w, elem, item, appendPath(path, index(i))); err != nil {
			return err
		}
	}
	return nil
}

func (e *Encoder) writeFields(w *writer, fields []layout.Field, s value.Struct, path []string) error {
	if len(s) != len(fields) {
		return errors.ShapeMismatch(path, "struct", "expected %d fields, got %d", len(fields), len(s))
	}
	for i, f := range fields {
		if s[i].Name != f.Name {
			return errors.FieldMissing(errors.PhaseEncode, path, f.Name)
		}
		if err := e.write(w, f.Rule, s[i].Value, appendPath(path, f.Name)); err != nil {
			return err
		}
	}
	return nil
}

// deref follows pointers, keeping *big.Int intact.
func deref(v any) any {
	for {
		if _, ok := v.(*big.Int); ok {
			return v
		}
		rv := reflect.ValueOf(v)
		if rv.Kind() != reflect.Pointer {
			return v
		}
		if rv.IsNil() {
			return nil
		}
		v = rv.Elem().Interface()
	}
}

// listItems views slices and arrays as []any. Strings are not lists.
func listItems(v any) ([]any, bool) {
	switch x := v.(type) {
	case []any:
		return x, true
	case value.Vec:
		return valuesAsAny(x), true
	case value.Array:
		return valuesAsAny(x), true
	}

	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return nil, false
	}
	items := make([]any, rv.Len())
	for i := range items {
		items[i] = rv.Index(i).Interface()
	}
	return items, true
}

func valuesAsAny(vs []value.Value) []any {
	items := make([]any, len(vs))
	for i, v := range vs {
		items[i] = v
	}
	return items
}

// fieldSource returns a by-name lookup over value.Struct, string-keyed maps
// and Go structs. A nil v is an empty source.
func fieldSource(v any) (func(string) (any, bool), bool) {
	v = deref(v)
	switch x := v.(type) {
	case nil:
		return func(string) (any, bool) { return nil, false }, true
	case value.Struct:
		names := x.Names()
		return func(name string) (any, bool) {
			key, ok := findKey(names, name)
			if !ok {
				return nil, false
			}
			return x.Get(key)
		}, true
	case map[string]any:
		keys := make([]string, 0, len(x))
		for k := range x {
			keys = append(keys, k)
		}
		return func(name string) (any, bool) {
			key, ok := findKey(keys, name)
			if !ok {
				return nil, false
			}
			return x[key], true
		}, true
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Map:
		if rv.Type().Key().Kind() != reflect.String {
			return nil, false
		}
		keys := make([]string, 0, rv.Len())
		byName := make(map[string]reflect.Value, rv.Len())
		for _, k := range rv.MapKeys() {
			keys = append(keys, k.String())
			byName[k.String()] = k
		}
		return func(name string) (any, bool) {
			key, ok := findKey(keys, name)
			if !ok {
				return nil, false
			}
			return rv.MapIndex(byName[key]).Interface(), true
		}, true

	case reflect.Struct:
		fields := structFields(rv.Type())
		return func(name string) (any, bool) {
			f, ok := findField(fields, name)
			if !ok {
				return nil, false
			}
			fv, ok := fieldByIndex(rv, f.index, false)
			if !ok || !fv.CanInterface() {
				return nil, false
			}
			return fv.Interface(), true
		}, true
	}
	return nil, false
}

func newStruct(n int) value.Struct {
	if n == 0 {
		return nil
	}
	return make(value.Struct, 0, n)
}

func mismatch(path []string, rule *layout.Rule, detail string, args ...any) *errors.Error {
	return errors.ShapeMismatch(path, rule.String(), detail, args...)
}

func unexpected(path []string, rule *layout.Rule, v value.Value) *errors.Error {
	return mismatch(path, rule, "unexpected value %T; values must come from Normalize", v)
}

func tooLong(phase errors.Phase, path []string, what string, n, limit int) *errors.Error {
	return errors.New(phase, errors.KindOverflow).
		Path(path...).
		Detail("%s length %d exceeds limit %d", what, n, limit).
		Value(n).
		Build()
}

func index(i int) string {
	return "[" + strconv.Itoa(i) + "]"
}

func appendPath(path []string, elem string) []string {
	return append(append(make([]string, 0, len(path)+1), path...), elem)
}
