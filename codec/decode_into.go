package codec

import (
	"math/big"
	"reflect"

	"github.com/wippyai/accounts-coder/errors"
	"github.com/wippyai/accounts-coder/layout"
	"github.com/wippyai/accounts-coder/schema"
	"github.com/wippyai/accounts-coder/value"
)

var (
	valueType  = reflect.TypeOf((*value.Value)(nil)).Elem()
	bigIntType = reflect.TypeOf(big.Int{})
)

// DecodeInto decodes one value from data and stores it in dst, which must be
// a non-nil pointer. Struct fields are matched the same way Normalize
// matches them. Returns the number of bytes consumed.
func (d *Decoder) DecodeInto(rule *layout.Rule, data []byte, dst any) (int, error) {
	rv := reflect.ValueOf(dst)
	if rv.Kind() != reflect.Pointer {
		return 0, errors.New(errors.PhaseDecode, errors.KindInvalidInput).
			Detail("destination must be a pointer, got %T", dst).
			Build()
	}
	if rv.IsNil() {
		return 0, errors.InvalidInput(errors.PhaseDecode, "destination pointer is nil")
	}

	v, n, err := d.Decode(rule, data)
	if err != nil {
		return 0, err
	}
	if err := Assign(rule, v, rv.Elem()); err != nil {
		return 0, err
	}
	return n, nil
}

// Assign stores a decoded value into the settable Go value dst.
func Assign(rule *layout.Rule, v value.Value, dst reflect.Value) error {
	return assign(rule, v, dst, nil)
}

func assign(rule *layout.Rule, v value.Value, dst reflect.Value, path []string) error {
	if !dst.CanSet() {
		return intoMismatch(path, rule, dst.Type(), "destination is not settable")
	}

	// Interfaces: keep the value tree when the interface allows it,
	// otherwise hand over plain natives.
	if dst.Kind() == reflect.Interface {
		if valueType.AssignableTo(dst.Type()) && dst.Type() != reflect.TypeOf((*any)(nil)).Elem() {
			dst.Set(reflect.ValueOf(v))
			return nil
		}
		native := value.ToNative(v)
		if native == nil {
			dst.Set(reflect.Zero(dst.Type()))
			return nil
		}
		nv := reflect.ValueOf(native)
		if !nv.Type().AssignableTo(dst.Type()) {
			return intoMismatch(path, rule, dst.Type(), "cannot hold %T", native)
		}
		dst.Set(nv)
		return nil
	}

	if v == nil {
		return intoMismatch(path, rule, dst.Type(), "missing value")
	}

	if rule.Kind == schema.KindOption {
		o, _ := v.(value.Option)
		if !o.IsSome() {
			dst.Set(reflect.Zero(dst.Type()))
			return nil
		}
		if dst.Kind() == reflect.Pointer && dst.Type() != reflect.PointerTo(bigIntType) {
			ptr := reflect.New(dst.Type().Elem())
			if err := assign(rule.Elem, o.Value, ptr.Elem(), path); err != nil {
				return err
			}
			dst.Set(ptr)
			return nil
		}
		return assign(rule.Elem, o.Value, dst, path)
	}

	// Values of the exact value type, e.g. a value.PublicKey field.
	if rv := reflect.ValueOf(v); rv.Type() == dst.Type() {
		dst.Set(rv)
		return nil
	}

	if dst.Kind() == reflect.Pointer {
		if dst.Type() == reflect.PointerTo(bigIntType) {
			return assignWide(rule, v, dst, path)
		}
		ptr := reflect.New(dst.Type().Elem())
		if err := assign(rule, v, ptr.Elem(), path); err != nil {
			return err
		}
		dst.Set(ptr)
		return nil
	}

	switch rule.Kind {
	case schema.KindBool:
		if dst.Kind() != reflect.Bool {
			return intoMismatch(path, rule, dst.Type(), "")
		}
		dst.SetBool(bool(v.(value.Bool)))
		return nil

	case schema.KindU8, schema.KindU16, schema.KindU32, schema.KindU64,
		schema.KindI8, schema.KindI16, schema.KindI32, schema.KindI64:
		return assignInteger(rule, v, dst, path)

	case schema.KindU128, schema.KindI128:
		return assignWide(rule, v, dst, path)

	case schema.KindF32, schema.KindF64:
		if dst.Kind() != reflect.Float32 && dst.Kind() != reflect.Float64 {
			return intoMismatch(path, rule, dst.Type(), "")
		}
		if f, ok := v.(value.F32); ok {
			dst.SetFloat(float64(f))
		} else {
			dst.SetFloat(float64(v.(value.F64)))
		}
		return nil

	case schema.KindPublicKey:
		pk := v.(value.PublicKey)
		switch {
		case dst.Kind() == reflect.String:
			dst.SetString(pk.String())
		case dst.Kind() == reflect.Array && dst.Len() == value.PublicKeySize && dst.Type().Elem().Kind() == reflect.Uint8:
			for i := range pk {
				dst.Index(i).SetUint(uint64(pk[i]))
			}
		case dst.Kind() == reflect.Slice && dst.Type().Elem().Kind() == reflect.Uint8:
			s := reflect.MakeSlice(dst.Type(), value.PublicKeySize, value.PublicKeySize)
			for i := range pk {
				s.Index(i).SetUint(uint64(pk[i]))
			}
			dst.Set(s)
		default:
			return intoMismatch(path, rule, dst.Type(), "")
		}
		return nil

	case schema.KindString:
		if dst.Kind() != reflect.String {
			return intoMismatch(path, rule, dst.Type(), "")
		}
		dst.SetString(string(v.(value.String)))
		return nil

	case schema.KindBytes:
		b := v.(value.Bytes)
		switch {
		case dst.Kind() == reflect.Slice && dst.Type().Elem() == byteType:
			dst.SetBytes(append([]byte(nil), b...))
		case dst.Kind() == reflect.String:
			dst.SetString(string(b))
		default:
			return intoMismatch(path, rule, dst.Type(), "")
		}
		return nil

	case schema.KindVec:
		return assignList(rule, []value.Value(v.(value.Vec)), dst, path)

	case schema.KindArray:
		return assignList(rule, []value.Value(v.(value.Array)), dst, path)

	case schema.KindStruct:
		return assignFields(rule.Fields, v.(value.Struct), dst, path, rule)

	case schema.KindEnum:
		return assignEnum(rule, v.(value.Enum), dst, path)

	default:
		return intoMismatch(path, rule, dst.Type(), "unsupported kind")
	}
}

func assignInteger(rule *layout.Rule, v value.Value, dst reflect.Value, path []string) error {
	var (
		u        uint64
		i        int64
		negative bool
	)
	switch x := v.(type) {
	case value.U8:
		u = uint64(x)
	case value.U16:
		u = uint64(x)
	case value.U32:
		u = uint64(x)
	case value.U64:
		u = uint64(x)
	case value.I8:
		i, negative = int64(x), x < 0
	case value.I16:
		i, negative = int64(x), x < 0
	case value.I32:
		i, negative = int64(x), x < 0
	case value.I64:
		i, negative = int64(x), x < 0
	}
	if rule.Kind.IsSigned() && !negative {
		u = uint64(i)
	}

	switch dst.Kind() {
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		if negative || dst.OverflowUint(u) {
			return intoMismatch(path, rule, dst.Type(), "value out of range")
		}
		dst.SetUint(u)
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		if !negative {
			if u > 1<<63-1 {
				return intoMismatch(path, rule, dst.Type(), "value out of range")
			}
			i = int64(u)
		}
		if dst.OverflowInt(i) {
			return intoMismatch(path, rule, dst.Type(), "value out of range")
		}
		dst.SetInt(i)
	case reflect.Float32, reflect.Float64:
		if negative {
			dst.SetFloat(float64(i))
		} else {
			dst.SetFloat(float64(u))
		}
	default:
		return intoMismatch(path, rule, dst.Type(), "")
	}
	return nil
}

func assignWide(rule *layout.Rule, v value.Value, dst reflect.Value, path []string) error {
	b := v.(bigger).Big()

	switch {
	case dst.Type() == reflect.PointerTo(bigIntType):
		dst.Set(reflect.ValueOf(b))
	case dst.Type() == bigIntType:
		dst.Set(reflect.ValueOf(b).Elem())
	case dst.Kind() == reflect.String:
		dst.SetString(b.String())
	case dst.Kind() >= reflect.Uint && dst.Kind() <= reflect.Uintptr:
		if b.Sign() < 0 || !b.IsUint64() || dst.OverflowUint(b.Uint64()) {
			return intoMismatch(path, rule, dst.Type(), "value out of range")
		}
		dst.SetUint(b.Uint64())
	case dst.Kind() >= reflect.Int && dst.Kind() <= reflect.Int64:
		if !b.IsInt64() || dst.OverflowInt(b.Int64()) {
			return intoMismatch(path, rule, dst.Type(), "value out of range")
		}
		dst.SetInt(b.Int64())
	default:
		return intoMismatch(path, rule, dst.Type(), "")
	}
	return nil
}

func assignList(rule *layout.Rule, items []value.Value, dst reflect.Value, path []string) error {
	switch dst.Kind() {
	case reflect.Slice:
		s := reflect.MakeSlice(dst.Type(), len(items), len(items))
		for i, item := range items {
			if err := assign(rule.Elem, item, s.Index(i), appendPath(path, index(i))); err != nil {
				return err
			}
		}
		dst.Set(s)
		return nil
	case reflect.Array:
		if dst.Len() != len(items) {
			return intoMismatch(path, rule, dst.Type(), "holds %d elements, got %d", dst.Len(), len(items))
		}
		for i, item := range items {
			if err := assign(rule.Elem, item, dst.Index(i), appendPath(path, index(i))); err != nil {
				return err
			}
		}
		return nil
	}
	return intoMismatch(path, rule, dst.Type(), "")
}

func assignFields(fields []layout.Field, s value.Struct, dst reflect.Value, path []string, rule *layout.Rule) error {
	switch dst.Kind() {
	case reflect.Struct:
		goFields := structFields(dst.Type())
		for i, f := range fields {
			gf, ok := findField(goFields, f.Name)
			if !ok {
				// Fields without a home in the Go type are skipped.
				continue
			}
			fv, _ := fieldByIndex(dst, gf.index, true)
			if err := assign(f.Rule, s[i].Value, fv, appendPath(path, f.Name)); err != nil {
				return err
			}
		}
		return nil

	case reflect.Map:
		if dst.Type().Key().Kind() != reflect.String {
			return intoMismatch(path, rule, dst.Type(), "map keys must be strings")
		}
		m := reflect.MakeMapWithSize(dst.Type(), len(fields))
		for i, f := range fields {
			elem := reflect.New(dst.Type().Elem()).Elem()
			if err := assign(f.Rule, s[i].Value, elem, appendPath(path, f.Name)); err != nil {
				return err
			}
			m.SetMapIndex(reflect.ValueOf(f.Name).Convert(dst.Type().Key()), elem)
		}
		dst.Set(m)
		return nil
	}
	return intoMismatch(path, rule, dst.Type(), "")
}

// assignEnum stores unit variants into string destinations and anything
// else into value.Enum or map destinations.
func assignEnum(rule *layout.Rule, e value.Enum, dst reflect.Value, path []string) error {
	if dst.Kind() == reflect.String {
		if len(e.Fields) > 0 {
			return intoMismatch(path, rule, dst.Type(), "variant %q carries fields", e.Variant)
		}
		dst.SetString(e.Variant)
		return nil
	}
	if dst.Kind() == reflect.Map && dst.Type().Key().Kind() == reflect.String {
		variant, _ := rule.Variant(e.Variant)
		inner := reflect.New(dst.Type().Elem()).Elem()
		fieldsRule := &layout.Rule{Kind: schema.KindStruct, Fields: variant.Fields}
		if err := assign(fieldsRule, e.Fields, inner, appendPath(path, e.Variant)); err != nil {
			return err
		}
		m := reflect.MakeMapWithSize(dst.Type(), 1)
		m.SetMapIndex(reflect.ValueOf(e.Variant).Convert(dst.Type().Key()), inner)
		dst.Set(m)
		return nil
	}
	return intoMismatch(path, rule, dst.Type(), "")
}

func intoMismatch(path []string, rule *layout.Rule, t reflect.Type, detail string, args ...any) *errors.Error {
	b := errors.New(errors.PhaseDecode, errors.KindValueShapeMismatch).
		Path(path...).
		SchemaType(rule.String())
	if detail == "" {
		return b.Detail("cannot store in %s", t).Build()
	}
	return b.Detail("cannot store in %s: "+detail, append([]any{t}, args...)...).Build()
}
