package codec

import (
	"encoding/binary"
	"math"
	"unicode/utf8"

	"github.com/wippyai/accounts-coder/errors"
	"github.com/wippyai/accounts-coder/layout"
	"github.com/wippyai/accounts-coder/schema"
	"github.com/wippyai/accounts-coder/value"
)

// Decoder reads values according to compiled rules. Every read is bounds
// checked; decoding never panics on malformed input.
type Decoder struct{}

func NewDecoder() *Decoder {
	return &Decoder{}
}

// Decode reads one value from the start of data and returns it along with
// the number of bytes consumed. Bytes after the value are left untouched.
func (d *Decoder) Decode(rule *layout.Rule, data []byte) (value.Value, int, error) {
	if rule == nil {
		return nil, 0, errors.InvalidInput(errors.PhaseDecode, "nil rule")
	}
	if len(data) < rule.MinSize {
		return nil, 0, errors.Truncated(nil, rule.MinSize, len(data))
	}

	r := &reader{data: data}
	v, err := d.read(r, rule, nil, 0)
	if err != nil {
		return nil, 0, err
	}
	return v, r.off, nil
}

type reader struct {
	data []byte
	off  int
}

func (r *reader) remaining() int {
	return len(r.data) - r.off
}

func (r *reader) next(n int, path []string) ([]byte, error) {
	if n < 0 || r.remaining() < n {
		return nil, errors.Truncated(path, r.off+n, len(r.data))
	}
	b := r.data[r.off : r.off+n]
	r.off += n
	return b, nil
}

func (r *reader) u8(path []string) (uint8, error) {
	b, err := r.next(1, path)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

func (r *reader) u16(path []string) (uint16, error) {
	b, err := r.next(2, path)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint16(b), nil
}

func (r *reader) u32(path []string) (uint32, error) {
	b, err := r.next(4, path)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(b), nil
}

func (r *reader) u64(path []string) (uint64, error) {
	b, err := r.next(8, path)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint64(b), nil
}

func (r *reader) u128(path []string) (hi, lo uint64, err error) {
	b, err := r.next(16, path)
	if err != nil {
		return 0, 0, err
	}
	return binary.LittleEndian.Uint64(b[8:]), binary.LittleEndian.Uint64(b[:8]), nil
}

// length reads a u32 prefix and checks it against limit and against the
// bytes left, assuming each counted item needs at least unit bytes. Units
// below one count as one byte.
func (r *reader) length(what string, limit, unit int, path []string) (int, error) {
	raw, err := r.u32(path)
	if err != nil {
		return 0, err
	}
	n := int(raw)
	if n > limit {
		return 0, tooLong(errors.PhaseDecode, path, what, n, limit)
	}
	unit = max(unit, 1)
	if n > r.remaining()/unit {
		return 0, errors.Truncated(path, r.off+n*unit, len(r.data))
	}
	return n, nil
}

func (d *Decoder) read(r *reader, rule *layout.Rule, path []string, depth int) (value.Value, error) {
	if depth > MaxDepth {
		return nil, errors.New(errors.PhaseDecode, errors.KindInvalidInput).
			Path(path...).
			Detail("value nested deeper than %d levels", MaxDepth).
			Build()
	}

	switch rule.Kind {
	case schema.KindBool:
		b, err := r.u8(path)
		if err != nil {
			return nil, err
		}
		return value.Bool(b != 0), nil

	case schema.KindU8:
		b, err := r.u8(path)
		return value.U8(b), err

	case schema.KindI8:
		b, err := r.u8(path)
		return value.I8(int8(b)), err

	case schema.KindU16:
		x, err := r.u16(path)
		return value.U16(x), err

	case schema.KindI16:
		x, err := r.u16(path)
		return value.I16(int16(x)), err

	case schema.KindU32:
		x, err := r.u32(path)
		return value.U32(x), err

	case schema.KindI32:
		x, err := r.u32(path)
		return value.I32(int32(x)), err

	case schema.KindU64:
		x, err := r.u64(path)
		return value.U64(x), err

	case schema.KindI64:
		x, err := r.u64(path)
		return value.I64(int64(x)), err

	case schema.KindU128:
		hi, lo, err := r.u128(path)
		return value.U128{Hi: hi, Lo: lo}, err

	case schema.KindI128:
		hi, lo, err := r.u128(path)
		return value.I128{Hi: hi, Lo: lo}, err

	case schema.KindF32:
		x, err := r.u32(path)
		return value.F32(math.Float32frombits(x)), err

	case schema.KindF64:
		x, err := r.u64(path)
		return value.F64(math.Float64frombits(x)), err

	case schema.KindPublicKey:
		b, err := r.next(value.PublicKeySize, path)
		if err != nil {
			return nil, err
		}
		var pk value.PublicKey
		copy(pk[:], b)
		return pk, nil

	case schema.KindString:
		n, err := r.length("string", MaxStringSize, 1, path)
		if err != nil {
			return nil, err
		}
		b, err := r.next(n, path)
		if err != nil {
			return nil, err
		}
		if !utf8.Valid(b) {
			return nil, errors.InvalidUTF8(errors.PhaseDecode, path, b)
		}
		return value.String(b), nil

	case schema.KindBytes:
		n, err := r.length("bytes", MaxListLength, 1, path)
		if err != nil {
			return nil, err
		}
		b, err := r.next(n, path)
		if err != nil {
			return nil, err
		}
		out := make([]byte, n)
		copy(out, b)
		return value.Bytes(out), nil

	case schema.KindVec:
		n, err := r.length("vec", MaxListLength, rule.Elem.MinSize, path)
		if err != nil {
			return nil, err
		}
		items, err := d.readItems(r, rule.Elem, n, path, depth)
		if err != nil {
			return nil, err
		}
		return value.Vec(items), nil

	case schema.KindArray:
		if r.remaining() < rule.MinSize || rule.Len > r.remaining() {
			return nil, errors.Truncated(path, r.off+max(rule.MinSize, rule.Len), len(r.data))
		}
		items, err := d.readItems(r, rule.Elem, rule.Len, path, depth)
		if err != nil {
			return nil, err
		}
		return value.Array(items), nil

	case schema.KindOption:
		flag, err := r.u8(path)
		if err != nil {
			return nil, err
		}
		switch flag {
		case 0:
			return value.None(), nil
		case 1:
			inner, err := d.read(r, rule.Elem, path, depth+1)
			if err != nil {
				return nil, err
			}
			return value.Some(inner), nil
		default:
			return nil, errors.New(errors.PhaseDecode, errors.KindValueShapeMismatch).
				Path(path...).
				SchemaType(rule.String()).
				Detail("invalid option flag %d", flag).
				Value(flag).
				Build()
		}

	case schema.KindStruct:
		return d.readFields(r, rule.Fields, path, depth)

	case schema.KindEnum:
		idx, err := r.u8(path)
		if err != nil {
			return nil, err
		}
		if int(idx) >= len(rule.Variants) {
			return nil, errors.InvalidDiscriminant(errors.PhaseDecode, path, uint32(idx), uint32(len(rule.Variants)-1))
		}
		variant := rule.Variants[idx]
		fields, err := d.readFields(r, variant.Fields, appendPath(path, variant.Name), depth)
		if err != nil {
			return nil, err
		}
		return value.Enum{Variant: variant.Name, Fields: fields}, nil

	default:
		return nil, errors.New(errors.PhaseDecode, errors.KindUnsupportedTypeShape).
			Path(path...).
			Detail("unsupported kind %s", rule.Kind).
			Build()
	}
}

func (d *Decoder) readItems(r *reader, elem *layout.Rule, n int, path []string, depth int) ([]value.Value, error) {
	items := make([]value.Value, n)
	for i := range items {
		item, err := d.read(r, elem, appendPath(path, index(i)), depth+1)
		if err != nil {
			return nil, err
		}
		items[i] = item
	}
	return items, nil
}

func (d *Decoder) readFields(r *reader, fields []layout.Field, path []string, depth int) (value.Struct, error) {
	out := newStruct(len(fields))
	for _, f := range fields {
		v, err := d.read(r, f.Rule, appendPath(path, f.Name), depth+1)
		if err != nil {
			return nil, err
		}
		out = append(out, value.Field{Name: f.Name, Value: v})
	}
	return out, nil
}
