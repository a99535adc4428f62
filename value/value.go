package value

import (
	"math/big"

	"github.com/mr-tron/base58"
)

// Value is a decoded account value. The set of implementations is closed.
type Value interface {
	isValue()
}

type (
	Bool   bool
	U8     uint8
	I8     int8
	U16    uint16
	I16    int16
	U32    uint32
	I32    int32
	U64    uint64
	I64    int64
	F32    float32
	F64    float64
	String string
	Bytes  []byte
	Vec    []Value
	Array  []Value
)

func (Bool) isValue()   {}
func (U8) isValue()     {}
func (I8) isValue()     {}
func (U16) isValue()    {}
func (I16) isValue()    {}
func (U32) isValue()    {}
func (I32) isValue()    {}
func (U64) isValue()    {}
func (I64) isValue()    {}
func (F32) isValue()    {}
func (F64) isValue()    {}
func (String) isValue() {}
func (Bytes) isValue()  {}
func (Vec) isValue()    {}
func (Array) isValue()  {}

// U128 is an unsigned 128-bit integer split into 64-bit halves.
type U128 struct {
	Hi uint64
	Lo uint64
}

func (U128) isValue() {}

// Big returns the value as a big.Int.
func (u U128) Big() *big.Int {
	b := new(big.Int).SetUint64(u.Hi)
	b.Lsh(b, 64)
	return b.Or(b, new(big.Int).SetUint64(u.Lo))
}

func (u U128) String() string { return u.Big().String() }

// I128 is a signed 128-bit integer in two's complement, split into 64-bit halves.
type I128 struct {
	Hi uint64
	Lo uint64
}

func (I128) isValue() {}

// Big returns the value as a big.Int.
func (i I128) Big() *big.Int {
	b := U128(i).Big()
	if i.Hi&(1<<63) != 0 {
		b.Sub(b, two128)
	}
	return b
}

func (i I128) String() string { return i.Big().String() }

// I128From converts a signed 64-bit integer.
func I128From(v int64) I128 {
	hi := uint64(0)
	if v < 0 {
		hi = ^uint64(0)
	}
	return I128{Hi: hi, Lo: uint64(v)}
}

var (
	two128    = new(big.Int).Lsh(big.NewInt(1), 128)
	maxU128   = new(big.Int).Sub(two128, big.NewInt(1))
	maxI128   = new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 127), big.NewInt(1))
	minI128   = new(big.Int).Neg(new(big.Int).Lsh(big.NewInt(1), 127))
	mask64Big = new(big.Int).SetUint64(^uint64(0))
)

// U128FromBig converts b, reporting false when it is out of range.
func U128FromBig(b *big.Int) (U128, bool) {
	if b == nil || b.Sign() < 0 || b.Cmp(maxU128) > 0 {
		return U128{}, false
	}
	lo := new(big.Int).And(b, mask64Big).Uint64()
	hi := new(big.Int).Rsh(b, 64).Uint64()
	return U128{Hi: hi, Lo: lo}, true
}

// I128FromBig converts b, reporting false when it is out of range.
func I128FromBig(b *big.Int) (I128, bool) {
	if b == nil || b.Cmp(minI128) < 0 || b.Cmp(maxI128) > 0 {
		return I128{}, false
	}
	u := new(big.Int).Set(b)
	if u.Sign() < 0 {
		u.Add(u, two128)
	}
	v, _ := U128FromBig(u)
	return I128(v), true
}

// PublicKeySize is the width of a public key in bytes.
const PublicKeySize = 32

// PublicKey is a 32-byte key, rendered in base58.
type PublicKey [PublicKeySize]byte

func (PublicKey) isValue() {}

func (k PublicKey) String() string { return base58.Encode(k[:]) }

// ParsePublicKey decodes a base58 public key.
func ParsePublicKey(s string) (PublicKey, bool) {
	var k PublicKey
	raw, err := base58.Decode(s)
	if err != nil || len(raw) != PublicKeySize {
		return k, false
	}
	copy(k[:], raw)
	return k, true
}

// Option is an optional value; a nil Value means none.
type Option struct {
	Value Value
}

func (Option) isValue() {}

// Some wraps v as a present option.
func Some(v Value) Option { return Option{Value: v} }

// None is the absent option.
func None() Option { return Option{} }

// IsSome reports whether the option holds a value.
func (o Option) IsSome() bool { return o.Value != nil }

// Field is a named member of a Struct.
type Field struct {
	Value Value
	Name  string
}

// Struct is an ordered list of fields, in wire order.
type Struct []Field

func (Struct) isValue() {}

// Get returns the named field value.
func (s Struct) Get(name string) (Value, bool) {
	for _, f := range s {
		if f.Name == name {
			return f.Value, true
		}
	}
	return nil, false
}

// Names returns field names in order.
func (s Struct) Names() []string {
	names := make([]string, len(s))
	for i, f := range s {
		names[i] = f.Name
	}
	return names
}

// Enum is a tagged union value: the variant name and its fields.
type Enum struct {
	Variant string
	Fields  Struct
}

func (Enum) isValue() {}
