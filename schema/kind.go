package schema

// Kind identifies the wire shape of a type descriptor.
type Kind uint8

const (
	KindBool Kind = iota
	KindU8
	KindI8
	KindU16
	KindI16
	KindU32
	KindI32
	KindU64
	KindI64
	KindU128
	KindI128
	KindF32
	KindF64
	KindPublicKey
	KindString
	KindBytes
	KindVec
	KindOption
	KindArray
	KindDefined
	KindStruct
	KindEnum
)

var kindNames = [...]string{
	KindBool:      "bool",
	KindU8:        "u8",
	KindI8:        "i8",
	KindU16:       "u16",
	KindI16:       "i16",
	KindU32:       "u32",
	KindI32:       "i32",
	KindU64:       "u64",
	KindI64:       "i64",
	KindU128:      "u128",
	KindI128:      "i128",
	KindF32:       "f32",
	KindF64:       "f64",
	KindPublicKey: "publicKey",
	KindString:    "string",
	KindBytes:     "bytes",
	KindVec:       "vec",
	KindOption:    "option",
	KindArray:     "array",
	KindDefined:   "defined",
	KindStruct:    "struct",
	KindEnum:      "enum",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "unknown"
}

// IsPrimitive reports whether k is a leaf kind carried by Primitive.
func (k Kind) IsPrimitive() bool {
	return k <= KindBytes
}

// IsInteger reports whether k is a fixed-width integer kind.
func (k Kind) IsInteger() bool {
	return k >= KindU8 && k <= KindI128
}

// IsSigned reports whether k is a signed integer kind.
func (k Kind) IsSigned() bool {
	switch k {
	case KindI8, KindI16, KindI32, KindI64, KindI128:
		return true
	}
	return false
}

// FixedSize returns the encoded width of fixed-size primitive kinds, 0 otherwise.
func (k Kind) FixedSize() int {
	switch k {
	case KindBool, KindU8, KindI8:
		return 1
	case KindU16, KindI16:
		return 2
	case KindU32, KindI32, KindF32:
		return 4
	case KindU64, KindI64, KindF64:
		return 8
	case KindU128, KindI128:
		return 16
	case KindPublicKey:
		return PublicKeySize
	default:
		return 0
	}
}

// PrimitiveKind looks up a primitive kind by its schema name.
// "publicKey", "pubkey" and "Pubkey" are accepted for public keys.
func PrimitiveKind(name string) (Kind, bool) {
	switch name {
	case "publicKey", "pubkey", "Pubkey":
		return KindPublicKey, true
	}
	for k := KindBool; k <= KindBytes; k++ {
		if kindNames[k] == name {
			return k, true
		}
	}
	return 0, false
}
