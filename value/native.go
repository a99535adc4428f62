package value

// ToNative converts v to plain Go values suitable for encoding/json:
//
//	Struct     -> map[string]any
//	Enum       -> map[string]any{variant: map[string]any{...}}
//	Vec, Array -> []any
//	Option     -> nil or the native of the held value; an option holding
//	              another option wraps it in a one-element []any, so
//	              Some(None) and None stay distinct
//	PublicKey  -> base58 string
//	Bytes      -> []byte
//	U128, I128 -> decimal string
//	others     -> the matching Go scalar
func ToNative(v Value) any {
	switch x := v.(type) {
	case nil:
		return nil
	case Bool:
		return bool(x)
	case U8:
		return uint8(x)
	case I8:
		return int8(x)
	case U16:
		return uint16(x)
	case I16:
		return int16(x)
	case U32:
		return uint32(x)
	case I32:
		return int32(x)
	case U64:
		return uint64(x)
	case I64:
		return int64(x)
	case U128:
		return x.String()
	case I128:
		return x.String()
	case F32:
		return float32(x)
	case F64:
		return float64(x)
	case String:
		return string(x)
	case Bytes:
		return []byte(x)
	case PublicKey:
		return x.String()
	case Vec:
		return nativeList(x)
	case Array:
		return nativeList(x)
	case Option:
		if inner, ok := x.Value.(Option); ok {
			return []any{ToNative(inner)}
		}
		return ToNative(x.Value)
	case Struct:
		m := make(map[string]any, len(x))
		for _, f := range x {
			m[f.Name] = ToNative(f.Value)
		}
		return m
	case Enum:
		return map[string]any{x.Variant: ToNative(x.Fields)}
	default:
		return nil
	}
}

func nativeList(items []Value) []any {
	out := make([]any, len(items))
	for i, item := range items {
		out[i] = ToNative(item)
	}
	return out
}
