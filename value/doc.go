// Package value defines the decoded representation of account data.
//
// Every schema kind maps to exactly one Value implementation:
//
//	bool       Bool          publicKey  PublicKey
//	u8 .. i64  U8 .. I64     string     String
//	u128/i128  U128/I128     bytes      Bytes
//	f32/f64    F32/F64       vec<T>     Vec
//	option<T>  Option        [T; N]     Array
//	struct     Struct        enum       Enum
//
// Struct keeps fields in wire order. ToNative converts a value tree into
// maps, slices and scalars for JSON output.
package value
