// Package schema defines the Type Schema consumed by the accounts coder.
//
// A Schema holds Record Definitions (the account shapes) and Shared Type
// Definitions that records and other shared types reference by name:
//
//	s := &schema.Schema{
//		Accounts: []schema.Record{{
//			Name: "Multisig",
//			Fields: []schema.Field{
//				{Name: "owners", Type: &schema.Vec{Elem: schema.PublicKey}},
//				{Name: "threshold", Type: schema.U64},
//				{Name: "nonce", Type: schema.U8},
//				{Name: "ownerSetSeqno", Type: schema.U32},
//			},
//		}},
//	}
//
// Type descriptors form a closed set: Primitive, *Vec, *Option, *Array,
// Defined, *Struct and *Enum. Other packages switch on the concrete type or on
// Type.Kind().
//
// # Loading
//
// Schemas are usually read from files:
//
//	LoadFile("multisig.json")  - Anchor-style IDL JSON
//	LoadFile("multisig.hcl")   - HCL schema document
//
// Field types inside HCL documents, and anywhere a textual form is needed,
// use type expressions parsed by ParseType:
//
//	u64  publicKey  string  bytes  vec<T>  option<T>  [T; N]  SharedTypeName
//
// A Schema is treated as immutable once handed to a coder.
package schema
