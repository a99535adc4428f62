// Package codec encodes and decodes values against compiled layout rules.
//
// # Encoding
//
// Encoding runs in three steps so the output buffer is allocated once at
// its exact size:
//
//  1. Normalize checks a caller value against the rule and converts it to
//     a value.Value tree. Go natives, JSON-decoded data (with json.Number),
//     maps and tagged Go structs are accepted.
//  2. Size computes the encoded length of the normalized tree.
//  3. EncodeTo writes the tree into a caller buffer.
//
// Encode runs all three.
//
// # Decoding
//
// Decode reads a value tree and reports how many bytes it consumed.
// Length prefixes are checked against the remaining input before anything
// is allocated. DecodeInto stores the result in a Go value instead.
//
// # Struct Fields
//
// Schema field names match Go struct fields and map keys in this order:
//
//	`account:"name"` tag
//	exact name
//	case-insensitive name
//	camelCase / snake_case equivalence (ownerSetSeqno == owner_set_seqno)
package codec
