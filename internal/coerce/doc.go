// Package coerce converts loosely typed caller values into the exact Go
// scalars the codec writes, and provides the checked arithmetic the layout
// compiler sizes types with.
//
// # Contents
//
//   - coerce.go: integer, float and big integer coercion
//   - helpers.go: checked arithmetic and type names for error messages
//
// Inputs may be any Go integer or float kind (named types included),
// json.Number, or for big integers a decimal string or *big.Int.
package coerce
