// Package layout compiles a Type Schema into per-account binary layouts.
//
// Compile resolves every shared type reference, rejects cycles that are not
// broken by a vec or option, and precomputes for every rule:
//
//   - MinSize: the smallest possible encoding in bytes
//   - Fixed: whether every value encodes to exactly MinSize
//   - Field offsets, while all preceding fields are fixed-size
//
// # Layout Rules
//
//	Kind            Encoding                              MinSize
//	──────────────────────────────────────────────────────────────
//	bool            1 byte, 0 or 1                        1
//	u8 .. i128      little-endian                         1/2/4/8/16
//	f32/f64         little-endian IEEE 754                4/8
//	publicKey       32 raw bytes                          32
//	string          u32 length + UTF-8                    4
//	bytes           u32 length + raw                      4
//	vec<T>          u32 count + elements                  4
//	option<T>       u8 flag + value if 1                  1
//	[T; N]          N elements                            N*min(T)
//	struct          fields in order                       sum
//	enum            u8 variant index + variant fields     1+min(variant)
//
// Shared types compile once and are shared by pointer, so recursive types
// produce a cyclic Rule graph. Consumers must not walk Elem links of vec and
// option rules without a value to bound the recursion.
//
// Compiled layouts are immutable and safe for concurrent use.
package layout
