// Package accountscoder encodes and decodes typed account records.
//
// An account is a named record whose bytes start with an 8-byte
// discriminator, sha256("account:" + name)[:8], followed by the record's
// fields in declaration order.
//
// # Architecture Overview
//
//	accountscoder/
//	├── accounts/      Coder: name and discriminator tables, Encode/Decode
//	├── layout/        Schema compiler producing per-account layouts
//	├── codec/         Value normalization, encoder and bounds-checked decoder
//	├── schema/        Type descriptors and IDL/HCL schema loaders
//	├── value/         Decoded value tree and native conversion
//	├── errors/        Structured error types
//	└── cmd/accounts/  CLI for listing, encoding and decoding accounts
//
// # Quick Start
//
//	s, err := schema.LoadFile("multisig.json")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	coder, err := accounts.NewWithDefaults(s)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	data, err := coder.Encode("Multisig", map[string]any{
//	    "owners":        []string{ownerA, ownerB},
//	    "threshold":     2,
//	    "nonce":         255,
//	    "ownerSetSeqno": 0,
//	})
//
//	v, err := coder.Decode("Multisig", data)
//	fmt.Println(v.Get("threshold")) // 2 true
//
// # Wire Format
//
// Integers are little-endian. Strings, bytes and vecs carry a u32 length
// prefix; options a one-byte 0/1 flag; enums a one-byte variant index.
// Fixed arrays and public keys have no prefix. There is no padding or
// alignment.
//
// # Error Handling
//
// All errors are *errors.Error values carrying a phase and kind:
//
//	if errors.IsKind(err, errors.KindTruncatedInput) {
//	    // buffer too short
//	}
package accountscoder
