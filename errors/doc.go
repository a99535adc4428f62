// Package errors provides structured error types for the accounts coder.
//
// Errors are categorized by Phase (where the error occurred) and Kind (error category).
// The Error type includes rich context: field path, schema type name, and cause chain.
//
// Compile-phase kinds (unresolved_type_reference, unsupported_type_shape,
// cyclic_type_definition, discriminator_collision) are fatal: the coder is never
// constructed. Encode/decode kinds are returned per call and leave the coder untouched.
//
// Use the Builder for structured error construction:
//
//	err := errors.New(errors.PhaseEncode, errors.KindValueShapeMismatch).
//		Path("owners", "[1]").
//		SchemaType("publicKey").
//		Detail("expected 32 bytes, got %d", 31).
//		Build()
//
// Or use convenience constructors for common patterns:
//
//	err := errors.UnknownAccountType(errors.PhaseDecode, "DoesNotExist")
//	err := errors.Truncated(path, 4, 1)
//
// All errors implement the standard error interface and support errors.Is/As.
// IsKind matches on Kind alone, regardless of phase.
package errors
