// Package errors provides structured error types for the binlayout module.
//
// Errors are categorized by Phase (where the error occurred) and Kind (error category).
// The Error type includes rich context: field path, descriptor name, and cause chain.
//
// Use the Builder for structured error construction:
//
//	err := errors.New(errors.PhaseLoad, errors.KindOutOfBounds).
//		Path("header", "magic").
//		Type("uint32").
//		Detail("short read").
//		Build()
//
// Or use convenience constructors for common patterns:
//
//	err := errors.KeyNotFound(errors.PhaseAccess, path, "flags")
//	err := errors.OutOfBounds(errors.PhaseSource, path, 0x10, 4, 0x12)
//
// All errors implement the standard error interface and support errors.Is/As.
// The exported sentinels match on Kind regardless of Phase:
//
//	if errors.Is(err, errors.ErrKeyNotFound) { ... }
package errors
