// Package errors provides structured error types for parcelgen.
//
// Errors are categorized by Phase (where the error occurred) and Kind (error category).
// The Error type carries the owning aggregate, the field path, the offending type and a
// cause chain.
//
// Use the Builder for structured error construction:
//
//	err := errors.New(errors.PhaseClassify, errors.KindUnsupportedType).
//		Owner("example.User").
//		Path("tags", "[elem]").
//		Type("chan<int32>").
//		Detail("no codec for channel types").
//		Build()
//
// Or use convenience constructors for common patterns:
//
//	err := errors.UnsupportedType("example.User", "tags", "chan<int32>")
//	err := errors.OutOfBounds(errors.PhaseDecode, path, 10, 5)
//
// All errors implement the standard error interface and support errors.Is/As.
package errors
