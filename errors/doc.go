// Package errors provides structured error types for the inlinedst module.
//
// Errors are categorized by Phase (which operation failed) and Kind (error
// category). The Error type carries the Go type, the view it was stored
// behind, a detail message, a cause chain, and the rejected input in Value.
//
// Capacity failures are the only recoverable kind. They always hand the
// input back:
//
//	err := errors.InsufficientCapacity(errors.PhaseAppend, need, have, elem)
//	// err.Value == elem
//
// Every other kind reports a programming error and is raised with panic.
//
// Use the Builder for structured error construction:
//
//	err := errors.New(errors.PhaseConstruct, errors.KindAlignment).
//		GoType("uint64").
//		Detail("alignment %d exceeds word size %d", 8, 1).
//		Build()
//
// All errors implement the standard error interface and support errors.Is/As.
package errors
