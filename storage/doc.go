// Package storage provides backing storage implementations for inline
// containers.
//
//	Type       Grows   Backed by                 Release
//	────────────────────────────────────────────────────────────
//	Array[W]   no      caller's []W              none
//	Vec[W]     yes     pooled []uint64           returns to pool
//	Linear[W]  yes     wazero linear memory      closes own module
//
// All implementations hand out byte views starting on a word boundary and
// report growth failures as errors.KindCapacity without side effects.
// Growth of Vec and Linear may move the content; byte views obtained before
// a successful Extend must not be used afterwards.
//
// Linear storage lets a container live inside a WebAssembly instance's
// memory:
//
//	rt := wazero.NewRuntime(ctx)
//	st, err := storage.NewLinearModule[uint64](ctx, rt, 1, 4)
//	text, err := inline.NewTextIn(st, "hello")
//
// Stored types are never scanned by the garbage collector in any of these
// implementations; the inline package rejects types holding Go pointers.
package storage
