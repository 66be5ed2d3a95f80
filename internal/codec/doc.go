// Package codec splits wide references into an address and one metadata word
// and rebuilds them.
//
// # Views
//
//	View          Metadata word      Rebuilt with
//	─────────────────────────────────────────────────
//	string        byte length        unsafe.String
//	[]E           element count      unsafe.Slice
//	interface V   dispatch entry ID  Entry view func
//
// The dispatch table is process-wide and append-only. Entry IDs start at 1;
// 0 is never a valid ID. Registration is serialized; lookups are lock-free.
//
// This package is internal to the module.
package codec
