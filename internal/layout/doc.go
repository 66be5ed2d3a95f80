// Package layout provides word rounding and layout checks for container storage.
//
// # Rules
//
//   - Data occupies RoundToWords(size) words at the front of storage
//   - Metadata occupies RoundToWords(MetaBytes) words at the tail
//   - A stored type's alignment must not exceed the storage word size
//   - A stored type must not contain Go pointers (strings, slices, maps,
//     interfaces, funcs, chans, pointers)
//
// WIT reports the canonical ABI layout of pointer-free WIT types, which the
// inspector uses to describe element kinds.
//
// This package is internal to the module.
package layout
