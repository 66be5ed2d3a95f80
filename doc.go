// Package inlinedst provides inline containers for dynamically-sized values.
//
// A container holds exactly one value whose size is only known once a
// concrete value exists: a value seen through an interface, a string, or a
// slice. The value's bytes and the non-address part of its wide reference
// share a single owned backing storage made of machine words, so polymorphic
// and variable-length values can live in caller-supplied or pooled memory.
//
// # Architecture Overview
//
//	inlinedst/           Root package with the Storage and Releaser interfaces
//	├── storage/         Array, Vec and wazero-backed Linear storage
//	├── inline/          Value, Text, Slice, stack and queue containers
//	├── errors/          Structured error types
//	├── internal/codec/  Wide reference decomposition and dispatch table
//	├── internal/layout/ Word rounding and alignment checks
//	└── cmd/inspect/     Layout inspector (flags, TOML profiles, TUI)
//
// # Storage Layout
//
// Every container keeps the value's bytes at the front of its storage and
// one metadata word at the tail:
//
//	┌───────────────────────────────┬─────────┬──────────┐
//	│ data (RoundToWords(size))     │ unused  │ metadata │
//	└───────────────────────────────┴─────────┴──────────┘
//
// The metadata is a byte length for strings, an element count for slices,
// and a dispatch table index for interface views. Views are rebuilt from the
// data address and the metadata on every access.
//
// # Quick Start
//
//	v, err := inline.New(number(1234), func(n *number) fmt.Stringer { return n })
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer v.Close()
//	fmt.Println(v) // "1234"
//
// # Thread Safety
//
// Containers are NOT thread-safe. The dispatch table shared by all
// containers is safe for concurrent use.
//
// # Memory Model
//
// Stored types must not contain Go pointers: storage memory is not scanned
// by the garbage collector, and Linear storage lives inside WebAssembly
// linear memory. Growth may move the bytes; views obtained before a growth,
// Replace or Close must not be used afterwards.
package inlinedst
