package codec

import (
	"encoding/binary"
	"unsafe"

	"github.com/wippyai/inlinedst/internal/layout"
)

// Tail returns the metadata region at the end of b.
func Tail(b []byte, wordSize int) []byte {
	return b[len(b)-layout.MetaWords(wordSize)*wordSize:]
}

// Store writes the metadata word to the start of the metadata region.
// Native byte order: the layout is only meaningful inside one process.
func Store(tail []byte, meta uint64) {
	binary.NativeEndian.PutUint64(tail, meta)
}

// Load reads the metadata word from the start of the metadata region.
func Load(tail []byte) uint64 {
	return binary.NativeEndian.Uint64(tail)
}

// DecomposeString splits s into its data address and byte length.
func DecomposeString(s string) (unsafe.Pointer, uint64) {
	return unsafe.Pointer(unsafe.StringData(s)), uint64(len(s))
}

// String rebuilds a string of meta bytes starting at p without copying.
func String(p unsafe.Pointer, meta uint64) string {
	if meta == 0 {
		return ""
	}
	return unsafe.String((*byte)(p), int(meta))
}

// DecomposeSlice splits s into its data address and element count.
// The capacity is not part of the wide reference.
func DecomposeSlice[E any](s []E) (unsafe.Pointer, uint64) {
	return unsafe.Pointer(unsafe.SliceData(s)), uint64(len(s))
}

// Slice rebuilds a slice of meta elements starting at p without copying.
// The result has len == cap so appends never write into storage.
func Slice[E any](p unsafe.Pointer, meta uint64) []E {
	n := int(meta)
	return unsafe.Slice((*E)(p), n)[:n:n]
}

// Bytes views size bytes at p.
func Bytes(p unsafe.Pointer, size int) []byte {
	if size == 0 {
		return nil
	}
	return unsafe.Slice((*byte)(p), size)
}
