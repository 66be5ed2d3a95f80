package storage

import (
	"github.com/wippyai/inlinedst"
	"github.com/wippyai/inlinedst/errors"
)

// Array is fixed storage over a caller-supplied word slice, typically a
// local array. It never reallocates.
type Array[W inlinedst.Word] struct {
	words []W
}

var _ inlinedst.Storage = (*Array[uint64])(nil)

// NewArray wraps words. The slice is used in place; its length is the
// storage capacity.
func NewArray[W inlinedst.Word](words []W) *Array[W] {
	a := &Array[W]{words: words}
	checkAligned(a.Bytes(), a.WordSize())
	return a
}

// Bytes returns the whole array as bytes.
func (a *Array[W]) Bytes() []byte {
	return asBytes(a.words)
}

// WordSize returns the size of W in bytes.
func (a *Array[W]) WordSize() int {
	return wordSize[W]()
}

// RoundToWords returns the number of words needed for n bytes.
func (a *Array[W]) RoundToWords(n int) int {
	return roundToWords(n, a.WordSize())
}

// Extend succeeds if the array already holds words words.
func (a *Array[W]) Extend(words int) error {
	if words > len(a.words) {
		return errors.InsufficientCapacity(errors.PhaseStorage, words, len(a.words), nil)
	}
	return nil
}
