package storage

import (
	"unsafe"

	"github.com/wippyai/inlinedst"
	"github.com/wippyai/inlinedst/errors"
	"github.com/wippyai/inlinedst/internal/layout"
)

func wordSize[W inlinedst.Word]() int {
	var w W
	return int(unsafe.Sizeof(w))
}

// asBytes views words as bytes without copying.
func asBytes[W inlinedst.Word](words []W) []byte {
	if len(words) == 0 {
		return nil
	}
	n := len(words) * wordSize[W]()
	return unsafe.Slice((*byte)(unsafe.Pointer(unsafe.SliceData(words))), n)
}

// checkAligned panics if b does not start on a wordSize boundary.
func checkAligned(b []byte, wordSize int) {
	if len(b) == 0 {
		return
	}
	if addr := uintptr(unsafe.Pointer(unsafe.SliceData(b))); addr%uintptr(wordSize) != 0 {
		panic(errors.New(errors.PhaseStorage, errors.KindAlignment).
			Detail("base address %#x is not aligned to %d", addr, wordSize).
			Build())
	}
}

func roundToWords(n, wordSize int) int {
	return layout.RoundToWords(n, wordSize)
}
