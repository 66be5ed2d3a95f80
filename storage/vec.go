package storage

import (
	"unsafe"

	"go.uber.org/zap"

	"github.com/wippyai/inlinedst"
	"github.com/wippyai/inlinedst/errors"
	"github.com/wippyai/inlinedst/internal/layout"
)

// Vec is growable storage with an optional word limit. Growth may move the
// content; bytes past the previous length read as zero.
type Vec[W inlinedst.Word] struct {
	backing *[]uint64
	n       int
	limit   int
}

var (
	_ inlinedst.Storage  = (*Vec[uint64])(nil)
	_ inlinedst.Releaser = (*Vec[uint64])(nil)
)

// NewVec returns empty storage that grows to at most limit words.
// Zero means no limit.
func NewVec[W inlinedst.Word](limit int) *Vec[W] {
	if limit < 0 {
		limit = 0
	}
	return &Vec[W]{backing: getBacking(), limit: limit}
}

// Bytes returns the current content.
func (v *Vec[W]) Bytes() []byte {
	if v.backing == nil || v.n == 0 {
		return nil
	}
	b := *v.backing
	return unsafe.Slice((*byte)(unsafe.Pointer(unsafe.SliceData(b))), v.n*v.WordSize())
}

// WordSize returns the size of W in bytes.
func (v *Vec[W]) WordSize() int {
	return wordSize[W]()
}

// RoundToWords returns the number of words needed for n bytes.
func (v *Vec[W]) RoundToWords(n int) int {
	return roundToWords(n, v.WordSize())
}

// Len returns the current length in words.
func (v *Vec[W]) Len() int {
	return v.n
}

// Limit returns the word limit, or 0 if unlimited.
func (v *Vec[W]) Limit() int {
	return v.limit
}

// Extend grows the storage to at least words words.
func (v *Vec[W]) Extend(words int) error {
	if words <= v.n {
		return nil
	}
	if v.limit > 0 && words > v.limit {
		return errors.InsufficientCapacity(errors.PhaseStorage, words, v.limit, nil)
	}
	if v.backing == nil {
		v.backing = getBacking()
	}

	ws := v.WordSize()
	size, ok := layout.SafeMul(words, ws)
	if !ok {
		return errors.InsufficientCapacity(errors.PhaseStorage, words, v.n, nil)
	}
	need := roundToWords(size, 8)
	buf := *v.backing
	if need > cap(buf) {
		grown := v.grownCap(need, ws)
		next := make([]uint64, len(buf), grown)
		copy(next, buf)
		if ce := Logger().Check(zap.DebugLevel, "vec grow"); ce != nil {
			ce.Write(zap.Int("from_words", cap(buf)*8/ws), zap.Int("to_words", grown*8/ws))
		}
		putBacking(v.backing)
		v.backing = &next
		buf = next
	}
	if need > len(buf) {
		old := len(buf)
		buf = buf[:need]
		clear(buf[old:])
		*v.backing = buf
	}

	b := unsafe.Slice((*byte)(unsafe.Pointer(unsafe.SliceData(buf))), need*8)
	clear(b[v.n*ws : size])
	v.n = words
	return nil
}

// grownCap doubles the backing capacity, bounded by the limit.
func (v *Vec[W]) grownCap(need, ws int) int {
	grown := 2 * cap(*v.backing)
	if grown < need {
		grown = need
	}
	if v.limit > 0 {
		if limit := roundToWords(v.limit*ws, 8); grown > limit {
			grown = limit
		}
	}
	return grown
}

// Release returns the backing to the pool. The storage is empty afterwards
// and may be extended again.
func (v *Vec[W]) Release() error {
	putBacking(v.backing)
	v.backing = nil
	v.n = 0
	return nil
}
