package storage

import "sync"

const (
	// Pool limits to prevent memory bloat
	poolMaxCap  = 1024 // max uint64 backing words kept
	poolInitCap = 16
)

// Vec backings are pooled as uint64 slices so any word type sees an
// 8-byte aligned base.
var backingPool = sync.Pool{
	New: func() any {
		buf := make([]uint64, 0, poolInitCap)
		return &buf
	},
}

func getBacking() *[]uint64 {
	return backingPool.Get().(*[]uint64)
}

func putBacking(buf *[]uint64) {
	if buf == nil || cap(*buf) > poolMaxCap {
		return // reject oversized
	}
	*buf = (*buf)[:0]
	backingPool.Put(buf)
}
