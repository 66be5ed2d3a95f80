package storage

import (
	"context"
	"fmt"

	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/api"
	"go.uber.org/zap"

	"github.com/wippyai/inlinedst"
	"github.com/wippyai/inlinedst/errors"
	"github.com/wippyai/inlinedst/internal/layout"
)

// PageSize is the WebAssembly linear memory page size in bytes.
const PageSize = 65536

// Linear is storage over a WebAssembly linear memory. The container's
// words start at a fixed offset; growing past the memory's current size
// grows the memory by whole pages, up to the maximum its module declares.
type Linear[W inlinedst.Word] struct {
	ctx    context.Context
	mem    api.Memory
	mod    api.Module
	offset uint32
	n      int
}

var (
	_ inlinedst.Storage  = (*Linear[uint64])(nil)
	_ inlinedst.Releaser = (*Linear[uint64])(nil)
)

// NewLinear uses mem starting at offset. offset must be a multiple of the
// word size. The memory stays owned by its module.
func NewLinear[W inlinedst.Word](mem api.Memory, offset uint32) (*Linear[W], error) {
	if mem == nil {
		return nil, errors.InvalidInput(errors.PhaseStorage, "nil linear memory")
	}
	ws := wordSize[W]()
	if offset%uint32(ws) != 0 {
		return nil, errors.New(errors.PhaseStorage, errors.KindAlignment).
			Detail("offset %d is not a multiple of word size %d", offset, ws).
			Build()
	}
	return &Linear[W]{mem: mem, offset: offset}, nil
}

// NewLinearModule instantiates a memory-only module in rt with the given
// page limits and uses its memory from offset 0. maxPages of 0 leaves the
// memory bounded only by the runtime. Release closes the module.
func NewLinearModule[W inlinedst.Word](ctx context.Context, rt wazero.Runtime, minPages, maxPages uint32) (*Linear[W], error) {
	if maxPages != 0 && maxPages < minPages {
		return nil, errors.InvalidInput(errors.PhaseStorage,
			fmt.Sprintf("max pages %d below min pages %d", maxPages, minPages))
	}

	mod, err := rt.InstantiateWithConfig(ctx, memoryModule(minPages, maxPages),
		wazero.NewModuleConfig().WithName(""))
	if err != nil {
		return nil, errors.Wrap(errors.PhaseStorage, errors.KindInvalidInput, err, "instantiate memory module")
	}

	l, err := NewLinear[W](mod.ExportedMemory(memoryExport), 0)
	if err != nil {
		_ = mod.Close(ctx)
		return nil, err
	}
	l.ctx = ctx
	l.mod = mod

	Logger().Debug("linear memory module instantiated",
		zap.Uint32("min_pages", minPages),
		zap.Uint32("max_pages", maxPages))
	return l, nil
}

// Bytes returns the storage region of the memory. Writes through the
// returned slice are visible to the module.
func (l *Linear[W]) Bytes() []byte {
	if l.mem == nil || l.n == 0 {
		return nil
	}
	size := uint32(l.n * l.WordSize())
	b, ok := l.mem.Read(l.offset, size)
	if !ok {
		panic(errors.OutOfBounds(errors.PhaseStorage, int(l.offset+size), int(l.mem.Size())))
	}
	checkAligned(b, l.WordSize())
	return b
}

// WordSize returns the size of W in bytes.
func (l *Linear[W]) WordSize() int {
	return wordSize[W]()
}

// RoundToWords returns the number of words needed for n bytes.
func (l *Linear[W]) RoundToWords(n int) int {
	return roundToWords(n, l.WordSize())
}

// Offset returns the byte offset of the first word in linear memory.
func (l *Linear[W]) Offset() uint32 {
	return l.offset
}

// regionEnd returns the end of size bytes at offset. ok is false if the
// region does not fit the 32-bit address space.
func regionEnd(offset uint32, size int) (end int, ok bool) {
	end, ok = layout.SafeAdd(int(offset), size)
	return end, ok && uint64(end) <= maxMemoryBytes
}

// Extend grows the region to words words, growing the memory if needed.
func (l *Linear[W]) Extend(words int) error {
	if words <= l.n {
		return nil
	}
	if l.mem == nil {
		return errors.Disposed(errors.PhaseStorage, "linear memory")
	}

	size, ok := layout.SafeMul(words, l.WordSize())
	if !ok {
		return errors.InsufficientCapacity(errors.PhaseStorage, words, l.n, nil)
	}
	end, ok := regionEnd(l.offset, size)
	if !ok {
		return errors.InsufficientCapacity(errors.PhaseStorage, words, l.n, nil)
	}

	if cur := int(l.mem.Size()); end > cur {
		delta := uint32(layout.RoundToWords(end-cur, PageSize))
		prev, ok := l.mem.Grow(delta)
		if !ok {
			have := (int(l.mem.Size()) - int(l.offset)) / l.WordSize()
			return errors.InsufficientCapacity(errors.PhaseStorage, words, have, nil)
		}
		if ce := Logger().Check(zap.DebugLevel, "linear memory grow"); ce != nil {
			ce.Write(zap.Uint32("from_pages", prev), zap.Uint32("delta_pages", delta))
		}
	}

	// Pages grown by the memory are zeroed; bytes reused from an earlier,
	// larger region are not.
	if b, ok := l.mem.Read(l.offset+uint32(l.n*l.WordSize()), uint32(size-l.n*l.WordSize())); ok {
		clear(b)
	}
	l.n = words
	return nil
}

// Release closes the owning module when the storage created it. Linear
// storage over a caller's memory is only reset.
func (l *Linear[W]) Release() error {
	l.n = 0
	if l.mod == nil {
		return nil
	}
	mod := l.mod
	l.mod, l.mem = nil, nil
	return mod.Close(l.ctx)
}
