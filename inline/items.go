package inline

import (
	"fmt"
	"iter"
	"slices"
	"unsafe"

	"github.com/wippyai/inlinedst"
	"github.com/wippyai/inlinedst/errors"
	"github.com/wippyai/inlinedst/internal/codec"
	"github.com/wippyai/inlinedst/internal/layout"
)

// itemStore is the item layout shared by stacks and queues.
type itemStore interface {
	mutable(phase errors.Phase)
	reject(phase errors.Phase, err error, value any) *errors.Error
	backing() inlinedst.Storage
	push(phase errors.Phase, meta uint64, src unsafe.Pointer, size int, value any) error
	reserveItem(phase errors.Phase, size int) (int, error)
	commit(off int, meta uint64)
}

// sliceItemSize returns the data bytes of an item holding meta elements.
func sliceItemSize[E any]() func(meta uint64) int {
	size := elemSize[E]()
	return func(meta uint64) int { return int(meta) * size }
}

// pushCopied stores a copy of elems as one item. The metadata is the
// element count.
func pushCopied[E any](c itemStore, elems []E) error {
	c.mutable(errors.PhasePush)
	p, n := codec.DecomposeSlice(elems)
	size, ok := layout.SafeMul(len(elems), elemSize[E]())
	if !ok {
		return c.reject(errors.PhasePush, errors.Overflow(errors.PhasePush, len(elems), "slice length"), elems)
	}
	return c.push(errors.PhasePush, n, p, size, elems)
}

// pushFrom stores n elements pulled from next as one item, writing them
// straight into storage. Nothing is pulled when the item does not fit.
func pushFrom[E any](c itemStore, next func() (E, bool), n int) error {
	c.mutable(errors.PhasePush)
	if n < 0 {
		panic(errors.InvalidInput(errors.PhasePush, fmt.Sprintf("negative element count %d", n)))
	}
	size, ok := layout.SafeMul(n, elemSize[E]())
	if !ok {
		return c.reject(errors.PhasePush, errors.Overflow(errors.PhasePush, n, "slice length"), n)
	}
	off, err := c.reserveItem(errors.PhasePush, size)
	if err != nil {
		return c.reject(errors.PhasePush, err, n)
	}

	st := c.backing()
	dst := codec.Slice[E](dataAt(st.Bytes(), off, st.WordSize()), uint64(n))
	for i := range dst {
		e, ok := next()
		if !ok {
			panic(errors.InvalidInput(errors.PhasePush,
				fmt.Sprintf("iterator ended after %d of %d elements", i, n)))
		}
		dst[i] = e
	}
	c.commit(off, uint64(n))
	return nil
}

func formatItems[E any](f fmt.State, verb rune, all iter.Seq[[]E]) {
	fmt.Fprintf(f, fmt.FormatString(f, verb), slices.Collect(all))
}

// SliceStack is a LIFO stack of slices of E held in one storage. Each
// item's metadata is its element count. E must not contain Go pointers.
type SliceStack[E any] struct {
	stack
}

// NewSliceStack returns an empty stack in default storage.
func NewSliceStack[E any]() *SliceStack[E] {
	return NewSliceStackIn[E](defaultStorage())
}

// NewSliceStackIn returns an empty stack in st. It panics if E is aligned
// more strictly than st's words or holds Go pointers.
func NewSliceStackIn[E any](st inlinedst.Storage) *SliceStack[E] {
	layout.CheckFor[E](st.WordSize())
	return &SliceStack[E]{stack: stack{
		shell: shell{st: st, what: "slice stack"},
		size:  sliceItemSize[E](),
	}}
}

// PushCopied copies elems on top. A capacity error carries elems and
// leaves the stack unchanged.
func (s *SliceStack[E]) PushCopied(elems []E) error {
	return pushCopied(&s.stack, elems)
}

// PushFrom pulls n elements from next on top. On a capacity error nothing
// has been pulled and the error carries n. It panics if next ends early.
func (s *SliceStack[E]) PushFrom(next func() (E, bool), n int) error {
	return pushFrom(&s.stack, next, n)
}

// Top returns the top slice without copying. It aliases storage and must
// not be used after the next change to the stack.
func (s *SliceStack[E]) Top() ([]E, bool) {
	s.mutable(errors.PhaseAccess)
	p, meta, ok := s.top()
	if !ok {
		return nil, false
	}
	return codec.Slice[E](p, meta), true
}

// Pop removes the top slice and returns a copy of it. The elements are
// moved out; the caller owns them.
func (s *SliceStack[E]) Pop() ([]E, bool) {
	s.mutable(errors.PhasePop)
	var out []E
	ok := s.drop(func(p unsafe.Pointer, meta uint64) {
		out = slices.Clone(codec.Slice[E](p, meta))
	})
	return out, ok
}

// All yields the slices in pop order without copying.
func (s *SliceStack[E]) All() iter.Seq[[]E] {
	return func(yield func([]E) bool) {
		s.mutable(errors.PhaseAccess)
		s.walk(func(p unsafe.Pointer, meta uint64) bool {
			return yield(codec.Slice[E](p, meta))
		})
	}
}

// Len returns the number of slices.
func (s *SliceStack[E]) Len() int {
	s.live(errors.PhaseAccess)
	return s.count
}

// Storage returns the backing storage.
func (s *SliceStack[E]) Storage() inlinedst.Storage {
	return s.st
}

// Close drops the elements of every slice from the top down and releases
// storage implementing inlinedst.Releaser. Calling Close again has no
// effect.
func (s *SliceStack[E]) Close() error {
	if s.disposed {
		return nil
	}
	s.mutable(errors.PhaseAccess)
	dropItem := func(p unsafe.Pointer, meta uint64) {
		dropElems(codec.Slice[E](p, meta))
	}
	for s.drop(dropItem) {
	}
	s.disposed = true
	return s.release()
}

// Format formats the slices in pop order as a list.
func (s *SliceStack[E]) Format(f fmt.State, verb rune) {
	formatItems(f, verb, s.All())
}

// SliceQueue is a FIFO queue of slices of E held in one storage. Each
// item's metadata is its element count. E must not contain Go pointers.
type SliceQueue[E any] struct {
	queue
}

// NewSliceQueue returns an empty queue in default storage.
func NewSliceQueue[E any]() *SliceQueue[E] {
	return NewSliceQueueIn[E](defaultStorage())
}

// NewSliceQueueIn returns an empty queue in st. It panics if E is aligned
// more strictly than st's words or holds Go pointers.
func NewSliceQueueIn[E any](st inlinedst.Storage) *SliceQueue[E] {
	layout.CheckFor[E](st.WordSize())
	return &SliceQueue[E]{queue: queue{
		shell: shell{st: st, what: "slice queue"},
		size:  sliceItemSize[E](),
	}}
}

// PushCopied copies elems to the back. A capacity error carries elems and
// leaves the queue unchanged.
func (q *SliceQueue[E]) PushCopied(elems []E) error {
	return pushCopied(&q.queue, elems)
}

// PushFrom pulls n elements from next to the back. On a capacity error
// nothing has been pulled and the error carries n. It panics if next ends
// early.
func (q *SliceQueue[E]) PushFrom(next func() (E, bool), n int) error {
	return pushFrom(&q.queue, next, n)
}

// Front returns the oldest slice without copying. It aliases storage and
// must not be used after the next change to the queue.
func (q *SliceQueue[E]) Front() ([]E, bool) {
	q.mutable(errors.PhaseAccess)
	p, meta, ok := q.front()
	if !ok {
		return nil, false
	}
	return codec.Slice[E](p, meta), true
}

// PopFront removes the oldest slice and returns a copy of it. The elements
// are moved out; the caller owns them.
func (q *SliceQueue[E]) PopFront() ([]E, bool) {
	q.mutable(errors.PhasePop)
	var out []E
	ok := q.drop(func(p unsafe.Pointer, meta uint64) {
		out = slices.Clone(codec.Slice[E](p, meta))
	})
	return out, ok
}

// Retain removes every slice keep reports false for and drops its
// elements.
func (q *SliceQueue[E]) Retain(keep func([]E) bool) {
	q.mutable(errors.PhasePop)
	q.retain(func(p unsafe.Pointer, meta uint64) bool {
		return keep(codec.Slice[E](p, meta))
	}, func(p unsafe.Pointer, meta uint64) {
		dropElems(codec.Slice[E](p, meta))
	})
}

// All yields the slices oldest first without copying.
func (q *SliceQueue[E]) All() iter.Seq[[]E] {
	return func(yield func([]E) bool) {
		q.mutable(errors.PhaseAccess)
		q.walk(func(p unsafe.Pointer, meta uint64) bool {
			return yield(codec.Slice[E](p, meta))
		})
	}
}

// Len returns the number of slices.
func (q *SliceQueue[E]) Len() int {
	q.live(errors.PhaseAccess)
	return q.count
}

// Storage returns the backing storage.
func (q *SliceQueue[E]) Storage() inlinedst.Storage {
	return q.st
}

// Close drops the elements of every slice oldest first and releases
// storage implementing inlinedst.Releaser. Calling Close again has no
// effect.
func (q *SliceQueue[E]) Close() error {
	if q.disposed {
		return nil
	}
	q.mutable(errors.PhaseAccess)
	dropItem := func(p unsafe.Pointer, meta uint64) {
		dropElems(codec.Slice[E](p, meta))
	}
	for q.drop(dropItem) {
	}
	q.disposed = true
	return q.release()
}

// Format formats the slices oldest first as a list.
func (q *SliceQueue[E]) Format(f fmt.State, verb rune) {
	formatItems(f, verb, q.All())
}
