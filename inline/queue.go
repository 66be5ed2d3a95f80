package inline

import (
	"fmt"
	"iter"
	"strings"
	"unsafe"

	"github.com/wippyai/inlinedst"
	"github.com/wippyai/inlinedst/errors"
	"github.com/wippyai/inlinedst/internal/codec"
	"github.com/wippyai/inlinedst/internal/layout"
)

// queue fills storage from the front. Items are laid out like stack items,
// metadata first, oldest lowest:
//
//	┌──────┬──────┬──────┬──────┬──────────┐
//	│ gone │ meta │ head │ ...  │ free     │
//	└──────┴──────┴──────┴──────┴──────────┘
//	       ^ read               ^ write
type queue struct {
	shell
	size  func(meta uint64) int
	read  int
	write int
	count int
}

// Words returns the number of storage words between the head and the end
// of the newest item.
func (q *queue) Words() int {
	return q.write - q.read
}

// Span returns the range of storage words holding items.
func (q *queue) Span() (start, end int) {
	return q.read, q.write
}

func (q *queue) itemWords(meta uint64) int {
	words, _ := layout.Required(q.size(meta), q.st.WordSize())
	return words
}

// compact moves the live items to the front of storage.
func (q *queue) compact() {
	if q.read == 0 {
		return
	}
	ws := q.st.WordSize()
	b := q.st.Bytes()
	copy(b, b[q.read*ws:q.write*ws])
	q.write -= q.read
	q.read = 0
}

// Compact moves the items to the front of storage so that all free words
// follow the newest item.
func (q *queue) Compact() {
	q.mutable(errors.PhaseAccess)
	q.compact()
}

// reserve makes room for words more words after write. Compaction is tried
// before growing the storage.
func (q *queue) reserve(words int) error {
	end, ok := layout.SafeAdd(q.write, words)
	if !ok {
		return errors.Overflow(errors.PhaseStorage, words, "queue words")
	}
	n := inlinedst.Len(q.st)
	if end <= n {
		return nil
	}
	if end-q.read <= n {
		q.compact()
		return nil
	}
	need := end - q.read
	if err := q.st.Extend(max(need, 2*n)); err != nil {
		if err := q.st.Extend(need); err != nil {
			return err
		}
	}
	q.compact()
	return nil
}

// reserveItem makes room for an item of size data bytes and returns the
// byte offset of its metadata word.
func (q *queue) reserveItem(phase errors.Phase, size int) (int, error) {
	words, ok := layout.Required(size, q.st.WordSize())
	if !ok {
		return 0, errors.Overflow(phase, size, "queue words")
	}
	if err := q.reserve(words); err != nil {
		return 0, err
	}
	return q.write * q.st.WordSize(), nil
}

// commit makes the item reserved at off the newest.
func (q *queue) commit(off int, meta uint64) {
	codec.Store(q.st.Bytes()[off:], meta)
	q.write = off/q.st.WordSize() + q.itemWords(meta)
	q.count++
}

func (q *queue) push(phase errors.Phase, meta uint64, src unsafe.Pointer, size int, value any) error {
	q.mutable(phase)
	off, err := q.reserveItem(phase, size)
	if err != nil {
		return q.reject(phase, err, value)
	}
	ws := q.st.WordSize()
	copy(q.st.Bytes()[off+layout.MetaWords(ws)*ws:], codec.Bytes(src, size))
	q.commit(off, meta)
	return nil
}

// front returns the head item's data address and metadata.
func (q *queue) front() (unsafe.Pointer, uint64, bool) {
	if q.count == 0 {
		return nil, 0, false
	}
	b := q.st.Bytes()
	off := q.read * q.st.WordSize()
	return dataAt(b, off, q.st.WordSize()), codec.Load(b[off:]), true
}

// drop removes the head item after fn has seen it.
func (q *queue) drop(fn func(p unsafe.Pointer, meta uint64)) bool {
	p, meta, ok := q.front()
	if !ok {
		return false
	}
	q.read += q.itemWords(meta)
	q.count--
	if q.count == 0 {
		q.read, q.write = 0, 0
	}
	if fn != nil {
		fn(p, meta)
	}
	return true
}

// walk visits items from the head.
func (q *queue) walk(fn func(p unsafe.Pointer, meta uint64) bool) {
	b := q.st.Bytes()
	ws := q.st.WordSize()
	off := q.read * ws
	for i := 0; i < q.count; i++ {
		meta := codec.Load(b[off:])
		if !fn(dataAt(b, off, ws), meta) {
			return
		}
		off += q.itemWords(meta) * ws
	}
}

// retain keeps the items keep reports true for, in order. Removed items are
// passed to discard before anything overwrites them.
func (q *queue) retain(keep func(p unsafe.Pointer, meta uint64) bool, discard func(p unsafe.Pointer, meta uint64)) {
	b := q.st.Bytes()
	ws := q.st.WordSize()
	src, dst := q.read, q.read
	kept := 0
	for i := 0; i < q.count; i++ {
		off := src * ws
		meta := codec.Load(b[off:])
		words := q.itemWords(meta)
		p := dataAt(b, off, ws)
		if keep(p, meta) {
			if dst != src {
				copy(b[dst*ws:], b[off:off+words*ws])
			}
			dst += words
			kept++
		} else if discard != nil {
			discard(p, meta)
		}
		src += words
	}
	q.write, q.count = dst, kept
	if kept == 0 {
		q.read, q.write = 0, 0
	}
}

// Queue is a FIFO queue of values of differing types, all seen through V,
// held in one storage.
type Queue[V any] struct {
	queue
}

// NewQueue returns an empty queue in default storage.
func NewQueue[V any]() *Queue[V] {
	return NewQueueIn[V](defaultStorage())
}

// NewQueueIn returns an empty queue in st.
func NewQueueIn[V any](st inlinedst.Storage) *Queue[V] {
	return &Queue[V]{queue: queue{
		shell: shell{st: st, what: "queue"},
		size:  func(meta uint64) int { return codec.Lookup(meta).Size },
	}}
}

// PushBack adds val at the back. The same rules as NewIn apply to U and
// narrow. A capacity error carries val and leaves the queue unchanged.
func PushBack[V, U any](q *Queue[V], val U, narrow func(*U) V) error {
	q.mutable(errors.PhasePush)
	entry := prepare(q.st, &val, narrow)
	return q.push(errors.PhasePush, entry.ID, unsafe.Pointer(&val), entry.Size, val)
}

// Front returns a view of the oldest value.
func (q *Queue[V]) Front() (V, bool) {
	q.mutable(errors.PhaseAccess)
	p, meta, ok := q.front()
	if !ok {
		var zero V
		return zero, false
	}
	return codec.Reconstruct[V](p, meta), true
}

// PopFront drops the oldest value. It reports false if the queue is empty.
func (q *Queue[V]) PopFront() bool {
	q.mutable(errors.PhasePop)
	return q.drop(func(p unsafe.Pointer, meta uint64) {
		codec.Lookup(meta).Drop(p)
	})
}

// PopFrontWith removes the oldest value, hands its view to fn and then
// drops it. The queue is borrowed while fn runs. It reports false if the
// queue is empty.
func (q *Queue[V]) PopFrontWith(fn func(V)) bool {
	q.mutable(errors.PhasePop)
	return q.drop(func(p unsafe.Pointer, meta uint64) {
		q.borrowed = true
		defer func() { q.borrowed = false }()
		fn(codec.Reconstruct[V](p, meta))
		codec.Lookup(meta).Drop(p)
	})
}

// Retain drops every value keep reports false for.
func (q *Queue[V]) Retain(keep func(V) bool) {
	q.mutable(errors.PhasePop)
	q.retain(func(p unsafe.Pointer, meta uint64) bool {
		return keep(codec.Reconstruct[V](p, meta))
	}, func(p unsafe.Pointer, meta uint64) {
		codec.Lookup(meta).Drop(p)
	})
}

// All yields views of the values oldest first. The queue must not be
// changed during iteration.
func (q *Queue[V]) All() iter.Seq[V] {
	return func(yield func(V) bool) {
		q.mutable(errors.PhaseAccess)
		q.walk(func(p unsafe.Pointer, meta uint64) bool {
			return yield(codec.Reconstruct[V](p, meta))
		})
	}
}

// Len returns the number of values.
func (q *Queue[V]) Len() int {
	q.live(errors.PhaseAccess)
	return q.count
}

// Storage returns the backing storage.
func (q *Queue[V]) Storage() inlinedst.Storage {
	return q.st
}

// Close drops every value oldest first and releases storage implementing
// inlinedst.Releaser. Calling Close again has no effect.
func (q *Queue[V]) Close() error {
	if q.disposed {
		return nil
	}
	q.mutable(errors.PhaseAccess)
	for q.PopFront() {
	}
	q.disposed = true
	return q.release()
}

// Format formats the values oldest first as a list.
func (q *Queue[V]) Format(f fmt.State, verb rune) {
	format := fmt.FormatString(f, verb)
	var b strings.Builder
	b.WriteByte('[')
	i := 0
	for v := range q.All() {
		if i > 0 {
			b.WriteByte(' ')
		}
		fmt.Fprintf(&b, format, v)
		i++
	}
	b.WriteByte(']')
	_, _ = f.Write([]byte(b.String()))
}

// TextQueue is a FIFO queue of strings held in one storage.
type TextQueue struct {
	queue
}

// NewTextQueue returns an empty queue in default storage.
func NewTextQueue() *TextQueue {
	return NewTextQueueIn(defaultStorage())
}

// NewTextQueueIn returns an empty queue in st.
func NewTextQueueIn(st inlinedst.Storage) *TextQueue {
	return &TextQueue{queue: queue{
		shell: shell{st: st, what: "text queue"},
		size:  func(meta uint64) int { return int(meta) },
	}}
}

// PushBackString copies str to the back. A capacity error carries str.
func (q *TextQueue) PushBackString(str string) error {
	q.mutable(errors.PhasePush)
	p, n := codec.DecomposeString(str)
	return q.push(errors.PhasePush, n, p, len(str), str)
}

// Front returns the oldest string without copying. It aliases storage and
// must not be used after the next change to the queue.
func (q *TextQueue) Front() (string, bool) {
	q.mutable(errors.PhaseAccess)
	p, meta, ok := q.front()
	if !ok {
		return "", false
	}
	return codec.String(p, meta), true
}

// PopFront removes the oldest string and returns a copy of it.
func (q *TextQueue) PopFront() (string, bool) {
	q.mutable(errors.PhasePop)
	var out string
	ok := q.drop(func(p unsafe.Pointer, meta uint64) {
		out = strings.Clone(codec.String(p, meta))
	})
	return out, ok
}

// Retain removes every string keep reports false for.
func (q *TextQueue) Retain(keep func(string) bool) {
	q.mutable(errors.PhasePop)
	q.retain(func(p unsafe.Pointer, meta uint64) bool {
		return keep(codec.String(p, meta))
	}, nil)
}

// All yields the strings oldest first without copying.
func (q *TextQueue) All() iter.Seq[string] {
	return func(yield func(string) bool) {
		q.mutable(errors.PhaseAccess)
		q.walk(func(p unsafe.Pointer, meta uint64) bool {
			return yield(codec.String(p, meta))
		})
	}
}

// Len returns the number of strings.
func (q *TextQueue) Len() int {
	q.live(errors.PhaseAccess)
	return q.count
}

// Storage returns the backing storage.
func (q *TextQueue) Storage() inlinedst.Storage {
	return q.st
}

// Close releases storage implementing inlinedst.Releaser. Calling Close
// again has no effect.
func (q *TextQueue) Close() error {
	if q.disposed {
		return nil
	}
	q.mutable(errors.PhaseAccess)
	q.read, q.write, q.count = 0, 0, 0
	q.disposed = true
	return q.release()
}

// Format formats the strings oldest first as a list.
func (q *TextQueue) Format(f fmt.State, verb rune) {
	items := make([]string, 0, q.Len())
	for str := range q.All() {
		items = append(items, str)
	}
	fmt.Fprintf(f, fmt.FormatString(f, verb), items)
}
