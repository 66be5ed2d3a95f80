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

// stack fills storage from the back. Each item is its metadata word
// followed by its data, and the top item sits lowest:
//
//	┌──────────┬──────┬──────┬──────┬──────┐
//	│ free     │ meta │ top  │ meta │ ...  │
//	└──────────┴──────┴──────┴──────┴──────┘
//	           ^ len - next words
type stack struct {
	shell
	size  func(meta uint64) int
	next  int // words used at the back
	count int
}

// Words returns the number of storage words in use at the back.
func (s *stack) Words() int {
	return s.next
}

func (s *stack) itemWords(meta uint64) int {
	words, _ := layout.Required(s.size(meta), s.st.WordSize())
	return words
}

// reserve makes room for words used words at the back. Storage that grows
// at its end gets the used tail moved to the new end.
func (s *stack) reserve(words int) error {
	oldLen := inlinedst.Len(s.st)
	if words <= oldLen {
		return nil
	}
	if err := s.st.Extend(max(words, 2*oldLen)); err != nil {
		if err := s.st.Extend(words); err != nil {
			return err
		}
	}

	b := s.st.Bytes()
	ws := s.st.WordSize()
	if used := s.next * ws; used > 0 && len(b) != oldLen*ws {
		copy(b[len(b)-used:], b[oldLen*ws-used:oldLen*ws])
	}
	return nil
}

// reserveItem makes room for an item of size data bytes and returns the
// byte offset of its metadata word.
func (s *stack) reserveItem(phase errors.Phase, size int) (int, error) {
	ws := s.st.WordSize()
	words, ok := layout.Required(size, ws)
	total, ok2 := layout.SafeAdd(s.next, words)
	if !ok || !ok2 {
		return 0, errors.Overflow(phase, size, "stack words")
	}
	if err := s.reserve(total); err != nil {
		return 0, err
	}
	return len(s.st.Bytes()) - total*ws, nil
}

// commit makes the item reserved at off the top.
func (s *stack) commit(off int, meta uint64) {
	b := s.st.Bytes()
	codec.Store(b[off:], meta)
	s.next = (len(b) - off) / s.st.WordSize()
	s.count++
}

func (s *stack) push(phase errors.Phase, meta uint64, src unsafe.Pointer, size int, value any) error {
	s.mutable(phase)
	off, err := s.reserveItem(phase, size)
	if err != nil {
		return s.reject(phase, err, value)
	}
	ws := s.st.WordSize()
	copy(s.st.Bytes()[off+layout.MetaWords(ws)*ws:], codec.Bytes(src, size))
	s.commit(off, meta)
	return nil
}

// top returns the top item's data address and metadata.
func (s *stack) top() (unsafe.Pointer, uint64, bool) {
	if s.count == 0 {
		return nil, 0, false
	}
	b := s.st.Bytes()
	ws := s.st.WordSize()
	off := len(b) - s.next*ws
	return dataAt(b, off, ws), codec.Load(b[off:]), true
}

// dataAt returns the address of the data following the metadata at off.
// Empty data at the very end gets the metadata address instead, which
// stays inside the storage.
func dataAt(b []byte, off, ws int) unsafe.Pointer {
	if d := off + layout.MetaWords(ws)*ws; d < len(b) {
		return unsafe.Pointer(&b[d])
	}
	return unsafe.Pointer(&b[off])
}

// drop removes the top item after fn has seen it.
func (s *stack) drop(fn func(p unsafe.Pointer, meta uint64)) bool {
	p, meta, ok := s.top()
	if !ok {
		return false
	}
	s.next -= s.itemWords(meta)
	s.count--
	if fn != nil {
		fn(p, meta)
	}
	return true
}

// walk visits items from the top down.
func (s *stack) walk(fn func(p unsafe.Pointer, meta uint64) bool) {
	b := s.st.Bytes()
	ws := s.st.WordSize()
	off := len(b) - s.next*ws
	for i := 0; i < s.count; i++ {
		meta := codec.Load(b[off:])
		if !fn(dataAt(b, off, ws), meta) {
			return
		}
		off += s.itemWords(meta) * ws
	}
}

// Stack is a LIFO stack of values of differing types, all seen through V,
// held in one storage.
type Stack[V any] struct {
	stack
}

// NewStack returns an empty stack in default storage.
func NewStack[V any]() *Stack[V] {
	return NewStackIn[V](defaultStorage())
}

// NewStackIn returns an empty stack in st.
func NewStackIn[V any](st inlinedst.Storage) *Stack[V] {
	return &Stack[V]{stack: stack{
		shell: shell{st: st, what: "stack"},
		size:  func(meta uint64) int { return codec.Lookup(meta).Size },
	}}
}

// Push adds val on top. The same rules as NewIn apply to U and narrow. A
// capacity error carries val and leaves the stack unchanged.
func Push[V, U any](s *Stack[V], val U, narrow func(*U) V) error {
	s.mutable(errors.PhasePush)
	entry := prepare(s.st, &val, narrow)
	return s.push(errors.PhasePush, entry.ID, unsafe.Pointer(&val), entry.Size, val)
}

// Top returns a view of the top value.
func (s *Stack[V]) Top() (V, bool) {
	s.mutable(errors.PhaseAccess)
	p, meta, ok := s.top()
	if !ok {
		var zero V
		return zero, false
	}
	return codec.Reconstruct[V](p, meta), true
}

// Pop drops the top value. It reports false if the stack is empty.
func (s *Stack[V]) Pop() bool {
	s.mutable(errors.PhasePop)
	return s.drop(func(p unsafe.Pointer, meta uint64) {
		codec.Lookup(meta).Drop(p)
	})
}

// PopWith removes the top value, hands its view to fn and then drops it.
// The stack is borrowed while fn runs. It reports false if the stack is
// empty.
func (s *Stack[V]) PopWith(fn func(V)) bool {
	s.mutable(errors.PhasePop)
	return s.drop(func(p unsafe.Pointer, meta uint64) {
		s.borrowed = true
		defer func() { s.borrowed = false }()
		fn(codec.Reconstruct[V](p, meta))
		codec.Lookup(meta).Drop(p)
	})
}

// All yields views of the values in pop order. The stack must not be
// changed during iteration.
func (s *Stack[V]) All() iter.Seq[V] {
	return func(yield func(V) bool) {
		s.mutable(errors.PhaseAccess)
		s.walk(func(p unsafe.Pointer, meta uint64) bool {
			return yield(codec.Reconstruct[V](p, meta))
		})
	}
}

// Len returns the number of values.
func (s *Stack[V]) Len() int {
	s.live(errors.PhaseAccess)
	return s.count
}

// Storage returns the backing storage.
func (s *Stack[V]) Storage() inlinedst.Storage {
	return s.st
}

// Close drops every value from the top down and releases storage
// implementing inlinedst.Releaser. Calling Close again has no effect.
func (s *Stack[V]) Close() error {
	if s.disposed {
		return nil
	}
	s.mutable(errors.PhaseAccess)
	for s.Pop() {
	}
	s.disposed = true
	return s.release()
}

// Format formats the values in pop order as a list.
func (s *Stack[V]) Format(f fmt.State, verb rune) {
	format := fmt.FormatString(f, verb)
	var b strings.Builder
	b.WriteByte('[')
	i := 0
	for v := range s.All() {
		if i > 0 {
			b.WriteByte(' ')
		}
		fmt.Fprintf(&b, format, v)
		i++
	}
	b.WriteByte(']')
	_, _ = f.Write([]byte(b.String()))
}

// TextStack is a LIFO stack of strings held in one storage.
type TextStack struct {
	stack
}

// NewTextStack returns an empty stack in default storage.
func NewTextStack() *TextStack {
	return NewTextStackIn(defaultStorage())
}

// NewTextStackIn returns an empty stack in st.
func NewTextStackIn(st inlinedst.Storage) *TextStack {
	return &TextStack{stack: stack{
		shell: shell{st: st, what: "text stack"},
		size:  func(meta uint64) int { return int(meta) },
	}}
}

// PushString copies s on top. A capacity error carries s.
func (s *TextStack) PushString(str string) error {
	s.mutable(errors.PhasePush)
	p, n := codec.DecomposeString(str)
	return s.push(errors.PhasePush, n, p, len(str), str)
}

// Top returns the top string without copying. It aliases storage and must
// not be used after the next change to the stack.
func (s *TextStack) Top() (string, bool) {
	s.mutable(errors.PhaseAccess)
	p, meta, ok := s.top()
	if !ok {
		return "", false
	}
	return codec.String(p, meta), true
}

// Pop removes the top string and returns a copy of it.
func (s *TextStack) Pop() (string, bool) {
	s.mutable(errors.PhasePop)
	var out string
	ok := s.drop(func(p unsafe.Pointer, meta uint64) {
		out = strings.Clone(codec.String(p, meta))
	})
	return out, ok
}

// All yields the strings in pop order without copying.
func (s *TextStack) All() iter.Seq[string] {
	return func(yield func(string) bool) {
		s.mutable(errors.PhaseAccess)
		s.walk(func(p unsafe.Pointer, meta uint64) bool {
			return yield(codec.String(p, meta))
		})
	}
}

// Len returns the number of strings.
func (s *TextStack) Len() int {
	s.live(errors.PhaseAccess)
	return s.count
}

// Storage returns the backing storage.
func (s *TextStack) Storage() inlinedst.Storage {
	return s.st
}

// Close releases storage implementing inlinedst.Releaser. Calling Close
// again has no effect.
func (s *TextStack) Close() error {
	if s.disposed {
		return nil
	}
	s.mutable(errors.PhaseAccess)
	s.next, s.count = 0, 0
	s.disposed = true
	return s.release()
}

// Format formats the strings in pop order as a list.
func (s *TextStack) Format(f fmt.State, verb rune) {
	items := make([]string, 0, s.Len())
	for str := range s.All() {
		items = append(items, str)
	}
	fmt.Fprintf(f, fmt.FormatString(f, verb), items)
}
