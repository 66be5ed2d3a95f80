package inline

import (
	"fmt"
	"iter"
	"unsafe"

	"github.com/wippyai/inlinedst"
	"github.com/wippyai/inlinedst/errors"
	"github.com/wippyai/inlinedst/internal/codec"
	"github.com/wippyai/inlinedst/internal/layout"
)

// Slice is a growable sequence of E held in one storage. The metadata word
// is the element count. E must not contain Go pointers.
type Slice[E any] struct {
	shell
}

// EmptySlice returns an empty slice in default storage.
func EmptySlice[E any]() *Slice[E] {
	s, err := EmptySliceIn[E](defaultStorage())
	if err != nil {
		// Default storage always fits the metadata.
		panic(err)
	}
	return s
}

// EmptySliceIn returns an empty slice in st. It panics if E is aligned
// more strictly than st's words or holds Go pointers.
func EmptySliceIn[E any](st inlinedst.Storage) (*Slice[E], error) {
	layout.CheckFor[E](st.WordSize())
	s := &Slice[E]{shell: shell{st: st, what: "slice"}}
	if err := s.grow(errors.PhaseConstruct, 0); err != nil {
		return nil, s.reject(errors.PhaseConstruct, err, nil)
	}
	codec.Store(codec.Tail(st.Bytes(), st.WordSize()), 0)
	return s, nil
}

// NewSliceFrom returns a slice in st holding as many leading elements of
// elems as fit. rest holds the elements that did not, and err is the
// capacity error that stopped the copy.
func NewSliceFrom[E any](st inlinedst.Storage, elems []E) (s *Slice[E], rest []E, err error) {
	s, err = EmptySliceIn[E](st)
	if err != nil {
		return nil, elems, err
	}
	rest, err = s.Extend(elems)
	return s, rest, err
}

func elemSize[E any]() int {
	var e E
	return int(unsafe.Sizeof(e))
}

// dropElems runs E's Drop method on each element, first to last.
func dropElems[E any](items []E) {
	drop := codec.DropFor[E]()
	if drop == nil {
		return
	}
	for i := range items {
		drop(unsafe.Pointer(&items[i]))
	}
}

// Append adds e at the end. A capacity error carries e and leaves the
// slice unchanged.
func (s *Slice[E]) Append(e E) error {
	return s.append(errors.PhaseAppend, e)
}

func (s *Slice[E]) append(phase errors.Phase, e E) error {
	s.mutable(phase)
	n := int(s.meta())
	size := elemSize[E]()

	bytes, ok := layout.SafeMul(n+1, size)
	if !ok {
		return s.reject(phase, errors.Overflow(phase, n+1, "slice length"), e)
	}
	if err := s.grow(phase, bytes); err != nil {
		return s.reject(phase, err, e)
	}

	b := s.st.Bytes()
	*(*E)(unsafe.Add(s.base(b), n*size)) = e
	codec.Store(codec.Tail(b, s.st.WordSize()), uint64(n+1))
	return nil
}

// Extend appends elems in order. It stops at the first element that does
// not fit and returns it together with everything after it; elements
// appended before stay.
func (s *Slice[E]) Extend(elems []E) ([]E, error) {
	s.mutable(errors.PhaseExtend)
	if s.copyAll(elems) {
		return nil, nil
	}
	for i, e := range elems {
		if err := s.append(errors.PhaseExtend, e); err != nil {
			return elems[i:], err
		}
	}
	return nil, nil
}

// copyAll appends elems with a single copy if they all fit.
func (s *Slice[E]) copyAll(elems []E) bool {
	n := int(s.meta())
	size := elemSize[E]()
	total, ok := layout.SafeAdd(n, len(elems))
	if !ok {
		return false
	}
	bytes, ok := layout.SafeMul(total, size)
	if !ok || s.grow(errors.PhaseExtend, bytes) != nil {
		return false
	}

	p, count := codec.DecomposeSlice(elems)
	b := s.st.Bytes()
	copy(b[n*size:], codec.Bytes(p, int(count)*size))
	codec.Store(codec.Tail(b, s.st.WordSize()), uint64(total))
	return true
}

// ExtendFrom appends elements pulled from next until it reports false. On
// a capacity failure it returns the element that did not fit; the rest are
// still in next. iter.Pull adapts an iter.Seq.
func (s *Slice[E]) ExtendFrom(next func() (E, bool)) (E, error) {
	for {
		e, ok := next()
		if !ok {
			var zero E
			return zero, nil
		}
		if err := s.append(errors.PhaseExtend, e); err != nil {
			return e, err
		}
	}
}

// Pop removes and returns the last element. The count is lowered before
// the element is moved out; the caller owns the result.
func (s *Slice[E]) Pop() (E, bool) {
	s.mutable(errors.PhasePop)
	n := int(s.meta())
	if n == 0 {
		var zero E
		return zero, false
	}

	b := s.st.Bytes()
	codec.Store(codec.Tail(b, s.st.WordSize()), uint64(n-1))
	return *(*E)(unsafe.Add(s.base(b), (n-1)*elemSize[E]())), true
}

// Items returns the elements without copying. The slice aliases storage
// and must not be used after the next Append, Extend, Pop or Close.
func (s *Slice[E]) Items() []E {
	s.mutable(errors.PhaseAccess)
	return codec.Slice[E](s.base(s.st.Bytes()), s.meta())
}

// Len returns the element count.
func (s *Slice[E]) Len() int {
	s.live(errors.PhaseAccess)
	return int(s.meta())
}

// All yields the index and a copy of every element.
func (s *Slice[E]) All() iter.Seq2[int, E] {
	return func(yield func(int, E) bool) {
		for i := 0; i < s.Len(); i++ {
			if !yield(i, s.Items()[i]) {
				return
			}
		}
	}
}

// Storage returns the backing storage.
func (s *Slice[E]) Storage() inlinedst.Storage {
	return s.st
}

// Close drops the remaining elements, first to last, and releases storage
// implementing inlinedst.Releaser. Calling Close again has no effect.
func (s *Slice[E]) Close() error {
	if s.disposed {
		return nil
	}
	items := s.Items()
	s.disposed = true
	dropElems(items)
	return s.release()
}

// Format formats the elements as a Go slice.
func (s *Slice[E]) Format(f fmt.State, verb rune) {
	fmt.Fprintf(f, fmt.FormatString(f, verb), s.Items())
}
