package inline

import (
	"fmt"
	"unsafe"

	"github.com/wippyai/inlinedst"
	"github.com/wippyai/inlinedst/errors"
	"github.com/wippyai/inlinedst/internal/codec"
	"github.com/wippyai/inlinedst/internal/layout"
)

// Value holds one value seen through the view type V, usually an interface
// satisfied by a pointer to the stored type.
//
// The stored type is fixed per call to New, NewIn or Replace and may differ
// between them; V stays the same for the container's lifetime.
type Value[V any] struct {
	shell
}

// New stores val in default storage. narrow must return its argument as a
// V, typically through an implicit interface conversion:
//
//	v, err := inline.New(number(1), func(n *number) fmt.Stringer { return n })
//
// On a capacity failure the error carries val; see Rejected.
func New[V, U any](val U, narrow func(*U) V) (*Value[V], error) {
	st := defaultStorage()
	v, err := NewIn(st, val, narrow)
	if err != nil {
		_ = (&shell{st: st}).release()
	}
	return v, err
}

// NewIn stores val in st, which the container owns from then on. If st
// cannot grow to fit val, st is left untouched and stays with the caller.
//
// NewIn panics if U is aligned more strictly than st's words, if U holds
// Go pointers, or if narrow does not return its argument.
//
// Once NewIn succeeds the container owns val: it runs val's Drop method,
// if any, when the value is replaced or the container closed. The caller's
// copy must be treated as moved.
func NewIn[V, U any](st inlinedst.Storage, val U, narrow func(*U) V) (*Value[V], error) {
	v := &Value[V]{shell: shell{st: st, what: "value"}}
	entry := prepare(st, &val, narrow)

	if err := v.grow(errors.PhaseConstruct, entry.Size); err != nil {
		return nil, v.reject(errors.PhaseConstruct, err, val)
	}
	v.write(entry, unsafe.Pointer(&val))
	return v, nil
}

// Replace swaps v's value for val, which may be of a different type.
// If storage cannot grow to fit val, v is unchanged and the error carries
// val. Otherwise the old value is dropped in place before val's bytes are
// written over it.
func Replace[V, U any](v *Value[V], val U, narrow func(*U) V) error {
	v.mutable(errors.PhaseReplace)
	entry := prepare(v.st, &val, narrow)
	old := codec.Lookup(v.meta())

	if err := v.grow(errors.PhaseReplace, entry.Size); err != nil {
		return v.reject(errors.PhaseReplace, err, val)
	}
	old.Drop(v.base(v.st.Bytes()))
	v.write(entry, unsafe.Pointer(&val))
	return nil
}

// prepare checks that U can live in st and that narrow views val, and
// returns U's dispatch entry.
func prepare[V, U any](st inlinedst.Storage, val *U, narrow func(*U) V) *codec.Entry {
	layout.CheckFor[U](st.WordSize())
	entry := codec.Register[V, U]()

	p, stored, ok := codec.Decompose(narrow(val))
	if !ok || p != unsafe.Pointer(val) || stored != entry.Type {
		panic(errors.InvalidView(entry.Type.String(), entry.View.String(),
			"narrowing function must return a pointer to its argument"))
	}
	return entry
}

// write copies the value at src to the front and its entry ID to the tail.
func (v *Value[V]) write(entry *codec.Entry, src unsafe.Pointer) {
	b := v.st.Bytes()
	copy(b, codec.Bytes(src, entry.Size))
	codec.Store(codec.Tail(b, v.st.WordSize()), entry.ID)
}

func (v *Value[V]) entry() *codec.Entry {
	return codec.Lookup(v.meta())
}

// Get returns a view of the held value. The view points into storage and
// is invalid after Replace or Close.
func (v *Value[V]) Get() V {
	v.mutable(errors.PhaseAccess)
	return codec.Reconstruct[V](v.base(v.st.Bytes()), v.meta())
}

// Borrow calls fn with exclusive access to the held value. Get, Replace,
// Close and nested Borrow calls panic until fn returns.
func (v *Value[V]) Borrow(fn func(V)) {
	view := v.Get()
	v.borrowed = true
	defer func() { v.borrowed = false }()
	fn(view)
}

// Size returns the held value's size in bytes.
func (v *Value[V]) Size() int {
	v.live(errors.PhaseAccess)
	return v.entry().Size
}

// Words returns the number of storage words in use, metadata included.
func (v *Value[V]) Words() int {
	words, _ := layout.Required(v.Size(), v.st.WordSize())
	return words
}

// Type returns the name of the held value's type.
func (v *Value[V]) Type() string {
	v.live(errors.PhaseAccess)
	return v.entry().Type.String()
}

// Storage returns the backing storage.
func (v *Value[V]) Storage() inlinedst.Storage {
	return v.st
}

// Close drops the held value and releases storage implementing
// inlinedst.Releaser. Calling Close again has no effect.
func (v *Value[V]) Close() error {
	if v.disposed {
		return nil
	}
	v.mutable(errors.PhaseAccess)

	e := v.entry()
	v.disposed = true
	e.Drop(v.base(v.st.Bytes()))
	return v.release()
}

// Format formats the view when it implements fmt.Formatter or
// fmt.Stringer, and the held value otherwise.
func (v *Value[V]) Format(f fmt.State, verb rune) {
	view := v.Get()
	var arg any = view
	switch any(view).(type) {
	case fmt.Formatter, fmt.Stringer:
	default:
		arg = v.entry().Value(v.base(v.st.Bytes()))
	}
	fmt.Fprintf(f, fmt.FormatString(f, verb), arg)
}
