package codec

import (
	"fmt"
	"reflect"
	"sync"
	"sync/atomic"
	"unsafe"

	"github.com/wippyai/inlinedst/errors"
)

// Dropper is implemented by stored types that must release something when
// their container discards them. Drop is called exactly once, on a pointer
// into storage.
type Dropper interface {
	Drop()
}

var dropperType = reflect.TypeFor[Dropper]()

// Entry is one dispatch table slot: a stored type seen through a view type.
// Its ID is the metadata word of every container holding that pair.
type Entry struct {
	Type  reflect.Type
	View  reflect.Type
	view  any // func(unsafe.Pointer) V
	drop  func(unsafe.Pointer)
	ID    uint64
	Size  int
	Align int
}

// Drop runs the stored value's destructor in place, if it has one.
func (e *Entry) Drop(p unsafe.Pointer) {
	if e.drop != nil {
		e.drop(p)
	}
}

// Value returns a copy of the value stored at p, for formatting.
func (e *Entry) Value(p unsafe.Pointer) any {
	return reflect.NewAt(e.Type, p).Elem().Interface()
}

func (e *Entry) String() string {
	return fmt.Sprintf("#%d %s as %s (%d bytes)", e.ID, e.Type, e.View, e.Size)
}

type entryKey struct {
	stored reflect.Type
	view   reflect.Type
}

type table struct {
	entries atomic.Pointer[[]*Entry]
	index   map[entryKey]*Entry
	mu      sync.Mutex
}

var dispatch = &table{index: make(map[entryKey]*Entry)}

// Register returns the entry for U viewed as V, creating it on first use.
func Register[V, U any]() *Entry {
	key := entryKey{stored: reflect.TypeFor[U](), view: reflect.TypeFor[V]()}

	dispatch.mu.Lock()
	defer dispatch.mu.Unlock()

	if e, ok := dispatch.index[key]; ok {
		return e
	}

	var cur []*Entry
	if p := dispatch.entries.Load(); p != nil {
		cur = *p
	}

	e := &Entry{
		Type:  key.stored,
		View:  key.view,
		ID:    uint64(len(cur)) + 1,
		Size:  int(key.stored.Size()),
		Align: key.stored.Align(),
		view: func(p unsafe.Pointer) V {
			return any((*U)(p)).(V)
		},
		drop: DropFor[U](),
	}

	next := make([]*Entry, len(cur), len(cur)+1)
	copy(next, cur)
	next = append(next, e)
	dispatch.entries.Store(&next)
	dispatch.index[key] = e
	return e
}

// Lookup returns the entry for id. An unknown id means corrupted storage
// and panics.
func Lookup(id uint64) *Entry {
	var cur []*Entry
	if p := dispatch.entries.Load(); p != nil {
		cur = *p
	}
	if id == 0 || id > uint64(len(cur)) {
		panic(errors.OutOfBounds(errors.PhaseDispatch, int(id), len(cur)))
	}
	return cur[id-1]
}

// DropFor returns a function running U's Drop method on the value at a
// pointer, or nil if *U does not implement Dropper.
func DropFor[U any]() func(unsafe.Pointer) {
	if !reflect.PointerTo(reflect.TypeFor[U]()).Implements(dropperType) {
		return nil
	}
	return func(p unsafe.Pointer) {
		any((*U)(p)).(Dropper).Drop()
	}
}

// Decompose splits a pointer-shaped view into its address and the type it
// points to. ok is false for nil views and views that are not pointers.
func Decompose[V any](v V) (p unsafe.Pointer, stored reflect.Type, ok bool) {
	rv := reflect.ValueOf(any(v))
	if !rv.IsValid() || rv.Kind() != reflect.Pointer || rv.IsNil() {
		return nil, nil, false
	}
	return rv.UnsafePointer(), rv.Type().Elem(), true
}

// Reconstruct rebuilds the view stored under id at address p.
func Reconstruct[V any](p unsafe.Pointer, id uint64) V {
	e := Lookup(id)
	fn, ok := e.view.(func(unsafe.Pointer) V)
	if !ok {
		panic(errors.New(errors.PhaseAccess, errors.KindInvalidView).
			GoType(e.Type.String()).
			View(reflect.TypeFor[V]().String()).
			Detail("dispatch entry %d was registered for %s", id, e.View).
			Build())
	}
	return fn(p)
}
