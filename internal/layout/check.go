package layout

import (
	"reflect"
	"sync"

	"github.com/wippyai/inlinedst/errors"
)

// Info describes the memory layout of a type.
type Info struct {
	Size  uintptr
	Align uintptr
}

// Of returns the layout of t.
func Of(t reflect.Type) Info {
	return Info{Size: t.Size(), Align: uintptr(t.Align())}
}

type checkKey struct {
	t        reflect.Type
	wordSize int
}

// verified caches successful checks; failures panic and are never stored.
var verified sync.Map

// Check asserts that values of t can live in storage made of wordSize-byte
// words: t's alignment must not exceed the word size and t must not contain
// Go pointers. Violations are programming errors and panic with *errors.Error.
func Check(t reflect.Type, wordSize int) {
	key := checkKey{t: t, wordSize: wordSize}
	if _, ok := verified.Load(key); ok {
		return
	}
	if uintptr(t.Align()) > uintptr(wordSize) {
		panic(errors.Misaligned(t.String(), uintptr(t.Align()), uintptr(wordSize)))
	}
	if where, ok := PointerFree(t); !ok {
		panic(errors.PointerBearing(t.String(), where))
	}
	verified.Store(key, struct{}{})
}

// CheckFor is Check for a static type.
func CheckFor[T any](wordSize int) {
	Check(reflect.TypeFor[T](), wordSize)
}

// PointerFree reports whether t holds no Go pointers. If it does, where names
// the first offending component.
func PointerFree(t reflect.Type) (where string, ok bool) {
	return pointerFree(t, t.String())
}

func pointerFree(t reflect.Type, path string) (string, bool) {
	switch t.Kind() {
	case reflect.Bool,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr,
		reflect.Float32, reflect.Float64, reflect.Complex64, reflect.Complex128:
		return "", true
	case reflect.Array:
		if t.Len() == 0 {
			return "", true
		}
		return pointerFree(t.Elem(), path+"[]")
	case reflect.Struct:
		for i := 0; i < t.NumField(); i++ {
			f := t.Field(i)
			if where, ok := pointerFree(f.Type, path+"."+f.Name); !ok {
				return where, false
			}
		}
		return "", true
	default:
		return path, false
	}
}
