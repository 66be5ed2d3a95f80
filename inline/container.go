package inline

import (
	stderrors "errors"
	"unsafe"

	"github.com/wippyai/inlinedst"
	"github.com/wippyai/inlinedst/errors"
	"github.com/wippyai/inlinedst/internal/codec"
	"github.com/wippyai/inlinedst/internal/layout"
	"github.com/wippyai/inlinedst/storage"
)

// DefaultWords is the word limit of the storage used by constructors that
// do not take one.
const DefaultWords = 1 << 12

// Dropper is implemented by stored types that release something when their
// container discards them. The method must have a pointer receiver; it runs
// on the copy inside storage, exactly once.
type Dropper = codec.Dropper

func defaultStorage() inlinedst.Storage {
	return storage.NewVec[uint64](DefaultWords)
}

// Rejected returns the input a failed operation handed back.
//
//	if _, err := s.Append(x); err != nil {
//	    x, _ = inline.Rejected[T](err)
//	}
func Rejected[T any](err error) (T, bool) {
	var e *errors.Error
	if stderrors.As(err, &e) {
		v, ok := e.Value.(T)
		return v, ok
	}
	var zero T
	return zero, false
}

// shell is the state every container shares: its storage and lifecycle
// flags.
type shell struct {
	st       inlinedst.Storage
	what     string
	disposed bool
	borrowed bool
}

func (s *shell) live(phase errors.Phase) {
	if s.disposed {
		panic(errors.Disposed(phase, s.what))
	}
}

func (s *shell) mutable(phase errors.Phase) {
	s.live(phase)
	if s.borrowed {
		panic(errors.Borrowed(phase, s.what))
	}
}

func (s *shell) backing() inlinedst.Storage {
	return s.st
}

// base returns the address of the first storage byte.
func (s *shell) base(b []byte) unsafe.Pointer {
	return unsafe.Pointer(unsafe.SliceData(b))
}

// meta loads the metadata word from the tail.
func (s *shell) meta() uint64 {
	return codec.Load(codec.Tail(s.st.Bytes(), s.st.WordSize()))
}

// grow extends the storage so that dataBytes plus the metadata fit.
func (s *shell) grow(phase errors.Phase, dataBytes int) error {
	ws := s.st.WordSize()
	words, ok := layout.Required(dataBytes, ws)
	if !ok {
		return errors.New(phase, errors.KindCapacity).
			Detail("%d data bytes overflow the word count", dataBytes).
			Build()
	}
	return s.st.Extend(words)
}

// release hands the storage back once the held value is gone.
func (s *shell) release() error {
	if r, ok := s.st.(inlinedst.Releaser); ok {
		return r.Release()
	}
	return nil
}

func (s *shell) reject(phase errors.Phase, err error, value any) *errors.Error {
	e := errors.Rejected(phase, err, value)
	if e.GoType == "" && value != nil {
		e.GoType = layout.TypeName(value)
	}
	logRejected(s.what, e)
	return e
}
