package inline

import (
	"fmt"
	"io"
	"unicode/utf8"

	"github.com/wippyai/inlinedst"
	"github.com/wippyai/inlinedst/errors"
	"github.com/wippyai/inlinedst/internal/codec"
	"github.com/wippyai/inlinedst/internal/layout"
)

// Text is a growable UTF-8 string held in one storage. The metadata word
// is the byte length.
type Text struct {
	shell
}

var (
	_ io.Writer       = (*Text)(nil)
	_ io.StringWriter = (*Text)(nil)
	_ fmt.Stringer    = (*Text)(nil)
)

// EmptyText returns an empty text in default storage.
func EmptyText() *Text {
	t, err := EmptyTextIn(defaultStorage())
	if err != nil {
		// Default storage always fits the metadata.
		panic(err)
	}
	return t
}

// EmptyTextIn returns an empty text in st. It fails only if st cannot hold
// the metadata word.
func EmptyTextIn(st inlinedst.Storage) (*Text, error) {
	return NewTextIn(st, "")
}

// NewText returns a copy of s in default storage.
func NewText(s string) (*Text, error) {
	st := defaultStorage()
	t, err := NewTextIn(st, s)
	if err != nil {
		_ = (&shell{st: st}).release()
	}
	return t, err
}

// NewTextIn returns a copy of s in st. On a capacity failure the error
// carries s and st stays with the caller.
func NewTextIn(st inlinedst.Storage, s string) (*Text, error) {
	if !utf8.ValidString(s) {
		return nil, errors.InvalidUTF8(errors.PhaseConstruct, []byte(s))
	}
	t := &Text{shell: shell{st: st, what: "text"}}
	if err := t.grow(errors.PhaseConstruct, len(s)); err != nil {
		return nil, t.reject(errors.PhaseConstruct, err, s)
	}
	b := st.Bytes()
	copy(b, s)
	codec.Store(codec.Tail(b, st.WordSize()), uint64(len(s)))
	return t, nil
}

// Append adds s at the end and returns the number of bytes written: len(s)
// on success, 0 on failure. A capacity error carries s and leaves the text
// unchanged. Invalid UTF-8 is rejected.
func (t *Text) Append(s string) (int, error) {
	return appendText(t, s)
}

// WriteString is Append.
func (t *Text) WriteString(s string) (int, error) {
	return appendText(t, s)
}

// Write appends p, which must be valid UTF-8. A capacity error carries p.
func (t *Text) Write(p []byte) (int, error) {
	return appendText(t, p)
}

func appendText[S string | []byte](t *Text, s S) (int, error) {
	t.mutable(errors.PhaseAppend)

	var valid bool
	switch x := any(s).(type) {
	case string:
		valid = utf8.ValidString(x)
	case []byte:
		valid = utf8.Valid(x)
	}
	if !valid {
		return 0, errors.InvalidUTF8(errors.PhaseAppend, []byte(s))
	}
	if len(s) == 0 {
		return 0, nil
	}

	n := int(t.meta())
	end, ok := layout.SafeAdd(n, len(s))
	if !ok {
		return 0, t.reject(errors.PhaseAppend, errors.Overflow(errors.PhaseAppend, n, "text length"), s)
	}
	if err := t.grow(errors.PhaseAppend, end); err != nil {
		return 0, t.reject(errors.PhaseAppend, err, s)
	}

	b := t.st.Bytes()
	copy(b[n:], s)
	codec.Store(codec.Tail(b, t.st.WordSize()), uint64(end))
	return len(s), nil
}

// Truncate shortens the text to n bytes. It panics if n is negative or
// does not fall on a UTF-8 sequence boundary; n >= Len() has no effect.
func (t *Text) Truncate(n int) {
	t.mutable(errors.PhaseTruncate)
	b := t.st.Bytes()
	length := int(t.meta())

	if n < 0 {
		panic(errors.OutOfBounds(errors.PhaseTruncate, n, length))
	}
	if n >= length {
		return
	}
	if !utf8.RuneStart(b[n]) {
		panic(errors.NotBoundary(n, length))
	}
	codec.Store(codec.Tail(b, t.st.WordSize()), uint64(n))
}

// Get returns the text without copying. The string aliases storage and
// must not be used after the next Append, Truncate or Close.
func (t *Text) Get() string {
	t.mutable(errors.PhaseAccess)
	b := t.st.Bytes()
	return codec.String(t.base(b), t.meta())
}

// String returns a copy of the text.
func (t *Text) String() string {
	return string(t.Bytes())
}

// Bytes returns the text bytes without copying, with the same validity as
// Get. The slice has no spare capacity.
func (t *Text) Bytes() []byte {
	t.mutable(errors.PhaseAccess)
	b := t.st.Bytes()
	return codec.Slice[byte](t.base(b), t.meta())
}

// Len returns the length in bytes.
func (t *Text) Len() int {
	t.live(errors.PhaseAccess)
	return int(t.meta())
}

// Storage returns the backing storage.
func (t *Text) Storage() inlinedst.Storage {
	return t.st
}

// Close releases storage implementing inlinedst.Releaser. Calling Close
// again has no effect.
func (t *Text) Close() error {
	if t.disposed {
		return nil
	}
	t.mutable(errors.PhaseAccess)
	t.disposed = true
	return t.release()
}

// Format formats the text as a string.
func (t *Text) Format(f fmt.State, verb rune) {
	fmt.Fprintf(f, fmt.FormatString(f, verb), t.Get())
}
