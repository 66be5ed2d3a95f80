package inline

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tetratelabs/wazero"

	"github.com/wippyai/inlinedst/errors"
	"github.com/wippyai/inlinedst/storage"
)

func asStringer[T any, PT interface {
	*T
	fmt.Stringer
}](p *T) fmt.Stringer {
	return PT(p)
}

func TestValue_ConstructAccess(t *testing.T) {
	resetDrops(t)

	v, err := New(number(1234), func(n *number) fmt.Stringer { return n })
	require.NoError(t, err)
	defer v.Close()

	assert.Equal(t, "1234", v.Get().String())
	assert.Equal(t, "1234", fmt.Sprint(v))
	assert.Equal(t, 8, v.Size())
	assert.Equal(t, 2, v.Words())
	assert.Equal(t, "inline.number", v.Type())
	assert.Empty(t, drops)
}

// Integer 1234 is replaced by float 1.234; the integer is dropped while
// its bytes are still in place.
func TestValue_ReplaceScenario(t *testing.T) {
	resetDrops(t)

	v, err := New(number(1234), asStringer[number])
	require.NoError(t, err)
	assert.Equal(t, "1234", fmt.Sprint(v))

	require.NoError(t, Replace(v, decimal(1.234), asStringer[decimal]))
	assert.Equal(t, []string{"number 1234"}, drops)
	assert.Equal(t, "1.234", fmt.Sprint(v))
	assert.Equal(t, "inline.decimal", v.Type())

	require.NoError(t, v.Close())
	require.NoError(t, v.Close())
	assert.Equal(t, []string{"number 1234", "decimal 1.234"}, drops)
}

func TestValue_ReplaceGrows(t *testing.T) {
	resetDrops(t)

	v, err := NewIn(storage.NewVec[uint64](0), number(7), asStringer[number])
	require.NoError(t, err)
	defer v.Close()

	require.NoError(t, Replace(v, block{1, 2, 3, 4}, asStringer[block]))
	assert.Equal(t, "block", v.Get().String())
	assert.Equal(t, 5, v.Words())
	assert.Equal(t, []string{"number 7"}, drops)
}

func TestValue_ReplaceRejected(t *testing.T) {
	resetDrops(t)

	v, err := NewIn(storage.NewArray(make([]uint64, 2)), number(5), asStringer[number])
	require.NoError(t, err)

	err = Replace(v, block{9}, asStringer[block])
	require.Error(t, err)
	assert.True(t, errors.IsKind(err, errors.KindCapacity))

	back, ok := Rejected[block](err)
	require.True(t, ok)
	assert.Equal(t, block{9}, back)

	// The old value is untouched and was not dropped.
	assert.Empty(t, drops)
	assert.Equal(t, "5", v.Get().String())
}

// A value larger than the storage can ever grow is handed back untouched.
func TestValue_OversizeScenario(t *testing.T) {
	resetDrops(t)

	st := storage.NewVec[uint64](4)
	v, err := NewIn(st, block{1, 2, 3, 4}, asStringer[block])
	require.Error(t, err)
	assert.Nil(t, v)

	var e *errors.Error
	require.ErrorAs(t, err, &e)
	assert.Equal(t, errors.PhaseConstruct, e.Phase)
	assert.Equal(t, errors.KindCapacity, e.Kind)

	back, ok := Rejected[block](err)
	require.True(t, ok)
	assert.Equal(t, block{1, 2, 3, 4}, back)
	assert.Nil(t, st.Bytes(), "no bytes written")
	assert.Empty(t, drops, "no destructor")
}

func TestValue_ViewWithoutStringer(t *testing.T) {
	v, err := New(point{X: 1, Y: 2}, func(p *point) any { return p })
	require.NoError(t, err)
	defer v.Close()

	assert.Equal(t, "{1 2}", fmt.Sprintf("%v", v))
	assert.Equal(t, "{X:1 Y:2}", fmt.Sprintf("%+v", v))

	p, ok := v.Get().(*point)
	require.True(t, ok)
	p.X = 10
	assert.Equal(t, int32(10), v.Get().(*point).X, "views write through to storage")
}

func TestValue_PointerView(t *testing.T) {
	v, err := New(point{X: 3}, func(p *point) *point { return p })
	require.NoError(t, err)
	defer v.Close()

	assert.Equal(t, int32(3), v.Get().X)
}

func TestValue_Borrow(t *testing.T) {
	resetDrops(t)

	v, err := New(number(1), asStringer[number])
	require.NoError(t, err)

	v.Borrow(func(s fmt.Stringer) {
		*(s.(*number)) = 2
		mustPanicKind(t, errors.KindBorrowed, func() { _ = Replace(v, number(3), asStringer[number]) })
		mustPanicKind(t, errors.KindBorrowed, func() { _ = v.Close() })
		mustPanicKind(t, errors.KindBorrowed, func() { v.Get() })
		mustPanicKind(t, errors.KindBorrowed, func() { v.Borrow(func(fmt.Stringer) {}) })
	})

	assert.Equal(t, "2", v.Get().String())
	require.NoError(t, Replace(v, number(3), asStringer[number]))
	require.NoError(t, v.Close())
	assert.Equal(t, []string{"number 2", "number 3"}, drops)
}

func TestValue_UseAfterClose(t *testing.T) {
	v, err := New(number(1), asStringer[number])
	require.NoError(t, err)
	require.NoError(t, v.Close())

	mustPanicKind(t, errors.KindDisposed, func() { v.Get() })
	mustPanicKind(t, errors.KindDisposed, func() { v.Size() })
	mustPanicKind(t, errors.KindDisposed, func() { _ = Replace(v, number(2), asStringer[number]) })
}

func TestValue_Assertions(t *testing.T) {
	tests := []struct {
		name string
		kind errors.Kind
		fn   func()
	}{
		{
			name: "alignment above word size",
			kind: errors.KindAlignment,
			fn: func() {
				_, _ = NewIn(storage.NewArray(make([]uint8, 64)), number(1), asStringer[number])
			},
		},
		{
			name: "go pointers",
			kind: errors.KindLayout,
			fn: func() {
				_, _ = New(tagged{name: "x"}, func(t *tagged) any { return t })
			},
		},
		{
			name: "view of a copy",
			kind: errors.KindInvalidView,
			fn: func() {
				_, _ = New(number(1), func(n *number) fmt.Stringer {
					m := *n
					return &m
				})
			},
		},
		{
			name: "nil view",
			kind: errors.KindInvalidView,
			fn: func() {
				_, _ = New(number(1), func(*number) fmt.Stringer { return nil })
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mustPanicKind(t, tt.kind, tt.fn)
		})
	}
}

func TestValue_SmallWords(t *testing.T) {
	// 2-byte words hold a 2-byte aligned value and 4 metadata words.
	type pair struct{ A, B uint16 }

	v, err := NewIn(storage.NewArray(make([]uint16, 6)), pair{1, 2}, func(p *pair) any { return p })
	require.NoError(t, err)
	assert.Equal(t, 6, v.Words())
	assert.Equal(t, pair{1, 2}, *v.Get().(*pair))
}

func TestValue_LinearStorage(t *testing.T) {
	ctx := context.Background()
	rt := wazero.NewRuntime(ctx)
	defer rt.Close(ctx)

	st, err := storage.NewLinearModule[uint64](ctx, rt, 1, 1)
	require.NoError(t, err)

	v, err := NewIn(st, number(42), asStringer[number])
	require.NoError(t, err)
	assert.Equal(t, "42", v.Get().String())
	assert.Equal(t, byte(42), st.Bytes()[0])

	resetDrops(t)
	require.NoError(t, v.Close())
	assert.Equal(t, []string{"number 42"}, drops)
}

func TestRejected_Foreign(t *testing.T) {
	_, ok := Rejected[int](fmt.Errorf("plain"))
	assert.False(t, ok)

	_, ok = Rejected[string](errors.InsufficientCapacity(errors.PhaseAppend, 1, 0, 7))
	assert.False(t, ok, "wrong type")
}
