package inline

import (
	"fmt"
	"iter"
	"slices"
	"testing"
	"testing/quick"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wippyai/inlinedst/errors"
	"github.com/wippyai/inlinedst/internal/codec"
	"github.com/wippyai/inlinedst/storage"
)

// Three one-byte elements fill an 11-byte storage; the fourth is rejected.
func TestSlice_ByteScenario(t *testing.T) {
	st := storage.NewArray(make([]uint8, 11))
	s, err := EmptySliceIn[byte](st)
	require.NoError(t, err)

	for _, c := range []byte("abc") {
		require.NoError(t, s.Append(c))
	}
	assert.Equal(t, 3, s.Len())

	before := append([]byte(nil), st.Bytes()...)
	err = s.Append('d')
	require.Error(t, err)
	assert.True(t, errors.IsKind(err, errors.KindCapacity))

	back, ok := Rejected[byte](err)
	require.True(t, ok)
	assert.Equal(t, byte('d'), back)
	assert.Equal(t, 3, s.Len())
	assert.Equal(t, []byte("abc"), s.Items())
	assert.Equal(t, before, st.Bytes())
}

func TestSlice_ByteScenarioVec(t *testing.T) {
	s, err := EmptySliceIn[byte](storage.NewVec[uint8](11))
	require.NoError(t, err)
	defer s.Close()

	rest, err := s.Extend([]byte("abcd"))
	require.Error(t, err)
	assert.Equal(t, []byte("d"), rest)
	assert.Equal(t, 3, s.Len())
}

func TestSlice_LIFO(t *testing.T) {
	prop := func(in []uint16) bool {
		s := EmptySlice[uint16]()
		defer s.Close()

		for _, e := range in {
			if s.Append(e) != nil {
				return false
			}
		}
		if s.Len() != len(in) {
			return false
		}
		for i := len(in) - 1; i >= 0; i-- {
			e, ok := s.Pop()
			if !ok || e != in[i] {
				return false
			}
		}
		_, ok := s.Pop()
		return !ok && s.Len() == 0
	}
	require.NoError(t, quick.Check(prop, nil))
}

func TestSlice_RejectLeavesBytes(t *testing.T) {
	prop := func(in []uint32, extra uint32) bool {
		if len(in) > 8 {
			in = in[:8]
		}
		st := storage.NewArray(make([]uint32, 2+len(in)))
		s, err := EmptySliceIn[uint32](st)
		if err != nil {
			return false
		}
		if rest, err := s.Extend(in); err != nil || rest != nil {
			return false
		}

		before := slices.Clone(st.Bytes())
		err = s.Append(extra)
		back, ok := Rejected[uint32](err)
		return ok && back == extra &&
			slices.Equal(before, st.Bytes()) &&
			slices.Equal(in, s.Items())
	}
	require.NoError(t, quick.Check(prop, nil))
}

func TestSlice_Extend(t *testing.T) {
	st := storage.NewArray(make([]uint64, 4))
	s, err := EmptySliceIn[point](st)
	require.NoError(t, err)

	in := []point{{1, 1}, {2, 2}, {3, 3}, {4, 4}, {5, 5}}
	rest, err := s.Extend(in)
	require.Error(t, err)
	assert.Equal(t, in[3:], rest, "failed element first")
	assert.Equal(t, in[:3], s.Items())

	var e *errors.Error
	require.ErrorAs(t, err, &e)
	assert.Equal(t, errors.PhaseExtend, e.Phase)
	assert.Equal(t, point{4, 4}, e.Value)
	assert.Equal(t, "inline.point", e.GoType)
}

func TestSlice_ExtendFrom(t *testing.T) {
	st := storage.NewArray(make([]uint64, 3))
	s, err := EmptySliceIn[int32](st)
	require.NoError(t, err)

	next, stop := iter.Pull(slices.Values([]int32{1, 2, 3, 4, 5, 6, 7}))
	defer stop()

	failed, err := s.ExtendFrom(next)
	require.Error(t, err)
	assert.Equal(t, int32(5), failed)
	assert.Equal(t, []int32{1, 2, 3, 4}, s.Items())

	remaining, ok := next()
	require.True(t, ok)
	assert.Equal(t, int32(6), remaining)
}

func TestSlice_ExtendFromExhausted(t *testing.T) {
	s := EmptySlice[int32]()
	defer s.Close()

	next, stop := iter.Pull(slices.Values([]int32{1, 2}))
	defer stop()

	_, err := s.ExtendFrom(next)
	require.NoError(t, err)
	assert.Equal(t, []int32{1, 2}, s.Items())
}

func TestNewSliceFrom(t *testing.T) {
	s, rest, err := NewSliceFrom(storage.NewVec[uint64](0), []float64{1, 2, 3})
	require.NoError(t, err)
	assert.Nil(t, rest)
	assert.Equal(t, []float64{1, 2, 3}, s.Items())
	assert.Equal(t, "[1 2 3]", fmt.Sprint(s))
	require.NoError(t, s.Close())

	_, rest, err = NewSliceFrom(storage.NewArray(make([]uint64, 0)), []float64{1})
	assert.Error(t, err)
	assert.Equal(t, []float64{1}, rest)
}

func TestSlice_All(t *testing.T) {
	s := EmptySlice[uint8]()
	defer s.Close()
	_, _ = s.Extend([]uint8{10, 20, 30})

	var got []uint8
	for i, e := range s.All() {
		assert.Equal(t, uint8(10*(i+1)), e)
		got = append(got, e)
		if i == 1 {
			break
		}
	}
	assert.Equal(t, []uint8{10, 20}, got)
}

func TestSlice_PopOrder(t *testing.T) {
	st := storage.NewArray(make([]uint64, 4))
	s, err := EmptySliceIn[uint16](st)
	require.NoError(t, err)
	_, _ = s.Extend([]uint16{1, 2})

	e, ok := s.Pop()
	require.True(t, ok)
	assert.Equal(t, uint16(2), e)
	assert.Equal(t, uint64(1), codec.Load(codec.Tail(st.Bytes(), 8)))
}

func TestSlice_CloseDrops(t *testing.T) {
	resetDrops(t)

	s := EmptySlice[token]()
	_, err := s.Extend([]token{'a', 'b', 'c'})
	require.NoError(t, err)

	popped, ok := s.Pop()
	require.True(t, ok)
	assert.Equal(t, token('c'), popped)
	assert.Empty(t, drops, "pop moves the element out")

	require.NoError(t, s.Close())
	require.NoError(t, s.Close())
	assert.Equal(t, []string{"token a", "token b"}, drops)
}

func TestSlice_CloseDropsInOrder(t *testing.T) {
	resetDrops(t)

	s, rest, err := NewSliceFrom(storage.NewVec[uint64](0), []token{'a', 'b', 'c'})
	require.NoError(t, err)
	require.Nil(t, rest)

	require.NoError(t, s.Close())
	assert.Equal(t, []string{"token a", "token b", "token c"}, drops)
}

func TestSlice_Assertions(t *testing.T) {
	mustPanicKind(t, errors.KindAlignment, func() {
		_, _ = EmptySliceIn[uint64](storage.NewArray(make([]uint32, 8)))
	})
	mustPanicKind(t, errors.KindLayout, func() {
		_ = EmptySlice[string]()
	})
	mustPanicKind(t, errors.KindLayout, func() {
		_ = EmptySlice[[]byte]()
	})
}

func TestSlice_ZeroSized(t *testing.T) {
	s := EmptySlice[struct{}]()
	defer s.Close()

	for i := 0; i < 5; i++ {
		require.NoError(t, s.Append(struct{}{}))
	}
	assert.Equal(t, 5, s.Len())
	assert.Len(t, s.Items(), 5)
}
