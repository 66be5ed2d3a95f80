package storage

import (
	"testing"

	"github.com/wippyai/inlinedst/errors"
)

func TestVec_Grow(t *testing.T) {
	v := NewVec[uint32](0)
	defer v.Release()

	if v.Bytes() != nil {
		t.Fatal("new vec should be empty")
	}
	if err := v.Extend(3); err != nil {
		t.Fatalf("Extend failed: %v", err)
	}
	b := v.Bytes()
	if len(b) != 12 {
		t.Fatalf("len(Bytes) = %d, want 12", len(b))
	}
	for i := range b {
		b[i] = byte(i + 1)
	}

	// Force a reallocation past the pooled capacity.
	if err := v.Extend(poolInitCap * 4); err != nil {
		t.Fatalf("Extend failed: %v", err)
	}
	b = v.Bytes()
	if len(b) != poolInitCap*16 {
		t.Fatalf("len(Bytes) = %d, want %d", len(b), poolInitCap*16)
	}
	for i := 0; i < 12; i++ {
		if b[i] != byte(i+1) {
			t.Fatalf("byte %d = %d, content not preserved", i, b[i])
		}
	}
	for i := 12; i < len(b); i++ {
		if b[i] != 0 {
			t.Fatalf("byte %d = %d, want zero", i, b[i])
		}
	}
}

func TestVec_Limit(t *testing.T) {
	v := NewVec[uint8](11)
	defer v.Release()

	if err := v.Extend(11); err != nil {
		t.Fatalf("Extend(11) failed: %v", err)
	}
	err := v.Extend(12)
	if !errors.IsKind(err, errors.KindCapacity) {
		t.Fatalf("Extend(12) = %v, want capacity error", err)
	}
	if v.Len() != 11 {
		t.Errorf("Len = %d after failed extend, want 11", v.Len())
	}
	if v.Limit() != 11 {
		t.Errorf("Limit = %d, want 11", v.Limit())
	}
}

func TestVec_ShrinkIsNoop(t *testing.T) {
	v := NewVec[uint64](0)
	defer v.Release()

	_ = v.Extend(4)
	if err := v.Extend(2); err != nil {
		t.Fatalf("Extend(2) failed: %v", err)
	}
	if v.Len() != 4 {
		t.Errorf("Len = %d, want 4", v.Len())
	}
}

func TestVec_ReleaseReuse(t *testing.T) {
	v := NewVec[uint64](0)
	_ = v.Extend(2)
	b := v.Bytes()
	for i := range b {
		b[i] = 0xaa
	}

	if err := v.Release(); err != nil {
		t.Fatalf("Release failed: %v", err)
	}
	if v.Bytes() != nil || v.Len() != 0 {
		t.Fatal("released vec should be empty")
	}

	// Pooled backings come back zeroed up to the requested length.
	w := NewVec[uint64](0)
	defer w.Release()
	_ = w.Extend(2)
	for i, c := range w.Bytes() {
		if c != 0 {
			t.Fatalf("byte %d = %#x, want zero", i, c)
		}
	}

	if err := v.Extend(1); err != nil {
		t.Fatalf("Extend after Release failed: %v", err)
	}
}

func TestPool_RejectsOversized(t *testing.T) {
	big := make([]uint64, 0, poolMaxCap+1)
	putBacking(&big) // must not panic
	putBacking(nil)

	buf := getBacking()
	if len(*buf) != 0 {
		t.Errorf("pooled backing len = %d, want 0", len(*buf))
	}
	putBacking(buf)
}
