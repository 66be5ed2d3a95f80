package codec

import (
	stderrors "errors"
	"fmt"
	"reflect"
	"sync"
	"testing"
	"unsafe"

	"github.com/wippyai/inlinedst/errors"
)

type celsius int32

func (c *celsius) String() string { return fmt.Sprintf("%d°C", *c) }

var countedDrops int

type droppable struct{ n int64 }

func (d *droppable) String() string { return fmt.Sprint(d.n) }
func (d *droppable) Drop() { countedDrops++ }

func TestRegister_Stable(t *testing.T) {
	a := Register[fmt.Stringer, celsius]()
	b := Register[fmt.Stringer, celsius]()
	if a != b {
		t.Error("Register should return the same entry for the same pair")
	}
	if a.ID == 0 {
		t.Error("ID 0 is reserved")
	}
	if a.Size != 4 || a.Align != 4 {
		t.Errorf("size/align = %d/%d, want 4/4", a.Size, a.Align)
	}
	if a.Type != reflect.TypeFor[celsius]() {
		t.Errorf("Type = %v", a.Type)
	}

	c := Register[any, celsius]()
	if c == a {
		t.Error("different view types need different entries")
	}
	if Lookup(a.ID) != a || Lookup(c.ID) != c {
		t.Error("Lookup should find registered entries")
	}
}

func TestRegister_Concurrent(t *testing.T) {
	type local struct{ x uint8 }

	var wg sync.WaitGroup
	ids := make([]uint64, 16)
	for i := range ids {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			ids[i] = Register[any, local]().ID
		}(i)
	}
	wg.Wait()

	for _, id := range ids[1:] {
		if id != ids[0] {
			t.Fatalf("concurrent registration gave ids %v", ids)
		}
	}
}

func TestRegister_Dropper(t *testing.T) {
	e := Register[fmt.Stringer, droppable]()
	if DropFor[droppable]() == nil {
		t.Fatal("*droppable implements Dropper")
	}
	if DropFor[celsius]() != nil {
		t.Error("*celsius has no Drop")
	}

	d := droppable{n: 7}
	before := countedDrops
	e.Drop(unsafe.Pointer(&d))
	if countedDrops != before+1 {
		t.Error("Drop did not run")
	}
}

func TestDecomposeReconstruct(t *testing.T) {
	e := Register[fmt.Stringer, celsius]()

	c := celsius(21)
	var view fmt.Stringer = &c
	p, stored, ok := Decompose(view)
	if !ok {
		t.Fatal("Decompose failed on a pointer view")
	}
	if p != unsafe.Pointer(&c) {
		t.Error("address mismatch")
	}
	if stored != reflect.TypeFor[celsius]() {
		t.Errorf("stored = %v", stored)
	}

	got := Reconstruct[fmt.Stringer](p, e.ID)
	if got.String() != "21°C" {
		t.Errorf("String = %q", got.String())
	}
	if e.Value(p) != celsius(21) {
		t.Errorf("Value = %v", e.Value(p))
	}
}

func TestDecompose_Rejects(t *testing.T) {
	tests := []struct {
		name string
		view any
	}{
		{"nil", nil},
		{"non-pointer", 42},
		{"nil pointer", (*celsius)(nil)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, _, ok := Decompose(tt.view); ok {
				t.Error("expected ok = false")
			}
		})
	}
}

func TestLookup_Unknown(t *testing.T) {
	defer func() {
		r := recover()
		err, ok := r.(error)
		if !ok || !errors.IsKind(err, errors.KindOutOfBounds) {
			t.Errorf("recover = %v, want out_of_bounds", r)
		}
	}()
	Lookup(0)
}

func TestReconstruct_WrongView(t *testing.T) {
	e := Register[any, celsius]()
	c := celsius(1)

	defer func() {
		var target *errors.Error
		err, _ := recover().(error)
		if !stderrors.As(err, &target) || target.Kind != errors.KindInvalidView {
			t.Fatalf("recover = %v, want invalid_view", err)
		}
		if target.Phase != errors.PhaseAccess || target.View != "fmt.Stringer" || target.GoType != "codec.celsius" {
			t.Errorf("got phase %s, view %q, type %q", target.Phase, target.View, target.GoType)
		}
	}()
	Reconstruct[fmt.Stringer](unsafe.Pointer(&c), e.ID)
}
