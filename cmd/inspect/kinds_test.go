package main

import (
	"testing"

	"go.bytecodealliance.org/wit"

	"github.com/wippyai/inlinedst/internal/layout"
)

func TestElemKinds_MatchGoLayout(t *testing.T) {
	if len(elemKinds) != 12 {
		t.Fatalf("got %d kinds, want 12", len(elemKinds))
	}
	for name, k := range elemKinds {
		info, ok := layout.WIT(k.wit)
		if !ok {
			t.Errorf("%s: no WIT layout", name)
			continue
		}
		goInfo := layout.Of(k.goType)
		if goInfo.Size != info.Size || goInfo.Align > info.Align {
			t.Errorf("%s: WIT %+v, Go %s %+v", name, info, k.goType, goInfo)
		}
		if k.size != int(info.Size) || k.align != int(info.Align) {
			t.Errorf("%s: kind reports %d/%d, WIT %+v", name, k.size, k.align, info)
		}
	}
}

func TestKindOf_LayoutMismatch(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("u16 stored as uint32 must panic")
		}
	}()
	kindOf(wit.U16{}, parseUint[uint32](32))
}
