package inline

import (
	stderrors "errors"
	"strconv"
	"testing"

	"github.com/wippyai/inlinedst/errors"
)

// drops records every Drop call in order.
var drops []string

func resetDrops(t *testing.T) {
	t.Helper()
	drops = nil
	t.Cleanup(func() { drops = nil })
}

type number int

func (n *number) String() string { return strconv.Itoa(int(*n)) }
func (n *number) Drop() { drops = append(drops, "number "+n.String()) }

type decimal float64

func (r *decimal) String() string { return strconv.FormatFloat(float64(*r), 'g', -1, 64) }
func (r *decimal) Drop() { drops = append(drops, "decimal "+r.String()) }

type block [4]uint64

func (b *block) String() string { return "block" }
func (b *block) Drop() { drops = append(drops, "block") }

type point struct {
	X, Y int32
}

type tagged struct {
	id   uint16
	name string
}

type token byte

func (t *token) Drop() { drops = append(drops, "token "+string(rune(*t))) }

// mustPanicKind runs fn and fails unless it panics with an *errors.Error of
// the given kind.
func mustPanicKind(t *testing.T, kind errors.Kind, fn func()) {
	t.Helper()
	defer func() {
		t.Helper()
		r := recover()
		if r == nil {
			t.Fatalf("expected panic of kind %s", kind)
		}
		err, ok := r.(error)
		var e *errors.Error
		if !ok || !stderrors.As(err, &e) {
			t.Fatalf("panic value %v is not *errors.Error", r)
		}
		if e.Kind != kind {
			t.Fatalf("panic kind = %s, want %s (%v)", e.Kind, kind, e)
		}
	}()
	fn()
}
