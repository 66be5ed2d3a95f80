package main

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"unsafe"

	"github.com/tetratelabs/wazero"

	"github.com/wippyai/inlinedst"
	"github.com/wippyai/inlinedst/errors"
	"github.com/wippyai/inlinedst/inline"
	"github.com/wippyai/inlinedst/internal/layout"
	"github.com/wippyai/inlinedst/storage"
)

// Op is one container operation, written "name" or "name:arg".
type Op struct {
	Name string
	Arg  string
}

func (o Op) String() string {
	if o.Arg == "" {
		return o.Name
	}
	return o.Name + ":" + o.Arg
}

// ParseOp parses "append:hello", "pop" and the like.
func ParseOp(s string) (Op, error) {
	name, arg, _ := strings.Cut(s, ":")
	switch name {
	case "append", "push", "extend", "truncate", "replace":
		return Op{Name: name, Arg: arg}, nil
	case "pop":
		if arg != "" {
			return Op{}, errors.InvalidInput(errors.PhaseConfig, "pop takes no argument")
		}
		return Op{Name: name}, nil
	}
	return Op{}, errors.NotFound(errors.PhaseConfig, "operation", name)
}

// Region is a named word range [Start, End).
type Region struct {
	Name  string
	Start int
	End   int
}

// container is one inspected container.
type container interface {
	apply(op Op) (string, error)
	regions(words, wordSize int) []Region
	String() string
	Close() error
}

// Step records the outcome of one operation.
type Step struct {
	Op     string `cbor:"1,keyasint"`
	Result string `cbor:"2,keyasint,omitempty"`
	Err    string `cbor:"3,keyasint,omitempty"`
}

// Session owns the storage and container being inspected.
type Session struct {
	ctx   context.Context
	rt    wazero.Runtime
	st    inlinedst.Storage
	c     container
	elem  *elemKind
	cfg   Config
	Steps []Step
}

// NewSession creates the storage and an empty container for cfg. Value
// containers are created by their first replace.
func NewSession(ctx context.Context, cfg Config) (*Session, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	elem, _ := lookupKind(cfg.Elem)
	s := &Session{ctx: ctx, cfg: cfg, elem: elem}

	if cfg.Storage == "linear" {
		s.rt = wazero.NewRuntime(ctx)
	}
	st, err := s.newStorage()
	if err != nil {
		s.Close()
		return nil, err
	}
	s.st = st

	_, err = guard(func() (string, error) {
		var err error
		switch cfg.Kind {
		case "text":
			var t *inline.Text
			if t, err = inline.EmptyTextIn(st); err == nil {
				s.c = &textContainer{t: t}
			}
		case "slice":
			s.c, err = elem.newSlice(st)
		case "stack":
			s.c = &stackContainer{s: inline.NewStackIn[fmt.Stringer](st), elem: elem}
		case "queue":
			s.c = &queueContainer{q: inline.NewQueueIn[fmt.Stringer](st), elem: elem}
		case "value":
			s.c = &valueContainer{st: st, elem: elem}
		}
		return "", err
	})
	if err != nil {
		s.Close()
		return nil, err
	}
	return s, nil
}

func (s *Session) newStorage() (inlinedst.Storage, error) {
	switch s.cfg.WordSize {
	case 1:
		return newStorage[uint8](s)
	case 2:
		return newStorage[uint16](s)
	case 4:
		return newStorage[uint32](s)
	default:
		return newStorage[uint64](s)
	}
}

func newStorage[W inlinedst.Word](s *Session) (inlinedst.Storage, error) {
	cfg := s.cfg
	switch cfg.Storage {
	case "array":
		return storage.NewArray(make([]W, cfg.Words)), nil
	case "linear":
		ws := int(unsafe.Sizeof(W(0)))
		minPages := uint32(max(1, layout.RoundToWords(cfg.Words*ws, storage.PageSize)))
		maxPages := uint32(layout.RoundToWords(cfg.Max*ws, storage.PageSize))
		if maxPages != 0 && maxPages < minPages {
			maxPages = minPages
		}
		return storage.NewLinearModule[W](s.ctx, s.rt, minPages, maxPages)
	default:
		return storage.NewVec[W](cfg.Max), nil
	}
}

// Run parses and applies one operation and records the step.
func (s *Session) Run(text string) Step {
	step := Step{Op: text}
	op, err := ParseOp(text)
	if err == nil {
		step.Result, err = guard(func() (string, error) { return s.c.apply(op) })
	}
	if err != nil {
		step.Err = err.Error()
	}
	s.Steps = append(s.Steps, step)
	return step
}

// guard turns *errors.Error panics from the container into errors.
func guard(fn func() (string, error)) (out string, err error) {
	defer func() {
		if r := recover(); r != nil {
			e, ok := r.(*errors.Error)
			if !ok {
				panic(r)
			}
			err = e
		}
	}()
	return fn()
}

// Value returns the container's contents formatted.
func (s *Session) Value() string {
	return s.c.String()
}

// Layout returns every storage word with the region it belongs to.
func (s *Session) Layout() []WordInfo {
	return describeWords(s.st.Bytes(), s.st.WordSize(),
		s.c.regions(inlinedst.Len(s.st), s.st.WordSize()))
}

// Close closes the container and the wazero runtime, if any.
func (s *Session) Close() error {
	var err error
	if s.c != nil {
		err = s.c.Close()
	}
	if s.rt != nil {
		if cerr := s.rt.Close(s.ctx); err == nil {
			err = cerr
		}
	}
	return err
}

// tailRegions marks data words at the front and the metadata at the tail.
func tailRegions(dataBytes, words, wordSize int) []Region {
	if words == 0 {
		return nil
	}
	meta := layout.MetaWords(wordSize)
	return []Region{
		{Name: "data", Start: 0, End: layout.RoundToWords(dataBytes, wordSize)},
		{Name: "meta", Start: words - meta, End: words},
	}
}

type textContainer struct {
	t *inline.Text
}

func (c *textContainer) apply(op Op) (string, error) {
	switch op.Name {
	case "append", "push":
		n, err := c.t.Append(op.Arg)
		return fmt.Sprintf("wrote %d bytes", n), err
	case "truncate":
		n, err := strconv.Atoi(op.Arg)
		if err != nil {
			return "", parseErr("int", op.Arg, err)
		}
		c.t.Truncate(n)
		return fmt.Sprintf("length %d", c.t.Len()), nil
	case "replace":
		c.t.Truncate(0)
		n, err := c.t.Append(op.Arg)
		return fmt.Sprintf("wrote %d bytes", n), err
	}
	return "", unsupported("text", op)
}

func (c *textContainer) regions(words, wordSize int) []Region {
	return tailRegions(c.t.Len(), words, wordSize)
}

func (c *textContainer) String() string { return fmt.Sprintf("%q", c.t) }
func (c *textContainer) Close() error { return c.t.Close() }

type sliceContainer[E any] struct {
	s     *inline.Slice[E]
	parse func(string) (E, error)
}

func (c *sliceContainer[E]) apply(op Op) (string, error) {
	switch op.Name {
	case "append", "push":
		e, err := c.parse(op.Arg)
		if err != nil {
			return "", err
		}
		if err := c.s.Append(e); err != nil {
			return "", err
		}
		return fmt.Sprintf("len %d", c.s.Len()), nil
	case "extend":
		var elems []E
		for _, f := range strings.Split(op.Arg, ",") {
			e, err := c.parse(strings.TrimSpace(f))
			if err != nil {
				return "", err
			}
			elems = append(elems, e)
		}
		rest, err := c.s.Extend(elems)
		return fmt.Sprintf("len %d, %d left over", c.s.Len(), len(rest)), err
	case "pop":
		e, ok := c.s.Pop()
		if !ok {
			return "empty", nil
		}
		return fmt.Sprint(e), nil
	}
	return "", unsupported("slice", op)
}

func (c *sliceContainer[E]) regions(words, wordSize int) []Region {
	var e E
	return tailRegions(c.s.Len()*int(unsafe.Sizeof(e)), words, wordSize)
}

func (c *sliceContainer[E]) String() string { return fmt.Sprint(c.s) }
func (c *sliceContainer[E]) Close() error { return c.s.Close() }

type valueContainer struct {
	st   inlinedst.Storage
	v    *inline.Value[fmt.Stringer]
	elem *elemKind
}

func (c *valueContainer) apply(op Op) (string, error) {
	if op.Name != "replace" && op.Name != "push" {
		return "", unsupported("value", op)
	}
	k, text := splitKind(op.Arg, c.elem)
	if c.v == nil {
		v, err := k.newValue(c.st, text)
		if err != nil {
			return "", err
		}
		c.v = v
		return "constructed " + k.name, nil
	}
	if err := k.replace(c.v, text); err != nil {
		return "", err
	}
	return "replaced with " + k.name, nil
}

func (c *valueContainer) regions(words, wordSize int) []Region {
	if c.v == nil {
		return nil
	}
	return tailRegions(c.v.Size(), words, wordSize)
}

func (c *valueContainer) String() string {
	if c.v == nil {
		return "<empty>"
	}
	return fmt.Sprint(c.v)
}

func (c *valueContainer) Close() error {
	if c.v == nil {
		return nil
	}
	return c.v.Close()
}

type stackContainer struct {
	s    *inline.Stack[fmt.Stringer]
	elem *elemKind
}

func (c *stackContainer) apply(op Op) (string, error) {
	switch op.Name {
	case "push", "append":
		k, text := splitKind(op.Arg, c.elem)
		if err := k.push(c.s, text); err != nil {
			return "", err
		}
		return fmt.Sprintf("depth %d", c.s.Len()), nil
	case "pop":
		top, ok := c.s.Top()
		if !ok {
			return "empty", nil
		}
		out := top.String()
		c.s.Pop()
		return out, nil
	}
	return "", unsupported("stack", op)
}

func (c *stackContainer) regions(words, _ int) []Region {
	if used := c.s.Words(); used > 0 {
		return []Region{{Name: "items", Start: words - used, End: words}}
	}
	return nil
}

func (c *stackContainer) String() string { return fmt.Sprint(c.s) }
func (c *stackContainer) Close() error { return c.s.Close() }

type queueContainer struct {
	q    *inline.Queue[fmt.Stringer]
	elem *elemKind
}

func (c *queueContainer) apply(op Op) (string, error) {
	switch op.Name {
	case "push", "append":
		k, text := splitKind(op.Arg, c.elem)
		if err := k.enqueue(c.q, text); err != nil {
			return "", err
		}
		return fmt.Sprintf("length %d", c.q.Len()), nil
	case "pop":
		front, ok := c.q.Front()
		if !ok {
			return "empty", nil
		}
		out := front.String()
		c.q.PopFront()
		return out, nil
	}
	return "", unsupported("queue", op)
}

func (c *queueContainer) regions(int, int) []Region {
	if start, end := c.q.Span(); end > start {
		return []Region{{Name: "items", Start: start, End: end}}
	}
	return nil
}

func (c *queueContainer) String() string { return fmt.Sprint(c.q) }
func (c *queueContainer) Close() error { return c.q.Close() }

func unsupported(kind string, op Op) error {
	return errors.InvalidInput(errors.PhaseConfig,
		fmt.Sprintf("%s containers do not support %s", kind, op.Name))
}
