package main

import (
	stderrors "errors"
	"fmt"
	"reflect"
	"sort"
	"strconv"
	"strings"
	"unicode/utf8"

	"go.bytecodealliance.org/wit"

	"github.com/wippyai/inlinedst"
	"github.com/wippyai/inlinedst/errors"
	"github.com/wippyai/inlinedst/inline"
	"github.com/wippyai/inlinedst/internal/layout"
)

// scalar is the stored type behind value, stack and queue entries.
type scalar[T any] struct {
	V T
}

func (s *scalar[T]) String() string {
	return fmt.Sprint(s.V)
}

type char rune

func (c char) String() string {
	return string(rune(c))
}

// elemKind binds a WIT primitive to the Go type stored for it.
type elemKind struct {
	wit      wit.Type
	newValue func(st inlinedst.Storage, text string) (*inline.Value[fmt.Stringer], error)
	replace  func(v *inline.Value[fmt.Stringer], text string) error
	push     func(s *inline.Stack[fmt.Stringer], text string) error
	enqueue  func(q *inline.Queue[fmt.Stringer], text string) error
	newSlice func(st inlinedst.Storage) (container, error)
	goType   reflect.Type
	name     string
	size     int
	align    int
}

// kindOf panics if T cannot hold w's canonical layout.
func kindOf[T any](w wit.Type, parse func(string) (T, error)) *elemKind {
	narrow := func(p *scalar[T]) fmt.Stringer { return p }
	goType := reflect.TypeFor[T]()
	info, ok := layout.WIT(w)
	if goInfo := layout.Of(goType); !ok || info.Size != goInfo.Size || goInfo.Align > info.Align {
		panic(errors.New(errors.PhaseConfig, errors.KindLayout).
			GoType(goType.String()).
			Detail("%s layout %+v does not match Go layout %+v", witTypeStr(w), info, goInfo).
			Build())
	}
	return &elemKind{
		name:   witTypeStr(w),
		wit:    w,
		goType: goType,
		size:   int(info.Size),
		align:  int(info.Align),
		newValue: func(st inlinedst.Storage, text string) (*inline.Value[fmt.Stringer], error) {
			v, err := parse(text)
			if err != nil {
				return nil, err
			}
			return inline.NewIn(st, scalar[T]{V: v}, narrow)
		},
		replace: func(v *inline.Value[fmt.Stringer], text string) error {
			val, err := parse(text)
			if err != nil {
				return err
			}
			return inline.Replace(v, scalar[T]{V: val}, narrow)
		},
		push: func(s *inline.Stack[fmt.Stringer], text string) error {
			v, err := parse(text)
			if err != nil {
				return err
			}
			return inline.Push(s, scalar[T]{V: v}, narrow)
		},
		enqueue: func(q *inline.Queue[fmt.Stringer], text string) error {
			v, err := parse(text)
			if err != nil {
				return err
			}
			return inline.PushBack(q, scalar[T]{V: v}, narrow)
		},
		newSlice: func(st inlinedst.Storage) (container, error) {
			s, err := inline.EmptySliceIn[T](st)
			if err != nil {
				return nil, err
			}
			return &sliceContainer[T]{s: s, parse: parse}, nil
		},
	}
}

var elemKinds = map[string]*elemKind{}

func init() {
	for _, k := range []*elemKind{
		kindOf(wit.Bool{}, parseBool),
		kindOf(wit.U8{}, parseUint[uint8](8)),
		kindOf(wit.U16{}, parseUint[uint16](16)),
		kindOf(wit.U32{}, parseUint[uint32](32)),
		kindOf(wit.U64{}, parseUint[uint64](64)),
		kindOf(wit.S8{}, parseInt[int8](8)),
		kindOf(wit.S16{}, parseInt[int16](16)),
		kindOf(wit.S32{}, parseInt[int32](32)),
		kindOf(wit.S64{}, parseInt[int64](64)),
		kindOf(wit.F32{}, parseFloat[float32](32)),
		kindOf(wit.F64{}, parseFloat[float64](64)),
		kindOf(wit.Char{}, parseChar),
	} {
		elemKinds[k.name] = k
	}
}

func lookupKind(name string) (*elemKind, error) {
	k, ok := elemKinds[name]
	if !ok {
		return nil, errors.NotFound(errors.PhaseConfig, "element kind", name)
	}
	return k, nil
}

// kindNames returns the supported element kinds, sorted.
func kindNames() []string {
	names := make([]string, 0, len(elemKinds))
	for name := range elemKinds {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// splitKind splits "f64=1.5" into its kind and value. Arguments without a
// known kind prefix use def.
func splitKind(arg string, def *elemKind) (*elemKind, string) {
	if name, rest, ok := strings.Cut(arg, "="); ok {
		if k, ok := elemKinds[name]; ok {
			return k, rest
		}
	}
	return def, arg
}

func parseErr(kind, text string, err error) error {
	if stderrors.Is(err, strconv.ErrRange) {
		return errors.Overflow(errors.PhaseConfig, text, kind)
	}
	return errors.Wrap(errors.PhaseConfig, errors.KindInvalidInput, err,
		fmt.Sprintf("parse %q as %s", text, kind))
}

func parseUint[T ~uint8 | ~uint16 | ~uint32 | ~uint64](bits int) func(string) (T, error) {
	return func(s string) (T, error) {
		v, err := strconv.ParseUint(s, 0, bits)
		if err != nil {
			return 0, parseErr(fmt.Sprintf("u%d", bits), s, err)
		}
		return T(v), nil
	}
}

func parseInt[T ~int8 | ~int16 | ~int32 | ~int64](bits int) func(string) (T, error) {
	return func(s string) (T, error) {
		v, err := strconv.ParseInt(s, 0, bits)
		if err != nil {
			return 0, parseErr(fmt.Sprintf("s%d", bits), s, err)
		}
		return T(v), nil
	}
}

func parseFloat[T ~float32 | ~float64](bits int) func(string) (T, error) {
	return func(s string) (T, error) {
		v, err := strconv.ParseFloat(s, bits)
		if err != nil {
			return 0, parseErr(fmt.Sprintf("f%d", bits), s, err)
		}
		return T(v), nil
	}
}

func parseBool(s string) (bool, error) {
	v, err := strconv.ParseBool(s)
	if err != nil {
		return false, parseErr("bool", s, err)
	}
	return v, nil
}

func parseChar(s string) (char, error) {
	r, size := utf8.DecodeRuneInString(s)
	if size == 0 || size != len(s) || r == utf8.RuneError {
		return 0, errors.InvalidInput(errors.PhaseConfig,
			fmt.Sprintf("%q is not a single character", s))
	}
	return char(r), nil
}

func witTypeStr(t wit.Type) string {
	switch v := t.(type) {
	case wit.Bool:
		return "bool"
	case wit.U8:
		return "u8"
	case wit.S8:
		return "s8"
	case wit.U16:
		return "u16"
	case wit.S16:
		return "s16"
	case wit.U32:
		return "u32"
	case wit.S32:
		return "s32"
	case wit.U64:
		return "u64"
	case wit.S64:
		return "s64"
	case wit.F32:
		return "f32"
	case wit.F64:
		return "f64"
	case wit.Char:
		return "char"
	case wit.String:
		return "string"
	case *wit.TypeDef:
		if v.Name != nil {
			return *v.Name
		}
		return "typedef"
	default:
		return fmt.Sprintf("%T", t)
	}
}
