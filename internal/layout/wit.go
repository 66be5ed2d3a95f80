package layout

import (
	"go.bytecodealliance.org/wit"
)

// WIT returns the canonical ABI layout of a WIT primitive type, following
// aliases. Everything else reports ok=false.
func WIT(t wit.Type) (Info, bool) {
	switch typ := t.(type) {
	case wit.U8, wit.S8, wit.Bool:
		return Info{Size: 1, Align: 1}, true
	case wit.U16, wit.S16:
		return Info{Size: 2, Align: 2}, true
	case wit.U32, wit.S32, wit.F32, wit.Char:
		return Info{Size: 4, Align: 4}, true
	case wit.U64, wit.S64, wit.F64:
		return Info{Size: 8, Align: 8}, true
	case *wit.TypeDef:
		if alias, ok := typ.Kind.(wit.Type); ok {
			return WIT(alias)
		}
	}
	return Info{}, false
}
