package layout

import (
	"math"
	"reflect"
)

// MetaBytes is the size of the metadata stored at the tail of every container.
const MetaBytes = 8

func SafeMul(a, b int) (int, bool) {
	if a < 0 || b < 0 {
		return 0, false
	}
	if b != 0 && a > math.MaxInt/b {
		return 0, false
	}
	return a * b, true
}

func SafeAdd(a, b int) (int, bool) {
	if a < 0 || b < 0 || a > math.MaxInt-b {
		return 0, false
	}
	return a + b, true
}

// TypeName returns "nil" for nil values, avoiding reflect.TypeOf(nil) panic.
func TypeName(value any) string {
	if value == nil {
		return "nil"
	}
	return reflect.TypeOf(value).String()
}

// RoundToWords returns the number of wordSize-byte words needed for n bytes.
func RoundToWords(n, wordSize int) int {
	return (n + wordSize - 1) / wordSize
}

// MetaWords returns the number of words the metadata occupies.
func MetaWords(wordSize int) int {
	return RoundToWords(MetaBytes, wordSize)
}

// Required returns the words needed for size data bytes plus metadata.
// ok is false if the count overflows int.
func Required(size, wordSize int) (int, bool) {
	if size < 0 {
		return 0, false
	}
	data, ok := SafeAdd(size, wordSize-1)
	if !ok {
		return 0, false
	}
	return SafeAdd(data/wordSize, MetaWords(wordSize))
}
