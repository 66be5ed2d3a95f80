package inlinedst

// Word is the unit a Storage is addressed in.
type Word interface {
	~uint8 | ~uint16 | ~uint32 | ~uint64 | ~uintptr
}

// Storage is the backing store of a container: an owned, extendable word
// sequence viewed as bytes.
type Storage interface {
	// Bytes returns the current content. The slice starts on a WordSize
	// boundary and its length is a multiple of WordSize. It is invalidated
	// by a successful Extend.
	Bytes() []byte

	// WordSize returns the width of one storage word in bytes.
	WordSize() int

	// RoundToWords returns the number of whole words needed to hold n bytes.
	RoundToWords(n int) int

	// Extend grows the storage to at least words words, preserving its
	// contents. On failure nothing changes.
	Extend(words int) error
}

// Releaser is implemented by storage that must be handed back when its
// container is closed.
type Releaser interface {
	Release() error
}

// Len returns the storage length in words.
func Len(s Storage) int {
	return len(s.Bytes()) / s.WordSize()
}
