// Package inline provides containers that keep a dynamically-sized value
// and its metadata together in one backing storage.
//
// # Containers
//
//	Type          Holds                          Metadata word
//	──────────────────────────────────────────────────────────────
//	Value[V]      one value seen through V       dispatch entry ID
//	Text          UTF-8 string, growable         byte length
//	Slice[E]      elements of E, growable        element count
//	Stack[V]      LIFO of values seen through V  one per item
//	TextStack     LIFO of strings                one per item
//	Queue[V]      FIFO of values seen through V  one per item
//	TextQueue     FIFO of strings                one per item
//	SliceStack[E] LIFO of slices of E            one per item
//	SliceQueue[E] FIFO of slices of E            one per item
//
// # Narrowing
//
// A Value is built from a concrete value and a function turning a pointer
// to it into the view type:
//
//	v, err := inline.New(celsius(21), func(c *celsius) fmt.Stringer { return c })
//
// The function must return its argument; anything else panics. The view
// is rebuilt from storage on every Get, so it always points into the
// container.
//
// # Capacity
//
// Insufficient storage is the only recoverable failure. The input that did
// not fit comes back inside the error and the container is unchanged:
//
//	if err := s.Append(e); err != nil {
//	    e, _ = inline.Rejected[Elem](err)
//	}
//
// Misalignment, Go pointers in a stored type, a bad narrowing function,
// truncating text inside a UTF-8 sequence, and use after Close are
// programming errors and panic with *errors.Error.
//
// # Ownership
//
// A container owns its storage and its value. Close runs the value's Drop
// method (see Dropper) exactly once and then releases the storage if it
// implements inlinedst.Releaser. Replace drops the old value in place
// before the new one is written. Slice.Pop, TextStack.Pop,
// TextQueue.PopFront, SliceStack.Pop and SliceQueue.PopFront move the
// element out; Stack.Pop and Queue.PopFront drop it. PopWith and
// PopFrontWith show the value to a callback before dropping it.
package inline
