package volume

import (
	"fmt"
	"iter"
)

// Volume is the contract every storage backend implements. Backends only
// expose their region and zero-based storage; bounds checks, index
// conversion and coordinate translation happen in the generic functions of
// this package.
type Volume[T any] interface {
	// BoundingBox returns the region the volume covers.
	BoundingBox() BoundingBox
	// Slot returns the storage cell at local position p, or nil when p
	// lies outside storage.
	Slot(p LocalPos) *T
}

// Ref returns the cell addressed by idx in space s, or nil when the index
// cannot be converted or falls outside v's region.
func Ref[T any, I Index](v Volume[T], s Space, idx I) *T {
	l, ok := Resolve(v.BoundingBox(), s, idx)
	if !ok {
		return nil
	}
	return v.Slot(l)
}

// Get returns a copy of the value at world position idx.
func Get[T any, I Index](v Volume[T], idx I) (T, bool) {
	if r := Ref(v, Worldspace, idx); r != nil {
		return *r, true
	}
	var zero T
	return zero, false
}

// GetMut returns a pointer to the cell at world position idx, or nil.
func GetMut[T any, I Index](v Volume[T], idx I) *T {
	return Ref(v, Worldspace, idx)
}

// Swap stores item at world position idx and returns the previous value.
// It reports false, and stores nothing, when idx is absent.
func Swap[T any, I Index](v Volume[T], idx I, item T) (T, bool) {
	r := Ref(v, Worldspace, idx)
	if r == nil {
		var zero T
		return zero, false
	}
	prev := *r
	*r = item
	return prev, true
}

// Set stores item at world position idx. It reports whether the position
// was present.
func Set[T any, I Index](v Volume[T], idx I, item T) bool {
	r := Ref(v, Worldspace, idx)
	if r == nil {
		return false
	}
	*r = item
	return true
}

// Contains reports whether idx is a world position inside v's region.
func Contains[T any, I Index](v Volume[T], idx I) bool {
	return v.BoundingBox().Contains(idx)
}

// Indices yields every world position of v in BoundingBox.All order.
func Indices[T any](v Volume[T]) iter.Seq[Pos] {
	return v.BoundingBox().All()
}

// Values yields every element of v in index order.
func Values[T any](v Volume[T]) iter.Seq[T] {
	return func(yield func(T) bool) {
		for p := range Indices(v) {
			if !yield(*cell(v, p)) {
				return
			}
		}
	}
}

// All yields every position of v together with its element.
func All[T any](v Volume[T]) iter.Seq2[Pos, T] {
	return func(yield func(Pos, T) bool) {
		for p := range Indices(v) {
			if !yield(p, *cell(v, p)) {
				return
			}
		}
	}
}

// cell returns the cell of a position produced by v's own iteration. A nil
// cell there means the backend's storage does not match its region.
func cell[T any](v Volume[T], p Pos) *T {
	r := Ref(v, Worldspace, p)
	if r == nil {
		panic(fmt.Sprintf("volume: no storage for %v inside %s", p, v.BoundingBox()))
	}
	return r
}

// Fill stores item in every cell of v.
func Fill[T any](v Volume[T], item T) {
	for p := range Indices(v) {
		*cell(v, p) = item
	}
}

// Equal reports whether a and b cover the same region and hold pairwise
// equal elements.
func Equal[T comparable](a, b Volume[T]) bool {
	if a.BoundingBox() != b.BoundingBox() {
		return false
	}
	for p := range Indices(a) {
		if *cell(a, p) != *cell(b, p) {
			return false
		}
	}
	return true
}
