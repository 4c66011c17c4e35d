package volume

import "golang.org/x/exp/constraints"

// Integer is the set of integer types usable as index components.
type Integer = constraints.Integer

// Index is implemented by any three-component integer position.
//
// Unpack widens the components to int64. ok is false when a component has
// no int64 representation; such an index never addresses a cell.
type Index interface {
	Unpack() (x, y, z int64, ok bool)
}

// Vec is an index with components of any integer type. A plain [3]N array
// converts to it directly: Vec[N](arr).
type Vec[N Integer] [3]N

// Unpack implements Index.
func (v Vec[N]) Unpack() (x, y, z int64, ok bool) {
	a, ok := CastArray[int64](v)
	return a[0], a[1], a[2], ok
}

// XYZ builds a Vec from three components.
func XYZ[N Integer](x, y, z N) Vec[N] {
	return Vec[N]{x, y, z}
}

// Pos is a canonical world-space position.
type Pos [3]int64

// Unpack implements Index.
func (p Pos) Unpack() (x, y, z int64, ok bool) {
	return p[0], p[1], p[2], true
}

// Add returns p+q, reporting false if any component overflows.
func (p Pos) Add(q Pos) (Pos, bool) {
	var out Pos
	for i := range 3 {
		s, ok := addInt64(p[i], q[i])
		if !ok {
			return Pos{}, false
		}
		out[i] = s
	}
	return out, true
}

// Sub returns p-q, reporting false if any component overflows.
func (p Pos) Sub(q Pos) (Pos, bool) {
	var out Pos
	for i := range 3 {
		d, ok := subInt64(p[i], q[i])
		if !ok {
			return Pos{}, false
		}
		out[i] = d
	}
	return out, true
}

// LocalPos is a zero-based storage position, relative to the minimum
// corner of a region.
type LocalPos [3]uint

// Unpack implements Index.
func (p LocalPos) Unpack() (x, y, z int64, ok bool) {
	a, ok := CastArray[int64](p)
	return a[0], a[1], a[2], ok
}

// Cast unpacks idx and converts every component to T. It reports false
// instead of truncating when a component lies outside T's domain, for
// example a negative component cast to an unsigned type.
func Cast[T Integer, I Index](idx I) ([3]T, bool) {
	x, y, z, ok := idx.Unpack()
	if !ok {
		return [3]T{}, false
	}
	return CastArray[T]([3]int64{x, y, z})
}

// CastArray converts every component of a to T, reporting false if any
// component cannot be represented exactly.
func CastArray[T, N Integer](a [3]N) ([3]T, bool) {
	var out [3]T
	for i, v := range a {
		t, ok := convert[T](v)
		if !ok {
			return [3]T{}, false
		}
		out[i] = t
	}
	return out, true
}

// convert is a lossless integer conversion: the value must survive the
// round trip and keep its sign.
func convert[T, N Integer](v N) (T, bool) {
	t := T(v)
	return t, N(t) == v && (t < 0) == (v < 0)
}

func addInt64(a, b int64) (int64, bool) {
	s := a + b
	return s, (a^s)&(b^s) >= 0
}

func subInt64(a, b int64) (int64, bool) {
	d := a - b
	return d, (a^b)&(a^d) >= 0
}
