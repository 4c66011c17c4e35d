package volume

import (
	"fmt"
	"iter"
	"math"
	"math/bits"
)

// BoundingBox is an axis-aligned integer box. It is half-open on every
// axis: a position p is contained iff Min()[i] <= p[i] < Max()[i].
//
// The corners are always canonical (min <= max componentwise) and every
// span fits in an int64. A box with a zero span on any axis is legal and
// contains nothing.
type BoundingBox struct {
	min Pos
	max Pos
}

// NewBoundingBox returns the box spanned by two arbitrary corners, in any
// axis order. It fails with ErrCoordinateOverflow if a corner component has
// no int64 representation or a span would not fit in an int64.
func NewBoundingBox[N Integer](c1, c2 [3]N) (BoundingBox, error) {
	a, okA := CastArray[int64](c1)
	b, okB := CastArray[int64](c2)
	if !okA || !okB {
		return BoundingBox{}, fmt.Errorf("%w: corners %v and %v", ErrCoordinateOverflow, c1, c2)
	}
	bb, ok := fromCorners(a, b)
	if !ok {
		return BoundingBox{}, fmt.Errorf("%w: span between %v and %v", ErrCoordinateOverflow, c1, c2)
	}
	return bb, nil
}

// MustBoundingBox is like NewBoundingBox but panics on error. Use it for
// corners known to be in range.
func MustBoundingBox[N Integer](c1, c2 [3]N) BoundingBox {
	bb, err := NewBoundingBox(c1, c2)
	if err != nil {
		panic(err)
	}
	return bb
}

// Origin returns the box spanning from the origin to dims.
func Origin[N Integer](dims [3]N) (BoundingBox, error) {
	return NewBoundingBox([3]N{}, dims)
}

func fromCorners(a, b [3]int64) (BoundingBox, bool) {
	var bb BoundingBox
	for i := range 3 {
		bb.min[i] = min(a[i], b[i])
		bb.max[i] = max(a[i], b[i])
		if _, ok := subInt64(bb.max[i], bb.min[i]); !ok {
			return BoundingBox{}, false
		}
	}
	return bb, true
}

// Min returns the inclusive minimum corner.
func (b BoundingBox) Min() Pos { return b.min }

// Max returns the exclusive maximum corner.
func (b BoundingBox) Max() Pos { return b.max }

// Contains reports whether idx lies inside the box. An index that cannot
// be represented in int64 is never contained.
func (b BoundingBox) Contains(idx Index) bool {
	x, y, z, ok := idx.Unpack()
	if !ok {
		return false
	}
	return b.ContainsPos(Pos{x, y, z})
}

// ContainsPos reports whether p lies inside the box.
func (b BoundingBox) ContainsPos(p Pos) bool {
	for i := range 3 {
		if p[i] < b.min[i] || p[i] >= b.max[i] {
			return false
		}
	}
	return true
}

// Overlaps reports whether the two boxes share at least one position.
func (b BoundingBox) Overlaps(o BoundingBox) bool {
	for i := range 3 {
		if !(b.min[i] < o.max[i] && b.max[i] > o.min[i]) {
			return false
		}
	}
	return true
}

// Intersection returns the overlap of the two boxes. It reports false when
// they do not overlap.
func (b BoundingBox) Intersection(o BoundingBox) (BoundingBox, bool) {
	if !b.Overlaps(o) {
		return BoundingBox{}, false
	}
	var out BoundingBox
	for i := range 3 {
		out.min[i] = max(b.min[i], o.min[i])
		out.max[i] = min(b.max[i], o.max[i])
	}
	return out, true
}

// Encloses reports whether every position of o is also a position of b,
// comparing corners: o.Min() >= b.Min() and o.Max() <= b.Max() on all axes.
func (b BoundingBox) Encloses(o BoundingBox) bool {
	for i := range 3 {
		if o.min[i] < b.min[i] || o.max[i] > b.max[i] {
			return false
		}
	}
	return true
}

// Translate returns the box moved by offset. It reports false if a corner
// overflows.
func (b BoundingBox) Translate(offset Pos) (BoundingBox, bool) {
	lo, okLo := b.min.Add(offset)
	hi, okHi := b.max.Add(offset)
	if !okLo || !okHi {
		return BoundingBox{}, false
	}
	return BoundingBox{min: lo, max: hi}, true
}

// XSpan returns the extent along X.
func (b BoundingBox) XSpan() int64 { return b.max[0] - b.min[0] }

// YSpan returns the extent along Y.
func (b BoundingBox) YSpan() int64 { return b.max[1] - b.min[1] }

// ZSpan returns the extent along Z.
func (b BoundingBox) ZSpan() int64 { return b.max[2] - b.min[2] }

// Dimensions returns the per-axis extents.
func (b BoundingBox) Dimensions() [3]int64 {
	return [3]int64{b.XSpan(), b.YSpan(), b.ZSpan()}
}

// IsEmpty reports whether any axis has a zero span.
func (b BoundingBox) IsEmpty() bool {
	return b.XSpan() == 0 || b.YSpan() == 0 || b.ZSpan() == 0
}

// Capacity returns the number of positions in the box. It is exact for
// every box whose position count fits in a uint64 (all boxes up to 2^21
// per axis) and saturates at math.MaxUint64 otherwise.
func (b BoundingBox) Capacity() uint64 {
	if b.IsEmpty() {
		return 0
	}
	n := uint64(1)
	for _, d := range b.Dimensions() {
		hi, lo := bits.Mul64(n, uint64(d))
		if hi != 0 {
			return math.MaxUint64
		}
		n = lo
	}
	return n
}

// All yields every contained position exactly once. X varies fastest and Z
// slowest. The sequence is finite and may be ranged over repeatedly.
func (b BoundingBox) All() iter.Seq[Pos] {
	return func(yield func(Pos) bool) {
		if b.IsEmpty() {
			return
		}
		for z := b.min[2]; z < b.max[2]; z++ {
			for y := b.min[1]; y < b.max[1]; y++ {
				for x := b.min[0]; x < b.max[0]; x++ {
					if !yield(Pos{x, y, z}) {
						return
					}
				}
			}
		}
	}
}

// toLocal translates a contained world position into a storage position.
func (b BoundingBox) toLocal(p Pos) LocalPos {
	return LocalPos{
		uint(p[0] - b.min[0]),
		uint(p[1] - b.min[1]),
		uint(p[2] - b.min[2]),
	}
}

// toWorld translates a storage position back into world space, reporting
// false if it lies outside the box.
func (b BoundingBox) toWorld(l LocalPos) (Pos, bool) {
	dims := b.Dimensions()
	var p Pos
	for i := range 3 {
		if uint64(l[i]) >= uint64(dims[i]) {
			return Pos{}, false
		}
		p[i] = b.min[i] + int64(l[i])
	}
	return p, true
}

func (b BoundingBox) String() string {
	return fmt.Sprintf("BoundingBox { min: (%d, %d, %d), max: (%d, %d, %d) }",
		b.min[0], b.min[1], b.min[2], b.max[0], b.max[1], b.max[2])
}
