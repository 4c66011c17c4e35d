// Package heap implements a heap-allocated volume backend. Its region is
// chosen at construction time and may sit anywhere in int64 space,
// including negative coordinates.
package heap

import (
	"errors"
	"fmt"
	"math"

	"github.com/chazu/volume/pkg/volume"
)

// Compile-time interface check.
var _ volume.Volume[int] = (*Volume[int])(nil)

// ErrRaggedLayout is returned by FromLayout when the nested slices are not
// rectangular.
var ErrRaggedLayout = errors.New("heap: layout is not rectangular")

// Volume stores one T per position of its region in a single slice. Cells
// are laid out with X varying fastest, matching iteration order.
type Volume[T any] struct {
	bounds volume.BoundingBox
	dims   [3]int
	cells  []T
}

// New allocates a volume covering bounds with every cell set to fill.
// It panics if the region holds more cells than a slice can address.
func New[T any](fill T, bounds volume.BoundingBox) *Volume[T] {
	v := alloc[T](bounds)
	for i := range v.cells {
		v.cells[i] = fill
	}
	return v
}

// Filled allocates a volume anchored at the origin with the given
// dimensions. Negative dimensions extend the region below the origin.
func Filled[T any](dims [3]int, fill T) *Volume[T] {
	return New(fill, volume.MustBoundingBox([3]int{}, dims))
}

// FromLayout builds a volume anchored at the origin from a literal nested
// layout indexed as layout[x][y][z]. The cells are copied.
func FromLayout[T any](layout [][][]T) (*Volume[T], error) {
	var dims [3]int
	dims[0] = len(layout)
	if dims[0] > 0 {
		dims[1] = len(layout[0])
		if dims[1] > 0 {
			dims[2] = len(layout[0][0])
		}
	}
	for x, plane := range layout {
		if len(plane) != dims[1] {
			return nil, fmt.Errorf("%w: x=%d has %d rows, want %d", ErrRaggedLayout, x, len(plane), dims[1])
		}
		for y, row := range plane {
			if len(row) != dims[2] {
				return nil, fmt.Errorf("%w: x=%d y=%d has %d cells, want %d", ErrRaggedLayout, x, y, len(row), dims[2])
			}
		}
	}

	v := alloc[T](volume.MustBoundingBox([3]int{}, dims))
	for x, plane := range layout {
		for y, row := range plane {
			for z, item := range row {
				v.cells[v.offset(volume.LocalPos{uint(x), uint(y), uint(z)})] = item
			}
		}
	}
	return v, nil
}

// FromVolume copies any volume, including a stack volume or a subvolume,
// into a new heap volume with the same region.
func FromVolume[T any](src volume.Volume[T]) *Volume[T] {
	v := alloc[T](src.BoundingBox())
	i := 0
	for item := range volume.Values(src) {
		v.cells[i] = item
		i++
	}
	return v
}

func alloc[T any](bounds volume.BoundingBox) *Volume[T] {
	n := bounds.Capacity()
	if n > math.MaxInt {
		panic(fmt.Sprintf("heap: %s holds %d cells, more than a slice can address", bounds, n))
	}
	d := bounds.Dimensions()
	return &Volume[T]{
		bounds: bounds,
		dims:   [3]int{int(d[0]), int(d[1]), int(d[2])},
		cells:  make([]T, n),
	}
}

// offset returns the slice index of an in-range local position.
func (v *Volume[T]) offset(p volume.LocalPos) int {
	return int(p[0]) + v.dims[0]*(int(p[1])+v.dims[1]*int(p[2]))
}

// BoundingBox returns the region the volume covers.
func (v *Volume[T]) BoundingBox() volume.BoundingBox {
	return v.bounds
}

// Slot returns the cell at local position p, or nil if p is outside
// storage.
func (v *Volume[T]) Slot(p volume.LocalPos) *T {
	for i := range 3 {
		if p[i] >= uint(v.dims[i]) {
			return nil
		}
	}
	return &v.cells[v.offset(p)]
}

// Len returns the number of cells.
func (v *Volume[T]) Len() int {
	return len(v.cells)
}

// Clone returns a deep copy of the storage. Elements are copied by
// assignment.
func (v *Volume[T]) Clone() *Volume[T] {
	out := &Volume[T]{bounds: v.bounds, dims: v.dims, cells: make([]T, len(v.cells))}
	copy(out.cells, v.cells)
	return out
}

// Relocate moves the region so that its minimum corner is newMin. The
// storage is not touched; every cell keeps its local position.
func (v *Volume[T]) Relocate(newMin volume.Pos) error {
	shift, ok := newMin.Sub(v.bounds.Min())
	if !ok {
		return fmt.Errorf("heap: relocate to %v: %w", newMin, volume.ErrCoordinateOverflow)
	}
	moved, ok := v.bounds.Translate(shift)
	if !ok {
		return fmt.Errorf("heap: relocate to %v: %w", newMin, volume.ErrCoordinateOverflow)
	}
	v.bounds = moved
	return nil
}

// Resize returns a new volume covering bounds. Cells inside both regions
// keep their values; all other cells are set to fill.
func (v *Volume[T]) Resize(bounds volume.BoundingBox, fill T) *Volume[T] {
	out := New(fill, bounds)
	volume.Copy[T](out, v)
	return out
}

func (v *Volume[T]) String() string {
	return fmt.Sprintf("HeapVolume { bounds: %s, capacity: %d }", v.bounds, len(v.cells))
}

// Equal reports whether a and b cover the same region with pairwise equal
// elements.
func Equal[T comparable](a, b *Volume[T]) bool {
	return volume.Equal[T](a, b)
}
