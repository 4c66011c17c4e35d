// Package stack implements a fixed-size volume backend over caller-owned
// storage. Its dimensions are fixed when it is created and validated once;
// the backend itself never allocates, grows or shrinks. Declaring the
// backing array as a local or a struct field keeps the whole volume off
// the heap:
//
//	var cells [4 * 4 * 4]uint8
//	v, err := stack.New([3]int{4, 4, 4}, cells[:], 0)
//
// A stack volume is always anchored at the origin.
package stack

import (
	"errors"
	"fmt"
	"math"
	"math/bits"

	"github.com/chazu/volume/pkg/volume"
)

// Compile-time interface check.
var _ volume.Volume[int] = Volume[int]{}

var (
	// ErrInvalidDims is returned for negative dimensions or dimensions
	// whose cell count does not fit in an int.
	ErrInvalidDims = errors.New("stack: dimensions must be non-negative")
	// ErrBackingSize is returned when the backing slice does not hold
	// exactly one cell per position.
	ErrBackingSize = errors.New("stack: backing storage does not match dimensions")
)

// Volume is a fixed-size volume anchored at the origin. It is a small value
// type; copies share the same backing storage.
type Volume[T any] struct {
	dims  [3]int
	cells []T
}

// Over wraps backing as a volume with the given dimensions, keeping its
// current contents. Cells are laid out with X varying fastest.
func Over[T any](dims [3]int, backing []T) (Volume[T], error) {
	n, ok := cellCount(dims)
	if !ok {
		return Volume[T]{}, fmt.Errorf("%w: %v", ErrInvalidDims, dims)
	}
	if n != len(backing) {
		return Volume[T]{}, fmt.Errorf("%w: %v needs %d cells, got %d", ErrBackingSize, dims, n, len(backing))
	}
	return Volume[T]{dims: dims, cells: backing}, nil
}

// cellCount returns the product of dims. It fails for negative dimensions
// and for products that do not fit in an int.
func cellCount(dims [3]int) (int, bool) {
	for _, d := range dims {
		if d < 0 {
			return 0, false
		}
		if d == 0 {
			return 0, true
		}
	}
	n := uint(1)
	for _, d := range dims {
		hi, lo := bits.Mul(n, uint(d))
		if hi != 0 || lo > math.MaxInt {
			return 0, false
		}
		n = lo
	}
	return int(n), true
}

// New wraps backing like Over and sets every cell to fill.
func New[T any](dims [3]int, backing []T, fill T) (Volume[T], error) {
	v, err := Over(dims, backing)
	if err != nil {
		return Volume[T]{}, err
	}
	for i := range v.cells {
		v.cells[i] = fill
	}
	return v, nil
}

// Dims returns the per-axis extents.
func (v Volume[T]) Dims() [3]int {
	return v.dims
}

// BoundingBox returns the region [0,0,0]–Dims().
func (v Volume[T]) BoundingBox() volume.BoundingBox {
	return volume.MustBoundingBox([3]int{}, v.dims)
}

// Slot returns the cell at local position p, or nil if p is outside the
// fixed dimensions.
func (v Volume[T]) Slot(p volume.LocalPos) *T {
	for i := range 3 {
		if p[i] >= uint(v.dims[i]) {
			return nil
		}
	}
	return &v.cells[int(p[0])+v.dims[0]*(int(p[1])+v.dims[1]*int(p[2]))]
}

// Cells returns the backing storage.
func (v Volume[T]) Cells() []T {
	return v.cells
}

func (v Volume[T]) String() string {
	return fmt.Sprintf("StackVolume { dims: %v, capacity: %d }", v.dims, len(v.cells))
}
