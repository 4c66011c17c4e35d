// Package sdfx connects volumes to the github.com/deadsy/sdfx SDF-based
// CAD library. Signed distance fields are sampled onto a lattice of cubic
// cells to fill volumes, and volume regions convert to and from sdfx boxes.
package sdfx

import (
	"errors"
	"fmt"
	"math"

	"github.com/deadsy/sdfx/render"
	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"
	"github.com/deadsy/sdfx/vec/v3i"

	"github.com/chazu/volume/pkg/mesh"
	"github.com/chazu/volume/pkg/volume"
	"github.com/chazu/volume/pkg/volume/heap"
)

// DefaultCellSize is the edge length of one voxel in model units.
const DefaultCellSize = 1.0

// defaultMeshCells controls marching cubes tessellation resolution.
const defaultMeshCells = 200

// ErrInvalidCellSize is returned for a cell size that is not a positive
// finite number.
var ErrInvalidCellSize = errors.New("sdfx: cell size must be positive and finite")

// Index converts an sdfx integer vector into a volume index.
func Index(v v3i.Vec) volume.Vec[int] {
	return volume.Vec[int]{v.X, v.Y, v.Z}
}

// FromIndex converts a world position into an sdfx integer vector. It
// reports false if a component does not fit in an int.
func FromIndex(p volume.Pos) (v3i.Vec, bool) {
	a, ok := volume.CastArray[int](p)
	return v3i.Vec{X: a[0], Y: a[1], Z: a[2]}, ok
}

// FromBox3 returns the smallest region of cells of edge cellSize that
// covers b. Cell i spans [i*cellSize, (i+1)*cellSize) on each axis.
func FromBox3(b sdf.Box3, cellSize float64) (volume.BoundingBox, error) {
	if !(cellSize > 0) || math.IsInf(cellSize, 1) {
		return volume.BoundingBox{}, fmt.Errorf("%w: %v", ErrInvalidCellSize, cellSize)
	}
	lo, ok := lattice(b.Min, cellSize, math.Floor)
	if !ok {
		return volume.BoundingBox{}, fmt.Errorf("%w: box min %v", volume.ErrCoordinateOverflow, b.Min)
	}
	hi, ok := lattice(b.Max, cellSize, math.Ceil)
	if !ok {
		return volume.BoundingBox{}, fmt.Errorf("%w: box max %v", volume.ErrCoordinateOverflow, b.Max)
	}
	return volume.NewBoundingBox(lo, hi)
}

// lattice maps a point onto cell coordinates using round.
func lattice(v v3.Vec, cellSize float64, round func(float64) float64) ([3]int64, bool) {
	var out [3]int64
	for i, c := range [3]float64{v.X, v.Y, v.Z} {
		f := round(c / cellSize)
		// -2^63 is exact in float64; 2^63 is the first value past MaxInt64.
		if math.IsNaN(f) || f < math.MinInt64 || f >= math.MaxInt64 {
			return out, false
		}
		out[i] = int64(f)
	}
	return out, true
}

// ToBox3 returns the sdfx box covering the cells of bb at the given cell
// size.
func ToBox3(bb volume.BoundingBox, cellSize float64) sdf.Box3 {
	lo, hi := bb.Min(), bb.Max()
	return sdf.Box3{
		Min: v3.Vec{X: float64(lo[0]) * cellSize, Y: float64(lo[1]) * cellSize, Z: float64(lo[2]) * cellSize},
		Max: v3.Vec{X: float64(hi[0]) * cellSize, Y: float64(hi[1]) * cellSize, Z: float64(hi[2]) * cellSize},
	}
}

// CellCenter returns the model-space center of the cell at p.
func CellCenter(p volume.Pos, cellSize float64) v3.Vec {
	return v3.Vec{
		X: (float64(p[0]) + 0.5) * cellSize,
		Y: (float64(p[1]) + 0.5) * cellSize,
		Z: (float64(p[2]) + 0.5) * cellSize,
	}
}

// Voxelize samples s at the center of every cell of dst and stores inside
// where the distance is not positive and outside elsewhere. It returns the
// number of inside cells.
func Voxelize[T any](dst volume.Volume[T], s sdf.SDF3, cellSize float64, inside, outside T) int {
	n := 0
	for p := range volume.Indices(dst) {
		slot := volume.GetMut(dst, p)
		if s.Evaluate(CellCenter(p, cellSize)) <= 0 {
			*slot = inside
			n++
		} else {
			*slot = outside
		}
	}
	return n
}

// Occupancy voxelizes s into a new volume just large enough to cover its
// bounding box.
func Occupancy(s sdf.SDF3, cellSize float64) (*heap.Volume[bool], error) {
	bb, err := FromBox3(s.BoundingBox(), cellSize)
	if err != nil {
		return nil, err
	}
	if bb.Capacity() > math.MaxInt32 {
		return nil, fmt.Errorf("sdfx: %s is too large to voxelize", bb)
	}
	v := heap.New(false, bb)
	Voxelize[bool](v, s, cellSize, true, false)
	return v, nil
}

// ToMesh polygonizes s with uniform marching cubes over cells steps along
// the longest side of its bounding box. A cells value below one uses the
// default resolution. Degenerate triangles are dropped.
func ToMesh(s sdf.SDF3, cells int) *mesh.Mesh {
	if cells < 1 {
		cells = defaultMeshCells
	}
	m := &mesh.Mesh{}
	for _, tri := range render.ToTriangles(s, render.NewMarchingCubesUniform(cells)) {
		n := tri.Normal()
		if math.IsNaN(n.X) || math.IsNaN(n.Y) || math.IsNaN(n.Z) {
			continue
		}
		var corners [3][3]float32
		for j := range corners {
			corners[j] = [3]float32{float32(tri[j].X), float32(tri[j].Y), float32(tri[j].Z)}
		}
		m.AddTriangle(corners, [3]float32{float32(n.X), float32(n.Y), float32(n.Z)})
	}
	return m
}
