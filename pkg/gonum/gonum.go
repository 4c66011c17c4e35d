// Package gonum converts between volume coordinates and the
// gonum.org/v1/gonum/spatial/r3 vector and box types. Every cell is a unit
// cube whose minimum corner is its position.
package gonum

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/chazu/volume/pkg/volume"
)

// Index converts v into a world position, truncating each component
// toward zero. It reports false for NaN, infinities and values outside the
// int64 range.
func Index(v r3.Vec) (volume.Pos, bool) {
	return toPos(v, math.Trunc)
}

// Cell returns the position of the cell containing v.
func Cell(v r3.Vec) (volume.Pos, bool) {
	return toPos(v, math.Floor)
}

func toPos(v r3.Vec, round func(float64) float64) (volume.Pos, bool) {
	var p volume.Pos
	for i, c := range [3]float64{v.X, v.Y, v.Z} {
		f := round(c)
		if math.IsNaN(f) || f < math.MinInt64 || f >= math.MaxInt64 {
			return volume.Pos{}, false
		}
		p[i] = int64(f)
	}
	return p, true
}

// Vec returns the corner of the cell at p as an r3.Vec.
func Vec(p volume.Pos) r3.Vec {
	return r3.Vec{X: float64(p[0]), Y: float64(p[1]), Z: float64(p[2])}
}

// Center returns the center of the cell at p.
func Center(p volume.Pos) r3.Vec {
	return r3.Add(Vec(p), r3.Vec{X: 0.5, Y: 0.5, Z: 0.5})
}

// FromBox returns the smallest region whose cells cover b.
func FromBox(b r3.Box) (volume.BoundingBox, error) {
	lo, ok := toPos(b.Min, math.Floor)
	if !ok {
		return volume.BoundingBox{}, fmt.Errorf("gonum: box min %v: %w", b.Min, volume.ErrCoordinateOverflow)
	}
	hi, ok := toPos(b.Max, math.Ceil)
	if !ok {
		return volume.BoundingBox{}, fmt.Errorf("gonum: box max %v: %w", b.Max, volume.ErrCoordinateOverflow)
	}
	return volume.NewBoundingBox(lo, hi)
}

// ToBox returns the box covered by the cells of bb.
func ToBox(bb volume.BoundingBox) r3.Box {
	return r3.Box{Min: Vec(bb.Min()), Max: Vec(bb.Max())}
}
