// Package mesh builds triangle meshes from voxel volumes.
package mesh

import (
	"github.com/chazu/volume/pkg/volume"
)

// Mesh is a triangle mesh suitable for rendering.
// All arrays are flat: vertices has 3 floats per vertex (x,y,z),
// normals has 3 floats per vertex, indices has 3 uint32s per triangle.
type Mesh struct {
	Vertices []float32 `json:"vertices"` // [x0,y0,z0, x1,y1,z1, ...]
	Normals  []float32 `json:"normals"`  // [nx0,ny0,nz0, ...]
	Indices  []uint32  `json:"indices"`  // [i0,i1,i2, ...] triangles
	Name     string    `json:"name"`     // volume the mesh was built from
}

// VertexCount returns the number of vertices.
func (m *Mesh) VertexCount() int {
	return len(m.Vertices) / 3
}

// TriangleCount returns the number of triangles.
func (m *Mesh) TriangleCount() int {
	return len(m.Indices) / 3
}

// IsEmpty returns true if the mesh has no geometry.
func (m *Mesh) IsEmpty() bool {
	return len(m.Vertices) == 0
}

type face struct {
	dir     volume.Pos
	corners [4][3]float32 // counter-clockwise seen from outside
}

var faces = [6]face{
	{dir: volume.Pos{1, 0, 0}, corners: [4][3]float32{{1, 0, 0}, {1, 1, 0}, {1, 1, 1}, {1, 0, 1}}},
	{dir: volume.Pos{-1, 0, 0}, corners: [4][3]float32{{0, 0, 0}, {0, 0, 1}, {0, 1, 1}, {0, 1, 0}}},
	{dir: volume.Pos{0, 1, 0}, corners: [4][3]float32{{0, 1, 0}, {0, 1, 1}, {1, 1, 1}, {1, 1, 0}}},
	{dir: volume.Pos{0, -1, 0}, corners: [4][3]float32{{0, 0, 0}, {1, 0, 0}, {1, 0, 1}, {0, 0, 1}}},
	{dir: volume.Pos{0, 0, 1}, corners: [4][3]float32{{0, 0, 1}, {1, 0, 1}, {1, 1, 1}, {0, 1, 1}}},
	{dir: volume.Pos{0, 0, -1}, corners: [4][3]float32{{0, 0, 0}, {0, 1, 0}, {1, 1, 0}, {1, 0, 0}}},
}

// Surface returns the boundary of the cells of v for which occupied is
// true. Every cell is a unit cube at its world position; a face is emitted
// wherever an occupied cell borders an unoccupied cell or the edge of the
// region. Faces are not merged.
func Surface[T any](v volume.Volume[T], occupied func(T) bool) *Mesh {
	m := &Mesh{}
	for p, item := range volume.All(v) {
		if !occupied(item) {
			continue
		}
		for _, f := range faces {
			if q, ok := p.Add(f.dir); ok {
				if n, ok := volume.Get(v, q); ok && occupied(n) {
					continue
				}
			}
			m.addFace(p, f)
		}
	}
	return m
}

func (m *Mesh) addFace(p volume.Pos, f face) {
	base := uint32(m.VertexCount())
	for _, c := range f.corners {
		m.Vertices = append(m.Vertices,
			float32(p[0])+c[0], float32(p[1])+c[1], float32(p[2])+c[2])
		m.Normals = append(m.Normals,
			float32(f.dir[0]), float32(f.dir[1]), float32(f.dir[2]))
	}
	m.Indices = append(m.Indices, base, base+1, base+2, base, base+2, base+3)
}

// AddTriangle appends one triangle with a flat normal. Its vertices are
// not shared with other triangles.
func (m *Mesh) AddTriangle(tri [3][3]float32, normal [3]float32) {
	base := uint32(m.VertexCount())
	for _, v := range tri {
		m.Vertices = append(m.Vertices, v[0], v[1], v[2])
		m.Normals = append(m.Normals, normal[0], normal[1], normal[2])
	}
	m.Indices = append(m.Indices, base, base+1, base+2)
}

// Bounds returns the axis-aligned extent of the vertices as min and max
// corners. Both are zero for an empty mesh.
func (m *Mesh) Bounds() (lo, hi [3]float32) {
	for i := 0; i+2 < len(m.Vertices); i += 3 {
		for a := range 3 {
			c := m.Vertices[i+a]
			if i == 0 || c < lo[a] {
				lo[a] = c
			}
			if i == 0 || c > hi[a] {
				hi[a] = c
			}
		}
	}
	return lo, hi
}
