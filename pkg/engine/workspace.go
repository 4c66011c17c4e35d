package engine

import (
	"fmt"

	"github.com/deadsy/sdfx/sdf"

	"github.com/chazu/volume/pkg/mesh"
	"github.com/chazu/volume/pkg/sdfx"
	"github.com/chazu/volume/pkg/volume"
)

// MaxVolumeCells caps the number of cells a script may allocate in a
// single volume.
const MaxVolumeCells = 1 << 24

// SolidMeshCells is the marching cubes resolution used for bound solids.
const SolidMeshCells = 64

// Workspace holds the named volumes and solids produced by one evaluation.
// Volumes and solids have separate namespaces.
type Workspace struct {
	volumes    map[string]volume.Volume[int64]
	order      []string
	solids     map[string]sdf.SDF3
	solidOrder []string
}

// NewWorkspace creates an empty Workspace.
func NewWorkspace() *Workspace {
	return &Workspace{
		volumes: make(map[string]volume.Volume[int64]),
		solids:  make(map[string]sdf.SDF3),
	}
}

// Define binds name to v. Redefining a name replaces the volume but keeps
// its original position in Names.
func (w *Workspace) Define(name string, v volume.Volume[int64]) {
	if _, ok := w.volumes[name]; !ok {
		w.order = append(w.order, name)
	}
	w.volumes[name] = v
}

// Lookup returns the volume bound to name, or nil.
func (w *Workspace) Lookup(name string) volume.Volume[int64] {
	return w.volumes[name]
}

// MustLookup returns the volume bound to name, or panics.
func (w *Workspace) MustLookup(name string) volume.Volume[int64] {
	v := w.Lookup(name)
	if v == nil {
		panic(fmt.Sprintf("engine: no volume named %q", name))
	}
	return v
}

// Names returns the defined names in definition order.
func (w *Workspace) Names() []string {
	out := make([]string, len(w.order))
	copy(out, w.order)
	return out
}

// Len returns the number of defined volumes.
func (w *Workspace) Len() int {
	return len(w.order)
}

// DefineSolid binds name to a solid that is meshed directly instead of
// through a volume.
func (w *Workspace) DefineSolid(name string, s sdf.SDF3) {
	if _, ok := w.solids[name]; !ok {
		w.solidOrder = append(w.solidOrder, name)
	}
	w.solids[name] = s
}

// Solid returns the solid bound to name, or nil.
func (w *Workspace) Solid(name string) sdf.SDF3 {
	return w.solids[name]
}

// SolidNames returns the defined solid names in definition order.
func (w *Workspace) SolidNames() []string {
	out := make([]string, len(w.solidOrder))
	copy(out, w.solidOrder)
	return out
}

// Meshes returns one surface mesh per defined volume, treating non-zero
// cells as solid, followed by a marching cubes mesh per defined solid.
// Empty meshes are skipped.
func (w *Workspace) Meshes() []*mesh.Mesh {
	var out []*mesh.Mesh
	add := func(name string, m *mesh.Mesh) {
		if m.IsEmpty() {
			return
		}
		m.Name = name
		out = append(out, m)
	}
	for _, name := range w.order {
		add(name, mesh.Surface(w.volumes[name], func(c int64) bool { return c != 0 }))
	}
	for _, name := range w.solidOrder {
		add(name, sdfx.ToMesh(w.solids[name], SolidMeshCells))
	}
	return out
}
