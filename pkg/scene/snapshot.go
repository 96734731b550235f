package scene

import (
	"github.com/go-gl/mathgl/mgl64"

	"github.com/chazu/carve/pkg/kernel"
)

// Snapshot is a read-only view of the scene with world transforms resolved.
// Meshes are shared with the graph and must not be modified.
type Snapshot struct {
	Version   uint64       `json:"version" yaml:"version"`
	Roots     []EntityID   `json:"roots" yaml:"roots"`
	Selection []EntityID   `json:"selection" yaml:"selection"`
	Entities  []EntityView `json:"entities" yaml:"entities"`
}

// EntityView describes one entity inside a Snapshot.
type EntityView struct {
	ID       EntityID   `json:"id" yaml:"id"`
	Kind     Kind       `json:"kind" yaml:"kind"`
	Name     string     `json:"name,omitempty" yaml:"name,omitempty"`
	Parent   *EntityID  `json:"parent,omitempty" yaml:"parent,omitempty"`
	Children []EntityID `json:"children,omitempty" yaml:"children,omitempty"`
	Local    Transform  `json:"local" yaml:"local"`
	World    Transform  `json:"world" yaml:"world"`
	Selected bool       `json:"selected" yaml:"selected"`

	Material  *Material `json:"material,omitempty" yaml:"material,omitempty"`
	IsHole    bool      `json:"is_hole,omitempty" yaml:"is_hole,omitempty"`
	Faces     int       `json:"faces,omitempty" yaml:"faces,omitempty"`
	Triangles int       `json:"triangles,omitempty" yaml:"triangles,omitempty"`

	WorldMatrix mgl64.Mat4   `json:"-" yaml:"-"`
	Mesh        *kernel.Mesh `json:"-" yaml:"-"`
}

// Snapshot captures the current state of the scene. Entities are listed
// depth first with top-level entities in order.
func (g *Graph) Snapshot() Snapshot {
	s := Snapshot{
		Version:   g.version,
		Roots:     g.Roots(),
		Selection: g.selection.IDs(),
	}
	for id := range g.walk() {
		e := g.entities[id]
		world := g.WorldMatrix(id)
		wt, ok := Decompose(world)
		if !ok {
			wt = e.Transform
		}
		v := EntityView{
			ID:          id,
			Kind:        e.Kind,
			Name:        e.Name,
			Local:       e.Transform,
			World:       wt,
			WorldMatrix: world,
			Selected:    g.selection.Contains(id),
		}
		if p, ok := g.parent[id]; ok {
			v.Parent = &p
		}
		switch d := e.Data.(type) {
		case SolidData:
			mat := d.Material
			v.Material = &mat
			v.IsHole = d.IsHole
			v.Faces = d.Mesh.FaceCount()
			v.Triangles = d.Mesh.TriangleCount()
			v.Mesh = d.Mesh
		case GroupData:
			v.Children = append([]EntityID(nil), d.Children...)
		}
		s.Entities = append(s.Entities, v)
	}
	return s
}

// Find returns the view of id, or nil.
func (s *Snapshot) Find(id EntityID) *EntityView {
	for i := range s.Entities {
		if s.Entities[i].ID == id {
			return &s.Entities[i]
		}
	}
	return nil
}
