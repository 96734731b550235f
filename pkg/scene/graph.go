package scene

import (
	"fmt"
	"iter"
	"slices"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/chazu/carve/pkg/kernel"
)

// Graph is the arena of entities making up a scene. Entities reference each
// other by id only. Graph is not safe for concurrent use; callers serialise
// mutations.
type Graph struct {
	entities  map[EntityID]*Entity
	roots     []EntityID
	parent    map[EntityID]EntityID // absent for top-level entities
	selection Selection
	version   uint64
	palette   int
}

// New creates an empty scene.
func New() *Graph {
	return &Graph{
		entities: make(map[EntityID]*Entity),
		parent:   make(map[EntityID]EntityID),
	}
}

// AddSolid inserts a new top-level solid at the end of the scene and returns
// its id. A zero Material gets the next palette colour.
func (g *Graph) AddSolid(name string, mesh *kernel.Mesh, mat Material, t Transform) (EntityID, error) {
	if mesh == nil || mesh.IsEmpty() {
		return EntityID{}, opError("add", nil, ErrDegenerateResult, "solid %q has no faces", name)
	}
	if !t.Valid() {
		return EntityID{}, opError("add", nil, ErrInvalidOperand, "scale %v is not invertible", t.Scale)
	}
	if mat.Color == "" {
		mat.Color = Palette[g.palette%len(Palette)]
		g.palette++
	}
	id := NewEntityID()
	g.entities[id] = &Entity{
		ID:        id,
		Kind:      KindSolid,
		Name:      name,
		Transform: t,
		Data:      SolidData{Mesh: mesh, Material: mat},
	}
	g.roots = append(g.roots, id)
	g.version++
	return id, nil
}

// Get returns the entity with the given id, or nil.
func (g *Graph) Get(id EntityID) *Entity {
	return g.entities[id]
}

// Lookup returns the first entity with the given name in traversal order, or
// nil.
func (g *Graph) Lookup(name string) *Entity {
	for id := range g.walk() {
		if e := g.entities[id]; e.Name == name {
			return e
		}
	}
	return nil
}

// Len returns the total number of entities, including group members.
func (g *Graph) Len() int {
	return len(g.entities)
}

// Roots returns the top-level entity ids in order.
func (g *Graph) Roots() []EntityID {
	return slices.Clone(g.roots)
}

// Version increases on every successful mutation.
func (g *Graph) Version() uint64 {
	return g.version
}

// Parent returns the owning group of id. ok is false for top-level entities
// and unknown ids.
func (g *Graph) Parent(id EntityID) (parent EntityID, ok bool) {
	parent, ok = g.parent[id]
	return parent, ok
}

// IsTopLevel reports whether id is an existing top-level entity.
func (g *Graph) IsTopLevel(id EntityID) bool {
	if _, ok := g.entities[id]; !ok {
		return false
	}
	_, nested := g.parent[id]
	return !nested
}

// TopLevel returns the outermost group containing id, or id itself when it
// is top-level.
func (g *Graph) TopLevel(id EntityID) EntityID {
	for {
		p, ok := g.parent[id]
		if !ok {
			return id
		}
		id = p
	}
}

// WorldMatrix returns the product of every transform from the top level down
// to id.
func (g *Graph) WorldMatrix(id EntityID) mgl64.Mat4 {
	e := g.entities[id]
	if e == nil {
		return mgl64.Ident4()
	}
	m := e.Transform.Matrix()
	for p, ok := g.parent[id]; ok; p, ok = g.parent[p] {
		m = g.entities[p].Transform.Matrix().Mul4(m)
	}
	return m
}

// Descendants returns id followed by every entity below it, depth first.
func (g *Graph) Descendants(id EntityID) []EntityID {
	var out []EntityID
	var visit func(EntityID)
	visit = func(id EntityID) {
		out = append(out, id)
		if e := g.entities[id]; e != nil {
			for _, c := range e.Children() {
				visit(c)
			}
		}
	}
	visit(id)
	return out
}

// walk yields every entity id depth first, top-level entities in order.
func (g *Graph) walk() iter.Seq[EntityID] {
	return func(yield func(EntityID) bool) {
		for _, r := range g.roots {
			for _, id := range g.Descendants(r) {
				if !yield(id) {
					return
				}
			}
		}
	}
}

// siblings returns the ordered list that owns id: the group's children or
// the top-level list.
func (g *Graph) siblings(id EntityID) []EntityID {
	if p, ok := g.parent[id]; ok {
		return g.entities[p].Children()
	}
	return g.roots
}

// setSiblings replaces the list that owns entities under owner. The zero id
// stands for the top level.
func (g *Graph) setSiblings(owner EntityID, ids []EntityID) {
	if owner.IsZero() {
		g.roots = ids
		return
	}
	g.entities[owner].Data = GroupData{Children: ids}
}

// owner returns the group owning id, or the zero id at the top level.
func (g *Graph) owner(id EntityID) EntityID {
	return g.parent[id]
}

// SetTransform replaces the local transform of id.
func (g *Graph) SetTransform(id EntityID, t Transform) error {
	e := g.entities[id]
	if e == nil {
		return opError("transform", []EntityID{id}, ErrNotFound, "")
	}
	if !t.Valid() {
		return opError("transform", []EntityID{id}, ErrInvalidOperand, "scale %v is not invertible", t.Scale)
	}
	e.Transform = t
	g.version++
	return nil
}

// Rename sets the display name of id.
func (g *Graph) Rename(id EntityID, name string) error {
	e := g.entities[id]
	if e == nil {
		return opError("rename", []EntityID{id}, ErrNotFound, "")
	}
	e.Name = name
	g.version++
	return nil
}

// SetHole marks a solid as a hole or back as a regular solid.
func (g *Graph) SetHole(id EntityID, hole bool) error {
	return g.updateSolid("hole", id, func(d *SolidData) { d.IsHole = hole })
}

// SetMaterial replaces a solid's material.
func (g *Graph) SetMaterial(id EntityID, mat Material) error {
	return g.updateSolid("material", id, func(d *SolidData) { d.Material = mat })
}

func (g *Graph) updateSolid(op string, id EntityID, fn func(*SolidData)) error {
	e := g.entities[id]
	if e == nil {
		return opError(op, []EntityID{id}, ErrNotFound, "")
	}
	d, ok := e.Data.(SolidData)
	if !ok {
		return opError(op, []EntityID{id}, ErrInvalidOperand, "%s is a %s", id.Short(), e.Kind)
	}
	fn(&d)
	e.Data = d
	g.version++
	return nil
}

func (g *Graph) String() string {
	return fmt.Sprintf("scene(%d entities, %d top-level, %d selected)", len(g.entities), len(g.roots), g.selection.Len())
}
