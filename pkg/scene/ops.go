package scene

import (
	"slices"

	"github.com/chazu/carve/pkg/csg"
)

// ApplyBoolean combines the first two ids with op. Both must be distinct
// top-level solids; any further ids are ignored. The result takes the place
// of the first operand, inherits its transform and material, and becomes
// the sole selection. Dropped slivers are reported, not treated as failure.
func (g *Graph) ApplyBoolean(op csg.Op, ids []EntityID) (EntityID, csg.Report, error) {
	name := op.String()
	if len(ids) < 2 {
		return EntityID{}, csg.Report{}, opError(name, ids, ErrInsufficientSelection, "need two solids, have %d", len(ids))
	}
	a, b := ids[0], ids[1]
	if a == b {
		return EntityID{}, csg.Report{}, opError(name, ids[:2], ErrInvalidOperand, "%s used twice", a.Short())
	}
	for _, id := range ids[:2] {
		e := g.entities[id]
		switch {
		case e == nil:
			return EntityID{}, csg.Report{}, opError(name, ids[:2], ErrInvalidOperand, "%s does not exist", id.Short())
		case e.Kind != KindSolid:
			return EntityID{}, csg.Report{}, opError(name, ids[:2], ErrInvalidOperand, "%s is a %s", id.Short(), e.Kind)
		case !g.IsTopLevel(id):
			return EntityID{}, csg.Report{}, opError(name, ids[:2], ErrInvalidOperand, "%s is inside a group", id.Short())
		}
	}

	ea, eb := g.entities[a], g.entities[b]
	placeA := g.WorldMatrix(a)
	sa, report := csg.FromMesh(ea.Solid().Mesh, placeA, a.String())
	sb, rb := csg.FromMesh(eb.Solid().Mesh, g.WorldMatrix(b), b.String())
	report.Merge(rb)

	result, rr, err := csg.Apply(op, sa, sb)
	if err != nil {
		return EntityID{}, report, opError(name, ids[:2], ErrInvalidOperand, "%v", err)
	}
	report.Merge(rr)
	if result.IsEmpty() {
		return EntityID{}, report, opError(name, ids[:2], ErrDegenerateResult, "result has no polygons")
	}

	id := NewEntityID()
	g.entities[id] = &Entity{
		ID:        id,
		Kind:      KindSolid,
		Name:      name,
		Transform: ea.Transform,
		Data: SolidData{
			Mesh:     csg.ToMesh(result, placeA),
			Material: ea.Solid().Material,
		},
	}
	roots := slices.Clone(g.roots)
	roots[slices.Index(roots, a)] = id
	roots = slices.DeleteFunc(roots, func(r EntityID) bool { return r == b })
	g.roots = roots
	delete(g.entities, a)
	delete(g.entities, b)
	g.selection.set(id)
	g.version++
	return id, report, nil
}

// Group wraps the given top-level entities in a new group with an identity
// transform, placed where the earliest of them stood. Duplicate ids are
// ignored. Children keep their ids and world placement; the new group
// becomes the selection.
func (g *Graph) Group(ids []EntityID) (EntityID, error) {
	members := dedup(ids)
	if len(members) < 2 {
		return EntityID{}, opError("group", ids, ErrInsufficientSelection, "need two entities, have %d", len(members))
	}
	for _, id := range members {
		if _, ok := g.entities[id]; !ok {
			return EntityID{}, opError("group", members, ErrNotFound, "%s", id.Short())
		}
		if !g.IsTopLevel(id) {
			return EntityID{}, opError("group", members, ErrInvalidOperand, "%s is inside a group", id.Short())
		}
	}

	gid := NewEntityID()
	// Relative to an identity group a child's local transform equals its
	// world transform, which is what it already holds at the top level.
	g.entities[gid] = &Entity{
		ID:        gid,
		Kind:      KindGroup,
		Transform: Identity(),
		Data:      GroupData{Children: members},
	}
	at := len(g.roots)
	for _, id := range members {
		at = min(at, slices.Index(g.roots, id))
	}
	roots := slices.DeleteFunc(slices.Clone(g.roots), func(r EntityID) bool {
		return slices.Contains(members, r)
	})
	g.roots = slices.Insert(roots, at, gid)
	for _, id := range members {
		g.parent[id] = gid
	}
	g.selection.set(gid)
	g.version++
	return gid, nil
}

// Ungroup dissolves a group. Its children take its place in the owning list,
// each with its transform re-expressed relative to that owner so its world
// placement is unchanged. The released children become the selection.
func (g *Graph) Ungroup(id EntityID) ([]EntityID, error) {
	e := g.entities[id]
	if e == nil {
		return nil, opError("ungroup", []EntityID{id}, ErrNotFound, "")
	}
	if e.Kind != KindGroup {
		return nil, opError("ungroup", []EntityID{id}, ErrNotAGroup, "%s is a %s", id.Short(), e.Kind)
	}

	children := slices.Clone(e.Children())
	locals := make([]Transform, len(children))
	for i, c := range children {
		ct := g.entities[c].Transform
		if e.Transform == Identity() {
			locals[i] = ct
			continue
		}
		t, ok := Decompose(e.Transform.Matrix().Mul4(ct.Matrix()))
		if !ok {
			return nil, opError("ungroup", []EntityID{id}, ErrDegenerateResult, "%s has a singular placement", c.Short())
		}
		locals[i] = t
	}

	owner := g.owner(id)
	sibs := slices.Clone(g.siblings(id))
	i := slices.Index(sibs, id)
	sibs = slices.Replace(sibs, i, i+1, children...)
	g.setSiblings(owner, sibs)
	for i, c := range children {
		g.entities[c].Transform = locals[i]
		if owner.IsZero() {
			delete(g.parent, c)
		} else {
			g.parent[c] = owner
		}
	}
	delete(g.entities, id)
	delete(g.parent, id)

	sel := make([]EntityID, len(children))
	for i, c := range children {
		sel[i] = g.TopLevel(c)
	}
	g.selection.set(sel...)
	g.version++
	return children, nil
}

// Delete removes the given entities together with everything they contain
// and drops them from the selection. It returns the number of entities
// removed.
func (g *Graph) Delete(ids []EntityID) (int, error) {
	if len(ids) == 0 {
		return 0, opError("delete", nil, ErrInsufficientSelection, "nothing to delete")
	}
	for _, id := range ids {
		if _, ok := g.entities[id]; !ok {
			return 0, opError("delete", ids, ErrNotFound, "%s", id.Short())
		}
	}

	doomed := make(map[EntityID]bool)
	for _, id := range ids {
		for _, d := range g.Descendants(id) {
			doomed[d] = true
		}
	}
	for _, id := range dedup(ids) {
		owner := g.owner(id)
		if doomed[owner] {
			continue
		}
		sibs := slices.DeleteFunc(slices.Clone(g.siblings(id)), func(s EntityID) bool { return s == id })
		g.setSiblings(owner, sibs)
	}
	for id := range doomed {
		delete(g.entities, id)
		delete(g.parent, id)
	}
	g.selection.remove(doomed)
	g.version++
	return len(doomed), nil
}

func dedup(ids []EntityID) []EntityID {
	out := make([]EntityID, 0, len(ids))
	for _, id := range ids {
		if !slices.Contains(out, id) {
			out = append(out, id)
		}
	}
	return out
}
