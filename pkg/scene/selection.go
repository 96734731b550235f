package scene

import "slices"

// Selection is an ordered set of entity ids. The first id is the primary
// selection and the first boolean operand.
type Selection struct {
	ids []EntityID
}

// IDs returns a copy of the selected ids in selection order.
func (s *Selection) IDs() []EntityID {
	return slices.Clone(s.ids)
}

// Len returns the number of selected ids.
func (s *Selection) Len() int {
	return len(s.ids)
}

// Contains reports whether id is selected.
func (s *Selection) Contains(id EntityID) bool {
	return slices.Contains(s.ids, id)
}

// Primary returns the first selected id. ok is false when nothing is
// selected.
func (s *Selection) Primary() (id EntityID, ok bool) {
	if len(s.ids) == 0 {
		return EntityID{}, false
	}
	return s.ids[0], true
}

func (s *Selection) set(ids ...EntityID) {
	out := make([]EntityID, 0, len(ids))
	for _, id := range ids {
		if !slices.Contains(out, id) {
			out = append(out, id)
		}
	}
	s.ids = out
}

func (s *Selection) toggle(id EntityID) {
	if i := slices.Index(s.ids, id); i >= 0 {
		s.ids = slices.Delete(s.ids, i, i+1)
		return
	}
	s.ids = append(s.ids, id)
}

func (s *Selection) remove(drop map[EntityID]bool) {
	s.ids = slices.DeleteFunc(s.ids, func(id EntityID) bool { return drop[id] })
}

// Selection returns a copy of the current selection.
func (g *Graph) Selection() []EntityID {
	return g.selection.IDs()
}

// Select makes id the selection, or toggles it in or out of the selection
// when additive is true. A member of a group resolves to its outermost group.
func (g *Graph) Select(id EntityID, additive bool) error {
	if _, ok := g.entities[id]; !ok {
		return opError("select", []EntityID{id}, ErrNotFound, "")
	}
	top := g.TopLevel(id)
	if additive {
		g.selection.toggle(top)
	} else {
		g.selection.set(top)
	}
	return nil
}

// ClearSelection empties the selection.
func (g *Graph) ClearSelection() {
	g.selection.set()
}
