package scene

import "fmt"

// ValidationSeverity indicates whether a finding breaks a graph invariant or
// is merely informational.
type ValidationSeverity int

const (
	SeverityError   ValidationSeverity = iota // invariant violated
	SeverityWarning                           // informational
)

func (s ValidationSeverity) String() string {
	switch s {
	case SeverityError:
		return "error"
	case SeverityWarning:
		return "warning"
	default:
		return fmt.Sprintf("ValidationSeverity(%d)", int(s))
	}
}

// ValidationError describes a single validation finding.
type ValidationError struct {
	EntityID EntityID           // which entity has the problem (zero if graph-level)
	Message  string             // human-readable description
	Severity ValidationSeverity // error or warning
}

func (e ValidationError) Error() string {
	if e.EntityID.IsZero() {
		return fmt.Sprintf("[%s] %s", e.Severity, e.Message)
	}
	return fmt.Sprintf("[%s] entity %s: %s", e.Severity, e.EntityID.Short(), e.Message)
}

// Validate checks the structural invariants of the graph and returns every
// finding. No error-severity findings means the graph is consistent. It
// never mutates the graph.
func Validate(g *Graph) []ValidationError {
	var errs []ValidationError
	errs = append(errs, validateAcyclic(g)...)
	errs = append(errs, validateReferences(g)...)
	errs = append(errs, validateOwnership(g)...)
	errs = append(errs, validateSelection(g)...)
	errs = append(errs, validatePayloads(g)...)
	return errs
}

// HasErrors reports whether errs contains an error-severity finding.
func HasErrors(errs []ValidationError) bool {
	for _, e := range errs {
		if e.Severity == SeverityError {
			return true
		}
	}
	return false
}

// validateAcyclic checks for cycles through group children using DFS with
// 3-color marking.
func validateAcyclic(g *Graph) []ValidationError {
	const (
		white = iota
		gray
		black
	)

	color := make(map[EntityID]int)
	var errs []ValidationError

	var visit func(id EntityID) bool // returns true if cycle found
	visit = func(id EntityID) bool {
		switch color[id] {
		case black:
			return false
		case gray:
			errs = append(errs, ValidationError{
				EntityID: id,
				Message:  fmt.Sprintf("cycle detected: group %s contains itself", id.Short()),
				Severity: SeverityError,
			})
			return true
		}

		color[id] = gray
		if e, ok := g.entities[id]; ok {
			for _, c := range e.Children() {
				if visit(c) {
					return true
				}
			}
		}
		color[id] = black
		return false
	}

	for id := range g.entities {
		if color[id] == white && visit(id) {
			break
		}
	}
	return errs
}

// validateReferences checks that every id stored in the roots, a group's
// children or the parent index names an existing entity.
func validateReferences(g *Graph) []ValidationError {
	var errs []ValidationError

	for _, rid := range g.roots {
		if _, ok := g.entities[rid]; !ok {
			errs = append(errs, ValidationError{
				Message:  fmt.Sprintf("root reference %s does not exist", rid.Short()),
				Severity: SeverityError,
			})
		}
	}
	for _, e := range g.entities {
		for _, c := range e.Children() {
			if _, ok := g.entities[c]; !ok {
				errs = append(errs, ValidationError{
					EntityID: e.ID,
					Message:  fmt.Sprintf("child reference %s does not exist", c.Short()),
					Severity: SeverityError,
				})
			}
		}
	}
	for child, parent := range g.parent {
		if _, ok := g.entities[child]; !ok {
			errs = append(errs, ValidationError{
				Message:  fmt.Sprintf("parent index lists deleted entity %s", child.Short()),
				Severity: SeverityError,
			})
		}
		if p, ok := g.entities[parent]; !ok || p.Kind != KindGroup {
			errs = append(errs, ValidationError{
				EntityID: child,
				Message:  fmt.Sprintf("parent %s is not an existing group", parent.Short()),
				Severity: SeverityError,
			})
		}
	}
	return errs
}

// validateOwnership checks that every entity is listed exactly once, either
// at the top level or in one group, and that the parent index agrees.
func validateOwnership(g *Graph) []ValidationError {
	var errs []ValidationError

	owners := make(map[EntityID][]EntityID) // zero id = top level
	for _, rid := range g.roots {
		owners[rid] = append(owners[rid], EntityID{})
	}
	for _, e := range g.entities {
		for _, c := range e.Children() {
			owners[c] = append(owners[c], e.ID)
		}
	}

	for id := range g.entities {
		own := owners[id]
		switch {
		case len(own) == 0:
			errs = append(errs, ValidationError{
				EntityID: id,
				Message:  "entity has no owner (orphan)",
				Severity: SeverityError,
			})
		case len(own) > 1:
			errs = append(errs, ValidationError{
				EntityID: id,
				Message:  fmt.Sprintf("entity is owned %d times", len(own)),
				Severity: SeverityError,
			})
		default:
			parent, nested := g.parent[id]
			if own[0].IsZero() && nested {
				errs = append(errs, ValidationError{
					EntityID: id,
					Message:  fmt.Sprintf("top-level entity has parent %s", parent.Short()),
					Severity: SeverityError,
				})
			}
			if !own[0].IsZero() && parent != own[0] {
				errs = append(errs, ValidationError{
					EntityID: id,
					Message:  fmt.Sprintf("listed in group %s but parent index says %q", own[0].Short(), parent.Short()),
					Severity: SeverityError,
				})
			}
		}
	}
	return errs
}

// validateSelection checks that every selected id is a live top-level
// entity.
func validateSelection(g *Graph) []ValidationError {
	var errs []ValidationError
	for _, id := range g.selection.ids {
		if _, ok := g.entities[id]; !ok {
			errs = append(errs, ValidationError{
				Message:  fmt.Sprintf("selection references missing entity %s", id.Short()),
				Severity: SeverityError,
			})
			continue
		}
		if !g.IsTopLevel(id) {
			errs = append(errs, ValidationError{
				EntityID: id,
				Message:  "selected entity is inside a group",
				Severity: SeverityWarning,
			})
		}
	}
	return errs
}

// validatePayloads checks that each entity's data matches its kind and that
// its transform is invertible.
func validatePayloads(g *Graph) []ValidationError {
	var errs []ValidationError
	for id, e := range g.entities {
		if !e.Transform.Valid() {
			errs = append(errs, ValidationError{
				EntityID: id,
				Message:  fmt.Sprintf("scale %v is not invertible", e.Transform.Scale),
				Severity: SeverityError,
			})
		}
		switch d := e.Data.(type) {
		case SolidData:
			if e.Kind != KindSolid {
				errs = append(errs, ValidationError{EntityID: id, Message: fmt.Sprintf("%s carries solid data", e.Kind), Severity: SeverityError})
			}
			if d.Mesh == nil || d.Mesh.IsEmpty() {
				errs = append(errs, ValidationError{EntityID: id, Message: "solid has no faces", Severity: SeverityError})
			}
		case GroupData:
			if e.Kind != KindGroup {
				errs = append(errs, ValidationError{EntityID: id, Message: fmt.Sprintf("%s carries group data", e.Kind), Severity: SeverityError})
			}
			if len(d.Children) < 2 {
				errs = append(errs, ValidationError{
					EntityID: id,
					Message:  fmt.Sprintf("group has %d child(ren)", len(d.Children)),
					Severity: SeverityWarning,
				})
			}
		default:
			errs = append(errs, ValidationError{EntityID: id, Message: "entity has no data", Severity: SeverityError})
		}
	}
	return errs
}
