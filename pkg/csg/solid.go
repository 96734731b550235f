package csg

import (
	"fmt"
	"slices"

	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// Op selects a boolean operation.
type Op int

const (
	OpUnion Op = iota
	OpSubtract
	OpIntersect
)

func (o Op) String() string {
	switch o {
	case OpUnion:
		return "union"
	case OpSubtract:
		return "subtract"
	case OpIntersect:
		return "intersect"
	default:
		return fmt.Sprintf("Op(%d)", int(o))
	}
}

// ParseOp converts "union", "subtract" or "intersect" to an Op.
func ParseOp(s string) (Op, error) {
	switch s {
	case "union":
		return OpUnion, nil
	case "subtract", "difference":
		return OpSubtract, nil
	case "intersect", "intersection":
		return OpIntersect, nil
	}
	return 0, fmt.Errorf("csg: unknown boolean operation %q", s)
}

// Solid is an immutable polygon soup describing a closed volume.
type Solid struct {
	polygons []Polygon
}

// FromPolygons returns a solid made of a copy of polygons.
func FromPolygons(polygons []Polygon) *Solid {
	return &Solid{polygons: slices.Clone(polygons)}
}

// Polygons returns a copy of the solid's polygons.
func (s *Solid) Polygons() []Polygon {
	return slices.Clone(s.polygons)
}

// Len returns the number of polygons.
func (s *Solid) Len() int {
	return len(s.polygons)
}

// IsEmpty reports whether the solid has no polygons.
func (s *Solid) IsEmpty() bool {
	return len(s.polygons) == 0
}

// Inverse returns the complement of the solid.
func (s *Solid) Inverse() *Solid {
	out := make([]Polygon, len(s.polygons))
	for i, p := range s.polygons {
		out[i] = p.Flip()
	}
	return &Solid{polygons: out}
}

// Bounds returns the axis-aligned bounding box. The zero box is returned for
// an empty solid.
func (s *Solid) Bounds() sdf.Box3 {
	if len(s.polygons) == 0 {
		return sdf.Box3{}
	}
	b := s.polygons[0].Bounds()
	for _, p := range s.polygons[1:] {
		pb := p.Bounds()
		b.Min = b.Min.Min(pb.Min)
		b.Max = b.Max.Max(pb.Max)
	}
	return b
}

// Volume returns the enclosed volume, computed from the divergence theorem
// over a fan triangulation of every polygon. It is only meaningful for closed
// solids.
func (s *Solid) Volume() float64 {
	var v float64
	for _, p := range s.polygons {
		a := p.Vertices[0].Pos
		for i := 1; i+1 < len(p.Vertices); i++ {
			v += a.Dot(p.Vertices[i].Pos.Cross(p.Vertices[i+1].Pos))
		}
	}
	return v / 6
}

// Contains reports whether pos lies strictly inside the solid. Points on the
// surface may go either way.
func (s *Solid) Contains(pos v3.Vec) bool {
	var r Report
	return newTree(s.polygons, &r).contains(pos)
}

// An empty tree has no splitting plane and so clips nothing, which would make
// it behave like all of space inside a boolean. Empty operands are therefore
// resolved before any tree is built.

// Union returns the volume covered by a or b.
func Union(a, b *Solid) (*Solid, Report) {
	switch {
	case a.IsEmpty():
		return FromPolygons(b.polygons), Report{}
	case b.IsEmpty():
		return FromPolygons(a.polygons), Report{}
	}
	var r Report
	ta := newTree(a.polygons, &r)
	tb := newTree(b.polygons, &r)
	ta.clipTo(tb, &r)
	tb.clipTo(ta, &r)
	tb.invert()
	tb.clipTo(ta, &r)
	tb.invert()
	ta.build(slices.Collect(tb.allPolygons()), &r)
	return &Solid{polygons: slices.Collect(ta.allPolygons())}, r
}

// Subtract returns the volume of a not covered by b.
func Subtract(a, b *Solid) (*Solid, Report) {
	if a.IsEmpty() || b.IsEmpty() {
		return FromPolygons(a.polygons), Report{}
	}
	var r Report
	ta := newTree(a.polygons, &r)
	tb := newTree(b.polygons, &r)
	ta.invert()
	ta.clipTo(tb, &r)
	tb.clipTo(ta, &r)
	tb.invert()
	tb.clipTo(ta, &r)
	tb.invert()
	ta.build(slices.Collect(tb.allPolygons()), &r)
	ta.invert()
	return &Solid{polygons: slices.Collect(ta.allPolygons())}, r
}

// Intersect returns the volume covered by both a and b.
func Intersect(a, b *Solid) (*Solid, Report) {
	if a.IsEmpty() || b.IsEmpty() {
		return &Solid{}, Report{}
	}
	var r Report
	ta := newTree(a.polygons, &r)
	tb := newTree(b.polygons, &r)
	ta.invert()
	tb.clipTo(ta, &r)
	tb.invert()
	ta.clipTo(tb, &r)
	tb.clipTo(ta, &r)
	ta.build(slices.Collect(tb.allPolygons()), &r)
	ta.invert()
	return &Solid{polygons: slices.Collect(ta.allPolygons())}, r
}

// Apply runs op on a and b.
func Apply(op Op, a, b *Solid) (*Solid, Report, error) {
	switch op {
	case OpUnion:
		s, r := Union(a, b)
		return s, r, nil
	case OpSubtract:
		s, r := Subtract(a, b)
		return s, r, nil
	case OpIntersect:
		s, r := Intersect(a, b)
		return s, r, nil
	}
	return nil, Report{}, fmt.Errorf("csg: unknown boolean operation %v", op)
}
