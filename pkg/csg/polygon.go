package csg

import (
	"errors"

	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// ErrDegeneratePolygon is returned by NewPolygon for inputs with fewer than
// three vertices or no measurable area.
var ErrDegeneratePolygon = errors.New("csg: degenerate polygon")

// Polygon is a convex, planar polygon. Vertices wind counter-clockwise when
// seen from the front of Plane. Tag is an opaque token carried through every
// boolean operation so callers can recover which input a polygon came from.
type Polygon struct {
	Vertices []Vertex
	Plane    Plane
	Tag      string
}

// NewPolygon builds a polygon from vertices, deriving its plane from the
// first three. When those happen to be collinear the plane falls back to the
// Newell normal of the whole loop.
func NewPolygon(vertices []Vertex, tag string) (Polygon, error) {
	if len(vertices) < 3 {
		return Polygon{}, ErrDegeneratePolygon
	}
	pl, ok := PlaneFromPoints(vertices[0].Pos, vertices[1].Pos, vertices[2].Pos)
	if !ok {
		n := newellNormal(vertices)
		l := n.Length()
		if l < Epsilon*Epsilon {
			return Polygon{}, ErrDegeneratePolygon
		}
		n = n.MulScalar(1 / l)
		pl = Plane{Normal: n, W: n.Dot(vertices[0].Pos)}
	}
	vs := make([]Vertex, len(vertices))
	copy(vs, vertices)
	return Polygon{Vertices: vs, Plane: pl, Tag: tag}, nil
}

// Flip returns the polygon facing the other way: reversed winding, negated
// vertex normals and a flipped plane.
func (p Polygon) Flip() Polygon {
	n := len(p.Vertices)
	vs := make([]Vertex, n)
	for i, v := range p.Vertices {
		vs[n-1-i] = v.Flip()
	}
	return Polygon{Vertices: vs, Plane: p.Plane.Flip(), Tag: p.Tag}
}

// Area returns the surface area of the polygon.
func (p Polygon) Area() float64 {
	return newellNormal(p.Vertices).Length() / 2
}

// Centroid returns the average of the polygon's vertex positions.
func (p Polygon) Centroid() v3.Vec {
	var c v3.Vec
	for _, v := range p.Vertices {
		c = c.Add(v.Pos)
	}
	return c.MulScalar(1 / float64(len(p.Vertices)))
}

// Bounds returns the axis-aligned box around the polygon's vertices.
func (p Polygon) Bounds() sdf.Box3 {
	b := sdf.Box3{Min: p.Vertices[0].Pos, Max: p.Vertices[0].Pos}
	for _, v := range p.Vertices[1:] {
		b.Min = b.Min.Min(v.Pos)
		b.Max = b.Max.Max(v.Pos)
	}
	return b
}

// fragment wraps the vertices produced by splitting p. Fragments lie in p's
// plane, so they inherit it instead of re-deriving it from possibly
// near-collinear corners.
func (p Polygon) fragment(vs []Vertex) (Polygon, bool) {
	if len(vs) < 3 || newellNormal(vs).Length() < Epsilon*Epsilon {
		return Polygon{}, false
	}
	return Polygon{Vertices: vs, Plane: p.Plane, Tag: p.Tag}, true
}

// newellNormal returns the unnormalised Newell normal of a vertex loop. Its
// length is twice the enclosed area.
func newellNormal(vs []Vertex) v3.Vec {
	var n v3.Vec
	for i := range vs {
		a := vs[i].Pos
		b := vs[(i+1)%len(vs)].Pos
		n.X += (a.Y - b.Y) * (a.Z + b.Z)
		n.Y += (a.Z - b.Z) * (a.X + b.X)
		n.Z += (a.X - b.X) * (a.Y + b.Y)
	}
	return n
}
