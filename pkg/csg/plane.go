package csg

import (
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// Epsilon is the fixed tolerance used for every plane-distance comparison.
const Epsilon = 1e-5

// Side is the classification of a point or polygon against a plane.
// The values are bit flags so a polygon's side is the OR of its vertices.
type Side int

const (
	Coplanar Side = 0
	Front    Side = 1
	Back     Side = 2
	Spanning Side = Front | Back
)

func (s Side) String() string {
	switch s {
	case Coplanar:
		return "coplanar"
	case Front:
		return "front"
	case Back:
		return "back"
	case Spanning:
		return "spanning"
	default:
		return "unknown"
	}
}

// Plane is an oriented plane: the set of points p with Normal·p == W.
// Normal has unit length.
type Plane struct {
	Normal v3.Vec
	W      float64
}

// PlaneFromPoints returns the plane through a, b and c, oriented so that the
// points wind counter-clockwise when seen from the front. ok is false when
// the points are collinear.
func PlaneFromPoints(a, b, c v3.Vec) (p Plane, ok bool) {
	n := b.Sub(a).Cross(c.Sub(a))
	l := n.Length()
	if l < Epsilon*Epsilon {
		return Plane{}, false
	}
	n = n.MulScalar(1 / l)
	return Plane{Normal: n, W: n.Dot(a)}, true
}

// Distance returns the signed distance from the plane to pos.
func (p Plane) Distance(pos v3.Vec) float64 {
	return p.Normal.Dot(pos) - p.W
}

// Classify reports which side of the plane pos lies on.
func (p Plane) Classify(pos v3.Vec) Side {
	d := p.Distance(pos)
	switch {
	case d < -Epsilon:
		return Back
	case d > Epsilon:
		return Front
	default:
		return Coplanar
	}
}

// Flip returns the same plane facing the other way.
func (p Plane) Flip() Plane {
	return Plane{Normal: p.Normal.Neg(), W: -p.W}
}

// split sorts poly into one of the four output lists, cutting it in two when
// it straddles the plane. Coplanar polygons go to coFront or coBack depending
// on whether they face the same way as p. Fragments that collapse below three
// distinct vertices are dropped and counted in r.
func (p Plane) split(poly Polygon, coFront, coBack, front, back *[]Polygon, r *Report) {
	sides := make([]Side, len(poly.Vertices))
	dists := make([]float64, len(poly.Vertices))
	var polySide Side
	for i, v := range poly.Vertices {
		d := p.Distance(v.Pos)
		s := Coplanar
		if d < -Epsilon {
			s = Back
		} else if d > Epsilon {
			s = Front
		}
		sides[i] = s
		dists[i] = d
		polySide |= s
	}

	switch polySide {
	case Coplanar:
		if p.Normal.Dot(poly.Plane.Normal) > 0 {
			*coFront = append(*coFront, poly)
		} else {
			*coBack = append(*coBack, poly)
		}
	case Front:
		*front = append(*front, poly)
	case Back:
		*back = append(*back, poly)
	case Spanning:
		n := len(poly.Vertices)
		f := make([]Vertex, 0, n+1)
		b := make([]Vertex, 0, n+1)
		for i := 0; i < n; i++ {
			j := (i + 1) % n
			si, sj := sides[i], sides[j]
			vi, vj := poly.Vertices[i], poly.Vertices[j]
			if si != Back {
				f = append(f, vi)
			}
			if si != Front {
				b = append(b, vi)
			}
			if si|sj == Spanning {
				t := dists[i] / (dists[i] - dists[j])
				v := vi.Lerp(vj, t)
				f = append(f, v)
				b = append(b, v)
			}
		}
		if frag, ok := poly.fragment(f); ok {
			*front = append(*front, frag)
		} else {
			r.Dropped++
		}
		if frag, ok := poly.fragment(b); ok {
			*back = append(*back, frag)
		} else {
			r.Dropped++
		}
	}
}
