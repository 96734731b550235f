package csg

import (
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// Vertex is a polygon corner with a position and a shading normal.
type Vertex struct {
	Pos    v3.Vec
	Normal v3.Vec
}

// Lerp blends position and normal linearly towards other by t.
func (v Vertex) Lerp(other Vertex, t float64) Vertex {
	return Vertex{
		Pos:    v.Pos.Add(other.Pos.Sub(v.Pos).MulScalar(t)),
		Normal: v.Normal.Add(other.Normal.Sub(v.Normal).MulScalar(t)),
	}
}

// Flip returns the vertex with its normal reversed.
func (v Vertex) Flip() Vertex {
	return Vertex{Pos: v.Pos, Normal: v.Normal.Neg()}
}
