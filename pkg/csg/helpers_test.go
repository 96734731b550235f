package csg

import (
	"testing"

	v3 "github.com/deadsy/sdfx/vec/v3"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/require"

	"github.com/chazu/carve/pkg/kernel/polyhedra"
)

// cube returns an axis-aligned box of the given size centred at (x, y, z).
func cube(t testing.TB, size, x, y, z float64, tag string) *Solid {
	t.Helper()
	m, err := polyhedra.New(0).Box(size, size, size)
	require.NoError(t, err)
	s, r := FromMesh(m, mgl64.Translate3D(x, y, z), tag)
	require.Zero(t, r.Dropped)
	return s
}

func vec(x, y, z float64) v3.Vec {
	return v3.Vec{X: x, Y: y, Z: z}
}

func vert(x, y, z float64) Vertex {
	return Vertex{Pos: vec(x, y, z)}
}
