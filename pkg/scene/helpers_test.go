package scene

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/chazu/carve/pkg/kernel"
	"github.com/chazu/carve/pkg/kernel/polyhedra"
)

func unitBox(t testing.TB) *kernel.Mesh {
	t.Helper()
	m, err := polyhedra.New(0).Box(1, 1, 1)
	require.NoError(t, err)
	return m
}

// addBox adds a unit cube at (x, y, z) and returns its id.
func addBox(t testing.TB, g *Graph, name string, x, y, z float64) EntityID {
	t.Helper()
	id, err := g.AddSolid(name, unitBox(t), Material{}, At(x, y, z))
	require.NoError(t, err)
	return id
}

// requireValid fails the test when the graph breaks an invariant.
func requireValid(t testing.TB, g *Graph) {
	t.Helper()
	for _, e := range Validate(g) {
		if e.Severity == SeverityError {
			t.Fatalf("invalid graph: %v", e)
		}
	}
}
