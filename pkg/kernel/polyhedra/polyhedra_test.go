package polyhedra

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chazu/carve/pkg/kernel"
)

// signedVolume sums the tetrahedra formed by the origin and each fan
// triangle. Outward winding gives a positive volume.
func signedVolume(m *kernel.Mesh) float64 {
	var v float64
	for _, f := range m.Faces {
		a := f.Vertices[0].Position
		for i := 1; i+1 < len(f.Vertices); i++ {
			b := f.Vertices[i].Position
			c := f.Vertices[i+1].Position
			v += a[0]*(b[1]*c[2]-b[2]*c[1]) -
				a[1]*(b[0]*c[2]-b[2]*c[0]) +
				a[2]*(b[0]*c[1]-b[1]*c[0])
		}
	}
	return v / 6
}

func TestBox(t *testing.T) {
	m, err := New(0).Box(2, 4, 6)
	require.NoError(t, err)
	assert.Equal(t, 6, m.FaceCount())
	assert.Equal(t, 12, m.TriangleCount())
	assert.InDelta(t, 48, signedVolume(m), 1e-9)

	min, max := m.Bounds()
	assert.Equal(t, [3]float64{-1, -2, -3}, min)
	assert.Equal(t, [3]float64{1, 2, 3}, max)
}

func TestBoxNormalsPointOutward(t *testing.T) {
	m, err := New(0).Box(1, 1, 1)
	require.NoError(t, err)
	for i, f := range m.Faces {
		var c [3]float64
		for _, v := range f.Vertices {
			for k := range c {
				c[k] += v.Position[k] / float64(len(f.Vertices))
			}
		}
		n := f.Vertices[0].Normal
		dot := c[0]*n[0] + c[1]*n[1] + c[2]*n[2]
		assert.Greater(t, dot, 0.0, "face %d normal points inward", i)
	}
}

func TestCylinder(t *testing.T) {
	p := New(16)
	m, err := p.Cylinder(2, 1)
	require.NoError(t, err)
	assert.Equal(t, 18, m.FaceCount())

	n := float64(p.Segments())
	want := n / 2 * math.Sin(2*math.Pi/n) * 2
	assert.InDelta(t, want, signedVolume(m), 1e-9)

	min, max := m.Bounds()
	assert.InDelta(t, -1, min[1], 1e-12)
	assert.InDelta(t, 1, max[1], 1e-12)
}

func TestCone(t *testing.T) {
	p := New(16)
	m, err := p.Cone(3, 1)
	require.NoError(t, err)
	assert.Equal(t, 17, m.FaceCount())

	n := float64(p.Segments())
	base := n / 2 * math.Sin(2*math.Pi/n)
	assert.InDelta(t, base*3/3, signedVolume(m), 1e-9)
}

func TestSphere(t *testing.T) {
	m, err := New(24).Sphere(1)
	require.NoError(t, err)
	exact := 4.0 / 3.0 * math.Pi
	v := signedVolume(m)
	assert.Greater(t, v, 0.9*exact)
	assert.Less(t, v, exact)
	for _, f := range m.Faces {
		assert.GreaterOrEqual(t, len(f.Vertices), 3)
	}
}

func TestTorus(t *testing.T) {
	p := New(24)
	m, err := p.Torus(2, 0.5)
	require.NoError(t, err)
	assert.Equal(t, 24*12, m.FaceCount())

	exact := 2 * math.Pi * math.Pi * 2 * 0.5 * 0.5
	v := signedVolume(m)
	assert.Greater(t, v, 0.9*exact)
	assert.Less(t, v, exact)

	min, max := m.Bounds()
	assert.InDelta(t, 2.5, max[0], 1e-12)
	assert.InDelta(t, -0.5, min[1], 1e-12)
	assert.InDelta(t, 0.5, max[1], 1e-12)
	assert.InDelta(t, -2.5, min[0], 1e-12)
}

func TestTorusNormalsPointAwayFromTube(t *testing.T) {
	m, err := New(8).Torus(3, 1)
	require.NoError(t, err)
	for _, f := range m.Faces {
		for _, v := range f.Vertices {
			p := v.Position
			r := math.Hypot(p[0], p[2])
			// Centre of the tube cross-section through this vertex.
			c := [3]float64{p[0] * 3 / r, 0, p[2] * 3 / r}
			d := [3]float64{p[0] - c[0], p[1] - c[1], p[2] - c[2]}
			n := v.Normal
			assert.InDelta(t, 1, d[0]*n[0]+d[1]*n[1]+d[2]*n[2], 1e-9)
		}
	}
}

func TestTorusRejectsSelfIntersection(t *testing.T) {
	_, err := New(0).Torus(1, 1)
	assert.Error(t, err)
	_, err = New(0).Torus(1, 2)
	assert.Error(t, err)
}

func TestRejectsNonPositive(t *testing.T) {
	p := New(0)
	_, err := p.Box(1, 0, 1)
	assert.Error(t, err)
	_, err = p.Cylinder(-1, 1)
	assert.Error(t, err)
	_, err = p.Cone(1, math.NaN())
	assert.Error(t, err)
	_, err = p.Sphere(0)
	assert.Error(t, err)
	_, err = p.Torus(1, 0)
	assert.Error(t, err)
}

func TestNewFallsBackToDefault(t *testing.T) {
	assert.Equal(t, DefaultSegments, New(2).Segments())
	assert.Equal(t, 8, New(8).Segments())
}
