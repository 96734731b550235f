package csg

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPlaneClassify(t *testing.T) {
	p := Plane{Normal: vec(0, 0, 1), W: 0}
	tests := []struct {
		name string
		z    float64
		want Side
	}{
		{"on plane", 0, Coplanar},
		{"inside tolerance above", 5e-6, Coplanar},
		{"inside tolerance below", -5e-6, Coplanar},
		{"just above", 2e-5, Front},
		{"just below", -2e-5, Back},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, p.Classify(vec(3, -4, tt.z)))
		})
	}
}

func TestPlaneFromPoints(t *testing.T) {
	p, ok := PlaneFromPoints(vec(0, 0, 1), vec(1, 0, 1), vec(0, 1, 1))
	require.True(t, ok)
	assert.InDelta(t, 1, p.Normal.Z, 1e-12)
	assert.InDelta(t, 1, p.W, 1e-12)

	_, ok = PlaneFromPoints(vec(0, 0, 0), vec(1, 0, 0), vec(2, 0, 0))
	assert.False(t, ok, "collinear points have no plane")
}

func TestPlaneFlip(t *testing.T) {
	p := Plane{Normal: vec(0, 1, 0), W: 2}
	f := p.Flip()
	assert.Equal(t, vec(0, -1, 0), f.Normal)
	assert.Equal(t, -2.0, f.W)
	assert.Equal(t, Back, f.Classify(vec(0, 3, 0)))
}

func TestSideString(t *testing.T) {
	assert.Equal(t, "spanning", Spanning.String())
	assert.Equal(t, Spanning, Front|Back)
}

func TestSplitSpanningTriangle(t *testing.T) {
	tri, err := NewPolygon([]Vertex{vert(-1, 0, 0), vert(1, 0, 0), vert(0, 2, 0)}, "a")
	require.NoError(t, err)
	cut := Plane{Normal: vec(1, 0, 0), W: 0}

	var coFront, coBack, front, back []Polygon
	var r Report
	cut.split(tri, &coFront, &coBack, &front, &back, &r)

	require.Len(t, front, 1)
	require.Len(t, back, 1)
	assert.Empty(t, coFront)
	assert.Empty(t, coBack)
	assert.Zero(t, r.Dropped)
	assert.InDelta(t, tri.Area(), front[0].Area()+back[0].Area(), 1e-12)
	assert.Equal(t, tri.Plane, front[0].Plane, "fragments keep the parent plane")
	assert.Equal(t, "a", back[0].Tag)
	for _, v := range front[0].Vertices {
		assert.GreaterOrEqual(t, v.Pos.X, -Epsilon)
	}
}

func TestSplitCoplanarByOrientation(t *testing.T) {
	up, err := NewPolygon([]Vertex{vert(0, 0, 0), vert(1, 0, 0), vert(0, 1, 0)}, "")
	require.NoError(t, err)
	down := up.Flip()
	p := Plane{Normal: vec(0, 0, 1), W: 0}

	var coFront, coBack, front, back []Polygon
	var r Report
	p.split(up, &coFront, &coBack, &front, &back, &r)
	p.split(down, &coFront, &coBack, &front, &back, &r)

	assert.Len(t, coFront, 1)
	assert.Len(t, coBack, 1)
	assert.Empty(t, front)
	assert.Empty(t, back)
}

func TestSplitDropsSliver(t *testing.T) {
	// Only the tip at z=1.1e-5 pokes above the plane, leaving a front
	// fragment far below the area tolerance.
	tri, err := NewPolygon([]Vertex{vert(0, 0, 1.1e-5), vert(1, 0, -100), vert(0, 1, -100)}, "")
	require.NoError(t, err)
	p := Plane{Normal: vec(0, 0, 1), W: 0}

	var coFront, coBack, front, back []Polygon
	var r Report
	p.split(tri, &coFront, &coBack, &front, &back, &r)

	assert.Empty(t, front)
	assert.Len(t, back, 1)
	assert.Equal(t, 1, r.Dropped)
}
