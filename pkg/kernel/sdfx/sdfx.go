// Package sdfx implements kernel.Primitives with the github.com/deadsy/sdfx
// SDF library. Each primitive is built as a signed distance field and then
// polygonised with marching cubes, so curved surfaces come out as triangle
// soups whose density depends on the configured cell count.
package sdfx

import (
	"fmt"
	"math"

	"github.com/chazu/carve/pkg/kernel"
	"github.com/deadsy/sdfx/render"
	"github.com/deadsy/sdfx/sdf"
	v2 "github.com/deadsy/sdfx/vec/v2"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// Compile-time interface check.
var _ kernel.Primitives = (*Primitives)(nil)

// DefaultMeshCells controls marching cubes tessellation resolution along the
// longest axis of a primitive.
const DefaultMeshCells = 48

// Primitives produces marching-cubes meshes.
type Primitives struct {
	cells int
}

// New returns a Primitives that tessellates with the given number of cells
// along the longest axis. Values below 8 fall back to DefaultMeshCells.
func New(cells int) *Primitives {
	if cells < 8 {
		cells = DefaultMeshCells
	}
	return &Primitives{cells: cells}
}

// Cells returns the marching cubes resolution.
func (p *Primitives) Cells() int {
	return p.cells
}

// Box creates a box centred on the origin.
func (p *Primitives) Box(x, y, z float64) (*kernel.Mesh, error) {
	s, err := sdf.Box3D(v3.Vec{X: x, Y: y, Z: z}, 0)
	if err != nil {
		return nil, fmt.Errorf("sdfx.Box3D: %w", err)
	}
	return p.toMesh(s)
}

// Cylinder creates a cylinder standing on the Y axis. sdfx builds cylinders
// along Z, so the field is turned a quarter around X.
func (p *Primitives) Cylinder(height, radius float64) (*kernel.Mesh, error) {
	s, err := sdf.Cylinder3D(height, radius, 0)
	if err != nil {
		return nil, fmt.Errorf("sdfx.Cylinder3D: %w", err)
	}
	return p.toMesh(sdf.Transform3D(s, sdf.RotateX(-math.Pi/2)))
}

// Cone creates a cone with its base at -height/2 and its apex at +height/2
// on the Y axis.
func (p *Primitives) Cone(height, radius float64) (*kernel.Mesh, error) {
	s, err := sdf.Cone3D(height, radius, 0, 0)
	if err != nil {
		return nil, fmt.Errorf("sdfx.Cone3D: %w", err)
	}
	return p.toMesh(sdf.Transform3D(s, sdf.RotateX(-math.Pi/2)))
}

// Sphere creates a sphere centred on the origin.
func (p *Primitives) Sphere(radius float64) (*kernel.Mesh, error) {
	s, err := sdf.Sphere3D(radius)
	if err != nil {
		return nil, fmt.Errorf("sdfx.Sphere3D: %w", err)
	}
	return p.toMesh(s)
}

// Torus creates a ring lying in the XZ plane around the Y axis by revolving
// a circle of radius minor placed major away from the axis.
func (p *Primitives) Torus(major, minor float64) (*kernel.Mesh, error) {
	if major <= 0 || minor <= 0 {
		return nil, fmt.Errorf("sdfx: torus radii must be positive, got %v and %v", major, minor)
	}
	if minor >= major {
		return nil, fmt.Errorf("sdfx: torus minor radius %v must be smaller than major radius %v", minor, major)
	}
	c, err := sdf.Circle2D(minor)
	if err != nil {
		return nil, fmt.Errorf("sdfx.Circle2D: %w", err)
	}
	s, err := sdf.Revolve3D(sdf.Transform2D(c, sdf.Translate2d(v2.Vec{X: major, Y: 0})))
	if err != nil {
		return nil, fmt.Errorf("sdfx.Revolve3D: %w", err)
	}
	return p.toMesh(sdf.Transform3D(s, sdf.RotateX(-math.Pi/2)))
}

// toMesh converts a field to a triangle mesh using marching cubes.
func (p *Primitives) toMesh(s sdf.SDF3) (*kernel.Mesh, error) {
	renderer := render.NewMarchingCubesUniform(p.cells)
	triangles := render.ToTriangles(s, renderer)
	if len(triangles) == 0 {
		return nil, fmt.Errorf("sdfx: marching cubes produced no triangles")
	}

	faces := make([]kernel.Face, 0, len(triangles))
	for _, tri := range triangles {
		n := tri.Normal()
		normal := [3]float64{n.X, n.Y, n.Z}
		vs := make([]kernel.Vertex, 3)
		for j := 0; j < 3; j++ {
			v := tri[j]
			vs[j] = kernel.Vertex{Position: [3]float64{v.X, v.Y, v.Z}, Normal: normal}
		}
		faces = append(faces, kernel.Face{Vertices: vs})
	}
	return &kernel.Mesh{Faces: faces}, nil
}
