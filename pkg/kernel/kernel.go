// Package kernel defines the boundary between the CSG core and its
// collaborators: the polygon-soup Mesh exchanged in both directions and the
// Primitives interface implemented by the mesh generators (polyhedra, sdfx).
// Swapping the primitive backend does not change anything downstream.
package kernel

import "fmt"

// Primitives produces closed meshes centred on the origin. Cylinders and
// cones stand along the Y axis and a torus lies flat in the XZ plane.
// Tessellation density is fixed by each implementation.
type Primitives interface {
	Box(x, y, z float64) (*Mesh, error)
	Cylinder(height, radius float64) (*Mesh, error)
	Cone(height, radius float64) (*Mesh, error)
	Sphere(radius float64) (*Mesh, error)
	Torus(major, minor float64) (*Mesh, error)
}

// Shape names a primitive kind understood by Build.
type Shape string

const (
	ShapeBox      Shape = "box"
	ShapeCylinder Shape = "cylinder"
	ShapeCone     Shape = "cone"
	ShapeSphere   Shape = "sphere"
	ShapeTorus    Shape = "torus"
)

// Build dispatches to the matching Primitives method. dims are interpreted
// per shape: box (x, y, z), cylinder and cone (height, radius), sphere
// (radius), torus (major radius, minor radius).
func Build(p Primitives, shape Shape, dims ...float64) (*Mesh, error) {
	need := map[Shape]int{ShapeBox: 3, ShapeCylinder: 2, ShapeCone: 2, ShapeSphere: 1, ShapeTorus: 2}
	n, ok := need[shape]
	if !ok {
		return nil, fmt.Errorf("kernel: unknown shape %q", shape)
	}
	if len(dims) != n {
		return nil, fmt.Errorf("kernel: %s needs %d dimension(s), got %d", shape, n, len(dims))
	}
	for i, d := range dims {
		if d <= 0 {
			return nil, fmt.Errorf("kernel: %s dimension %d is %.4f, must be positive", shape, i, d)
		}
	}
	switch shape {
	case ShapeBox:
		return p.Box(dims[0], dims[1], dims[2])
	case ShapeCylinder:
		return p.Cylinder(dims[0], dims[1])
	case ShapeCone:
		return p.Cone(dims[0], dims[1])
	case ShapeTorus:
		return p.Torus(dims[0], dims[1])
	default:
		return p.Sphere(dims[0])
	}
}
