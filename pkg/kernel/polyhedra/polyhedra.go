// Package polyhedra implements kernel.Primitives with exact flat-faced
// meshes. Boxes are six quads; cylinders, cones, spheres and tori are
// faceted at a fixed segment count.
package polyhedra

import (
	"fmt"
	"math"

	"github.com/chazu/carve/pkg/kernel"
)

// Compile-time interface check.
var _ kernel.Primitives = (*Primitives)(nil)

// DefaultSegments is the number of facets around a curved primitive.
const DefaultSegments = 24

// Primitives produces faceted meshes.
type Primitives struct {
	segments int
}

// New returns a Primitives using the given number of segments around curved
// surfaces. Values below 3 fall back to DefaultSegments.
func New(segments int) *Primitives {
	if segments < 3 {
		segments = DefaultSegments
	}
	return &Primitives{segments: segments}
}

// Segments returns the facet count around curved primitives.
func (p *Primitives) Segments() int {
	return p.segments
}

type vec [3]float64

func (a vec) sub(b vec) vec { return vec{a[0] - b[0], a[1] - b[1], a[2] - b[2]} }

func (a vec) cross(b vec) vec {
	return vec{a[1]*b[2] - a[2]*b[1], a[2]*b[0] - a[0]*b[2], a[0]*b[1] - a[1]*b[0]}
}

func (a vec) unit() vec {
	l := math.Sqrt(a[0]*a[0] + a[1]*a[1] + a[2]*a[2])
	if l == 0 {
		return a
	}
	return vec{a[0] / l, a[1] / l, a[2] / l}
}

// flat builds a face whose vertices all carry the face normal.
func flat(pts ...vec) kernel.Face {
	n := pts[1].sub(pts[0]).cross(pts[2].sub(pts[0])).unit()
	vs := make([]kernel.Vertex, len(pts))
	for i, p := range pts {
		vs[i] = kernel.Vertex{Position: p, Normal: n}
	}
	return kernel.Face{Vertices: vs}
}

func checkPositive(name string, dims ...float64) error {
	for _, d := range dims {
		if d <= 0 || math.IsNaN(d) || math.IsInf(d, 0) {
			return fmt.Errorf("polyhedra: %s dimensions must be positive, got %v", name, dims)
		}
	}
	return nil
}

// Box creates an axis-aligned box centred on the origin.
func (p *Primitives) Box(x, y, z float64) (*kernel.Mesh, error) {
	if err := checkPositive("box", x, y, z); err != nil {
		return nil, err
	}
	hx, hy, hz := x/2, y/2, z/2
	c := func(i int) vec {
		return vec{
			hx * float64(2*(i&1)-1),
			hy * float64(2*((i>>1)&1)-1),
			hz * float64(2*((i>>2)&1)-1),
		}
	}
	// corner index bits: x=1, y=2, z=4
	faces := []kernel.Face{
		flat(c(0), c(4), c(6), c(2)), // -x
		flat(c(1), c(3), c(7), c(5)), // +x
		flat(c(0), c(1), c(5), c(4)), // -y
		flat(c(2), c(6), c(7), c(3)), // +y
		flat(c(0), c(2), c(3), c(1)), // -z
		flat(c(4), c(5), c(7), c(6)), // +z
	}
	return &kernel.Mesh{Faces: faces}, nil
}

// ring returns n points on a circle of radius r in the plane y.
func (p *Primitives) ring(r, y float64) []vec {
	pts := make([]vec, p.segments)
	for i := range pts {
		a := 2 * math.Pi * float64(i) / float64(p.segments)
		pts[i] = vec{r * math.Cos(a), y, -r * math.Sin(a)}
	}
	return pts
}

// Cylinder creates a prism standing on the Y axis. Side vertices carry radial
// normals so the cylinder shades smoothly.
func (p *Primitives) Cylinder(height, radius float64) (*kernel.Mesh, error) {
	if err := checkPositive("cylinder", height, radius); err != nil {
		return nil, err
	}
	h := height / 2
	bottom := p.ring(radius, -h)
	top := p.ring(radius, h)
	n := p.segments

	faces := make([]kernel.Face, 0, n+2)
	for i := 0; i < n; i++ {
		j := (i + 1) % n
		radial := func(v vec) vec { return vec{v[0], 0, v[2]}.unit() }
		faces = append(faces, kernel.Face{Vertices: []kernel.Vertex{
			{Position: bottom[i], Normal: radial(bottom[i])},
			{Position: bottom[j], Normal: radial(bottom[j])},
			{Position: top[j], Normal: radial(top[j])},
			{Position: top[i], Normal: radial(top[i])},
		}})
	}
	faces = append(faces, flat(top...))
	rev := make([]vec, n)
	for i := range bottom {
		rev[n-1-i] = bottom[i]
	}
	faces = append(faces, flat(rev...))
	return &kernel.Mesh{Faces: faces}, nil
}

// Cone creates a cone with its base at -height/2 and its apex at +height/2
// on the Y axis.
func (p *Primitives) Cone(height, radius float64) (*kernel.Mesh, error) {
	if err := checkPositive("cone", height, radius); err != nil {
		return nil, err
	}
	h := height / 2
	base := p.ring(radius, -h)
	apex := vec{0, h, 0}
	n := p.segments

	faces := make([]kernel.Face, 0, n+1)
	for i := 0; i < n; i++ {
		j := (i + 1) % n
		faces = append(faces, flat(base[i], base[j], apex))
	}
	rev := make([]vec, n)
	for i := range base {
		rev[n-1-i] = base[i]
	}
	faces = append(faces, flat(rev...))
	return &kernel.Mesh{Faces: faces}, nil
}

// Sphere creates a UV sphere centred on the origin with segments slices and
// segments/2 stacks. Vertex normals point radially.
func (p *Primitives) Sphere(radius float64) (*kernel.Mesh, error) {
	if err := checkPositive("sphere", radius); err != nil {
		return nil, err
	}
	slices := p.segments
	stacks := max(p.segments/2, 2)

	dir := func(i, j int) vec {
		theta := 2 * math.Pi * float64(i) / float64(slices)
		phi := math.Pi * float64(j) / float64(stacks)
		return vec{
			math.Cos(theta) * math.Sin(phi),
			math.Cos(phi),
			-math.Sin(theta) * math.Sin(phi),
		}
	}
	vert := func(i, j int) kernel.Vertex {
		d := dir(i, j)
		return kernel.Vertex{Position: vec{d[0] * radius, d[1] * radius, d[2] * radius}, Normal: d}
	}

	faces := make([]kernel.Face, 0, slices*stacks)
	for i := 0; i < slices; i++ {
		for j := 0; j < stacks; j++ {
			// Quads collapse to triangles at the poles.
			vs := []kernel.Vertex{vert(i, j), vert(i, j+1)}
			if j < stacks-1 {
				vs = append(vs, vert(i+1, j+1))
			}
			if j > 0 {
				vs = append(vs, vert(i+1, j))
			}
			faces = append(faces, kernel.Face{Vertices: vs})
		}
	}
	return &kernel.Mesh{Faces: faces}, nil
}

// Torus creates a ring lying in the XZ plane around the Y axis. The ring is
// cut into segments quads around Y and segments/2 (at least 3) around the
// tube. minor must be smaller than major.
func (p *Primitives) Torus(major, minor float64) (*kernel.Mesh, error) {
	if err := checkPositive("torus", major, minor); err != nil {
		return nil, err
	}
	if minor >= major {
		return nil, fmt.Errorf("polyhedra: torus minor radius %v must be smaller than major radius %v", minor, major)
	}
	ring := p.segments
	tube := max(p.segments/2, 3)

	vert := func(i, j int) kernel.Vertex {
		u := 2 * math.Pi * float64(i) / float64(ring)
		v := 2 * math.Pi * float64(j) / float64(tube)
		n := vec{math.Cos(v) * math.Cos(u), -math.Sin(v), -math.Cos(v) * math.Sin(u)}
		c := vec{major * math.Cos(u), 0, -major * math.Sin(u)}
		return kernel.Vertex{
			Position: vec{c[0] + minor*n[0], c[1] + minor*n[1], c[2] + minor*n[2]},
			Normal:   n,
		}
	}

	faces := make([]kernel.Face, 0, ring*tube)
	for i := 0; i < ring; i++ {
		for j := 0; j < tube; j++ {
			faces = append(faces, kernel.Face{Vertices: []kernel.Vertex{
				vert(i, j), vert(i, j+1), vert(i+1, j+1), vert(i+1, j),
			}})
		}
	}
	return &kernel.Mesh{Faces: faces}, nil
}
