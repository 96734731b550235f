package csg

import (
	v3 "github.com/deadsy/sdfx/vec/v3"
	"github.com/go-gl/mathgl/mgl64"

	"github.com/chazu/carve/pkg/kernel"
)

// FromMesh converts an object-space mesh into a world-space solid by applying
// placement to every vertex. Faces without their own tag get tag. Faces that
// cannot form a polygon are dropped and counted in the report.
func FromMesh(m *kernel.Mesh, placement mgl64.Mat4, tag string) (*Solid, Report) {
	var r Report
	normalMat := mgl64.Mat4Normal(placement)
	mirrored := placement.Det() < 0

	polygons := make([]Polygon, 0, len(m.Faces))
	for i, f := range m.Faces {
		vs := make([]Vertex, len(f.Vertices))
		for j, mv := range f.Vertices {
			pos := mgl64.TransformCoordinate(mgl64.Vec3(mv.Position), placement)
			n := normalMat.Mul3x1(mgl64.Vec3(mv.Normal))
			if l := n.Len(); l > 0 {
				n = n.Mul(1 / l)
			}
			vs[j] = Vertex{Pos: toV3(pos), Normal: toV3(n)}
		}
		if mirrored {
			reverse(vs)
		}
		t := m.FaceTag(i)
		if t == "" {
			t = tag
		}
		p, err := NewPolygon(vs, t)
		if err != nil {
			r.Dropped++
			continue
		}
		polygons = append(polygons, p)
	}
	return &Solid{polygons: polygons}, r
}

// ToMesh converts the solid into a mesh whose positions are expressed in the
// coordinate space of target, so that placing the mesh with target
// reproduces the solid's world-space geometry. Every face keeps its
// polygon's tag.
func ToMesh(s *Solid, target mgl64.Mat4) *kernel.Mesh {
	inv := target.Inv()
	normalMat := mgl64.Mat4Normal(inv)
	mirrored := inv.Det() < 0

	m := &kernel.Mesh{Faces: make([]kernel.Face, 0, len(s.polygons))}
	for _, p := range s.polygons {
		vs := make([]kernel.Vertex, len(p.Vertices))
		for j, v := range p.Vertices {
			pos := mgl64.TransformCoordinate(fromV3(v.Pos), inv)
			n := normalMat.Mul3x1(fromV3(v.Normal))
			if l := n.Len(); l > 0 {
				n = n.Mul(1 / l)
			}
			vs[j] = kernel.Vertex{Position: [3]float64(pos), Normal: [3]float64(n)}
		}
		if mirrored {
			reverse(vs)
		}
		m.Faces = append(m.Faces, kernel.Face{Vertices: vs, Tag: p.Tag})
	}
	return m
}

func toV3(v mgl64.Vec3) v3.Vec {
	return v3.Vec{X: v[0], Y: v[1], Z: v[2]}
}

func fromV3(v v3.Vec) mgl64.Vec3 {
	return mgl64.Vec3{v.X, v.Y, v.Z}
}

func reverse[T any](s []T) {
	for i, j := 0, len(s)-1; i < j; i, j = i+1, j-1 {
		s[i], s[j] = s[j], s[i]
	}
}
