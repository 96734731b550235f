// Package tessellate flattens a scene snapshot into triangle buffers for a
// renderer. One RenderMesh is produced per solid, already in world space,
// so the renderer never needs to know about groups or transforms.
package tessellate

import (
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/chazu/carve/pkg/scene"
)

// HoleOpacity is the opacity given to solids marked as holes.
const HoleOpacity = 0.5

// RenderMesh is the renderer-facing form of one solid.
type RenderMesh struct {
	EntityID scene.EntityID `json:"id" yaml:"id"`
	Name     string         `json:"name" yaml:"name"`
	Vertices []float32      `json:"vertices" yaml:"vertices"` // x, y, z per vertex
	Normals  []float32      `json:"normals" yaml:"normals"`
	Indices  []uint32       `json:"indices" yaml:"indices"`
	Color    string         `json:"color" yaml:"color"`
	Opacity  float32        `json:"opacity" yaml:"opacity"`
	Selected bool           `json:"selected" yaml:"selected"`
}

// TriangleCount returns the number of triangles in the index buffer.
func (m *RenderMesh) TriangleCount() int {
	return len(m.Indices) / 3
}

// Tessellate produces one RenderMesh per solid in the snapshot, in snapshot
// order. Groups contribute only through the world transforms of their
// members. The snapshot is not modified.
func Tessellate(s scene.Snapshot) ([]RenderMesh, error) {
	var out []RenderMesh
	solids := 0
	for i := range s.Entities {
		v := &s.Entities[i]
		if v.Kind != scene.KindSolid {
			continue
		}
		m, err := flatten(v, solids)
		if err != nil {
			return nil, fmt.Errorf("tessellate: entity %s: %w", v.ID.Short(), err)
		}
		out = append(out, m)
		solids++
	}
	return out, nil
}

func flatten(v *scene.EntityView, index int) (RenderMesh, error) {
	if v.Mesh == nil {
		return RenderMesh{}, fmt.Errorf("solid has no mesh")
	}
	world := v.WorldMatrix
	det := world.Det()
	if math.Abs(det) < 1e-12 || math.IsNaN(det) {
		return RenderMesh{}, fmt.Errorf("world transform is singular")
	}
	normalMat := mgl64.Mat4Normal(world)
	mirrored := det < 0

	rm := RenderMesh{
		EntityID: v.ID,
		Name:     v.Name,
		Color:    color(v, index),
		Opacity:  1,
		Selected: v.Selected,
	}
	if v.IsHole {
		rm.Opacity = HoleOpacity
	}

	rm.Vertices = make([]float32, 0, v.Mesh.VertexCount()*3)
	rm.Normals = make([]float32, 0, v.Mesh.VertexCount()*3)
	rm.Indices = make([]uint32, 0, v.Mesh.TriangleCount()*3)
	for _, f := range v.Mesh.Faces {
		base := uint32(len(rm.Vertices) / 3)
		for _, vert := range f.Vertices {
			p := mgl64.TransformCoordinate(mgl64.Vec3(vert.Position), world)
			n := normalMat.Mul3x1(mgl64.Vec3(vert.Normal))
			if l := n.Len(); l > 0 {
				n = n.Mul(1 / l)
			}
			rm.Vertices = append(rm.Vertices, float32(p[0]), float32(p[1]), float32(p[2]))
			rm.Normals = append(rm.Normals, float32(n[0]), float32(n[1]), float32(n[2]))
		}
		// Fan triangulation; a mirroring transform flips the winding.
		for i := 1; i+1 < len(f.Vertices); i++ {
			a, b := base+uint32(i), base+uint32(i+1)
			if mirrored {
				a, b = b, a
			}
			rm.Indices = append(rm.Indices, base, a, b)
		}
	}
	return rm, nil
}

// color picks the material colour, falling back to the palette.
func color(v *scene.EntityView, index int) string {
	if v.Material != nil && v.Material.Color != "" {
		return v.Material.Color
	}
	return scene.Palette[index%len(scene.Palette)]
}

// Bounds returns the world-space bounding box of all meshes.
func Bounds(meshes []RenderMesh) (min, max [3]float32) {
	first := true
	for _, m := range meshes {
		for i := 0; i+2 < len(m.Vertices); i += 3 {
			for k := 0; k < 3; k++ {
				c := m.Vertices[i+k]
				if first || c < min[k] {
					min[k] = c
				}
				if first || c > max[k] {
					max[k] = c
				}
			}
			first = false
		}
	}
	return min, max
}
