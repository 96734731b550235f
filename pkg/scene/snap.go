package scene

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Grid holds the snapping steps for each transform channel. A non-positive
// step disables snapping for that channel.
type Grid struct {
	Position float64 `json:"position" yaml:"position" mapstructure:"position"`
	Rotation float64 `json:"rotation" yaml:"rotation" mapstructure:"rotation"` // degrees
	Scale    float64 `json:"scale" yaml:"scale" mapstructure:"scale"`
}

// DefaultGrid matches the editor's default snapping.
var DefaultGrid = Grid{Position: 0.25, Rotation: 15, Scale: 0.1}

// SnapValue rounds v to the nearest multiple of step. Halves round away from
// zero.
func SnapValue(v, step float64) float64 {
	if step <= 0 {
		return v
	}
	return math.Round(v/step) * step
}

func snapVec(v mgl64.Vec3, step float64) mgl64.Vec3 {
	return mgl64.Vec3{SnapValue(v[0], step), SnapValue(v[1], step), SnapValue(v[2], step)}
}

// SnapPosition snaps every component of a position.
func SnapPosition(v mgl64.Vec3, step float64) mgl64.Vec3 {
	return snapVec(v, step)
}

// SnapRotation snaps every Euler angle, in degrees.
func SnapRotation(v mgl64.Vec3, step float64) mgl64.Vec3 {
	return snapVec(v, step)
}

// SnapScale snaps every scale factor. A factor that would round to zero is
// kept one step away from it, with its sign, so the transform stays
// invertible.
func SnapScale(v mgl64.Vec3, step float64) mgl64.Vec3 {
	out := snapVec(v, step)
	for i := range out {
		if out[i] == 0 && step > 0 {
			out[i] = math.Copysign(step, v[i])
		}
	}
	return out
}

// Apply returns t with every channel snapped.
func (gr Grid) Apply(t Transform) Transform {
	return Transform{
		Position: SnapPosition(t.Position, gr.Position),
		Rotation: SnapRotation(t.Rotation, gr.Rotation),
		Scale:    SnapScale(t.Scale, gr.Scale),
	}
}

// Snap quantises the local transform of id to grid.
func (g *Graph) Snap(id EntityID, grid Grid) error {
	e := g.entities[id]
	if e == nil {
		return opError("snap", []EntityID{id}, ErrNotFound, "")
	}
	e.Transform = grid.Apply(e.Transform)
	g.version++
	return nil
}
