package scene

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// minScale is the smallest scale magnitude a transform may carry. Below it
// the matrix is not invertible and world placement cannot be recovered.
const minScale = 1e-9

// Transform is a local placement: scale first, then rotation about X, Y and
// Z (Euler angles in degrees, applied in that intrinsic order), then
// translation.
type Transform struct {
	Position mgl64.Vec3 `json:"position" yaml:"position"`
	Rotation mgl64.Vec3 `json:"rotation" yaml:"rotation"`
	Scale    mgl64.Vec3 `json:"scale" yaml:"scale"`
}

// Identity returns the transform that leaves geometry unchanged.
func Identity() Transform {
	return Transform{Scale: mgl64.Vec3{1, 1, 1}}
}

// At returns the identity transform moved to (x, y, z).
func At(x, y, z float64) Transform {
	t := Identity()
	t.Position = mgl64.Vec3{x, y, z}
	return t
}

// Matrix returns T·R·S.
func (t Transform) Matrix() mgl64.Mat4 {
	return mgl64.Translate3D(t.Position[0], t.Position[1], t.Position[2]).
		Mul4(rotationMatrix(t.Rotation)).
		Mul4(mgl64.Scale3D(t.Scale[0], t.Scale[1], t.Scale[2]))
}

// Valid reports whether every scale component is large enough for the
// matrix to be invertible.
func (t Transform) Valid() bool {
	for _, s := range t.Scale {
		if math.Abs(s) < minScale || math.IsNaN(s) {
			return false
		}
	}
	return true
}

// ApproxEqual compares two transforms through their matrices, so equivalent
// Euler triples compare equal.
func (t Transform) ApproxEqual(o Transform, eps float64) bool {
	return t.Matrix().ApproxEqualThreshold(o.Matrix(), eps)
}

func rotationMatrix(deg mgl64.Vec3) mgl64.Mat4 {
	return mgl64.HomogRotate3DX(mgl64.DegToRad(deg[0])).
		Mul4(mgl64.HomogRotate3DY(mgl64.DegToRad(deg[1]))).
		Mul4(mgl64.HomogRotate3DZ(mgl64.DegToRad(deg[2])))
}

// Decompose splits an affine matrix into translation, XYZ Euler rotation and
// scale. A mirrored matrix puts the sign on the X scale. Shear cannot be
// represented and is lost. ok is false when the matrix is singular.
func Decompose(m mgl64.Mat4) (t Transform, ok bool) {
	t.Position = m.Col(3).Vec3()

	c0, c1, c2 := m.Col(0).Vec3(), m.Col(1).Vec3(), m.Col(2).Vec3()
	t.Scale = mgl64.Vec3{c0.Len(), c1.Len(), c2.Len()}
	if m.Det() < 0 {
		t.Scale[0] = -t.Scale[0]
	}
	if !t.Valid() {
		return Transform{}, false
	}
	c0 = c0.Mul(1 / t.Scale[0])
	c1 = c1.Mul(1 / t.Scale[1])
	c2 = c2.Mul(1 / t.Scale[2])

	// r[row][col] of the pure rotation Rx·Ry·Rz.
	r00, r01, r02 := c0[0], c1[0], c2[0]
	r11, r12 := c1[1], c2[1]
	r21, r22 := c1[2], c2[2]

	y := math.Asin(mgl64.Clamp(r02, -1, 1))
	var x, z float64
	if math.Abs(r02) < 0.9999999 {
		x = math.Atan2(-r12, r22)
		z = math.Atan2(-r01, r00)
	} else {
		x = math.Atan2(r21, r11)
	}
	t.Rotation = mgl64.Vec3{mgl64.RadToDeg(x), mgl64.RadToDeg(y), mgl64.RadToDeg(z)}
	return t, true
}
