package kernel

import "math"

// Vertex is one corner of a face.
type Vertex struct {
	Position [3]float64 `json:"position" yaml:"position"`
	Normal   [3]float64 `json:"normal" yaml:"normal"`
}

// Face is a planar polygon of at least three vertices, wound
// counter-clockwise when seen from outside the solid. Tag identifies the
// operand a face originated from after boolean operations; empty means the
// face belongs to the mesh's own Tag.
type Face struct {
	Vertices []Vertex `json:"vertices" yaml:"vertices"`
	Tag      string   `json:"tag,omitempty" yaml:"tag,omitempty"`
}

// Mesh is a renderer-agnostic polygon soup in object space.
type Mesh struct {
	Faces []Face `json:"faces" yaml:"faces"`
	Tag   string `json:"tag,omitempty" yaml:"tag,omitempty"`
}

// FaceCount returns the number of faces.
func (m *Mesh) FaceCount() int {
	return len(m.Faces)
}

// VertexCount returns the number of face corners.
func (m *Mesh) VertexCount() int {
	n := 0
	for _, f := range m.Faces {
		n += len(f.Vertices)
	}
	return n
}

// TriangleCount returns the number of triangles a fan triangulation of every
// face would produce.
func (m *Mesh) TriangleCount() int {
	n := 0
	for _, f := range m.Faces {
		if len(f.Vertices) >= 3 {
			n += len(f.Vertices) - 2
		}
	}
	return n
}

// IsEmpty returns true if the mesh has no geometry.
func (m *Mesh) IsEmpty() bool {
	return len(m.Faces) == 0
}

// Bounds returns the axis-aligned bounding box of all vertex positions. An
// empty mesh returns zero vectors.
func (m *Mesh) Bounds() (min, max [3]float64) {
	if m.IsEmpty() {
		return min, max
	}
	min = [3]float64{math.Inf(1), math.Inf(1), math.Inf(1)}
	max = [3]float64{math.Inf(-1), math.Inf(-1), math.Inf(-1)}
	for _, f := range m.Faces {
		for _, v := range f.Vertices {
			for i := 0; i < 3; i++ {
				min[i] = math.Min(min[i], v.Position[i])
				max[i] = math.Max(max[i], v.Position[i])
			}
		}
	}
	return min, max
}

// Clone returns a deep copy.
func (m *Mesh) Clone() *Mesh {
	out := &Mesh{Tag: m.Tag, Faces: make([]Face, len(m.Faces))}
	for i, f := range m.Faces {
		vs := make([]Vertex, len(f.Vertices))
		copy(vs, f.Vertices)
		out.Faces[i] = Face{Vertices: vs, Tag: f.Tag}
	}
	return out
}

// FaceTag returns the effective tag of face i.
func (m *Mesh) FaceTag(i int) string {
	if t := m.Faces[i].Tag; t != "" {
		return t
	}
	return m.Tag
}
