package engine

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chazu/carve/pkg/editor"
	"github.com/chazu/carve/pkg/scene"
)

// ---------------------------------------------------------------------------
// Preprocessing tests
// ---------------------------------------------------------------------------

func TestPreprocessKeywords(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		expect string
	}{
		{
			name:   "simple keyword",
			input:  `(sphere :radius 2)`,
			expect: `(sphere "__kw_radius" 2)`,
		},
		{
			name:   "multiple keywords",
			input:  `(cylinder :height 4 :radius 1)`,
			expect: `(cylinder "__kw_height" 4 "__kw_radius" 1)`,
		},
		{
			name:   "keyword in string preserved",
			input:  `"thing with :keyword inside"`,
			expect: `"thing with :keyword inside"`,
		},
		{
			name:   "assignment operator preserved",
			input:  `(def x := 10)`,
			expect: `(def x := 10)`,
		},
		{
			name:   "kebab-case identifier",
			input:  `(set-material a :name "steel")`,
			expect: `(set_material a "__kw_name" "steel")`,
		},
		{
			name:   "minus operator preserved",
			input:  `(- 10 5)`,
			expect: `(- 10 5)`,
		},
		{
			name:   "negative number preserved",
			input:  `(vec3 -1 0 -2.5)`,
			expect: `(vec3 -1 0 -2.5)`,
		},
		{
			name:   "comment converted to // style",
			input:  `;; comment with :keyword`,
			expect: `// comment with :keyword`,
		},
		{
			name:   "single semicolon comment",
			input:  `; simple comment`,
			expect: `// simple comment`,
		},
		{
			name:   "hyphen in keyword preserved",
			input:  `:max-polygons`,
			expect: `"__kw_max-polygons"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := preprocessSource(tt.input)
			if got != tt.expect {
				t.Errorf("preprocessSource(%q) = %q, want %q", tt.input, got, tt.expect)
			}
		})
	}
}

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

func eval(t *testing.T, source string, opts ...Option) *EvalResult {
	t.Helper()
	res, evalErrs, err := NewEngine(opts...).Evaluate(source)
	require.NoError(t, err)
	require.Empty(t, evalErrs)
	require.NotNil(t, res)
	return res
}

func evalFails(t *testing.T, source string, opts ...Option) EvalError {
	t.Helper()
	res, evalErrs, err := NewEngine(opts...).Evaluate(source)
	require.NoError(t, err, "expected a non-fatal eval error")
	require.Nil(t, res)
	require.NotEmpty(t, evalErrs)
	return evalErrs[0]
}

func byName(t *testing.T, res *EvalResult, name string) scene.EntityView {
	t.Helper()
	for _, v := range res.Snapshot.Entities {
		if v.Name == name {
			return v
		}
	}
	t.Fatalf("no entity named %q", name)
	return scene.EntityView{}
}

// ---------------------------------------------------------------------------
// Primitives and placement
// ---------------------------------------------------------------------------

func TestPrimitives(t *testing.T) {
	res := eval(t, `
(box 1 2 3 :name "brick")
(box :size (vec3 1 1 1) :name "cube" :at (vec3 0 5 0))
(cylinder :height 2 :radius 0.5)
(cone 2 0.5 :rotate (vec3 0 0 90))
(sphere :radius 1 :scale 2)
(torus :major 1 :minor 0.25 :name "ring")
`)
	require.Len(t, res.Snapshot.Entities, 6)

	brick := byName(t, res, "brick")
	assert.Equal(t, scene.KindSolid, brick.Kind)
	assert.Equal(t, 6, brick.Faces)
	mn, _ := brick.Mesh.Bounds()
	assert.InDeltaSlice(t, []float64{-0.5, -1, -1.5}, mn[:], 1e-9)

	cube := byName(t, res, "cube")
	assert.InDelta(t, 5.0, cube.World.Position[1], 1e-9)

	byName(t, res, "cylinder")
	cone := byName(t, res, "cone")
	assert.InDelta(t, 90.0, cone.Local.Rotation[2], 1e-9)
	sphere := byName(t, res, "sphere")
	assert.InDeltaSlice(t, []float64{2, 2, 2}, sphere.Local.Scale[:], 1e-9)

	ring := byName(t, res, "ring")
	mn, mx := ring.Mesh.Bounds()
	assert.InDelta(t, 1.25, mx[0], 1e-9)
	assert.InDelta(t, -0.25, mn[1], 1e-9)
}

func TestVariableReference(t *testing.T) {
	res := eval(t, `
(def s 2)
(def where (vec3 1 0 0))
(box s s s :name "cube" :at where)
`)
	cube := byName(t, res, "cube")
	assert.InDelta(t, 1.0, cube.World.Position[0], 1e-9)
	_, mx := cube.Mesh.Bounds()
	assert.InDelta(t, 1.0, mx[0], 1e-9)
}

func TestPrimitiveErrors(t *testing.T) {
	tests := []struct {
		name   string
		source string
		want   string
	}{
		{"missing dimension", `(cylinder :height 2)`, "missing :radius"},
		{"too many dimensions", `(sphere 1 2)`, "at most 1"},
		{"non-positive", `(box 1 0 1)`, "must be positive"},
		{"bad placement", `(box 1 1 1 :at 3)`, "expected vec3"},
		{"zero scale", `(box 1 1 1 :scale 0)`, "invalid operand"},
		{"bad vec3", `(vec3 1 2)`, "exactly 3"},
		{"torus missing minor", `(torus 1)`, "missing :minor"},
		{"torus without hole", `(torus 1 1)`, "smaller than major"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := evalFails(t, tt.source)
			assert.Contains(t, e.Message, tt.want)
		})
	}
}

func TestHoleAndMaterial(t *testing.T) {
	res := eval(t, `
(def a (box 1 1 1 :name "a"))
(hole a)
(set-material a :name "steel" :color "#888888")
(sphere 1 :name "void" :hole true :color "#ff0000")
(def c (cone 1 1 :name "c" :hole true))
(hole c false)
`)
	a := byName(t, res, "a")
	assert.True(t, a.IsHole)
	assert.Equal(t, "steel", a.Material.Name)
	assert.Equal(t, "#888888", a.Material.Color)

	void := byName(t, res, "void")
	assert.True(t, void.IsHole)
	assert.Equal(t, "#ff0000", void.Material.Color)

	assert.False(t, byName(t, res, "c").IsHole)
}

func TestTransformEdits(t *testing.T) {
	res := eval(t, `
(def a (box 1 1 1 :name "a"))
(move a 1 2 3)
(rotate a (vec3 0 90 0))
(scale a 2)
`)
	a := byName(t, res, "a")
	want := scene.Transform{
		Position: [3]float64{1, 2, 3},
		Rotation: [3]float64{0, 90, 0},
		Scale:    [3]float64{2, 2, 2},
	}
	assert.True(t, a.Local.ApproxEqual(want, 1e-9), "got %+v", a.Local)

	e := evalFails(t, `(move (box 1 1 1) 1 2)`)
	assert.Contains(t, e.Message, "three numbers")
}

func TestSnap(t *testing.T) {
	res := eval(t, `
(def a (box 1 1 1 :name "a" :at (vec3 0.3 0 -0.9)))
(snap a)
(def b (box 1 1 1 :name "b" :rotate (vec3 0 44 0)))
(select b)
(snap)
`)
	a := byName(t, res, "a")
	assert.InDeltaSlice(t, []float64{0.25, 0, -1}, a.Local.Position[:], 1e-9)
	b := byName(t, res, "b")
	assert.InDelta(t, 45.0, b.Local.Rotation[1], 1e-9)
}

func TestEntityLookup(t *testing.T) {
	res := eval(t, `
(box 1 1 1 :name "base")
(move (entity "base") 4 0 0)
`)
	assert.InDelta(t, 4.0, byName(t, res, "base").World.Position[0], 1e-9)

	e := evalFails(t, `(entity "nope")`)
	assert.Contains(t, e.Message, `no entity named "nope"`)
}

// ---------------------------------------------------------------------------
// Booleans
// ---------------------------------------------------------------------------

func TestBooleanSubtract(t *testing.T) {
	res := eval(t, `
(def a (box 1 1 1 :name "a"))
(def b (box 1 1 1 :name "b" :at (vec3 0.5 0 0)))
(subtract a b)
`)
	require.Len(t, res.Snapshot.Entities, 1)
	v := res.Snapshot.Entities[0]
	assert.Equal(t, "subtract", v.Name)
	assert.Equal(t, []scene.EntityID{v.ID}, res.Snapshot.Selection)

	mn, mx := v.Mesh.Bounds()
	assert.InDelta(t, -0.5, mn[0], 1e-6)
	assert.InDelta(t, 0.0, mx[0], 1e-6)
}

func TestBooleanOnSelection(t *testing.T) {
	res := eval(t, `
(def a (box 1 1 1))
(def b (box 1 1 1 :at (vec3 0.5 0 0)))
(select a b)
(intersect)
`)
	require.Len(t, res.Snapshot.Entities, 1)
	assert.Equal(t, "intersect", res.Snapshot.Entities[0].Name)
}

func TestBooleanFoldsOperands(t *testing.T) {
	res := eval(t, `
(def a (box 1 1 1))
(def b (box 1 1 1 :at (vec3 0.5 0 0)))
(def c (box 1 1 1 :at (vec3 1 0 0)))
(def u (union a b c))
(move u 0 1 0)
`)
	require.Len(t, res.Snapshot.Entities, 1)
	v := res.Snapshot.Entities[0]
	assert.Equal(t, "union", v.Name)
	assert.InDelta(t, 1.0, v.World.Position[1], 1e-9)

	mn, mx := v.Mesh.Bounds()
	assert.InDelta(t, -0.5, mn[0], 1e-6)
	assert.InDelta(t, 1.5, mx[0], 1e-6)
}

func TestBooleanRejections(t *testing.T) {
	tests := []struct {
		name   string
		source string
		want   string
	}{
		{"single operand", `(union (box 1 1 1))`, "insufficient selection"},
		{"empty selection", `(box 1 1 1) (subtract)`, "insufficient selection"},
		{"same operand", `(def a (box 1 1 1)) (union a a)`, "invalid operand"},
		{"group operand", `(def g (group (box 1 1 1) (box 1 1 1))) (union g (box 1 1 1))`, "invalid operand"},
		{"disjoint intersect", `(intersect (box 1 1 1) (box 1 1 1 :at (vec3 5 0 0)))`, "degenerate result"},
		{"not an entity", `(union 1 2)`, "expected entity reference"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := evalFails(t, tt.source)
			assert.Contains(t, e.Message, tt.want)
		})
	}
}

func TestPolygonLimit(t *testing.T) {
	opt := WithEditorOptions(editor.WithMaxPolygons(10))
	e := evalFails(t, `(union (box 1 1 1) (box 1 1 1 :at (vec3 0.5 0 0)))`, opt)
	assert.Contains(t, e.Message, "polygon limit exceeded")
}

// ---------------------------------------------------------------------------
// Grouping and deletion
// ---------------------------------------------------------------------------

func TestGroupMoveUngroup(t *testing.T) {
	res := eval(t, `
(def a (box 1 1 1 :name "a"))
(def b (box 1 1 1 :name "b" :at (vec3 3 0 0)))
(def g (group a b :name "pair"))
(move g 1 0 0)
(ungroup g)
`)
	require.Len(t, res.Snapshot.Entities, 2)
	assert.InDelta(t, 1.0, byName(t, res, "a").World.Position[0], 1e-9)
	assert.InDelta(t, 4.0, byName(t, res, "b").World.Position[0], 1e-9)
	assert.Len(t, res.Snapshot.Selection, 2)
}

func TestGroupKeepsName(t *testing.T) {
	res := eval(t, `
(group (box 1 1 1) (sphere 1 :at (vec3 3 0 0)) :name "pair")
(move (entity "pair") 0 0 2)
`)
	pair := byName(t, res, "pair")
	assert.Equal(t, scene.KindGroup, pair.Kind)
	assert.Len(t, pair.Children, 2)
	assert.InDelta(t, 2.0, pair.World.Position[2], 1e-9)
}

func TestUngroupPassesChildrenOn(t *testing.T) {
	res := eval(t, `
(def g (group (box 1 1 1) (box 1 1 1 :at (vec3 0.5 0 0))))
(union (ungroup g))
`)
	require.Len(t, res.Snapshot.Entities, 1)
	assert.Equal(t, "union", res.Snapshot.Entities[0].Name)
}

func TestDeleteGroup(t *testing.T) {
	res := eval(t, `
(def g (group (box 1 1 1) (box 1 1 1)))
(box 1 1 1 :name "keep")
(delete g)
`)
	require.Len(t, res.Snapshot.Entities, 1)
	assert.Equal(t, "keep", res.Snapshot.Entities[0].Name)

	e := evalFails(t, `(delete)`)
	assert.Contains(t, e.Message, "insufficient selection")
}

func TestValidationWarnings(t *testing.T) {
	res := eval(t, `
(def a (box 1 1 1))
(def b (box 1 1 1))
(group a b)
(delete a)
`)
	require.NotEmpty(t, res.Warnings)
	found := false
	for _, w := range res.Warnings {
		if strings.Contains(w.Message, "child") {
			found = true
		}
	}
	assert.True(t, found, "warnings: %v", res.Warnings)
}

func TestSelectionListing(t *testing.T) {
	res := eval(t, `
(def a (box 1 1 1))
(def b (box 1 1 1))
(select a b)
(select (selection))
(deselect)
`)
	assert.Empty(t, res.Snapshot.Selection)
}
