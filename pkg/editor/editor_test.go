package editor

import (
	"bytes"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chazu/carve/pkg/csg"
	"github.com/chazu/carve/pkg/kernel"
	"github.com/chazu/carve/pkg/logging"
	"github.com/chazu/carve/pkg/scene"
)

func addBox(t *testing.T, ed *Editor, name string, x float64) scene.EntityID {
	t.Helper()
	r, err := ed.AddPrimitive(kernel.ShapeBox, name, scene.At(x, 0, 0), 1, 1, 1)
	require.NoError(t, err)
	require.Len(t, r.IDs, 1)
	return r.IDs[0]
}

func requireValid(t *testing.T, ed *Editor) {
	t.Helper()
	errs := ed.Validate()
	require.False(t, scene.HasErrors(errs), "%v", errs)
}

func TestAddPrimitive(t *testing.T) {
	ed := New()
	r, err := ed.AddPrimitive(kernel.ShapeCylinder, "", scene.At(1, 2, 3), 2, 0.5)
	require.NoError(t, err)
	require.Len(t, r.IDs, 1)

	v := r.Snapshot.Find(r.IDs[0])
	require.NotNil(t, v)
	assert.Equal(t, "cylinder", v.Name)
	assert.Equal(t, scene.KindSolid, v.Kind)
	assert.Equal(t, scene.Palette[0], v.Material.Color)
	assert.InDelta(t, 2.0, v.World.Position[1], 1e-9)
	assert.Positive(t, v.Faces)

	id, ok := ed.Lookup("cylinder")
	assert.True(t, ok)
	assert.Equal(t, r.IDs[0], id)
}

func TestAddPrimitiveRejectsBadDimensions(t *testing.T) {
	ed := New()
	_, err := ed.AddPrimitive(kernel.ShapeSphere, "s", scene.Identity(), -1)
	require.Error(t, err)
	assert.ErrorIs(t, err, scene.ErrInvalidOperand)

	_, err = ed.AddPrimitive(kernel.ShapeBox, "b", scene.Transform{Scale: mgl64.Vec3{0, 1, 1}}, 1, 1, 1)
	assert.ErrorIs(t, err, scene.ErrInvalidOperand)
	assert.Empty(t, ed.Snapshot().Entities)
}

func TestBooleanOnSelection(t *testing.T) {
	ed := New()
	a := addBox(t, ed, "a", 0)
	b := addBox(t, ed, "b", 0.5)

	_, err := ed.Select(a, false)
	require.NoError(t, err)
	_, err = ed.Select(b, true)
	require.NoError(t, err)

	r, err := ed.BooleanOp(csg.OpSubtract, nil)
	require.NoError(t, err)
	require.Len(t, r.IDs, 1)
	assert.NoError(t, r.Warning())

	snap := r.Snapshot
	require.Len(t, snap.Entities, 1)
	assert.Equal(t, []scene.EntityID{r.IDs[0]}, snap.Selection)
	assert.Equal(t, "subtract", snap.Entities[0].Name)
	assert.Nil(t, snap.Find(a))
	assert.Nil(t, snap.Find(b))
	requireValid(t, ed)
}

func TestBooleanOpKinds(t *testing.T) {
	tests := []struct {
		op         csg.Op
		volume     float64
		minX, maxX float64
	}{
		{csg.OpUnion, 1.5, -0.5, 1},
		{csg.OpSubtract, 0.5, -0.5, 0},
		{csg.OpIntersect, 0.5, 0, 0.5},
	}
	for _, tt := range tests {
		t.Run(tt.op.String(), func(t *testing.T) {
			ed := New()
			a := addBox(t, ed, "a", 0)
			b := addBox(t, ed, "b", 0.5)

			r, err := ed.BooleanOp(tt.op, []scene.EntityID{a, b})
			require.NoError(t, err)
			v := r.Snapshot.Find(r.IDs[0])
			require.NotNil(t, v)
			assert.Equal(t, tt.op.String(), v.Name)

			solid, _ := csg.FromMesh(v.Mesh, v.WorldMatrix, "")
			assert.InDelta(t, tt.volume, solid.Volume(), 1e-6)
			bounds := solid.Bounds()
			assert.InDelta(t, tt.minX, bounds.Min.X, 1e-6)
			assert.InDelta(t, tt.maxX, bounds.Max.X, 1e-6)
		})
	}
}

func TestAddTorus(t *testing.T) {
	ed := New()
	r, err := ed.AddPrimitive(kernel.ShapeTorus, "", scene.Identity(), 1, 0.25)
	require.NoError(t, err)
	v := r.Snapshot.Find(r.IDs[0])
	require.NotNil(t, v)
	assert.Equal(t, "torus", v.Name)
	assert.Positive(t, v.Faces)

	_, err = ed.AddPrimitive(kernel.ShapeTorus, "", scene.Identity(), 1, 1)
	assert.ErrorIs(t, err, scene.ErrInvalidOperand)
}

func TestBooleanInsufficientSelection(t *testing.T) {
	ed := New()
	a := addBox(t, ed, "a", 0)
	_, err := ed.Select(a, false)
	require.NoError(t, err)

	_, err = ed.BooleanOp(csg.OpUnion, nil)
	assert.ErrorIs(t, err, scene.ErrInsufficientSelection)
	assert.Len(t, ed.Snapshot().Entities, 1)
}

func TestPolygonLimit(t *testing.T) {
	ed := New(WithMaxPolygons(10))
	a := addBox(t, ed, "a", 0)
	b := addBox(t, ed, "b", 0.5)
	before := ed.Snapshot()

	_, err := ed.BooleanOp(csg.OpUnion, []scene.EntityID{a, b})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrPolygonLimit)

	var opErr *scene.OpError
	require.True(t, errors.As(err, &opErr))
	assert.Equal(t, "union", opErr.Op)
	assert.Equal(t, before, ed.Snapshot())

	ed = New(WithMaxPolygons(12))
	a = addBox(t, ed, "a", 0)
	b = addBox(t, ed, "b", 0.5)
	_, err = ed.BooleanOp(csg.OpUnion, []scene.EntityID{a, b})
	assert.NoError(t, err)
}

func TestGroupUngroupSelection(t *testing.T) {
	ed := New()
	a := addBox(t, ed, "a", 0)
	b := addBox(t, ed, "b", 3)

	r, err := ed.Group([]scene.EntityID{a, b})
	require.NoError(t, err)
	gid := r.IDs[0]
	assert.Equal(t, []scene.EntityID{gid}, r.Snapshot.Selection)

	r, err = ed.Ungroup(scene.EntityID{})
	require.NoError(t, err)
	assert.ElementsMatch(t, []scene.EntityID{a, b}, r.IDs)
	assert.Nil(t, r.Snapshot.Find(gid))
	assert.InDelta(t, 3.0, r.Snapshot.Find(b).World.Position[0], 1e-9)

	ed.ClearSelection()
	_, err = ed.Ungroup(scene.EntityID{})
	assert.ErrorIs(t, err, scene.ErrInsufficientSelection)

	_, err = ed.Ungroup(a)
	assert.ErrorIs(t, err, scene.ErrNotAGroup)
	requireValid(t, ed)
}

func TestDeleteGroupRemovesMembers(t *testing.T) {
	ed := New()
	a := addBox(t, ed, "a", 0)
	b := addBox(t, ed, "b", 3)
	addBox(t, ed, "c", 6)

	_, err := ed.Group([]scene.EntityID{a, b})
	require.NoError(t, err)
	before := len(ed.Snapshot().Entities)

	r, err := ed.Delete(nil)
	require.NoError(t, err)
	assert.Equal(t, before-3, len(r.Snapshot.Entities))
	assert.Empty(t, r.Snapshot.Selection)

	_, err = ed.Delete(nil)
	assert.ErrorIs(t, err, scene.ErrInsufficientSelection)
	requireValid(t, ed)
}

func TestTransformEdits(t *testing.T) {
	ed := New()
	a := addBox(t, ed, "a", 0)

	_, err := ed.Move(a, mgl64.Vec3{1, 2, 3})
	require.NoError(t, err)
	_, err = ed.Rotate(a, mgl64.Vec3{0, 90, 0})
	require.NoError(t, err)
	r, err := ed.Scale(a, mgl64.Vec3{2, 2, 2})
	require.NoError(t, err)

	v := r.Snapshot.Find(a)
	require.NotNil(t, v)
	want := scene.Transform{
		Position: mgl64.Vec3{1, 2, 3},
		Rotation: mgl64.Vec3{0, 90, 0},
		Scale:    mgl64.Vec3{2, 2, 2},
	}
	assert.True(t, v.Local.ApproxEqual(want, 1e-9), "got %+v", v.Local)

	_, err = ed.Scale(a, mgl64.Vec3{1, 0, 1})
	assert.ErrorIs(t, err, scene.ErrInvalidOperand)

	_, err = ed.Move(scene.NewEntityID(), mgl64.Vec3{})
	assert.ErrorIs(t, err, scene.ErrNotFound)
}

func TestSnapUsesGrid(t *testing.T) {
	ed := New(WithGrid(scene.Grid{Position: 0.25, Rotation: 15, Scale: 0.1}))
	a := addBox(t, ed, "a", 0)
	_, err := ed.SetTransform(a, scene.Transform{
		Position: mgl64.Vec3{0.3, 0.1, -0.9},
		Rotation: mgl64.Vec3{8, 0, 44},
		Scale:    mgl64.Vec3{1.04, 1, 1},
	})
	require.NoError(t, err)
	_, err = ed.Select(a, false)
	require.NoError(t, err)

	r, err := ed.Snap(nil)
	require.NoError(t, err)
	got := r.Snapshot.Find(a).Local
	assert.InDeltaSlice(t, []float64{0.25, 0, -1}, got.Position[:], 1e-9)
	assert.InDeltaSlice(t, []float64{15, 0, 45}, got.Rotation[:], 1e-9)
	assert.InDeltaSlice(t, []float64{1, 1, 1}, got.Scale[:], 1e-9)

	_, err = ed.Snap([]scene.EntityID{scene.NewEntityID()})
	assert.ErrorIs(t, err, scene.ErrNotFound)
}

func TestSetHoleAndMaterial(t *testing.T) {
	ed := New()
	a := addBox(t, ed, "a", 0)
	b := addBox(t, ed, "b", 2)

	r, err := ed.SetHole(a, true)
	require.NoError(t, err)
	assert.True(t, r.Snapshot.Find(a).IsHole)

	r, err = ed.SetMaterial(a, scene.Material{Name: "steel", Color: "#888888"})
	require.NoError(t, err)
	assert.Equal(t, "steel", r.Snapshot.Find(a).Material.Name)

	g, err := ed.Group([]scene.EntityID{a, b})
	require.NoError(t, err)
	_, err = ed.SetHole(g.IDs[0], true)
	assert.ErrorIs(t, err, scene.ErrInvalidOperand)
}

func TestLogging(t *testing.T) {
	var buf bytes.Buffer
	l := logging.New(logging.Config{Level: slog.LevelDebug, Format: logging.FormatJSON, Output: &buf})
	ed := New(WithLogger(l))

	addBox(t, ed, "a", 0)
	_, err := ed.Group(nil)
	require.Error(t, err)

	var records []map[string]any
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		var rec map[string]any
		require.NoError(t, json.Unmarshal([]byte(line), &rec))
		records = append(records, rec)
	}
	require.Len(t, records, 2)
	assert.Equal(t, "DEBUG", records[0]["level"])
	assert.Equal(t, "mutation", records[0]["msg"])
	assert.Equal(t, "editor", records[0]["component"])
	assert.Equal(t, "INFO", records[1]["level"])
	assert.Equal(t, "rejected", records[1]["msg"])
	assert.Equal(t, "group", records[1]["op"])
}

func TestConcurrentAccess(t *testing.T) {
	ed := New()
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			r, err := ed.AddPrimitive(kernel.ShapeBox, "", scene.At(float64(i)*2, 0, 0), 1, 1, 1)
			if err != nil {
				t.Error(err)
				return
			}
			if _, err := ed.Select(r.IDs[0], true); err != nil {
				t.Error(err)
			}
			ed.Snapshot()
		}(i)
	}
	wg.Wait()

	snap := ed.Snapshot()
	assert.Len(t, snap.Entities, 8)
	assert.Len(t, snap.Selection, 8)
	requireValid(t, ed)
}
