// Package editor is the single writer of a scene. It exposes the entry
// points a user interface drives (boolean operations, grouping, deletion,
// selection, transform edits and snapping) and answers each with a fresh
// snapshot or a typed failure. All methods are safe for concurrent use; they
// run one at a time.
package editor

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/chazu/carve/pkg/csg"
	"github.com/chazu/carve/pkg/kernel"
	"github.com/chazu/carve/pkg/kernel/polyhedra"
	"github.com/chazu/carve/pkg/logging"
	"github.com/chazu/carve/pkg/scene"
)

// ErrPolygonLimit is returned when the operands of a boolean operation
// together exceed the configured polygon ceiling.
var ErrPolygonLimit = errors.New("polygon limit exceeded")

// Result is returned by every successful mutation.
type Result struct {
	Snapshot scene.Snapshot
	// IDs lists the entities created or affected by the operation, in
	// operation order.
	IDs []scene.EntityID
	// Report carries the sliver count of a boolean operation.
	Report csg.Report
}

// Warning returns the non-fatal precision warning of a boolean operation,
// or nil.
func (r Result) Warning() error {
	return r.Report.Warning()
}

// Editor owns a scene graph and serialises every access to it.
type Editor struct {
	mu          sync.Mutex
	graph       *scene.Graph
	prims       kernel.Primitives
	grid        scene.Grid
	maxPolygons int
	log         *slog.Logger
}

// Option configures an Editor.
type Option func(*Editor)

// WithPrimitives sets the mesh source used by AddPrimitive.
func WithPrimitives(p kernel.Primitives) Option {
	return func(e *Editor) { e.prims = p }
}

// WithGrid sets the snapping steps used by Snap.
func WithGrid(g scene.Grid) Option {
	return func(e *Editor) { e.grid = g }
}

// WithMaxPolygons bounds the combined operand size of boolean operations.
// Zero or less disables the check.
func WithMaxPolygons(n int) Option {
	return func(e *Editor) { e.maxPolygons = n }
}

// WithLogger sets the logger; the editor tags it with its component name.
func WithLogger(l *slog.Logger) Option {
	return func(e *Editor) { e.log = l }
}

// New creates an editor over an empty scene.
func New(opts ...Option) *Editor {
	e := &Editor{
		graph: scene.New(),
		grid:  scene.DefaultGrid,
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.prims == nil {
		e.prims = polyhedra.New(polyhedra.DefaultSegments)
	}
	e.log = logging.Component(e.log, "editor")
	return e
}

// Grid returns the snapping steps.
func (e *Editor) Grid() scene.Grid {
	return e.grid
}

// Snapshot returns the current scene.
func (e *Editor) Snapshot() scene.Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.graph.Snapshot()
}

// Validate runs the scene invariant checks.
func (e *Editor) Validate() []scene.ValidationError {
	e.mu.Lock()
	defer e.mu.Unlock()
	return scene.Validate(e.graph)
}

// Lookup returns the id of the first entity with the given name.
func (e *Editor) Lookup(name string) (scene.EntityID, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	ent := e.graph.Lookup(name)
	if ent == nil {
		return scene.EntityID{}, false
	}
	return ent.ID, true
}

// AddPrimitive builds a primitive mesh, places it with t and adds it at the
// top level. An empty name defaults to the shape name.
func (e *Editor) AddPrimitive(shape kernel.Shape, name string, t scene.Transform, dims ...float64) (Result, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if name == "" {
		name = string(shape)
	}
	mesh, err := kernel.Build(e.prims, shape, dims...)
	if err != nil {
		return e.reject("add", nil, &scene.OpError{Op: "add", Err: fmt.Errorf("%w: %v", scene.ErrInvalidOperand, err)})
	}
	id, err := e.graph.AddSolid(name, mesh, scene.Material{}, t)
	if err != nil {
		return e.reject("add", nil, err)
	}
	e.log.Debug("mutation", "op", "add", "shape", shape, "id", id.Short(), "faces", mesh.FaceCount())
	return e.result(nil, id), nil
}

// BooleanOp combines the first two ids, or the first two selected entities
// when ids is empty.
func (e *Editor) BooleanOp(op csg.Op, ids []scene.EntityID) (Result, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	name := op.String()
	ids = e.orSelection(ids)
	if err := e.checkPolygonLimit(name, ids); err != nil {
		return e.reject(name, ids, err)
	}
	id, report, err := e.graph.ApplyBoolean(op, ids)
	if err != nil {
		return e.reject(name, ids, err)
	}
	if w := report.Warning(); w != nil {
		e.log.Warn("precision warning", "op", name, "id", id.Short(), "dropped", report.Dropped, "error", w)
	}
	e.log.Debug("mutation", "op", name, "id", id.Short(), "operands", shortIDs(ids[:2]))
	r := e.result(nil, id)
	r.Report = report
	return r, nil
}

func (e *Editor) checkPolygonLimit(op string, ids []scene.EntityID) error {
	if e.maxPolygons <= 0 || len(ids) < 2 {
		return nil
	}
	total := 0
	for _, id := range ids[:2] {
		ent := e.graph.Get(id)
		if ent == nil || ent.Kind != scene.KindSolid {
			return nil
		}
		total += ent.Solid().Mesh.FaceCount()
	}
	if total > e.maxPolygons {
		return &scene.OpError{
			Op:  op,
			IDs: ids[:2],
			Err: fmt.Errorf("%w: %d polygons, limit %d", ErrPolygonLimit, total, e.maxPolygons),
		}
	}
	return nil
}

// Group wraps ids, or the selection when ids is empty, in a new group.
func (e *Editor) Group(ids []scene.EntityID) (Result, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	ids = e.orSelection(ids)
	gid, err := e.graph.Group(ids)
	if err != nil {
		return e.reject("group", ids, err)
	}
	e.log.Debug("mutation", "op", "group", "id", gid.Short(), "members", shortIDs(ids))
	return e.result(nil, gid), nil
}

// Ungroup dissolves a group. A zero id means the primary selection.
func (e *Editor) Ungroup(id scene.EntityID) (Result, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if id.IsZero() {
		if sel := e.graph.Selection(); len(sel) > 0 {
			id = sel[0]
		} else {
			return e.reject("ungroup", nil, &scene.OpError{Op: "ungroup", Err: scene.ErrInsufficientSelection})
		}
	}
	children, err := e.graph.Ungroup(id)
	if err != nil {
		return e.reject("ungroup", []scene.EntityID{id}, err)
	}
	e.log.Debug("mutation", "op", "ungroup", "id", id.Short(), "children", shortIDs(children))
	return e.result(children), nil
}

// Delete removes ids, or the selection when ids is empty, with everything
// they contain.
func (e *Editor) Delete(ids []scene.EntityID) (Result, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	ids = e.orSelection(ids)
	n, err := e.graph.Delete(ids)
	if err != nil {
		return e.reject("delete", ids, err)
	}
	e.log.Debug("mutation", "op", "delete", "ids", shortIDs(ids), "removed", n)
	return e.result(ids), nil
}

// Select picks id, resolved to its top-level ancestor. With additive set
// the pick toggles membership instead of replacing the selection.
func (e *Editor) Select(id scene.EntityID, additive bool) (Result, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.graph.Select(id, additive); err != nil {
		return e.reject("select", []scene.EntityID{id}, err)
	}
	e.log.Debug("mutation", "op", "select", "id", id.Short(), "additive", additive)
	return e.result(nil), nil
}

// ClearSelection deselects everything.
func (e *Editor) ClearSelection() Result {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.graph.ClearSelection()
	return e.result(nil)
}

// SetTransform replaces the local transform of id.
func (e *Editor) SetTransform(id scene.EntityID, t scene.Transform) (Result, error) {
	return e.edit("transform", id, func(scene.Transform) scene.Transform { return t })
}

// Move sets the local position of id.
func (e *Editor) Move(id scene.EntityID, pos mgl64.Vec3) (Result, error) {
	return e.edit("move", id, func(t scene.Transform) scene.Transform {
		t.Position = pos
		return t
	})
}

// Rotate sets the local Euler angles of id, in degrees.
func (e *Editor) Rotate(id scene.EntityID, deg mgl64.Vec3) (Result, error) {
	return e.edit("rotate", id, func(t scene.Transform) scene.Transform {
		t.Rotation = deg
		return t
	})
}

// Scale sets the local scale of id.
func (e *Editor) Scale(id scene.EntityID, s mgl64.Vec3) (Result, error) {
	return e.edit("scale", id, func(t scene.Transform) scene.Transform {
		t.Scale = s
		return t
	})
}

func (e *Editor) edit(op string, id scene.EntityID, fn func(scene.Transform) scene.Transform) (Result, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	ent := e.graph.Get(id)
	if ent == nil {
		return e.reject(op, []scene.EntityID{id}, &scene.OpError{Op: op, IDs: []scene.EntityID{id}, Err: scene.ErrNotFound})
	}
	t := fn(ent.Transform)
	if err := e.graph.SetTransform(id, t); err != nil {
		return e.reject(op, []scene.EntityID{id}, err)
	}
	e.log.Debug("mutation", "op", op, "id", id.Short(), "position", t.Position, "rotation", t.Rotation, "scale", t.Scale)
	return e.result(nil, id), nil
}

// Snap quantises the local transforms of ids, or of the selection when ids
// is empty, to the editor's grid.
func (e *Editor) Snap(ids []scene.EntityID) (Result, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	ids = e.orSelection(ids)
	if len(ids) == 0 {
		return e.reject("snap", nil, &scene.OpError{Op: "snap", Err: scene.ErrInsufficientSelection})
	}
	for _, id := range ids {
		if e.graph.Get(id) == nil {
			return e.reject("snap", ids, &scene.OpError{Op: "snap", IDs: []scene.EntityID{id}, Err: scene.ErrNotFound})
		}
	}
	for _, id := range ids {
		if err := e.graph.Snap(id, e.grid); err != nil {
			return e.reject("snap", ids, err)
		}
	}
	e.log.Debug("mutation", "op", "snap", "ids", shortIDs(ids))
	return e.result(ids), nil
}

// Rename sets the display name of id.
func (e *Editor) Rename(id scene.EntityID, name string) (Result, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.graph.Rename(id, name); err != nil {
		return e.reject("rename", []scene.EntityID{id}, err)
	}
	e.log.Debug("mutation", "op", "rename", "id", id.Short(), "name", name)
	return e.result(nil, id), nil
}

// SetHole marks a solid as a hole.
func (e *Editor) SetHole(id scene.EntityID, hole bool) (Result, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.graph.SetHole(id, hole); err != nil {
		return e.reject("hole", []scene.EntityID{id}, err)
	}
	e.log.Debug("mutation", "op", "hole", "id", id.Short(), "hole", hole)
	return e.result(nil, id), nil
}

// SetMaterial replaces the material of a solid.
func (e *Editor) SetMaterial(id scene.EntityID, mat scene.Material) (Result, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.graph.SetMaterial(id, mat); err != nil {
		return e.reject("material", []scene.EntityID{id}, err)
	}
	e.log.Debug("mutation", "op", "material", "id", id.Short(), "material", mat.Name, "color", mat.Color)
	return e.result(nil, id), nil
}

// orSelection returns ids, or the current selection when ids is empty.
// Callers hold e.mu.
func (e *Editor) orSelection(ids []scene.EntityID) []scene.EntityID {
	if len(ids) > 0 {
		return ids
	}
	return e.graph.Selection()
}

func (e *Editor) result(ids []scene.EntityID, extra ...scene.EntityID) Result {
	return Result{
		Snapshot: e.graph.Snapshot(),
		IDs:      append(append([]scene.EntityID(nil), extra...), ids...),
	}
}

func (e *Editor) reject(op string, ids []scene.EntityID, err error) (Result, error) {
	e.log.Info("rejected", "op", op, "ids", shortIDs(ids), "error", err)
	return Result{}, err
}

func shortIDs(ids []scene.EntityID) []string {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = id.Short()
	}
	return out
}
