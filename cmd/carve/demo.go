package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/chazu/carve/pkg/csg"
	"github.com/chazu/carve/pkg/editor"
	"github.com/chazu/carve/pkg/kernel"
	"github.com/chazu/carve/pkg/scene"
)

type booleanStep struct {
	Op        string     `json:"op" yaml:"op"`
	Faces     int        `json:"faces" yaml:"faces"`
	Triangles int        `json:"triangles" yaml:"triangles"`
	Volume    float64    `json:"volume" yaml:"volume"`
	Min       [3]float64 `json:"min" yaml:"min"`
	Max       [3]float64 `json:"max" yaml:"max"`
	Dropped   int        `json:"dropped,omitempty" yaml:"dropped,omitempty"`
}

type groupStep struct {
	EntitiesBefore  int  `json:"entities_before" yaml:"entities_before"`
	EntitiesAfter   int  `json:"entities_after" yaml:"entities_after"`
	RoundTripStable bool `json:"round_trip_stable" yaml:"round_trip_stable"`
}

type demoReport struct {
	Booleans []booleanStep `json:"booleans" yaml:"booleans"`
	Group    groupStep     `json:"group" yaml:"group"`
}

func (a *app) demoCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "demo",
		Short: "Combine two overlapping unit cubes and group, ungroup and delete them",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			rep, err := a.demo()
			if err != nil {
				return err
			}
			return a.encode(cmd.OutOrStdout(), rep)
		},
	}
}

// demo runs unit cubes at x=0 and x=0.5 through every boolean operation,
// then groups, ungroups and deletes a pair of cubes.
func (a *app) demo() (*demoReport, error) {
	opts, err := a.editorOptions()
	if err != nil {
		return nil, err
	}
	rep := &demoReport{}

	for _, op := range []csg.Op{csg.OpUnion, csg.OpSubtract, csg.OpIntersect} {
		ed := editor.New(opts...)
		ids, err := addCubes(ed, 0.5)
		if err != nil {
			return nil, err
		}
		r, err := ed.BooleanOp(op, ids)
		if err != nil {
			return nil, err
		}
		v := r.Snapshot.Find(r.IDs[0])
		solid, _ := csg.FromMesh(v.Mesh, v.WorldMatrix, "")
		b := solid.Bounds()
		rep.Booleans = append(rep.Booleans, booleanStep{
			Op:        op.String(),
			Faces:     v.Faces,
			Triangles: v.Triangles,
			Volume:    solid.Volume(),
			Min:       [3]float64{b.Min.X, b.Min.Y, b.Min.Z},
			Max:       [3]float64{b.Max.X, b.Max.Y, b.Max.Z},
			Dropped:   r.Report.Dropped,
		})
	}

	ed := editor.New(opts...)
	ids, err := addCubes(ed, 3)
	if err != nil {
		return nil, err
	}
	before := ed.Snapshot()
	g, err := ed.Group(ids)
	if err != nil {
		return nil, err
	}
	if _, err := ed.Ungroup(g.IDs[0]); err != nil {
		return nil, err
	}
	after := ed.Snapshot()
	rep.Group.RoundTripStable = true
	for _, id := range ids {
		if !before.Find(id).World.ApproxEqual(after.Find(id).World, 1e-9) {
			rep.Group.RoundTripStable = false
		}
	}

	g, err = ed.Group(ids)
	if err != nil {
		return nil, err
	}
	rep.Group.EntitiesBefore = len(g.Snapshot.Entities)
	d, err := ed.Delete(g.IDs)
	if err != nil {
		return nil, err
	}
	rep.Group.EntitiesAfter = len(d.Snapshot.Entities)
	return rep, nil
}

func addCubes(ed *editor.Editor, offset float64) ([]scene.EntityID, error) {
	var ids []scene.EntityID
	for i, name := range []string{"a", "b"} {
		r, err := ed.AddPrimitive(kernel.ShapeBox, name, scene.At(float64(i)*offset, 0, 0), 1, 1, 1)
		if err != nil {
			return nil, fmt.Errorf("demo: %w", err)
		}
		ids = append(ids, r.IDs[0])
	}
	return ids, nil
}
