package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/chazu/carve/pkg/engine"
	"github.com/chazu/carve/pkg/scene"
	"github.com/chazu/carve/pkg/tessellate"
)

// report is what run and watch print for one evaluation.
type report struct {
	Script   string                  `json:"script" yaml:"script"`
	Errors   []string                `json:"errors,omitempty" yaml:"errors,omitempty"`
	Warnings []string                `json:"warnings,omitempty" yaml:"warnings,omitempty"`
	Scene    *scene.Snapshot         `json:"scene,omitempty" yaml:"scene,omitempty"`
	Meshes   []tessellate.RenderMesh `json:"meshes,omitempty" yaml:"meshes,omitempty"`
}

func (a *app) runCmd() *cobra.Command {
	var meshes bool
	cmd := &cobra.Command{
		Use:   "run <script>",
		Short: "Evaluate a scene script and print the resulting scene",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			eng, err := a.newEngine()
			if err != nil {
				return err
			}
			rep, err := a.evaluate(eng, args[0], meshes)
			if err != nil {
				return err
			}
			if err := a.encode(cmd.OutOrStdout(), rep); err != nil {
				return err
			}
			if len(rep.Errors) > 0 {
				return fmt.Errorf("%s: %d evaluation error(s)", args[0], len(rep.Errors))
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&meshes, "meshes", false, "include world-space render buffers in the output")
	return cmd
}

// evaluate reads and runs one script. Script errors land in the report;
// the returned error is reserved for fatal failures.
func (a *app) evaluate(eng *engine.Engine, path string, withMeshes bool) (*report, error) {
	src, err := readScript(path)
	if err != nil {
		return nil, err
	}
	return a.evaluateSource(eng, path, src, withMeshes)
}

// evaluateSource runs src, labelling the report with script.
func (a *app) evaluateSource(eng *engine.Engine, script, src string, withMeshes bool) (*report, error) {
	res, evalErrs, err := eng.Evaluate(src)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", script, err)
	}

	rep := &report{Script: script}
	for _, e := range evalErrs {
		rep.Errors = append(rep.Errors, e.Error())
	}
	if res == nil {
		return rep, nil
	}
	for _, w := range res.Warnings {
		rep.Warnings = append(rep.Warnings, w.String())
	}
	rep.Scene = &res.Snapshot
	if withMeshes {
		if rep.Meshes, err = tessellate.Tessellate(res.Snapshot); err != nil {
			return nil, err
		}
	}
	return rep, nil
}

func readScript(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()
	b, err := io.ReadAll(f)
	if err != nil {
		return "", fmt.Errorf("reading %s: %w", path, err)
	}
	return string(b), nil
}
