// Command carve builds solid-modelling scenes from scripts.
//
// Configuration is read, in increasing order of priority, from .carve.yml
// in the working directory (or the file named by --config or
// CARVE_CONFIG_FILE), CARVE_<SECTION>_<OPTION> environment variables and
// command-line flags.
package main

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/chazu/carve/pkg/config"
	"github.com/chazu/carve/pkg/editor"
	"github.com/chazu/carve/pkg/engine"
)

// app carries the state shared by every subcommand.
type app struct {
	v       *viper.Viper
	cfgFile string
	cfg     *config.Config
	log     *slog.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{v: config.NewViper()}

	root := &cobra.Command{
		Use:   "carve",
		Short: "Constructive solid geometry scenes from scripts",
		Long: `carve evaluates scene scripts: primitives are placed, grouped and
combined with union, subtract and intersect, and the resulting scene is
printed as YAML or JSON.

Quick Start:
  carve run scene.lisp        Evaluate a script and print the scene
  carve watch scene.lisp      Re-evaluate whenever the script changes
  carve demo                  Run the overlapping-cubes walkthrough
  carve template house        Build a bundled assembly`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.load(cmd)
		},
	}

	d := config.Default()
	pf := root.PersistentFlags()
	pf.StringVar(&a.cfgFile, "config", "", "config file (default is .carve.yml, can also use CARVE_CONFIG_FILE env var)")
	pf.StringP("log-level", "l", d.Log.Level, "log level (debug, info, warn, error)")
	pf.String("log-format", d.Log.Format, "log format (text, json)")
	pf.StringP("output", "o", d.Output.Format, "output format (yaml, json)")
	pf.String("backend", d.Primitives.Backend, "primitive mesh backend (polyhedra, sdfx)")
	_ = a.v.BindPFlag("log.level", pf.Lookup("log-level"))
	_ = a.v.BindPFlag("log.format", pf.Lookup("log-format"))
	_ = a.v.BindPFlag("output.format", pf.Lookup("output"))
	_ = a.v.BindPFlag("primitives.backend", pf.Lookup("backend"))

	root.AddCommand(a.runCmd(), a.watchCmd(), a.demoCmd(), a.templateCmd())
	return root
}

// load reads the configuration and builds the logger. Called before every
// subcommand.
func (a *app) load(cmd *cobra.Command) error {
	file := a.cfgFile
	if file == "" {
		file = os.Getenv("CARVE_CONFIG_FILE")
	}
	if err := config.ReadFile(a.v, file); err != nil {
		return err
	}
	cfg, err := config.Load(a.v)
	if err != nil {
		return err
	}
	l, err := cfg.Log.NewLogger(cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	a.cfg = cfg
	a.log = l
	if used := a.v.ConfigFileUsed(); used != "" {
		a.log.Debug("using config file", "path", used)
	}
	return nil
}

// editorOptions translates the configuration into editor options.
func (a *app) editorOptions() ([]editor.Option, error) {
	prims, err := a.cfg.Primitives.NewPrimitives()
	if err != nil {
		return nil, err
	}
	return []editor.Option{
		editor.WithPrimitives(prims),
		editor.WithGrid(a.cfg.Snap),
		editor.WithMaxPolygons(a.cfg.CSG.MaxPolygons),
		editor.WithLogger(a.log),
	}, nil
}

func (a *app) newEngine() (*engine.Engine, error) {
	opts, err := a.editorOptions()
	if err != nil {
		return nil, err
	}
	return engine.NewEngine(
		engine.WithTimeout(a.cfg.Script.Timeout),
		engine.WithEditorOptions(opts...),
		engine.WithLogger(a.log),
	), nil
}

// encode writes v in the configured output format.
func (a *app) encode(w io.Writer, v any) error {
	switch a.cfg.Output.Format {
	case config.OutputJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case config.OutputYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	}
	return fmt.Errorf("unknown output format %q", a.cfg.Output.Format)
}
