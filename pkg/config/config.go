// Package config provides configuration management for carve using Viper.
// Settings come from a YAML file (.carve.yml), CARVE_ environment variables
// and command-line flags, in increasing order of priority.
//
// Environment variables follow the CARVE_<SECTION>_<OPTION> pattern, e.g.
// CARVE_SNAP_POSITION=0.5 or CARVE_PRIMITIVES_BACKEND=sdfx.
package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/chazu/carve/pkg/kernel"
	"github.com/chazu/carve/pkg/kernel/polyhedra"
	"github.com/chazu/carve/pkg/kernel/sdfx"
	"github.com/chazu/carve/pkg/logging"
	"github.com/chazu/carve/pkg/scene"
)

// EnvPrefix is prepended to every environment override.
const EnvPrefix = "CARVE"

// FileName is the config file searched for when none is given.
const FileName = ".carve"

// Primitive backends.
const (
	BackendPolyhedra = "polyhedra"
	BackendSDFX      = "sdfx"
)

// Output encodings for the CLI.
const (
	OutputYAML = "yaml"
	OutputJSON = "json"
)

type Config struct {
	Snap       scene.Grid       `mapstructure:"snap" yaml:"snap"`
	CSG        CSGConfig        `mapstructure:"csg" yaml:"csg"`
	Primitives PrimitivesConfig `mapstructure:"primitives" yaml:"primitives"`
	Log        LogConfig        `mapstructure:"log" yaml:"log"`
	Script     ScriptConfig     `mapstructure:"script" yaml:"script"`
	Output     OutputConfig     `mapstructure:"output" yaml:"output"`
}

type CSGConfig struct {
	// MaxPolygons bounds the combined polygon count of the two operands of
	// a boolean operation. Zero disables the limit.
	MaxPolygons int `mapstructure:"max_polygons" yaml:"max_polygons"`
}

type PrimitivesConfig struct {
	Backend    string `mapstructure:"backend" yaml:"backend"`
	Resolution int    `mapstructure:"resolution" yaml:"resolution"` // marching-cubes cells (sdfx)
	Segments   int    `mapstructure:"segments" yaml:"segments"`     // facets around curved surfaces (polyhedra)
}

type LogConfig struct {
	Level  string `mapstructure:"level" yaml:"level"`
	Format string `mapstructure:"format" yaml:"format"`
}

type ScriptConfig struct {
	Timeout time.Duration `mapstructure:"timeout" yaml:"timeout"`
}

type OutputConfig struct {
	Format string `mapstructure:"format" yaml:"format"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Snap: scene.DefaultGrid,
		CSG:  CSGConfig{MaxPolygons: 20000},
		Primitives: PrimitivesConfig{
			Backend:    BackendPolyhedra,
			Resolution: sdfx.DefaultMeshCells,
			Segments:   polyhedra.DefaultSegments,
		},
		Log:    LogConfig{Level: "info", Format: string(logging.FormatText)},
		Script: ScriptConfig{Timeout: 5 * time.Second},
		Output: OutputConfig{Format: OutputYAML},
	}
}

// NewViper returns a Viper instance with every key defaulted and CARVE_
// environment overrides enabled.
func NewViper() *viper.Viper {
	v := viper.New()
	SetDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// SetDefaults registers the built-in values on v. Keys must be known to
// Viper for AutomaticEnv to reach them during Unmarshal.
func SetDefaults(v *viper.Viper) {
	d := Default()
	v.SetDefault("snap.position", d.Snap.Position)
	v.SetDefault("snap.rotation", d.Snap.Rotation)
	v.SetDefault("snap.scale", d.Snap.Scale)
	v.SetDefault("csg.max_polygons", d.CSG.MaxPolygons)
	v.SetDefault("primitives.backend", d.Primitives.Backend)
	v.SetDefault("primitives.resolution", d.Primitives.Resolution)
	v.SetDefault("primitives.segments", d.Primitives.Segments)
	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("log.format", d.Log.Format)
	v.SetDefault("script.timeout", d.Script.Timeout)
	v.SetDefault("output.format", d.Output.Format)
}

// ReadFile loads file into v. With an empty file name the search paths
// (default ".") are scanned for .carve.yml, and a missing file is not an
// error. An explicitly named file must exist.
func ReadFile(v *viper.Viper, file string, searchPaths ...string) error {
	if file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return fmt.Errorf("config: reading %s: %w", file, err)
		}
		return nil
	}

	if len(searchPaths) == 0 {
		searchPaths = []string{"."}
	}
	for _, p := range searchPaths {
		v.AddConfigPath(p)
	}
	v.SetConfigName(FileName)
	v.SetConfigType("yaml")
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return nil
		}
		return fmt.Errorf("config: %w", err)
	}
	return nil
}

// Load unmarshals and validates the configuration held by v.
func Load(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	cfg.Primitives.Backend = strings.ToLower(cfg.Primitives.Backend)
	cfg.Output.Format = strings.ToLower(cfg.Output.Format)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// NewPrimitives returns the primitive mesh source selected by the config.
func (c PrimitivesConfig) NewPrimitives() (kernel.Primitives, error) {
	switch c.Backend {
	case BackendPolyhedra, "":
		return polyhedra.New(c.Segments), nil
	case BackendSDFX:
		return sdfx.New(c.Resolution), nil
	}
	return nil, fmt.Errorf("config: unknown primitives backend %q", c.Backend)
}

// NewLogger builds the root logger described by the log section.
func (c LogConfig) NewLogger(w io.Writer) (*slog.Logger, error) {
	level, err := logging.ParseLevel(c.Level)
	if err != nil {
		return nil, err
	}
	format, err := logging.ParseFormat(c.Format)
	if err != nil {
		return nil, err
	}
	return logging.New(logging.Config{Level: level, Format: format, Output: w}), nil
}
