package config

import (
	"errors"
	"fmt"
	"math"

	"github.com/chazu/carve/pkg/logging"
)

// ValidationError describes one rejected setting.
type ValidationError struct {
	Field   string
	Value   any
	Message string
}

func (ve *ValidationError) Error() string {
	return fmt.Sprintf("validation error in %s: %s (got %v)", ve.Field, ve.Message, ve.Value)
}

// Validate checks every section and returns all problems joined together.
func (c *Config) Validate() error {
	var errs []error
	add := func(field string, value any, msg string) {
		errs = append(errs, &ValidationError{Field: field, Value: value, Message: msg})
	}

	for _, s := range []struct {
		field string
		step  float64
	}{
		{"snap.position", c.Snap.Position},
		{"snap.rotation", c.Snap.Rotation},
		{"snap.scale", c.Snap.Scale},
	} {
		if !(s.step > 0) || math.IsInf(s.step, 0) {
			add(s.field, s.step, "step must be positive")
		}
	}

	if c.CSG.MaxPolygons < 0 {
		add("csg.max_polygons", c.CSG.MaxPolygons, "must be zero (unlimited) or positive")
	}

	switch c.Primitives.Backend {
	case BackendPolyhedra, BackendSDFX:
	default:
		add("primitives.backend", c.Primitives.Backend, "expected polyhedra or sdfx")
	}
	if c.Primitives.Resolution < 8 {
		add("primitives.resolution", c.Primitives.Resolution, "need at least 8 cells")
	}
	if c.Primitives.Segments < 3 {
		add("primitives.segments", c.Primitives.Segments, "need at least 3 segments")
	}

	if _, err := logging.ParseLevel(c.Log.Level); err != nil {
		add("log.level", c.Log.Level, "expected debug, info, warn or error")
	}
	if _, err := logging.ParseFormat(c.Log.Format); err != nil {
		add("log.format", c.Log.Format, "expected text or json")
	}

	if c.Script.Timeout <= 0 {
		add("script.timeout", c.Script.Timeout, "must be positive")
	}

	switch c.Output.Format {
	case OutputYAML, OutputJSON:
	default:
		add("output.format", c.Output.Format, "expected yaml or json")
	}

	return errors.Join(errs...)
}
