package csg

import "fmt"

// Report collects non-fatal diagnostics from conversion and clipping.
type Report struct {
	// Dropped counts polygons discarded because they degenerated below
	// three distinct vertices or zero area.
	Dropped int
}

// Merge adds the counts of o to r.
func (r *Report) Merge(o Report) {
	r.Dropped += o.Dropped
}

// Warning returns a *PrecisionWarning when polygons were dropped, nil
// otherwise.
func (r Report) Warning() error {
	if r.Dropped == 0 {
		return nil
	}
	return &PrecisionWarning{Dropped: r.Dropped}
}

// PrecisionWarning signals that an operation completed but lost degenerate
// slivers along the way. It never aborts an operation.
type PrecisionWarning struct {
	Dropped int
}

func (w *PrecisionWarning) Error() string {
	return fmt.Sprintf("csg: %d degenerate polygon(s) dropped", w.Dropped)
}
