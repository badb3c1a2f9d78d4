// Package detect classifies spatiotemporal motion features in a velocity
// field: critical points (sources, sinks, spirals, saddles) from the local
// Jacobian eigenstructure, plane waves from global velocity alignment, and
// synchrony from phase coherence.
package detect

import (
	"context"
	"fmt"
	"math"
	"sort"

	"neurowave/domain/field"
	"neurowave/domain/pattern"
	"neurowave/ports"
)

// CriticalPointDetector implements ports.PatternDetector.
type CriticalPointDetector struct{}

// NewCriticalPointDetector creates the detector adapter.
func NewCriticalPointDetector() *CriticalPointDetector {
	return &CriticalPointDetector{}
}

// vocabulary is declared once and returned on every call; the analysis
// layer rejects any run where it drifts between trials.
var vocabulary = pattern.Vocabulary{
	pattern.TypePlaneWave,
	pattern.TypeSynchrony,
	pattern.TypeSource,
	pattern.TypeSink,
	pattern.TypeSpiralIn,
	pattern.TypeSpiralOut,
	pattern.TypeSaddle,
}

var columnNames = []string{"type", "trial", "startTime", "endTime", "row", "col"}

// detection is one per-timestep hit before temporal merging.
type detection struct {
	typ  string
	row  float64
	col  float64
	cell int // grid cell key for merging; -1 for global patterns
}

// Detect scans every timestep of one trial for pattern instances and
// merges consecutive hits of the same type at the same cell into instances
// with start and end times.
func (d *CriticalPointDetector) Detect(ctx context.Context, vx, vy, phase *field.Slab, opts ports.DetectOptions) (*ports.Detection, error) {
	if vx.Rows != vy.Rows || vx.Cols != vy.Cols || vx.Timesteps != vy.Timesteps {
		return nil, fmt.Errorf("%w: velocity component slabs disagree", field.ErrDimensionMismatch)
	}
	if phase.Rows != vx.Rows || phase.Cols != vx.Cols || phase.Timesteps != vx.Timesteps {
		return nil, fmt.Errorf("%w: phase slab disagrees with velocity", field.ErrDimensionMismatch)
	}

	minDuration := opts.MinDuration
	if minDuration < 1 {
		minDuration = 1
	}

	merger := newMerger(minDuration)
	for t := 0; t < vx.Timesteps; t++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		hits := d.scanTimestep(vx, vy, phase, t, opts)
		merger.step(t, hits)
	}
	merger.flush()

	patterns, locations := merger.instances()
	return &ports.Detection{
		Patterns:    patterns,
		Locations:   locations,
		Types:       vocabulary,
		ColumnNames: columnNames,
	}, nil
}

func (d *CriticalPointDetector) scanTimestep(vx, vy, phase *field.Slab, t int, opts ports.DetectOptions) []detection {
	rows, cols := vx.Rows, vx.Cols
	var hits []detection

	// Global order parameters: velocity alignment and phase coherence.
	var sumUx, sumUy, speedSum float64
	var cosSum, sinSum float64
	n := 0
	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			v := field.Vector{X: vx.At(r, c, t), Y: vy.At(r, c, t)}
			speed := v.Magnitude()
			speedSum += speed
			if speed > 0 {
				sumUx += v.X / speed
				sumUy += v.Y / speed
			}
			p := phase.At(r, c, t)
			cosSum += math.Cos(p)
			sinSum += math.Sin(p)
			n++
		}
	}
	if n == 0 {
		return nil
	}
	meanSpeed := speedSum / float64(n)
	alignment := math.Hypot(sumUx, sumUy) / float64(n)
	coherence := math.Hypot(cosSum, sinSum) / float64(n)

	centerRow := float64(rows-1) / 2
	centerCol := float64(cols-1) / 2
	if coherence > opts.SynchronyThreshold {
		hits = append(hits, detection{typ: pattern.TypeSynchrony, row: centerRow, col: centerCol, cell: -1})
	}
	if alignment > opts.OrderThreshold {
		hits = append(hits, detection{typ: pattern.TypePlaneWave, row: centerRow, col: centerCol, cell: -2})
	}

	// Critical points: interior cells where the speed dips below the
	// threshold fraction of the field mean and is a local minimum.
	if meanSpeed == 0 {
		return hits
	}
	limit := opts.SpeedThreshold * meanSpeed
	for r := 1; r < rows-1; r++ {
		for c := 1; c < cols-1; c++ {
			speed := math.Hypot(vx.At(r, c, t), vy.At(r, c, t))
			if speed >= limit || !localSpeedMin(vx, vy, r, c, t, speed) {
				continue
			}
			typ, ok := classifyJacobian(vx, vy, r, c, t)
			if !ok {
				continue
			}
			hits = append(hits, detection{typ: typ, row: float64(r), col: float64(c), cell: r*cols + c})
		}
	}
	return hits
}

func localSpeedMin(vx, vy *field.Slab, r, c, t int, speed float64) bool {
	for _, d := range [4][2]int{{-1, 0}, {1, 0}, {0, -1}, {0, 1}} {
		if math.Hypot(vx.At(r+d[0], c+d[1], t), vy.At(r+d[0], c+d[1], t)) < speed {
			return false
		}
	}
	return true
}

// classifyJacobian types a critical point from the trace and determinant
// of the velocity Jacobian (central differences): negative determinant is
// a saddle; positive determinant splits into nodes (real eigenvalues,
// source/sink by trace sign) and spirals (complex eigenvalues, in/out by
// trace sign).
func classifyJacobian(vx, vy *field.Slab, r, c, t int) (string, bool) {
	dudx := (vx.At(r, c+1, t) - vx.At(r, c-1, t)) / 2
	dudy := (vx.At(r+1, c, t) - vx.At(r-1, c, t)) / 2
	dvdx := (vy.At(r, c+1, t) - vy.At(r, c-1, t)) / 2
	dvdy := (vy.At(r+1, c, t) - vy.At(r-1, c, t)) / 2

	det := dudx*dvdy - dudy*dvdx
	trace := dudx + dvdy
	if det == 0 {
		return "", false
	}
	if det < 0 {
		return pattern.TypeSaddle, true
	}
	if trace*trace >= 4*det {
		if trace > 0 {
			return pattern.TypeSource, true
		}
		return pattern.TypeSink, true
	}
	if trace > 0 {
		return pattern.TypeSpiralOut, true
	}
	return pattern.TypeSpiralIn, true
}

// merger groups per-timestep hits into instances. A hit extends an active
// instance of the same type at the same cell; anything not re-detected at
// the next timestep closes.
type merger struct {
	minDuration int
	active      map[string]*instance
	closed      []*instance
}

type instance struct {
	typ        string
	start, end int
	rowSum     float64
	colSum     float64
	samples    int
}

func newMerger(minDuration int) *merger {
	return &merger{minDuration: minDuration, active: make(map[string]*instance)}
}

func (m *merger) step(t int, hits []detection) {
	seen := make(map[string]struct{}, len(hits))
	for _, h := range hits {
		key := fmt.Sprintf("%s@%d", h.typ, h.cell)
		seen[key] = struct{}{}
		if inst, ok := m.active[key]; ok {
			inst.end = t
			inst.rowSum += h.row
			inst.colSum += h.col
			inst.samples++
			continue
		}
		m.active[key] = &instance{
			typ:     h.typ,
			start:   t,
			end:     t,
			rowSum:  h.row,
			colSum:  h.col,
			samples: 1,
		}
	}
	for key, inst := range m.active {
		if _, ok := seen[key]; !ok {
			m.closed = append(m.closed, inst)
			delete(m.active, key)
		}
	}
}

func (m *merger) flush() {
	for key, inst := range m.active {
		m.closed = append(m.closed, inst)
		delete(m.active, key)
	}
}

// instances returns the surviving patterns ordered by start time, with
// their matched centroid locations.
func (m *merger) instances() ([]pattern.Pattern, []pattern.Location) {
	kept := m.closed[:0]
	for _, inst := range m.closed {
		if inst.end-inst.start+1 >= m.minDuration {
			kept = append(kept, inst)
		}
	}
	sort.SliceStable(kept, func(i, j int) bool { return kept[i].start < kept[j].start })

	patterns := make([]pattern.Pattern, len(kept))
	locations := make([]pattern.Location, len(kept))
	for i, inst := range kept {
		patterns[i] = pattern.Pattern{
			Type:      inst.typ,
			StartTime: inst.start,
			EndTime:   inst.end,
		}
		locations[i] = pattern.Location{
			Row: inst.rowSum / float64(inst.samples),
			Col: inst.colSum / float64(inst.samples),
		}
	}
	return patterns, locations
}
