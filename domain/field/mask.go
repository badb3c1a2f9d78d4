package field

import (
	"math"
	"sort"
)

// ChannelMask records spatial locations excluded from flow estimation.
// Locations are identified by their flat index row*cols + col. The mask is
// computed once from the full tensor and immutable for the rest of the run.
type ChannelMask struct {
	rows, cols int
	bad        map[int]struct{}
}

// NewChannelMask creates an empty mask for a rows x cols grid.
func NewChannelMask(rows, cols int) *ChannelMask {
	return &ChannelMask{rows: rows, cols: cols, bad: make(map[int]struct{})}
}

// Mark flags the location (row, col) as bad.
func (m *ChannelMask) Mark(r, c int) { m.bad[r*m.cols+c] = struct{}{} }

// Bad reports whether (row, col) is excluded.
func (m *ChannelMask) Bad(r, c int) bool {
	_, ok := m.bad[r*m.cols+c]
	return ok
}

// Count returns the number of excluded locations.
func (m *ChannelMask) Count() int { return len(m.bad) }

// Indices returns the flat spatial indices of all excluded locations in
// ascending order.
func (m *ChannelMask) Indices() []int {
	out := make([]int, 0, len(m.bad))
	for idx := range m.bad {
		out = append(out, idx)
	}
	sort.Ints(out)
	return out
}

// DetectBadChannels scans the full tensor and flags every spatial location
// that contains a missing value anywhere on its time axis, or whose values
// never change across the entire time axis of every trial (constant signal,
// including all-zero). The tensor itself is not modified; downstream
// consumers interpolate across flagged locations instead.
func DetectBadChannels(f *ScalarField) *ChannelMask {
	mask := NewChannelMask(f.Rows, f.Cols)
	for r := 0; r < f.Rows; r++ {
		for c := 0; c < f.Cols; c++ {
			if channelInvalid(f, r, c) {
				mask.Mark(r, c)
			}
		}
	}
	return mask
}

func channelInvalid(f *ScalarField, r, c int) bool {
	first := f.At(r, c, 0, 0)
	constant := true
	for tr := 0; tr < f.Trials; tr++ {
		for t := 0; t < f.Timesteps; t++ {
			v := f.At(r, c, t, tr)
			if math.IsNaN(v) {
				return true
			}
			if v != first {
				constant = false
			}
		}
	}
	return constant
}
