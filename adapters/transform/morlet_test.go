package transform

import (
	"context"
	"math"
	"testing"

	"neurowave/domain/field"
)

// sineField builds a single-channel recording of a pure sinusoid.
func sineField(t *testing.T, timesteps int, fs, freq float64) *field.ScalarField {
	t.Helper()
	rec, err := field.NewScalarField(1, 1, timesteps, 1)
	if err != nil {
		t.Fatalf("NewScalarField failed: %v", err)
	}
	for ts := 0; ts < timesteps; ts++ {
		rec.Set(0, 0, ts, 0, math.Sin(2*math.Pi*freq*float64(ts)/fs))
	}
	return rec
}

func TestMorlet_PreservesShape(t *testing.T) {
	rec := sineField(t, 400, 200, 8)
	coeffs, err := NewMorlet().Decompose(context.Background(), rec, 200, 8, 6)
	if err != nil {
		t.Fatalf("Decompose failed: %v", err)
	}
	if coeffs.Rows != rec.Rows || coeffs.Cols != rec.Cols ||
		coeffs.Timesteps != rec.Timesteps || coeffs.Trials != rec.Trials {
		t.Errorf("coefficient extents %dx%dx%dx%d differ from input %dx%dx%dx%d",
			coeffs.Rows, coeffs.Cols, coeffs.Timesteps, coeffs.Trials,
			rec.Rows, rec.Cols, rec.Timesteps, rec.Trials)
	}
}

func TestMorlet_BandSelectivity(t *testing.T) {
	// An in-band sinusoid must produce a far stronger mid-recording
	// response than one well outside the band.
	const fs, fc = 200.0, 8.0
	inBand := sineField(t, 800, fs, fc)
	outOfBand := sineField(t, 800, fs, 40)

	m := NewMorlet()
	ci, err := m.Decompose(context.Background(), inBand, fs, fc, 6)
	if err != nil {
		t.Fatalf("Decompose failed: %v", err)
	}
	co, err := m.Decompose(context.Background(), outOfBand, fs, fc, 6)
	if err != nil {
		t.Fatalf("Decompose failed: %v", err)
	}

	mid := 400
	ai := ci.Amplitude(0, 0, mid, 0)
	ao := co.Amplitude(0, 0, mid, 0)
	if ai <= 0 {
		t.Fatalf("in-band amplitude = %v, want positive", ai)
	}
	if ao*5 > ai {
		t.Errorf("out-of-band amplitude %v not well below in-band %v", ao, ai)
	}
}

func TestMorlet_PhaseAdvances(t *testing.T) {
	// The analytic phase of an in-band sinusoid advances by roughly
	// 2*pi*fc/fs per sample in the middle of the recording.
	const fs, fc = 200.0, 8.0
	rec := sineField(t, 800, fs, fc)
	coeffs, err := NewMorlet().Decompose(context.Background(), rec, fs, fc, 6)
	if err != nil {
		t.Fatalf("Decompose failed: %v", err)
	}

	want := 2 * math.Pi * fc / fs
	for ts := 398; ts < 402; ts++ {
		d := coeffs.Phase(0, 0, ts+1, 0) - coeffs.Phase(0, 0, ts, 0)
		for d <= -math.Pi {
			d += 2 * math.Pi
		}
		for d > math.Pi {
			d -= 2 * math.Pi
		}
		if math.Abs(d-want) > 0.05 {
			t.Errorf("phase step at %d = %v, want ~%v", ts, d, want)
		}
	}
}

func TestMorlet_KernelLongerThanRecording(t *testing.T) {
	rec := sineField(t, 20, 200, 8)
	if _, err := NewMorlet().Decompose(context.Background(), rec, 200, 8, 6); err == nil {
		t.Error("expected error when the kernel exceeds the recording length")
	}
}

func TestMorlet_RejectsNonPositiveRates(t *testing.T) {
	rec := sineField(t, 100, 200, 8)
	if _, err := NewMorlet().Decompose(context.Background(), rec, 0, 8, 6); err == nil {
		t.Error("expected error for zero sampling rate")
	}
	if _, err := NewMorlet().Decompose(context.Background(), rec, 200, 0, 6); err == nil {
		t.Error("expected error for zero center frequency")
	}
}
