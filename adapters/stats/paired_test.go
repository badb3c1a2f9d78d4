package stats

import (
	"math"
	"testing"
)

func TestPairedTTest_IdenticalSamples(t *testing.T) {
	tt := NewPairedTTest()
	p, err := tt.PValue([]float64{1, 2, 3}, []float64{1, 2, 3})
	if err != nil {
		t.Fatalf("PValue failed: %v", err)
	}
	if p != 1 {
		t.Errorf("p = %v for identical samples, want exactly 1", p)
	}
}

func TestPairedTTest_ConstantShift(t *testing.T) {
	// Every pair differs by the same amount: zero variance in the
	// differences but a non-zero mean.
	tt := NewPairedTTest()
	p, err := tt.PValue([]float64{4, 5, 6}, []float64{1, 2, 3})
	if err != nil {
		t.Fatalf("PValue failed: %v", err)
	}
	if p != 0 {
		t.Errorf("p = %v for a zero-variance shift, want exactly 0", p)
	}
}

func TestPairedTTest_KnownValue(t *testing.T) {
	// diffs = {1,2,3,4}: mean 2.5, sample sd ~1.291, t ~3.873 on 3 df,
	// two-sided p ~0.0305.
	tt := NewPairedTTest()
	p, err := tt.PValue([]float64{2, 4, 6, 8}, []float64{1, 2, 3, 4})
	if err != nil {
		t.Fatalf("PValue failed: %v", err)
	}
	if math.Abs(p-0.0305) > 0.002 {
		t.Errorf("p = %v, want ~0.0305", p)
	}
}

func TestPairedTTest_Symmetric(t *testing.T) {
	tt := NewPairedTTest()
	a := []float64{3, 1, 4, 1, 5}
	b := []float64{2, 7, 1, 8, 2}
	pab, err := tt.PValue(a, b)
	if err != nil {
		t.Fatalf("PValue failed: %v", err)
	}
	pba, err := tt.PValue(b, a)
	if err != nil {
		t.Fatalf("PValue failed: %v", err)
	}
	if math.Abs(pab-pba) > 1e-12 {
		t.Errorf("two-sided test not symmetric: %v vs %v", pab, pba)
	}
	if pab <= 0 || pab > 1 {
		t.Errorf("p = %v outside (0, 1]", pab)
	}
}

func TestPairedTTest_Errors(t *testing.T) {
	tt := NewPairedTTest()
	if _, err := tt.PValue([]float64{1, 2}, []float64{1}); err == nil {
		t.Error("expected length-mismatch error")
	}
	if _, err := tt.PValue([]float64{1}, []float64{2}); err == nil {
		t.Error("expected too-few-pairs error")
	}
}
