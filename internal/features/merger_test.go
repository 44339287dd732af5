package features

import (
	"testing"

	"github.com/MADECICCO/fmdt/internal/ccl"
	"github.com/MADECICCO/fmdt/internal/roi"
	"github.com/MADECICCO/fmdt/internal/threshold"
)

// buildScene places two blobs: one 2x2 (area 4) that also touches the
// high threshold, and one single pixel (area 1) that never does, so the
// merger's area-bound and hysteresis filters each have a positive and a
// negative case to distinguish.
func buildScene(t *testing.T) (roi.Set, *ccl.Labeled, *threshold.Mask) {
	t.Helper()
	frame := &threshold.Frame{Width: 6, Height: 6, Pix: make([]uint8, 36)}
	for y := 1; y <= 2; y++ {
		for x := 1; x <= 2; x++ {
			frame.Set(x, y, 200)
		}
	}
	frame.Set(4, 4, 50)

	pair, err := threshold.NewPair(30, 150)
	if err != nil {
		t.Fatalf("NewPair() error = %v", err)
	}
	low, high, err := pair.Apply(frame)
	if err != nil {
		t.Fatalf("Apply() error = %v", err)
	}
	labeled, n, err := ccl.Label(low, 100)
	if err != nil {
		t.Fatalf("Label() error = %v", err)
	}
	e := NewExtractor(100)
	extracted, err := e.Extract(labeled, n, 0)
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	return extracted, labeled, high
}

func TestMergeKeepsHysteresisSurvivorWithinAreaBounds(t *testing.T) {
	extracted, labeled, high := buildScene(t)
	m := NewMerger(1, 100)

	merged, _ := m.Merge(extracted, labeled, high)
	if merged.N() != 1 {
		t.Fatalf("N() = %d, want 1 (only the blob touching the high mask survives)", merged.N())
	}
	r := merged.Get(1)
	if r.S != 4 {
		t.Errorf("S = %d, want 4", r.S)
	}
}

func TestMergeDropsComponentsOutsideAreaBounds(t *testing.T) {
	extracted, labeled, high := buildScene(t)
	m := NewMerger(5, 100) // the surviving 4-pixel blob is now too small

	merged, _ := m.Merge(extracted, labeled, high)
	if merged.N() != 0 {
		t.Fatalf("N() = %d, want 0 (area-bound filter should drop every component)", merged.N())
	}
}

func TestMergeRenumbersDensely(t *testing.T) {
	extracted, labeled, high := buildScene(t)
	m := NewMerger(1, 100)

	merged, _ := m.Merge(extracted, labeled, high)
	if err := merged.CheckDense(); err != nil {
		t.Fatalf("CheckDense() = %v, want nil", err)
	}
}
