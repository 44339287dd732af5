package ccl

import (
	"testing"

	"github.com/MADECICCO/fmdt/internal/threshold"
)

// maskFromRows builds a Mask from a slice of rows of 0/1 ints, for
// readable fixtures.
func maskFromRows(rows [][]int) *threshold.Mask {
	h := len(rows)
	w := len(rows[0])
	frame := &threshold.Frame{Width: w, Height: h, Pix: make([]uint8, w*h)}
	for y, row := range rows {
		for x, v := range row {
			if v != 0 {
				frame.Set(x, y, 255)
			}
		}
	}
	th := threshold.New(1)
	mask, err := th.Apply(frame)
	if err != nil {
		panic(err)
	}
	return mask
}

func TestLabelTwoDisjointComponents(t *testing.T) {
	mask := maskFromRows([][]int{
		{1, 1, 0, 0, 1},
		{1, 1, 0, 0, 1},
		{0, 0, 0, 0, 0},
	})

	labeled, n, err := Label(mask, 100)
	if err != nil {
		t.Fatalf("Label() error = %v", err)
	}
	if n != 2 {
		t.Fatalf("n = %d, want 2", n)
	}

	// every pixel in the 2x2 block shares one label, distinct from the
	// single-pixel-per-row column at x=4.
	block := labeled.At(0, 0)
	if block == 0 {
		t.Fatal("expected block to be labeled, got background (0)")
	}
	for _, p := range [][2]int{{0, 0}, {1, 0}, {0, 1}, {1, 1}} {
		if got := labeled.At(p[0], p[1]); got != block {
			t.Errorf("At(%d,%d) = %d, want %d (same component)", p[0], p[1], got, block)
		}
	}
	col := labeled.At(4, 0)
	if col == 0 || col == block {
		t.Fatalf("At(4,0) = %d, want a distinct nonzero label from %d", col, block)
	}
	if labeled.At(4, 1) != col {
		t.Fatalf("At(4,1) = %d, want %d (same component as (4,0))", labeled.At(4, 1), col)
	}
}

func TestLabelFourConnectivityDoesNotMergeDiagonals(t *testing.T) {
	mask := maskFromRows([][]int{
		{1, 0},
		{0, 1},
	})
	_, n, err := Label(mask, 100)
	if err != nil {
		t.Fatalf("Label() error = %v", err)
	}
	if n != 2 {
		t.Fatalf("n = %d, want 2 (diagonal pixels must not be 4-connected)", n)
	}
}

func TestLabelReturnsCapacityError(t *testing.T) {
	mask := maskFromRows([][]int{
		{1, 0, 1, 0, 1},
	})
	if _, _, err := Label(mask, 1); err == nil {
		t.Fatal("Label() error = nil, want capacity error for 3 components with maxROI=1")
	}
}
