// Package ccl implements the Connected-Component Labeler (spec §4.2): a
// Line-by-Line / Scan-based Labeling (LSL) algorithm over 4-connectivity,
// applied to the low-threshold mask.
package ccl

import (
	"fmt"

	"github.com/MADECICCO/fmdt/internal/roi"
	"github.com/MADECICCO/fmdt/internal/threshold"
)

// Labeled is a 32-bit labeled image: 0 is background, 1..N are dense
// component labels.
type Labeled struct {
	Width, Height int
	Pix           []uint32
}

// At returns the label at (col, row).
func (l *Labeled) At(col, row int) uint32 {
	return l.Pix[row*l.Width+col]
}

// unionFind is a standard disjoint-set structure used to merge label runs
// that turn out to belong to the same component once a later row connects
// them (the classic two-pass scan labeling algorithm).
type unionFind struct {
	parent []int
}

func newUnionFind(n int) *unionFind {
	uf := &unionFind{parent: make([]int, n)}
	for i := range uf.parent {
		uf.parent[i] = i
	}
	return uf
}

func (uf *unionFind) find(x int) int {
	for uf.parent[x] != x {
		uf.parent[x] = uf.parent[uf.parent[x]]
		x = uf.parent[x]
	}
	return x
}

func (uf *unionFind) union(a, b int) {
	ra, rb := uf.find(a), uf.find(b)
	if ra == rb {
		return
	}
	if ra < rb {
		uf.parent[rb] = ra
	} else {
		uf.parent[ra] = rb
	}
}

func (uf *unionFind) grow() int {
	uf.parent = append(uf.parent, len(uf.parent))
	return len(uf.parent) - 1
}

// Label runs a two-pass line-by-line scan labeling of mask (4-connectivity:
// a pixel connects to its west and north neighbors only), producing a dense
// labeled image and a component count n.
//
// If n would exceed maxROI, Label returns roi.ErrCapacity-wrapped error:
// spec §4.2 treats this as a configuration bug (MAX_ROI too small), not a
// runtime condition.
func Label(mask *threshold.Mask, maxROI int) (*Labeled, int, error) {
	w, h := mask.Width, mask.Height
	out := &Labeled{Width: w, Height: h, Pix: make([]uint32, w*h)}

	// Provisional labels, one union-find tree node per provisional label.
	uf := newUnionFind(1) // index 0 unused
	provisional := make([]int, w*h)

	for row := 0; row < h; row++ {
		for col := 0; col < w; col++ {
			idx := row*w + col
			if mask.At(col, row) == 0 {
				continue
			}

			west, north := 0, 0
			if col > 0 {
				west = provisional[idx-1]
			}
			if row > 0 {
				north = provisional[idx-w]
			}

			switch {
			case west == 0 && north == 0:
				provisional[idx] = uf.grow()
			case west != 0 && north == 0:
				provisional[idx] = west
			case west == 0 && north != 0:
				provisional[idx] = north
			default:
				provisional[idx] = west
				uf.union(west, north)
			}
		}
	}

	// Second pass: resolve provisional labels to dense final labels via the
	// union-find roots, assigning dense ids in first-seen (row-major) order
	// so labels are stable and match the source's "dense 1..n" guarantee.
	rootToDense := make(map[int]int)
	n := 0
	for i, p := range provisional {
		if p == 0 {
			continue
		}
		root := uf.find(p)
		dense, ok := rootToDense[root]
		if !ok {
			n++
			if n > maxROI {
				return nil, 0, fmt.Errorf("ccl: component count exceeds MAX_ROI (%d): %w", maxROI, roi.ErrCapacity)
			}
			dense = n
			rootToDense[root] = dense
		}
		out.Pix[i] = uint32(dense)
	}

	return out, n, nil
}
