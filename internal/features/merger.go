package features

import (
	"github.com/MADECICCO/fmdt/internal/ccl"
	"github.com/MADECICCO/fmdt/internal/roi"
	"github.com/MADECICCO/fmdt/internal/threshold"
)

// Merger applies the hysteresis + size filter of spec §4.4: a component
// extracted from the low mask survives iff some pixel in its bounding box
// is set in the high mask, AND its area S falls within [Smin, Smax].
// Survivors are renumbered densely, preserving input order.
type Merger struct {
	Smin, Smax uint32
}

// NewMerger builds a merger with the given area bounds.
func NewMerger(smin, smax uint32) *Merger {
	return &Merger{Smin: smin, Smax: smax}
}

// Merge filters extracted against the high mask and area bounds, returning
// the dense survivor set plus a relabeled image (out[px] = survivor id, 0
// if dropped) of the same dimensions as labeled.
func (m *Merger) Merge(extracted roi.Set, labeled *ccl.Labeled, high *threshold.Mask) (roi.Set, *ccl.Labeled) {
	n := extracted.N()
	keep := make([]bool, n+1)
	remap := make([]int, n+1)

	for i := 1; i <= n; i++ {
		r := &extracted[i]
		if r.S < m.Smin || r.S > m.Smax {
			continue
		}
		if hasHighPixel(high, r.Xmin, r.Xmax, r.Ymin, r.Ymax) {
			keep[i] = true
		}
	}

	out := make(roi.Set, 1, n+1)
	for i := 1; i <= n; i++ {
		if !keep[i] {
			continue
		}
		newID := len(out)
		remap[i] = newID
		r := extracted[i]
		r.ID = newID
		out = append(out, r)
	}

	outImg := &ccl.Labeled{Width: labeled.Width, Height: labeled.Height, Pix: make([]uint32, len(labeled.Pix))}
	for idx, label := range labeled.Pix {
		if label == 0 {
			continue
		}
		if newID := remap[label]; newID != 0 {
			outImg.Pix[idx] = uint32(newID)
		}
	}

	return out, outImg
}

// hasHighPixel reports whether any pixel within the inclusive bounding box
// [xmin,xmax] x [ymin,ymax] is set in the high mask.
func hasHighPixel(high *threshold.Mask, xmin, xmax, ymin, ymax int) bool {
	for row := ymin; row <= ymax; row++ {
		for col := xmin; col <= xmax; col++ {
			if high.At(col, row) != 0 {
				return true
			}
		}
	}
	return false
}
