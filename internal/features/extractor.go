// Package features implements the Feature Extractor (FE, spec §4.3) and
// Feature Merger (FM, spec §4.4).
package features

import (
	"fmt"

	"github.com/MADECICCO/fmdt/internal/ccl"
	"github.com/MADECICCO/fmdt/internal/roi"
)

// Extractor computes per-label moments from a labeled image. It carries no
// state between frames.
type Extractor struct {
	MaxROI int
}

// NewExtractor builds a feature extractor bounded to maxROI components per
// frame (spec §4.3: "undefined behavior if n > MAX_ROI; the extractor must
// trap").
func NewExtractor(maxROI int) *Extractor {
	return &Extractor{MaxROI: maxROI}
}

// Extract computes S, Sx, Sy and the inclusive bounding box for every label
// in 1..n of the labeled image, returning a dense roi.Set (ID==label).
// frameIndex is stamped onto every produced ROI so downstream consumers
// (the tracker's Begin/End ROIs, ultimately the tracks-file writer) know
// which frame they came from.
func (e *Extractor) Extract(labeled *ccl.Labeled, n int, frameIndex int) (roi.Set, error) {
	if n > e.MaxROI {
		return nil, fmt.Errorf("features: label count %d exceeds MAX_ROI %d", n, e.MaxROI)
	}

	set := make(roi.Set, n+1) // slot 0 unused
	for i := 1; i <= n; i++ {
		set[i].ID = i
		set[i].Frame = frameIndex
		set[i].Xmin, set[i].Ymin = labeled.Width, labeled.Height
		set[i].Xmax, set[i].Ymax = -1, -1
	}

	for row := 0; row < labeled.Height; row++ {
		for col := 0; col < labeled.Width; col++ {
			label := labeled.At(col, row)
			if label == 0 {
				continue
			}
			r := &set[label]
			r.S++
			r.Sx += uint32(col)
			r.Sy += uint32(row)
			if col < r.Xmin {
				r.Xmin = col
			}
			if col > r.Xmax {
				r.Xmax = col
			}
			if row < r.Ymin {
				r.Ymin = row
			}
			if row > r.Ymax {
				r.Ymax = row
			}
		}
	}

	for i := 1; i <= n; i++ {
		set[i].SetMoments(set[i].S, set[i].Sx, set[i].Sy)
	}

	return set, nil
}
