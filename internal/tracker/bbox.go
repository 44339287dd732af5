package tracker

import (
	"math"
	"sort"

	"github.com/MADECICCO/fmdt/internal/roi"
)

// bbDelta is the fixed margin added to each bounding-box half-extent
// (src/common/Tracking.c, update_bounding_box: `rx = (bb_x - xmin) + 5`).
const bbDelta = 5

// BBRecord is one per-frame bounding-box entry (spec §3 "Per-frame
// bounding-box list", §6 bounding-box file schema).
type BBRecord struct {
	RX, RY     int
	BBx, BBy   int
	TrackID    int
}

// BBList is the per-frame bounding-box list, owned by the Tracker and
// appended to on every track update/creation. Design Notes §9 recommends a
// mapping from frame index to an append-only sequence rather than the
// source's fixed-size array of linked lists; capacity is unbounded here
// (no equivalent of the source's NB_FRAMES cap), since a Go
// map does not require pre-sizing to a maximum frame count.
type BBList struct {
	byFrame map[int][]BBRecord
}

// newBBList creates an empty BBList.
func newBBList() *BBList {
	return &BBList{byFrame: make(map[int][]BBRecord)}
}

// append records a bounding box for the ROI `r`, attributing it to `frame`
// (which the tracker computes per call site in tracker.go: frame-k for
// the k-th newest ROI of a new track, frame-1 in tryAdopt and frame+1 in
// advance, per Design Notes §9).
func (b *BBList) append(track *Track, r roi.ROI, frame int) {
	bbx := int(math.Ceil(float64(r.Xmin+r.Xmax) / 2))
	bby := int(math.Ceil(float64(r.Ymin+r.Ymax) / 2))
	rx := (bbx - r.Xmin) + bbDelta
	ry := (bby - r.Ymin) + bbDelta

	track.BBx, track.BBy = bbx, bby
	track.RX, track.RY = rx, ry

	b.byFrame[frame] = append(b.byFrame[frame], BBRecord{RX: rx, RY: ry, BBx: bbx, BBy: bby, TrackID: track.ID})
}

// Frames returns the sorted list of frame indices with at least one
// record, for frame-ascending serialization (spec §6).
func (b *BBList) Frames() []int {
	frames := make([]int, 0, len(b.byFrame))
	for f := range b.byFrame {
		frames = append(frames, f)
	}
	sort.Ints(frames)
	return frames
}

// Records returns the bounding-box records for a given frame, in
// insertion order.
func (b *BBList) Records(frame int) []BBRecord {
	return b.byFrame[frame]
}
