// Package roi defines the per-frame region-of-interest type shared by every
// stage of the detection pipeline, from the feature merger through the
// tracker.
package roi

import "fmt"

// ROI is one connected component identified in a frame, together with its
// moments, bounding box and inter-frame association links.
//
// Arrays of ROI are 1-based: index 0 is never a real ROI, it is the "none"
// sentinel used by ID, PrevID, NextID and TrackID (matching the source's
// convention of reserving stats[0] as a sentinel slot).
type ROI struct {
	ID int // 1..N this frame; 0 means "none"

	Xmin, Xmax, Ymin, Ymax int // pixel bounding box, inclusive

	S      uint32  // zeroth moment (pixel count)
	Sx, Sy uint32  // first moments
	X, Y   float64 // centroid = Sx/S, Sy/S

	PrevID int // ID in frame t-1, 0 if unlinked
	NextID int // ID in frame t+1, 0 if unlinked

	Time        int // consecutive frames of non-motion association
	TimeMotion  int // consecutive frames of motion association
	IsExtrapol  bool
	Frame       int // frame index when this ROI was created
	TrackID     int // 0 if not attached to a track
	Motion      bool // debug flag: true if classified "motion" this frame
	Error       float64 // per-ROI motion residual, set by the motion estimator
}

// Centroid returns the (X, Y) pair as a 2-element point, the shape expected
// by the KNN matcher and motion estimator.
func (r *ROI) Centroid() (x, y float64) {
	return r.X, r.Y
}

// SetMoments stores the moments and recomputes the centroid from them. Call after S, Sx, Sy are filled
// in (e.g. by the feature extractor or after merging moments).
func (r *ROI) SetMoments(s, sx, sy uint32) {
	r.S, r.Sx, r.Sy = s, sx, sy
	if s == 0 {
		r.X, r.Y = 0, 0
		return
	}
	r.X = float64(sx) / float64(s)
	r.Y = float64(sy) / float64(s)
}

// Set is a list of ROIs for one frame, indexed by ID with slot 0 unused.
// Len(set)-1 is the ROI count for the frame.
type Set []ROI

// NewSet allocates a Set with capacity cap+1 (slot 0 reserved), matching the
// source's fixed MAX_ROI-sized arrays that are overwritten every frame
// rather than reallocated.
func NewSet(capacity int) Set {
	return make(Set, 1, capacity+1)
}

// N returns the number of real ROIs (excluding the sentinel slot 0).
func (s Set) N() int {
	if len(s) == 0 {
		return 0
	}
	return len(s) - 1
}

// Append adds r to the set, assigning it the next dense ID, and returns that
// ID. It is an error to let the set grow past MAX_ROI; callers (CCL, the
// feature merger) must check capacity themselves since this is treated as a
// configuration bug, not a runtime condition (spec §4.2).
func (s *Set) Append(r ROI) int {
	id := len(*s)
	r.ID = id
	*s = append(*s, r)
	return id
}

// Get returns a pointer to the ROI with the given 1-based id, or nil if id
// is 0 or out of range.
func (s Set) Get(id int) *ROI {
	if id <= 0 || id >= len(s) {
		return nil
	}
	return &s[id]
}

// CheckDense verifies the invariant that ROI ids in a frame are dense in
// [1, N()]; used by property tests (spec §8).
func (s Set) CheckDense() error {
	for i := 1; i < len(s); i++ {
		if s[i].ID != i {
			return fmt.Errorf("roi set not dense: slot %d holds id %d", i, s[i].ID)
		}
	}
	return nil
}

// ErrCapacity is returned by components that discover more ROIs than the
// configured MAX_ROI allows; spec §4.2/§7 classifies this as a capacity
// error: a configuration bug, not a runtime condition.
var ErrCapacity = fmt.Errorf("roi: component count exceeds configured MAX_ROI")
