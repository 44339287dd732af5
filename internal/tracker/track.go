package tracker

import (
	"fmt"

	"github.com/MADECICCO/fmdt/internal/roi"
)

// State is a track's position in the lifecycle state machine (spec §3,
// §4.7), modeled as a sum type per Design Notes §9 rather than a bare int.
type State int

const (
	StateNew State = iota + 1
	StateUpdated
	StateExtrapolated
	StateLost
	StateFinished
)

func (s State) String() string {
	switch s {
	case StateNew:
		return "NEW"
	case StateUpdated:
		return "UPDATED"
	case StateExtrapolated:
		return "EXTRAPOLATED"
	case StateLost:
		return "LOST"
	case StateFinished:
		return "FINISHED"
	default:
		return "UNKNOWN_STATE"
	}
}

// ObjType classifies the kind of object a track represents (spec §3).
type ObjType int

const (
	Unknown ObjType = iota
	Star
	Meteor
	Noise
)

// String renders the object type using the exact external-file strings
// required by spec §6 ("meteor", "star", "noise", "unknown").
func (t ObjType) String() string {
	switch t {
	case Star:
		return "star"
	case Meteor:
		return "meteor"
	case Noise:
		return "noise"
	default:
		return "unknown"
	}
}

// ParseObjType is the inverse of String, ported from
// tracking_string_to_obj_type (include/common/tracking.h) for round-trip
// parsing of tracks files (spec §6, §8).
func ParseObjType(s string) (ObjType, error) {
	switch s {
	case "star":
		return Star, nil
	case "meteor":
		return Meteor, nil
	case "noise":
		return Noise, nil
	case "unknown":
		return Unknown, nil
	default:
		return Unknown, fmt.Errorf("tracker: unknown object type string %q", s)
	}
}

// infSlope is the source's literal INF sentinel (src/common/Tracking.c:
// `#define INF 9999999`), used verbatim as the slope value of a vertical
// line model so that predictY reproduces the original's numeric behavior
// (a huge, but finite and arithmetically real, slope) rather than quietly
// skipping the linearity test for vertical tracks.
const infSlope = 9999999.0

// LineModel is the track's linear motion model y = a*x + b, fit from its
// two most recent centroids. Per Design Notes §9, vertical motion (dx==0)
// is additionally tagged with Vertical so the sign-agreement comparison
// in the tracker is total and NaN-free; A/B still carry the source's
// literal INF-based values so predictY matches the original arithmetic.
type LineModel struct {
	Vertical bool
	A, B     float64
}

// sameSlopeClass reproduces the source's `(a == INF && t.a == INF) ||
// (a>0 && t.a>0) || (a<0 && t.a<0)` comparison (src/common/Tracking.c,
// updateTrack): the infinity/vertical sentinel is its own class and is
// never considered sign-compatible with a finite slope, matching Design
// Notes §9's instruction to reproduce this exactly, not widen it.
func sameSlopeClass(a, b LineModel) bool {
	if a.Vertical || b.Vertical {
		return a.Vertical && b.Vertical
	}
	return (a.A > 0 && b.A > 0) || (a.A < 0 && b.A < 0)
}

// fitLine computes the LineModel through two centroids (from -> to),
// using the source's INF sentinel when dx == 0 (spec §3, §4.7).
func fitLine(fromX, fromY, toX, toY float64) LineModel {
	dx := toX - fromX
	if dx == 0 {
		return LineModel{Vertical: true, A: infSlope, B: toY - infSlope*toX}
	}
	a := (toY - fromY) / dx
	return LineModel{A: a, B: toY - a*toX}
}

// Track is a temporally extended object: a chain of associated ROIs
// classified as meteor, star or noise (spec §3).
type Track struct {
	ID      int
	ObjType ObjType
	State   State

	Begin, End roi.ROI

	X, Y   float64 // current centroid
	DX, DY float64 // last displacement

	Line LineModel

	Timestamp int // frame of creation
	Time      int // number of associated ROIs

	BBx, BBy int // current bounding box center
	RX, RY   int // current bounding box half-extents
}

// predictY evaluates the track's line model at x, used by the acceptance
// test in pass 2 (spec §4.7). The acceptance test calls it for vertical
// models too, where A and B carry the infSlope sentinel values, so the
// linearity check runs on the same arithmetic as for finite slopes.
func (t *Track) predictY(x float64) float64 {
	return t.Line.A*x + t.Line.B
}
