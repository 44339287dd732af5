package tracker

import (
	"fmt"

	"github.com/MADECICCO/fmdt/internal/roi"
)

// historyEntry is one {ROI@t-1, ROI@t, frame} tuple held by the ROI
// history ring (spec §3 "ROI history ring"), used to reconstruct the last
// N ROIs of a newly-confirmed track by walking PrevID links backward.
type historyEntry struct {
	occupied  bool
	prev, cur roi.ROI
	frame     int
}

// historyRing is a fixed-capacity pool of historyEntry, matching the
// source's SIZE_BUF-sized `buffer` array (src/common/Tracking.c). Unlike
// the original, which repurposes `frame == 0` as the "slot free" sentinel
// (colliding with a legitimate frame index of 0), this port uses an
// explicit `occupied` flag per slot so frame 0 is not a special case; the
// capacity and eviction behavior are otherwise identical.
type historyRing struct {
	entries []historyEntry
}

// newHistoryRing allocates a ring with room for `capacity` entries.
func newHistoryRing(capacity int) *historyRing {
	return &historyRing{entries: make([]historyEntry, capacity)}
}

// insert stores (prev, cur, frame) in the first free slot. Returns an
// error if the ring is exhausted: spec §7 classifies this as a Capacity
// error (programming/capacity bug), not a recoverable condition.
func (h *historyRing) insert(prev, cur roi.ROI, frame int) error {
	for i := range h.entries {
		if !h.entries[i].occupied {
			h.entries[i] = historyEntry{occupied: true, prev: prev, cur: cur, frame: frame}
			return nil
		}
	}
	return fmt.Errorf("tracker: history ring exhausted (capacity %d)", len(h.entries))
}

// find returns the entry recorded when roiID (an ROI id in frame-1, i.e.
// entry.prev.ID) was observed motion-associating into `frame`, matching
// the source's search_buf_stat(ROI_id, frame): an entry qualifies iff
// entry.frame+1 == frame && entry.prev.ID == roiID.
func (h *historyRing) find(roiID, frame int) (*historyEntry, bool) {
	for i := range h.entries {
		e := &h.entries[i]
		if e.occupied && e.frame+1 == frame && e.prev.ID == roiID {
			return e, true
		}
	}
	return nil, false
}

// evictOlderThan frees every entry recorded historySize or more frames
// before `frame` (spec §4.7 "History ring cleanup").
func (h *historyRing) evictOlderThan(frame, historySize int) {
	for i := range h.entries {
		e := &h.entries[i]
		if e.occupied && frame-e.frame >= historySize {
			h.entries[i] = historyEntry{}
		}
	}
}

// collectChain walks PrevID links backward starting from `last`, which was
// observed motion-associating at `frame`, returning the `count` most
// recent ROIs in newest-first order (last, then each predecessor). This
// implements fill_ROI_list from src/common/Tracking.c, generalized to any
// count instead of the hardcoded 2.
func (h *historyRing) collectChain(last roi.ROI, frame, count int) ([]roi.ROI, error) {
	chain := make([]roi.ROI, 0, count)
	chain = append(chain, last)

	cur := last
	curFrame := frame
	for len(chain) < count {
		entry, ok := h.find(cur.PrevID, curFrame)
		if !ok {
			return nil, fmt.Errorf("tracker: history ring missing predecessor of ROI %d at frame %d", cur.ID, curFrame-1)
		}
		chain = append(chain, entry.prev)
		cur = entry.prev
		curFrame--
	}
	return chain, nil
}
