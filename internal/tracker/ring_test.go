package tracker

import (
	"testing"

	"github.com/MADECICCO/fmdt/internal/roi"
)

func TestHistoryRingInsertAndFind(t *testing.T) {
	ring := newHistoryRing(4)
	prev := roi.ROI{ID: 1}
	cur := roi.ROI{ID: 2}

	if err := ring.insert(prev, cur, 10); err != nil {
		t.Fatalf("insert() error = %v", err)
	}

	entry, ok := ring.find(1, 11)
	if !ok {
		t.Fatal("find(1, 11) = false, want true (frame+1 == 11)")
	}
	if entry.cur.ID != 2 {
		t.Errorf("entry.cur.ID = %d, want 2", entry.cur.ID)
	}

	if _, ok := ring.find(1, 10); ok {
		t.Error("find(1, 10) = true, want false (wrong frame)")
	}
	if _, ok := ring.find(99, 11); ok {
		t.Error("find(99, 11) = true, want false (wrong roi id)")
	}
}

func TestHistoryRingExhaustedReturnsCapacityError(t *testing.T) {
	ring := newHistoryRing(1)
	if err := ring.insert(roi.ROI{ID: 1}, roi.ROI{ID: 1}, 1); err != nil {
		t.Fatalf("first insert() error = %v", err)
	}
	if err := ring.insert(roi.ROI{ID: 2}, roi.ROI{ID: 2}, 2); err == nil {
		t.Fatal("second insert() error = nil, want capacity error")
	}
}

func TestHistoryRingEvictOlderThan(t *testing.T) {
	ring := newHistoryRing(4)
	_ = ring.insert(roi.ROI{ID: 1}, roi.ROI{ID: 1}, 1)
	_ = ring.insert(roi.ROI{ID: 2}, roi.ROI{ID: 2}, 10)

	ring.evictOlderThan(11, 5) // frame-e.frame >= 5 evicts the frame-1 entry only

	if _, ok := ring.find(1, 2); ok {
		t.Error("entry at frame 1 should have been evicted")
	}
	if _, ok := ring.find(2, 11); !ok {
		t.Error("entry at frame 10 should still be present")
	}
}

func TestHistoryRingCollectChainWalksPrevIDBackward(t *testing.T) {
	ring := newHistoryRing(8)
	// Chain of associations: roi#1 (frame 1) -> roi#2 (frame 2) -> roi#3 (frame 3).
	r1 := roi.ROI{ID: 1}
	r2 := roi.ROI{ID: 2, PrevID: 1}
	r3 := roi.ROI{ID: 3, PrevID: 2}

	if err := ring.insert(r1, r2, 1); err != nil {
		t.Fatalf("insert() error = %v", err)
	}
	if err := ring.insert(r2, r3, 2); err != nil {
		t.Fatalf("insert() error = %v", err)
	}

	chain, err := ring.collectChain(r3, 3, 3)
	if err != nil {
		t.Fatalf("collectChain() error = %v", err)
	}
	if len(chain) != 3 {
		t.Fatalf("len(chain) = %d, want 3", len(chain))
	}
	if chain[0].ID != 3 || chain[1].ID != 2 || chain[2].ID != 1 {
		t.Errorf("chain ids = %d,%d,%d, want 3,2,1 (newest-first)", chain[0].ID, chain[1].ID, chain[2].ID)
	}
}

func TestHistoryRingCollectChainMissingPredecessorErrors(t *testing.T) {
	ring := newHistoryRing(4)
	r1 := roi.ROI{ID: 1, PrevID: 77} // no entry was ever recorded for predecessor 77
	if _, err := ring.collectChain(r1, 5, 2); err == nil {
		t.Fatal("collectChain() error = nil, want error for a missing predecessor")
	}
}
