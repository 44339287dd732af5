package tracker

import (
	"testing"

	"github.com/MADECICCO/fmdt/internal/roi"
)

func TestBBListAppendComputesCenterAndMargin(t *testing.T) {
	bb := newBBList()
	track := &Track{ID: 7}
	r := roi.ROI{Xmin: 1, Xmax: 5, Ymin: 2, Ymax: 8}

	bb.append(track, r, 3)

	if track.BBx != 3 || track.BBy != 5 {
		t.Errorf("track.BBx,BBy = %d,%d, want 3,5", track.BBx, track.BBy)
	}
	wantRX := (3 - 1) + bbDelta
	wantRY := (5 - 2) + bbDelta
	if track.RX != wantRX || track.RY != wantRY {
		t.Errorf("track.RX,RY = %d,%d, want %d,%d", track.RX, track.RY, wantRX, wantRY)
	}

	records := bb.Records(3)
	if len(records) != 1 {
		t.Fatalf("len(Records(3)) = %d, want 1", len(records))
	}
	if records[0].TrackID != 7 {
		t.Errorf("records[0].TrackID = %d, want 7", records[0].TrackID)
	}
}

func TestBBListFramesSortedAscending(t *testing.T) {
	bb := newBBList()
	track := &Track{ID: 1}
	r := roi.ROI{Xmin: 0, Xmax: 2, Ymin: 0, Ymax: 2}

	bb.append(track, r, 5)
	bb.append(track, r, 1)
	bb.append(track, r, 3)

	frames := bb.Frames()
	want := []int{1, 3, 5}
	if len(frames) != len(want) {
		t.Fatalf("Frames() = %v, want %v", frames, want)
	}
	for i := range want {
		if frames[i] != want[i] {
			t.Errorf("Frames()[%d] = %d, want %d", i, frames[i], want[i])
		}
	}
}

func TestBBListRecordsPreservesInsertionOrderWithinFrame(t *testing.T) {
	bb := newBBList()
	t1 := &Track{ID: 1}
	t2 := &Track{ID: 2}
	r := roi.ROI{Xmin: 0, Xmax: 2, Ymin: 0, Ymax: 2}

	bb.append(t1, r, 4)
	bb.append(t2, r, 4)

	records := bb.Records(4)
	if len(records) != 2 {
		t.Fatalf("len(Records(4)) = %d, want 2", len(records))
	}
	if records[0].TrackID != 1 || records[1].TrackID != 2 {
		t.Errorf("record order = %d,%d, want 1,2", records[0].TrackID, records[1].TrackID)
	}
}
