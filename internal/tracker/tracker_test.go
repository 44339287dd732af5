package tracker

import (
	"testing"

	"github.com/MADECICCO/fmdt/internal/motion"
	"github.com/MADECICCO/fmdt/internal/roi"
)

func singleROISet(x, y float64) roi.Set {
	s := roi.NewSet(2)
	r := roi.ROI{}
	r.SetMoments(1, uint32(x), uint32(y))
	r.X, r.Y = x, y
	s.Append(r)
	return s
}

func baseConfig() Config {
	return Config{
		RExtrapol:       10,
		DLine:           5,
		DiffDev:         3,
		FraStarMin:      5,
		FraMeteorMin:    3,
		FraMeteorMax:    100,
		HistoryCapacity: 64,
	}
}

// TestTrackerCreatesAndAdvancesMeteorTrack walks a 3-frame sequence of a
// single, steadily-drifting object classified as motion every frame, and
// checks that a Meteor track is created once FraMeteorMin-1 consecutive
// motion associations have accumulated, then advanced on the next frame.
func TestTrackerCreatesAndAdvancesMeteorTrack(t *testing.T) {
	frame1 := singleROISet(0, 0)
	frame2 := singleROISet(5, 2)
	frame3 := singleROISet(10, 4)

	frame1.Get(1).NextID = 1
	frame2.Get(1).PrevID = 1
	frame2.Get(1).NextID = 1
	frame3.Get(1).PrevID = 1

	trk := New(baseConfig())

	res1 := motion.Result{Errors: map[int]float64{1: 10}, MeanError: 0, StdDeviation: 1}
	if err := trk.Step(frame1, frame2, res1, 2); err != nil {
		t.Fatalf("Step 1 error = %v", err)
	}
	if len(trk.Tracks()) != 0 {
		t.Fatalf("Tracks() after frame 1 = %d, want 0 (not enough motion history yet)", len(trk.Tracks()))
	}

	res2 := motion.Result{Errors: map[int]float64{1: 10}, MeanError: 0, StdDeviation: 1}
	if err := trk.Step(frame2, frame3, res2, 3); err != nil {
		t.Fatalf("Step 2 error = %v", err)
	}

	tracks := trk.Tracks()
	if len(tracks) != 1 {
		t.Fatalf("Tracks() after frame 2 = %d, want 1", len(tracks))
	}
	tr := tracks[0]
	if tr.ObjType != Meteor {
		t.Errorf("ObjType = %v, want Meteor", tr.ObjType)
	}
	if tr.Time != 3 {
		t.Errorf("Time = %d, want 3 (2 at creation + 1 from the advance this tick)", tr.Time)
	}
	if tr.End.ID != 1 || tr.X != 5 || tr.Y != 2 {
		t.Errorf("End.ID,X,Y = %d,%v,%v, want 1,5,2", tr.End.ID, tr.X, tr.Y)
	}
	if tr.DX != 5 || tr.DY != 2 {
		t.Errorf("DX,DY = %v,%v, want 5,2", tr.DX, tr.DY)
	}

	counts := trk.Counts()
	if counts[Meteor] != 1 {
		t.Errorf("Counts()[Meteor] = %d, want 1", counts[Meteor])
	}
}

func TestTrackerTryAdoptAdoptsROIInWindow(t *testing.T) {
	trk := New(baseConfig())
	tr := &Track{ID: 5, State: StateExtrapolated, X: 0, Y: 0}

	prev := roi.NewSet(2)
	r := roi.ROI{Xmin: 1, Xmax: 3, Ymin: 1, Ymax: 3}
	r.X, r.Y = 3, 3
	prev.Append(r)

	trk.tryAdopt(tr, prev, 10)

	if tr.State != StateUpdated {
		t.Errorf("State = %v, want Updated", tr.State)
	}
	if tr.End.X != 3 || tr.End.Y != 3 {
		t.Errorf("End.X,Y = %v,%v, want 3,3", tr.End.X, tr.End.Y)
	}
	if prev.Get(1).TrackID != 5 {
		t.Errorf("adopted ROI's TrackID = %d, want 5", prev.Get(1).TrackID)
	}
	if recs := trk.BBRecords(9); len(recs) != 1 {
		t.Errorf("BBRecords(9) = %d records, want 1 (appended at frame-1)", len(recs))
	}
}

func TestTrackerTryAdoptSkipsROIOutsideWindow(t *testing.T) {
	trk := New(baseConfig())
	tr := &Track{ID: 5, State: StateExtrapolated, X: 0, Y: 0}

	prev := roi.NewSet(2)
	r := roi.ROI{}
	r.X, r.Y = 100, 100 // far outside RExtrapol=10
	prev.Append(r)

	trk.tryAdopt(tr, prev, 10)

	if tr.State != StateExtrapolated {
		t.Errorf("State = %v, want unchanged Extrapolated", tr.State)
	}
}

func TestTrackerTryRecoverClaimsFirstUnmatchedCandidate(t *testing.T) {
	trk := New(baseConfig())
	tr := &Track{ID: 3, State: StateLost, X: 0, Y: 0, Time: 5}

	cur := roi.NewSet(3)
	a := roi.ROI{}
	a.X, a.Y = 2, 2
	b := roi.ROI{}
	b.X, b.Y = 3, 3
	cur.Append(a)
	cur.Append(b)

	claimed := make([]bool, len(cur))
	trk.tryRecover(tr, cur, claimed)

	if tr.State != StateExtrapolated {
		t.Errorf("State = %v, want Extrapolated", tr.State)
	}
	if tr.Time != 7 {
		t.Errorf("Time = %d, want 7 (5 + 2)", tr.Time)
	}
	if !claimed[1] {
		t.Error("claimed[1] = false, want true (first in-window candidate claimed)")
	}
	if claimed[2] {
		t.Error("claimed[2] = true, want false (recovery stops at the first match)")
	}
}

func TestTrackerTryRecoverFinishesWhenNoCandidateMatches(t *testing.T) {
	trk := New(baseConfig())
	tr := &Track{ID: 3, State: StateLost, X: 0, Y: 0}

	cur := roi.NewSet(2)
	r := roi.ROI{}
	r.X, r.Y = 1000, 1000
	cur.Append(r)

	claimed := make([]bool, len(cur))
	trk.tryRecover(tr, cur, claimed)

	if tr.State != StateFinished {
		t.Errorf("State = %v, want Finished", tr.State)
	}
}

func TestTrackerExtrapolatePredictsFromRigidMotion(t *testing.T) {
	trk := New(baseConfig())
	tr := &Track{End: roi.ROI{X: 10, Y: 0}, DX: 2, DY: 0, X: 8, Y: 0}

	trk.extrapolate(tr, motion.Result{Theta: 0, Tx: 5, Ty: 0})

	if tr.State != StateLost {
		t.Errorf("State = %v, want Lost", tr.State)
	}
	if tr.X != 15 || tr.Y != 0 {
		t.Errorf("X,Y = %v,%v, want 15,0", tr.X, tr.Y)
	}
}

func TestTrackerStaleTrackIsFreedWithoutTrackAll(t *testing.T) {
	cfg := baseConfig()
	cfg.TrackAll = false
	trk := New(cfg)
	trk.tracks = append(trk.tracks, Track{ID: 1, Time: trackStaleLimit + 1, State: StateUpdated})

	prev := roi.NewSet(1)
	cur := roi.NewSet(1)
	trk.pass2(prev, cur, motion.Result{}, 1)

	if trk.tracks[0].ID != 0 {
		t.Errorf("stale track ID = %d, want 0 (freed)", trk.tracks[0].ID)
	}
	if len(trk.Tracks()) != 0 {
		t.Errorf("Tracks() = %d, want 0 after freeing the only track", len(trk.Tracks()))
	}
}

func TestTrackerTracksAndCountsExcludeFreedSlots(t *testing.T) {
	trk := New(baseConfig())
	trk.tracks = []Track{
		{ID: 1, ObjType: Meteor},
		{}, // freed slot: ID == 0
		{ID: 2, ObjType: Star},
	}

	tracks := trk.Tracks()
	if len(tracks) != 2 {
		t.Fatalf("Tracks() = %d, want 2", len(tracks))
	}

	counts := trk.Counts()
	if counts[Meteor] != 1 || counts[Star] != 1 {
		t.Errorf("Counts() = %+v, want Meteor:1 Star:1", counts)
	}
}
