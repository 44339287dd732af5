// Package pipeline wires the dataflow graph spec §2 describes (Video →
// Thr×2 → CCL → FE → FM → (KNN, ME, TR), delayed one frame for the next
// tick) into the two scheduling models spec §5 names: sequence mode
// (this file) and pipeline mode (pipeline.go).
package pipeline

import (
	"context"
	"fmt"

	"github.com/MADECICCO/fmdt/internal/ccl"
	"github.com/MADECICCO/fmdt/internal/config"
	"github.com/MADECICCO/fmdt/internal/delay"
	"github.com/MADECICCO/fmdt/internal/features"
	"github.com/MADECICCO/fmdt/internal/knn"
	"github.com/MADECICCO/fmdt/internal/motion"
	"github.com/MADECICCO/fmdt/internal/roi"
	"github.com/MADECICCO/fmdt/internal/threshold"
	"github.com/MADECICCO/fmdt/internal/tracker"
	"github.com/MADECICCO/fmdt/internal/video"
)

// stage1 holds the components that run data-parallel across frames in
// pipeline mode, and simply run one after another in sequence mode.
type stage1 struct {
	thresh   *threshold.Pair
	extract  *features.Extractor
	merge    *features.Merger
}

func newStage1(cfg config.Config) (*stage1, error) {
	thresh, err := threshold.NewPair(cfg.LightMin, cfg.LightMax)
	if err != nil {
		return nil, err
	}
	return &stage1{
		thresh:  thresh,
		extract: features.NewExtractor(cfg.MaxROI),
		merge:   features.NewMerger(cfg.SurfaceMin, cfg.SurfaceMax),
	}, nil
}

// run reduces one raw frame to its merged, densely-renumbered ROI set
// (spec §4.1-§4.4). frameIndex is stamped onto every resulting ROI so the
// tracker's Begin/End ROIs (and ultimately the tracks-file writer) carry
// the frame they were observed in.
func (s *stage1) run(frameIndex int, frame *threshold.Frame) (roi.Set, error) {
	low, high, err := s.thresh.Apply(frame)
	if err != nil {
		return nil, fmt.Errorf("pipeline: threshold: %w", err)
	}
	labeled, n, err := ccl.Label(low, s.extract.MaxROI)
	if err != nil {
		return nil, fmt.Errorf("pipeline: ccl: %w", err)
	}
	extracted, err := s.extract.Extract(labeled, n, frameIndex)
	if err != nil {
		return nil, fmt.Errorf("pipeline: feature extraction: %w", err)
	}
	merged, _ := s.merge.Merge(extracted, labeled, high)
	return merged, nil
}

// newTrackerConfig maps the shared Config into the Tracker's narrower
// Config (spec §4.7).
func newTrackerConfig(cfg config.Config) tracker.Config {
	return tracker.Config{
		RExtrapol:       cfg.RExtrapol,
		DLine:           cfg.DLine,
		DiffDev:         cfg.DiffDev,
		TrackAll:        cfg.TrackAll,
		FraStarMin:      cfg.FraStarMin,
		FraMeteorMin:    cfg.FraMeteorMin,
		FraMeteorMax:    cfg.FraMeteorMax,
		HistoryCapacity: cfg.HistoryCapacity,
	}
}

// RunSequence processes the entire video single-threaded and
// cooperatively, one tick at a time, per spec §5 "no suspension points;
// no shared mutation hazards". onFrame, if non-nil, is invoked with every
// raw frame before it is consumed by stage 1 (spec §6's optional
// per-frame PPM image output).
func RunSequence(ctx context.Context, cfg config.Config, src video.Source, onFrame func(f video.Frame)) (*tracker.Tracker, error) {
	s1, err := newStage1(cfg)
	if err != nil {
		return nil, err
	}
	matcher := knn.New(cfg.K)
	trk := tracker.New(newTrackerConfig(cfg))
	prevDelay := delay.New[roi.Set]()

	frames, errs := src.Frames(ctx)
	for f := range frames {
		if onFrame != nil {
			onFrame(f)
		}

		merged, err := s1.run(f.Index, f.Gray)
		if err != nil {
			return nil, err
		}

		primed := prevDelay.Primed()
		prev := prevDelay.Step(merged)

		if primed {
			matcher.Match(prev, merged)
			motionResult := motion.Estimate(prev, merged)
			if err := trk.Step(prev, merged, motionResult, f.Index); err != nil {
				return nil, fmt.Errorf("pipeline: tracker step at frame %d: %w", f.Index, err)
			}
		}
	}
	if err := <-errs; err != nil {
		return nil, err
	}
	return trk, nil
}
