package pipeline

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"

	"github.com/MADECICCO/fmdt/internal/config"
	"github.com/MADECICCO/fmdt/internal/delay"
	"github.com/MADECICCO/fmdt/internal/knn"
	"github.com/MADECICCO/fmdt/internal/motion"
	"github.com/MADECICCO/fmdt/internal/roi"
	"github.com/MADECICCO/fmdt/internal/tracker"
	"github.com/MADECICCO/fmdt/internal/video"
)

// slot is one frame's stage-1 outcome, delivered through a dedicated
// one-shot channel so stage 2 can wait on frames in strict index order
// while stage-1 workers race ahead on later frames (spec §5: "Stage 1 may
// process frames concurrently but hands them to stage 2 in order").
type slot struct {
	index  int
	merged roi.Set
	err    error
}

// RunPipeline processes the video using the three-stage, worker-pooled
// scheduling model spec §5 describes: stage 0 reads frames, stage 1 runs
// Thr×2/CCL/FE/FM data-parallel across up to cfg.Workers frames at once,
// and stage 2 -- RD, KNN, ME and TR -- consumes
// stage 1's output strictly in order, since the Tracker holds global
// state and cannot be sharded across frames.
func RunPipeline(ctx context.Context, cfg config.Config, src video.Source, onFrame func(f video.Frame)) (*tracker.Tracker, error) {
	s1, err := newStage1(cfg)
	if err != nil {
		return nil, err
	}

	queueDepth := cfg.QueueDepth
	if queueDepth <= 0 {
		queueDepth = 16
	}
	workers := cfg.Workers
	if workers <= 0 {
		workers = 1
	}

	slots := make(chan chan slot, queueDepth)
	group, gctx := errgroup.WithContext(ctx)
	sem := semaphore.NewWeighted(int64(workers))

	// Stage 0 + fan-out into stage 1: for every frame, reserve an ordered
	// slot up front, then run the (possibly slow) stage-1 reduction on a
	// bounded pool of goroutines.
	group.Go(func() error {
		defer close(slots)

		frames, errs := src.Frames(gctx)
		for f := range frames {
			f := f
			if onFrame != nil {
				onFrame(f)
			}
			out := make(chan slot, 1)
			select {
			case slots <- out:
			case <-gctx.Done():
				return gctx.Err()
			}

			if err := sem.Acquire(gctx, 1); err != nil {
				return err
			}
			group.Go(func() error {
				defer sem.Release(1)
				merged, err := s1.run(f.Index, f.Gray)
				out <- slot{index: f.Index, merged: merged, err: err}
				return nil
			})
		}
		if err := <-errs; err != nil {
			return err
		}
		return nil
	})

	trk := tracker.New(newTrackerConfig(cfg))

	// Stage 2: strictly serial, strictly in order.
	group.Go(func() error {
		matcher := knn.New(cfg.K)
		prevDelay := delay.New[roi.Set]()

		for out := range slots {
			var s slot
			select {
			case s = <-out:
			case <-gctx.Done():
				return gctx.Err()
			}
			if s.err != nil {
				return s.err
			}

			primed := prevDelay.Primed()
			prev := prevDelay.Step(s.merged)

			if primed {
				matcher.Match(prev, s.merged)
				motionResult := motion.Estimate(prev, s.merged)
				if err := trk.Step(prev, s.merged, motionResult, s.index); err != nil {
					return fmt.Errorf("pipeline: tracker step at frame %d: %w", s.index, err)
				}
			}
		}
		return nil
	})

	if err := group.Wait(); err != nil {
		return nil, err
	}
	return trk, nil
}
