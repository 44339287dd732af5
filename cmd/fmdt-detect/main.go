// Command fmdt-detect runs the meteor detection-and-tracking pipeline
// over a video file and writes tracks/bounding-box files (spec §6).
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/MADECICCO/fmdt/internal/config"
	"github.com/MADECICCO/fmdt/internal/ioformat"
	"github.com/MADECICCO/fmdt/internal/pipeline"
	"github.com/MADECICCO/fmdt/internal/render"
	"github.com/MADECICCO/fmdt/internal/tracker"
	"github.com/MADECICCO/fmdt/internal/video"
)

// Exit code is always 1 on any returned error (spec §7: Configuration and
// IO errors exit 1; Capacity errors "abort with a descriptive message",
// which is the same observable behavior from the CLI's point of view).
// Decode failures are handled earlier, inside video.Source, by ending the
// frame stream cleanly rather than surfacing an error here -- gocv's
// VideoCapture.Read cannot reliably distinguish "end of file" from
// "truncated file" (both report ok=false), so both are treated as a
// clean end per spec §7's instruction to flush tracks and exit 0.
func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "fmdt-detect:", err)
		os.Exit(1)
	}
}

func run() error {
	cfg := config.Defaults()

	iniPath := flag.String("config", "", "optional ini file of detection parameters, applied before flags")
	flag.StringVar(&cfg.InVideo, "in-video", "", "input video path (required)")
	flag.StringVar(&cfg.OutBB, "out-bb", "", "output bounding-box file path")
	flag.StringVar(&cfg.OutFrames, "out-frames", "", "output directory for per-frame PPM images")
	flag.StringVar(&cfg.OutStats, "out-stats", "", "output directory for tracks/stats files")

	flag.IntVar(&cfg.FraStart, "fra-start", cfg.FraStart, "first frame index to process")
	flag.IntVar(&cfg.FraEnd, "fra-end", cfg.FraEnd, "last frame index to process (-1 for end of video)")
	flag.IntVar(&cfg.SkipFra, "skip-fra", cfg.SkipFra, "number of frames to skip between processed frames")

	lightMin := flag.Int("light-min", int(cfg.LightMin), "minimum (low) hysteresis threshold")
	lightMax := flag.Int("light-max", int(cfg.LightMax), "maximum (high) hysteresis threshold")
	surfaceMin := flag.Int("surface-min", int(cfg.SurfaceMin), "minimum ROI area in pixels")
	surfaceMax := flag.Int("surface-max", int(cfg.SurfaceMax), "maximum ROI area in pixels")

	flag.IntVar(&cfg.K, "k", cfg.K, "number of nearest neighbors considered by the matcher")
	flag.Float64Var(&cfg.RExtrapol, "r-extrapol", cfg.RExtrapol, "extrapolation search radius in pixels")
	flag.Float64Var(&cfg.AngleMax, "angle-max", cfg.AngleMax, "maximum motion-fit rotation in degrees (stored in the config only; the motion estimator does not read it)")
	flag.Float64Var(&cfg.DiffDev, "diff-dev", cfg.DiffDev, "motion classification threshold, in standard deviations")
	flag.Float64Var(&cfg.DLine, "d-line", cfg.DLine, "maximum deviation from a track's linear model, in pixels")

	flag.IntVar(&cfg.FraStarMin, "fra-star-min", cfg.FraStarMin, "consecutive static associations required to commit a star track")
	flag.IntVar(&cfg.FraMeteorMin, "fra-meteor-min", cfg.FraMeteorMin, "consecutive motion associations required to commit a meteor track")
	flag.IntVar(&cfg.FraMeteorMax, "fra-meteor-max", cfg.FraMeteorMax, "must be at least fra-meteor-min; the tracker's own age limit is a fixed 150 frames and does not read this value")
	flag.BoolVar(&cfg.TrackAll, "track-all", cfg.TrackAll, "keep star and noise tracks instead of discarding them")
	pipelineMode := flag.Bool("pipeline", false, "use the worker-pooled pipeline scheduler instead of the single-threaded sequence scheduler")
	flag.IntVar(&cfg.Workers, "workers", cfg.Workers, "stage-1 worker count in pipeline mode")
	groundTruth := flag.String("ground-truth", "", "optional ground-truth tracks file; if set, scores this run's output against it and prints precision/recall")

	flag.Parse()

	if *iniPath != "" {
		if err := config.LoadIni(*iniPath, &cfg); err != nil {
			return err
		}
		// Flags given on the command line take precedence over the ini
		// file: seed the unbound numeric flags from cfg, then parse again.
		*lightMin, *lightMax = int(cfg.LightMin), int(cfg.LightMax)
		*surfaceMin, *surfaceMax = int(cfg.SurfaceMin), int(cfg.SurfaceMax)
		flag.Parse()
	}
	cfg.LightMin = uint8(*lightMin)
	cfg.LightMax = uint8(*lightMax)
	cfg.SurfaceMin = uint32(*surfaceMin)
	cfg.SurfaceMax = uint32(*surfaceMax)

	if err := cfg.Validate(); err != nil {
		return err
	}

	src, err := video.Open(video.Options{
		Path:     cfg.InVideo,
		FraStart: cfg.FraStart,
		FraEnd:   cfg.FraEnd,
		SkipFra:  cfg.SkipFra,
		Label:    "fmdt-detect",
	})
	if err != nil {
		return err
	}
	defer src.Close()

	var onFrame func(f video.Frame)
	if cfg.OutFrames != "" {
		if err := os.MkdirAll(cfg.OutFrames, 0755); err != nil {
			return fmt.Errorf("%w: %v", config.ErrIO, err)
		}
		onFrame = func(f video.Frame) {
			path := fmt.Sprintf("%s/frame_%06d.ppm", cfg.OutFrames, f.Index)
			if err := render.WriteGrayPPM(path, f.Gray); err != nil {
				fmt.Fprintln(os.Stderr, "fmdt-detect:", err)
			}
		}
	}

	var trk *tracker.Tracker
	if *pipelineMode {
		trk, err = pipeline.RunPipeline(context.Background(), cfg, src, onFrame)
	} else {
		trk, err = pipeline.RunSequence(context.Background(), cfg, src, onFrame)
	}
	if err != nil {
		return err
	}

	if err := writeOutputs(cfg, trk); err != nil {
		return err
	}

	if *groundTruth != "" {
		if err := scoreAgainstGroundTruth(*groundTruth, trk); err != nil {
			return err
		}
	}
	return nil
}

// scoreAgainstGroundTruth reads a ground-truth tracks file and prints
// precision/recall against this run's output (SPEC_FULL.md's supplemented
// ground-truth validation feature, specified only at its
// ioformat.ReadTracks/Score interface per spec §1).
func scoreAgainstGroundTruth(path string, trk *tracker.Tracker) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("%w: %v", config.ErrIO, err)
	}
	defer f.Close()

	gt, err := ioformat.ReadTracks(f)
	if err != nil {
		return fmt.Errorf("%w: %v", config.ErrIO, err)
	}

	predicted := ioformat.TracksFromTracker(trk.Tracks())
	result := ioformat.Score(predicted, gt)
	fmt.Printf("ground truth: tp=%d fp=%d fn=%d precision=%.3f recall=%.3f\n",
		result.TruePositives, result.FalsePositives, result.FalseNegatives,
		result.Precision(), result.Recall())
	return nil
}

func writeOutputs(cfg config.Config, trk *tracker.Tracker) error {
	if cfg.OutStats != "" {
		if err := os.MkdirAll(cfg.OutStats, 0755); err != nil {
			return fmt.Errorf("%w: %v", config.ErrIO, err)
		}
		path := cfg.OutStats + "/tracks.txt"
		f, err := os.Create(path)
		if err != nil {
			return fmt.Errorf("%w: %v", config.ErrIO, err)
		}
		defer f.Close()
		if err := ioformat.WriteTracks(f, ioformat.TracksFromTracker(trk.Tracks())); err != nil {
			return fmt.Errorf("%w: %v", config.ErrIO, err)
		}
	}

	if cfg.OutBB != "" {
		f, err := os.Create(cfg.OutBB)
		if err != nil {
			return fmt.Errorf("%w: %v", config.ErrIO, err)
		}
		defer f.Close()
		if err := ioformat.WriteBB(f, trk.BBFrames(), trk.BBRecords); err != nil {
			return fmt.Errorf("%w: %v", config.ErrIO, err)
		}
	}
	return nil
}
