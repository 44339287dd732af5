// Package video is the Video frame-production collaborator spec §1 and
// §2 place out of scope except at its interface: it supplies 2-D 8-bit
// luminance frames with a frame index to the rest of the pipeline.
package video

import (
	"context"
	"fmt"
	"time"

	"github.com/MADECICCO/fmdt/internal/threshold"
	"github.com/schollz/progressbar/v3"
	"gocv.io/x/gocv"
)

// Frame is one decoded, luminance-only frame plus its index in the
// original (unskipped) video.
type Frame struct {
	Index int
	Gray  *threshold.Frame
}

// Source produces frames in increasing index order. Frames returns a
// channel of decoded frames and a channel that carries at most one error
// (a decode failure ends the frame channel cleanly per spec §7 "end the
// stream cleanly, flush tracks, exit 0" -- callers distinguish a clean
// end-of-stream from a real error by checking the error channel after
// the frame channel closes).
type Source interface {
	Frames(ctx context.Context) (<-chan Frame, <-chan error)
	Close() error
}

// Options configures a gocv-backed Source, grounded on video.go's
// VideoOptions/NewVideo (progress bar, frame windowing, fourcc-free
// since this package only reads).
type Options struct {
	Path string

	// FraStart/FraEnd/SkipFra implement spec §6's frame-windowing flags:
	// frames before FraStart are discarded, decoding stops once the frame
	// index would exceed FraEnd (FraEnd < 0 means "no upper bound"), and
	// every SkipFra+1'th frame after FraStart is kept.
	FraStart int
	FraEnd   int
	SkipFra  int

	// Label is shown in the progress bar description.
	Label string
}

type gocvSource struct {
	opts    Options
	capture *gocv.VideoCapture
	bar     *progressbar.ProgressBar
}

// Open opens a video file for reading, grounded on video.go's NewVideo
// file-input branch (camera input is out of scope here: this project
// only ever processes recorded sequences).
func Open(opts Options) (Source, error) {
	capture, err := gocv.OpenVideoCapture(opts.Path)
	if err != nil {
		return nil, fmt.Errorf("video: failed to open %s: %w", opts.Path, err)
	}

	frameCount := int(capture.Get(gocv.VideoCaptureFrameCount))
	bar := progressbar.NewOptions(frameCount,
		progressbar.OptionSetDescription(opts.Label),
		progressbar.OptionShowCount(),
		progressbar.OptionShowIts(),
		progressbar.OptionSetItsString("fps"),
		progressbar.OptionSetPredictTime(true),
		progressbar.OptionThrottle(100*time.Millisecond),
		progressbar.OptionClearOnFinish(),
	)

	return &gocvSource{opts: opts, capture: capture, bar: bar}, nil
}

// Frames decodes frames, converts each to 8-bit grayscale, and applies
// the fra-start/fra-end/skip-fra windowing (spec §6) before emitting it.
// The frame channel closes on end-of-video or an unreadable frame (both a
// clean end, with nothing sent on the error channel), on context
// cancellation, or when a read frame cannot be converted to luminance; in
// that last case a single error is also sent on the error channel before
// closing.
func (s *gocvSource) Frames(ctx context.Context) (<-chan Frame, <-chan error) {
	frames := make(chan Frame)
	errs := make(chan error, 1)

	go func() {
		defer close(frames)
		defer close(errs)

		index := -1
		for {
			select {
			case <-ctx.Done():
				return
			default:
			}

			mat := gocv.NewMat()
			ok := s.capture.Read(&mat)
			if !ok || mat.Empty() {
				mat.Close()
				return
			}
			index++
			s.bar.Add(1)

			if index < s.opts.FraStart {
				mat.Close()
				continue
			}
			if s.opts.FraEnd >= 0 && index > s.opts.FraEnd {
				mat.Close()
				return
			}
			if s.opts.SkipFra > 0 && (index-s.opts.FraStart)%(s.opts.SkipFra+1) != 0 {
				mat.Close()
				continue
			}

			gray, err := toGray(mat)
			mat.Close()
			if err != nil {
				errs <- fmt.Errorf("video: decode failure at frame %d: %w", index, err)
				return
			}

			select {
			case frames <- Frame{Index: index, Gray: gray}:
			case <-ctx.Done():
				return
			}
		}
	}()

	return frames, errs
}

func (s *gocvSource) Close() error {
	return s.capture.Close()
}

// toGray converts a decoded gocv.Mat (any channel layout) into the
// package-local threshold.Frame luminance buffer the rest of the
// pipeline operates on.
func toGray(mat gocv.Mat) (*threshold.Frame, error) {
	gray := mat
	owned := false
	if mat.Channels() != 1 {
		converted := gocv.NewMat()
		gocv.CvtColor(mat, &converted, gocv.ColorBGRToGray)
		gray = converted
		owned = true
	}
	if owned {
		defer gray.Close()
	}

	width, height := gray.Cols(), gray.Rows()
	pix := make([]uint8, width*height)
	data := gray.ToBytes()
	if len(data) < len(pix) {
		return nil, fmt.Errorf("unexpected mat byte length %d for %dx%d frame", len(data), width, height)
	}
	copy(pix, data)

	return &threshold.Frame{Width: width, Height: height, Pix: pix}, nil
}
