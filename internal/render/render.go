// Package render is the visualization collaborator spec §1 places out of
// scope except at its interface: it consumes tracks plus per-frame
// bounding boxes and overlays them on frames. Adapted from the drawing
// package's Drawer/DrawBoxes pattern, simplified from its general
// Detection/TrackedObject drawable model down to the one shape this
// project actually emits: a track's {bb_x, bb_y, rx, ry} rectangle.
package render

import (
	"fmt"
	"image"
	"image/color"

	"github.com/MADECICCO/fmdt/internal/tracker"
	"gocv.io/x/gocv"
)

// palette assigns a stable color per object type, rather than the
// drawing package's per-id tab10 palette: spec's reviewers care about
// meteor vs star vs noise at a glance, not about distinguishing one
// star's track from another's.
var palette = map[tracker.ObjType]color.RGBA{
	tracker.Meteor:  {R: 255, G: 64, B: 64, A: 255},
	tracker.Star:    {R: 64, G: 200, B: 255, A: 255},
	tracker.Noise:   {R: 160, G: 160, B: 160, A: 255},
	tracker.Unknown: {R: 255, G: 255, B: 0, A: 255},
}

const thickness = 2

// Writer draws bounding-box overlays onto frames and optionally muxes
// them into an output video, grounded on video.go's lazily-initialized
// VideoWriter.
type Writer struct {
	path   string
	fps    float64
	writer *gocv.VideoWriter
}

// NewWriter returns a Writer that lazily opens its VideoWriter on the
// first frame (so it can size the writer to the frame's own dimensions,
// matching video.go's Write method).
func NewWriter(path string, fps float64) *Writer {
	return &Writer{path: path, fps: fps}
}

// DrawFrame overlays every BBRecord for this frame onto mat in place,
// colored and labeled by the owning track's object type.
func DrawFrame(mat *gocv.Mat, records []tracker.BBRecord, tracks map[int]tracker.Track) {
	for _, r := range records {
		objType := tracker.Unknown
		if tr, ok := tracks[r.TrackID]; ok {
			objType = tr.ObjType
		}
		col := palette[objType]

		pt1 := image.Point{X: r.BBx - r.RX, Y: r.BBy - r.RY}
		pt2 := image.Point{X: r.BBx + r.RX, Y: r.BBy + r.RY}
		gocv.Rectangle(mat, image.Rectangle{Min: pt1, Max: pt2}, col, thickness)

		label := fmt.Sprintf("#%d %s", r.TrackID, objType)
		gocv.PutText(mat, label, image.Point{X: pt1.X, Y: pt1.Y - 4}, gocv.FontHersheyPlain, 1.0, col, 1)
	}
}

// Write appends an already-annotated frame to the output video.
func (w *Writer) Write(mat gocv.Mat) error {
	if w.writer == nil {
		writer, err := gocv.VideoWriterFile(w.path, "mp4v", w.fps, mat.Cols(), mat.Rows(), true)
		if err != nil {
			return fmt.Errorf("render: failed to create video writer: %w", err)
		}
		w.writer = writer
	}
	if err := w.writer.Write(mat); err != nil {
		return fmt.Errorf("render: failed to write frame: %w", err)
	}
	return nil
}

// Close releases the underlying VideoWriter, if one was ever opened.
func (w *Writer) Close() error {
	if w.writer == nil {
		return nil
	}
	return w.writer.Close()
}
