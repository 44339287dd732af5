package render

import (
	"bufio"
	"fmt"
	"os"

	"github.com/MADECICCO/fmdt/internal/threshold"
	"gocv.io/x/gocv"
)

// WriteGrayPPM writes a raw luminance frame as a binary (P5) PPM image,
// for the detector's own --out-frames dump (spec §6): the undecorated
// frame as the pipeline saw it, with no color-space round trip through
// gocv.
func WriteGrayPPM(path string, frame *threshold.Frame) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("render: failed to create %s: %w", path, err)
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	fmt.Fprintf(w, "P5\n%d %d\n255\n", frame.Width, frame.Height)
	if _, err := w.Write(frame.Pix); err != nil {
		return fmt.Errorf("render: failed to write %s: %w", path, err)
	}
	return w.Flush()
}

// WritePPM writes a frame as a binary (P6) PPM image. No library in this
// project's dependency set speaks PPM -- it is a trivial fixed header
// plus raw bytes -- so this one writer is hand-rolled against the
// standard library rather than pulled in as a one-off dependency (see
// DESIGN.md).
func WritePPM(path string, mat gocv.Mat) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("render: failed to create %s: %w", path, err)
	}
	defer f.Close()

	rgb := mat
	owned := false
	if mat.Channels() != 3 {
		converted := gocv.NewMat()
		gocv.CvtColor(mat, &converted, gocv.ColorGrayToBGR)
		rgb = converted
		owned = true
	}
	if owned {
		defer rgb.Close()
	}

	w := bufio.NewWriter(f)
	fmt.Fprintf(w, "P6\n%d %d\n255\n", rgb.Cols(), rgb.Rows())

	data := rgb.ToBytes()
	stride := rgb.Cols() * 3
	row := make([]byte, stride)
	for y := 0; y < rgb.Rows(); y++ {
		start := y * stride
		for x := 0; x < rgb.Cols(); x++ {
			// gocv Mats are BGR; PPM wants RGB.
			row[x*3] = data[start+x*3+2]
			row[x*3+1] = data[start+x*3+1]
			row[x*3+2] = data[start+x*3+0]
		}
		if _, err := w.Write(row); err != nil {
			return fmt.Errorf("render: failed to write %s: %w", path, err)
		}
	}
	return w.Flush()
}
