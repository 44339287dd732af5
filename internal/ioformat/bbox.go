package ioformat

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/MADECICCO/fmdt/internal/tracker"
)

// BBFileRecord is one line of a bounding-box file: `frame rx ry bb_x
// bb_y track_id` (spec §6 schema), ordered by frame then insertion
// order.
type BBFileRecord struct {
	Frame   int
	RX, RY  int
	BBx, BBy int
	TrackID int
}

// ReadBB parses a bounding-box file (spec §6 schema).
func ReadBB(r io.Reader) ([]BBFileRecord, error) {
	var records []BBFileRecord
	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) != 6 {
			return nil, fmt.Errorf("ioformat: bb line %d: expected 6 fields, got %d", lineNo, len(fields))
		}
		vals := make([]int, 6)
		for i, f := range fields {
			v, err := strconv.Atoi(f)
			if err != nil {
				return nil, fmt.Errorf("ioformat: bb line %d: bad field %q: %w", lineNo, f, err)
			}
			vals[i] = v
		}
		records = append(records, BBFileRecord{
			Frame: vals[0], RX: vals[1], RY: vals[2], BBx: vals[3], BBy: vals[4], TrackID: vals[5],
		})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("ioformat: reading bb: %w", err)
	}
	return records, nil
}

// WriteBB writes records frame-ascending, then in each frame's insertion
// order, matching spec §6's "ordered by frame then insertion order".
func WriteBB(w io.Writer, frames []int, recordsByFrame func(frame int) []tracker.BBRecord) error {
	bw := bufio.NewWriter(w)
	for _, frame := range frames {
		for _, r := range recordsByFrame(frame) {
			if _, err := fmt.Fprintf(bw, "%d %d %d %d %d %d\n", frame, r.RX, r.RY, r.BBx, r.BBy, r.TrackID); err != nil {
				return fmt.Errorf("ioformat: writing bb: %w", err)
			}
		}
	}
	return bw.Flush()
}
