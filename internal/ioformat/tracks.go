// Package ioformat reads and writes the text file schemas spec §6 names
// for tracks and bounding boxes, plus a minimal ground-truth scorer
// (SPEC_FULL.md's supplemented tracking_parse_tracks feature).
package ioformat

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/MADECICCO/fmdt/internal/tracker"
)

// TrackRecord is one line of a tracks file: `id begin_frame end_frame
// obj_type_str [validity]` (spec §6). Validity is only present in
// ground-truth files, never emitted by this project's own writer.
type TrackRecord struct {
	ID         int
	BeginFrame int
	EndFrame   int
	ObjType    tracker.ObjType
	Validity   *int
}

// ReadTracks parses a tracks file (spec §6 schema), tolerating either
// 4 or 5 whitespace-separated fields per line so it can read both this
// project's own output and an external ground-truth file.
func ReadTracks(r io.Reader) ([]TrackRecord, error) {
	var records []TrackRecord
	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) != 4 && len(fields) != 5 {
			return nil, fmt.Errorf("ioformat: tracks line %d: expected 4 or 5 fields, got %d", lineNo, len(fields))
		}

		id, err := strconv.Atoi(fields[0])
		if err != nil {
			return nil, fmt.Errorf("ioformat: tracks line %d: bad id %q: %w", lineNo, fields[0], err)
		}
		begin, err := strconv.Atoi(fields[1])
		if err != nil {
			return nil, fmt.Errorf("ioformat: tracks line %d: bad begin_frame %q: %w", lineNo, fields[1], err)
		}
		end, err := strconv.Atoi(fields[2])
		if err != nil {
			return nil, fmt.Errorf("ioformat: tracks line %d: bad end_frame %q: %w", lineNo, fields[2], err)
		}
		objType, err := tracker.ParseObjType(fields[3])
		if err != nil {
			return nil, fmt.Errorf("ioformat: tracks line %d: %w", lineNo, err)
		}

		rec := TrackRecord{ID: id, BeginFrame: begin, EndFrame: end, ObjType: objType}
		if len(fields) == 5 {
			validity, err := strconv.Atoi(fields[4])
			if err != nil {
				return nil, fmt.Errorf("ioformat: tracks line %d: bad validity %q: %w", lineNo, fields[4], err)
			}
			rec.Validity = &validity
		}
		records = append(records, rec)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("ioformat: reading tracks: %w", err)
	}
	return records, nil
}

// WriteTracks writes records in the same 4-field schema ReadTracks
// accepts (validity is never re-emitted: it is a ground-truth-only
// annotation, per spec §6's output schema).
func WriteTracks(w io.Writer, records []TrackRecord) error {
	bw := bufio.NewWriter(w)
	for _, rec := range records {
		if _, err := fmt.Fprintf(bw, "%d %d %d %s\n", rec.ID, rec.BeginFrame, rec.EndFrame, rec.ObjType); err != nil {
			return fmt.Errorf("ioformat: writing tracks: %w", err)
		}
	}
	return bw.Flush()
}

// TracksFromTracker converts the Tracker's live tracks into the output
// schema's begin/end frame fields (Begin.Frame / End.Frame).
func TracksFromTracker(tracks []tracker.Track) []TrackRecord {
	out := make([]TrackRecord, 0, len(tracks))
	for _, t := range tracks {
		out = append(out, TrackRecord{
			ID:         t.ID,
			BeginFrame: t.Begin.Frame,
			EndFrame:   t.End.Frame,
			ObjType:    t.ObjType,
		})
	}
	return out
}
