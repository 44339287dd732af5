package ioformat

// ScoreResult is a minimal ground-truth comparison: how many predicted
// tracks overlap a ground-truth track of the same object type, and vice
// versa. This ports the spirit of the original project's offline
// validation tooling (spec §1 lists "ground-truth validation" as an
// out-of-scope external collaborator, specified only at its interface;
// this is the interface, kept intentionally small).
type ScoreResult struct {
	TruePositives  int
	FalsePositives int
	FalseNegatives int
}

// Precision and Recall are the standard detection metrics derived from
// the match counts.
func (s ScoreResult) Precision() float64 {
	if s.TruePositives+s.FalsePositives == 0 {
		return 0
	}
	return float64(s.TruePositives) / float64(s.TruePositives+s.FalsePositives)
}

func (s ScoreResult) Recall() float64 {
	if s.TruePositives+s.FalseNegatives == 0 {
		return 0
	}
	return float64(s.TruePositives) / float64(s.TruePositives+s.FalseNegatives)
}

// overlaps reports whether two [begin, end] frame intervals intersect.
func overlaps(aBegin, aEnd, bBegin, bEnd int) bool {
	return aBegin <= bEnd && bBegin <= aEnd
}

// Score compares predicted tracks against ground-truth tracks: a
// predicted track is a true positive if it overlaps, in frame range and
// object type, at least one ground-truth track; every ground-truth track
// left unmatched counts as a false negative, and every predicted track
// left unmatched counts as a false positive.
func Score(predicted, groundTruth []TrackRecord) ScoreResult {
	matchedGT := make([]bool, len(groundTruth))
	var result ScoreResult

	for _, p := range predicted {
		matched := false
		for i, gt := range groundTruth {
			if matchedGT[i] {
				continue
			}
			if p.ObjType == gt.ObjType && overlaps(p.BeginFrame, p.EndFrame, gt.BeginFrame, gt.EndFrame) {
				matchedGT[i] = true
				matched = true
				break
			}
		}
		if matched {
			result.TruePositives++
		} else {
			result.FalsePositives++
		}
	}

	for _, m := range matchedGT {
		if !m {
			result.FalseNegatives++
		}
	}
	return result
}
