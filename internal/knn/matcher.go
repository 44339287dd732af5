// Package knn implements the KNN Matcher (spec §4.5): one-to-one
// association between ROI set A (frame t-1) and ROI set B (frame t) by
// centroid Euclidean distance, with k-nearest-neighbor conflict resolution.
package knn

import (
	"math"
	"sort"

	"github.com/MADECICCO/fmdt/internal/roi"
)

// Matcher finds, for each ROI in frame t-1, its best reciprocal match in
// frame t among its k nearest neighbors.
type Matcher struct {
	K int
}

// New builds a Matcher that considers the K nearest candidates per ROI.
func New(k int) *Matcher {
	return &Matcher{K: k}
}

// neighbor is one entry of a sorted-by-distance candidate list.
type neighbor struct {
	id   int
	dist float64
}

// kNearest returns, for every ROI in `from`, the up-to-k nearest ROIs in
// `to` by centroid distance, sorted ascending, ties broken by lower id in
// `to` (stable sort over id-ascending input preserves this).
func kNearest(from, to roi.Set, k int) [][]neighbor {
	out := make([][]neighbor, len(from))
	for i := 1; i < len(from); i++ {
		cands := make([]neighbor, 0, to.N())
		for j := 1; j < len(to); j++ {
			cands = append(cands, neighbor{id: j, dist: dist(&from[i], &to[j])})
		}
		sort.SliceStable(cands, func(a, b int) bool { return cands[a].dist < cands[b].dist })
		if len(cands) > k {
			cands = cands[:k]
		}
		out[i] = cands
	}
	return out
}

func dist(a, b *roi.ROI) float64 {
	dx := a.X - b.X
	dy := a.Y - b.Y
	return math.Sqrt(dx*dx + dy*dy)
}

// Match resolves next_id/prev_id links between a (frame t-1) and b (frame
// t) in place, following spec §4.5's algorithm exactly:
//
//  1. Each a's candidate list is its k nearest b's.
//  2. Each a proposes to its current best remaining candidate.
//  3. Conflicting proposals for the same b are resolved by keeping the
//     closer proposer (tie-break: lower source id); losers advance to
//     their next candidate and re-propose.
//  4. A proposal becomes final once it survives a round uncontested. It is
//     only recorded as a match if the reciprocal check holds: a must also
//     be among b's own k nearest in A.
//
// If either set is empty, all associations are left at 0 (spec §4.5: "not
// an error").
func (m *Matcher) Match(a, b roi.Set) {
	for i := range a {
		a[i].NextID = 0
	}
	for i := range b {
		b[i].PrevID = 0
	}

	if a.N() == 0 || b.N() == 0 {
		return
	}

	k := m.K
	if k < 1 {
		k = 1
	}

	aCandidates := kNearest(a, b, k)
	bCandidates := kNearest(b, a, k) // for the reciprocal check

	// cursor[i] = index into aCandidates[i] of a's current proposal.
	cursor := make([]int, len(a))
	// proposal[i] = b id a currently proposes to, 0 if exhausted.
	proposal := make([]int, len(a))

	settle := func() {
		for i := 1; i < len(a); i++ {
			if cursor[i] < len(aCandidates[i]) {
				proposal[i] = aCandidates[i][cursor[i]].id
			} else {
				proposal[i] = 0
			}
		}
	}
	settle()

	for {
		// Group proposals by target b id.
		byTarget := make(map[int][]int) // b id -> proposer a ids
		for i := 1; i < len(a); i++ {
			if proposal[i] != 0 {
				byTarget[proposal[i]] = append(byTarget[proposal[i]], i)
			}
		}

		conflict := false
		for target, proposers := range byTarget {
			if len(proposers) <= 1 {
				continue
			}
			conflict = true
			// Winner: closest to target, tie-break lower source id.
			winner := proposers[0]
			winnerDist := distByID(aCandidates[winner], target)
			for _, p := range proposers[1:] {
				d := distByID(aCandidates[p], target)
				if d < winnerDist || (d == winnerDist && p < winner) {
					winner = p
					winnerDist = d
				}
			}
			for _, p := range proposers {
				if p != winner {
					cursor[p]++
				}
			}
		}

		if !conflict {
			break
		}
		settle()
	}

	// Finalize: reciprocal check.
	for i := 1; i < len(a); i++ {
		target := proposal[i]
		if target == 0 {
			continue
		}
		if reciprocal(bCandidates[target], i) {
			a[i].NextID = target
			b[target].PrevID = i
		}
	}
}

func distByID(cands []neighbor, id int) float64 {
	for _, c := range cands {
		if c.id == id {
			return c.dist
		}
	}
	return math.Inf(1)
}

func reciprocal(cands []neighbor, id int) bool {
	for _, c := range cands {
		if c.id == id {
			return true
		}
	}
	return false
}
