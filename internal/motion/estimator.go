// Package motion implements the Motion Estimator (spec §4.6): a two-pass
// closed-form fit of a global rigid 2-D motion (rotation theta, translation
// tx,ty) to matched ROI centroid pairs, used to compensate for camera
// motion before the tracker classifies per-ROI residuals as "motion" vs
// "static" (spec §4.7 pass 1).
package motion

import (
	"math"

	"github.com/MADECICCO/fmdt/internal/roi"
	"gonum.org/v1/gonum/stat"
)

// outlierSigma is the multiple of the first-pass standard deviation beyond
// which a matched pair is excluded from the second (refit) pass. The
// original source's motion-fitting translation unit is not among the files
// retained for this project; this constant is a documented assumption (see
// DESIGN.md) chosen to match the conventional 2-sigma outlier cut used
// elsewhere in the source's statistics (errorMoy/ecartType in Tracking.c).
const outlierSigma = 2.0

// Result is the per-frame output of the Motion Estimator.
type Result struct {
	Theta, Tx, Ty float64 // final rigid motion

	FirstMeanError, FirstStdDeviation float64 // first-pass residual stats
	MeanError, StdDeviation           float64 // final-pass residual stats

	// Errors maps a's ROI id (frame t-1) to its final-pass residual. It is
	// populated for every a with next_id != 0, including pairs the second
	// pass excluded as outliers; spec §4.6 requires "per-ROI
	// residual error" for all matched pairs, not just post-outlier-removal
	// survivors, so an entry is always present for every matched a, with
	// the residual computed against the *final* theta/tx/ty.
	Errors map[int]float64
}

// pair is one matched centroid correspondence, frame t-1 -> frame t.
type pair struct {
	aID            int
	ax, ay, bx, by float64
}

// Estimate fits the global rigid motion between a (frame t-1) and b (frame
// t) using only ROIs in a with NextID != 0. If fewer than 3 pairs are
// available, it emits the identity motion with all errors at 0 (spec §4.6:
// degenerate case).
func Estimate(a, b roi.Set) Result {
	pairs := matchedPairs(a, b)
	if len(pairs) < 3 {
		zero := Result{Errors: map[int]float64{}}
		for _, p := range pairs {
			zero.Errors[p.aID] = 0
		}
		return zero
	}

	theta1, tx1, ty1 := fitRigid(pairs)
	e1 := residuals(pairs, theta1, tx1, ty1)
	mean1, std1 := meanStd(e1)

	kept := make([]pair, 0, len(pairs))
	for i, p := range pairs {
		if math.Abs(e1[i]-mean1) <= outlierSigma*std1 {
			kept = append(kept, p)
		}
	}
	if len(kept) < 3 {
		kept = pairs
	}

	theta2, tx2, ty2 := fitRigid(kept)
	eFinal := residuals(pairs, theta2, tx2, ty2)
	meanFinal, stdFinal := meanStd(eFinal)

	errs := make(map[int]float64, len(pairs))
	for i, p := range pairs {
		errs[p.aID] = eFinal[i]
	}

	return Result{
		Theta: theta2, Tx: tx2, Ty: ty2,
		FirstMeanError: mean1, FirstStdDeviation: std1,
		MeanError: meanFinal, StdDeviation: stdFinal,
		Errors: errs,
	}
}

func matchedPairs(a, b roi.Set) []pair {
	var pairs []pair
	for i := 1; i < len(a); i++ {
		next := a[i].NextID
		if next == 0 {
			continue
		}
		pairs = append(pairs, pair{aID: a[i].ID, ax: a[i].X, ay: a[i].Y, bx: b[next].X, by: b[next].Y})
	}
	return pairs
}

// fitRigid computes the closed-form least-squares rotation+translation
// minimizing sum ||R(theta)*a_i + t - b_i||^2, via the standard 2-D
// best-fit-rotation formula (equivalent to the 2x2 restriction of the
// Kabsch/Umeyama algorithm, without scale or reflection).
func fitRigid(pairs []pair) (theta, tx, ty float64) {
	var meanAx, meanAy, meanBx, meanBy float64
	n := float64(len(pairs))
	for _, p := range pairs {
		meanAx += p.ax
		meanAy += p.ay
		meanBx += p.bx
		meanBy += p.by
	}
	meanAx /= n
	meanAy /= n
	meanBx /= n
	meanBy /= n

	var sinNum, cosNum float64
	for _, p := range pairs {
		ax, ay := p.ax-meanAx, p.ay-meanAy
		bx, by := p.bx-meanBx, p.by-meanBy
		sinNum += ax*by - ay*bx
		cosNum += ax*bx + ay*by
	}
	theta = math.Atan2(sinNum, cosNum)

	cos, sin := math.Cos(theta), math.Sin(theta)
	rax := meanAx*cos - meanAy*sin
	ray := meanAx*sin + meanAy*cos
	tx = meanBx - rax
	ty = meanBy - ray
	return theta, tx, ty
}

func residuals(pairs []pair, theta, tx, ty float64) []float64 {
	cos, sin := math.Cos(theta), math.Sin(theta)
	out := make([]float64, len(pairs))
	for i, p := range pairs {
		rx := p.ax*cos - p.ay*sin + tx
		ry := p.ax*sin + p.ay*cos + ty
		dx, dy := rx-p.bx, ry-p.by
		out[i] = math.Sqrt(dx*dx + dy*dy)
	}
	return out
}

func meanStd(xs []float64) (mean, std float64) {
	if len(xs) == 0 {
		return 0, 0
	}
	mean = stat.Mean(xs, nil)
	if len(xs) == 1 {
		return mean, 0
	}
	std = stat.StdDev(xs, nil)
	return mean, std
}
