package transpose

import (
	"math"
	"sort"
	"time"

	"github.com/samber/lo"
	"k8s.io/klog/v2"
)

// Planner configuration constants. These are the documented implementation
// parameters for each selection mode, pinned down rather than left to
// guesswork.
const (
	estimateTopK          = 3   // Estimate: heuristic-only, no timing
	measureMaxCandidates  = 10  // Measure: O(10) timed candidates
	measureIterCap        = 50  // Measure: per-candidate iteration cap
	patientMaxCandidates  = 100 // Patient: O(100) timed candidates
	patientIterCap        = 200 // Patient: larger cap
	patientScoreTolerance = 1.3 // Patient: within this factor of the best heuristic score
	crazyWallClockCeiling = 5 * time.Second

	defaultMinBalancing = 0.7

	loopWeightDecay = 0.6 // w < 1 in loopCostHeuristic, inner loops weighted more
	wLoop           = 1.0
	wPar            = 0.5

	measurementTrials = 3 // k short trials per candidate
)

// candidate is one (loop order, parallel decomposition) pair under
// consideration, with its heuristic and (optionally) measured score.
type candidate struct {
	loopOrder []int
	decomp    parallelDecomposition
	score     float64
	measured  bool
}

// planCreationResult carries the chosen candidate plus whether the
// measurement phase fell back to the heuristic winner (swallowed
// internally; the best heuristic candidate is used).
type planCreationResult[T Element] struct {
	plan                *masterPlan[T]
	measurementFellBack bool
}

// createPlan runs the full C5 planner pipeline: enumerate loop orders,
// enumerate parallel decompositions per order, score by heuristic, and
// (for Measure/Patient/Crazy) time the leading candidates before picking
// the minimum.
func createPlan[T Element](ns *normalizedShape, mode SelectionMode, numThreads int, alpha, beta T, a, b []T) (*planCreationResult[T], error) {
	axisA0, axisB0, constStride1 := kernelAxes(ns)
	outer := outerAxes(ns, axisA0, axisB0, constStride1)

	orders := loopOrderPermutations(outer)
	scored := make([]candidate, 0, len(orders))
	for _, order := range orders {
		upper := make([]int, len(order))
		for i, axis := range order {
			upper[i] = ns.size[axis]
		}
		decomps := decompose(upper, numThreads, defaultMinBalancing, maxDecompCandidates(mode))
		best := lo.MinBy(decomps, func(a, b parallelDecomposition) bool {
			return a.loadBalancePenalty < b.loadBalancePenalty
		})
		score := wLoop*loopCostHeuristic(ns, order) + wPar*parallelismCostHeuristic(ns, order, best)
		scored = append(scored, candidate{loopOrder: order, decomp: best, score: score})
	}

	sort.SliceStable(scored, func(i, j int) bool { return scored[i].score < scored[j].score })

	toConsider := selectCandidates(scored, mode)

	result := &planCreationResult[T]{}
	chosen := toConsider[0]

	if mode != Estimate && len(a) > 0 && len(b) > 0 {
		measured, fellBack := measureCandidates(ns, toConsider, mode, alpha, beta, a, b)
		result.measurementFellBack = fellBack
		if !fellBack {
			chosen = measured
		}
		if fellBack {
			klog.V(2).Infof("transpose: measurement phase found no timeable candidate, using heuristic winner")
		}
	}

	plan := materializePlan(ns, chosen.loopOrder, chosen.decomp, numThreads, alpha, beta)
	plan.score = chosen.score
	result.plan = plan
	klog.V(4).Infof("transpose: selected loop order %v, parallel factors %v, score %.4f", chosen.loopOrder, chosen.decomp.perLoop, chosen.score)
	return result, nil
}

func maxDecompCandidates(mode SelectionMode) int {
	switch mode {
	case Estimate:
		return 1
	case Measure:
		return 10
	case Patient:
		return 50
	case Crazy:
		return 500
	default:
		return 1
	}
}

// selectCandidates applies the per-mode "candidates timed" budget to an
// already-sorted-by-heuristic candidate list.
func selectCandidates(scored []candidate, mode SelectionMode) []candidate {
	if len(scored) == 0 {
		return []candidate{{loopOrder: nil, decomp: parallelDecomposition{tasks: 1}}}
	}
	switch mode {
	case Estimate:
		return scored[:minInt(estimateTopK, len(scored))]
	case Measure:
		return scored[:minInt(measureMaxCandidates, len(scored))]
	case Patient:
		limit := scored[0].score * patientScoreTolerance
		var out []candidate
		for _, c := range scored {
			if c.score <= limit && len(out) < patientMaxCandidates {
				out = append(out, c)
			}
		}
		if len(out) == 0 {
			out = scored[:1]
		}
		return out
	case Crazy:
		return scored
	default:
		return scored[:1]
	}
}

// loopOrderPermutations enumerates permutations of the outer (non-kernel)
// fused axes — restricted to the outer axes, since the two kernel axes are
// always innermost by construction; see plan.go.
//
// Full enumeration is factorial in len(axes); beyond 8 outer axes this
// samples a bounded set of rotations/reversals instead of the full
// factorial, an implementation-defined cutoff for an otherwise unbounded
// search space.
func loopOrderPermutations(axes []int) [][]int {
	if len(axes) == 0 {
		return [][]int{{}}
	}
	if len(axes) > 8 {
		return sampleLoopOrders(axes)
	}
	var out [][]int
	perm := append([]int(nil), axes...)
	var rec func(k int)
	rec = func(k int) {
		if k == len(perm) {
			out = append(out, append([]int(nil), perm...))
			return
		}
		for i := k; i < len(perm); i++ {
			perm[k], perm[i] = perm[i], perm[k]
			rec(k + 1)
			perm[k], perm[i] = perm[i], perm[k]
		}
	}
	rec(0)
	return out
}

func sampleLoopOrders(axes []int) [][]int {
	n := len(axes)
	out := make([][]int, 0, n+2)
	out = append(out, append([]int(nil), axes...))
	reversed := make([]int, n)
	for i, a := range axes {
		reversed[n-1-i] = a
	}
	out = append(out, reversed)
	for shift := 1; shift < n; shift++ {
		rotated := make([]int, n)
		for i := 0; i < n; i++ {
			rotated[i] = axes[(i+shift)%n]
		}
		out = append(out, rotated)
	}
	return out
}

// loopCostHeuristic computes Σ_k f(L_k)·w^k, where w < 1 weights inner
// loops more heavily and f penalises non-unit contiguous strides on both
// sides. Position 0 of order is outermost; the innermost loop (last
// element) gets weight w^0 = 1.
func loopCostHeuristic(ns *normalizedShape, order []int) float64 {
	if len(order) == 0 {
		return 0
	}
	total := 0.0
	n := len(order)
	for pos, axis := range order {
		depthFromInner := n - 1 - pos
		weight := math.Pow(loopWeightDecay, float64(depthFromInner))
		f := 0.0
		if ns.lda[axis] != 1 {
			f++
		}
		if ns.ldb[axis] != 1 {
			f++
		}
		total += f * weight
	}
	return total
}

// parallelismCostHeuristic penalises parallelising short loops (captured
// by the decomposition's load-balance
// penalty) and parallelising a loop whose stride would break a streaming
// store (non-unit stride on the B side).
func parallelismCostHeuristic(ns *normalizedShape, order []int, decomp parallelDecomposition) float64 {
	cost := decomp.loadBalancePenalty
	for i, axis := range order {
		if i >= len(decomp.perLoop) || decomp.perLoop[i] <= 1 {
			continue
		}
		if ns.ldb[axis] != 1 {
			cost += 0.25
		}
	}
	return cost
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
