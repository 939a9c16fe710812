package transpose

import (
	"sort"

	"github.com/samber/lo"
)

// parallelDecomposition is one candidate N: a per-loop thread count over the
// axes of a given loop order, with T_effective <= T when not all of T's
// prime factors could be placed (the residual primes degrade to sequential
// execution).
type parallelDecomposition struct {
	perLoop        []int // indexed the same as the loop order it was built for
	tasks          int   // product of perLoop == T_effective
	loadBalancePenalty float64
}

// primeFactorsDescending factors n into its prime factors, assigned in
// descending order (largest factor first).
func primeFactorsDescending(n int) []int {
	var out []int
	for n%2 == 0 {
		out = append(out, 2)
		n /= 2
	}
	for f := 3; f*f <= n; f += 2 {
		for n%f == 0 {
			out = append(out, f)
			n /= f
		}
	}
	if n > 1 {
		out = append(out, n)
	}
	sort.Sort(sort.Reverse(sort.IntSlice(out)))
	return out
}

// decompose enumerates candidate parallel decompositions for a loop order.
// upperBound[i] is the maximum number of tasks axis loopOrder[i]
// can accept (u_k = ceil(s_k/inc_k), here taken as the axis extent since
// the blocking factor along an outer loop is 1 element per task boundary).
// minBalancing is the caller-supplied floor (fraction of T that must be
// evenly distributed); maxCandidates bounds enumeration per the planner's
// selection mode.
func decompose(upperBound []int, totalThreads int, minBalancing float64, maxCandidates int) []parallelDecomposition {
	numAxes := len(upperBound)
	if numAxes == 0 || totalThreads <= 1 {
		ones := make([]int, numAxes)
		for i := range ones {
			ones[i] = 1
		}
		return []parallelDecomposition{{perLoop: ones, tasks: 1}}
	}

	primes := primeFactorsDescending(totalThreads)
	perLoop := make([]int, numAxes)
	for i := range perLoop {
		perLoop[i] = 1
	}

	var results []parallelDecomposition
	var backtrack func(pi int)
	backtrack = func(pi int) {
		if len(results) >= maxCandidates {
			return
		}
		if pi == len(primes) {
			total := 1
			for _, v := range perLoop {
				total *= v
			}
			results = append(results, parallelDecomposition{
				perLoop:            append([]int(nil), perLoop...),
				tasks:              total,
				loadBalancePenalty: loadBalancePenalty(perLoop, minBalancing),
			})
			return
		}
		p := primes[pi]

		// Axes with headroom, smallest-assigned-factor first: this
		// maximises load balance by giving the prime to whichever axis is
		// currently carrying the least parallelism.
		order := lo.Filter(argsortAscending(perLoop), func(axis int, _ int) bool {
			return perLoop[axis]*p <= upperBound[axis]
		})

		if len(order) == 0 {
			// Residual prime cannot be placed under these bounds: degrade
			// to sequential execution for this factor (T_effective < T).
			backtrack(pi + 1)
			return
		}
		for _, axis := range order {
			perLoop[axis] *= p
			backtrack(pi + 1)
			perLoop[axis] /= p
			if len(results) >= maxCandidates {
				return
			}
		}
	}
	backtrack(0)
	if len(results) == 0 {
		results = append(results, parallelDecomposition{perLoop: perLoop, tasks: 1})
	}
	return results
}

// argsortAscending returns axis indices sorted by their current assigned
// factor, smallest first.
func argsortAscending(perLoop []int) []int {
	idx := make([]int, len(perLoop))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(i, j int) bool {
		return perLoop[idx[i]] < perLoop[idx[j]]
	})
	return idx
}

// loadBalancePenalty approximates a load-imbalance cost term (max tasks per
// worker / mean) restricted to the per-loop factors
// themselves, plus a penalty when the achieved balance falls short of the
// caller's minBalancing floor.
func loadBalancePenalty(perLoop []int, minBalancing float64) float64 {
	if len(perLoop) == 0 {
		return 0
	}
	maxF, sum := 0, 0
	for _, v := range perLoop {
		if v > maxF {
			maxF = v
		}
		sum += v
	}
	mean := float64(sum) / float64(len(perLoop))
	if mean == 0 {
		return 0
	}
	imbalance := float64(maxF)/mean - 1
	achieved := mean / float64(maxF)
	if achieved < minBalancing {
		imbalance += (minBalancing - achieved)
	}
	return imbalance
}
