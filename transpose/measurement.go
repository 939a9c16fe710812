package transpose

import (
	"sort"
	"time"

	"k8s.io/klog/v2"
)

// measureCandidates times the leading candidates and returns the fastest
// one, or signals a fallback to the heuristic winner if nothing could be
// timed (swallowed internally rather than surfaced as an error).
//
// Timing runs against scratch copies of a/b, not the caller's real
// buffers: running real (possibly β-accumulating) iterations against the
// caller's own B would leave its
// contents dependent on how many candidates happened to be timed — an
// observable, undocumented side effect of planning. Scratch buffers avoid
// that without changing which candidate gets selected.
func measureCandidates[T Element](ns *normalizedShape, candidates []candidate, mode SelectionMode, alpha, beta T, a, b []T) (candidate, bool) {
	iterCap := measureIterCap
	if mode == Patient || mode == Crazy {
		iterCap = patientIterCap
	}

	scratchA := append([]T(nil), a...)
	scratchB := append([]T(nil), b...)

	deadline := time.Now().Add(crazyWallClockCeiling)

	type timed struct {
		candidate
		wallTime time.Duration
		ok       bool
	}
	results := make([]timed, 0, len(candidates))

	for _, c := range candidates {
		if mode == Crazy && time.Now().After(deadline) {
			break
		}
		plan := materializePlan(ns, c.loopOrder, c.decomp, len(c.decomp.perLoop), alpha, beta)
		dur, ok := timeCandidate(plan, scratchA, scratchB, alpha, beta, iterCap)
		results = append(results, timed{candidate: c, wallTime: dur, ok: ok})
	}

	var usable []timed
	for _, r := range results {
		if r.ok {
			usable = append(usable, r)
		}
	}
	if len(usable) == 0 {
		klog.V(2).Infof("transpose: all %d timed candidates failed, falling back to heuristic", len(candidates))
		return candidates[0], true
	}

	sort.Slice(usable, func(i, j int) bool { return usable[i].wallTime < usable[j].wallTime })
	return usable[0].candidate, false
}

// timeCandidate runs the measurementTrials-short-runs-then-extrapolate
// procedure: run k short trials, drop outliers more
// than 2x the median, take the median of what remains, and extrapolate to
// a notional full iteration count by simple proportionality (here, the
// "full" count is itself just iterCap — candidates are compared on equal
// footing so no further scaling is needed).
func timeCandidate[T Element](plan *masterPlan[T], a, b []T, alpha, beta T, iterCap int) (time.Duration, bool) {
	if iterCap < 1 {
		iterCap = 1
	}
	trials := make([]time.Duration, 0, measurementTrials)
	for t := 0; t < measurementTrials; t++ {
		start := time.Now()
		for i := 0; i < iterCap; i++ {
			if err := execute(plan, a, b, alpha, beta, true, 0); err != nil {
				return 0, false
			}
		}
		trials = append(trials, time.Since(start))
	}

	sort.Slice(trials, func(i, j int) bool { return trials[i] < trials[j] })
	median := trials[len(trials)/2]

	var kept []time.Duration
	for _, d := range trials {
		if d <= 2*median {
			kept = append(kept, d)
		}
	}
	if len(kept) == 0 {
		kept = trials
	}
	sort.Slice(kept, func(i, j int) bool { return kept[i] < kept[j] })
	return kept[len(kept)/2], true
}
