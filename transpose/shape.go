package transpose

// normalizedShape is the output of the shape normaliser: the fused
// rank d', fused extents, fused permutation, and the leading dimensions on
// both sides.
type normalizedShape struct {
	dPrime int
	size   []int // fused S', length dPrime, in fused-source-axis order
	perm   []int // fused π', length dPrime
	lda    []int // A-side leading dimension per fused axis
	ldb    []int // B-side leading dimension per fused axis
}

// validateParams checks the raw (pre-fusion) parameters:
// π is a permutation of [0,d); s_k > 0; O^A_k >= s_k; O^B_{π(k)} >= s_k;
// d >= 1. outerB is indexed by destination axis, matching a normal tensor's
// own shape description.
func validateParams(perm, s, outerA, outerB []int) error {
	d := len(s)
	if d < 1 {
		return newPlanError(InvalidRank, "rank must be >= 1, got %d", d)
	}
	if len(perm) != d || len(outerA) != d || len(outerB) != d {
		return newPlanError(InvalidPermutation, "perm/outerA/outerB must have length %d", d)
	}
	seen := make([]bool, d)
	for _, p := range perm {
		if p < 0 || p >= d {
			return newPlanError(InvalidPermutation, "perm entry %d out of range [0,%d)", p, d)
		}
		if seen[p] {
			return newPlanError(InvalidPermutation, "perm entry %d repeated", p)
		}
		seen[p] = true
	}
	for k := 0; k < d; k++ {
		if s[k] <= 0 {
			return newPlanError(InvalidExtent, "extent s[%d]=%d must be > 0", k, s[k])
		}
		if outerA[k] < s[k] {
			return newPlanError(InvalidExtent, "outerA[%d]=%d < s[%d]=%d", k, outerA[k], k, s[k])
		}
		if outerB[perm[k]] < s[k] {
			return newPlanError(InvalidExtent, "outerB[%d]=%d < s[%d]=%d", perm[k], outerB[perm[k]], k, s[k])
		}
	}
	return nil
}

// normalize validates and then fuses adjacent mergeable index groups,
// producing the effective rank-d' shape the planner operates on. It is
// exported at the package-internal level as a standalone step (not folded
// into plan construction) so fusion equivalence can be tested by comparing
// against a forced-unfused plan.
func normalize(perm, s, outerA, outerB []int) (*normalizedShape, error) {
	if err := validateParams(perm, s, outerA, outerB); err != nil {
		return nil, err
	}
	d := len(s)

	stridesA := leadingDimensions(outerA)
	stridesB := leadingDimensions(outerB)

	// canMergeWithNext[k] holds iff source axes k,k+1 satisfy all three
	// fusion conditions: (a) adjacent in the same order in π,
	// (b) both dense on the A side, (c) both dense on the B side.
	canMergeWithNext := make([]bool, d-1)
	for k := 0; k < d-1; k++ {
		adjacentInPerm := perm[k+1] == perm[k]+1
		denseA := outerA[k] == s[k] && outerA[k+1] == s[k+1]
		denseB := outerB[perm[k]] == s[k] && outerB[perm[k+1]] == s[k+1]
		canMergeWithNext[k] = adjacentInPerm && denseA && denseB
	}

	// Walk source axes left to right, grouping maximal mergeable runs.
	// Axis 0 (the contiguous axis of A) is considered first by virtue of
	// the left-to-right scan, since fusing it unlocks the most favourable
	// stride-1-on-both-sides case.
	type group struct {
		start, end int // inclusive source-axis range
	}
	var groups []group
	for k := 0; k < d; {
		end := k
		for end < d-1 && canMergeWithNext[end] {
			end++
		}
		groups = append(groups, group{start: k, end: end})
		k = end + 1
	}

	dPrime := len(groups)
	size := make([]int, dPrime)
	lda := make([]int, dPrime)
	ldbByGroup := make([]int, dPrime)
	minPermByGroup := make([]int, dPrime)
	for gi, g := range groups {
		prod := 1
		for j := g.start; j <= g.end; j++ {
			prod *= s[j]
		}
		size[gi] = prod
		lda[gi] = stridesA[g.start]
		minPermByGroup[gi] = perm[g.start]
		ldbByGroup[gi] = stridesB[perm[g.start]]
	}

	// The fused permutation π' ranks groups by their destination position:
	// group gi's new destination index is the number of groups whose
	// minimum π-value is smaller.
	permPrime := make([]int, dPrime)
	for gi := range groups {
		rank := 0
		for gj := range groups {
			if minPermByGroup[gj] < minPermByGroup[gi] {
				rank++
			}
		}
		permPrime[gi] = rank
	}

	// ldb must be reindexed into fused-source-axis order already (it is:
	// ldbByGroup[gi] is the B-side leading dimension for the fused axis
	// whose source index is gi).
	return &normalizedShape{
		dPrime: dPrime,
		size:   size,
		perm:   permPrime,
		lda:    lda,
		ldb:    ldbByGroup,
	}, nil
}
