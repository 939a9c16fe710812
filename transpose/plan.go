package transpose

import "github.com/google/uuid"

// SelectionMode controls how many candidate plans the planner considers and
// whether it times them.
type SelectionMode int

const (
	Estimate SelectionMode = iota
	Measure
	Patient
	Crazy
)

func (m SelectionMode) String() string {
	switch m {
	case Estimate:
		return "Estimate"
	case Measure:
		return "Measure"
	case Patient:
		return "Patient"
	case Crazy:
		return "Crazy"
	default:
		return "Unknown"
	}
}

// taskChain is one worker's statically partitioned outer loop-nest chain.
// The walk always starts from A/B element offset 0; each
// frame in the chain contributes o*lda / o*ldb to the running offset as it
// iterates its own [start,end) range, so no separate base offset is
// needed. The kernel-axis extents are fixed across all tasks, since
// parallelism is only applied to the outer axes (the kernel axes are
// consumed by the macro-kernel, not by the compute-node tree).
type taskChain struct {
	chain []computeNode
}

// masterPlan is the materialised (L, N) pair with its per-task chains.
// It is immutable once built; SetNumThreads/
// SetParallelStrategy replace it wholesale on the owning handle rather than
// mutating it in place.
type masterPlan[T Element] struct {
	id uuid.UUID

	shape *normalizedShape

	// axisA0 is always 0 (the A-contiguous fused axis). axisB0 is the
	// fused axis whose destination position is 0 (the B-contiguous fused
	// axis). constStride1 holds when they coincide.
	axisA0, axisB0 int
	constStride1   bool

	// Kernel-axis strides as seen from the 2-D micro/macro-kernel's point
	// of view (see kernel.go doc comment for the addressing convention).
	kernelLda, kernelLdb int
	kernelExtentI int // size of axisA0 (ignored when constStride1)
	kernelExtentJ int // size of axisB0 (ignored when constStride1)

	loopOrder []int // permutation of the outer (non-kernel) fused axes
	decomp    parallelDecomposition

	tasks []taskChain

	numThreads int
	score      float64

	useStreamingStores bool // chosen when alpha==1 and beta==0; the destination stride pattern is not examined
}

func kernelAxes(ns *normalizedShape) (axisA0, axisB0 int, constStride1 bool) {
	axisA0 = 0
	for j, p := range ns.perm {
		if p == 0 {
			axisB0 = j
			break
		}
	}
	constStride1 = axisA0 == axisB0
	return
}

// outerAxes returns the fused axis indices not consumed by the kernel, in
// original fused order.
func outerAxes(ns *normalizedShape, axisA0, axisB0 int, constStride1 bool) []int {
	skip := map[int]bool{axisA0: true}
	if !constStride1 {
		skip[axisB0] = true
	}
	var out []int
	for k := 0; k < ns.dPrime; k++ {
		if !skip[k] {
			out = append(out, k)
		}
	}
	return out
}

// materializePlan builds the per-task compute-node chains for a chosen
// (loopOrder, decomposition) pair.
func materializePlan[T Element](ns *normalizedShape, loopOrder []int, decomp parallelDecomposition, numThreads int, alpha, beta T) *masterPlan[T] {
	axisA0, axisB0, constStride1 := kernelAxes(ns)

	p := &masterPlan[T]{
		id:           uuid.New(),
		shape:        ns,
		axisA0:       axisA0,
		axisB0:       axisB0,
		constStride1: constStride1,
		loopOrder:    loopOrder,
		decomp:       decomp,
		numThreads:   numThreads,
	}
	if constStride1 {
		p.kernelExtentI = ns.size[axisA0]
		p.kernelLdb = ns.ldb[axisA0]
	} else {
		p.kernelLda = ns.lda[axisB0]
		p.kernelLdb = ns.ldb[axisA0]
		p.kernelExtentI = ns.size[axisA0]
		p.kernelExtentJ = ns.size[axisB0]
	}
	p.useStreamingStores = alpha == T(1) && beta == T(0)

	numTasks := decomp.tasks
	if numTasks < 1 {
		numTasks = 1
	}
	p.tasks = make([]taskChain, numTasks)

	// Per-axis chunking: axis loopOrder[i] is split into decomp.perLoop[i]
	// nearly-equal chunks.
	chunkCount := len(loopOrder)
	starts := make([][]int, chunkCount)
	ends := make([][]int, chunkCount)
	for i, axis := range loopOrder {
		n := 1
		if i < len(decomp.perLoop) {
			n = decomp.perLoop[i]
		}
		if n < 1 {
			n = 1
		}
		extent := ns.size[axis]
		perChunk := (extent + n - 1) / n
		s := make([]int, n)
		e := make([]int, n)
		for c := 0; c < n; c++ {
			s[c] = c * perChunk
			e[c] = s[c] + perChunk
			if e[c] > extent {
				e[c] = extent
			}
			if s[c] > extent {
				s[c] = extent
			}
		}
		starts[i] = s
		ends[i] = e
	}

	for t := 0; t < numTasks; t++ {
		rem := t
		axisStart := make([]int, ns.dPrime)
		axisEnd := make([]int, ns.dPrime)
		for k := 0; k < ns.dPrime; k++ {
			axisStart[k] = 0
			axisEnd[k] = ns.size[k]
		}
		for i := len(loopOrder) - 1; i >= 0; i-- {
			n := 1
			if i < len(decomp.perLoop) {
				n = decomp.perLoop[i]
			}
			if n < 1 {
				n = 1
			}
			c := rem % n
			rem /= n
			axis := loopOrder[i]
			axisStart[axis] = starts[i][c]
			axisEnd[axis] = ends[i][c]
		}

		incs := make([]int, ns.dPrime)
		for k := range incs {
			incs[k] = 1
		}
		chain := buildChain(loopOrder, axisStart, axisEnd, incs, ns.lda, ns.ldb)
		p.tasks[t] = taskChain{chain: chain}
	}

	return p
}
