package transpose

// Plan is the public handle: built once by CreatePlan, executed any number
// of times, with buffers and scalars re-targetable without a full re-plan.
// The master plan is shared between the handle and its callers — borrowed
// at Execute time, replaced wholesale by the handle on SetNumThreads /
// SetParallelStrategy.
type Plan[T Element] struct {
	shape *normalizedShape

	a, b       []T
	outerA     []int
	outerB     []int
	size       []int
	perm       []int
	alpha      T
	beta       T
	numThreads int
	mode       SelectionMode

	master *masterPlan[T]

	measurementFellBack bool
}

// CreatePlan validates and normalises the given shape, then plans a fused
// loop nest and parallel decomposition over numThreads workers.
// outerA/outerB may be nil, meaning "equal to S and S∘π respectively"
// (fully dense, no sub-tensor view).
func CreatePlan[T Element](perm []int, alpha T, a []T, s []int, outerA []int, beta T, b []T, outerB []int, mode SelectionMode, numThreads int) (*Plan[T], error) {
	if outerA == nil {
		outerA = append([]int(nil), s...)
	}
	if outerB == nil {
		sB := make([]int, len(s))
		for k, p := range perm {
			sB[p] = s[k]
		}
		outerB = sB
	}
	if numThreads < 1 {
		numThreads = 1
	}

	ns, err := normalize(perm, s, outerA, outerB)
	if err != nil {
		return nil, err
	}

	result, err := createPlan(ns, mode, numThreads, alpha, beta, a, b)
	if err != nil {
		return nil, err
	}

	return &Plan[T]{
		shape:               ns,
		a:                   a,
		b:                   b,
		outerA:              outerA,
		outerB:              outerB,
		size:                append([]int(nil), s...),
		perm:                append([]int(nil), perm...),
		alpha:               alpha,
		beta:                beta,
		numThreads:          numThreads,
		mode:                mode,
		master:              result.plan,
		measurementFellBack: result.measurementFellBack,
	}, nil
}

// Execute runs the transpose, inferring the streaming-store and β=0
// specialisations from the currently stored α, β.
func (p *Plan[T]) Execute() error {
	return execute(p.master, p.a, p.b, p.alpha, p.beta, true, 0)
}

// ExecuteTask runs only task t's share of the iteration space in the
// caller's own goroutine, for callers that are already executing T-way
// parallel themselves and just want to drive one task's share in place.
func (p *Plan[T]) ExecuteTask(taskID int) error {
	return execute(p.master, p.a, p.b, p.alpha, p.beta, false, taskID)
}

// SetInputPtr replaces the source buffer without re-planning.
func (p *Plan[T]) SetInputPtr(a []T) { p.a = a }

// SetOutputPtr replaces the destination buffer without re-planning.
func (p *Plan[T]) SetOutputPtr(b []T) { p.b = b }

// SetAlpha replaces α; the next Execute call re-derives which
// execute_expert specialisation to use.
func (p *Plan[T]) SetAlpha(alpha T) { p.alpha = alpha }

// SetBeta replaces β; the next Execute call re-derives which
// execute_expert specialisation to use.
func (p *Plan[T]) SetBeta(beta T) { p.beta = beta }

// NumThreads returns the thread budget the plan was built for.
func (p *Plan[T]) NumThreads() int { return p.numThreads }

// SetNumThreads re-plans for a new thread budget. The old master plan
// stays valid for any Execute call already in flight; SetNumThreads only
// replaces the handle's reference.
func (p *Plan[T]) SetNumThreads(numThreads int) error {
	if numThreads < 1 {
		numThreads = 1
	}
	result, err := createPlan(p.shape, p.mode, numThreads, p.alpha, p.beta, p.a, p.b)
	if err != nil {
		return err
	}
	p.numThreads = numThreads
	p.master = result.plan
	p.measurementFellBack = result.measurementFellBack
	return nil
}

// SetParallelStrategy overrides the selected parallel decomposition by
// index into the decomposer's enumeration order for the current loop
// order. Index 0 leaves the current decomposition unchanged.
func (p *Plan[T]) SetParallelStrategy(id int) error {
	if id == 0 {
		return nil
	}
	loopOrder := p.master.loopOrder
	upper := make([]int, len(loopOrder))
	for i, axis := range loopOrder {
		upper[i] = p.shape.size[axis]
	}
	decomps := decompose(upper, p.numThreads, defaultMinBalancing, maxDecompCandidates(p.mode))
	if id < 0 || id >= len(decomps) {
		return newPlanError(InvalidExtent, "parallel strategy id %d out of range [0,%d)", id, len(decomps))
	}
	plan := materializePlan(p.shape, p.master.loopOrder, decomps[id], p.numThreads, p.alpha, p.beta)
	plan.score = p.master.score
	p.master = plan
	return nil
}

// Clone returns a new handle sharing this plan's master plan, mirroring a
// shallow copy constructor. The clone may re-target its own
// buffers/scalars independently; re-planning
// either handle does not affect the other, since SetNumThreads and
// SetParallelStrategy replace the handle's master-plan reference rather
// than mutating it.
func (p *Plan[T]) Clone() *Plan[T] {
	clone := *p
	return &clone
}

// MeasurementFellBack reports whether the planner's measurement phase
// could not time any candidate and fell back to the heuristic winner.
// The underlying failure is swallowed internally; this is exposed only
// for tests/diagnostics, never as a returned error.
func (p *Plan[T]) MeasurementFellBack() bool { return p.measurementFellBack }
