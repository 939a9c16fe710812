package transpose

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// executeTask walks one task's compute-node chain, accumulating the A/B
// pointer offsets as it descends, and invokes the kernel at the leaf. It
// performs no I/O, suspends never, and only touches the disjoint
// sub-rectangle this task owns.
func executeTask[T Element](p *masterPlan[T], a, b []T, alpha, beta T, tag kernelTag, task taskChain) error {
	return walkChain(p, a, b, alpha, beta, tag, task.chain, 0, 0, 0)
}

func walkChain[T Element](p *masterPlan[T], a, b []T, alpha, beta T, tag kernelTag, chain []computeNode, depth, offA, offB int) error {
	if depth >= len(chain) {
		return invokeKernel(p, a, b, alpha, beta, tag, offA, offB)
	}
	n := chain[depth]
	for o := n.start; o < n.end; o += n.inc {
		if err := walkChain(p, a, b, alpha, beta, tag, chain, depth+1, offA+o*n.lda, offB+o*n.ldb); err != nil {
			return err
		}
	}
	return nil
}

// invokeKernel dispatches to the constant-stride-1 copy or the macro-kernel
// depending on the plan's fused shape.
func invokeKernel[T Element](p *masterPlan[T], a, b []T, alpha, beta T, tag kernelTag, offA, offB int) error {
	if p.constStride1 {
		extent := p.kernelExtentI
		return constStride1Copy(a[offA:offA+extent], b[offB:offB+extent], extent, alpha, beta, tag.BetaZero, 1)
	}
	extentI, extentJ := p.kernelExtentI, p.kernelExtentJ
	macroKernel(a[offA:], p.kernelLda, b[offB:], p.kernelLdb, extentI, extentJ, alpha, beta, tag)
	return nil
}

// execute dispatches to one of the four execute_expert specialisations,
// selected from the plan's chosen streaming-store setting (kept only while
// the current α=1 and β=0) and the caller's current β. spawnThreads controls whether the
// engine forks its own worker goroutines (the common case) or the caller
// is already executing T-way parallel and only wants task t=callerTaskID
// run in place.
func execute[T Element](p *masterPlan[T], a, b []T, alpha, beta T, spawnThreads bool, callerTaskID int) error {
	tag := kernelTag{
		Streaming: p.useStreamingStores && alpha == T(1) && beta == T(0),
		BetaZero:  beta == T(0),
	}

	if !spawnThreads {
		if callerTaskID < 0 || callerTaskID >= len(p.tasks) {
			return newPlanError(InvalidExtent, "callerTaskID %d out of range [0,%d)", callerTaskID, len(p.tasks))
		}
		return executeTask(p, a, b, alpha, beta, tag, p.tasks[callerTaskID])
	}

	g, _ := errgroup.WithContext(context.Background())
	for _, task := range p.tasks {
		task := task
		g.Go(func() error {
			return executeTask(p, a, b, alpha, beta, tag, task)
		})
	}
	return g.Wait()
}
