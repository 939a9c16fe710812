package transpose

// computeNode is one frame of a per-task loop chain. Rather than an
// intrusively linked, heap-allocated list, each task's chain lives in one
// contiguous slice (an arena): childIdx indexes the next element of the
// same slice, and -1 marks the leaf, where the macro-kernel (or its
// remainder path) is invoked.
type computeNode struct {
	start, end, inc int
	lda, ldb        int
	childIdx        int
}

// isLeaf reports whether this node's child is nil, meaning "invoke the
// macro-kernel at the current (A,B) pair".
func (n computeNode) isLeaf() bool { return n.childIdx < 0 }

// buildChain materialises the frame chain for one task: one frame per axis
// in loopOrder, which holds only the outer loop axes (the axes consumed by
// the macro/constant-stride-1 kernel are not in it), so the chain depth is
// d' minus the two axes the macro-kernel consumes, or d' minus one when only
// one axis is consumed.
//
// start/end/inc describe this task's disjoint slice of the axis's range:
// each worker's node chain traverses a disjoint sub-rectangle of the
// iteration space.
func buildChain(loopOrder []int, starts, ends, incs []int, lda, ldb []int) []computeNode {
	n := len(loopOrder)
	if n == 0 {
		return nil
	}
	chain := make([]computeNode, n)
	for i, axis := range loopOrder {
		child := i + 1
		if i == n-1 {
			child = -1
		}
		chain[i] = computeNode{
			start:    starts[axis],
			end:      ends[axis],
			inc:      incs[axis],
			lda:      lda[axis],
			ldb:      ldb[axis],
			childIdx: child,
		}
	}
	return chain
}
