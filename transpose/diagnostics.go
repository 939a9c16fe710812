package transpose

import (
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"
	"k8s.io/klog/v2"
)

// Print emits a diagnostic dump of the selected loop order and
// parallelisation of the master plan, one key/value line per field.
func (p *Plan[T]) Print() string {
	m := p.master
	elemSize := elementSize[T]()

	var sb strings.Builder
	fmt.Fprintf(&sb, "Plan %s\n", m.id)
	fmt.Fprintf(&sb, "  arch:        %s (register width %d bits)\n", archName, registerBits)
	fmt.Fprintf(&sb, "  element:     %s (%s)\n", kindOf[T](), humanize.Bytes(uint64(elemSize)))
	fmt.Fprintf(&sb, "  fused rank:  %d\n", m.shape.dPrime)
	fmt.Fprintf(&sb, "  loop order:  %v\n", m.loopOrder)
	fmt.Fprintf(&sb, "  parallelism: %v (tasks=%d, requested threads=%d)\n", m.decomp.perLoop, m.decomp.tasks, p.numThreads)
	fmt.Fprintf(&sb, "  const-stride-1: %v\n", m.constStride1)
	fmt.Fprintf(&sb, "  streaming stores: %v\n", m.useStreamingStores)
	fmt.Fprintf(&sb, "  heuristic score: %.4f\n", m.score)
	if p.measurementFellBack {
		fmt.Fprintf(&sb, "  measurement: fell back to heuristic winner\n")
	}

	out := sb.String()
	klog.V(1).Info(out)
	return out
}
