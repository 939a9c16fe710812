package transpose

// kernelTag bundles the expert-mode boolean knobs (streaming stores and
// β=0) so execute_expert's four specialisations share one code path
// instead of branching inside the hot loop on each call.
//
// Streaming has no observable effect on the values written — Go offers no
// portable non-temporal-store primitive — but the tag is threaded through
// the kernel anyway so the seam exists the day an arch-specific backend
// wants to act on it. BetaZero does
// change behaviour: it selects the overwrite form instead of the
// read-modify-write β-update.
type kernelTag struct {
	Streaming bool
	BetaZero  bool
}

// microKernel performs the in-register (logically — see above) W×W
// transpose:
//
//	b[j,i] = α·a[i,j]              (BetaZero)
//	b[j,i] = α·a[i,j] + β·b[j,i]   (otherwise)
//
// a and b are addressed a[i,j] = a[i+j*lda], b[j,i] = b[j+i*ldb]: axis i is
// the A-contiguous axis (lda contribution from the other axis only, per
// the fusion invariant that the A-contiguous fused axis always carries
// stride 1), axis j is the B-contiguous axis symmetrically.
func microKernel[T Element](a []T, lda int, b []T, ldb int, w int, alpha, beta T, tag kernelTag) {
	if tag.BetaZero {
		for j := 0; j < w; j++ {
			for i := 0; i < w; i++ {
				b[j+i*ldb] = scale(alpha, a[i+j*lda])
			}
		}
		return
	}
	for j := 0; j < w; j++ {
		for i := 0; i < w; i++ {
			b[j+i*ldb] = axpy(alpha, a[i+j*lda], beta, b[j+i*ldb])
		}
	}
}

// scalarAxpyPoint applies the α/β update to a single element, used by the
// macro-kernel's remainder path and the constant-stride-1 specialisation.
func scalarAxpyPoint[T Element](alpha, a, beta T, bRef *T, betaZero bool) {
	if betaZero {
		*bRef = scale(alpha, a)
		return
	}
	*bRef = axpy(alpha, a, beta, *bRef)
}
