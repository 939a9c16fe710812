package transpose

// macroKernel tiles a 2-D (extentI × extentJ) block by repeated microKernel
// calls over W×W sub-tiles in row-major tile order, handling the ragged
// boundary with macroRemainder so α/β semantics hold exactly at edges that
// are not a multiple of W.
//
// a/b addressing matches microKernel: a[i,j]=a[i+j*lda], b[j,i]=b[j+i*ldb].
func macroKernel[T Element](a []T, lda int, b []T, ldb int, extentI, extentJ int, alpha, beta T, tag kernelTag) {
	w := microWidth[T]()
	if w < 1 {
		w = 1
	}
	fullI := extentI / w
	fullJ := extentJ / w

	for ti := 0; ti < fullI; ti++ {
		for tj := 0; tj < fullJ; tj++ {
			base := ti*w + tj*w*lda
			aSub := a[base:]
			bBase := tj*w + ti*w*ldb
			bSub := b[bBase:]
			microKernel(aSub, lda, bSub, ldb, w, alpha, beta, tag)
		}
	}

	macroRemainder(a, lda, b, ldb, extentI, extentJ, fullI*w, fullJ*w, alpha, beta, tag)
}

// macroRemainder completes the α/β-correct write for the boundary strip
// left over once the W×W tiling in macroKernel has covered [0,doneI) ×
// [0,doneJ). It covers the rest of the rectangle in two disjoint passes —
// the right column-strip (all rows, columns >= doneJ) and the bottom-left
// corner (rows >= doneI, columns < doneJ) — so every element is written
// exactly once and the halo outside the written region is left untouched.
func macroRemainder[T Element](a []T, lda int, b []T, ldb int, extentI, extentJ, doneI, doneJ int, alpha, beta T, tag kernelTag) {
	for j := doneJ; j < extentJ; j++ {
		for i := 0; i < extentI; i++ {
			scalarAxpyPoint(alpha, a[i+j*lda], beta, &b[j+i*ldb], tag.BetaZero)
		}
	}
	for i := doneI; i < extentI; i++ {
		for j := 0; j < doneJ; j++ {
			scalarAxpyPoint(alpha, a[i+j*lda], beta, &b[j+i*ldb], tag.BetaZero)
		}
	}
}

// constStride1Copy implements the constant-stride-1 specialisation: when
// the A-contiguous and B-contiguous fused axes coincide (π'(0)=0), the
// innermost two loops collapse into a single contiguous scaled copy with no
// in-register transpose. blockingConstStride1 must be 1 (any other value
// is rejected as UnsupportedConfiguration); it exists as a parameter so
// the block factor is visible at the call site even though only 1 is
// accepted today.
func constStride1Copy[T Element](a []T, b []T, extent int, alpha, beta T, betaZero bool, blockingConstStride1 int) error {
	if blockingConstStride1 != 1 {
		return newPlanError(UnsupportedConfiguration, "blocking_constStride1=%d is not supported", blockingConstStride1)
	}
	if betaZero {
		for i := 0; i < extent; i++ {
			b[i] = scale(alpha, a[i])
		}
		return nil
	}
	for i := 0; i < extent; i++ {
		b[i] = axpy(alpha, a[i], beta, b[i])
	}
	return nil
}
