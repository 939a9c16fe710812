package transpose

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

// naiveReference computes the transpose by direct odometer iteration over
// the logical index space, independent of fusion/tiling/parallel
// decomposition, serving as the correctness oracle for the tests below.
func naiveReference[T Element](perm []int, alpha T, a []T, s, outerA []int, beta T, b []T, outerB []int) {
	d := len(s)
	stridesA := leadingDimensions(outerA)
	stridesB := leadingDimensions(outerB)
	total := 1
	for _, v := range s {
		total *= v
	}
	idx := make([]int, d)
	for linear := 0; linear < total; linear++ {
		rem := linear
		for k := 0; k < d; k++ {
			idx[k] = rem % s[k]
			rem /= s[k]
		}
		offA, offB := 0, 0
		for k := 0; k < d; k++ {
			offA += idx[k] * stridesA[k]
			offB += idx[k] * stridesB[perm[k]]
		}
		b[offB] = axpy(alpha, a[offA], beta, b[offB])
	}
}

func invertPermutation(perm []int) []int {
	inv := make([]int, len(perm))
	for k, p := range perm {
		inv[p] = k
	}
	return inv
}

func runPlanned[T Element](t *testing.T, perm []int, alpha T, a []T, s, outerA []int, beta T, b []T, outerB []int, mode SelectionMode) []T {
	t.Helper()
	out := append([]T(nil), b...)
	plan, err := CreatePlan[T](perm, alpha, a, s, outerA, beta, out, outerB, mode, 4)
	require.NoError(t, err)
	require.NoError(t, plan.Execute())
	return out
}

func TestOracleSmallTabulated2D(t *testing.T) {
	// A is 2x3 (row-major-ish via strides), transpose to 3x2.
	s := []int{2, 3}
	perm := []int{1, 0}
	a := []float64{1, 2, 3, 4, 5, 6}
	bInit := make([]float64, 6)

	want := append([]float64(nil), bInit...)
	naiveReference(perm, 1.0, a, s, s, 0.0, want, []int{3, 2})

	got := runPlanned[float64](t, perm, 1.0, a, s, s, 0.0, bInit, []int{3, 2}, Estimate)
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("transpose mismatch (-want +got):\n%s", diff)
	}
}

func TestOracleSmallTabulated3D(t *testing.T) {
	s := []int{2, 2, 3}
	perm := []int{2, 0, 1}
	total := 2 * 2 * 3
	a := make([]float64, total)
	for i := range a {
		a[i] = float64(i + 1)
	}
	outerB := make([]int, 3)
	for k, p := range perm {
		outerB[p] = s[k]
	}
	bInit := make([]float64, total)

	want := append([]float64(nil), bInit...)
	naiveReference(perm, 1.0, a, s, s, 0.0, want, outerB)

	got := runPlanned[float64](t, perm, 1.0, a, s, s, 0.0, bInit, outerB, Estimate)
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("transpose mismatch (-want +got):\n%s", diff)
	}
}

func TestOracleLinearityInAlpha(t *testing.T) {
	s := []int{4, 5}
	perm := []int{1, 0}
	a := make([]float64, 20)
	for i := range a {
		a[i] = float64(i + 1)
	}
	b1 := runPlanned[float64](t, perm, 1.0, a, s, s, 0.0, make([]float64, 20), []int{5, 4}, Estimate)
	b3 := runPlanned[float64](t, perm, 3.0, a, s, s, 0.0, make([]float64, 20), []int{5, 4}, Estimate)
	for i := range b1 {
		require.InDelta(t, 3*b1[i], b3[i], 1e-9)
	}
}

func TestOracleIdentityPermutationIsByteEqual(t *testing.T) {
	s := []int{3, 4, 2}
	perm := []int{0, 1, 2}
	total := 3 * 4 * 2
	a := make([]float64, total)
	for i := range a {
		a[i] = float64(i + 1)
	}
	got := runPlanned[float64](t, perm, 1.0, a, s, s, 0.0, make([]float64, total), s, Estimate)
	require.Equal(t, a, got)
}

func TestOracleInvolution(t *testing.T) {
	s := []int{2, 3, 4}
	perm := []int{2, 0, 1}
	total := 2 * 3 * 4
	a := make([]float64, total)
	for i := range a {
		a[i] = float64(i + 1)
	}
	outerB := make([]int, 3)
	for k, p := range perm {
		outerB[p] = s[k]
	}
	forward := runPlanned[float64](t, perm, 1.0, a, s, s, 0.0, make([]float64, total), outerB, Estimate)

	inv := invertPermutation(perm)
	back := runPlanned[float64](t, inv, 1.0, forward, outerB, outerB, 0.0, make([]float64, total), s, Estimate)

	require.Equal(t, a, back)
}

func TestOracleSubTensorHaloSafety(t *testing.T) {
	// Inner 2x2 region inside a 4x4 storage on both sides; cells outside
	// the inner region on B must remain at their sentinel value.
	s := []int{2, 2}
	perm := []int{1, 0}
	outerA := []int{4, 4}
	outerB := []int{4, 4}

	strideA := leadingDimensions(outerA)
	a := make([]float64, 16)
	for i := range a {
		a[i] = -1 // sentinel for untouched-in-A positions, unused by oracle
	}
	// Fill the inner 2x2 region of A with distinct values.
	val := 1.0
	for i := 0; i < s[0]; i++ {
		for j := 0; j < s[1]; j++ {
			a[i*strideA[0]+j*strideA[1]] = val
			val++
		}
	}

	const sentinel = 999.0
	b := make([]float64, 16)
	for i := range b {
		b[i] = sentinel
	}

	plan, err := CreatePlan[float64](perm, 1.0, a, s, outerA, 0.0, b, outerB, Estimate, 2)
	require.NoError(t, err)
	require.NoError(t, plan.Execute())

	strideB := leadingDimensions(outerB)
	written := make(map[int]bool)
	for i := 0; i < s[0]; i++ {
		for j := 0; j < s[1]; j++ {
			idx := []int{i, j}
			offB := idx[0]*strideB[perm[0]] + idx[1]*strideB[perm[1]]
			written[offB] = true
		}
	}
	for off := 0; off < 16; off++ {
		if !written[off] {
			require.Equalf(t, sentinel, b[off], "offset %d outside inner region must be untouched", off)
		}
	}
}

func TestOracleDeterminism(t *testing.T) {
	s := []int{5, 3, 2}
	perm := []int{1, 2, 0}
	total := 5 * 3 * 2
	a := make([]float64, total)
	for i := range a {
		a[i] = float64(i)*1.5 + 1
	}
	outerB := make([]int, 3)
	for k, p := range perm {
		outerB[p] = s[k]
	}
	r1 := runPlanned[float64](t, perm, 2.0, a, s, s, 0.0, make([]float64, total), outerB, Measure)
	r2 := runPlanned[float64](t, perm, 2.0, a, s, s, 0.0, make([]float64, total), outerB, Measure)
	require.Equal(t, r1, r2)
}

func TestOracleFusionEquivalence(t *testing.T) {
	// Dense, fully fusable shape vs. the same logical transpose forced
	// non-fusable via a halo on every axis: both must agree on the region
	// they share.
	s := []int{2, 3, 4}
	perm := []int{0, 1, 2}
	total := 2 * 3 * 4

	a := make([]float64, total)
	for i := range a {
		a[i] = float64(i + 1)
	}
	fused := runPlanned[float64](t, perm, 1.0, a, s, s, 0.0, make([]float64, total), s, Estimate)

	outerA := []int{3, 4, 5}
	outerB := []int{3, 4, 5}
	strideA := leadingDimensions(outerA)
	strideAFused := leadingDimensions(s)
	aUnfused := make([]float64, 3*4*5)
	for i := 0; i < s[0]; i++ {
		for j := 0; j < s[1]; j++ {
			for k := 0; k < s[2]; k++ {
				aUnfused[i*strideA[0]+j*strideA[1]+k*strideA[2]] = a[i*strideAFused[0]+j*strideAFused[1]+k*strideAFused[2]]
			}
		}
	}
	bUnfused := make([]float64, 3*4*5)
	unfusedResult := runPlanned[float64](t, perm, 1.0, aUnfused, s, outerA, 0.0, bUnfused, outerB, Estimate)

	strideBFused := leadingDimensions(s)
	strideBUnfused := leadingDimensions(outerB)
	for i := 0; i < s[0]; i++ {
		for j := 0; j < s[1]; j++ {
			for k := 0; k < s[2]; k++ {
				want := fused[i*strideBFused[0]+j*strideBFused[1]+k*strideBFused[2]]
				got := unfusedResult[i*strideBUnfused[0]+j*strideBUnfused[1]+k*strideBUnfused[2]]
				require.InDeltaf(t, want, got, 1e-9, "i=%d j=%d k=%d", i, j, k)
			}
		}
	}
}

func TestOracleHigherRankReducedExtent(t *testing.T) {
	// d=6, a modest sub-extent per axis to keep the brute-force oracle fast.
	s := []int{2, 2, 2, 2, 2, 2}
	perm := []int{5, 4, 3, 2, 1, 0}
	total := 1
	for _, v := range s {
		total *= v
	}
	a := make([]float64, total)
	for i := range a {
		a[i] = float64(i + 1)
	}
	outerB := make([]int, 6)
	for k, p := range perm {
		outerB[p] = s[k]
	}
	bInit := make([]float64, total)
	want := append([]float64(nil), bInit...)
	naiveReference(perm, 1.0, a, s, s, 0.0, want, outerB)

	got := runPlanned[float64](t, perm, 1.0, a, s, s, 0.0, bInit, outerB, Estimate)
	require.Equal(t, want, got)
}

func TestOracleComplex128(t *testing.T) {
	s := []int{3, 2}
	perm := []int{1, 0}
	a := []complex128{1 + 1i, 2 + 2i, 3 + 3i, 4 + 4i, 5 + 5i, 6 + 6i}
	outerB := []int{2, 3}
	bInit := make([]complex128, 6)
	want := append([]complex128(nil), bInit...)
	naiveReference(perm, complex(2, 0), a, s, s, complex(0, 0), want, outerB)

	got := runPlanned[complex128](t, perm, complex(2, 0), a, s, s, complex(0, 0), bInit, outerB, Estimate)
	require.Equal(t, want, got)
}

func TestOracleDrivesInteriorTiling(t *testing.T) {
	// S=(12,9) exceeds 2*W on both axes for float64 (W<=4), so
	// macroKernel's full W×W tile loop runs rather than falling through
	// entirely to the scalar remainder path.
	s := []int{12, 9}
	perm := []int{1, 0}
	total := 12 * 9
	a := make([]float64, total)
	for i := range a {
		a[i] = float64(i + 1)
	}
	outerB := []int{9, 12}
	bInit := make([]float64, total)
	want := append([]float64(nil), bInit...)
	naiveReference(perm, 2.0, a, s, s, 0.0, want, outerB)

	got := runPlanned[float64](t, perm, 2.0, a, s, s, 0.0, bInit, outerB, Estimate)
	require.Equal(t, want, got)
}

func TestOracleFloat32(t *testing.T) {
	s := []int{4, 3}
	perm := []int{1, 0}
	a := make([]float32, 12)
	for i := range a {
		a[i] = float32(i + 1)
	}
	outerB := []int{3, 4}
	bInit := make([]float32, 12)
	want := append([]float32(nil), bInit...)
	naiveReference(perm, float32(1), a, s, s, float32(0), want, outerB)

	got := runPlanned[float32](t, perm, float32(1), a, s, s, float32(0), bInit, outerB, Estimate)
	require.Equal(t, want, got)
}
