package transpose

// AnyPlan is the type-erased view of a Plan[T] for callers that only know
// the element type at runtime — a seam for a future textual API surface,
// not a surface this package builds itself.
type AnyPlan interface {
	Execute() error
	Print() string
	MeasurementFellBack() bool
}

// CreatePlanDynamic dispatches to the generic CreatePlan for the element
// kind named by k, boxing the result behind AnyPlan. alpha/beta/a/b are
// passed as any and type-asserted against k; a mismatch is reported as
// InvalidExtent rather than panicking, since it crosses from a dynamic
// caller into this package's typed core.
func CreatePlanDynamic(k ElementKind, perm []int, alpha any, a any, s []int, outerA []int, beta any, b any, outerB []int, mode SelectionMode, numThreads int) (AnyPlan, error) {
	switch k {
	case Float32:
		return createPlanDynamicTyped[float32](perm, alpha, a, s, outerA, beta, b, outerB, mode, numThreads)
	case Float64:
		return createPlanDynamicTyped[float64](perm, alpha, a, s, outerA, beta, b, outerB, mode, numThreads)
	case Complex64:
		return createPlanDynamicTyped[complex64](perm, alpha, a, s, outerA, beta, b, outerB, mode, numThreads)
	case Complex128:
		return createPlanDynamicTyped[complex128](perm, alpha, a, s, outerA, beta, b, outerB, mode, numThreads)
	default:
		return nil, newPlanError(InvalidExtent, "unknown element kind %v", k)
	}
}

func createPlanDynamicTyped[T Element](perm []int, alpha any, a any, s []int, outerA []int, beta any, b any, outerB []int, mode SelectionMode, numThreads int) (AnyPlan, error) {
	typedAlpha, ok := alpha.(T)
	if !ok {
		return nil, newPlanError(InvalidExtent, "alpha has wrong dynamic type for requested element kind")
	}
	typedBeta, ok := beta.(T)
	if !ok {
		return nil, newPlanError(InvalidExtent, "beta has wrong dynamic type for requested element kind")
	}
	typedA, ok := a.([]T)
	if !ok {
		return nil, newPlanError(InvalidExtent, "A buffer has wrong dynamic type for requested element kind")
	}
	typedB, ok := b.([]T)
	if !ok {
		return nil, newPlanError(InvalidExtent, "B buffer has wrong dynamic type for requested element kind")
	}
	return CreatePlan[T](perm, typedAlpha, typedA, s, outerA, typedBeta, typedB, outerB, mode, numThreads)
}
