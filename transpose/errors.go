package transpose

import (
	"fmt"

	"github.com/pkg/errors"
)

// ErrorKind is the closed taxonomy of construction-time failures.
// execute() itself never fails once a Plan exists.
type ErrorKind int

const (
	// InvalidRank: d < 1.
	InvalidRank ErrorKind = iota
	// InvalidPermutation: π is not a permutation of [0,d).
	InvalidPermutation
	// InvalidExtent: some s_k <= 0, or O^A_k < s_k, or O^B_k < s_{π(k)}.
	InvalidExtent
	// UnsupportedConfiguration: blocking_constStride1 != 1 was requested.
	UnsupportedConfiguration
	// MeasurementFailure: the measurement phase could not time any
	// candidate. Swallowed internally: no PlanError of this kind is ever
	// returned; the heuristic fallback is reported by Plan.MeasurementFellBack.
	MeasurementFailure
)

func (k ErrorKind) String() string {
	switch k {
	case InvalidRank:
		return "InvalidRank"
	case InvalidPermutation:
		return "InvalidPermutation"
	case InvalidExtent:
		return "InvalidExtent"
	case UnsupportedConfiguration:
		return "UnsupportedConfiguration"
	case MeasurementFailure:
		return "MeasurementFailure"
	default:
		return "UnknownError"
	}
}

// PlanError reports a construction-time failure from CreatePlan. The
// underlying stack trace (captured by github.com/pkg/errors) is reachable
// via Unwrap (errors.Unwrap), not errors.Cause, for callers who want to attribute a rejected plan to a
// specific call site in their own code, not just this package.
type PlanError struct {
	Kind ErrorKind
	msg  string
	err  error
}

func (e *PlanError) Error() string {
	return fmt.Sprintf("transpose: %s: %s", e.Kind, e.msg)
}

func (e *PlanError) Unwrap() error { return e.err }

func newPlanError(kind ErrorKind, format string, args ...any) *PlanError {
	msg := fmt.Sprintf(format, args...)
	return &PlanError{Kind: kind, msg: msg, err: errors.New(msg)}
}

// IsKind reports whether err is a *PlanError of the given kind.
func IsKind(err error, kind ErrorKind) bool {
	var pe *PlanError
	if errors.As(err, &pe) {
		return pe.Kind == kind
	}
	return false
}
