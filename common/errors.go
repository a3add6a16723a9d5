package common

import "errors"

var (
	ErrorInvalidValue = errors.New("invalid value")

	// ErrorInsufficientData is returned when a sample set is shorter than the
	// minimum an operation needs (3 for the logistic fit, 4 for the knot).
	ErrorInsufficientData = errors.New("insufficient data")
	// ErrorDegenerateInput is returned when every throughput value is the same.
	ErrorDegenerateInput = errors.New("degenerate input")
	// ErrorNonConvergence is returned when the solver exhausted its budget or
	// produced non finite parameters.
	ErrorNonConvergence = errors.New("non convergence")
	// ErrorOutOfDomain marks a breakpoint outside the observed concurrency range.
	ErrorOutOfDomain = errors.New("out of domain")
)

type ErrorKind string

const (
	KindNone             ErrorKind = ""
	KindInvalidValue     ErrorKind = "invalid_value"
	KindInsufficientData ErrorKind = "insufficient_data"
	KindDegenerateInput  ErrorKind = "degenerate_input"
	KindNonConvergence   ErrorKind = "non_convergence"
	KindOutOfDomain      ErrorKind = "out_of_domain"
	KindUnknown          ErrorKind = "unknown"
)

// KindOf maps err to a stable kind that reports can print.
func KindOf(err error) ErrorKind {
	switch {
	case err == nil:
		return KindNone
	case errors.Is(err, ErrorInsufficientData):
		return KindInsufficientData
	case errors.Is(err, ErrorDegenerateInput):
		return KindDegenerateInput
	case errors.Is(err, ErrorNonConvergence):
		return KindNonConvergence
	case errors.Is(err, ErrorOutOfDomain):
		return KindOutOfDomain
	case errors.Is(err, ErrorInvalidValue):
		return KindInvalidValue
	}
	return KindUnknown
}
