package breakpoint

const (
	// the knot search keeps at least two samples on each segment
	MinKnotPoints = 4

	// objective evaluations spent by one Nelder-Mead run of the knot search
	DefaultKnotEvaluations = 1000
)

const (
	hingeParams = 3

	// initial simplex size in the unbounded search coordinate
	knotSimplexSize = 0.5
)
