package logistic

const (
	// MinFitPoints is the smallest sample set a three parameter curve can be fitted to.
	MinFitPoints = 3

	DefaultMaxEvaluations    = 10000
	DefaultInitialGrowthRate = 1.0
	// DefaultTolerance is the MINPACK default for both the relative reduction
	// of the residual and the relative step length.
	DefaultTolerance = 1.49012e-8

	// DefaultCurvePoints is how many points Curve samples when n is not positive.
	DefaultCurvePoints = 200

	numParams = 3

	initialDamping = 1e-3
	dampingUp      = 10.0
	dampingDown    = 10.0
	minDamping     = 1e-15
	maxDamping     = 1e16
)
