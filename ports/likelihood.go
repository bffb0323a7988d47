package ports

import (
	"transientfit/domain/params"
)

// Likelihood is the statistical contract handed to the sampler. The sampler
// mutates Parameters() in place and calls LogLikelihood() once per proposed
// point, potentially millions of times per fit.
type Likelihood interface {
	// Parameters returns the live parameter vector owned by the evaluator.
	Parameters() params.Vector

	// FreeParameters returns the ordered names of every parameter requiring
	// a prior: the model's declared parameters plus any noise parameters.
	FreeParameters() []string

	// LogLikelihood returns the log-probability of the data under the
	// current parameter vector. Degenerate draws and model evaluation
	// failures yield a rejecting negative infinity, never a panic or NaN.
	LogLikelihood() float64

	// NoiseLogLikelihood returns the log-probability of the data under the
	// signal-free null model. It is computed once and cached; concurrent
	// calls are safe.
	NoiseLogLikelihood() float64
}
