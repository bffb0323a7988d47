// Package likelihood implements the evaluator family the sampler explores:
// Gaussian variants for flux and magnitude data and a Poisson variant for
// count data. Variants share one residual computer and one Gaussian kernel;
// they differ only in how the noise standard deviation is resolved and in
// the extra log-terms they add.
package likelihood

import (
	"math"

	"transientfit/domain/params"
)

// nanToNum maps non-finite values onto the representable float limits:
// NaN becomes 0, infinities become the signed largest float. Degenerate
// censoring terms rely on this so the sampler sees a rejecting finite-width
// value instead of a NaN poisoning the aggregate.
func nanToNum(x float64) float64 {
	switch {
	case math.IsNaN(x):
		return 0
	case math.IsInf(x, 1):
		return math.MaxFloat64
	case math.IsInf(x, -1):
		return -math.MaxFloat64
	}
	return x
}

// rejected is the log-likelihood of a parameter draw the sampler must
// discard: model failure, non-positive sigma, non-finite intermediate.
func rejected() float64 {
	return math.Inf(-1)
}

// gaussianSum evaluates sum_i [ -(r_i/sigma_i)^2/2 - ln(2 pi sigma_i^2)/2 ]
// with sigma resolved per point from the noise model under the current
// parameter vector. Any invalid sigma rejects the whole draw.
func gaussianSum(res []float64, noise NoiseModel, p params.Vector) float64 {
	sum := 0.0
	for i, r := range res {
		sigma := noise.SigmaAt(p, i)
		if math.IsNaN(sigma) || sigma <= 0 {
			return rejected()
		}
		ratio := r / sigma
		sum += -ratio*ratio/2 - math.Log(2*math.Pi*sigma*sigma)/2
	}
	if math.IsNaN(sum) {
		return rejected()
	}
	return sum
}

// poissonSum evaluates sum_i [ -rate_i + k_i ln(rate_i) - lnGamma(k_i + 1) ].
// Non-positive or non-finite rates reject the draw.
func poissonSum(rate, counts []float64) float64 {
	sum := 0.0
	for i, r := range rate {
		if math.IsNaN(r) || math.IsInf(r, 0) || r <= 0 {
			return rejected()
		}
		lg, _ := math.Lgamma(counts[i] + 1)
		sum += -r + counts[i]*math.Log(r) - lg
	}
	if math.IsNaN(sum) {
		return rejected()
	}
	return sum
}
