package likelihood

import (
	"math"

	"transientfit/domain/model"
	"transientfit/internal/errors"
)

// UpperLimitKwarg is the kwargs key holding the censoring flux threshold.
const UpperLimitKwarg = "flux"

// GaussianQuadratureNonDetections extends the quadrature evaluator with a
// censored term for non-detection points. The Gaussian part runs over the
// detected points only; each non-detection re-evaluates the model at its x
// with the upper-limit kwargs and contributes -ln(threshold) when the
// predicted flux sits below the threshold, and the largest negative float
// when it does not.
//
// The -ln(threshold) form is an informal convention, not a normalized
// truncated likelihood; downstream fits depend on it, so it is kept as is.
type GaussianQuadratureNonDetections struct {
	*Gaussian

	limitX      []float64
	threshold   float64
	limitKwargs model.Kwargs
}

// NewGaussianQuadratureNonDetections constructs the censored variant.
// x, y, sigmaI describe the detected points; limitX holds the positions of
// the non-detections; upperKwargs must carry the flux threshold under
// UpperLimitKwarg and is forwarded to the model when re-evaluating at the
// non-detection positions.
func NewGaussianQuadratureNonDetections(x, y, sigmaI, limitX []float64, m model.Model, kwargs, upperKwargs model.Kwargs) (*GaussianQuadratureNonDetections, error) {
	base, err := NewGaussianQuadrature(x, y, sigmaI, m, kwargs)
	if err != nil {
		return nil, err
	}
	threshold, ok := upperKwargs.Float(UpperLimitKwarg)
	if !ok {
		return nil, errors.ConfigInvalidf("upper-limit kwargs missing %q threshold", UpperLimitKwarg)
	}
	return &GaussianQuadratureNonDetections{
		Gaussian:    base,
		limitX:      limitX,
		threshold:   threshold,
		limitKwargs: upperKwargs,
	}, nil
}

// LogLikelihoodY is the Gaussian term over the detected points.
func (g *GaussianQuadratureNonDetections) LogLikelihoodY() float64 {
	return g.Gaussian.LogLikelihood()
}

// LogLikelihoodUpperLimit sums the censoring terms over the non-detection
// points. Non-finite terms are sanitized to the signed float limit before
// summation so one violated limit rejects the draw without producing NaN.
func (g *GaussianQuadratureNonDetections) LogLikelihoodUpperLimit() float64 {
	if len(g.limitX) == 0 {
		return 0
	}
	flux, err := g.rc.predictAt(g.limitX, g.vector, g.limitKwargs)
	if err != nil {
		return rejected()
	}
	sum := 0.0
	for _, f := range flux {
		var term float64
		if f >= g.threshold {
			term = -math.MaxFloat64
		} else {
			term = nanToNum(-math.Log(g.threshold))
		}
		sum += term
	}
	return nanToNum(sum)
}

// LogLikelihood is the detected-point term plus the censoring term.
func (g *GaussianQuadratureNonDetections) LogLikelihood() float64 {
	return g.LogLikelihoodY() + g.LogLikelihoodUpperLimit()
}
