package likelihood

import (
	"math"
	"sync"

	"transientfit/domain/model"
	"transientfit/internal/errors"
)

// GaussianUniformXErr extends the Gaussian evaluator with a uniform
// x-measurement likelihood over each point's binning window. The x-term is
// the normalization of a uniform distribution of width binSize per point:
// -sum ln(bin_size). The prior on the true x values is assumed uniform
// within the same window.
type GaussianUniformXErr struct {
	*Gaussian
	xerr []float64

	noiseOnce sync.Once
	noiseLogL float64
}

// NewGaussianUniformXErr constructs the x-error variant with a constant bin
// size across all points.
func NewGaussianUniformXErr(x, y []float64, noise NoiseModel, binSize float64, m model.Model, kwargs model.Kwargs) (*GaussianUniformXErr, error) {
	if binSize <= 0 {
		return nil, errors.ConfigInvalidf("bin size must be positive, got %g", binSize)
	}
	base, err := NewGaussian(x, y, noise, m, kwargs)
	if err != nil {
		return nil, err
	}
	xerr := make([]float64, len(x))
	for i := range xerr {
		xerr[i] = binSize
	}
	return &GaussianUniformXErr{Gaussian: base, xerr: xerr}, nil
}

// LogLikelihoodX is the uniform x-binning term: -sum ln(bin_size).
func (g *GaussianUniformXErr) LogLikelihoodX() float64 {
	sum := 0.0
	for _, w := range g.xerr {
		sum += math.Log(w)
	}
	return -nanToNum(sum)
}

// LogLikelihoodY is the Gaussian y-term alone.
func (g *GaussianUniformXErr) LogLikelihoodY() float64 {
	return g.Gaussian.LogLikelihood()
}

// LogLikelihood is the x-term plus the y-term.
func (g *GaussianUniformXErr) LogLikelihood() float64 {
	return g.LogLikelihoodX() + g.LogLikelihoodY()
}

// NoiseLogLikelihood includes the x-term in the null baseline so the Bayes
// factor against noise isolates the signal contribution.
func (g *GaussianUniformXErr) NoiseLogLikelihood() float64 {
	g.noiseOnce.Do(func() {
		g.noiseLogL = g.LogLikelihoodX() + g.Gaussian.NoiseLogLikelihood()
	})
	return g.noiseLogL
}
