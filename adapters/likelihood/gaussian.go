package likelihood

import (
	"sync"

	"transientfit/domain/model"
	"transientfit/domain/params"
	"transientfit/internal/errors"
)

// Gaussian is the basic heteroscedastic Gaussian evaluator. The noise
// strategy decides whether sigma is fixed, inferred, or a quadrature
// combination; the evaluator itself is the same for all three.
type Gaussian struct {
	rc    residualComputer
	noise NoiseModel

	vector params.Vector
	free   []string

	noiseOnce sync.Once
	noiseLogL float64
}

// NewGaussian constructs a Gaussian evaluator over (x, y) with the given
// noise strategy. The observation arrays are shared, not copied, and must
// stay immutable for the evaluator's lifetime. The noise-only value is
// cached on first use, so with an inferred or quadrature noise strategy
// the caller must set the sigma parameter on the live vector before the
// first NoiseLogLikelihood call.
func NewGaussian(x, y []float64, noise NoiseModel, m model.Model, kwargs model.Kwargs) (*Gaussian, error) {
	if err := validateSeries(x, y); err != nil {
		return nil, err
	}
	if err := m.Validate(); err != nil {
		return nil, err
	}
	free := combineFreeParameters(m.FreeParameters(), noise.FreeParameters())
	return &Gaussian{
		rc:     newResidualComputer(x, y, m, kwargs),
		noise:  noise,
		vector: params.NewVector(free...),
		free:   free,
	}, nil
}

// NewGaussianQuadrature constructs a Gaussian evaluator whose effective
// sigma is sqrt(sigma_i^2 + sigma^2): the per-point instrumental term is
// fixed, the shared term is sampled.
func NewGaussianQuadrature(x, y, sigmaI []float64, m model.Model, kwargs model.Kwargs) (*Gaussian, error) {
	if len(sigmaI) != len(x) {
		return nil, errors.ConfigInvalidf(
			"series length mismatch: %d points, %d instrumental sigmas", len(x), len(sigmaI))
	}
	return NewGaussian(x, y, NewQuadratureNoise(sigmaI), m, kwargs)
}

// Parameters returns the live parameter vector.
func (g *Gaussian) Parameters() params.Vector { return g.vector }

// FreeParameters returns the parameter names requiring priors, model
// parameters first, noise parameters after.
func (g *Gaussian) FreeParameters() []string {
	out := make([]string, len(g.free))
	copy(out, g.free)
	return out
}

// LogLikelihood returns the Gaussian log-probability of the data under the
// current parameter vector. Model failures and degenerate sigmas reject the
// draw with negative infinity.
func (g *Gaussian) LogLikelihood() float64 {
	res, err := g.rc.residual(g.vector)
	if err != nil {
		return rejected()
	}
	return gaussianSum(res, g.noise, g.vector)
}

// NoiseLogLikelihood returns the log-probability of the data with the model
// contributing zero signal, computed once and cached. Noise parameters read
// from the live vector are frozen into the cache at that first call.
func (g *Gaussian) NoiseLogLikelihood() float64 {
	g.noiseOnce.Do(func() {
		g.noiseLogL = gaussianSum(g.rc.y, g.noise, g.vector)
	})
	return g.noiseLogL
}

func validateSeries(x, y []float64) error {
	if len(x) == 0 {
		return errors.ConfigInvalid("likelihood requires at least one observation")
	}
	if len(x) != len(y) {
		return errors.ConfigInvalidf("series length mismatch: %d x values, %d y values", len(x), len(y))
	}
	return nil
}

func combineFreeParameters(modelParams, noiseParams []string) []string {
	out := make([]string, 0, len(modelParams)+len(noiseParams))
	seen := make(map[string]struct{}, len(modelParams)+len(noiseParams))
	for _, name := range modelParams {
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}
		out = append(out, name)
	}
	for _, name := range noiseParams {
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}
		out = append(out, name)
	}
	return out
}
