package likelihood

import (
	"sync"

	"transientfit/domain/model"
	"transientfit/domain/params"
	"transientfit/internal/errors"
)

// BackgroundRateName is the reserved parameter name for the Poisson
// background rate, sampled alongside the model parameters.
const BackgroundRateName = "background_rate"

// Poisson evaluates counting data against a rate model:
// sum_i [ -rate_i + k_i ln(rate_i) - lnGamma(k_i + 1) ].
type Poisson struct {
	time   []float64
	counts []float64
	rc     residualComputer
	dt     []float64

	// integratedRate reports whether the model already returns counts per
	// bin. When false the raw per-unit-time rate is multiplied by dt.
	integratedRate bool

	vector params.Vector
	free   []string

	noiseOnce sync.Once
	noiseLogL float64
}

// NewPoisson constructs a Poisson evaluator over binned counts.
// dt may be nil (derive a uniform bin width from the first two time
// samples), a single element (uniform width), or one width per bin.
func NewPoisson(time, counts []float64, m model.Model, integratedRate bool, dt []float64, kwargs model.Kwargs) (*Poisson, error) {
	if err := validateSeries(time, counts); err != nil {
		return nil, err
	}
	if err := m.Validate(); err != nil {
		return nil, err
	}

	widths := make([]float64, len(time))
	switch {
	case len(dt) == 0:
		if len(time) < 2 {
			return nil, errors.ConfigInvalid(
				"cannot derive bin width from a single time sample; supply dt explicitly")
		}
		w := time[1] - time[0]
		for i := range widths {
			widths[i] = w
		}
	case len(dt) == 1:
		for i := range widths {
			widths[i] = dt[0]
		}
	case len(dt) == len(time):
		copy(widths, dt)
	default:
		return nil, errors.ConfigInvalidf(
			"dt must be empty, scalar, or per bin: got %d widths for %d bins", len(dt), len(time))
	}
	for _, w := range widths {
		if w <= 0 {
			return nil, errors.ConfigInvalidf("bin widths must be positive, got %g", w)
		}
	}

	free := combineFreeParameters(m.FreeParameters(), []string{BackgroundRateName})
	return &Poisson{
		time:           time,
		counts:         counts,
		rc:             newResidualComputer(time, counts, m, kwargs),
		dt:             widths,
		integratedRate: integratedRate,
		vector:         params.NewVector(free...),
		free:           free,
	}, nil
}

// Parameters returns the live parameter vector.
func (p *Poisson) Parameters() params.Vector { return p.vector }

// FreeParameters returns the model parameters plus the background rate.
func (p *Poisson) FreeParameters() []string {
	out := make([]string, len(p.free))
	copy(out, p.free)
	return out
}

// LogLikelihood evaluates the Poisson log-probability of the counts under
// the current parameter vector.
func (p *Poisson) LogLikelihood() float64 {
	predicted, err := p.rc.predict(p.vector)
	if err != nil {
		return rejected()
	}
	background := p.vector.GetOr(BackgroundRateName, 0)
	rate := make([]float64, len(predicted))
	for i, r := range predicted {
		rate[i] = r + background
		if !p.integratedRate {
			rate[i] *= p.dt[i]
		}
	}
	return poissonSum(rate, p.counts)
}

// NoiseLogLikelihood uses the background rate alone, integrated over each
// bin, computed once and cached.
func (p *Poisson) NoiseLogLikelihood() float64 {
	p.noiseOnce.Do(func() {
		background := p.vector.GetOr(BackgroundRateName, 0)
		rate := make([]float64, len(p.time))
		for i := range rate {
			rate[i] = background * p.dt[i]
		}
		p.noiseLogL = poissonSum(rate, p.counts)
	})
	return p.noiseLogL
}

// Dt returns the per-bin widths in use.
func (p *Poisson) Dt() []float64 {
	out := make([]float64, len(p.dt))
	copy(out, p.dt)
	return out
}
