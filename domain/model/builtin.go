package model

import (
	"math"

	"transientfit/domain/params"
	"transientfit/internal/errors"
)

// DefaultRegistry returns a registry preloaded with the built-in analytic
// light-curve models. Callers can register additional models on top.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	r.MustRegister(PowerLaw())
	r.MustRegister(ExponentialDecay())
	r.MustRegister(GaussianPulse())
	return r
}

// PowerLaw is a single power-law decay: a * t^alpha.
func PowerLaw() Model {
	return Model{
		Name:        "powerlaw",
		Description: "single power-law decay a * t^alpha",
		Params:      []string{"a", "alpha_1"},
		Eval: func(x []float64, p params.Vector, _ Kwargs) ([]float64, error) {
			a := p.GetOr("a", 0)
			alpha := p.GetOr("alpha_1", 0)
			out := make([]float64, len(x))
			for i, t := range x {
				if t <= 0 {
					return nil, errors.InvalidInput("powerlaw model requires positive times")
				}
				out[i] = a * math.Pow(t, alpha)
			}
			return out, nil
		},
	}
}

// ExponentialDecay is a * exp(-t / tau).
func ExponentialDecay() Model {
	return Model{
		Name:        "exponential_decay",
		Description: "exponential decay a * exp(-t/tau)",
		Params:      []string{"a", "tau"},
		Eval: func(x []float64, p params.Vector, _ Kwargs) ([]float64, error) {
			a := p.GetOr("a", 0)
			tau := p.GetOr("tau", 0)
			if tau == 0 {
				return nil, errors.InvalidInput("exponential_decay model requires nonzero tau")
			}
			out := make([]float64, len(x))
			for i, t := range x {
				out[i] = a * math.Exp(-t/tau)
			}
			return out, nil
		},
	}
}

// GaussianPulse is a * exp(-(t-t0)^2 / (2 w^2)), a symmetric flare profile.
func GaussianPulse() Model {
	return Model{
		Name:        "gaussian_pulse",
		Description: "symmetric pulse a * exp(-(t-t0)^2/(2 w^2))",
		Params:      []string{"a", "t0", "width"},
		Eval: func(x []float64, p params.Vector, _ Kwargs) ([]float64, error) {
			a := p.GetOr("a", 0)
			t0 := p.GetOr("t0", 0)
			w := p.GetOr("width", 0)
			if w <= 0 {
				return nil, errors.InvalidInput("gaussian_pulse model requires positive width")
			}
			out := make([]float64, len(x))
			for i, t := range x {
				d := t - t0
				out[i] = a * math.Exp(-d*d/(2*w*w))
			}
			return out, nil
		},
	}
}
