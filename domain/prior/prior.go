// Package prior describes the prior distributions the sampler draws free
// parameters from.
package prior

import (
	"math"
	"math/rand"

	"gonum.org/v1/gonum/stat/distuv"

	"transientfit/internal/errors"
)

// Kind names a supported prior distribution family.
type Kind string

const (
	KindUniform    Kind = "uniform"
	KindLogUniform Kind = "log_uniform"
	KindNormal     Kind = "normal"
)

// Prior is a distribution descriptor for one free parameter.
// Minimum/Maximum bound the uniform families; Mu/Sigma locate the normal.
type Prior struct {
	Kind    Kind    `yaml:"kind" json:"kind"`
	Minimum float64 `yaml:"minimum,omitempty" json:"minimum,omitempty"`
	Maximum float64 `yaml:"maximum,omitempty" json:"maximum,omitempty"`
	Mu      float64 `yaml:"mu,omitempty" json:"mu,omitempty"`
	Sigma   float64 `yaml:"sigma,omitempty" json:"sigma,omitempty"`
}

// Uniform returns a flat prior on [min, max].
func Uniform(min, max float64) Prior {
	return Prior{Kind: KindUniform, Minimum: min, Maximum: max}
}

// LogUniform returns a prior flat in ln(x) on [min, max]; min must be > 0.
func LogUniform(min, max float64) Prior {
	return Prior{Kind: KindLogUniform, Minimum: min, Maximum: max}
}

// Normal returns a Gaussian prior with the given location and scale.
func Normal(mu, sigma float64) Prior {
	return Prior{Kind: KindNormal, Mu: mu, Sigma: sigma}
}

// Validate checks the descriptor is internally consistent.
func (p Prior) Validate() error {
	switch p.Kind {
	case KindUniform:
		if !(p.Minimum < p.Maximum) {
			return errors.ConfigInvalidf("uniform prior requires minimum < maximum, got [%g, %g]", p.Minimum, p.Maximum)
		}
	case KindLogUniform:
		if !(p.Minimum > 0 && p.Minimum < p.Maximum) {
			return errors.ConfigInvalidf("log_uniform prior requires 0 < minimum < maximum, got [%g, %g]", p.Minimum, p.Maximum)
		}
	case KindNormal:
		if !(p.Sigma > 0) {
			return errors.ConfigInvalidf("normal prior requires sigma > 0, got %g", p.Sigma)
		}
	default:
		return errors.ConfigInvalidf("unknown prior kind %q", p.Kind)
	}
	return nil
}

// LogProb returns the log-density of the prior at x, negative infinity
// outside the support.
func (p Prior) LogProb(x float64) float64 {
	switch p.Kind {
	case KindUniform:
		u := distuv.Uniform{Min: p.Minimum, Max: p.Maximum}
		return u.LogProb(x)
	case KindLogUniform:
		if x < p.Minimum || x > p.Maximum {
			return math.Inf(-1)
		}
		return -math.Log(x) - math.Log(math.Log(p.Maximum/p.Minimum))
	case KindNormal:
		n := distuv.Normal{Mu: p.Mu, Sigma: p.Sigma}
		return n.LogProb(x)
	}
	return math.Inf(-1)
}

// Sample draws one value from the prior using the provided source.
func (p Prior) Sample(rng *rand.Rand) float64 {
	switch p.Kind {
	case KindUniform:
		return p.Minimum + rng.Float64()*(p.Maximum-p.Minimum)
	case KindLogUniform:
		lo := math.Log(p.Minimum)
		hi := math.Log(p.Maximum)
		return math.Exp(lo + rng.Float64()*(hi-lo))
	case KindNormal:
		return p.Mu + p.Sigma*rng.NormFloat64()
	}
	return math.NaN()
}

// Width returns a characteristic scale of the prior, used to size proposal
// steps. For the uniform families this is the support width, for the normal
// the standard deviation.
func (p Prior) Width() float64 {
	switch p.Kind {
	case KindUniform:
		return p.Maximum - p.Minimum
	case KindLogUniform:
		return p.Maximum - p.Minimum
	case KindNormal:
		return p.Sigma
	}
	return 1
}

// Dict maps free-parameter names to their priors.
type Dict map[string]Prior

// Clone returns an independent copy of the dict.
func (d Dict) Clone() Dict {
	out := make(Dict, len(d))
	for name, p := range d {
		out[name] = p
	}
	return out
}

// Validate checks every prior in the dict and that every name in required
// has one. Missing or malformed entries surface as CONFIG_INVALID.
func (d Dict) Validate(required []string) error {
	for name, p := range d {
		if err := p.Validate(); err != nil {
			return errors.Wrapf(err, "prior for %q", name)
		}
	}
	for _, name := range required {
		if _, ok := d[name]; !ok {
			return errors.ConfigInvalidf("no prior supplied for free parameter %q", name)
		}
	}
	return nil
}

// LogProb sums the per-parameter log-densities at the values in v.
// Parameters absent from v contribute nothing.
func (d Dict) LogProb(v map[string]float64) float64 {
	sum := 0.0
	for name, p := range d {
		x, ok := v[name]
		if !ok {
			continue
		}
		sum += p.LogProb(x)
	}
	return sum
}
