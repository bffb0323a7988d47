package likelihood

import (
	"math"

	"transientfit/domain/params"
)

// SigmaName is the reserved parameter name for an inferred noise standard
// deviation.
const SigmaName = "sigma"

// NoiseModel resolves the effective noise standard deviation for each data
// point under the current parameter vector. Implementations return NaN for
// unresolvable or invalid draws; the Gaussian kernel rejects those.
type NoiseModel interface {
	SigmaAt(p params.Vector, i int) float64

	// FreeParameters returns the noise parameters the sampler must supply,
	// empty when the noise is fully fixed.
	FreeParameters() []string
}

// FixedNoise is a known standard deviation, scalar or per point.
type FixedNoise struct {
	scalar   float64
	perPoint []float64
}

// NewFixedNoise creates a noise model with one standard deviation for every
// point.
func NewFixedNoise(sigma float64) *FixedNoise {
	return &FixedNoise{scalar: sigma}
}

// NewFixedNoiseSeries creates a noise model with per-point standard
// deviations, typically the reported measurement errors.
func NewFixedNoiseSeries(sigma []float64) *FixedNoise {
	return &FixedNoise{perPoint: sigma}
}

func (n *FixedNoise) SigmaAt(_ params.Vector, i int) float64 {
	if n.perPoint != nil {
		if i >= len(n.perPoint) {
			return math.NaN()
		}
		return n.perPoint[i]
	}
	return n.scalar
}

func (n *FixedNoise) FreeParameters() []string { return nil }

// InferredNoise reads a single shared standard deviation from the live
// parameter vector under SigmaName; the sampler supplies it.
type InferredNoise struct{}

// NewInferredNoise creates a noise model whose sigma is a free parameter.
func NewInferredNoise() *InferredNoise {
	return &InferredNoise{}
}

func (n *InferredNoise) SigmaAt(p params.Vector, _ int) float64 {
	sigma, ok := p.Get(SigmaName)
	if !ok {
		return math.NaN()
	}
	return sigma
}

func (n *InferredNoise) FreeParameters() []string { return []string{SigmaName} }

// QuadratureNoise combines a fixed per-point instrumental term with an
// inferred shared term: sqrt(sigma_i^2 + sigma^2). A negative inferred
// sigma rejects the draw rather than silently entering the square.
type QuadratureNoise struct {
	instrumental []float64
}

// NewQuadratureNoise creates a quadrature noise model over the fixed
// per-point instrumental standard deviations.
func NewQuadratureNoise(instrumental []float64) *QuadratureNoise {
	return &QuadratureNoise{instrumental: instrumental}
}

func (n *QuadratureNoise) SigmaAt(p params.Vector, i int) float64 {
	sigma, ok := p.Get(SigmaName)
	if !ok || sigma < 0 {
		return math.NaN()
	}
	if i >= len(n.instrumental) {
		return math.NaN()
	}
	si := n.instrumental[i]
	return math.Sqrt(si*si + sigma*sigma)
}

func (n *QuadratureNoise) FreeParameters() []string { return []string{SigmaName} }
