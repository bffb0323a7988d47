// Package params holds the live parameter vector shared between a likelihood
// evaluator and the sampler driving it.
package params

// Vector maps free-parameter names to their current values. A likelihood
// evaluator owns exactly one Vector for its lifetime; the sampler mutates it
// in place between evaluations.
type Vector map[string]float64

// NewVector creates a vector with the given parameter names, all zero-valued.
func NewVector(names ...string) Vector {
	v := make(Vector, len(names))
	for _, name := range names {
		v[name] = 0
	}
	return v
}

// Get returns the value for name and whether it is present.
func (v Vector) Get(name string) (float64, bool) {
	value, ok := v[name]
	return value, ok
}

// GetOr returns the value for name, or fallback if the vector does not
// contain it.
func (v Vector) GetOr(name string, fallback float64) float64 {
	if value, ok := v[name]; ok {
		return value
	}
	return fallback
}

// Set assigns value to name.
func (v Vector) Set(name string, value float64) {
	v[name] = value
}

// SetAll copies every entry of src into the vector.
func (v Vector) SetAll(src map[string]float64) {
	for name, value := range src {
		v[name] = value
	}
}

// Clone returns an independent copy of the vector.
func (v Vector) Clone() Vector {
	out := make(Vector, len(v))
	for name, value := range v {
		out[name] = value
	}
	return out
}
