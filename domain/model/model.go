// Package model defines the physical model contract and the registry that
// pairs every model with its declared free parameters.
//
// A physical model is a pure function from an independent-variable array and
// a parameter vector to a predicted dependent-variable array of the same
// length. Models register their free-parameter names explicitly; nothing in
// the fitting core discovers parameters through reflection.
package model

import (
	"fmt"
	"sort"
	"sync"

	"transientfit/domain/params"
	"transientfit/internal/errors"
)

// Kwargs carries fixed keyword arguments forwarded to every model call.
// These are not sampled; typical entries are an observing frequency, an
// output format switch, or a bin width.
type Kwargs map[string]interface{}

// Clone returns an independent shallow copy of the kwargs.
func (k Kwargs) Clone() Kwargs {
	if k == nil {
		return nil
	}
	out := make(Kwargs, len(k))
	for key, value := range k {
		out[key] = value
	}
	return out
}

// Float returns the kwargs entry under key as a float64 if present.
// Integer values are widened.
func (k Kwargs) Float(key string) (float64, bool) {
	value, ok := k[key]
	if !ok {
		return 0, false
	}
	switch v := value.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	}
	return 0, false
}

// Func evaluates a physical model at x under the given parameter vector and
// fixed kwargs. It must return a slice of the same length as x.
type Func func(x []float64, p params.Vector, kwargs Kwargs) ([]float64, error)

// Model pairs a physical model function with its name and the ordered list
// of free parameters that require priors. The independent variable is not
// part of Params.
type Model struct {
	Name        string
	Description string
	Params      []string
	Eval        Func
}

// FreeParameters returns a copy of the declared free-parameter names,
// order preserved.
func (m Model) FreeParameters() []string {
	out := make([]string, len(m.Params))
	copy(out, m.Params)
	return out
}

// Validate checks that the model declaration is complete enough to fit.
func (m Model) Validate() error {
	if m.Name == "" {
		return errors.ConfigInvalid("model name must not be empty")
	}
	if m.Eval == nil {
		return errors.ConfigInvalidf("model %q has no evaluation function", m.Name)
	}
	if len(m.Params) == 0 {
		return errors.ConfigInvalidf(
			"model %q declares no free parameters; the parameter list must name every sampled argument", m.Name)
	}
	seen := make(map[string]struct{}, len(m.Params))
	for _, name := range m.Params {
		if name == "" {
			return errors.ConfigInvalidf("model %q declares an empty parameter name", m.Name)
		}
		if _, dup := seen[name]; dup {
			return errors.ConfigInvalidf("model %q declares parameter %q twice", m.Name, name)
		}
		seen[name] = struct{}{}
	}
	return nil
}

// Registry holds registered physical models keyed by name.
type Registry struct {
	mu     sync.RWMutex
	models map[string]Model
}

// NewRegistry creates an empty model registry.
func NewRegistry() *Registry {
	return &Registry{models: make(map[string]Model)}
}

// Register adds a model to the registry. Registration fails with a
// CONFIG_INVALID error for incomplete declarations or duplicate names.
func (r *Registry) Register(m Model) error {
	if err := m.Validate(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.models[m.Name]; exists {
		return errors.ConfigInvalidf("model %q is already registered", m.Name)
	}
	r.models[m.Name] = m
	return nil
}

// MustRegister registers a model and panics on a declaration error.
// Intended for built-in model tables assembled at startup.
func (r *Registry) MustRegister(m Model) {
	if err := r.Register(m); err != nil {
		panic(fmt.Sprintf("model registration: %v", err))
	}
}

// Get returns the model registered under name.
func (r *Registry) Get(name string) (Model, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	m, ok := r.models[name]
	if !ok {
		return Model{}, errors.ConfigInvalidf("model %q is not registered", name)
	}
	return m, nil
}

// Names returns the sorted names of all registered models.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.models))
	for name := range r.models {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
