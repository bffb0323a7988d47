// Package testkit provides synthetic light curves and in-memory adapters for
// tests.
package testkit

import (
	"context"
	"math"
	"math/rand"
	"sort"
	"sync"

	"transientfit/domain/core"
	"transientfit/domain/transient"
	"transientfit/internal/errors"
	"transientfit/ports"
)

// SyntheticPowerLaw generates a flux light curve y = a * t^alpha with
// Gaussian noise of width sigma, times spaced uniformly on [1, tMax].
func SyntheticPowerLaw(n int, a, alpha, sigma, tMax float64, seed int64) *transient.Spec {
	rng := rand.New(rand.NewSource(seed))
	times := make([]float64, n)
	flux := make([]float64, n)
	fluxErr := make([]float64, n)
	for i := 0; i < n; i++ {
		times[i] = 1 + rng.Float64()*(tMax-1)
	}
	sort.Float64s(times)
	for i, t := range times {
		flux[i] = a*math.Pow(t, alpha) + sigma*rng.NormFloat64()
		fluxErr[i] = sigma
	}
	return &transient.Spec{
		Mode:    transient.ModeFlux,
		Time:    times,
		Flux:    flux,
		FluxErr: fluxErr,
	}
}

// SyntheticCounts generates uniformly binned Poisson-like counts around a
// constant rate.
func SyntheticCounts(n int, rate, binSize float64, seed int64) *transient.Spec {
	rng := rand.New(rand.NewSource(seed))
	times := make([]float64, n)
	counts := make([]float64, n)
	for i := 0; i < n; i++ {
		times[i] = float64(i) * binSize
		counts[i] = float64(poissonDraw(rng, rate*binSize))
	}
	return &transient.Spec{
		Mode:    transient.ModeCounts,
		Time:    times,
		Counts:  counts,
		BinSize: binSize,
	}
}

// poissonDraw uses Knuth's method; fixture rates are small.
func poissonDraw(rng *rand.Rand, lambda float64) int {
	l := math.Exp(-lambda)
	k := 0
	p := 1.0
	for {
		k++
		p *= rng.Float64()
		if p <= l {
			return k - 1
		}
	}
}

// InMemoryResultStore is a ResultStore for tests.
type InMemoryResultStore struct {
	mu   sync.RWMutex
	runs map[core.FitID]*ports.RunRecord
}

// NewInMemoryResultStore creates an empty store.
func NewInMemoryResultStore() *InMemoryResultStore {
	return &InMemoryResultStore{runs: make(map[core.FitID]*ports.RunRecord)}
}

func (s *InMemoryResultStore) SaveRun(_ context.Context, rec *ports.RunRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.runs[rec.ID] = rec
	return nil
}

func (s *InMemoryResultStore) GetRun(_ context.Context, id core.FitID) (*ports.RunRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.runs[id]
	if !ok {
		return nil, errors.NotFound("run record")
	}
	return rec, nil
}

func (s *InMemoryResultStore) ListRuns(_ context.Context, limit int) ([]*ports.RunRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*ports.RunRecord, 0, len(s.runs))
	for _, rec := range s.runs {
		out = append(out, rec)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// Len reports the number of stored records.
func (s *InMemoryResultStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.runs)
}
