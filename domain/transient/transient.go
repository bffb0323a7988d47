// Package transient holds the observed time series of an astronomical
// transient event and resolves which series the fitting layer sees, based on
// the configured data mode.
package transient

import (
	"math"
	"sort"

	"transientfit/internal/errors"
)

// Spec carries the observed series and attributes used to construct a
// Transient. All supplied series for the active mode must share one length.
type Spec struct {
	Name string
	Mode DataMode

	// Independent-variable series. Luminosity mode reads rest-frame time,
	// phase models read MJD time, everything else reads Time.
	Time             []float64
	TimeErr          []float64
	TimeMJD          []float64
	TimeMJDErr       []float64
	TimeRestFrame    []float64
	TimeRestFrameErr []float64

	Lum50          []float64
	Lum50Err       []float64
	Flux           []float64
	FluxErr        []float64
	FluxDensity    []float64
	FluxDensityErr []float64
	Magnitude      []float64
	MagnitudeErr   []float64
	Counts         []float64
	TTEs           []float64

	BinSize       float64
	Redshift      float64
	PhotonIndex   float64
	UsePhaseModel bool
}

// Transient is an immutable observation set. The x/y accessors are resolved
// once at construction from the data mode; the underlying arrays are shared,
// not copied, and must not be mutated after construction.
type Transient struct {
	Name string
	Mode DataMode

	Time             []float64
	TimeErr          []float64
	TimeMJD          []float64
	TimeMJDErr       []float64
	TimeRestFrame    []float64
	TimeRestFrameErr []float64

	Lum50          []float64
	Lum50Err       []float64
	Flux           []float64
	FluxErr        []float64
	FluxDensity    []float64
	FluxDensityErr []float64
	Magnitude      []float64
	MagnitudeErr   []float64
	Counts         []float64
	CountsErr      []float64
	TTEs           []float64

	BinSize       float64
	Redshift      float64
	PhotonIndex   float64
	UsePhaseModel bool

	x, xErr, y, yErr []float64
}

// New validates the spec and resolves the active series accessors.
func New(spec Spec) (*Transient, error) {
	t := &Transient{
		Name:             spec.Name,
		Mode:             spec.Mode,
		Time:             spec.Time,
		TimeErr:          spec.TimeErr,
		TimeMJD:          spec.TimeMJD,
		TimeMJDErr:       spec.TimeMJDErr,
		TimeRestFrame:    spec.TimeRestFrame,
		TimeRestFrameErr: spec.TimeRestFrameErr,
		Lum50:            spec.Lum50,
		Lum50Err:         spec.Lum50Err,
		Flux:             spec.Flux,
		FluxErr:          spec.FluxErr,
		FluxDensity:      spec.FluxDensity,
		FluxDensityErr:   spec.FluxDensityErr,
		Magnitude:        spec.Magnitude,
		MagnitudeErr:     spec.MagnitudeErr,
		Counts:           spec.Counts,
		TTEs:             spec.TTEs,
		BinSize:          spec.BinSize,
		Redshift:         spec.Redshift,
		PhotonIndex:      spec.PhotonIndex,
		UsePhaseModel:    spec.UsePhaseModel,
	}

	if t.Mode == ModeTTE {
		if t.BinSize <= 0 {
			return nil, errors.ConfigInvalid("tte data mode requires a positive bin size")
		}
		if len(t.TTEs) == 0 {
			return nil, errors.ConfigInvalid("tte data mode requires event arrival times")
		}
		t.Time, t.Counts = binTTEs(t.TTEs, t.BinSize)
	}
	if len(t.Counts) > 0 {
		t.CountsErr = make([]float64, len(t.Counts))
		for i, c := range t.Counts {
			t.CountsErr[i] = math.Sqrt(c)
		}
	}

	sel, ok := seriesSelectors[t.Mode]
	if !ok {
		return nil, errors.ConfigInvalidf("unknown data mode %d", int(t.Mode))
	}
	t.x = t.timeSeries()
	t.xErr = t.timeErrSeries()
	t.y = sel.y(t)
	t.yErr = sel.yErr(t)

	if len(t.x) == 0 {
		return nil, errors.ConfigInvalid("transient has no time samples")
	}
	if len(t.y) == 0 {
		return nil, errors.ConfigInvalidf("transient has no %s data", t.Mode)
	}
	if len(t.y) != len(t.x) {
		return nil, errors.ConfigInvalidf(
			"series length mismatch: %d time samples, %d %s samples", len(t.x), len(t.y), t.Mode)
	}
	if t.yErr != nil && len(t.yErr) != len(t.y) {
		return nil, errors.ConfigInvalidf(
			"series length mismatch: %d %s samples, %d errors", len(t.y), t.Mode, len(t.yErr))
	}
	if t.xErr != nil && len(t.xErr) != len(t.x) {
		return nil, errors.ConfigInvalidf(
			"series length mismatch: %d time samples, %d time errors", len(t.x), len(t.xErr))
	}
	return t, nil
}

func (t *Transient) timeSeries() []float64 {
	if t.Mode == ModeLuminosity {
		return t.TimeRestFrame
	}
	if t.UsePhaseModel {
		return t.TimeMJD
	}
	return t.Time
}

func (t *Transient) timeErrSeries() []float64 {
	if t.Mode == ModeLuminosity {
		return t.TimeRestFrameErr
	}
	if t.UsePhaseModel {
		return t.TimeMJDErr
	}
	return t.TimeErr
}

// X returns the active independent-variable series.
func (t *Transient) X() []float64 { return t.x }

// XErr returns the active independent-variable errors, nil if none.
func (t *Transient) XErr() []float64 { return t.xErr }

// Y returns the active dependent-variable series.
func (t *Transient) Y() []float64 { return t.y }

// YErr returns the active dependent-variable errors, nil if none.
func (t *Transient) YErr() []float64 { return t.yErr }

// N returns the number of observations in the active series.
func (t *Transient) N() int { return len(t.x) }

// Attributes flattens the transient metadata for run records.
func (t *Transient) Attributes() map[string]interface{} {
	return map[string]interface{}{
		"name":            t.Name,
		"data_mode":       t.Mode.String(),
		"redshift":        t.Redshift,
		"photon_index":    t.PhotonIndex,
		"bin_size":        t.BinSize,
		"use_phase_model": t.UsePhaseModel,
		"n_points":        t.N(),
	}
}

// binTTEs bins time-tagged events into uniform count bins of width binSize.
func binTTEs(ttes []float64, binSize float64) (times, counts []float64) {
	sorted := make([]float64, len(ttes))
	copy(sorted, ttes)
	sort.Float64s(sorted)

	start := sorted[0]
	span := sorted[len(sorted)-1] - start
	nbins := int(span/binSize) + 1

	times = make([]float64, nbins)
	counts = make([]float64, nbins)
	for i := range times {
		// bin centers
		times[i] = start + (float64(i)+0.5)*binSize
	}
	for _, t := range sorted {
		idx := int((t - start) / binSize)
		if idx >= nbins {
			idx = nbins - 1
		}
		counts[idx]++
	}
	return times, counts
}
