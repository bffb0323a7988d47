package transient

import (
	"strings"

	"transientfit/internal/errors"
)

// DataMode selects which observed series a transient exposes as its
// dependent variable.
type DataMode int

const (
	ModeLuminosity DataMode = iota
	ModeFlux
	ModeFluxDensity
	ModePhotometry
	ModeCounts
	ModeTTE
)

var dataModeNames = map[DataMode]string{
	ModeLuminosity:  "luminosity",
	ModeFlux:        "flux",
	ModeFluxDensity: "flux_density",
	ModePhotometry:  "photometry",
	ModeCounts:      "counts",
	ModeTTE:         "ttes",
}

func (m DataMode) String() string {
	if name, ok := dataModeNames[m]; ok {
		return name
	}
	return "unknown"
}

// ParseDataMode maps a mode name to its DataMode, case-insensitively.
func ParseDataMode(s string) (DataMode, error) {
	lowered := strings.ToLower(strings.TrimSpace(s))
	for mode, name := range dataModeNames {
		if name == lowered {
			return mode, nil
		}
	}
	return 0, errors.ConfigInvalidf("unknown data mode %q", s)
}

// seriesSelector names the fields a data mode reads its dependent series
// from. The table replaces per-access reflection: a transient resolves its
// selector once at construction.
type seriesSelector struct {
	y    func(*Transient) []float64
	yErr func(*Transient) []float64
}

var seriesSelectors = map[DataMode]seriesSelector{
	ModeLuminosity: {
		y:    func(t *Transient) []float64 { return t.Lum50 },
		yErr: func(t *Transient) []float64 { return t.Lum50Err },
	},
	ModeFlux: {
		y:    func(t *Transient) []float64 { return t.Flux },
		yErr: func(t *Transient) []float64 { return t.FluxErr },
	},
	ModeFluxDensity: {
		y:    func(t *Transient) []float64 { return t.FluxDensity },
		yErr: func(t *Transient) []float64 { return t.FluxDensityErr },
	},
	ModePhotometry: {
		y:    func(t *Transient) []float64 { return t.Magnitude },
		yErr: func(t *Transient) []float64 { return t.MagnitudeErr },
	},
	ModeCounts: {
		y:    func(t *Transient) []float64 { return t.Counts },
		yErr: func(t *Transient) []float64 { return t.CountsErr },
	},
	// TTE data is binned into counts at construction.
	ModeTTE: {
		y:    func(t *Transient) []float64 { return t.Counts },
		yErr: func(t *Transient) []float64 { return t.CountsErr },
	},
}
