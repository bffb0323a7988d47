package transient

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNew_FluxModeSelectsFluxSeries(t *testing.T) {
	tr, err := New(Spec{
		Name:    "GRB140903A",
		Mode:    ModeFlux,
		Time:    []float64{1, 2, 3},
		Flux:    []float64{5, 3, 2},
		FluxErr: []float64{0.5, 0.3, 0.2},
	})
	require.NoError(t, err)
	require.Equal(t, []float64{1, 2, 3}, tr.X())
	require.Equal(t, []float64{5, 3, 2}, tr.Y())
	require.Equal(t, []float64{0.5, 0.3, 0.2}, tr.YErr())
	require.Equal(t, 3, tr.N())
}

func TestNew_LuminosityModeUsesRestFrameTime(t *testing.T) {
	tr, err := New(Spec{
		Mode:          ModeLuminosity,
		TimeRestFrame: []float64{10, 20},
		Lum50:         []float64{1.5, 0.7},
		Lum50Err:      []float64{0.1, 0.1},
		Redshift:      0.35,
	})
	require.NoError(t, err)
	require.Equal(t, []float64{10, 20}, tr.X())
	require.Equal(t, []float64{1.5, 0.7}, tr.Y())
}

func TestNew_PhaseModelUsesMJDTime(t *testing.T) {
	tr, err := New(Spec{
		Mode:          ModePhotometry,
		Time:          []float64{1, 2},
		TimeMJD:       []float64{58100, 58101},
		Magnitude:     []float64{19, 20},
		MagnitudeErr:  []float64{0.1, 0.1},
		UsePhaseModel: true,
	})
	require.NoError(t, err)
	require.Equal(t, []float64{58100, 58101}, tr.X())
}

func TestNew_CountsErrIsSqrtCounts(t *testing.T) {
	tr, err := New(Spec{
		Mode:    ModeCounts,
		Time:    []float64{0, 1, 2},
		Counts:  []float64{4, 9, 0},
		BinSize: 1,
	})
	require.NoError(t, err)
	require.Equal(t, []float64{2, 3, 0}, tr.YErr())
}

func TestNew_TTEBinning(t *testing.T) {
	tr, err := New(Spec{
		Mode:    ModeTTE,
		TTEs:    []float64{0.1, 0.2, 0.7, 1.4, 1.6, 1.9},
		BinSize: 1.0,
	})
	require.NoError(t, err)
	require.Equal(t, []float64{3, 3}, tr.Y())
	// bin centers, anchored at the first event
	require.InDelta(t, 0.6, tr.X()[0], 1e-12)
	require.InDelta(t, 1.6, tr.X()[1], 1e-12)
	require.InDelta(t, math.Sqrt(3), tr.YErr()[0], 1e-12)
}

func TestNew_TTERequiresBinSize(t *testing.T) {
	_, err := New(Spec{Mode: ModeTTE, TTEs: []float64{0.1}})
	require.Error(t, err)
}

func TestNew_LengthMismatch(t *testing.T) {
	_, err := New(Spec{
		Mode: ModeFlux,
		Time: []float64{1, 2, 3},
		Flux: []float64{5, 3},
	})
	require.Error(t, err)

	_, err = New(Spec{
		Mode:    ModeFlux,
		Time:    []float64{1, 2},
		Flux:    []float64{5, 3},
		FluxErr: []float64{0.5},
	})
	require.Error(t, err)
}

func TestNew_EmptySeries(t *testing.T) {
	_, err := New(Spec{Mode: ModeFlux})
	require.Error(t, err)

	_, err = New(Spec{Mode: ModeFlux, Time: []float64{1}})
	require.Error(t, err)
}

func TestParseDataMode(t *testing.T) {
	mode, err := ParseDataMode("Flux_Density")
	require.NoError(t, err)
	require.Equal(t, ModeFluxDensity, mode)

	_, err = ParseDataMode("wavelength")
	require.Error(t, err)
}

func TestAttributes(t *testing.T) {
	tr, err := New(Spec{
		Name:     "SN2011kl",
		Mode:     ModeFlux,
		Time:     []float64{1},
		Flux:     []float64{5},
		Redshift: 0.677,
	})
	require.NoError(t, err)

	attrs := tr.Attributes()
	require.Equal(t, "SN2011kl", attrs["name"])
	require.Equal(t, "flux", attrs["data_mode"])
	require.Equal(t, 0.677, attrs["redshift"])
	require.Equal(t, 1, attrs["n_points"])
}
