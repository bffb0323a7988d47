package sampler

import (
	"context"
	"math"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"transientfit/adapters/likelihood"
	"transientfit/domain/model"
	"transientfit/domain/params"
	"transientfit/domain/prior"
	"transientfit/ports"
)

func constantModel() model.Model {
	return model.Model{
		Name:   "constant",
		Params: []string{"mu"},
		Eval: func(x []float64, p params.Vector, _ model.Kwargs) ([]float64, error) {
			mu := p.GetOr("mu", 0)
			out := make([]float64, len(x))
			for i := range out {
				out[i] = mu
			}
			return out, nil
		},
	}
}

func newConstantFit(t *testing.T) ports.Likelihood {
	t.Helper()
	x := make([]float64, 50)
	y := make([]float64, 50)
	for i := range x {
		x[i] = float64(i)
		y[i] = 3.0 // noiseless constant signal at mu = 3
	}
	like, err := likelihood.NewGaussian(x, y, likelihood.NewFixedNoise(0.5), constantModel(), nil)
	require.NoError(t, err)
	return like
}

func TestMetropolis_RecoversConstantSignal(t *testing.T) {
	like := newConstantFit(t)
	priors := prior.Dict{"mu": prior.Uniform(-10, 10)}

	result, err := NewMetropolis().Run(context.Background(), like, priors, ports.RunConfig{
		NLive: 500,
		Walks: 200,
		Seed:  42,
	})
	require.NoError(t, err)

	summary, ok := result.Summaries["mu"]
	require.True(t, ok, "posterior summary for mu missing")
	require.InDelta(t, 3.0, summary.Median, 0.5)
	require.False(t, math.IsNaN(result.LogEvidence))
	require.Greater(t, result.LogBayesFactor, 0.0,
		"a strong signal must be favored over the noise-only baseline")
	require.Greater(t, result.AcceptedFraction, 0.0)
	require.NotEmpty(t, result.ID)
}

func TestMetropolis_DeterministicForFixedSeed(t *testing.T) {
	priors := prior.Dict{"mu": prior.Uniform(-10, 10)}
	cfg := ports.RunConfig{NLive: 200, Walks: 50, Seed: 7}

	first, err := NewMetropolis().Run(context.Background(), newConstantFit(t), priors, cfg)
	require.NoError(t, err)
	second, err := NewMetropolis().Run(context.Background(), newConstantFit(t), priors, cfg)
	require.NoError(t, err)

	require.Equal(t, first.LogEvidence, second.LogEvidence)
	require.Equal(t, first.Posterior["mu"], second.Posterior["mu"])
}

func TestMetropolis_MissingPriorFails(t *testing.T) {
	like := newConstantFit(t)
	_, err := NewMetropolis().Run(context.Background(), like, prior.Dict{}, ports.RunConfig{Seed: 1})
	require.Error(t, err)
	require.Contains(t, err.Error(), "mu")
}

func TestMetropolis_CancelledContext(t *testing.T) {
	like := newConstantFit(t)
	priors := prior.Dict{"mu": prior.Uniform(-10, 10)}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewMetropolis().Run(ctx, like, priors, ports.RunConfig{NLive: 10000, Seed: 1})
	require.Error(t, err)
}

func TestMetropolis_SavesAndResumes(t *testing.T) {
	priors := prior.Dict{"mu": prior.Uniform(-10, 10)}
	outdir := t.TempDir()
	cfg := ports.RunConfig{NLive: 200, Walks: 50, Seed: 9, OutDir: outdir, Label: "flux", SaveFormat: "json"}

	first, err := NewMetropolis().Run(context.Background(), newConstantFit(t), priors, cfg)
	require.NoError(t, err)
	require.FileExists(t, filepath.Join(outdir, "flux_result.json"))

	cfg.Resume = true
	second, err := NewMetropolis().Run(context.Background(), newConstantFit(t), priors, cfg)
	require.NoError(t, err)
	require.True(t, second.ResumedFromOutput)
	require.Equal(t, first.LogEvidence, second.LogEvidence)
}

func TestLogSumExp(t *testing.T) {
	values := []float64{math.Log(1), math.Log(2), math.Log(3)}
	require.InDelta(t, math.Log(6), logSumExp(values), 1e-12)
	require.True(t, math.IsInf(logSumExp([]float64{math.Inf(-1)}), -1))
}
