package app

import (
	"context"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"transientfit/adapters/likelihood"
	"transientfit/domain/core"
	"transientfit/domain/model"
	"transientfit/domain/prior"
	"transientfit/domain/transient"
	"transientfit/internal/errors"
	"transientfit/internal/testkit"
	"transientfit/ports"
)

// recordingSampler captures the inputs handed to it and never samples.
// FitAll invokes samplers from concurrent goroutines, so calls is guarded.
type recordingSampler struct {
	mu    sync.Mutex
	calls []recordedCall
}

type recordedCall struct {
	like   ports.Likelihood
	priors prior.Dict
	cfg    ports.RunConfig
}

func (r *recordingSampler) Run(_ context.Context, like ports.Likelihood, priors prior.Dict, cfg ports.RunConfig) (*ports.RunResult, error) {
	r.mu.Lock()
	r.calls = append(r.calls, recordedCall{like: like, priors: priors, cfg: cfg})
	r.mu.Unlock()
	return &ports.RunResult{
		ID:       core.NewFitID(),
		Label:    cfg.Label,
		OutDir:   cfg.OutDir,
		MetaData: cfg.MetaData,
	}, nil
}

func fluxTransient(t *testing.T) *transient.Transient {
	t.Helper()
	spec := testkit.SyntheticPowerLaw(30, 5.0, -1.2, 0.3, 50, 11)
	spec.Name = "140903A"
	spec.PhotonIndex = 1.9
	tr, err := transient.New(*spec)
	require.NoError(t, err)
	return tr
}

func countsTransient(t *testing.T) *transient.Transient {
	t.Helper()
	spec := testkit.SyntheticCounts(40, 4.0, 0.5, 12)
	spec.Name = "GRB910505"
	tr, err := transient.New(*spec)
	require.NoError(t, err)
	return tr
}

func powerlawPriors() prior.Dict {
	return prior.Dict{
		"a":       prior.LogUniform(1e-3, 1e3),
		"alpha_1": prior.Uniform(-5, 0),
	}
}

func newService(t *testing.T, smp ports.Sampler, store ports.ResultStore) *FitService {
	t.Helper()
	return NewFitService(model.DefaultRegistry(), smp, Config{
		OutDir: t.TempDir(),
		Store:  store,
	})
}

func TestFit_UnknownSourceType(t *testing.T) {
	rec := &recordingSampler{}
	svc := newService(t, rec, nil)

	_, err := svc.Fit(context.Background(), FitRequest{
		Name:       "X",
		SourceType: "alien",
		Model:      "powerlaw",
		Transient:  fluxTransient(t),
		Priors:     powerlawPriors(),
	})
	require.Error(t, err)
	require.Equal(t, errors.CodeConfigInvalid, errors.GetCode(err))
	require.Contains(t, err.Error(), "alien")
	require.Empty(t, rec.calls, "sampler must not run for an unknown source type")
}

func TestFit_GRBRouteBuildsGaussianEvaluator(t *testing.T) {
	rec := &recordingSampler{}
	store := testkit.NewInMemoryResultStore()
	svc := newService(t, rec, store)

	result, err := svc.Fit(context.Background(), FitRequest{
		Name:       "140903A",
		SourceType: "GRB",
		Model:      "powerlaw",
		Transient:  fluxTransient(t),
		Priors:     powerlawPriors(),
		NLive:      100,
	})
	require.NoError(t, err)
	require.Len(t, rec.calls, 1)

	call := rec.calls[0]
	_, ok := call.like.(*likelihood.Gaussian)
	require.True(t, ok, "GRB route must build a Gaussian evaluator, got %T", call.like)
	require.Equal(t, "flux", call.cfg.Label)
	require.Contains(t, call.cfg.OutDir, filepath.Join("GRB140903A", "powerlaw"))
	require.Equal(t, "powerlaw", call.cfg.MetaData["model"])
	require.Equal(t, "grb", call.cfg.MetaData["transient_type"])

	require.Equal(t, 1, store.Len())
	rec2, err := store.GetRun(context.Background(), result.ID)
	require.NoError(t, err)
	require.Equal(t, "140903A", rec2.TransientName)
}

func TestFit_PromptRouteBuildsPoissonEvaluator(t *testing.T) {
	rec := &recordingSampler{}
	svc := newService(t, rec, nil)

	priors := powerlawPriors()
	priors[likelihood.BackgroundRateName] = prior.LogUniform(1e-3, 100)

	_, err := svc.Fit(context.Background(), FitRequest{
		Name:       "910505",
		SourceType: "prompt",
		Model:      "powerlaw",
		Transient:  countsTransient(t),
		Priors:     priors,
	})
	require.NoError(t, err)
	require.Len(t, rec.calls, 1)

	_, ok := rec.calls[0].like.(*likelihood.Poisson)
	require.True(t, ok, "prompt route must build a Poisson evaluator, got %T", rec.calls[0].like)
	require.Contains(t, rec.calls[0].cfg.OutDir, "GRB910505")
}

func TestFit_PhotonIndexPriorOverride(t *testing.T) {
	rec := &recordingSampler{}
	svc := newService(t, rec, nil)

	tr := fluxTransient(t) // photon index 1.9
	_, err := svc.Fit(context.Background(), FitRequest{
		Name:                "140903A",
		SourceType:          "GRB",
		Model:               "powerlaw",
		Transient:           tr,
		Priors:              powerlawPriors(),
		UsePhotonIndexPrior: true,
	})
	require.NoError(t, err)
	require.Len(t, rec.calls, 1)

	call := rec.calls[0]
	require.True(t, strings.HasSuffix(call.cfg.Label, "_photon_index"))

	override := call.priors[PhotonIndexParam]
	require.Equal(t, prior.KindNormal, override.Kind)
	require.InDelta(t, -(1.9 + 1), override.Mu, 1e-12)
	require.InDelta(t, 0.1, override.Sigma, 1e-12)
}

func TestFit_NegativePhotonIndexFallsBackToUniform(t *testing.T) {
	rec := &recordingSampler{}
	svc := newService(t, rec, nil)

	spec := testkit.SyntheticPowerLaw(10, 5, -1, 0.3, 20, 3)
	spec.Name = "050509B"
	spec.PhotonIndex = -0.4
	tr, err := transient.New(*spec)
	require.NoError(t, err)

	_, err = svc.Fit(context.Background(), FitRequest{
		Name:                "050509B",
		SourceType:          "SGRB",
		Model:               "powerlaw",
		Transient:           tr,
		Priors:              powerlawPriors(),
		UsePhotonIndexPrior: true,
	})
	require.NoError(t, err)

	override := rec.calls[0].priors[PhotonIndexParam]
	require.Equal(t, prior.KindUniform, override.Kind)
	require.Equal(t, -10.0, override.Minimum)
	require.Equal(t, -0.5, override.Maximum)
}

func TestFit_NonDetectionsSelectCensoredEvaluator(t *testing.T) {
	rec := &recordingSampler{}
	svc := newService(t, rec, nil)

	_, err := svc.Fit(context.Background(), FitRequest{
		Name:              "AT2018cow",
		SourceType:        "TDE",
		Model:             "exponential_decay",
		Transient:         fluxTransient(t),
		NonDetectionTimes: []float64{0.5, 60},
		UpperLimitKwargs:  model.Kwargs{"flux": 1e-2},
		Priors: prior.Dict{
			"a":   prior.LogUniform(1e-3, 1e3),
			"tau": prior.LogUniform(0.1, 100),
			likelihood.SigmaName: prior.LogUniform(1e-4, 10),
		},
	})
	require.NoError(t, err)
	require.Len(t, rec.calls, 1)

	_, ok := rec.calls[0].like.(*likelihood.GaussianQuadratureNonDetections)
	require.True(t, ok, "non-detection request must build the censored evaluator, got %T", rec.calls[0].like)
	require.Contains(t, rec.calls[0].cfg.OutDir, "tdeAT2018cow")
}

func TestFit_MissingPriorIsFatal(t *testing.T) {
	rec := &recordingSampler{}
	svc := newService(t, rec, nil)

	_, err := svc.Fit(context.Background(), FitRequest{
		Name:       "SN1998bw",
		SourceType: "SUPERNOVA",
		Model:      "powerlaw",
		Transient:  fluxTransient(t),
		Priors:     prior.Dict{"a": prior.LogUniform(1e-3, 1e3)}, // alpha_1 missing
	})
	require.Error(t, err)
	require.Equal(t, errors.CodeConfigInvalid, errors.GetCode(err))
	require.Contains(t, err.Error(), "alpha_1")
	require.Empty(t, rec.calls)
}

func TestFit_UnregisteredModelIsFatal(t *testing.T) {
	rec := &recordingSampler{}
	svc := newService(t, rec, nil)

	_, err := svc.Fit(context.Background(), FitRequest{
		Name:       "X",
		SourceType: "GRB",
		Model:      "no_such_model",
		Transient:  fluxTransient(t),
		Priors:     powerlawPriors(),
	})
	require.Error(t, err)
	require.Contains(t, err.Error(), "no_such_model")
	require.Empty(t, rec.calls)
}

func TestFitAll_RunsEveryRequest(t *testing.T) {
	rec := &recordingSampler{}
	svc := newService(t, rec, nil)

	reqs := []FitRequest{
		{Name: "A", SourceType: "GRB", Model: "powerlaw", Transient: fluxTransient(t), Priors: powerlawPriors()},
		{Name: "B", SourceType: "KILONOVA", Model: "powerlaw", Transient: fluxTransient(t), Priors: powerlawPriors()},
	}
	results, err := svc.FitAll(context.Background(), reqs)
	require.NoError(t, err)
	require.Len(t, results, 2)
	require.Len(t, rec.calls, 2)
	for _, result := range results {
		require.NotNil(t, result)
	}
}
