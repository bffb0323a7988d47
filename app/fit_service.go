// Package app wires fit requests to likelihood construction and the sampler.
package app

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"transientfit/adapters/likelihood"
	"transientfit/domain/model"
	"transientfit/domain/prior"
	"transientfit/domain/transient"
	"transientfit/internal"
	"transientfit/internal/errors"
	"transientfit/ports"
)

// PhotonIndexParam is the prior overridden by the photon-index-informed
// option on GRB afterglow fits.
const PhotonIndexParam = "alpha_1"

// Config carries the dispatcher's explicit configuration. There is no
// module-level prior directory; callers pass one in.
type Config struct {
	PriorDir string
	OutDir   string

	// Store, when set, receives a record of every completed run.
	Store ports.ResultStore
}

// FitRequest is a high-level request to fit one model to one transient.
type FitRequest struct {
	// Name identifies the event, e.g. "140903A" or "SN1998bw".
	Name string

	// SourceType selects the fitting route: GRB, SGRB, LGRB, SUPERNOVA,
	// KILONOVA, TDE, or PROMPT (case-insensitive).
	SourceType string

	Model     string
	Transient *transient.Transient

	// Priors overrides the prior-directory lookup when non-nil.
	Priors      prior.Dict
	ModelKwargs model.Kwargs

	// UsePhotonIndexPrior conditions the alpha_1 prior on the measured
	// photon index for GRB routes.
	UsePhotonIndexPrior bool

	// IntegratedRateFunction marks prompt models that already return
	// counts per bin rather than a per-unit-time rate.
	IntegratedRateFunction bool

	// UpperLimitKwargs with NonDetectionTimes switch the optical routes to
	// the censored evaluator.
	UpperLimitKwargs  model.Kwargs
	NonDetectionTimes []float64

	NLive      int
	Walks      int
	Resume     bool
	SaveFormat string
	Seed       int64

	// OutDir overrides the configured output root for this request.
	OutDir string
}

// FitService routes fit requests to the right evaluator variant and invokes
// the sampler.
type FitService struct {
	registry *model.Registry
	sampler  ports.Sampler
	cfg      Config
	log      *internal.Logger
}

// NewFitService creates the dispatcher.
func NewFitService(registry *model.Registry, smp ports.Sampler, cfg Config) *FitService {
	return &FitService{
		registry: registry,
		sampler:  smp,
		cfg:      cfg,
		log:      internal.DefaultLogger,
	}
}

// Fit validates the request, builds the matching likelihood evaluator, and
// runs the sampler. Setup problems are fatal and surface before sampling
// starts.
func (s *FitService) Fit(ctx context.Context, req FitRequest) (*ports.RunResult, error) {
	if req.Transient == nil {
		return nil, errors.ConfigInvalid("fit request has no transient data")
	}
	source := strings.ToUpper(strings.TrimSpace(req.SourceType))
	switch source {
	case "GRB", "SGRB", "LGRB":
		return s.fitGaussianRoute(ctx, req, "GRB", true)
	case "SUPERNOVA":
		return s.fitGaussianRoute(ctx, req, "supernova", false)
	case "KILONOVA":
		return s.fitGaussianRoute(ctx, req, "kilonova", false)
	case "TDE":
		return s.fitGaussianRoute(ctx, req, "tde", false)
	case "PROMPT":
		return s.fitPrompt(ctx, req)
	default:
		return nil, errors.ConfigInvalidf("source type %q not known", req.SourceType)
	}
}

// FitAll runs several independent fits concurrently. Each request owns its
// own evaluator, so fits never share mutable state.
func (s *FitService) FitAll(ctx context.Context, reqs []FitRequest) ([]*ports.RunResult, error) {
	results := make([]*ports.RunResult, len(reqs))
	g, gctx := errgroup.WithContext(ctx)
	for i, req := range reqs {
		i, req := i, req
		g.Go(func() error {
			result, err := s.Fit(gctx, req)
			if err != nil {
				return errors.Wrapf(err, "fitting %s with %s", req.Name, req.Model)
			}
			results[i] = result
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

func (s *FitService) fitGaussianRoute(ctx context.Context, req FitRequest, sourceLabel string, photonIndexEligible bool) (*ports.RunResult, error) {
	m, err := s.registry.Get(req.Model)
	if err != nil {
		return nil, err
	}
	priors, err := s.resolvePriors(req)
	if err != nil {
		return nil, err
	}

	usePhotonIndex := photonIndexEligible && req.UsePhotonIndexPrior
	if usePhotonIndex {
		priors = priors.Clone()
		priors[PhotonIndexParam] = s.photonIndexPrior(req.Transient)
	}

	like, err := s.buildGaussianEvaluator(req, m)
	if err != nil {
		return nil, err
	}
	if err := priors.Validate(like.FreeParameters()); err != nil {
		return nil, err
	}

	label := req.Transient.Mode.String()
	if usePhotonIndex {
		label += "_photon_index"
	}
	return s.run(ctx, req, like, priors, sourceLabel, label)
}

// buildGaussianEvaluator picks the evaluator variant for an optical route:
// censored quadrature when non-detections are declared, otherwise plain
// Gaussian over the reported errors (inferred sigma when none are reported).
func (s *FitService) buildGaussianEvaluator(req FitRequest, m model.Model) (ports.Likelihood, error) {
	t := req.Transient
	if len(req.NonDetectionTimes) > 0 || req.UpperLimitKwargs != nil {
		if t.YErr() == nil {
			return nil, errors.ConfigInvalid(
				"non-detection fits need per-point instrumental errors")
		}
		return likelihood.NewGaussianQuadratureNonDetections(
			t.X(), t.Y(), t.YErr(), req.NonDetectionTimes, m, req.ModelKwargs, req.UpperLimitKwargs)
	}
	var noise likelihood.NoiseModel
	if t.YErr() != nil {
		noise = likelihood.NewFixedNoiseSeries(t.YErr())
	} else {
		noise = likelihood.NewInferredNoise()
	}
	return likelihood.NewGaussian(t.X(), t.Y(), noise, m, req.ModelKwargs)
}

func (s *FitService) fitPrompt(ctx context.Context, req FitRequest) (*ports.RunResult, error) {
	m, err := s.registry.Get(req.Model)
	if err != nil {
		return nil, err
	}
	priors, err := s.resolvePriors(req)
	if err != nil {
		return nil, err
	}

	t := req.Transient
	var dt []float64
	if t.BinSize > 0 {
		dt = []float64{t.BinSize}
	}
	like, err := likelihood.NewPoisson(t.X(), t.Y(), m, req.IntegratedRateFunction, dt, req.ModelKwargs)
	if err != nil {
		return nil, err
	}
	if err := priors.Validate(like.FreeParameters()); err != nil {
		return nil, err
	}
	return s.run(ctx, req, like, priors, "GRB", t.Mode.String())
}

func (s *FitService) resolvePriors(req FitRequest) (prior.Dict, error) {
	if req.Priors != nil {
		return req.Priors, nil
	}
	if s.cfg.PriorDir == "" {
		return nil, errors.ConfigInvalidf(
			"no priors supplied for model %q and no prior directory configured", req.Model)
	}
	return prior.LoadForModel(s.cfg.PriorDir, req.Model)
}

// photonIndexPrior conditions alpha_1 on the measured photon index. A
// negative photon index carries no constraint and falls back to the default
// wide prior.
func (s *FitService) photonIndexPrior(t *transient.Transient) prior.Prior {
	if t.PhotonIndex < 0 {
		s.log.Info("photon index for %s is negative, using default prior on %s", t.Name, PhotonIndexParam)
		return prior.Uniform(-10, -0.5)
	}
	return prior.Normal(-(t.PhotonIndex + 1), 0.1)
}

func (s *FitService) run(ctx context.Context, req FitRequest, like ports.Likelihood, priors prior.Dict, sourceLabel, label string) (*ports.RunResult, error) {
	outRoot := req.OutDir
	if outRoot == "" {
		outRoot = s.cfg.OutDir
	}
	if outRoot == "" {
		outRoot = "."
	}
	outdir := filepath.Join(outRoot, fmt.Sprintf("%s%s", sourceLabel, req.Name), req.Model)
	if err := os.MkdirAll(outdir, 0o755); err != nil {
		return nil, errors.Wrapf(err, "creating output directory %s", outdir)
	}

	meta := map[string]interface{}{
		"model":          req.Model,
		"transient_type": strings.ToLower(req.SourceType),
	}
	for key, value := range req.Transient.Attributes() {
		meta[key] = value
	}
	if req.ModelKwargs != nil {
		meta["model_kwargs"] = map[string]interface{}(req.ModelKwargs)
	}

	s.log.Info("fitting %s with model %s (%s)", req.Name, req.Model, label)
	result, err := s.sampler.Run(ctx, like, priors, ports.RunConfig{
		Label:      label,
		OutDir:     outdir,
		NLive:      req.NLive,
		Walks:      req.Walks,
		Resume:     req.Resume,
		SaveFormat: req.SaveFormat,
		Seed:       req.Seed,
		MetaData:   meta,
	})
	if err != nil {
		return nil, err
	}

	if s.cfg.Store != nil {
		rec := &ports.RunRecord{
			ID:             result.ID,
			TransientName:  req.Name,
			TransientType:  strings.ToLower(req.SourceType),
			Model:          req.Model,
			Label:          label,
			OutDir:         outdir,
			LogEvidence:    result.LogEvidence,
			LogBayesFactor: result.LogBayesFactor,
			MetaData:       meta,
			CreatedAt:      time.Now().UTC(),
		}
		if err := s.cfg.Store.SaveRun(ctx, rec); err != nil {
			s.log.Warn("could not persist run record %s: %v", result.ID, err)
		}
	}
	return result, nil
}
