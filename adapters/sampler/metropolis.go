// Package sampler provides the built-in posterior sampler. It is a plain
// Metropolis random walk over the prior-supported region, adequate for the
// analytic light-curve models shipped here; heavier fits can plug any engine
// satisfying ports.Sampler.
package sampler

import (
	"context"
	"math"
	"math/rand"
	"time"

	"github.com/montanaflynn/stats"

	"transientfit/domain/core"
	"transientfit/domain/prior"
	"transientfit/internal"
	"transientfit/internal/errors"
	"transientfit/ports"
)

const (
	defaultNLive = 1000
	defaultWalks = 200

	// proposal step as a fraction of each prior's characteristic width
	stepFraction = 0.1

	ctxCheckInterval = 128
)

// Metropolis is a random-walk Markov chain sampler.
type Metropolis struct {
	log *internal.Logger
}

// NewMetropolis creates the sampler with the default logger.
func NewMetropolis() *Metropolis {
	return &Metropolis{log: internal.DefaultLogger}
}

// Run explores the posterior of like under priors. The evaluator's live
// parameter vector is mutated between evaluations; the caller must not share
// one evaluator across concurrent Run calls.
func (s *Metropolis) Run(ctx context.Context, like ports.Likelihood, priors prior.Dict, cfg ports.RunConfig) (*ports.RunResult, error) {
	free := like.FreeParameters()
	if len(free) == 0 {
		return nil, errors.ConfigInvalid("likelihood declares no free parameters")
	}
	if err := priors.Validate(free); err != nil {
		return nil, err
	}
	if cfg.NLive <= 0 {
		cfg.NLive = defaultNLive
	}
	if cfg.Walks <= 0 {
		cfg.Walks = defaultWalks
	}
	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	rng := rand.New(rand.NewSource(seed))

	if cfg.Resume && cfg.OutDir != "" {
		if prev, err := loadResult(resultPath(cfg.OutDir, cfg.Label)); err == nil {
			s.log.Info("resuming %s from saved result", cfg.Label)
			prev.ResumedFromOutput = true
			return prev, nil
		}
	}

	vector := like.Parameters()

	// Prior Monte Carlo pass: seeds the walk at the best draw and yields a
	// simple importance estimate of the evidence.
	current := make(map[string]float64, len(free))
	best := make(map[string]float64, len(free))
	bestLogL := math.Inf(-1)
	draws := make([]float64, 0, cfg.NLive)
	for i := 0; i < cfg.NLive; i++ {
		if err := checkCtx(ctx, i); err != nil {
			return nil, err
		}
		for _, name := range free {
			vector.Set(name, priors[name].Sample(rng))
		}
		logL := like.LogLikelihood()
		draws = append(draws, logL)
		if logL > bestLogL {
			bestLogL = logL
			for _, name := range free {
				best[name] = vector[name]
			}
		}
	}
	if math.IsInf(bestLogL, -1) {
		return nil, errors.SamplerError(
			"no finite-likelihood point found among prior draws; check priors and data", nil)
	}
	logEvidence := logSumExp(draws) - math.Log(float64(len(draws)))

	for name, value := range best {
		current[name] = value
	}
	setVector(vector, current)
	currentLogPost := bestLogL + priors.LogProb(current)

	// Burn-in then sample: one posterior sample per post-burn step.
	posterior := make(map[string][]float64, len(free))
	for _, name := range free {
		posterior[name] = make([]float64, 0, cfg.NLive)
	}
	proposal := make(map[string]float64, len(free))
	accepted := 0
	total := cfg.Walks + cfg.NLive
	maxLogL := bestLogL

	for step := 0; step < total; step++ {
		if err := checkCtx(ctx, step); err != nil {
			return nil, err
		}
		for _, name := range free {
			width := priors[name].Width()
			proposal[name] = current[name] + stepFraction*width*rng.NormFloat64()
		}
		setVector(vector, proposal)
		logL := like.LogLikelihood()
		logPost := logL + priors.LogProb(proposal)

		if logPost-currentLogPost >= math.Log(rng.Float64()+1e-300) {
			for name, value := range proposal {
				current[name] = value
			}
			currentLogPost = logPost
			accepted++
			if logL > maxLogL {
				maxLogL = logL
			}
		}
		if step >= cfg.Walks {
			for _, name := range free {
				posterior[name] = append(posterior[name], current[name])
			}
		}
	}

	noiseLogL := like.NoiseLogLikelihood()
	summaries, err := summarize(posterior)
	if err != nil {
		return nil, errors.SamplerError("summarizing posterior", err)
	}

	result := &ports.RunResult{
		ID:               core.NewFitID(),
		Label:            cfg.Label,
		OutDir:           cfg.OutDir,
		Posterior:        posterior,
		Summaries:        summaries,
		LogEvidence:      logEvidence,
		NoiseLogEvidence: noiseLogL,
		LogBayesFactor:   logEvidence - noiseLogL,
		MaxLogLikelihood: maxLogL,
		AcceptedFraction: float64(accepted) / float64(total),
		MetaData:         cfg.MetaData,
		SampledAt:        time.Now().UTC(),
	}

	if cfg.OutDir != "" && (cfg.SaveFormat == "" || cfg.SaveFormat == "json") {
		if err := saveResult(resultPath(cfg.OutDir, cfg.Label), result); err != nil {
			s.log.Warn("could not save result for %s: %v", cfg.Label, err)
		}
	}
	return result, nil
}

func checkCtx(ctx context.Context, step int) error {
	if step%ctxCheckInterval != 0 {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return errors.SamplerError("sampling interrupted", err)
	}
	return nil
}

func setVector(vector map[string]float64, point map[string]float64) {
	for name, value := range point {
		vector[name] = value
	}
}

func logSumExp(values []float64) float64 {
	max := math.Inf(-1)
	for _, v := range values {
		if v > max {
			max = v
		}
	}
	if math.IsInf(max, -1) {
		return max
	}
	sum := 0.0
	for _, v := range values {
		sum += math.Exp(v - max)
	}
	return max + math.Log(sum)
}

func summarize(posterior map[string][]float64) (map[string]ports.ParamSummary, error) {
	out := make(map[string]ports.ParamSummary, len(posterior))
	for name, samples := range posterior {
		median, err := stats.Median(samples)
		if err != nil {
			return nil, err
		}
		mean, err := stats.Mean(samples)
		if err != nil {
			return nil, err
		}
		lower, err := stats.Percentile(samples, 2.5)
		if err != nil {
			return nil, err
		}
		upper, err := stats.Percentile(samples, 97.5)
		if err != nil {
			return nil, err
		}
		out[name] = ports.ParamSummary{Median: median, Mean: mean, Lower95: lower, Upper95: upper}
	}
	return out, nil
}
