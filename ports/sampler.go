package ports

import (
	"context"
	"time"

	"transientfit/domain/core"
	"transientfit/domain/prior"
)

// RunConfig carries the sampler settings assembled by the fit dispatcher.
type RunConfig struct {
	Label      string
	OutDir     string
	NLive      int
	Walks      int
	Resume     bool
	SaveFormat string
	Seed       int64
	MetaData   map[string]interface{}
}

// ParamSummary summarizes one marginal posterior.
type ParamSummary struct {
	Median  float64 `json:"median"`
	Mean    float64 `json:"mean"`
	Lower95 float64 `json:"lower_95"`
	Upper95 float64 `json:"upper_95"`
}

// RunResult is the posterior-sample result returned by a sampler.
type RunResult struct {
	ID                core.FitID              `json:"id"`
	Label             string                  `json:"label"`
	OutDir            string                  `json:"outdir"`
	Posterior         map[string][]float64    `json:"posterior"`
	Summaries         map[string]ParamSummary `json:"summaries"`
	LogEvidence       float64                 `json:"log_evidence"`
	NoiseLogEvidence  float64                 `json:"noise_log_evidence"`
	LogBayesFactor    float64                 `json:"log_bayes_factor"`
	MaxLogLikelihood  float64                 `json:"max_log_likelihood"`
	AcceptedFraction  float64                 `json:"accepted_fraction"`
	MetaData          map[string]interface{}  `json:"meta_data"`
	SampledAt         time.Time               `json:"sampled_at"`
	ResumedFromOutput bool                    `json:"resumed_from_output,omitempty"`
}

// Sampler explores the posterior of a likelihood under the given priors.
// Implementations own the exploration loop; the likelihood core makes no
// cancellation guarantees of its own, so samplers check ctx between
// evaluations.
type Sampler interface {
	Run(ctx context.Context, like Likelihood, priors prior.Dict, cfg RunConfig) (*RunResult, error)
}
