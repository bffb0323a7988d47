package ports

import (
	"context"
	"time"

	"transientfit/domain/core"
)

// RunRecord is the persisted summary of one fit run.
type RunRecord struct {
	ID             core.FitID             `db:"id" json:"id"`
	TransientName  string                 `db:"transient_name" json:"transient_name"`
	TransientType  string                 `db:"transient_type" json:"transient_type"`
	Model          string                 `db:"model" json:"model"`
	Label          string                 `db:"label" json:"label"`
	OutDir         string                 `db:"outdir" json:"outdir"`
	LogEvidence    float64                `db:"log_evidence" json:"log_evidence"`
	LogBayesFactor float64                `db:"log_bayes_factor" json:"log_bayes_factor"`
	MetaData       map[string]interface{} `db:"-" json:"meta_data"`
	CreatedAt      time.Time              `db:"created_at" json:"created_at"`
}

// ResultStore persists fit run records.
type ResultStore interface {
	SaveRun(ctx context.Context, rec *RunRecord) error
	GetRun(ctx context.Context, id core.FitID) (*RunRecord, error)
	ListRuns(ctx context.Context, limit int) ([]*RunRecord, error)
}
