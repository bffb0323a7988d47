package postgres

import (
	"context"
	"database/sql"
	"encoding/json"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"

	"transientfit/domain/core"
	"transientfit/internal/errors"
	"transientfit/ports"
)

// RunRepositoryImpl implements ResultStore for PostgreSQL
type RunRepositoryImpl struct {
	db *sqlx.DB
}

// NewRunRepository creates a new PostgreSQL run repository
func NewRunRepository(db *sqlx.DB) ports.ResultStore {
	return &RunRepositoryImpl{db: db}
}

// Connect opens a PostgreSQL pool and verifies it with a ping
func Connect(ctx context.Context, url string) (*sqlx.DB, error) {
	db, err := sqlx.Open("postgres", url)
	if err != nil {
		return nil, errors.Wrap(err, "opening postgres connection")
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, errors.Wrap(err, "pinging postgres")
	}
	return db, nil
}

// Migrate creates the fit_runs table when it does not exist
func Migrate(ctx context.Context, db *sqlx.DB) error {
	_, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS fit_runs (
			id               TEXT PRIMARY KEY,
			transient_name   TEXT NOT NULL,
			transient_type   TEXT NOT NULL,
			model            TEXT NOT NULL,
			label            TEXT NOT NULL,
			outdir           TEXT NOT NULL,
			log_evidence     DOUBLE PRECISION NOT NULL,
			log_bayes_factor DOUBLE PRECISION NOT NULL,
			meta_data        JSONB,
			created_at       TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`)
	if err != nil {
		return errors.Wrap(err, "creating fit_runs table")
	}
	_, err = db.ExecContext(ctx, `
		CREATE INDEX IF NOT EXISTS idx_fit_runs_transient
		ON fit_runs (transient_name, model)`)
	if err != nil {
		return errors.Wrap(err, "creating fit_runs index")
	}
	return nil
}

// SaveRun upserts one run record
func (r *RunRepositoryImpl) SaveRun(ctx context.Context, rec *ports.RunRecord) error {
	metaJSON, err := json.Marshal(rec.MetaData)
	if err != nil {
		return errors.Wrap(err, "encoding run metadata")
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO fit_runs (
			id, transient_name, transient_type, model, label, outdir,
			log_evidence, log_bayes_factor, meta_data, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (id) DO UPDATE SET
			log_evidence = EXCLUDED.log_evidence,
			log_bayes_factor = EXCLUDED.log_bayes_factor,
			meta_data = EXCLUDED.meta_data`,
		rec.ID, rec.TransientName, rec.TransientType, rec.Model, rec.Label,
		rec.OutDir, rec.LogEvidence, rec.LogBayesFactor, metaJSON, rec.CreatedAt)
	if err != nil {
		return errors.Wrap(err, "saving run record")
	}
	return nil
}

// GetRun retrieves one run record by ID
func (r *RunRepositoryImpl) GetRun(ctx context.Context, id core.FitID) (*ports.RunRecord, error) {
	var rec ports.RunRecord
	var metaJSON []byte

	err := r.db.QueryRowContext(ctx, `
		SELECT id, transient_name, transient_type, model, label, outdir,
			   log_evidence, log_bayes_factor, meta_data, created_at
		FROM fit_runs
		WHERE id = $1`, id).Scan(
		&rec.ID, &rec.TransientName, &rec.TransientType, &rec.Model, &rec.Label,
		&rec.OutDir, &rec.LogEvidence, &rec.LogBayesFactor, &metaJSON, &rec.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, errors.NotFound("run record")
	}
	if err != nil {
		return nil, errors.Wrap(err, "loading run record")
	}

	if len(metaJSON) > 0 {
		if err := json.Unmarshal(metaJSON, &rec.MetaData); err != nil {
			return nil, errors.Wrap(err, "decoding run metadata")
		}
	}
	return &rec, nil
}

// ListRuns returns the most recent run records, newest first
func (r *RunRepositoryImpl) ListRuns(ctx context.Context, limit int) ([]*ports.RunRecord, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, transient_name, transient_type, model, label, outdir,
			   log_evidence, log_bayes_factor, meta_data, created_at
		FROM fit_runs
		ORDER BY created_at DESC
		LIMIT $1`, limit)
	if err != nil {
		return nil, errors.Wrap(err, "listing run records")
	}
	defer rows.Close()

	var out []*ports.RunRecord
	for rows.Next() {
		var rec ports.RunRecord
		var metaJSON []byte
		if err := rows.Scan(
			&rec.ID, &rec.TransientName, &rec.TransientType, &rec.Model, &rec.Label,
			&rec.OutDir, &rec.LogEvidence, &rec.LogBayesFactor, &metaJSON, &rec.CreatedAt); err != nil {
			return nil, errors.Wrap(err, "scanning run record")
		}
		if len(metaJSON) > 0 {
			if err := json.Unmarshal(metaJSON, &rec.MetaData); err != nil {
				return nil, errors.Wrap(err, "decoding run metadata")
			}
		}
		out = append(out, &rec)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "iterating run records")
	}
	return out, nil
}
