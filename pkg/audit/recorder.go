// pkg/audit/recorder.go
package audit

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"go.uber.org/zap"

	"github.com/David-Botos/data-cleanse/pkg/pipeline"
)

// Recorder persists job audit trails to Postgres. It is an optional
// collaborator: the pipeline runs identically without one, and recording
// failures never affect job outcomes.
type Recorder struct {
	db     *sqlx.DB
	logger *zap.Logger
}

// NewRecorder opens the audit database and ensures the tracking table
// exists
func NewRecorder(dsn string, logger *zap.Logger) (*Recorder, error) {
	if dsn == "" {
		return nil, errors.New("audit database DSN cannot be empty")
	}
	if logger == nil {
		return nil, errors.New("logger cannot be nil")
	}

	db, err := sqlx.Connect("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to audit database: %w", err)
	}

	r := &Recorder{db: db, logger: logger}
	if err := r.setupReportTable(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to setup report table: %w", err)
	}
	return r, nil
}

// Close releases the database connection
func (r *Recorder) Close() error {
	return r.db.Close()
}

// setupReportTable ensures the stage_reports tracking table exists
func (r *Recorder) setupReportTable() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	createTableSQL := `
		CREATE TABLE IF NOT EXISTS public.stage_reports (
			id SERIAL PRIMARY KEY,
			job_id TEXT NOT NULL,
			job_state TEXT NOT NULL,
			stage TEXT NOT NULL,
			stage_status TEXT NOT NULL,
			message TEXT NOT NULL,
			changes TEXT[],
			started_at TIMESTAMP WITH TIME ZONE NOT NULL,
			duration_ms BIGINT NOT NULL,
			recorded_at TIMESTAMP WITH TIME ZONE DEFAULT CURRENT_TIMESTAMP
		)
	`
	if _, err := r.db.ExecContext(ctx, createTableSQL); err != nil {
		return fmt.Errorf("failed to create tracking table: %w", err)
	}

	r.logger.Info("Ensured stage_reports table exists")
	return nil
}

// RecordJob batch inserts a job's stage reports inside one transaction
func (r *Recorder) RecordJob(ctx context.Context, snapshot pipeline.Snapshot) error {
	if len(snapshot.Reports) == 0 {
		return nil
	}

	insertCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	tx, err := r.db.BeginTxx(insertCtx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(); rbErr != nil {
				r.logger.Error("Failed to rollback transaction",
					zap.Error(rbErr),
					zap.Error(err))
			}
		}
	}()

	stmt, err := tx.PreparexContext(insertCtx, `
		INSERT INTO public.stage_reports
		(job_id, job_state, stage, stage_status, message, changes, started_at, duration_ms)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer stmt.Close()

	for _, report := range snapshot.Reports {
		_, err = stmt.ExecContext(insertCtx,
			snapshot.ID,
			string(snapshot.State),
			report.Stage,
			string(report.Status),
			report.Message,
			toTextArray(report.Changes),
			report.StartedAt,
			report.Duration.Milliseconds(),
		)
		if err != nil {
			return fmt.Errorf("failed to insert stage report: %w", err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	r.logger.Info("Recorded job audit trail",
		zap.String("jobID", snapshot.ID),
		zap.Int("reports", len(snapshot.Reports)))
	return nil
}
