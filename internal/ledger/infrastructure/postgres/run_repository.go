package postgres

import (
	"context"
	"crypto/sha256"
	"database/sql"
	_ "embed"
	"encoding/hex"
	"encoding/json"
	"errors"
	"time"

	"osi-dues/internal/events"
	"osi-dues/internal/ledger/application"
)

//go:embed schema.sql
var schema string

// RunSummary is a stored run header.
type RunSummary struct {
	ID              string
	LedgerPath      string
	ExtractPath     string
	StartedAt       time.Time
	FinishedAt      time.Time
	RowsRead        int
	RowsRejected    int
	Payments        int
	AllocatedCount  int
	RecordedCount   int
	SkippedCount    int
	AllocatedAmount int64
	ExtractTotal    sql.NullInt64
	RecordedTotal   sql.NullInt64
	Outcome         string
	Aborted         bool
	AbortReason     string
	Digest          string
}

// RunRepository keeps the history of reconciliation runs.
type RunRepository struct {
	db *sql.DB
}

// NewRunRepository constructs a repository.
func NewRunRepository(db *sql.DB) *RunRepository {
	return &RunRepository{db: db}
}

// EnsureSchema creates the run tables when missing.
func (r *RunRepository) EnsureSchema(ctx context.Context) error {
	if r == nil || r.db == nil {
		return errors.New("run repo: nil db")
	}
	_, err := r.db.ExecContext(ctx, schema)
	return err
}

// SaveRun stores the run header, its allocations and its events in one transaction.
func (r *RunRepository) SaveRun(ctx context.Context, report *application.Report, ledgerPath, extractPath string) error {
	if r == nil || r.db == nil {
		return errors.New("run repo: nil db")
	}
	if report == nil {
		return errors.New("run repo: nil report")
	}
	allocations, err := json.Marshal(report.Allocations)
	if err != nil {
		return err
	}
	sum := sha256.Sum256(allocations)

	var extractTotal, recordedTotal sql.NullInt64
	outcome := ""
	if rec := report.Reconciliation; rec != nil {
		extractTotal = sql.NullInt64{Int64: int64(rec.ExtractTotal), Valid: true}
		recordedTotal = sql.NullInt64{Int64: int64(rec.Recorded), Valid: true}
		outcome = string(rec.Outcome)
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	_, err = tx.ExecContext(ctx, `
INSERT INTO ledger_runs (
	id, ledger_path, extract_path, started_at, finished_at,
	rows_read, rows_rejected, payments, allocated_count, recorded_count, skipped_count,
	allocated_amount, extract_total, recorded_total, outcome, aborted, abort_reason,
	allocations, allocations_digest
) VALUES (
	$1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19
)`, report.RunID, ledgerPath, extractPath, report.StartedAt.UTC(), report.FinishedAt.UTC(),
		report.RowsRead, report.RowsRejected, report.Payments,
		report.Count(application.StatusAllocated), report.Count(application.StatusAlreadyRecorded), report.Count(application.StatusSkipped),
		int64(report.Allocated()), extractTotal, recordedTotal, outcome, report.Aborted, report.AbortReason,
		allocations, hex.EncodeToString(sum[:]))
	if err != nil {
		_ = tx.Rollback()
		return err
	}

	for i, e := range report.Events {
		_, err = tx.ExecContext(ctx, `
INSERT INTO ledger_run_events (run_id, seq, level, code, message, row_index, col_index, raw, parsed)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)`,
			report.RunID, i+1, string(e.Level), string(e.Code), e.Message, e.Row, e.Column, e.Raw, e.Parsed)
		if err != nil {
			_ = tx.Rollback()
			return err
		}
	}
	return tx.Commit()
}

// LatestRuns returns the most recent runs, newest first.
func (r *RunRepository) LatestRuns(ctx context.Context, limit int) ([]RunSummary, error) {
	if r == nil || r.db == nil {
		return nil, errors.New("run repo: nil db")
	}
	if limit <= 0 {
		limit = 20
	}
	rows, err := r.db.QueryContext(ctx, `
SELECT id, ledger_path, extract_path, started_at, finished_at,
	rows_read, rows_rejected, payments, allocated_count, recorded_count, skipped_count,
	allocated_amount, extract_total, recorded_total, outcome, aborted, abort_reason, allocations_digest
FROM ledger_runs
ORDER BY started_at DESC
LIMIT $1`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []RunSummary
	for rows.Next() {
		var s RunSummary
		if err := rows.Scan(
			&s.ID, &s.LedgerPath, &s.ExtractPath, &s.StartedAt, &s.FinishedAt,
			&s.RowsRead, &s.RowsRejected, &s.Payments, &s.AllocatedCount, &s.RecordedCount, &s.SkippedCount,
			&s.AllocatedAmount, &s.ExtractTotal, &s.RecordedTotal, &s.Outcome, &s.Aborted, &s.AbortReason, &s.Digest,
		); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// ListEvents returns the events of a run in emission order.
func (r *RunRepository) ListEvents(ctx context.Context, runID string) ([]events.Event, error) {
	if r == nil || r.db == nil {
		return nil, errors.New("run repo: nil db")
	}
	rows, err := r.db.QueryContext(ctx, `
SELECT level, code, message, row_index, col_index, raw, parsed
FROM ledger_run_events
WHERE run_id = $1
ORDER BY seq`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []events.Event
	for rows.Next() {
		var e events.Event
		var level, code string
		if err := rows.Scan(&level, &code, &e.Message, &e.Row, &e.Column, &e.Raw, &e.Parsed); err != nil {
			return nil, err
		}
		e.Level = events.Level(level)
		e.Code = events.Code(code)
		out = append(out, e)
	}
	return out, rows.Err()
}
