package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/kurihiro0119/community-console/internal/domain"
	apperrors "github.com/kurihiro0119/community-console/internal/errors"
	"github.com/kurihiro0119/community-console/internal/storage"
)

// sqliteStorage implements the Storage interface for SQLite
type sqliteStorage struct {
	db *sql.DB
}

// NewSQLiteStorage creates a new SQLite storage instance
func NewSQLiteStorage(dbPath string) (storage.Storage, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=on")
	if err != nil {
		return nil, err
	}

	s := &sqliteStorage{db: db}
	if err := s.Migrate(context.Background()); err != nil {
		db.Close()
		return nil, err
	}

	return s, nil
}

// Migrate runs database migrations
func (s *sqliteStorage) Migrate(ctx context.Context) error {
	schema := `
	CREATE TABLE IF NOT EXISTS batch_runs (
		id TEXT PRIMARY KEY,
		kind TEXT NOT NULL,
		is_running INTEGER NOT NULL DEFAULT 0,
		created_at TIMESTAMP NOT NULL,
		updated_at TIMESTAMP NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_batch_runs_created_at ON batch_runs(created_at);

	CREATE TABLE IF NOT EXISTS batch_targets (
		run_id TEXT NOT NULL,
		position INTEGER NOT NULL,
		target_id INTEGER NOT NULL,
		display_name TEXT NOT NULL,
		total_members INTEGER NOT NULL DEFAULT 0,
		status TEXT NOT NULL DEFAULT 'waiting',
		message TEXT NOT NULL DEFAULT '',
		started_at TIMESTAMP,
		completed_at TIMESTAMP,
		updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
		PRIMARY KEY (run_id, target_id),
		FOREIGN KEY (run_id) REFERENCES batch_runs(id) ON DELETE CASCADE
	);

	CREATE INDEX IF NOT EXISTS idx_batch_targets_run_position ON batch_targets(run_id, position);
	CREATE INDEX IF NOT EXISTS idx_batch_targets_status ON batch_targets(status);
	`

	_, err := s.db.ExecContext(ctx, schema)
	return err
}

// SaveBatchRun saves or updates a run together with its targets
func (s *sqliteStorage) SaveBatchRun(ctx context.Context, run *domain.BatchRun) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO batch_runs (id, kind, is_running, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			is_running = excluded.is_running,
			updated_at = excluded.updated_at
	`, run.ID, string(run.Kind), run.IsRunning, run.CreatedAt, run.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to save batch run %s: %w", run.ID, err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT OR REPLACE INTO batch_targets
		(run_id, position, target_id, display_name, total_members, status, message, started_at, completed_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for i, t := range run.Targets {
		_, err := stmt.ExecContext(ctx,
			run.ID, i, t.TargetID, t.DisplayName, t.TotalMembers, string(t.Status), t.Message,
			nullTime(t.StartedAt), nullTime(t.CompletedAt), run.UpdatedAt)
		if err != nil {
			return fmt.Errorf("failed to save target %d of run %s: %w", t.TargetID, run.ID, err)
		}
	}

	return tx.Commit()
}

// SaveTarget updates the status of one target, inserting it after the last known position if new
func (s *sqliteStorage) SaveTarget(ctx context.Context, runID string, t domain.SubmissionTarget) error {
	now := time.Now()
	result, err := s.db.ExecContext(ctx, `
		UPDATE batch_targets
		SET status = ?, message = ?,
		    started_at = COALESCE(?, started_at),
		    completed_at = COALESCE(?, completed_at),
		    updated_at = ?
		WHERE run_id = ? AND target_id = ?
	`, string(t.Status), t.Message, nullTime(t.StartedAt), nullTime(t.CompletedAt), now, runID, t.TargetID)
	if err != nil {
		return err
	}

	rowsAffected, _ := result.RowsAffected()
	if rowsAffected > 0 {
		return nil
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO batch_targets
		(run_id, position, target_id, display_name, total_members, status, message, started_at, completed_at, updated_at)
		VALUES (?, (SELECT COALESCE(MAX(position) + 1, 0) FROM batch_targets WHERE run_id = ?), ?, ?, ?, ?, ?, ?, ?, ?)
	`, runID, runID, t.TargetID, t.DisplayName, t.TotalMembers, string(t.Status), t.Message,
		nullTime(t.StartedAt), nullTime(t.CompletedAt), now)
	if err != nil {
		return fmt.Errorf("failed to save target %d of run %s: %w", t.TargetID, runID, err)
	}
	return nil
}

// GetBatchRun retrieves a run by ID
func (s *sqliteStorage) GetBatchRun(ctx context.Context, id string) (*domain.BatchRun, error) {
	var run domain.BatchRun
	var kind string
	err := s.db.QueryRowContext(ctx, `
		SELECT id, kind, is_running, created_at, updated_at
		FROM batch_runs
		WHERE id = ?
	`, id).Scan(&run.ID, &kind, &run.IsRunning, &run.CreatedAt, &run.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("batch run %s", id))
	}
	if err != nil {
		return nil, err
	}
	run.Kind = domain.BatchKind(kind)

	run.Targets, err = s.getTargets(ctx, id)
	if err != nil {
		return nil, err
	}
	return &run, nil
}

// ListBatchRuns returns the most recent runs first
func (s *sqliteStorage) ListBatchRuns(ctx context.Context, limit int) ([]*domain.BatchRun, error) {
	if limit <= 0 {
		limit = storage.DefaultListLimit
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, kind, is_running, created_at, updated_at
		FROM batch_runs
		ORDER BY created_at DESC, id
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []*domain.BatchRun
	for rows.Next() {
		var run domain.BatchRun
		var kind string
		if err := rows.Scan(&run.ID, &kind, &run.IsRunning, &run.CreatedAt, &run.UpdatedAt); err != nil {
			return nil, err
		}
		run.Kind = domain.BatchKind(kind)
		runs = append(runs, &run)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for _, run := range runs {
		run.Targets, err = s.getTargets(ctx, run.ID)
		if err != nil {
			return nil, err
		}
	}
	return runs, nil
}

func (s *sqliteStorage) getTargets(ctx context.Context, runID string) ([]domain.SubmissionTarget, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT target_id, display_name, total_members, status, message, started_at, completed_at
		FROM batch_targets
		WHERE run_id = ?
		ORDER BY position
	`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	targets := []domain.SubmissionTarget{}
	for rows.Next() {
		var t domain.SubmissionTarget
		var status string
		var startedAt, completedAt sql.NullTime
		if err := rows.Scan(&t.TargetID, &t.DisplayName, &t.TotalMembers, &status, &t.Message, &startedAt, &completedAt); err != nil {
			return nil, err
		}
		t.Status = domain.TargetStatus(status)
		t.StartedAt = timePtr(startedAt)
		t.CompletedAt = timePtr(completedAt)
		targets = append(targets, t)
	}
	return targets, rows.Err()
}

// Close closes the database connection
func (s *sqliteStorage) Close() error {
	return s.db.Close()
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}

func timePtr(t sql.NullTime) *time.Time {
	if !t.Valid {
		return nil
	}
	v := t.Time
	return &v
}
