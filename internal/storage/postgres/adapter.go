package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/lib/pq"

	"github.com/kurihiro0119/community-console/internal/domain"
	apperrors "github.com/kurihiro0119/community-console/internal/errors"
	"github.com/kurihiro0119/community-console/internal/storage"
)

// postgresStorage implements the Storage interface for PostgreSQL
type postgresStorage struct {
	db *sql.DB
}

// NewPostgresStorage creates a new PostgreSQL storage instance
func NewPostgresStorage(connStr string) (storage.Storage, error) {
	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, err
	}

	// Test connection
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, err
	}

	s := &postgresStorage{db: db}
	if err := s.Migrate(context.Background()); err != nil {
		db.Close()
		return nil, err
	}

	return s, nil
}

// Migrate runs database migrations
func (s *postgresStorage) Migrate(ctx context.Context) error {
	schema := `
	CREATE TABLE IF NOT EXISTS batch_runs (
		id TEXT PRIMARY KEY,
		kind TEXT NOT NULL,
		is_running BOOLEAN NOT NULL DEFAULT FALSE,
		created_at TIMESTAMPTZ NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_batch_runs_created_at ON batch_runs(created_at);

	CREATE TABLE IF NOT EXISTS batch_targets (
		run_id TEXT NOT NULL,
		position INTEGER NOT NULL,
		target_id BIGINT NOT NULL,
		display_name TEXT NOT NULL,
		total_members INTEGER NOT NULL DEFAULT 0,
		status TEXT NOT NULL DEFAULT 'waiting',
		message TEXT NOT NULL DEFAULT '',
		started_at TIMESTAMPTZ,
		completed_at TIMESTAMPTZ,
		updated_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
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
func (s *postgresStorage) SaveBatchRun(ctx context.Context, run *domain.BatchRun) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO batch_runs (id, kind, is_running, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (id) DO UPDATE SET
			is_running = EXCLUDED.is_running,
			updated_at = EXCLUDED.updated_at
	`, run.ID, string(run.Kind), run.IsRunning, run.CreatedAt, run.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to save batch run %s: %w", run.ID, err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO batch_targets
		(run_id, position, target_id, display_name, total_members, status, message, started_at, completed_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (run_id, target_id) DO UPDATE SET
			position = EXCLUDED.position,
			display_name = EXCLUDED.display_name,
			total_members = EXCLUDED.total_members,
			status = EXCLUDED.status,
			message = EXCLUDED.message,
			started_at = EXCLUDED.started_at,
			completed_at = EXCLUDED.completed_at,
			updated_at = EXCLUDED.updated_at
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

// SaveTarget saves or updates one target; a new target goes after the last known position
func (s *postgresStorage) SaveTarget(ctx context.Context, runID string, t domain.SubmissionTarget) error {
	query := `
		INSERT INTO batch_targets
		(run_id, position, target_id, display_name, total_members, status, message, started_at, completed_at, updated_at)
		VALUES ($1, (SELECT COALESCE(MAX(position) + 1, 0) FROM batch_targets WHERE run_id = $1), $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (run_id, target_id) DO UPDATE SET
			status = EXCLUDED.status,
			message = EXCLUDED.message,
			started_at = COALESCE(EXCLUDED.started_at, batch_targets.started_at),
			completed_at = COALESCE(EXCLUDED.completed_at, batch_targets.completed_at),
			updated_at = EXCLUDED.updated_at
	`
	_, err := s.db.ExecContext(ctx, query,
		runID, t.TargetID, t.DisplayName, t.TotalMembers, string(t.Status), t.Message,
		nullTime(t.StartedAt), nullTime(t.CompletedAt), time.Now())
	if err != nil {
		return fmt.Errorf("failed to save target %d of run %s: %w", t.TargetID, runID, err)
	}
	return nil
}

// GetBatchRun retrieves a run by ID
func (s *postgresStorage) GetBatchRun(ctx context.Context, id string) (*domain.BatchRun, error) {
	var run domain.BatchRun
	var kind string
	err := s.db.QueryRowContext(ctx, `
		SELECT id, kind, is_running, created_at, updated_at
		FROM batch_runs
		WHERE id = $1
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
func (s *postgresStorage) ListBatchRuns(ctx context.Context, limit int) ([]*domain.BatchRun, error) {
	if limit <= 0 {
		limit = storage.DefaultListLimit
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, kind, is_running, created_at, updated_at
		FROM batch_runs
		ORDER BY created_at DESC, id
		LIMIT $1
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

func (s *postgresStorage) getTargets(ctx context.Context, runID string) ([]domain.SubmissionTarget, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT target_id, display_name, total_members, status, message, started_at, completed_at
		FROM batch_targets
		WHERE run_id = $1
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
		if startedAt.Valid {
			t.StartedAt = &startedAt.Time
		}
		if completedAt.Valid {
			t.CompletedAt = &completedAt.Time
		}
		targets = append(targets, t)
	}
	return targets, rows.Err()
}

// Close closes the database connection
func (s *postgresStorage) Close() error {
	return s.db.Close()
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}
