package storage

import (
	"context"

	"github.com/kurihiro0119/community-console/internal/domain"
)

// DefaultListLimit is used when ListBatchRuns is called with a non-positive limit
const DefaultListLimit = 20

// Storage is the abstract interface for the persistence layer
type Storage interface {
	// Batch run operations. SaveBatchRun upserts the run and all its targets,
	// SaveTarget upserts one target of an existing run.
	SaveBatchRun(ctx context.Context, run *domain.BatchRun) error
	SaveTarget(ctx context.Context, runID string, target domain.SubmissionTarget) error

	// Batch run retrieval; targets come back in submission order
	GetBatchRun(ctx context.Context, id string) (*domain.BatchRun, error)
	ListBatchRuns(ctx context.Context, limit int) ([]*domain.BatchRun, error)

	// Migration
	Migrate(ctx context.Context) error

	// Connection management
	Close() error
}
