// Package batch runs one submission per target, strictly one after another.
//
// Each target moves Waiting -> InProgress -> Succeeded|Failed. A failed target
// never stops the loop and never undoes earlier successes; there is no
// automatic retry. Every transition is reported to an optional Recorder
// (persistence) and Observer (live progress).
package batch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"

	"github.com/kurihiro0119/community-console/internal/domain"
	apperrors "github.com/kurihiro0119/community-console/internal/errors"
)

// SubmitFunc performs the remote operation for one target. A nil error means success.
type SubmitFunc func(ctx context.Context, target domain.SubmissionTarget) error

// Recorder persists a run and its per-target progress.
// SaveBatchRun is expected to store the targets of the run as well.
type Recorder interface {
	SaveBatchRun(ctx context.Context, run *domain.BatchRun) error
	SaveTarget(ctx context.Context, runID string, target domain.SubmissionTarget) error
}

// Observer receives a copy of the run after every transition
type Observer func(run *domain.BatchRun)

// TrackerConfig configures a Tracker
type TrackerConfig struct {
	Logger *slog.Logger
	Clock  clockwork.Clock
	// Delay before each submission; ignored when Pacer is set
	Delay    time.Duration
	Pacer    Pacer
	Recorder Recorder
	Observer Observer
	NewID    func() string
}

// Validate checks required fields and fills in defaults
func (cfg *TrackerConfig) Validate() error {
	if cfg.Logger == nil {
		return errors.New("logger is required")
	}
	if cfg.Delay < 0 {
		return errors.New("delay must not be negative")
	}
	if cfg.Clock == nil {
		cfg.Clock = clockwork.NewRealClock()
	}
	if cfg.Pacer == nil {
		cfg.Pacer = NewFixedPacer(cfg.Clock, cfg.Delay)
	}
	if cfg.NewID == nil {
		cfg.NewID = uuid.NewString
	}
	return nil
}

// Tracker executes batch runs
type Tracker struct {
	log *slog.Logger
	cfg TrackerConfig
}

// NewTracker creates a tracker
func NewTracker(cfg TrackerConfig) (*Tracker, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Tracker{log: cfg.Logger, cfg: cfg}, nil
}

// Run submits to every target in the given order and returns the terminal run.
// The returned error is only about invalid arguments; per-target failures are
// recorded on the targets.
func (t *Tracker) Run(ctx context.Context, kind domain.BatchKind, targets []domain.SubmissionTarget, submit SubmitFunc) (*domain.BatchRun, error) {
	if submit == nil {
		return nil, errors.New("submit function is required")
	}
	seen := make(map[int64]bool, len(targets))
	for _, target := range targets {
		if seen[target.TargetID] {
			return nil, apperrors.NewBadRequestError(fmt.Sprintf("target %d selected twice", target.TargetID))
		}
		seen[target.TargetID] = true
	}

	now := t.cfg.Clock.Now()
	run := &domain.BatchRun{
		ID:        t.cfg.NewID(),
		Kind:      kind,
		Targets:   make([]domain.SubmissionTarget, len(targets)),
		IsRunning: true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	for i, target := range targets {
		run.Targets[i] = domain.SubmissionTarget{
			TargetID:     target.TargetID,
			DisplayName:  target.DisplayName,
			TotalMembers: target.TotalMembers,
			Status:       domain.TargetWaiting,
		}
	}

	log := t.log.With("run", run.ID, "kind", kind)
	log.Info("batch run started", "targets", len(run.Targets))
	t.recordRun(ctx, log, run)
	t.notify(run)

	for i := range run.Targets {
		target := &run.Targets[i]

		t.transition(log, run, i, domain.TargetInProgress, "")
		t.recordTarget(ctx, log, run, i)
		t.notify(run)

		err := t.cfg.Pacer.Wait(ctx)
		if err == nil {
			err = t.submitOne(ctx, submit, *target)
		}

		if err != nil {
			msg := failureMessage(err)
			log.Warn("target failed", "target", target.TargetID, "name", target.DisplayName, "error", msg)
			t.transition(log, run, i, domain.TargetFailed, msg)
		} else {
			log.Info("target succeeded", "target", target.TargetID, "name", target.DisplayName)
			t.transition(log, run, i, domain.TargetSucceeded, "")
		}
		t.recordTarget(ctx, log, run, i)
		t.notify(run)
	}

	run.IsRunning = false
	run.UpdatedAt = t.cfg.Clock.Now()
	t.recordRun(ctx, log, run)
	t.notify(run)

	s := run.Summary()
	log.Info("batch run finished", "succeeded", s.Succeeded, "failed", s.Failed, "outcome", run.Outcome())
	return run, nil
}

// submitOne turns a panic in submit into a target failure
func (t *Tracker) submitOne(ctx context.Context, submit SubmitFunc, target domain.SubmissionTarget) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("submission panicked: %v", r)
		}
	}()
	return submit(ctx, target)
}

func (t *Tracker) transition(log *slog.Logger, run *domain.BatchRun, i int, next domain.TargetStatus, msg string) {
	now := t.cfg.Clock.Now()
	target := &run.Targets[i]
	if err := target.Transition(next, now); err != nil {
		// Only reachable through a bug in the loop above
		log.Error("status transition rejected", "error", err)
		return
	}
	target.Message = msg
	run.UpdatedAt = now
}

func (t *Tracker) recordRun(ctx context.Context, log *slog.Logger, run *domain.BatchRun) {
	if t.cfg.Recorder == nil {
		return
	}
	if err := t.cfg.Recorder.SaveBatchRun(context.WithoutCancel(ctx), run); err != nil {
		log.Warn("failed to record batch run", "error", err)
	}
}

func (t *Tracker) recordTarget(ctx context.Context, log *slog.Logger, run *domain.BatchRun, i int) {
	if t.cfg.Recorder == nil {
		return
	}
	if err := t.cfg.Recorder.SaveTarget(context.WithoutCancel(ctx), run.ID, run.Targets[i]); err != nil {
		log.Warn("failed to record target", "target", run.Targets[i].TargetID, "error", err)
	}
}

func (t *Tracker) notify(run *domain.BatchRun) {
	if t.cfg.Observer != nil {
		t.cfg.Observer(run.Clone())
	}
}

// failureMessage prefers the backend's own wording
func failureMessage(err error) string {
	var remote *apperrors.RemoteError
	if errors.As(err, &remote) {
		return remote.Message
	}
	return err.Error()
}
