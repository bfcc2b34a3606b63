package domain

import (
	"fmt"
	"time"
)

// TargetStatus is the state of one target in a batch run
type TargetStatus string

const (
	TargetWaiting    TargetStatus = "waiting"
	TargetInProgress TargetStatus = "in_progress"
	TargetSucceeded  TargetStatus = "succeeded"
	TargetFailed     TargetStatus = "failed"
)

// IsTerminal reports whether no further transition is allowed
func (s TargetStatus) IsTerminal() bool {
	return s == TargetSucceeded || s == TargetFailed
}

// CanTransition reports whether s -> next moves forward.
// Waiting -> InProgress -> {Succeeded|Failed}; nothing ever reverts.
func (s TargetStatus) CanTransition(next TargetStatus) bool {
	switch s {
	case TargetWaiting:
		return next == TargetInProgress
	case TargetInProgress:
		return next == TargetSucceeded || next == TargetFailed
	default:
		return false
	}
}

// BatchKind names what a batch run submits
type BatchKind string

const (
	BatchKindAdvertisement BatchKind = "advertisement"
)

// SubmissionTarget is one recipient (a community) of a batch run
type SubmissionTarget struct {
	TargetID     int64        `json:"targetId"`
	DisplayName  string       `json:"displayName"`
	TotalMembers int          `json:"totalMembers"`
	Status       TargetStatus `json:"status"`
	Message      string       `json:"message,omitempty"`
	StartedAt    *time.Time   `json:"startedAt,omitempty"`
	CompletedAt  *time.Time   `json:"completedAt,omitempty"`
}

// Transition moves the target forward and stamps the times
func (t *SubmissionTarget) Transition(next TargetStatus, at time.Time) error {
	if !t.Status.CanTransition(next) {
		return fmt.Errorf("target %d: invalid status transition %s -> %s", t.TargetID, t.Status, next)
	}
	t.Status = next
	switch {
	case next == TargetInProgress:
		t.StartedAt = &at
	case next.IsTerminal():
		t.CompletedAt = &at
	}
	return nil
}

// BatchRun is one execution of a sequential per-target submission loop
type BatchRun struct {
	ID        string             `json:"id"`
	Kind      BatchKind          `json:"kind"`
	Targets   []SubmissionTarget `json:"targets"`
	IsRunning bool               `json:"isRunning"`
	CreatedAt time.Time          `json:"createdAt"`
	UpdatedAt time.Time          `json:"updatedAt"`
}

// BatchSummary counts targets per status
type BatchSummary struct {
	Total      int `json:"total"`
	Waiting    int `json:"waiting"`
	InProgress int `json:"inProgress"`
	Succeeded  int `json:"succeeded"`
	Failed     int `json:"failed"`
}

// Summary counts the targets of the run per status
func (r *BatchRun) Summary() BatchSummary {
	s := BatchSummary{Total: len(r.Targets)}
	for _, t := range r.Targets {
		switch t.Status {
		case TargetWaiting:
			s.Waiting++
		case TargetInProgress:
			s.InProgress++
		case TargetSucceeded:
			s.Succeeded++
		case TargetFailed:
			s.Failed++
		}
	}
	return s
}

// Outcome is a coarse label of a finished or running batch
func (r *BatchRun) Outcome() string {
	if r.IsRunning {
		return "running"
	}
	s := r.Summary()
	switch {
	case s.Total == 0:
		return "empty"
	case s.Failed == 0 && s.Succeeded == s.Total:
		return "completed"
	case s.Succeeded == 0 && s.Failed == s.Total:
		return "failed"
	case s.Succeeded+s.Failed == s.Total:
		return "partial_success"
	default:
		return "incomplete"
	}
}

// Clone returns a deep copy safe to hand to other goroutines
func (r *BatchRun) Clone() *BatchRun {
	c := *r
	c.Targets = make([]SubmissionTarget, len(r.Targets))
	for i, t := range r.Targets {
		if t.StartedAt != nil {
			v := *t.StartedAt
			t.StartedAt = &v
		}
		if t.CompletedAt != nil {
			v := *t.CompletedAt
			t.CompletedAt = &v
		}
		c.Targets[i] = t
	}
	return &c
}
