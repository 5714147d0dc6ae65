package workflow

import (
	"time"

	"github.com/justedave0/obscopilot/id"
)

// RunStatus is the lifecycle state of one workflow run.
type RunStatus string

const (
	// RunStatusRunning means the run is executing.
	RunStatusRunning RunStatus = "running"
	// RunStatusSucceeded means every action completed.
	RunStatusSucceeded RunStatus = "succeeded"
	// RunStatusSkipped means a condition failed before any action ran.
	// Skipping is a normal outcome, not an error.
	RunStatusSkipped RunStatus = "skipped"
	// RunStatusFailed means an action failed; FailedActionIndex records
	// where the chain stopped.
	RunStatusFailed RunStatus = "failed"
	// RunStatusAborted means the run's umbrella timeout expired.
	RunStatusAborted RunStatus = "aborted"
)

// Terminal reports whether the status is a final state.
func (s RunStatus) Terminal() bool {
	return s != RunStatusRunning
}

// Run is one execution instance of a workflow, recording which event
// triggered it and how it ended.
type Run struct {
	ID           id.RunID      `json:"id"`
	WorkflowID   id.WorkflowID `json:"workflow_id"`
	WorkflowName string        `json:"workflow_name"`
	Status       RunStatus     `json:"status"`

	// TriggerIndex is the position of the matching trigger in the
	// workflow's trigger list.
	TriggerIndex int `json:"trigger_index"`

	EventID   id.EventID `json:"event_id"`
	EventKind string     `json:"event_kind"`

	// FailedActionIndex is the position of the failing action, or -1.
	FailedActionIndex int    `json:"failed_action_index"`
	Error             string `json:"error,omitempty"`

	StartedAt   time.Time     `json:"started_at"`
	CompletedAt *time.Time    `json:"completed_at,omitempty"`
	Duration    time.Duration `json:"duration,omitempty"`
}

// NewRun creates a running Run for the given workflow and event.
func NewRun(wf *Workflow, triggerIndex int, eventID id.EventID, eventKind string) *Run {
	return &Run{
		ID:                id.NewRunID(),
		WorkflowID:        wf.ID,
		WorkflowName:      wf.Name,
		Status:            RunStatusRunning,
		TriggerIndex:      triggerIndex,
		EventID:           eventID,
		EventKind:         eventKind,
		FailedActionIndex: -1,
		StartedAt:         time.Now().UTC(),
	}
}

// Finish stamps the run with its terminal status and duration.
func (r *Run) Finish(status RunStatus) {
	now := time.Now().UTC()
	r.Status = status
	r.CompletedAt = &now
	r.Duration = now.Sub(r.StartedAt)
}
