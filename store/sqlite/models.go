package sqlite

import (
	"fmt"
	"time"

	"github.com/uptrace/bun"

	"github.com/justedave0/obscopilot/id"
	"github.com/justedave0/obscopilot/workflow"
)

// ── Workflow model ────────────────────────────────────────────────

// workflowModel stores the full definition as a JSON blob so trigger,
// condition, and action specs round-trip losslessly; the indexed
// columns exist for listing and filtering without decoding.
type workflowModel struct {
	bun.BaseModel `bun:"table:obscopilot_workflows"`

	ID         string    `bun:"id,pk"`
	Name       string    `bun:"name,notnull"`
	Version    int       `bun:"version,notnull,default:1"`
	Enabled    bool      `bun:"enabled,notnull,default:true"`
	Definition []byte    `bun:"definition,notnull"`
	CreatedAt  time.Time `bun:"created_at,notnull"`
	UpdatedAt  time.Time `bun:"updated_at,notnull"`
}

func toWorkflowModel(wf *workflow.Workflow) (*workflowModel, error) {
	definition, err := wf.ToJSON()
	if err != nil {
		return nil, fmt.Errorf("obscopilot/sqlite: encode workflow %s: %w", wf.ID, err)
	}

	return &workflowModel{
		ID:         wf.ID.String(),
		Name:       wf.Name,
		Version:    wf.Version,
		Enabled:    wf.Enabled,
		Definition: definition,
		CreatedAt:  wf.CreatedAt,
		UpdatedAt:  wf.UpdatedAt,
	}, nil
}

func fromWorkflowModel(m *workflowModel) (*workflow.Workflow, error) {
	wf, err := workflow.FromJSON(m.Definition)
	if err != nil {
		return nil, fmt.Errorf("obscopilot/sqlite: decode workflow %s: %w", m.ID, err)
	}
	return wf, nil
}

// ── Run model ─────────────────────────────────────────────────────

type runModel struct {
	bun.BaseModel `bun:"table:obscopilot_runs"`

	ID                string     `bun:"id,pk"`
	WorkflowID        string     `bun:"workflow_id,notnull"`
	WorkflowName      string     `bun:"workflow_name,notnull"`
	Status            string     `bun:"status,notnull"`
	TriggerIndex      int        `bun:"trigger_index,notnull,default:0"`
	EventID           string     `bun:"event_id,notnull"`
	EventKind         string     `bun:"event_kind,notnull"`
	FailedActionIndex int        `bun:"failed_action_index,notnull,default:-1"`
	Error             string     `bun:"error,notnull,default:''"`
	StartedAt         time.Time  `bun:"started_at,notnull"`
	CompletedAt       *time.Time `bun:"completed_at"`
	Duration          int64      `bun:"duration,notnull,default:0"`
}

func toRunModel(run *workflow.Run) *runModel {
	return &runModel{
		ID:                run.ID.String(),
		WorkflowID:        run.WorkflowID.String(),
		WorkflowName:      run.WorkflowName,
		Status:            string(run.Status),
		TriggerIndex:      run.TriggerIndex,
		EventID:           run.EventID.String(),
		EventKind:         run.EventKind,
		FailedActionIndex: run.FailedActionIndex,
		Error:             run.Error,
		StartedAt:         run.StartedAt,
		CompletedAt:       run.CompletedAt,
		Duration:          run.Duration.Nanoseconds(),
	}
}

func fromRunModel(m *runModel) (*workflow.Run, error) {
	runID, err := id.ParseRunID(m.ID)
	if err != nil {
		return nil, fmt.Errorf("obscopilot/sqlite: parse run id %q: %w", m.ID, err)
	}
	wfID, err := id.ParseWorkflowID(m.WorkflowID)
	if err != nil {
		return nil, fmt.Errorf("obscopilot/sqlite: parse workflow id %q: %w", m.WorkflowID, err)
	}
	eventID, err := id.ParseEventID(m.EventID)
	if err != nil {
		return nil, fmt.Errorf("obscopilot/sqlite: parse event id %q: %w", m.EventID, err)
	}

	return &workflow.Run{
		ID:                runID,
		WorkflowID:        wfID,
		WorkflowName:      m.WorkflowName,
		Status:            workflow.RunStatus(m.Status),
		TriggerIndex:      m.TriggerIndex,
		EventID:           eventID,
		EventKind:         m.EventKind,
		FailedActionIndex: m.FailedActionIndex,
		Error:             m.Error,
		StartedAt:         m.StartedAt,
		CompletedAt:       m.CompletedAt,
		Duration:          time.Duration(m.Duration),
	}, nil
}
