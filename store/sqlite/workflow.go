package sqlite

import (
	"context"
	"fmt"

	obscopilot "github.com/justedave0/obscopilot"
	"github.com/justedave0/obscopilot/id"
	"github.com/justedave0/obscopilot/workflow"
)

// ── Workflows ─────────────────────────────────────────────────────

// SaveWorkflow inserts or replaces a workflow definition by ID.
func (s *Store) SaveWorkflow(ctx context.Context, wf *workflow.Workflow) error {
	m, err := toWorkflowModel(wf)
	if err != nil {
		return err
	}

	_, err = s.db.NewInsert().Model(m).
		On("CONFLICT (id) DO UPDATE").
		Set("name = EXCLUDED.name").
		Set("version = EXCLUDED.version").
		Set("enabled = EXCLUDED.enabled").
		Set("definition = EXCLUDED.definition").
		Set("updated_at = EXCLUDED.updated_at").
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("obscopilot/sqlite: save workflow: %w", err)
	}
	return nil
}

// GetWorkflow retrieves a workflow by ID.
func (s *Store) GetWorkflow(ctx context.Context, wfID id.WorkflowID) (*workflow.Workflow, error) {
	m := new(workflowModel)
	err := s.db.NewSelect().Model(m).
		Where("id = ?", wfID.String()).
		Limit(1).
		Scan(ctx)
	if err != nil {
		if isNoRows(err) {
			return nil, obscopilot.ErrWorkflowNotFound
		}
		return nil, fmt.Errorf("obscopilot/sqlite: get workflow: %w", err)
	}
	return fromWorkflowModel(m)
}

// ListWorkflows returns every stored workflow, oldest first.
func (s *Store) ListWorkflows(ctx context.Context) ([]*workflow.Workflow, error) {
	var models []workflowModel
	err := s.db.NewSelect().Model(&models).
		Order("created_at ASC", "id ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("obscopilot/sqlite: list workflows: %w", err)
	}

	wfs := make([]*workflow.Workflow, 0, len(models))
	for i := range models {
		wf, convErr := fromWorkflowModel(&models[i])
		if convErr != nil {
			return nil, convErr
		}
		wfs = append(wfs, wf)
	}
	return wfs, nil
}

// DeleteWorkflow removes a workflow definition by ID. Run history is
// retained.
func (s *Store) DeleteWorkflow(ctx context.Context, wfID id.WorkflowID) error {
	res, err := s.db.NewDelete().
		TableExpr("obscopilot_workflows").
		Where("id = ?", wfID.String()).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("obscopilot/sqlite: delete workflow: %w", err)
	}
	rows, _ := res.RowsAffected() //nolint:errcheck // driver always returns nil
	if rows == 0 {
		return obscopilot.ErrWorkflowNotFound
	}
	return nil
}

// ── Runs ──────────────────────────────────────────────────────────

// CreateRun persists a new run record.
func (s *Store) CreateRun(ctx context.Context, run *workflow.Run) error {
	_, err := s.db.NewInsert().Model(toRunModel(run)).Exec(ctx)
	if err != nil {
		return fmt.Errorf("obscopilot/sqlite: create run: %w", err)
	}
	return nil
}

// UpdateRun persists changes to an existing run record.
func (s *Store) UpdateRun(ctx context.Context, run *workflow.Run) error {
	res, err := s.db.NewUpdate().Model(toRunModel(run)).WherePK().Exec(ctx)
	if err != nil {
		return fmt.Errorf("obscopilot/sqlite: update run: %w", err)
	}
	rows, _ := res.RowsAffected() //nolint:errcheck // driver always returns nil
	if rows == 0 {
		return obscopilot.ErrRunNotFound
	}
	return nil
}

// GetRun retrieves a run by ID.
func (s *Store) GetRun(ctx context.Context, runID id.RunID) (*workflow.Run, error) {
	m := new(runModel)
	err := s.db.NewSelect().Model(m).
		Where("id = ?", runID.String()).
		Limit(1).
		Scan(ctx)
	if err != nil {
		if isNoRows(err) {
			return nil, obscopilot.ErrRunNotFound
		}
		return nil, fmt.Errorf("obscopilot/sqlite: get run: %w", err)
	}
	return fromRunModel(m)
}

// ListRuns returns runs matching opts, newest first.
func (s *Store) ListRuns(ctx context.Context, opts workflow.ListRunOpts) ([]*workflow.Run, error) {
	var models []runModel
	q := s.db.NewSelect().Model(&models)

	if opts.Status != "" {
		q = q.Where("status = ?", string(opts.Status))
	}
	if !opts.WorkflowID.IsNil() {
		q = q.Where("workflow_id = ?", opts.WorkflowID.String())
	}

	q = q.Order("started_at DESC", "id ASC")

	if opts.Limit > 0 {
		q = q.Limit(opts.Limit)
	}
	if opts.Offset > 0 {
		q = q.Offset(opts.Offset)
	}

	if err := q.Scan(ctx); err != nil {
		return nil, fmt.Errorf("obscopilot/sqlite: list runs: %w", err)
	}

	runs := make([]*workflow.Run, 0, len(models))
	for i := range models {
		run, convErr := fromRunModel(&models[i])
		if convErr != nil {
			return nil, convErr
		}
		runs = append(runs, run)
	}
	return runs, nil
}
