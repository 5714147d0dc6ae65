// Package memory provides a fully in-memory Store. Safe for concurrent
// access. Intended for unit testing and development.
package memory

import (
	"context"
	"sort"
	"sync"

	obscopilot "github.com/justedave0/obscopilot"
	"github.com/justedave0/obscopilot/id"
	"github.com/justedave0/obscopilot/workflow"
)

var _ workflow.Store = (*Store)(nil)

// Store is an in-memory implementation of workflow.Store.
type Store struct {
	mu sync.RWMutex

	workflows map[string]*workflow.Workflow
	runs      map[string]*workflow.Run
}

// New returns a new empty Store.
func New() *Store {
	return &Store{
		workflows: make(map[string]*workflow.Workflow),
		runs:      make(map[string]*workflow.Run),
	}
}

// ──────────────────────────────────────────────────
// Lifecycle — Migrate / Ping / Close
// ──────────────────────────────────────────────────

// Migrate is a no-op for the memory store.
func (m *Store) Migrate(_ context.Context) error { return nil }

// Ping always succeeds for the memory store.
func (m *Store) Ping(_ context.Context) error { return nil }

// Close is a no-op for the memory store.
func (m *Store) Close() error { return nil }

// ──────────────────────────────────────────────────
// Workflows
// ──────────────────────────────────────────────────

// SaveWorkflow inserts or replaces a workflow by ID.
func (m *Store) SaveWorkflow(_ context.Context, wf *workflow.Workflow) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.workflows[wf.ID.String()] = wf.Clone()
	return nil
}

// GetWorkflow retrieves a workflow by ID.
func (m *Store) GetWorkflow(_ context.Context, wfID id.WorkflowID) (*workflow.Workflow, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	wf, ok := m.workflows[wfID.String()]
	if !ok {
		return nil, obscopilot.ErrWorkflowNotFound
	}
	return wf.Clone(), nil
}

// ListWorkflows returns every stored workflow, oldest first.
func (m *Store) ListWorkflows(_ context.Context) ([]*workflow.Workflow, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make([]*workflow.Workflow, 0, len(m.workflows))
	for _, wf := range m.workflows {
		result = append(result, wf.Clone())
	}
	sort.Slice(result, func(i, k int) bool {
		if !result[i].CreatedAt.Equal(result[k].CreatedAt) {
			return result[i].CreatedAt.Before(result[k].CreatedAt)
		}
		return result[i].ID.String() < result[k].ID.String()
	})

	return result, nil
}

// DeleteWorkflow removes a workflow by ID.
func (m *Store) DeleteWorkflow(_ context.Context, wfID id.WorkflowID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	key := wfID.String()
	if _, ok := m.workflows[key]; !ok {
		return obscopilot.ErrWorkflowNotFound
	}
	delete(m.workflows, key)
	return nil
}

// ──────────────────────────────────────────────────
// Runs
// ──────────────────────────────────────────────────

// CreateRun persists a new run record.
func (m *Store) CreateRun(_ context.Context, run *workflow.Run) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.runs[run.ID.String()] = copyRun(run)
	return nil
}

// UpdateRun persists changes to an existing run record.
func (m *Store) UpdateRun(_ context.Context, run *workflow.Run) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	key := run.ID.String()
	if _, ok := m.runs[key]; !ok {
		return obscopilot.ErrRunNotFound
	}
	m.runs[key] = copyRun(run)
	return nil
}

// GetRun retrieves a run by ID.
func (m *Store) GetRun(_ context.Context, runID id.RunID) (*workflow.Run, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	run, ok := m.runs[runID.String()]
	if !ok {
		return nil, obscopilot.ErrRunNotFound
	}
	return copyRun(run), nil
}

// ListRuns returns runs matching opts, newest first.
func (m *Store) ListRuns(_ context.Context, opts workflow.ListRunOpts) ([]*workflow.Run, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make([]*workflow.Run, 0, len(m.runs))
	for _, run := range m.runs {
		if opts.Status != "" && run.Status != opts.Status {
			continue
		}
		if !opts.WorkflowID.IsNil() && run.WorkflowID != opts.WorkflowID {
			continue
		}
		result = append(result, copyRun(run))
	}
	sort.Slice(result, func(i, k int) bool {
		if !result[i].StartedAt.Equal(result[k].StartedAt) {
			return result[i].StartedAt.After(result[k].StartedAt)
		}
		return result[i].ID.String() < result[k].ID.String()
	})

	if opts.Offset > 0 {
		if opts.Offset >= len(result) {
			return []*workflow.Run{}, nil
		}
		result = result[opts.Offset:]
	}
	if opts.Limit > 0 && len(result) > opts.Limit {
		result = result[:opts.Limit]
	}

	return result, nil
}

// copyRun returns an independent copy of a run record.
func copyRun(run *workflow.Run) *workflow.Run {
	cp := *run
	if run.CompletedAt != nil {
		t := *run.CompletedAt
		cp.CompletedAt = &t
	}
	return &cp
}
