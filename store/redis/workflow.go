package redis

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"time"

	goredis "github.com/redis/go-redis/v9"

	obscopilot "github.com/justedave0/obscopilot"
	"github.com/justedave0/obscopilot/id"
	"github.com/justedave0/obscopilot/workflow"
)

// ── Workflows ─────────────────────────────────────────────────────

// SaveWorkflow inserts or replaces a workflow definition by ID.
func (s *Store) SaveWorkflow(ctx context.Context, wf *workflow.Workflow) error {
	wfID := wf.ID.String()

	definition, err := wf.ToJSON()
	if err != nil {
		return fmt.Errorf("obscopilot/redis: encode workflow %s: %w", wfID, err)
	}

	pipe := s.client.TxPipeline()
	pipe.HSet(ctx, workflowKey(wfID), map[string]interface{}{
		"id":         wfID,
		"name":       wf.Name,
		"version":    wf.Version,
		"enabled":    wf.Enabled,
		"definition": string(definition),
		"created_at": wf.CreatedAt.Format(time.RFC3339Nano),
		"updated_at": wf.UpdatedAt.Format(time.RFC3339Nano),
	})
	pipe.SAdd(ctx, workflowIDsKey, wfID)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("obscopilot/redis: save workflow: %w", err)
	}
	return nil
}

// GetWorkflow retrieves a workflow by ID.
func (s *Store) GetWorkflow(ctx context.Context, wfID id.WorkflowID) (*workflow.Workflow, error) {
	vals, err := s.client.HGetAll(ctx, workflowKey(wfID.String())).Result()
	if err != nil {
		return nil, fmt.Errorf("obscopilot/redis: get workflow: %w", err)
	}
	if len(vals) == 0 {
		return nil, obscopilot.ErrWorkflowNotFound
	}

	wf, err := workflow.FromJSON([]byte(vals["definition"]))
	if err != nil {
		return nil, fmt.Errorf("obscopilot/redis: decode workflow %s: %w", wfID, err)
	}
	return wf, nil
}

// ListWorkflows returns every stored workflow, oldest first.
func (s *Store) ListWorkflows(ctx context.Context) ([]*workflow.Workflow, error) {
	ids, err := s.client.SMembers(ctx, workflowIDsKey).Result()
	if err != nil {
		return nil, fmt.Errorf("obscopilot/redis: list workflows: %w", err)
	}

	wfs := make([]*workflow.Workflow, 0, len(ids))
	for _, wfID := range ids {
		vals, getErr := s.client.HGetAll(ctx, workflowKey(wfID)).Result()
		if getErr != nil || len(vals) == 0 {
			continue
		}
		wf, convErr := workflow.FromJSON([]byte(vals["definition"]))
		if convErr != nil {
			s.logger.Warn("skipping undecodable workflow", "workflow_id", wfID, "error", convErr)
			continue
		}
		wfs = append(wfs, wf)
	}

	sort.Slice(wfs, func(i, k int) bool {
		if !wfs[i].CreatedAt.Equal(wfs[k].CreatedAt) {
			return wfs[i].CreatedAt.Before(wfs[k].CreatedAt)
		}
		return wfs[i].ID.String() < wfs[k].ID.String()
	})

	return wfs, nil
}

// DeleteWorkflow removes a workflow definition by ID. Run history is
// retained.
func (s *Store) DeleteWorkflow(ctx context.Context, wfID id.WorkflowID) error {
	key := wfID.String()

	removed, err := s.client.SRem(ctx, workflowIDsKey, key).Result()
	if err != nil {
		return fmt.Errorf("obscopilot/redis: delete workflow: %w", err)
	}
	if removed == 0 {
		return obscopilot.ErrWorkflowNotFound
	}

	if err := s.client.Del(ctx, workflowKey(key)).Err(); err != nil {
		return fmt.Errorf("obscopilot/redis: delete workflow hash: %w", err)
	}
	return nil
}

// ── Runs ──────────────────────────────────────────────────────────

// CreateRun persists a new run record and indexes it by start time.
func (s *Store) CreateRun(ctx context.Context, run *workflow.Run) error {
	rID := run.ID.String()
	score := float64(run.StartedAt.UnixNano())

	pipe := s.client.TxPipeline()
	pipe.HSet(ctx, runKey(rID), runToMap(run))
	pipe.ZAdd(ctx, runsByTimeKey, goredis.Z{Score: score, Member: rID})
	pipe.ZAdd(ctx, workflowRunsKey(run.WorkflowID.String()), goredis.Z{Score: score, Member: rID})
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("obscopilot/redis: create run: %w", err)
	}
	return nil
}

// UpdateRun persists changes to an existing run record.
func (s *Store) UpdateRun(ctx context.Context, run *workflow.Run) error {
	key := runKey(run.ID.String())

	exists, err := s.client.Exists(ctx, key).Result()
	if err != nil {
		return fmt.Errorf("obscopilot/redis: update run exists: %w", err)
	}
	if exists == 0 {
		return obscopilot.ErrRunNotFound
	}

	if _, err := s.client.HSet(ctx, key, runToMap(run)).Result(); err != nil {
		return fmt.Errorf("obscopilot/redis: update run: %w", err)
	}
	return nil
}

// GetRun retrieves a run by ID.
func (s *Store) GetRun(ctx context.Context, runID id.RunID) (*workflow.Run, error) {
	vals, err := s.client.HGetAll(ctx, runKey(runID.String())).Result()
	if err != nil {
		return nil, fmt.Errorf("obscopilot/redis: get run: %w", err)
	}
	if len(vals) == 0 {
		return nil, obscopilot.ErrRunNotFound
	}
	return mapToRun(vals)
}

// ListRuns returns runs matching opts, newest first. The sorted-set
// index provides the ordering; status filtering happens client-side.
func (s *Store) ListRuns(ctx context.Context, opts workflow.ListRunOpts) ([]*workflow.Run, error) {
	indexKey := runsByTimeKey
	if !opts.WorkflowID.IsNil() {
		indexKey = workflowRunsKey(opts.WorkflowID.String())
	}

	ids, err := s.client.ZRevRange(ctx, indexKey, 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("obscopilot/redis: list runs index: %w", err)
	}

	var runs []*workflow.Run
	for _, rID := range ids {
		vals, getErr := s.client.HGetAll(ctx, runKey(rID)).Result()
		if getErr != nil || len(vals) == 0 {
			continue
		}
		r, convErr := mapToRun(vals)
		if convErr != nil {
			s.logger.Warn("skipping undecodable run", "run_id", rID, "error", convErr)
			continue
		}
		if opts.Status != "" && r.Status != opts.Status {
			continue
		}
		runs = append(runs, r)
	}

	if opts.Offset > 0 {
		if opts.Offset >= len(runs) {
			return []*workflow.Run{}, nil
		}
		runs = runs[opts.Offset:]
	}
	if opts.Limit > 0 && len(runs) > opts.Limit {
		runs = runs[:opts.Limit]
	}

	return runs, nil
}

// ── helpers ──

func runToMap(r *workflow.Run) map[string]interface{} {
	m := map[string]interface{}{
		"id":                  r.ID.String(),
		"workflow_id":         r.WorkflowID.String(),
		"workflow_name":       r.WorkflowName,
		"status":              string(r.Status),
		"trigger_index":       r.TriggerIndex,
		"event_id":            r.EventID.String(),
		"event_kind":          r.EventKind,
		"failed_action_index": r.FailedActionIndex,
		"error":               r.Error,
		"started_at":          r.StartedAt.Format(time.RFC3339Nano),
		"duration":            r.Duration.Nanoseconds(),
	}
	if r.CompletedAt != nil {
		m["completed_at"] = r.CompletedAt.Format(time.RFC3339Nano)
	}
	return m
}

func mapToRun(m map[string]string) (*workflow.Run, error) {
	rID, err := id.ParseRunID(m["id"])
	if err != nil {
		return nil, fmt.Errorf("obscopilot/redis: parse run id: %w", err)
	}
	wfID, err := id.ParseWorkflowID(m["workflow_id"])
	if err != nil {
		return nil, fmt.Errorf("obscopilot/redis: parse workflow id: %w", err)
	}
	eventID, err := id.ParseEventID(m["event_id"])
	if err != nil {
		return nil, fmt.Errorf("obscopilot/redis: parse event id: %w", err)
	}

	triggerIndex, _ := strconv.Atoi(m["trigger_index"])
	failedIndex, _ := strconv.Atoi(m["failed_action_index"])
	durationNs, _ := strconv.ParseInt(m["duration"], 10, 64)
	startedAt, _ := time.Parse(time.RFC3339Nano, m["started_at"])

	r := &workflow.Run{
		ID:                rID,
		WorkflowID:        wfID,
		WorkflowName:      m["workflow_name"],
		Status:            workflow.RunStatus(m["status"]),
		TriggerIndex:      triggerIndex,
		EventID:           eventID,
		EventKind:         m["event_kind"],
		FailedActionIndex: failedIndex,
		Error:             m["error"],
		StartedAt:         startedAt,
		Duration:          time.Duration(durationNs),
	}

	if v := m["completed_at"]; v != "" {
		t, _ := time.Parse(time.RFC3339Nano, v)
		r.CompletedAt = &t
	}
	return r, nil
}
