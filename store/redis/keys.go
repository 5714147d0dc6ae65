package redis

// Redis key naming conventions for OBSCopilot data.
// All keys are prefixed with "obscopilot:" to avoid collisions.

const keyPrefix = "obscopilot:"

// ── Workflow keys ──

// workflowKey returns the Hash key for a workflow: obscopilot:workflow:{id}
func workflowKey(id string) string { return keyPrefix + "workflow:" + id }

// workflowIDsKey is the Set tracking all workflow IDs for enumeration.
const workflowIDsKey = keyPrefix + "workflow_ids"

// ── Run keys ──

// runKey returns the Hash key for a run: obscopilot:run:{id}
func runKey(id string) string { return keyPrefix + "run:" + id }

// runsByTimeKey is the Sorted Set of all run IDs scored by start time.
const runsByTimeKey = keyPrefix + "runs_by_time"

// workflowRunsKey returns the per-workflow Sorted Set of run IDs scored
// by start time: obscopilot:workflow_runs:{workflowID}
func workflowRunsKey(workflowID string) string {
	return keyPrefix + "workflow_runs:" + workflowID
}
