package middleware

import (
	"context"

	"github.com/justedave0/obscopilot/id"
	"github.com/justedave0/obscopilot/workflow"
)

// Step describes one action execution within a workflow run. The engine
// builds a Step for every attempt of every action and threads it through
// the middleware chain.
type Step struct {
	// RunID identifies the run this action belongs to.
	RunID id.RunID

	// WorkflowID and WorkflowName identify the owning workflow.
	WorkflowID   id.WorkflowID
	WorkflowName string

	// Spec is the action being executed.
	Spec workflow.ActionSpec

	// Index is the action's position in the workflow's action list.
	Index int

	// Attempt is the 1-indexed execution attempt (retries increment it).
	Attempt int
}

// ActionName returns the action's display name, falling back to its kind.
func (s *Step) ActionName() string {
	if s.Spec.Name != "" {
		return s.Spec.Name
	}
	return s.Spec.Kind
}

// Handler is the terminal function that executes action logic.
type Handler func(ctx context.Context) error

// Middleware wraps a Handler with cross-cutting logic.
// It receives the current context, the step being executed, and the
// next handler to call. Middleware MUST call next to continue the chain
// (unless short-circuiting on error).
type Middleware func(ctx context.Context, s *Step, next Handler) error

// Chain composes multiple middleware into a single Middleware.
// Middleware are applied right-to-left: the first middleware in the
// list is the outermost wrapper.
//
// Example: Chain(logging, recover, timeout) executes as:
//
//	logging → recover → timeout → handler
func Chain(mws ...Middleware) Middleware {
	return func(ctx context.Context, s *Step, next Handler) error {
		// Build the chain from the end backwards.
		h := next
		for i := len(mws) - 1; i >= 0; i-- {
			mw := mws[i]
			prev := h
			h = func(ctx context.Context) error {
				return mw(ctx, s, prev)
			}
		}
		return h(ctx)
	}
}
