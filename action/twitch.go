package action

import (
	"context"
	"fmt"
	"time"

	"github.com/justedave0/obscopilot/workflow"
)

// defaultTimeoutDuration applies when a timeout_user action omits
// duration.
const defaultTimeoutDuration = 300 * time.Second

func (r *Registry) sendChatMessage(ctx context.Context, rc *workflow.Context, spec workflow.ActionSpec) error {
	message, _ := configString(spec.Config, "message")
	channel, _ := configString(spec.Config, "channel")

	message = rc.Render(message)
	channel = rc.Render(channel)

	if err := r.chat.SendChatMessage(ctx, channel, message); err != nil {
		return fmt.Errorf("action %s: %w", spec.Kind, err)
	}

	return nil
}

func (r *Registry) timeoutUser(ctx context.Context, rc *workflow.Context, spec workflow.ActionSpec) error {
	username, _ := configString(spec.Config, "username")
	username = rc.Render(username)

	duration := defaultTimeoutDuration
	if seconds, ok := configFloat(spec.Config, "duration"); ok && seconds > 0 {
		duration = time.Duration(seconds * float64(time.Second))
	}

	reason, ok := configString(spec.Config, "reason")
	if !ok {
		reason = "Timed out by OBSCopilot"
	}
	reason = rc.Render(reason)

	channel, _ := configString(spec.Config, "channel")
	channel = rc.Render(channel)

	if err := r.chat.TimeoutUser(ctx, channel, username, duration, reason); err != nil {
		return fmt.Errorf("action %s: %w", spec.Kind, err)
	}

	return nil
}

func (r *Registry) banUser(ctx context.Context, rc *workflow.Context, spec workflow.ActionSpec) error {
	username, _ := configString(spec.Config, "username")
	username = rc.Render(username)

	reason, ok := configString(spec.Config, "reason")
	if !ok {
		reason = "Banned by OBSCopilot"
	}
	reason = rc.Render(reason)

	channel, _ := configString(spec.Config, "channel")
	channel = rc.Render(channel)

	if err := r.chat.BanUser(ctx, channel, username, reason); err != nil {
		return fmt.Errorf("action %s: %w", spec.Kind, err)
	}

	return nil
}
