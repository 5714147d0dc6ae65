package action

import (
	"context"
	"fmt"

	"github.com/justedave0/obscopilot/event"
	"github.com/justedave0/obscopilot/workflow"
)

// Generation defaults, matching the original product's behavior.
const (
	defaultModel       = "gpt-3.5-turbo"
	defaultTemperature = 0.7
	defaultMaxTokens   = 150
	defaultResponseVar = "ai_response"
)

// generateResponse calls the injected Generator and stores the produced
// text in a run variable (response_variable, default "ai_response") for
// later actions to reference via templating.
func (r *Registry) generateResponse(ctx context.Context, rc *workflow.Context, spec workflow.ActionSpec) error {
	prompt, _ := configString(spec.Config, "prompt")
	system, _ := configString(spec.Config, "system_message")

	req := GenerateRequest{
		Prompt:        rc.Render(prompt),
		SystemMessage: rc.Render(system),
		Model:         defaultModel,
		Temperature:   defaultTemperature,
		MaxTokens:     defaultMaxTokens,
	}
	if model, ok := configString(spec.Config, "model"); ok && model != "" {
		req.Model = model
	}
	if temp, ok := configFloat(spec.Config, "temperature"); ok {
		req.Temperature = temp
	}
	if tokens, ok := configFloat(spec.Config, "max_tokens"); ok && tokens > 0 {
		req.MaxTokens = int(tokens)
	}

	text, err := r.ai.GenerateText(ctx, req)
	if err != nil {
		return fmt.Errorf("action %s: %w", spec.Kind, err)
	}

	varName := defaultResponseVar
	if name, ok := configString(spec.Config, "response_variable"); ok && name != "" {
		varName = name
	}
	rc.SetVar(varName, text)

	if r.bus != nil {
		_ = r.bus.Publish(event.New(event.AIResponseGenerated, map[string]any{
			"workflow_id": rc.WorkflowID.String(),
			"run_id":      rc.RunID.String(),
			"response":    text,
		}))
	}

	return nil
}
