package action

import (
	"context"
	"fmt"

	"github.com/justedave0/obscopilot/workflow"
)

func (r *Registry) switchScene(ctx context.Context, rc *workflow.Context, spec workflow.ActionSpec) error {
	scene, _ := configString(spec.Config, "scene_name")
	scene = rc.Render(scene)

	if err := r.obs.SwitchScene(ctx, scene); err != nil {
		return fmt.Errorf("action %s: %w", spec.Kind, err)
	}

	return nil
}

func (r *Registry) setSourceVisibility(ctx context.Context, rc *workflow.Context, spec workflow.ActionSpec) error {
	source, _ := configString(spec.Config, "source_name")
	source = rc.Render(source)

	scene, _ := configString(spec.Config, "scene_name")
	scene = rc.Render(scene)

	visible := configBoolDefault(spec.Config, "visible", true)

	if err := r.obs.SetSourceVisibility(ctx, scene, source, visible); err != nil {
		return fmt.Errorf("action %s: %w", spec.Kind, err)
	}

	return nil
}

func (r *Registry) startStreaming(ctx context.Context, _ *workflow.Context, spec workflow.ActionSpec) error {
	if err := r.obs.StartStreaming(ctx); err != nil {
		return fmt.Errorf("action %s: %w", spec.Kind, err)
	}

	return nil
}

func (r *Registry) stopStreaming(ctx context.Context, _ *workflow.Context, spec workflow.ActionSpec) error {
	if err := r.obs.StopStreaming(ctx); err != nil {
		return fmt.Errorf("action %s: %w", spec.Kind, err)
	}

	return nil
}

func (r *Registry) startRecording(ctx context.Context, _ *workflow.Context, spec workflow.ActionSpec) error {
	if err := r.obs.StartRecording(ctx); err != nil {
		return fmt.Errorf("action %s: %w", spec.Kind, err)
	}

	return nil
}

func (r *Registry) stopRecording(ctx context.Context, _ *workflow.Context, spec workflow.ActionSpec) error {
	if err := r.obs.StopRecording(ctx); err != nil {
		return fmt.Errorf("action %s: %w", spec.Kind, err)
	}

	return nil
}
