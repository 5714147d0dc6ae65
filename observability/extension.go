package observability

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"

	"github.com/justedave0/obscopilot/event"
	"github.com/justedave0/obscopilot/ext"
	"github.com/justedave0/obscopilot/workflow"
)

// meterName is the instrumentation scope name for lifecycle metrics.
const meterName = "github.com/justedave0/obscopilot/observability"

// Compile-time interface checks.
var (
	_ ext.Extension          = (*MetricsExtension)(nil)
	_ ext.WorkflowRegistered = (*MetricsExtension)(nil)
	_ ext.TriggerFired       = (*MetricsExtension)(nil)
	_ ext.RunStarted         = (*MetricsExtension)(nil)
	_ ext.RunSkipped         = (*MetricsExtension)(nil)
	_ ext.RunCompleted       = (*MetricsExtension)(nil)
	_ ext.RunFailed          = (*MetricsExtension)(nil)
	_ ext.ActionFailed       = (*MetricsExtension)(nil)
	_ ext.EventPublished     = (*MetricsExtension)(nil)
)

// MetricsExtension records system-wide lifecycle counters via OpenTelemetry.
// Register it as an engine extension to automatically track workflow
// registrations, trigger fires, run outcomes, action failures, and bus
// event throughput.
type MetricsExtension struct {
	workflowRegistered metric.Int64Counter
	triggerFired       metric.Int64Counter
	runStarted         metric.Int64Counter
	runSkipped         metric.Int64Counter
	runCompleted       metric.Int64Counter
	runFailed          metric.Int64Counter
	actionFailed       metric.Int64Counter
	eventPublished     metric.Int64Counter
}

// NewMetricsExtension creates a MetricsExtension using the global OTel
// MeterProvider. With no provider configured, the instruments are noop.
func NewMetricsExtension() *MetricsExtension {
	return NewMetricsExtensionWithMeter(otel.Meter(meterName))
}

// NewMetricsExtensionWithMeter creates a MetricsExtension with the provided
// meter. This variant allows injecting a specific MeterProvider for testing.
func NewMetricsExtensionWithMeter(meter metric.Meter) *MetricsExtension {
	counter := func(name, desc string) metric.Int64Counter {
		c, err := meter.Int64Counter(name, metric.WithDescription(desc))
		_ = err // noop fallback guaranteed by OTel API contract
		return c
	}

	return &MetricsExtension{
		workflowRegistered: counter("obscopilot.workflow.registered", "Total workflows registered"),
		triggerFired:       counter("obscopilot.trigger.fired", "Total trigger fires"),
		runStarted:         counter("obscopilot.run.started", "Total runs started"),
		runSkipped:         counter("obscopilot.run.skipped", "Total runs skipped by conditions"),
		runCompleted:       counter("obscopilot.run.completed", "Total runs completed successfully"),
		runFailed:          counter("obscopilot.run.failed", "Total runs failed or aborted"),
		actionFailed:       counter("obscopilot.action.failed", "Total terminal action failures"),
		eventPublished:     counter("obscopilot.event.published", "Total events observed on the bus"),
	}
}

// Name implements ext.Extension.
func (m *MetricsExtension) Name() string { return "observability-metrics" }

// ── Workflow lifecycle hooks ────────────────────────

// OnWorkflowRegistered implements ext.WorkflowRegistered.
func (m *MetricsExtension) OnWorkflowRegistered(ctx context.Context, _ *workflow.Workflow) error {
	m.workflowRegistered.Add(ctx, 1)
	return nil
}

// OnTriggerFired implements ext.TriggerFired.
func (m *MetricsExtension) OnTriggerFired(ctx context.Context, _ *workflow.Workflow, _ int, _ event.Event) error {
	m.triggerFired.Add(ctx, 1)
	return nil
}

// ── Run lifecycle hooks ─────────────────────────────

// OnRunStarted implements ext.RunStarted.
func (m *MetricsExtension) OnRunStarted(ctx context.Context, _ *workflow.Run) error {
	m.runStarted.Add(ctx, 1)
	return nil
}

// OnRunSkipped implements ext.RunSkipped.
func (m *MetricsExtension) OnRunSkipped(ctx context.Context, _ *workflow.Run) error {
	m.runSkipped.Add(ctx, 1)
	return nil
}

// OnRunCompleted implements ext.RunCompleted.
func (m *MetricsExtension) OnRunCompleted(ctx context.Context, _ *workflow.Run, _ time.Duration) error {
	m.runCompleted.Add(ctx, 1)
	return nil
}

// OnRunFailed implements ext.RunFailed.
func (m *MetricsExtension) OnRunFailed(ctx context.Context, _ *workflow.Run, _ error) error {
	m.runFailed.Add(ctx, 1)
	return nil
}

// OnActionFailed implements ext.ActionFailed.
func (m *MetricsExtension) OnActionFailed(ctx context.Context, _ *workflow.Run, _ string, _ error) error {
	m.actionFailed.Add(ctx, 1)
	return nil
}

// ── Bus lifecycle hooks ─────────────────────────────

// OnEventPublished implements ext.EventPublished.
func (m *MetricsExtension) OnEventPublished(ctx context.Context, _ event.Event) error {
	m.eventPublished.Add(ctx, 1)
	return nil
}
