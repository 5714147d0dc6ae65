package engine

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	obscopilot "github.com/justedave0/obscopilot"
	"github.com/justedave0/obscopilot/action"
	"github.com/justedave0/obscopilot/backoff"
	"github.com/justedave0/obscopilot/event"
	"github.com/justedave0/obscopilot/ext"
	"github.com/justedave0/obscopilot/id"
	mw "github.com/justedave0/obscopilot/middleware"
	"github.com/justedave0/obscopilot/observability"
	"github.com/justedave0/obscopilot/workflow"
)

// scopeName is the instrumentation scope used for engine-built middleware.
const scopeName = "github.com/justedave0/obscopilot"

// Engine orchestrates workflows: it owns the event bus, the clock, the
// armed workflow registry, and the run execution path. Use Build() to
// create one from a Copilot.
type Engine struct {
	cp     *obscopilot.Copilot
	logger *slog.Logger
	config obscopilot.Config

	store      workflow.Store
	bus        *event.Bus
	clock      *event.Clock
	actions    *action.Registry
	extensions *ext.Registry
	bo         backoff.Strategy
	chain      mw.Middleware

	// Option-collected state, consumed by Build.
	mws        []mw.Middleware
	chat       action.ChatSender
	obs        action.Broadcaster
	ai         action.Generator
	httpClient *http.Client

	// OpenTelemetry providers (optional; nil means use global).
	tracerProvider trace.TracerProvider
	meterProvider  metric.MeterProvider

	mu        sync.RWMutex
	workflows map[id.WorkflowID]*entry
	subs      map[event.Kind]*kindSub
	closed    bool

	// runWG tracks in-flight runs for graceful drain.
	runWG sync.WaitGroup
}

// Option configures an Engine.
type Option func(*Engine)

// WithChatSender injects the chat capability used by chat actions.
func WithChatSender(c action.ChatSender) Option {
	return func(eng *Engine) { eng.chat = c }
}

// WithBroadcaster injects the broadcast-control capability used by
// scene, source, streaming, and recording actions.
func WithBroadcaster(b action.Broadcaster) Option {
	return func(eng *Engine) { eng.obs = b }
}

// WithGenerator injects the text-generation capability.
func WithGenerator(g action.Generator) Option {
	return func(eng *Engine) { eng.ai = g }
}

// WithHTTPClient sets the client used by webhook actions.
func WithHTTPClient(c *http.Client) Option {
	return func(eng *Engine) { eng.httpClient = c }
}

// WithExtension registers an extension with the engine.
func WithExtension(e ext.Extension) Option {
	return func(eng *Engine) { eng.extensions.Register(e) }
}

// WithMiddleware appends middleware to the engine's per-action chain,
// after the default stack.
func WithMiddleware(m mw.Middleware) Option {
	return func(eng *Engine) { eng.mws = append(eng.mws, m) }
}

// WithBackoff sets the delay strategy between action retry attempts.
// If not set, backoff.DefaultStrategy() (exponential with jitter) is used.
func WithBackoff(b backoff.Strategy) Option {
	return func(eng *Engine) { eng.bo = b }
}

// WithTracerProvider sets a custom OTel TracerProvider for the engine.
// When set, the tracing middleware uses this provider instead of the
// global one.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(eng *Engine) { eng.tracerProvider = tp }
}

// WithMeterProvider sets a custom OTel MeterProvider for the engine.
// When set, both the metrics middleware and the observability extension
// use this provider instead of the global one.
func WithMeterProvider(mp metric.MeterProvider) Option {
	return func(eng *Engine) { eng.meterProvider = mp }
}

// Build creates an Engine from a Copilot and wires it back in.
// The Copilot's store must implement workflow.Store.
func Build(cp *obscopilot.Copilot, opts ...Option) (*Engine, error) {
	logger := cp.Logger()
	store := cp.Store()

	if store == nil {
		return nil, obscopilot.ErrNoStore
	}

	ws, ok := store.(workflow.Store)
	if !ok {
		return nil, fmt.Errorf("obscopilot: store does not implement workflow.Store")
	}

	eng := &Engine{
		cp:         cp,
		logger:     logger,
		config:     cp.Config(),
		store:      ws,
		extensions: ext.NewRegistry(logger),
		workflows:  make(map[id.WorkflowID]*entry),
		subs:       make(map[event.Kind]*kindSub),
	}

	for _, opt := range opts {
		opt(eng)
	}

	// Default backoff strategy if none provided.
	if eng.bo == nil {
		eng.bo = backoff.DefaultStrategy()
	}

	eng.bus = event.NewBus(logger)
	eng.clock = event.NewClock(eng.bus, eng.config.TickInterval, logger)

	// Build the action registry with the injected capabilities.
	actOpts := []action.Option{
		action.WithLogger(logger),
		action.WithBus(eng.bus),
	}
	if eng.chat != nil {
		actOpts = append(actOpts, action.WithChatSender(eng.chat))
	}
	if eng.obs != nil {
		actOpts = append(actOpts, action.WithBroadcaster(eng.obs))
	}
	if eng.ai != nil {
		actOpts = append(actOpts, action.WithGenerator(eng.ai))
	}
	if eng.httpClient != nil {
		actOpts = append(actOpts, action.WithHTTPClient(eng.httpClient))
	}
	eng.actions = action.NewRegistry(actOpts...)

	// Build tracing middleware (custom provider or global).
	var tracingMw mw.Middleware
	if eng.tracerProvider != nil {
		tracingMw = mw.TracingWithTracer(eng.tracerProvider.Tracer(scopeName))
	} else {
		tracingMw = mw.Tracing()
	}

	// Build metrics middleware (custom provider or global).
	var metricsMw mw.Middleware
	if eng.meterProvider != nil {
		metricsMw = mw.MetricsWithMeter(eng.meterProvider.Meter(scopeName))
	} else {
		metricsMw = mw.Metrics()
	}

	// Register the observability metrics extension.
	var obsExt *observability.MetricsExtension
	if eng.meterProvider != nil {
		meter := eng.meterProvider.Meter(scopeName + "/observability")
		obsExt = observability.NewMetricsExtensionWithMeter(meter)
	} else {
		obsExt = observability.NewMetricsExtension()
	}
	eng.extensions.Register(obsExt)

	// Default middleware stack: recover → tracing → metrics → logging → timeout.
	defaultMws := []mw.Middleware{
		mw.Recover(logger),
		tracingMw,
		metricsMw,
		mw.Logging(logger),
		mw.Timeout(logger),
	}
	allMws := make([]mw.Middleware, 0, len(defaultMws)+len(eng.mws))
	allMws = append(allMws, defaultMws...)
	allMws = append(allMws, eng.mws...)
	eng.chain = mw.Chain(allMws...)

	// Wire back into the Copilot.
	cp.SetEngine(eng)
	cp.SetExtensions(eng.extensions)

	return eng, nil
}

// Start loads persisted workflows, arms them, and starts the clock.
// Called by Copilot.Start after store migration.
func (eng *Engine) Start(ctx context.Context) error {
	wfs, err := eng.store.ListWorkflows(ctx)
	if err != nil {
		return fmt.Errorf("load workflows: %w", err)
	}

	for _, wf := range wfs {
		if armErr := eng.arm(wf); armErr != nil {
			// A persisted workflow with invalid config must not take the
			// rest of the set down with it.
			eng.logger.Warn("skipping workflow with invalid config",
				slog.String("workflow_id", wf.ID.String()),
				slog.String("workflow", wf.Name),
				slog.String("error", armErr.Error()),
			)
			continue
		}

		if pubErr := eng.bus.Publish(event.New(event.WorkflowLoaded, map[string]any{
			"workflow_id":   wf.ID.String(),
			"workflow_name": wf.Name,
		})); pubErr != nil {
			return pubErr
		}
	}

	eng.clock.Start()

	eng.logger.Info("engine started",
		slog.Int("workflows", len(wfs)),
		slog.Duration("tick_interval", eng.config.TickInterval),
	)

	return nil
}

// Close gracefully shuts down the engine: no new runs start, the clock
// stops, in-flight runs drain, and the bus closes. The wait is bounded
// by the context deadline, falling back to the configured shutdown
// timeout when the context has none.
func (eng *Engine) Close(ctx context.Context) error {
	eng.mu.Lock()
	if eng.closed {
		eng.mu.Unlock()
		return obscopilot.ErrEngineClosed
	}
	eng.closed = true
	eng.mu.Unlock()

	if _, hasDeadline := ctx.Deadline(); !hasDeadline && eng.config.ShutdownTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, eng.config.ShutdownTimeout)
		defer cancel()
	}

	eng.clock.Stop()

	// Drain in-flight runs.
	done := make(chan struct{})
	go func() {
		eng.runWG.Wait()
		close(done)
	}()

	var drainErr error
	select {
	case <-done:
	case <-ctx.Done():
		drainErr = fmt.Errorf("obscopilot: shutdown drain: %w", ctx.Err())
	}

	if busErr := eng.bus.Close(ctx); busErr != nil && drainErr == nil {
		drainErr = busErr
	}

	eng.logger.Info("engine stopped")

	return drainErr
}

// Fire publishes a manual trigger event. With a non-nil workflow ID the
// event targets only that workflow; otherwise every workflow with a
// manual trigger evaluates it. Extra payload fields (e.g. trigger_id)
// pass through to the matchers and run context.
func (eng *Engine) Fire(wfID id.WorkflowID, payload map[string]any) error {
	p := make(map[string]any, len(payload)+1)
	for k, v := range payload {
		p[k] = v
	}
	if !wfID.IsNil() {
		p["workflow_id"] = wfID.String()
	}

	return eng.bus.Publish(event.New(event.ManualTrigger, p))
}

// Bus returns the engine's event bus. External collaborators publish
// platform events through it.
func (eng *Engine) Bus() *event.Bus { return eng.bus }

// Extensions returns the extension registry.
func (eng *Engine) Extensions() *ext.Registry { return eng.extensions }

// Actions returns the action registry.
func (eng *Engine) Actions() *action.Registry { return eng.actions }

// Store returns the workflow store.
func (eng *Engine) Store() workflow.Store { return eng.store }

// GetRun retrieves one run record.
func (eng *Engine) GetRun(ctx context.Context, runID id.RunID) (*workflow.Run, error) {
	return eng.store.GetRun(ctx, runID)
}

// ListRuns returns run history matching opts, newest first.
func (eng *Engine) ListRuns(ctx context.Context, opts workflow.ListRunOpts) ([]*workflow.Run, error) {
	return eng.store.ListRuns(ctx, opts)
}

// actionName returns the action's display name, falling back to its kind.
func actionName(spec workflow.ActionSpec) string {
	if spec.Name != "" {
		return spec.Name
	}
	return spec.Kind
}

// sleepCtx waits for d or until ctx is done, whichever comes first.
func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
