package obscopilot

import (
	"context"
	"log/slog"
	"time"
)

// Option configures a Copilot.
type Option func(*Copilot) error

// Storer is the minimal store interface held by the Copilot. It covers
// lifecycle operations only. The full interface (workflow.Store) is used
// in subsystem layers that don't create import cycles; implementations
// satisfy both.
type Storer interface {
	Migrate(ctx context.Context) error
	Ping(ctx context.Context) error
	Close() error
}

// engineRunner is an internal interface for engine lifecycle.
type engineRunner interface {
	Start(ctx context.Context) error
	Close(ctx context.Context) error
}

// extensionEmitter is an internal interface for extension lifecycle events.
type extensionEmitter interface {
	EmitShutdown(ctx context.Context)
}

// Copilot is the central coordinator: it owns configuration, logging,
// and the store, and drives the engine lifecycle.
//
// Create one with New() and functional options, then wire the subsystems
// with engine.Build. The Copilot holds the engine through an internal
// interface to avoid an import cycle with the engine package.
type Copilot struct {
	config     Config
	logger     *slog.Logger
	store      Storer
	engine     engineRunner
	extensions extensionEmitter

	// started tracks whether Start has been called.
	started bool
}

// New creates a new Copilot with the given options.
func New(opts ...Option) (*Copilot, error) {
	c := &Copilot{
		config: DefaultConfig(),
		logger: slog.Default(),
	}
	for _, opt := range opts {
		if err := opt(c); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// Logger returns the copilot's logger.
func (c *Copilot) Logger() *slog.Logger { return c.logger }

// Store returns the copilot's store.
func (c *Copilot) Store() Storer { return c.store }

// Config returns a copy of the copilot's configuration.
func (c *Copilot) Config() Config { return c.config }

// SetEngine attaches the engine (called by engine.Build).
func (c *Copilot) SetEngine(e engineRunner) { c.engine = e }

// SetExtensions attaches the extension emitter (called by engine.Build).
func (c *Copilot) SetExtensions(e extensionEmitter) { c.extensions = e }

// Start migrates the store, loads persisted workflows, and begins event
// processing.
func (c *Copilot) Start(ctx context.Context) error {
	if c.engine == nil {
		return ErrNoEngine
	}
	if c.store != nil {
		if err := c.store.Migrate(ctx); err != nil {
			return err
		}
	}
	if err := c.engine.Start(ctx); err != nil {
		return err
	}
	c.started = true
	return nil
}

// Stop gracefully shuts down the copilot: the clock stops, the bus stops
// accepting events, in-flight runs drain, and the store closes.
func (c *Copilot) Stop(ctx context.Context) error {
	if c.engine != nil && c.started {
		if err := c.engine.Close(ctx); err != nil {
			c.logger.Error("engine close error", "error", err)
		}
	}
	if c.extensions != nil {
		c.extensions.EmitShutdown(ctx)
	}
	if c.store != nil {
		return c.store.Close()
	}
	return nil
}

// WithLogger sets the structured logger for the copilot.
func WithLogger(l *slog.Logger) Option {
	return func(c *Copilot) error {
		c.logger = l
		return nil
	}
}

// WithStore sets the persistence backend for the copilot.
// The store must implement Storer at minimum; typically it will also
// implement workflow.Store.
func WithStore(s Storer) Option {
	return func(c *Copilot) error {
		c.store = s
		return nil
	}
}

// WithTickInterval sets how often the internal clock ticks.
func WithTickInterval(d time.Duration) Option {
	return func(c *Copilot) error {
		c.config.TickInterval = d
		return nil
	}
}

// WithRunTimeout sets the default umbrella timeout for workflow runs.
func WithRunTimeout(d time.Duration) Option {
	return func(c *Copilot) error {
		c.config.RunTimeout = d
		return nil
	}
}

// WithShutdownTimeout sets the maximum graceful shutdown wait.
func WithShutdownTimeout(d time.Duration) Option {
	return func(c *Copilot) error {
		c.config.ShutdownTimeout = d
		return nil
	}
}
