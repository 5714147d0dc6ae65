package obscopilot

import "time"

// Config holds configuration for the Copilot.
type Config struct {
	// TickInterval is how often the internal clock publishes tick events
	// that drive interval and schedule triggers.
	TickInterval time.Duration

	// RunTimeout is the default umbrella timeout applied to every
	// workflow run. Zero means no umbrella timeout; workflows may
	// override it individually.
	RunTimeout time.Duration

	// ShutdownTimeout is the maximum time to wait for in-flight runs
	// and bus deliveries to drain during Stop.
	ShutdownTimeout time.Duration
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		TickInterval:    1 * time.Second,
		RunTimeout:      0,
		ShutdownTimeout: 30 * time.Second,
	}
}
