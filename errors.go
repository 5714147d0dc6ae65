package obscopilot

import (
	"errors"
	"fmt"
)

var (
	// Store errors.
	ErrNoStore         = errors.New("obscopilot: no store configured")
	ErrStoreClosed     = errors.New("obscopilot: store closed")
	ErrMigrationFailed = errors.New("obscopilot: migration failed")

	// Not found errors.
	ErrWorkflowNotFound = errors.New("obscopilot: workflow not found")
	ErrRunNotFound      = errors.New("obscopilot: run not found")

	// Engine state errors.
	ErrEngineClosed   = errors.New("obscopilot: engine closed")
	ErrNoEngine       = errors.New("obscopilot: no engine attached")
	ErrBusClosed      = errors.New("obscopilot: event bus closed")
	ErrNotRegistered  = errors.New("obscopilot: workflow not registered")
	ErrWorkflowExists = errors.New("obscopilot: workflow already registered")
)

// ConfigError reports an invalid trigger, condition, or action
// configuration discovered at registration time. The workflow carrying
// the bad spec is never armed.
type ConfigError struct {
	// Component is "trigger", "condition", or "action".
	Component string
	// Kind is the variant whose config failed validation.
	Kind string
	// Index is the position of the spec in its workflow list.
	Index int
	// Reason describes what is wrong with the config.
	Reason string
}

// Error implements the error interface.
func (e *ConfigError) Error() string {
	return fmt.Sprintf("obscopilot: invalid %s config at index %d (kind %q): %s",
		e.Component, e.Index, e.Kind, e.Reason)
}

// IsConfigError reports whether err is (or wraps) a ConfigError.
func IsConfigError(err error) bool {
	var ce *ConfigError
	return errors.As(err, &ce)
}
