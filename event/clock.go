package event

import (
	"log/slog"
	"sync"
	"time"
)

// Clock publishes ClockTick events at a fixed interval. Interval and
// schedule triggers are driven entirely by these ticks, so tests can
// replace the Clock by publishing synthetic ticks directly.
type Clock struct {
	bus      *Bus
	interval time.Duration
	logger   *slog.Logger

	stopOnce sync.Once
	stopCh   chan struct{}
	wg       sync.WaitGroup
}

// NewClock creates a clock that ticks on bus every interval.
// If logger is nil, slog.Default() is used.
func NewClock(bus *Bus, interval time.Duration, logger *slog.Logger) *Clock {
	if logger == nil {
		logger = slog.Default()
	}

	return &Clock{
		bus:      bus,
		interval: interval,
		logger:   logger,
		stopCh:   make(chan struct{}),
	}
}

// Start launches the tick goroutine.
func (c *Clock) Start() {
	c.wg.Add(1)
	go c.tickLoop()
	c.logger.Info("clock started", slog.Duration("interval", c.interval))
}

// Stop halts the tick goroutine and waits for it to exit. Safe to call
// more than once.
func (c *Clock) Stop() {
	c.stopOnce.Do(func() { close(c.stopCh) })
	c.wg.Wait()
}

func (c *Clock) tickLoop() {
	defer c.wg.Done()

	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	var seq uint64
	for {
		select {
		case <-c.stopCh:
			return
		case now := <-ticker.C:
			seq++
			ev := At(ClockTick, map[string]any{"sequence": seq}, now.UTC())
			if err := c.bus.Publish(ev); err != nil {
				// Bus closed underneath us; nothing more to do.
				return
			}
		}
	}
}
