package trigger

import (
	"fmt"
	"time"

	cronlib "github.com/robfig/cron/v3"

	"github.com/justedave0/obscopilot/event"
	"github.com/justedave0/obscopilot/workflow"
)

// cronParser supports standard 5-field cron and descriptors like
// "@every 30s" or "@hourly".
var cronParser = cronlib.NewParser(
	cronlib.Minute | cronlib.Hour | cronlib.Dom | cronlib.Month | cronlib.Dow | cronlib.Descriptor,
)

// ParseSchedule parses a cron expression. Exported so registration-time
// validation and the schedule matcher share one parser.
func ParseSchedule(expr string) (cronlib.Schedule, error) {
	return cronParser.Parse(expr)
}

// interval fires once every configured number of seconds, driven by
// clock ticks. The first observed tick arms the interval without firing;
// each fire re-baselines on the tick that caused it.
//
// Config:
//
//	interval  required, seconds, > 0
//	repeat    optional, default true; when false the matcher fires once
//	          and then never again
type interval struct {
	every  time.Duration
	repeat bool

	lastFired time.Time
	fired     bool
}

var _ Matcher = (*interval)(nil)

func newInterval(spec workflow.TriggerSpec) (Matcher, error) {
	seconds, ok := configFloat(spec.Config, "interval")
	if !ok {
		return nil, fmt.Errorf("trigger interval: missing interval")
	}
	if seconds <= 0 {
		return nil, fmt.Errorf("trigger interval: interval must be greater than 0, got %v", seconds)
	}

	repeat := true
	if v, exists := spec.Config["repeat"]; exists {
		b, isBool := v.(bool)
		if !isBool {
			return nil, fmt.Errorf("trigger interval: repeat must be a boolean")
		}
		repeat = b
	}

	return &interval{
		every:  time.Duration(seconds * float64(time.Second)),
		repeat: repeat,
	}, nil
}

func (i *interval) Match(ev event.Event) (bool, error) {
	if ev.Kind != event.ClockTick {
		return false, nil
	}

	now := ev.Timestamp

	if i.lastFired.IsZero() {
		i.lastFired = now

		return false, nil
	}

	if i.fired && !i.repeat {
		return false, nil
	}

	if now.Sub(i.lastFired) >= i.every {
		i.lastFired = now
		i.fired = true

		return true, nil
	}

	return false, nil
}

// schedule fires when a clock tick crosses the next cron occurrence.
// The first observed tick anchors the schedule; missed occurrences
// between ticks collapse into a single fire.
//
// Config:
//
//	cron  required, 5-field cron expression or descriptor
type schedule struct {
	sched cronlib.Schedule

	next time.Time
}

var _ Matcher = (*schedule)(nil)

func newSchedule(spec workflow.TriggerSpec) (Matcher, error) {
	expr, ok := configString(spec.Config, "cron")
	if !ok || expr == "" {
		return nil, fmt.Errorf("trigger schedule: missing cron")
	}

	sched, err := ParseSchedule(expr)
	if err != nil {
		return nil, fmt.Errorf("trigger schedule: invalid cron expression %q: %w", expr, err)
	}

	return &schedule{sched: sched}, nil
}

func (s *schedule) Match(ev event.Event) (bool, error) {
	if ev.Kind != event.ClockTick {
		return false, nil
	}

	now := ev.Timestamp

	if s.next.IsZero() {
		s.next = s.sched.Next(now)

		return false, nil
	}

	if !now.Before(s.next) {
		s.next = s.sched.Next(now)

		return true, nil
	}

	return false, nil
}
