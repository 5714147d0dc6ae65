package action

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/justedave0/obscopilot/workflow"
)

// defaultWebhookTimeout bounds a webhook call when the config does not.
const defaultWebhookTimeout = 30 * time.Second

// delay suspends the run for the configured number of seconds, honoring
// context cancellation, and records the delay used in a run variable.
func (r *Registry) delay(ctx context.Context, rc *workflow.Context, spec workflow.ActionSpec) error {
	duration := 1.0
	if v, ok := spec.Config["duration"]; ok {
		switch d := v.(type) {
		case string:
			parsed, err := strconv.ParseFloat(rc.Render(d), 64)
			if err != nil {
				return fmt.Errorf("action %s: invalid duration %q", spec.Kind, d)
			}
			duration = parsed
		default:
			f, isNum := configFloat(spec.Config, "duration")
			if !isNum {
				return fmt.Errorf("action %s: invalid duration %v", spec.Kind, v)
			}
			duration = f
		}
	}
	if duration < 0 {
		duration = 0
	}

	timer := time.NewTimer(time.Duration(duration * float64(time.Second)))
	defer timer.Stop()

	select {
	case <-timer.C:
	case <-ctx.Done():
		return fmt.Errorf("action %s: %w", spec.Kind, ctx.Err())
	}

	rc.SetVar("delay_duration", duration)

	return nil
}

// webhook sends an HTTP request to the configured URL. Header and
// string payload values are templated against the run context. The
// response status is recorded in the webhook_status run variable; any
// status >= 400 fails the action.
func (r *Registry) webhook(ctx context.Context, rc *workflow.Context, spec workflow.ActionSpec) error {
	rawURL, _ := configString(spec.Config, "url")
	url := rc.Render(rawURL)

	method := http.MethodPost
	if m, ok := configString(spec.Config, "method"); ok && m != "" {
		method = m
	}

	timeout := defaultWebhookTimeout
	if seconds, ok := configFloat(spec.Config, "timeout"); ok && seconds > 0 {
		timeout = time.Duration(seconds * float64(time.Second))
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	var body *bytes.Reader
	if payload, ok := spec.Config["payload"].(map[string]any); ok {
		rendered := make(map[string]any, len(payload))
		for k, v := range payload {
			if s, isString := v.(string); isString {
				rendered[k] = rc.Render(s)
			} else {
				rendered[k] = v
			}
		}
		encoded, err := json.Marshal(rendered)
		if err != nil {
			return fmt.Errorf("action %s: encode payload: %w", spec.Kind, err)
		}
		body = bytes.NewReader(encoded)
	} else {
		body = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return fmt.Errorf("action %s: %w", spec.Kind, err)
	}
	req.Header.Set("Content-Type", "application/json")
	if headers, ok := spec.Config["headers"].(map[string]any); ok {
		for k, v := range headers {
			if s, isString := v.(string); isString {
				req.Header.Set(k, rc.Render(s))
			}
		}
	}

	resp, err := r.http.Do(req)
	if err != nil {
		return fmt.Errorf("action %s: %w", spec.Kind, err)
	}
	defer resp.Body.Close()

	rc.SetVar("webhook_status", resp.StatusCode)

	if resp.StatusCode >= http.StatusBadRequest {
		return fmt.Errorf("action %s: %s returned status %d", spec.Kind, url, resp.StatusCode)
	}

	return nil
}

// setVariable stores a config value in the run's variables. String
// values are templated first.
func (r *Registry) setVariable(_ context.Context, rc *workflow.Context, spec workflow.ActionSpec) error {
	name, _ := configString(spec.Config, "name")

	value := spec.Config["value"]
	if s, ok := value.(string); ok {
		value = rc.Render(s)
	}
	rc.SetVar(name, value)

	return nil
}
