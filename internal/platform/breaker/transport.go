// Package breaker puts a circuit breaker in front of an upstream HTTP API.
package breaker

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"bookshelf/internal/logging"
	"bookshelf/internal/metrics"

	gobreaker "github.com/sony/gobreaker/v2"
)

// Settings tunes a Transport. Zero fields take the defaults of DefaultSettings.
type Settings struct {
	// FailureThreshold is the number of consecutive failures that opens the circuit.
	FailureThreshold uint32
	// Timeout is how long the circuit stays open before a probe is let through.
	Timeout time.Duration
	// Interval resets the failure counts while closed.
	Interval time.Duration
}

func DefaultSettings() Settings {
	return Settings{
		FailureThreshold: 5,
		Timeout:          30 * time.Second,
		Interval:         time.Minute,
	}
}

// statusError marks a response the breaker counts as a failure. It never
// leaves RoundTrip.
type statusError struct{ code int }

func (e *statusError) Error() string { return fmt.Sprintf("upstream status %d", e.code) }

// Transport is an http.RoundTripper that fails fast with gobreaker.ErrOpenState
// while the upstream keeps failing. Transport errors, 5xx and 429 responses
// count as failures; the responses themselves are still returned to the caller.
type Transport struct {
	name string
	next http.RoundTripper
	cb   *gobreaker.CircuitBreaker[*http.Response]
}

// NewTransport wraps next (http.DefaultTransport when nil).
func NewTransport(name string, next http.RoundTripper, s Settings) *Transport {
	if next == nil {
		next = http.DefaultTransport
	}
	def := DefaultSettings()
	if s.FailureThreshold == 0 {
		s.FailureThreshold = def.FailureThreshold
	}
	if s.Timeout <= 0 {
		s.Timeout = def.Timeout
	}
	if s.Interval <= 0 {
		s.Interval = def.Interval
	}

	metrics.CircuitBreakerState.WithLabelValues(name).Set(0)

	return &Transport{
		name: name,
		next: next,
		cb: gobreaker.NewCircuitBreaker[*http.Response](gobreaker.Settings{
			Name:        name,
			MaxRequests: 1,
			Interval:    s.Interval,
			Timeout:     s.Timeout,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				return counts.ConsecutiveFailures >= s.FailureThreshold
			},
			OnStateChange: func(name string, from, to gobreaker.State) {
				logging.Warn().Str("breaker", name).Str("from", from.String()).Str("to", to.String()).Msg("upstream circuit state changed")
				metrics.CircuitBreakerState.WithLabelValues(name).Set(stateValue(to))
			},
		}),
	}
}

// NewClient returns an http.Client with timeout whose requests go through a
// fresh Transport named name.
func NewClient(name string, timeout time.Duration) *http.Client {
	return &http.Client{
		Timeout:   timeout,
		Transport: NewTransport(name, nil, Settings{}),
	}
}

func (t *Transport) RoundTrip(req *http.Request) (*http.Response, error) {
	resp, err := t.cb.Execute(func() (*http.Response, error) {
		resp, err := t.next.RoundTrip(req)
		if err != nil {
			return nil, err
		}
		if resp.StatusCode >= http.StatusInternalServerError || resp.StatusCode == http.StatusTooManyRequests {
			return resp, &statusError{code: resp.StatusCode}
		}
		return resp, nil
	})

	var se *statusError
	switch {
	case err == nil:
		metrics.CircuitBreakerRequests.WithLabelValues(t.name, "success").Inc()
		return resp, nil
	case errors.As(err, &se):
		metrics.CircuitBreakerRequests.WithLabelValues(t.name, "failure").Inc()
		return resp, nil
	case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
		metrics.CircuitBreakerRequests.WithLabelValues(t.name, "rejected").Inc()
		return nil, fmt.Errorf("%s: %w", t.name, err)
	default:
		metrics.CircuitBreakerRequests.WithLabelValues(t.name, "failure").Inc()
		return nil, err
	}
}

// State reports the current breaker state.
func (t *Transport) State() gobreaker.State {
	return t.cb.State()
}

func stateValue(s gobreaker.State) float64 {
	switch s {
	case gobreaker.StateClosed:
		return 0
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	}
	return -1
}
