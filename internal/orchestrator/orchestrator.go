// Package orchestrator implements priority-ordered, circuit-broken STT
// provider failover with confidence gating.
package orchestrator

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/rbright/dictacore/internal/audio"
	"github.com/rbright/dictacore/internal/breaker"
	"github.com/rbright/dictacore/internal/stt"
)

// ProviderConfig binds one adapter into the failover ordering.
type ProviderConfig struct {
	ID                  string
	Priority            int
	Adapter             stt.Adapter
	MaxRetries          int
	TimeoutSecs         int
	ConfidenceThreshold float64
}

// AttemptFailure is one (provider, error) pair collected on the failure path.
type AttemptFailure struct {
	ProviderID string
	Err        error
}

// ErrNoProvidersAvailable is returned when the orchestrator has no
// providers configured.
var ErrNoProvidersAvailable = fmt.Errorf("no providers available")

// AllProvidersFailedError is returned when every configured provider was
// attempted (or skipped by its breaker) without success.
type AllProvidersFailedError struct {
	Failures []AttemptFailure
}

func (e *AllProvidersFailedError) Error() string {
	return "all providers failed"
}

// Orchestrator attempts providers in priority order, routing each attempt
// through a per-provider circuit breaker and retry policy.
type Orchestrator struct {
	mu sync.Mutex

	providers []ProviderConfig
	breakers  map[string]*breaker.CircuitBreaker
	metrics   *Metrics
}

// New builds an orchestrator from providers, sorted ascending by priority
// (ties broken by original insertion order).
func New(providers []ProviderConfig) *Orchestrator {
	sorted := make([]ProviderConfig, len(providers))
	copy(sorted, providers)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Priority < sorted[j].Priority
	})

	breakers := make(map[string]*breaker.CircuitBreaker, len(sorted))
	for _, p := range sorted {
		breakers[p.ID] = breaker.New()
	}

	return &Orchestrator{providers: sorted, breakers: breakers, metrics: NewMetrics()}
}

// Metrics returns the orchestrator's per-provider counters.
func (o *Orchestrator) Metrics() *Metrics {
	return o.metrics
}

// Transcribe attempts configured providers in priority order until one
// succeeds over its confidence threshold or all are exhausted. The whole
// call is serialized by the orchestrator's own lock (spec §5).
func (o *Orchestrator) Transcribe(ctx context.Context, buffer *audio.Buffer) (stt.Transcript, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	if len(o.providers) == 0 {
		return stt.Transcript{}, ErrNoProvidersAvailable
	}

	var failures []AttemptFailure

	for _, provider := range o.providers {
		cb := o.breakers[provider.ID]

		if !cb.IsRequestAllowed() {
			failures = append(failures, AttemptFailure{
				ProviderID: provider.ID,
				Err:        stt.ProviderError("Circuit breaker open"),
			})
			continue
		}

		retryPolicy := breaker.NewRetryPolicy(provider.MaxRetries)
		attempt := 0

		for {
			transcript, err := o.tryProvider(ctx, provider, buffer)
			if err == nil {
				if transcript.Confidence >= provider.ConfidenceThreshold {
					cb.RecordSuccess()
					o.metrics.RecordSuccess(provider.ID)
					return transcript, nil
				}

				cb.RecordFailure()
				o.metrics.RecordFailure(provider.ID)
				failures = append(failures, AttemptFailure{
					ProviderID: provider.ID,
					Err:        stt.ProviderError("Low confidence"),
				})
				break
			}

			if retryPolicy.ShouldRetry(attempt, err) {
				select {
				case <-time.After(retryPolicy.Delay(attempt)):
				case <-ctx.Done():
					return stt.Transcript{}, ctx.Err()
				}
				attempt++
				continue
			}

			cb.RecordFailure()
			o.metrics.RecordFailure(provider.ID)
			failures = append(failures, AttemptFailure{ProviderID: provider.ID, Err: err})
			break
		}
	}

	return stt.Transcript{}, &AllProvidersFailedError{Failures: failures}
}

func (o *Orchestrator) tryProvider(ctx context.Context, provider ProviderConfig, buffer *audio.Buffer) (stt.Transcript, error) {
	timeout := time.Duration(provider.TimeoutSecs) * time.Second
	attemptCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	type result struct {
		transcript stt.Transcript
		err        error
	}
	done := make(chan result, 1)

	go func() {
		transcript, err := provider.Adapter.Transcribe(attemptCtx, buffer)
		done <- result{transcript, err}
	}()

	select {
	case r := <-done:
		return r.transcript, r.err
	case <-attemptCtx.Done():
		return stt.Transcript{}, stt.TimeoutError()
	}
}
