// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package ingest

import (
	"context"
	"errors"
	"time"

	"github.com/sony/gobreaker"
)

// ErrSourceUnavailable is returned when a source's circuit breaker is open
// and fetches are rejected without touching the source.
var ErrSourceUnavailable = errors.New("source circuit breaker is open")

// BreakerConfig holds circuit breaker settings applied per source.
type BreakerConfig struct {
	// MaxFailures is the number of consecutive failures required to trip.
	// Default: 3
	MaxFailures uint32

	// Timeout is the duration the circuit stays open before transitioning
	// to half-open.
	// Default: 30 seconds
	Timeout time.Duration

	// HalfOpenMaxSuccesses is the number of consecutive successes required
	// in half-open state to close the circuit again.
	// Default: 2
	HalfOpenMaxSuccesses uint32
}

// DefaultBreakerConfig returns the default per-source breaker settings.
func DefaultBreakerConfig() BreakerConfig {
	return BreakerConfig{
		MaxFailures:          3,
		Timeout:              30 * time.Second,
		HalfOpenMaxSuccesses: 2,
	}
}

// sourceBreaker protects one source's Fetch calls from cascading failures.
// A flapping source trips its own breaker; the other sources keep serving.
type sourceBreaker struct {
	breaker *gobreaker.CircuitBreaker
}

func newSourceBreaker(name string, config BreakerConfig) *sourceBreaker {
	return &sourceBreaker{
		breaker: gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:        name,
			MaxRequests: config.HalfOpenMaxSuccesses,
			Interval:    0, // Don't clear counts periodically
			Timeout:     config.Timeout,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				return counts.ConsecutiveFailures >= config.MaxFailures
			},
		}),
	}
}

// fetch runs a source fetch through the breaker.
func (sb *sourceBreaker) fetch(ctx context.Context, fn func() ([]RawRecord, error)) ([]RawRecord, error) {
	result, err := sb.breaker.Execute(func() (interface{}, error) {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}
		return fn()
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return nil, ErrSourceUnavailable
		}
		return nil, err
	}

	records, _ := result.([]RawRecord)
	return records, nil
}

// state returns the breaker state name: "closed", "open" or "half-open".
func (sb *sourceBreaker) state() string {
	switch sb.breaker.State() {
	case gobreaker.StateClosed:
		return "closed"
	case gobreaker.StateOpen:
		return "open"
	case gobreaker.StateHalfOpen:
		return "half-open"
	default:
		return "unknown"
	}
}
