// Copyright 2025 Tom Barlow
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

// Package poll waits for long-running remote operations by repeatedly
// invoking a caller-supplied probe with exponential backoff.
//
// Poll blocks the calling goroutine for its whole duration. Run it in its own
// goroutine when the caller must stay responsive; cancel the context to stop
// it early.
package poll

import (
	"context"
	"log/slog"
	"time"

	"github.com/tombee/exa/pkg/errors"
)

// Default timings.
const (
	DefaultMaxDuration  = 300 * time.Second
	DefaultInitialDelay = 1 * time.Second
	DefaultMaxDelay     = 30 * time.Second
)

// Result is what a probe reports on each invocation. Value is only
// meaningful when Done is true.
type Result[T any] struct {
	Done   bool
	Value  T
	Status string
}

// Probe checks whether the operation has finished.
type Probe[T any] func(ctx context.Context) (Result[T], error)

type config struct {
	maxDuration  time.Duration
	initialDelay time.Duration
	maxDelay     time.Duration
	operation    string
	logger       *slog.Logger
	onStatus     func(status string)

	now   func() time.Time
	sleep func(ctx context.Context, d time.Duration) error
}

// Option configures Poll.
type Option func(*config)

// WithMaxDuration sets the wall-clock deadline. Zero is a valid deadline: a
// probe that is done on its first call still succeeds.
func WithMaxDuration(d time.Duration) Option {
	return func(c *config) { c.maxDuration = d }
}

// WithInitialDelay sets the first sleep between probes.
func WithInitialDelay(d time.Duration) Option {
	return func(c *config) { c.initialDelay = d }
}

// WithMaxDelay caps each individual sleep.
func WithMaxDelay(d time.Duration) Option {
	return func(c *config) { c.maxDelay = d }
}

// WithOperation names the operation in timeout errors and logs.
func WithOperation(name string) Option {
	return func(c *config) { c.operation = name }
}

// WithLogger logs each wait at debug level.
func WithLogger(logger *slog.Logger) Option {
	return func(c *config) { c.logger = logger }
}

// WithStatusFunc calls fn with the status of every unfinished probe.
func WithStatusFunc(fn func(status string)) Option {
	return func(c *config) { c.onStatus = fn }
}

func defaultConfig() config {
	return config{
		maxDuration:  DefaultMaxDuration,
		initialDelay: DefaultInitialDelay,
		maxDelay:     DefaultMaxDelay,
		now:          time.Now,
		sleep:        sleepContext,
	}
}

// Poll invokes probe until it reports Done, returning its Value.
//
// Completion is checked before the deadline, so a probe that is done on its
// first call never waits. After each unfinished probe the elapsed time is
// compared with the deadline; once it is exceeded Poll returns a
// *errors.PollTimeoutError. Otherwise it sleeps min(delay, maxDelay) and
// doubles delay. There is no attempt limit. Probe errors are returned as is.
func Poll[T any](ctx context.Context, probe Probe[T], opts ...Option) (T, error) {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	var zero T
	start := cfg.now()
	delay := cfg.initialDelay

	for {
		res, err := probe(ctx)
		if err != nil {
			return zero, err
		}
		if res.Done {
			return res.Value, nil
		}

		elapsed := cfg.now().Sub(start)
		if elapsed > cfg.maxDuration {
			return zero, &errors.PollTimeoutError{
				Operation:   cfg.operation,
				Elapsed:     elapsed,
				MaxDuration: cfg.maxDuration,
				LastStatus:  res.Status,
			}
		}

		if cfg.onStatus != nil {
			cfg.onStatus(res.Status)
		}

		wait := min(delay, cfg.maxDelay)
		if cfg.logger != nil {
			cfg.logger.Debug("poll waiting",
				"operation", cfg.operation,
				"status", res.Status,
				"delay_ms", wait.Milliseconds(),
				"elapsed_ms", elapsed.Milliseconds(),
			)
		}
		if err := cfg.sleep(ctx, wait); err != nil {
			return zero, err
		}

		// Once delay passes maxDelay further doubling cannot change the sleep,
		// so stop before it overflows.
		if delay <= cfg.maxDelay {
			delay *= 2
		}
	}
}

// sleepContext waits for d or until ctx is done.
func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
