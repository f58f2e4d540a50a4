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

package poll

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	exaerrors "github.com/tombee/exa/pkg/errors"
)

// fakeClock advances only when the poll loop sleeps.
type fakeClock struct {
	now    time.Time
	sleeps []time.Duration
	// extra is added to the clock on every probe call, simulating probe latency.
	extra time.Duration
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) option() Option {
	return func(cfg *config) {
		cfg.now = func() time.Time { return c.now }
		cfg.sleep = func(ctx context.Context, d time.Duration) error {
			c.sleeps = append(c.sleeps, d)
			c.now = c.now.Add(d)
			return ctx.Err()
		}
	}
}

func TestPoll_DoneOnFirstCall(t *testing.T) {
	clock := newFakeClock()
	calls := 0
	probe := func(ctx context.Context) (Result[string], error) {
		calls++
		clock.now = clock.now.Add(time.Second)
		return Result[string]{Done: true, Value: "ready"}, nil
	}

	got, err := Poll(context.Background(), probe, WithMaxDuration(0), clock.option())
	require.NoError(t, err)
	assert.Equal(t, "ready", got)
	assert.Equal(t, 1, calls)
	assert.Empty(t, clock.sleeps)
}

func TestPoll_BackoffSequence(t *testing.T) {
	clock := newFakeClock()
	calls := 0
	probe := func(ctx context.Context) (Result[int], error) {
		calls++
		if calls == 7 {
			return Result[int]{Done: true, Value: calls}, nil
		}
		return Result[int]{Status: "running"}, nil
	}

	got, err := Poll(context.Background(), probe,
		WithInitialDelay(time.Second),
		WithMaxDelay(30*time.Second),
		WithMaxDuration(time.Hour),
		clock.option(),
	)
	require.NoError(t, err)
	assert.Equal(t, 7, got)

	want := []time.Duration{
		1 * time.Second,
		2 * time.Second,
		4 * time.Second,
		8 * time.Second,
		16 * time.Second,
		30 * time.Second,
	}
	assert.Equal(t, want, clock.sleeps)
}

func TestPoll_DelayStaysCapped(t *testing.T) {
	clock := newFakeClock()
	calls := 0
	probe := func(ctx context.Context) (Result[bool], error) {
		calls++
		return Result[bool]{Done: calls > 80}, nil
	}

	_, err := Poll(context.Background(), probe,
		WithInitialDelay(time.Second),
		WithMaxDelay(30*time.Second),
		WithMaxDuration(24*time.Hour),
		clock.option(),
	)
	require.NoError(t, err)
	require.Len(t, clock.sleeps, 80)
	for _, d := range clock.sleeps[5:] {
		assert.Equal(t, 30*time.Second, d)
	}
}

func TestPoll_Timeout(t *testing.T) {
	clock := newFakeClock()
	probe := func(ctx context.Context) (Result[string], error) {
		clock.now = clock.now.Add(clock.extra)
		return Result[string]{Status: "running"}, nil
	}

	_, err := Poll(context.Background(), probe,
		WithMaxDuration(10*time.Second),
		WithInitialDelay(time.Second),
		WithMaxDelay(30*time.Second),
		WithOperation("webset ws_1"),
		clock.option(),
	)

	var timeoutErr *exaerrors.PollTimeoutError
	require.ErrorAs(t, err, &timeoutErr)
	assert.Equal(t, "webset ws_1", timeoutErr.Operation)
	assert.Equal(t, "running", timeoutErr.LastStatus)
	assert.Greater(t, timeoutErr.Elapsed, 10*time.Second)
	assert.Contains(t, err.Error(), "15.00 seconds")

	// 1+2+4 = 7s elapsed is within the deadline, 1+2+4+8 = 15s is not.
	assert.Equal(t, []time.Duration{time.Second, 2 * time.Second, 4 * time.Second, 8 * time.Second}, clock.sleeps)
}

func TestPoll_SleepsBeforeFirstTimeoutCheck(t *testing.T) {
	clock := newFakeClock()
	probe := func(ctx context.Context) (Result[string], error) {
		return Result[string]{}, nil
	}

	_, err := Poll(context.Background(), probe,
		WithMaxDuration(500*time.Millisecond),
		WithInitialDelay(time.Second),
		clock.option(),
	)
	require.Error(t, err)
	require.NotEmpty(t, clock.sleeps)
	assert.Equal(t, time.Second, clock.sleeps[0])
}

func TestPoll_ProbeError(t *testing.T) {
	clock := newFakeClock()
	boom := errors.New("boom")
	calls := 0
	probe := func(ctx context.Context) (Result[string], error) {
		calls++
		if calls == 2 {
			return Result[string]{}, boom
		}
		return Result[string]{}, nil
	}

	_, err := Poll(context.Background(), probe, clock.option())
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 2, calls)
}

func TestPoll_ContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	probe := func(ctx context.Context) (Result[string], error) {
		return Result[string]{}, nil
	}

	_, err := Poll(ctx, probe, WithInitialDelay(time.Hour))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestPoll_RealSleep(t *testing.T) {
	calls := 0
	probe := func(ctx context.Context) (Result[string], error) {
		calls++
		return Result[string]{Done: calls == 3, Value: "ok"}, nil
	}

	start := time.Now()
	got, err := Poll(context.Background(), probe,
		WithInitialDelay(5*time.Millisecond),
		WithMaxDelay(10*time.Millisecond),
	)
	require.NoError(t, err)
	assert.Equal(t, "ok", got)
	assert.GreaterOrEqual(t, time.Since(start), 15*time.Millisecond)
}

func TestPoll_StatusFunc(t *testing.T) {
	clock := newFakeClock()
	statuses := []string{"pending", "running", "running"}
	calls := 0
	probe := func(ctx context.Context) (Result[int], error) {
		if calls == len(statuses) {
			return Result[int]{Done: true, Value: calls, Status: "completed"}, nil
		}
		s := statuses[calls]
		calls++
		return Result[int]{Status: s}, nil
	}

	var seen []string
	_, err := Poll(context.Background(), probe,
		WithStatusFunc(func(status string) { seen = append(seen, status) }),
		clock.option(),
	)
	require.NoError(t, err)
	assert.Equal(t, statuses, seen, "only unfinished probes are reported")
}
