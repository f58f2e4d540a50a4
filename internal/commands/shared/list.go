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

package shared

import (
	"context"
	"time"

	"github.com/spf13/pflag"

	"github.com/tombee/exa/pkg/exa"
	"github.com/tombee/exa/pkg/poll"
)

// ListFlags are the pagination flags shared by list commands.
type ListFlags struct {
	Cursor string
	Limit  int
	All    bool
}

// AddListFlags registers --cursor, --limit and --all on fs.
func AddListFlags(fs *pflag.FlagSet, f *ListFlags) {
	fs.StringVar(&f.Cursor, "cursor", "", "Resume listing from this cursor")
	fs.IntVar(&f.Limit, "limit", 25, "Items per page")
	fs.BoolVar(&f.All, "all", false, "Follow cursors until every item is listed")
}

// Params converts the flags to list parameters.
func (f ListFlags) Params() (exa.ListParams, error) {
	if f.Limit < 1 {
		return exa.ListParams{}, NewUsageError("--limit must be at least 1", nil)
	}
	return exa.ListParams{Cursor: f.Cursor, Limit: f.Limit}, nil
}

// List fetches one page, or every page when --all is set. With --all the
// returned page has no cursor.
func List[T any](ctx context.Context, f ListFlags, fetch func(context.Context, exa.ListParams) (*exa.Page[T], error)) (*exa.Page[T], error) {
	params, err := f.Params()
	if err != nil {
		return nil, err
	}
	if !f.All {
		return fetch(ctx, params)
	}

	all := &exa.Page[T]{Data: []T{}}
	for item, err := range exa.Paginate(ctx, params, fetch) {
		if err != nil {
			return nil, err
		}
		all.Data = append(all.Data, item)
	}
	return all, nil
}

// WaitFlags configure polling for wait commands.
type WaitFlags struct {
	MaxWait  time.Duration
	Interval time.Duration
}

// AddWaitFlags registers --max-wait and --poll-interval on fs.
func AddWaitFlags(fs *pflag.FlagSet, f *WaitFlags, defaultMax time.Duration) {
	fs.DurationVar(&f.MaxWait, "max-wait", defaultMax, "Give up waiting after this long")
	fs.DurationVar(&f.Interval, "poll-interval", poll.DefaultInitialDelay, "Initial delay between status checks (doubles up to 30s)")
}

// Wait runs a polling call with a progress line on stderr showing the last
// remote status reported by the probe.
func Wait[T any](ctx context.Context, rt *Runtime, label string, f WaitFlags, call func(context.Context, ...poll.Option) (T, error)) (T, error) {
	if f.MaxWait < 0 || f.Interval <= 0 {
		var zero T
		return zero, NewUsageError("--max-wait must be >= 0 and --poll-interval > 0", nil)
	}

	progress := NewProgress(label)
	progress.Start()
	defer progress.Stop()

	return call(ctx,
		poll.WithMaxDuration(f.MaxWait),
		poll.WithInitialDelay(f.Interval),
		poll.WithLogger(rt.Logger),
		poll.WithStatusFunc(progress.Observe),
	)
}
