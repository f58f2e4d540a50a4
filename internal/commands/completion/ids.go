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

package completion

import (
	"context"
	"sync"
	"time"

	"github.com/spf13/cobra"

	"github.com/tombee/exa/internal/commands/shared"
	"github.com/tombee/exa/pkg/exa"
)

const (
	idCacheTTL    = 2 * time.Second
	lookupTimeout = 1500 * time.Millisecond
	lookupLimit   = 25
)

// idInfo is one completion candidate.
type idInfo struct {
	id          string
	description string
}

type idCacheEntry struct {
	ids       []idInfo
	expiresAt time.Time
}

var (
	idCache   = map[string]*idCacheEntry{}
	idCacheMu sync.RWMutex

	// now is replaced in tests.
	now = time.Now
)

// CompleteWebsetIDs completes a webset ID as the first argument, described
// by title and status.
func CompleteWebsetIDs(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	return completeIDs(args, "websets", func(ctx context.Context, c *exa.Client) ([]idInfo, error) {
		page, err := c.Websets.List(ctx, exa.ListParams{Limit: lookupLimit})
		if err != nil {
			return nil, err
		}
		ids := make([]idInfo, 0, len(page.Data))
		for _, ws := range page.Data {
			ids = append(ids, idInfo{id: ws.ID, description: describe(ws.Title, ws.Status)})
		}
		return ids, nil
	})
}

// CompleteResearchIDs completes a research task ID as the first argument.
func CompleteResearchIDs(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	return completeIDs(args, "research", func(ctx context.Context, c *exa.Client) ([]idInfo, error) {
		page, err := c.Research.List(ctx, exa.ListParams{Limit: lookupLimit})
		if err != nil {
			return nil, err
		}
		ids := make([]idInfo, 0, len(page.Data))
		for _, t := range page.Data {
			ids = append(ids, idInfo{id: t.ResearchID, description: describe(t.Instructions, t.Status)})
		}
		return ids, nil
	})
}

func completeIDs(args []string, kind string, fetch func(context.Context, *exa.Client) ([]idInfo, error)) ([]string, cobra.ShellCompDirective) {
	return SafeCompletionWrapper(func() ([]string, cobra.ShellCompDirective) {
		if len(args) > 0 {
			return nil, cobra.ShellCompDirectiveNoFileComp
		}

		ids, err := cachedIDs(kind, fetch)
		if err != nil {
			return nil, cobra.ShellCompDirectiveNoFileComp
		}

		completions := make([]string, 0, len(ids))
		for _, info := range ids {
			completions = append(completions, info.id+"\t"+info.description)
		}
		return completions, cobra.ShellCompDirectiveNoFileComp
	})
}

func cachedIDs(kind string, fetch func(context.Context, *exa.Client) ([]idInfo, error)) ([]idInfo, error) {
	idCacheMu.RLock()
	if entry, ok := idCache[kind]; ok && now().Before(entry.expiresAt) {
		idCacheMu.RUnlock()
		return entry.ids, nil
	}
	idCacheMu.RUnlock()

	ctx, cancel := context.WithTimeout(context.Background(), lookupTimeout)
	defer cancel()

	rt, err := shared.NewRuntime(ctx)
	if err != nil {
		return nil, err
	}
	defer rt.Close()

	ids, err := fetch(ctx, rt.Client)
	if err != nil {
		return nil, err
	}

	idCacheMu.Lock()
	idCache[kind] = &idCacheEntry{ids: ids, expiresAt: now().Add(idCacheTTL)}
	idCacheMu.Unlock()

	return ids, nil
}

func describe(label, status string) string {
	r := []rune(label)
	if len(r) > 40 {
		label = string(r[:39]) + "…"
	}
	switch {
	case label == "":
		return status
	case status == "":
		return label
	}
	return label + " (" + status + ")"
}

func resetCache() {
	idCacheMu.Lock()
	idCache = map[string]*idCacheEntry{}
	idCacheMu.Unlock()
}
