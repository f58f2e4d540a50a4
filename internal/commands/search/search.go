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

// Package search implements the search and find-similar commands.
package search

import (
	"context"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/tombee/exa/internal/commands/completion"
	"github.com/tombee/exa/internal/commands/shared"
	"github.com/tombee/exa/pkg/exa"
)

// contentFlags select which page contents come back with results.
type contentFlags struct {
	text       bool
	maxChars   int
	highlights bool
	summary    string
	livecrawl  string
}

func (f *contentFlags) register(fs *pflag.FlagSet) {
	fs.BoolVar(&f.text, "text", false, "Include page text")
	fs.IntVar(&f.maxChars, "max-chars", 0, "Limit page text to this many characters (implies --text)")
	fs.BoolVar(&f.highlights, "highlights", false, "Include relevant snippets")
	fs.StringVar(&f.summary, "summary", "", "Include a summary guided by this query")
	fs.StringVar(&f.livecrawl, "livecrawl", "", "Livecrawl mode: never, fallback, always, preferred")
}

// options returns nil when no contents were requested.
func registerCompletions(cmd *cobra.Command) {
	completion.RegisterFlag(cmd, "category", completion.CompleteCategories)
	completion.RegisterFlag(cmd, "livecrawl", completion.CompleteLivecrawl)
}

func (f *contentFlags) options() *exa.ContentsOptions {
	var opts exa.ContentsOptions
	set := false
	if f.text || f.maxChars > 0 {
		opts.Text = &exa.TextOptions{MaxCharacters: f.maxChars}
		set = true
	}
	if f.highlights {
		opts.Highlights = &exa.HighlightsOptions{}
		set = true
	}
	if f.summary != "" {
		opts.Summary = &exa.SummaryOptions{Query: f.summary}
		set = true
	}
	if f.livecrawl != "" {
		opts.Livecrawl = f.livecrawl
		set = true
	}
	if !set {
		return nil
	}
	return &opts
}

// filterFlags map onto exa.SearchFilters.
type filterFlags struct {
	numResults     int
	includeDomains []string
	excludeDomains []string
	startPublished string
	endPublished   string
	category       string
}

func (f *filterFlags) register(fs *pflag.FlagSet) {
	fs.IntVarP(&f.numResults, "num-results", "n", 10, "Number of results")
	fs.StringSliceVar(&f.includeDomains, "include-domain", nil, "Only return results from these domains")
	fs.StringSliceVar(&f.excludeDomains, "exclude-domain", nil, "Never return results from these domains")
	fs.StringVar(&f.startPublished, "start-published", "", "Only results published after this ISO 8601 date")
	fs.StringVar(&f.endPublished, "end-published", "", "Only results published before this ISO 8601 date")
	fs.StringVar(&f.category, "category", "", "Restrict to a category (company, research paper, news, pdf, github, ...)")
}

func (f *filterFlags) filters() exa.SearchFilters {
	return exa.SearchFilters{
		NumResults:         f.numResults,
		IncludeDomains:     f.includeDomains,
		ExcludeDomains:     f.excludeDomains,
		StartPublishedDate: f.startPublished,
		EndPublishedDate:   f.endPublished,
		Category:           f.category,
	}
}

// NewCommand creates the search command.
func NewCommand() *cobra.Command {
	var (
		searchType  string
		withContext bool
		filters     filterFlags
		contents    contentFlags
	)

	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Search the web",
		Long: `Search the web with Exa and print the matching pages.

Page text, highlights and summaries are only fetched when requested.`,
		Example: `  exa search "latest research on protein folding" -n 5
  exa search "golang http client" --include-domain github.com --text --max-chars 500
  exa search "hacker news" --json --jq '.results[].url'`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			params := exa.SearchParams{
				Query:         strings.Join(args, " "),
				Type:          searchType,
				SearchFilters: filters.filters(),
				Context:       withContext,
				Contents:      contents.options(),
			}
			return run(cmd, func(ctx context.Context, c *exa.Client) (*exa.SearchResponse, error) {
				return c.Search(ctx, params)
			})
		},
	}

	cmd.Flags().StringVarP(&searchType, "type", "t", "", "Search type: auto, neural, keyword, fast, deep")
	cmd.Flags().BoolVar(&withContext, "context", false, "Also return results combined into one context string")
	filters.register(cmd.Flags())
	contents.register(cmd.Flags())
	registerCompletions(cmd)
	completion.RegisterFlag(cmd, "type", completion.CompleteSearchTypes)

	return cmd
}

// NewFindSimilarCommand creates the find-similar command.
func NewFindSimilarCommand() *cobra.Command {
	var (
		excludeSource bool
		filters       filterFlags
		contents      contentFlags
	)

	cmd := &cobra.Command{
		Use:     "find-similar <url>",
		Aliases: []string{"similar"},
		Short:   "Find pages similar to a URL",
		Example: `  exa find-similar https://arxiv.org/abs/2307.06435 --exclude-source-domain`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			params := exa.FindSimilarParams{
				URL:                 args[0],
				SearchFilters:       filters.filters(),
				ExcludeSourceDomain: excludeSource,
				Contents:            contents.options(),
			}
			return run(cmd, func(ctx context.Context, c *exa.Client) (*exa.SearchResponse, error) {
				return c.FindSimilar(ctx, params)
			})
		},
	}

	cmd.Flags().BoolVar(&excludeSource, "exclude-source-domain", false, "Skip results from the source URL's domain")
	filters.register(cmd.Flags())
	contents.register(cmd.Flags())
	registerCompletions(cmd)

	return cmd
}

func run(cmd *cobra.Command, call func(context.Context, *exa.Client) (*exa.SearchResponse, error)) error {
	return shared.WithRuntime(cmd, func(ctx context.Context, rt *shared.Runtime) error {
		resp, err := call(ctx, rt.Client)
		if err != nil {
			return err
		}
		return shared.Print(cmd, resp, func(w io.Writer) error {
			shared.WriteResults(w, resp.Results)
			if resp.Context != "" {
				shared.WriteField(w, "context", resp.Context)
			}
			shared.WriteCost(w, resp.CostDollars)
			return nil
		})
	})
}
