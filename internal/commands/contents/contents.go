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

// Package contents implements the contents and context commands.
package contents

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/tombee/exa/internal/commands/completion"
	"github.com/tombee/exa/internal/commands/shared"
	"github.com/tombee/exa/pkg/exa"
)

// NewCommand creates the contents command.
func NewCommand() *cobra.Command {
	var (
		maxChars   int
		highlights bool
		summary    string
		livecrawl  string
		subpages   int
	)

	cmd := &cobra.Command{
		Use:   "contents <url>...",
		Short: "Fetch page contents for URLs",
		Long: `Fetch clean page text for one or more URLs or result IDs.

Per-URL failures are reported in the statuses list; the command only fails
when the request itself fails.`,
		Example: `  exa contents https://go.dev/blog/go1.25 --max-chars 2000
  exa contents https://a.example https://b.example --summary "key findings" --json`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			params := exa.ContentsParams{
				URLs: args,
				ContentsOptions: exa.ContentsOptions{
					Text:      &exa.TextOptions{MaxCharacters: maxChars},
					Livecrawl: livecrawl,
					Subpages:  subpages,
				},
			}
			if highlights {
				params.Highlights = &exa.HighlightsOptions{}
			}
			if summary != "" {
				params.Summary = &exa.SummaryOptions{Query: summary}
			}

			return shared.WithRuntime(cmd, func(ctx context.Context, rt *shared.Runtime) error {
				resp, err := rt.Client.Contents(ctx, params)
				if err != nil {
					return err
				}
				return shared.Print(cmd, resp, func(w io.Writer) error {
					shared.WriteResults(w, resp.Results)
					for _, st := range resp.Statuses {
						if st.Status != "success" {
							fmt.Fprintln(w, shared.RenderWarn(fmt.Sprintf("%s: %s", st.ID, st.Status)))
						}
					}
					shared.WriteCost(w, resp.CostDollars)
					return nil
				})
			})
		},
	}

	cmd.Flags().IntVar(&maxChars, "max-chars", 0, "Limit page text to this many characters")
	cmd.Flags().BoolVar(&highlights, "highlights", false, "Include relevant snippets")
	cmd.Flags().StringVar(&summary, "summary", "", "Include a summary guided by this query")
	cmd.Flags().StringVar(&livecrawl, "livecrawl", "", "Livecrawl mode: never, fallback, always, preferred")
	completion.RegisterFlag(cmd, "livecrawl", completion.CompleteLivecrawl)
	cmd.Flags().IntVar(&subpages, "subpages", 0, "Also crawl this many linked subpages")

	return cmd
}

// NewContextCommand creates the context command.
func NewContextCommand() *cobra.Command {
	var tokens string

	cmd := &cobra.Command{
		Use:     "context <query>",
		Short:   "Fetch code context for a programming query",
		Example: `  exa context "how to use errors.Join in Go" --tokens 5000`,
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			params := exa.ContextParams{Query: strings.Join(args, " ")}
			if tokens != "" && tokens != "dynamic" {
				n, err := strconv.Atoi(tokens)
				if err != nil || n < 1 {
					return shared.NewUsageError(fmt.Sprintf("--tokens must be a positive integer or \"dynamic\", got %q", tokens), nil)
				}
				params.TokensNum = n
			} else if tokens == "dynamic" {
				params.TokensNum = tokens
			}

			return shared.WithRuntime(cmd, func(ctx context.Context, rt *shared.Runtime) error {
				resp, err := rt.Client.Context(ctx, params)
				if err != nil {
					return err
				}
				return shared.Print(cmd, resp, func(w io.Writer) error {
					fmt.Fprintln(w, resp.Response)
					shared.WriteCost(w, resp.CostDollars)
					return nil
				})
			})
		},
	}

	cmd.Flags().StringVar(&tokens, "tokens", "", "Token budget, or \"dynamic\"")

	return cmd
}
