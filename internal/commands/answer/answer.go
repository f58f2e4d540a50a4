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

// Package answer implements the answer command.
package answer

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/tombee/exa/internal/commands/completion"
	"github.com/tombee/exa/internal/commands/shared"
	"github.com/tombee/exa/pkg/exa"
)

// NewCommand creates the answer command.
func NewCommand() *cobra.Command {
	var (
		stream       bool
		withText     bool
		model        string
		systemPrompt string
	)

	cmd := &cobra.Command{
		Use:   "answer <question>",
		Short: "Answer a question with cited sources",
		Long: `Answer a question using Exa search results as grounding.

With --stream the answer is printed as it is generated. In JSON mode the
streamed chunks are collected and printed once the stream ends.`,
		Example: `  exa answer "What is the latest stable Go release?"
  exa answer "Summarize the CAP theorem" --stream`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			params := exa.AnswerParams{
				Query:        strings.Join(args, " "),
				Text:         withText,
				Model:        model,
				SystemPrompt: systemPrompt,
			}
			return shared.WithRuntime(cmd, func(ctx context.Context, rt *shared.Runtime) error {
				if stream {
					return runStream(ctx, cmd, rt.Client, params)
				}
				resp, err := rt.Client.Answer(ctx, params)
				if err != nil {
					return err
				}
				return shared.Print(cmd, resp, func(w io.Writer) error {
					fmt.Fprintln(w, resp.Text())
					writeCitations(w, resp.Citations)
					shared.WriteCost(w, resp.CostDollars)
					return nil
				})
			})
		},
	}

	cmd.Flags().BoolVar(&stream, "stream", false, "Print the answer as it is generated")
	cmd.Flags().BoolVar(&withText, "text", false, "Include full text of cited pages")
	cmd.Flags().StringVar(&model, "model", "", "Answer model: exa or exa-pro")
	completion.RegisterFlag(cmd, "model", completion.CompleteAnswerModels)
	cmd.Flags().StringVar(&systemPrompt, "system-prompt", "", "Guide the answer's style or focus")

	return cmd
}

func runStream(ctx context.Context, cmd *cobra.Command, client *exa.Client, params exa.AnswerParams) error {
	s, err := client.AnswerStream(ctx, params)
	if err != nil {
		return err
	}
	defer s.Close()

	out := cmd.OutOrStdout()
	live := !shared.GetJSON()

	var (
		text      strings.Builder
		citations []exa.Result
	)
	for chunk, err := range s.All() {
		if err != nil {
			return err
		}
		text.WriteString(chunk.Content)
		citations = append(citations, chunk.Citations...)
		if live && chunk.Content != "" {
			fmt.Fprint(out, chunk.Content)
		}
	}

	resp := &exa.AnswerResponse{Answer: text.String(), Citations: citations}
	if !live {
		return shared.Print(cmd, resp, nil)
	}
	fmt.Fprintln(out)
	writeCitations(out, citations)
	return nil
}

func writeCitations(w io.Writer, citations []exa.Result) {
	if len(citations) == 0 {
		return
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w, shared.Bold.Render("Sources"))
	for i, c := range citations {
		title := c.Title
		if title == "" {
			title = c.URL
		}
		fmt.Fprintf(w, "%s %s %s\n", shared.Muted.Render(fmt.Sprintf("[%d]", i+1)), title, shared.Link.Render(c.URL))
	}
}
