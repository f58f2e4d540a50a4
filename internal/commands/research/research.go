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

// Package research implements the research command group.
package research

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/tombee/exa/internal/commands/completion"
	"github.com/tombee/exa/internal/commands/shared"
	"github.com/tombee/exa/pkg/exa"
	"github.com/tombee/exa/pkg/poll"
)

// defaultMaxWait bounds research waits; tasks often take several minutes.
const defaultMaxWait = 15 * time.Minute

// NewCommand creates the research command group.
func NewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "research",
		Short: "Run long-form research tasks",
		Long: `Research tasks search, read and synthesize many sources in the
background. Create a task, then wait for it or check on it later.`,
	}

	cmd.AddCommand(newCreateCommand())
	cmd.AddCommand(newGetCommand())
	cmd.AddCommand(newListCommand())
	cmd.AddCommand(newWaitCommand())

	return cmd
}

func newCreateCommand() *cobra.Command {
	var (
		model      string
		schemaFile string
		wait       bool
		waitFlags  shared.WaitFlags
	)

	cmd := &cobra.Command{
		Use:   "create <instructions>",
		Short: "Start a research task",
		Example: `  exa research create "Compare the top three Go web frameworks" --wait
  exa research create "List recent EU AI regulation" --schema schema.json --model exa-research-pro`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			params := exa.CreateResearchParams{
				Instructions: strings.Join(args, " "),
				Model:        model,
			}
			if schemaFile != "" {
				schema, err := readSchema(schemaFile)
				if err != nil {
					return err
				}
				params.OutputSchema = schema
			}

			return shared.WithRuntime(cmd, func(ctx context.Context, rt *shared.Runtime) error {
				task, err := rt.Client.Research.Create(ctx, params)
				if err != nil {
					return err
				}
				if wait {
					return waitFor(ctx, cmd, rt, task.ResearchID, waitFlags)
				}
				return printTask(cmd, task)
			})
		},
	}

	cmd.Flags().StringVar(&model, "model", "", "Model: exa-research-fast, exa-research, exa-research-pro")
	cmd.Flags().StringVar(&schemaFile, "schema", "", "JSON schema file describing the structured output")
	cmd.Flags().BoolVar(&wait, "wait", false, "Wait for the task to finish")
	shared.AddWaitFlags(cmd.Flags(), &waitFlags, defaultMaxWait)
	completion.RegisterFlag(cmd, "model", completion.CompleteResearchModels)

	return cmd
}

func newGetCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "get <research-id>",
		Short: "Show a research task",
		Args:  cobra.ExactArgs(1),

		ValidArgsFunction: completion.CompleteResearchIDs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return shared.WithRuntime(cmd, func(ctx context.Context, rt *shared.Runtime) error {
				task, err := rt.Client.Research.Get(ctx, args[0])
				if err != nil {
					return err
				}
				return printTask(cmd, task)
			})
		},
	}
}

func newListCommand() *cobra.Command {
	var list shared.ListFlags

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List research tasks",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return shared.WithRuntime(cmd, func(ctx context.Context, rt *shared.Runtime) error {
				page, err := shared.List(ctx, list, rt.Client.Research.List)
				if err != nil {
					return err
				}
				return shared.Print(cmd, page, func(w io.Writer) error {
					if len(page.Data) == 0 {
						fmt.Fprintln(w, shared.Muted.Render("No research tasks."))
						return nil
					}
					for _, t := range page.Data {
						fmt.Fprintf(w, "%-36s  %-10s  %s\n", t.ResearchID, shared.RenderStatus(t.Status), truncate(t.Instructions, 60))
					}
					if page.HasMore {
						fmt.Fprintln(w, shared.Muted.Render("more: --cursor "+page.NextCursor))
					}
					return nil
				})
			})
		},
	}

	shared.AddListFlags(cmd.Flags(), &list)
	return cmd
}

func newWaitCommand() *cobra.Command {
	var waitFlags shared.WaitFlags

	cmd := &cobra.Command{
		Use:   "wait <research-id>",
		Short: "Wait for a research task to finish",
		Args:  cobra.ExactArgs(1),

		ValidArgsFunction: completion.CompleteResearchIDs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return shared.WithRuntime(cmd, func(ctx context.Context, rt *shared.Runtime) error {
				return waitFor(ctx, cmd, rt, args[0], waitFlags)
			})
		},
	}

	shared.AddWaitFlags(cmd.Flags(), &waitFlags, defaultMaxWait)
	return cmd
}

func waitFor(ctx context.Context, cmd *cobra.Command, rt *shared.Runtime, id string, f shared.WaitFlags) error {
	task, err := shared.Wait(ctx, rt, "Researching", f, func(ctx context.Context, opts ...poll.Option) (*exa.ResearchTask, error) {
		return rt.Client.Research.PollUntilFinished(ctx, id, opts...)
	})
	if err != nil {
		return err
	}
	if err := printTask(cmd, task); err != nil {
		return err
	}
	if !task.IsCompleted() {
		return &shared.ExitError{Code: shared.ExitFailure, Message: fmt.Sprintf("research task %s %s", task.ResearchID, task.Status)}
	}
	return nil
}

func printTask(cmd *cobra.Command, task *exa.ResearchTask) error {
	return shared.Print(cmd, task, func(w io.Writer) error {
		shared.WriteField(w, "id", task.ResearchID)
		shared.WriteField(w, "status", shared.RenderStatus(task.Status))
		shared.WriteField(w, "model", task.Model)
		shared.WriteField(w, "error", task.Error)
		if task.Output != nil {
			fmt.Fprintln(w)
			if task.Output.Parsed != nil {
				enc := json.NewEncoder(w)
				enc.SetIndent("", "  ")
				return enc.Encode(task.Output.Parsed)
			}
			fmt.Fprintln(w, task.Output.Content)
		}
		shared.WriteCost(w, task.CostDollars)
		return nil
	})
}

func readSchema(path string) (map[string]any, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, shared.NewUsageError("cannot read --schema file", err)
	}
	var schema map[string]any
	if err := json.Unmarshal(data, &schema); err != nil {
		return nil, shared.NewUsageError(fmt.Sprintf("--schema %s is not a JSON object", path), err)
	}
	return schema, nil
}

func truncate(s string, n int) string {
	r := []rune(strings.ReplaceAll(s, "\n", " "))
	if len(r) <= n {
		return string(r)
	}
	return string(r[:n-1]) + "…"
}
