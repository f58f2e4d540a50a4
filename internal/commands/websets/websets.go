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

// Package websets implements the websets command group.
package websets

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/tombee/exa/internal/commands/completion"
	"github.com/tombee/exa/internal/commands/shared"
	"github.com/tombee/exa/pkg/exa"
	"github.com/tombee/exa/pkg/params"
	"github.com/tombee/exa/pkg/poll"
)

const defaultMaxWait = 30 * time.Minute

// NewCommand creates the websets command group.
func NewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "websets",
		Aliases: []string{"webset", "ws"},
		Short:   "Build and inspect websets",
		Long: `A webset is a collection of entities (companies, people, articles)
found by a search and checked against criteria, optionally enriched with
extra fields.`,
	}

	cmd.AddCommand(newCreateCommand())
	cmd.AddCommand(newGetCommand())
	cmd.AddCommand(newListCommand())
	cmd.AddCommand(newItemsCommand())
	cmd.AddCommand(newDeleteCommand())
	cmd.AddCommand(newCancelCommand())
	cmd.AddCommand(newWaitCommand())

	return cmd
}

type createFlags struct {
	file       string
	query      string
	count      int
	entity     string
	criteria   []string
	title      string
	externalID string
	wait       bool
	waitFlags  shared.WaitFlags
}

func newCreateCommand() *cobra.Command {
	var f createFlags

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a webset",
		Example: `  exa websets create --query "AI startups in Berlin" --count 20 --entity company \
    --criteria "founded after 2020" --criteria "raised a seed round"
  exa websets create --file webset.yaml --wait`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := f.params(cmd)
			if err != nil {
				return err
			}
			if err := exa.ValidateCreateWebset(p); err != nil {
				return err
			}

			return shared.WithRuntime(cmd, func(ctx context.Context, rt *shared.Runtime) error {
				ws, err := rt.Client.Websets.Create(ctx, *p)
				if err != nil {
					return err
				}
				if f.wait {
					return waitFor(ctx, cmd, rt, ws.ID, f.waitFlags)
				}
				return printWebset(cmd, ws)
			})
		},
	}

	fs := cmd.Flags()
	fs.StringVarP(&f.file, "file", "f", "", "YAML or JSON file with the full request body")
	fs.StringVarP(&f.query, "query", "q", "", "Search query")
	fs.IntVar(&f.count, "count", 0, "Number of items to find")
	fs.StringVar(&f.entity, "entity", "", "Entity type: company, person, article, research_paper")
	fs.StringArrayVar(&f.criteria, "criteria", nil, "Criterion every item must satisfy (repeatable)")
	fs.StringVar(&f.title, "title", "", "Webset title")
	fs.StringVar(&f.externalID, "external-id", "", "Your own identifier for the webset")
	fs.BoolVar(&f.wait, "wait", false, "Wait until the webset is idle")
	shared.AddWaitFlags(fs, &f.waitFlags, defaultMaxWait)
	cmd.MarkFlagsMutuallyExclusive("file", "query")
	completion.RegisterFlag(cmd, "entity", completion.CompleteEntityTypes)

	return cmd
}

// params builds the request from --file or from the individual flags. Flags
// other than --file are ignored when a file is given, except --title and
// --external-id which override it.
func (f *createFlags) params(cmd *cobra.Command) (*exa.CreateWebsetParams, error) {
	var p *exa.CreateWebsetParams
	if f.file != "" {
		var err error
		if p, err = readParamsFile(f.file); err != nil {
			return nil, err
		}
	} else {
		if f.query == "" {
			return nil, shared.NewUsageError("one of --query or --file is required", nil)
		}
		search := &exa.CreateWebsetSearchParams{Query: f.query}
		if cmd.Flags().Changed("count") {
			count := f.count
			search.Count = &count
		}
		if f.entity != "" {
			search.Entity = &exa.EntityParams{Type: f.entity}
		}
		for _, c := range f.criteria {
			search.Criteria = append(search.Criteria, exa.CriterionParams{Description: c})
		}
		p = &exa.CreateWebsetParams{Search: search}
	}

	if f.title != "" {
		p.Title = f.title
	}
	if f.externalID != "" {
		p.ExternalID = f.externalID
	}
	return p, nil
}

// readParamsFile decodes a request body from YAML or JSON. Keys may use the
// snake_case spellings accepted by params.Convert.
func readParamsFile(path string) (*exa.CreateWebsetParams, error) {
	var (
		data []byte
		err  error
	)
	if path == "-" {
		data, err = io.ReadAll(os.Stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, shared.NewUsageError("cannot read --file", err)
	}

	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, shared.NewUsageError(fmt.Sprintf("%s is not valid YAML or JSON", path), err)
	}
	if raw == nil {
		return nil, shared.NewUsageError(fmt.Sprintf("%s is empty", path), nil)
	}

	wire, err := json.Marshal(params.Convert(raw))
	if err != nil {
		return nil, shared.NewUsageError(fmt.Sprintf("%s contains values that cannot be sent", path), err)
	}

	dec := json.NewDecoder(bytes.NewReader(wire))
	dec.DisallowUnknownFields()
	var p exa.CreateWebsetParams
	if err := dec.Decode(&p); err != nil {
		return nil, shared.NewUsageError(fmt.Sprintf("invalid webset definition in %s", path), err)
	}
	return &p, nil
}

func newGetCommand() *cobra.Command {
	var expand []string

	cmd := &cobra.Command{
		Use:   "get <webset-id>",
		Short: "Show a webset",
		Args:  cobra.ExactArgs(1),

		ValidArgsFunction: completion.CompleteWebsetIDs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return shared.WithRuntime(cmd, func(ctx context.Context, rt *shared.Runtime) error {
				var gp *exa.GetWebsetParams
				if len(expand) > 0 {
					gp = &exa.GetWebsetParams{Expand: expand}
				}
				ws, err := rt.Client.Websets.Get(ctx, args[0], gp)
				if err != nil {
					return err
				}
				return printWebset(cmd, ws)
			})
		},
	}

	cmd.Flags().StringSliceVar(&expand, "expand", nil, "Inline related collections (items)")
	return cmd
}

func newListCommand() *cobra.Command {
	var list shared.ListFlags

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List websets",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return shared.WithRuntime(cmd, func(ctx context.Context, rt *shared.Runtime) error {
				page, err := shared.List(ctx, list, rt.Client.Websets.List)
				if err != nil {
					return err
				}
				return shared.Print(cmd, page, func(w io.Writer) error {
					if len(page.Data) == 0 {
						fmt.Fprintln(w, shared.Muted.Render("No websets."))
						return nil
					}
					for _, ws := range page.Data {
						fmt.Fprintf(w, "%-28s  %-8s  %s\n", ws.ID, shared.RenderStatus(ws.Status), title(&ws))
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

func newItemsCommand() *cobra.Command {
	var list shared.ListFlags

	cmd := &cobra.Command{
		Use:   "items <webset-id>",
		Short: "List the items in a webset",
		Args:  cobra.ExactArgs(1),

		ValidArgsFunction: completion.CompleteWebsetIDs,
		RunE: func(cmd *cobra.Command, args []string) error {
			websetID := args[0]
			return shared.WithRuntime(cmd, func(ctx context.Context, rt *shared.Runtime) error {
				page, err := shared.List(ctx, list, func(ctx context.Context, p exa.ListParams) (*exa.Page[exa.WebsetItem], error) {
					return rt.Client.Websets.Items.List(ctx, websetID, p)
				})
				if err != nil {
					return err
				}
				return shared.Print(cmd, page, func(w io.Writer) error {
					for _, item := range page.Data {
						fmt.Fprintln(w, shared.Bold.Render(item.ID))
						shared.WriteField(w, "url", item.URL())
						for _, e := range item.Evaluations {
							shared.WriteField(w, e.Criterion, shared.RenderStatus(e.Satisfied))
						}
						for _, e := range item.Enrichments {
							shared.WriteField(w, e.EnrichmentID, strings.Join(e.Result, ", "))
						}
						fmt.Fprintln(w)
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

func newDeleteCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <webset-id>",
		Short: "Delete a webset",
		Args:  cobra.ExactArgs(1),

		ValidArgsFunction: completion.CompleteWebsetIDs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return shared.WithRuntime(cmd, func(ctx context.Context, rt *shared.Runtime) error {
				ws, err := rt.Client.Websets.Delete(ctx, args[0])
				if err != nil {
					return err
				}
				return shared.Print(cmd, ws, func(w io.Writer) error {
					fmt.Fprintln(w, shared.RenderOK("Deleted "+ws.ID))
					return nil
				})
			})
		},
	}
}

func newCancelCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "cancel <webset-id>",
		Short: "Cancel running searches and enrichments",
		Args:  cobra.ExactArgs(1),

		ValidArgsFunction: completion.CompleteWebsetIDs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return shared.WithRuntime(cmd, func(ctx context.Context, rt *shared.Runtime) error {
				ws, err := rt.Client.Websets.Cancel(ctx, args[0])
				if err != nil {
					return err
				}
				return printWebset(cmd, ws)
			})
		},
	}
}

func newWaitCommand() *cobra.Command {
	var waitFlags shared.WaitFlags

	cmd := &cobra.Command{
		Use:   "wait <webset-id>",
		Short: "Wait until a webset is idle",
		Args:  cobra.ExactArgs(1),

		ValidArgsFunction: completion.CompleteWebsetIDs,
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
	ws, err := shared.Wait(ctx, rt, "Building webset", f, func(ctx context.Context, opts ...poll.Option) (*exa.Webset, error) {
		return rt.Client.Websets.WaitUntilIdle(ctx, id, opts...)
	})
	if err != nil {
		return err
	}
	return printWebset(cmd, ws)
}

func printWebset(cmd *cobra.Command, ws *exa.Webset) error {
	return shared.Print(cmd, ws, func(w io.Writer) error {
		shared.WriteField(w, "id", ws.ID)
		shared.WriteField(w, "status", shared.RenderStatus(ws.Status))
		shared.WriteField(w, "title", ws.Title)
		shared.WriteField(w, "external id", ws.ExternalID)
		for _, s := range ws.Searches {
			shared.WriteField(w, "search", fmt.Sprintf("%s (%s)", s.Query, s.Status))
		}
		if len(ws.Items) > 0 {
			shared.WriteField(w, "items", fmt.Sprint(len(ws.Items)))
		}
		return nil
	})
}

func title(ws *exa.Webset) string {
	if ws.Title != "" {
		return ws.Title
	}
	if len(ws.Searches) > 0 {
		return ws.Searches[0].Query
	}
	return ""
}
