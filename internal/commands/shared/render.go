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
	"fmt"
	"io"
	"strings"

	"github.com/tombee/exa/pkg/exa"
)

// WriteResults renders search results as a numbered list.
func WriteResults(w io.Writer, results []exa.Result) {
	if len(results) == 0 {
		fmt.Fprintln(w, Muted.Render("No results."))
		return
	}
	for i, r := range results {
		title := r.Title
		if title == "" {
			title = r.URL
		}
		fmt.Fprintf(w, "%s %s\n", Muted.Render(fmt.Sprintf("%2d.", i+1)), Bold.Render(title))
		fmt.Fprintf(w, "    %s\n", Link.Render(r.URL))

		var meta []string
		if r.PublishedDate != "" {
			meta = append(meta, r.PublishedDate)
		}
		if r.Author != "" {
			meta = append(meta, r.Author)
		}
		if r.Score != nil {
			meta = append(meta, fmt.Sprintf("score %.3f", *r.Score))
		}
		if len(meta) > 0 {
			fmt.Fprintf(w, "    %s\n", Muted.Render(strings.Join(meta, " · ")))
		}

		if r.Summary != "" {
			fmt.Fprintf(w, "    %s\n", indent(r.Summary))
		}
		for _, h := range r.Highlights {
			fmt.Fprintf(w, "    %s %s\n", SymbolInfo, indent(h))
		}
		if r.Text != "" {
			fmt.Fprintf(w, "\n%s\n", r.Text)
		}
		fmt.Fprintln(w)
	}
}

// WriteCost prints the billed cost when the response carries one.
func WriteCost(w io.Writer, cost *exa.CostDollars) {
	if cost == nil {
		return
	}
	fmt.Fprintln(w, Muted.Render(fmt.Sprintf("cost: $%.4f", cost.Total)))
}

func indent(s string) string {
	return strings.ReplaceAll(strings.TrimSpace(s), "\n", "\n    ")
}
