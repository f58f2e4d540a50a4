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
	"github.com/spf13/cobra"

	"github.com/tombee/exa/internal/tracing"
	"github.com/tombee/exa/pkg/exa"
)

// Flag value completions.
var (
	CompleteSearchTypes = fixed(
		exa.SearchTypeAuto+"\tPick the best method for the query",
		exa.SearchTypeNeural+"\tEmbeddings-based search",
		exa.SearchTypeKeyword+"\tTraditional keyword search",
		exa.SearchTypeFast+"\tLowest latency",
		exa.SearchTypeDeep+"\tQuery expansion and deeper crawling",
	)

	CompleteCategories = fixed(
		"company", "research paper", "news", "pdf", "github",
		"tweet", "personal site", "financial report", "people",
	)

	CompleteLivecrawl = fixed(
		"never\tOnly use the cache",
		"fallback\tCrawl when the cache misses",
		"preferred\tCrawl, falling back to the cache",
		"always\tAlways crawl",
	)

	CompleteEntityTypes = fixed(
		exa.EntityCompany,
		exa.EntityPerson,
		exa.EntityArticle,
		exa.EntityResearchPaper,
	)

	CompleteResearchModels = fixed(
		exa.ResearchModelFast+"\tQuickest, lowest cost",
		exa.ResearchModel+"\tBalanced",
		exa.ResearchModelPro+"\tMost thorough",
	)

	CompleteAnswerModels = fixed(
		exa.AnswerModelExa,
		exa.AnswerModelExaPro,
	)

	CompleteTraceExporters = fixed(
		tracing.ExporterNone+"\tDisable tracing",
		tracing.ExporterConsole+"\tPrint spans to stderr",
		tracing.ExporterOTLPHTTP+"\tOTLP over HTTP",
		tracing.ExporterOTLPGRPC+"\tOTLP over gRPC",
	)
)

// RegisterFlag attaches fn to the named flag of cmd. Unknown flags are ignored.
func RegisterFlag(cmd *cobra.Command, name string, fn Func) {
	_ = cmd.RegisterFlagCompletionFunc(name, fn)
}
