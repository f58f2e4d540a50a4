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

package main

import (
	"github.com/tombee/exa/internal/cli"
	"github.com/tombee/exa/internal/commands/answer"
	"github.com/tombee/exa/internal/commands/auth"
	"github.com/tombee/exa/internal/commands/completion"
	configcmd "github.com/tombee/exa/internal/commands/config"
	"github.com/tombee/exa/internal/commands/contents"
	"github.com/tombee/exa/internal/commands/diagnostics"
	"github.com/tombee/exa/internal/commands/research"
	"github.com/tombee/exa/internal/commands/search"
	versioncmd "github.com/tombee/exa/internal/commands/version"
	"github.com/tombee/exa/internal/commands/websets"
)

// Version information (injected via ldflags at build time)
var (
	version   = "dev"
	commit    = "unknown"
	buildDate = "unknown"
)

func main() {
	cli.SetVersion(version, commit, buildDate)

	rootCmd := cli.NewRootCommand()

	// Search and retrieval
	rootCmd.AddCommand(search.NewCommand())
	rootCmd.AddCommand(search.NewFindSimilarCommand())
	rootCmd.AddCommand(contents.NewCommand())
	rootCmd.AddCommand(contents.NewContextCommand())
	rootCmd.AddCommand(answer.NewCommand())

	// Long-running jobs
	rootCmd.AddCommand(research.NewCommand())
	rootCmd.AddCommand(websets.NewCommand())

	// Setup
	rootCmd.AddCommand(auth.NewCommand())
	rootCmd.AddCommand(configcmd.NewConfigCommand())
	rootCmd.AddCommand(diagnostics.NewDoctorCommand())
	rootCmd.AddCommand(completion.NewCommand())
	rootCmd.AddCommand(versioncmd.NewVersionCommand())

	completion.RegisterFlag(rootCmd, "trace", completion.CompleteTraceExporters)

	if err := rootCmd.Execute(); err != nil {
		cli.HandleExitError(err)
	}
}
