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

package cli

import (
	"github.com/spf13/cobra"

	"github.com/tombee/exa/internal/commands/shared"
)

// SetVersion sets the version information (called from main)
func SetVersion(v, c, b string) {
	shared.SetVersion(v, c, b)
}

// NewRootCommand creates the root Cobra command for exa
func NewRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "exa",
		Short: "exa - search, answer and websets from the command line",
		Long: `exa is a command-line client for the Exa API. It runs web searches,
fetches page contents, answers questions with citations, and manages
long-running research tasks and websets.

Run 'exa auth login' to store your API key in the system keychain.`,
		SilenceUsage:  true, // Don't show usage on errors
		SilenceErrors: true, // We handle errors ourselves for proper exit codes
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return shared.ValidateJQ()
		},
	}

	flags := shared.RegisterFlagPointers()

	pf := cmd.PersistentFlags()
	pf.StringVar(flags.APIKey, "api-key", "", "Exa API key (default: $EXA_API_KEY or keychain)")
	pf.StringVar(flags.BaseURL, "base-url", "", "API base URL (default: https://api.exa.ai)")
	pf.DurationVar(flags.Timeout, "timeout", 0, "Per-request timeout (default: 30s)")
	pf.BoolVar(flags.Debug, "debug", false, "Log full HTTP requests and responses to stderr")
	pf.BoolVar(flags.JSON, "json", false, "Output in JSON format")
	pf.StringVar(flags.JQ, "jq", "", "Filter JSON output using a jq expression")
	pf.StringVar(flags.Config, "config", "", "Path to config file (default: ~/.config/exa/config.yaml)")
	pf.StringVar(flags.Trace, "trace", "", "Span exporter: none, console, otlp-http, otlp-grpc")

	return cmd
}

// GetVersion returns version information
func GetVersion() (string, string, string) {
	return shared.GetVersion()
}

// HandleExitError handles exit errors with proper exit codes
func HandleExitError(err error) {
	shared.HandleExitError(err)
}
