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
	"io"
	"slices"
	"strings"

	"github.com/spf13/cobra"
)

type generator func(root *cobra.Command, w io.Writer, descriptions bool) error

var generators = map[string]generator{
	"bash": func(root *cobra.Command, w io.Writer, d bool) error {
		return root.GenBashCompletionV2(w, d)
	},
	"zsh": func(root *cobra.Command, w io.Writer, d bool) error {
		if d {
			return root.GenZshCompletion(w)
		}
		return root.GenZshCompletionNoDesc(w)
	},
	"fish": func(root *cobra.Command, w io.Writer, d bool) error {
		return root.GenFishCompletion(w, d)
	},
	"powershell": func(root *cobra.Command, w io.Writer, d bool) error {
		if d {
			return root.GenPowerShellCompletionWithDesc(w)
		}
		return root.GenPowerShellCompletion(w)
	},
}

// Shells lists the shells a script can be generated for.
func Shells() []string {
	shells := make([]string, 0, len(generators))
	for s := range generators {
		shells = append(shells, s)
	}
	slices.Sort(shells)
	return shells
}

// NewCommand returns "exa completion <shell>".
func NewCommand() *cobra.Command {
	var noDesc bool

	cmd := &cobra.Command{
		Use:   "completion <" + strings.Join(Shells(), "|") + ">",
		Short: "Print a shell completion script",
		Long: `Print a completion script for your shell on stdout.

Besides commands and flags, the script completes flag values such as
--type, --category and --model, and the IDs of your websets and research
tasks (looked up with the configured API key).

  bash        source <(exa completion bash)
  zsh         exa completion zsh > "${fpath[1]}/_exa"
  fish        exa completion fish > ~/.config/fish/completions/exa.fish
  powershell  exa completion powershell | Out-String | Invoke-Expression`,
		DisableFlagsInUseLine: true,
		ValidArgs:             Shells(),
		Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			return generators[args[0]](cmd.Root(), cmd.OutOrStdout(), !noDesc)
		},
	}
	cmd.Flags().BoolVar(&noDesc, "no-descriptions", false, "Omit completion descriptions")

	return cmd
}
