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

// Package auth implements commands that manage the stored API key.
package auth

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/tombee/exa/internal/commands/shared"
	"github.com/tombee/exa/internal/log"
	"github.com/tombee/exa/internal/secrets"
)

// NewCommand creates the auth command group.
func NewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "auth",
		Short: "Manage the Exa API key",
		Long: `The API key is read from --api-key, then EXA_API_KEY, then the system
keychain. 'exa auth login' stores a key in the keychain.`,
	}

	cmd.AddCommand(newLoginCommand())
	cmd.AddCommand(newLogoutCommand())
	cmd.AddCommand(newStatusCommand())

	return cmd
}

func newLoginCommand() *cobra.Command {
	var withToken bool

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Store an API key in the system keychain",
		Example: `  exa auth login
  echo "$KEY" | exa auth login --with-token`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			key, err := readKey(cmd, withToken)
			if err != nil {
				return err
			}

			if err := shared.DefaultResolver().Set(cmd.Context(), secrets.APIKeyName, key); err != nil {
				return fmt.Errorf("failed to store API key: %w", err)
			}

			fmt.Fprintln(cmd.OutOrStdout(), shared.RenderOK("API key "+log.SanitizeAPIKey(key)+" saved to keychain"))
			return nil
		},
	}

	cmd.Flags().BoolVar(&withToken, "with-token", false, "Read the key from standard input")
	return cmd
}

// readKey prompts without echo when stdin is a terminal, otherwise reads the
// first line of stdin.
func readKey(cmd *cobra.Command, withToken bool) (string, error) {
	in := cmd.InOrStdin()

	var key string
	if f, ok := in.(*os.File); ok && !withToken && term.IsTerminal(int(f.Fd())) {
		fmt.Fprint(cmd.ErrOrStderr(), "Paste your Exa API key: ")
		b, err := term.ReadPassword(int(f.Fd()))
		fmt.Fprintln(cmd.ErrOrStderr())
		if err != nil {
			return "", fmt.Errorf("failed to read API key: %w", err)
		}
		key = string(b)
	} else {
		line, err := bufio.NewReader(in).ReadString('\n')
		if err != nil && !errors.Is(err, io.EOF) {
			return "", fmt.Errorf("failed to read API key: %w", err)
		}
		key = line
	}

	key = strings.TrimSpace(key)
	if key == "" {
		return "", shared.NewUsageError("no API key provided", nil)
	}
	return key, nil
}

func newLogoutCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Remove the API key from the system keychain",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			err := shared.DefaultResolver().Delete(cmd.Context(), secrets.APIKeyName)
			switch {
			case errors.Is(err, secrets.ErrSecretNotFound):
				fmt.Fprintln(cmd.OutOrStdout(), shared.Muted.Render("No API key stored."))
				return nil
			case err != nil:
				return fmt.Errorf("failed to remove API key: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), shared.RenderOK("API key removed from keychain"))
			return nil
		},
	}
}

// Status describes where the API key comes from.
type Status struct {
	LoggedIn bool   `json:"logged_in"`
	Source   string `json:"source,omitempty"`
	Key      string `json:"key,omitempty"`
}

func newStatusCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show which API key will be used",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := status(cmd.Context())
			if err != nil {
				return err
			}

			if err := shared.Print(cmd, st, func(w io.Writer) error {
				if !st.LoggedIn {
					fmt.Fprintln(w, shared.RenderWarn("Not logged in"))
					fmt.Fprintln(w, shared.Muted.Render("Run 'exa auth login' or set EXA_API_KEY."))
					return nil
				}
				shared.WriteField(w, "key", st.Key)
				shared.WriteField(w, "source", st.Source)
				return nil
			}); err != nil {
				return err
			}

			if !st.LoggedIn {
				return &shared.ExitError{Code: shared.ExitFailure}
			}
			return nil
		},
	}
}

func status(ctx context.Context) (*Status, error) {
	if flag := shared.GetAPIKeyFlag(); flag != "" {
		return &Status{LoggedIn: true, Source: "flag", Key: log.SanitizeAPIKey(flag)}, nil
	}

	key, source, err := shared.DefaultResolver().Lookup(ctx, secrets.APIKeyName)
	switch {
	case errors.Is(err, secrets.ErrSecretNotFound), errors.Is(err, secrets.ErrBackendUnavailable):
		return &Status{}, nil
	case err != nil:
		return nil, err
	}
	return &Status{LoggedIn: true, Source: source, Key: log.SanitizeAPIKey(key)}, nil
}
