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

// Package diagnostics implements the doctor command.
package diagnostics

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/tombee/exa/internal/commands/shared"
	"github.com/tombee/exa/internal/config"
	"github.com/tombee/exa/internal/log"
	"github.com/tombee/exa/internal/secrets"
	"github.com/tombee/exa/internal/tracing"
	exaerrors "github.com/tombee/exa/pkg/errors"
	"github.com/tombee/exa/pkg/exa"
)

// Check states.
const (
	CheckOK   = "ok"
	CheckWarn = "warn"
	CheckFail = "fail"
	CheckSkip = "skip"
)

// Check is the outcome of one diagnostic step.
type Check struct {
	Name    string `json:"name"`
	Status  string `json:"status"`
	Message string `json:"message"`
	Fix     string `json:"fix,omitempty"`
}

// DoctorResult contains the overall health check results
type DoctorResult struct {
	ConfigPath     string  `json:"config_path"`
	Checks         []Check `json:"checks"`
	OverallHealthy bool    `json:"overall_healthy"`
}

func (r *DoctorResult) add(c Check) {
	r.Checks = append(r.Checks, c)
	if c.Status == CheckFail {
		r.OverallHealthy = false
	}
}

// NewDoctorCommand creates the doctor command
func NewDoctorCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Check configuration, credentials and API access",
		Long: `Perform a health check of the exa CLI setup.

This command checks:
  - The config file parses and validates
  - An API key is available, and where it comes from
  - The API is reachable and accepts the key

Provides actionable recommendations for fixing any issues found.`,
		Args: cobra.NoArgs,
		RunE: runDoctor,
	}
}

func runDoctor(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
	defer cancel()

	result := diagnose(ctx)

	if err := shared.Print(cmd, result, func(w io.Writer) error {
		writeResult(w, result)
		return nil
	}); err != nil {
		return err
	}

	if !result.OverallHealthy {
		return &shared.ExitError{Code: shared.ExitFailure}
	}
	return nil
}

func diagnose(ctx context.Context) *DoctorResult {
	result := &DoctorResult{OverallHealthy: true}

	result.ConfigPath = shared.GetConfigPath()
	if result.ConfigPath == "" {
		if p, err := config.ConfigPath(); err == nil {
			result.ConfigPath = p
		}
	}

	cfg, err := shared.LoadConfig()
	switch {
	case err != nil:
		result.add(Check{Name: "config", Status: CheckFail, Message: err.Error(), Fix: "fix the file or run 'exa config set <key> <value>'"})
	case fileExists(result.ConfigPath):
		result.add(Check{Name: "config", Status: CheckOK, Message: "loaded " + result.ConfigPath})
	default:
		result.add(Check{Name: "config", Status: CheckOK, Message: "no config file, using defaults"})
	}

	key, source := apiKey(ctx)
	if key == "" {
		result.add(Check{Name: "api key", Status: CheckFail, Message: "no API key found", Fix: "run 'exa auth login' or set EXA_API_KEY"})
	} else {
		result.add(Check{Name: "api key", Status: CheckOK, Message: fmt.Sprintf("%s from %s", log.SanitizeAPIKey(key), source)})
	}

	if cfg == nil || key == "" {
		result.add(Check{Name: "api", Status: CheckSkip, Message: "skipped"})
		return result
	}
	result.add(checkAPI(ctx, cfg))

	if c := traceCheck(cfg); c != nil {
		result.add(*c)
	}
	return result
}

// traceCheck warns when an OTLP exporter has no endpoint configured.
func traceCheck(cfg *config.Config) *Check {
	otlp := cfg.Trace.Exporter == tracing.ExporterOTLPHTTP || cfg.Trace.Exporter == tracing.ExporterOTLPGRPC
	if !otlp || cfg.Trace.Endpoint != "" {
		return nil
	}
	return &Check{
		Name:    "tracing",
		Status:  CheckWarn,
		Message: cfg.Trace.Exporter + " exporter has no endpoint; the OTLP default will be used",
		Fix:     "exa config set trace.endpoint <host:port>",
	}
}

func apiKey(ctx context.Context) (key, source string) {
	if flag := shared.GetAPIKeyFlag(); flag != "" {
		return flag, "flag"
	}
	key, source, err := shared.DefaultResolver().Lookup(ctx, secrets.APIKeyName)
	if err != nil {
		return "", ""
	}
	return key, source
}

// checkAPI lists one research task to prove the key is accepted.
func checkAPI(ctx context.Context, cfg *config.Config) Check {
	rt, err := shared.NewRuntime(ctx)
	if err != nil {
		return Check{Name: "api", Status: CheckFail, Message: err.Error()}
	}
	defer rt.Close()

	start := time.Now()
	_, err = rt.Client.Research.List(ctx, exa.ListParams{Limit: 1})
	latency := time.Since(start).Round(time.Millisecond)

	if err == nil {
		return Check{Name: "api", Status: CheckOK, Message: fmt.Sprintf("%s reachable in %s", cfg.API.BaseURL, latency)}
	}

	c := Check{Name: "api", Status: CheckFail, Message: err.Error()}
	apiErr, ok := exaerrors.AsAPIError(err)
	switch {
	case !ok:
		c.Fix = "check network access to " + cfg.API.BaseURL
	case apiErr.Kind == exaerrors.KindUnauthorized:
		c.Fix = "the key was rejected; run 'exa auth login' with a valid key"
	}
	return c
}

func writeResult(w io.Writer, r *DoctorResult) {
	for _, c := range r.Checks {
		var mark string
		switch c.Status {
		case CheckOK:
			mark = shared.RenderOK("✓")
		case CheckWarn:
			mark = shared.RenderWarn("!")
		case CheckFail:
			mark = shared.RenderError("✗")
		default:
			mark = shared.Muted.Render("-")
		}
		fmt.Fprintf(w, "%s %-8s %s\n", mark, c.Name, c.Message)
		if c.Fix != "" {
			fmt.Fprintf(w, "  %s\n", shared.Muted.Render("→ "+c.Fix))
		}
	}

	fmt.Fprintln(w)
	if r.OverallHealthy {
		fmt.Fprintln(w, shared.RenderOK("All checks passed"))
	} else {
		fmt.Fprintln(w, shared.RenderError("Some checks failed"))
	}
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
