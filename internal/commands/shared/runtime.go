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
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"go.opentelemetry.io/otel"

	"github.com/tombee/exa/internal/config"
	"github.com/tombee/exa/internal/log"
	"github.com/tombee/exa/internal/secrets"
	"github.com/tombee/exa/internal/tracing"
	"github.com/tombee/exa/pkg/exa"
	"github.com/tombee/exa/pkg/httpclient"
)

// DefaultResolver builds the API key lookup chain: EXA_API_KEY, then the
// OS keychain. Replaced in tests.
var DefaultResolver = func() *secrets.Resolver {
	return secrets.NewResolver(secrets.NewEnvBackend(), secrets.NewKeychainBackend())
}

// LoadConfig loads the config file and applies persistent flag overrides.
func LoadConfig() (*config.Config, error) {
	cfg, err := config.Load(configFlag)
	if err != nil {
		return nil, err
	}

	if baseURLFlag != "" {
		cfg.API.BaseURL = baseURLFlag
	}
	if timeoutFlag > 0 {
		cfg.API.Timeout = timeoutFlag
	}
	if debugFlag {
		cfg.API.Debug = true
	}
	switch {
	case GetJSON():
		cfg.Output.Format = config.OutputJSON
	case cfg.Output.Format == config.OutputJSON:
		jsonFlag = true
	}
	if traceFlag != "" {
		cfg.Trace.Exporter = strings.ToLower(traceFlag)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Runtime bundles what an API command needs for one invocation.
type Runtime struct {
	Config *config.Config
	Client *exa.Client
	Logger *slog.Logger

	tracing *tracing.Provider
}

// NewRuntime loads configuration, resolves the API key, sets up tracing and
// builds the client.
func NewRuntime(ctx context.Context) (*Runtime, error) {
	cfg, err := LoadConfig()
	if err != nil {
		return nil, err
	}

	apiKey := strings.TrimSpace(apiKeyFlag)
	if apiKey == "" {
		apiKey, err = secrets.ResolveAPIKey(ctx, "", DefaultResolver())
		if err != nil {
			return nil, err
		}
	}

	logger := NewLogger(cfg)

	tp, err := tracing.Setup(ctx, cfg.TracingConfig(version))
	if err != nil {
		return nil, err
	}

	hc := cfg.HTTPConfig(apiKey)
	hc.UserAgent = "exa-cli/" + version
	hc.Logger = logger
	hc.TracerProvider = tp.TracerProvider()
	hc.MeterProvider = otel.GetMeterProvider()

	conn, err := httpclient.New(hc)
	if err != nil {
		_ = tp.Shutdown(ctx)
		return nil, err
	}

	return &Runtime{
		Config:  cfg,
		Client:  exa.NewWithConnection(conn),
		Logger:  logger,
		tracing: tp,
	}, nil
}

// Close flushes pending spans.
func (r *Runtime) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return r.tracing.Shutdown(ctx)
}

// NewLogger builds the stderr logger from the log section. Debug mode raises
// the level so request dumps are visible.
func NewLogger(cfg *config.Config) *slog.Logger {
	lc := &log.Config{
		Level:  cfg.Log.Level,
		Format: log.Format(cfg.Log.Format),
	}
	if cfg.API.Debug {
		lc.Level = "debug"
	}
	return log.New(lc)
}

// WithRuntime builds a Runtime for cmd, runs fn with a context carrying a
// correlation ID, then flushes tracing.
func WithRuntime(cmd *cobra.Command, fn func(ctx context.Context, rt *Runtime) error) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, _ = tracing.EnsureContext(ctx)

	rt, err := NewRuntime(ctx)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := rt.Close(); cerr != nil {
			rt.Logger.Warn("failed to flush traces", "error", cerr)
		}
	}()

	return fn(ctx, rt)
}
