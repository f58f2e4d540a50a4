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

package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/tombee/exa/internal/log"
	"github.com/tombee/exa/internal/tracing"
	"github.com/tombee/exa/internal/tracing/redact"
	exaerrors "github.com/tombee/exa/pkg/errors"
	"github.com/tombee/exa/pkg/httpclient"
)

// Config is the CLI configuration stored in ~/.config/exa/config.yaml.
// The API key is not stored here; see internal/secrets.
type Config struct {
	API    APIConfig    `yaml:"api" json:"api"`
	Output OutputConfig `yaml:"output" json:"output"`
	Log    LogConfig    `yaml:"log" json:"log"`
	Trace  TraceConfig  `yaml:"trace" json:"trace"`
}

// APIConfig configures the connection to the Exa API.
type APIConfig struct {
	// BaseURL is the API endpoint.
	// Environment: EXA_BASE_URL
	// Default: https://api.exa.ai
	BaseURL string `yaml:"base_url,omitempty" json:"base_url,omitempty"`

	// Timeout is the total per-request timeout.
	// Environment: EXA_TIMEOUT
	// Default: 30s
	Timeout time.Duration `yaml:"timeout,omitempty" json:"timeout,omitempty"`

	// OpenTimeout bounds connection establishment.
	// Environment: EXA_OPEN_TIMEOUT
	// Default: 10s
	OpenTimeout time.Duration `yaml:"open_timeout,omitempty" json:"open_timeout,omitempty"`

	// RateLimit caps requests per second; 0 disables the limiter.
	// Environment: EXA_RATE_LIMIT
	RateLimit float64 `yaml:"rate_limit,omitempty" json:"rate_limit,omitempty"`

	// Debug logs full requests and responses.
	// Environment: EXA_DEBUG
	Debug bool `yaml:"debug,omitempty" json:"debug,omitempty"`
}

// OutputConfig controls how results are printed.
type OutputConfig struct {
	// Format is "text" or "json".
	// Environment: EXA_OUTPUT
	Format string `yaml:"format,omitempty" json:"format,omitempty"`
}

// LogConfig controls diagnostic logging on stderr.
type LogConfig struct {
	Level  string `yaml:"level,omitempty" json:"level,omitempty"`
	Format string `yaml:"format,omitempty" json:"format,omitempty"`
}

// TraceConfig selects an OpenTelemetry span exporter.
type TraceConfig struct {
	// Exporter is none, console, otlp-http or otlp-grpc.
	// Environment: EXA_TRACE_EXPORTER
	Exporter string `yaml:"exporter,omitempty" json:"exporter,omitempty"`

	// Endpoint is the OTLP collector address.
	// Environment: OTEL_EXPORTER_OTLP_ENDPOINT
	Endpoint string `yaml:"endpoint,omitempty" json:"endpoint,omitempty"`

	Insecure bool `yaml:"insecure,omitempty" json:"insecure,omitempty"`

	// Redact is none, standard or strict. Default: standard.
	Redact string `yaml:"redact,omitempty" json:"redact,omitempty"`
}

// Output formats.
const (
	OutputText = "text"
	OutputJSON = "json"
)

// Default returns a Config with default values.
func Default() *Config {
	hc := httpclient.DefaultConfig()
	return &Config{
		API: APIConfig{
			BaseURL:     hc.BaseURL,
			Timeout:     hc.Timeout,
			OpenTimeout: hc.OpenTimeout,
		},
		Output: OutputConfig{Format: OutputText},
		Log:    LogConfig{Level: "warn", Format: string(log.FormatText)},
		Trace:  TraceConfig{Exporter: tracing.ExporterNone, Redact: string(redact.ModeStandard)},
	}
}

// Load reads the config file at path, applies defaults and environment
// overrides, then validates. An empty path means the default location, which
// may be absent; an explicit path must exist.
func Load(path string) (*Config, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		p, err := ConfigPath()
		if err != nil {
			return nil, &exaerrors.ConfigurationError{Key: "config_file", Reason: "cannot locate config directory", Cause: err}
		}
		path = p
	}

	if err := cfg.loadFromFile(path); err != nil {
		if explicit || !errors.Is(err, fs.ErrNotExist) {
			return nil, &exaerrors.ConfigurationError{
				Key:    "config_file",
				Reason: fmt.Sprintf("failed to load from %s", path),
				Cause:  err,
			}
		}
	}

	cfg.applyDefaults()
	cfg.loadFromEnv()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadFile reads only the config file at path, without environment overrides
// or validation. A missing file yields defaults. Used when editing the file.
func LoadFile(path string) (*Config, error) {
	cfg := Default()
	if err := cfg.loadFromFile(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, &exaerrors.ConfigurationError{
			Key:    "config_file",
			Reason: fmt.Sprintf("failed to load from %s", path),
			Cause:  err,
		}
	}
	cfg.applyDefaults()
	return cfg, nil
}

func (c *Config) loadFromFile(path string) error {
	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return fmt.Errorf("failed to get home directory: %w", err)
		}
		path = filepath.Join(home, path[2:])
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse YAML: %w", err)
	}
	return nil
}

// applyDefaults fills zero values left by a partial file.
func (c *Config) applyDefaults() {
	d := Default()
	if c.API.BaseURL == "" {
		c.API.BaseURL = d.API.BaseURL
	}
	if c.API.Timeout == 0 {
		c.API.Timeout = d.API.Timeout
	}
	if c.API.OpenTimeout == 0 {
		c.API.OpenTimeout = d.API.OpenTimeout
	}
	if c.Output.Format == "" {
		c.Output.Format = d.Output.Format
	}
	if c.Log.Level == "" {
		c.Log.Level = d.Log.Level
	}
	if c.Log.Format == "" {
		c.Log.Format = d.Log.Format
	}
	if c.Trace.Exporter == "" {
		c.Trace.Exporter = d.Trace.Exporter
	}
	if c.Trace.Redact == "" {
		c.Trace.Redact = d.Trace.Redact
	}
}

// loadFromEnv applies EXA_* overrides. Unparseable values are ignored.
func (c *Config) loadFromEnv() {
	if val := os.Getenv("EXA_BASE_URL"); val != "" {
		c.API.BaseURL = val
	}
	if val := os.Getenv("EXA_TIMEOUT"); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			c.API.Timeout = d
		}
	}
	if val := os.Getenv("EXA_OPEN_TIMEOUT"); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			c.API.OpenTimeout = d
		}
	}
	if val := os.Getenv("EXA_RATE_LIMIT"); val != "" {
		if r, err := strconv.ParseFloat(val, 64); err == nil {
			c.API.RateLimit = r
		}
	}
	if val := os.Getenv("EXA_DEBUG"); val != "" {
		c.API.Debug = val == "1" || strings.ToLower(val) == "true"
	}
	if val := os.Getenv("EXA_OUTPUT"); val != "" {
		c.Output.Format = strings.ToLower(val)
	}
	if val := os.Getenv("EXA_LOG_LEVEL"); val != "" {
		c.Log.Level = strings.ToLower(val)
	}
	if val := os.Getenv("LOG_FORMAT"); val != "" {
		c.Log.Format = strings.ToLower(val)
	}
	if val := os.Getenv("EXA_TRACE_EXPORTER"); val != "" {
		c.Trace.Exporter = strings.ToLower(val)
	}
	if val := os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT"); val != "" {
		c.Trace.Endpoint = val
	}
}

// Validate checks field values and returns a *errors.ConfigurationError
// naming the first bad key.
func (c *Config) Validate() error {
	u, err := url.Parse(c.API.BaseURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return &exaerrors.ConfigurationError{
			Key:    "api.base_url",
			Reason: fmt.Sprintf("must be an absolute http(s) URL, got %q", c.API.BaseURL),
			Cause:  err,
		}
	}
	if c.API.Timeout <= 0 {
		return &exaerrors.ConfigurationError{Key: "api.timeout", Reason: "must be > 0"}
	}
	if c.API.OpenTimeout <= 0 {
		return &exaerrors.ConfigurationError{Key: "api.open_timeout", Reason: "must be > 0"}
	}
	if c.API.RateLimit < 0 {
		return &exaerrors.ConfigurationError{Key: "api.rate_limit", Reason: "must be >= 0"}
	}
	switch c.Output.Format {
	case OutputText, OutputJSON:
	default:
		return &exaerrors.ConfigurationError{
			Key:    "output.format",
			Reason: fmt.Sprintf("must be text or json, got %q", c.Output.Format),
		}
	}
	switch c.Trace.Exporter {
	case tracing.ExporterNone, tracing.ExporterConsole, tracing.ExporterOTLPHTTP, tracing.ExporterOTLPGRPC:
	default:
		return &exaerrors.ConfigurationError{
			Key:    "trace.exporter",
			Reason: fmt.Sprintf("unknown exporter %q", c.Trace.Exporter),
		}
	}
	if _, err := redact.ParseMode(c.Trace.Redact); err != nil {
		return &exaerrors.ConfigurationError{Key: "trace.redact", Reason: err.Error()}
	}
	return nil
}

// HTTPConfig converts the API section into a connection config. The API key
// is supplied separately.
func (c *Config) HTTPConfig(apiKey string) httpclient.Config {
	hc := httpclient.DefaultConfig()
	hc.APIKey = apiKey
	hc.BaseURL = c.API.BaseURL
	hc.Timeout = c.API.Timeout
	hc.OpenTimeout = c.API.OpenTimeout
	hc.RateLimit = c.API.RateLimit
	hc.Debug = c.API.Debug
	return hc
}

// TracingConfig converts the trace section for tracing.Setup.
func (c *Config) TracingConfig(serviceVersion string) tracing.Config {
	mode, _ := redact.ParseMode(c.Trace.Redact)
	return tracing.Config{
		Exporter:       c.Trace.Exporter,
		Endpoint:       c.Trace.Endpoint,
		Insecure:       c.Trace.Insecure,
		Redaction:      mode,
		ServiceName:    "exa-cli",
		ServiceVersion: serviceVersion,
	}
}

// ConfigPath returns the default config file, $XDG_CONFIG_HOME/exa/config.yaml
// or ~/.config/exa/config.yaml on every platform, creating its directory.
func ConfigPath() (string, error) {
	base := os.Getenv("XDG_CONFIG_HOME")
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		base = filepath.Join(home, ".config")
	}
	dir := filepath.Join(base, "exa")
	if err := os.MkdirAll(dir, 0700); err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.yaml"), nil
}

// Save writes cfg to path atomically with owner-only permissions.
func Save(path string, cfg *Config) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config to YAML: %w", err)
	}

	tempPath := path + ".tmp"
	if err := os.WriteFile(tempPath, data, 0600); err != nil {
		return fmt.Errorf("failed to write temporary file: %w", err)
	}
	if err := os.Rename(tempPath, path); err != nil {
		os.Remove(tempPath)
		return fmt.Errorf("failed to rename temporary file: %w", err)
	}
	return nil
}
