package httpclient

import (
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	exaerrors "github.com/tombee/exa/pkg/errors"
)

// DefaultBaseURL is the production Exa API endpoint.
const DefaultBaseURL = "https://api.exa.ai"

// DefaultUserAgent is sent when Config.UserAgent is empty.
const DefaultUserAgent = "exa-go/1.0"

// APIKeyHeader carries the API key on every API request.
const APIKeyHeader = "x-api-key"

// Config configures a Connection.
type Config struct {
	// APIKey is sent in the x-api-key header on every API request.
	// Required. Must be non-empty.
	APIKey string

	// BaseURL is the scheme and host (optionally a path prefix) that
	// request paths are appended to.
	// Default: https://api.exa.ai
	BaseURL string

	// Timeout is the total per-request timeout for non-streaming requests.
	// Default: 30s. Must be > 0.
	Timeout time.Duration

	// OpenTimeout bounds connection establishment (dial and TLS handshake).
	// Default: 10s. Must be > 0.
	OpenTimeout time.Duration

	// Debug logs full request and response headers and bodies, with the
	// API key redacted.
	Debug bool

	// UserAgent is the User-Agent header value.
	// Default: exa-go/1.0
	UserAgent string

	// RateLimit caps outgoing requests per second (0 = unlimited).
	RateLimit float64

	// RateBurst is the limiter bucket size. Default: 1 when RateLimit > 0.
	RateBurst int

	// Transport replaces the base network transport. Used by tests.
	Transport http.RoundTripper

	// Logger receives request logs. Default: slog.Default(), or a
	// debug-level stderr logger when Debug is set.
	Logger *slog.Logger

	// TracerProvider and MeterProvider default to the otel globals.
	TracerProvider trace.TracerProvider
	MeterProvider  metric.MeterProvider
}

// DefaultConfig returns a Config with sensible defaults. APIKey is left empty.
func DefaultConfig() Config {
	return Config{
		BaseURL:     DefaultBaseURL,
		Timeout:     30 * time.Second,
		OpenTimeout: 10 * time.Second,
		UserAgent:   DefaultUserAgent,
	}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.APIKey) == "" {
		return &exaerrors.ConfigurationError{
			Key:    "api_key",
			Reason: "API key is required",
		}
	}

	if c.Timeout <= 0 {
		return &exaerrors.ConfigurationError{
			Key:    "timeout",
			Reason: fmt.Sprintf("must be > 0, got %v", c.Timeout),
		}
	}

	if c.OpenTimeout <= 0 {
		return &exaerrors.ConfigurationError{
			Key:    "open_timeout",
			Reason: fmt.Sprintf("must be > 0, got %v", c.OpenTimeout),
		}
	}

	if c.RateLimit < 0 {
		return &exaerrors.ConfigurationError{
			Key:    "rate_limit",
			Reason: fmt.Sprintf("must be >= 0, got %v", c.RateLimit),
		}
	}

	u, err := url.Parse(c.BaseURL)
	if err != nil {
		return &exaerrors.ConfigurationError{Key: "base_url", Reason: "invalid URL", Cause: err}
	}
	if u.Scheme != "http" && u.Scheme != "https" || u.Host == "" {
		return &exaerrors.ConfigurationError{
			Key:    "base_url",
			Reason: fmt.Sprintf("must be an absolute http(s) URL, got %q", c.BaseURL),
		}
	}

	return nil
}

// withDefaults fills zero-valued optional fields.
func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.BaseURL == "" {
		c.BaseURL = d.BaseURL
	}
	if c.Timeout == 0 {
		c.Timeout = d.Timeout
	}
	if c.OpenTimeout == 0 {
		c.OpenTimeout = d.OpenTimeout
	}
	if c.UserAgent == "" {
		c.UserAgent = d.UserAgent
	}
	if c.RateLimit > 0 && c.RateBurst <= 0 {
		c.RateBurst = 1
	}
	return c
}
