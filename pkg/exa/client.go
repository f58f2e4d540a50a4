package exa

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/tombee/exa/pkg/httpclient"
)

// Client is the entry point to the Exa API. It is safe for concurrent use.
type Client struct {
	conn *httpclient.Connection

	Research *ResearchService
	Websets  *WebsetsService
	Imports  *ImportsService
	Monitors *MonitorsService
}

// Option configures a Client.
type Option func(*httpclient.Config) error

// WithBaseURL overrides the API endpoint.
func WithBaseURL(baseURL string) Option {
	return func(c *httpclient.Config) error {
		c.BaseURL = baseURL
		return nil
	}
}

// WithTimeout sets the total per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *httpclient.Config) error {
		c.Timeout = d
		return nil
	}
}

// WithOpenTimeout sets the connection establishment timeout.
func WithOpenTimeout(d time.Duration) Option {
	return func(c *httpclient.Config) error {
		c.OpenTimeout = d
		return nil
	}
}

// WithDebug enables full request and response logging.
func WithDebug(debug bool) Option {
	return func(c *httpclient.Config) error {
		c.Debug = debug
		return nil
	}
}

// WithLogger sets the logger for request logs.
func WithLogger(logger *slog.Logger) Option {
	return func(c *httpclient.Config) error {
		c.Logger = logger
		return nil
	}
}

// WithTransport sets the base network transport.
func WithTransport(rt http.RoundTripper) Option {
	return func(c *httpclient.Config) error {
		c.Transport = rt
		return nil
	}
}

// WithUserAgent sets the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(c *httpclient.Config) error {
		c.UserAgent = ua
		return nil
	}
}

// WithRateLimit caps outgoing requests per second with the given burst.
func WithRateLimit(perSecond float64, burst int) Option {
	return func(c *httpclient.Config) error {
		c.RateLimit = perSecond
		c.RateBurst = burst
		return nil
	}
}

// WithTracerProvider sets the provider for request spans.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(c *httpclient.Config) error {
		c.TracerProvider = tp
		return nil
	}
}

// WithMeterProvider sets the provider for request metrics.
func WithMeterProvider(mp metric.MeterProvider) Option {
	return func(c *httpclient.Config) error {
		c.MeterProvider = mp
		return nil
	}
}

// New creates a client for apiKey. Returns a *errors.ConfigurationError when
// the key is empty or an option produces an invalid configuration.
func New(apiKey string, opts ...Option) (*Client, error) {
	cfg := httpclient.DefaultConfig()
	cfg.APIKey = apiKey
	for _, opt := range opts {
		if err := opt(&cfg); err != nil {
			return nil, err
		}
	}

	conn, err := httpclient.New(cfg)
	if err != nil {
		return nil, err
	}
	return NewWithConnection(conn), nil
}

// NewWithConnection wraps an existing connection.
func NewWithConnection(conn *httpclient.Connection) *Client {
	c := &Client{conn: conn}
	c.Research = &ResearchService{client: c}
	c.Websets = newWebsetsService(c)
	c.Imports = &ImportsService{client: c}
	c.Monitors = &MonitorsService{client: c}
	return c
}

// Connection returns the underlying connection.
func (c *Client) Connection() *httpclient.Connection {
	return c.conn
}

// Request issues an arbitrary API call and returns the decoded response.
// Keys of a map[string]any params value pass through the parameter converter.
func (c *Client) Request(ctx context.Context, method, path string, params any) (*httpclient.Response, error) {
	return c.conn.Do(ctx, method, path, params)
}
