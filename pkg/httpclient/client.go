package httpclient

import (
	"crypto/tls"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/tombee/exa/internal/log"
)

// Connection is a configured HTTP session bound to one API key and base URL.
// It is safe for concurrent use.
type Connection struct {
	cfg     Config
	baseURL string
	logger  *slog.Logger

	// client enforces cfg.Timeout; streamClient does not, so long-lived
	// event streams are bounded only by the caller's context.
	client       *http.Client
	streamClient *http.Client

	inst *instruments
}

// New creates a Connection with the given configuration.
// The transport stack, from outermost to innermost:
//   - rate limiting (when RateLimit > 0)
//   - request logging with sanitized URLs, User-Agent and correlation ID
//   - the base transport with TLS 1.2+ and the connect timeout
//
// Returns a *errors.ConfigurationError if the configuration is invalid.
func New(cfg Config) (*Connection, error) {
	cfg = cfg.withDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	logger := cfg.Logger
	if logger == nil {
		if cfg.Debug {
			logger = log.New(&log.Config{Level: "debug", Format: log.FormatText})
		} else {
			logger = slog.Default()
		}
	}
	logger = log.WithComponent(logger, "httpclient")

	base := cfg.Transport
	if base == nil {
		base = newBaseTransport(cfg)
	}

	var rt http.RoundTripper = newLoggingTransport(base, cfg.UserAgent, logger)
	if cfg.RateLimit > 0 {
		rt = newRateLimitTransport(rt, rate.NewLimiter(rate.Limit(cfg.RateLimit), cfg.RateBurst))
	}

	inst, err := newInstruments(cfg.TracerProvider, cfg.MeterProvider)
	if err != nil {
		return nil, err
	}

	return &Connection{
		cfg:          cfg,
		baseURL:      strings.TrimRight(cfg.BaseURL, "/"),
		logger:       logger,
		client:       &http.Client{Transport: rt, Timeout: cfg.Timeout},
		streamClient: &http.Client{Transport: rt},
		inst:         inst,
	}, nil
}

// Config returns a copy of the connection's effective configuration.
func (c *Connection) Config() Config {
	return c.cfg
}

// BaseURL returns the base URL without a trailing slash.
func (c *Connection) BaseURL() string {
	return c.baseURL
}

func newBaseTransport(cfg Config) *http.Transport {
	return &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		TLSClientConfig: &tls.Config{
			MinVersion: tls.VersionTLS12,
			MaxVersion: tls.VersionTLS13,
		},

		MaxIdleConns:        100,
		MaxIdleConnsPerHost: 10,
		IdleConnTimeout:     90 * time.Second,

		DialContext: (&net.Dialer{
			Timeout:   cfg.OpenTimeout,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		TLSHandshakeTimeout:   cfg.OpenTimeout,
		ExpectContinueTimeout: 1 * time.Second,
	}
}
