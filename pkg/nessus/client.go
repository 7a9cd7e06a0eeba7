// pkg/nessus/client.go
// Package nessus implements an authenticated client for a Nessus server's
// HTTP management interface, focused on launching previously defined scans.
//
// The client performs the web interface's unauthenticated-session handshake
// (API token extraction from nessus6.js, then username/password login for a
// session token) once per batch, and fans out scan launch requests
// concurrently with bounded exponential-backoff retry per scan.
package nessus

import (
	"crypto/tls"
	"net/http"
	"strings"
	"time"

	"github.com/nesslaunch/nesslaunch/pkg/config"
	"github.com/nesslaunch/nesslaunch/pkg/retry"
)

const defaultTimeout = 30 * time.Second

// Client is a client for a single Nessus server. It is safe for concurrent
// use: the underlying transport and the credential strings are shared
// read-only across all launch goroutines.
type Client struct {
	host      string // base URL, trailing slash trimmed
	username  string
	password  string
	userAgent string

	httpClient *http.Client
	retryCfg   retry.Config
	sink       EventSink
}

// Option customizes a Client.
type Option func(*Client)

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithRetryConfig replaces the default per-scan retry schedule.
func WithRetryConfig(cfg retry.Config) Option {
	return func(c *Client) { c.retryCfg = cfg }
}

// WithEventSink replaces the default zerolog-backed event sink.
func WithEventSink(s EventSink) Option {
	return func(c *Client) { c.sink = s }
}

// NewClient creates a Client from the given connection settings. The
// settings are validated first; a missing host, username or password yields
// a *config.ConfigError and no client is constructed.
func NewClient(cfg config.NessusConfig, opts ...Option) (*Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	userAgent := cfg.UserAgent
	if userAgent == "" {
		userAgent = config.DefaultConfig().Nessus.UserAgent
	}

	c := &Client{
		host:      strings.TrimRight(cfg.Host, "/"),
		username:  cfg.Username,
		password:  cfg.Password,
		userAgent: userAgent,
		retryCfg:  retry.DefaultConfig(),
		sink:      NewLogSink(),
	}

	transport := http.DefaultTransport
	if cfg.Insecure {
		// Nessus management interfaces commonly run self-signed certs.
		transport = &http.Transport{
			TLSClientConfig: &tls.Config{InsecureSkipVerify: true}, //nolint:gosec // opt-in via nessus.insecure
		}
	}
	c.httpClient = &http.Client{
		Timeout:   defaultTimeout,
		Transport: transport,
	}

	for _, opt := range opts {
		opt(c)
	}

	return c, nil
}

// Host returns the normalized base URL the client talks to.
func (c *Client) Host() string { return c.host }
