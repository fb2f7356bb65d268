// Package overpass searches OpenStreetMap features around a point through the
// Overpass API and turns them into business records.
package overpass

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/UnknownOlympus/scout/internal/metrics"
	"github.com/prometheus/client_golang/prometheus"
)

// Defaults for the public Overpass instance.
const (
	DefaultEndpoint      = "https://overpass-api.de/api/interpreter"
	DefaultUserAgent     = "SimpleLocalBusinessParser/1.0"
	DefaultTagKey        = "amenity"
	DefaultRadiusMeters  = 10000
	DefaultServerTimeout = 90
	DefaultMaxRetries    = 3
	defaultTimeout       = 120 * time.Second
)

// Backoffs between attempts; fixed per cause.
const (
	TimeoutBackoff = 2 * time.Second
	BusyBackoff    = 3 * time.Second
	ErrorBackoff   = 2 * time.Second
)

// HTTPClient defines the interface for making HTTP requests.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// Sleeper blocks for d. It returns early with an error when ctx is done.
type Sleeper func(ctx context.Context, d time.Duration) error

// Client posts feature queries to Overpass.
type Client struct {
	http          HTTPClient
	endpoint      string
	userAgent     string
	tagKey        string
	radius        int
	serverTimeout int
	maxRetries    int
	sleep         Sleeper
	metrics       *metrics.Metrics
	out           io.Writer // user-facing progress lines
	log           *slog.Logger
}

// Option configures the Client.
type Option func(*Client)

// WithEndpoint overrides the interpreter URL.
func WithEndpoint(u string) Option {
	return func(c *Client) {
		if u != "" {
			c.endpoint = u
		}
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(h HTTPClient) Option {
	return func(c *Client) { c.http = h }
}

// WithTimeout replaces the HTTP client with one using the given timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.http = &http.Client{Timeout: d}
		}
	}
}

// WithUserAgent sets the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(c *Client) {
		if ua != "" {
			c.userAgent = ua
		}
	}
}

// WithTagKey sets the OSM tag the category is matched against.
func WithTagKey(key string) Option {
	return func(c *Client) {
		if key != "" {
			c.tagKey = key
		}
	}
}

// WithRadius sets the search radius in meters.
func WithRadius(meters int) Option {
	return func(c *Client) {
		if meters > 0 {
			c.radius = meters
		}
	}
}

// WithServerTimeout sets the [timeout:N] budget sent to the server.
func WithServerTimeout(seconds int) Option {
	return func(c *Client) {
		if seconds > 0 {
			c.serverTimeout = seconds
		}
	}
}

// WithMaxRetries sets the number of attempts per search.
func WithMaxRetries(n int) Option {
	return func(c *Client) {
		if n > 0 {
			c.maxRetries = n
		}
	}
}

// WithSleeper replaces the backoff sleeper (useful for testing).
func WithSleeper(s Sleeper) Option {
	return func(c *Client) { c.sleep = s }
}

// WithMetrics records attempts, skips and latencies in m.
func WithMetrics(m *metrics.Metrics) Option {
	return func(c *Client) { c.metrics = m }
}

// WithOutput sets where progress lines for the user are printed.
func WithOutput(w io.Writer) Option {
	return func(c *Client) { c.out = w }
}

// NewClient constructs a Client with the public Overpass defaults.
func NewClient(log *slog.Logger, opts ...Option) *Client {
	c := &Client{
		http:          &http.Client{Timeout: defaultTimeout},
		endpoint:      DefaultEndpoint,
		userAgent:     DefaultUserAgent,
		tagKey:        DefaultTagKey,
		radius:        DefaultRadiusMeters,
		serverTimeout: DefaultServerTimeout,
		maxRetries:    DefaultMaxRetries,
		sleep:         sleepContext,
		out:           io.Discard,
		log:           log,
	}
	for _, o := range opts {
		o(c)
	}
	if c.metrics == nil {
		c.metrics = metrics.NewMetrics(prometheus.NewRegistry())
	}

	return c
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
