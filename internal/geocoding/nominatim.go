package geocoding

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/UnknownOlympus/scout/internal/apperr"
	"github.com/UnknownOlympus/scout/internal/models"
)

// Defaults for the public Nominatim instance.
const (
	NominatimBaseURL  = "https://nominatim.openstreetmap.org/search"
	DefaultUserAgent  = "SimpleLocalBusinessParser/1.0"
	nominatimTimeout  = 30 * time.Second
	nominatimCourtesy = time.Second
)

// NominatimProvider implements the Provider interface using OpenStreetMap's Nominatim API.
// The public instance allows one request per second, so every call waits a fixed
// courtesy delay before it goes out.
type NominatimProvider struct {
	client    HTTPClient   // HTTP client for making requests
	baseURL   string       // Base URL for the Nominatim search endpoint
	userAgent string       // userAgent is required by Nominatim usage policy
	delay     time.Duration
	log       *slog.Logger
}

// HTTPClient defines the interface for making HTTP requests.
// This allows for easy mocking in tests.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// nominatimResponse represents one match in the JSON response from Nominatim API.
type nominatimResponse struct {
	Lat         string `json:"lat"`
	Lon         string `json:"lon"`
	DisplayName string `json:"display_name"`
}

// NominatimOptions tunes a NominatimProvider. Zero values fall back to the defaults.
type NominatimOptions struct {
	BaseURL   string
	UserAgent string
	Timeout   time.Duration
	Delay     time.Duration
}

func (o NominatimOptions) withDefaults() NominatimOptions {
	if o.BaseURL == "" {
		o.BaseURL = NominatimBaseURL
	}
	if o.UserAgent == "" {
		o.UserAgent = DefaultUserAgent
	}
	if o.Timeout <= 0 {
		o.Timeout = nominatimTimeout
	}
	if o.Delay < 0 {
		o.Delay = 0
	}

	return o
}

// NewNominatimProvider creates a new Nominatim geocoding provider with its own HTTP client.
func NewNominatimProvider(opts NominatimOptions, log *slog.Logger) *NominatimProvider {
	opts = opts.withDefaults()

	return NewNominatimProviderWithClient(&http.Client{Timeout: opts.Timeout}, opts, log)
}

// NewNominatimProviderWithClient creates a Nominatim provider with a custom HTTP client.
// Useful for testing with mocked HTTP clients.
func NewNominatimProviderWithClient(client HTTPClient, opts NominatimOptions, log *slog.Logger) *NominatimProvider {
	opts = opts.withDefaults()

	return &NominatimProvider{
		client:    client,
		baseURL:   opts.BaseURL,
		userAgent: opts.UserAgent,
		delay:     opts.Delay,
		log:       log,
	}
}

// Geocode resolves place to the coordinates of the first Nominatim match.
func (np *NominatimProvider) Geocode(ctx context.Context, place string) (*models.Coordinates, error) {
	if err := wait(ctx, np.delay); err != nil {
		return nil, fmt.Errorf("geocoding cancelled: %w", err)
	}

	np.log.InfoContext(ctx, "Looking up coordinates", "place", place)

	reqURL, err := url.Parse(np.baseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse base URL: %w", err)
	}

	query := reqURL.Query()
	query.Set("q", place)
	query.Set("format", "json")
	query.Set("limit", "1")
	reqURL.RawQuery = query.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", np.userAgent)

	resp, err := np.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute geocoding request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<10))
		np.log.ErrorContext(ctx, "Nominatim API error", "status", resp.StatusCode, "body", string(body))
		return nil, &apperr.StatusError{Service: "nominatim", StatusCode: resp.StatusCode, Body: string(body)}
	}

	var results []nominatimResponse
	if err = json.NewDecoder(resp.Body).Decode(&results); err != nil {
		return nil, fmt.Errorf("failed to decode nominatim response: %w: %w", apperr.ErrMalformed, err)
	}

	if len(results) == 0 {
		np.log.WarnContext(ctx, "Place not found", "place", place)
		return nil, ErrNotFound
	}

	lat, err := strconv.ParseFloat(results[0].Lat, 64)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid latitude: %s", ErrInvalidCoords, results[0].Lat)
	}
	lon, err := strconv.ParseFloat(results[0].Lon, 64)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid longitude: %s", ErrInvalidCoords, results[0].Lon)
	}

	np.log.DebugContext(ctx, "Nominatim found result", "display_name", results[0].DisplayName)

	return &models.Coordinates{Latitude: lat, Longitude: lon}, nil
}

// wait blocks for d or until ctx is done.
func wait(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
