package geocoding

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"googlemaps.github.io/maps"
)

// ProviderType represents the type of geocoding provider.
type ProviderType string

const (
	// ProviderTypeNominatim represents OpenStreetMap Nominatim geocoding provider.
	ProviderTypeNominatim ProviderType = "nominatim"
	// ProviderTypeGoogle represents Google Maps geocoding provider.
	ProviderTypeGoogle ProviderType = "google"
)

// ProviderConfig holds configuration for creating a geocoding provider.
type ProviderConfig struct {
	Type      ProviderType  // Type of provider to create
	APIKey    string        // API key (used by Google provider)
	BaseURL   string        // Search endpoint (used by Nominatim provider)
	UserAgent string        // User-Agent header (used by Nominatim provider)
	Timeout   time.Duration // Per-request timeout
	Delay     time.Duration // Courtesy delay before each request
	Logger    *slog.Logger
}

// NewProvider creates a geocoding provider based on the provided configuration.
//
// Supported provider types:
// - "nominatim": OpenStreetMap Nominatim API (free, no API key required)
// - "google": Google Maps Geocoding API (requires API key)
func NewProvider(config ProviderConfig) (Provider, error) {
	switch config.Type {
	case ProviderTypeNominatim:
		return newNominatimProvider(config), nil
	case ProviderTypeGoogle:
		return newGoogleProvider(config)
	default:
		return nil, fmt.Errorf("unsupported provider type: %s", config.Type)
	}
}

func newNominatimProvider(config ProviderConfig) Provider {
	return NewNominatimProvider(NominatimOptions{
		BaseURL:   config.BaseURL,
		UserAgent: config.UserAgent,
		Timeout:   config.Timeout,
		Delay:     config.Delay,
	}, config.Logger)
}

func newGoogleProvider(config ProviderConfig) (Provider, error) {
	if config.APIKey == "" {
		return nil, errors.New("API key is required for Google provider")
	}

	clientOpts := []maps.ClientOption{maps.WithAPIKey(config.APIKey)}
	if config.Timeout > 0 {
		clientOpts = append(clientOpts, maps.WithHTTPClient(&http.Client{Timeout: config.Timeout}))
	}
	// One request per second, same as the Nominatim courtesy delay.
	clientOpts = append(clientOpts, maps.WithRateLimit(1))

	client, err := maps.NewClient(clientOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create Google Maps client: %w", err)
	}

	return NewGoogleProvider(client, config.Logger), nil
}
