package geocoding

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/UnknownOlympus/scout/internal/models"
	"googlemaps.github.io/maps"
)

// GoogleProvider geocodes places through the Google Maps Geocoding API.
type GoogleProvider struct {
	client GoogleAPIClient // client is the Google Maps API client
	log    *slog.Logger
}

// GoogleAPIClient is the subset of *maps.Client used by GoogleProvider.
type GoogleAPIClient interface {
	Geocode(ctx context.Context, r *maps.GeocodingRequest) ([]maps.GeocodingResult, error)
}

// NewGoogleProvider wraps an already configured Google Maps client.
func NewGoogleProvider(client GoogleAPIClient, log *slog.Logger) *GoogleProvider {
	return &GoogleProvider{client: client, log: log}
}

// Geocode returns the location of the first Google Maps match for place.
func (gp *GoogleProvider) Geocode(ctx context.Context, place string) (*models.Coordinates, error) {
	gp.log.InfoContext(ctx, "Looking up coordinates with Google Maps", "place", place)

	req := maps.GeocodingRequest{Address: place}
	geocodeResponse, err := gp.client.Geocode(ctx, &req)
	if err != nil {
		return nil, fmt.Errorf("failed to geocode place: %w", err)
	}

	if len(geocodeResponse) == 0 {
		gp.log.WarnContext(ctx, "Place not found", "place", place)
		return nil, ErrNotFound
	}
	loc := geocodeResponse[0].Geometry.Location

	return &models.Coordinates{Latitude: loc.Lat, Longitude: loc.Lng}, nil
}
