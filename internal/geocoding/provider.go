package geocoding

import (
	"context"
	"errors"

	"github.com/UnknownOlympus/scout/internal/models"
)

// Provider is an interface that defines a method for geocoding a free-text place name.
// The Geocode method returns the coordinates of the single best match, ErrNotFound when
// the upstream has no match, or another error describing the failure.
type Provider interface {
	Geocode(ctx context.Context, place string) (*models.Coordinates, error)
}

// Common errors shared by all providers.
var (
	ErrNotFound      = errors.New("place not found")
	ErrInvalidCoords = errors.New("geocoder returned invalid coordinates")
)
