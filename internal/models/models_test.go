package models_test

import (
	"testing"

	"github.com/UnknownOlympus/scout/internal/models"
	"github.com/stretchr/testify/assert"
)

func TestCoordinates_Valid(t *testing.T) {
	tests := []struct {
		name   string
		coords models.Coordinates
		want   bool
	}{
		{"paris", models.Coordinates{Latitude: 48.8566, Longitude: 2.3522}, true},
		{"poles and antimeridian", models.Coordinates{Latitude: -90, Longitude: 180}, true},
		{"latitude too high", models.Coordinates{Latitude: 90.1, Longitude: 0}, false},
		{"longitude too low", models.Coordinates{Latitude: 0, Longitude: -180.5}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.coords.Valid())
		})
	}
}

func TestSearchResult_Names(t *testing.T) {
	result := models.SearchResult{Businesses: []models.Business{{Name: "Cafe A"}, {Name: "Cafe B"}}}

	assert.Equal(t, []string{"Cafe A", "Cafe B"}, result.Names())
	assert.Empty(t, models.SearchResult{}.Names())
}
