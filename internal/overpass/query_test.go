package overpass_test

import (
	"testing"

	"github.com/UnknownOlympus/scout/internal/models"
	"github.com/UnknownOlympus/scout/internal/overpass"
	"github.com/stretchr/testify/assert"
)

func TestBuildQuery(t *testing.T) {
	query := overpass.BuildQuery(overpass.QueryParams{
		Center:        models.Coordinates{Latitude: 48.8566, Longitude: 2.3522},
		TagKey:        "amenity",
		TagValue:      "cafe",
		RadiusMeters:  10000,
		Limit:         7,
		ServerTimeout: 90,
	})

	want := "[out:json][timeout:90];\n" +
		"(\n" +
		"  node[\"amenity\"=\"cafe\"](around:10000,48.8566,2.3522);\n" +
		"  way[\"amenity\"=\"cafe\"](around:10000,48.8566,2.3522);\n" +
		");\n" +
		"out center 7;\n"
	assert.Equal(t, want, query)
}

func TestBuildQuery_EscapesCategory(t *testing.T) {
	query := overpass.BuildQuery(overpass.QueryParams{
		TagKey:   "amenity",
		TagValue: `bar"];out;["x`,
		Limit:    1,
	})

	assert.Contains(t, query, `node["amenity"="bar\"];out;[\"x"]`)
}
