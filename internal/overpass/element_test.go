package overpass_test

import (
	"testing"

	"github.com/UnknownOlympus/scout/internal/models"
	"github.com/UnknownOlympus/scout/internal/overpass"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr(f float64) *float64 { return &f }

func node(name string, lat, lon *float64) overpass.Element {
	el := overpass.Element{Type: "node", Lat: lat, Lon: lon}
	if name != "" {
		el.Tags = map[string]string{"name": name}
	}
	return el
}

func way(name string, center *overpass.LatLon) overpass.Element {
	el := overpass.Element{Type: "way", Center: center}
	if name != "" {
		el.Tags = map[string]string{"name": name}
	}
	return el
}

func TestElement_Shape(t *testing.T) {
	assert.Equal(t, overpass.Point{Lat: ptr(1), Lon: ptr(2)}, node("a", ptr(1), ptr(2)).Shape())
	assert.Equal(t,
		overpass.Area{CentroidLat: ptr(3), CentroidLon: ptr(4)},
		way("b", &overpass.LatLon{Lat: ptr(3), Lon: ptr(4)}).Shape(),
	)
	assert.Equal(t, overpass.Area{}, way("c", nil).Shape())
	assert.Equal(t, overpass.Other{Kind: "relation"}, overpass.Element{Type: "relation"}.Shape())
}

func TestNormalize(t *testing.T) {
	t.Run("point with all tags", func(t *testing.T) {
		el := overpass.Element{
			Type: "node",
			Lat:  ptr(48.85),
			Lon:  ptr(2.35),
			Tags: map[string]string{
				"name":        "  Café de Flore ",
				"addr:street": "Boulevard Saint-Germain",
				"addr:city":   "Paris",
				"phone":       "+33 1 45 48 55 26",
				"website":     "https://cafedeflore.fr",
			},
		}

		business, skip := overpass.Normalize(el, "cafe")

		require.Equal(t, overpass.SkipNone, skip)
		assert.Equal(t, models.Business{
			Name:         "Café de Flore",
			BusinessType: "cafe",
			Location:     models.Coordinates{Latitude: 48.85, Longitude: 2.35},
			Address:      models.Address{Street: "Boulevard Saint-Germain", City: "Paris"},
			Phone:        "+33 1 45 48 55 26",
			Website:      "https://cafedeflore.fr",
		}, business)
	})

	t.Run("area uses centroid and empty optional fields", func(t *testing.T) {
		business, skip := overpass.Normalize(way("Cafe B", &overpass.LatLon{Lat: ptr(10), Lon: ptr(20)}), "cafe")

		require.Equal(t, overpass.SkipNone, skip)
		assert.Equal(t, models.Coordinates{Latitude: 10, Longitude: 20}, business.Location)
		assert.Empty(t, business.Address.Street)
		assert.Empty(t, business.Phone)
	})

	tests := []struct {
		name string
		el   overpass.Element
		want overpass.Skip
	}{
		{"no tags", overpass.Element{Type: "node", Lat: ptr(1), Lon: ptr(1)}, overpass.SkipNoName},
		{"blank name", node("   ", ptr(1), ptr(1)), overpass.SkipNoName},
		{"unnamed relation counts as no name", overpass.Element{Type: "relation"}, overpass.SkipNoName},
		{"named relation", overpass.Element{Type: "relation", Tags: map[string]string{"name": "R"}}, overpass.SkipUnsupported},
		{"node without lon", node("A", ptr(1), nil), overpass.SkipNoCoords},
		{"way without center", way("B", nil), overpass.SkipNoCoords},
		{"way with half center", way("C", &overpass.LatLon{Lat: ptr(1)}), overpass.SkipNoCoords},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, skip := overpass.Normalize(tt.el, "cafe")
			assert.Equal(t, tt.want, skip)
		})
	}
}

func TestCollect(t *testing.T) {
	t.Run("drops unnamed and unlocated features", func(t *testing.T) {
		elements := []overpass.Element{
			node("Cafe A", ptr(48.1), ptr(2.1)),
			way("Cafe B", &overpass.LatLon{Lat: ptr(48.2), Lon: ptr(2.2)}),
			node("", ptr(48.3), ptr(2.3)),
			node("Cafe D", nil, nil),
		}

		businesses, stats := overpass.Collect(elements, "cafe", 10)

		require.Len(t, businesses, 2)
		assert.Equal(t, "Cafe A", businesses[0].Name)
		assert.Equal(t, "Cafe B", businesses[1].Name)
		assert.Equal(t, overpass.Stats{Accepted: 2, NoName: 1, NoCoords: 1}, stats)
	})

	t.Run("stops at limit in upstream order", func(t *testing.T) {
		var elements []overpass.Element
		for _, name := range []string{"First", "Second", "Third", "Fourth", "Fifth"} {
			elements = append(elements, node(name, ptr(1), ptr(1)))
		}

		businesses, stats := overpass.Collect(elements, "cafe", 1)

		require.Len(t, businesses, 1)
		assert.Equal(t, "First", businesses[0].Name)
		assert.Equal(t, 1, stats.Accepted)
	})

	t.Run("skipped features do not count toward the limit", func(t *testing.T) {
		elements := []overpass.Element{
			node("", ptr(1), ptr(1)),
			node("A", ptr(1), ptr(1)),
			overpass.Element{Type: "relation", Tags: map[string]string{"name": "R"}},
			node("B", ptr(1), ptr(1)),
			node("C", ptr(1), ptr(1)),
		}

		businesses, stats := overpass.Collect(elements, "bank", 2)

		assert.Equal(t, []string{"A", "B"}, []string{businesses[0].Name, businesses[1].Name})
		assert.Equal(t, overpass.Stats{Accepted: 2, NoName: 1, Unsupported: 1}, stats)
	})

	t.Run("empty input", func(t *testing.T) {
		businesses, stats := overpass.Collect(nil, "cafe", 5)

		assert.NotNil(t, businesses)
		assert.Empty(t, businesses)
		assert.Zero(t, stats)
	})
}

func TestSkip_String(t *testing.T) {
	assert.Equal(t, "no_name", overpass.SkipNoName.String())
	assert.Equal(t, "no_coords", overpass.SkipNoCoords.String())
	assert.Equal(t, "unknown", overpass.Skip(42).String())
}
