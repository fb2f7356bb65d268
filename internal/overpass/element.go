package overpass

import (
	"strings"

	"github.com/UnknownOlympus/scout/internal/models"
)

// Element is a raw map feature as returned by the Overpass JSON output.
type Element struct {
	Type   string            `json:"type"`
	ID     int64             `json:"id"`
	Lat    *float64          `json:"lat,omitempty"`
	Lon    *float64          `json:"lon,omitempty"`
	Center *LatLon           `json:"center,omitempty"`
	Tags   map[string]string `json:"tags,omitempty"`
}

// LatLon is a possibly incomplete coordinate pair.
type LatLon struct {
	Lat *float64 `json:"lat,omitempty"`
	Lon *float64 `json:"lon,omitempty"`
}

type response struct {
	Elements []Element `json:"elements"`
	Remark   string    `json:"remark,omitempty"`
}

// Shape is the geometry variant of an Element: Point, Area or Other.
type Shape interface {
	isShape()
}

// Point is a node; its coordinates are given directly.
type Point struct {
	Lat, Lon *float64
}

// Area is a way; Overpass computes its centroid for "out center".
type Area struct {
	CentroidLat, CentroidLon *float64
}

// Other is any element kind that cannot be placed on the map (relations, areas...).
type Other struct {
	Kind string
}

func (Point) isShape() {}
func (Area) isShape()  {}
func (Other) isShape() {}

// Shape returns the geometry variant of e.
func (e Element) Shape() Shape {
	switch e.Type {
	case "node":
		return Point{Lat: e.Lat, Lon: e.Lon}
	case "way":
		var a Area
		if e.Center != nil {
			a.CentroidLat, a.CentroidLon = e.Center.Lat, e.Center.Lon
		}
		return a
	default:
		return Other{Kind: e.Type}
	}
}

// Skip is the reason an element did not become a business record.
type Skip int

const (
	SkipNone Skip = iota
	SkipNoName
	SkipUnsupported
	SkipNoCoords
)

func (s Skip) String() string {
	switch s {
	case SkipNone:
		return "none"
	case SkipNoName:
		return "no_name"
	case SkipUnsupported:
		return "unsupported"
	case SkipNoCoords:
		return "no_coords"
	default:
		return "unknown"
	}
}

// Normalize converts e into a business record of the given category. The name check
// runs before the shape check, so an unnamed relation counts as SkipNoName.
func Normalize(e Element, category string) (models.Business, Skip) {
	name := strings.TrimSpace(e.Tags["name"])
	if name == "" {
		return models.Business{}, SkipNoName
	}

	var lat, lon *float64
	switch shape := e.Shape().(type) {
	case Point:
		lat, lon = shape.Lat, shape.Lon
	case Area:
		lat, lon = shape.CentroidLat, shape.CentroidLon
	default:
		return models.Business{}, SkipUnsupported
	}

	if lat == nil || lon == nil {
		return models.Business{}, SkipNoCoords
	}

	return models.Business{
		Name:         name,
		BusinessType: category,
		Location:     models.Coordinates{Latitude: *lat, Longitude: *lon},
		Address: models.Address{
			Street: e.Tags["addr:street"],
			City:   e.Tags["addr:city"],
		},
		Phone:   e.Tags["phone"],
		Website: e.Tags["website"],
	}, SkipNone
}

// Stats counts what happened to the elements Collect looked at.
type Stats struct {
	Accepted    int
	NoName      int
	NoCoords    int
	Unsupported int
}

// Collect normalises elements in upstream order and stops once limit records are accepted.
func Collect(elements []Element, category string, limit int) ([]models.Business, Stats) {
	var stats Stats
	businesses := make([]models.Business, 0, max(0, min(limit, len(elements))))

	for _, el := range elements {
		if len(businesses) >= limit {
			break
		}

		business, skip := Normalize(el, category)
		switch skip {
		case SkipNone:
			businesses = append(businesses, business)
			stats.Accepted++
		case SkipNoName:
			stats.NoName++
		case SkipNoCoords:
			stats.NoCoords++
		case SkipUnsupported:
			stats.Unsupported++
		}
	}

	return businesses, stats
}
