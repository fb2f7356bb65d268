package overpass

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/UnknownOlympus/scout/internal/models"
)

// QueryParams describes one bounded-radius feature search.
type QueryParams struct {
	Center        models.Coordinates
	TagKey        string // OSM tag to filter on, e.g. "amenity"
	TagValue      string // the business category
	RadiusMeters  int
	Limit         int
	ServerTimeout int // seconds the Overpass server may spend on the query
}

var quoteEscaper = strings.NewReplacer(`\`, `\\`, `"`, `\"`)

// BuildQuery renders p as Overpass QL. Nodes and ways are both requested; ways are
// returned with their computed centre.
func BuildQuery(p QueryParams) string {
	filter := fmt.Sprintf(`["%s"="%s"](around:%d,%s,%s)`,
		quoteEscaper.Replace(p.TagKey),
		quoteEscaper.Replace(p.TagValue),
		p.RadiusMeters,
		strconv.FormatFloat(p.Center.Latitude, 'f', -1, 64),
		strconv.FormatFloat(p.Center.Longitude, 'f', -1, 64),
	)

	var sb strings.Builder
	fmt.Fprintf(&sb, "[out:json][timeout:%d];\n", p.ServerTimeout)
	sb.WriteString("(\n")
	fmt.Fprintf(&sb, "  node%s;\n", filter)
	fmt.Fprintf(&sb, "  way%s;\n", filter)
	sb.WriteString(");\n")
	fmt.Fprintf(&sb, "out center %d;\n", p.Limit)

	return sb.String()
}
