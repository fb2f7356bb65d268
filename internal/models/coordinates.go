package models

// Coordinates represents a geographical point defined by its latitude and longitude.
type Coordinates struct {
	Latitude  float64 `json:"latitude"`  // Latitude of the geographical point.
	Longitude float64 `json:"longitude"` // Longitude of the geographical point.
}

// Valid reports whether the point lies within [-90,90] latitude and [-180,180] longitude.
func (c Coordinates) Valid() bool {
	return c.Latitude >= -90 && c.Latitude <= 90 && c.Longitude >= -180 && c.Longitude <= 180
}
