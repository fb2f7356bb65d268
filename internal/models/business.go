package models

// Address is the postal part of a business record. Both fields may be empty.
type Address struct {
	Street string `json:"street"`
	City   string `json:"city"`
}

// Business is a normalised point of interest. Name is never empty and Location is
// always resolved; records that cannot satisfy both are dropped before they get here.
type Business struct {
	Name         string      `json:"name"`
	BusinessType string      `json:"business_type"`
	Location     Coordinates `json:"location"`
	Address      Address     `json:"address"`
	Phone        string      `json:"phone"`
	Website      string      `json:"website"`
}
