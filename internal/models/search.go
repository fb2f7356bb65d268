package models

import "time"

// SearchParams echoes the user's request in the result envelope.
type SearchParams struct {
	City         string      `json:"city"`
	BusinessType string      `json:"business_type"`
	Limit        int         `json:"limit"`
	Coordinates  Coordinates `json:"coordinates"`
}

// SearchResult is the envelope persisted at the end of a run.
type SearchResult struct {
	Search     SearchParams `json:"search"`
	CreatedAt  time.Time    `json:"created_at"`
	Businesses []Business   `json:"businesses"`
}

// Names returns the business names in result order.
func (r SearchResult) Names() []string {
	names := make([]string, 0, len(r.Businesses))
	for _, b := range r.Businesses {
		names = append(names, b.Name)
	}

	return names
}
