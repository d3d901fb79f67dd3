package models

import "time"

// Product is a catalog entry. ID is assigned by the catalog service, not by
// the storage backend.
type Product struct {
	ID        int       `json:"id"`
	Name      string    `json:"name"`
	Image     string    `json:"image"`
	Category  string    `json:"category"`
	NewPrice  float64   `json:"new_price"`
	OldPrice  float64   `json:"old_price"`
	Date      time.Time `json:"date"`
	Available bool      `json:"available"`
}
