package domain

import (
	"fmt"
	"strings"
	"time"
)

// Venue belongs to exactly one vendor. Images are stored as a JSON array of
// base64 strings in a single text column.
type Venue struct {
	ID          int64     `json:"id"`
	VendorID    int64     `json:"vendor_id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	VenueType   string    `json:"venue_type"`
	City        string    `json:"city"`
	Address     string    `json:"address"`
	Capacity    int       `json:"capacity"`
	PricePerDay float64   `json:"price_per_day"`
	Amenities   string    `json:"amenities,omitempty"`
	Images      *string   `json:"images,omitempty"`
	IsActive    bool      `json:"is_active"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type VenueRequest struct {
	Name        string
	Description string
	VenueType   string
	City        string
	Address     string
	Capacity    int
	PricePerDay float64
	Amenities   string
	// JSON-encoded array of base64 images; nil means keep existing ones.
	Images *string
}

// VenueFilter narrows the public venue listing.
type VenueFilter struct {
	City        string
	VenueType   string
	MinCapacity int
}

func (r *VenueRequest) Normalize() {
	r.Name = strings.TrimSpace(r.Name)
	r.VenueType = strings.TrimSpace(r.VenueType)
	r.City = strings.TrimSpace(r.City)
	r.Address = strings.TrimSpace(r.Address)
}

func (r *VenueRequest) Validate() error {
	if r.Name == "" {
		return fmt.Errorf("name is required")
	}
	if r.VenueType == "" {
		return fmt.Errorf("venue_type is required")
	}
	if r.City == "" {
		return fmt.Errorf("city is required")
	}
	if r.Address == "" {
		return fmt.Errorf("address is required")
	}
	if r.Capacity <= 0 {
		return fmt.Errorf("capacity must be positive")
	}
	if r.PricePerDay < 0 {
		return fmt.Errorf("price_per_day cannot be negative")
	}
	return nil
}
