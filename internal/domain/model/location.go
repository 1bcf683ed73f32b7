// Package model contains domain models passed between layers.
package model

import (
	"time"

	"github.com/okian/campusguessr/internal/domain/geo"
)

// Location is a playable panorama pinned to its real coordinate.
type Location struct {
	ID       string `json:"id"`
	ImageURL string `json:"imageUrl"`
	geo.Coordinate
	CreatedAt time.Time `json:"createdAt"`
	// CreatedBy is the custom map owner; empty for the default campus set.
	CreatedBy string `json:"createdBy,omitempty"`
}
