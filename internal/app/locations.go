package service

import (
	"context"
	"fmt"
	"math/rand/v2"

	"github.com/google/uuid"

	"github.com/okian/campusguessr/internal/domain/geo"
	"github.com/okian/campusguessr/internal/domain/model"
)

// AddLocationInput describes a new panorama. The image itself is stored
// elsewhere; only its URL is kept.
type AddLocationInput struct {
	ImageURL   string
	Coordinate geo.Coordinate
	CreatedBy  string
}

// RandomLocation returns a random location of one map. An empty createdBy
// selects the default campus set.
func (s *Service) RandomLocation(ctx context.Context, createdBy string) (model.Location, error) {
	locs, err := s.locations.ListByCreator(ctx, createdBy)
	if err != nil {
		return model.Location{}, fmt.Errorf("random location: %w", err)
	}
	if len(locs) == 0 {
		return model.Location{}, fmt.Errorf("random location: %w", ErrNoLocations)
	}
	return locs[rand.IntN(len(locs))], nil
}

// Locations returns every location.
func (s *Service) Locations(ctx context.Context) ([]model.Location, error) {
	locs, err := s.locations.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list locations: %w", err)
	}
	return locs, nil
}

// AddLocation stores a location inside the campus bounds.
func (s *Service) AddLocation(ctx context.Context, in AddLocationInput) (model.Location, error) {
	if in.ImageURL == "" {
		return model.Location{}, fmt.Errorf("add location: %w: empty image url", ErrInvalidInput)
	}
	if err := in.Coordinate.Validate(); err != nil {
		return model.Location{}, fmt.Errorf("add location: %w", err)
	}
	if err := s.bounds.Require(in.Coordinate); err != nil {
		return model.Location{}, fmt.Errorf("add location: %w", err)
	}

	loc := model.Location{
		ID:         uuid.NewString(),
		ImageURL:   in.ImageURL,
		Coordinate: in.Coordinate,
		CreatedAt:  s.now().UTC(),
		CreatedBy:  in.CreatedBy,
	}
	if err := s.locations.Add(ctx, loc); err != nil {
		return model.Location{}, fmt.Errorf("add location: %w", err)
	}
	return loc, nil
}
