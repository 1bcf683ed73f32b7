package config

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/okian/campusguessr/internal/domain/geo"
	"github.com/okian/campusguessr/internal/domain/model"
)

// locationSeed is one entry of the locations file.
type locationSeed struct {
	ID        string  `koanf:"id"`
	ImageURL  string  `koanf:"image_url"`
	Latitude  float64 `koanf:"latitude"`
	Longitude float64 `koanf:"longitude"`
	CreatedBy string  `koanf:"created_by"`
}

// LoadLocations reads the YAML seed at path:
//
//	locations:
//	  - id: main-quad          # optional
//	    image_url: https://...
//	    latitude: 41.5045
//	    longitude: -81.6087
//
// Entries without an id get one derived from their image URL, so reloading
// the same file yields the same ids. Every location must lie in bounds.
func LoadLocations(_ context.Context, path string, bounds geo.Bounds) ([]model.Location, error) {
	k := koanf.New(".")
	if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrLoadConfig, path, err)
	}

	var seeds []locationSeed
	if err := k.UnmarshalWithConf("locations", &seeds, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrLoadConfig, path, err)
	}

	now := time.Now().UTC()
	seen := make(map[string]struct{}, len(seeds))
	out := make([]model.Location, 0, len(seeds))
	for i, s := range seeds {
		if s.ImageURL == "" {
			return nil, fmt.Errorf("%w: %s: location %d has no image_url", ErrInvalidConfig, path, i)
		}
		c, err := geo.NewCoordinate(s.Latitude, s.Longitude)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: location %d: %w", ErrInvalidConfig, path, i, err)
		}
		if err := bounds.Require(c); err != nil {
			return nil, fmt.Errorf("%w: %s: location %d: %w", ErrInvalidConfig, path, i, err)
		}
		id := s.ID
		if id == "" {
			id = uuid.NewSHA1(uuid.NameSpaceURL, []byte(s.ImageURL)).String()
		}
		if _, dup := seen[id]; dup {
			return nil, fmt.Errorf("%w: %s: duplicate location id %q", ErrInvalidConfig, path, id)
		}
		seen[id] = struct{}{}
		out = append(out, model.Location{
			ID:         id,
			ImageURL:   s.ImageURL,
			Coordinate: c,
			CreatedAt:  now,
			CreatedBy:  s.CreatedBy,
		})
	}
	return out, nil
}
