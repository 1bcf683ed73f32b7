package api

import (
	"context"
	"net/http"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"

	service "github.com/okian/campusguessr/internal/app"
	"github.com/okian/campusguessr/internal/domain/geo"
	"github.com/okian/campusguessr/internal/domain/model"
)

// LocationDependencies defines location lookups and uploads.
type LocationDependencies interface {
	RandomLocation(ctx context.Context, createdBy string) (model.Location, error)
	Locations(ctx context.Context) ([]model.Location, error)
	AddLocation(ctx context.Context, in service.AddLocationInput) (model.Location, error)
}

type addLocationRequest struct {
	ImageURL  string   `json:"imageUrl" validate:"required,url,max=2048"`
	Latitude  *float64 `json:"latitude" validate:"required,latitude"`
	Longitude *float64 `json:"longitude" validate:"required,longitude"`
	CreatedBy string   `json:"createdBy" validate:"omitempty,max=64"`
}

// LocationsHandler serves playable locations.
type LocationsHandler struct {
	deps LocationDependencies
}

// NewLocationsHandler creates a new locations handler.
func NewLocationsHandler(deps LocationDependencies) *LocationsHandler {
	return &LocationsHandler{deps: deps}
}

// HandleRandom handles GET /location/random?created_by=ID.
func (h *LocationsHandler) HandleRandom(w http.ResponseWriter, r *http.Request) {
	const op = "api.random_location"
	loc, err := h.deps.RandomLocation(r.Context(), r.URL.Query().Get("created_by"))
	if err != nil {
		writeError(w, r, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, dataResponse{Data: loc})
}

// HandleList handles GET /locations as a GeoJSON FeatureCollection.
func (h *LocationsHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	const op = "api.list_locations"
	locs, err := h.deps.Locations(r.Context())
	if err != nil {
		writeError(w, r, Wrap(op, err))
		return
	}
	body, err := featureCollection(locs).MarshalJSON()
	if err != nil {
		writeError(w, r, Wrap(op, err))
		return
	}
	w.Header().Set("Content-Type", "application/geo+json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(body)
}

// HandleAdd handles POST /locations.
func (h *LocationsHandler) HandleAdd(w http.ResponseWriter, r *http.Request) {
	const op = "api.add_location"
	var req addLocationRequest
	if err := decode(r, &req); err != nil {
		writeError(w, r, WrapKind(op, ErrBadRequest, err))
		return
	}
	loc, err := h.deps.AddLocation(r.Context(), service.AddLocationInput{
		ImageURL:   req.ImageURL,
		Coordinate: geo.Coordinate{Latitude: *req.Latitude, Longitude: *req.Longitude},
		CreatedBy:  req.CreatedBy,
	})
	if err != nil {
		writeError(w, r, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusCreated, dataResponse{Data: loc})
}

func featureCollection(locs []model.Location) *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()
	points := make(orb.MultiPoint, 0, len(locs))
	for _, l := range locs {
		p := l.Point()
		points = append(points, p)

		f := geojson.NewFeature(p)
		f.ID = l.ID
		f.Properties["imageUrl"] = l.ImageURL
		f.Properties["createdAt"] = l.CreatedAt
		if l.CreatedBy != "" {
			f.Properties["createdBy"] = l.CreatedBy
		}
		fc.Append(f)
	}
	if len(points) > 0 {
		fc.BBox = geojson.NewBBox(points.Bound())
	}
	return fc
}
