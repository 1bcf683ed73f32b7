package postgres

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/okian/campusguessr/internal/adapters/repository"
	"github.com/okian/campusguessr/internal/domain/model"
	"github.com/okian/campusguessr/pkg/metrics"
)

const locationColumns = `id, image_url, latitude, longitude, created_at, created_by`

// LocationStore implements repository.LocationStore on the locations table.
type LocationStore struct {
	pool *pgxpool.Pool
}

var _ repository.LocationStore = (*LocationStore)(nil)

// NewLocationStore wraps an open pool.
func NewLocationStore(pool *pgxpool.Pool) *LocationStore {
	return &LocationStore{pool: pool}
}

func (s *LocationStore) Add(ctx context.Context, loc model.Location) error {
	defer observe(time.Now(), metrics.RecordRepositoryUpdateLatency)

	_, err := s.pool.Exec(ctx, `INSERT INTO locations (`+locationColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		loc.ID, loc.ImageURL, loc.Latitude, loc.Longitude, loc.CreatedAt, loc.CreatedBy)
	if err != nil {
		return mapErr("add location "+loc.ID, err)
	}
	s.refreshGauge(ctx)
	return nil
}

// Seed inserts locs, skipping ids that already exist.
func (s *LocationStore) Seed(ctx context.Context, locs []model.Location) error {
	batch := &pgx.Batch{}
	for _, l := range locs {
		batch.Queue(`INSERT INTO locations (`+locationColumns+`)
			VALUES ($1, $2, $3, $4, $5, $6) ON CONFLICT (id) DO NOTHING`,
			l.ID, l.ImageURL, l.Latitude, l.Longitude, l.CreatedAt, l.CreatedBy)
	}
	if err := s.pool.SendBatch(ctx, batch).Close(); err != nil {
		return mapErr("seed locations", err)
	}
	s.refreshGauge(ctx)
	return nil
}

func (s *LocationStore) Get(ctx context.Context, id string) (model.Location, error) {
	defer observe(time.Now(), metrics.RecordRepositoryQueryLatency)

	rows, err := s.pool.Query(ctx, `SELECT `+locationColumns+` FROM locations WHERE id = $1`, id)
	if err != nil {
		return model.Location{}, mapErr("get location "+id, err)
	}
	loc, err := pgx.CollectExactlyOneRow(rows, scanLocation)
	return loc, mapErr("get location "+id, err)
}

func (s *LocationStore) List(ctx context.Context) ([]model.Location, error) {
	return s.list(ctx, `SELECT `+locationColumns+` FROM locations ORDER BY seq`)
}

func (s *LocationStore) ListByCreator(ctx context.Context, createdBy string) ([]model.Location, error) {
	return s.list(ctx, `SELECT `+locationColumns+` FROM locations WHERE created_by = $1 ORDER BY seq`, createdBy)
}

func (s *LocationStore) list(ctx context.Context, q string, args ...any) ([]model.Location, error) {
	defer observe(time.Now(), metrics.RecordRepositoryQueryLatency)

	rows, err := s.pool.Query(ctx, q, args...)
	if err != nil {
		return nil, mapErr("list locations", err)
	}
	out, err := pgx.CollectRows(rows, scanLocation)
	return out, mapErr("list locations", err)
}

func (s *LocationStore) refreshGauge(ctx context.Context) {
	var n int
	if err := s.pool.QueryRow(ctx, `SELECT count(*) FROM locations`).Scan(&n); err == nil {
		metrics.UpdateLocationsTotal(n)
	}
}

func scanLocation(row pgx.CollectableRow) (model.Location, error) {
	var l model.Location
	err := row.Scan(&l.ID, &l.ImageURL, &l.Latitude, &l.Longitude, &l.CreatedAt, &l.CreatedBy)
	return l, err
}
