package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/samirrijal/campusmap/internal/core/domain"
)

// LocationRepo implements ports.LocationSource and ports.LocationStore.
type LocationRepo struct {
	db *DB
}

// NewLocationRepo creates a new LocationRepo.
func NewLocationRepo(db *DB) *LocationRepo {
	return &LocationRepo{db: db}
}

const selectLocations = `
	SELECT name, COALESCE(category, ''), COALESCE(description, ''), COALESCE(icon, ''),
	       box_x, box_y, box_width, box_height,
	       lat, lon, style_override, details
	FROM locations`

// Load returns every location in catalogue order.
func (r *LocationRepo) Load(ctx context.Context) ([]domain.Location, error) {
	rows, err := r.db.Pool.Query(ctx, selectLocations+` ORDER BY position, name`)
	if err != nil {
		return nil, fmt.Errorf("query locations: %w", err)
	}
	defer rows.Close()

	var locs []domain.Location
	for rows.Next() {
		l, err := scanLocation(rows)
		if err != nil {
			return nil, err
		}
		locs = append(locs, l)
	}
	return locs, rows.Err()
}

// FindByName does a case-insensitive exact lookup.
func (r *LocationRepo) FindByName(ctx context.Context, name string) (domain.Location, error) {
	row := r.db.Pool.QueryRow(ctx, selectLocations+` WHERE lower(name) = lower($1)`, name)
	l, err := scanLocation(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Location{}, fmt.Errorf("%q: %w", name, domain.ErrNotFound)
	}
	return l, err
}

// UpsertBatch writes locations using pgx.Batch; position follows slice order.
func (r *LocationRepo) UpsertBatch(ctx context.Context, locs []domain.Location) error {
	batch := &pgx.Batch{}
	for i, l := range locs {
		var lat, lon *float64
		if l.Coordinates != nil {
			lat, lon = &l.Coordinates.Lat, &l.Coordinates.Lon
		}
		style, err := jsonOrNil(l.StyleOverride)
		if err != nil {
			return fmt.Errorf("encode style for %q: %w", l.Name, err)
		}
		details, err := jsonOrNil(l.Details)
		if err != nil {
			return fmt.Errorf("encode details for %q: %w", l.Name, err)
		}

		batch.Queue(`
			INSERT INTO locations (name, position, category, description, icon,
			                       box_x, box_y, box_width, box_height, lat, lon, style_override, details)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
			ON CONFLICT (lower(name)) DO UPDATE
			SET position = EXCLUDED.position, category = EXCLUDED.category,
			    description = EXCLUDED.description, icon = EXCLUDED.icon,
			    box_x = EXCLUDED.box_x, box_y = EXCLUDED.box_y,
			    box_width = EXCLUDED.box_width, box_height = EXCLUDED.box_height,
			    lat = EXCLUDED.lat, lon = EXCLUDED.lon,
			    style_override = EXCLUDED.style_override, details = EXCLUDED.details,
			    updated_at = now()
		`, l.Name, i, l.Category, l.Description, l.Icon,
			l.BoundingBox.X, l.BoundingBox.Y, l.BoundingBox.Width, l.BoundingBox.Height,
			lat, lon, style, details)
	}

	br := r.db.Pool.SendBatch(ctx, batch)
	defer br.Close()
	for _, l := range locs {
		if _, err := br.Exec(); err != nil {
			return fmt.Errorf("upsert %q: %w", l.Name, err)
		}
	}
	return nil
}

func scanLocation(row pgx.Row) (domain.Location, error) {
	var (
		l              domain.Location
		lat, lon       *float64
		style, details []byte
	)
	if err := row.Scan(
		&l.Name, &l.Category, &l.Description, &l.Icon,
		&l.BoundingBox.X, &l.BoundingBox.Y, &l.BoundingBox.Width, &l.BoundingBox.Height,
		&lat, &lon, &style, &details,
	); err != nil {
		return domain.Location{}, err
	}
	if lat != nil && lon != nil {
		l.Coordinates = &domain.GeoPoint{Lat: *lat, Lon: *lon}
	}
	if len(style) > 0 {
		l.StyleOverride = &domain.StyleOverride{}
		if err := json.Unmarshal(style, l.StyleOverride); err != nil {
			return domain.Location{}, fmt.Errorf("decode style for %q: %w", l.Name, err)
		}
	}
	if len(details) > 0 {
		l.Details = &domain.Details{}
		if err := json.Unmarshal(details, l.Details); err != nil {
			return domain.Location{}, fmt.Errorf("decode details for %q: %w", l.Name, err)
		}
	}
	return l, nil
}

func jsonOrNil(v any) ([]byte, error) {
	switch t := v.(type) {
	case *domain.StyleOverride:
		if t == nil {
			return nil, nil
		}
	case *domain.Details:
		if t == nil {
			return nil, nil
		}
	}
	return json.Marshal(v)
}
