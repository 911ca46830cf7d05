package ports

import (
	"context"

	"github.com/samirrijal/campusmap/internal/core/domain"
)

// LocationSource loads the static location catalogue at start-up.
type LocationSource interface {
	Load(ctx context.Context) ([]domain.Location, error)
}

// LocationStore persists catalogue records for later loading.
type LocationStore interface {
	UpsertBatch(ctx context.Context, locations []domain.Location) error
}

// LocationRegistry is the immutable in-memory catalogue.
type LocationRegistry interface {
	// All returns every location in load order.
	All() []domain.Location
	// FindByName does a case-insensitive exact match and returns
	// domain.ErrNotFound when nothing matches.
	FindByName(name string) (domain.Location, error)
	// Fingerprint identifies the catalogue content. Two registries built
	// from the same records report the same value.
	Fingerprint() string
}
