package memory

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/cespare/xxhash/v2"

	"github.com/samirrijal/campusmap/internal/core/domain"
)

// Registry is an immutable in-memory catalogue built once at start-up.
type Registry struct {
	locations   []domain.Location
	byName      map[string]int
	fingerprint string
}

// NewRegistry validates locs and indexes them by lower-cased name. Every
// invalid or duplicate record is reported; a registry is only returned
// when all of them are acceptable.
func NewRegistry(locs []domain.Location) (*Registry, error) {
	r := &Registry{
		locations: make([]domain.Location, 0, len(locs)),
		byName:    make(map[string]int, len(locs)),
	}

	var errs []error
	for i, loc := range locs {
		if err := loc.Validate(); err != nil {
			errs = append(errs, fmt.Errorf("entry %d: %w", i, err))
			continue
		}
		key := normalize(loc.Name)
		if prev, ok := r.byName[key]; ok {
			errs = append(errs, fmt.Errorf("entry %d: %w: %q (first seen as %q)",
				i, domain.ErrDuplicateLocation, loc.Name, r.locations[prev].Name))
			continue
		}
		r.byName[key] = len(r.locations)
		r.locations = append(r.locations, loc)
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}

	data, err := json.Marshal(r.locations)
	if err != nil {
		return nil, fmt.Errorf("fingerprint catalogue: %w", err)
	}
	r.fingerprint = strconv.FormatUint(xxhash.Sum64(data), 16)
	return r, nil
}

// All returns every location in load order. The slice is a copy.
func (r *Registry) All() []domain.Location {
	out := make([]domain.Location, len(r.locations))
	copy(out, r.locations)
	return out
}

// FindByName does a case-insensitive exact lookup.
func (r *Registry) FindByName(name string) (domain.Location, error) {
	i, ok := r.byName[normalize(name)]
	if !ok {
		return domain.Location{}, fmt.Errorf("%q: %w", name, domain.ErrNotFound)
	}
	return r.locations[i], nil
}

// Fingerprint is a content hash of the catalogue in load order.
func (r *Registry) Fingerprint() string { return r.fingerprint }

// Len returns the number of locations.
func (r *Registry) Len() int { return len(r.locations) }

func normalize(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
