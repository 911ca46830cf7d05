// Package catalog loads location catalogues from JSON documents.
package catalog

import (
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/samirrijal/campusmap/internal/core/domain"
)

//go:embed default_catalog.json
var defaultCatalog []byte

// Document is the on-disk catalogue format. Each entry gives its footprint
// either as bounding_box (percent of the canvas) or pixel_box (canvas
// pixels), never both.
type Document struct {
	Canvas    *domain.Size `json:"canvas,omitempty"`
	Locations []Entry      `json:"locations"`
}

// Entry is one catalogue record.
type Entry struct {
	Name          string                `json:"name"`
	Category      string                `json:"category,omitempty"`
	Description   string                `json:"description,omitempty"`
	Icon          string                `json:"icon,omitempty"`
	BoundingBox   *domain.BoundingBox   `json:"bounding_box,omitempty"`
	PixelBox      *domain.PixelRect     `json:"pixel_box,omitempty"`
	Coordinates   *domain.GeoPoint      `json:"coordinates,omitempty"`
	StyleOverride *domain.StyleOverride `json:"style_override,omitempty"`
	Details       *domain.Details       `json:"details,omitempty"`
}

// FileSource reads a catalogue from path, or the built-in campus catalogue
// when path is empty.
type FileSource struct {
	path   string
	canvas domain.Size
}

// NewFileSource creates a source. canvas converts pixel boxes when the
// document does not declare its own.
func NewFileSource(path string, canvas domain.Size) *FileSource {
	return &FileSource{path: path, canvas: canvas}
}

// Load implements ports.LocationSource.
func (s *FileSource) Load(ctx context.Context) ([]domain.Location, error) {
	data := defaultCatalog
	if s.path != "" {
		b, err := os.ReadFile(s.path)
		if err != nil {
			return nil, fmt.Errorf("read catalog: %w", err)
		}
		data = b
	}
	return Parse(data, s.canvas)
}

// Default returns the built-in catalogue.
func Default(canvas domain.Size) ([]domain.Location, error) {
	return Parse(defaultCatalog, canvas)
}

// Parse decodes a catalogue document into locations. Record-level checks
// (name, bounds, uniqueness) are left to the registry.
func Parse(data []byte, canvas domain.Size) ([]domain.Location, error) {
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse catalog: %w", err)
	}
	if doc.Canvas != nil {
		canvas = *doc.Canvas
	}

	var errs []error
	out := make([]domain.Location, 0, len(doc.Locations))
	for i, e := range doc.Locations {
		loc, err := e.toDomain(canvas)
		if err != nil {
			errs = append(errs, fmt.Errorf("entry %d (%q): %w", i, e.Name, err))
			continue
		}
		out = append(out, loc)
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return out, nil
}

func (e Entry) toDomain(canvas domain.Size) (domain.Location, error) {
	loc := domain.Location{
		Name:          e.Name,
		Category:      e.Category,
		Description:   e.Description,
		Icon:          e.Icon,
		Coordinates:   e.Coordinates,
		StyleOverride: e.StyleOverride,
		Details:       e.Details,
	}

	switch {
	case e.BoundingBox != nil && e.PixelBox != nil:
		return domain.Location{}, fmt.Errorf("%w: both bounding_box and pixel_box given", domain.ErrInvalidLocation)
	case e.BoundingBox != nil:
		loc.BoundingBox = *e.BoundingBox
	case e.PixelBox != nil:
		if !canvas.Usable() {
			return domain.Location{}, fmt.Errorf("%w: pixel_box needs a canvas size", domain.ErrInvalidLocation)
		}
		loc.BoundingBox = domain.BoxFromPixels(*e.PixelBox, canvas)
	default:
		return domain.Location{}, fmt.Errorf("%w: missing bounding_box", domain.ErrInvalidLocation)
	}
	return loc, nil
}

// FromLocations builds a document in percent form, the inverse of Parse.
func FromLocations(locs []domain.Location) Document {
	doc := Document{Locations: make([]Entry, 0, len(locs))}
	for _, l := range locs {
		box := l.BoundingBox
		doc.Locations = append(doc.Locations, Entry{
			Name:          l.Name,
			Category:      l.Category,
			Description:   l.Description,
			Icon:          l.Icon,
			BoundingBox:   &box,
			Coordinates:   l.Coordinates,
			StyleOverride: l.StyleOverride,
			Details:       l.Details,
		})
	}
	return doc
}
