package usecases

import (
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/samirrijal/campusmap/internal/core/domain"
)

// DefaultMarkerOffset lifts the pin above the shape centre so it points at
// the shape instead of sitting inside it.
const DefaultMarkerOffset = 40.0

// CoordinateMapper maps normalized boxes to screen positions.
type CoordinateMapper struct {
	canvas       domain.Size
	markerOffset float64
	logger       *slog.Logger
}

// NewCoordinateMapper creates a mapper for the given reference frame.
func NewCoordinateMapper(canvas domain.Size, markerOffset float64, logger *slog.Logger) *CoordinateMapper {
	if !canvas.Usable() {
		canvas = DefaultCanvas
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &CoordinateMapper{canvas: canvas, markerOffset: markerOffset, logger: logger}
}

// ToScreen returns the top-centre anchor for a marker on box under t.
// A malformed transform is replaced with the identity.
func (m *CoordinateMapper) ToScreen(box domain.BoundingBox, t domain.ViewportTransform) domain.Point {
	if !t.Valid() {
		m.logger.Warn("invalid transform, using identity",
			"error", domain.ErrInvalidTransform,
			"scale", t.Scale, "translate_x", t.TranslateX, "translate_y", t.TranslateY)
		t = domain.IdentityTransform
	}
	p := t.Apply(box.ToPixels(m.canvas).Center())
	p.Y -= m.markerOffset
	return p
}

// ToScreenCSS maps box under an externally reported CSS transform.
func (m *CoordinateMapper) ToScreenCSS(box domain.BoundingBox, css string) domain.Point {
	t, err := ParseCSSTransform(css)
	if err != nil {
		m.logger.Warn("unparseable transform, using identity", "error", err)
		t = domain.IdentityTransform
	}
	return m.ToScreen(box, t)
}

// ParseCSSTransform reads "none" or "matrix(a, b, c, d, e, f)" as a uniform
// scale a with translation (e, f).
func ParseCSSTransform(css string) (domain.ViewportTransform, error) {
	s := strings.TrimSpace(css)
	if s == "" || s == "none" {
		return domain.IdentityTransform, nil
	}
	if !strings.HasPrefix(s, "matrix(") || !strings.HasSuffix(s, ")") {
		return domain.ViewportTransform{}, fmt.Errorf("%w: %q", domain.ErrInvalidTransform, css)
	}

	parts := strings.Split(s[len("matrix("):len(s)-1], ",")
	if len(parts) != 6 {
		return domain.ViewportTransform{}, fmt.Errorf("%w: want 6 values, got %d", domain.ErrInvalidTransform, len(parts))
	}
	vals := make([]float64, len(parts))
	for i, p := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return domain.ViewportTransform{}, fmt.Errorf("%w: value %d: %v", domain.ErrInvalidTransform, i, err)
		}
		vals[i] = v
	}

	t := domain.ViewportTransform{Scale: vals[0], TranslateX: vals[4], TranslateY: vals[5]}
	if !t.Valid() {
		return domain.ViewportTransform{}, fmt.Errorf("%w: %q", domain.ErrInvalidTransform, css)
	}
	return t, nil
}
