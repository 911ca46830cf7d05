package domain

import (
	"fmt"
	"strings"
)

// Location is a named entity with a fixed footprint on the diagram.
// Locations are loaded once at start and never mutated.
type Location struct {
	Name          string         `json:"name"`
	Category      string         `json:"category,omitempty"`
	Description   string         `json:"description,omitempty"`
	Icon          string         `json:"icon,omitempty"`
	BoundingBox   BoundingBox    `json:"bounding_box"`
	Coordinates   *GeoPoint      `json:"coordinates,omitempty"`
	StyleOverride *StyleOverride `json:"style_override,omitempty"`
	Details       *Details       `json:"details,omitempty"`
}

// Details is the descriptive panel shown for a framed location.
type Details struct {
	GradeLevels []string `json:"grade_levels,omitempty"`
	Sections    []string `json:"sections,omitempty"`
	ExtraInfo   string   `json:"extra_info,omitempty"`
}

// StyleOverride replaces the default fill/border colors of a shape.
type StyleOverride struct {
	Fill   string `json:"fill,omitempty"`
	Border string `json:"border,omitempty"`
}

// BoundingBox is a rectangle in normalized percentage coordinates (0-100).
type BoundingBox struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// ToPixels converts the box into the canvas pixel reference frame.
func (b BoundingBox) ToPixels(canvas Size) PixelRect {
	return PixelRect{
		X:      b.X / 100 * canvas.Width,
		Y:      b.Y / 100 * canvas.Height,
		Width:  b.Width / 100 * canvas.Width,
		Height: b.Height / 100 * canvas.Height,
	}
}

// boxEpsilon absorbs float rounding on shapes that touch the canvas edge.
const boxEpsilon = 1e-9

// Validate checks the percentage bounds invariants.
func (b BoundingBox) Validate() error {
	for _, v := range []float64{b.X, b.Y, b.Width, b.Height} {
		if v < 0 || v > 100+boxEpsilon {
			return fmt.Errorf("%w: box component %.2f outside [0,100]", ErrInvalidLocation, v)
		}
	}
	if b.X+b.Width > 100+boxEpsilon {
		return fmt.Errorf("%w: x+width = %.2f exceeds 100", ErrInvalidLocation, b.X+b.Width)
	}
	if b.Y+b.Height > 100+boxEpsilon {
		return fmt.Errorf("%w: y+height = %.2f exceeds 100", ErrInvalidLocation, b.Y+b.Height)
	}
	return nil
}

// BoxFromPixels converts a rectangle given in canvas pixels into percentages.
// A rectangle flush with the canvas edge ends at exactly 100.
func BoxFromPixels(r PixelRect, canvas Size) BoundingBox {
	b := BoundingBox{
		X:      r.X / canvas.Width * 100,
		Y:      r.Y / canvas.Height * 100,
		Width:  r.Width / canvas.Width * 100,
		Height: r.Height / canvas.Height * 100,
	}
	if r.X+r.Width == canvas.Width {
		b.Width = 100 - b.X
	}
	if r.Y+r.Height == canvas.Height {
		b.Height = 100 - b.Y
	}
	return b
}

// Validate checks the record-level invariants of a location.
func (l Location) Validate() error {
	if strings.TrimSpace(l.Name) == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidLocation)
	}
	if err := l.BoundingBox.Validate(); err != nil {
		return fmt.Errorf("location %q: %w", l.Name, err)
	}
	return nil
}

// MatchedField names the highest-priority field a query matched.
type MatchedField string

const (
	MatchedName        MatchedField = "name"
	MatchedDescription MatchedField = "description"
	MatchedCategory    MatchedField = "category"
)

// RankedCandidate is a location paired with its relevance for one query.
type RankedCandidate struct {
	Location     Location     `json:"location"`
	Score        int          `json:"score"`
	MatchedField MatchedField `json:"matched_field"`
}

// Segment is a run of text that either matches the query or not.
type Segment struct {
	Text  string `json:"text"`
	Match bool   `json:"match"`
}

// SearchEvent records the outcome of a committed search.
type SearchEvent struct {
	Query    string `json:"query"`
	Location string `json:"location,omitempty"`
	Found    bool   `json:"found"`
	Source   string `json:"source"` // "text" | "voice" | "suggestion"
}

// Popularity is the commit count for a single location.
type Popularity struct {
	Location string `json:"location"`
	Count    int    `json:"count"`
}

// MissedQuery is how often a query that matched nothing was committed.
type MissedQuery struct {
	Query string `json:"query"`
	Count int    `json:"count"`
}
