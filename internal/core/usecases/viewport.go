package usecases

import (
	"fmt"
	"math"

	"github.com/samirrijal/campusmap/internal/core/domain"
)

// Defaults for fitting a box into the container.
const (
	DefaultPadding  = 0.3
	DefaultMaxScale = 4.0
)

// DefaultCanvas is the fixed pixel reference frame of the diagram.
var DefaultCanvas = domain.Size{Width: 1440, Height: 1106}

// FitParams controls how much room is left around a framed box and how far
// a small box may be zoomed.
type FitParams struct {
	Padding  float64
	MaxScale float64
}

// DefaultFitParams returns padding 0.3 and a 4x zoom cap.
func DefaultFitParams() FitParams {
	return FitParams{Padding: DefaultPadding, MaxScale: DefaultMaxScale}
}

func (p FitParams) normalized() FitParams {
	if p.Padding < 0 || p.Padding >= 1 || math.IsNaN(p.Padding) {
		p.Padding = DefaultPadding
	}
	if p.MaxScale <= 0 || math.IsNaN(p.MaxScale) {
		p.MaxScale = DefaultMaxScale
	}
	return p
}

// ComputeFit returns the transform that centres box in container, scaled to
// fill (1-padding) of the container but never beyond MaxScale.
func ComputeFit(box domain.BoundingBox, container, canvas domain.Size, params FitParams) (domain.ViewportTransform, error) {
	if !container.Usable() {
		return domain.ViewportTransform{}, fmt.Errorf("fit %vx%v: %w", container.Width, container.Height, domain.ErrContainerUnavailable)
	}
	params = params.normalized()

	px := box.ToPixels(canvas)
	// A zero-sized box divides to +Inf and the cap takes over.
	scale := math.Min(
		math.Min(container.Width*(1-params.Padding)/px.Width, container.Height*(1-params.Padding)/px.Height),
		params.MaxScale,
	)

	center := px.Center()
	return domain.ViewportTransform{
		Scale:      scale,
		TranslateX: container.Width/2 - center.X*scale,
		TranslateY: container.Height/2 - center.Y*scale,
	}, nil
}

// ViewportController owns the current transform. FitToBoundingBox and Reset
// are its only mutators; each bumps Version so delayed work scheduled against
// an older transform can tell it has been superseded.
type ViewportController struct {
	canvas  domain.Size
	params  FitParams
	current domain.ViewportTransform
	version uint64
}

// NewViewportController creates a controller at the identity transform.
func NewViewportController(canvas domain.Size, params FitParams) *ViewportController {
	if !canvas.Usable() {
		canvas = DefaultCanvas
	}
	return &ViewportController{
		canvas:  canvas,
		params:  params.normalized(),
		current: domain.IdentityTransform,
	}
}

// FitToBoundingBox computes and applies the transform framing box.
// On ErrContainerUnavailable the current transform is left untouched.
func (v *ViewportController) FitToBoundingBox(box domain.BoundingBox, container domain.Size) (domain.ViewportTransform, error) {
	t, err := ComputeFit(box, container, v.canvas, v.params)
	if err != nil {
		return v.current, err
	}
	v.current = t
	v.version++
	return t, nil
}

// Reset returns to the identity transform.
func (v *ViewportController) Reset() domain.ViewportTransform {
	v.current = domain.IdentityTransform
	v.version++
	return v.current
}

// Current returns a snapshot of the applied transform.
func (v *ViewportController) Current() domain.ViewportTransform { return v.current }

// Version increases on every apply or reset.
func (v *ViewportController) Version() uint64 { return v.version }
