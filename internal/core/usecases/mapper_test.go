package usecases_test

import (
	"errors"
	"math"
	"testing"

	"github.com/samirrijal/campusmap/internal/core/domain"
	"github.com/samirrijal/campusmap/internal/core/usecases"
	"github.com/samirrijal/campusmap/internal/pkg/logging"
)

func newMapper() *usecases.CoordinateMapper {
	return usecases.NewCoordinateMapper(usecases.DefaultCanvas, usecases.DefaultMarkerOffset, logging.Discard())
}

func TestToScreen_Identity(t *testing.T) {
	box := domain.BoundingBox{X: 50, Y: 50, Width: 10, Height: 10}
	got := newMapper().ToScreen(box, domain.IdentityTransform)

	if !near(got.X, 792) || !near(got.Y, 608.3-usecases.DefaultMarkerOffset) {
		t.Errorf("got %+v, want (792, %v)", got, 608.3-usecases.DefaultMarkerOffset)
	}
}

func TestToScreen_AppliesTransform(t *testing.T) {
	box := domain.BoundingBox{X: 50, Y: 50, Width: 10, Height: 10}
	tr := domain.ViewportTransform{Scale: 2, TranslateX: -100, TranslateY: 30}
	got := newMapper().ToScreen(box, tr)

	if !near(got.X, 792*2-100) || !near(got.Y, 608.3*2+30-usecases.DefaultMarkerOffset) {
		t.Errorf("unexpected point %+v", got)
	}
}

func TestToScreen_MalformedTransformFallsBack(t *testing.T) {
	box := domain.BoundingBox{X: 50, Y: 50, Width: 10, Height: 10}
	m := newMapper()
	want := m.ToScreen(box, domain.IdentityTransform)

	for _, tr := range []domain.ViewportTransform{
		{Scale: math.NaN()},
		{Scale: 1, TranslateX: math.Inf(1)},
		{Scale: -1},
	} {
		got := m.ToScreen(box, tr)
		if got != want || math.IsNaN(got.X) || math.IsNaN(got.Y) {
			t.Errorf("transform %+v: got %+v, want identity result %+v", tr, got, want)
		}
	}
}

func TestParseCSSTransform(t *testing.T) {
	tests := []struct {
		in   string
		want domain.ViewportTransform
	}{
		{"", domain.IdentityTransform},
		{"none", domain.IdentityTransform},
		{"matrix(2, 0, 0, 2, -150, 40.5)", domain.ViewportTransform{Scale: 2, TranslateX: -150, TranslateY: 40.5}},
		{" matrix(1,0,0,1,0,0) ", domain.IdentityTransform},
	}
	for _, tt := range tests {
		got, err := usecases.ParseCSSTransform(tt.in)
		if err != nil {
			t.Errorf("%q: unexpected error %v", tt.in, err)
			continue
		}
		if got != tt.want {
			t.Errorf("%q: got %+v, want %+v", tt.in, got, tt.want)
		}
	}

	for _, bad := range []string{"scale(2)", "matrix(1,2,3)", "matrix(a,0,0,1,0,0)", "matrix(NaN,0,0,1,0,0)"} {
		if _, err := usecases.ParseCSSTransform(bad); !errors.Is(err, domain.ErrInvalidTransform) {
			t.Errorf("%q: expected ErrInvalidTransform, got %v", bad, err)
		}
	}
}

func TestToScreenCSS_Unparseable(t *testing.T) {
	box := domain.BoundingBox{X: 0, Y: 0, Width: 100, Height: 100}
	m := newMapper()
	got := m.ToScreenCSS(box, "rotate(90deg)")
	if got != m.ToScreen(box, domain.IdentityTransform) {
		t.Errorf("expected identity fallback, got %+v", got)
	}
}
