package catalog

import (
	"context"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/samirrijal/campusmap/internal/adapters/memory"
	"github.com/samirrijal/campusmap/internal/core/domain"
)

var canvas = domain.Size{Width: 1440, Height: 1106}

func TestDefault_LoadsCampus(t *testing.T) {
	locs, err := Default(canvas)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(locs) != 7 {
		t.Fatalf("expected 7 locations, got %d", len(locs))
	}
	if locs[0].Name != "Library" {
		t.Errorf("expected Library first, got %s", locs[0].Name)
	}

	// 722/1440*100
	if math.Abs(locs[0].BoundingBox.X-50.138888) > 1e-4 {
		t.Errorf("unexpected library x: %f", locs[0].BoundingBox.X)
	}
	if locs[0].Coordinates == nil || locs[0].Details == nil {
		t.Error("expected coordinates and details on Library")
	}

	if _, err := memory.NewRegistry(locs); err != nil {
		t.Errorf("built-in catalogue must satisfy the registry: %v", err)
	}
}

func TestParse_PercentBox(t *testing.T) {
	data := []byte(`{"locations":[{"name":"Gym","bounding_box":{"x":10,"y":20,"width":5,"height":5}}]}`)
	locs, err := Parse(data, canvas)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if locs[0].BoundingBox != (domain.BoundingBox{X: 10, Y: 20, Width: 5, Height: 5}) {
		t.Errorf("unexpected box: %+v", locs[0].BoundingBox)
	}
}

func TestParse_PixelBoxFlushWithCanvasEdge(t *testing.T) {
	entries := make([]string, 0, 1440)
	for x := 0; x < 1440; x++ {
		y := x % 1106
		entries = append(entries, fmt.Sprintf(
			`{"name":"Shape %d","pixel_box":{"x":%d,"y":%d,"width":%d,"height":%d}}`,
			x, x, y, 1440-x, 1106-y))
	}
	data := []byte(`{"locations":[` + strings.Join(entries, ",") + `]}`)

	locs, err := Parse(data, canvas)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, l := range locs {
		b := l.BoundingBox
		if math.Abs(b.X+b.Width-100) > 1e-9 || math.Abs(b.Y+b.Height-100) > 1e-9 {
			t.Fatalf("%s: expected box to end at 100, got %+v", l.Name, b)
		}
	}
	if _, err := memory.NewRegistry(locs); err != nil {
		t.Errorf("edge shapes must be accepted: %v", err)
	}
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"both boxes", `{"locations":[{"name":"A","bounding_box":{"x":1,"y":1,"width":1,"height":1},"pixel_box":{"x":1,"y":1,"width":1,"height":1}}]}`},
		{"no box", `{"locations":[{"name":"A"}]}`},
		{"pixel box without canvas", `{"canvas":{"width":0,"height":0},"locations":[{"name":"A","pixel_box":{"x":1,"y":1,"width":1,"height":1}}]}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.data), canvas)
			if !errors.Is(err, domain.ErrInvalidLocation) {
				t.Errorf("expected ErrInvalidLocation, got %v", err)
			}
		})
	}

	if _, err := Parse([]byte(`{`), canvas); err == nil {
		t.Error("expected error for malformed JSON")
	}
}

func TestFileSource_Load(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.json")
	data := []byte(`{"locations":[{"name":"Gym","pixel_box":{"x":144,"y":110.6,"width":144,"height":110.6}}]}`)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatal(err)
	}

	locs, err := NewFileSource(path, canvas).Load(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := domain.BoundingBox{X: 10, Y: 10, Width: 10, Height: 10}
	got := locs[0].BoundingBox
	if math.Abs(got.X-want.X) > 1e-9 || math.Abs(got.Height-want.Height) > 1e-9 {
		t.Errorf("expected %+v, got %+v", want, got)
	}

	if _, err := NewFileSource(filepath.Join(t.TempDir(), "missing.json"), canvas).Load(context.Background()); err == nil {
		t.Error("expected error for missing file")
	}
}
