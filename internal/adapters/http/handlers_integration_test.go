//go:build integration
// +build integration

package http_test

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/samirrijal/campusmap/internal/adapters/http"
	"github.com/samirrijal/campusmap/internal/adapters/memory"
	"github.com/samirrijal/campusmap/internal/adapters/postgres"
	"github.com/samirrijal/campusmap/internal/core/domain"
	"github.com/samirrijal/campusmap/internal/core/usecases"
	"github.com/samirrijal/campusmap/internal/pkg/config"
	"github.com/samirrijal/campusmap/internal/pkg/logging"
)

// setupTestDB connects to the database named by the CAMPUSMAP_DATABASE_* settings.
func setupTestDB(t *testing.T) *postgres.DB {
	cfg, err := config.Load("campusmap-test")
	if err != nil {
		t.Fatalf("load config: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	db, err := postgres.New(ctx, cfg.Database.DSN())
	if err != nil {
		t.Fatalf("connect db: %v", err)
	}
	return db
}

// seedLocations upserts locs and loads the full catalogue back.
func seedLocations(t *testing.T, db *postgres.DB, locs ...domain.Location) []domain.Location {
	ctx := context.Background()
	repo := postgres.NewLocationRepo(db)
	if err := repo.UpsertBatch(ctx, locs); err != nil {
		t.Fatalf("seed locations: %v", err)
	}
	all, err := repo.Load(ctx)
	if err != nil {
		t.Fatalf("load locations: %v", err)
	}
	return all
}

// setupTestDeps serves the catalogue loaded from the database, no cache.
func setupTestDeps(t *testing.T, db *postgres.DB, locs []domain.Location) *http.Dependencies {
	reg, err := memory.NewRegistry(locs)
	if err != nil {
		t.Fatalf("registry: %v", err)
	}
	pop := usecases.NewPopularityService()
	return &http.Dependencies{
		Search:     usecases.NewSearchService(reg, nil, usecases.SearchServiceConfig{}, logging.Discard()),
		Popularity: pop,
		Registry:   reg,
		Publisher:  pop,
		Session:    usecases.DefaultOrchestratorConfig(),
		DB:         db,
		Logger:     logging.Discard(),
	}
}

func TestLocationRepo_Integration_RoundTrip(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	db := setupTestDB(t)
	defer db.Close()

	name := "Integration Hall " + time.Now().Format("20060102150405")
	seedLocations(t, db, domain.Location{
		Name:        name,
		Category:    "Testing",
		Description: "Seeded by the integration suite.",
		BoundingBox: domain.BoundingBox{X: 10, Y: 20, Width: 5, Height: 5},
		Coordinates: &domain.GeoPoint{Lat: 11.55, Lon: 124.41},
		Details:     &domain.Details{Sections: []string{"Lab A"}},
	})

	got, err := postgres.NewLocationRepo(db).FindByName(context.Background(), name)
	if err != nil {
		t.Fatalf("find by name: %v", err)
	}
	if got.BoundingBox != (domain.BoundingBox{X: 10, Y: 20, Width: 5, Height: 5}) {
		t.Errorf("unexpected box %+v", got.BoundingBox)
	}
	if got.Coordinates == nil || got.Coordinates.Lat != 11.55 {
		t.Errorf("unexpected coordinates %+v", got.Coordinates)
	}
	if got.Details == nil || len(got.Details.Sections) != 1 {
		t.Errorf("unexpected details %+v", got.Details)
	}
}

func TestLocationRepo_Integration_UpsertIsCaseInsensitive(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	db := setupTestDB(t)
	defer db.Close()

	name := "Case Hall " + time.Now().Format("20060102150405")
	box := domain.BoundingBox{X: 1, Y: 1, Width: 2, Height: 2}
	seedLocations(t, db, domain.Location{Name: name, Description: "first", BoundingBox: box})
	all := seedLocations(t, db, domain.Location{Name: name, Description: "second", BoundingBox: box})

	matches := 0
	for _, l := range all {
		if l.Name == name {
			matches++
			if l.Description != "second" {
				t.Errorf("expected updated description, got %q", l.Description)
			}
		}
	}
	if matches != 1 {
		t.Fatalf("expected one row for %q, got %d", name, matches)
	}
}

func TestSearch_Integration_WithDatabaseCatalog(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	db := setupTestDB(t)
	defer db.Close()

	name := "Observatory " + time.Now().Format("20060102150405")
	all := seedLocations(t, db, domain.Location{
		Name:        name,
		Category:    "Facilities",
		BoundingBox: domain.BoundingBox{X: 40, Y: 40, Width: 4, Height: 4},
	})

	app := setupApp(setupTestDeps(t, db, all))

	req := httptest.NewRequest("GET", "/v1/locations/search?q=observatory&limit=50", nil)
	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatalf("test request: %v", err)
	}
	if resp.StatusCode != 200 {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	var results []http.SearchResult
	if err := json.NewDecoder(resp.Body).Decode(&results); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	found := false
	for _, r := range results {
		if r.Location.Name == name {
			found = true
		}
	}
	if !found {
		t.Errorf("expected %q in results", name)
	}

	req = httptest.NewRequest("GET", "/v1/ready", nil)
	resp, err = app.Test(req, -1)
	if err != nil {
		t.Fatalf("test request: %v", err)
	}
	if resp.StatusCode != 200 {
		t.Fatalf("expected ready with a live database, got %d", resp.StatusCode)
	}
}
