package http_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/getkin/kin-openapi/openapi3"
)

// findOpenAPISpec locates api/openapi.yaml by walking up from the test directory.
func findOpenAPISpec(t *testing.T) string {
	dir, _ := os.Getwd()

	for i := 0; i < 5; i++ {
		candidate := filepath.Join(dir, "api", "openapi.yaml")
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			return candidate
		}
		dir = filepath.Dir(dir)
	}

	t.Fatalf("could not find api/openapi.yaml")
	return ""
}

func loadOpenAPISpec(t *testing.T) *openapi3.T {
	t.Helper()
	data, err := os.ReadFile(findOpenAPISpec(t))
	if err != nil {
		t.Fatalf("failed to read openapi.yaml: %v", err)
	}

	loader := &openapi3.Loader{IsExternalRefsAllowed: false}
	doc, err := loader.LoadFromData(data)
	if err != nil {
		t.Fatalf("failed to parse OpenAPI document: %v", err)
	}
	return doc
}

// TestOpenAPIDocument validates the document and checks it covers every route.
func TestOpenAPIDocument(t *testing.T) {
	doc := loadOpenAPISpec(t)

	if err := doc.Validate(context.Background()); err != nil {
		t.Fatalf("OpenAPI validation failed: %v", err)
	}

	expectedPaths := []string{
		"/v1/health",
		"/v1/ready",
		"/v1/locations",
		"/v1/locations/search",
		"/v1/locations/nearby",
		"/v1/locations/{name}",
		"/v1/locations/{name}/frame",
		"/v1/locations/{name}/screen",
		"/v1/stats/popular",
		"/v1/buildings/search",
		"/graphql",
	}
	for _, path := range expectedPaths {
		if item := doc.Paths.Find(path); item == nil {
			t.Errorf("expected path %s not found", path)
		}
	}

	expectedSchemas := []string{
		"Location",
		"BoundingBox",
		"SearchResult",
		"Segment",
		"Framing",
		"Transform",
		"Point",
		"LocationDistance",
		"PopularStats",
		"APIError",
		"Pagination",
	}
	for _, schema := range expectedSchemas {
		if doc.Components.Schemas[schema] == nil {
			t.Errorf("expected schema %s not found", schema)
		}
	}

	legacy := doc.Paths.Find("/v1/buildings/search")
	if legacy != nil && (legacy.Get == nil || !legacy.Get.Deprecated) {
		t.Error("legacy building search should be marked deprecated")
	}

	t.Logf("OpenAPI document valid: %d paths, %d schemas", len(doc.Paths.Map()), len(doc.Components.Schemas))
}

func TestOpenAPIInfo(t *testing.T) {
	doc := loadOpenAPISpec(t)

	if doc.Info.Title != "Campus Map API" {
		t.Errorf("expected title 'Campus Map API', got %q", doc.Info.Title)
	}
	if doc.Info.Version != "1.0.0" {
		t.Errorf("expected version 1.0.0, got %q", doc.Info.Version)
	}
	if doc.Info.Description == "" {
		t.Error("expected non-empty description")
	}
	if len(doc.Servers) == 0 {
		t.Fatal("expected at least one server")
	}
}
