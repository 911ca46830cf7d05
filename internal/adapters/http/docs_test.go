package http_test

import (
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"

	handler "github.com/samirrijal/campusmap/internal/adapters/http"
)

func TestDocs_ServesExplorerAndDescription(t *testing.T) {
	app := fiber.New(fiber.Config{DisableStartupMessage: true})
	handler.SetupDocs(app, findOpenAPISpec(t))

	status, body, headers := get(t, app, "/docs")
	if status != 200 || !strings.Contains(string(body), "Campus Map API reference") {
		t.Fatalf("unexpected explorer page: %d", status)
	}
	if !strings.HasPrefix(headers["Content-Type"], "text/html") {
		t.Errorf("unexpected content type %q", headers["Content-Type"])
	}

	status, body, headers = get(t, app, "/docs/openapi.yaml")
	if status != 200 || !strings.Contains(string(body), "title: Campus Map API") {
		t.Fatalf("unexpected description: %d", status)
	}
	if headers["Content-Type"] != "application/yaml" {
		t.Errorf("unexpected content type %q", headers["Content-Type"])
	}
}

func TestDocs_MissingDescription(t *testing.T) {
	app := fiber.New(fiber.Config{DisableStartupMessage: true})
	handler.SetupDocs(app, "does/not/exist.yaml")

	if status, _, _ := get(t, app, "/docs/openapi.yaml"); status != 404 {
		t.Errorf("expected 404, got %d", status)
	}
	if status, _, _ := get(t, app, "/docs"); status != 200 {
		t.Errorf("explorer should still load, got %d", status)
	}
}
