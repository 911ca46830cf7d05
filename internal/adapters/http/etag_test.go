package http_test

import (
	"net/http/httptest"
	"strings"
	"testing"
)

func TestETag_RevalidatedSearchIsNotModified(t *testing.T) {
	app := setupApp(makeDeps(t))

	status, _, headers := get(t, app, "/v1/locations/search?q=food")
	if status != 200 {
		t.Fatalf("expected 200, got %d", status)
	}
	etag := headers["Etag"]
	if !strings.HasPrefix(etag, `W/"`) {
		t.Fatalf("expected weak ETag, got %q", etag)
	}

	tests := []struct {
		name        string
		ifNoneMatch string
		want        int
	}{
		{"exact", etag, 304},
		{"in list", `"stale", ` + etag, 304},
		{"strong form", strings.TrimPrefix(etag, "W/"), 304},
		{"wildcard", "*", 304},
		{"stale", `W/"0"`, 200},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/v1/locations/search?q=food", nil)
			req.Header.Set("If-None-Match", tt.ifNoneMatch)
			resp, err := app.Test(req, -1)
			if err != nil {
				t.Fatal(err)
			}
			if resp.StatusCode != tt.want {
				t.Fatalf("expected %d, got %d", tt.want, resp.StatusCode)
			}
			body := readBody(t, resp.Body)
			if tt.want == 304 && len(body) != 0 {
				t.Errorf("expected empty body, got %d bytes", len(body))
			}
		})
	}
}

func TestETag_NotSetOnErrors(t *testing.T) {
	app := setupApp(makeDeps(t))

	status, _, headers := get(t, app, "/v1/locations/gymnasium")
	if status != 404 {
		t.Fatalf("expected 404, got %d", status)
	}
	if headers["Etag"] != "" {
		t.Errorf("unexpected ETag %q on a 404", headers["Etag"])
	}
}
