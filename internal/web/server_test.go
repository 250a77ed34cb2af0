package web

import (
	"encoding/json"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/darkSectorHT83/Darky-Bot/internal/storage"
)

func newTestServer(t *testing.T) (*Server, *storage.Registry) {
	t.Helper()
	registry, err := storage.NewRegistry(filepath.Join(t.TempDir(), "reaction_roles.json"))
	if err != nil {
		t.Fatal(err)
	}
	return New(":0", "v1.3.0", registry), registry
}

func TestRoot(t *testing.T) {
	s, _ := newTestServer(t)

	rec := httptest.NewRecorder()
	s.handleRoot(rec, httptest.NewRequest("GET", "/", nil))

	if rec.Code != 200 || !strings.Contains(rec.Body.String(), "v1.3.0") {
		t.Errorf("GET / = %d %q", rec.Code, rec.Body.String())
	}
}

func TestRootUnknownPath(t *testing.T) {
	s, _ := newTestServer(t)

	rec := httptest.NewRecorder()
	s.handleRoot(rec, httptest.NewRequest("GET", "/nope", nil))

	if rec.Code != 404 {
		t.Errorf("GET /nope = %d; want 404", rec.Code)
	}
}

func TestDataDumpsRegistry(t *testing.T) {
	s, registry := newTestServer(t)
	if err := registry.Bind("1", "10", "✅", "Verified"); err != nil {
		t.Fatal(err)
	}

	rec := httptest.NewRecorder()
	s.handleData(rec, httptest.NewRequest("GET", "/data", nil))

	var got storage.Bindings
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode /data: %v", err)
	}
	if got["1"]["10"]["✅"] != "Verified" {
		t.Errorf("/data = %v", got)
	}
}
