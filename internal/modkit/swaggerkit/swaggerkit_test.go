package swaggerkit

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"

	phttp "streamtags/internal/platform/net/http"
)

func mount(t *testing.T, o Options) phttp.Router {
	t.Helper()
	r := phttp.AdaptChi(chi.NewRouter())
	Mount(r, o)
	return r
}

func get(r phttp.Router, path string) *httptest.ResponseRecorder {
	rr := httptest.NewRecorder()
	r.Mux().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, path, nil))
	return rr
}

func TestDocJSON_NormalizesGeneratedSpec(t *testing.T) {
	r := mount(t, Options{Enabled: true, Path: "/swagger", Server: "/v1", TitleSuffix: "(staging)"})

	rr := get(r, "/swagger/doc.json")
	if rr.Code != http.StatusOK {
		t.Fatalf("doc.json = %d %s", rr.Code, rr.Body.String())
	}
	if cc := rr.Header().Get("Cache-Control"); cc != "no-store" {
		t.Fatalf("Cache-Control = %q", cc)
	}
	var spec map[string]any
	if err := json.Unmarshal(rr.Body.Bytes(), &spec); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if spec["openapi"] != "3.0.3" {
		t.Fatalf("openapi = %v", spec["openapi"])
	}
	servers, _ := spec["servers"].([]any)
	if len(servers) != 1 || servers[0].(map[string]any)["url"] != "/v1" {
		t.Fatalf("servers = %v", spec["servers"])
	}
	info := spec["info"].(map[string]any)
	if info["title"] != "Streamtags Enrichment API (staging)" {
		t.Fatalf("title = %v", info["title"])
	}

	paths := spec["paths"].(map[string]any)
	for _, p := range []string{"/enrichment/analyze", "/enrichment/runs", "/enrichment/runs/current", "/meta/ready"} {
		if _, ok := paths[p]; !ok {
			t.Fatalf("missing path %s", p)
		}
	}
	analyze := paths["/enrichment/analyze"].(map[string]any)["get"].(map[string]any)["responses"].(map[string]any)
	for _, code := range []string{"200", "400", "422", "500"} {
		if _, ok := analyze[code]; !ok {
			t.Fatalf("analyze missing %s response: %v", code, analyze)
		}
	}
	schemas := spec["components"].(map[string]any)["schemas"].(map[string]any)
	if _, ok := schemas["ErrorResponse"]; !ok {
		t.Fatalf("ErrorResponse schema not added")
	}
}

func TestDocJSON_Unparseable(t *testing.T) {
	prev := docReader
	docReader = func() string { return "{not json" }
	t.Cleanup(func() { docReader = prev })

	rr := get(mount(t, Options{Enabled: true}), "/swagger/doc.json")
	if rr.Code != http.StatusInternalServerError {
		t.Fatalf("code = %d, want 500", rr.Code)
	}
}

func TestEnsureServers(t *testing.T) {
	t.Parallel()
	spec := map[string]any{"swagger": "2.0"}
	ensureServers(spec, "/v1")
	if _, ok := spec["swagger"]; ok || spec["openapi"] != "3.0.3" {
		t.Fatalf("spec = %v", spec)
	}

	kept := map[string]any{"openapi": "3.0.1", "servers": []any{"x"}}
	ensureServers(kept, "/v1")
	if kept["openapi"] != "3.0.1" || len(kept["servers"].([]any)) != 1 {
		t.Fatalf("kept = %v", kept)
	}
}

func TestMount(t *testing.T) {
	t.Parallel()
	r := mount(t, Options{Enabled: true})
	rr := get(r, "/swagger")
	if rr.Code != http.StatusPermanentRedirect || rr.Header().Get("Location") != "/swagger/" {
		t.Fatalf("redirect = %d %q", rr.Code, rr.Header().Get("Location"))
	}

	off := mount(t, Options{})
	if rr := get(off, "/swagger/doc.json"); rr.Code != http.StatusNotFound {
		t.Fatalf("disabled doc.json = %d", rr.Code)
	}
}
