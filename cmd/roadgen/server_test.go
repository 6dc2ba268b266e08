package main

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/paulmach/orb/geojson"

	"github.com/chazu/roadweave/pkg/generate"
)

func serve(t *testing.T, app *App, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	rec := httptest.NewRecorder()
	NewRouter(app).ServeHTTP(rec, req)
	return rec
}

// evalBody is EvalResult without the full result, which is write-only.
type evalBody struct {
	Summary generate.Summary `json:"summary"`
	Errors  []EvalErrorData  `json:"errors"`
}

const straightInput = `{"input": {"roads": [
	{"tag": "a", "points": [{"x": 0, "z": 0}, {"x": 10, "z": 0}], "lanes_forward": 1, "lanes_backward": 1}
]}}`

func TestHealth(t *testing.T) {
	rec := serve(t, NewApp(0), "GET", "/api/health", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var body healthResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatal(err)
	}
	if body.Status != "ok" || body.Cache.Capacity != defaultCacheSize {
		t.Errorf("body = %+v", body)
	}
}

func TestEvaluateRoute(t *testing.T) {
	rec := serve(t, NewApp(0), "POST", "/api/evaluate", `{"source": "(road \"a\" (pt 0 0) (pt 10 0))"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body)
	}
	var res evalBody
	if err := json.Unmarshal(rec.Body.Bytes(), &res); err != nil {
		t.Fatal(err)
	}
	if len(res.Errors) != 0 || res.Summary.Edges != 1 || res.Summary.Connectors != 2 {
		t.Errorf("result = %+v", res)
	}
}

func TestEvaluateRouteReportsEvalErrors(t *testing.T) {
	rec := serve(t, NewApp(0), "POST", "/api/evaluate", `{"source": "(road"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var res evalBody
	if err := json.Unmarshal(rec.Body.Bytes(), &res); err != nil {
		t.Fatal(err)
	}
	if len(res.Errors) == 0 {
		t.Error("expected eval errors")
	}
}

func TestGenerateRoute(t *testing.T) {
	app := NewApp(0)
	rec := serve(t, app, "POST", "/api/generate", straightInput)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body)
	}
	if rec.Header().Get("X-Cache") != "miss" {
		t.Errorf("X-Cache = %q", rec.Header().Get("X-Cache"))
	}
	var out struct {
		Connectors []json.RawMessage `json:"connectors"`
		Failures   []json.RawMessage `json:"failures"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatal(err)
	}
	if len(out.Connectors) != 2 || len(out.Failures) != 0 {
		t.Errorf("connectors %d failures %v", len(out.Connectors), out.Failures)
	}

	rec = serve(t, app, "POST", "/api/generate", straightInput)
	if rec.Header().Get("X-Cache") != "hit" {
		t.Errorf("second X-Cache = %q", rec.Header().Get("X-Cache"))
	}
	if app.results.Stats().Hits != 1 {
		t.Errorf("stats = %+v", app.results.Stats())
	}
}

func TestGenerateRouteGeoJSON(t *testing.T) {
	rec := serve(t, NewApp(0), "POST", "/api/generate?format=geojson", straightInput)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body)
	}
	fc, err := geojson.UnmarshalFeatureCollection(rec.Body.Bytes())
	if err != nil {
		t.Fatal(err)
	}
	// centerline, two boundaries, two caps, then poles
	if len(fc.Features) < 5 {
		t.Errorf("features = %d", len(fc.Features))
	}
}

func TestGenerateRouteRejects(t *testing.T) {
	tests := []struct {
		name, target, body string
	}{
		{"bad json", "/api/generate", `{`},
		{"bad params", "/api/generate", `{"params": {"lane_width": 0}}`},
		{"unknown format", "/api/generate?format=png", straightInput},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := serve(t, NewApp(0), "POST", tt.target, tt.body)
			if rec.Code != http.StatusBadRequest {
				t.Errorf("status = %d", rec.Code)
			}
		})
	}
}

func TestMethodNotAllowed(t *testing.T) {
	rec := serve(t, NewApp(0), "GET", "/api/generate", "")
	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("status = %d", rec.Code)
	}
}
