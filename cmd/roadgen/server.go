package main

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/chazu/roadweave/pkg/cache"
	"github.com/chazu/roadweave/pkg/export"
	"github.com/chazu/roadweave/pkg/generate"
)

// maxBody bounds request bodies.
const maxBody = 4 << 20

// Handler serves the app over HTTP.
type Handler struct {
	app *App
}

// NewHandler returns a handler for app.
func NewHandler(app *App) *Handler {
	return &Handler{app: app}
}

// RegisterRoutes adds the API routes to router.
func (h *Handler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/api/evaluate", h.Evaluate).Methods("POST")
	router.HandleFunc("/api/generate", h.Generate).Methods("POST")
	router.HandleFunc("/api/health", h.Health).Methods("GET")
	router.Use(logRequests)
}

// NewRouter returns a router with every route registered.
func NewRouter(app *App) *mux.Router {
	r := mux.NewRouter()
	NewHandler(app).RegisterRoutes(r)
	return r
}

type evaluateRequest struct {
	Source string `json:"source"`
}

// Evaluate evaluates a source and returns the EvalResult. Eval errors are
// reported in the body with status 200.
func (h *Handler) Evaluate(w http.ResponseWriter, r *http.Request) {
	var req evaluateRequest
	if err := decode(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	writeJSON(w, http.StatusOK, h.app.Evaluate(req.Source))
}

type generateRequest struct {
	Input  generate.Input  `json:"input"`
	Params generate.Params `json:"params"`
}

// Generate runs the pipeline on a JSON input. Params omitted from the body
// keep their defaults. The format query selects "json" (default) or
// "geojson" output.
func (h *Handler) Generate(w http.ResponseWriter, r *http.Request) {
	req := generateRequest{Params: generate.DefaultParams()}
	if err := decode(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := req.Params.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	res, fp, cached := h.app.Generate(req.Input, req.Params)
	w.Header().Set("X-Fingerprint", fp.String())
	if cached {
		w.Header().Set("X-Cache", "hit")
	} else {
		w.Header().Set("X-Cache", "miss")
	}

	switch r.URL.Query().Get("format") {
	case "", "json":
		writeJSON(w, http.StatusOK, res)
	case "geojson":
		w.Header().Set("Content-Type", "application/geo+json")
		if err := export.WriteGeoJSON(w, res, export.DefaultOptions()); err != nil {
			generate.Logger().Error("serve: write geojson", "err", err)
		}
	default:
		writeError(w, http.StatusBadRequest, "unknown format")
	}
}

type healthResponse struct {
	Status string      `json:"status"`
	Cache  cache.Stats `json:"cache"`
}

// Health reports liveness and cache usage.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, healthResponse{Status: "ok", Cache: h.app.results.Stats()})
}

func decode(w http.ResponseWriter, r *http.Request, v any) error {
	return json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBody)).Decode(v)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		generate.Logger().Error("serve: write response", "err", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		generate.Logger().Info("serve: request", "method", r.Method, "path", r.URL.Path, "took", time.Since(start))
	})
}
