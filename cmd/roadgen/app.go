package main

import (
	"sync"

	"github.com/google/uuid"

	"github.com/chazu/roadweave/pkg/cache"
	"github.com/chazu/roadweave/pkg/engine"
	"github.com/chazu/roadweave/pkg/generate"
)

// defaultCacheSize is how many generated results the app keeps.
const defaultCacheSize = 64

// App ties the source engine to the generator and caches results by input
// fingerprint. The CLI and the HTTP server both go through it.
type App struct {
	evalMu  sync.Mutex // zygomys sandboxes must not be created concurrently
	engine  *engine.Engine
	results *cache.Cache[uuid.UUID, *generate.Result]
}

// EvalErrorData is a JSON-serializable eval error or warning.
type EvalErrorData struct {
	Line    int    `json:"line"`
	Col     int    `json:"col"`
	Message string `json:"message"`
}

// EvalResult is what evaluating a source returns.
type EvalResult struct {
	Fingerprint string           `json:"fingerprint,omitempty"`
	Cached      bool             `json:"cached"`
	Summary     generate.Summary `json:"summary"`
	Result      *generate.Result `json:"result,omitempty"`
	Errors      []EvalErrorData  `json:"errors"`
	Warnings    []EvalErrorData  `json:"warnings"`
}

// NewApp creates an App with a fresh engine and a result cache holding up
// to cacheSize entries. A non-positive size selects the default.
func NewApp(cacheSize int) *App {
	if cacheSize <= 0 {
		cacheSize = defaultCacheSize
	}
	return &App{
		engine:  engine.NewEngine(),
		results: cache.New[uuid.UUID, *generate.Result](cacheSize),
	}
}

// Generate runs the pipeline for in and p, reusing a cached result when the
// same input was generated before. Cached results are shared and must not
// be modified.
func (a *App) Generate(in generate.Input, p generate.Params) (*generate.Result, uuid.UUID, bool) {
	fp := generate.Fingerprint(in, p)
	if fp == uuid.Nil {
		return generate.Generate(in, p), fp, false
	}
	if res, ok := a.results.Get(fp); ok {
		return res, fp, true
	}
	res := a.results.GetOrCreate(fp, func() *generate.Result {
		return generate.Generate(in, p)
	})
	return res, fp, false
}

// Evaluate runs source through the engine and, when it evaluates cleanly,
// through the generator.
func (a *App) Evaluate(source string) EvalResult {
	result := EvalResult{
		Errors:   []EvalErrorData{},
		Warnings: []EvalErrorData{},
	}

	a.evalMu.Lock()
	prog, evalErrs, err := a.engine.Evaluate(source)
	a.evalMu.Unlock()
	if err != nil {
		generate.Logger().Error("evaluate: fatal", "err", err)
		result.Errors = append(result.Errors, EvalErrorData{Message: err.Error()})
		return result
	}
	if len(evalErrs) > 0 {
		for _, e := range evalErrs {
			result.Errors = append(result.Errors, EvalErrorData{Line: e.Line, Col: e.Col, Message: e.Message})
		}
		return result
	}
	for _, w := range prog.Warnings {
		result.Warnings = append(result.Warnings, EvalErrorData{Line: w.Line, Col: w.Col, Message: w.Message})
	}

	res, fp, cached := a.Generate(prog.Input, prog.Params)
	result.Result = res
	result.Summary = res.Summary()
	result.Cached = cached
	if fp != uuid.Nil {
		result.Fingerprint = fp.String()
	}
	return result
}
