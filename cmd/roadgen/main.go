// Command roadgen builds road networks from source files and writes them
// out, or serves the generator over HTTP.
//
// Usage:
//
//	roadgen build  [-params p.yaml] [-v] network.road
//	roadgen export [-params p.yaml] [-format geojson|json|dxf|svg] [-o out] network.road
//	roadgen serve  [-addr :8080] [-cache 64] [-v]
//
// Sources ending in .json or .yaml are read as a plain road list; anything
// else is evaluated as a road program.
package main

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/chazu/roadweave/pkg/engine"
	"github.com/chazu/roadweave/pkg/export"
	"github.com/chazu/roadweave/pkg/generate"
)

func main() {
	if err := run(os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintln(os.Stderr, "roadgen:", err)
		os.Exit(1)
	}
}

func usage(w io.Writer) {
	fmt.Fprintln(w, "usage: roadgen build|export|serve [flags] [file]")
}

func run(args []string, stdout, stderr io.Writer) error {
	if len(args) == 0 {
		usage(stderr)
		return errors.New("missing command")
	}
	switch args[0] {
	case "build":
		return runBuild(args[1:], stdout, stderr)
	case "export":
		return runExport(args[1:], stdout, stderr)
	case "serve":
		return runServe(args[1:], stderr)
	case "help", "-h", "-help":
		usage(stdout)
		return nil
	}
	usage(stderr)
	return fmt.Errorf("unknown command %q", args[0])
}

// setupLogging routes generator logs to w. Failures always show; verbose
// adds the debug trace.
func setupLogging(w io.Writer, verbose bool) {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	generate.SetLogger(slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level})))
}

// loadInput reads path as a road list or a road program. When paramsPath
// is set its parameters replace whatever the source declared.
func loadInput(path, paramsPath string) (generate.Input, generate.Params, error) {
	var in generate.Input
	p := generate.DefaultParams()

	data, err := os.ReadFile(path)
	if err != nil {
		return in, p, err
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		if err := json.Unmarshal(data, &in); err != nil {
			return in, p, fmt.Errorf("%s: %w", path, err)
		}
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &in); err != nil {
			return in, p, fmt.Errorf("%s: %w", path, err)
		}
	default:
		prog, evalErrs, err := engine.NewEngine().Evaluate(string(data))
		if err != nil {
			return in, p, fmt.Errorf("%s: %w", path, err)
		}
		if len(evalErrs) > 0 {
			msgs := make([]string, len(evalErrs))
			for i, e := range evalErrs {
				msgs[i] = fmt.Sprintf("%s: %s", path, e.Error())
			}
			return in, p, errors.New(strings.Join(msgs, "\n"))
		}
		for _, w := range prog.Warnings {
			generate.Logger().Warn("source warning", "file", path, "line", w.Line, "msg", w.Message)
		}
		in, p = prog.Input, prog.Params
	}

	if paramsPath != "" {
		if p, err = generate.LoadParams(paramsPath); err != nil {
			return in, p, err
		}
	}
	return in, p, nil
}

func runBuild(args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("build", flag.ContinueOnError)
	fs.SetOutput(stderr)
	paramsPath := fs.String("params", "", "YAML parameter file")
	verbose := fs.Bool("v", false, "verbose logging")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return errors.New("build: expected one source file")
	}
	setupLogging(stderr, *verbose)

	in, p, err := loadInput(fs.Arg(0), *paramsPath)
	if err != nil {
		return err
	}
	res := generate.Generate(in, p)

	enc := json.NewEncoder(stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(struct {
		Fingerprint string             `json:"fingerprint"`
		Summary     generate.Summary   `json:"summary"`
		Failures    []generate.Failure `json:"failures"`
	}{generate.Fingerprint(in, p).String(), res.Summary(), res.Failures}); err != nil {
		return err
	}
	if !res.Validation.OK() {
		return fmt.Errorf("build: %d validation errors", len(res.Validation.Errors))
	}
	return nil
}

func runExport(args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("export", flag.ContinueOnError)
	fs.SetOutput(stderr)
	paramsPath := fs.String("params", "", "YAML parameter file")
	format := fs.String("format", "geojson", "output format: geojson, json, dxf or svg")
	out := fs.String("o", "", "output file (stdout for json and geojson when empty)")
	opts := export.DefaultOptions()
	fs.Float64Var(&opts.Chord, "chord", opts.Chord, "longest chord when flattening arcs")
	fs.Float64Var(&opts.Simplify, "simplify", opts.Simplify, "GeoJSON simplification tolerance")
	verbose := fs.Bool("v", false, "verbose logging")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return errors.New("export: expected one source file")
	}
	if opts.Chord <= 0 {
		return errors.New("export: chord must be positive")
	}
	setupLogging(stderr, *verbose)

	in, p, err := loadInput(fs.Arg(0), *paramsPath)
	if err != nil {
		return err
	}
	res := generate.Generate(in, p)

	switch *format {
	case "dxf", "svg":
		if *out == "" {
			return fmt.Errorf("export: -o is required for %s", *format)
		}
		if *format == "dxf" {
			return export.WriteDXF(*out, res, opts)
		}
		return export.WriteSVG(*out, res, opts)
	case "json", "geojson":
		w := stdout
		if *out != "" {
			f, err := os.Create(*out)
			if err != nil {
				return err
			}
			defer f.Close()
			w = f
		}
		if *format == "json" {
			return export.WriteJSON(w, res)
		}
		return export.WriteGeoJSON(w, res, opts)
	}
	return fmt.Errorf("export: unknown format %q", *format)
}

func runServe(args []string, stderr io.Writer) error {
	fs := flag.NewFlagSet("serve", flag.ContinueOnError)
	fs.SetOutput(stderr)
	addr := fs.String("addr", ":8080", "listen address")
	size := fs.Int("cache", defaultCacheSize, "cached results")
	verbose := fs.Bool("v", false, "verbose logging")
	if err := fs.Parse(args); err != nil {
		return err
	}
	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	generate.SetLogger(slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level})))

	srv := &http.Server{
		Addr:              *addr,
		Handler:           NewRouter(NewApp(*size)),
		ReadHeaderTimeout: 10 * time.Second,
	}
	generate.Logger().Info("serve: listening", "addr", *addr)
	return srv.ListenAndServe()
}
