package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	chartifact "github.com/chartifact-labs/go-chartifact"
	"github.com/chartifact-labs/go-chartifact/internal/config"
	"github.com/chartifact-labs/go-chartifact/internal/store"
)

// Sentinel errors for CLI operations.
var (
	ErrNoInput          = errors.New("no input file given")
	ErrReadReport       = errors.New("failed to read report file")
	ErrWriteOutput      = errors.New("failed to write output")
	ErrInvalidExtension = errors.New("file must have .md or .markdown extension")
)

// environment is the loaded per-command state.
type environment struct {
	cfg       *config.Config
	workspace *store.Workspace
	converter *chartifact.Converter
}

// loadEnvironment resolves config (file, env, flags in increasing
// precedence), loads the workspace, and builds a converter.
func loadEnvironment(common commonFlags, render renderFlags, deps *Dependencies) (*environment, error) {
	cfgPath := common.config
	if cfgPath == "" {
		cfgPath = deps.Getenv("CHARTIFACT_CONFIG")
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return nil, err
	}
	applyEnvOverrides(cfg, deps.Getenv)
	applyRenderFlags(cfg, render)

	wsPath := common.workspace
	if wsPath == "" {
		wsPath = cfg.Workspace
	}
	if wsPath == "" {
		return nil, fmt.Errorf("%w: no workspace configured (use --workspace)", ErrNoInput)
	}
	ws, err := store.Load(wsPath)
	if err != nil {
		return nil, err
	}

	conv, err := chartifact.NewConverter(ws, ws,
		chartifact.WithRenderParams(renderParams(cfg)),
		chartifact.WithConcepts(ws.Concepts()),
	)
	if err != nil {
		return nil, err
	}

	return &environment{cfg: cfg, workspace: ws, converter: conv}, nil
}

// applyRenderFlags folds non-zero flag overrides into the config.
func applyRenderFlags(cfg *config.Config, f renderFlags) {
	if f.maxBins > 0 {
		cfg.Render.MaxBins = f.maxBins
	}
	if f.width > 0 {
		cfg.Render.Width = f.width
	}
	if f.height > 0 {
		cfg.Render.Height = f.height
	}
	if f.interactiveSet {
		cfg.Render.Interactive = f.interactive
	}
	if f.forExport {
		cfg.Render.ForExport = true
	}
}

// renderParams converts config to library rendering parameters.
func renderParams(cfg *config.Config) chartifact.RenderParams {
	return chartifact.RenderParams{
		MaxBins:     cfg.Render.MaxBins,
		Interactive: cfg.Render.Interactive,
		Width:       cfg.Render.Width,
		Height:      cfg.Render.Height,
		ForExport:   cfg.Render.ForExport,
	}
}

// readReport reads and optionally normalizes one report file.
func readReport(path string, normalize bool) (string, error) {
	if err := validateMarkdownExtension(path); err != nil {
		return "", err
	}
	content, err := os.ReadFile(path) // #nosec G304 -- report path comes from operator args
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrReadReport, err)
	}
	doc := string(content)
	if normalize {
		doc = chartifact.NormalizeSource(doc)
	}
	return doc, nil
}

// validateMarkdownExtension checks for a .md or .markdown extension.
func validateMarkdownExtension(path string) error {
	ext := filepath.Ext(path)
	if ext != ".md" && ext != ".markdown" {
		return fmt.Errorf("%w: got %q", ErrInvalidExtension, ext)
	}
	return nil
}

// reportDiagnostics prints per-chart diagnostics to stderr.
func reportDiagnostics(diags []chartifact.Diagnostic, deps *Dependencies) {
	for _, d := range diags {
		fmt.Fprintf(deps.Stderr, "warning: %s\n", d)
	}
}
