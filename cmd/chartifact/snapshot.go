package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	chartifact "github.com/chartifact-labs/go-chartifact"
	"github.com/chartifact-labs/go-chartifact/internal/fileutil"
)

// runSnapshot renders one or more reports to PNG through a pool of
// sandbox-backed renderers, one browser per worker.
func runSnapshot(args []string, deps *Dependencies) error {
	var (
		common    commonFlags
		render    renderFlags
		runtime   runtimeFlags
		outputDir string
		workers   int
	)
	fs := newFlagSet("snapshot")
	addCommonFlags(fs, &common)
	addRenderFlags(fs, &render)
	addRuntimeFlags(fs, &runtime)
	fs.StringVarP(&outputDir, "output-dir", "d", "", "output directory (default alongside input)")
	fs.IntVarP(&workers, "workers", "w", 0, "parallel workers (0 = auto)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	render.noteChanged(fs)
	if fs.NArg() < 1 {
		printSnapshotUsage(deps.Stderr)
		return ErrNoInput
	}

	env, err := loadEnvironment(common, render, deps)
	if err != nil {
		return err
	}
	if runtime.sandboxModule != "" {
		env.cfg.Runtime.SandboxModule = runtime.sandboxModule
	}
	if runtime.hostModule != "" {
		env.cfg.Runtime.HostModule = runtime.hostModule
	}
	if err := env.cfg.ValidateRuntime(); err != nil {
		return err
	}
	if outputDir == "" {
		outputDir = env.cfg.Snapshot.OutputDir
	}
	if workers == 0 {
		workers = env.cfg.Snapshot.Workers
	}

	files, err := discoverReports(fs.Args())
	if err != nil {
		return err
	}

	poolSize := chartifact.ResolvePoolSize(workers)
	if poolSize > len(files) {
		poolSize = len(files)
	}
	if common.verbose {
		fmt.Fprintf(deps.Stderr, "rendering %d report(s) with %d worker(s)\n", len(files), poolSize)
	}

	pool := chartifact.NewRendererPool(poolSize, func() *chartifact.SnapshotRenderer {
		return chartifact.NewSnapshotRenderer(
			env.converter,
			env.cfg.Runtime.SandboxModule,
			env.cfg.Runtime.HostModule,
			env.cfg.Runtime.Timeout(),
		)
	})
	defer func() { _ = pool.Close() }()

	ctx := context.Background()
	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		failures []error
	)
	for _, file := range files {
		wg.Add(1)
		go func(file string) {
			defer wg.Done()
			if err := snapshotOne(ctx, file, outputDir, pool, env, deps); err != nil {
				mu.Lock()
				failures = append(failures, fmt.Errorf("%s: %w", file, err))
				mu.Unlock()
			}
		}(file)
	}
	wg.Wait()

	for _, f := range failures {
		fmt.Fprintln(deps.Stderr, f)
	}
	if len(failures) > 0 {
		return fmt.Errorf("%d of %d snapshot(s) failed: %w", len(failures), len(files), failures[0])
	}
	return nil
}

// snapshotOne renders a single report through a pooled renderer.
func snapshotOne(ctx context.Context, file, outputDir string, pool *chartifact.RendererPool, env *environment, deps *Dependencies) error {
	doc, err := readReport(file, env.cfg.Preview.NormalizeLineEnds)
	if err != nil {
		return err
	}

	renderer := pool.Acquire()
	defer pool.Release(renderer)

	png, diags, err := renderer.Render(ctx, doc)
	reportDiagnostics(diags, deps)
	if err != nil {
		return err
	}

	out := snapshotPath(file, outputDir)
	if err := fileutil.WriteAtomic(out, png, 0o644); err != nil {
		return fmt.Errorf("%w: %v", ErrWriteOutput, err)
	}
	fmt.Fprintf(deps.Stdout, "Created %s\n", out)
	return nil
}

// discoverReports expands the positional arguments: directories yield
// their markdown files, sorted for deterministic order.
func discoverReports(args []string) ([]string, error) {
	var files []string
	for _, arg := range args {
		info, err := os.Stat(arg)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrReadReport, err)
		}
		if !info.IsDir() {
			files = append(files, arg)
			continue
		}
		entries, err := os.ReadDir(arg)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrReadReport, err)
		}
		for _, e := range entries {
			if e.IsDir() {
				continue
			}
			if ext := filepath.Ext(e.Name()); ext == ".md" || ext == ".markdown" {
				files = append(files, filepath.Join(arg, e.Name()))
			}
		}
	}
	if len(files) == 0 {
		return nil, ErrNoInput
	}
	sort.Strings(files)
	return files, nil
}

// snapshotPath derives the PNG output path for a report file.
func snapshotPath(file, outputDir string) string {
	base := strings.TrimSuffix(filepath.Base(file), filepath.Ext(file)) + ".png"
	if outputDir == "" {
		return filepath.Join(filepath.Dir(file), base)
	}
	return filepath.Join(outputDir, base)
}
