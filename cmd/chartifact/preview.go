package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	chartifact "github.com/chartifact-labs/go-chartifact"
)

// runPreview opens a live sandbox preview of one report. With --watch the
// preview stays synchronized with the file until interrupted.
func runPreview(args []string, deps *Dependencies) error {
	var (
		common  commonFlags
		render  renderFlags
		runtime runtimeFlags
		watch   bool
	)
	fs := newFlagSet("preview")
	addCommonFlags(fs, &common)
	addRenderFlags(fs, &render)
	addRuntimeFlags(fs, &runtime)
	fs.BoolVarP(&watch, "watch", "w", true, "keep the preview synchronized with the file")
	if err := fs.Parse(args); err != nil {
		return err
	}
	render.noteChanged(fs)
	if fs.NArg() < 1 {
		printPreviewUsage(deps.Stderr)
		return ErrNoInput
	}
	input := fs.Arg(0)

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

	doc, err := readReport(input, env.cfg.Preview.NormalizeLineEnds)
	if err != nil {
		return err
	}

	rt := chartifact.NewRodRuntime(
		env.cfg.Runtime.SandboxModule,
		env.cfg.Runtime.HostModule,
		env.cfg.Runtime.Timeout(),
	)
	manager := chartifact.NewLifecycleManager(rt, chartifact.DefaultMountID,
		chartifact.WithCallbacks(chartifact.SandboxCallbacks{
			OnReady: func() { fmt.Fprintln(deps.Stderr, "preview ready") },
			OnError: func(msg string) { fmt.Fprintf(deps.Stderr, "renderer error: %s\n", msg) },
		}))
	preview := chartifact.NewPreview(env.converter, manager)
	defer func() { _ = preview.Close() }()

	ctx := context.Background()
	diags, err := preview.Open(ctx, doc)
	reportDiagnostics(diags, deps)
	if err != nil {
		if errors.Is(err, chartifact.ErrRuntimeLoad) || errors.Is(err, chartifact.ErrRuntimeSurface) {
			// The user sees an explicit message, never a pending state.
			fmt.Fprintln(deps.Stderr, chartifact.LoadFailureText)
		}
		return err
	}

	sigs, stopSignals := deps.Signals()
	defer stopSignals()

	if !watch {
		<-sigs
		return nil
	}
	return watchLoop(ctx, input, env, preview, sigs, deps)
}

// watchLoop re-feeds the document into the preview whenever the report
// file changes, debounced to collapse editor write bursts.
func watchLoop(ctx context.Context, input string, env *environment, preview *chartifact.Preview, sigs <-chan os.Signal, deps *Dependencies) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating watcher: %w", err)
	}
	defer func() { _ = watcher.Close() }()

	// Watch the directory: editors often replace the file on save, which
	// would drop a watch on the file itself.
	if err := watcher.Add(filepath.Dir(input)); err != nil {
		return fmt.Errorf("watching %s: %w", filepath.Dir(input), err)
	}

	debounce := env.cfg.Preview.Debounce()
	var timer *time.Timer
	pending := make(chan struct{}, 1)

	for {
		select {
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != filepath.Clean(input) {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}
			if timer != nil {
				timer.Stop()
			}
			timer = time.AfterFunc(debounce, func() {
				select {
				case pending <- struct{}{}:
				default:
				}
			})

		case <-pending:
			doc, err := readReport(input, env.cfg.Preview.NormalizeLineEnds)
			if err != nil {
				fmt.Fprintf(deps.Stderr, "read failed, keeping last preview: %v\n", err)
				continue
			}
			diags, err := preview.Update(ctx, doc)
			reportDiagnostics(diags, deps)
			if err != nil {
				fmt.Fprintf(deps.Stderr, "update failed: %v\n", err)
				continue
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			fmt.Fprintf(deps.Stderr, "watch error: %v\n", err)

		case <-sigs:
			return nil
		}
	}
}
