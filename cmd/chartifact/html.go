package main

import (
	"context"
	"fmt"
	"strings"

	chartifact "github.com/chartifact-labs/go-chartifact"
	"github.com/chartifact-labs/go-chartifact/internal/fileutil"
)

// runHTML converts a report and exports the static HTML view: spec and
// data blocks come out as highlighted code, never interpreted.
func runHTML(args []string, deps *Dependencies) error {
	var (
		common commonFlags
		render renderFlags
		output string
	)
	fs := newFlagSet("html")
	addCommonFlags(fs, &common)
	addRenderFlags(fs, &render)
	fs.StringVarP(&output, "output", "o", "", "output file (default <input>.html)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	render.noteChanged(fs)
	if fs.NArg() < 1 {
		printHTMLUsage(deps.Stderr)
		return ErrNoInput
	}
	input := fs.Arg(0)

	env, err := loadEnvironment(common, render, deps)
	if err != nil {
		return err
	}

	doc, err := readReport(input, env.cfg.Preview.NormalizeLineEnds)
	if err != nil {
		return err
	}

	ctx := context.Background()
	converted, diags, err := env.converter.Convert(ctx, doc)
	if err != nil {
		return err
	}
	reportDiagnostics(diags, deps)

	page, err := chartifact.NewHTMLView().Render(ctx, converted)
	if err != nil {
		return err
	}

	if output == "" {
		output = strings.TrimSuffix(input, ".md")
		output = strings.TrimSuffix(output, ".markdown") + ".html"
	}
	if err := fileutil.WriteAtomic(output, []byte(page), 0o644); err != nil {
		return fmt.Errorf("%w: %v", ErrWriteOutput, err)
	}
	fmt.Fprintf(deps.Stdout, "Created %s\n", output)
	return nil
}
