package main

import (
	"context"
	"fmt"

	"github.com/chartifact-labs/go-chartifact/internal/fileutil"
)

// runConvert transforms one report to chartifact markdown, writing to
// stdout or the -o path.
func runConvert(args []string, deps *Dependencies) error {
	var (
		common commonFlags
		render renderFlags
		output string
	)
	fs := newFlagSet("convert")
	addCommonFlags(fs, &common)
	addRenderFlags(fs, &render)
	fs.StringVarP(&output, "output", "o", "", "output file (default stdout)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	render.noteChanged(fs)
	if fs.NArg() < 1 {
		printConvertUsage(deps.Stderr)
		return ErrNoInput
	}

	env, err := loadEnvironment(common, render, deps)
	if err != nil {
		return err
	}

	doc, err := readReport(fs.Arg(0), env.cfg.Preview.NormalizeLineEnds)
	if err != nil {
		return err
	}

	if common.verbose {
		fmt.Fprintf(deps.Stderr, "workspace: %d charts, %d tables\n",
			env.workspace.ChartCount(), env.workspace.TableCount())
	}

	out, diags, err := env.converter.Convert(context.Background(), doc)
	if err != nil {
		return err
	}
	reportDiagnostics(diags, deps)

	if output == "" {
		fmt.Fprint(deps.Stdout, out)
		return nil
	}
	if err := fileutil.WriteAtomic(output, []byte(out), 0o644); err != nil {
		return fmt.Errorf("%w: %v", ErrWriteOutput, err)
	}
	if common.verbose {
		fmt.Fprintf(deps.Stderr, "wrote %s\n", output)
	}
	return nil
}
