package main

import (
	"fmt"
	"os"

	"go.uber.org/automaxprocs/maxprocs"
)

// Version is set at build time via ldflags.
var Version = "dev"

func main() {
	// Error ignored: maxprocs.Set only fails if GOMAXPROCS env is invalid,
	// in which case Go runtime defaults apply and the program continues.
	_, _ = maxprocs.Set(maxprocs.Logger(func(string, ...interface{}) {}))

	deps := DefaultDeps()
	code := run(os.Args[1:], deps)
	os.Exit(code)
}

// run dispatches to the subcommand and maps errors to exit codes.
func run(args []string, deps *Dependencies) int {
	if len(args) == 0 {
		printUsage(deps.Stderr)
		return ExitUsage
	}

	var err error
	switch args[0] {
	case "convert":
		err = runConvert(args[1:], deps)
	case "html":
		err = runHTML(args[1:], deps)
	case "preview":
		err = runPreview(args[1:], deps)
	case "snapshot":
		err = runSnapshot(args[1:], deps)
	case "version":
		fmt.Fprintf(deps.Stdout, "chartifact %s\n", Version)
	case "help", "-h", "--help":
		runHelp(args[1:], deps)
	default:
		fmt.Fprintf(deps.Stderr, "unknown command %q\n\n", args[0])
		printUsage(deps.Stderr)
		return ExitUsage
	}

	if err != nil {
		fmt.Fprintln(deps.Stderr, err)
		return exitCodeFor(err)
	}
	return ExitSuccess
}
