package main

import (
	"fmt"
	"io"
)

// printUsage prints the main usage message.
func printUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: chartifact <command> [flags] [args]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  convert    Transform a report into a chartifact document")
	fmt.Fprintln(w, "  html       Export a static, highlighted HTML view")
	fmt.Fprintln(w, "  preview    Open a live sandbox preview")
	fmt.Fprintln(w, "  snapshot   Batch-render reports to PNG")
	fmt.Fprintln(w, "  version    Show version information")
	fmt.Fprintln(w, "  help       Show help for a command")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Run 'chartifact help <command>' for details on a specific command.")
}

func printCommonUsage(w io.Writer) {
	fmt.Fprintln(w, "Common flags:")
	fmt.Fprintln(w, "  -c, --config <path>       Config file path")
	fmt.Fprintln(w, "      --workspace <path>    Chart/table workspace file")
	fmt.Fprintln(w, "  -v, --verbose             Verbose progress output")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Rendering:")
	fmt.Fprintln(w, "      --max-bins <n>        Binning granularity")
	fmt.Fprintln(w, "      --width <px>          Chart width")
	fmt.Fprintln(w, "      --height <px>         Chart height")
	fmt.Fprintln(w, "      --interactive         Interactive specs (default true)")
	fmt.Fprintln(w, "      --for-export          Export-oriented formatting")
}

// printConvertUsage prints usage for the convert command.
func printConvertUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: chartifact convert <report.md> [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Transform a report into a chartifact document.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "  -o, --output <path>       Output file (default stdout)")
	fmt.Fprintln(w)
	printCommonUsage(w)
}

// printHTMLUsage prints usage for the html command.
func printHTMLUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: chartifact html <report.md> [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Convert a report and export a static HTML view with highlighted")
	fmt.Fprintln(w, "spec and data blocks. Charts are not interpreted.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "  -o, --output <path>       Output file (default <input>.html)")
	fmt.Fprintln(w)
	printCommonUsage(w)
}

// printPreviewUsage prints usage for the preview command.
func printPreviewUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: chartifact preview <report.md> [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Open a live sandbox preview of the report.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "  -w, --watch               Follow file changes (default true)")
	fmt.Fprintln(w, "      --sandbox-module <s>  Sandbox runtime module (URL or path)")
	fmt.Fprintln(w, "      --host-module <s>     Host wrapper module (URL or path)")
	fmt.Fprintln(w)
	printCommonUsage(w)
}

// printSnapshotUsage prints usage for the snapshot command.
func printSnapshotUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: chartifact snapshot <file|dir>... [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Batch-render reports to PNG images.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "  -d, --output-dir <path>   Output directory (default alongside input)")
	fmt.Fprintln(w, "  -w, --workers <n>         Parallel workers (0 = auto)")
	fmt.Fprintln(w, "      --sandbox-module <s>  Sandbox runtime module (URL or path)")
	fmt.Fprintln(w, "      --host-module <s>     Host wrapper module (URL or path)")
	fmt.Fprintln(w)
	printCommonUsage(w)
}

// runHelp shows help for a specific command.
func runHelp(args []string, deps *Dependencies) {
	if len(args) == 0 {
		printUsage(deps.Stdout)
		return
	}
	switch args[0] {
	case "convert":
		printConvertUsage(deps.Stdout)
	case "html":
		printHTMLUsage(deps.Stdout)
	case "preview":
		printPreviewUsage(deps.Stdout)
	case "snapshot":
		printSnapshotUsage(deps.Stdout)
	default:
		printUsage(deps.Stdout)
	}
}
