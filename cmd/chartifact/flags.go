package main

import (
	flag "github.com/spf13/pflag"
)

// commonFlags are shared across commands.
type commonFlags struct {
	config    string
	workspace string
	verbose   bool
}

// renderFlags override the configured rendering parameters.
type renderFlags struct {
	maxBins     int
	width       int
	height      int
	interactive bool
	forExport   bool

	// interactiveSet records whether --interactive was passed; its default
	// is true, so applying it unconditionally would clobber a config file
	// that disables interactivity.
	interactiveSet bool
}

// noteChanged records which explicitly passed flags may override config
// values. Call after Parse.
func (f *renderFlags) noteChanged(fs *flag.FlagSet) {
	f.interactiveSet = fs.Changed("interactive")
}

// runtimeFlags locate the renderer runtime modules.
type runtimeFlags struct {
	sandboxModule string
	hostModule    string
}

// addCommonFlags registers flags every command accepts.
func addCommonFlags(fs *flag.FlagSet, f *commonFlags) {
	fs.StringVarP(&f.config, "config", "c", "", "config file path")
	fs.StringVar(&f.workspace, "workspace", "", "chart/table workspace file")
	fs.BoolVarP(&f.verbose, "verbose", "v", false, "verbose progress output")
}

// addRenderFlags registers rendering parameter overrides.
func addRenderFlags(fs *flag.FlagSet, f *renderFlags) {
	fs.IntVar(&f.maxBins, "max-bins", 0, "binning granularity (0 = config default)")
	fs.IntVar(&f.width, "width", 0, "chart width in pixels (0 = config default)")
	fs.IntVar(&f.height, "height", 0, "chart height in pixels (0 = config default)")
	fs.BoolVar(&f.interactive, "interactive", true, "attach interactive params to specs")
	fs.BoolVar(&f.forExport, "for-export", false, "export-oriented number/date formatting")
}

// addRuntimeFlags registers renderer runtime module locations.
func addRuntimeFlags(fs *flag.FlagSet, f *runtimeFlags) {
	fs.StringVar(&f.sandboxModule, "sandbox-module", "", "sandbox runtime module (URL or path)")
	fs.StringVar(&f.hostModule, "host-module", "", "host wrapper module (URL or path)")
}

// newFlagSet creates a pflag set; usage text lives in help.go.
func newFlagSet(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SortFlags = false
	return fs
}
