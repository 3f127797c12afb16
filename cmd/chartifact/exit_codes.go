package main

import (
	"errors"
	"os"

	chartifact "github.com/chartifact-labs/go-chartifact"
	"github.com/chartifact-labs/go-chartifact/internal/config"
	"github.com/chartifact-labs/go-chartifact/internal/store"
)

// Exit codes for the chartifact CLI.
// Unix conventions: 0=success, 1=general, 2=usage, custom codes < 126.
const (
	ExitSuccess = 0 // Successful run
	ExitGeneral = 1 // General/unexpected error
	ExitUsage   = 2 // Invalid flags, config, or validation
	ExitIO      = 3 // File not found, permission denied
	ExitBrowser = 4 // Browser/renderer runtime errors
)

// exitCodeFor maps an error to an exit code. Uses errors.Is, so callers
// must wrap with fmt.Errorf("%w", err).
func exitCodeFor(err error) int {
	if err == nil {
		return ExitSuccess
	}

	// Browser/runtime errors (exit 4)
	if errors.Is(err, chartifact.ErrBrowserConnect) ||
		errors.Is(err, chartifact.ErrPageCreate) ||
		errors.Is(err, chartifact.ErrPageLoad) ||
		errors.Is(err, chartifact.ErrRuntimeLoad) ||
		errors.Is(err, chartifact.ErrRuntimeSurface) ||
		errors.Is(err, chartifact.ErrSandboxCreate) ||
		errors.Is(err, chartifact.ErrSandboxSend) ||
		errors.Is(err, chartifact.ErrSnapshotCapture) {
		return ExitBrowser
	}

	// I/O errors (exit 3)
	if errors.Is(err, os.ErrNotExist) ||
		errors.Is(err, os.ErrPermission) ||
		errors.Is(err, ErrReadReport) ||
		errors.Is(err, ErrWriteOutput) ||
		errors.Is(err, store.ErrWorkspaceNotFound) {
		return ExitIO
	}

	// Usage/config/validation errors (exit 2)
	if errors.Is(err, ErrNoInput) ||
		errors.Is(err, ErrInvalidExtension) ||
		errors.Is(err, config.ErrConfigNotFound) ||
		errors.Is(err, config.ErrConfigParse) ||
		errors.Is(err, config.ErrMissingRuntime) ||
		errors.Is(err, store.ErrWorkspaceParse) ||
		errors.Is(err, store.ErrDuplicateID) ||
		errors.Is(err, chartifact.ErrEmptyDocument) ||
		errors.Is(err, chartifact.ErrInvalidBinCount) ||
		errors.Is(err, chartifact.ErrInvalidChartSize) {
		return ExitUsage
	}

	return ExitGeneral
}
