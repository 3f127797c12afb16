package chartifact

import "errors"

// Sentinel errors for library operations.
var (
	ErrEmptyDocument = errors.New("document content cannot be empty")

	// Emission errors (wrapped into per-chart diagnostics, never fatal to a batch).
	ErrRowPreprocess = errors.New("row preprocessing failed")
	ErrSpecAssembly  = errors.New("chart spec assembly failed")
	ErrSpecRewrite   = errors.New("chart spec data reference rewrite failed")
	ErrTableExport   = errors.New("table export failed")

	// Rendering parameter validation errors.
	ErrInvalidBinCount  = errors.New("invalid bin count")
	ErrInvalidChartSize = errors.New("invalid chart size")

	// Sandbox runtime errors.
	ErrRuntimeLoad     = errors.New("failed to load renderer runtime")
	ErrRuntimeSurface  = errors.New("renderer runtime missing expected surface")
	ErrSandboxCreate   = errors.New("failed to create sandbox instance")
	ErrSandboxSend     = errors.New("failed to send document to sandbox")
	ErrNoMountTarget   = errors.New("no mount target available")
	ErrPreviewClosed   = errors.New("preview is closed")
	ErrBrowserConnect  = errors.New("failed to connect to browser")
	ErrPageCreate      = errors.New("failed to create browser page")
	ErrPageLoad        = errors.New("failed to load page")
	ErrSnapshotCapture = errors.New("failed to capture snapshot")

	// HTML view errors.
	ErrHTMLViewRender = errors.New("HTML view rendering failed")
)
