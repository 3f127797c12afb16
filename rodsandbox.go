package chartifact

import (
	"context"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
	"github.com/ysmood/gson"

	"github.com/chartifact-labs/go-chartifact/internal/fileutil"
)

// DefaultMountID is the element the sandbox instance binds to inside the
// host page.
const DefaultMountID = "chartifact-preview"

// hostPage is the minimal document the runtime modules are injected into.
const hostPage = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>chartifact preview</title>
</head>
<body>
<div id="` + DefaultMountID + `"></div>
</body>
</html>`

// defaultApprovalPolicy approves every pending spec.
const defaultApprovalPolicy = `(pending) => pending`

// Runtime module surface checked after loading. The host wrapper is not
// used by this core but must be present for the runtime to be considered
// loaded.
const runtimeSurfaceProbe = `() => {
	const ns = window.Chartifact;
	return !!(ns && ns.sandbox && ns.sandbox.Sandbox && ns.host);
}`

// RodRuntime hosts the externally built chartifact renderer inside a
// headless Chromium page via go-rod. The page is the isolated execution
// boundary; the two renderer runtime modules are injected into it at load
// time. Rod downloads Chromium on first run if none is found.
type RodRuntime struct {
	mu       sync.Mutex
	scripts  [2]string // sandbox module, host wrapper module (URL or local path)
	timeout  time.Duration
	approval string // page-side approval policy, JS function source
	browser  *rod.Browser
	page     *rod.Page
	cleanup  func()
	loaded   bool
	exposed  bool

	// cb belongs to the current instance; exposed page functions are
	// registered once and dispatch through it so recreation rebinds them.
	cb SandboxCallbacks
}

// RodOption configures a RodRuntime.
type RodOption func(*RodRuntime)

// WithApprovalPolicy installs the approval predicate deciding which
// pending chart specs the renderer may draw. The source must evaluate to
// a JavaScript function from a spec list to the approved subset. The
// policy runs inside the page: the renderer demands its answer
// synchronously and the exposed Go bridge cannot provide one.
func WithApprovalPolicy(js string) RodOption {
	return func(r *RodRuntime) { r.approval = js }
}

// NewRodRuntime creates a runtime that loads the two renderer modules,
// sandbox first, host wrapper second. Each may be an http(s) URL or a
// local bundle path.
func NewRodRuntime(sandboxModule, hostModule string, timeout time.Duration, opts ...RodOption) *RodRuntime {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	r := &RodRuntime{
		scripts:  [2]string{sandboxModule, hostModule},
		timeout:  timeout,
		approval: defaultApprovalPolicy,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Loaded reports whether both runtime modules are available.
func (r *RodRuntime) Loaded() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.loaded
}

// Load launches the browser, opens the host page, and injects the runtime
// modules sequentially. Loading an already loaded runtime is a no-op; a
// failure leaves the runtime unloaded so a fresh open can retry.
func (r *RodRuntime) Load(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.loaded {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	if err := r.ensureBrowser(); err != nil {
		return err
	}

	path, cleanup, err := fileutil.WriteTempFile(hostPage, "html")
	if err != nil {
		r.teardownLocked()
		return fmt.Errorf("%w: %v", ErrPageCreate, err)
	}
	r.cleanup = cleanup

	page, err := r.browser.Page(proto.TargetCreateTarget{URL: "file://" + path})
	if err != nil {
		r.teardownLocked()
		return fmt.Errorf("%w: %v", ErrPageCreate, err)
	}
	r.page = page

	if err := page.Timeout(r.deadline(ctx)).WaitLoad(); err != nil {
		r.teardownLocked()
		return fmt.Errorf("%w: %v", ErrPageLoad, err)
	}

	for _, script := range r.scripts {
		if err := r.injectScript(script); err != nil {
			r.teardownLocked()
			return fmt.Errorf("%w: %q: %v", ErrRuntimeLoad, script, err)
		}
	}

	res, err := page.Timeout(r.deadline(ctx)).Eval(runtimeSurfaceProbe)
	if err != nil || !res.Value.Bool() {
		r.teardownLocked()
		if err == nil {
			err = fmt.Errorf("modules loaded but namespace is incomplete")
		}
		return fmt.Errorf("%w: %v", ErrRuntimeSurface, err)
	}

	r.loaded = true
	return nil
}

// NewInstance constructs one sandbox instance bound to the mount element
// and the given document, wiring the ready, error, and approval callbacks
// through to Go.
func (r *RodRuntime) NewInstance(ctx context.Context, mount, doc string, cb SandboxCallbacks) (SandboxHandle, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.loaded || r.page == nil {
		return nil, fmt.Errorf("%w: runtime not loaded", ErrRuntimeLoad)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.cb = cb
	if !r.exposed {
		if err := r.exposeCallbacks(); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrSandboxCreate, err)
		}
		r.exposed = true
	}

	_, err := r.page.Timeout(r.deadline(ctx)).Eval(instanceScript(r.approval), mount, doc)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSandboxCreate, err)
	}

	return &rodHandle{page: r.page, mount: mount, timeout: r.timeout}, nil
}

// Close releases the page and browser. Idempotent.
func (r *RodRuntime) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.teardownLocked()
	return nil
}

// WaitStable blocks until the page DOM has stayed unchanged for the given
// interval, so snapshots are not taken mid-render.
func (r *RodRuntime) WaitStable(ctx context.Context, interval time.Duration) error {
	r.mu.Lock()
	page := r.page
	r.mu.Unlock()
	if page == nil {
		return fmt.Errorf("%w: no live page", ErrSnapshotCapture)
	}
	if err := page.Timeout(r.deadline(ctx)).WaitStable(interval); err != nil {
		return fmt.Errorf("%w: %v", ErrSnapshotCapture, err)
	}
	return nil
}

// Snapshot captures the current preview as a PNG.
func (r *RodRuntime) Snapshot(ctx context.Context) ([]byte, error) {
	r.mu.Lock()
	page := r.page
	r.mu.Unlock()
	if page == nil {
		return nil, fmt.Errorf("%w: no live page", ErrSnapshotCapture)
	}
	data, err := page.Timeout(r.deadline(ctx)).Screenshot(true, &proto.PageCaptureScreenshot{
		Format: proto.PageCaptureScreenshotFormatPng,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSnapshotCapture, err)
	}
	return data, nil
}

// ensureBrowser lazily launches and connects to the browser.
func (r *RodRuntime) ensureBrowser() error {
	if r.browser != nil {
		return nil
	}

	l := launcher.New()

	// Use a pre-installed browser if specified (containerized environments).
	if bin := os.Getenv("ROD_BROWSER_BIN"); bin != "" {
		l = l.Bin(bin)
	}
	if os.Getenv("CI") == "true" || os.Getenv("ROD_BROWSER_BIN") != "" {
		l = l.NoSandbox(true)
	}

	u, err := l.Launch()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrBrowserConnect, err)
	}

	browser := rod.New().ControlURL(u)
	if err := browser.Connect(); err != nil {
		return fmt.Errorf("%w: %v", ErrBrowserConnect, err)
	}
	r.browser = browser
	return nil
}

// injectScript adds one runtime module to the host page, by URL for
// http(s) sources or inline for local bundle files.
func (r *RodRuntime) injectScript(script string) error {
	if strings.HasPrefix(script, "http://") || strings.HasPrefix(script, "https://") {
		return r.page.AddScriptTag(script, "")
	}
	if !fileutil.FileExists(script) {
		return fmt.Errorf("module bundle is not a file: %s", script)
	}
	content, err := os.ReadFile(script) // #nosec G304 -- module path comes from operator config
	if err != nil {
		return err
	}
	return r.page.AddScriptTag("", string(content))
}

// instanceScript builds the sandbox construction snippet around the
// installed approval policy. The renderer calls onApproveSpecs
// synchronously; functions exposed from Go are async CDP bindings that
// return Promises, so the approval decision must be made in the page and
// the Go bridge only observes the outcome.
func instanceScript(policy string) string {
	return fmt.Sprintf(`(mountID, doc) => {
		const el = document.getElementById(mountID);
		if (!el) throw new Error('mount element not found: ' + mountID);
		const approve = (%s);
		window.__chartifactInstance = new Chartifact.sandbox.Sandbox(el, doc, {
			onReady: () => window.chartifactOnReady(),
			onError: (e) => window.chartifactOnError(String(e)),
			onApproveSpecs: (pending) => {
				const approved = approve(pending);
				window.chartifactOnApprove(approved);
				return approved;
			},
		});
	}`, policy)
}

// exposeCallbacks bridges the instance callbacks into the page.
func (r *RodRuntime) exposeCallbacks() error {
	if _, err := r.page.Expose("chartifactOnReady", func(gson.JSON) (any, error) {
		if cb := r.currentCallbacks(); cb.OnReady != nil {
			cb.OnReady()
		}
		return nil, nil
	}); err != nil {
		return err
	}
	if _, err := r.page.Expose("chartifactOnError", func(g gson.JSON) (any, error) {
		if cb := r.currentCallbacks(); cb.OnError != nil {
			cb.OnError(g.Str())
		}
		return nil, nil
	}); err != nil {
		return err
	}
	// By the time this fires the renderer already has its synchronous
	// answer from the page-side policy; the Go callback observes the
	// approved set and its return value is never seen by the page.
	_, err := r.page.Expose("chartifactOnApprove", func(g gson.JSON) (any, error) {
		approved := make([]string, 0, len(g.Arr()))
		for _, v := range g.Arr() {
			approved = append(approved, v.Str())
		}
		if cb := r.currentCallbacks(); cb.OnApprove != nil {
			cb.OnApprove(approved)
		}
		return nil, nil
	})
	return err
}

func (r *RodRuntime) currentCallbacks() SandboxCallbacks {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.cb
}

// teardownLocked closes page and browser and forgets them. Callers hold mu.
func (r *RodRuntime) teardownLocked() {
	if r.page != nil {
		_ = r.page.Close()
		r.page = nil
	}
	if r.browser != nil {
		_ = r.browser.Close()
		r.browser = nil
	}
	if r.cleanup != nil {
		r.cleanup()
		r.cleanup = nil
	}
	r.loaded = false
	r.exposed = false
}

// deadline derives the per-operation timeout, honoring a sooner context
// deadline.
func (r *RodRuntime) deadline(ctx context.Context) time.Duration {
	timeout := r.timeout
	if d, ok := ctx.Deadline(); ok {
		if remaining := time.Until(d); remaining < timeout {
			timeout = remaining
		}
	}
	return timeout
}

// rodHandle is the live sandbox instance inside the host page.
type rodHandle struct {
	page    *rod.Page
	mount   string
	timeout time.Duration

	mu        sync.Mutex
	destroyed bool
}

// Send feeds an updated document into the live instance.
func (h *rodHandle) Send(ctx context.Context, doc string) error {
	h.mu.Lock()
	if h.destroyed {
		h.mu.Unlock()
		return fmt.Errorf("%w: instance destroyed", ErrSandboxSend)
	}
	h.mu.Unlock()

	_, err := h.page.Timeout(h.opTimeout(ctx)).Eval(
		`(doc) => window.__chartifactInstance.send(doc)`, doc)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrSandboxSend, err)
	}
	return nil
}

// Healthy probes the sandbox's embedded render surface: it must have a
// live execution context and a non-placeholder source. Either missing
// means the host silently killed the frame and the instance is
// tombstoned.
func (h *rodHandle) Healthy(ctx context.Context) bool {
	h.mu.Lock()
	if h.destroyed {
		h.mu.Unlock()
		return false
	}
	h.mu.Unlock()

	res, err := h.page.Timeout(h.opTimeout(ctx)).Eval(`(mountID) => {
		if (!window.__chartifactInstance) return false;
		const el = document.getElementById(mountID);
		const frame = el && el.querySelector('iframe');
		if (!frame || !frame.contentWindow) return false;
		const src = frame.getAttribute('src') || frame.getAttribute('srcdoc') || '';
		return src !== '' && src !== 'about:blank';
	}`, h.mount)
	if err != nil {
		return false
	}
	return res.Value.Bool()
}

// Destroy tears the instance down. Safe on a dead page and idempotent.
func (h *rodHandle) Destroy() error {
	h.mu.Lock()
	if h.destroyed {
		h.mu.Unlock()
		return nil
	}
	h.destroyed = true
	h.mu.Unlock()

	// Best effort: the page may already be gone.
	_, _ = h.page.Timeout(h.timeout).Eval(`() => {
		const inst = window.__chartifactInstance;
		if (inst && typeof inst.destroy === 'function') inst.destroy();
		window.__chartifactInstance = null;
	}`)
	return nil
}

func (h *rodHandle) opTimeout(ctx context.Context) time.Duration {
	timeout := h.timeout
	if d, ok := ctx.Deadline(); ok {
		if remaining := time.Until(d); remaining < timeout {
			timeout = remaining
		}
	}
	return timeout
}
