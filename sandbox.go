package chartifact

import (
	"context"
	"fmt"
	"sync"
)

// LifecycleState is the sandbox lifecycle manager's current state.
type LifecycleState int

// Lifecycle states. Closing from any state tears down the handle and
// returns to StateUnloaded so a fresh open retries from scratch.
const (
	StateUnloaded LifecycleState = iota
	StateLoading
	StateLoaded
	StateInstantiating
	StateReady
	StateStale
)

func (s LifecycleState) String() string {
	switch s {
	case StateUnloaded:
		return "unloaded"
	case StateLoading:
		return "loading"
	case StateLoaded:
		return "loaded"
	case StateInstantiating:
		return "instantiating"
	case StateReady:
		return "ready"
	case StateStale:
		return "stale"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// SandboxCallbacks are registered on every sandbox instance.
//
// OnApprove is the trust gate: it receives the pending chart specs and
// returns the approved subset. A nil OnApprove approves everything.
// Runtimes whose callback bridge cannot answer the renderer
// synchronously decide approval with an in-runtime policy and invoke
// OnApprove as an observer of the outcome (see RodRuntime and
// WithApprovalPolicy).
type SandboxCallbacks struct {
	OnReady   func()
	OnError   func(msg string)
	OnApprove func(pending []string) []string
}

// SandboxHandle wraps one live renderer instance bound to one mount
// target. Owned exclusively by the lifecycle manager.
type SandboxHandle interface {
	// Send feeds an updated document into the live instance, preserving
	// its interactive state.
	Send(ctx context.Context, doc string) error
	// Healthy probes whether the instance's embedded render surface still
	// has a live execution context and a non-placeholder source. The host
	// can silently kill the isolation boundary without notifying anyone;
	// this detects the tombstoned-but-looks-alive condition.
	Healthy(ctx context.Context) bool
	// Destroy tears the instance down. Must tolerate a dead instance.
	Destroy() error
}

// SandboxRuntime is the injected capability for the externally loaded
// renderer runtime. Implementations must make Load idempotent: loading an
// already loaded runtime is a cheap no-op.
type SandboxRuntime interface {
	Load(ctx context.Context) error
	Loaded() bool
	NewInstance(ctx context.Context, mount, doc string, cb SandboxCallbacks) (SandboxHandle, error)
	Close() error
}

// LifecycleManager owns the renderer runtime and at most one sandbox
// instance. It decides, on every document update, between sending into
// the live instance and forcing recreation of a tombstoned one.
type LifecycleManager struct {
	mu      sync.Mutex
	runtime SandboxRuntime
	mount   string
	state   LifecycleState
	handle  SandboxHandle
	gen     uint64
	seq     uint64
	cb      SandboxCallbacks
}

// ManagerOption configures a LifecycleManager.
type ManagerOption func(*LifecycleManager)

// WithCallbacks sets the ready/error/approval callbacks registered on
// every sandbox instance the manager creates.
func WithCallbacks(cb SandboxCallbacks) ManagerOption {
	return func(m *LifecycleManager) { m.cb = cb }
}

// NewLifecycleManager creates a manager over an injected runtime and a
// mount target identifier.
func NewLifecycleManager(runtime SandboxRuntime, mount string, opts ...ManagerOption) *LifecycleManager {
	m := &LifecycleManager{
		runtime: runtime,
		mount:   mount,
		state:   StateUnloaded,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// State reports the current lifecycle state.
func (m *LifecycleManager) State() LifecycleState {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// Open loads the renderer runtime. A load failure resets to unloaded and
// is returned to the caller; there is no built-in retry, a fresh Open
// retries. Opening an already loaded manager is a no-op.
func (m *LifecycleManager) Open(ctx context.Context) error {
	m.mu.Lock()
	if m.state != StateUnloaded {
		m.mu.Unlock()
		return nil
	}
	m.state = StateLoading
	gen := m.gen
	m.mu.Unlock()

	err := m.runtime.Load(ctx)

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.gen != gen {
		// Closed while loading; the close already reset state.
		return ErrPreviewClosed
	}
	if err != nil {
		m.state = StateUnloaded
		return fmt.Errorf("%w: %v", ErrRuntimeLoad, err)
	}
	m.state = StateLoaded
	return nil
}

// Apply feeds a document into the sandbox, creating the instance on first
// use, updating a healthy live instance in place, and recreating a
// tombstoned one. Requires a prior successful Open and a non-empty
// document.
func (m *LifecycleManager) Apply(ctx context.Context, doc string) error {
	if doc == "" {
		return ErrEmptyDocument
	}

	m.mu.Lock()
	switch m.state {
	case StateUnloaded, StateLoading:
		m.mu.Unlock()
		return fmt.Errorf("%w: runtime not loaded", ErrRuntimeLoad)
	}
	if m.mount == "" {
		m.mu.Unlock()
		return ErrNoMountTarget
	}

	handle := m.handle
	gen := m.gen
	m.mu.Unlock()

	if handle != nil {
		if handle.Healthy(ctx) {
			if err := handle.Send(ctx, doc); err != nil {
				return fmt.Errorf("%w: %v", ErrSandboxSend, err)
			}
			return nil
		}
		// Tombstoned: the execution context is gone even though the
		// handle still looks alive. Force recreation instead of sending
		// updates into a dead instance.
		m.mu.Lock()
		if m.gen != gen {
			m.mu.Unlock()
			return ErrPreviewClosed
		}
		m.state = StateStale
		m.handle = nil
		m.mu.Unlock()
		_ = handle.Destroy()
	}

	return m.instantiate(ctx, doc, gen)
}

// instantiate constructs a fresh sandbox instance for doc. The ready
// callback moves the manager to Ready only if neither a close nor a
// same-generation recreation superseded this instance: a tombstoned
// instance can still fire its ready after being replaced, so the closure
// checks the instance sequence, not just the generation.
func (m *LifecycleManager) instantiate(ctx context.Context, doc string, gen uint64) error {
	m.mu.Lock()
	if m.gen != gen {
		m.mu.Unlock()
		return ErrPreviewClosed
	}
	m.state = StateInstantiating
	m.seq++
	seq := m.seq
	m.mu.Unlock()

	cb := SandboxCallbacks{
		OnReady: func() {
			m.mu.Lock()
			if m.gen == gen && m.seq == seq && m.state == StateInstantiating {
				m.state = StateReady
			}
			m.mu.Unlock()
			if m.cb.OnReady != nil {
				m.cb.OnReady()
			}
		},
		OnError: func(msg string) {
			// Reported, not acted on: teardown is left to the next
			// health check.
			if m.cb.OnError != nil {
				m.cb.OnError(msg)
			}
		},
		OnApprove: func(pending []string) []string {
			if m.cb.OnApprove != nil {
				return m.cb.OnApprove(pending)
			}
			// Default trust policy: approve all pending specs.
			return pending
		},
	}

	handle, err := m.runtime.NewInstance(ctx, m.mount, doc, cb)

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.gen != gen {
		if handle != nil {
			_ = handle.Destroy()
		}
		return ErrPreviewClosed
	}
	if err != nil {
		m.state = StateLoaded
		return fmt.Errorf("%w: %v", ErrSandboxCreate, err)
	}
	m.handle = handle
	return nil
}

// Close tears down any live instance and resets the manager. Runs from
// every state, including mid-load and mid-instantiation, and is
// idempotent: double-close is a no-op.
func (m *LifecycleManager) Close() error {
	m.mu.Lock()
	handle := m.handle
	m.handle = nil
	m.state = StateUnloaded
	m.gen++
	m.mu.Unlock()

	var err error
	if handle != nil {
		err = handle.Destroy()
	}
	if m.runtime != nil {
		if cerr := m.runtime.Close(); err == nil {
			err = cerr
		}
	}
	return err
}

// Live reports whether a live instance exists, for callers that only
// need liveness.
func (m *LifecycleManager) Live() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.handle != nil
}
