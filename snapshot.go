package chartifact

import (
	"context"
	"time"
)

// domSettleInterval is how long the preview DOM must stay unchanged
// before a snapshot is taken.
const domSettleInterval = 300 * time.Millisecond

// SnapshotRenderer renders chartifact documents to PNG images through its
// own sandbox runtime. The first document opens the preview; subsequent
// documents are sent into the live instance.
type SnapshotRenderer struct {
	preview *Preview
	runtime *RodRuntime
	ready   chan struct{}
	opened  bool
}

// NewSnapshotRenderer creates a renderer over its own runtime. The
// converter may be shared between renderers; it is read-only after
// construction.
func NewSnapshotRenderer(converter *Converter, sandboxModule, hostModule string, timeout time.Duration) *SnapshotRenderer {
	runtime := NewRodRuntime(sandboxModule, hostModule, timeout)
	ready := make(chan struct{}, 1)
	manager := NewLifecycleManager(runtime, DefaultMountID, WithCallbacks(SandboxCallbacks{
		OnReady: func() {
			select {
			case ready <- struct{}{}:
			default:
			}
		},
	}))
	return &SnapshotRenderer{
		preview: NewPreview(converter, manager),
		runtime: runtime,
		ready:   ready,
	}
}

// Render converts doc, feeds it to the sandbox, waits for the DOM to
// settle, and captures a PNG.
func (r *SnapshotRenderer) Render(ctx context.Context, doc string) ([]byte, []Diagnostic, error) {
	var (
		diags []Diagnostic
		err   error
	)
	if !r.opened {
		diags, err = r.preview.Open(ctx, doc)
		if err != nil {
			return nil, diags, err
		}
		r.opened = true
		select {
		case <-r.ready:
		case <-ctx.Done():
			return nil, diags, ctx.Err()
		}
	} else {
		diags, err = r.preview.Update(ctx, doc)
		if err != nil {
			return nil, diags, err
		}
	}

	if err := r.runtime.WaitStable(ctx, domSettleInterval); err != nil {
		return nil, diags, err
	}

	png, err := r.runtime.Snapshot(ctx)
	return png, diags, err
}

// Close tears the preview down.
func (r *SnapshotRenderer) Close() error {
	r.opened = false
	return r.preview.Close()
}
