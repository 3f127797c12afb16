package chartifact

import (
	"context"
	"fmt"
	"sync"
)

// LoadFailureText is shown in place of the document when the renderer
// runtime cannot be loaded. The user always sees something: either the
// converted document or this explicit error string, never an indefinite
// pending state.
const LoadFailureText = "chartifact renderer failed to load; close and reopen the preview to retry"

// Preview drives the pipeline end to end: document-open and
// document-change events trigger conversion, and the result is fed to the
// lifecycle manager. It owns the staleness guard; a conversion started
// under an older open never overwrites newer output.
type Preview struct {
	converter *Converter
	manager   *LifecycleManager

	mu   sync.Mutex
	open bool
	gen  uint64
}

// NewPreview wires a converter to a lifecycle manager.
func NewPreview(converter *Converter, manager *LifecycleManager) *Preview {
	return &Preview{converter: converter, manager: manager}
}

// Open handles the document-open event: load the runtime, convert the
// document once for this open transition, and hand the result to the
// sandbox. A runtime load failure is fatal to this attempt and returned;
// a later Open retries from scratch.
func (p *Preview) Open(ctx context.Context, doc string) ([]Diagnostic, error) {
	if doc == "" {
		return nil, ErrEmptyDocument
	}

	p.mu.Lock()
	p.open = true
	p.gen++
	gen := p.gen
	p.mu.Unlock()

	if err := p.manager.Open(ctx); err != nil {
		p.mu.Lock()
		if p.gen == gen {
			p.open = false
		}
		p.mu.Unlock()
		return nil, err
	}

	return p.apply(ctx, doc, gen)
}

// Update handles the document-change event while the preview is open. The
// healthy-instance path sends into the live sandbox without recreating
// it, preserving interactive state.
func (p *Preview) Update(ctx context.Context, doc string) ([]Diagnostic, error) {
	if doc == "" {
		return nil, ErrEmptyDocument
	}

	p.mu.Lock()
	if !p.open {
		p.mu.Unlock()
		return nil, ErrPreviewClosed
	}
	gen := p.gen
	p.mu.Unlock()

	return p.apply(ctx, doc, gen)
}

// apply converts doc and feeds the result to the sandbox, unless a newer
// open or a close superseded this request while conversion was running.
func (p *Preview) apply(ctx context.Context, doc string, gen uint64) ([]Diagnostic, error) {
	converted, diags, err := p.converter.Convert(ctx, doc)
	if err != nil {
		return diags, err
	}

	if p.stale(gen) {
		return diags, ErrPreviewClosed
	}

	if err := p.manager.Apply(ctx, converted); err != nil {
		return diags, fmt.Errorf("applying document: %w", err)
	}
	return diags, nil
}

// Close handles the close event: deterministic teardown of any live
// sandbox regardless of lifecycle state. Idempotent.
func (p *Preview) Close() error {
	p.mu.Lock()
	p.open = false
	p.gen++
	p.mu.Unlock()

	return p.manager.Close()
}

// State reports the underlying lifecycle state.
func (p *Preview) State() LifecycleState {
	return p.manager.State()
}

func (p *Preview) stale(gen uint64) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return !p.open || p.gen != gen
}
