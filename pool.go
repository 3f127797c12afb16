package chartifact

import (
	"errors"
	"runtime"
	"sync"
)

// Pool sizing constants.
const (
	// MinPoolSize ensures at least one worker is available.
	MinPoolSize = 1

	// MaxPoolSize caps browser instances to limit memory (~200MB each).
	MaxPoolSize = 8

	// cpuDivisor leaves headroom for Chromium child processes.
	cpuDivisor = 2
)

// RendererPool manages SnapshotRenderer instances for parallel batch
// rendering. Each renderer owns its own browser, enabling true
// parallelism. Renderers are created lazily on first acquire.
type RendererPool struct {
	size      int
	factory   func() *SnapshotRenderer
	renderers []*SnapshotRenderer
	sem       chan *SnapshotRenderer
	mu        sync.Mutex
	created   int
	closed    bool
}

// NewRendererPool creates a pool with capacity for n renderers built by
// factory.
func NewRendererPool(n int, factory func() *SnapshotRenderer) *RendererPool {
	if n < 1 {
		n = 1
	}
	return &RendererPool{
		size:      n,
		factory:   factory,
		renderers: make([]*SnapshotRenderer, 0, n),
		sem:       make(chan *SnapshotRenderer, n),
	}
}

// Acquire gets a renderer from the pool, creating one if capacity allows.
// Blocks if all renderers are in use.
func (p *RendererPool) Acquire() *SnapshotRenderer {
	select {
	case r := <-p.sem:
		return r
	default:
	}

	p.mu.Lock()
	if p.created < p.size {
		p.created++
		p.mu.Unlock()

		// Create outside the lock: browser launch is slow.
		r := p.factory()

		p.mu.Lock()
		p.renderers = append(p.renderers, r)
		p.mu.Unlock()

		return r
	}
	p.mu.Unlock()

	return <-p.sem
}

// Release returns a renderer to the pool. The send happens under the
// mutex so a concurrent Close cannot close the channel between the
// closed check and the send. It never blocks: the channel has capacity
// for every renderer the pool created.
func (p *RendererPool) Release(r *SnapshotRenderer) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return
	}
	p.sem <- r
}

// Close tears down every renderer, aggregating failures.
func (p *RendererPool) Close() error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil
	}
	p.closed = true
	close(p.sem)
	renderers := p.renderers
	p.mu.Unlock()

	var errs []error
	for _, r := range renderers {
		if err := r.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Size returns the pool capacity.
func (p *RendererPool) Size() int {
	return p.size
}

// ResolvePoolSize determines the pool size: an explicit worker count wins,
// otherwise half of GOMAXPROCS (adjusted by automaxprocs in containers),
// clamped to the pool bounds.
func ResolvePoolSize(workers int) int {
	if workers > 0 {
		return workers
	}

	n := runtime.GOMAXPROCS(0) / cpuDivisor
	if n < MinPoolSize {
		return MinPoolSize
	}
	if n > MaxPoolSize {
		return MaxPoolSize
	}
	return n
}
