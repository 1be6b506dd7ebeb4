package proposal

import (
	"context"
	"runtime"
	"sync/atomic"

	"golang.org/x/sync/semaphore"
)

// Pool sizing constants.
const (
	// MinPoolSize ensures at least one render can run.
	MinPoolSize = 1

	// MaxPoolSize caps concurrent browser processes (~200MB each).
	MaxPoolSize = 8

	// cpuDivisor leaves headroom for Chrome child processes.
	cpuDivisor = 2
)

// RenderPool bounds how many browser processes run at once. Slots carry no
// state: every render still launches and tears down its own browser.
type RenderPool struct {
	size   int
	sem    *semaphore.Weighted
	inUse  atomic.Int64
	closed atomic.Bool
}

// NewRenderPool creates a pool allowing n concurrent renders (minimum 1).
func NewRenderPool(n int) *RenderPool {
	if n < MinPoolSize {
		n = MinPoolSize
	}
	return &RenderPool{
		size: n,
		sem:  semaphore.NewWeighted(int64(n)),
	}
}

// Acquire blocks until a slot is free or ctx is done.
func (p *RenderPool) Acquire(ctx context.Context) error {
	if p.closed.Load() {
		return ErrPoolClosed
	}
	if err := p.sem.Acquire(ctx, 1); err != nil {
		return err
	}
	if p.closed.Load() {
		p.sem.Release(1)
		return ErrPoolClosed
	}
	p.inUse.Add(1)
	return nil
}

// Release frees a slot taken by Acquire.
func (p *RenderPool) Release() {
	p.inUse.Add(-1)
	p.sem.Release(1)
}

// InUse reports how many slots are currently held.
func (p *RenderPool) InUse() int {
	return int(p.inUse.Load())
}

// Size returns the pool capacity.
func (p *RenderPool) Size() int {
	return p.size
}

// Close makes later Acquire calls fail. Renders already holding a slot finish
// normally.
func (p *RenderPool) Close() error {
	p.closed.Store(true)
	return nil
}

// ResolvePoolSize determines the pool size.
// Priority: explicit workers > GOMAXPROCS-based calculation.
func ResolvePoolSize(workers int) int {
	if workers > 0 {
		return workers
	}

	// GOMAXPROCS reflects container CPU quota once automaxprocs has run.
	n := runtime.GOMAXPROCS(0) / cpuDivisor
	return min(max(n, MinPoolSize), MaxPoolSize)
}
