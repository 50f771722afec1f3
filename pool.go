package mdmath

import (
	"context"
	"errors"
	"runtime"
	"sync"

	"github.com/alnah/go-mdmath/internal/logging"
)

// Pool sizing constants.
const (
	// MinPoolSize ensures at least one engine is available.
	MinPoolSize = 1

	// MaxPoolSize caps browser instances to limit memory (~200MB each).
	MaxPoolSize = 8

	// cpuDivisor leaves headroom for Chrome child processes.
	cpuDivisor = 2
)

// EnginePool renders with several MathJax engines, one browser each, so
// concurrent invocations do not queue behind a single page.
// Engines are created lazily on first acquire to avoid startup delay.
type EnginePool struct {
	size      int
	newEngine func() engine
	engines   []engine
	sem       chan engine
	mu        sync.Mutex
	created   int
	closed    bool
}

// NewEnginePool creates a pool with capacity for n engines.
// Engines are created when first needed, not at pool creation.
func NewEnginePool(n int, opts ...EngineOption) *EnginePool {
	cfg := engineConfig{timeout: defaultTimeout, logger: logging.NewNop()}
	for _, opt := range opts {
		opt(&cfg)
	}
	return newEnginePool(n, func() engine { return newMathJaxEngine(cfg) })
}

func newEnginePool(n int, factory func() engine) *EnginePool {
	if n < 1 {
		n = 1
	}

	return &EnginePool{
		size:      n,
		newEngine: factory,
		engines:   make([]engine, 0, n),
		sem:       make(chan engine, n),
	}
}

// Render converts equation on the next free engine.
func (p *EnginePool) Render(ctx context.Context, equation string, style RenderStyle) (string, error) {
	e, err := p.acquire(ctx)
	if err != nil {
		return "", err
	}
	defer p.release(e)

	return e.Render(ctx, equation, style)
}

// acquire gets an engine from the pool, creating one if needed.
// Blocks until an engine is released or ctx ends.
func (p *EnginePool) acquire(ctx context.Context) (engine, error) {
	// Try to get an idle engine (non-blocking)
	select {
	case e, ok := <-p.sem:
		if !ok {
			return nil, ErrEngineClosed
		}
		return e, nil
	default:
	}

	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil, ErrEngineClosed
	}
	if p.created < p.size {
		// Construction does not start the browser, so it is cheap under the lock.
		p.created++
		e := p.newEngine()
		p.engines = append(p.engines, e)
		p.mu.Unlock()
		return e, nil
	}
	p.mu.Unlock()

	// All engines created, wait for one to be released
	select {
	case e, ok := <-p.sem:
		if !ok {
			return nil, ErrEngineClosed
		}
		return e, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// release returns an engine to the pool. The channel never fills, since it
// holds at most the engines created, so sending under the lock cannot block.
func (p *EnginePool) release(e engine) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return
	}
	p.sem <- e
}

// Close releases all browser resources.
// Returns an aggregated error if multiple engines fail to close.
func (p *EnginePool) Close() error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil
	}
	p.closed = true
	// Idle engines must not be handed out after Close.
drain:
	for {
		select {
		case <-p.sem:
		default:
			break drain
		}
	}
	close(p.sem)
	engines := p.engines
	p.mu.Unlock()

	var errs []error
	for _, e := range engines {
		if err := e.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Size returns the pool capacity.
func (p *EnginePool) Size() int {
	return p.size
}

// ResolvePoolSize determines the optimal pool size.
// Priority: explicit workers > GOMAXPROCS-based calculation.
func ResolvePoolSize(workers int) int {
	if workers > 0 {
		return workers
	}

	// GOMAXPROCS is adjusted by automaxprocs for containers
	n := runtime.GOMAXPROCS(0) / cpuDivisor

	if n < MinPoolSize {
		return MinPoolSize
	}
	if n > MaxPoolSize {
		return MaxPoolSize
	}
	return n
}
