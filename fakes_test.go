package proposal

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
)

// fakePageConfig scripts how every page of a fakeEngine behaves.
type fakePageConfig struct {
	interceptErr  error
	setContentErr error
	parsedErr     error
	blockParsed   bool
	blockFonts    bool
	fontsErr      error
	pdf           []byte
	pdfErr        error
	blockPDF      bool
	pdfGate       chan struct{} // when set, PDF waits for it
	requests      []string      // URLs the page "fetches" during SetContent
}

// fakeEngine records every process it launches. It never starts goroutines,
// so leak checks only see what the pipeline itself started.
type fakeEngine struct {
	launchErr error
	openErr   error
	page      fakePageConfig

	launches atomic.Int64
	active   atomic.Int64
	maxSeen  atomic.Int64

	mu    sync.Mutex
	procs []*fakeProcess
}

func newFakeEngine() *fakeEngine {
	return &fakeEngine{page: fakePageConfig{pdf: []byte("%PDF-1.7\nfake")}}
}

func (e *fakeEngine) Launch(ctx context.Context, bin string) (browserProcess, error) {
	e.launches.Add(1)
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if e.launchErr != nil {
		return nil, e.launchErr
	}

	n := e.active.Add(1)
	for {
		m := e.maxSeen.Load()
		if n <= m || e.maxSeen.CompareAndSwap(m, n) {
			break
		}
	}

	p := &fakeProcess{engine: e, bin: bin, openErr: e.openErr, cfg: e.page}
	e.mu.Lock()
	e.procs = append(e.procs, p)
	e.mu.Unlock()
	return p, nil
}

func (e *fakeEngine) processes() []*fakeProcess {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]*fakeProcess(nil), e.procs...)
}

type fakeProcess struct {
	engine  *fakeEngine
	bin     string
	openErr error
	cfg     fakePageConfig

	page        *fakePage
	closed      atomic.Int64
	closeCtxErr error
}

func (p *fakeProcess) OpenPage(ctx context.Context) (page, error) {
	if p.openErr != nil {
		return nil, p.openErr
	}
	p.page = &fakePage{cfg: p.cfg}
	return p.page, nil
}

func (p *fakeProcess) Close(ctx context.Context) error {
	if p.closed.Add(1) == 1 {
		p.closeCtxErr = ctx.Err()
		p.engine.active.Add(-1)
	}
	return nil
}

type fakePage struct {
	cfg fakePageConfig

	decide    func(string) Decision
	decisions []Decision
	stopped   atomic.Int64
	closed    atomic.Int64
	content   string
	printed   printOptions
}

func (p *fakePage) Intercept(decide func(string) Decision) (func() error, error) {
	if p.cfg.interceptErr != nil {
		return nil, p.cfg.interceptErr
	}
	p.decide = decide
	return func() error {
		p.stopped.Add(1)
		return nil
	}, nil
}

func (p *fakePage) SetContent(ctx context.Context, markup string) error {
	if p.cfg.setContentErr != nil {
		return p.cfg.setContentErr
	}
	p.content = markup
	for _, u := range p.cfg.requests {
		p.decisions = append(p.decisions, p.decide(u))
	}
	return nil
}

func (p *fakePage) WaitParsed(ctx context.Context) error {
	if p.cfg.blockParsed {
		<-ctx.Done()
		return ctx.Err()
	}
	return p.cfg.parsedErr
}

func (p *fakePage) WaitFonts(ctx context.Context) error {
	if p.cfg.blockFonts {
		<-ctx.Done()
		return ctx.Err()
	}
	return p.cfg.fontsErr
}

func (p *fakePage) PDF(ctx context.Context, opts printOptions) ([]byte, error) {
	p.printed = opts
	if p.cfg.blockPDF {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	if p.cfg.pdfGate != nil {
		select {
		case <-p.cfg.pdfGate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if p.cfg.pdfErr != nil {
		return nil, p.cfg.pdfErr
	}
	return p.cfg.pdf, nil
}

func (p *fakePage) Close(ctx context.Context) error {
	p.closed.Add(1)
	return nil
}

// staticResolver resolves to a fixed path or error.
type staticResolver struct {
	path  string
	err   error
	calls atomic.Int64
}

func (r *staticResolver) Resolve(ctx context.Context) (string, error) {
	r.calls.Add(1)
	if r.err != nil {
		return "", r.err
	}
	return r.path, nil
}

var errBoom = errors.New("boom")

// Compile-time interface checks.
var (
	_ engine             = (*fakeEngine)(nil)
	_ browserProcess     = (*fakeProcess)(nil)
	_ page               = (*fakePage)(nil)
	_ ExecutableResolver = (*staticResolver)(nil)
)
