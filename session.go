package proposal

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
)

// engine launches browser processes. rodEngine is the production
// implementation; tests substitute fakes to drive the lifecycle.
type engine interface {
	Launch(ctx context.Context, bin string) (browserProcess, error)
}

// browserProcess is one running browser.
type browserProcess interface {
	OpenPage(ctx context.Context) (page, error)
	// Close shuts the browser down, kills its process group, and removes its
	// profile directory. It must be safe to call after a failed launch step.
	Close(ctx context.Context) error
}

// page is the single tab a render drives.
type page interface {
	// Intercept routes every request through decide until the returned stop
	// function is called.
	Intercept(decide func(rawURL string) Decision) (stop func() error, err error)
	SetContent(ctx context.Context, markup string) error
	WaitParsed(ctx context.Context) error
	WaitFonts(ctx context.Context) error
	PDF(ctx context.Context, opts printOptions) ([]byte, error)
	Close(ctx context.Context) error
}

// printOptions is the fixed paper layout handed to the engine.
type printOptions struct {
	PaperWidth        float64 // inches
	PaperHeight       float64 // inches
	Margin            float64 // inches, all sides
	PrintBackground   bool
	PreferCSSPageSize bool
}

// PDF page dimensions in inches (US Letter format).
const (
	paperWidthInches  = 8.5
	paperHeightInches = 11
	marginInches      = 0.5
)

var letterPrintOptions = printOptions{
	PaperWidth:        paperWidthInches,
	PaperHeight:       paperHeightInches,
	Margin:            marginInches,
	PrintBackground:   true,
	PreferCSSPageSize: true,
}

// SessionState is a render session's lifecycle position.
type SessionState int32

// Session states in the order a successful render visits them.
const (
	StateIdle SessionState = iota
	StateLaunching
	StatePageOpen
	StateContentLoading
	StateSettling
	StateExporting
	StateClosed
)

var stateNames = [...]string{"idle", "launching", "page-open", "content-loading", "settling", "exporting", "closed"}

func (s SessionState) String() string {
	if s < 0 || int(s) >= len(stateNames) {
		return "unknown"
	}
	return stateNames[s]
}

// teardownTimeout bounds cleanup, which runs on a context detached from the
// caller's cancellation.
const teardownTimeout = 15 * time.Second

// renderSession owns one browser process and one page for a single render.
type renderSession struct {
	logger *zap.Logger

	state   atomic.Int32
	proc    browserProcess
	page    page
	stop    func() error
	aborted atomic.Int64
}

func newRenderSession(logger *zap.Logger) *renderSession {
	return &renderSession{logger: logger}
}

// State returns the current lifecycle state.
func (s *renderSession) State() SessionState {
	return SessionState(s.state.Load())
}

// advance moves forward unless the session is already closed.
func (s *renderSession) advance(to SessionState) {
	for {
		cur := s.state.Load()
		if SessionState(cur) == StateClosed || SessionState(cur) >= to {
			return
		}
		if s.state.CompareAndSwap(cur, int32(to)) {
			return
		}
	}
}

// Aborted returns how many requests the gatekeeper blocked.
func (s *renderSession) Aborted() int64 {
	return s.aborted.Load()
}

// intercept installs gk on the page, logging each decision.
func (s *renderSession) intercept(gk *Gatekeeper) error {
	stop, err := s.page.Intercept(func(rawURL string) Decision {
		d, rule := gk.Explain(rawURL)
		if d == Abort {
			s.aborted.Add(1)
		}
		s.logger.Debug("request intercepted",
			zap.String("url", rawURL),
			zap.Stringer("decision", d),
			zap.String("rule", rule))
		return d
	})
	if err != nil {
		return err
	}
	s.stop = stop
	return nil
}

// close releases everything the session acquired, in reverse order. It runs
// on every exit path and always ends in StateClosed.
func (s *renderSession) close(ctx context.Context) error {
	if SessionState(s.state.Swap(int32(StateClosed))) == StateClosed {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), teardownTimeout)
	defer cancel()

	var errs []error
	if s.stop != nil {
		if err := s.stop(); err != nil {
			errs = append(errs, err)
		}
	}
	if s.page != nil {
		if err := s.page.Close(ctx); err != nil {
			errs = append(errs, err)
		}
	}
	if s.proc != nil {
		if err := s.proc.Close(ctx); err != nil {
			errs = append(errs, err)
		}
	}

	err := errors.Join(errs...)
	if err != nil {
		s.logger.Warn("render teardown incomplete", zap.Error(err))
	}
	return err
}
