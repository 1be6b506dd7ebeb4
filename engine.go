package proposal

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/launcher/flags"
	"github.com/go-rod/rod/lib/proto"

	"github.com/alnah/go-proposal/internal/process"
)

// Chrome switches for containers: no sandbox, no GPU, no shared memory, and
// a single process so teardown has one tree to kill.
var launchFlags = []flags.Flag{
	"disable-setuid-sandbox",
	"disable-dev-shm-usage",
	"disable-gpu",
	"no-zygote",
	"single-process",
}

// JavaScript conditions evaluated in the page.
const (
	jsParsed     = `() => document.readyState !== "loading"`
	jsFontsReady = `() => document.fonts.ready.then(() => true)`
)

// rodEngine launches headless Chrome through go-rod.
type rodEngine struct{}

func newRodEngine() *rodEngine {
	return &rodEngine{}
}

// Launch starts bin and connects to it. The browser outlives ctx, which only
// bounds the launch: cancelling it stops the wait for the DevTools URL and
// kills whatever already started.
func (e *rodEngine) Launch(ctx context.Context, bin string) (browserProcess, error) {
	lctx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	l := launcher.New().
		Context(lctx).
		Bin(bin).
		Headless(true).
		NoSandbox(true).
		Leakless(false)
	for _, f := range launchFlags {
		l = l.Set(f)
	}

	proc := &rodProcess{launcher: l, cancel: cancel}
	abort := func() {
		cancel()
		if l.PID() > 0 {
			l.Kill()
		}
	}

	var controlURL string
	err := await(ctx, func() error {
		u, err := l.Launch()
		controlURL = u
		return err
	}, abort)
	if err != nil {
		_ = proc.Close(context.WithoutCancel(ctx))
		return nil, err
	}

	browser := rod.New().ControlURL(controlURL)
	if err := await(ctx, browser.Connect, abort); err != nil {
		_ = proc.Close(context.WithoutCancel(ctx))
		return nil, fmt.Errorf("connecting to %s: %w", controlURL, err)
	}
	proc.browser = browser

	return proc, nil
}

// rodProcess is a launched Chrome and its launcher.
type rodProcess struct {
	launcher *launcher.Launcher
	browser  *rod.Browser
	cancel   context.CancelFunc
}

func (p *rodProcess) OpenPage(ctx context.Context) (page, error) {
	pg, err := p.browser.Context(ctx).Page(proto.TargetCreateTarget{})
	if err != nil {
		return nil, err
	}
	// Later calls bind their own deadline through Context.
	return &rodPage{page: pg.Context(context.Background())}, nil
}

// Close disconnects, kills the process group, and removes the profile dir.
// Waiting for the killed process to exit is bounded by ctx.
func (p *rodProcess) Close(ctx context.Context) error {
	defer p.cancel()

	if p.browser != nil {
		// The process is killed below either way.
		_ = p.browser.Context(ctx).Close()
	}

	pid := p.launcher.PID()
	if pid <= 0 {
		// Nothing started, so the launcher will never report an exit.
		if err := os.RemoveAll(p.launcher.Get(flags.UserDataDir)); err != nil {
			return fmt.Errorf("removing browser profile: %w", err)
		}
		return nil
	}

	var errs []error
	if err := process.KillGroup(pid); err != nil {
		errs = append(errs, fmt.Errorf("killing browser group %d: %w", pid, err))
	}
	p.launcher.Kill()

	// Cleanup waits for the process to exit, then removes the profile.
	done := make(chan struct{})
	go func() {
		p.launcher.Cleanup()
		close(done)
	}()
	select {
	case <-done:
	case <-ctx.Done():
		errs = append(errs, fmt.Errorf("waiting for browser %d to exit: %w", pid, ctx.Err()))
	}
	return errors.Join(errs...)
}

// rodPage adapts *rod.Page to page.
type rodPage struct {
	page *rod.Page
}

func (p *rodPage) Intercept(decide func(rawURL string) Decision) (func() error, error) {
	router := p.page.HijackRequests()
	err := router.Add("*", "", func(h *rod.Hijack) {
		if decide(h.Request.URL().String()) == Abort {
			h.Response.Fail(proto.NetworkErrorReasonBlockedByClient)
			return
		}
		h.ContinueRequest(&proto.FetchContinueRequest{})
	})
	if err != nil {
		return nil, err
	}
	go router.Run()
	return router.Stop, nil
}

func (p *rodPage) SetContent(ctx context.Context, markup string) error {
	return p.page.Context(ctx).SetDocumentContent(markup)
}

func (p *rodPage) WaitParsed(ctx context.Context) error {
	return p.page.Context(ctx).Wait(rod.Eval(jsParsed))
}

func (p *rodPage) WaitFonts(ctx context.Context) error {
	_, err := p.page.Context(ctx).Eval(jsFontsReady)
	return err
}

func (p *rodPage) PDF(ctx context.Context, opts printOptions) ([]byte, error) {
	reader, err := p.page.Context(ctx).PDF(&proto.PagePrintToPDF{
		PaperWidth:        floatPtr(opts.PaperWidth),
		PaperHeight:       floatPtr(opts.PaperHeight),
		MarginTop:         floatPtr(opts.Margin),
		MarginBottom:      floatPtr(opts.Margin),
		MarginLeft:        floatPtr(opts.Margin),
		MarginRight:       floatPtr(opts.Margin),
		PrintBackground:   opts.PrintBackground,
		PreferCSSPageSize: opts.PreferCSSPageSize,
	})
	if err != nil {
		return nil, err
	}

	buf, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("reading PDF stream: %w", err)
	}
	return buf, nil
}

func (p *rodPage) Close(ctx context.Context) error {
	return p.page.Context(ctx).Close()
}

// await runs fn and returns its error, or ctx's error once ctx is done. On
// cancellation abort is called to unblock fn, and await still waits for fn to
// return so no goroutine outlives the call.
func await(ctx context.Context, fn func() error, abort func()) error {
	done := make(chan error, 1)
	go func() { done <- fn() }()

	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		if abort != nil {
			abort()
		}
		if err := <-done; err != nil && !errors.Is(err, ctx.Err()) {
			return fmt.Errorf("%w (%v)", ctx.Err(), err)
		}
		return ctx.Err()
	}
}

// floatPtr returns a pointer to a float64 value.
func floatPtr(v float64) *float64 {
	return &v
}

// Compile-time interface checks.
var (
	_ engine         = (*rodEngine)(nil)
	_ browserProcess = (*rodProcess)(nil)
	_ page           = (*rodPage)(nil)
)
