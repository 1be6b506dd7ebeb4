package proposal

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// DocumentRenderer turns a complete HTML document into PDF bytes.
type DocumentRenderer interface {
	Render(ctx context.Context, markup string) ([]byte, error)
}

// Render phases, as reported by FailedPhase and in logs.
const (
	PhaseResolve  = "resolve"
	PhaseQueue    = "queue"
	PhaseLaunch   = "launch"
	PhaseLoad     = "load"
	PhaseSettle   = "settle"
	PhaseExport   = "export"
	PhaseValidate = "validate"
)

const tracerName = "github.com/alnah/go-proposal"

// renderBudgets bounds the waiting done by one render.
type renderBudgets struct {
	phase     time.Duration // each phase
	fontGrace time.Duration // document.fonts.ready, soft
	settle    time.Duration // fixed pause before printing
}

// rodRenderer drives one fresh browser per call through the render phases.
// Despite the name it only talks to the engine interface; rodEngine is the
// default engine.
type rodRenderer struct {
	engine     engine
	resolver   ExecutableResolver
	gatekeeper *Gatekeeper
	pool       *RenderPool
	budgets    renderBudgets
	logger     *zap.Logger
	tracer     trace.Tracer
}

func newRodRenderer(e engine, resolver ExecutableResolver, gk *Gatekeeper, pool *RenderPool, budgets renderBudgets, logger *zap.Logger) *rodRenderer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &rodRenderer{
		engine:     e,
		resolver:   resolver,
		gatekeeper: gk,
		pool:       pool,
		budgets:    budgets,
		logger:     logger,
		tracer:     otel.Tracer(tracerName),
	}
}

// Render loads markup into a new page and prints it. The browser is torn down
// before Render returns, whatever the outcome.
func (r *rodRenderer) Render(ctx context.Context, markup string) (pdf []byte, err error) {
	if strings.TrimSpace(markup) == "" {
		return nil, ErrEmptyMarkup
	}

	ctx, span := r.tracer.Start(ctx, "proposal.render", trace.WithAttributes(
		attribute.Int("render.markup_bytes", len(markup)),
	))
	defer span.End()

	start := time.Now()
	s := newRenderSession(r.logger)
	var (
		bin      string
		acquired bool
	)

	defer func() {
		_ = s.close(ctx)
		if acquired {
			r.pool.Release()
		}

		fields := []zap.Field{
			zap.String("executable", bin),
			zap.Duration("phase_budget", r.budgets.phase),
			zap.Int64("aborted_requests", s.Aborted()),
			zap.Duration("elapsed", time.Since(start)),
		}
		span.SetAttributes(attribute.Int64("render.aborted_requests", s.Aborted()))
		if err != nil {
			phase := FailedPhase(err)
			r.logger.Error("render failed", append(fields, zap.String("phase", phase), zap.Error(err))...)
			span.RecordError(err)
			span.SetStatus(codes.Error, phase+" failed")
			return
		}
		r.logger.Info("render finished", append(fields, zap.Int("bytes", len(pdf)))...)
	}()

	err = r.runPhase(ctx, PhaseResolve, func(ctx context.Context) error {
		var rerr error
		bin, rerr = r.resolver.Resolve(ctx)
		return rerr
	})
	if err != nil {
		return nil, err
	}

	if r.pool != nil {
		// Waiting for a slot is bounded by the phase budget.
		err = r.runPhase(ctx, PhaseQueue, func(ctx context.Context) error {
			if qerr := r.pool.Acquire(ctx); qerr != nil {
				return fmt.Errorf("waiting for a render slot: %w", qerr)
			}
			acquired = true
			return nil
		})
		if err != nil {
			return nil, err
		}
	}

	err = r.runPhase(ctx, PhaseLaunch, func(ctx context.Context) error {
		s.advance(StateLaunching)
		proc, lerr := r.engine.Launch(ctx, bin)
		if lerr != nil {
			return fmt.Errorf("%w: %v", ErrEngineLaunch, lerr)
		}
		s.proc = proc

		pg, lerr := proc.OpenPage(ctx)
		if lerr != nil {
			return fmt.Errorf("%w: opening page: %v", ErrEngineLaunch, lerr)
		}
		s.page = pg
		s.advance(StatePageOpen)
		return nil
	})
	if err != nil {
		return nil, err
	}

	err = r.runPhase(ctx, PhaseLoad, func(ctx context.Context) error {
		s.advance(StateContentLoading)
		if lerr := s.intercept(r.gatekeeper); lerr != nil {
			return fmt.Errorf("%w: installing request filter: %v", ErrPageLoad, lerr)
		}
		if lerr := s.page.SetContent(ctx, markup); lerr != nil {
			return fmt.Errorf("%w: %v", ErrPageLoad, lerr)
		}
		if lerr := s.page.WaitParsed(ctx); lerr != nil {
			return fmt.Errorf("%w: waiting for parse: %v", ErrPageLoad, lerr)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	err = r.runPhase(ctx, PhaseSettle, func(ctx context.Context) error {
		s.advance(StateSettling)
		return r.settle(ctx, s)
	})
	if err != nil {
		return nil, err
	}

	var raw []byte
	err = r.runPhase(ctx, PhaseExport, func(ctx context.Context) error {
		s.advance(StateExporting)
		b, perr := s.page.PDF(ctx, letterPrintOptions)
		if perr != nil {
			return fmt.Errorf("%w: %v", ErrPDFGeneration, perr)
		}
		raw = b
		return nil
	})
	if err != nil {
		return nil, err
	}

	pdf, verr := ValidateArtifact(raw)
	if verr != nil {
		return nil, &PhaseError{Phase: PhaseValidate, Err: verr}
	}
	span.SetAttributes(attribute.Int("render.pdf_bytes", len(pdf)))
	return pdf, nil
}

// settle waits for web fonts, bounded by the font grace, then pauses for the
// settle delay. Only the phase deadline makes it fail.
func (r *rodRenderer) settle(ctx context.Context, s *renderSession) error {
	if r.budgets.fontGrace > 0 {
		fctx, cancel := context.WithTimeout(ctx, r.budgets.fontGrace)
		err := s.page.WaitFonts(fctx)
		cancel()
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			r.logger.Warn("fonts not ready, printing anyway",
				zap.Duration("font_grace", r.budgets.fontGrace),
				zap.Error(err))
		}
	}

	if r.budgets.settle <= 0 {
		return nil
	}
	t := time.NewTimer(r.budgets.settle)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// runPhase runs fn under the phase budget inside its own span and classifies
// the failure.
func (r *rodRenderer) runPhase(ctx context.Context, name string, fn func(context.Context) error) error {
	ctx, span := r.tracer.Start(ctx, "render."+name, trace.WithAttributes(
		attribute.String("render.phase", name),
		attribute.Int64("render.budget_ms", r.budgets.phase.Milliseconds()),
	))
	defer span.End()

	pctx, cancel := context.WithTimeout(ctx, r.budgets.phase)
	defer cancel()

	err := fn(pctx)
	if err == nil {
		return nil
	}

	switch {
	case errors.Is(ctx.Err(), context.Canceled):
		if !errors.Is(err, context.Canceled) {
			err = fmt.Errorf("%w (%v)", context.Canceled, err)
		}
	case errors.Is(pctx.Err(), context.DeadlineExceeded) || errors.Is(err, context.DeadlineExceeded):
		err = fmt.Errorf("%w: %s phase exceeded %s: %v", ErrRenderTimeout, name, r.budgets.phase, err)
	}

	span.RecordError(err)
	span.SetStatus(codes.Error, name+" failed")
	return &PhaseError{Phase: name, Budget: r.budgets.phase, Err: err}
}

// Compile-time interface check.
var _ DocumentRenderer = (*rodRenderer)(nil)
