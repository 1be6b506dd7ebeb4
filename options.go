package proposal

import (
	"time"

	"go.uber.org/zap"

	"github.com/alnah/go-proposal/internal/markup"
	"github.com/alnah/go-proposal/internal/pricing"
)

// Default render budgets.
const (
	DefaultTimeout     = 120 * time.Second
	DefaultFontGrace   = 5 * time.Second
	DefaultSettleDelay = 750 * time.Millisecond
)

// Option configures a Converter.
type Option func(*Converter)

// converterConfig holds settings applied before defaults are filled in.
type converterConfig struct {
	budgets  renderBudgets
	poolSize int
}

// WithTimeout sets the budget for each render phase.
// Panics if d <= 0 (programmer error, similar to time.NewTicker).
func WithTimeout(d time.Duration) Option {
	if d <= 0 {
		panic("proposal: WithTimeout duration must be positive")
	}
	return func(c *Converter) {
		c.cfg.budgets.phase = d
	}
}

// WithFontGrace bounds the wait for web fonts. Zero skips the wait.
// Panics if d < 0.
func WithFontGrace(d time.Duration) Option {
	if d < 0 {
		panic("proposal: WithFontGrace duration must not be negative")
	}
	return func(c *Converter) {
		c.cfg.budgets.fontGrace = d
	}
}

// WithSettleDelay sets the pause between font readiness and printing. Zero
// prints immediately. Panics if d < 0.
func WithSettleDelay(d time.Duration) Option {
	if d < 0 {
		panic("proposal: WithSettleDelay duration must not be negative")
	}
	return func(c *Converter) {
		c.cfg.budgets.settle = d
	}
}

// WithLogger sets the logger. Nil keeps the no-op default.
func WithLogger(l *zap.Logger) Option {
	return func(c *Converter) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithResolver replaces the default browser lookup.
func WithResolver(r ExecutableResolver) Option {
	return func(c *Converter) {
		c.resolver = r
	}
}

// WithGatekeeper replaces the default request filter.
func WithGatekeeper(g *Gatekeeper) Option {
	return func(c *Converter) {
		c.gatekeeper = g
	}
}

// WithMarkupRenderer replaces the built-in proposal page.
func WithMarkupRenderer(r markup.Renderer) Option {
	return func(c *Converter) {
		c.markup = r
	}
}

// WithDocumentRenderer replaces the headless-browser renderer entirely. The
// render budgets, resolver, gatekeeper, and pool are then unused.
func WithDocumentRenderer(r DocumentRenderer) Option {
	return func(c *Converter) {
		c.document = r
	}
}

// WithPoolSize caps concurrent browser processes. Zero or less derives the
// size from GOMAXPROCS.
func WithPoolSize(n int) Option {
	return func(c *Converter) {
		c.cfg.poolSize = n
	}
}

// WithPricingEngine sets the clock and date format used for quotes.
func WithPricingEngine(e pricing.Engine) Option {
	return func(c *Converter) {
		c.pricing = e
	}
}

// withEngine swaps the browser engine. Tests only.
func withEngine(e engine) Option {
	return func(c *Converter) {
		c.engine = e
	}
}
