package proposal

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/alnah/go-proposal/internal/markup"
	"github.com/alnah/go-proposal/internal/pricing"
)

// Input is the loosely typed request payload. Missing or malformed values
// fall back to defaults when priced.
type Input = pricing.RawInput

// Model is a fully priced proposal.
type Model = pricing.Model

// DecodeInput parses a JSON request body. Only a body that is not a JSON
// object fails; everything inside it is tolerated.
func DecodeInput(body []byte) (Input, error) {
	return pricing.DecodeRawInput(body)
}

// PreviewResult is a priced model and its HTML page.
type PreviewResult struct {
	Model  *Model
	Markup string
}

// DocumentResult is a priced model, its HTML page, and the printed PDF.
type DocumentResult struct {
	Model    *Model
	Markup   string
	PDF      []byte
	FileName string
}

// Converter prices proposals and renders them to HTML and PDF.
// Create with NewConverter, and Close when done.
type Converter struct {
	cfg        converterConfig
	logger     *zap.Logger
	pricing    pricing.Engine
	markup     markup.Renderer
	document   DocumentRenderer
	resolver   ExecutableResolver
	gatekeeper *Gatekeeper
	engine     engine
	pool       *RenderPool
}

// NewConverter creates a Converter with default configuration.
// Use options to customize behavior (e.g., WithTimeout, WithResolver, WithPoolSize).
func NewConverter(opts ...Option) (*Converter, error) {
	c := &Converter{
		cfg: converterConfig{
			budgets: renderBudgets{
				phase:     DefaultTimeout,
				fontGrace: DefaultFontGrace,
				settle:    DefaultSettleDelay,
			},
		},
		logger: zap.NewNop(),
	}

	for _, opt := range opts {
		opt(c)
	}

	if c.markup == nil {
		c.markup = markup.NewTemplateRenderer(nil, "", "")
	}

	// Create the browser renderer if not injected
	if c.document == nil {
		if c.resolver == nil {
			c.resolver = NewDefaultResolver(ResolverConfig{}, c.logger)
		}
		if c.gatekeeper == nil {
			c.gatekeeper = DefaultGatekeeper("")
		}
		if c.engine == nil {
			c.engine = newRodEngine()
		}
		c.pool = NewRenderPool(ResolvePoolSize(c.cfg.poolSize))
		c.document = newRodRenderer(c.engine, c.resolver, c.gatekeeper, c.pool, c.cfg.budgets, c.logger)
	}

	return c, nil
}

// Quote prices raw without rendering anything.
func (c *Converter) Quote(raw Input) *Model {
	return c.pricing.Compute(raw)
}

// Preview prices raw and renders its HTML page.
// Recovers from internal panics to prevent crashes from propagating to callers.
func (c *Converter) Preview(ctx context.Context, raw Input) (result *PreviewResult, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("internal error: %v", r)
		}
	}()

	m := c.pricing.Compute(raw)
	html, err := c.renderMarkup(ctx, m)
	if err != nil {
		return nil, err
	}
	return &PreviewResult{Model: m, Markup: html}, nil
}

// Document prices raw, renders its page, and prints it to PDF.
// Recovers from internal panics to prevent crashes from propagating to callers.
func (c *Converter) Document(ctx context.Context, raw Input) (result *DocumentResult, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("internal error: %v", r)
		}
	}()

	m := c.pricing.Compute(raw)
	html, err := c.renderMarkup(ctx, m)
	if err != nil {
		return nil, err
	}

	pdf, err := c.document.Render(ctx, html)
	if err != nil {
		return nil, fmt.Errorf("rendering PDF: %w", err)
	}

	return &DocumentResult{
		Model:    m,
		Markup:   html,
		PDF:      pdf,
		FileName: AttachmentName(m.ClientName),
	}, nil
}

// Close stops new renders. Renders in flight finish normally.
func (c *Converter) Close() error {
	if c.pool != nil {
		return c.pool.Close()
	}
	return nil
}

func (c *Converter) renderMarkup(ctx context.Context, m *Model) (string, error) {
	html, err := c.markup.Render(ctx, m)
	if err == nil {
		return html, nil
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return "", err
	}
	if errors.Is(err, ErrMarkupRender) {
		return "", err
	}
	return "", fmt.Errorf("%w: %v", ErrMarkupRender, err)
}
