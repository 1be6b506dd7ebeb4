package markup

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"sync"

	"github.com/alnah/go-proposal/internal/assets"
	"github.com/alnah/go-proposal/internal/numfmt"
	"github.com/alnah/go-proposal/internal/pricing"
)

// TemplateRenderer executes an html/template page with its stylesheet inlined.
// The template is compiled on first use and shared by every later call.
type TemplateRenderer struct {
	loader       assets.Loader
	templateName string
	styleName    string
	notes        *NotesConverter
	compile      func() (*compiledPage, error)
}

type compiledPage struct {
	tpl *template.Template
	css template.CSS
}

var funcs = template.FuncMap{
	"inc":      func(i int) int { return i + 1 },
	"currency": numfmt.Currency,
	"number":   numfmt.Number,
	"percent":  numfmt.Percent,
}

// NewTemplateRenderer creates a renderer reading assets from loader. A nil
// loader uses the embedded assets; empty names use the built-in proposal page.
func NewTemplateRenderer(loader assets.Loader, templateName, styleName string) *TemplateRenderer {
	r := &TemplateRenderer{
		loader:       loader,
		templateName: templateName,
		styleName:    styleName,
		notes:        NewNotesConverter(),
	}
	r.compile = sync.OnceValues(r.load)
	return r
}

func (r *TemplateRenderer) load() (*compiledPage, error) {
	b, err := assets.LoadBundle(r.loader, r.templateName, r.styleName)
	if err != nil {
		return nil, err
	}
	tpl, err := template.New(b.Name).Funcs(funcs).Option("missingkey=error").Parse(b.Template)
	if err != nil {
		return nil, err
	}
	// #nosec G203 -- stylesheet comes from embedded or operator-owned assets
	return &compiledPage{tpl: tpl, css: template.CSS(b.Style)}, nil
}

// Render executes the page template for m.
func (r *TemplateRenderer) Render(ctx context.Context, m *pricing.Model) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if m == nil {
		return "", fmt.Errorf("%w: nil model", ErrRender)
	}

	page, err := r.compile()
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrRender, err)
	}

	notes, err := r.notes.ToHTML(ctx, m.Notes)
	if err != nil {
		return "", fmt.Errorf("%w: notes: %v", ErrRender, err)
	}

	var buf bytes.Buffer
	view := View{Model: m, Stylesheet: page.css, NotesHTML: notes}
	if err := page.tpl.Execute(&buf, view); err != nil {
		return "", fmt.Errorf("%w: %v", ErrRender, err)
	}
	return buf.String(), nil
}

// Compile-time interface check.
var _ Renderer = (*TemplateRenderer)(nil)
