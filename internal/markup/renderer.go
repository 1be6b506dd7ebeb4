// Package markup turns a priced proposal into the HTML page that the render
// pipeline prints.
package markup

import (
	"context"
	"errors"
	"html/template"

	"github.com/alnah/go-proposal/internal/pricing"
)

// ErrRender indicates the page template could not be compiled or executed.
var ErrRender = errors.New("markup rendering failed")

// Renderer produces a complete HTML document for a model.
type Renderer interface {
	Render(ctx context.Context, m *pricing.Model) (string, error)
}

// View is the data a page template executes against. Model fields are
// promoted, so templates write {{.ClientName}} or {{.Fmt.BundleTotal}}.
type View struct {
	*pricing.Model
	Stylesheet template.CSS
	NotesHTML  template.HTML
}
