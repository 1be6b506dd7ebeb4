package markup

import (
	"bytes"
	"context"
	"html/template"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"
)

// NotesConverter renders the free-form proposal notes from Markdown.
// Raw HTML in the notes is dropped, so the result is safe to embed.
type NotesConverter struct {
	md goldmark.Markdown
}

// NewNotesConverter creates a NotesConverter with GFM tables, strikethrough,
// and autolinks.
func NewNotesConverter() *NotesConverter {
	md := goldmark.New(
		goldmark.WithExtensions(
			extension.GFM,
		),
		goldmark.WithRendererOptions(
			html.WithHardWraps(),
			html.WithXHTML(),
		),
	)
	return &NotesConverter{md: md}
}

// ToHTML converts notes to an HTML fragment. Blank notes yield "".
func (c *NotesConverter) ToHTML(ctx context.Context, notes string) (template.HTML, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if notes == "" {
		return "", nil
	}

	var buf bytes.Buffer
	if err := c.md.Convert([]byte(notes), &buf); err != nil {
		return "", err
	}
	// #nosec G203 -- goldmark output without the unsafe renderer option
	return template.HTML(buf.String()), nil
}
