package assets

import "fmt"

// DefaultTemplateName names the built-in proposal page template.
const DefaultTemplateName = "proposal"

// DefaultStyleName names the built-in proposal stylesheet.
const DefaultStyleName = "proposal"

// Bundle is a page template paired with the stylesheet it is rendered with.
type Bundle struct {
	Name     string
	Template string
	Style    string
}

// LoadBundle loads the named template and style through l. A nil l reads the
// embedded assets; empty names select the built-in proposal page.
func LoadBundle(l Loader, templateName, styleName string) (*Bundle, error) {
	if l == nil {
		l = NewEmbeddedLoader()
	}
	if templateName == "" {
		templateName = DefaultTemplateName
	}
	if styleName == "" {
		styleName = DefaultStyleName
	}

	tpl, err := l.LoadTemplate(templateName)
	if err != nil {
		return nil, fmt.Errorf("page template: %w", err)
	}
	css, err := l.LoadStyle(styleName)
	if err != nil {
		return nil, fmt.Errorf("page style: %w", err)
	}
	return &Bundle{Name: templateName, Template: tpl, Style: css}, nil
}
