package assets

import "errors"

// Resolver combines custom and embedded loaders. Custom assets win; an asset
// missing from the custom directory falls back to the embedded one.
type Resolver struct {
	custom   Loader // nil if no custom path configured
	embedded Loader
}

// NewResolver creates a Resolver. An empty customBasePath serves only
// embedded assets; an invalid one is an error.
func NewResolver(customBasePath string) (*Resolver, error) {
	r := &Resolver{
		embedded: NewEmbeddedLoader(),
	}

	if customBasePath != "" {
		fsLoader, err := NewFilesystemLoader(customBasePath)
		if err != nil {
			return nil, err
		}
		r.custom = fsLoader
	}

	return r, nil
}

// LoadStyle loads a CSS style, trying the custom loader first.
func (r *Resolver) LoadStyle(name string) (string, error) {
	return r.loadWithFallback(func(l Loader) (string, error) {
		return l.LoadStyle(name)
	})
}

// LoadTemplate loads an HTML template, trying the custom loader first.
func (r *Resolver) LoadTemplate(name string) (string, error) {
	return r.loadWithFallback(func(l Loader) (string, error) {
		return l.LoadTemplate(name)
	})
}

func (r *Resolver) loadWithFallback(loadFn func(Loader) (string, error)) (string, error) {
	if r.custom == nil {
		return loadFn(r.embedded)
	}

	content, err := loadFn(r.custom)
	if err == nil {
		return content, nil
	}

	// Validation and I/O errors are not masked by the fallback.
	if !isNotFoundError(err) {
		return "", err
	}

	return loadFn(r.embedded)
}

func isNotFoundError(err error) bool {
	return errors.Is(err, ErrStyleNotFound) || errors.Is(err, ErrTemplateNotFound)
}

// Compile-time interface check.
var _ Loader = (*Resolver)(nil)
