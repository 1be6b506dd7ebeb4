// Package assets provides the proposal page template and its stylesheet.
//
// # Loader Architecture
//
//	Loader (interface)
//	    │
//	    ├── EmbeddedLoader    - built-in template and stylesheet (go:embed)
//	    ├── FilesystemLoader  - operator-supplied overrides from a directory
//	    └── Resolver          - custom first, embedded fallback
//
// A Resolver without a custom directory serves only the embedded assets. With
// one, any asset present on disk replaces the built-in one of the same name,
// so a deployment can restyle proposals without rebuilding.
//
// # Directory Structure
//
//	{basePath}/
//	├── styles/
//	│   └── {name}.css
//	└── templates/
//	    └── {name}.html
//
// # Security
//
// Asset names are validated to prevent path traversal. FilesystemLoader
// resolves symlinks and verifies every path stays within basePath.
package assets
