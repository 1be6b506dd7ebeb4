// Package hints provides actionable operator hints for common failures.
// Hints are formatted consistently as "\n  hint: <text>" for appending to error messages.
package hints

import (
	"os"
	"strings"

	"github.com/alnah/go-proposal/internal/fileutil"
)

// IsInContainer detects if running inside a Docker container or similar.
// Checks for /.dockerenv file which Docker creates automatically.
var IsInContainer = func() bool {
	return fileutil.FileExists("/.dockerenv")
}

// ForEngineNotFound returns hints for a failed browser executable lookup.
func ForEngineNotFound() string {
	var hints []string

	if os.Getenv("PROPOSAL_BROWSER_BIN") == "" && os.Getenv("ROD_BROWSER_BIN") == "" {
		hints = append(hints, "set PROPOSAL_BROWSER_BIN to a Chrome or Chromium binary")
	}
	if IsInContainer() {
		hints = append(hints, "install chromium in the image")
	} else {
		hints = append(hints, "or set browser.autoDownload: true")
	}
	hints = append(hints, "run `proposald doctor` to see every location tried")

	return formatHints(hints)
}

// ForEngineLaunch returns hints for a browser that was found but would not start.
func ForEngineLaunch() string {
	var hints []string

	if IsInContainer() {
		hints = append(hints, "check the image has Chrome's shared libraries and fonts")
	}
	hints = append(hints, "run the binary with --version to confirm it starts")

	return formatHints(hints)
}

// ForTimeout returns a hint about slow renders.
func ForTimeout() string {
	return format("raise browser.timeout or check that external assets referenced by the template respond")
}

// ForInvalidArtifact returns a hint for output that is not a PDF.
func ForInvalidArtifact() string {
	return format("the browser printed something other than a PDF; retry and check browser logs")
}

// ForConfigNotFound returns hints for config file not found errors.
func ForConfigNotFound(searchedPaths []string) string {
	hint := "use --config /path/to/file.yaml or set PROPOSAL_CONFIG"

	for _, p := range searchedPaths {
		if strings.Contains(p, ".config/go-proposal") {
			hint += " or create " + p
			break
		}
	}

	return format(hint)
}

// ForOutputDirectory returns hints for output file errors.
func ForOutputDirectory() string {
	return format("check parent directory exists and is writable")
}

// format creates a single hint string with consistent formatting.
func format(hint string) string {
	if hint == "" {
		return ""
	}
	return "\n  hint: " + hint
}

// formatHints joins multiple hints with consistent formatting.
func formatHints(hints []string) string {
	if len(hints) == 0 {
		return ""
	}
	return format(strings.Join(hints, "; "))
}
