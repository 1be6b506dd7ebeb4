package main

import (
	"errors"
	"fmt"
	"os"
	"testing"

	proposal "github.com/alnah/go-proposal"
	"github.com/alnah/go-proposal/internal/config"
	"github.com/alnah/go-proposal/internal/logging"
)

// ---------------------------------------------------------------------------
// TestExitCodeFor - Error to exit code mapping
// ---------------------------------------------------------------------------

func TestExitCodeFor(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil error", nil, ExitSuccess},

		// Browser errors (exit 4)
		{"engine not found", proposal.ErrEngineNotFound, ExitBrowser},
		{"engine launch", proposal.ErrEngineLaunch, ExitBrowser},
		{"page load", proposal.ErrPageLoad, ExitBrowser},
		{"timeout", proposal.ErrRenderTimeout, ExitBrowser},
		{"pdf generation", proposal.ErrPDFGeneration, ExitBrowser},
		{"invalid artifact", proposal.ErrInvalidArtifact, ExitBrowser},
		{"phase error", &proposal.PhaseError{Phase: proposal.PhaseSettle, Err: proposal.ErrRenderTimeout}, ExitBrowser},

		// I/O errors (exit 3)
		{"not exist", os.ErrNotExist, ExitIO},
		{"permission", os.ErrPermission, ExitIO},
		{"read input", ErrReadInput, ExitIO},
		{"write output", fmt.Errorf("%w: out.pdf", ErrWriteOutput), ExitIO},

		// Usage errors (exit 2)
		{"usage", ErrUsage, ExitUsage},
		{"config not found", config.ErrConfigNotFound, ExitUsage},
		{"config parse", config.ErrConfigParse, ExitUsage},
		{"field too long", config.ErrFieldTooLong, ExitUsage},
		{"invalid value", config.ErrInvalidValue, ExitUsage},
		{"log level", logging.ErrInvalidLevel, ExitUsage},
		{"invalid input", proposal.ErrInvalidInput, ExitUsage},
		{"markup", fmt.Errorf("loading: %w", proposal.ErrMarkupRender), ExitUsage},

		// General
		{"unknown", errors.New("boom"), ExitGeneral},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := exitCodeFor(tt.err); got != tt.want {
				t.Errorf("exitCodeFor(%v) = %d, want %d", tt.err, got, tt.want)
			}
		})
	}
}

func TestExitCodes_UnixConventions(t *testing.T) {
	t.Parallel()

	if ExitSuccess != 0 || ExitGeneral != 1 || ExitUsage != 2 {
		t.Error("standard exit codes changed")
	}
	for _, code := range []int{ExitIO, ExitBrowser} {
		if code >= 126 {
			t.Errorf("exit code %d collides with shell-reserved codes", code)
		}
	}
}
