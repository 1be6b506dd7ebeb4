package main

import (
	"errors"
	"os"

	proposal "github.com/alnah/go-proposal"
	"github.com/alnah/go-proposal/internal/config"
	"github.com/alnah/go-proposal/internal/logging"
)

// Exit codes for the proposald CLI.
// Follows Unix conventions: 0=success, 1=general, 2=usage, and custom codes < 126.
const (
	ExitSuccess = 0 // Command completed
	ExitGeneral = 1 // General/unexpected error
	ExitUsage   = 2 // Invalid flags, config, or input
	ExitIO      = 3 // File not found, permission denied
	ExitBrowser = 4 // Browser/Chrome errors
)

// exitCodeFor returns the appropriate exit code for an error.
// It uses errors.Is to check wrapped errors, so callers must use fmt.Errorf("%w", err).
func exitCodeFor(err error) int {
	if err == nil {
		return ExitSuccess
	}

	// Browser errors (exit 4)
	if errors.Is(err, proposal.ErrEngineNotFound) ||
		errors.Is(err, proposal.ErrEngineLaunch) ||
		errors.Is(err, proposal.ErrPageLoad) ||
		errors.Is(err, proposal.ErrRenderTimeout) ||
		errors.Is(err, proposal.ErrPDFGeneration) ||
		errors.Is(err, proposal.ErrInvalidArtifact) {
		return ExitBrowser
	}

	// I/O errors (exit 3)
	if errors.Is(err, os.ErrNotExist) ||
		errors.Is(err, os.ErrPermission) ||
		errors.Is(err, ErrReadInput) ||
		errors.Is(err, ErrWriteOutput) {
		return ExitIO
	}

	// Usage/config/validation errors (exit 2)
	if errors.Is(err, ErrUsage) ||
		errors.Is(err, config.ErrConfigNotFound) ||
		errors.Is(err, config.ErrConfigParse) ||
		errors.Is(err, config.ErrFieldTooLong) ||
		errors.Is(err, config.ErrInvalidValue) ||
		errors.Is(err, logging.ErrInvalidLevel) ||
		errors.Is(err, proposal.ErrInvalidInput) ||
		errors.Is(err, proposal.ErrMarkupRender) {
		return ExitUsage
	}

	return ExitGeneral
}
