package proposal

import (
	"errors"
	"fmt"
	"time"

	"github.com/alnah/go-proposal/internal/hints"
	"github.com/alnah/go-proposal/internal/markup"
	"github.com/alnah/go-proposal/internal/pricing"
)

// Sentinel errors for library operations.
var (
	// ErrInvalidInput marks a request payload of the wrong shape. It is the
	// only client-caused failure.
	ErrInvalidInput = pricing.ErrInvalidInput

	// ErrMarkupRender marks a page template that failed to compile or execute.
	ErrMarkupRender = markup.ErrRender

	ErrEmptyMarkup     = errors.New("markup cannot be empty")
	ErrEngineNotFound  = errors.New("browser executable not found")
	ErrEngineLaunch    = errors.New("failed to launch browser")
	ErrPageLoad        = errors.New("failed to load page")
	ErrRenderTimeout   = errors.New("render timed out")
	ErrPDFGeneration   = errors.New("PDF generation failed")
	ErrInvalidArtifact = errors.New("generated output is not a PDF")
	ErrPoolClosed      = errors.New("render pool closed")
)

// PhaseError records which render phase failed and the budget it ran under.
type PhaseError struct {
	Phase  string
	Budget time.Duration
	Err    error
}

func (e *PhaseError) Error() string {
	return fmt.Sprintf("%s phase: %v", e.Phase, e.Err)
}

func (e *PhaseError) Unwrap() error {
	return e.Err
}

// FailedPhase returns the render phase recorded in err, or "".
func FailedPhase(err error) string {
	var pe *PhaseError
	if errors.As(err, &pe) {
		return pe.Phase
	}
	return ""
}

// Hint returns an operator hint for err, formatted for appending to an error
// message, or "" when there is nothing useful to add.
func Hint(err error) string {
	switch {
	case errors.Is(err, ErrEngineNotFound):
		return hints.ForEngineNotFound()
	case errors.Is(err, ErrEngineLaunch):
		return hints.ForEngineLaunch()
	case errors.Is(err, ErrRenderTimeout):
		return hints.ForTimeout()
	case errors.Is(err, ErrInvalidArtifact):
		return hints.ForInvalidArtifact()
	default:
		return ""
	}
}
