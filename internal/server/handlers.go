package server

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	proposal "github.com/alnah/go-proposal"
	"github.com/alnah/go-proposal/internal/logging"
)

// errorResponse is the JSON body of every failed request.
type errorResponse struct {
	Error     string `json:"error"`
	Details   string `json:"details,omitempty"`
	Hint      string `json:"hint,omitempty"`
	RequestID string `json:"requestId,omitempty"`
}

type previewResponse struct {
	Markup string          `json:"markup"`
	Model  *proposal.Model `json:"model"`
}

func writeError(c *gin.Context, status int, msg, details, hint string) {
	c.AbortWithStatusJSON(status, errorResponse{
		Error:     msg,
		Details:   details,
		Hint:      strings.TrimPrefix(hint, "\n  hint: "),
		RequestID: c.GetString(requestIDKey),
	})
}

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// readInput decodes the request body, writing the error response itself when
// the body is unusable.
func (s *Server) readInput(c *gin.Context) (proposal.Input, bool) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(c, http.StatusRequestEntityTooLarge, "payload too large",
				"body exceeds "+strconv.FormatInt(tooLarge.Limit, 10)+" bytes", "")
			return proposal.Input{}, false
		}
		writeError(c, http.StatusBadRequest, "invalid input", "reading body: "+err.Error(), "")
		return proposal.Input{}, false
	}

	in, err := proposal.DecodeInput(body)
	if err != nil {
		writeError(c, http.StatusBadRequest, "invalid input", err.Error(), "")
		return proposal.Input{}, false
	}
	return in, true
}

func (s *Server) preview(c *gin.Context) {
	in, ok := s.readInput(c)
	if !ok {
		return
	}

	res, err := s.svc.Preview(c.Request.Context(), in)
	if err != nil {
		// Templating failures are client errors on this route only.
		if errors.Is(err, proposal.ErrMarkupRender) {
			writeError(c, http.StatusBadRequest, "preview failed", err.Error(), "")
			return
		}
		s.fail(c, "preview failed", err)
		return
	}
	c.JSON(http.StatusOK, previewResponse{Markup: res.Markup, Model: res.Model})
}

func (s *Server) document(c *gin.Context) {
	in, ok := s.readInput(c)
	if !ok {
		return
	}

	res, err := s.svc.Document(c.Request.Context(), in)
	if err != nil {
		s.fail(c, "PDF generation failed", err)
		return
	}

	c.Header("Content-Disposition", `attachment; filename="`+res.FileName+`"`)
	c.Header("Content-Length", strconv.Itoa(len(res.PDF)))
	c.Header("Cache-Control", "no-store")
	c.Data(http.StatusOK, "application/pdf", res.PDF)
}

// fail maps err to a status and writes the envelope. Render failures carry
// the error text and an operator hint but never a stack.
func (s *Server) fail(c *gin.Context, msg string, err error) {
	status := statusFor(c.Request.Context(), err)
	log := logging.FromContext(c.Request.Context(), s.logger)

	switch status {
	case http.StatusServiceUnavailable:
		log.Info("request abandoned by client", zap.Error(err))
		writeError(c, status, "request cancelled", err.Error(), "")
	case http.StatusBadRequest:
		writeError(c, status, "invalid input", err.Error(), "")
	default:
		log.Error(msg, zap.Error(err), zap.String("phase", proposal.FailedPhase(err)))
		writeError(c, status, msg, err.Error(), proposal.Hint(err))
	}
}

// statusFor maps err to a status: bad payloads are 400, a caller that went
// away is 503, and everything else is the server's fault.
func statusFor(ctx context.Context, err error) int {
	switch {
	case errors.Is(err, proposal.ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, context.Canceled) && ctx.Err() != nil:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
