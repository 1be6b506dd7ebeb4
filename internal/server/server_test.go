package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	proposal "github.com/alnah/go-proposal"
	"github.com/alnah/go-proposal/internal/pricing"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// stubService implements Service for testing.
type stubService struct {
	previewErr  error
	documentErr error
	pdf         []byte
	panicWith   any
	got         proposal.Input
}

func (s *stubService) Preview(ctx context.Context, in proposal.Input) (*proposal.PreviewResult, error) {
	s.got = in
	if s.panicWith != nil {
		panic(s.panicWith)
	}
	if s.previewErr != nil {
		return nil, s.previewErr
	}
	m := pricing.Compute(in)
	return &proposal.PreviewResult{Model: m, Markup: "<html>" + m.ClientName + "</html>"}, nil
}

func (s *stubService) Document(ctx context.Context, in proposal.Input) (*proposal.DocumentResult, error) {
	s.got = in
	if s.documentErr != nil {
		return nil, s.documentErr
	}
	m := pricing.Compute(in)
	return &proposal.DocumentResult{
		Model:    m,
		PDF:      s.pdf,
		FileName: proposal.AttachmentName(m.ClientName),
	}, nil
}

var _ Service = (*stubService)(nil)

func newTestServer(svc Service, maxBody int64) (*Server, *observer.ObservedLogs) {
	core, logs := observer.New(zapcore.DebugLevel)
	return New(svc, Config{MaxBodyBytes: maxBody}, zap.New(core)), logs
}

func do(t *testing.T, s *Server, method, path, body string, headers ...string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)
	return w
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) errorResponse {
	t.Helper()

	var resp errorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp), "body: %s", w.Body.String())
	return resp
}

func TestHealthz(t *testing.T) {
	t.Parallel()

	s, _ := newTestServer(&stubService{}, 0)
	w := do(t, s, http.MethodGet, "/healthz", "")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
	assert.NotEmpty(t, w.Header().Get(HeaderRequestID))
}

// ---------------------------------------------------------------------------
// TestPreview - POST /api/preview
// ---------------------------------------------------------------------------

func TestPreview(t *testing.T) {
	t.Parallel()

	svc := &stubService{}
	s, _ := newTestServer(svc, 0)

	w := do(t, s, http.MethodPost, "/api/preview",
		`{"clientName":"Splash Kingdom","product":"both","maps":[{"name":"Park"},{"name":"Slides"},{"name":"Food"}]}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp struct {
		Markup string         `json:"markup"`
		Model  map[string]any `json:"model"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "<html>Splash Kingdom</html>", resp.Markup)
	assert.Equal(t, 43500.0, resp.Model["bundleTotal"])
	assert.Equal(t, "Splash Kingdom", svc.got.ClientName)
	assert.Len(t, svc.got.Maps, 3)
}

func TestPreview_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		body       string
		svc        *stubService
		wantStatus int
		wantError  string
	}{
		{
			name:       "array body",
			body:       `[1,2,3]`,
			wantStatus: http.StatusBadRequest,
			wantError:  "invalid input",
		},
		{
			name:       "empty body",
			body:       ``,
			wantStatus: http.StatusBadRequest,
			wantError:  "invalid input",
		},
		{
			name:       "object in number field",
			body:       `{"attendance":{"value":1}}`,
			wantStatus: http.StatusBadRequest,
			wantError:  "invalid input",
		},
		{
			name:       "template failure is a client error",
			body:       `{}`,
			svc:        &stubService{previewErr: fmt.Errorf("%w: missing key", proposal.ErrMarkupRender)},
			wantStatus: http.StatusBadRequest,
			wantError:  "preview failed",
		},
		{
			name:       "unexpected failure",
			body:       `{}`,
			svc:        &stubService{previewErr: errors.New("disk on fire")},
			wantStatus: http.StatusInternalServerError,
			wantError:  "preview failed",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			svc := tt.svc
			if svc == nil {
				svc = &stubService{}
			}
			s, _ := newTestServer(svc, 0)
			w := do(t, s, http.MethodPost, "/api/preview", tt.body, HeaderRequestID, "req-7")

			assert.Equal(t, tt.wantStatus, w.Code)
			resp := decodeError(t, w)
			assert.Equal(t, tt.wantError, resp.Error)
			assert.NotEmpty(t, resp.Details)
			assert.Equal(t, "req-7", resp.RequestID)
		})
	}
}

// ---------------------------------------------------------------------------
// TestDocument - POST /api/document and /api/pdf
// ---------------------------------------------------------------------------

func TestDocument(t *testing.T) {
	t.Parallel()

	for _, path := range []string{"/api/document", "/api/pdf"} {
		t.Run(path, func(t *testing.T) {
			t.Parallel()

			pdf := []byte("%PDF-1.7\nstub")
			s, _ := newTestServer(&stubService{pdf: pdf}, 0)
			w := do(t, s, http.MethodPost, path, `{"clientName":"Wet 'n' Wild!"}`)

			require.Equal(t, http.StatusOK, w.Code, w.Body.String())
			assert.Equal(t, "application/pdf", w.Header().Get("Content-Type"))
			assert.Equal(t, `attachment; filename="wet-n-wild.pdf"`, w.Header().Get("Content-Disposition"))
			assert.Equal(t, fmt.Sprint(len(pdf)), w.Header().Get("Content-Length"))
			assert.Equal(t, "no-store", w.Header().Get("Cache-Control"))
			assert.Equal(t, pdf, w.Body.Bytes())
		})
	}
}

func TestDocument_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantHint   bool
	}{
		{"browser missing", &proposal.PhaseError{Phase: proposal.PhaseResolve, Err: proposal.ErrEngineNotFound}, http.StatusInternalServerError, true},
		{"launch failure", fmt.Errorf("%w: exit 127", proposal.ErrEngineLaunch), http.StatusInternalServerError, true},
		{"timeout", &proposal.PhaseError{Phase: proposal.PhaseSettle, Err: proposal.ErrRenderTimeout}, http.StatusInternalServerError, true},
		{"bad artifact", proposal.ErrInvalidArtifact, http.StatusInternalServerError, true},
		{"page load", proposal.ErrPageLoad, http.StatusInternalServerError, false},
		{"template failure", proposal.ErrMarkupRender, http.StatusInternalServerError, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			s, logs := newTestServer(&stubService{documentErr: tt.err}, 0)
			w := do(t, s, http.MethodPost, "/api/document", `{}`)

			assert.Equal(t, tt.wantStatus, w.Code)
			resp := decodeError(t, w)
			assert.Equal(t, "PDF generation failed", resp.Error)
			assert.Contains(t, resp.Details, tt.err.Error())
			assert.NotContains(t, resp.Details, "goroutine")
			if tt.wantHint {
				assert.NotEmpty(t, resp.Hint)
				assert.False(t, strings.HasPrefix(resp.Hint, "\n"))
			}
			assert.Equal(t, 1, logs.FilterMessage("PDF generation failed").Len())
		})
	}
}

func TestDocument_ClientGone(t *testing.T) {
	t.Parallel()

	s, _ := newTestServer(&stubService{documentErr: context.Canceled}, 0)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	req := httptest.NewRequest(http.MethodPost, "/api/document", strings.NewReader(`{}`)).WithContext(ctx)
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

// ---------------------------------------------------------------------------
// TestMiddleware - Body limit, request id, access log, recovery
// ---------------------------------------------------------------------------

func TestBodyLimit(t *testing.T) {
	t.Parallel()

	s, _ := newTestServer(&stubService{}, 64)
	body := `{"notes":"` + strings.Repeat("x", 200) + `"}`

	w := do(t, s, http.MethodPost, "/api/preview", body)
	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
	assert.Equal(t, "payload too large", decodeError(t, w).Error)

	// Without a declared length the reader cap still applies.
	req := httptest.NewRequest(http.MethodPost, "/api/preview", strings.NewReader(body))
	req.ContentLength = -1
	w = httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)
	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
}

func TestRequestID(t *testing.T) {
	t.Parallel()

	s, _ := newTestServer(&stubService{}, 0)

	w := do(t, s, http.MethodGet, "/healthz", "", HeaderRequestID, "abc-123")
	assert.Equal(t, "abc-123", w.Header().Get(HeaderRequestID))

	w = do(t, s, http.MethodGet, "/healthz", "", HeaderRequestID, "bad id with spaces")
	got := w.Header().Get(HeaderRequestID)
	assert.NotEqual(t, "bad id with spaces", got)
	assert.Len(t, got, 36, "expected a UUID")

	w = do(t, s, http.MethodGet, "/healthz", "", HeaderRequestID, strings.Repeat("a", maxIDLength+1))
	assert.Len(t, w.Header().Get(HeaderRequestID), 36)
}

func TestAccessLog(t *testing.T) {
	t.Parallel()

	s, logs := newTestServer(&stubService{}, 0)
	do(t, s, http.MethodPost, "/api/preview", `{}`, HeaderRequestID, "log-1")
	do(t, s, http.MethodPost, "/api/preview", `nope`)

	entries := logs.FilterMessage("request").All()
	require.Len(t, entries, 2)

	first := entries[0]
	assert.Equal(t, zapcore.InfoLevel, first.Level)
	fields := first.ContextMap()
	assert.Equal(t, "POST", fields["method"])
	assert.Equal(t, "/api/preview", fields["path"])
	assert.Equal(t, int64(200), fields["status"])
	assert.Equal(t, "log-1", fields["request_id"])
	assert.Contains(t, fields, "duration")

	assert.Equal(t, zapcore.WarnLevel, entries[1].Level)
}

func TestRecovery(t *testing.T) {
	t.Parallel()

	s, logs := newTestServer(&stubService{panicWith: "kaboom"}, 0)
	w := do(t, s, http.MethodPost, "/api/preview", `{}`)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	resp := decodeError(t, w)
	assert.Equal(t, "internal error", resp.Error)
	assert.NotContains(t, w.Body.String(), "kaboom")
	assert.Equal(t, 1, logs.FilterMessage("handler panic").Len())
	assert.Equal(t, 1, logs.FilterMessage("request").Len())
}

func TestRouting(t *testing.T) {
	t.Parallel()

	s, _ := newTestServer(&stubService{}, 0)

	w := do(t, s, http.MethodGet, "/api/preview", "")
	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)

	w = do(t, s, http.MethodPost, "/api/unknown", "{}")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "not found", decodeError(t, w).Error)
}
