package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	proposal "github.com/alnah/go-proposal"
)

const sampleInput = `{"clientName":"Splash Kingdom","product":"both","maps":[{"name":"Park"},{"name":"Slides"},{"name":"Food"}]}`

func writeInput(t *testing.T, dir, body string) string {
	t.Helper()
	path := filepath.Join(dir, "in.json")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

// ---------------------------------------------------------------------------
// TestRender - PDF and HTML output files
// ---------------------------------------------------------------------------

func TestRender(t *testing.T) {
	t.Parallel()

	te := newTestEnv(t)
	dir := t.TempDir()
	in := writeInput(t, dir, sampleInput)
	out := filepath.Join(dir, "quote.pdf")
	html := filepath.Join(dir, "quote.html")

	code := runMain(context.Background(), []string{"render", "-i", in, "-o", out, "--html", html}, te.Environment)
	if code != ExitSuccess {
		t.Fatalf("exit code = %d, stderr: %s", code, te.stderr)
	}

	pdf, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("reading output: %v", err)
	}
	if !bytes.HasPrefix(pdf, []byte("%PDF-")) {
		t.Errorf("output is not the rendered PDF: %q", pdf)
	}
	markup, err := os.ReadFile(html)
	if err != nil {
		t.Fatalf("reading html: %v", err)
	}
	if string(markup) != "<p>Splash Kingdom</p>" {
		t.Errorf("html = %q", markup)
	}
	if !strings.Contains(te.stdout.String(), "$43,500") {
		t.Errorf("summary missing total: %s", te.stdout)
	}
	if !te.svc.isClosed() {
		t.Error("service not closed")
	}
}

func TestRender_Stdin(t *testing.T) {
	t.Parallel()

	te := newTestEnv(t)
	te.Stdin = strings.NewReader(sampleInput)
	out := filepath.Join(t.TempDir(), "x.pdf")

	if code := runMain(context.Background(), []string{"render", "-o", out}, te.Environment); code != ExitSuccess {
		t.Fatalf("exit code = %d, stderr: %s", code, te.stderr)
	}
	if _, err := os.Stat(out); err != nil {
		t.Errorf("output missing: %v", err)
	}
}

func TestRender_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		input      string
		output     string
		renderErr  error
		wantCode   int
		wantStderr string
	}{
		{
			name:       "invalid json",
			input:      `[1,2]`,
			wantCode:   ExitUsage,
			wantStderr: "invalid proposal input",
		},
		{
			name:       "browser missing",
			input:      `{}`,
			renderErr:  &proposal.PhaseError{Phase: proposal.PhaseResolve, Err: proposal.ErrEngineNotFound},
			wantCode:   ExitBrowser,
			wantStderr: "hint:",
		},
		{
			name:       "render timeout",
			input:      `{}`,
			renderErr:  fmt.Errorf("rendering PDF: %w", proposal.ErrRenderTimeout),
			wantCode:   ExitBrowser,
			wantStderr: "render timed out",
		},
		{
			name:       "unwritable output",
			input:      `{}`,
			output:     "/nonexistent-dir/out.pdf",
			wantCode:   ExitIO,
			wantStderr: "check parent directory",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			te := newTestEnv(t)
			te.svc.documentErr = tt.renderErr
			dir := t.TempDir()
			out := tt.output
			if out == "" {
				out = filepath.Join(dir, "out.pdf")
			}

			code := runMain(context.Background(),
				[]string{"render", "-i", writeInput(t, dir, tt.input), "-o", out}, te.Environment)

			if code != tt.wantCode {
				t.Errorf("exit code = %d, want %d (stderr: %s)", code, tt.wantCode, te.stderr)
			}
			if !strings.Contains(te.stderr.String(), tt.wantStderr) {
				t.Errorf("stderr missing %q:\n%s", tt.wantStderr, te.stderr)
			}
		})
	}
}

// ---------------------------------------------------------------------------
// TestQuote - Model JSON on stdout
// ---------------------------------------------------------------------------

func TestQuote(t *testing.T) {
	t.Parallel()

	te := newTestEnv(t)
	te.Stdin = strings.NewReader(sampleInput)

	if code := runMain(context.Background(), []string{"quote"}, te.Environment); code != ExitSuccess {
		t.Fatalf("exit code = %d, stderr: %s", code, te.stderr)
	}

	var model proposal.Model
	if err := json.Unmarshal(te.stdout.Bytes(), &model); err != nil {
		t.Fatalf("stdout is not a model: %v\n%s", err, te.stdout)
	}
	if model.BundleTotal != 43500 {
		t.Errorf("BundleTotal = %v, want 43500", model.BundleTotal)
	}
	if model.MapsCount != 3 {
		t.Errorf("MapsCount = %d, want 3", model.MapsCount)
	}
	if te.svc.documents != 0 {
		t.Error("quote must not render")
	}
}
