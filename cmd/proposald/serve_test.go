package main

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"
	"testing"
	"time"

	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/alnah/go-proposal/internal/config"
)

// waitForAddr polls the logs until the server reports its bound address.
func waitForAddr(t *testing.T, te *testEnv) string {
	t.Helper()

	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		if entries := te.logs.FilterMessage("http server listening").All(); len(entries) > 0 {
			return entries[0].ContextMap()["addr"].(string)
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal("server never reported its address")
	return ""
}

// ---------------------------------------------------------------------------
// TestServe - Start, handle requests, drain on cancel
// ---------------------------------------------------------------------------

func TestServe(t *testing.T) {
	t.Parallel()

	te := newTestEnv(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan int, 1)
	go func() {
		done <- runMain(ctx, []string{"serve", "--addr", "127.0.0.1:0"}, te.Environment)
	}()

	base := "http://" + waitForAddr(t, te)
	client := &http.Client{Transport: &http.Transport{DisableKeepAlives: true}, Timeout: 5 * time.Second}

	resp, err := client.Get(base + "/healthz")
	if err != nil {
		t.Fatalf("GET /healthz: %v", err)
	}
	_ = resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("healthz status = %d", resp.StatusCode)
	}

	resp, err = client.Post(base+"/api/document", "application/json", strings.NewReader(`{"clientName":"Acme"}`))
	if err != nil {
		t.Fatalf("POST /api/document: %v", err)
	}
	body, _ := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	if resp.StatusCode != http.StatusOK || !strings.HasPrefix(string(body), "%PDF-") {
		t.Errorf("document status = %d, body = %q", resp.StatusCode, body)
	}
	if got := resp.Header.Get("Content-Disposition"); got != `attachment; filename="acme.pdf"` {
		t.Errorf("Content-Disposition = %q", got)
	}

	cancel()
	select {
	case code := <-done:
		if code != ExitSuccess {
			t.Errorf("exit code = %d, stderr: %s", code, te.stderr)
		}
	case <-time.After(10 * time.Second):
		t.Fatal("serve did not stop after cancel")
	}
	if !te.svc.isClosed() {
		t.Error("service not closed on shutdown")
	}
	if te.logs.FilterMessage("http server draining").Len() != 1 {
		t.Error("expected a drain log line")
	}
}

func TestServe_ListenFailure(t *testing.T) {
	t.Parallel()

	te := newTestEnv(t)
	code := runMain(context.Background(), []string{"serve", "--addr", "256.0.0.1:99999"}, te.Environment)

	if code != ExitGeneral {
		t.Errorf("exit code = %d, want %d", code, ExitGeneral)
	}
	if !strings.Contains(te.stderr.String(), "starting server") {
		t.Errorf("stderr = %s", te.stderr)
	}
}

func TestServe_ServiceFailure(t *testing.T) {
	t.Parallel()

	te := newTestEnv(t)
	te.NewService = func(*config.Config, *zap.Logger) (Service, error) {
		return nil, errors.New("assets missing")
	}

	code := runMain(context.Background(), []string{"serve", "--addr", "127.0.0.1:0"}, te.Environment)
	if code != ExitGeneral {
		t.Errorf("exit code = %d, want %d", code, ExitGeneral)
	}
	if !strings.Contains(te.stderr.String(), "assets missing") {
		t.Errorf("stderr = %s", te.stderr)
	}
}

// ---------------------------------------------------------------------------
// TestAppOptions - Dependency graph is complete
// ---------------------------------------------------------------------------

func TestAppOptions(t *testing.T) {
	t.Parallel()

	te := newTestEnv(t)
	if err := fx.ValidateApp(appOptions(config.DefaultConfig(), te.Environment)); err != nil {
		t.Fatalf("invalid fx graph: %v", err)
	}
}
