package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"runtime"

	"go.uber.org/zap"
)

// doctorResult holds all diagnostic information.
type doctorResult struct {
	Status     string          `json:"status"` // "ready", "warnings", "errors"
	Browser    string          `json:"browser,omitempty"`
	Strategies []strategyCheck `json:"strategies"`
	Env        envInfo         `json:"environment"`
	Warnings   []string        `json:"warnings,omitempty"`
	Errors     []string        `json:"errors,omitempty"`
}

// strategyCheck is one lookup strategy's outcome.
type strategyCheck struct {
	Name  string `json:"name"`
	Path  string `json:"path,omitempty"`
	Error string `json:"error,omitempty"`
}

// envInfo holds environment detection results.
type envInfo struct {
	OS            string `json:"os"`
	Arch          string `json:"arch"`
	Container     bool   `json:"container"`
	ContainerHint string `json:"container_hint,omitempty"`
	NoSandbox     string `json:"rod_no_sandbox"`
	ExternalURL   string `json:"external_url,omitempty"`
}

// runDoctorCmd executes the doctor command and returns an exit code.
// Exit codes: 0 = a browser was found, 4 = none found.
func runDoctorCmd(ctx context.Context, args []string, env *Environment) int {
	flags, err := parseDoctorFlags(args)
	if err != nil {
		fmt.Fprintf(env.Stderr, "error: %v\n", err)
		return ExitUsage
	}
	cfg, err := loadConfig(flags.common, env)
	if err != nil {
		fmt.Fprintf(env.Stderr, "error: %v%s\n", err, hintFor(err))
		return exitCodeFor(err)
	}

	result := runDoctor(ctx, env.NewProber(cfg, zap.NewNop()), env.Getenv)
	result.Env.ExternalURL = cfg.Server.ExternalURL
	if cfg.Server.ExternalURL == "" {
		result.Warnings = append(result.Warnings,
			"No external URL set; the page may not load its own assets. Set PROPOSAL_EXTERNAL_URL")
		if result.Status == "ready" {
			result.Status = "warnings"
		}
	}

	if flags.json {
		enc := json.NewEncoder(env.Stdout)
		enc.SetIndent("", "  ")
		_ = enc.Encode(result)
	} else {
		printDoctorResult(env.Stdout, result)
	}

	if result.Status == "errors" {
		return ExitBrowser
	}
	return ExitSuccess
}

// runDoctor probes every strategy. The first success is the browser a
// render would use.
func runDoctor(ctx context.Context, p Prober, getenv func(string) string) *doctorResult {
	result := &doctorResult{
		Status: "ready",
		Env: envInfo{
			OS:        runtime.GOOS,
			Arch:      runtime.GOARCH,
			NoSandbox: getenv("ROD_NO_SANDBOX"),
		},
	}
	result.Env.Container, result.Env.ContainerHint = isContainer(getenv)

	for _, a := range p.Probe(ctx) {
		check := strategyCheck{Name: a.Strategy, Path: a.Path}
		if a.Err != nil {
			check.Error = a.Err.Error()
		} else if result.Browser == "" {
			result.Browser = a.Path
		}
		result.Strategies = append(result.Strategies, check)
	}

	if result.Browser == "" {
		result.Errors = append(result.Errors,
			"No usable browser. Install Chrome, set PROPOSAL_BROWSER_BIN, or enable browser.autoDownload")
	}
	if result.Env.Container && result.Env.NoSandbox != "1" {
		result.Warnings = append(result.Warnings,
			"Container detected but ROD_NO_SANDBOX not set. Set ROD_NO_SANDBOX=1")
	}

	if len(result.Errors) > 0 {
		result.Status = "errors"
	} else if len(result.Warnings) > 0 {
		result.Status = "warnings"
	}
	return result
}

// isContainer detects if running in a container environment.
// Returns (isContainer, hint) where hint indicates which signal was detected.
func isContainer(getenv func(string) string) (bool, string) {
	if getenv("PROPOSAL_CONTAINER") == "1" {
		return true, "PROPOSAL_CONTAINER=1"
	}
	if _, err := os.Stat("/.dockerenv"); err == nil {
		return true, "/.dockerenv"
	}
	if v := getenv("container"); v != "" {
		return true, "container=" + v
	}
	if getenv("KUBERNETES_SERVICE_HOST") != "" {
		return true, "KUBERNETES_SERVICE_HOST"
	}
	return false, ""
}

// printDoctorResult outputs human-readable diagnostic results.
func printDoctorResult(w io.Writer, r *doctorResult) {
	fmt.Fprintln(w, "proposald doctor")
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Browser lookup")
	for _, s := range r.Strategies {
		if s.Error == "" {
			fmt.Fprintf(w, "  [OK]   %-9s %s\n", s.Name, s.Path)
		} else {
			fmt.Fprintf(w, "  [--]   %-9s %s\n", s.Name, s.Error)
		}
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Environment")
	fmt.Fprintf(w, "  [OK] Platform: %s/%s\n", r.Env.OS, r.Env.Arch)
	if r.Env.Container {
		fmt.Fprintf(w, "  [OK] Container: detected (%s)\n", r.Env.ContainerHint)
	}
	if r.Env.ExternalURL != "" {
		fmt.Fprintf(w, "  [OK] External URL: %s\n", r.Env.ExternalURL)
	}
	fmt.Fprintln(w)

	if len(r.Warnings) > 0 {
		fmt.Fprintln(w, "Warnings:")
		for _, warn := range r.Warnings {
			fmt.Fprintf(w, "  [WARN] %s\n", warn)
		}
		fmt.Fprintln(w)
	}
	if len(r.Errors) > 0 {
		fmt.Fprintln(w, "Errors:")
		for _, err := range r.Errors {
			fmt.Fprintf(w, "  [ERROR] %s\n", err)
		}
		fmt.Fprintln(w)
	}

	switch r.Status {
	case "ready":
		fmt.Fprintln(w, "Status: Ready to render")
	case "warnings":
		fmt.Fprintln(w, "Status: Ready with warnings")
	case "errors":
		fmt.Fprintln(w, "Status: Not ready (see errors above)")
	}
}
