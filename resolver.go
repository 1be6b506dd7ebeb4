package proposal

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"strings"
	"sync/atomic"

	"github.com/go-rod/rod/lib/launcher"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/alnah/go-proposal/internal/fileutil"
)

// ExecutableResolver locates the browser binary used for rendering.
type ExecutableResolver interface {
	Resolve(ctx context.Context) (string, error)
}

// ResolveStrategy is one named source of candidate browser paths.
type ResolveStrategy struct {
	Name string
	Find func(ctx context.Context) (string, error)
}

// errSkipped marks a strategy that has nothing to offer in this setup.
var errSkipped = errors.New("not configured")

// Resolver tries its strategies in order and remembers the first path that
// checks out. Failures are not remembered, so a browser installed while the
// process runs is picked up on the next call.
type Resolver struct {
	strategies []ResolveStrategy
	check      func(path string) error
	logger     *zap.Logger

	cached atomic.Pointer[string]
	group  singleflight.Group
}

// NewResolver creates a Resolver over strategies, tried in the given order.
func NewResolver(strategies ...ResolveStrategy) *Resolver {
	return &Resolver{
		strategies: strategies,
		check:      fileutil.CheckExecutable,
		logger:     zap.NewNop(),
	}
}

// WithLogger sets the resolver's logger and returns r.
func (r *Resolver) WithLogger(l *zap.Logger) *Resolver {
	if l != nil {
		r.logger = l
	}
	return r
}

// Resolve returns the memoized path or runs the strategies. Concurrent first
// calls share one lookup.
func (r *Resolver) Resolve(ctx context.Context) (string, error) {
	if p := r.cached.Load(); p != nil {
		return *p, nil
	}

	ch := r.group.DoChan("resolve", func() (any, error) {
		// Detached so one caller's cancellation does not fail the others.
		return r.lookup(context.WithoutCancel(ctx))
	})

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return "", res.Err
		}
		path := res.Val.(string)
		// First write wins; a racing success with another path is discarded.
		r.cached.CompareAndSwap(nil, &path)
		return *r.cached.Load(), nil
	}
}

// Attempt is the outcome of one strategy.
type Attempt struct {
	Strategy string `json:"strategy"`
	Path     string `json:"path,omitempty"`
	Err      error  `json:"-"`
}

// Probe runs every strategy without memoizing, for diagnostics.
func (r *Resolver) Probe(ctx context.Context) []Attempt {
	attempts := make([]Attempt, 0, len(r.strategies))
	for _, s := range r.strategies {
		attempts = append(attempts, r.try(ctx, s))
	}
	return attempts
}

func (r *Resolver) lookup(ctx context.Context) (string, error) {
	reasons := make([]string, 0, len(r.strategies))
	for _, s := range r.strategies {
		a := r.try(ctx, s)
		if a.Err == nil {
			r.logger.Info("browser executable resolved",
				zap.String("strategy", a.Strategy),
				zap.String("path", a.Path))
			return a.Path, nil
		}
		r.logger.Debug("browser strategy failed",
			zap.String("strategy", a.Strategy),
			zap.Error(a.Err))
		reasons = append(reasons, fmt.Sprintf("%s: %v", a.Strategy, a.Err))
	}
	if len(reasons) == 0 {
		reasons = append(reasons, "no strategies configured")
	}
	return "", fmt.Errorf("%w (tried %s)", ErrEngineNotFound, strings.Join(reasons, "; "))
}

func (r *Resolver) try(ctx context.Context, s ResolveStrategy) Attempt {
	a := Attempt{Strategy: s.Name}
	if err := ctx.Err(); err != nil {
		a.Err = err
		return a
	}
	path, err := s.Find(ctx)
	if err != nil {
		a.Err = err
		return a
	}
	if err := r.check(path); err != nil {
		a.Path = path
		a.Err = err
		return a
	}
	a.Path = path
	return a
}

// ResolverConfig feeds the default strategies.
type ResolverConfig struct {
	// BinPath is the operator override, already merged from config and env.
	BinPath string
	// CacheDir is where go-rod keeps managed browser downloads. Empty uses
	// go-rod's default location.
	CacheDir string
	// AutoDownload lets the last strategy fetch Chromium into CacheDir.
	AutoDownload bool
}

// DefaultStrategies returns override, managed, system, and download, in that
// trust order.
func DefaultStrategies(cfg ResolverConfig) []ResolveStrategy {
	return []ResolveStrategy{
		OverrideStrategy(cfg.BinPath),
		ManagedStrategy(cfg.CacheDir),
		SystemStrategy(),
		DownloadStrategy(cfg.CacheDir, cfg.AutoDownload),
	}
}

// NewDefaultResolver builds a Resolver over DefaultStrategies.
func NewDefaultResolver(cfg ResolverConfig, logger *zap.Logger) *Resolver {
	return NewResolver(DefaultStrategies(cfg)...).WithLogger(logger)
}

// OverrideStrategy returns the explicitly configured path.
func OverrideStrategy(binPath string) ResolveStrategy {
	return ResolveStrategy{
		Name: "override",
		Find: func(context.Context) (string, error) {
			if strings.TrimSpace(binPath) == "" {
				return "", errSkipped
			}
			return strings.TrimSpace(binPath), nil
		},
	}
}

// ManagedStrategy returns the path where go-rod installs its own Chromium.
func ManagedStrategy(cacheDir string) ResolveStrategy {
	return ResolveStrategy{
		Name: "managed",
		Find: func(context.Context) (string, error) {
			return managedBrowser(cacheDir).BinPath(), nil
		},
	}
}

// SystemStrategy searches PATH and the usual install locations.
func SystemStrategy() ResolveStrategy {
	return ResolveStrategy{
		Name: "system",
		Find: func(context.Context) (string, error) {
			if p, ok := launcher.LookPath(); ok {
				return p, nil
			}
			for _, p := range wellKnownPaths[runtime.GOOS] {
				if fileutil.CheckExecutable(p) == nil {
					return p, nil
				}
			}
			return "", errors.New("no browser on PATH or in standard locations")
		},
	}
}

// DownloadStrategy fetches Chromium through go-rod when enabled.
func DownloadStrategy(cacheDir string, enabled bool) ResolveStrategy {
	return ResolveStrategy{
		Name: "download",
		Find: func(ctx context.Context) (string, error) {
			if !enabled {
				return "", errors.New("disabled (browser.autoDownload)")
			}
			b := managedBrowser(cacheDir)
			b.Context = ctx
			return b.Get()
		},
	}
}

func managedBrowser(cacheDir string) *launcher.Browser {
	b := launcher.NewBrowser()
	if cacheDir != "" {
		b.RootDir = cacheDir
	}
	return b
}

var wellKnownPaths = map[string][]string{
	"linux": {
		"/usr/bin/chromium",
		"/usr/bin/chromium-browser",
		"/usr/bin/google-chrome",
		"/usr/bin/google-chrome-stable",
		"/snap/bin/chromium",
		"/opt/google/chrome/chrome",
	},
	"darwin": {
		"/Applications/Google Chrome.app/Contents/MacOS/Google Chrome",
		"/Applications/Chromium.app/Contents/MacOS/Chromium",
	},
	"windows": {
		`C:\Program Files\Google\Chrome\Application\chrome.exe`,
		`C:\Program Files (x86)\Google\Chrome\Application\chrome.exe`,
	},
}

// Compile-time interface check.
var _ ExecutableResolver = (*Resolver)(nil)
