// Package config loads the proposald settings from YAML and the environment.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/alnah/go-proposal/internal/assets"
)

// Sentinel errors for config operations.
var (
	ErrConfigNotFound = errors.New("config file not found")
	ErrConfigParse    = errors.New("failed to parse config")
	ErrFieldTooLong   = errors.New("field exceeds maximum length")
	ErrInvalidValue   = errors.New("invalid config value")
)

// Environment variables read by ApplyEnv. EnvConfigPath is resolved by the
// CLI before loading.
const (
	EnvConfigPath        = "PROPOSAL_CONFIG"
	EnvPort              = "PORT"
	EnvBrowserBin        = "PROPOSAL_BROWSER_BIN"
	EnvRodBrowserBin     = "ROD_BROWSER_BIN"
	EnvBrowserCacheDir   = "PROPOSAL_BROWSER_CACHE_DIR"
	EnvExternalURL       = "PROPOSAL_EXTERNAL_URL"
	EnvRenderExternalURL = "RENDER_EXTERNAL_URL"
	EnvLogLevel          = "PROPOSAL_LOG_LEVEL"
)

// Field limits.
const (
	MaxPathLength       = 4096
	MaxURLLength        = 2048 // Browser limit
	MaxAddrLength       = 256
	MaxDateFormatLength = 30 // "MMMM D, YYYY" or a preset name
	MaxWorkers          = 64
	MaxBodyBytesLimit   = 64 << 20
	MaxTimeout          = 10 * time.Minute
)

// Default values.
const (
	DefaultAddr         = ":3000"
	DefaultMaxBodyBytes = 2 << 20
	DefaultTimeout      = 120 * time.Second
	DefaultFontGrace    = 5 * time.Second
	DefaultSettleDelay  = 750 * time.Millisecond
	DefaultLogLevel     = "info"
	DefaultDateFormat   = "long"
)

// Config holds all settings for the proposal service.
type Config struct {
	Server  ServerConfig  `yaml:"server"`
	Browser BrowserConfig `yaml:"browser"`
	Assets  AssetsConfig  `yaml:"assets"`
	Pricing PricingConfig `yaml:"pricing"`
	Log     LogConfig     `yaml:"log"`
}

// ServerConfig defines the HTTP boundary.
type ServerConfig struct {
	Addr          string        `yaml:"addr"`
	MaxBodyBytes  int64         `yaml:"maxBodyBytes"`
	ExternalURL   string        `yaml:"externalURL"`   // Own public origin, allowed while rendering
	ReadTimeout   time.Duration `yaml:"readTimeout"`   // 0 = no limit
	ShutdownGrace time.Duration `yaml:"shutdownGrace"` // In-flight requests may finish within this
}

// BrowserConfig defines how Chrome is found and driven.
type BrowserConfig struct {
	Bin          string        `yaml:"bin"`          // Empty = search
	CacheDir     string        `yaml:"cacheDir"`     // Empty = go-rod default
	AutoDownload bool          `yaml:"autoDownload"` // Fetch Chromium when nothing else is found
	Timeout      time.Duration `yaml:"timeout"`      // Per render phase
	FontGrace    time.Duration `yaml:"fontGrace"`
	SettleDelay  time.Duration `yaml:"settleDelay"`
	Workers      int           `yaml:"workers"` // 0 = GOMAXPROCS/2, clamped
}

// AssetsConfig defines page template loading.
type AssetsConfig struct {
	BasePath string `yaml:"basePath"` // Empty = use embedded assets
	Template string `yaml:"template"` // Empty = "proposal"
	Style    string `yaml:"style"`    // Empty = "proposal"
}

// PricingConfig defines quote presentation.
type PricingConfig struct {
	DateFormat string `yaml:"dateFormat"` // dateutil preset or token layout
}

// LogConfig defines logger construction.
type LogConfig struct {
	Level       string `yaml:"level"`       // debug, info, warn, error
	Development bool   `yaml:"development"` // Console encoder, stack traces on warn
}

// DefaultConfig returns the settings used when no file is given.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Addr:          DefaultAddr,
			MaxBodyBytes:  DefaultMaxBodyBytes,
			ShutdownGrace: 30 * time.Second,
		},
		Browser: BrowserConfig{
			Timeout:     DefaultTimeout,
			FontGrace:   DefaultFontGrace,
			SettleDelay: DefaultSettleDelay,
		},
		Pricing: PricingConfig{DateFormat: DefaultDateFormat},
		Log:     LogConfig{Level: DefaultLogLevel},
	}
}

// Validate checks limits and ranges. Called automatically by Load, but
// available for callers who build a Config by hand.
func (c *Config) Validate() error {
	if err := validateFieldLength("server.addr", c.Server.Addr, MaxAddrLength); err != nil {
		return err
	}
	if c.Server.Addr == "" {
		return fmt.Errorf("%w: server.addr is empty", ErrInvalidValue)
	}
	if c.Server.MaxBodyBytes <= 0 || c.Server.MaxBodyBytes > MaxBodyBytesLimit {
		return fmt.Errorf("%w: server.maxBodyBytes must be in (0, %d], got %d", ErrInvalidValue, MaxBodyBytesLimit, c.Server.MaxBodyBytes)
	}
	if err := validateExternalURL(c.Server.ExternalURL); err != nil {
		return err
	}
	if c.Server.ReadTimeout < 0 || c.Server.ShutdownGrace < 0 {
		return fmt.Errorf("%w: server timeouts must not be negative", ErrInvalidValue)
	}

	if err := validateFieldLength("browser.bin", c.Browser.Bin, MaxPathLength); err != nil {
		return err
	}
	if err := validateFieldLength("browser.cacheDir", c.Browser.CacheDir, MaxPathLength); err != nil {
		return err
	}
	if c.Browser.Timeout <= 0 || c.Browser.Timeout > MaxTimeout {
		return fmt.Errorf("%w: browser.timeout must be in (0, %s], got %s", ErrInvalidValue, MaxTimeout, c.Browser.Timeout)
	}
	if c.Browser.FontGrace < 0 || c.Browser.FontGrace > c.Browser.Timeout {
		return fmt.Errorf("%w: browser.fontGrace must be in [0, browser.timeout], got %s", ErrInvalidValue, c.Browser.FontGrace)
	}
	if c.Browser.SettleDelay < 0 {
		return fmt.Errorf("%w: browser.settleDelay must not be negative", ErrInvalidValue)
	}
	if c.Browser.Workers < 0 || c.Browser.Workers > MaxWorkers {
		return fmt.Errorf("%w: browser.workers must be between 0 and %d, got %d", ErrInvalidValue, MaxWorkers, c.Browser.Workers)
	}

	if err := validateFieldLength("assets.basePath", c.Assets.BasePath, MaxPathLength); err != nil {
		return err
	}
	if err := validateAssetName("assets.template", c.Assets.Template); err != nil {
		return err
	}
	if err := validateAssetName("assets.style", c.Assets.Style); err != nil {
		return err
	}

	if err := validateFieldLength("pricing.dateFormat", c.Pricing.DateFormat, MaxDateFormatLength); err != nil {
		return err
	}

	switch strings.ToLower(c.Log.Level) {
	case "", "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("%w: log.level must be debug, info, warn, or error, got %q", ErrInvalidValue, c.Log.Level)
	}
	return nil
}

func validateExternalURL(raw string) error {
	if raw == "" {
		return nil
	}
	if err := validateFieldLength("server.externalURL", raw, MaxURLLength); err != nil {
		return err
	}
	u, err := url.Parse(raw)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("%w: server.externalURL must be an absolute http(s) URL, got %q", ErrInvalidValue, raw)
	}
	return nil
}

func validateAssetName(field, name string) error {
	if name == "" {
		return nil
	}
	if err := assets.ValidateAssetName(name); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrInvalidValue, field, err)
	}
	return nil
}

// validateFieldLength checks if a field exceeds its maximum allowed length.
func validateFieldLength(fieldName, value string, maxLength int) error {
	if len(value) > maxLength {
		return fmt.Errorf("%w: %s (%d chars, max %d)", ErrFieldTooLong, fieldName, len(value), maxLength)
	}
	return nil
}

// Load builds the effective configuration: defaults, then the file at
// nameOrPath (if any), then the environment. Returns error if a named file is
// not found (no silent fallback).
func Load(nameOrPath string, getenv func(string) string) (*Config, error) {
	cfg := DefaultConfig()

	if nameOrPath != "" {
		path := nameOrPath
		if !isFilePath(nameOrPath) {
			var err error
			if path, err = resolveConfigPath(nameOrPath); err != nil {
				return nil, err
			}
		}

		data, err := os.ReadFile(path) // #nosec G304 -- config path is operator-provided
		if err != nil {
			if os.IsNotExist(err) {
				return nil, fmt.Errorf("%w: %s", ErrConfigNotFound, path)
			}
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		if err := unmarshalStrict(data, cfg); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrConfigParse, err)
		}
	}

	if getenv != nil {
		cfg.ApplyEnv(getenv)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ApplyEnv overlays environment variables. Unset or blank variables leave the
// current value alone.
func (c *Config) ApplyEnv(getenv func(string) string) {
	env := func(key string) string { return strings.TrimSpace(getenv(key)) }

	if port := env(EnvPort); port != "" {
		c.Server.Addr = ":" + strings.TrimPrefix(port, ":")
	}
	if bin := env(EnvBrowserBin); bin != "" {
		c.Browser.Bin = bin
	} else if bin := env(EnvRodBrowserBin); bin != "" && c.Browser.Bin == "" {
		c.Browser.Bin = bin
	}
	if dir := env(EnvBrowserCacheDir); dir != "" {
		c.Browser.CacheDir = dir
	}
	if u := env(EnvExternalURL); u != "" {
		c.Server.ExternalURL = u
	} else if u := env(EnvRenderExternalURL); u != "" && c.Server.ExternalURL == "" {
		c.Server.ExternalURL = u
	}
	if lvl := env(EnvLogLevel); lvl != "" {
		c.Log.Level = lvl
	}
}

// isFilePath returns true if the string looks like a file path.
func isFilePath(s string) bool {
	return strings.ContainsAny(s, "/\\") || strings.HasSuffix(s, ".yaml") || strings.HasSuffix(s, ".yml")
}

// resolveConfigPath searches for a config file by name in standard locations.
// Tries extensions in order: .yaml, .yml
// Tries locations in order: current directory, ~/.config/go-proposal/
func resolveConfigPath(name string) (string, error) {
	extensions := []string{".yaml", ".yml"}
	triedPaths := make([]string, 0, len(extensions)*2) // 2 locations

	for _, ext := range extensions {
		localPath := name + ext
		if fileExists(localPath) {
			return localPath, nil
		}
		triedPaths = append(triedPaths, localPath)
	}

	userConfigDir, err := os.UserConfigDir()
	if err == nil {
		for _, ext := range extensions {
			userPath := filepath.Join(userConfigDir, "go-proposal", name+ext)
			if fileExists(userPath) {
				return userPath, nil
			}
			triedPaths = append(triedPaths, userPath)
		}
	}

	return "", fmt.Errorf("%w: tried %s", ErrConfigNotFound, strings.Join(triedPaths, ", "))
}

// fileExists returns true if the path exists and is a regular file.
func fileExists(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return !info.IsDir()
}
