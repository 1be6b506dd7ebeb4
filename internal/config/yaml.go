package config

import (
	"errors"
	"fmt"

	"github.com/goccy/go-yaml"
)

// MaxInputSize limits YAML input to prevent memory exhaustion (1MB).
const MaxInputSize = 1 << 20

var (
	errEmptyData     = errors.New("empty config data")
	errInputTooLarge = errors.New("config exceeds maximum size")
)

// unmarshalStrict decodes data into v, rejecting unknown fields so typos in
// key names surface instead of silently keeping defaults.
func unmarshalStrict(data []byte, v any) error {
	if len(data) == 0 {
		return errEmptyData
	}
	if len(data) > MaxInputSize {
		return fmt.Errorf("%w: %d bytes (max %d)", errInputTooLarge, len(data), MaxInputSize)
	}
	return yaml.UnmarshalWithOptions(data, v, yaml.Strict())
}

// Marshal encodes cfg as YAML, for `proposald doctor` and config templates.
func Marshal(cfg *Config) ([]byte, error) {
	b, err := yaml.Marshal(cfg)
	if err != nil {
		return nil, fmt.Errorf("encoding config: %w", err)
	}
	return b, nil
}
