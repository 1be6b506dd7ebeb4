package assets

import "fmt"

// MaxAssetNameLength bounds asset names.
const MaxAssetNameLength = 64

// ValidateAssetName checks that an asset name is safe for use as a filename.
// Only ASCII letters, digits, '-' and '_' are allowed, which rules out path
// separators, traversal sequences, and extension manipulation.
func ValidateAssetName(name string) error {
	if name == "" {
		return fmt.Errorf("%w: empty name", ErrInvalidAssetName)
	}
	if len(name) > MaxAssetNameLength {
		return fmt.Errorf("%w: longer than %d characters", ErrInvalidAssetName, MaxAssetNameLength)
	}
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
		default:
			return fmt.Errorf("%w: %q", ErrInvalidAssetName, name)
		}
	}
	return nil
}
