// Package dateutil turns human date formats ("MMMM D, YYYY", "us", "iso")
// into Go layouts and resolves the prepared-on date printed on proposals.
package dateutil

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrInvalidDateFormat indicates a date format that cannot be turned into a layout.
var ErrInvalidDateFormat = errors.New("invalid date format")

// MaxDateFormatLength bounds operator-supplied formats.
const MaxDateFormatLength = 50

// DefaultFormat matches the long US date used on proposals ("January 2, 2006").
const DefaultFormat = "long"

// Presets are named shortcuts accepted wherever a format is.
var Presets = map[string]string{
	"iso":      "YYYY-MM-DD",
	"us":       "MM/DD/YYYY",
	"european": "DD/MM/YYYY",
	"long":     "MMMM D, YYYY",
	"short":    "MMM D, YYYY",
}

// tokens are matched longest first.
var tokens = []struct {
	token  string
	layout string
}{
	{"YYYY", "2006"},
	{"MMMM", "January"},
	{"MMM", "Jan"},
	{"YY", "06"},
	{"MM", "01"},
	{"DD", "02"},
	{"M", "1"},
	{"D", "2"},
}

// Layout converts a preset name or token format into a Go time layout.
// Text inside square brackets is copied literally.
func Layout(format string) (string, error) {
	format = strings.TrimSpace(format)
	if format == "" {
		return "", fmt.Errorf("%w: empty format", ErrInvalidDateFormat)
	}
	if len(format) > MaxDateFormatLength {
		return "", fmt.Errorf("%w: longer than %d characters", ErrInvalidDateFormat, MaxDateFormatLength)
	}
	if preset, ok := Presets[strings.ToLower(format)]; ok {
		format = preset
	}

	var b strings.Builder
	for rest := format; rest != ""; {
		if rest[0] == '[' {
			end := strings.IndexByte(rest, ']')
			if end < 0 {
				return "", fmt.Errorf("%w: unclosed bracket in %q", ErrInvalidDateFormat, format)
			}
			b.WriteString(rest[1:end])
			rest = rest[end+1:]
			continue
		}
		n := 1
		lit := rest[:1]
		for _, tok := range tokens {
			if strings.HasPrefix(rest, tok.token) {
				n, lit = len(tok.token), tok.layout
				break
			}
		}
		b.WriteString(lit)
		rest = rest[n:]
	}
	return b.String(), nil
}

// Format renders t with a preset or token format.
func Format(t time.Time, format string) (string, error) {
	layout, err := Layout(format)
	if err != nil {
		return "", err
	}
	return t.Format(layout), nil
}

// PreparedOn returns the caller-supplied date verbatim, or now rendered with
// format when the value is blank or "auto". An unusable format falls back to
// DefaultFormat so a proposal always carries a date.
func PreparedOn(value string, now time.Time, format string) string {
	value = strings.TrimSpace(value)
	if value != "" && !strings.EqualFold(value, "auto") {
		return value
	}
	if s, err := Format(now, format); err == nil {
		return s
	}
	s, _ := Format(now, DefaultFormat)
	return s
}
