package pricing

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/alnah/go-proposal/internal/numfmt"
)

// ErrInvalidInput indicates a payload whose shape cannot be decoded.
var ErrInvalidInput = errors.New("invalid proposal input")

// Number is a caller-supplied numeric field. Valid is false when the field
// was absent, null, blank, or not a finite number.
type Number struct {
	Value float64
	Valid bool
}

// Num returns a valid Number holding v.
func Num(v float64) Number {
	return Number{Value: v, Valid: true}
}

// get returns the value only when it is present and finite.
func (n Number) get() (float64, bool) {
	if !n.Valid || !numfmt.Finite(n.Value) {
		return 0, false
	}
	return n.Value, true
}

// MarshalJSON writes null for missing values.
func (n Number) MarshalJSON() ([]byte, error) {
	v, ok := n.get()
	if !ok {
		return []byte("null"), nil
	}
	return json.Marshal(v)
}

// UnmarshalJSON accepts JSON numbers and numeric strings. Other scalars decode
// as missing; objects and arrays are a shape error.
func (n *Number) UnmarshalJSON(data []byte) error {
	*n = Number{}
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil
	}

	var text string
	switch data[0] {
	case '{', '[':
		return fmt.Errorf("expected a number, got %s", describeJSON(data[0]))
	case '"':
		if err := json.Unmarshal(data, &text); err != nil {
			return err
		}
		text = strings.TrimSpace(text)
	case 'n', 't', 'f':
		return nil
	default:
		text = string(data)
	}

	v, err := strconv.ParseFloat(text, 64)
	if err != nil || !numfmt.Finite(v) {
		return nil
	}
	*n = Num(v)
	return nil
}

func describeJSON(c byte) string {
	if c == '{' {
		return "object"
	}
	return "array"
}

// MapEntry is one named map in the maps product.
type MapEntry struct {
	Name string `json:"name"`
}

// UnmarshalJSON coerces the name to text instead of rejecting the entry.
// Numbers and true keep their literal spelling; zero, false, null, objects,
// and arrays leave the name blank, as does an entry that is not an object.
func (e *MapEntry) UnmarshalJSON(data []byte) error {
	*e = MapEntry{}
	data = bytes.TrimSpace(data)
	if len(data) == 0 || data[0] != '{' {
		return nil
	}

	var fields struct {
		Name json.RawMessage `json:"name"`
	}
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}

	name := bytes.TrimSpace(fields.Name)
	if len(name) == 0 {
		return nil
	}
	switch name[0] {
	case '"':
		return json.Unmarshal(name, &e.Name)
	case 't':
		e.Name = "true"
	case 'f', 'n', '{', '[':
	default:
		if v, err := strconv.ParseFloat(string(name), 64); err == nil && v != 0 {
			e.Name = strconv.FormatFloat(v, 'f', -1, 64)
		}
	}
	return nil
}

// RawInput is the untrusted proposal request as supplied by the caller.
type RawInput struct {
	Vertical     string `json:"vertical"`
	ClientName   string `json:"clientName"`
	Product      string `json:"product"`
	BundleChoice string `json:"bundleChoice"`
	MapPlan      string `json:"mapPlan"`
	PreparedDate string `json:"preparedDate"`
	Notes        string `json:"notes"`

	// Maps product
	MapUnitPrice Number     `json:"mapUnitPrice"`
	MapBasePrice Number     `json:"mapBasePrice"` // alias sent by older builders
	SetupFee     Number     `json:"setupFee"`
	Maps         []MapEntry `json:"maps"`

	// AI product
	Attendance          Number `json:"attendance"`
	InquiryRatio        Number `json:"inquiryRatio"`
	AvgConvosPerGuest   Number `json:"avgConvosPerGuest"`
	CostPerConversation Number `json:"costPerConversation"`
	MarginProfitRatio   Number `json:"marginProfitRatio"`
	AIQuotedPrice       Number `json:"aiQuotedPrice"`
}

// MaxPayloadBytes bounds the encoded request accepted by DecodeRawInput.
const MaxPayloadBytes = 2 << 20

// DecodeRawInput parses a JSON object into RawInput. A null body decodes to
// the zero input, which prices with every default.
func DecodeRawInput(data []byte) (RawInput, error) {
	var raw RawInput
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return raw, fmt.Errorf("%w: empty body", ErrInvalidInput)
	}
	if len(trimmed) > MaxPayloadBytes {
		return raw, fmt.Errorf("%w: body exceeds %d bytes", ErrInvalidInput, MaxPayloadBytes)
	}
	if trimmed[0] != '{' && !bytes.Equal(trimmed, []byte("null")) {
		return raw, fmt.Errorf("%w: expected a JSON object", ErrInvalidInput)
	}
	if err := json.Unmarshal(trimmed, &raw); err != nil {
		return RawInput{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	return raw, nil
}
