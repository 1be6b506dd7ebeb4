package proposal

import (
	"errors"
	"math/rand/v2"
	"strings"
	"testing"
)

func TestValidateArtifact(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		input   []byte
		wantErr bool
		wantMsg string
	}{
		{name: "minimal pdf", input: []byte("%PDF-1.7\n%\xe2\xe3\xcf\xd3")},
		{name: "signature only", input: []byte("%PDF-")},
		{name: "nil", input: nil, wantErr: true, wantMsg: `0 bytes starting ""`},
		{name: "short", input: []byte("%PDF"), wantErr: true},
		{name: "html error page", input: []byte("<!DOCTYPE html><html><body>crash</body></html>"), wantErr: true, wantMsg: `"<!DOCTYPE html><html"`},
		{name: "lower case", input: []byte("%pdf-1.4"), wantErr: true},
		{name: "leading whitespace", input: []byte(" %PDF-1.4"), wantErr: true},
		{name: "binary garbage", input: []byte{0x00, 0xff, 0x10}, wantErr: true, wantMsg: `"\x00\xff\x10"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := ValidateArtifact(tt.input)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidArtifact) {
					t.Fatalf("ValidateArtifact() error = %v, want ErrInvalidArtifact", err)
				}
				if got != nil {
					t.Error("ValidateArtifact() returned bytes on failure")
				}
				if tt.wantMsg != "" && !strings.Contains(err.Error(), tt.wantMsg) {
					t.Errorf("error %q should contain %q", err, tt.wantMsg)
				}
				return
			}
			if err != nil {
				t.Fatalf("ValidateArtifact() unexpected error: %v", err)
			}
			if string(got) != string(tt.input) {
				t.Error("ValidateArtifact() altered the bytes")
			}
		})
	}
}

// Any byte sequence not starting with the signature is rejected.
func TestValidateArtifact_Random(t *testing.T) {
	t.Parallel()

	rng := rand.New(rand.NewPCG(7, 11))
	for i := range 2000 {
		b := make([]byte, rng.IntN(64))
		for j := range b {
			b[j] = byte(rng.UintN(256))
		}
		_, err := ValidateArtifact(b)
		valid := strings.HasPrefix(string(b), "%PDF-")
		if valid != (err == nil) {
			t.Fatalf("iteration %d: ValidateArtifact(%q) error = %v", i, b, err)
		}
	}
}
