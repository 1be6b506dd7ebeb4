package proposal

import (
	"bytes"
	"fmt"
	"strconv"
)

// pdfSignature is the magic prefix every PDF file starts with.
var pdfSignature = []byte("%PDF-")

// maxPrefixPreview bounds how much of a rejected artifact is echoed into errors.
const maxPrefixPreview = 20

// ValidateArtifact returns b unchanged when it starts with the PDF signature.
// Anything else, including short or empty input, fails with ErrInvalidArtifact.
func ValidateArtifact(b []byte) ([]byte, error) {
	if bytes.HasPrefix(b, pdfSignature) {
		return b, nil
	}
	return nil, fmt.Errorf("%w: got %d bytes starting %s", ErrInvalidArtifact, len(b), previewPrefix(b))
}

// previewPrefix renders the first bytes as a quoted, printable string for logs.
func previewPrefix(b []byte) string {
	if len(b) > maxPrefixPreview {
		b = b[:maxPrefixPreview]
	}
	return strconv.QuoteToASCII(string(b))
}
