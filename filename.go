package proposal

import "strings"

// DefaultAttachmentBase is used when a client name has no usable characters.
const DefaultAttachmentBase = "proposal"

const maxAttachmentBase = 80

// AttachmentName derives the download file name from a client name: lowercase
// ASCII letters and digits, every other run collapsed to one '-', trimmed.
func AttachmentName(clientName string) string {
	var b strings.Builder
	pendingSep := false
	for _, r := range strings.ToLower(clientName) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			if pendingSep && b.Len() > 0 {
				b.WriteByte('-')
			}
			pendingSep = false
			b.WriteRune(r)
			continue
		}
		pendingSep = true
	}

	base := b.String()
	if len(base) > maxAttachmentBase {
		base = strings.TrimRight(base[:maxAttachmentBase], "-")
	}
	if base == "" {
		base = DefaultAttachmentBase
	}
	return base + ".pdf"
}
