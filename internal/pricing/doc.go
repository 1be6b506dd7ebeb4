// Package pricing derives a fully priced proposal from untrusted caller input.
//
// Compute is pure and total: every numeric field is coerced into its domain
// (clamped, or replaced by a default when missing or non-numeric) so the
// resulting Model never holds NaN or infinite values. The only input that is
// rejected is a payload of the wrong shape, which DecodeRawInput reports as
// ErrInvalidInput before pricing runs.
//
// Derived quantities follow a fixed chain:
//
//	usage                 = attendance × inquiryRatio
//	expectedConversations = usage × avgConvosPerGuest
//	expectedCost          = expectedConversations × costPerConversation
//	grossProfit           = expectedCost / marginProfitRatio
//
// The AI quoted price defaults to grossProfit; a finite caller-supplied price
// replaces it verbatim.
package pricing
