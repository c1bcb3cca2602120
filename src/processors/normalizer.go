// backend/src/processors/normalizer.go
package processors

import (
	"strings"
	"unicode"
)

// invoiceDecorations are series prefixes and fiscal-year suffixes that
// accounting teams prepend or append to invoice numbers. They carry no
// identity and are stripped before comparison.
var invoiceDecorations = []string{
	"FY25-26/",
	"GST-25-26/",
	"EP/2025-26/",
	"JE/2025-26/",
	"TIA/T/",
	"/24-25",
	"/25-26",
}

// confusableFolder collapses letter/digit pairs that humans and OCR routinely
// swap in alphanumeric invoice codes. The mapping is intentionally lossy.
var confusableFolder = strings.NewReplacer("O", "0", "I", "1", "L", "1")

// NormalizeGSTIN canonicalizes a supplier tax identifier: trimmed,
// upper-cased, with everything but ASCII letters and digits removed. Empty
// input yields the empty string.
func NormalizeGSTIN(s string) string {
	upper := strings.ToUpper(strings.TrimSpace(s))
	var b strings.Builder
	b.Grow(len(upper))
	for _, r := range upper {
		if (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// NormalizeInvoiceNo canonicalizes an invoice number for comparison: trimmed,
// upper-cased, known series decorations and all whitespace removed, then
// O/I/L folded to 0/1/1 to absorb character confusion.
func NormalizeInvoiceNo(s string) string {
	base := stripDecorations(strings.ToUpper(strings.TrimSpace(s)))
	base = stripSpace(base)
	return confusableFolder.Replace(base)
}

// NumericSuffix strips every non-digit character and returns the remaining
// digit run, empty when the input carries no digits. Used as the coarsest
// last-resort matching key.
func NumericSuffix(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func stripDecorations(s string) string {
	for _, d := range invoiceDecorations {
		s = strings.ReplaceAll(s, d, "")
	}
	return s
}

func stripSpace(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, s)
}
