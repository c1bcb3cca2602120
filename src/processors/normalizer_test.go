// backend/src/processors/normalizer_test.go
package processors

import (
	"testing"
)

func TestNormalizeGSTIN(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"already canonical", "29ABCDE1234F1Z5", "29ABCDE1234F1Z5"},
		{"lowercase and spaces", "  29abcde1234f1z5 ", "29ABCDE1234F1Z5"},
		{"punctuation stripped", "29-ABCDE/1234.F1Z5", "29ABCDE1234F1Z5"},
		{"empty", "", ""},
		{"only punctuation", "--//", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NormalizeGSTIN(tt.in); got != tt.want {
				t.Errorf("NormalizeGSTIN(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestNormalizeInvoiceNo(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain", "INV/001", "1NV/001"},
		{"series prefix stripped", "FY25-26/INV/001", "1NV/001"},
		{"journal prefix stripped", "JE/2025-26/145", "145"},
		{"fiscal year suffix stripped", "INV/001/24-25", "1NV/001"},
		{"inner whitespace removed", "INV 001", "1NV001"},
		{"confusables folded", "1NVOO1", "1NV001"},
		{"lowercase folded too", "invol1", "1NV011"},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NormalizeInvoiceNo(tt.in); got != tt.want {
				t.Errorf("NormalizeInvoiceNo(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

// Folded forms of character-confused invoice numbers must collide, otherwise
// the exact strategy misses rows the fuzzy strategies would have to rescue.
func TestNormalizeInvoiceNoFoldsConfusablesTogether(t *testing.T) {
	if NormalizeInvoiceNo("1NV0O1") != NormalizeInvoiceNo("INV001") {
		t.Fatalf("expected %q and %q to normalize identically, got %q and %q",
			"1NV0O1", "INV001", NormalizeInvoiceNo("1NV0O1"), NormalizeInvoiceNo("INV001"))
	}
}

func TestNormalizeInvoiceNoIdempotent(t *testing.T) {
	inputs := []string{"FY25-26/INV/001", "GST-25-26/77", "TIA/T/88 12", "1NVOO1", ""}
	for _, in := range inputs {
		once := NormalizeInvoiceNo(in)
		if twice := NormalizeInvoiceNo(once); twice != once {
			t.Errorf("NormalizeInvoiceNo not idempotent for %q: %q -> %q", in, once, twice)
		}
	}
}

func TestNumericSuffix(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"INV/001", "001"},
		{"1NV001", "1001"},
		{"ABC", ""},
		{"", ""},
		{"A1B2C3", "123"},
	}

	for _, tt := range tests {
		if got := NumericSuffix(tt.in); got != tt.want {
			t.Errorf("NumericSuffix(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
