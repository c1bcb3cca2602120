// backend/src/parsers/excel/gstr2b_test.go
package excel

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGstr2BParserParse(t *testing.T) {
	rows := [][]interface{}{
		{"GSTR-2B"},
		{"Taxable inward supplies received from registered persons"},
		{"Invoice Number", "Supplier GSTIN", "Invoice Date", "IGST", "CGST", "SGST", "Taxable Value", "Invoice Value", "Legal Name"},
		{"INV/001", "29ABCDE1234F1Z5", "2025-04-10", "118.00", "0", "0", "650.00", "768.00", "Acme Traders"},
		{"INV/002", "27ZZZZZ9999Z9Z9", "", "0", "59.00", "59.00", "1,000.00", "1,118.00", "Beta Metals"},
		{"Total", "", "", "118.00", "59.00", "59.00", "1650.00", "1886.00", ""},
	}

	invoices, err := NewGstr2BParser().Parse(workbookFromRows(t, rows))
	require.NoError(t, err)
	require.Len(t, invoices, 2)

	assert.Equal(t, "INV/001", invoices[0].InvoiceNo)
	assert.Equal(t, "29ABCDE1234F1Z5", invoices[0].SupplierGSTIN)
	assert.True(t, invoices[0].HasDate())
	assert.True(t, invoices[0].TaxableValue.Equal(dec(t, "650.00")))
	assert.True(t, invoices[0].InvoiceValue.Equal(dec(t, "768.00")))
	assert.Equal(t, "Acme Traders", invoices[0].LegalName)

	// Statement rows may lack a date; they are kept, not dropped.
	assert.False(t, invoices[1].HasDate())
	assert.True(t, invoices[1].InvoiceValue.Equal(dec(t, "1118.00")))
}

func TestGstr2BParserDerivesInvoiceValue(t *testing.T) {
	rows := [][]interface{}{
		{"Invoice Number", "Supplier GSTIN", "Invoice Date", "IGST", "CGST", "SGST", "Taxable Value"},
		{"INV/003", "29ABCDE1234F1Z5", "2025-04-12", "0", "45.00", "45.00", "500.00"},
	}

	invoices, err := NewGstr2BParser().Parse(workbookFromRows(t, rows))
	require.NoError(t, err)
	require.Len(t, invoices, 1)
	assert.True(t, invoices[0].InvoiceValue.Equal(dec(t, "590.00")))
}

func TestGstr2BParserMissingRequiredColumn(t *testing.T) {
	rows := [][]interface{}{
		{"Invoice Number", "Supplier GSTIN", "Invoice Date", "CGST", "SGST"},
		{"INV/001", "29ABCDE1234F1Z5", "2025-04-10", "59.00", "59.00"},
	}

	_, err := NewGstr2BParser().Parse(workbookFromRows(t, rows))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "IGST")
}
