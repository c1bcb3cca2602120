// backend/src/parsers/excel/purchase_test.go
package excel

import (
	"bytes"
	"os"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/username/gstrecon/backend/src/logger"
)

func TestMain(m *testing.M) {
	logger.InitLogger("error")
	os.Exit(m.Run())
}

func dec(t *testing.T, s string) decimal.Decimal {
	t.Helper()
	d, err := decimal.NewFromString(s)
	require.NoError(t, err)
	return d
}

// workbookFromRows builds a one-sheet xlsx in memory.
func workbookFromRows(t *testing.T, rows [][]interface{}) *bytes.Reader {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()

	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow("Sheet1", cell, &row))
	}

	buf, err := f.WriteToBuffer()
	require.NoError(t, err)
	return bytes.NewReader(buf.Bytes())
}

func TestPurchaseParserParse(t *testing.T) {
	rows := [][]interface{}{
		{"ACME Traders Pvt Ltd"},
		{"Purchase Register FY 2025-26"},
		{},
		{"Invoice No", "Supplier GSTIN", "Invoice Date", "IGST", "CGST", "SGST", "Particulars", "Gross Total"},
		{"INV/001", "29ABCDE1234F1Z5", "2025-04-10", "118.00", "0", "0", "Steel pipes", "768.00"},
		{"INV/002", "27ZZZZZ9999Z9Z9", "10/05/2025", "0", "59.00", "59.00", "Cement<script>x</script>", "1,180.00"},
		{},
		{"Grand Total", "", "", "118.00", "59.00", "59.00", "", ""},
	}

	invoices, err := NewPurchaseParser().Parse(workbookFromRows(t, rows))
	require.NoError(t, err)
	require.Len(t, invoices, 2)

	assert.Equal(t, "INV/001", invoices[0].InvoiceNo)
	assert.Equal(t, "29ABCDE1234F1Z5", invoices[0].SupplierGSTIN)
	assert.Equal(t, "2025-04-10", invoices[0].InvoiceDate.Format("2006-01-02"))
	assert.True(t, invoices[0].IGST.Equal(dec(t, "118.00")))
	assert.Equal(t, "Steel pipes", invoices[0].Particulars)
	assert.True(t, invoices[0].GrossTotal.Equal(dec(t, "768.00")))

	// DD/MM/YYYY dates, thousands separators and embedded markup all survive.
	assert.Equal(t, "2025-05-10", invoices[1].InvoiceDate.Format("2006-01-02"))
	assert.True(t, invoices[1].GrossTotal.Equal(dec(t, "1180.00")))
	assert.NotContains(t, invoices[1].Particulars, "<script>")
}

func TestPurchaseParserSkipsRowsWithoutUsableDate(t *testing.T) {
	rows := [][]interface{}{
		{"Invoice No", "Supplier GSTIN", "Invoice Date", "IGST", "CGST", "SGST"},
		{"INV/001", "29ABCDE1234F1Z5", "not a date", "118.00", "0", "0"},
		{"INV/002", "29ABCDE1234F1Z5", "2025-04-11", "50.00", "0", "0"},
		{"", "29ABCDE1234F1Z5", "2025-04-12", "10.00", "0", "0"},
	}

	invoices, err := NewPurchaseParser().Parse(workbookFromRows(t, rows))
	require.NoError(t, err)
	require.Len(t, invoices, 1)
	assert.Equal(t, "INV/002", invoices[0].InvoiceNo)
}

func TestPurchaseParserMissingRequiredColumn(t *testing.T) {
	rows := [][]interface{}{
		{"Invoice No", "Supplier GSTIN", "Invoice Date", "IGST", "CGST"},
		{"INV/001", "29ABCDE1234F1Z5", "2025-04-10", "118.00", "0"},
	}

	_, err := NewPurchaseParser().Parse(workbookFromRows(t, rows))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "SGST")
}

func TestPurchaseParserHeaderNotFound(t *testing.T) {
	rows := [][]interface{}{
		{"just", "some", "cells"},
		{"more", "noise"},
	}

	_, err := NewPurchaseParser().Parse(workbookFromRows(t, rows))
	require.ErrorIs(t, err, errHeaderNotFound)
}

func TestPurchaseParserKeepsZeroTaxRows(t *testing.T) {
	rows := [][]interface{}{
		{"Invoice No", "Supplier GSTIN", "Invoice Date", "IGST", "CGST", "SGST"},
		{"INV/001", "29ABCDE1234F1Z5", "2025-04-10", "", "", ""},
	}

	invoices, err := NewPurchaseParser().Parse(workbookFromRows(t, rows))
	require.NoError(t, err)
	require.Len(t, invoices, 1)
	assert.True(t, invoices[0].IGST.IsZero())
	assert.True(t, invoices[0].CGST.IsZero())
	assert.True(t, invoices[0].SGST.IsZero())
}
