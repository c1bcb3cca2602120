// backend/src/parsers/excel/purchase.go
package excel

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/username/gstrecon/backend/src/logger"
	"github.com/username/gstrecon/backend/src/models"
	"github.com/username/gstrecon/backend/src/security/validation"
)

// Column keys shared by both workbook parsers.
const (
	colInvoiceNo     = "INVOICE_NO"
	colSupplierGSTIN = "SUPPLIER_GSTIN"
	colInvoiceDate   = "INVOICE_DATE"
	colIGST          = "IGST"
	colCGST          = "CGST"
	colSGST          = "SGST"
	colParticulars   = "PARTICULARS"
	colGrossTotal    = "GROSS_TOTAL"
	colTaxableValue  = "TAXABLE_VALUE"
	colInvoiceValue  = "INVOICE_VALUE"
)

// headerScanLimit bounds how deep into a sheet the header row is searched;
// register exports routinely carry title banners above the real header.
const headerScanLimit = 21

var (
	errNoSheets       = errors.New("workbook has no sheets")
	errHeaderNotFound = errors.New("header row not found")
)

// PurchaseParser reads a taxpayer's purchase register workbook into typed
// invoice records. Header position and column order are discovered, not
// assumed.
type PurchaseParser struct{}

func NewPurchaseParser() *PurchaseParser { return &PurchaseParser{} }

// Parse reads the first sheet of a purchase register workbook. Rows without
// an invoice number, "Grand Total" rows and rows whose date cannot be parsed
// are skipped; zero-tax rows are kept.
func (p *PurchaseParser) Parse(r io.Reader) ([]models.PurchaseInvoice, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("purchase parser: failed to open workbook: %w", err)
	}
	defer f.Close()

	rows, err := firstSheetRows(f)
	if err != nil {
		return nil, fmt.Errorf("purchase parser: %w", err)
	}

	headerIdx, cols, err := locateHeader(rows)
	if err != nil {
		return nil, fmt.Errorf("purchase parser: %w", err)
	}
	if err := requireColumns(cols, colInvoiceNo, colSupplierGSTIN, colInvoiceDate, colIGST, colCGST, colSGST); err != nil {
		return nil, fmt.Errorf("purchase parser: %w", err)
	}

	var invoices []models.PurchaseInvoice
	for i := headerIdx + 1; i < len(rows); i++ {
		row := rows[i]
		if isEmptyRow(row) || isTotalRow(row, "Grand Total") {
			continue
		}

		rawInvoice := cellString(row, cols[colInvoiceNo])
		if rawInvoice == "" || strings.EqualFold(rawInvoice, "Grand Total") {
			continue
		}

		invoiceDate := cellDate(row, cols[colInvoiceDate])
		if invoiceDate.IsZero() {
			logger.L.Warn("Skipping purchase row with unparseable date", "invoiceNo", rawInvoice, "row", i+1)
			continue
		}

		inv := models.PurchaseInvoice{
			SupplierGSTIN: cellString(row, cols[colSupplierGSTIN]),
			InvoiceNo:     rawInvoice,
			InvoiceDate:   invoiceDate,
			IGST:          cellDecimal(row, cols[colIGST]),
			CGST:          cellDecimal(row, cols[colCGST]),
			SGST:          cellDecimal(row, cols[colSGST]),
		}
		if c, ok := cols[colParticulars]; ok {
			inv.Particulars = validation.SanitizeText(validation.StripUnprintable(cellString(row, c)))
		}
		if c, ok := cols[colGrossTotal]; ok {
			inv.GrossTotal = cellDecimal(row, c)
		}
		invoices = append(invoices, inv)
	}

	logger.L.Info("Purchase register parsed", "invoices", len(invoices))
	return invoices, nil
}

// locateHeader scans the top of the sheet for the row that looks like the
// column header (at least two identity columns recognized), then maps every
// recognized column to its index.
func locateHeader(rows [][]string) (int, map[string]int, error) {
	limit := headerScanLimit
	if len(rows) < limit {
		limit = len(rows)
	}
	for i := 0; i < limit; i++ {
		hits := 0
		for _, cell := range rows[i] {
			v := strings.ToUpper(strings.TrimSpace(cell))
			if strings.Contains(v, "INVOICE") && strings.Contains(v, "NO") {
				hits++
			}
			if strings.Contains(v, "SUPPLIER") && strings.Contains(v, "GST") {
				hits++
			}
			if strings.Contains(v, "INVOICE") && strings.Contains(v, "DATE") {
				hits++
			}
		}
		if hits >= 2 {
			return i, mapColumns(rows[i]), nil
		}
	}
	return 0, nil, errHeaderNotFound
}

// mapColumns matches header cells to known columns by loose containment, the
// way the source spreadsheets actually vary ("Invoice No.", "Invoice Number",
// "Supplier GSTIN No").
func mapColumns(header []string) map[string]int {
	cols := make(map[string]int)
	for idx, cell := range header {
		v := strings.ToUpper(strings.TrimSpace(cell))
		switch {
		case strings.Contains(v, "INVOICE") && strings.Contains(v, "NO"):
			cols[colInvoiceNo] = idx
		case strings.Contains(v, "SUPPLIER") && strings.Contains(v, "GST"):
			cols[colSupplierGSTIN] = idx
		case strings.Contains(v, "INVOICE") && strings.Contains(v, "DATE"):
			cols[colInvoiceDate] = idx
		case strings.Contains(v, "IGST"):
			cols[colIGST] = idx
		case strings.Contains(v, "CGST"):
			cols[colCGST] = idx
		case strings.Contains(v, "SGST"):
			cols[colSGST] = idx
		case strings.Contains(v, "TAXABLE") && strings.Contains(v, "VALUE"):
			cols[colTaxableValue] = idx
		case strings.Contains(v, "INVOICE") && strings.Contains(v, "VALUE"):
			cols[colInvoiceValue] = idx
		case strings.Contains(v, "PARTICULAR") || strings.Contains(v, "LEGAL") || strings.Contains(v, "NAME"):
			cols[colParticulars] = idx
		case strings.Contains(v, "GROSS") || strings.Contains(v, "TOTAL"):
			cols[colGrossTotal] = idx
		}
	}
	return cols
}

func requireColumns(cols map[string]int, required ...string) error {
	for _, k := range required {
		if _, ok := cols[k]; !ok {
			return fmt.Errorf("missing required column: %s", k)
		}
	}
	return nil
}

// isTotalRow detects footer rows like "Grand Total" / "Total" by their first
// cell.
func isTotalRow(row []string, label string) bool {
	return strings.EqualFold(cellString(row, 0), label)
}
