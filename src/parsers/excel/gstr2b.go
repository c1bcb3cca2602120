// backend/src/parsers/excel/gstr2b.go
package excel

import (
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/username/gstrecon/backend/src/logger"
	"github.com/username/gstrecon/backend/src/models"
	"github.com/username/gstrecon/backend/src/security/validation"
)

// Gstr2BParser reads a GSTR-2B statement workbook into typed invoice records.
// Unlike the purchase register, statement rows may legitimately lack a date;
// such rows are kept with a zero date rather than skipped.
type Gstr2BParser struct{}

func NewGstr2BParser() *Gstr2BParser { return &Gstr2BParser{} }

// Parse reads the first sheet of a GSTR-2B workbook. "Total" footer rows and
// rows without an invoice number are skipped; zero-tax rows are kept. When the
// export carries no invoice-value column the value is derived as taxable
// value plus total tax.
func (p *Gstr2BParser) Parse(r io.Reader) ([]models.Gstr2BInvoice, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("gstr2b parser: failed to open workbook: %w", err)
	}
	defer f.Close()

	rows, err := firstSheetRows(f)
	if err != nil {
		return nil, fmt.Errorf("gstr2b parser: %w", err)
	}

	headerIdx, cols, err := locateHeader(rows)
	if err != nil {
		return nil, fmt.Errorf("gstr2b parser: %w", err)
	}
	if err := requireColumns(cols, colInvoiceNo, colSupplierGSTIN, colInvoiceDate, colIGST, colCGST, colSGST); err != nil {
		return nil, fmt.Errorf("gstr2b parser: %w", err)
	}

	var invoices []models.Gstr2BInvoice
	for i := headerIdx + 1; i < len(rows); i++ {
		row := rows[i]
		if isEmptyRow(row) || isTotalRow(row, "Total") {
			continue
		}

		rawInvoice := cellString(row, cols[colInvoiceNo])
		if rawInvoice == "" || strings.EqualFold(rawInvoice, "Total") {
			continue
		}

		inv := models.Gstr2BInvoice{
			SupplierGSTIN: cellString(row, cols[colSupplierGSTIN]),
			InvoiceNo:     rawInvoice,
			InvoiceDate:   cellDate(row, cols[colInvoiceDate]),
			IGST:          cellDecimal(row, cols[colIGST]),
			CGST:          cellDecimal(row, cols[colCGST]),
			SGST:          cellDecimal(row, cols[colSGST]),
		}

		if c, ok := cols[colTaxableValue]; ok {
			inv.TaxableValue = cellDecimal(row, c)
		}
		if c, ok := cols[colInvoiceValue]; ok {
			inv.InvoiceValue = cellDecimal(row, c)
		} else {
			inv.InvoiceValue = inv.TaxableValue.Add(inv.IGST).Add(inv.CGST).Add(inv.SGST)
		}
		if c, ok := cols[colParticulars]; ok {
			inv.LegalName = validation.SanitizeText(validation.StripUnprintable(cellString(row, c)))
		}

		invoices = append(invoices, inv)
	}

	logger.L.Info("GSTR-2B statement parsed", "invoices", len(invoices))
	return invoices, nil
}
