// backend/src/parsers/excel/cells.go
package excel

import (
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

// dateLayouts covers the formats seen in real purchase registers and GSTR-2B
// exports. Tried in order; first hit wins.
var dateLayouts = []string{
	"2006-01-02",
	"02/01/2006",
	"02-01-2006",
	"02-Jan-2006",
	"2006/01/02",
	"1/2/2006",
	"1-2-2006",
}

// cellString trims a cell's formatted value. Out-of-range columns degrade to
// the empty string; header rows in the wild are ragged.
func cellString(row []string, col int) string {
	if col < 0 || col >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[col])
}

// cellDecimal coerces a cell into a decimal, tolerating thousands separators
// and currency noise. Empty or unparseable cells degrade to zero -- a zero-tax
// row is a legitimate invoice, not an error.
func cellDecimal(row []string, col int) decimal.Decimal {
	raw := cellString(row, col)
	if raw == "" {
		return decimal.Zero
	}
	raw = strings.NewReplacer(",", "", "₹", "", " ", "").Replace(raw)
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero
	}
	return d
}

// cellDate parses a date cell. Formatted dates are tried against the known
// layouts (ignoring any time-of-day part); bare numbers are treated as Excel
// serial dates. Returns the zero time when nothing parses.
func cellDate(row []string, col int) time.Time {
	raw := cellString(row, col)
	if raw == "" {
		return time.Time{}
	}
	if i := strings.IndexByte(raw, ' '); i > 0 {
		raw = raw[:i]
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t
		}
	}
	if serial, err := strconv.ParseFloat(raw, 64); err == nil && serial > 0 {
		if t, err := excelize.ExcelDateToTime(serial, false); err == nil {
			return t
		}
	}
	return time.Time{}
}

// isEmptyRow reports whether every cell in the row is blank.
func isEmptyRow(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

// firstSheetRows opens the workbook and returns the rows of its first sheet.
func firstSheetRows(f *excelize.File) ([][]string, error) {
	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, errNoSheets
	}
	return f.GetRows(sheets[0])
}
