// backend/src/services/excel_report.go
package services

import (
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"github.com/username/gstrecon/backend/src/models"
	"github.com/username/gstrecon/backend/src/security/validation"
)

const (
	sheetSummary    = "Executive Summary"
	sheetDetails    = "Reconciliation Details"
	sheetMissing    = "Missing In Purchase Register"
	sheetMatched    = "Matched Invoices"
	sheetMonthly    = "Monthly ITC Summary"
	sheetSuppliers  = "Supplier-wise Summary"
	currencyNumFmt  = "#,##0.00"
	reportTimestamp = "20060102_150405"
)

type workbookStyles struct {
	title     int
	header    int
	currency  int
	highlight int
	red       int
}

// GenerateWorkbook renders the full reconciliation workbook and returns its
// bytes together with a timestamped download filename.
func (rs *ReportService) GenerateWorkbook(summary *ReconciliationSummary, results []models.ReconciliationResult) ([]byte, string, error) {
	f := excelize.NewFile()
	defer f.Close()

	styles, err := newWorkbookStyles(f)
	if err != nil {
		return nil, "", fmt.Errorf("creating styles: %w", err)
	}

	// The default sheet becomes the summary; the rest are appended in order.
	if err := f.SetSheetName("Sheet1", sheetSummary); err != nil {
		return nil, "", err
	}
	for _, name := range []string{sheetDetails, sheetMissing, sheetMatched, sheetMonthly, sheetSuppliers} {
		if _, err := f.NewSheet(name); err != nil {
			return nil, "", err
		}
	}

	writeSummarySheet(f, styles, summary, results)
	writeDetailsSheet(f, styles, results)
	writeMissingSheet(f, styles, results)
	writeMatchedSheet(f, styles, results)
	writeMonthlySheet(f, styles, results)
	writeSupplierSheet(f, styles, results)

	if idx, err := f.GetSheetIndex(sheetSummary); err == nil {
		f.SetActiveSheet(idx)
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, "", fmt.Errorf("writing workbook: %w", err)
	}
	filename := "GST_Reconciliation_Report_" + time.Now().Format(reportTimestamp) + ".xlsx"
	return buf.Bytes(), filename, nil
}

func newWorkbookStyles(f *excelize.File) (workbookStyles, error) {
	var s workbookStyles
	var err error

	if s.title, err = f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 16},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	}); err != nil {
		return s, err
	}

	border := []excelize.Border{
		{Type: "top", Style: 1, Color: "000000"},
		{Type: "bottom", Style: 1, Color: "000000"},
		{Type: "left", Style: 1, Color: "000000"},
		{Type: "right", Style: 1, Color: "000000"},
	}

	if s.header, err = f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"1F3864"}, Pattern: 1},
		Border:    border,
		Alignment: &excelize.Alignment{Horizontal: "center"},
	}); err != nil {
		return s, err
	}

	numFmt := currencyNumFmt
	if s.currency, err = f.NewStyle(&excelize.Style{
		Border:       border,
		CustomNumFmt: &numFmt,
	}); err != nil {
		return s, err
	}

	if s.highlight, err = f.NewStyle(&excelize.Style{
		Border: border,
		Fill:   excelize.Fill{Type: "pattern", Color: []string{"FFF2CC"}, Pattern: 1},
	}); err != nil {
		return s, err
	}

	if s.red, err = f.NewStyle(&excelize.Style{
		Border: border,
		Fill:   excelize.Fill{Type: "pattern", Color: []string{"F4B183"}, Pattern: 1},
	}); err != nil {
		return s, err
	}

	return s, nil
}

func setRow(f *excelize.File, sheet string, row int, values []interface{}) {
	cell, _ := excelize.CoordinatesToCellName(1, row)
	_ = f.SetSheetRow(sheet, cell, &values)
}

func styleRow(f *excelize.File, sheet string, row, firstCol, lastCol, styleID int) {
	start, _ := excelize.CoordinatesToCellName(firstCol, row)
	end, _ := excelize.CoordinatesToCellName(lastCol, row)
	_ = f.SetCellStyle(sheet, start, end, styleID)
}

// cellText guards free-text cells against spreadsheet formula injection.
func cellText(s string) string {
	return validation.SanitizeForFormulaInjection(s)
}

func money(d decimal.Decimal) float64 {
	v, _ := d.Round(2).Float64()
	return v
}

func writeSummarySheet(f *excelize.File, styles workbookStyles, summary *ReconciliationSummary, results []models.ReconciliationResult) {
	sheet := sheetSummary

	setRow(f, sheet, 1, []interface{}{"GSTR-2B vs Purchase Register Reconciliation Report"})
	_ = f.MergeCell(sheet, "A1", "H1")
	_ = f.SetCellStyle(sheet, "A1", "A1", styles.title)

	setRow(f, sheet, 2, []interface{}{"Report Date: " + time.Now().Format("02-Jan-2006")})
	setRow(f, sheet, 4, []interface{}{"Period: " + periodCovered(results)})

	row := 6
	setRow(f, sheet, row, []interface{}{"Parameter", "Count", "Amount", "Remarks"})
	styleRow(f, sheet, row, 1, 4, styles.header)
	row++

	q := summary.Summary
	itcUnclaimed := decimal.Max(q.TotalITCAvailableIn2B.Sub(q.TotalITCClaimedInPurchase), decimal.Zero)

	type summaryLine struct {
		parameter string
		count     interface{}
		amount    interface{}
		remarks   string
		highlight bool
	}
	lines := []summaryLine{
		{"Total Invoices in GSTR-2B", summary.Gstr2BCount, money(q.TotalITCAvailableIn2B), "Total ITC available as per GSTR-2B", false},
		{"Total Invoices in Purchase Register", summary.PurchaseCount, money(q.TotalITCClaimedInPurchase), "Total ITC claimed in books", false},
		{"Successfully Matched Invoices", summary.Matched, money(q.TotalITCClaimedInPurchase), "Verified ITC", false},
		{"Invoices Missing in Purchase Register", summary.MissingInPurchase, money(summary.ITCAtRisk), "ITC at risk, add to books", true},
		{"Invoices Missing in GSTR-2B", summary.MissingIn2B, 0.0, "Follow up with suppliers", true},
		{"ITC Unclaimed", "-", money(itcUnclaimed), "Potential additional ITC available", true},
		{"Compliance Rate", q.ComplianceRate, "-", "Percentage of purchase invoices verified", false},
	}
	for _, line := range lines {
		setRow(f, sheet, row, []interface{}{line.parameter, line.count, line.amount, line.remarks})
		if line.highlight {
			styleRow(f, sheet, row, 1, 4, styles.highlight)
		} else if _, ok := line.amount.(float64); ok {
			styleRow(f, sheet, row, 3, 3, styles.currency)
		}
		row++
	}

	row += 2
	setRow(f, sheet, row, []interface{}{"Action Required:"})
	styleRow(f, sheet, row, 1, 1, styles.header)
	startCell, _ := excelize.CoordinatesToCellName(1, row)
	endCell, _ := excelize.CoordinatesToCellName(4, row)
	_ = f.MergeCell(sheet, startCell, endCell)
	row++

	actions := []string{
		fmt.Sprintf("1. Add %d missing invoices to purchase register to claim %s ITC", summary.MissingInPurchase, summary.ITCAtRisk.StringFixed(2)),
		fmt.Sprintf("2. Follow up with suppliers for %d invoices not reflecting in GSTR-2B", summary.MissingIn2B),
		"3. Ensure all future purchases are recorded in purchase register promptly",
		"4. Monthly reconciliation recommended to avoid ITC loss",
	}
	for _, action := range actions {
		setRow(f, sheet, row, []interface{}{action})
		row++
	}

	_ = f.SetColWidth(sheet, "A", "A", 40)
	_ = f.SetColWidth(sheet, "B", "D", 24)
}

func writeDetailsSheet(f *excelize.File, styles workbookStyles, results []models.ReconciliationResult) {
	sheet := sheetDetails

	setRow(f, sheet, 1, []interface{}{
		"Sr No", "Supplier GSTIN", "Invoice No", "Invoice Month",
		"Purchase Tax", "GSTR-2B Tax", "Difference", "ITC at Risk",
		"Status", "Action",
	})
	styleRow(f, sheet, 1, 1, 10, styles.header)

	mismatches := sortedByRisk(results, func(r models.ReconciliationResult) bool {
		return !r.Status.IsMatched()
	})

	row := 2
	totalRisk := decimal.Zero
	for i, r := range mismatches {
		setRow(f, sheet, row, []interface{}{
			i + 1,
			cellText(r.SupplierGSTIN),
			cellText(r.InvoiceNo),
			r.InvoiceMonth,
			money(r.PurchaseTax),
			money(r.Gstr2BTax),
			money(r.Gstr2BTax.Sub(r.PurchaseTax).Abs()),
			money(r.ITCAtRisk),
			string(r.Status),
			actionForStatus(r.Status),
		})
		styleRow(f, sheet, row, 5, 8, styles.currency)
		if r.ITCAtRisk.GreaterThan(priorityHighAbove) {
			styleRow(f, sheet, row, 8, 8, styles.red)
		}
		if r.Status == models.StatusMissingInPurchase {
			styleRow(f, sheet, row, 1, 10, styles.highlight)
		}
		totalRisk = totalRisk.Add(r.ITCAtRisk)
		row++
	}

	setRow(f, sheet, row, []interface{}{nil, nil, nil, "TOTAL:", nil, nil, nil, money(totalRisk)})
	styleRow(f, sheet, row, 8, 8, styles.currency)

	_ = f.SetColWidth(sheet, "A", "J", 18)
}

func writeMissingSheet(f *excelize.File, styles workbookStyles, results []models.ReconciliationResult) {
	sheet := sheetMissing

	setRow(f, sheet, 1, []interface{}{"Invoices in GSTR-2B but Missing in Purchase Register"})
	_ = f.MergeCell(sheet, "A1", "F1")
	_ = f.SetCellStyle(sheet, "A1", "A1", styles.title)
	setRow(f, sheet, 3, []interface{}{"Action Required: Add these invoices to purchase register to claim ITC"})

	setRow(f, sheet, 4, []interface{}{
		"Sr No", "Supplier GSTIN", "Invoice No", "Invoice Month", "Total Tax", "Priority",
	})
	styleRow(f, sheet, 4, 1, 6, styles.header)

	missing := results[:0:0]
	for _, r := range results {
		if r.Status == models.StatusMissingInPurchase {
			missing = append(missing, r)
		}
	}
	sortByGstr2BTaxDesc(missing)

	row := 5
	for i, r := range missing {
		setRow(f, sheet, row, []interface{}{
			i + 1,
			cellText(r.SupplierGSTIN),
			cellText(r.InvoiceNo),
			r.InvoiceMonth,
			money(r.Gstr2BTax),
			priorityFor(r.Gstr2BTax),
		})
		styleRow(f, sheet, row, 5, 5, styles.currency)
		if r.Gstr2BTax.GreaterThan(priorityHighAbove) {
			styleRow(f, sheet, row, 1, 6, styles.red)
		}
		row++
	}

	_ = f.SetColWidth(sheet, "A", "F", 20)
}

func writeMatchedSheet(f *excelize.File, styles workbookStyles, results []models.ReconciliationResult) {
	sheet := sheetMatched

	setRow(f, sheet, 1, []interface{}{"Successfully Matched Invoices"})
	_ = f.MergeCell(sheet, "A1", "F1")
	_ = f.SetCellStyle(sheet, "A1", "A1", styles.title)

	setRow(f, sheet, 2, []interface{}{
		"Supplier GSTIN", "Invoice No", "Invoice Month",
		"Purchase Tax", "GSTR-2B Tax", "Status",
	})
	styleRow(f, sheet, 2, 1, 6, styles.header)

	row := 3
	for _, r := range results {
		if !r.Status.IsMatched() {
			continue
		}
		setRow(f, sheet, row, []interface{}{
			cellText(r.SupplierGSTIN),
			cellText(r.InvoiceNo),
			r.InvoiceMonth,
			money(r.PurchaseTax),
			money(r.Gstr2BTax),
			string(r.Status),
		})
		styleRow(f, sheet, row, 4, 5, styles.currency)
		row++
	}

	_ = f.SetColWidth(sheet, "A", "F", 20)
}

func writeMonthlySheet(f *excelize.File, styles workbookStyles, results []models.ReconciliationResult) {
	sheet := sheetMonthly

	setRow(f, sheet, 1, []interface{}{"Month-wise ITC Analysis"})
	_ = f.MergeCell(sheet, "A1", "F1")
	_ = f.SetCellStyle(sheet, "A1", "A1", styles.title)

	setRow(f, sheet, 2, []interface{}{
		"Month", "Total Invoices", "ITC Available", "ITC Claimed", "ITC at Risk", "Compliance %",
	})
	styleRow(f, sheet, 2, 1, 6, styles.header)

	row := 3
	for _, m := range monthlyRollup(results) {
		compliance := 100.0
		if m.available.IsPositive() {
			pct, _ := m.claimed.Div(m.available).Mul(decimal.NewFromInt(100)).Float64()
			compliance = pct
		}
		setRow(f, sheet, row, []interface{}{
			m.month,
			m.invoices,
			money(m.available),
			money(m.claimed),
			money(m.risk),
			fmt.Sprintf("%.1f%%", compliance),
		})
		styleRow(f, sheet, row, 3, 5, styles.currency)
		if compliance < 80 {
			styleRow(f, sheet, row, 6, 6, styles.red)
		}
		row++
	}

	_ = f.SetColWidth(sheet, "A", "F", 20)
}

func writeSupplierSheet(f *excelize.File, styles workbookStyles, results []models.ReconciliationResult) {
	sheet := sheetSuppliers

	setRow(f, sheet, 1, []interface{}{"Supplier-wise ITC Analysis"})
	_ = f.MergeCell(sheet, "A1", "F1")
	_ = f.SetCellStyle(sheet, "A1", "A1", styles.title)

	setRow(f, sheet, 2, []interface{}{
		"Supplier GSTIN", "Total Invoices", "Matched", "Missing in Purchase", "ITC Amount", "ITC at Risk",
	})
	styleRow(f, sheet, 2, 1, 6, styles.header)

	row := 3
	for _, s := range buildSupplierAnalysis(results) {
		setRow(f, sheet, row, []interface{}{
			cellText(s.GSTIN),
			s.TotalInvoices,
			s.Matched,
			s.MissingInPurchase,
			money(s.TotalTax),
			money(s.ITCAtRisk),
		})
		styleRow(f, sheet, row, 5, 6, styles.currency)
		if s.ITCAtRisk.IsPositive() {
			styleRow(f, sheet, row, 4, 4, styles.highlight)
			styleRow(f, sheet, row, 6, 6, styles.red)
		}
		row++
	}

	_ = f.SetColWidth(sheet, "A", "F", 22)
}

type monthRollup struct {
	month     string
	invoices  int
	available decimal.Decimal
	claimed   decimal.Decimal
	risk      decimal.Decimal
}

func monthlyRollup(results []models.ReconciliationResult) []monthRollup {
	byMonth := make(map[string]*monthRollup)
	for _, r := range results {
		m, ok := byMonth[r.InvoiceMonth]
		if !ok {
			m = &monthRollup{
				month:     r.InvoiceMonth,
				available: decimal.Zero,
				claimed:   decimal.Zero,
				risk:      decimal.Zero,
			}
			byMonth[r.InvoiceMonth] = m
		}
		m.invoices++
		m.available = m.available.Add(r.Gstr2BTax)
		m.claimed = m.claimed.Add(r.PurchaseTax)
		m.risk = m.risk.Add(r.ITCAtRisk)
	}

	months := make([]monthRollup, 0, len(byMonth))
	for _, m := range byMonth {
		months = append(months, *m)
	}
	sortMonthRollups(months)
	return months
}

func sortedByRisk(results []models.ReconciliationResult, keep func(models.ReconciliationResult) bool) []models.ReconciliationResult {
	var out []models.ReconciliationResult
	for _, r := range results {
		if keep(r) {
			out = append(out, r)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].ITCAtRisk.GreaterThan(out[j].ITCAtRisk)
	})
	return out
}

func sortByGstr2BTaxDesc(results []models.ReconciliationResult) {
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Gstr2BTax.GreaterThan(results[j].Gstr2BTax)
	})
}

func sortMonthRollups(months []monthRollup) {
	sort.Slice(months, func(i, j int) bool { return months[i].month < months[j].month })
}

func periodCovered(results []models.ReconciliationResult) string {
	minMonth, maxMonth := "", ""
	for _, r := range results {
		if r.InvoiceMonth == "" {
			continue
		}
		if minMonth == "" || r.InvoiceMonth < minMonth {
			minMonth = r.InvoiceMonth
		}
		if r.InvoiceMonth > maxMonth {
			maxMonth = r.InvoiceMonth
		}
	}
	if minMonth == "" {
		return "N/A"
	}
	if minMonth == maxMonth {
		return minMonth
	}
	return minMonth + " to " + maxMonth
}
