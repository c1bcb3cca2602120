// backend/src/services/report_service.go
package services

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/username/gstrecon/backend/src/models"
)

// Priority bands for discrepancy follow-up, in currency units.
var (
	priorityHighAbove   = decimal.NewFromInt(10000)
	priorityMediumAbove = decimal.NewFromInt(1000)
)

// ReportService turns raw reconciliation results into the analyst-facing
// report shapes: the detailed discrepancy report, the prioritized action
// report and the downloadable workbook.
type ReportService struct{}

func NewReportService() *ReportService {
	return &ReportService{}
}

// BuildDetailedReport annotates every non-matched result with its follow-up
// action and priority band, sorted by ITC at risk descending.
func (rs *ReportService) BuildDetailedReport(purchaseCount, gstr2bCount int, results []models.ReconciliationResult) *DetailedReport {
	report := &DetailedReport{
		TotalITCAtRisk:     decimal.Zero,
		MismatchesByAction: make(map[string][]MismatchDetail),
		PurchaseCount:      purchaseCount,
		Gstr2BCount:        gstr2bCount,
	}

	for _, r := range results {
		if r.Status.IsMatched() {
			continue
		}
		detail := MismatchDetail{
			SupplierGSTIN:  r.SupplierGSTIN,
			InvoiceNo:      r.InvoiceNo,
			InvoiceMonth:   r.InvoiceMonth,
			Status:         r.Status,
			PurchaseTax:    r.PurchaseTax,
			Gstr2BTax:      r.Gstr2BTax,
			TaxDifference:  r.Gstr2BTax.Sub(r.PurchaseTax).Abs(),
			ITCAtRisk:      r.ITCAtRisk,
			ActionRequired: actionForStatus(r.Status),
			Priority:       priorityFor(r.ITCAtRisk),
			Remarks:        r.Remarks,
		}
		report.AllMismatchDetails = append(report.AllMismatchDetails, detail)
		report.TotalITCAtRisk = report.TotalITCAtRisk.Add(detail.ITCAtRisk)
	}

	sort.SliceStable(report.AllMismatchDetails, func(i, j int) bool {
		return report.AllMismatchDetails[i].ITCAtRisk.GreaterThan(report.AllMismatchDetails[j].ITCAtRisk)
	})
	report.TotalMismatches = len(report.AllMismatchDetails)

	for _, d := range report.AllMismatchDetails {
		report.MismatchesByAction[d.ActionRequired] = append(report.MismatchesByAction[d.ActionRequired], d)
	}

	byMonth := make(map[string]*MonthRiskSummary)
	for _, d := range report.AllMismatchDetails {
		m, ok := byMonth[d.InvoiceMonth]
		if !ok {
			m = &MonthRiskSummary{Month: d.InvoiceMonth, TotalRisk: decimal.Zero}
			byMonth[d.InvoiceMonth] = m
		}
		m.Count++
		m.TotalRisk = m.TotalRisk.Add(d.ITCAtRisk)
	}
	for _, m := range byMonth {
		report.MonthWiseSummary = append(report.MonthWiseSummary, *m)
	}
	sort.Slice(report.MonthWiseSummary, func(i, j int) bool {
		return report.MonthWiseSummary[i].Month < report.MonthWiseSummary[j].Month
	})

	return report
}

// BuildActionReport aggregates results into compliance metrics, supplier and
// monthly breakdowns, and a prioritized list of follow-up actions.
func (rs *ReportService) BuildActionReport(results []models.ReconciliationResult) *ActionReport {
	report := &ActionReport{
		StatusBreakdown: make(map[models.MatchStatus]int),
	}

	itcClaimed := decimal.Zero
	itcAtRisk := decimal.Zero
	itcAvailable := decimal.Zero
	for _, r := range results {
		report.StatusBreakdown[r.Status]++
		itcClaimed = itcClaimed.Add(r.PurchaseTax)
		itcAtRisk = itcAtRisk.Add(r.ITCAtRisk)
		// ITC counts as available when the statement confirms the invoice:
		// matched either way, or reported by the supplier but not yet booked.
		if r.Status.IsMatched() || r.Status == models.StatusMissingInPurchase {
			itcAvailable = itcAvailable.Add(decimal.Max(r.Gstr2BTax, r.PurchaseTax))
		}
	}

	matched := report.StatusBreakdown[models.StatusMatched] +
		report.StatusBreakdown[models.StatusMatchedTolerance]
	score := "100.00%"
	if len(results) > 0 {
		score = decimal.NewFromInt(int64(matched)).
			Div(decimal.NewFromInt(int64(len(results)))).
			Mul(decimal.NewFromInt(100)).
			StringFixed(2) + "%"
	}
	report.Summary = ActionReportSummary{
		TotalInvoices:   len(results),
		MatchedInvoices: matched,
		ComplianceScore: score,
		ITCAvailable:    itcAvailable,
		ITCClaimed:      itcClaimed,
		ITCAtRisk:       itcAtRisk,
		ITCUnclaimed:    itcAvailable.Sub(itcClaimed),
	}

	report.ActionItems = buildActionItems(results)
	report.SupplierAnalysis = buildSupplierAnalysis(results)
	report.MonthlyAnalysis = buildMonthlyAnalysis(results)
	report.TopMissingByValue = topMissingByValue(results, 10)
	return report
}

func buildActionItems(results []models.ReconciliationResult) []ActionItem {
	var items []ActionItem

	var missing []models.ReconciliationResult
	for _, r := range results {
		if r.Status == models.StatusMissingInPurchase {
			missing = append(missing, r)
		}
	}
	sort.SliceStable(missing, func(i, j int) bool {
		return missing[i].Gstr2BTax.GreaterThan(missing[j].Gstr2BTax)
	})
	for _, r := range missing {
		items = append(items, ActionItem{
			Action:        "ADD_TO_PURCHASE_REGISTER",
			Priority:      "HIGH",
			SupplierGSTIN: r.SupplierGSTIN,
			InvoiceNo:     r.InvoiceNo,
			InvoiceMonth:  r.InvoiceMonth,
			TaxAmount:     r.Gstr2BTax,
			Reason:        "Invoice exists in GSTR-2B but not in purchase register",
		})
	}

	for _, r := range results {
		if r.Status == models.StatusMismatch {
			items = append(items, ActionItem{
				Action:        "VERIFY_TAX_AMOUNT",
				Priority:      "MEDIUM",
				SupplierGSTIN: r.SupplierGSTIN,
				InvoiceNo:     r.InvoiceNo,
				InvoiceMonth:  r.InvoiceMonth,
				TaxAmount:     r.Gstr2BTax,
				Reason:        r.Remarks,
			})
		}
	}
	return items
}

func buildSupplierAnalysis(results []models.ReconciliationResult) []SupplierAnalysis {
	bySupplier := make(map[string]*SupplierAnalysis)
	var order []string
	for _, r := range results {
		s, ok := bySupplier[r.SupplierGSTIN]
		if !ok {
			s = &SupplierAnalysis{
				GSTIN:     r.SupplierGSTIN,
				TotalTax:  decimal.Zero,
				ITCAtRisk: decimal.Zero,
			}
			bySupplier[r.SupplierGSTIN] = s
			order = append(order, r.SupplierGSTIN)
		}
		s.TotalInvoices++
		if r.Status.IsMatched() {
			s.Matched++
		} else if r.Status == models.StatusMissingInPurchase {
			s.MissingInPurchase++
		}
		s.TotalTax = s.TotalTax.Add(r.Gstr2BTax)
		s.ITCAtRisk = s.ITCAtRisk.Add(r.ITCAtRisk)
	}

	analysis := make([]SupplierAnalysis, 0, len(order))
	for _, gstin := range order {
		analysis = append(analysis, *bySupplier[gstin])
	}
	return analysis
}

func buildMonthlyAnalysis(results []models.ReconciliationResult) []MonthlyAnalysis {
	byMonth := make(map[string]*MonthlyAnalysis)
	for _, r := range results {
		m, ok := byMonth[r.InvoiceMonth]
		if !ok {
			m = &MonthlyAnalysis{
				Month:      r.InvoiceMonth,
				TotalTax:   decimal.Zero,
				ITCClaimed: decimal.Zero,
				ITCAtRisk:  decimal.Zero,
			}
			byMonth[r.InvoiceMonth] = m
		}
		m.TotalInvoices++
		m.TotalTax = m.TotalTax.Add(r.Gstr2BTax)
		if r.Status == models.StatusMissingInPurchase {
			m.ITCAtRisk = m.ITCAtRisk.Add(r.ITCAtRisk)
		} else {
			m.ITCClaimed = m.ITCClaimed.Add(r.PurchaseTax)
		}
	}

	analysis := make([]MonthlyAnalysis, 0, len(byMonth))
	for _, m := range byMonth {
		analysis = append(analysis, *m)
	}
	sort.Slice(analysis, func(i, j int) bool { return analysis[i].Month < analysis[j].Month })
	return analysis
}

func topMissingByValue(results []models.ReconciliationResult, limit int) []MissingInvoice {
	var missing []models.ReconciliationResult
	for _, r := range results {
		if r.Status == models.StatusMissingInPurchase {
			missing = append(missing, r)
		}
	}
	sort.SliceStable(missing, func(i, j int) bool {
		return missing[i].Gstr2BTax.GreaterThan(missing[j].Gstr2BTax)
	})
	if len(missing) > limit {
		missing = missing[:limit]
	}

	top := make([]MissingInvoice, 0, len(missing))
	for _, r := range missing {
		top = append(top, MissingInvoice{
			SupplierGSTIN: r.SupplierGSTIN,
			InvoiceNo:     r.InvoiceNo,
			InvoiceMonth:  r.InvoiceMonth,
			TaxAmount:     r.Gstr2BTax,
		})
	}
	return top
}

func actionForStatus(status models.MatchStatus) string {
	switch status {
	case models.StatusMissingInPurchase:
		return "Add to Purchase Register"
	case models.StatusMissingIn2B:
		return "Follow up with Supplier"
	case models.StatusMismatch:
		return "Verify Tax Amount"
	default:
		return "Review"
	}
}

func priorityFor(amount decimal.Decimal) string {
	switch {
	case amount.GreaterThan(priorityHighAbove):
		return "HIGH"
	case amount.GreaterThan(priorityMediumAbove):
		return "MEDIUM"
	default:
		return "LOW"
	}
}
