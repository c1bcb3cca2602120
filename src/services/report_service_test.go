// backend/src/services/report_service_test.go
package services

import (
	"os"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/username/gstrecon/backend/src/logger"
	"github.com/username/gstrecon/backend/src/models"
)

func TestMain(m *testing.M) {
	logger.InitLogger("error")
	os.Exit(m.Run())
}

func d(t *testing.T, s string) decimal.Decimal {
	t.Helper()
	v, err := decimal.NewFromString(s)
	require.NoError(t, err)
	return v
}

func result(status models.MatchStatus, gstin, invoice, month string, pTax, gTax, risk decimal.Decimal) models.ReconciliationResult {
	return models.ReconciliationResult{
		SupplierGSTIN: gstin,
		InvoiceNo:     invoice,
		InvoiceMonth:  month,
		Status:        status,
		PurchaseTax:   pTax,
		Gstr2BTax:     gTax,
		ITCAtRisk:     risk,
	}
}

func TestBuildDetailedReport(t *testing.T) {
	results := []models.ReconciliationResult{
		result(models.StatusMatched, "29AAAAA0000A1Z5", "A1", "2025-04", d(t, "118"), d(t, "118"), decimal.Zero),
		result(models.StatusMismatch, "29AAAAA0000A1Z5", "A2", "2025-04", d(t, "150"), d(t, "100"), d(t, "50")),
		result(models.StatusMissingIn2B, "27BBBBB0000B1Z5", "B1", "2025-05", d(t, "12000"), decimal.Zero, d(t, "12000")),
		result(models.StatusMissingInPurchase, "27BBBBB0000B1Z5", "B2", "2025-05", decimal.Zero, d(t, "2500"), d(t, "2500")),
	}

	report := NewReportService().BuildDetailedReport(3, 3, results)

	assert.Equal(t, 3, report.TotalMismatches)
	assert.Equal(t, 3, report.PurchaseCount)
	assert.Equal(t, 3, report.Gstr2BCount)
	assert.True(t, report.TotalITCAtRisk.Equal(d(t, "14550")))

	// Sorted by ITC at risk descending; matched rows excluded entirely.
	require.Len(t, report.AllMismatchDetails, 3)
	assert.Equal(t, "B1", report.AllMismatchDetails[0].InvoiceNo)
	assert.Equal(t, "HIGH", report.AllMismatchDetails[0].Priority)
	assert.Equal(t, "Follow up with Supplier", report.AllMismatchDetails[0].ActionRequired)
	assert.Equal(t, "B2", report.AllMismatchDetails[1].InvoiceNo)
	assert.Equal(t, "MEDIUM", report.AllMismatchDetails[1].Priority)
	assert.Equal(t, "A2", report.AllMismatchDetails[2].InvoiceNo)
	assert.Equal(t, "LOW", report.AllMismatchDetails[2].Priority)
	assert.True(t, report.AllMismatchDetails[2].TaxDifference.Equal(d(t, "50")))

	assert.Len(t, report.MismatchesByAction["Follow up with Supplier"], 1)
	assert.Len(t, report.MismatchesByAction["Verify Tax Amount"], 1)
	assert.Len(t, report.MismatchesByAction["Add to Purchase Register"], 1)

	require.Len(t, report.MonthWiseSummary, 2)
	assert.Equal(t, "2025-04", report.MonthWiseSummary[0].Month)
	assert.Equal(t, 1, report.MonthWiseSummary[0].Count)
	assert.True(t, report.MonthWiseSummary[0].TotalRisk.Equal(d(t, "50")))
	assert.Equal(t, "2025-05", report.MonthWiseSummary[1].Month)
	assert.Equal(t, 2, report.MonthWiseSummary[1].Count)
	assert.True(t, report.MonthWiseSummary[1].TotalRisk.Equal(d(t, "14500")))
}

func TestPriorityBands(t *testing.T) {
	cases := []struct {
		amount string
		want   string
	}{
		{"10000.01", "HIGH"},
		{"10000", "MEDIUM"},
		{"1000.01", "MEDIUM"},
		{"1000", "LOW"},
		{"0", "LOW"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, priorityFor(d(t, tc.amount)), "amount %s", tc.amount)
	}
}

func TestBuildActionReport(t *testing.T) {
	results := []models.ReconciliationResult{
		result(models.StatusMatched, "29AAAAA0000A1Z5", "A1", "2025-04", d(t, "118"), d(t, "118"), decimal.Zero),
		result(models.StatusMatchedTolerance, "29AAAAA0000A1Z5", "A2", "2025-04", d(t, "100"), d(t, "100.50"), decimal.Zero),
		result(models.StatusMismatch, "27BBBBB0000B1Z5", "B1", "2025-05", d(t, "150"), d(t, "100"), d(t, "50")),
		result(models.StatusMissingInPurchase, "27BBBBB0000B1Z5", "B2", "2025-05", decimal.Zero, d(t, "200"), d(t, "200")),
	}

	report := NewReportService().BuildActionReport(results)

	assert.Equal(t, 4, report.Summary.TotalInvoices)
	assert.Equal(t, 2, report.Summary.MatchedInvoices)
	assert.Equal(t, "50.00%", report.Summary.ComplianceScore)
	assert.True(t, report.Summary.ITCClaimed.Equal(d(t, "368")))
	assert.True(t, report.Summary.ITCAtRisk.Equal(d(t, "250")))
	// Available: max of the two sides for matched rows plus the unbooked
	// statement invoice. 118 + 100.50 + 200.
	assert.True(t, report.Summary.ITCAvailable.Equal(d(t, "418.50")))
	assert.True(t, report.Summary.ITCUnclaimed.Equal(d(t, "50.50")))

	require.Len(t, report.ActionItems, 2)
	assert.Equal(t, "ADD_TO_PURCHASE_REGISTER", report.ActionItems[0].Action)
	assert.Equal(t, "HIGH", report.ActionItems[0].Priority)
	assert.Equal(t, "B2", report.ActionItems[0].InvoiceNo)
	assert.Equal(t, "VERIFY_TAX_AMOUNT", report.ActionItems[1].Action)
	assert.Equal(t, "MEDIUM", report.ActionItems[1].Priority)

	require.Len(t, report.SupplierAnalysis, 2)
	first := report.SupplierAnalysis[0]
	assert.Equal(t, "29AAAAA0000A1Z5", first.GSTIN)
	assert.Equal(t, 2, first.TotalInvoices)
	assert.Equal(t, 2, first.Matched)
	second := report.SupplierAnalysis[1]
	assert.Equal(t, 1, second.MissingInPurchase)
	assert.True(t, second.ITCAtRisk.Equal(d(t, "250")))

	require.Len(t, report.MonthlyAnalysis, 2)
	may := report.MonthlyAnalysis[1]
	assert.Equal(t, "2025-05", may.Month)
	assert.Equal(t, 2, may.TotalInvoices)
	assert.True(t, may.ITCClaimed.Equal(d(t, "150")))
	assert.True(t, may.ITCAtRisk.Equal(d(t, "200")))

	require.Len(t, report.TopMissingByValue, 1)
	assert.Equal(t, "B2", report.TopMissingByValue[0].InvoiceNo)
}

func TestBuildActionReportEmpty(t *testing.T) {
	report := NewReportService().BuildActionReport(nil)

	assert.Equal(t, 0, report.Summary.TotalInvoices)
	assert.Equal(t, "100.00%", report.Summary.ComplianceScore)
	assert.Empty(t, report.ActionItems)
	assert.Empty(t, report.TopMissingByValue)
}

func TestTopMissingByValueLimit(t *testing.T) {
	var results []models.ReconciliationResult
	for i := 0; i < 15; i++ {
		results = append(results, result(
			models.StatusMissingInPurchase,
			"29AAAAA0000A1Z5",
			"M"+decimal.NewFromInt(int64(i)).String(),
			"2025-04",
			decimal.Zero,
			decimal.NewFromInt(int64(100+i)),
			decimal.Zero,
		))
	}

	top := topMissingByValue(results, 10)
	require.Len(t, top, 10)
	assert.True(t, top[0].TaxAmount.Equal(d(t, "114")))
	assert.True(t, top[9].TaxAmount.Equal(d(t, "105")))
}
