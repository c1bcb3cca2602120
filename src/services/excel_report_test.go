// backend/src/services/excel_report_test.go
package services

import (
	"bytes"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/username/gstrecon/backend/src/models"
)

func TestGenerateWorkbook(t *testing.T) {
	results := []models.ReconciliationResult{
		result(models.StatusMatched, "29AAAAA0000A1Z5", "A1", "2025-04", d(t, "118"), d(t, "118"), decimal.Zero),
		result(models.StatusMismatch, "29AAAAA0000A1Z5", "A2", "2025-04", d(t, "150"), d(t, "100"), d(t, "50")),
		result(models.StatusMissingInPurchase, "27BBBBB0000B1Z5", "=B2", "2025-06", decimal.Zero, d(t, "2500"), d(t, "2500")),
	}
	summary := &ReconciliationSummary{
		RunID:             "test-run",
		PurchaseCount:     2,
		Gstr2BCount:       2,
		TotalResults:      3,
		Matched:           1,
		Mismatch:          1,
		MissingInPurchase: 1,
		ITCAtRisk:         d(t, "2550"),
		Summary: QuickSummary{
			TotalInvoicesIn2B:         2,
			TotalInvoicesInPurchase:   2,
			MatchedInvoices:           1,
			TotalITCAvailableIn2B:     d(t, "2718"),
			TotalITCClaimedInPurchase: d(t, "268"),
			ITCAtRisk:                 d(t, "2550"),
			ComplianceRate:            "50.0%",
		},
	}

	data, filename, err := NewReportService().GenerateWorkbook(summary, results)
	require.NoError(t, err)
	require.NotEmpty(t, data)
	assert.True(t, strings.HasPrefix(filename, "GST_Reconciliation_Report_"))
	assert.True(t, strings.HasSuffix(filename, ".xlsx"))

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{
		"Executive Summary",
		"Reconciliation Details",
		"Missing In Purchase Register",
		"Matched Invoices",
		"Monthly ITC Summary",
		"Supplier-wise Summary",
	}, f.GetSheetList())

	title, err := f.GetCellValue("Executive Summary", "A1")
	require.NoError(t, err)
	assert.Equal(t, "GSTR-2B vs Purchase Register Reconciliation Report", title)

	period, err := f.GetCellValue("Executive Summary", "A4")
	require.NoError(t, err)
	assert.Equal(t, "Period: 2025-04 to 2025-06", period)

	// Details rows come out sorted by risk descending, and formula-looking
	// invoice numbers are neutralized before writing.
	detailInvoice, err := f.GetCellValue("Reconciliation Details", "C2")
	require.NoError(t, err)
	assert.Equal(t, "'=B2", detailInvoice)
	detailInvoice, err = f.GetCellValue("Reconciliation Details", "C3")
	require.NoError(t, err)
	assert.Equal(t, "A2", detailInvoice)

	missingInvoice, err := f.GetCellValue("Missing In Purchase Register", "C5")
	require.NoError(t, err)
	assert.Equal(t, "'=B2", missingInvoice)

	matchedInvoice, err := f.GetCellValue("Matched Invoices", "B3")
	require.NoError(t, err)
	assert.Equal(t, "A1", matchedInvoice)
}

func TestPeriodCovered(t *testing.T) {
	assert.Equal(t, "N/A", periodCovered(nil))

	single := []models.ReconciliationResult{{InvoiceMonth: "2025-04"}}
	assert.Equal(t, "2025-04", periodCovered(single))

	spread := []models.ReconciliationResult{
		{InvoiceMonth: "2025-06"},
		{InvoiceMonth: ""},
		{InvoiceMonth: "2025-04"},
	}
	assert.Equal(t, "2025-04 to 2025-06", periodCovered(spread))
}
