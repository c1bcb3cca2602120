// backend/src/services/interfaces.go
package services

import (
	"errors"
	"io"
	"time"

	"github.com/shopspring/decimal"

	"github.com/username/gstrecon/backend/src/model"
	"github.com/username/gstrecon/backend/src/models"
)

// Result cache settings shared with main.go.
const (
	DefaultCacheExpiration = 30 * time.Minute
	CacheCleanupInterval   = 10 * time.Minute
)

// Define common service errors
var (
	ErrParsingFailed   = errors.New("workbook parsing failed")
	ErrReconcileFailed = errors.New("reconciliation failed")
	ErrRunNotFound     = errors.New("reconciliation run not found")
)

// QuickSummary is the at-a-glance block the frontend renders above the fold.
type QuickSummary struct {
	TotalInvoicesIn2B         int             `json:"totalInvoicesIn2B"`
	TotalInvoicesInPurchase   int             `json:"totalInvoicesInPurchase"`
	MatchedInvoices           int             `json:"matchedInvoices"`
	TotalITCAvailableIn2B     decimal.Decimal `json:"totalItcAvailableIn2B"`
	TotalITCClaimedInPurchase decimal.Decimal `json:"totalItcClaimedInPurchase"`
	ITCAtRisk                 decimal.Decimal `json:"itcAtRisk"`
	ComplianceRate            string          `json:"complianceRate"`
}

// ReconciliationSummary is the result of a single upload-and-reconcile call.
// It contains the headline counts plus the categorized per-invoice lists.
type ReconciliationSummary struct {
	RunID             string          `json:"runId"`
	PurchaseCount     int             `json:"purchaseCount"`
	Gstr2BCount       int             `json:"gstr2bCount"`
	TotalResults      int             `json:"totalResults"`
	Matched           int             `json:"matched"`
	Mismatch          int             `json:"mismatch"`
	MissingIn2B       int             `json:"missingIn2B"`
	MissingInPurchase int             `json:"missingInPurchase"`
	ITCAtRisk         decimal.Decimal `json:"itcAtRisk"`

	StatusBreakdown map[models.MatchStatus]int `json:"statusBreakdown"`

	// Mismatches carries everything that is not cleanly matched, sorted by
	// ITC at risk descending so the costly discrepancies surface first.
	Mismatches            []models.ReconciliationResult `json:"mismatches"`
	MissingIn2BList       []models.ReconciliationResult `json:"missingIn2BList"`
	MissingInPurchaseList []models.ReconciliationResult `json:"missingInPurchaseList"`
	MatchedItems          []models.ReconciliationResult `json:"matchedItems"`

	Summary QuickSummary `json:"summary"`
}

// MismatchDetail is one row of the detailed discrepancy report, annotated
// with the follow-up action and a priority band.
type MismatchDetail struct {
	SupplierGSTIN  string             `json:"supplierGstin"`
	InvoiceNo      string             `json:"invoiceNo"`
	InvoiceMonth   string             `json:"invoiceMonth"`
	Status         models.MatchStatus `json:"status"`
	PurchaseTax    decimal.Decimal    `json:"purchaseTaxAmount"`
	Gstr2BTax      decimal.Decimal    `json:"gstr2bTaxAmount"`
	TaxDifference  decimal.Decimal    `json:"taxDifference"`
	ITCAtRisk      decimal.Decimal    `json:"itcAtRiskAmount"`
	ActionRequired string             `json:"actionRequired"`
	Priority       string             `json:"priority"`
	Remarks        string             `json:"remarks"`
}

// MonthRiskSummary aggregates discrepancy exposure per invoice month.
type MonthRiskSummary struct {
	Month     string          `json:"month"`
	Count     int             `json:"count"`
	TotalRisk decimal.Decimal `json:"totalRisk"`
}

// DetailedReport is the response of the detailed-report endpoint.
type DetailedReport struct {
	TotalMismatches    int                         `json:"totalMismatches"`
	TotalITCAtRisk     decimal.Decimal             `json:"totalItcAtRisk"`
	MismatchesByAction map[string][]MismatchDetail `json:"mismatchesByAction"`
	AllMismatchDetails []MismatchDetail            `json:"allMismatchDetails"`
	MonthWiseSummary   []MonthRiskSummary          `json:"monthWiseSummary"`
	PurchaseCount      int                         `json:"purchaseInvoiceCount"`
	Gstr2BCount        int                         `json:"gstr2bInvoiceCount"`
}

// ActionItem is one follow-up task derived from a discrepancy.
type ActionItem struct {
	Action        string          `json:"action"`
	Priority      string          `json:"priority"`
	SupplierGSTIN string          `json:"supplierGstin"`
	InvoiceNo     string          `json:"invoiceNo"`
	InvoiceMonth  string          `json:"invoiceMonth"`
	TaxAmount     decimal.Decimal `json:"taxAmount"`
	Reason        string          `json:"reason"`
}

// SupplierAnalysis aggregates reconciliation outcomes per supplier GSTIN.
type SupplierAnalysis struct {
	GSTIN             string          `json:"gstin"`
	TotalInvoices     int             `json:"totalInvoices"`
	Matched           int             `json:"matched"`
	MissingInPurchase int             `json:"missingInPurchase"`
	TotalTax          decimal.Decimal `json:"totalTax"`
	ITCAtRisk         decimal.Decimal `json:"itcAtRisk"`
}

// MonthlyAnalysis aggregates ITC movement per invoice month.
type MonthlyAnalysis struct {
	Month         string          `json:"month"`
	TotalInvoices int             `json:"totalInvoices"`
	TotalTax      decimal.Decimal `json:"totalTax"`
	ITCClaimed    decimal.Decimal `json:"itcClaimed"`
	ITCAtRisk     decimal.Decimal `json:"itcAtRisk"`
}

// MissingInvoice is one high-value statement invoice absent from the register.
type MissingInvoice struct {
	SupplierGSTIN string          `json:"supplierGstin"`
	InvoiceNo     string          `json:"invoiceNo"`
	InvoiceMonth  string          `json:"invoiceMonth"`
	TaxAmount     decimal.Decimal `json:"taxAmount"`
}

// ActionReportSummary is the headline block of the action report.
type ActionReportSummary struct {
	TotalInvoices   int             `json:"totalInvoices"`
	MatchedInvoices int             `json:"matchedInvoices"`
	ComplianceScore string          `json:"complianceScore"`
	ITCAvailable    decimal.Decimal `json:"itcAvailable"`
	ITCClaimed      decimal.Decimal `json:"itcClaimed"`
	ITCAtRisk       decimal.Decimal `json:"itcAtRisk"`
	ITCUnclaimed    decimal.Decimal `json:"itcUnclaimed"`
}

// ActionReport is the prioritized to-do view of a reconciliation run.
type ActionReport struct {
	Summary           ActionReportSummary        `json:"summary"`
	StatusBreakdown   map[models.MatchStatus]int `json:"statusBreakdown"`
	ActionItems       []ActionItem               `json:"actionItems"`
	SupplierAnalysis  []SupplierAnalysis         `json:"supplierAnalysis"`
	MonthlyAnalysis   []MonthlyAnalysis          `json:"monthlyAnalysis"`
	TopMissingByValue []MissingInvoice           `json:"topMissingByValue"`
}

// RunOptions carries the optional metadata attached to a persisted run.
type RunOptions struct {
	ClientGSTIN string
	Period      string
}

// ReconciliationService defines the interface for the core upload-reconcile
// flow and the run history around it.
type ReconciliationService interface {
	ProcessReconciliation(purchaseFile, gstr2bFile io.Reader, opts RunOptions) (*ReconciliationSummary, error)
	BuildDetailedReport(purchaseFile, gstr2bFile io.Reader) (*DetailedReport, error)
	BuildActionReport(purchaseFile, gstr2bFile io.Reader) (*ActionReport, error)
	GenerateReportWorkbook(purchaseFile, gstr2bFile io.Reader) ([]byte, string, error)

	GetRun(runID string) (*model.ReconciliationRun, error)
	ListRuns(limit int) ([]*model.ReconciliationRun, error)
	// GetRunResults returns the cached per-invoice results of a recent run.
	// The second return is false once the cache entry has expired.
	GetRunResults(runID string) ([]models.ReconciliationResult, bool)
}
