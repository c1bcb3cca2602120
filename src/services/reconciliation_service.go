// backend/src/services/reconciliation_service.go
package services

import (
	"database/sql"
	"errors"
	"fmt"
	"io"
	"sort"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
	"github.com/shopspring/decimal"

	"github.com/username/gstrecon/backend/src/logger"
	"github.com/username/gstrecon/backend/src/model"
	"github.com/username/gstrecon/backend/src/models"
	"github.com/username/gstrecon/backend/src/parsers/excel"
	"github.com/username/gstrecon/backend/src/processors"
)

const ckRunResults = "run_results_%s"

type reconciliationServiceImpl struct {
	purchaseParser *excel.PurchaseParser
	gstr2bParser   *excel.Gstr2BParser
	processor      *processors.ReconciliationProcessor
	reportService  *ReportService
	db             *sql.DB
	resultCache    *cache.Cache
}

func NewReconciliationService(
	processor *processors.ReconciliationProcessor,
	reportService *ReportService,
	db *sql.DB,
	resultCache *cache.Cache,
) ReconciliationService {
	return &reconciliationServiceImpl{
		purchaseParser: excel.NewPurchaseParser(),
		gstr2bParser:   excel.NewGstr2BParser(),
		processor:      processor,
		reportService:  reportService,
		db:             db,
		resultCache:    resultCache,
	}
}

// parseAndReconcile is the shared front half of every endpoint: parse both
// workbooks, run the processor, return the raw inputs alongside the results.
func (s *reconciliationServiceImpl) parseAndReconcile(purchaseFile, gstr2bFile io.Reader) ([]models.PurchaseInvoice, []models.Gstr2BInvoice, []models.ReconciliationResult, error) {
	purchases, err := s.purchaseParser.Parse(purchaseFile)
	if err != nil {
		logger.L.Error("failed to parse purchase register", "error", err)
		return nil, nil, nil, fmt.Errorf("%w: purchase register: %v", ErrParsingFailed, err)
	}
	statement, err := s.gstr2bParser.Parse(gstr2bFile)
	if err != nil {
		logger.L.Error("failed to parse GSTR-2B statement", "error", err)
		return nil, nil, nil, fmt.Errorf("%w: GSTR-2B statement: %v", ErrParsingFailed, err)
	}

	results, err := s.processor.Reconcile(purchases, statement)
	if err != nil {
		logger.L.Error("reconciliation failed", "error", err,
			"purchaseCount", len(purchases), "gstr2bCount", len(statement))
		return nil, nil, nil, fmt.Errorf("%w: %v", ErrReconcileFailed, err)
	}
	return purchases, statement, results, nil
}

func (s *reconciliationServiceImpl) ProcessReconciliation(purchaseFile, gstr2bFile io.Reader, opts RunOptions) (*ReconciliationSummary, error) {
	purchases, statement, results, err := s.parseAndReconcile(purchaseFile, gstr2bFile)
	if err != nil {
		return nil, err
	}

	runID := uuid.NewString()
	summary := buildSummary(runID, purchases, statement, results)

	s.resultCache.Set(fmt.Sprintf(ckRunResults, runID), results, DefaultCacheExpiration)

	run := &model.ReconciliationRun{
		RunID:          runID,
		ClientGSTIN:    opts.ClientGSTIN,
		Period:         opts.Period,
		PurchaseCount:  int64(len(purchases)),
		Gstr2BCount:    int64(len(statement)),
		TotalResults:   int64(len(results)),
		MatchedCount:   int64(summary.Matched),
		MismatchCount:  int64(summary.Mismatch),
		MissingIn2B:    int64(summary.MissingIn2B),
		MissingInPurch: int64(summary.MissingInPurchase),
	}
	run.SetITCAtRisk(summary.ITCAtRisk)
	if err := run.Create(s.db); err != nil {
		// The caller still gets their numbers; only the audit row is lost.
		logger.L.Error("failed to persist reconciliation run", "runID", runID, "error", err)
	}

	logger.L.Info("reconciliation complete",
		"runID", runID,
		"purchaseCount", len(purchases),
		"gstr2bCount", len(statement),
		"matched", summary.Matched,
		"mismatch", summary.Mismatch,
		"missingIn2B", summary.MissingIn2B,
		"missingInPurchase", summary.MissingInPurchase,
		"itcAtRisk", summary.ITCAtRisk.StringFixed(2),
	)
	return summary, nil
}

func (s *reconciliationServiceImpl) BuildDetailedReport(purchaseFile, gstr2bFile io.Reader) (*DetailedReport, error) {
	purchases, statement, results, err := s.parseAndReconcile(purchaseFile, gstr2bFile)
	if err != nil {
		return nil, err
	}
	return s.reportService.BuildDetailedReport(len(purchases), len(statement), results), nil
}

func (s *reconciliationServiceImpl) BuildActionReport(purchaseFile, gstr2bFile io.Reader) (*ActionReport, error) {
	_, _, results, err := s.parseAndReconcile(purchaseFile, gstr2bFile)
	if err != nil {
		return nil, err
	}
	return s.reportService.BuildActionReport(results), nil
}

func (s *reconciliationServiceImpl) GenerateReportWorkbook(purchaseFile, gstr2bFile io.Reader) ([]byte, string, error) {
	purchases, statement, results, err := s.parseAndReconcile(purchaseFile, gstr2bFile)
	if err != nil {
		return nil, "", err
	}
	summary := buildSummary("", purchases, statement, results)
	return s.reportService.GenerateWorkbook(summary, results)
}

func (s *reconciliationServiceImpl) GetRun(runID string) (*model.ReconciliationRun, error) {
	run, err := model.GetRunByRunID(s.db, runID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrRunNotFound
		}
		return nil, err
	}
	return run, nil
}

func (s *reconciliationServiceImpl) ListRuns(limit int) ([]*model.ReconciliationRun, error) {
	return model.ListRuns(s.db, limit)
}

func (s *reconciliationServiceImpl) GetRunResults(runID string) ([]models.ReconciliationResult, bool) {
	cached, found := s.resultCache.Get(fmt.Sprintf(ckRunResults, runID))
	if !found {
		return nil, false
	}
	return cached.([]models.ReconciliationResult), true
}

// buildSummary aggregates per-invoice results into the response payload.
func buildSummary(runID string, purchases []models.PurchaseInvoice, statement []models.Gstr2BInvoice, results []models.ReconciliationResult) *ReconciliationSummary {
	summary := &ReconciliationSummary{
		RunID:           runID,
		PurchaseCount:   len(purchases),
		Gstr2BCount:     len(statement),
		TotalResults:    len(results),
		ITCAtRisk:       decimal.Zero,
		StatusBreakdown: make(map[models.MatchStatus]int),
	}

	for _, r := range results {
		summary.StatusBreakdown[r.Status]++
		summary.ITCAtRisk = summary.ITCAtRisk.Add(r.ITCAtRisk)

		switch r.Status {
		case models.StatusMatched, models.StatusMatchedTolerance:
			summary.Matched++
			summary.MatchedItems = append(summary.MatchedItems, r)
		case models.StatusMismatch:
			summary.Mismatch++
			summary.Mismatches = append(summary.Mismatches, r)
		case models.StatusMissingIn2B:
			summary.MissingIn2B++
			summary.MissingIn2BList = append(summary.MissingIn2BList, r)
			summary.Mismatches = append(summary.Mismatches, r)
		case models.StatusMissingInPurchase:
			summary.MissingInPurchase++
			summary.MissingInPurchaseList = append(summary.MissingInPurchaseList, r)
			summary.Mismatches = append(summary.Mismatches, r)
		}
	}

	sort.SliceStable(summary.Mismatches, func(i, j int) bool {
		return summary.Mismatches[i].ITCAtRisk.GreaterThan(summary.Mismatches[j].ITCAtRisk)
	})

	summary.Summary = buildQuickSummary(purchases, statement, summary)
	return summary
}

func buildQuickSummary(purchases []models.PurchaseInvoice, statement []models.Gstr2BInvoice, s *ReconciliationSummary) QuickSummary {
	available := decimal.Zero
	for i := range statement {
		available = available.Add(processors.TotalTax(statement[i].IGST, statement[i].CGST, statement[i].SGST))
	}
	claimed := decimal.Zero
	for i := range purchases {
		claimed = claimed.Add(processors.TotalTax(purchases[i].IGST, purchases[i].CGST, purchases[i].SGST))
	}

	rate := "0.0%"
	if len(purchases) > 0 {
		pct := decimal.NewFromInt(int64(s.Matched)).
			Div(decimal.NewFromInt(int64(len(purchases)))).
			Mul(decimal.NewFromInt(100))
		rate = pct.StringFixed(1) + "%"
	}

	return QuickSummary{
		TotalInvoicesIn2B:         len(statement),
		TotalInvoicesInPurchase:   len(purchases),
		MatchedInvoices:           s.Matched,
		TotalITCAvailableIn2B:     available,
		TotalITCClaimedInPurchase: claimed,
		ITCAtRisk:                 s.ITCAtRisk,
		ComplianceRate:            rate,
	}
}
