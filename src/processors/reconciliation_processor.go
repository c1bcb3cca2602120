// backend/src/processors/reconciliation_processor.go
package processors

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/username/gstrecon/backend/src/models"
)

const (
	// DefaultTaxTolerance is the absolute tax difference (in currency units)
	// below which two totals reconcile as MATCHED_WITH_TOLERANCE.
	DefaultTaxTolerance = "1.00"
	// DefaultDateWindowDays bounds the date proximity check used by the
	// same-supplier fuzzy strategy.
	DefaultDateWindowDays = 30
)

// ReconciliationProcessor matches a purchase register against a GSTR-2B
// statement and classifies every invoice on both sides. It holds only the
// run-independent thresholds; each Reconcile call builds its own index and
// claimed set, so independent runs are safe to execute concurrently.
type ReconciliationProcessor struct {
	tolerance      decimal.Decimal
	dateWindowDays int
}

func NewReconciliationProcessor() *ReconciliationProcessor {
	return &ReconciliationProcessor{
		tolerance:      decimal.RequireFromString(DefaultTaxTolerance),
		dateWindowDays: DefaultDateWindowDays,
	}
}

// NewReconciliationProcessorWith overrides the matching thresholds, keeping
// defaults for any zero value.
func NewReconciliationProcessorWith(tolerance decimal.Decimal, dateWindowDays int) *ReconciliationProcessor {
	rp := NewReconciliationProcessor()
	if tolerance.IsPositive() {
		rp.tolerance = tolerance
	}
	if dateWindowDays > 0 {
		rp.dateWindowDays = dateWindowDays
	}
	return rp
}

// Reconcile runs the two-phase sweep. Phase 1 walks the purchase register in
// input order, finds the best statement counterpart for each invoice and
// classifies the pair; phase 2 then emits one MISSING_IN_PURCHASE result for
// every statement row whose exact key was never claimed, again in input
// order. The returned slice always holds exactly one result per purchase
// invoice plus one per unclaimed statement invoice; a violation of that
// accounting is a bug and surfaces as an error rather than a short result set.
func (rp *ReconciliationProcessor) Reconcile(purchases []models.PurchaseInvoice, stmt []models.Gstr2BInvoice) ([]models.ReconciliationResult, error) {
	idx := NewGstr2BIndex(stmt)
	claimed := make(map[string]bool, len(stmt))
	results := make([]models.ReconciliationResult, 0, len(purchases)+len(stmt))

	// Phase 1: purchase-driven sweep.
	for i := range purchases {
		p := &purchases[i]
		purchaseTax := TotalTax(p.IGST, p.CGST, p.SGST)
		month := monthOf(p.InvoiceDate)

		match := rp.findBestMatch(p, idx, purchaseTax)
		if match == nil {
			results = append(results, models.ReconciliationResult{
				SupplierGSTIN: p.SupplierGSTIN,
				InvoiceNo:     p.InvoiceNo,
				Status:        models.StatusMissingIn2B,
				PurchaseTax:   purchaseTax,
				Gstr2BTax:     decimal.Zero,
				ITCAtRisk:     purchaseTax,
				Remarks:       "No matching invoice found in GSTR-2B",
				InvoiceMonth:  month,
			})
			continue
		}

		// The claim is keyed by the matched row's own identifiers, not the
		// purchase side's: phase 2 must recognize the row however it was
		// reached.
		claimed[exactKey(NormalizeGSTIN(match.inv.SupplierGSTIN), NormalizeInvoiceNo(match.inv.InvoiceNo))] = true

		results = append(results, rp.classify(p, match, purchaseTax, month))
	}

	// Phase 2: surface statement rows never claimed above.
	unclaimed := 0
	for i := range stmt {
		g := &stmt[i]
		if claimed[exactKey(NormalizeGSTIN(g.SupplierGSTIN), NormalizeInvoiceNo(g.InvoiceNo))] {
			continue
		}
		unclaimed++
		gTax := TotalTax(g.IGST, g.CGST, g.SGST)
		results = append(results, models.ReconciliationResult{
			SupplierGSTIN: g.SupplierGSTIN,
			InvoiceNo:     g.InvoiceNo,
			Status:        models.StatusMissingInPurchase,
			PurchaseTax:   decimal.Zero,
			Gstr2BTax:     gTax,
			ITCAtRisk:     gTax,
			Remarks:       "Invoice present in GSTR-2B but not in purchase register",
			InvoiceMonth:  monthOf(g.InvoiceDate),
		})
	}

	if len(results) != len(purchases)+unclaimed {
		return nil, fmt.Errorf("reconciliation internal consistency: %d results for %d purchase and %d unclaimed statement invoices",
			len(results), len(purchases), unclaimed)
	}
	return results, nil
}

// classify compares the tax totals of a matched pair and produces its result.
func (rp *ReconciliationProcessor) classify(p *models.PurchaseInvoice, match *indexedInvoice, purchaseTax decimal.Decimal, month string) models.ReconciliationResult {
	gTax := match.tax

	if purchaseTax.Equal(gTax) {
		return models.ReconciliationResult{
			SupplierGSTIN: p.SupplierGSTIN,
			InvoiceNo:     p.InvoiceNo,
			Status:        models.StatusMatched,
			PurchaseTax:   purchaseTax,
			Gstr2BTax:     gTax,
			ITCAtRisk:     decimal.Zero,
			Remarks:       buildRemarks(p, match.inv, "Matched"),
			InvoiceMonth:  month,
		}
	}

	diff := purchaseTax.Sub(gTax).Abs()
	if diff.LessThanOrEqual(rp.tolerance) {
		return models.ReconciliationResult{
			SupplierGSTIN: p.SupplierGSTIN,
			InvoiceNo:     p.InvoiceNo,
			Status:        models.StatusMatchedTolerance,
			PurchaseTax:   purchaseTax,
			Gstr2BTax:     gTax,
			ITCAtRisk:     decimal.Zero,
			Remarks:       buildRemarks(p, match.inv, "Tax amount differs by "+diff.String()),
			InvoiceMonth:  month,
		}
	}

	return models.ReconciliationResult{
		SupplierGSTIN: p.SupplierGSTIN,
		InvoiceNo:     p.InvoiceNo,
		Status:        models.StatusMismatch,
		PurchaseTax:   purchaseTax,
		Gstr2BTax:     gTax,
		ITCAtRisk:     decimal.Max(purchaseTax.Sub(gTax), decimal.Zero),
		Remarks:       buildRemarks(p, match.inv, "Tax amount differs by "+diff.String()),
		InvoiceMonth:  month,
	}
}

// TotalTax sums the three tax components, rounding to 2 decimals half-up
// after each addition. Zero-valued components are simply zero addends.
func TotalTax(igst, cgst, sgst decimal.Decimal) decimal.Decimal {
	return igst.Add(cgst).Round(2).Add(sgst).Round(2)
}

// buildRemarks records both sides' raw identifiers so an auditor can retrace
// how a fuzzy match was made.
func buildRemarks(p *models.PurchaseInvoice, g *models.Gstr2BInvoice, reason string) string {
	return reason +
		" | Purchase GSTIN: " + p.SupplierGSTIN +
		" | 2B GSTIN: " + g.SupplierGSTIN +
		" | Purchase Inv: " + p.InvoiceNo +
		" | 2B Inv: " + g.InvoiceNo
}

func monthOf(d time.Time) string {
	if d.IsZero() {
		return ""
	}
	return d.Format("2006-01")
}
