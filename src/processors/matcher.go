// backend/src/processors/matcher.go
package processors

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/username/gstrecon/backend/src/models"
)

// findBestMatch locates the GSTR-2B row that most plausibly corresponds to one
// purchase invoice. Strategies run strictest-first; the first strategy that
// yields any candidate decides the outcome and the cascade stops. Returns nil
// when every strategy misses.
func (rp *ReconciliationProcessor) findBestMatch(p *models.PurchaseInvoice, idx *Gstr2BIndex, purchaseTax decimal.Decimal) *indexedInvoice {
	gstin := NormalizeGSTIN(p.SupplierGSTIN)
	invoiceNo := NormalizeInvoiceNo(p.InvoiceNo)

	// Strategy 1: exact GSTIN + invoice key.
	if candidates := idx.exact[exactKey(gstin, invoiceNo)]; len(candidates) > 0 {
		return closestTaxMatch(candidates, purchaseTax)
	}

	// Strategy 2: same supplier, fuzzy invoice, date within the window.
	// First qualifying row wins; no tax tie-break at this stage.
	for _, candidate := range idx.bySupplier[gstin] {
		if !invoiceFuzzyMatch(invoiceNo, NormalizeInvoiceNo(candidate.inv.InvoiceNo)) {
			continue
		}
		if datesClose(p.InvoiceDate, candidate.inv.InvoiceDate, rp.dateWindowDays) {
			return candidate
		}
	}

	// Strategy 3: invoice number alone, supplier identity ignored.
	if candidates := idx.byInvoice[invoiceNo]; len(candidates) > 0 {
		return closestTaxMatch(candidates, purchaseTax)
	}

	// Strategy 4: trailing digit run alone.
	if candidates := idx.byNumeric[NumericSuffix(invoiceNo)]; len(candidates) > 0 {
		return closestTaxMatch(candidates, purchaseTax)
	}

	return nil
}

// invoiceFuzzyMatch compares two already-normalized invoice numbers, accepting
// direct equality, equality after re-folding confusable characters, or
// equality of the residual base once series decorations are stripped from
// both sides.
func invoiceFuzzyMatch(a, b string) bool {
	if a == b {
		return true
	}
	if confusableFolder.Replace(a) == confusableFolder.Replace(b) {
		return true
	}
	return stripDecorations(a) == stripDecorations(b)
}

// datesClose reports whether both dates are present and within windowDays
// calendar days of each other. A missing date on either side disqualifies.
func datesClose(a, b time.Time, windowDays int) bool {
	if a.IsZero() || b.IsZero() {
		return false
	}
	diff := a.Sub(b)
	if diff < 0 {
		diff = -diff
	}
	return diff <= time.Duration(windowDays)*24*time.Hour
}

// closestTaxMatch picks the candidate whose total tax minimizes
// |candidateTax - targetTax|. Ties resolve to the earlier input position, so
// selection is a total order and reproducible.
func closestTaxMatch(candidates []*indexedInvoice, targetTax decimal.Decimal) *indexedInvoice {
	best := candidates[0]
	bestDiff := best.tax.Sub(targetTax).Abs()
	for _, c := range candidates[1:] {
		diff := c.tax.Sub(targetTax).Abs()
		if diff.LessThan(bestDiff) || (diff.Equal(bestDiff) && c.pos < best.pos) {
			best = c
			bestDiff = diff
		}
	}
	return best
}
