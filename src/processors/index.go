// backend/src/processors/index.go
package processors

import (
	"github.com/shopspring/decimal"

	"github.com/username/gstrecon/backend/src/models"
)

// indexedInvoice is one GSTR-2B statement row as seen by the matcher, carrying
// its input position (tie-break order) and its pre-computed total tax.
type indexedInvoice struct {
	pos int
	inv *models.Gstr2BInvoice
	tax decimal.Decimal
}

// Gstr2BIndex is an immutable lookup snapshot over a GSTR-2B statement. Every
// statement row is inserted under four projections at once -- exact
// (GSTIN+invoice), invoice-only, numeric and by-supplier -- so that the looser
// matching strategies can still reach a row whose exact key never hits. Built
// once per reconciliation run; never mutated afterwards.
type Gstr2BIndex struct {
	exact      map[string][]*indexedInvoice
	byInvoice  map[string][]*indexedInvoice
	byNumeric  map[string][]*indexedInvoice
	bySupplier map[string][]*indexedInvoice
}

// NewGstr2BIndex builds the lookup snapshot in a single pass over the
// statement, preserving input order within every bucket.
func NewGstr2BIndex(stmt []models.Gstr2BInvoice) *Gstr2BIndex {
	idx := &Gstr2BIndex{
		exact:      make(map[string][]*indexedInvoice),
		byInvoice:  make(map[string][]*indexedInvoice),
		byNumeric:  make(map[string][]*indexedInvoice),
		bySupplier: make(map[string][]*indexedInvoice),
	}

	for i := range stmt {
		inv := &stmt[i]
		entry := &indexedInvoice{
			pos: i,
			inv: inv,
			tax: TotalTax(inv.IGST, inv.CGST, inv.SGST),
		}

		gstin := NormalizeGSTIN(inv.SupplierGSTIN)
		invoiceNo := NormalizeInvoiceNo(inv.InvoiceNo)

		idx.exact[exactKey(gstin, invoiceNo)] = append(idx.exact[exactKey(gstin, invoiceNo)], entry)
		idx.byInvoice[invoiceNo] = append(idx.byInvoice[invoiceNo], entry)
		idx.byNumeric[NumericSuffix(invoiceNo)] = append(idx.byNumeric[NumericSuffix(invoiceNo)], entry)
		idx.bySupplier[gstin] = append(idx.bySupplier[gstin], entry)
	}

	return idx
}

// exactKey joins the two normalized identifiers into the claim/lookup key.
func exactKey(normalizedGSTIN, normalizedInvoiceNo string) string {
	return normalizedGSTIN + "|" + normalizedInvoiceNo
}
