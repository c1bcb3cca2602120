// backend/src/models/reconciliation.go
package models

import (
	"github.com/shopspring/decimal"
)

// MatchStatus classifies the outcome of comparing one purchase invoice against
// the GSTR-2B statement (or one unclaimed statement invoice against the
// purchase register). Every status is terminal.
type MatchStatus string

const (
	StatusMatched           MatchStatus = "MATCHED"
	StatusMatchedTolerance  MatchStatus = "MATCHED_WITH_TOLERANCE"
	StatusMismatch          MatchStatus = "MISMATCH"
	StatusMissingIn2B       MatchStatus = "MISSING_IN_2B"
	StatusMissingInPurchase MatchStatus = "MISSING_IN_PURCHASE"
)

// IsMatched reports whether the status represents a reconciled pair, with or
// without tolerance.
func (s MatchStatus) IsMatched() bool {
	return s == StatusMatched || s == StatusMatchedTolerance
}

// ReconciliationResult is the per-invoice outcome of a reconciliation run.
// Exactly one result exists per purchase invoice, plus one per statement
// invoice never claimed during the purchase sweep. InvoiceMonth is the
// "YYYY-MM" month of whichever side carried a date, empty when neither did.
type ReconciliationResult struct {
	SupplierGSTIN string          `json:"supplierGstin"`
	InvoiceNo     string          `json:"invoiceNo"`
	Status        MatchStatus     `json:"status"`
	PurchaseTax   decimal.Decimal `json:"purchaseTax"`
	Gstr2BTax     decimal.Decimal `json:"gstr2bTax"`
	ITCAtRisk     decimal.Decimal `json:"itcAtRisk"`
	Remarks       string          `json:"remarks"`
	InvoiceMonth  string          `json:"invoiceMonth"`
}
