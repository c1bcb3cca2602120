// backend/src/models/invoice.go
package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// PurchaseInvoice is one line of the taxpayer's purchase register, as produced
// by the purchase excel parser. The reconciliation processor treats it as
// read-only.
type PurchaseInvoice struct {
	SupplierGSTIN string          `json:"supplierGstin"`
	InvoiceNo     string          `json:"invoiceNo"`
	InvoiceDate   time.Time       `json:"invoiceDate"`
	IGST          decimal.Decimal `json:"igst"`
	CGST          decimal.Decimal `json:"cgst"`
	SGST          decimal.Decimal `json:"sgst"`
	Particulars   string          `json:"particulars"`
	GrossTotal    decimal.Decimal `json:"grossTotal"`
}

// Gstr2BInvoice is one supplier-reported invoice from the government GSTR-2B
// statement. InvoiceDate may be zero when the statement row carried no usable
// date.
type Gstr2BInvoice struct {
	SupplierGSTIN string          `json:"supplierGstin"`
	InvoiceNo     string          `json:"invoiceNo"`
	InvoiceDate   time.Time       `json:"invoiceDate"`
	IGST          decimal.Decimal `json:"igst"`
	CGST          decimal.Decimal `json:"cgst"`
	SGST          decimal.Decimal `json:"sgst"`
	TaxableValue  decimal.Decimal `json:"taxableValue"`
	InvoiceValue  decimal.Decimal `json:"invoiceValue"`
	LegalName     string          `json:"legalName,omitempty"`
}

// HasDate reports whether the statement row carried a parseable invoice date.
func (g *Gstr2BInvoice) HasDate() bool {
	return !g.InvoiceDate.IsZero()
}
