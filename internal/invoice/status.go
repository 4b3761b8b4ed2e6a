package invoice

import (
	"github.com/shopspring/decimal"
	"invoicedesk/pkg/models"
)

// PaymentStatus classifies how much of an invoice has been paid.
type PaymentStatus string

const (
	StatusPaid    PaymentStatus = "paid"
	StatusPartial PaymentStatus = "partial"
	StatusUnpaid  PaymentStatus = "unpaid"
)

// Label is the human readable form written to the spreadsheet and CSV.
func (s PaymentStatus) Label() string {
	switch s {
	case StatusPaid:
		return "Paid"
	case StatusPartial:
		return "Partially Paid"
	default:
		return "Unpaid"
	}
}

// Classify returns Paid once paid covers final, Partial for any positive
// amount short of it, and Unpaid otherwise.
func Classify(final, paid decimal.Decimal) PaymentStatus {
	switch {
	case paid.GreaterThanOrEqual(final):
		return StatusPaid
	case paid.IsPositive():
		return StatusPartial
	default:
		return StatusUnpaid
	}
}

// StatusOf classifies a stored invoice.
func StatusOf(inv *models.Invoice) PaymentStatus {
	return Classify(Compute(inv).FinalAmount, inv.PaidAmount)
}
