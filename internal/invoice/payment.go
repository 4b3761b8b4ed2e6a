package invoice

import (
	"time"

	"github.com/shopspring/decimal"
	"invoicedesk/pkg/models"
)

// Payment describes one amount applied against an invoice. It carries
// everything the payment receipt prints.
type Payment struct {
	Invoice      models.Invoice  `json:"invoice"` // Invoice after the payment
	Amount       decimal.Decimal `json:"amount"`
	PreviousDue  decimal.Decimal `json:"previous_due"`
	RemainingDue decimal.Decimal `json:"remaining_due"`
	PaidAt       time.Time       `json:"paid_at"`
}

// ApplyPayment adds amount to the invoice's paid total after checking it is
// positive and no larger than what is still due. inv is left untouched; the
// updated copy is returned inside the Payment.
func ApplyPayment(inv models.Invoice, amount decimal.Decimal, at time.Time) (*Payment, error) {
	const op = "ApplyPayment"

	if !amount.IsPositive() {
		return nil, NewPaymentError(op, inv.InvoiceNumber, ErrInvalidPaymentAmount)
	}

	due := Compute(&inv).DueAmount
	if amount.GreaterThan(due) {
		return nil, NewPaymentError(op, inv.InvoiceNumber, ErrPaymentExceedsDue)
	}

	updated := inv.Clone()
	updated.PaidAmount = updated.PaidAmount.Add(amount)

	return &Payment{
		Invoice:      updated,
		Amount:       amount,
		PreviousDue:  due,
		RemainingDue: Compute(&updated).DueAmount,
		PaidAt:       at,
	}, nil
}
