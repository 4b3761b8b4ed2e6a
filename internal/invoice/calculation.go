package invoice

import (
	"strings"

	"github.com/shopspring/decimal"
	"invoicedesk/pkg/models"
)

var hundred = decimal.NewFromInt(100)

// Totals is the derived money block of an invoice.
type Totals struct {
	Total          decimal.Decimal `json:"total"`
	DiscountAmount decimal.Decimal `json:"discount_amount"`
	FinalAmount    decimal.Decimal `json:"final_amount"`
	DueAmount      decimal.Decimal `json:"due_amount"`
}

// Calculate derives the totals from raw invoice fields.
//
// It is the only place the total/discount/due formula lives; every view of an
// invoice (list, show, payment, receipt, printable PDF, CSV, spreadsheet) goes
// through it. An empty or unknown discount type counts as a percentage.
func Calculate(items []models.LineItem, discount decimal.Decimal, discountType models.DiscountType, paid decimal.Decimal) Totals {
	total := decimal.Zero
	for _, item := range items {
		total = total.Add(item.Amount)
	}

	var discountAmount decimal.Decimal
	if discountType == models.DiscountFixed {
		discountAmount = discount
	} else {
		discountAmount = total.Mul(discount).Div(hundred)
	}

	final := total.Sub(discountAmount)

	return Totals{
		Total:          total,
		DiscountAmount: discountAmount,
		FinalAmount:    final,
		DueAmount:      final.Sub(paid),
	}
}

// Compute is Calculate applied to a stored invoice.
func Compute(inv *models.Invoice) Totals {
	return Calculate(inv.Items, inv.Discount, inv.DiscountType, inv.PaidAmount)
}

// ParseAmount converts user input to an amount, falling back to zero when the
// text is empty or not a number.
func ParseAmount(s string) decimal.Decimal {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return decimal.Zero
	}
	return d
}
