package invoice

import (
	"strconv"
	"time"

	"github.com/shopspring/decimal"
	"invoicedesk/pkg/models"
)

// NewDraft returns the empty invoice the editor starts from: dated today,
// one blank custom item, no discount and nothing paid. The number is a
// preview of what the next save will assign.
func NewDraft(existing []models.Invoice, pan string, now time.Time) models.Invoice {
	today := now.Format(models.DateLayout)
	return models.Invoice{
		InvoiceNumber: NextNumber(existing),
		Date:          today,
		PANNumber:     pan,
		Items: []models.LineItem{
			{ID: "1", Preset: CustomPreset, Amount: decimal.Zero},
		},
		Discount:         decimal.Zero,
		DiscountType:     models.DiscountPercentage,
		PaidAmount:       decimal.Zero,
		ConfirmationDate: today,
	}
}

// NumberItems gives items without an identifier their 1-based position.
func NumberItems(items []models.LineItem) []models.LineItem {
	for i := range items {
		if items[i].ID == "" {
			items[i].ID = strconv.Itoa(i + 1)
		}
	}
	return items
}
