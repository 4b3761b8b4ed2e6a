package invoice

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"invoicedesk/pkg/models"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name  string
		final string
		paid  string
		want  PaymentStatus
	}{
		{"fully paid", "5000", "5000", StatusPaid},
		{"overpaid", "5000", "6000", StatusPaid},
		{"partially paid", "5000", "2000", StatusPartial},
		{"one cent paid", "5000", "0.01", StatusPartial},
		{"nothing paid", "5000", "0", StatusUnpaid},
		{"negative paid", "5000", "-10", StatusUnpaid},
		{"zero invoice counts as paid", "0", "0", StatusPaid},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(d(tt.final), d(tt.paid)))
		})
	}
}

func TestStatusOf_PaidIffNothingDue(t *testing.T) {
	for _, paid := range []string{"0", "1", "2999.99", "3000", "3500"} {
		inv := &models.Invoice{
			Items:        items("2000", "1000"),
			Discount:     d("0"),
			DiscountType: models.DiscountPercentage,
			PaidAmount:   d(paid),
		}

		due := Compute(inv).DueAmount
		assert.Equal(t, !due.IsPositive(), StatusOf(inv) == StatusPaid, "paid=%s due=%s", paid, due)
	}
}

func TestPaymentStatus_Label(t *testing.T) {
	assert.Equal(t, "Paid", StatusPaid.Label())
	assert.Equal(t, "Partially Paid", StatusPartial.Label())
	assert.Equal(t, "Unpaid", StatusUnpaid.Label())
}
