package receipt

import (
	"bytes"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"invoicedesk/internal/invoice"
	"invoicedesk/pkg/models"
)

var biz = Business{Name: "AbroadDesk Consultancy Pvt. Ltd.", Address: "Newroad, Pokhara"}

func sample() models.Invoice {
	return models.Invoice{
		InvoiceNumber: "00012",
		Date:          "2025-03-04",
		PANNumber:     "51825823",
		Client:        models.ClientInfo{Name: "Sita Gurung", Address: "Lakeside, Pokhara"},
		Items: []models.LineItem{
			{ID: "1", Description: "IELTS Class", Amount: decimal.NewFromInt(6000)},
			{ID: "2", Description: "Document Processing", Amount: decimal.NewFromInt(3000)},
		},
		Discount:         decimal.NewFromInt(5),
		DiscountType:     models.DiscountPercentage,
		PaidAmount:       decimal.NewFromInt(1000),
		ConfirmationName: "Hari",
	}
}

func TestWriteInvoice(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteInvoice(&buf, biz, sample()))

	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("%PDF")))
}

func TestWritePaymentReceipt(t *testing.T) {
	payment, err := invoice.ApplyPayment(sample(), decimal.NewFromInt(500), time.Date(2025, 3, 5, 9, 0, 0, 0, time.UTC))
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, WritePaymentReceipt(&buf, biz, payment))

	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("%PDF")))
}

func TestPrintDate(t *testing.T) {
	assert.Equal(t, "2025/03/04", printDate("2025-03-04"))
	assert.Equal(t, "soon", printDate("soon"))
}

func TestMoney(t *testing.T) {
	assert.Equal(t, "Rs 8550", money(decimal.RequireFromString("8550")))
	assert.Equal(t, "Rs 427.5", money(decimal.RequireFromString("427.50")))
}
