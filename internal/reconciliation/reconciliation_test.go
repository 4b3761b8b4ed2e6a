package reconciliation

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"invoicedesk/internal/invoice"
	"invoicedesk/pkg/models"
)

type stubRanges struct {
	values [][]interface{}
	err    error
	asked  string
}

func (s *stubRanges) ReadRange(_ context.Context, rangeSpec string) ([][]interface{}, error) {
	s.asked = rangeSpec
	return s.values, s.err
}

func localRecords() []invoice.Record {
	return invoice.FlattenAll([]models.Invoice{
		{
			InvoiceNumber: "00001",
			Date:          "2025-01-15",
			Client:        models.ClientInfo{Name: "Sita", Address: "Pokhara"},
			Items:         []models.LineItem{{ID: "1", Description: "IELTS Class", Amount: decimal.NewFromInt(6300)}},
			DiscountType:  models.DiscountPercentage,
			PaidAmount:    decimal.NewFromInt(6300),
		},
		{
			InvoiceNumber: "00002",
			Date:          "2025-01-16",
			Client:        models.ClientInfo{Name: "Hari", Address: "Kathmandu"},
			Items:         []models.LineItem{{ID: "1", Description: "Consultation", Amount: decimal.NewFromInt(1000)}},
			DiscountType:  models.DiscountPercentage,
		},
	})
}

func TestReadInvoices(t *testing.T) {
	header := make([]interface{}, len(invoice.RecordHeaders))
	for i, h := range invoice.RecordHeaders {
		header[i] = h
	}
	stub := &stubRanges{values: [][]interface{}{
		header,
		{"00001", "1/15/2025", "Sita", "Pokhara", "", "IELTS Class: Rs 6300", "6,300", "0", "6,300", "6,300", "0", "Paid", ""},
		{"", "orphan"},
		{"00003", "1/17/2025", "Gita"},
	}}

	rows, err := NewDataReader(stub).ReadInvoices(context.Background(), "Invoices")
	require.NoError(t, err)

	assert.Equal(t, "Invoices!A:M", stub.asked)
	require.Len(t, rows, 2)
	assert.Equal(t, 2, rows[0].Row)
	assert.Equal(t, "6,300", rows[0].Record.FinalAmount)
	assert.Equal(t, 4, rows[1].Row)
	assert.Equal(t, "Gita", rows[1].Record.ClientName)
	assert.Empty(t, rows[1].Record.PaymentStatus)
}

func TestReadInvoices_Errors(t *testing.T) {
	_, err := NewDataReader(&stubRanges{}).ReadInvoices(context.Background(), "Invoices")
	assert.Error(t, err)

	readErr := errors.New("403")
	_, err = NewDataReader(&stubRanges{err: readErr}).ReadInvoices(context.Background(), "Invoices")
	assert.ErrorIs(t, err, readErr)
}

func TestCompare_InSync(t *testing.T) {
	local := localRecords()
	sheet := []SheetRow{
		{Row: 2, Record: local[0]},
		{Row: 3, Record: local[1]},
	}
	sheet[0].Record.FinalAmount = "6,300"

	report := Compare(local, sheet)
	assert.True(t, report.InSync())
	assert.Equal(t, 2, report.LocalCount)
	assert.Equal(t, 2, report.SheetCount)
}

func TestCompare_Drift(t *testing.T) {
	local := localRecords()
	stale := local[1]
	stale.PaidAmount = "500"
	stale.PaymentStatus = "Partially Paid"
	extra := invoice.Record{InvoiceNumber: "00009", ClientName: "Ghost"}

	report := Compare(local, []SheetRow{
		{Row: 2, Record: stale},
		{Row: 3, Record: extra},
		{Row: 4, Record: extra},
	})

	assert.False(t, report.InSync())
	assert.Equal(t, []string{"00001"}, report.MissingInSheet)
	assert.Equal(t, []string{"00009"}, report.ExtraInSheet)
	assert.Equal(t, []string{"00009"}, report.Duplicates)
	assert.ElementsMatch(t, []Mismatch{
		{InvoiceNumber: "00002", Column: "Paid Amount", Local: "0", Sheet: "500"},
		{InvoiceNumber: "00002", Column: "Payment Status", Local: "Unpaid", Sheet: "Partially Paid"},
	}, report.Mismatches)
}
