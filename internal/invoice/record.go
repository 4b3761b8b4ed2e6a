package invoice

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/samber/lo"
	"invoicedesk/pkg/models"
)

// CurrencyLabel prefixes amounts in item summaries and printouts.
const CurrencyLabel = "Rs"

// RecordDateLayout is how the issue date appears in exported records.
const RecordDateLayout = "1/2/2006"

// RecordHeaders are the column titles shared by the spreadsheet and the CSV export.
var RecordHeaders = []string{
	"Invoice No",
	"Date",
	"Client Name",
	"Client Address",
	"Client Phone",
	"Items",
	"Total Amount",
	"Discount (%)",
	"Final Amount",
	"Paid Amount",
	"Due Amount",
	"Payment Status",
	"Confirmed By",
}

// Record is the flattened, display-ready form of one invoice.
type Record struct {
	InvoiceNumber string
	Date          string
	ClientName    string
	ClientAddress string
	ClientPhone   string
	Items         string
	TotalAmount   string
	Discount      string
	FinalAmount   string
	PaidAmount    string
	DueAmount     string
	PaymentStatus string
	ConfirmedBy   string
}

// Flatten derives the export record of an invoice.
func Flatten(inv models.Invoice) Record {
	totals := Compute(&inv)

	return Record{
		InvoiceNumber: inv.InvoiceNumber,
		Date:          formatRecordDate(inv.Date),
		ClientName:    inv.Client.Name,
		ClientAddress: inv.Client.Address,
		ClientPhone:   inv.Client.Phone,
		Items:         SummarizeItems(inv.Items),
		TotalAmount:   totals.Total.String(),
		Discount:      inv.Discount.String(),
		FinalAmount:   totals.FinalAmount.String(),
		PaidAmount:    inv.PaidAmount.String(),
		DueAmount:     totals.DueAmount.String(),
		PaymentStatus: Classify(totals.FinalAmount, inv.PaidAmount).Label(),
		ConfirmedBy:   inv.ConfirmationName,
	}
}

// FlattenAll flattens a collection, keeping its order.
func FlattenAll(invoices []models.Invoice) []Record {
	return lo.Map(invoices, func(inv models.Invoice, _ int) Record {
		return Flatten(inv)
	})
}

// SummarizeItems renders items as "desc: Rs 100; other: Rs 50".
func SummarizeItems(items []models.LineItem) string {
	parts := lo.Map(items, func(item models.LineItem, _ int) string {
		return fmt.Sprintf("%s: %s %s", item.Description, CurrencyLabel, item.Amount.String())
	})
	return strings.Join(parts, "; ")
}

// Values returns the record in RecordHeaders order.
func (r Record) Values() []string {
	return []string{
		r.InvoiceNumber,
		r.Date,
		r.ClientName,
		r.ClientAddress,
		r.ClientPhone,
		r.Items,
		r.TotalAmount,
		r.Discount,
		r.FinalAmount,
		r.PaidAmount,
		r.DueAmount,
		r.PaymentStatus,
		r.ConfirmedBy,
	}
}

// numericColumns are sent to the spreadsheet as numbers rather than text.
var numericColumns = map[string]bool{
	"Total Amount": true,
	"Discount (%)": true,
	"Final Amount": true,
	"Paid Amount":  true,
	"Due Amount":   true,
}

// Map keys the record by column header, the shape the Apps Script expects.
func (r Record) Map() map[string]any {
	return lo.Associate(lo.Zip2(RecordHeaders, r.Values()), func(t lo.Tuple2[string, string]) (string, any) {
		if numericColumns[t.A] {
			return t.A, json.Number(t.B)
		}
		return t.A, t.B
	})
}

func formatRecordDate(date string) string {
	t, err := time.Parse(models.DateLayout, date)
	if err != nil {
		return date
	}
	return t.Format(RecordDateLayout)
}
