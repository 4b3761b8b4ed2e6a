package services

import (
	"context"
	"io"
	"time"

	"github.com/shopspring/decimal"
	"invoicedesk/internal/invoice"
	"invoicedesk/pkg/models"
)

// InvoiceService defines every user-facing invoice operation. Each mutation
// is applied and persisted synchronously; the spreadsheet mirror is updated
// in the background afterwards.
type InvoiceService interface {
	// Draft returns a new unsaved invoice with today's defaults and a preview
	// of the next invoice number.
	Draft() models.Invoice

	// Create validates and stores a new invoice. Identifier, number and
	// creation time are assigned on save.
	Create(ctx context.Context, inv models.Invoice) (*InvoiceView, error)

	// Update validates and replaces an existing invoice.
	Update(ctx context.Context, inv models.Invoice) (*InvoiceView, error)

	// Delete permanently removes the invoice with the given number.
	Delete(ctx context.Context, number string) error

	// ClearDue records a payment against the invoice with the given number.
	ClearDue(ctx context.Context, number string, amount decimal.Decimal) (*invoice.Payment, error)

	// SyncNow pushes the whole collection to the spreadsheet and waits for it.
	SyncNow(ctx context.Context) error

	// List returns every invoice with its derived amounts.
	List() []InvoiceView

	// Search filters by invoice number or client name.
	Search(term string) []InvoiceView

	// Find looks an invoice up by its number.
	Find(number string) (*InvoiceView, error)

	// Export writes the CSV export of every invoice.
	Export(w io.Writer) error

	// NextNumber previews the number of the next created invoice.
	NextNumber() string

	// LastSync is the time of the last successful spreadsheet sync.
	LastSync() time.Time
}

// InvoiceView is an invoice together with its derived amounts
type InvoiceView struct {
	Invoice models.Invoice        `json:"invoice"`
	Totals  invoice.Totals        `json:"totals"`
	Status  invoice.PaymentStatus `json:"status"`
}

// NewInvoiceView derives the amounts and status of inv.
func NewInvoiceView(inv models.Invoice) InvoiceView {
	totals := invoice.Compute(&inv)
	return InvoiceView{
		Invoice: inv,
		Totals:  totals,
		Status:  invoice.Classify(totals.FinalAmount, inv.PaidAmount),
	}
}
