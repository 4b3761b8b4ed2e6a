package invoice_test

import (
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"invoicedesk/internal/invoice"
	"invoicedesk/pkg/models"
)

// Example demonstrates deriving the money block of an invoice.
func Example() {
	inv := models.Invoice{
		InvoiceNumber: "00001",
		Items: []models.LineItem{
			{ID: "1", Description: "IELTS Class", Amount: decimal.NewFromInt(6000)},
			{ID: "2", Description: "Consultation", Amount: decimal.NewFromInt(1000)},
		},
		Discount:     decimal.NewFromInt(10),
		DiscountType: models.DiscountPercentage,
		PaidAmount:   decimal.NewFromInt(2000),
	}

	totals := invoice.Compute(&inv)
	fmt.Printf("Total: %s\n", totals.Total)
	fmt.Printf("Discount: %s\n", totals.DiscountAmount)
	fmt.Printf("Final: %s\n", totals.FinalAmount)
	fmt.Printf("Due: %s\n", totals.DueAmount)
	fmt.Printf("Status: %s\n", invoice.StatusOf(&inv).Label())

	// Output:
	// Total: 7000
	// Discount: 700
	// Final: 6300
	// Due: 4300
	// Status: Partially Paid
}

// ExampleApplyPayment demonstrates the clear-due-amount rule.
func ExampleApplyPayment() {
	inv := models.Invoice{
		InvoiceNumber: "00007",
		Items:         []models.LineItem{{ID: "1", Description: "PTE Class", Amount: decimal.NewFromInt(5000)}},
		DiscountType:  models.DiscountPercentage,
		PaidAmount:    decimal.NewFromInt(2000),
	}

	if _, err := invoice.ApplyPayment(inv, decimal.NewFromInt(3001), time.Now()); errors.Is(err, invoice.ErrPaymentExceedsDue) {
		fmt.Println("rejected:", err)
	}

	payment, err := invoice.ApplyPayment(inv, decimal.NewFromInt(3000), time.Now())
	if err != nil {
		fmt.Println(err)
		return
	}
	fmt.Printf("paid %s, remaining %s, status %s\n",
		payment.Invoice.PaidAmount, payment.RemainingDue, invoice.StatusOf(&payment.Invoice).Label())

	// Output:
	// rejected: invoice: ApplyPayment failed (invoice: 00007): payment amount exceeds due amount
	// paid 5000, remaining 0, status Paid
}

// ExampleNextNumber demonstrates sequential numbering.
func ExampleNextNumber() {
	existing := []models.Invoice{{InvoiceNumber: "00001"}, {InvoiceNumber: "00003"}}

	fmt.Println(invoice.NextNumber(existing))
	fmt.Println(invoice.NextNumber(nil))

	// Output:
	// 00004
	// 00001
}
