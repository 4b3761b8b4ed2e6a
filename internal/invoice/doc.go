// Package invoice holds the money rules of an invoice and nothing else.
//
// Every surface that shows an invoice derives its numbers from the helpers
// here so they can never disagree:
//   - Calculate / Compute: total, discount, final and due amounts
//   - Classify / StatusOf: paid, partially paid or unpaid
//   - NextNumber: sequential zero-padded invoice numbers
//   - ApplyPayment: the clear-due-amount rule (0 < amount <= due)
//   - Validate: fields required before an invoice can be saved
//   - Flatten: the record written to the spreadsheet and the CSV export
//
// Amounts are shopspring/decimal values. The discount is always stored as a
// percentage by the editor; fixed discounts are still honoured when loaded.
package invoice
