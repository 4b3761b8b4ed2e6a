package reconciliation

import (
	"sort"
	"strings"

	"github.com/samber/lo"
	"github.com/shopspring/decimal"
	"invoicedesk/internal/invoice"
)

// comparedColumns are the columns checked for drift. Amount columns compare
// by value so "6,300" in the sheet matches a local 6300.
var comparedColumns = []struct {
	name    string
	get     func(invoice.Record) string
	numeric bool
}{
	{name: "Client Name", get: func(r invoice.Record) string { return r.ClientName }},
	{name: "Total Amount", get: func(r invoice.Record) string { return r.TotalAmount }, numeric: true},
	{name: "Discount (%)", get: func(r invoice.Record) string { return r.Discount }, numeric: true},
	{name: "Final Amount", get: func(r invoice.Record) string { return r.FinalAmount }, numeric: true},
	{name: "Paid Amount", get: func(r invoice.Record) string { return r.PaidAmount }, numeric: true},
	{name: "Due Amount", get: func(r invoice.Record) string { return r.DueAmount }, numeric: true},
	{name: "Payment Status", get: func(r invoice.Record) string { return r.PaymentStatus }},
}

// Compare matches local records to sheet rows by invoice number.
func Compare(local []invoice.Record, sheet []SheetRow) *Report {
	report := &Report{
		LocalCount: len(local),
		SheetCount: len(sheet),
	}

	byNumber := lo.GroupBy(sheet, func(r SheetRow) string { return r.Record.InvoiceNumber })
	for number, rows := range byNumber {
		if len(rows) > 1 {
			report.Duplicates = append(report.Duplicates, number)
		}
	}

	localNumbers := make(map[string]bool, len(local))
	for _, rec := range local {
		localNumbers[rec.InvoiceNumber] = true

		rows, ok := byNumber[rec.InvoiceNumber]
		if !ok {
			report.MissingInSheet = append(report.MissingInSheet, rec.InvoiceNumber)
			continue
		}

		remote := rows[0].Record
		for _, col := range comparedColumns {
			l, s := col.get(rec), col.get(remote)
			if !sameValue(l, s, col.numeric) {
				report.Mismatches = append(report.Mismatches, Mismatch{
					InvoiceNumber: rec.InvoiceNumber,
					Column:        col.name,
					Local:         l,
					Sheet:         s,
				})
			}
		}
	}

	for number := range byNumber {
		if !localNumbers[number] {
			report.ExtraInSheet = append(report.ExtraInSheet, number)
		}
	}

	sort.Strings(report.MissingInSheet)
	sort.Strings(report.ExtraInSheet)
	sort.Strings(report.Duplicates)
	return report
}

func sameValue(local, sheet string, numeric bool) bool {
	if !numeric {
		return strings.TrimSpace(local) == strings.TrimSpace(sheet)
	}

	l, lerr := parseSheetAmount(local)
	s, serr := parseSheetAmount(sheet)
	if lerr != nil || serr != nil {
		return strings.TrimSpace(local) == strings.TrimSpace(sheet)
	}
	return l.Equal(s)
}

// parseSheetAmount reads an amount as the sheet displays it, tolerating a
// currency prefix and thousands separators.
func parseSheetAmount(s string) (decimal.Decimal, error) {
	cleaned := strings.TrimSpace(s)
	cleaned = strings.TrimPrefix(cleaned, invoice.CurrencyLabel)
	cleaned = strings.ReplaceAll(cleaned, ",", "")
	cleaned = strings.TrimSpace(cleaned)
	if cleaned == "" {
		return decimal.Zero, nil
	}
	return decimal.NewFromString(cleaned)
}
