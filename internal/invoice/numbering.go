package invoice

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/samber/lo"
	"invoicedesk/pkg/models"
)

// NumberWidth is the zero padding of invoice numbers.
const NumberWidth = 5

// ParseNumber reads the numeric part of an invoice number: leading zeros are
// dropped and the following run of digits is parsed. Anything else yields 0.
//
// Unlike a JavaScript parseInt, a sign is not read ("-5" gives 0) and a run of
// digits too large for an int also gives 0. Numbers this tool assigns are
// always small and unsigned, so neither case arises for them.
func ParseNumber(number string) int {
	s := strings.TrimLeft(strings.TrimSpace(number), "0")
	end := strings.IndexFunc(s, func(r rune) bool { return r < '0' || r > '9' })
	if end >= 0 {
		s = s[:end]
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0
	}
	return n
}

// FormatNumber renders n as a zero-padded invoice number.
func FormatNumber(n int) string {
	return fmt.Sprintf("%0*d", NumberWidth, n)
}

// NextNumber returns the successor of the highest invoice number in the
// collection, "00001" when it is empty.
//
// Two processes creating invoices at the same time can pick the same number;
// the tool assumes a single operator.
func NextNumber(invoices []models.Invoice) string {
	highest := lo.Max(lo.Map(invoices, func(inv models.Invoice, _ int) int {
		return ParseNumber(inv.InvoiceNumber)
	}))
	return FormatNumber(highest + 1)
}
