// Package export writes the invoice table as CSV.
package export

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/samber/lo"
	"invoicedesk/internal/invoice"
	"invoicedesk/pkg/models"
)

// DefaultFilename is used when no output file is given.
const DefaultFilename = "invoice_data.csv"

// WriteCSV writes a header line and one line per invoice. Every field is
// quoted, inner quotes are doubled and lines end with "\n".
func WriteCSV(w io.Writer, invoices []models.Invoice) error {
	const op = "WriteCSV"

	bw := bufio.NewWriter(w)

	if _, err := bw.WriteString(csvLine(invoice.RecordHeaders)); err != nil {
		return fmt.Errorf("%s: failed to write header: %w", op, err)
	}
	for _, rec := range invoice.FlattenAll(invoices) {
		if _, err := bw.WriteString(csvLine(rec.Values())); err != nil {
			return fmt.Errorf("%s: failed to write invoice %s: %w", op, rec.InvoiceNumber, err)
		}
	}

	if err := bw.Flush(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

func csvLine(fields []string) string {
	quoted := lo.Map(fields, func(f string, _ int) string {
		return `"` + strings.ReplaceAll(f, `"`, `""`) + `"`
	})
	return strings.Join(quoted, ",") + "\n"
}
