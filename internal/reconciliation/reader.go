package reconciliation

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	"invoicedesk/internal/invoice"
	"invoicedesk/internal/logger"
)

// RangeReader reads a block of cells. *sheets.Service implements it.
type RangeReader interface {
	ReadRange(ctx context.Context, rangeSpec string) ([][]interface{}, error)
}

// DataReader handles reading mirrored invoices back from Google Sheets
type DataReader struct {
	sheetsService RangeReader
	log           zerolog.Logger
}

// NewDataReader creates a new data reader for Google Sheets
func NewDataReader(sheetsService RangeReader) *DataReader {
	return &DataReader{
		sheetsService: sheetsService,
		log:           logger.WithComponent("reconciliation-reader"),
	}
}

// ReadInvoices reads every data row of the worksheet. Expected columns are
// the export columns A..M, with the header in row 1.
func (dr *DataReader) ReadInvoices(ctx context.Context, sheetName string) ([]SheetRow, error) {
	const op = "ReadInvoices"

	dr.log.Info().Str("sheet", sheetName).Msg("Reading invoices")

	lastCol := string(rune('A' + len(invoice.RecordHeaders) - 1))
	values, err := dr.sheetsService.ReadRange(ctx, fmt.Sprintf("%s!A:%s", sheetName, lastCol))
	if err != nil {
		return nil, fmt.Errorf("%s: failed to read %s sheet: %w", op, sheetName, err)
	}

	if len(values) == 0 {
		return nil, fmt.Errorf("%s: %s sheet is empty", op, sheetName)
	}

	// Skip header row and parse data
	var rows []SheetRow
	for i, row := range values[1:] {
		rowNum := i + 2 // Account for header and 0-based indexing

		if getString(row, 0) == "" {
			dr.log.Warn().
				Int("row", rowNum).
				Str("sheet", sheetName).
				Msg("Skipping row without invoice number")
			continue
		}

		rows = append(rows, SheetRow{Row: rowNum, Record: parseRecord(row)})
	}

	dr.log.Info().
		Int("total_rows", len(values)-1).
		Int("parsed_invoices", len(rows)).
		Str("sheet", sheetName).
		Msg("Invoices read successfully")

	return rows, nil
}

// parseRecord maps a sheet row onto the export record, column by column.
func parseRecord(row []interface{}) invoice.Record {
	return invoice.Record{
		InvoiceNumber: getString(row, 0),
		Date:          getString(row, 1),
		ClientName:    getString(row, 2),
		ClientAddress: getString(row, 3),
		ClientPhone:   getString(row, 4),
		Items:         getString(row, 5),
		TotalAmount:   getString(row, 6),
		Discount:      getString(row, 7),
		FinalAmount:   getString(row, 8),
		PaidAmount:    getString(row, 9),
		DueAmount:     getString(row, 10),
		PaymentStatus: getString(row, 11),
		ConfirmedBy:   getString(row, 12),
	}
}

// getString safely extracts a string value from a row slice
func getString(row []interface{}, index int) string {
	if index >= len(row) || row[index] == nil {
		return ""
	}
	return strings.TrimSpace(fmt.Sprintf("%v", row[index]))
}
