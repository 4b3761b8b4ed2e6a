package reconciliation

import (
	"invoicedesk/internal/invoice"
)

// SheetRow is one data row read back from the mirrored worksheet.
type SheetRow struct {
	Row    int // 1-based sheet row
	Record invoice.Record
}

// Mismatch is a column whose value differs between the local invoice and the
// sheet row with the same invoice number.
type Mismatch struct {
	InvoiceNumber string `json:"invoice_number"`
	Column        string `json:"column"`
	Local         string `json:"local"`
	Sheet         string `json:"sheet"`
}

// Report summarises how far the worksheet has drifted from local data.
type Report struct {
	MissingInSheet []string   `json:"missing_in_sheet"` // stored locally but absent from the sheet
	ExtraInSheet   []string   `json:"extra_in_sheet"`   // present only in the sheet
	Duplicates     []string   `json:"duplicates"`       // on more than one sheet row
	Mismatches     []Mismatch `json:"mismatches"`
	LocalCount     int        `json:"local_count"`
	SheetCount     int        `json:"sheet_count"`
}

// InSync reports whether the sheet mirrors local data exactly.
func (r *Report) InSync() bool {
	return len(r.MissingInSheet) == 0 &&
		len(r.ExtraInSheet) == 0 &&
		len(r.Duplicates) == 0 &&
		len(r.Mismatches) == 0
}
