// Package receipt renders printable invoices and payment receipts as PDF.
// Each page carries two identical copies, one for the client and one for the
// office, separated by a cut line.
package receipt

import (
	"fmt"
	"io"
	"time"

	"github.com/jung-kurt/gofpdf"
	"github.com/shopspring/decimal"
	"invoicedesk/internal/invoice"
	"invoicedesk/pkg/models"
)

// PrintDateLayout is the date format printed on invoices and receipts.
const PrintDateLayout = "2006/01/02"

// Business is the issuer printed in the header of every copy.
type Business struct {
	Name    string
	Address string
}

const (
	pageWidth  = 210.0
	pageHeight = 297.0
	margin     = 12.0
	copyHeight = pageHeight / 2
	lineHeight = 6.0
	amountCol  = 45.0
)

// line is one label/value pair of the summary block.
type line struct {
	label string
	value string
	bold  bool
}

// row is one entry of the description table.
type row struct {
	description string
	amount      string
}

// layout is everything one copy shows.
type layout struct {
	title       string
	pan         string
	clientName  string
	clientAddr  string
	number      string
	date        string
	rows        []row
	summary     []line
	confirmedBy string
}

// WriteInvoice renders the printable invoice.
func WriteInvoice(w io.Writer, biz Business, inv models.Invoice) error {
	totals := invoice.Compute(&inv)

	summary := []line{{label: "Total", value: money(totals.Total)}}
	if inv.Discount.IsPositive() {
		summary = append(summary, line{
			label: fmt.Sprintf("Discount (%s%%)", inv.Discount.String()),
			value: money(totals.DiscountAmount),
		})
	}
	summary = append(summary,
		line{label: "Total paid", value: money(inv.PaidAmount)},
		line{label: "Amount due", value: money(totals.DueAmount), bold: true},
	)

	rows := make([]row, 0, len(inv.Items))
	for _, item := range inv.Items {
		rows = append(rows, row{description: item.Description, amount: money(item.Amount)})
	}

	return render(w, layout{
		title:       "INVOICE",
		pan:         inv.PANNumber,
		clientName:  inv.Client.Name,
		clientAddr:  inv.Client.Address,
		number:      inv.InvoiceNumber,
		date:        printDate(inv.Date),
		rows:        rows,
		summary:     summary,
		confirmedBy: inv.ConfirmationName,
	}, biz)
}

// WritePaymentReceipt renders the receipt handed out after a payment.
func WritePaymentReceipt(w io.Writer, biz Business, p *invoice.Payment) error {
	inv := p.Invoice

	return render(w, layout{
		title:      "PAYMENT RECEIPT",
		pan:        inv.PANNumber,
		clientName: inv.Client.Name,
		clientAddr: inv.Client.Address,
		number:     inv.InvoiceNumber,
		date:       p.PaidAt.Format(PrintDateLayout),
		rows: []row{{
			description: "Payment for Invoice #" + inv.InvoiceNumber,
			amount:      money(p.Amount),
		}},
		summary: []line{
			{label: "Previous Due", value: money(p.PreviousDue)},
			{label: "Payment Amount", value: money(p.Amount)},
			{label: "Amount due", value: money(p.RemainingDue), bold: true},
		},
		confirmedBy: "___________________",
	}, biz)
}

func render(w io.Writer, l layout, biz Business) error {
	const op = "render"

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle(fmt.Sprintf("%s %s", l.title, l.number), true)
	pdf.SetAutoPageBreak(false, 0)
	pdf.AddPage()
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	drawCopy(pdf, tr, 0, l, biz)

	pdf.SetDashPattern([]float64{2, 2}, 0)
	pdf.SetDrawColor(150, 150, 150)
	pdf.Line(margin, copyHeight, pageWidth-margin, copyHeight)
	pdf.SetDashPattern([]float64{}, 0)
	pdf.SetDrawColor(0, 0, 0)

	drawCopy(pdf, tr, copyHeight, l, biz)

	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("%s: failed to write PDF: %w", op, err)
	}
	return nil
}

func drawCopy(pdf *gofpdf.Fpdf, tr func(string) string, top float64, l layout, biz Business) {
	contentWidth := pageWidth - 2*margin
	y := top + margin

	// Header
	pdf.SetXY(margin, y)
	pdf.SetFont("Arial", "B", 16)
	pdf.CellFormat(contentWidth, 8, tr(biz.Name), "", 1, "C", false, 0, "")
	pdf.SetX(margin)
	pdf.SetFont("Arial", "", 10)
	pdf.CellFormat(contentWidth, 5, tr(biz.Address), "", 1, "C", false, 0, "")
	pdf.SetX(margin)
	pdf.SetFont("Arial", "B", 12)
	pdf.CellFormat(contentWidth, 8, l.title, "", 1, "C", false, 0, "")

	// Client and invoice block
	y = pdf.GetY() + 2
	half := contentWidth / 2
	pdf.SetFont("Arial", "", 10)
	left := []string{
		"PAN NO.: " + l.pan,
		"NAME: " + l.clientName,
		"ADDRESS: " + l.clientAddr,
	}
	right := []string{
		"INVOICE NO: " + l.number,
		l.date,
	}
	for i, text := range left {
		pdf.SetXY(margin, y+float64(i)*5)
		pdf.CellFormat(half, 5, tr(text), "", 0, "L", false, 0, "")
	}
	for i, text := range right {
		pdf.SetXY(margin+half, y+float64(i)*5)
		pdf.CellFormat(half, 5, tr(text), "", 0, "R", false, 0, "")
	}

	// Description table
	y += float64(len(left))*5 + 3
	pdf.SetXY(margin, y)
	pdf.SetFont("Arial", "B", 10)
	pdf.SetFillColor(230, 230, 230)
	pdf.CellFormat(contentWidth-amountCol, lineHeight, "DESCRIPTION", "1", 0, "L", true, 0, "")
	pdf.CellFormat(amountCol, lineHeight, "TOTAL", "1", 1, "R", true, 0, "")

	pdf.SetFont("Arial", "", 10)
	for _, r := range l.rows {
		pdf.SetX(margin)
		pdf.CellFormat(contentWidth-amountCol, lineHeight, tr(r.description), "LR", 0, "L", false, 0, "")
		pdf.CellFormat(amountCol, lineHeight, r.amount, "LR", 1, "R", false, 0, "")
	}
	pdf.SetX(margin)
	pdf.CellFormat(contentWidth, 0, "", "T", 1, "", false, 0, "")

	// Summary
	labelWidth := 45.0
	for _, s := range l.summary {
		style := ""
		if s.bold {
			style = "B"
		}
		pdf.SetFont("Arial", style, 10)
		pdf.SetX(pageWidth - margin - labelWidth - amountCol)
		pdf.CellFormat(labelWidth, lineHeight, s.label, "", 0, "L", false, 0, "")
		pdf.CellFormat(amountCol, lineHeight, s.value, "", 1, "R", false, 0, "")
	}

	if l.confirmedBy != "" {
		pdf.SetFont("Arial", "", 10)
		pdf.SetXY(margin, top+copyHeight-margin-lineHeight)
		pdf.CellFormat(contentWidth, lineHeight, tr("Confirmed by: "+l.confirmedBy), "", 0, "R", false, 0, "")
	}
}

func money(d decimal.Decimal) string {
	return invoice.CurrencyLabel + " " + d.String()
}

func printDate(date string) string {
	t, err := time.Parse(models.DateLayout, date)
	if err != nil {
		return date
	}
	return t.Format(PrintDateLayout)
}
