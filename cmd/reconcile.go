package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/samber/lo"
	"github.com/spf13/cobra"
	"invoicedesk/internal/invoice"
	"invoicedesk/internal/logger"
	"invoicedesk/internal/reconciliation"
	"invoicedesk/internal/sheets"
	"invoicedesk/pkg/models"
	"invoicedesk/pkg/services"
)

var reconcileCmd = &cobra.Command{
	Use:   "reconcile",
	Short: "Compare the spreadsheet with local invoices",
	Long: `Read the mirrored worksheet back through the Sheets API and compare it with the
local invoices: rows missing from the sheet, rows only in the sheet, duplicate
invoice numbers and columns whose values differ.

Requires SYNC_MODE=sheets. With --fix the whole table is pushed again when any
drift is found.`,
	Example: `  # Report drift
  invoicedesk reconcile

  # Report and repair
  invoicedesk reconcile --fix`,
	Args: cobra.NoArgs,
	RunE: runReconcile,
}

func init() {
	rootCmd.AddCommand(reconcileCmd)

	reconcileCmd.Flags().Bool("fix", false, "Push all invoices again when the sheet has drifted")
	reconcileCmd.Flags().Bool("json", false, "Print the report as JSON")
}

func runReconcile(cmd *cobra.Command, args []string) error {
	log := logger.WithComponent("reconcile")

	fix, _ := cmd.Flags().GetBool("fix")
	asJSON, _ := cmd.Flags().GetBool("json")

	ctx, cancel := createCommandContext(appConfig.SyncTimeout, log)
	defer cancel()

	a, err := openApp(ctx)
	if err != nil {
		return handleInvoiceError(err, log)
	}
	defer a.Close()

	if a.sheets == nil {
		return handleInvoiceError(fmt.Errorf("reconcile needs SYNC_MODE=sheets: %w", sheets.ErrMirrorNotConfigured), log)
	}

	log.Info().
		Str("worksheet", a.cfg.GoogleSheetWorksheet).
		Bool("fix", fix).
		Msg("Starting reconciliation")

	rows, err := reconciliation.NewDataReader(a.sheets).ReadInvoices(ctx, a.cfg.GoogleSheetWorksheet)
	if err != nil {
		return handleInvoiceError(err, log)
	}

	local := invoice.FlattenAll(lo.Map(a.service.List(), func(v services.InvoiceView, _ int) models.Invoice {
		return v.Invoice
	}))
	report := reconciliation.Compare(local, rows)

	log.Info().
		Int("local", report.LocalCount).
		Int("sheet", report.SheetCount).
		Int("missing", len(report.MissingInSheet)).
		Int("extra", len(report.ExtraInSheet)).
		Int("duplicates", len(report.Duplicates)).
		Int("mismatches", len(report.Mismatches)).
		Msg("Reconciliation completed")

	if asJSON {
		if err := writeJSON(cmd.OutOrStdout(), report); err != nil {
			return err
		}
	} else {
		printReport(cmd.OutOrStdout(), report)
	}

	if report.InSync() || !fix {
		return nil
	}

	if err := a.service.SyncNow(ctx); err != nil {
		return handleInvoiceError(err, log)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Sheet rewritten with %d invoices\n", report.LocalCount)
	return nil
}

// printReport writes a human readable drift report.
func printReport(w io.Writer, r *reconciliation.Report) {
	fmt.Fprintln(w, strings.Repeat("=", 60))
	fmt.Fprintln(w, "                 RECONCILIATION")
	fmt.Fprintln(w, strings.Repeat("=", 60))
	fmt.Fprintf(w, "Local invoices: %d\n", r.LocalCount)
	fmt.Fprintf(w, "Sheet rows:     %d\n", r.SheetCount)
	fmt.Fprintln(w)

	if r.InSync() {
		fmt.Fprintln(w, paidStyle.Render("Sheet is in sync"))
		return
	}

	if len(r.MissingInSheet) > 0 {
		fmt.Fprintf(w, "Missing in sheet: %s\n", strings.Join(r.MissingInSheet, ", "))
	}
	if len(r.ExtraInSheet) > 0 {
		fmt.Fprintf(w, "Only in sheet:    %s\n", strings.Join(r.ExtraInSheet, ", "))
	}
	if len(r.Duplicates) > 0 {
		fmt.Fprintf(w, "Duplicate rows:   %s\n", strings.Join(r.Duplicates, ", "))
	}
	for _, m := range r.Mismatches {
		fmt.Fprintf(w, "%s %s: local %q, sheet %q\n", m.InvoiceNumber, m.Column, m.Local, m.Sheet)
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w, unpaidStyle.Render("Sheet has drifted. Run with --fix to rewrite it."))
}
