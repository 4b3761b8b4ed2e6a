package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"invoicedesk/internal/logger"
	"invoicedesk/internal/receipt"
)

var printCmd = &cobra.Command{
	Use:   "print <number>",
	Short: "Print an invoice to PDF",
	Long: `Render an invoice as an A4 PDF with two identical copies, one for the client
and one for the office. The letterhead comes from BUSINESS_NAME and
BUSINESS_ADDRESS.`,
	Example: `  invoicedesk print 00004
  invoicedesk print 00004 -o sita.pdf`,
	Args: cobra.ExactArgs(1),
	RunE: runPrint,
}

func init() {
	rootCmd.AddCommand(printCmd)

	printCmd.Flags().StringP("output", "o", "", "Output file (default: invoice-<number>.pdf)")
}

func runPrint(cmd *cobra.Command, args []string) error {
	log := logger.WithInvoice("print", args[0])

	outputPath, _ := cmd.Flags().GetString("output")

	ctx, cancel := createCommandContext(0, log)
	defer cancel()

	a, err := openApp(ctx)
	if err != nil {
		return handleInvoiceError(err, log)
	}
	defer a.Close()

	view, err := a.service.Find(args[0])
	if err != nil {
		return handleInvoiceError(err, log)
	}

	if outputPath == "" {
		outputPath = pdfFilename(view.Invoice.InvoiceNumber)
	}

	f, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer f.Close()

	if err := receipt.WriteInvoice(f, a.business(), view.Invoice); err != nil {
		log.Error().Err(err).Str("output_file", outputPath).Msg("Failed to render invoice")
		return fmt.Errorf("failed to render invoice: %w", err)
	}

	log.Info().Str("output_file", outputPath).Msg("Invoice printed")
	fmt.Fprintf(cmd.OutOrStdout(), "Invoice %s written to %s\n", view.Invoice.InvoiceNumber, outputPath)
	return nil
}

func pdfFilename(number string) string {
	return fmt.Sprintf("invoice-%s.pdf", number)
}
