package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"invoicedesk/internal/export"
	"invoicedesk/internal/logger"
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export all invoices to CSV",
	Long: `Export every invoice as CSV with the same columns as the spreadsheet.
Every field is quoted. Use -o - to write to stdout.`,
	Example: `  invoicedesk export
  invoicedesk export -o january.csv
  invoicedesk export -o - | less`,
	Args: cobra.NoArgs,
	RunE: runExport,
}

func init() {
	rootCmd.AddCommand(exportCmd)

	exportCmd.Flags().StringP("output", "o", export.DefaultFilename, "Output file, - for stdout")
}

func runExport(cmd *cobra.Command, args []string) error {
	log := logger.WithComponent("export")

	outputPath, _ := cmd.Flags().GetString("output")

	ctx, cancel := createCommandContext(0, log)
	defer cancel()

	a, err := openApp(ctx)
	if err != nil {
		return handleInvoiceError(err, log)
	}
	defer a.Close()

	if outputPath == "-" {
		return a.service.Export(cmd.OutOrStdout())
	}

	f, err := os.Create(outputPath)
	if err != nil {
		log.Error().Err(err).Str("output_file", outputPath).Msg("Failed to create export file")
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer f.Close()

	if err := a.service.Export(f); err != nil {
		return fmt.Errorf("failed to write CSV: %w", err)
	}

	count := len(a.service.List())
	log.Info().
		Str("output_file", outputPath).
		Int("invoices", count).
		Msg("Invoices exported")

	fmt.Fprintf(cmd.OutOrStdout(), "Exported %d invoices to %s\n", count, outputPath)
	return nil
}
