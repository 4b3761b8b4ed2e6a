package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"invoicedesk/internal/invoice"
	"invoicedesk/internal/logger"
	"invoicedesk/internal/receipt"
)

var payCmd = &cobra.Command{
	Use:   "pay <number> <amount>",
	Short: "Record a payment against the amount due of an invoice",
	Long: `Record a payment against an invoice. The amount must be greater than zero and
may not exceed what is still due. Nothing is saved when the amount is rejected.

With --receipt a payment receipt PDF (two copies on one A4 page) is written
showing the previous due, the amount paid and what remains.`,
	Example: `  # Clear part of the due amount
  invoicedesk pay 00004 2500

  # Clear the rest and print a receipt
  invoicedesk pay 00004 3500 --receipt receipt-00004.pdf`,
	Args: cobra.ExactArgs(2),
	RunE: runPay,
}

func init() {
	rootCmd.AddCommand(payCmd)

	payCmd.Flags().String("receipt", "", "Write a payment receipt PDF to this file")
}

func runPay(cmd *cobra.Command, args []string) error {
	log := logger.WithInvoice("pay", args[0])

	receiptPath, _ := cmd.Flags().GetString("receipt")
	amount := invoice.ParseAmount(args[1])

	ctx, cancel := createCommandContext(0, log)
	defer cancel()

	a, err := openApp(ctx)
	if err != nil {
		return handleInvoiceError(err, log)
	}
	defer a.Close()

	payment, err := a.service.ClearDue(ctx, args[0], amount)
	if err != nil {
		return handleInvoiceError(err, log)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Payment of %s recorded for invoice %s. Remaining due: %s (%s)\n",
		formatMoney(payment.Amount),
		payment.Invoice.InvoiceNumber,
		formatMoney(payment.RemainingDue),
		invoice.StatusOf(&payment.Invoice).Label())

	if receiptPath == "" {
		return nil
	}

	f, err := os.Create(receiptPath)
	if err != nil {
		return fmt.Errorf("failed to create receipt file: %w", err)
	}
	defer f.Close()

	if err := receipt.WritePaymentReceipt(f, a.business(), payment); err != nil {
		log.Error().Err(err).Str("output_file", receiptPath).Msg("Failed to write payment receipt")
		return fmt.Errorf("failed to write receipt: %w", err)
	}

	log.Info().Str("output_file", receiptPath).Msg("Payment receipt written")
	fmt.Fprintf(cmd.OutOrStdout(), "Receipt written to %s\n", receiptPath)
	return nil
}
