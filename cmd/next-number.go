package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"invoicedesk/internal/logger"
)

var nextNumberCmd = &cobra.Command{
	Use:   "next-number",
	Short: "Show the number the next invoice will get",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		log := logger.WithComponent("next-number")

		ctx, cancel := createCommandContext(0, log)
		defer cancel()

		a, err := openApp(ctx)
		if err != nil {
			return handleInvoiceError(err, log)
		}
		defer a.Close()

		fmt.Fprintln(cmd.OutOrStdout(), a.service.NextNumber())
		return nil
	},
}

func init() {
	rootCmd.AddCommand(nextNumberCmd)
}
