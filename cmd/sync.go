package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"invoicedesk/internal/logger"
)

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Push every invoice to the spreadsheet now",
	Long: `Mirror the whole invoice table to the configured spreadsheet and wait for the
result. Unlike the background sync after each change, a failure is reported.

With --status only the time of the last successful sync is printed.`,
	Example: `  invoicedesk sync
  invoicedesk sync --status`,
	Args: cobra.NoArgs,
	RunE: runSync,
}

func init() {
	rootCmd.AddCommand(syncCmd)

	syncCmd.Flags().Bool("status", false, "Only print the last successful sync time")
}

func runSync(cmd *cobra.Command, args []string) error {
	log := logger.WithComponent("sync")

	statusOnly, _ := cmd.Flags().GetBool("status")

	ctx, cancel := createCommandContext(appConfig.SyncTimeout, log)
	defer cancel()

	a, err := openApp(ctx)
	if err != nil {
		return handleInvoiceError(err, log)
	}
	defer a.Close()

	if !statusOnly {
		count := len(a.service.List())
		log.Info().Int("invoices", count).Str("sync_mode", a.cfg.SyncMode).Msg("Starting manual sync")

		if err := a.service.SyncNow(ctx); err != nil {
			return handleInvoiceError(err, log)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Synced %d invoices\n", count)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Last sync: %s\n", formatSyncTime(a.service.LastSync()))
	return nil
}

func formatSyncTime(t time.Time) string {
	if t.IsZero() {
		return "never"
	}
	return t.Local().Format("2006-01-02 15:04:05")
}
