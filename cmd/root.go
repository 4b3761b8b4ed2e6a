package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"invoicedesk/internal/config"
	"invoicedesk/internal/logger"
)

var version = "1.0.0"

// appConfig is set by Execute before any command runs.
var appConfig *config.Config

var rootCmd = &cobra.Command{
	Use:   "invoicedesk",
	Short: "invoicedesk - issue invoices, record payments and keep a spreadsheet in sync",
	Long: `invoicedesk manages the invoices of a small consultancy from the command line.

Invoices are stored locally (JSON files, SQLite or PostgreSQL) and every change
is mirrored in the background to a Google spreadsheet, either through the
Sheets API or through a deployed Apps Script web app.

Invoices can be printed to PDF (two copies per A4 page), payments can be
recorded against the amount still due, and the whole collection can be
exported to CSV.`,
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command with the loaded configuration.
func Execute(cfg *config.Config) {
	log := logger.WithComponent("cmd")
	appConfig = cfg

	if err := rootCmd.Execute(); err != nil {
		log.Error().
			Err(err).
			Msg("Command execution failed")
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
