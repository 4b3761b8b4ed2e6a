package cmd

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
	"invoicedesk/internal/invoice"
)

var presetsCmd = &cobra.Command{
	Use:   "presets",
	Short: "List the line item presets usable with --preset",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		fmt.Fprintln(cmd.OutOrStdout(), renderPresetTable(invoice.Presets))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(presetsCmd)
}

func renderPresetTable(presets []invoice.Preset) string {
	rows := lo.Map(presets, func(p invoice.Preset, _ int) []string {
		amount := "-"
		if p.Key != invoice.CustomPreset {
			amount = p.Amount.String()
		}
		return []string{p.Key, p.Label, amount}
	})

	return table.New().
		Border(lipgloss.NormalBorder()).
		Headers("Preset", "Description", "Amount").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		}).
		Render()
}
