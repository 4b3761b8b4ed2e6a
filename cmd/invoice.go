package cmd

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
	"invoicedesk/internal/invoice"
	"invoicedesk/internal/logger"
	"invoicedesk/pkg/models"
	"invoicedesk/pkg/services"
)

var invoiceCmd = &cobra.Command{
	Use:     "invoice",
	Aliases: []string{"invoices"},
	Short:   "Create, edit, list, show and delete invoices",
	Long: `Manage stored invoices.

Every change is saved locally first. When SYNC_MODE is set, the whole invoice
table is then mirrored to the spreadsheet in the background; a failed mirror
only logs a warning and never loses local data.`,
}

var invoiceNewCmd = &cobra.Command{
	Use:   "new",
	Short: "Create a new invoice",
	Long: `Create a new invoice. The invoice number, identifier and creation time are
assigned on save; date and PAN default to today and DEFAULT_PAN.

Items are given with --item "description=amount" or filled from a preset with
--preset (see 'invoicedesk presets'). Both flags can be repeated.`,
	Example: `  # One custom item
  invoicedesk invoice new --client-name "Sita Sharma" --client-address Pokhara \
    --item "Visa documentation=2500"

  # Preset items with a 10% discount and an advance payment
  invoicedesk invoice new --client-name Hari --client-address Kathmandu \
    --preset ielts --preset consultation --discount 10 --paid-amount 1000`,
	Args: cobra.NoArgs,
	RunE: runInvoiceNew,
}

var invoiceEditCmd = &cobra.Command{
	Use:   "edit <number>",
	Short: "Edit an existing invoice",
	Long: `Edit an existing invoice. Only the flags given are changed; giving --item or
--preset replaces the whole item list. The invoice number never changes.`,
	Example: `  # Correct the client address
  invoicedesk invoice edit 00004 --client-address "Lakeside, Pokhara"

  # Replace the items
  invoicedesk invoice edit 00004 --preset pte --item "Mock test=500"`,
	Args: cobra.ExactArgs(1),
	RunE: runInvoiceEdit,
}

var invoiceListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List invoices with totals and payment status",
	Example: `  invoicedesk invoice list
  invoicedesk invoice list --search sita
  invoicedesk invoice list --json`,
	Args: cobra.NoArgs,
	RunE: runInvoiceList,
}

var invoiceShowCmd = &cobra.Command{
	Use:   "show <number>",
	Short: "Show one invoice in detail",
	Args:  cobra.ExactArgs(1),
	RunE:  runInvoiceShow,
}

var invoiceDeleteCmd = &cobra.Command{
	Use:     "delete <number>",
	Aliases: []string{"rm"},
	Short:   "Delete an invoice permanently",
	Args:    cobra.ExactArgs(1),
	RunE:    runInvoiceDelete,
}

func init() {
	rootCmd.AddCommand(invoiceCmd)
	invoiceCmd.AddCommand(invoiceNewCmd, invoiceEditCmd, invoiceListCmd, invoiceShowCmd, invoiceDeleteCmd)

	addInvoiceFlags(invoiceNewCmd)
	addInvoiceFlags(invoiceEditCmd)

	invoiceListCmd.Flags().StringP("search", "s", "", "Filter by invoice number or client name")
	invoiceListCmd.Flags().Bool("json", false, "Print JSON instead of a table")

	invoiceShowCmd.Flags().Bool("json", false, "Print JSON instead of text")

	invoiceDeleteCmd.Flags().BoolP("yes", "y", false, "Delete without asking for confirmation")
}

// addInvoiceFlags registers the editable invoice fields on cmd.
func addInvoiceFlags(cmd *cobra.Command) {
	cmd.Flags().String("client-name", "", "Client name")
	cmd.Flags().String("client-address", "", "Client address")
	cmd.Flags().String("client-email", "", "Client email")
	cmd.Flags().String("client-phone", "", "Client phone")
	cmd.Flags().String("date", "", "Invoice date (format: YYYY-MM-DD, default: today)")
	cmd.Flags().String("pan", "", "PAN number printed on the invoice")
	items := &itemArgs{}
	cmd.Flags().Var(&itemFlag{args: items}, "item", `Line item as "description=amount" (repeatable)`)
	cmd.Flags().Var(&itemFlag{args: items, preset: true}, "preset", "Line item from a preset, e.g. ielts (repeatable)")
	cmd.Flags().String("discount", "", "Discount in percent of the item total")
	cmd.Flags().String("paid-amount", "", "Amount paid so far")
	cmd.Flags().String("confirmed-by", "", "Name of the person confirming the invoice")
	cmd.Flags().String("confirmation-date", "", "Confirmation date (format: YYYY-MM-DD)")
}

// applyInvoiceFlags copies every flag the user set onto inv.
func applyInvoiceFlags(cmd *cobra.Command, inv *models.Invoice) error {
	flags := cmd.Flags()

	strFields := []struct {
		flag   string
		target *string
	}{
		{"client-name", &inv.Client.Name},
		{"client-address", &inv.Client.Address},
		{"client-email", &inv.Client.Email},
		{"client-phone", &inv.Client.Phone},
		{"pan", &inv.PANNumber},
		{"confirmed-by", &inv.ConfirmationName},
	}
	for _, f := range strFields {
		if flags.Changed(f.flag) {
			v, _ := flags.GetString(f.flag)
			*f.target = strings.TrimSpace(v)
		}
	}

	dateFields := []struct {
		flag   string
		target *string
	}{
		{"date", &inv.Date},
		{"confirmation-date", &inv.ConfirmationDate},
	}
	for _, f := range dateFields {
		if !flags.Changed(f.flag) {
			continue
		}
		v, _ := flags.GetString(f.flag)
		v = strings.TrimSpace(v)
		if v != "" {
			if _, err := time.Parse(models.DateLayout, v); err != nil {
				return fmt.Errorf("invalid --%s %q. Use YYYY-MM-DD", f.flag, v)
			}
		}
		*f.target = v
	}

	amountFields := []struct {
		flag   string
		target *decimal.Decimal
	}{
		{"discount", &inv.Discount},
		{"paid-amount", &inv.PaidAmount},
	}
	for _, f := range amountFields {
		if !flags.Changed(f.flag) {
			continue
		}
		v, _ := flags.GetString(f.flag)
		d, err := parseAmountFlag(v)
		if err != nil {
			return fmt.Errorf("invalid --%s: %w", f.flag, err)
		}
		*f.target = d
	}

	if flags.Changed("item") || flags.Changed("preset") {
		args := flags.Lookup("item").Value.(*itemFlag).args

		items := make([]models.LineItem, 0, len(args.entries))
		for _, entry := range args.entries {
			var (
				item models.LineItem
				err  error
			)
			if entry.preset {
				item, err = invoice.ApplyPreset(models.LineItem{}, entry.value)
			} else {
				item, err = parseItemFlag(entry.value)
			}
			if err != nil {
				return err
			}
			items = append(items, item)
		}
		inv.Items = items
	}

	return nil
}

// itemArgs collects --item and --preset values in command line order.
type itemArgs struct {
	entries []itemArg
}

type itemArg struct {
	value  string
	preset bool
}

// itemFlag is the pflag.Value behind --item and --preset. Both flags append
// to the same itemArgs.
type itemFlag struct {
	args   *itemArgs
	preset bool
}

func (f *itemFlag) Set(value string) error {
	f.args.entries = append(f.args.entries, itemArg{value: value, preset: f.preset})
	return nil
}

func (f *itemFlag) String() string {
	values := lo.FilterMap(f.args.entries, func(e itemArg, _ int) (string, bool) {
		return e.value, e.preset == f.preset
	})
	return "[" + strings.Join(values, ",") + "]"
}

func (f *itemFlag) Type() string {
	return "stringArray"
}

// parseItemFlag reads "description=amount". The last '=' separates the two,
// so descriptions may contain '='.
func parseItemFlag(raw string) (models.LineItem, error) {
	idx := strings.LastIndex(raw, "=")
	if idx < 0 {
		return models.LineItem{}, fmt.Errorf("invalid --item %q. Use \"description=amount\"", raw)
	}

	amount, err := parseAmountFlag(raw[idx+1:])
	if err != nil {
		return models.LineItem{}, fmt.Errorf("invalid --item %q: %w", raw, err)
	}

	return models.LineItem{
		Description: strings.TrimSpace(raw[:idx]),
		Amount:      amount,
		Preset:      invoice.CustomPreset,
	}, nil
}

// parseAmountFlag is stricter than invoice.ParseAmount: a typo on the command
// line is reported instead of becoming zero.
func parseAmountFlag(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%q is not a number", s)
	}
	return d, nil
}

func runInvoiceNew(cmd *cobra.Command, args []string) error {
	log := logger.WithComponent("invoice-new")

	ctx, cancel := createCommandContext(0, log)
	defer cancel()

	a, err := openApp(ctx)
	if err != nil {
		return handleInvoiceError(err, log)
	}
	defer a.Close()

	draft := a.service.Draft()
	if err := applyInvoiceFlags(cmd, &draft); err != nil {
		return handleInvoiceError(err, log)
	}

	view, err := a.service.Create(ctx, draft)
	if err != nil {
		return handleInvoiceError(err, log)
	}

	log.Info().
		Str("invoice_number", view.Invoice.InvoiceNumber).
		Str("final_amount", view.Totals.FinalAmount.String()).
		Msg("Invoice created")

	fmt.Fprintf(cmd.OutOrStdout(), "Invoice %s created for %s (%s, due %s)\n",
		view.Invoice.InvoiceNumber,
		view.Invoice.Client.Name,
		formatMoney(view.Totals.FinalAmount),
		formatMoney(view.Totals.DueAmount))
	return nil
}

func runInvoiceEdit(cmd *cobra.Command, args []string) error {
	log := logger.WithInvoice("invoice-edit", args[0])

	ctx, cancel := createCommandContext(0, log)
	defer cancel()

	a, err := openApp(ctx)
	if err != nil {
		return handleInvoiceError(err, log)
	}
	defer a.Close()

	current, err := a.service.Find(args[0])
	if err != nil {
		return handleInvoiceError(err, log)
	}

	inv := current.Invoice.Clone()
	if err := applyInvoiceFlags(cmd, &inv); err != nil {
		return handleInvoiceError(err, log)
	}

	view, err := a.service.Update(ctx, inv)
	if err != nil {
		return handleInvoiceError(err, log)
	}

	log.Info().Msg("Invoice updated")

	fmt.Fprintf(cmd.OutOrStdout(), "Invoice %s updated (%s, due %s, %s)\n",
		view.Invoice.InvoiceNumber,
		formatMoney(view.Totals.FinalAmount),
		formatMoney(view.Totals.DueAmount),
		view.Status.Label())
	return nil
}

func runInvoiceList(cmd *cobra.Command, args []string) error {
	log := logger.WithComponent("invoice-list")

	search, _ := cmd.Flags().GetString("search")
	asJSON, _ := cmd.Flags().GetBool("json")

	ctx, cancel := createCommandContext(0, log)
	defer cancel()

	a, err := openApp(ctx)
	if err != nil {
		return handleInvoiceError(err, log)
	}
	defer a.Close()

	var list []services.InvoiceView
	if strings.TrimSpace(search) != "" {
		list = a.service.Search(search)
	} else {
		list = a.service.List()
	}

	log.Debug().Str("search", search).Int("invoices", len(list)).Msg("Listing invoices")

	if asJSON {
		return writeJSON(cmd.OutOrStdout(), list)
	}
	if len(list) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No invoices found.")
		return nil
	}

	fmt.Fprintln(cmd.OutOrStdout(), renderInvoiceTable(list))
	return nil
}

func runInvoiceShow(cmd *cobra.Command, args []string) error {
	log := logger.WithInvoice("invoice-show", args[0])

	asJSON, _ := cmd.Flags().GetBool("json")

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

	if asJSON {
		return writeJSON(cmd.OutOrStdout(), view)
	}
	printInvoice(cmd.OutOrStdout(), view)
	return nil
}

func runInvoiceDelete(cmd *cobra.Command, args []string) error {
	log := logger.WithInvoice("invoice-delete", args[0])

	yes, _ := cmd.Flags().GetBool("yes")

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

	if !yes {
		ok, err := confirm(cmd.InOrStdin(), cmd.OutOrStdout(),
			fmt.Sprintf("Delete invoice %s for %s? [y/N]: ", view.Invoice.InvoiceNumber, view.Invoice.Client.Name))
		if err != nil {
			return err
		}
		if !ok {
			fmt.Fprintln(cmd.OutOrStdout(), "Aborted.")
			return nil
		}
	}

	if err := a.service.Delete(ctx, view.Invoice.InvoiceNumber); err != nil {
		return handleInvoiceError(err, log)
	}

	log.Info().Msg("Invoice deleted")
	fmt.Fprintf(cmd.OutOrStdout(), "Invoice %s deleted\n", view.Invoice.InvoiceNumber)
	return nil
}

// confirm asks a yes/no question; anything but y/yes is a no.
func confirm(in io.Reader, out io.Writer, question string) (bool, error) {
	fmt.Fprint(out, question)

	answer, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && err != io.EOF {
		return false, fmt.Errorf("failed to read answer: %w", err)
	}

	switch strings.ToLower(strings.TrimSpace(answer)) {
	case "y", "yes":
		return true, nil
	default:
		return false, nil
	}
}

var (
	headerStyle  = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle    = lipgloss.NewStyle().Padding(0, 1)
	paidStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	partialStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("3"))
	unpaidStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
)

// statusStyle colours a payment status: green paid, yellow partial, red unpaid.
func statusStyle(status invoice.PaymentStatus) lipgloss.Style {
	switch status {
	case invoice.StatusPaid:
		return paidStyle
	case invoice.StatusPartial:
		return partialStyle
	default:
		return unpaidStyle
	}
}

// renderInvoiceTable renders the invoice list as a bordered table.
func renderInvoiceTable(list []services.InvoiceView) string {
	rows := lo.Map(list, func(v services.InvoiceView, _ int) []string {
		return []string{
			v.Invoice.InvoiceNumber,
			v.Invoice.Date,
			v.Invoice.Client.Name,
			v.Totals.Total.String(),
			v.Invoice.Discount.String() + "%",
			v.Totals.FinalAmount.String(),
			v.Invoice.PaidAmount.String(),
			v.Totals.DueAmount.String(),
			statusStyle(v.Status).Render(v.Status.Label()),
		}
	})

	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("Number", "Date", "Client", "Total", "Discount", "Final", "Paid", "Due", "Status").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		})

	return t.Render()
}

// printInvoice writes a plain text view of one invoice.
func printInvoice(w io.Writer, v *services.InvoiceView) {
	inv := v.Invoice

	fmt.Fprintf(w, "Invoice:      %s\n", inv.InvoiceNumber)
	fmt.Fprintf(w, "Date:         %s\n", inv.Date)
	fmt.Fprintf(w, "PAN:          %s\n", inv.PANNumber)
	fmt.Fprintf(w, "Client:       %s\n", inv.Client.Name)
	fmt.Fprintf(w, "Address:      %s\n", inv.Client.Address)
	if inv.Client.Email != "" {
		fmt.Fprintf(w, "Email:        %s\n", inv.Client.Email)
	}
	if inv.Client.Phone != "" {
		fmt.Fprintf(w, "Phone:        %s\n", inv.Client.Phone)
	}

	fmt.Fprintln(w)
	for i, item := range inv.Items {
		fmt.Fprintf(w, "  %d. %-40s %12s\n", i+1, item.Description, formatMoney(item.Amount))
	}
	fmt.Fprintln(w)

	fmt.Fprintf(w, "Total:        %s\n", formatMoney(v.Totals.Total))
	if inv.Discount.IsPositive() {
		fmt.Fprintf(w, "Discount:     %s%% (%s)\n", inv.Discount.String(), formatMoney(v.Totals.DiscountAmount))
	}
	fmt.Fprintf(w, "Final:        %s\n", formatMoney(v.Totals.FinalAmount))
	fmt.Fprintf(w, "Paid:         %s\n", formatMoney(inv.PaidAmount))
	fmt.Fprintf(w, "Due:          %s\n", formatMoney(v.Totals.DueAmount))
	fmt.Fprintf(w, "Status:       %s\n", statusStyle(v.Status).Render(v.Status.Label()))

	if inv.ConfirmationName != "" {
		fmt.Fprintf(w, "Confirmed by: %s", inv.ConfirmationName)
		if inv.ConfirmationDate != "" {
			fmt.Fprintf(w, " on %s", inv.ConfirmationDate)
		}
		fmt.Fprintln(w)
	}
}

func formatMoney(d decimal.Decimal) string {
	return invoice.CurrencyLabel + " " + d.String()
}

// writeJSON pretty prints v followed by a newline.
func writeJSON(w io.Writer, v interface{}) error {
	jsonData, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to create JSON output: %w", err)
	}
	if _, err := w.Write(jsonData); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	_, err = fmt.Fprintln(w)
	return err
}
