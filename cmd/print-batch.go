package cmd

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"github.com/rs/zerolog"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
	"invoicedesk/internal/invoice"
	"invoicedesk/internal/logger"
	"invoicedesk/internal/receipt"
	"invoicedesk/pkg/services"
)

var printBatchCmd = &cobra.Command{
	Use:   "print-batch <folder>",
	Short: "Print every invoice to PDF files in a folder",
	Long: `Render every stored invoice (or only those with a given payment status) to
invoice-<number>.pdf files in a folder, using a pool of parallel workers.

Optional environment variables:
  PRINT_WORKERS - Number of parallel workers (default: 4)`,
	Example: `  # Print everything
  invoicedesk print-batch ./pdf

  # Only invoices with money still due
  invoicedesk print-batch ./pdf --status unpaid --status partial`,
	Args: cobra.ExactArgs(1),
	RunE: runPrintBatch,
}

// PrintResult is the outcome of rendering one invoice
type PrintResult struct {
	InvoiceNumber string
	Path          string
	Error         error
	Index         int // Original order index
}

// PrintJob is one invoice handed to a worker
type PrintJob struct {
	View  services.InvoiceView
	Index int
}

func init() {
	rootCmd.AddCommand(printBatchCmd)

	printBatchCmd.Flags().StringArray("status", nil, "Only print invoices with this status: paid, partial or unpaid (repeatable)")
}

func runPrintBatch(cmd *cobra.Command, args []string) error {
	log := logger.WithComponent("print-batch")

	folderPath := args[0]
	statuses, _ := cmd.Flags().GetStringArray("status")

	wanted := make([]invoice.PaymentStatus, 0, len(statuses))
	for _, s := range statuses {
		status := invoice.PaymentStatus(strings.ToLower(strings.TrimSpace(s)))
		switch status {
		case invoice.StatusPaid, invoice.StatusPartial, invoice.StatusUnpaid:
			wanted = append(wanted, status)
		default:
			return fmt.Errorf("invalid status: %s (must be 'paid', 'partial' or 'unpaid')", s)
		}
	}

	if err := os.MkdirAll(folderPath, 0755); err != nil {
		return fmt.Errorf("failed to create folder %s: %w", folderPath, err)
	}

	ctx, cancel := createCommandContext(0, log)
	defer cancel()

	a, err := openApp(ctx)
	if err != nil {
		return handleInvoiceError(err, log)
	}
	defer a.Close()

	views := a.service.List()
	if len(wanted) > 0 {
		views = lo.Filter(views, func(v services.InvoiceView, _ int) bool {
			return lo.Contains(wanted, v.Status)
		})
	}

	out := cmd.OutOrStdout()
	if len(views) == 0 {
		fmt.Fprintln(out, "No invoices to print.")
		return nil
	}

	numWorkers := getNumWorkers()
	fmt.Fprintf(out, "Printing %d invoices with %d parallel workers...\n", len(views), numWorkers)

	results := printInParallel(out, views, folderPath, a.business(), numWorkers, log)

	failed := lo.CountBy(results, func(r PrintResult) bool { return r.Error != nil })

	fmt.Fprintln(out)
	fmt.Fprintln(out, strings.Repeat("=", 50))
	fmt.Fprintf(out, "Printed: %d\n", len(results)-failed)
	if failed > 0 {
		fmt.Fprintf(out, "Failed:  %d\n", failed)
	}
	fmt.Fprintf(out, "Folder:  %s\n", folderPath)

	log.Info().
		Int("total", len(results)).
		Int("failed", failed).
		Str("folder", folderPath).
		Msg("Batch printing completed")

	if failed > 0 {
		return fmt.Errorf("%d of %d invoices could not be printed", failed, len(results))
	}
	return nil
}

// getNumWorkers returns the number of workers from environment or default
func getNumWorkers() int {
	if workersStr := os.Getenv("PRINT_WORKERS"); workersStr != "" {
		if workers, err := strconv.Atoi(workersStr); err == nil && workers > 0 {
			return workers
		}
	}
	return 4
}

// printInParallel renders the invoices using a worker pool pattern
func printInParallel(out io.Writer, views []services.InvoiceView, folder string, biz receipt.Business, numWorkers int, log zerolog.Logger) []PrintResult {
	jobs := make(chan PrintJob, len(views))
	results := make([]PrintResult, len(views))

	var processedCount int
	var mu sync.Mutex

	var wg sync.WaitGroup
	for w := 0; w < numWorkers; w++ {
		wg.Add(1)
		go func(workerID int) {
			defer wg.Done()

			for job := range jobs {
				log.Debug().
					Int("worker", workerID).
					Str("invoice_number", job.View.Invoice.InvoiceNumber).
					Msg("Worker printing invoice")

				result := printOne(job.View, folder, biz)
				result.Index = job.Index
				results[job.Index] = result

				mu.Lock()
				processedCount++
				fmt.Fprintf(out, "[%d/%d] %s", processedCount, len(views), result.InvoiceNumber)
				if result.Error != nil {
					fmt.Fprintf(out, " - %s (%v)", unpaidStyle.Render("failed"), result.Error)
				} else {
					fmt.Fprintf(out, " - %s", result.Path)
				}
				fmt.Fprintln(out)
				mu.Unlock()
			}
		}(w)
	}

	for i, v := range views {
		jobs <- PrintJob{View: v, Index: i}
	}
	close(jobs)

	wg.Wait()

	return results
}

// printOne writes a single invoice PDF into folder.
func printOne(view services.InvoiceView, folder string, biz receipt.Business) PrintResult {
	result := PrintResult{
		InvoiceNumber: view.Invoice.InvoiceNumber,
		Path:          filepath.Join(folder, pdfFilename(view.Invoice.InvoiceNumber)),
	}

	f, err := os.Create(result.Path)
	if err != nil {
		result.Error = fmt.Errorf("failed to create file: %w", err)
		return result
	}

	if err := receipt.WriteInvoice(f, biz, view.Invoice); err != nil {
		f.Close()
		result.Error = err
		return result
	}
	if err := f.Close(); err != nil {
		result.Error = err
	}
	return result
}
