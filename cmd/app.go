package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/samber/lo"
	"invoicedesk/internal/billing"
	"invoicedesk/internal/config"
	"invoicedesk/internal/invoice"
	"invoicedesk/internal/logger"
	"invoicedesk/internal/receipt"
	"invoicedesk/internal/repository"
	"invoicedesk/internal/sheets"
	"invoicedesk/internal/storage"
	"invoicedesk/internal/syncqueue"
)

// app bundles everything a command needs. It is built per command and must
// be closed so pending spreadsheet syncs get a chance to finish.
type app struct {
	cfg     *config.Config
	store   storage.Store
	repo    *repository.Invoices
	queue   *syncqueue.Queue
	sheets  *sheets.Service // only set for SYNC_MODE=sheets
	service *billing.Service
	log     zerolog.Logger
}

// openApp opens local storage, loads the invoices and wires the configured
// spreadsheet mirror.
func openApp(ctx context.Context) (*app, error) {
	const op = "openApp"

	cfg := appConfig
	if cfg == nil {
		return nil, fmt.Errorf("%s: configuration not loaded", op)
	}
	log := logger.WithComponent("app")

	store, err := storage.Open(ctx, storage.Options{
		Driver:  cfg.StorageDriver,
		DataDir: cfg.DataDir,
		DSN:     cfg.DatabaseDSN,
		Debug:   strings.EqualFold(cfg.LogLevel, "debug"),
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	repo := repository.New(store)
	if err := repo.Load(ctx); err != nil {
		store.Close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	a := &app{
		cfg:   cfg,
		store: store,
		repo:  repo,
		log:   log,
	}

	mirror, err := a.newMirror(ctx)
	if err != nil {
		store.Close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	var syncer billing.Syncer
	if mirror != nil {
		a.queue = syncqueue.New(mirror, repo, syncqueue.WithTimeout(cfg.SyncTimeout))
		syncer = a.queue
	}

	a.service = billing.NewService(repo, syncer, billing.Config{DefaultPAN: cfg.DefaultPAN})

	log.Debug().
		Str("storage_driver", cfg.StorageDriver).
		Str("sync_mode", cfg.SyncMode).
		Int("invoices", len(repo.All())).
		Msg("Application ready")

	return a, nil
}

// newMirror returns nil when spreadsheet sync is switched off.
func (a *app) newMirror(ctx context.Context) (syncqueue.Mirror, error) {
	switch a.cfg.SyncMode {
	case config.SyncAppsScript:
		mirror, err := sheets.NewAppsScriptMirror(sheets.AppsScriptConfig{
			URL:      a.cfg.AppsScriptURL,
			Timeout:  a.cfg.SyncTimeout,
			RetryMax: a.cfg.SyncRetryMax,
		})
		if err != nil {
			return nil, err
		}
		return mirror, nil
	case config.SyncSheets:
		creds, err := a.cfg.GoogleCredentials()
		if err != nil {
			return nil, err
		}
		svc, err := sheets.NewSheetsService(ctx, a.cfg.GoogleSheetURL, a.cfg.GoogleSheetWorksheet, creds)
		if err != nil {
			return nil, err
		}
		a.sheets = svc
		return svc, nil
	default:
		return nil, nil
	}
}

// business is the letterhead printed on PDFs.
func (a *app) business() receipt.Business {
	return receipt.Business{
		Name:    a.cfg.BusinessName,
		Address: a.cfg.BusinessAddress,
	}
}

// Close waits for a pending sync, bounded by SYNC_TIMEOUT, then closes the
// store.
func (a *app) Close() {
	if a.queue != nil {
		ctx, cancel := context.WithTimeout(context.Background(), a.cfg.SyncTimeout)
		if err := a.queue.Close(ctx); err != nil {
			a.log.Warn().Err(err).Msg("Spreadsheet sync did not finish before exit")
		}
		cancel()
	}
	if err := a.store.Close(); err != nil {
		a.log.Warn().Err(err).Msg("Failed to close storage")
	}
}

// createCommandContext creates a context that is canceled on interrupt and,
// when timeout is positive, after timeout.
func createCommandContext(timeout time.Duration, log zerolog.Logger) (context.Context, context.CancelFunc) {
	var (
		ctx    context.Context
		cancel context.CancelFunc
	)
	if timeout > 0 {
		ctx, cancel = context.WithTimeout(context.Background(), timeout)
	} else {
		ctx, cancel = context.WithCancel(context.Background())
	}

	// Handle interrupt signals for graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		defer signal.Stop(sigChan)
		select {
		case sig := <-sigChan:
			log.Info().
				Str("signal", sig.String()).
				Msg("Received interrupt signal, canceling")
			cancel()
		case <-ctx.Done():
			// Context completed normally
		}
	}()

	return ctx, cancel
}

// handleInvoiceError provides user-friendly messages for invoice failures
func handleInvoiceError(err error, log zerolog.Logger) error {
	log.Error().Err(err).Msg("Invoice operation failed")

	var validationErr *invoice.ValidationError
	var mirrorErr *sheets.MirrorError

	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return fmt.Errorf("operation timed out. Try increasing SYNC_TIMEOUT")
	case errors.Is(err, context.Canceled):
		return fmt.Errorf("operation was canceled")
	case errors.As(err, &validationErr):
		lines := lo.Map(validationErr.Keys(), func(k string, _ int) string {
			return fmt.Sprintf("  %s: %s", k, validationErr.Fields[k])
		})
		return fmt.Errorf("invoice not saved, please fix the following fields:\n%s", strings.Join(lines, "\n"))
	case errors.Is(err, invoice.ErrInvalidPaymentAmount):
		return fmt.Errorf("please enter a valid payment amount greater than zero")
	case errors.Is(err, invoice.ErrPaymentExceedsDue):
		return fmt.Errorf("payment amount cannot exceed the amount due")
	case errors.Is(err, invoice.ErrEmptyInvoiceNumber):
		return fmt.Errorf("please enter an invoice number")
	case errors.Is(err, invoice.ErrInvoiceNotFound):
		return fmt.Errorf("invoice not found. Use 'invoicedesk invoice list' to see existing invoices")
	case errors.Is(err, invoice.ErrUnknownPreset):
		keys := lo.Map(invoice.Presets, func(p invoice.Preset, _ int) string { return p.Key })
		return fmt.Errorf("%v. Available presets: %s", err, strings.Join(keys, ", "))
	case errors.Is(err, sheets.ErrMirrorNotConfigured):
		return fmt.Errorf("spreadsheet sync is not configured. Set SYNC_MODE=appsscript with APPS_SCRIPT_URL,\n" +
			"or SYNC_MODE=sheets with GOOGLE_SHEET_URL and GOOGLE_APPLICATION_CREDENTIALS")
	case errors.As(err, &mirrorErr):
		if mirrorErr.StatusCode != 0 {
			return fmt.Errorf("spreadsheet sync failed with HTTP status %d. Local data is saved: %w", mirrorErr.StatusCode, err)
		}
		return fmt.Errorf("spreadsheet sync failed. Local data is saved: %w", err)
	case errors.Is(err, storage.ErrUnknownDriver):
		return fmt.Errorf("unsupported STORAGE_DRIVER. Use file, sqlite or postgres")
	default:
		return fmt.Errorf("invoice operation failed: %w", err)
	}
}
