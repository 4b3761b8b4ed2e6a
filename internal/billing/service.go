// Package billing implements services.InvoiceService on top of the invoice
// repository and the spreadsheet sync queue.
package billing

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/rs/zerolog"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
	"invoicedesk/internal/export"
	"invoicedesk/internal/invoice"
	"invoicedesk/internal/logger"
	"invoicedesk/internal/repository"
	"invoicedesk/internal/sheets"
	"invoicedesk/pkg/models"
	"invoicedesk/pkg/services"
)

// DefaultPAN is printed on new invoices unless configured otherwise.
const DefaultPAN = "51825823"

// Syncer mirrors invoice snapshots to the spreadsheet.
type Syncer interface {
	// Enqueue schedules a background push and returns immediately.
	Enqueue(snapshot []models.Invoice) error
	// Push mirrors synchronously.
	Push(ctx context.Context, snapshot []models.Invoice) error
}

// Config holds the defaults applied to new invoices.
type Config struct {
	DefaultPAN string
	Now        func() time.Time
}

// Service implements services.InvoiceService.
type Service struct {
	repo   *repository.Invoices
	syncer Syncer
	pan    string
	now    func() time.Time
	log    zerolog.Logger
}

var _ services.InvoiceService = (*Service)(nil)

// NewService wires the service. syncer may be nil when no spreadsheet is
// configured.
func NewService(repo *repository.Invoices, syncer Syncer, cfg Config) *Service {
	pan := cfg.DefaultPAN
	if pan == "" {
		pan = DefaultPAN
	}
	now := cfg.Now
	if now == nil {
		now = time.Now
	}

	return &Service{
		repo:   repo,
		syncer: syncer,
		pan:    pan,
		now:    now,
		log:    logger.WithComponent("billing"),
	}
}

// Draft implements services.InvoiceService.
func (s *Service) Draft() models.Invoice {
	return invoice.NewDraft(s.repo.All(), s.pan, s.now())
}

// Create implements services.InvoiceService.
func (s *Service) Create(ctx context.Context, inv models.Invoice) (*services.InvoiceView, error) {
	const op = "Create"

	inv.ID = ""
	inv.DiscountType = models.DiscountPercentage
	if inv.PANNumber == "" {
		inv.PANNumber = s.pan
	}
	if inv.Date == "" {
		inv.Date = s.now().Format(models.DateLayout)
	}

	if err := invoice.Validate(&inv); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	saved, err := s.repo.Save(ctx, inv)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	s.enqueueSync()

	view := services.NewInvoiceView(saved)
	return &view, nil
}

// Update implements services.InvoiceService. Lowering the paid amount is
// allowed here but logged, since payments normally only add to it.
//
// The editor enters discounts as percentages: a changed discount is stored as
// a percentage, an unchanged one keeps the mode it was saved with.
func (s *Service) Update(ctx context.Context, inv models.Invoice) (*services.InvoiceView, error) {
	const op = "Update"

	if inv.IsNew() {
		return nil, fmt.Errorf("%s: %w", op, invoice.ErrInvoiceNotFound)
	}

	previous, err := s.repo.Get(inv.ID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if err := invoice.Validate(&inv); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	inv.InvoiceNumber = previous.InvoiceNumber
	inv.CreatedAt = previous.CreatedAt
	if inv.Discount.Equal(previous.Discount) {
		inv.DiscountType = previous.DiscountType
	} else {
		inv.DiscountType = models.DiscountPercentage
	}
	if inv.PaidAmount.LessThan(previous.PaidAmount) {
		s.log.Warn().
			Str("invoice_number", inv.InvoiceNumber).
			Str("previous_paid", previous.PaidAmount.String()).
			Str("paid", inv.PaidAmount.String()).
			Msg("Paid amount lowered by edit")
	}

	saved, err := s.repo.Save(ctx, inv)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	s.enqueueSync()

	view := services.NewInvoiceView(saved)
	return &view, nil
}

// Delete implements services.InvoiceService.
func (s *Service) Delete(ctx context.Context, number string) error {
	const op = "Delete"

	inv, err := s.repo.FindByNumber(number)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if err := s.repo.Delete(ctx, inv.ID); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	s.enqueueSync()
	return nil
}

// ClearDue implements services.InvoiceService. Nothing is stored when the
// amount is rejected.
func (s *Service) ClearDue(ctx context.Context, number string, amount decimal.Decimal) (*invoice.Payment, error) {
	const op = "ClearDue"

	inv, err := s.repo.FindByNumber(number)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	payment, err := invoice.ApplyPayment(inv, amount, s.now())
	if err != nil {
		s.log.Info().
			Err(err).
			Str("invoice_number", inv.InvoiceNumber).
			Str("amount", amount.String()).
			Msg("Payment rejected")
		return nil, err
	}

	saved, err := s.repo.Save(ctx, payment.Invoice)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	payment.Invoice = saved

	s.log.Info().
		Str("invoice_number", saved.InvoiceNumber).
		Str("amount", amount.String()).
		Str("remaining_due", payment.RemainingDue.String()).
		Msg("Payment recorded")

	s.enqueueSync()
	return payment, nil
}

// SyncNow implements services.InvoiceService.
func (s *Service) SyncNow(ctx context.Context) error {
	const op = "SyncNow"

	if s.syncer == nil {
		return fmt.Errorf("%s: %w", op, sheets.ErrMirrorNotConfigured)
	}
	if err := s.syncer.Push(ctx, s.repo.All()); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// List implements services.InvoiceService.
func (s *Service) List() []services.InvoiceView {
	return views(s.repo.All())
}

// Search implements services.InvoiceService.
func (s *Service) Search(term string) []services.InvoiceView {
	return views(s.repo.Search(term))
}

// Find implements services.InvoiceService.
func (s *Service) Find(number string) (*services.InvoiceView, error) {
	inv, err := s.repo.FindByNumber(number)
	if err != nil {
		return nil, err
	}
	view := services.NewInvoiceView(inv)
	return &view, nil
}

// Export implements services.InvoiceService.
func (s *Service) Export(w io.Writer) error {
	return export.WriteCSV(w, s.repo.All())
}

// NextNumber implements services.InvoiceService.
func (s *Service) NextNumber() string {
	return s.repo.NextNumber()
}

// LastSync implements services.InvoiceService.
func (s *Service) LastSync() time.Time {
	return s.repo.LastSync()
}

// enqueueSync schedules a best-effort mirror of the current collection.
func (s *Service) enqueueSync() {
	if s.syncer == nil {
		return
	}
	if err := s.syncer.Enqueue(s.repo.All()); err != nil {
		s.log.Warn().Err(err).Msg("Could not schedule spreadsheet sync")
	}
}

func views(invoices []models.Invoice) []services.InvoiceView {
	return lo.Map(invoices, func(inv models.Invoice, _ int) services.InvoiceView {
		return services.NewInvoiceView(inv)
	})
}
