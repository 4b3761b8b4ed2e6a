// Package repository owns the invoice collection. It keeps the collection in
// memory, persists every mutation through a storage.Store and hands out copies
// so callers never share state with it.
package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/samber/lo"
	"invoicedesk/internal/invoice"
	"invoicedesk/internal/logger"
	"invoicedesk/internal/storage"
	"invoicedesk/pkg/models"
)

// Invoices is the repository of all invoices.
type Invoices struct {
	mu       sync.RWMutex
	store    storage.Store
	invoices []models.Invoice
	lastSync time.Time
	now      func() time.Time
	newID    func() string
	log      zerolog.Logger
}

// Option customises an Invoices repository.
type Option func(*Invoices)

// WithClock replaces time.Now, mainly for tests.
func WithClock(now func() time.Time) Option {
	return func(r *Invoices) { r.now = now }
}

// WithIDGenerator replaces the uuid generator, mainly for tests.
func WithIDGenerator(newID func() string) Option {
	return func(r *Invoices) { r.newID = newID }
}

// New returns an empty repository over store. Call Load before use.
func New(store storage.Store, opts ...Option) *Invoices {
	r := &Invoices{
		store: store,
		now:   time.Now,
		newID: func() string { return uuid.NewString() },
		log:   logger.WithComponent("repository"),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Load reads the collection and the last sync marker from the store. A
// missing key yields an empty collection.
func (r *Invoices) Load(ctx context.Context) error {
	const op = "Load"

	r.mu.Lock()
	defer r.mu.Unlock()

	invoices := []models.Invoice{}
	data, err := r.store.Get(ctx, storage.KeyInvoices)
	switch {
	case errors.Is(err, storage.ErrNotFound):
	case err != nil:
		return fmt.Errorf("%s: failed to read invoices: %w", op, err)
	default:
		if err := json.Unmarshal(data, &invoices); err != nil {
			r.log.Error().Err(err).Msg("Stored invoice collection is corrupt")
			return fmt.Errorf("%s: failed to decode invoices: %w", op, err)
		}
	}

	var lastSync time.Time
	data, err = r.store.Get(ctx, storage.KeyLastSync)
	switch {
	case errors.Is(err, storage.ErrNotFound):
	case err != nil:
		return fmt.Errorf("%s: failed to read last sync time: %w", op, err)
	default:
		if err := json.Unmarshal(data, &lastSync); err != nil {
			r.log.Warn().Err(err).Msg("Ignoring unreadable last sync time")
			lastSync = time.Time{}
		}
	}

	r.invoices = invoices
	r.lastSync = lastSync

	r.log.Debug().
		Int("invoices", len(invoices)).
		Time("last_sync", lastSync).
		Msg("Loaded invoices")

	return nil
}

// All returns a copy of every invoice in stored order.
func (r *Invoices) All() []models.Invoice {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return cloneAll(r.invoices)
}

// Get returns the invoice with the given identifier.
func (r *Invoices) Get(id string) (models.Invoice, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	inv, ok := lo.Find(r.invoices, func(inv models.Invoice) bool { return inv.ID == id })
	if !ok {
		return models.Invoice{}, fmt.Errorf("id %q: %w", id, invoice.ErrInvoiceNotFound)
	}
	return inv.Clone(), nil
}

// FindByNumber returns the invoice whose number equals number after trimming
// surrounding whitespace.
func (r *Invoices) FindByNumber(number string) (models.Invoice, error) {
	number = strings.TrimSpace(number)
	if number == "" {
		return models.Invoice{}, invoice.ErrEmptyInvoiceNumber
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	inv, ok := lo.Find(r.invoices, func(inv models.Invoice) bool { return inv.InvoiceNumber == number })
	if !ok {
		return models.Invoice{}, fmt.Errorf("number %q: %w", number, invoice.ErrInvoiceNotFound)
	}
	return inv.Clone(), nil
}

// Search returns invoices whose number or client name contains term,
// ignoring case. An empty term matches everything.
func (r *Invoices) Search(term string) []models.Invoice {
	term = strings.ToLower(strings.TrimSpace(term))

	r.mu.RLock()
	defer r.mu.RUnlock()

	matches := lo.Filter(r.invoices, func(inv models.Invoice, _ int) bool {
		return term == "" ||
			strings.Contains(strings.ToLower(inv.InvoiceNumber), term) ||
			strings.Contains(strings.ToLower(inv.Client.Name), term)
	})
	return cloneAll(matches)
}

// NextNumber previews the number the next created invoice will get.
func (r *Invoices) NextNumber() string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return invoice.NextNumber(r.invoices)
}

// Save creates inv when it has no identifier and replaces the stored invoice
// with the same identifier otherwise. The discount mode is stored as given;
// only a missing mode defaults to percentage. A new invoice gets a fresh
// identifier, the next invoice number and a creation time. The saved invoice
// is returned.
func (r *Invoices) Save(ctx context.Context, inv models.Invoice) (models.Invoice, error) {
	const op = "Save"

	inv = inv.Clone()
	if inv.DiscountType == "" {
		inv.DiscountType = models.DiscountPercentage
	}
	inv.Items = invoice.NumberItems(inv.Items)

	r.mu.Lock()
	defer r.mu.Unlock()

	next := cloneAll(r.invoices)
	if inv.IsNew() {
		inv.ID = r.newID()
		inv.InvoiceNumber = invoice.NextNumber(r.invoices)
		inv.CreatedAt = r.now().UTC()
		next = append(next, inv)
	} else {
		idx := lo.IndexOf(lo.Map(next, func(existing models.Invoice, _ int) string { return existing.ID }), inv.ID)
		if idx < 0 {
			return models.Invoice{}, fmt.Errorf("%s: id %q: %w", op, inv.ID, invoice.ErrInvoiceNotFound)
		}
		if inv.CreatedAt.IsZero() {
			inv.CreatedAt = next[idx].CreatedAt
		}
		next[idx] = inv
	}

	if err := r.persist(ctx, next); err != nil {
		return models.Invoice{}, fmt.Errorf("%s: %w", op, err)
	}

	r.log.Info().
		Str("invoice_id", inv.ID).
		Str("invoice_number", inv.InvoiceNumber).
		Msg("Saved invoice")

	return inv.Clone(), nil
}

// Delete removes the invoice with the given identifier.
func (r *Invoices) Delete(ctx context.Context, id string) error {
	const op = "Delete"

	r.mu.Lock()
	defer r.mu.Unlock()

	next := lo.Reject(r.invoices, func(inv models.Invoice, _ int) bool { return inv.ID == id })
	if len(next) == len(r.invoices) {
		return fmt.Errorf("%s: id %q: %w", op, id, invoice.ErrInvoiceNotFound)
	}

	if err := r.persist(ctx, next); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	r.log.Info().Str("invoice_id", id).Msg("Deleted invoice")
	return nil
}

// LastSync returns the time of the last successful spreadsheet sync, zero if
// there never was one.
func (r *Invoices) LastSync() time.Time {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.lastSync
}

// MarkSynced records a successful spreadsheet sync.
func (r *Invoices) MarkSynced(ctx context.Context, at time.Time) error {
	const op = "MarkSynced"

	data, err := json.Marshal(at.UTC())
	if err != nil {
		return fmt.Errorf("%s: failed to encode sync time: %w", op, err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.store.Set(ctx, storage.KeyLastSync, data); err != nil {
		return fmt.Errorf("%s: failed to write sync time: %w", op, err)
	}
	r.lastSync = at.UTC()
	return nil
}

// persist writes next and, only when that succeeds, makes it the in-memory
// collection. Must be called with the write lock held.
func (r *Invoices) persist(ctx context.Context, next []models.Invoice) error {
	data, err := json.Marshal(next)
	if err != nil {
		return fmt.Errorf("failed to encode invoices: %w", err)
	}
	if err := r.store.Set(ctx, storage.KeyInvoices, data); err != nil {
		r.log.Error().Err(err).Msg("Failed to persist invoices, keeping previous collection")
		return fmt.Errorf("failed to write invoices: %w", err)
	}
	r.invoices = next
	return nil
}

func cloneAll(invoices []models.Invoice) []models.Invoice {
	return lo.Map(invoices, func(inv models.Invoice, _ int) models.Invoice { return inv.Clone() })
}
