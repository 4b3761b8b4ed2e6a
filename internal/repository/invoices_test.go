package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"invoicedesk/internal/invoice"
	"invoicedesk/internal/storage"
	"invoicedesk/pkg/models"
)

// memStore is an in-memory storage.Store whose writes can be made to fail.
type memStore struct {
	data    map[string][]byte
	failSet error
}

func newMemStore() *memStore {
	return &memStore{data: map[string][]byte{}}
}

func (m *memStore) Get(_ context.Context, key string) ([]byte, error) {
	v, ok := m.data[key]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return v, nil
}

func (m *memStore) Set(_ context.Context, key string, value []byte) error {
	if m.failSet != nil {
		return m.failSet
	}
	m.data[key] = value
	return nil
}

func (m *memStore) Close() error { return nil }

var fixedNow = time.Date(2025, 1, 15, 10, 30, 0, 0, time.UTC)

func newRepo(t *testing.T, store storage.Store) *Invoices {
	t.Helper()
	seq := 0
	repo := New(store,
		WithClock(func() time.Time { return fixedNow }),
		WithIDGenerator(func() string {
			seq++
			return fmt.Sprintf("id-%d", seq)
		}),
	)
	require.NoError(t, repo.Load(context.Background()))
	return repo
}

func draft(client string, amounts ...int64) models.Invoice {
	inv := models.Invoice{
		Date:         "2025-01-15",
		PANNumber:    "51825823",
		Client:       models.ClientInfo{Name: client, Address: "Pokhara"},
		DiscountType: models.DiscountFixed,
	}
	for _, a := range amounts {
		inv.Items = append(inv.Items, models.LineItem{Description: "Class", Amount: decimal.NewFromInt(a)})
	}
	return inv
}

func TestLoad_EmptyStore(t *testing.T) {
	repo := newRepo(t, newMemStore())

	assert.Empty(t, repo.All())
	assert.True(t, repo.LastSync().IsZero())
	assert.Equal(t, "00001", repo.NextNumber())
}

func TestLoad_CorruptBlob(t *testing.T) {
	store := newMemStore()
	store.data[storage.KeyInvoices] = []byte("{not json")

	err := New(store).Load(context.Background())
	assert.Error(t, err)
}

func TestLoad_AcceptsNumericAndNullAmounts(t *testing.T) {
	store := newMemStore()
	store.data[storage.KeyInvoices] = []byte(`[{
		"id": "1700000000000",
		"invoiceNumber": "00003",
		"date": "2025-01-15",
		"client": {"name": "Ram", "address": "Pokhara"},
		"items": [{"id": "1", "description": "IELTS Class", "amount": 6000}, {"id": "2", "description": "Extra", "amount": null}],
		"discount": 10,
		"discountType": "percentage",
		"paidAmount": "1000"
	}]`)

	repo := newRepo(t, store)
	inv, err := repo.FindByNumber("00003")
	require.NoError(t, err)

	totals := invoice.Compute(&inv)
	assert.Equal(t, "6000", totals.Total.String())
	assert.Equal(t, "5400", totals.FinalAmount.String())
	assert.Equal(t, "4400", totals.DueAmount.String())
	assert.Equal(t, "00004", repo.NextNumber())
}

func TestSave_CreateAssignsIdentity(t *testing.T) {
	repo := newRepo(t, newMemStore())
	ctx := context.Background()

	first, err := repo.Save(ctx, draft("Sita", 6000))
	require.NoError(t, err)
	second, err := repo.Save(ctx, draft("Hari", 1000, 3000))
	require.NoError(t, err)

	assert.Equal(t, "id-1", first.ID)
	assert.Equal(t, "00001", first.InvoiceNumber)
	assert.Equal(t, "00002", second.InvoiceNumber)
	assert.Equal(t, fixedNow, second.CreatedAt)
	assert.Equal(t, models.DiscountFixed, second.DiscountType)
	assert.Equal(t, "1", second.Items[0].ID)
	assert.Equal(t, "2", second.Items[1].ID)
	assert.Len(t, repo.All(), 2)
}

func TestSave_DefaultsMissingDiscountType(t *testing.T) {
	repo := newRepo(t, newMemStore())

	inv := draft("Sita", 6000)
	inv.DiscountType = ""
	saved, err := repo.Save(context.Background(), inv)
	require.NoError(t, err)

	assert.Equal(t, models.DiscountPercentage, saved.DiscountType)
}

func TestSave_UpdateReplacesByID(t *testing.T) {
	repo := newRepo(t, newMemStore())
	ctx := context.Background()

	saved, err := repo.Save(ctx, draft("Sita", 6000))
	require.NoError(t, err)

	saved.Client.Name = "Sita Gurung"
	saved.CreatedAt = time.Time{}
	updated, err := repo.Save(ctx, saved)
	require.NoError(t, err)

	assert.Equal(t, saved.ID, updated.ID)
	assert.Equal(t, "00001", updated.InvoiceNumber)
	assert.Equal(t, fixedNow, updated.CreatedAt)

	all := repo.All()
	require.Len(t, all, 1)
	assert.Equal(t, "Sita Gurung", all[0].Client.Name)
}

func TestSave_UpdateUnknownID(t *testing.T) {
	repo := newRepo(t, newMemStore())

	inv := draft("Sita", 100)
	inv.ID = "missing"
	_, err := repo.Save(context.Background(), inv)
	assert.ErrorIs(t, err, invoice.ErrInvoiceNotFound)
}

func TestSave_FailedWriteKeepsPreviousCollection(t *testing.T) {
	store := newMemStore()
	repo := newRepo(t, store)
	ctx := context.Background()

	_, err := repo.Save(ctx, draft("Sita", 6000))
	require.NoError(t, err)
	before, err := json.Marshal(repo.All())
	require.NoError(t, err)

	store.failSet = errors.New("disk full")
	_, err = repo.Save(ctx, draft("Hari", 1000))
	require.Error(t, err)

	after, err := json.Marshal(repo.All())
	require.NoError(t, err)
	assert.JSONEq(t, string(before), string(after))
	assert.Equal(t, "00002", repo.NextNumber())
}

func TestRoundTrip_ThroughStore(t *testing.T) {
	store := newMemStore()
	repo := newRepo(t, store)
	ctx := context.Background()

	inv := draft("Sita", 6000, 1000)
	inv.Discount = decimal.NewFromInt(10)
	inv.PaidAmount = decimal.NewFromInt(2500)
	inv.Client.Email = "sita@example.com"
	inv.ConfirmationName = "Hari"
	inv.ConfirmationDate = "2025-01-16"
	_, err := repo.Save(ctx, inv)
	require.NoError(t, err)

	reloaded := newRepo(t, store)

	want, err := json.Marshal(repo.All())
	require.NoError(t, err)
	got, err := json.Marshal(reloaded.All())
	require.NoError(t, err)
	assert.JSONEq(t, string(want), string(got))
}

func TestFindByNumber(t *testing.T) {
	repo := newRepo(t, newMemStore())
	_, err := repo.Save(context.Background(), draft("Sita", 6000))
	require.NoError(t, err)

	inv, err := repo.FindByNumber("  00001 ")
	require.NoError(t, err)
	assert.Equal(t, "Sita", inv.Client.Name)

	_, err = repo.FindByNumber("00009")
	assert.ErrorIs(t, err, invoice.ErrInvoiceNotFound)

	_, err = repo.FindByNumber("   ")
	assert.ErrorIs(t, err, invoice.ErrEmptyInvoiceNumber)
}

func TestSearch(t *testing.T) {
	repo := newRepo(t, newMemStore())
	ctx := context.Background()
	for _, name := range []string{"Sita Gurung", "Hari Thapa", "Gita Sharma"} {
		_, err := repo.Save(ctx, draft(name, 100))
		require.NoError(t, err)
	}

	assert.Len(t, repo.Search("ITA"), 2)
	assert.Len(t, repo.Search("00002"), 1)
	assert.Len(t, repo.Search(""), 3)
	assert.Empty(t, repo.Search("nobody"))
}

func TestAll_ReturnsCopies(t *testing.T) {
	repo := newRepo(t, newMemStore())
	_, err := repo.Save(context.Background(), draft("Sita", 6000))
	require.NoError(t, err)

	all := repo.All()
	all[0].Items[0].Description = "changed"

	assert.Equal(t, "Class", repo.All()[0].Items[0].Description)
}

func TestDelete(t *testing.T) {
	repo := newRepo(t, newMemStore())
	ctx := context.Background()

	saved, err := repo.Save(ctx, draft("Sita", 6000))
	require.NoError(t, err)

	require.NoError(t, repo.Delete(ctx, saved.ID))
	assert.Empty(t, repo.All())
	assert.ErrorIs(t, repo.Delete(ctx, saved.ID), invoice.ErrInvoiceNotFound)
}

func TestMarkSynced(t *testing.T) {
	store := newMemStore()
	repo := newRepo(t, store)

	require.NoError(t, repo.MarkSynced(context.Background(), fixedNow))
	assert.Equal(t, fixedNow, repo.LastSync())

	reloaded := newRepo(t, store)
	assert.True(t, fixedNow.Equal(reloaded.LastSync()))
}

func TestRepository_SQLiteStore(t *testing.T) {
	ctx := context.Background()
	store, err := storage.Open(ctx, storage.Options{Driver: storage.DriverSQLite, DataDir: t.TempDir()})
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	repo := newRepo(t, store)
	_, err = repo.Save(ctx, draft("Sita", 6000))
	require.NoError(t, err)
	_, err = repo.Save(ctx, draft("Hari", 1000))
	require.NoError(t, err)

	reloaded := newRepo(t, store)
	assert.Len(t, reloaded.All(), 2)
	assert.Equal(t, "00003", reloaded.NextNumber())
}
