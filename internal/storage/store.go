// Package storage persists opaque blobs under fixed keys. It is the local
// persistence behind the invoice repository: the whole collection is written
// as one value on every change.
package storage

import (
	"context"
	"errors"
	"fmt"
)

// Keys used by the invoice repository.
const (
	KeyInvoices = "invoices"
	KeyLastSync = "lastSyncTime"
)

// Supported drivers.
const (
	DriverFile     = "file"
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

var (
	// ErrNotFound is returned by Get when nothing is stored under the key.
	ErrNotFound = errors.New("storage: key not found")

	// ErrUnknownDriver is returned by Open for an unsupported driver name.
	ErrUnknownDriver = errors.New("storage: unknown driver")
)

// Store is a minimal key/value store. Values are replaced whole.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Close() error
}

// Options selects and configures a Store.
type Options struct {
	Driver  string // file, sqlite or postgres
	DataDir string // directory for the file driver and the default sqlite database
	DSN     string // database DSN for sqlite/postgres; sqlite defaults to <DataDir>/invoicedesk.db
	Debug   bool   // log SQL statements
}

// Open builds the Store described by opts.
func Open(ctx context.Context, opts Options) (Store, error) {
	const op = "Open"

	switch opts.Driver {
	case "", DriverFile:
		return NewFileStore(opts.DataDir)
	case DriverSQLite, DriverPostgres:
		return NewSQLStore(ctx, opts)
	default:
		return nil, fmt.Errorf("%s: %w: %q", op, ErrUnknownDriver, opts.Driver)
	}
}
