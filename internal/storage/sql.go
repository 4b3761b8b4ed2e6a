package storage

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	gormlogger "gorm.io/gorm/logger"
	"invoicedesk/internal/logger"
)

// Entry is one row of the key/value table.
type Entry struct {
	Key       string `gorm:"primaryKey;size:64"`
	Value     []byte
	UpdatedAt time.Time
}

// TableName keeps the table name stable regardless of gorm naming rules.
func (Entry) TableName() string {
	return "kv_entries"
}

// SQLStore keeps values in a single gorm-managed table.
type SQLStore struct {
	db  *gorm.DB
	log zerolog.Logger
}

// NewSQLStore connects to sqlite or postgres and makes sure the table exists.
func NewSQLStore(ctx context.Context, opts Options) (*SQLStore, error) {
	const op = "NewSQLStore"

	var dialector gorm.Dialector
	switch opts.Driver {
	case DriverSQLite:
		dsn := opts.DSN
		if dsn == "" {
			if opts.DataDir == "" {
				return nil, fmt.Errorf("%s: sqlite needs DATABASE_DSN or a data directory", op)
			}
			dsn = filepath.Join(opts.DataDir, "invoicedesk.db")
		}
		dialector = sqlite.Open(dsn)
	case DriverPostgres:
		if opts.DSN == "" {
			return nil, fmt.Errorf("%s: postgres needs DATABASE_DSN", op)
		}
		dialector = postgres.Open(opts.DSN)
	default:
		return nil, fmt.Errorf("%s: %w: %q", op, ErrUnknownDriver, opts.Driver)
	}

	logLevel := gormlogger.Silent
	if opts.Debug {
		logLevel = gormlogger.Info
	}

	db, err := gorm.Open(dialector, &gorm.Config{Logger: gormlogger.Default.LogMode(logLevel)})
	if err != nil {
		return nil, fmt.Errorf("%s: failed to open %s database: %w", op, opts.Driver, err)
	}

	return NewSQLStoreWithDB(ctx, db)
}

// NewSQLStoreWithDB wraps an existing connection.
func NewSQLStoreWithDB(ctx context.Context, db *gorm.DB) (*SQLStore, error) {
	const op = "NewSQLStoreWithDB"

	if err := db.WithContext(ctx).AutoMigrate(&Entry{}); err != nil {
		return nil, fmt.Errorf("%s: failed to create kv table: %w", op, err)
	}

	return &SQLStore{
		db:  db,
		log: logger.WithComponent("sql-store"),
	}, nil
}

// Get reads the value stored under key.
func (s *SQLStore) Get(ctx context.Context, key string) ([]byte, error) {
	const op = "SQLStore.Get"

	var entry Entry
	err := s.db.WithContext(ctx).Where(&Entry{Key: key}).Take(&entry).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%s: failed to read %q: %w", op, key, err)
	}
	return entry.Value, nil
}

// Set inserts or replaces the value under key.
func (s *SQLStore) Set(ctx context.Context, key string, value []byte) error {
	const op = "SQLStore.Set"

	entry := Entry{Key: key, Value: value, UpdatedAt: time.Now().UTC()}
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&entry).Error
	if err != nil {
		return fmt.Errorf("%s: failed to write %q: %w", op, key, err)
	}

	s.log.Debug().
		Str("key", key).
		Int("bytes", len(value)).
		Msg("Stored value")

	return nil
}

// Close releases the underlying connection pool.
func (s *SQLStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
