package kvstore

import (
	"context"
	"errors"
	"strings"

	"github.com/rs/zerolog"
	gormlogger "gorm.io/gorm/logger"

	"github.com/janhq/mistralhub/internal/infrastructure/database"
)

// MemoryDSN selects the in-process backend.
const MemoryDSN = "memory"

// DefaultDSN is the SQLite file used when no DSN is configured.
const DefaultDSN = "~/.mistralhub/store.db"

// ErrUnavailable reports that no storage medium is usable.
var ErrUnavailable = errors.New("storage unavailable")

// KV is a string key-value store. Get reports ok=false for missing keys.
type KV interface {
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// Open picks a backend for dsn. It never fails: when the durable medium
// cannot be opened the Unavailable backend is returned and callers degrade
// to read-empty, write-no-op behaviour.
func Open(ctx context.Context, dsn string, log zerolog.Logger) KV {
	dsn = strings.TrimSpace(dsn)
	if dsn == "" {
		dsn = DefaultDSN
	}
	if strings.EqualFold(dsn, MemoryDSN) {
		return NewMemory()
	}

	db, err := database.Connect(database.Config{DSN: dsn, MaxOpenConns: 1, LogLevel: gormlogger.Silent})
	if err != nil {
		log.Warn().Err(err).Msg("local store unavailable, history will not be kept")
		return Unavailable{}
	}
	if err := database.AutoMigrate(ctx, db, log); err != nil {
		log.Warn().Err(err).Msg("local store migration failed, history will not be kept")
		_ = database.Close(db)
		return Unavailable{}
	}
	return NewSQL(db)
}

// Unavailable is the backend used when no storage medium exists.
type Unavailable struct{}

func (Unavailable) Get(context.Context, string) (string, bool, error) { return "", false, ErrUnavailable }
func (Unavailable) Set(context.Context, string, string) error        { return ErrUnavailable }
func (Unavailable) Delete(context.Context, string) error             { return ErrUnavailable }
func (Unavailable) Close() error                                     { return nil }
