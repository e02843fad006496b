package postgres

import (
	"context"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/subledger/subledger/internal/config"
	ierr "github.com/subledger/subledger/internal/errors"
	"github.com/subledger/subledger/internal/logger"
	"github.com/subledger/subledger/internal/types"
)

type txContextKey struct{}

// IClient is the database access contract used by repositories. It hides
// whether the current operation runs inside a transaction: DB returns the
// ambient transaction handle when one is bound to the context.
type IClient interface {
	DB(ctx context.Context) *gorm.DB
	WithTx(ctx context.Context, fn func(ctx context.Context) error) error
	LockKey(ctx context.Context, req types.LockRequest) error
	TryLockKey(ctx context.Context, key string) (bool, error)
}

// Client implements IClient over a GORM connection pool.
type Client struct {
	db  *gorm.DB
	log *logger.Logger
}

// NewClient opens the postgres connection pool.
func NewClient(cfg *config.Configuration, log *logger.Logger) (*Client, error) {
	db, err := gorm.Open(postgres.Open(cfg.Postgres.DSN()), &gorm.Config{
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
		TranslateError: true,
	})
	if err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to connect to postgres").
			Mark(ierr.ErrDatabase)
	}

	return &Client{db: db, log: log}, nil
}

// NewClientWithDB wraps an existing GORM handle; used by tests.
func NewClientWithDB(db *gorm.DB, log *logger.Logger) *Client {
	return &Client{db: db, log: log}
}

// DB returns the transaction bound to ctx, or the base connection pool.
func (c *Client) DB(ctx context.Context) *gorm.DB {
	if tx := c.TxFromContext(ctx); tx != nil {
		return tx
	}
	return c.db.WithContext(ctx)
}

// TxFromContext returns the ambient transaction, or nil outside one.
func (c *Client) TxFromContext(ctx context.Context) *gorm.DB {
	if tx, ok := ctx.Value(txContextKey{}).(*gorm.DB); ok {
		return tx
	}
	return nil
}

// WithTx runs fn inside a transaction, committing on nil error and rolling
// back otherwise. Nested calls reuse the outer transaction, so every
// operation either fully commits or fully reverts.
func (c *Client) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if c.TxFromContext(ctx) != nil {
		return fn(ctx)
	}

	err := c.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(context.WithValue(ctx, txContextKey{}, tx))
	})
	if err != nil {
		return err
	}
	return nil
}

// AutoMigrate creates or updates the schema for the given models.
func (c *Client) AutoMigrate(models ...interface{}) error {
	if err := c.db.AutoMigrate(models...); err != nil {
		return ierr.WithError(err).
			WithHint("Failed to run schema migration").
			Mark(ierr.ErrDatabase)
	}
	return nil
}
