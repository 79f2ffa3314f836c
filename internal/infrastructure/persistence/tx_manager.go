package persistence

import (
	"context"

	"gorm.io/gorm"

	appaccounting "github.com/alamait/backend/internal/application/accounting"
)

type txContextKey struct{}

// GormTransactionManager implements the application transaction manager over
// GORM. The active transaction travels in the context so repositories join it
// without holding a reference.
//
// WithinTransaction is reentrant: service flows nest (a payment wraps its own
// transaction around the ledger posting, which opens one of its own), and a
// nested call must join the outer transaction instead of deadlocking on a
// second one.
type GormTransactionManager struct {
	db *gorm.DB
}

// NewGormTransactionManager creates a new GormTransactionManager
func NewGormTransactionManager(db *gorm.DB) *GormTransactionManager {
	return &GormTransactionManager{db: db}
}

// WithinTransaction runs fn inside a database transaction. If the context
// already carries a transaction, fn joins it and commit/rollback is left to
// the outermost caller.
func (m *GormTransactionManager) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if _, ok := ctx.Value(txContextKey{}).(*gorm.DB); ok {
		return fn(ctx)
	}
	return m.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(context.WithValue(ctx, txContextKey{}, tx))
	})
}

// dbFromContext returns the transaction carried by the context, or the
// fallback handle when no transaction is open.
func dbFromContext(ctx context.Context, fallback *gorm.DB) *gorm.DB {
	if tx, ok := ctx.Value(txContextKey{}).(*gorm.DB); ok {
		return tx
	}
	return fallback.WithContext(ctx)
}

var _ appaccounting.TransactionManager = (*GormTransactionManager)(nil)
