package accounting

import (
	"context"
	"time"

	"github.com/alamait/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// AccountFilter defines filtering options for account queries
type AccountFilter struct {
	shared.Filter
	Type            *AccountType
	Category        string
	ParentCode      string
	IncludeInactive bool
}

// AccountRepository defines the interface for chart-of-accounts persistence
type AccountRepository interface {
	// FindByID finds an account by ID
	FindByID(ctx context.Context, id uuid.UUID) (*Account, error)

	// FindByCode finds an account by its unique code
	FindByCode(ctx context.Context, code string) (*Account, error)

	// FindAll finds accounts matching the filter
	FindAll(ctx context.Context, filter AccountFilter) ([]Account, error)

	// FindByParent finds the sub-accounts under a parent code
	FindByParent(ctx context.Context, parentCode string) ([]Account, error)

	// ListCodes returns every existing account code, used by code generation
	ListCodes(ctx context.Context) ([]string, error)

	// Save creates or updates an account. Duplicate codes surface as
	// shared.ErrDuplicateCode via the unique index on accounts.code.
	Save(ctx context.Context, account *Account) error

	// Count counts accounts matching the filter
	Count(ctx context.Context, filter AccountFilter) (int64, error)
}

// EntryFilter defines filtering options for ledger queries
type EntryFilter struct {
	shared.Filter
	AccountCode string       // entries with at least one line touching the code
	Source      *EntrySource
	Sources     []EntrySource
	Status      *EntryStatus
	ResidenceID *uuid.UUID
	FromDate    *time.Time
	ToDate      *time.Time
	Year        int // calendar year shortcut used by cash flow reporting
}

// TransactionEntryRepository defines the interface for ledger persistence.
// Entries are append-only; the repository exposes no update or delete of
// financial content.
type TransactionEntryRepository interface {
	// FindByID finds an entry by ID
	FindByID(ctx context.Context, id uuid.UUID) (*TransactionEntry, error)

	// FindByTransactionID finds an entry by its business transaction ID
	FindByTransactionID(ctx context.Context, transactionID string) (*TransactionEntry, error)

	// FindBySource finds entries created by a specific source document.
	// Used as the accrual idempotency check alongside the unique index
	// on (source, source_id).
	FindBySource(ctx context.Context, source EntrySource, sourceID uuid.UUID) ([]TransactionEntry, error)

	// FindByAccountAndDateRange finds posted entries touching an account
	// code within a date range
	FindByAccountAndDateRange(ctx context.Context, accountCode string, from, to time.Time) ([]TransactionEntry, error)

	// FindPostedBefore finds all posted entries dated on or before the
	// given date, optionally scoped to a residence. Reporting scans.
	FindPostedBefore(ctx context.Context, asOf time.Time, residenceID *uuid.UUID) ([]TransactionEntry, error)

	// FindAll finds entries matching the filter
	FindAll(ctx context.Context, filter EntryFilter) ([]TransactionEntry, error)

	// Save persists a new entry. A duplicate (source, source_id) for
	// accrual sources surfaces as shared.ErrAlreadyAccrued.
	Save(ctx context.Context, entry *TransactionEntry) error

	// SaveStatus persists a status change (posted -> voided) only
	SaveStatus(ctx context.Context, entry *TransactionEntry) error

	// Count counts entries matching the filter
	Count(ctx context.Context, filter EntryFilter) (int64, error)
}
