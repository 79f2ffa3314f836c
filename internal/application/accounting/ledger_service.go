package accounting

import (
	"context"
	"time"

	"github.com/alamait/backend/internal/domain/accounting"
	"github.com/alamait/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// TransactionManager runs a function within a single storage transaction.
// Repositories participating in the transaction resolve it from the context.
type TransactionManager interface {
	WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

// ReportCache stores rendered report payloads. Reporting services read
// through it; the ledger invalidates it after every posting so reports never
// serve stale balances.
type ReportCache interface {
	GetReport(ctx context.Context, key string, out interface{}) (bool, error)
	SetReport(ctx context.Context, key string, value interface{}) error
	InvalidateReports(ctx context.Context) error
}

// PostingListener is notified after an entry has been committed. Listener
// failures are logged, never propagated; side effects must not fail a posting.
type PostingListener interface {
	EntryPosted(ctx context.Context, entry *accounting.TransactionEntry)
}

// EntryLineRequest is one line of a posting request
type EntryLineRequest struct {
	AccountCode string          `json:"account_code" binding:"required"`
	Debit       decimal.Decimal `json:"debit"`
	Credit      decimal.Decimal `json:"credit"`
	Description string          `json:"description"`
}

// PostTransactionRequest is a request to post a balanced ledger entry
type PostTransactionRequest struct {
	Date             time.Time                   `json:"date" binding:"required"`
	Description      string                      `json:"description" binding:"required"`
	Reference        string                      `json:"reference"`
	ResidenceID      *uuid.UUID                  `json:"residence_id"`
	Lines            []EntryLineRequest          `json:"entries" binding:"required,min=1"`
	Source           accounting.EntrySource      `json:"source"`
	SourceID         *uuid.UUID                  `json:"source_id"`
	SourceModel      string                      `json:"source_model"`
	CashFlowCategory accounting.CashFlowCategory `json:"cash_flow_category"`
	Metadata         accounting.Metadata         `json:"metadata"`
	CreatedBy        string                      `json:"-"`
}

// TransactionEntryResponse represents a ledger entry in API responses
type TransactionEntryResponse struct {
	ID               uuid.UUID              `json:"id"`
	TransactionID    string                 `json:"transaction_id"`
	Date             time.Time              `json:"date"`
	Description      string                 `json:"description"`
	Reference        string                 `json:"reference,omitempty"`
	ResidenceID      *uuid.UUID             `json:"residence_id,omitempty"`
	Entries          []accounting.EntryLine `json:"entries"`
	TotalDebit       decimal.Decimal        `json:"total_debit"`
	TotalCredit      decimal.Decimal        `json:"total_credit"`
	Source           string                 `json:"source"`
	SourceID         *uuid.UUID             `json:"source_id,omitempty"`
	SourceModel      string                 `json:"source_model,omitempty"`
	CreatedBy        string                 `json:"created_by"`
	Status           string                 `json:"status"`
	AccountingPeriod string                 `json:"accounting_period"`
	CashFlowCategory string                 `json:"cash_flow_category,omitempty"`
	Metadata         accounting.Metadata    `json:"metadata,omitempty"`
	CreatedAt        time.Time              `json:"created_at"`
}

// NewTransactionEntryResponse maps a domain entry to its API shape
func NewTransactionEntryResponse(e *accounting.TransactionEntry) TransactionEntryResponse {
	return TransactionEntryResponse{
		ID:               e.ID,
		TransactionID:    e.TransactionID,
		Date:             e.Date,
		Description:      e.Description,
		Reference:        e.Reference,
		ResidenceID:      e.ResidenceID,
		Entries:          e.Lines,
		TotalDebit:       e.TotalDebit,
		TotalCredit:      e.TotalCredit,
		Source:           string(e.Source),
		SourceID:         e.SourceID,
		SourceModel:      e.SourceModel,
		CreatedBy:        e.CreatedBy,
		Status:           string(e.Status),
		AccountingPeriod: e.AccountingPeriod,
		CashFlowCategory: string(e.CashFlowCategory),
		Metadata:         e.Metadata,
		CreatedAt:        e.CreatedAt,
	}
}

// LedgerService posts and reverses transaction entries. It is the only write
// path into the ledger; every entry passes the balance invariant before it
// reaches persistence.
type LedgerService struct {
	entryRepo   accounting.TransactionEntryRepository
	accountRepo accounting.AccountRepository
	txManager   TransactionManager
	cache       ReportCache
	listeners   []PostingListener
	logger      *zap.Logger
}

// NewLedgerService creates a new LedgerService
func NewLedgerService(
	entryRepo accounting.TransactionEntryRepository,
	accountRepo accounting.AccountRepository,
	txManager TransactionManager,
	cache ReportCache,
	logger *zap.Logger,
) *LedgerService {
	return &LedgerService{
		entryRepo:   entryRepo,
		accountRepo: accountRepo,
		txManager:   txManager,
		cache:       cache,
		logger:      logger.Named("ledger"),
	}
}

// AddListener registers a posting listener
func (s *LedgerService) AddListener(listener PostingListener) {
	s.listeners = append(s.listeners, listener)
}

// resolveLines enriches request lines with the registered account's name and
// type, rejecting lines against unknown accounts before construction.
func (s *LedgerService) resolveLines(ctx context.Context, lines []EntryLineRequest) ([]accounting.EntryLine, error) {
	resolved := make([]accounting.EntryLine, 0, len(lines))
	for _, line := range lines {
		account, err := s.accountRepo.FindByCode(ctx, line.AccountCode)
		if err != nil {
			return nil, shared.NewDomainError("INVALID_INPUT", "Unknown account code "+line.AccountCode)
		}
		resolved = append(resolved, accounting.EntryLine{
			AccountCode: account.Code,
			AccountName: account.Name,
			AccountType: account.Type,
			Debit:       line.Debit,
			Credit:      line.Credit,
			Description: line.Description,
		})
	}
	return resolved, nil
}

// Post validates, constructs and persists a balanced entry, then invalidates
// report caches and notifies listeners.
func (s *LedgerService) Post(ctx context.Context, req PostTransactionRequest) (*TransactionEntryResponse, error) {
	source := req.Source
	if source == "" {
		source = accounting.SourceManual
	}

	lines, err := s.resolveLines(ctx, req.Lines)
	if err != nil {
		return nil, err
	}

	entry, err := accounting.NewTransactionEntry(req.Date, req.Description, lines, source, req.SourceID, req.SourceModel, req.CreatedBy)
	if err != nil {
		return nil, err
	}
	entry.Reference = req.Reference
	entry.ResidenceID = req.ResidenceID
	entry.CashFlowCategory = req.CashFlowCategory
	if len(req.Metadata) > 0 {
		entry.Metadata = req.Metadata
	}

	if err := s.persist(ctx, entry); err != nil {
		return nil, err
	}

	resp := NewTransactionEntryResponse(entry)
	return &resp, nil
}

// PostEntry persists an already-constructed domain entry on behalf of other
// services (accrual, payments, installments) inside the ambient transaction.
func (s *LedgerService) PostEntry(ctx context.Context, entry *accounting.TransactionEntry) error {
	return s.persist(ctx, entry)
}

func (s *LedgerService) persist(ctx context.Context, entry *accounting.TransactionEntry) error {
	err := s.txManager.WithinTransaction(ctx, func(ctx context.Context) error {
		return s.entryRepo.Save(ctx, entry)
	})
	if err != nil {
		return err
	}

	s.logger.Info("transaction entry posted",
		zap.String("transaction_id", entry.TransactionID),
		zap.String("source", string(entry.Source)),
		zap.String("total", entry.TotalDebit.StringFixed(2)))

	s.afterCommit(ctx, entry)
	return nil
}

// afterCommit runs the non-critical side effects. Failures are logged and
// never abort the posting that already committed.
func (s *LedgerService) afterCommit(ctx context.Context, entry *accounting.TransactionEntry) {
	if s.cache != nil {
		if err := s.cache.InvalidateReports(ctx); err != nil {
			s.logger.Warn("report cache invalidation failed", zap.Error(err))
		}
	}
	for _, listener := range s.listeners {
		listener.EntryPosted(ctx, entry)
	}
}

// Reverse posts the mirror image of an existing entry. The original entry is
// never mutated or deleted.
func (s *LedgerService) Reverse(ctx context.Context, transactionID, reversedBy string) (*TransactionEntryResponse, error) {
	entry, err := s.entryRepo.FindByTransactionID(ctx, transactionID)
	if err != nil {
		return nil, err
	}

	reversal, err := entry.Reverse(reversedBy, time.Now())
	if err != nil {
		return nil, err
	}

	if err := s.persist(ctx, reversal); err != nil {
		return nil, err
	}

	resp := NewTransactionEntryResponse(reversal)
	return &resp, nil
}

// GetByTransactionID returns one entry by its business identifier
func (s *LedgerService) GetByTransactionID(ctx context.Context, transactionID string) (*TransactionEntryResponse, error) {
	entry, err := s.entryRepo.FindByTransactionID(ctx, transactionID)
	if err != nil {
		return nil, err
	}
	resp := NewTransactionEntryResponse(entry)
	return &resp, nil
}

// EntryListFilter defines the query surface for listing ledger entries
type EntryListFilter struct {
	AccountCode string     `form:"account_code"`
	Source      string     `form:"source"`
	ResidenceID *uuid.UUID `form:"residence_id"`
	FromDate    *time.Time `form:"from_date" time_format:"2006-01-02"`
	ToDate      *time.Time `form:"to_date" time_format:"2006-01-02"`
	Page        int        `form:"page"`
	PageSize    int        `form:"page_size"`
}

// List returns entries matching the filter with a total count
func (s *LedgerService) List(ctx context.Context, filter EntryListFilter) ([]TransactionEntryResponse, int64, error) {
	domainFilter := accounting.EntryFilter{
		Filter:      shared.DefaultFilter(),
		AccountCode: filter.AccountCode,
		ResidenceID: filter.ResidenceID,
		FromDate:    filter.FromDate,
		ToDate:      filter.ToDate,
	}
	if filter.Page > 0 {
		domainFilter.Page = filter.Page
	}
	if filter.PageSize > 0 {
		domainFilter.PageSize = filter.PageSize
	}
	if filter.Source != "" {
		source := accounting.EntrySource(filter.Source)
		domainFilter.Source = &source
	}

	entries, err := s.entryRepo.FindAll(ctx, domainFilter)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.entryRepo.Count(ctx, domainFilter)
	if err != nil {
		return nil, 0, err
	}

	responses := make([]TransactionEntryResponse, len(entries))
	for i := range entries {
		responses[i] = NewTransactionEntryResponse(&entries[i])
	}
	return responses, total, nil
}
