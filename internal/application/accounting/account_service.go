package accounting

import (
	"context"
	"time"

	"github.com/alamait/backend/internal/domain/accounting"
	"github.com/alamait/backend/internal/domain/shared"
	"github.com/alamait/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// AccountResponse represents a chart-of-accounts entry in API responses
type AccountResponse struct {
	ID                 uuid.UUID       `json:"id"`
	Code               string          `json:"code"`
	Name               string          `json:"name"`
	Type               string          `json:"type"`
	Category           string          `json:"category"`
	Subcategory        string          `json:"subcategory,omitempty"`
	ParentCode         string          `json:"parent_code,omitempty"`
	Level              int             `json:"level"`
	IsActive           bool            `json:"is_active"`
	OpeningBalance     decimal.Decimal `json:"opening_balance"`
	OpeningBalanceDate *time.Time      `json:"opening_balance_date,omitempty"`
	Currency           string          `json:"currency"`
	CreatedAt          time.Time       `json:"created_at"`
	UpdatedAt          time.Time       `json:"updated_at"`
}

// NewAccountResponse maps a domain account to its API shape
func NewAccountResponse(a *accounting.Account) AccountResponse {
	return AccountResponse{
		ID:                 a.ID,
		Code:               a.Code,
		Name:               a.Name,
		Type:               string(a.Type),
		Category:           a.Category,
		Subcategory:        a.Subcategory,
		ParentCode:         a.ParentCode,
		Level:              a.Level,
		IsActive:           a.IsActive,
		OpeningBalance:     a.OpeningBalance.Amount(),
		OpeningBalanceDate: a.OpeningBalanceDate,
		Currency:           string(a.Currency()),
		CreatedAt:          a.CreatedAt,
		UpdatedAt:          a.UpdatedAt,
	}
}

// CreateAccountRequest represents a request to create an account.
// When Code is empty the next free code in the type/category band is generated.
type CreateAccountRequest struct {
	Code               string          `json:"code"`
	Name               string          `json:"name" binding:"required"`
	Type               string          `json:"type" binding:"required"`
	Category           string          `json:"category"`
	Subcategory        string          `json:"subcategory"`
	OpeningBalance     decimal.Decimal `json:"opening_balance"`
	OpeningBalanceDate *time.Time      `json:"opening_balance_date"`
	Currency           string          `json:"currency"`
}

// UpdateAccountRequest represents a request to update an account
type UpdateAccountRequest struct {
	Code        string `json:"code"`
	Name        string `json:"name" binding:"required"`
	Category    string `json:"category"`
	Subcategory string `json:"subcategory"`
}

// AccountService manages the chart of accounts
type AccountService struct {
	accountRepo accounting.AccountRepository
	entryRepo   accounting.TransactionEntryRepository
	codeGen     *accounting.CodeGenerator
	txManager   TransactionManager
	chart       accounting.ChartMap
	logger      *zap.Logger
}

// NewAccountService creates a new AccountService
func NewAccountService(
	accountRepo accounting.AccountRepository,
	entryRepo accounting.TransactionEntryRepository,
	txManager TransactionManager,
	chart accounting.ChartMap,
	logger *zap.Logger,
) *AccountService {
	return &AccountService{
		accountRepo: accountRepo,
		entryRepo:   entryRepo,
		codeGen:     accounting.NewCodeGenerator(),
		txManager:   txManager,
		chart:       chart,
		logger:      logger.Named("accounts"),
	}
}

// NextCode returns the next free code for a type/category without reserving it
func (s *AccountService) NextCode(ctx context.Context, accountType, category, nameHint string) (string, error) {
	at := accounting.AccountType(accountType)
	if !at.IsValid() {
		return "", shared.NewDomainError("INVALID_INPUT", "Invalid account type")
	}
	taken, err := s.accountRepo.ListCodes(ctx)
	if err != nil {
		return "", err
	}
	return s.codeGen.NextCode(at, category, nameHint, taken)
}

// Create creates an account, generating a code when none is supplied. An
// opening balance posts an offsetting entry against owner capital in the same
// transaction, so a failed posting never leaves a half-created account.
// Generated codes race under concurrent creation; the unique index rejects
// the loser, which retries with a fresh code.
func (s *AccountService) Create(ctx context.Context, req CreateAccountRequest) (*AccountResponse, error) {
	at := accounting.AccountType(req.Type)
	if !at.IsValid() {
		return nil, shared.NewDomainError("INVALID_INPUT", "Invalid account type")
	}

	code := req.Code
	if code == "" {
		generated, err := s.NextCode(ctx, req.Type, req.Category, req.Name)
		if err != nil {
			return nil, err
		}
		code = generated
	}

	account, err := accounting.NewAccount(code, req.Name, at, req.Category)
	if err != nil {
		return nil, err
	}
	account.Subcategory = req.Subcategory

	currency := valueobject.Currency(req.Currency)
	if currency == "" {
		currency = valueobject.DefaultCurrency
	}
	opening, err := valueobject.NewMoney(req.OpeningBalance, currency)
	if err != nil {
		return nil, shared.NewDomainError("INVALID_INPUT", "Invalid opening balance")
	}

	err = s.txManager.WithinTransaction(ctx, func(ctx context.Context) error {
		if !opening.IsZero() {
			asOf := time.Now()
			if req.OpeningBalanceDate != nil {
				asOf = *req.OpeningBalanceDate
			}
			account.SetOpeningBalance(opening, asOf)
		}
		if err := s.accountRepo.Save(ctx, account); err != nil {
			return err
		}
		if !opening.IsZero() {
			entry, err := s.buildOpeningBalanceEntry(ctx, account)
			if err != nil {
				return err
			}
			return s.entryRepo.Save(ctx, entry)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("account created", zap.String("code", account.Code), zap.String("type", string(account.Type)))
	resp := NewAccountResponse(account)
	return &resp, nil
}

// buildOpeningBalanceEntry offsets the opening balance against owner capital
func (s *AccountService) buildOpeningBalanceEntry(ctx context.Context, account *accounting.Account) (*accounting.TransactionEntry, error) {
	capital, err := s.accountRepo.FindByCode(ctx, s.chart.OwnerCapital)
	if err != nil {
		return nil, shared.ErrChartNotConfigured
	}

	amount := account.OpeningBalance.Abs().Amount()
	accountLine := accounting.EntryLine{
		AccountCode: account.Code,
		AccountName: account.Name,
		AccountType: account.Type,
	}
	capitalLine := accounting.EntryLine{
		AccountCode: capital.Code,
		AccountName: capital.Name,
		AccountType: capital.Type,
	}

	// Debit-normal accounts open on the debit side, credit-normal on the credit side.
	if account.Type.NormalBalance() == "debit" {
		accountLine.Debit = amount
		capitalLine.Credit = amount
	} else {
		accountLine.Credit = amount
		capitalLine.Debit = amount
	}

	asOf := time.Now()
	if account.OpeningBalanceDate != nil {
		asOf = *account.OpeningBalanceDate
	}
	accountID := account.ID
	return accounting.NewTransactionEntry(
		asOf,
		"Opening balance - "+account.Name,
		[]accounting.EntryLine{accountLine, capitalLine},
		accounting.SourceOpeningBalance,
		&accountID,
		"Account",
		"system",
	)
}

// Get returns one account by ID
func (s *AccountService) Get(ctx context.Context, id uuid.UUID) (*AccountResponse, error) {
	account, err := s.accountRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := NewAccountResponse(account)
	return &resp, nil
}

// GetByCode returns one account by code
func (s *AccountService) GetByCode(ctx context.Context, code string) (*AccountResponse, error) {
	account, err := s.accountRepo.FindByCode(ctx, code)
	if err != nil {
		return nil, err
	}
	resp := NewAccountResponse(account)
	return &resp, nil
}

// AccountListFilter defines the query surface for listing accounts
type AccountListFilter struct {
	Type            string `form:"type"`
	Category        string `form:"category"`
	IncludeInactive bool   `form:"include_inactive"`
	Page            int    `form:"page"`
	PageSize        int    `form:"page_size"`
}

// List returns accounts matching the filter with a total count
func (s *AccountService) List(ctx context.Context, filter AccountListFilter) ([]AccountResponse, int64, error) {
	domainFilter := accounting.AccountFilter{
		Filter:          shared.DefaultFilter(),
		Category:        filter.Category,
		IncludeInactive: filter.IncludeInactive,
	}
	if filter.Page > 0 {
		domainFilter.Page = filter.Page
	}
	if filter.PageSize > 0 {
		domainFilter.PageSize = filter.PageSize
	}
	if filter.Type != "" {
		at := accounting.AccountType(filter.Type)
		if !at.IsValid() {
			return nil, 0, shared.NewDomainError("INVALID_INPUT", "Invalid account type")
		}
		domainFilter.Type = &at
	}

	accounts, err := s.accountRepo.FindAll(ctx, domainFilter)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.accountRepo.Count(ctx, domainFilter)
	if err != nil {
		return nil, 0, err
	}

	responses := make([]AccountResponse, len(accounts))
	for i := range accounts {
		responses[i] = NewAccountResponse(&accounts[i])
	}
	return responses, total, nil
}

// Update changes an account's mutable attributes; the code stays immutable
func (s *AccountService) Update(ctx context.Context, id uuid.UUID, req UpdateAccountRequest) (*AccountResponse, error) {
	account, err := s.accountRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := account.Update(req.Code, req.Name, req.Category, req.Subcategory); err != nil {
		return nil, err
	}
	if err := s.accountRepo.Save(ctx, account); err != nil {
		return nil, err
	}
	resp := NewAccountResponse(account)
	return &resp, nil
}

// Deactivate soft-deletes an account. Historical ledger entries keep
// referencing it, so accounts are never hard-deleted.
func (s *AccountService) Deactivate(ctx context.Context, id uuid.UUID) error {
	account, err := s.accountRepo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if err := account.Deactivate(); err != nil {
		return err
	}
	return s.accountRepo.Save(ctx, account)
}
