package residence

import (
	"context"
	"fmt"
	"time"

	appaccounting "github.com/alamait/backend/internal/application/accounting"
	"github.com/alamait/backend/internal/domain/accounting"
	"github.com/alamait/backend/internal/domain/residence"
	"github.com/alamait/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// VendorResponse represents a vendor in API responses
type VendorResponse struct {
	ID                  uuid.UUID       `json:"id"`
	VendorCode          string          `json:"vendor_code"`
	Name                string          `json:"name"`
	ContactEmail        string          `json:"contact_email,omitempty"`
	ChartOfAccountsCode string          `json:"chart_of_accounts_code"`
	CurrentBalance      decimal.Decimal `json:"current_balance"`
	BalanceSyncedAt     *time.Time      `json:"balance_synced_at,omitempty"`
	IsActive            bool            `json:"is_active"`
}

// NewVendorResponse maps a domain vendor to its API shape
func NewVendorResponse(v *residence.Vendor) VendorResponse {
	return VendorResponse{
		ID:                  v.ID,
		VendorCode:          v.VendorCode,
		Name:                v.Name,
		ContactEmail:        v.ContactEmail,
		ChartOfAccountsCode: v.ChartOfAccountsCode,
		CurrentBalance:      v.CurrentBalance,
		BalanceSyncedAt:     v.BalanceSyncedAt,
		IsActive:            v.IsActive,
	}
}

// CreateVendorRequest represents a request to register a vendor
type CreateVendorRequest struct {
	VendorCode   string `json:"vendor_code" binding:"required"`
	Name         string `json:"name" binding:"required"`
	ContactEmail string `json:"contact_email"`
}

// RecordVendorExpenseRequest books work done by a vendor on credit
type RecordVendorExpenseRequest struct {
	VendorID    uuid.UUID       `json:"vendor_id" binding:"required"`
	Amount      decimal.Decimal `json:"amount" binding:"required"`
	Date        time.Time       `json:"date" binding:"required" time_format:"2006-01-02"`
	Description string          `json:"description" binding:"required"`
	ExpenseCode string          `json:"expense_code"`
	ResidenceID *uuid.UUID      `json:"residence_id"`
	CreatedBy   string          `json:"-"`
}

// SettleVendorRequest pays down a vendor's outstanding balance
type SettleVendorRequest struct {
	VendorID    uuid.UUID       `json:"vendor_id" binding:"required"`
	Amount      decimal.Decimal `json:"amount" binding:"required"`
	Date        time.Time       `json:"date" binding:"required" time_format:"2006-01-02"`
	Reference   string          `json:"reference"`
	ResidenceID *uuid.UUID      `json:"residence_id"`
	CreatedBy   string          `json:"-"`
}

// VendorService registers vendors and books their expenses and settlements.
// Registration creates the vendor and its payable sub-account atomically;
// a vendor without a ledger account cannot exist.
type VendorService struct {
	vendorRepo  residence.VendorRepository
	accountRepo accounting.AccountRepository
	ledger      *appaccounting.LedgerService
	txManager   appaccounting.TransactionManager
	chart       accounting.ChartMap
	logger      *zap.Logger
}

// NewVendorService creates a new VendorService
func NewVendorService(
	vendorRepo residence.VendorRepository,
	accountRepo accounting.AccountRepository,
	ledger *appaccounting.LedgerService,
	txManager appaccounting.TransactionManager,
	chart accounting.ChartMap,
	logger *zap.Logger,
) *VendorService {
	return &VendorService{
		vendorRepo:  vendorRepo,
		accountRepo: accountRepo,
		ledger:      ledger,
		txManager:   txManager,
		chart:       chart,
		logger:      logger.Named("vendors"),
	}
}

// Create registers a vendor together with its payable sub-account under the
// payable control account, in one transaction.
func (s *VendorService) Create(ctx context.Context, req CreateVendorRequest) (*VendorResponse, error) {
	if _, err := s.vendorRepo.FindByVendorCode(ctx, req.VendorCode); err == nil {
		return nil, shared.NewDomainError("ALREADY_EXISTS", "Vendor code is already in use")
	}

	control, err := s.accountRepo.FindByCode(ctx, s.chart.PayableControl)
	if err != nil {
		return nil, shared.ErrChartNotConfigured
	}

	vendor, err := residence.NewVendor(req.VendorCode, req.Name, s.chart.VendorPayableCode(req.VendorCode))
	if err != nil {
		return nil, err
	}
	vendor.ContactEmail = req.ContactEmail

	// The sub-account code is validated here; a vendor code with characters
	// outside the account-code pattern is rejected before anything persists.
	account, err := accounting.NewSubAccount(control, vendor.VendorCode, "Accounts Payable - "+vendor.Name)
	if err != nil {
		return nil, err
	}

	err = s.txManager.WithinTransaction(ctx, func(ctx context.Context) error {
		if err := s.accountRepo.Save(ctx, account); err != nil {
			return err
		}
		return s.vendorRepo.Save(ctx, vendor)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("vendor registered",
		zap.String("vendor_code", vendor.VendorCode),
		zap.String("account_code", vendor.ChartOfAccountsCode))
	resp := NewVendorResponse(vendor)
	return &resp, nil
}

// RecordExpense books vendor work on credit: debit the expense account,
// credit the vendor's payable. The posting listener refreshes the vendor's
// balance projection after commit.
func (s *VendorService) RecordExpense(ctx context.Context, req RecordVendorExpenseRequest) (*appaccounting.TransactionEntryResponse, error) {
	vendor, err := s.vendorRepo.FindByID(ctx, req.VendorID)
	if err != nil {
		return nil, err
	}

	expenseCode := req.ExpenseCode
	if expenseCode == "" {
		expenseCode = s.chart.DefaultExpense
	}
	expense, err := s.accountRepo.FindByCode(ctx, expenseCode)
	if err != nil {
		return nil, shared.NewDomainError("INVALID_INPUT", "Unknown expense account "+expenseCode)
	}
	payable, err := s.accountRepo.FindByCode(ctx, vendor.ChartOfAccountsCode)
	if err != nil {
		return nil, shared.NewDomainError("INVALID_STATE", "Vendor payable account is missing")
	}

	vendorID := vendor.ID
	entry, err := accounting.NewTransactionEntry(
		req.Date,
		fmt.Sprintf("%s - %s", req.Description, vendor.Name),
		[]accounting.EntryLine{
			{AccountCode: expense.Code, AccountName: expense.Name, AccountType: expense.Type, Debit: req.Amount, Credit: decimal.Zero},
			{AccountCode: payable.Code, AccountName: payable.Name, AccountType: payable.Type, Debit: decimal.Zero, Credit: req.Amount},
		},
		accounting.SourceMaintenanceExpense,
		&vendorID,
		"Vendor",
		req.CreatedBy,
	)
	if err != nil {
		return nil, err
	}
	entry.ResidenceID = req.ResidenceID

	if err := s.ledger.PostEntry(ctx, entry); err != nil {
		return nil, err
	}
	resp := appaccounting.NewTransactionEntryResponse(entry)
	return &resp, nil
}

// Settle pays down the vendor's balance: debit the payable, credit cash.
// Settling more than is owed is rejected.
func (s *VendorService) Settle(ctx context.Context, req SettleVendorRequest) (*appaccounting.TransactionEntryResponse, error) {
	vendor, err := s.vendorRepo.FindByID(ctx, req.VendorID)
	if err != nil {
		return nil, err
	}
	if req.Amount.GreaterThan(vendor.CurrentBalance) {
		return nil, shared.NewDomainError("INVALID_INPUT",
			fmt.Sprintf("Settlement %s exceeds the vendor balance %s",
				req.Amount.StringFixed(2), vendor.CurrentBalance.StringFixed(2)))
	}

	payable, err := s.accountRepo.FindByCode(ctx, vendor.ChartOfAccountsCode)
	if err != nil {
		return nil, shared.NewDomainError("INVALID_STATE", "Vendor payable account is missing")
	}
	cash, err := s.accountRepo.FindByCode(ctx, s.chart.Cash)
	if err != nil {
		return nil, shared.ErrChartNotConfigured
	}

	vendorID := vendor.ID
	entry, err := accounting.NewTransactionEntry(
		req.Date,
		"Payment to "+vendor.Name,
		[]accounting.EntryLine{
			{AccountCode: payable.Code, AccountName: payable.Name, AccountType: payable.Type, Debit: req.Amount, Credit: decimal.Zero},
			{AccountCode: cash.Code, AccountName: cash.Name, AccountType: cash.Type, Debit: decimal.Zero, Credit: req.Amount},
		},
		accounting.SourceVendorPaymentSettlement,
		&vendorID,
		"Vendor",
		req.CreatedBy,
	)
	if err != nil {
		return nil, err
	}
	entry.Reference = req.Reference
	entry.ResidenceID = req.ResidenceID
	entry.CashFlowCategory = accounting.CashFlowOperating

	if err := s.ledger.PostEntry(ctx, entry); err != nil {
		return nil, err
	}
	resp := appaccounting.NewTransactionEntryResponse(entry)
	return &resp, nil
}

// Get returns one vendor by ID
func (s *VendorService) Get(ctx context.Context, id uuid.UUID) (*VendorResponse, error) {
	vendor, err := s.vendorRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := NewVendorResponse(vendor)
	return &resp, nil
}

// List returns every active vendor
func (s *VendorService) List(ctx context.Context) ([]VendorResponse, error) {
	vendors, err := s.vendorRepo.FindAllActive(ctx)
	if err != nil {
		return nil, err
	}
	responses := make([]VendorResponse, len(vendors))
	for i := range vendors {
		responses[i] = NewVendorResponse(&vendors[i])
	}
	return responses, nil
}

// Deactivate soft-deletes a vendor; its ledger history stays intact
func (s *VendorService) Deactivate(ctx context.Context, id uuid.UUID) error {
	vendor, err := s.vendorRepo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if err := vendor.Deactivate(); err != nil {
		return err
	}
	return s.vendorRepo.Save(ctx, vendor)
}
