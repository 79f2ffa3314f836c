package accounting

import (
	"context"
	"time"

	"github.com/alamait/backend/internal/domain/accounting"
	"github.com/alamait/backend/internal/domain/residence"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// VendorSyncService reconciles vendor balance projections against the ledger.
// The ledger is authoritative; a vendor's CurrentBalance is only ever a cached
// reading of its payable account, refreshed reactively after each posting and
// in bulk through SyncVendorBalances.
type VendorSyncService struct {
	vendorRepo residence.VendorRepository
	entryRepo  accounting.TransactionEntryRepository
	logger     *zap.Logger
}

// NewVendorSyncService creates a new VendorSyncService
func NewVendorSyncService(
	vendorRepo residence.VendorRepository,
	entryRepo accounting.TransactionEntryRepository,
	logger *zap.Logger,
) *VendorSyncService {
	return &VendorSyncService{
		vendorRepo: vendorRepo,
		entryRepo:  entryRepo,
		logger:     logger.Named("vendor_sync"),
	}
}

// payableBalance derives a vendor's outstanding payable from posted entries.
// The payable account is credit-normal: credits raise the debt, debits settle it.
func (s *VendorSyncService) payableBalance(ctx context.Context, accountCode string, asOf time.Time) (decimal.Decimal, error) {
	entries, err := s.entryRepo.FindByAccountAndDateRange(ctx, accountCode, time.Time{}, asOf)
	if err != nil {
		return decimal.Zero, err
	}

	balance := decimal.Zero
	for i := range entries {
		if entries[i].Status != accounting.EntryStatusPosted {
			continue
		}
		balance = balance.Add(entries[i].CreditTotalFor(accountCode))
		balance = balance.Sub(entries[i].DebitTotalFor(accountCode))
	}
	return balance, nil
}

// syncOne recomputes and stores one vendor's balance
func (s *VendorSyncService) syncOne(ctx context.Context, vendor *residence.Vendor, asOf time.Time) error {
	balance, err := s.payableBalance(ctx, vendor.ChartOfAccountsCode, asOf)
	if err != nil {
		return err
	}
	if vendor.CurrentBalance.Equal(balance) && vendor.BalanceSyncedAt != nil {
		return nil
	}
	vendor.ApplySyncedBalance(balance, asOf)
	return s.vendorRepo.Save(ctx, vendor)
}

// VendorSyncResult reports one vendor's outcome within a bulk sync
type VendorSyncResult struct {
	VendorCode string          `json:"vendor_code"`
	Name       string          `json:"name"`
	Balance    decimal.Decimal `json:"balance"`
	Error      string          `json:"error,omitempty"`
}

// VendorSyncResponse summarises a bulk balance sync
type VendorSyncResponse struct {
	SyncedAt time.Time          `json:"synced_at"`
	Total    int                `json:"total"`
	Synced   int                `json:"synced"`
	Failed   int                `json:"failed"`
	Results  []VendorSyncResult `json:"results"`
}

// SyncVendorBalances recomputes every active vendor's balance from the ledger.
// One failing vendor never aborts the batch.
func (s *VendorSyncService) SyncVendorBalances(ctx context.Context) (*VendorSyncResponse, error) {
	vendors, err := s.vendorRepo.FindAllActive(ctx)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	resp := &VendorSyncResponse{SyncedAt: now, Total: len(vendors)}
	for i := range vendors {
		vendor := &vendors[i]
		result := VendorSyncResult{VendorCode: vendor.VendorCode, Name: vendor.Name}

		if err := s.syncOne(ctx, vendor, now); err != nil {
			result.Error = err.Error()
			resp.Failed++
			s.logger.Warn("vendor balance sync failed",
				zap.String("vendor_code", vendor.VendorCode), zap.Error(err))
		} else {
			result.Balance = vendor.CurrentBalance
			resp.Synced++
		}
		resp.Results = append(resp.Results, result)
	}

	s.logger.Info("vendor balances synced",
		zap.Int("total", resp.Total), zap.Int("synced", resp.Synced), zap.Int("failed", resp.Failed))
	return resp, nil
}

// SyncVendorBalance recomputes a single vendor's balance from the ledger
func (s *VendorSyncService) SyncVendorBalance(ctx context.Context, vendorID uuid.UUID) (*VendorSyncResult, error) {
	vendor, err := s.vendorRepo.FindByID(ctx, vendorID)
	if err != nil {
		return nil, err
	}
	if err := s.syncOne(ctx, vendor, time.Now()); err != nil {
		return nil, err
	}
	return &VendorSyncResult{
		VendorCode: vendor.VendorCode,
		Name:       vendor.Name,
		Balance:    vendor.CurrentBalance,
	}, nil
}

// EntryPosted implements PostingListener. When a committed entry touches a
// vendor's payable account, that vendor's projection is refreshed immediately.
// Failures are logged only; the posting has already committed.
func (s *VendorSyncService) EntryPosted(ctx context.Context, entry *accounting.TransactionEntry) {
	seen := make(map[string]bool)
	for _, line := range entry.Lines {
		if line.AccountType != accounting.AccountTypeLiability || seen[line.AccountCode] {
			continue
		}
		seen[line.AccountCode] = true

		vendor, err := s.vendorRepo.FindByAccountCode(ctx, line.AccountCode)
		if err != nil {
			// Most liability lines have no vendor behind them.
			continue
		}
		if err := s.syncOne(ctx, vendor, time.Now()); err != nil {
			s.logger.Warn("reactive vendor sync failed",
				zap.String("vendor_code", vendor.VendorCode),
				zap.String("transaction_id", entry.TransactionID),
				zap.Error(err))
			continue
		}
		s.logger.Debug("vendor balance refreshed",
			zap.String("vendor_code", vendor.VendorCode),
			zap.String("balance", vendor.CurrentBalance.StringFixed(2)))
	}
}
