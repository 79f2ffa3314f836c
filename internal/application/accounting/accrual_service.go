package accounting

import (
	"context"
	"fmt"
	"time"

	"github.com/alamait/backend/internal/domain/accounting"
	"github.com/alamait/backend/internal/domain/residence"
	"github.com/alamait/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// AccrualService recognises rental income from lease terms, independent of
// cash receipt. Per lease it moves through not-accrued -> accrued -> reversed.
type AccrualService struct {
	leaseRepo   residence.LeaseRepository
	entryRepo   accounting.TransactionEntryRepository
	accountRepo accounting.AccountRepository
	ledger      *LedgerService
	txManager   TransactionManager
	chart       accounting.ChartMap
	logger      *zap.Logger
}

// NewAccrualService creates a new AccrualService
func NewAccrualService(
	leaseRepo residence.LeaseRepository,
	entryRepo accounting.TransactionEntryRepository,
	accountRepo accounting.AccountRepository,
	ledger *LedgerService,
	txManager TransactionManager,
	chart accounting.ChartMap,
	logger *zap.Logger,
) *AccrualService {
	return &AccrualService{
		leaseRepo:   leaseRepo,
		entryRepo:   entryRepo,
		accountRepo: accountRepo,
		ledger:      ledger,
		txManager:   txManager,
		chart:       chart,
		logger:      logger.Named("accrual"),
	}
}

// EnsureStudentReceivableAccount returns the student's A/R sub-account,
// creating it under the receivable control account on first use. Payment
// recording shares it because a payment can arrive before any accrual ran.
func (s *AccrualService) EnsureStudentReceivableAccount(ctx context.Context, studentID uuid.UUID, studentName string) (*accounting.Account, error) {
	code := s.chart.StudentReceivableCode(studentID)
	account, err := s.accountRepo.FindByCode(ctx, code)
	if err == nil {
		return account, nil
	}

	control, err := s.accountRepo.FindByCode(ctx, s.chart.ReceivableControl)
	if err != nil {
		return nil, shared.ErrChartNotConfigured
	}
	account, err = accounting.NewSubAccount(control, accounting.SubAccountSuffix(studentID), "Accounts Receivable - "+studentName)
	if err != nil {
		return nil, err
	}
	if err := s.accountRepo.Save(ctx, account); err != nil {
		return nil, err
	}
	return account, nil
}

// AccrueRentalIncome posts one balanced entry per month of the lease term:
// debit the student's receivable sub-account, credit rental income, dated the
// first of the month. The lease must be signed or active and not previously
// accrued; postings and any on-demand account creation commit atomically.
func (s *AccrualService) AccrueRentalIncome(ctx context.Context, leaseID uuid.UUID) ([]TransactionEntryResponse, error) {
	lease, err := s.leaseRepo.FindByID(ctx, leaseID)
	if err != nil {
		return nil, err
	}
	if !lease.Status.IsAccruable() {
		return nil, shared.NewDomainError("INVALID_STATE",
			fmt.Sprintf("Lease %s is %s; only signed or active leases can be accrued", leaseID, lease.Status))
	}

	existing, err := s.entryRepo.FindBySource(ctx, accounting.SourceRentalAccrual, leaseID)
	if err != nil {
		return nil, err
	}
	if len(existing) > 0 {
		return nil, shared.ErrAlreadyAccrued
	}

	income, err := s.accountRepo.FindByCode(ctx, s.chart.RentalIncome)
	if err != nil {
		return nil, shared.ErrChartNotConfigured
	}

	var postedEntries []*accounting.TransactionEntry
	err = s.txManager.WithinTransaction(ctx, func(ctx context.Context) error {
		arAccount, err := s.EnsureStudentReceivableAccount(ctx, lease.StudentID, lease.StudentName)
		if err != nil {
			return err
		}

		for _, period := range lease.AccrualPeriods() {
			entry, err := s.buildAccrualEntry(lease, arAccount, income, period)
			if err != nil {
				return err
			}
			if err := s.entryRepo.Save(ctx, entry); err != nil {
				return err
			}
			postedEntries = append(postedEntries, entry)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	posted := make([]TransactionEntryResponse, 0, len(postedEntries))
	for _, entry := range postedEntries {
		s.ledger.afterCommit(ctx, entry)
		posted = append(posted, NewTransactionEntryResponse(entry))
	}

	s.logger.Info("rental income accrued",
		zap.String("lease_id", leaseID.String()),
		zap.Int("periods", len(posted)),
		zap.String("monthly_rent", lease.MonthlyRent.StringFixed(2)))
	return posted, nil
}

func (s *AccrualService) buildAccrualEntry(lease *residence.Lease, arAccount, income *accounting.Account, period time.Time) (*accounting.TransactionEntry, error) {
	leaseID := lease.ID
	description := fmt.Sprintf("Rental income accrual for %d-%d - %s", period.Year(), int(period.Month()), lease.StudentName)

	entry, err := accounting.NewTransactionEntry(
		period,
		description,
		[]accounting.EntryLine{
			{
				AccountCode: arAccount.Code,
				AccountName: arAccount.Name,
				AccountType: arAccount.Type,
				Debit:       lease.MonthlyRent,
				Credit:      decimal.Zero,
			},
			{
				AccountCode: income.Code,
				AccountName: income.Name,
				AccountType: income.Type,
				Debit:       decimal.Zero,
				Credit:      lease.MonthlyRent,
			},
		},
		accounting.SourceRentalAccrual,
		&leaseID,
		"Lease",
		"system",
	)
	if err != nil {
		return nil, err
	}
	entry.ResidenceID = &lease.ResidenceID
	entry.Metadata = accounting.Metadata{
		accounting.MetaStudentID:    lease.StudentID.String(),
		accounting.MetaStudentName:  lease.StudentName,
		accounting.MetaAccrualMonth: int(period.Month()),
		accounting.MetaAccrualYear:  period.Year(),
	}
	return entry, nil
}

// ReverseAccrual posts the mirror of an accrual entry. Only entries tagged
// rental_accrual qualify.
func (s *AccrualService) ReverseAccrual(ctx context.Context, transactionID string) (*TransactionEntryResponse, error) {
	entry, err := s.entryRepo.FindByTransactionID(ctx, transactionID)
	if err != nil {
		return nil, err
	}
	if entry.Source != accounting.SourceRentalAccrual {
		return nil, shared.NewDomainError("INVALID_STATE", "Only rental accrual entries can be reversed through this operation")
	}
	return s.ledger.Reverse(ctx, transactionID, "system")
}

// AccrualSummaryResponse aggregates a year's accrual activity net of reversals
type AccrualSummaryResponse struct {
	Year          int                        `json:"year"`
	TotalAccrued  decimal.Decimal            `json:"total_accrued"`
	TotalReversed decimal.Decimal            `json:"total_reversed"`
	NetAccrued    decimal.Decimal            `json:"net_accrued"`
	LeaseCount    int                        `json:"lease_count"`
	ByMonth       map[string]decimal.Decimal `json:"by_month"`
}

// GetAccrualSummary aggregates rental accruals and their reversals within a
// calendar year, optionally scoped to one residence.
func (s *AccrualService) GetAccrualSummary(ctx context.Context, year int, residenceID *uuid.UUID) (*AccrualSummaryResponse, error) {
	status := accounting.EntryStatusPosted
	entries, err := s.entryRepo.FindAll(ctx, accounting.EntryFilter{
		Filter:      shared.Filter{Page: 1, PageSize: 0},
		Sources:     []accounting.EntrySource{accounting.SourceRentalAccrual, accounting.SourceRentalAccrualReversal},
		Status:      &status,
		ResidenceID: residenceID,
		Year:        year,
	})
	if err != nil {
		return nil, err
	}

	summary := &AccrualSummaryResponse{
		Year:          year,
		TotalAccrued:  decimal.Zero,
		TotalReversed: decimal.Zero,
		ByMonth:       make(map[string]decimal.Decimal),
	}
	leases := make(map[uuid.UUID]bool)

	for i := range entries {
		entry := &entries[i]
		month, _ := accounting.ResolveMonth(entry)
		key := fmt.Sprintf("%d-%02d", year, month)
		if _, ok := summary.ByMonth[key]; !ok {
			summary.ByMonth[key] = decimal.Zero
		}

		if entry.Source == accounting.SourceRentalAccrual {
			summary.TotalAccrued = summary.TotalAccrued.Add(entry.TotalDebit)
			summary.ByMonth[key] = summary.ByMonth[key].Add(entry.TotalDebit)
			if entry.SourceID != nil {
				leases[*entry.SourceID] = true
			}
		} else {
			summary.TotalReversed = summary.TotalReversed.Add(entry.TotalDebit)
			summary.ByMonth[key] = summary.ByMonth[key].Sub(entry.TotalDebit)
		}
	}

	summary.NetAccrued = summary.TotalAccrued.Sub(summary.TotalReversed)
	summary.LeaseCount = len(leases)
	return summary, nil
}

// BulkAccrueRequest selects leases either explicitly or by residence and range
type BulkAccrueRequest struct {
	LeaseIDs    []uuid.UUID `json:"lease_ids"`
	ResidenceID *uuid.UUID  `json:"residence_id"`
	StartDate   *time.Time  `json:"start_date"`
	EndDate     *time.Time  `json:"end_date"`
}

// BulkAccrueError describes one failed lease within a batch
type BulkAccrueError struct {
	LeaseID uuid.UUID `json:"lease_id"`
	Error   string    `json:"error"`
}

// BulkAccrueResponse reports per-lease outcomes of a batch accrual
type BulkAccrueResponse struct {
	TotalProcessed int               `json:"total_processed"`
	Successful     int               `json:"successful"`
	Errors         int               `json:"errors"`
	ErrorDetails   []BulkAccrueError `json:"error_details"`
}

// BulkAccrue applies AccrueRentalIncome to each selected lease. Failures are
// collected per lease; one bad lease never aborts the batch.
func (s *AccrualService) BulkAccrue(ctx context.Context, req BulkAccrueRequest) (*BulkAccrueResponse, error) {
	leaseIDs := req.LeaseIDs
	if len(leaseIDs) == 0 {
		if req.ResidenceID == nil || req.StartDate == nil || req.EndDate == nil {
			return nil, shared.NewDomainError("INVALID_INPUT", "Provide lease_ids or residence_id with start_date and end_date")
		}
		leases, err := s.leaseRepo.FindAccruable(ctx, *req.ResidenceID, *req.StartDate, *req.EndDate)
		if err != nil {
			return nil, err
		}
		for _, lease := range leases {
			leaseIDs = append(leaseIDs, lease.ID)
		}
	}

	resp := &BulkAccrueResponse{TotalProcessed: len(leaseIDs)}
	for _, leaseID := range leaseIDs {
		if _, err := s.AccrueRentalIncome(ctx, leaseID); err != nil {
			resp.Errors++
			resp.ErrorDetails = append(resp.ErrorDetails, BulkAccrueError{LeaseID: leaseID, Error: err.Error()})
			continue
		}
		resp.Successful++
	}

	s.logger.Info("bulk accrual completed",
		zap.Int("total", resp.TotalProcessed),
		zap.Int("successful", resp.Successful),
		zap.Int("errors", resp.Errors))
	return resp, nil
}
