package accounting

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/alamait/backend/internal/domain/accounting"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// AccountBalance is one account's position on the balance sheet
type AccountBalance struct {
	Code    string          `json:"code"`
	Name    string          `json:"name"`
	Balance decimal.Decimal `json:"balance"`
}

// BalanceSheetSection groups accounts of one type with their total
type BalanceSheetSection struct {
	Accounts []AccountBalance `json:"accounts"`
	Total    decimal.Decimal  `json:"total"`
}

// NegotiationSummary aggregates the negotiated payment adjustments (rent
// discounts agreed with students) found among the scanned entries.
type NegotiationSummary struct {
	Count            int              `json:"count"`
	TotalDiscount    decimal.Decimal  `json:"total_discount"`
	StudentsAffected int              `json:"students_affected"`
	AverageDiscount  decimal.Decimal  `json:"average_discount"`
	ByIncomeAccount  []AccountBalance `json:"by_income_account"`
}

// BalanceSheetResponse is the statement of financial position as of a date.
// Current earnings (income minus expenses to date) are folded into equity so
// the accounting equation holds on every response.
type BalanceSheetResponse struct {
	AsOf                      time.Time           `json:"as_of"`
	ResidenceID               *uuid.UUID          `json:"residence_id,omitempty"`
	Assets                    BalanceSheetSection `json:"assets"`
	Liabilities               BalanceSheetSection `json:"liabilities"`
	Equity                    BalanceSheetSection `json:"equity"`
	CurrentEarnings           decimal.Decimal     `json:"current_earnings"`
	TotalAssets               decimal.Decimal     `json:"total_assets"`
	TotalLiabilitiesAndEquity decimal.Decimal     `json:"total_liabilities_and_equity"`
	Balanced                  bool                `json:"balanced"`
	Negotiations              NegotiationSummary  `json:"negotiations"`
}

// StudentReceivable is one student's receivable position. NetOutstanding is
// clamped at zero; advance payments surface in AdvanceBalance instead of a
// negative receivable.
type StudentReceivable struct {
	StudentKey         string          `json:"student_key"`
	StudentName        string          `json:"student_name,omitempty"`
	AccountCode        string          `json:"account_code,omitempty"`
	TotalAccrued       decimal.Decimal `json:"total_accrued"`
	TotalPaid          decimal.Decimal `json:"total_paid"`
	NegotiatedDiscount decimal.Decimal `json:"negotiated_discount"`
	NetOutstanding     decimal.Decimal `json:"net_outstanding"`
	AdvanceBalance     decimal.Decimal `json:"advance_balance"`
}

// StudentReceivablesResponse is the per-student accounts receivable breakdown
type StudentReceivablesResponse struct {
	AsOf             time.Time           `json:"as_of"`
	ResidenceID      *uuid.UUID          `json:"residence_id,omitempty"`
	Students         []StudentReceivable `json:"students"`
	TotalOutstanding decimal.Decimal     `json:"total_outstanding"`
	TotalAdvances    decimal.Decimal     `json:"total_advances"`
	Negotiations     NegotiationSummary  `json:"negotiations"`
}

// BalanceSheetService builds balance sheet and receivable reports by scanning
// posted ledger entries. Balances are always derived from lines, never stored.
type BalanceSheetService struct {
	entryRepo   accounting.TransactionEntryRepository
	accountRepo accounting.AccountRepository
	chart       accounting.ChartMap
	cache       ReportCache
	logger      *zap.Logger
}

// NewBalanceSheetService creates a new BalanceSheetService
func NewBalanceSheetService(
	entryRepo accounting.TransactionEntryRepository,
	accountRepo accounting.AccountRepository,
	chart accounting.ChartMap,
	cache ReportCache,
	logger *zap.Logger,
) *BalanceSheetService {
	return &BalanceSheetService{
		entryRepo:   entryRepo,
		accountRepo: accountRepo,
		chart:       chart,
		cache:       cache,
		logger:      logger.Named("balance_sheet"),
	}
}

// accountPosition accumulates one account's debit and credit totals
type accountPosition struct {
	code    string
	name    string
	atype   accounting.AccountType
	debits  decimal.Decimal
	credits decimal.Decimal
}

// balance returns the position in the account's normal-balance orientation
func (p *accountPosition) balance() decimal.Decimal {
	if p.atype.NormalBalance() == "debit" {
		return p.debits.Sub(p.credits)
	}
	return p.credits.Sub(p.debits)
}

func scanPositions(entries []accounting.TransactionEntry) map[string]*accountPosition {
	positions := make(map[string]*accountPosition)
	for i := range entries {
		for _, line := range entries[i].Lines {
			pos, ok := positions[line.AccountCode]
			if !ok {
				pos = &accountPosition{
					code:    line.AccountCode,
					name:    line.AccountName,
					atype:   line.AccountType,
					debits:  decimal.Zero,
					credits: decimal.Zero,
				}
				positions[line.AccountCode] = pos
			}
			pos.debits = pos.debits.Add(line.Debit)
			pos.credits = pos.credits.Add(line.Credit)
		}
	}
	return positions
}

// negotiationSummary aggregates negotiated adjustments among the entries.
// The discount is the income reversal each adjustment books; the student
// behind it is read off the credited receivable line.
func negotiationSummary(entries []accounting.TransactionEntry) NegotiationSummary {
	summary := NegotiationSummary{
		TotalDiscount:   decimal.Zero,
		AverageDiscount: decimal.Zero,
		ByIncomeAccount: []AccountBalance{},
	}
	students := make(map[string]struct{})
	byAccount := make(map[string]*AccountBalance)

	for i := range entries {
		entry := &entries[i]
		if !accounting.IsNegotiatedAdjustment(entry) {
			continue
		}
		summary.Count++

		for _, line := range entry.Lines {
			switch {
			case line.AccountType == accounting.AccountTypeIncome && line.Debit.IsPositive():
				summary.TotalDiscount = summary.TotalDiscount.Add(line.Debit)
				reduction, ok := byAccount[line.AccountCode]
				if !ok {
					reduction = &AccountBalance{Code: line.AccountCode, Name: line.AccountName, Balance: decimal.Zero}
					byAccount[line.AccountCode] = reduction
				}
				reduction.Balance = reduction.Balance.Add(line.Debit)
			case line.AccountType == accounting.AccountTypeAsset && line.Credit.IsPositive():
				if key, _, ok := accounting.ResolveStudent(line, entry.Description); ok {
					students[key] = struct{}{}
				}
			}
		}
	}

	summary.StudentsAffected = len(students)
	if summary.Count > 0 {
		summary.AverageDiscount = summary.TotalDiscount.Div(decimal.NewFromInt(int64(summary.Count)))
	}
	for _, reduction := range byAccount {
		summary.ByIncomeAccount = append(summary.ByIncomeAccount, *reduction)
	}
	sort.Slice(summary.ByIncomeAccount, func(i, j int) bool {
		return summary.ByIncomeAccount[i].Code < summary.ByIncomeAccount[j].Code
	})
	return summary
}

// GetBalanceSheet builds the statement of financial position as of a date,
// optionally scoped to one residence. Results are cached until the next posting.
func (s *BalanceSheetService) GetBalanceSheet(ctx context.Context, asOf time.Time, residenceID *uuid.UUID) (*BalanceSheetResponse, error) {
	cacheKey := reportCacheKey("balance_sheet", asOf, residenceID)
	if s.cache != nil {
		var cached BalanceSheetResponse
		if hit, err := s.cache.GetReport(ctx, cacheKey, &cached); err == nil && hit {
			return &cached, nil
		}
	}

	entries, err := s.entryRepo.FindPostedBefore(ctx, asOf, residenceID)
	if err != nil {
		return nil, err
	}
	positions := scanPositions(entries)

	resp := &BalanceSheetResponse{
		AsOf:         asOf,
		ResidenceID:  residenceID,
		Assets:       BalanceSheetSection{Accounts: []AccountBalance{}, Total: decimal.Zero},
		Liabilities:  BalanceSheetSection{Accounts: []AccountBalance{}, Total: decimal.Zero},
		Equity:       BalanceSheetSection{Accounts: []AccountBalance{}, Total: decimal.Zero},
		Negotiations: negotiationSummary(entries),
	}

	income := decimal.Zero
	expenses := decimal.Zero
	for _, pos := range positions {
		balance := pos.balance()
		switch pos.atype {
		case accounting.AccountTypeAsset:
			appendBalance(&resp.Assets, pos, balance)
		case accounting.AccountTypeLiability:
			appendBalance(&resp.Liabilities, pos, balance)
		case accounting.AccountTypeEquity:
			appendBalance(&resp.Equity, pos, balance)
		case accounting.AccountTypeIncome:
			income = income.Add(balance)
		case accounting.AccountTypeExpense:
			expenses = expenses.Add(balance)
		}
	}

	sortSection(&resp.Assets)
	sortSection(&resp.Liabilities)
	sortSection(&resp.Equity)

	// Income and expense accounts close into equity as current earnings.
	resp.CurrentEarnings = income.Sub(expenses)
	if !resp.CurrentEarnings.IsZero() {
		resp.Equity.Accounts = append(resp.Equity.Accounts, AccountBalance{
			Code:    s.chart.OwnerCapital,
			Name:    "Current Period Earnings",
			Balance: resp.CurrentEarnings,
		})
		resp.Equity.Total = resp.Equity.Total.Add(resp.CurrentEarnings)
	}

	resp.TotalAssets = resp.Assets.Total
	resp.TotalLiabilitiesAndEquity = resp.Liabilities.Total.Add(resp.Equity.Total)
	resp.Balanced = resp.TotalAssets.Equal(resp.TotalLiabilitiesAndEquity)
	if !resp.Balanced {
		s.logger.Warn("balance sheet out of balance",
			zap.String("total_assets", resp.TotalAssets.StringFixed(2)),
			zap.String("total_liabilities_and_equity", resp.TotalLiabilitiesAndEquity.StringFixed(2)))
	}

	s.cacheReport(ctx, cacheKey, resp)
	return resp, nil
}

func appendBalance(section *BalanceSheetSection, pos *accountPosition, balance decimal.Decimal) {
	if balance.IsZero() {
		return
	}
	section.Accounts = append(section.Accounts, AccountBalance{Code: pos.code, Name: pos.name, Balance: balance})
	section.Total = section.Total.Add(balance)
}

func sortSection(section *BalanceSheetSection) {
	sort.Slice(section.Accounts, func(i, j int) bool {
		return section.Accounts[i].Code < section.Accounts[j].Code
	})
}

// GetStudentReceivables breaks the receivable control account down per student.
// Accruals raise the receivable, payments and negotiated discounts lower it,
// and the outstanding amount never reports below zero. Payment credits beyond
// what was accrued surface as an advance balance.
func (s *BalanceSheetService) GetStudentReceivables(ctx context.Context, asOf time.Time, residenceID *uuid.UUID) (*StudentReceivablesResponse, error) {
	cacheKey := reportCacheKey("student_receivables", asOf, residenceID)
	if s.cache != nil {
		var cached StudentReceivablesResponse
		if hit, err := s.cache.GetReport(ctx, cacheKey, &cached); err == nil && hit {
			return &cached, nil
		}
	}

	entries, err := s.entryRepo.FindPostedBefore(ctx, asOf, residenceID)
	if err != nil {
		return nil, err
	}

	students := make(map[string]*StudentReceivable)
	for i := range entries {
		entry := &entries[i]
		negotiated := accounting.IsNegotiatedAdjustment(entry)

		for _, line := range entry.Lines {
			if line.AccountType != accounting.AccountTypeAsset {
				continue
			}
			if baseCode(line.AccountCode) != s.chart.ReceivableControl {
				continue
			}
			key, name, ok := accounting.ResolveStudent(line, entry.Description)
			if !ok {
				continue
			}

			student, exists := students[key]
			if !exists {
				student = &StudentReceivable{
					StudentKey:         key,
					StudentName:        name,
					AccountCode:        line.AccountCode,
					TotalAccrued:       decimal.Zero,
					TotalPaid:          decimal.Zero,
					NegotiatedDiscount: decimal.Zero,
				}
				students[key] = student
			}
			if student.StudentName == "" && name != "" {
				student.StudentName = name
			}

			switch {
			case line.Debit.IsPositive():
				student.TotalAccrued = student.TotalAccrued.Add(line.Debit)
			case negotiated:
				student.NegotiatedDiscount = student.NegotiatedDiscount.Add(line.Credit)
			default:
				student.TotalPaid = student.TotalPaid.Add(line.Credit)
			}
		}
	}

	resp := &StudentReceivablesResponse{
		AsOf:             asOf,
		ResidenceID:      residenceID,
		Students:         make([]StudentReceivable, 0, len(students)),
		TotalOutstanding: decimal.Zero,
		TotalAdvances:    decimal.Zero,
		Negotiations:     negotiationSummary(entries),
	}
	for _, student := range students {
		net := student.TotalAccrued.Sub(student.TotalPaid).Sub(student.NegotiatedDiscount)
		if net.IsNegative() {
			student.AdvanceBalance = net.Neg()
			student.NetOutstanding = decimal.Zero
		} else {
			student.NetOutstanding = net
			student.AdvanceBalance = decimal.Zero
		}
		resp.TotalOutstanding = resp.TotalOutstanding.Add(student.NetOutstanding)
		resp.TotalAdvances = resp.TotalAdvances.Add(student.AdvanceBalance)
		resp.Students = append(resp.Students, *student)
	}
	sort.Slice(resp.Students, func(i, j int) bool {
		return resp.Students[i].StudentKey < resp.Students[j].StudentKey
	})

	s.cacheReport(ctx, cacheKey, resp)
	return resp, nil
}

// TrialBalanceRow is one account's debit/credit totals
type TrialBalanceRow struct {
	Code    string          `json:"code"`
	Name    string          `json:"name"`
	Type    string          `json:"type"`
	Debits  decimal.Decimal `json:"debits"`
	Credits decimal.Decimal `json:"credits"`
}

// TrialBalanceResponse lists every account's movement with grand totals
type TrialBalanceResponse struct {
	AsOf         time.Time         `json:"as_of"`
	Rows         []TrialBalanceRow `json:"rows"`
	TotalDebits  decimal.Decimal   `json:"total_debits"`
	TotalCredits decimal.Decimal   `json:"total_credits"`
	Balanced     bool              `json:"balanced"`
}

// GetTrialBalance lists per-account debit and credit totals as of a date.
// Grand totals must match; a mismatch indicates ledger corruption.
func (s *BalanceSheetService) GetTrialBalance(ctx context.Context, asOf time.Time) (*TrialBalanceResponse, error) {
	entries, err := s.entryRepo.FindPostedBefore(ctx, asOf, nil)
	if err != nil {
		return nil, err
	}
	positions := scanPositions(entries)

	resp := &TrialBalanceResponse{
		AsOf:         asOf,
		Rows:         make([]TrialBalanceRow, 0, len(positions)),
		TotalDebits:  decimal.Zero,
		TotalCredits: decimal.Zero,
	}
	for _, pos := range positions {
		resp.Rows = append(resp.Rows, TrialBalanceRow{
			Code:    pos.code,
			Name:    pos.name,
			Type:    string(pos.atype),
			Debits:  pos.debits,
			Credits: pos.credits,
		})
		resp.TotalDebits = resp.TotalDebits.Add(pos.debits)
		resp.TotalCredits = resp.TotalCredits.Add(pos.credits)
	}
	sort.Slice(resp.Rows, func(i, j int) bool { return resp.Rows[i].Code < resp.Rows[j].Code })
	resp.Balanced = resp.TotalDebits.Equal(resp.TotalCredits)
	return resp, nil
}

// GetAccountBalance returns one account's derived balance as of a date
func (s *BalanceSheetService) GetAccountBalance(ctx context.Context, code string, asOf time.Time) (*AccountBalance, error) {
	account, err := s.accountRepo.FindByCode(ctx, code)
	if err != nil {
		return nil, err
	}

	entries, err := s.entryRepo.FindByAccountAndDateRange(ctx, code, time.Time{}, asOf)
	if err != nil {
		return nil, err
	}

	debits := decimal.Zero
	credits := decimal.Zero
	for i := range entries {
		if entries[i].Status != accounting.EntryStatusPosted {
			continue
		}
		debits = debits.Add(entries[i].DebitTotalFor(code))
		credits = credits.Add(entries[i].CreditTotalFor(code))
	}

	pos := accountPosition{code: code, name: account.Name, atype: account.Type, debits: debits, credits: credits}
	return &AccountBalance{Code: code, Name: account.Name, Balance: pos.balance()}, nil
}

func (s *BalanceSheetService) cacheReport(ctx context.Context, key string, value interface{}) {
	if s.cache == nil {
		return
	}
	if err := s.cache.SetReport(ctx, key, value); err != nil {
		s.logger.Warn("report cache write failed", zap.String("key", key), zap.Error(err))
	}
}

func reportCacheKey(report string, asOf time.Time, residenceID *uuid.UUID) string {
	scope := "all"
	if residenceID != nil {
		scope = residenceID.String()
	}
	return fmt.Sprintf("%s:%s:%s", report, asOf.Format("2006-01-02"), scope)
}

func baseCode(code string) string {
	for i := 0; i < len(code); i++ {
		if code[i] == '-' {
			return code[:i]
		}
	}
	return code
}
