package accounting

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/alamait/backend/internal/domain/accounting"
	"github.com/alamait/backend/internal/domain/residence"
	"github.com/alamait/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// CashFlowBasis selects how entries are dated in the cash flow statement.
// Accrual basis keeps the ledger's period resolution; cash basis re-dates
// each entry to the receipt date of the payment its reference resolves to.
type CashFlowBasis string

const (
	CashFlowBasisAccrual CashFlowBasis = "accrual"
	CashFlowBasisCash    CashFlowBasis = "cash"
)

// IsValid checks if the basis is valid
func (b CashFlowBasis) IsValid() bool {
	return b == CashFlowBasisAccrual || b == CashFlowBasisCash
}

// PaymentResolver looks up the payment behind a ledger entry reference.
// Cash-basis reporting uses it to date entries on receipt.
type PaymentResolver interface {
	FindByReference(ctx context.Context, reference string) (*residence.Payment, error)
}

// CashFlowActivity accumulates inflows and outflows for one category
type CashFlowActivity struct {
	Inflows  decimal.Decimal `json:"inflows"`
	Outflows decimal.Decimal `json:"outflows"`
	Net      decimal.Decimal `json:"net"`
}

func newCashFlowActivity() CashFlowActivity {
	return CashFlowActivity{Inflows: decimal.Zero, Outflows: decimal.Zero, Net: decimal.Zero}
}

func (a *CashFlowActivity) add(inflow, outflow decimal.Decimal) {
	a.Inflows = a.Inflows.Add(inflow)
	a.Outflows = a.Outflows.Add(outflow)
	a.Net = a.Inflows.Sub(a.Outflows)
}

// MonthlyCashFlow is one month's cash activity split by category
type MonthlyCashFlow struct {
	Month          int              `json:"month"`
	Operating      CashFlowActivity `json:"operating"`
	Investing      CashFlowActivity `json:"investing"`
	Financing      CashFlowActivity `json:"financing"`
	NetCashFlow    decimal.Decimal  `json:"net_cash_flow"`
	OpeningBalance decimal.Decimal  `json:"opening_balance"`
	ClosingBalance decimal.Decimal  `json:"closing_balance"`
}

// CashFlowResponse is the cash flow statement for a calendar year. Only
// cash-relevant sources participate; accrual entries never move cash and
// forfeited amounts are excluded.
type CashFlowResponse struct {
	Year        int               `json:"year"`
	Basis       CashFlowBasis     `json:"basis"`
	ResidenceID *uuid.UUID        `json:"residence_id,omitempty"`
	Months      []MonthlyCashFlow `json:"months"`
	YearTotal   CashFlowActivity  `json:"year_total"`
	NetChange   decimal.Decimal   `json:"net_change"`
}

// CashFlowService builds cash flow statements and account-level drill-downs
type CashFlowService struct {
	entryRepo   accounting.TransactionEntryRepository
	accountRepo accounting.AccountRepository
	payments    PaymentResolver
	chart       accounting.ChartMap
	cache       ReportCache
	logger      *zap.Logger
}

// NewCashFlowService creates a new CashFlowService
func NewCashFlowService(
	entryRepo accounting.TransactionEntryRepository,
	accountRepo accounting.AccountRepository,
	payments PaymentResolver,
	chart accounting.ChartMap,
	cache ReportCache,
	logger *zap.Logger,
) *CashFlowService {
	return &CashFlowService{
		entryRepo:   entryRepo,
		accountRepo: accountRepo,
		payments:    payments,
		chart:       chart,
		cache:       cache,
		logger:      logger.Named("cash_flow"),
	}
}

// GetMonthlyCashFlow builds the twelve-month cash flow statement for a year.
// Cash movement is read off lines touching the cash account; the counterpart
// lines decide the operating/investing/financing split.
func (s *CashFlowService) GetMonthlyCashFlow(ctx context.Context, year int, basis CashFlowBasis, residenceID *uuid.UUID) (*CashFlowResponse, error) {
	if basis == "" {
		basis = CashFlowBasisAccrual
	}
	if !basis.IsValid() {
		return nil, shared.NewDomainError("INVALID_INPUT", "Basis must be accrual or cash")
	}

	cacheKey := fmt.Sprintf("cash_flow:%d:%s:%s", year, basis, scopeKey(residenceID))
	if s.cache != nil {
		var cached CashFlowResponse
		if hit, err := s.cache.GetReport(ctx, cacheKey, &cached); err == nil && hit {
			return &cached, nil
		}
	}

	status := accounting.EntryStatusPosted
	entries, err := s.entryRepo.FindAll(ctx, accounting.EntryFilter{
		Filter:      shared.Filter{Page: 1, PageSize: 0},
		Sources:     accounting.CashRelevantSources,
		Status:      &status,
		ResidenceID: residenceID,
		Year:        year,
	})
	if err != nil {
		return nil, err
	}
	entries = withoutForfeitures(entries)

	resp := &CashFlowResponse{
		Year:        year,
		Basis:       basis,
		ResidenceID: residenceID,
		Months:      make([]MonthlyCashFlow, 12),
		YearTotal:   newCashFlowActivity(),
		NetChange:   decimal.Zero,
	}
	for i := range resp.Months {
		resp.Months[i] = MonthlyCashFlow{
			Month:          i + 1,
			Operating:      newCashFlowActivity(),
			Investing:      newCashFlowActivity(),
			Financing:      newCashFlowActivity(),
			NetCashFlow:    decimal.Zero,
			OpeningBalance: decimal.Zero,
			ClosingBalance: decimal.Zero,
		}
	}

	for i := range entries {
		entry := &entries[i]
		inflow, outflow, counterpart := s.cashMovement(entry)
		if inflow.IsZero() && outflow.IsZero() {
			continue
		}

		month, ok := s.effectiveMonth(ctx, entry, year, basis)
		if !ok {
			continue
		}
		bucket := &resp.Months[month-1]

		category := accounting.ClassifyCashFlow(entry, counterpart)
		switch category {
		case accounting.CashFlowInvesting:
			bucket.Investing.add(inflow, outflow)
		case accounting.CashFlowFinancing:
			bucket.Financing.add(inflow, outflow)
		default:
			// Unclassified cash movement is reported as operating rather
			// than silently dropped.
			bucket.Operating.add(inflow, outflow)
		}
	}

	running := decimal.Zero
	for i := range resp.Months {
		bucket := &resp.Months[i]
		bucket.NetCashFlow = bucket.Operating.Net.Add(bucket.Investing.Net).Add(bucket.Financing.Net)
		bucket.OpeningBalance = running
		running = running.Add(bucket.NetCashFlow)
		bucket.ClosingBalance = running

		resp.YearTotal.add(
			bucket.Operating.Inflows.Add(bucket.Investing.Inflows).Add(bucket.Financing.Inflows),
			bucket.Operating.Outflows.Add(bucket.Investing.Outflows).Add(bucket.Financing.Outflows),
		)
	}
	resp.NetChange = running

	if s.cache != nil {
		if err := s.cache.SetReport(ctx, cacheKey, resp); err != nil {
			s.logger.Warn("report cache write failed", zap.String("key", cacheKey), zap.Error(err))
		}
	}
	return resp, nil
}

// effectiveMonth places an entry in its reporting month. Accrual basis runs
// the layered period resolution; cash basis overrides it with the receipt
// date of the payment the entry's reference resolves to, dropping entries
// whose receipt falls outside the requested year.
func (s *CashFlowService) effectiveMonth(ctx context.Context, entry *accounting.TransactionEntry, year int, basis CashFlowBasis) (int, bool) {
	if basis == CashFlowBasisCash && entry.Reference != "" && s.payments != nil {
		if payment, err := s.payments.FindByReference(ctx, entry.Reference); err == nil {
			if payment.Date.Year() != year {
				return 0, false
			}
			return int(payment.Date.Month()), true
		}
	}
	month, _ := accounting.ResolveMonth(entry)
	return month, true
}

// withoutForfeitures drops entries that record forfeited amounts. They stay
// on the ledger but never count as cash activity.
func withoutForfeitures(entries []accounting.TransactionEntry) []accounting.TransactionEntry {
	kept := make([]accounting.TransactionEntry, 0, len(entries))
	for i := range entries {
		if entries[i].Metadata.GetBool(accounting.MetaIsForfeiture) {
			continue
		}
		kept = append(kept, entries[i])
	}
	return kept
}

// cashMovement extracts the cash delta of an entry and the most significant
// counterpart line, which carries the classification signal.
func (s *CashFlowService) cashMovement(entry *accounting.TransactionEntry) (inflow, outflow decimal.Decimal, counterpart accounting.EntryLine) {
	inflow = decimal.Zero
	outflow = decimal.Zero
	largest := decimal.Zero

	cashBase := baseCode(s.chart.Cash)
	for _, line := range entry.Lines {
		if baseCode(line.AccountCode) == cashBase {
			inflow = inflow.Add(line.Debit)
			outflow = outflow.Add(line.Credit)
			continue
		}
		amount := line.Debit.Add(line.Credit)
		if amount.GreaterThan(largest) {
			largest = amount
			counterpart = line
		}
	}
	return inflow, outflow, counterpart
}

// descriptionClause matches a description containing every substring in all
// and none of the substrings in none. Matching is case-insensitive.
type descriptionClause struct {
	all  []string
	none []string
}

func (c descriptionClause) matches(desc string) bool {
	for _, want := range c.all {
		if !strings.Contains(desc, want) {
			return false
		}
	}
	for _, reject := range c.none {
		if strings.Contains(desc, reject) {
			return false
		}
	}
	return true
}

// descriptionFilter matches when any of its clauses does
type descriptionFilter []descriptionClause

func (f descriptionFilter) matches(description string) bool {
	desc := strings.ToLower(description)
	for _, clause := range f {
		if clause.matches(desc) {
			return true
		}
	}
	return false
}

// Named drill-down filters for the legacy report columns. Rows predating the
// source tags only carry wording, so each column encodes the substrings that
// identify it and the substrings that would pull a row into another column.
var drillDownDescriptionFilters = map[string]descriptionFilter{
	"rentals": {
		{all: []string{"rent"}, none: []string{"admin", "deposit", "advance", "allocation"}},
		{all: []string{"accommodation"}, none: []string{"admin", "deposit", "advance", "allocation"}},
	},
	"allocation": {
		{all: []string{"payment allocation"}, none: []string{"admin"}},
	},
	"admin": {
		{all: []string{"admin"}},
	},
	"advance": {
		{all: []string{"advance rent payment"}},
		{all: []string{"payment allocation", "rent"}, none: []string{"current period", "admin"}},
	},
	"deposits": {
		{all: []string{"deposit"}, none: []string{"admin"}},
	},
	"utilities": {
		{all: []string{"utility"}},
		{all: []string{"utilities"}},
		{all: []string{"water"}},
		{all: []string{"electricity"}},
	},
}

// Source-tag drill-down groups for rows posted with explicit source tags
var drillDownSourceGroups = map[string][]accounting.EntrySource{
	"payments": {
		accounting.SourceRentalPayment,
		accounting.SourcePayment,
		accounting.SourceCurrentPayment,
		accounting.SourceAdvancePayment,
		accounting.SourceDebtSettlement,
		accounting.SourcePaymentCollection,
	},
	"accruals": {
		accounting.SourceRentalAccrual,
		accounting.SourceRentalAccrualReversal,
	},
	"expenses": {
		accounting.SourceExpensePayment,
		accounting.SourceMaintenanceExpense,
		accounting.SourceInstallmentPayment,
		accounting.SourceVendorPayment,
		accounting.SourceVendorPaymentSettlement,
	},
	"transfers": {
		accounting.SourceBankTransfer,
	},
	"manual": {
		accounting.SourceManual,
	},
}

// AccountTransactionDetail is one ledger row in a drill-down response
type AccountTransactionDetail struct {
	TransactionID string          `json:"transaction_id"`
	Date          time.Time       `json:"date"`
	Description   string          `json:"description"`
	Source        string          `json:"source"`
	Debit         decimal.Decimal `json:"debit"`
	Credit        decimal.Decimal `json:"credit"`
	RunningTotal  decimal.Decimal `json:"running_total"`
}

// AccountTransactionDetailsResponse is the drill-down behind one report cell
type AccountTransactionDetailsResponse struct {
	AccountCode      string                     `json:"account_code"`
	AccountName      string                     `json:"account_name"`
	Period           string                     `json:"period"`
	ResidenceID      *uuid.UUID                 `json:"residence_id,omitempty"`
	SourceFilter     string                     `json:"source_filter,omitempty"`
	Unfiltered       bool                       `json:"unfiltered,omitempty"`
	Transactions     []AccountTransactionDetail `json:"transactions"`
	Count            int                        `json:"count"`
	DistinctStudents int                        `json:"distinct_students"`
	TotalDebit       decimal.Decimal            `json:"total_debit"`
	TotalCredit      decimal.Decimal            `json:"total_credit"`
	NetMovement      decimal.Decimal            `json:"net_movement"`
}

// GetAccountTransactionDetails lists the ledger rows behind one account and
// month, the drill-down target of report cells. sourceFilter names either a
// description-wording column or a source-tag group; when the narrowed query
// finds nothing the full month is returned instead, flagged Unfiltered, so a
// drill-down never dead-ends on a row the summary displayed.
func (s *CashFlowService) GetAccountTransactionDetails(ctx context.Context, accountCode string, year, month int, residenceID *uuid.UUID, sourceFilter string) (*AccountTransactionDetailsResponse, error) {
	if month < 1 || month > 12 {
		return nil, shared.NewDomainError("INVALID_INPUT", "Month must be between 1 and 12")
	}
	account, err := s.accountRepo.FindByCode(ctx, accountCode)
	if err != nil {
		return nil, err
	}

	var sources []accounting.EntrySource
	var wording descriptionFilter
	if sourceFilter != "" {
		if f, ok := drillDownDescriptionFilters[sourceFilter]; ok {
			wording = f
		} else if group, ok := drillDownSourceGroups[sourceFilter]; ok {
			sources = group
		} else {
			return nil, shared.NewDomainError("INVALID_INPUT", "Unknown source filter "+sourceFilter)
		}
	}

	from := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 1, 0).Add(-time.Nanosecond)

	entries, err := s.queryDetails(ctx, accountCode, from, to, sources, residenceID)
	if err != nil {
		return nil, err
	}
	if wording != nil {
		entries = filterByDescription(entries, wording)
	}

	unfiltered := false
	if len(entries) == 0 && (len(sources) > 0 || wording != nil) {
		entries, err = s.queryDetails(ctx, accountCode, from, to, nil, residenceID)
		if err != nil {
			return nil, err
		}
		unfiltered = true
	}

	resp := &AccountTransactionDetailsResponse{
		AccountCode:  account.Code,
		AccountName:  account.Name,
		Period:       fmt.Sprintf("%d-%02d", year, month),
		ResidenceID:  residenceID,
		SourceFilter: sourceFilter,
		Unfiltered:   unfiltered,
		Transactions: make([]AccountTransactionDetail, 0, len(entries)),
		TotalDebit:   decimal.Zero,
		TotalCredit:  decimal.Zero,
	}

	sort.Slice(entries, func(i, j int) bool { return entries[i].Date.Before(entries[j].Date) })

	students := make(map[string]struct{})
	running := decimal.Zero
	debitNormal := account.Type.NormalBalance() == "debit"
	for i := range entries {
		entry := &entries[i]
		debit := entry.DebitTotalFor(accountCode)
		credit := entry.CreditTotalFor(accountCode)

		if debitNormal {
			running = running.Add(debit).Sub(credit)
		} else {
			running = running.Add(credit).Sub(debit)
		}
		resp.TotalDebit = resp.TotalDebit.Add(debit)
		resp.TotalCredit = resp.TotalCredit.Add(credit)
		if key := studentKeyFor(entry); key != "" {
			students[key] = struct{}{}
		}

		resp.Transactions = append(resp.Transactions, AccountTransactionDetail{
			TransactionID: entry.TransactionID,
			Date:          entry.Date,
			Description:   entry.Description,
			Source:        string(entry.Source),
			Debit:         debit,
			Credit:        credit,
			RunningTotal:  running,
		})
	}

	resp.Count = len(resp.Transactions)
	resp.DistinctStudents = len(students)
	if debitNormal {
		resp.NetMovement = resp.TotalDebit.Sub(resp.TotalCredit)
	} else {
		resp.NetMovement = resp.TotalCredit.Sub(resp.TotalDebit)
	}
	return resp, nil
}

func (s *CashFlowService) queryDetails(ctx context.Context, accountCode string, from, to time.Time, sources []accounting.EntrySource, residenceID *uuid.UUID) ([]accounting.TransactionEntry, error) {
	status := accounting.EntryStatusPosted
	entries, err := s.entryRepo.FindAll(ctx, accounting.EntryFilter{
		Filter:      shared.Filter{Page: 1, PageSize: 0},
		AccountCode: accountCode,
		Sources:     sources,
		Status:      &status,
		ResidenceID: residenceID,
		FromDate:    &from,
		ToDate:      &to,
	})
	if err != nil {
		return nil, err
	}
	return withoutForfeitures(entries), nil
}

func filterByDescription(entries []accounting.TransactionEntry, filter descriptionFilter) []accounting.TransactionEntry {
	kept := make([]accounting.TransactionEntry, 0, len(entries))
	for i := range entries {
		if filter.matches(entries[i].Description) {
			kept = append(kept, entries[i])
		}
	}
	return kept
}

// studentKeyFor identifies the student behind an entry when one is recorded,
// preferring the explicit metadata ID over the line/description heuristics.
func studentKeyFor(entry *accounting.TransactionEntry) string {
	if id := entry.Metadata.GetString(accounting.MetaStudentID); id != "" {
		return id
	}
	for _, line := range entry.Lines {
		if key, _, ok := accounting.ResolveStudent(line, entry.Description); ok {
			return key
		}
	}
	return ""
}

// IncomeStatementResponse summarises income and expenses for a date range
type IncomeStatementResponse struct {
	From          time.Time        `json:"from"`
	To            time.Time        `json:"to"`
	ResidenceID   *uuid.UUID       `json:"residence_id,omitempty"`
	Income        []AccountBalance `json:"income"`
	Expenses      []AccountBalance `json:"expenses"`
	TotalIncome   decimal.Decimal  `json:"total_income"`
	TotalExpenses decimal.Decimal  `json:"total_expenses"`
	NetIncome     decimal.Decimal  `json:"net_income"`
}

// GetIncomeStatement summarises accrual-basis income and expenses in a range
func (s *CashFlowService) GetIncomeStatement(ctx context.Context, from, to time.Time, residenceID *uuid.UUID) (*IncomeStatementResponse, error) {
	status := accounting.EntryStatusPosted
	entries, err := s.entryRepo.FindAll(ctx, accounting.EntryFilter{
		Filter:      shared.Filter{Page: 1, PageSize: 0},
		Status:      &status,
		ResidenceID: residenceID,
		FromDate:    &from,
		ToDate:      &to,
	})
	if err != nil {
		return nil, err
	}

	income := make(map[string]*accountPosition)
	expenses := make(map[string]*accountPosition)
	for i := range entries {
		for _, line := range entries[i].Lines {
			var bucket map[string]*accountPosition
			switch line.AccountType {
			case accounting.AccountTypeIncome:
				bucket = income
			case accounting.AccountTypeExpense:
				bucket = expenses
			default:
				continue
			}
			pos, ok := bucket[line.AccountCode]
			if !ok {
				pos = &accountPosition{
					code:    line.AccountCode,
					name:    line.AccountName,
					atype:   line.AccountType,
					debits:  decimal.Zero,
					credits: decimal.Zero,
				}
				bucket[line.AccountCode] = pos
			}
			pos.debits = pos.debits.Add(line.Debit)
			pos.credits = pos.credits.Add(line.Credit)
		}
	}

	resp := &IncomeStatementResponse{
		From:          from,
		To:            to,
		ResidenceID:   residenceID,
		Income:        []AccountBalance{},
		Expenses:      []AccountBalance{},
		TotalIncome:   decimal.Zero,
		TotalExpenses: decimal.Zero,
	}
	for _, pos := range income {
		balance := pos.balance()
		resp.Income = append(resp.Income, AccountBalance{Code: pos.code, Name: pos.name, Balance: balance})
		resp.TotalIncome = resp.TotalIncome.Add(balance)
	}
	for _, pos := range expenses {
		balance := pos.balance()
		resp.Expenses = append(resp.Expenses, AccountBalance{Code: pos.code, Name: pos.name, Balance: balance})
		resp.TotalExpenses = resp.TotalExpenses.Add(balance)
	}
	sort.Slice(resp.Income, func(i, j int) bool { return resp.Income[i].Code < resp.Income[j].Code })
	sort.Slice(resp.Expenses, func(i, j int) bool { return resp.Expenses[i].Code < resp.Expenses[j].Code })
	resp.NetIncome = resp.TotalIncome.Sub(resp.TotalExpenses)
	return resp, nil
}

func scopeKey(residenceID *uuid.UUID) string {
	if residenceID == nil {
		return "all"
	}
	return residenceID.String()
}
