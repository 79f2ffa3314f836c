package accounting

import (
	"context"
	"testing"
	"time"

	"github.com/alamait/backend/internal/domain/accounting"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newBalanceSheetFixture(t *testing.T) (*BalanceSheetService, *fakeEntryRepo, *fakeReportCache) {
	t.Helper()
	entryRepo := &fakeEntryRepo{}
	accountRepo := newFakeAccountRepo(chartAccounts(t)...)
	cache := newFakeReportCache()
	svc := NewBalanceSheetService(entryRepo, accountRepo, testChart(), cache, zap.NewNop())
	return svc, entryRepo, cache
}

func arLine(amount int64, debit bool) accounting.EntryLine {
	line := accounting.EntryLine{
		AccountCode: "1100-abc123",
		AccountName: "Accounts Receivable - John Dube",
		AccountType: accounting.AccountTypeAsset,
	}
	if debit {
		line.Debit = decimal.NewFromInt(amount)
	} else {
		line.Credit = decimal.NewFromInt(amount)
	}
	return line
}

func saveEntry(t *testing.T, repo *fakeEntryRepo, entry *accounting.TransactionEntry, err error) *accounting.TransactionEntry {
	t.Helper()
	require.NoError(t, err)
	require.NoError(t, repo.Save(context.Background(), entry))
	return entry
}

func postAccrual(t *testing.T, repo *fakeEntryRepo, date time.Time, amount int64) {
	t.Helper()
	leaseID := uuid.New()
	entry, err := accounting.NewTransactionEntry(date,
		"Rental income accrual for 2024-1 - John Dube",
		[]accounting.EntryLine{
			arLine(amount, true),
			{AccountCode: "4000", AccountName: "Rental Income", AccountType: accounting.AccountTypeIncome, Credit: decimal.NewFromInt(amount)},
		},
		accounting.SourceRentalAccrual, &leaseID, "Lease", "system")
	saveEntry(t, repo, entry, err)
}

func postPayment(t *testing.T, repo *fakeEntryRepo, date time.Time, amount int64) {
	t.Helper()
	entry, err := accounting.NewTransactionEntry(date,
		"Rent received - John Dube",
		[]accounting.EntryLine{
			{AccountCode: "1000", AccountName: "Cash", AccountType: accounting.AccountTypeAsset, Debit: decimal.NewFromInt(amount)},
			arLine(amount, false),
		},
		accounting.SourceRentalPayment, nil, "", "admin")
	saveEntry(t, repo, entry, err)
}

func postNegotiatedDiscount(t *testing.T, repo *fakeEntryRepo, date time.Time, amount int64) {
	t.Helper()
	postNegotiatedDiscountFor(t, repo, date, amount, "abc123", "John Dube")
}

func postNegotiatedDiscountFor(t *testing.T, repo *fakeEntryRepo, date time.Time, amount int64, suffix, name string) {
	t.Helper()
	entry, err := accounting.NewTransactionEntry(date,
		"Negotiated payment adjustment - "+name,
		[]accounting.EntryLine{
			{AccountCode: "4000", AccountName: "Rental Income", AccountType: accounting.AccountTypeIncome, Debit: decimal.NewFromInt(amount)},
			{AccountCode: "1100-" + suffix, AccountName: "Accounts Receivable - " + name, AccountType: accounting.AccountTypeAsset, Credit: decimal.NewFromInt(amount)},
		},
		accounting.SourceManual, nil, "", "admin")
	require.NoError(t, err)
	entry.Metadata = accounting.Metadata{accounting.MetaType: accounting.MetaNegotiatedAdjustment}
	require.NoError(t, repo.Save(context.Background(), entry))
}

func TestBalanceSheet_Balances(t *testing.T) {
	svc, repo, _ := newBalanceSheetFixture(t)
	jan := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	postAccrual(t, repo, jan, 150)
	postPayment(t, repo, jan.AddDate(0, 0, 10), 100)

	sheet, err := svc.GetBalanceSheet(context.Background(), jan.AddDate(0, 1, 0), nil)
	require.NoError(t, err)

	assert.True(t, sheet.Balanced, "assets must equal liabilities plus equity")
	// Cash 100 plus receivable 50.
	assert.True(t, sheet.TotalAssets.Equal(decimal.NewFromInt(150)))
	// All earnings so far: 150 income, no expenses.
	assert.True(t, sheet.CurrentEarnings.Equal(decimal.NewFromInt(150)))
}

func TestBalanceSheet_ExcludesLaterEntries(t *testing.T) {
	svc, repo, _ := newBalanceSheetFixture(t)

	postAccrual(t, repo, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), 150)
	postAccrual(t, repo, time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC), 150)

	sheet, err := svc.GetBalanceSheet(context.Background(), time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC), nil)
	require.NoError(t, err)
	assert.True(t, sheet.TotalAssets.Equal(decimal.NewFromInt(150)), "entries after the as-of date are out of scope")
}

// A $30 negotiated discount against a $150 accrual leaves $120 outstanding,
// reported separately from cash received.
func TestStudentReceivables_NegotiatedDiscount(t *testing.T) {
	svc, repo, _ := newBalanceSheetFixture(t)
	jan := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	postAccrual(t, repo, jan, 150)
	postNegotiatedDiscount(t, repo, jan.AddDate(0, 0, 5), 30)

	resp, err := svc.GetStudentReceivables(context.Background(), jan.AddDate(0, 1, 0), nil)
	require.NoError(t, err)
	require.Len(t, resp.Students, 1)

	student := resp.Students[0]
	assert.Equal(t, "abc123", student.StudentKey)
	assert.Equal(t, "John Dube", student.StudentName)
	assert.True(t, student.TotalAccrued.Equal(decimal.NewFromInt(150)))
	assert.True(t, student.NegotiatedDiscount.Equal(decimal.NewFromInt(30)))
	assert.True(t, student.TotalPaid.IsZero())
	assert.True(t, student.NetOutstanding.Equal(decimal.NewFromInt(120)))
}

// Every negotiated adjustment in scope rolls up into the negotiation summary
// carried on both the receivable and balance sheet reports.
func TestNegotiationSummary(t *testing.T) {
	svc, repo, _ := newBalanceSheetFixture(t)
	jan := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	postAccrual(t, repo, jan, 150)
	postNegotiatedDiscount(t, repo, jan.AddDate(0, 0, 5), 30)
	postNegotiatedDiscountFor(t, repo, jan.AddDate(0, 0, 6), 20, "def456", "Jane Moyo")

	resp, err := svc.GetStudentReceivables(context.Background(), jan.AddDate(0, 1, 0), nil)
	require.NoError(t, err)

	sum := resp.Negotiations
	assert.Equal(t, 2, sum.Count)
	assert.True(t, sum.TotalDiscount.Equal(decimal.NewFromInt(50)))
	assert.Equal(t, 2, sum.StudentsAffected)
	assert.True(t, sum.AverageDiscount.Equal(decimal.NewFromInt(25)))
	require.Len(t, sum.ByIncomeAccount, 1)
	assert.Equal(t, "4000", sum.ByIncomeAccount[0].Code)
	assert.True(t, sum.ByIncomeAccount[0].Balance.Equal(decimal.NewFromInt(50)))

	sheet, err := svc.GetBalanceSheet(context.Background(), jan.AddDate(0, 1, 0), nil)
	require.NoError(t, err)
	assert.Equal(t, 2, sheet.Negotiations.Count)
	assert.True(t, sheet.Negotiations.TotalDiscount.Equal(decimal.NewFromInt(50)))
}

// Payments beyond the accrued amount surface as an advance, never as a
// negative receivable.
func TestStudentReceivables_OverpaymentClampsToZero(t *testing.T) {
	svc, repo, _ := newBalanceSheetFixture(t)
	jan := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	postAccrual(t, repo, jan, 100)
	postPayment(t, repo, jan.AddDate(0, 0, 3), 150)

	resp, err := svc.GetStudentReceivables(context.Background(), jan.AddDate(0, 1, 0), nil)
	require.NoError(t, err)
	require.Len(t, resp.Students, 1)

	student := resp.Students[0]
	assert.True(t, student.NetOutstanding.IsZero())
	assert.True(t, student.AdvanceBalance.Equal(decimal.NewFromInt(50)))
	assert.True(t, resp.TotalOutstanding.IsZero())
	assert.True(t, resp.TotalAdvances.Equal(decimal.NewFromInt(50)))
}

func TestBalanceSheet_CachedUntilInvalidated(t *testing.T) {
	svc, repo, cache := newBalanceSheetFixture(t)
	jan := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	asOf := jan.AddDate(0, 1, 0)

	postAccrual(t, repo, jan, 150)

	first, err := svc.GetBalanceSheet(context.Background(), asOf, nil)
	require.NoError(t, err)

	// A new entry is invisible until the cache is invalidated.
	postAccrual(t, repo, jan.AddDate(0, 0, 1), 150)
	stale, err := svc.GetBalanceSheet(context.Background(), asOf, nil)
	require.NoError(t, err)
	assert.True(t, stale.TotalAssets.Equal(first.TotalAssets))

	require.NoError(t, cache.InvalidateReports(context.Background()))
	fresh, err := svc.GetBalanceSheet(context.Background(), asOf, nil)
	require.NoError(t, err)
	assert.True(t, fresh.TotalAssets.Equal(decimal.NewFromInt(300)))
}

func TestTrialBalance_TotalsMatch(t *testing.T) {
	svc, repo, _ := newBalanceSheetFixture(t)
	jan := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	postAccrual(t, repo, jan, 150)
	postPayment(t, repo, jan.AddDate(0, 0, 10), 100)

	tb, err := svc.GetTrialBalance(context.Background(), jan.AddDate(0, 1, 0))
	require.NoError(t, err)
	assert.True(t, tb.Balanced)
	assert.True(t, tb.TotalDebits.Equal(tb.TotalCredits))
	assert.True(t, tb.TotalDebits.Equal(decimal.NewFromInt(250)))
}

func TestGetAccountBalance(t *testing.T) {
	svc, repo, _ := newBalanceSheetFixture(t)
	jan := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	postAccrual(t, repo, jan, 150)
	postPayment(t, repo, jan.AddDate(0, 0, 10), 100)

	cash, err := svc.GetAccountBalance(context.Background(), "1000", jan.AddDate(0, 1, 0))
	require.NoError(t, err)
	assert.True(t, cash.Balance.Equal(decimal.NewFromInt(100)))

	income, err := svc.GetAccountBalance(context.Background(), "4000", jan.AddDate(0, 1, 0))
	require.NoError(t, err)
	assert.True(t, income.Balance.Equal(decimal.NewFromInt(150)))
}
