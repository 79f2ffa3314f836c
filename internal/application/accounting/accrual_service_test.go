package accounting

import (
	"context"
	"testing"
	"time"

	"github.com/alamait/backend/internal/domain/accounting"
	"github.com/alamait/backend/internal/domain/residence"
	"github.com/alamait/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type accrualFixture struct {
	svc         *AccrualService
	leaseRepo   *fakeLeaseRepo
	entryRepo   *fakeEntryRepo
	accountRepo *fakeAccountRepo
	cache       *fakeReportCache
}

func newAccrualFixture(t *testing.T, leases ...*residence.Lease) *accrualFixture {
	t.Helper()
	entryRepo := &fakeEntryRepo{}
	accountRepo := newFakeAccountRepo(chartAccounts(t)...)
	leaseRepo := newFakeLeaseRepo(leases...)
	cache := newFakeReportCache()
	tx := &fakeTxManager{}
	ledger := NewLedgerService(entryRepo, accountRepo, tx, cache, zap.NewNop())
	svc := NewAccrualService(leaseRepo, entryRepo, accountRepo, ledger, tx, testChart(), zap.NewNop())
	return &accrualFixture{svc: svc, leaseRepo: leaseRepo, entryRepo: entryRepo, accountRepo: accountRepo, cache: cache}
}

func signedLease(t *testing.T, start, end time.Time, rent int64) *residence.Lease {
	t.Helper()
	lease, err := residence.NewLease(uuid.New(), "John Dube", uuid.New(), uuid.New(), start, end, decimal.NewFromInt(rent))
	require.NoError(t, err)
	require.NoError(t, lease.Sign())
	return lease
}

// A six month lease at $200/month produces exactly six accrual entries, one
// per month, each debiting the student's receivable sub-account and crediting
// rental income.
func TestAccrualService_AccrueRentalIncome(t *testing.T) {
	lease := signedLease(t,
		time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2024, 6, 30, 0, 0, 0, 0, time.UTC), 200)
	f := newAccrualFixture(t, lease)

	posted, err := f.svc.AccrueRentalIncome(context.Background(), lease.ID)
	require.NoError(t, err)
	require.Len(t, posted, 6)

	arCode := testChart().StudentReceivableCode(lease.StudentID)
	for i, entry := range posted {
		assert.Equal(t, string(accounting.SourceRentalAccrual), entry.Source)
		assert.Equal(t, time.Month(i+1), entry.Date.Month())
		assert.Equal(t, 1, entry.Date.Day())
		assert.True(t, entry.TotalDebit.Equal(decimal.NewFromInt(200)))

		require.Len(t, entry.Entries, 2)
		assert.Equal(t, arCode, entry.Entries[0].AccountCode)
		assert.True(t, entry.Entries[0].Debit.Equal(decimal.NewFromInt(200)))
		assert.Equal(t, "4000", entry.Entries[1].AccountCode)
		assert.True(t, entry.Entries[1].Credit.Equal(decimal.NewFromInt(200)))
	}

	// The receivable sub-account was created on demand under the control account.
	ar, err := f.accountRepo.FindByCode(context.Background(), arCode)
	require.NoError(t, err)
	assert.Equal(t, "1100", ar.ParentCode)
	assert.Equal(t, "Accounts Receivable - John Dube", ar.Name)
}

func TestAccrualService_AccrueRentalIncome_Idempotent(t *testing.T) {
	lease := signedLease(t,
		time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2024, 3, 31, 0, 0, 0, 0, time.UTC), 150)
	f := newAccrualFixture(t, lease)

	_, err := f.svc.AccrueRentalIncome(context.Background(), lease.ID)
	require.NoError(t, err)

	_, err = f.svc.AccrueRentalIncome(context.Background(), lease.ID)
	assert.ErrorIs(t, err, shared.ErrAlreadyAccrued)
	assert.Len(t, f.entryRepo.entries, 3, "second run must not add entries")
}

func TestAccrualService_AccrueRentalIncome_DraftLeaseRejected(t *testing.T) {
	lease, err := residence.NewLease(uuid.New(), "Jane", uuid.New(), uuid.New(),
		time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2024, 3, 31, 0, 0, 0, 0, time.UTC), decimal.NewFromInt(100))
	require.NoError(t, err)
	f := newAccrualFixture(t, lease)

	_, err = f.svc.AccrueRentalIncome(context.Background(), lease.ID)
	assert.Error(t, err)
	assert.Empty(t, f.entryRepo.entries)
}

func TestAccrualService_ReverseAccrual(t *testing.T) {
	lease := signedLease(t,
		time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC), 200)
	f := newAccrualFixture(t, lease)

	posted, err := f.svc.AccrueRentalIncome(context.Background(), lease.ID)
	require.NoError(t, err)
	require.Len(t, posted, 1)

	reversal, err := f.svc.ReverseAccrual(context.Background(), posted[0].TransactionID)
	require.NoError(t, err)
	assert.Equal(t, string(accounting.SourceRentalAccrualReversal), reversal.Source)
	assert.Equal(t, posted[0].TransactionID, reversal.Reference)

	// Net receivable movement after reversal is zero.
	arCode := testChart().StudentReceivableCode(lease.StudentID)
	net := decimal.Zero
	for _, e := range f.entryRepo.entries {
		net = net.Add(e.DebitTotalFor(arCode)).Sub(e.CreditTotalFor(arCode))
	}
	assert.True(t, net.IsZero())
}

func TestAccrualService_ReverseAccrual_RejectsOtherSources(t *testing.T) {
	f := newAccrualFixture(t)

	entry, err := accounting.NewTransactionEntry(
		time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC),
		"Rent received",
		[]accounting.EntryLine{
			{AccountCode: "1000", AccountName: "Cash", AccountType: accounting.AccountTypeAsset, Debit: decimal.NewFromInt(100)},
			{AccountCode: "4000", AccountName: "Rental Income", AccountType: accounting.AccountTypeIncome, Credit: decimal.NewFromInt(100)},
		},
		accounting.SourceRentalPayment, nil, "", "admin")
	require.NoError(t, err)
	require.NoError(t, f.entryRepo.Save(context.Background(), entry))

	_, err = f.svc.ReverseAccrual(context.Background(), entry.TransactionID)
	assert.Error(t, err)
}

func TestAccrualService_GetAccrualSummary(t *testing.T) {
	lease := signedLease(t,
		time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2024, 3, 31, 0, 0, 0, 0, time.UTC), 200)
	f := newAccrualFixture(t, lease)

	posted, err := f.svc.AccrueRentalIncome(context.Background(), lease.ID)
	require.NoError(t, err)
	_, err = f.svc.ReverseAccrual(context.Background(), posted[2].TransactionID)
	require.NoError(t, err)

	// Reversals are dated when they are posted; pull this one back into the
	// reporting year.
	reversal := f.entryRepo.entries[len(f.entryRepo.entries)-1]
	reversal.Date = time.Date(2024, 3, 31, 0, 0, 0, 0, time.UTC)
	reversal.AccountingPeriod = "2024-03"

	summary, err := f.svc.GetAccrualSummary(context.Background(), 2024, nil)
	require.NoError(t, err)

	assert.True(t, summary.TotalAccrued.Equal(decimal.NewFromInt(600)))
	assert.True(t, summary.TotalReversed.Equal(decimal.NewFromInt(200)))
	assert.True(t, summary.NetAccrued.Equal(decimal.NewFromInt(400)))
	assert.Equal(t, 1, summary.LeaseCount)
}

func TestAccrualService_BulkAccrue(t *testing.T) {
	leaseA := signedLease(t,
		time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2024, 2, 28, 0, 0, 0, 0, time.UTC), 180)
	leaseB := signedLease(t,
		time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC), 220)
	f := newAccrualFixture(t, leaseA, leaseB)

	// leaseB is pre-accrued; the batch reports it as an error and still
	// processes leaseA.
	_, err := f.svc.AccrueRentalIncome(context.Background(), leaseB.ID)
	require.NoError(t, err)

	resp, err := f.svc.BulkAccrue(context.Background(), BulkAccrueRequest{
		LeaseIDs: []uuid.UUID{leaseA.ID, leaseB.ID},
	})
	require.NoError(t, err)

	assert.Equal(t, 2, resp.TotalProcessed)
	assert.Equal(t, 1, resp.Successful)
	assert.Equal(t, 1, resp.Errors)
	require.Len(t, resp.ErrorDetails, 1)
	assert.Equal(t, leaseB.ID, resp.ErrorDetails[0].LeaseID)
}

func TestAccrualService_BulkAccrue_RequiresSelection(t *testing.T) {
	f := newAccrualFixture(t)

	_, err := f.svc.BulkAccrue(context.Background(), BulkAccrueRequest{})
	assert.Error(t, err)
}
