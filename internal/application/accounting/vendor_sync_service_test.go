package accounting

import (
	"context"
	"testing"
	"time"

	"github.com/alamait/backend/internal/domain/accounting"
	"github.com/alamait/backend/internal/domain/residence"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newVendorSyncFixture(t *testing.T, vendors ...*residence.Vendor) (*VendorSyncService, *fakeEntryRepo, *fakeVendorRepo) {
	t.Helper()
	entryRepo := &fakeEntryRepo{}
	vendorRepo := newFakeVendorRepo(vendors...)
	svc := NewVendorSyncService(vendorRepo, entryRepo, zap.NewNop())
	return svc, entryRepo, vendorRepo
}

func testVendor(t *testing.T, accountCode string) *residence.Vendor {
	t.Helper()
	vendor, err := residence.NewVendor("V001", "City Plumbing", accountCode)
	require.NoError(t, err)
	return vendor
}

func postVendorInvoice(t *testing.T, repo *fakeEntryRepo, accountCode string, date time.Time, amount int64) *accounting.TransactionEntry {
	t.Helper()
	entry, err := accounting.NewTransactionEntry(date,
		"Plumbing services invoice",
		[]accounting.EntryLine{
			{AccountCode: "5000", AccountName: "General Expenses", AccountType: accounting.AccountTypeExpense, Debit: decimal.NewFromInt(amount)},
			{AccountCode: accountCode, AccountName: "Accounts Payable - City Plumbing", AccountType: accounting.AccountTypeLiability, Credit: decimal.NewFromInt(amount)},
		},
		accounting.SourceMaintenanceExpense, nil, "", "admin")
	return saveEntry(t, repo, entry, err)
}

func postVendorSettlement(t *testing.T, repo *fakeEntryRepo, accountCode string, date time.Time, amount int64) *accounting.TransactionEntry {
	t.Helper()
	entry, err := accounting.NewTransactionEntry(date,
		"Payment to City Plumbing",
		[]accounting.EntryLine{
			{AccountCode: accountCode, AccountName: "Accounts Payable - City Plumbing", AccountType: accounting.AccountTypeLiability, Debit: decimal.NewFromInt(amount)},
			{AccountCode: "1000", AccountName: "Cash", AccountType: accounting.AccountTypeAsset, Credit: decimal.NewFromInt(amount)},
		},
		accounting.SourceVendorPaymentSettlement, nil, "", "admin")
	return saveEntry(t, repo, entry, err)
}

// Invoices raise the payable, settlements lower it; the synced projection
// reads the difference straight off the ledger.
func TestVendorSync_SyncVendorBalances(t *testing.T) {
	vendor := testVendor(t, "2000-v001")
	svc, entryRepo, vendorRepo := newVendorSyncFixture(t, vendor)

	postVendorInvoice(t, entryRepo, "2000-v001", time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC), 300)
	postVendorSettlement(t, entryRepo, "2000-v001", time.Date(2024, 2, 15, 0, 0, 0, 0, time.UTC), 100)

	resp, err := svc.SyncVendorBalances(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, resp.Total)
	assert.Equal(t, 1, resp.Synced)
	assert.Equal(t, 0, resp.Failed)
	require.Len(t, resp.Results, 1)
	assert.True(t, resp.Results[0].Balance.Equal(decimal.NewFromInt(200)))

	stored, err := vendorRepo.FindByVendorCode(context.Background(), "V001")
	require.NoError(t, err)
	assert.True(t, stored.CurrentBalance.Equal(decimal.NewFromInt(200)))
	assert.NotNil(t, stored.BalanceSyncedAt)
}

func TestVendorSync_IgnoresInactiveVendors(t *testing.T) {
	vendor := testVendor(t, "2000-v001")
	require.NoError(t, vendor.Deactivate())
	svc, _, _ := newVendorSyncFixture(t, vendor)

	resp, err := svc.SyncVendorBalances(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, resp.Total)
}

func TestVendorSync_EntryPostedRefreshesVendor(t *testing.T) {
	vendor := testVendor(t, "2000-v001")
	svc, entryRepo, vendorRepo := newVendorSyncFixture(t, vendor)

	entry := postVendorInvoice(t, entryRepo, "2000-v001", time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), 140)
	svc.EntryPosted(context.Background(), entry)

	stored, err := vendorRepo.FindByVendorCode(context.Background(), "V001")
	require.NoError(t, err)
	assert.True(t, stored.CurrentBalance.Equal(decimal.NewFromInt(140)))
}

// Liability lines without a vendor behind them are common; the listener must
// skip them without failing.
func TestVendorSync_EntryPostedIgnoresNonVendorAccounts(t *testing.T) {
	vendor := testVendor(t, "2000-v001")
	svc, entryRepo, vendorRepo := newVendorSyncFixture(t, vendor)

	entry, err := accounting.NewTransactionEntry(
		time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
		"Security deposit held",
		[]accounting.EntryLine{
			{AccountCode: "1000", AccountName: "Cash", AccountType: accounting.AccountTypeAsset, Debit: decimal.NewFromInt(90)},
			{AccountCode: "2500", AccountName: "Security Deposits", AccountType: accounting.AccountTypeLiability, Credit: decimal.NewFromInt(90)},
		},
		accounting.SourcePayment, nil, "", "admin")
	saveEntry(t, entryRepo, entry, err)

	svc.EntryPosted(context.Background(), entry)

	assert.Equal(t, 0, vendorRepo.saves, "no vendor matches, nothing to refresh")
}
