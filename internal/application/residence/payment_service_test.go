package residence

import (
	"context"
	"testing"
	"time"

	appaccounting "github.com/alamait/backend/internal/application/accounting"
	"github.com/alamait/backend/internal/domain/accounting"
	"github.com/alamait/backend/internal/domain/residence"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func testChart() accounting.ChartMap {
	return accounting.ChartMap{
		Cash:              "1000",
		ReceivableControl: "1100",
		PayableControl:    "2000",
		OwnerCapital:      "3000",
		RentalIncome:      "4000",
		DefaultExpense:    "5000",
	}
}

func mustAccount(t *testing.T, code, name string, accountType accounting.AccountType) *accounting.Account {
	t.Helper()
	account, err := accounting.NewAccount(code, name, accountType, "")
	require.NoError(t, err)
	return account
}

func chartAccounts(t *testing.T) []*accounting.Account {
	t.Helper()
	return []*accounting.Account{
		mustAccount(t, "1000", "Cash", accounting.AccountTypeAsset),
		mustAccount(t, "1100", "Accounts Receivable", accounting.AccountTypeAsset),
		mustAccount(t, "2000", "Accounts Payable", accounting.AccountTypeLiability),
		mustAccount(t, "3000", "Owner Capital", accounting.AccountTypeEquity),
		mustAccount(t, "4000", "Rental Income", accounting.AccountTypeIncome),
		mustAccount(t, "5000", "General Expenses", accounting.AccountTypeExpense),
	}
}

type paymentFixture struct {
	svc         *PaymentService
	paymentRepo *fakePaymentRepo
	entryRepo   *fakeEntryRepo
	accountRepo *fakeAccountRepo
	student     *residence.Student
}

func newPaymentFixture(t *testing.T) *paymentFixture {
	t.Helper()
	student, err := residence.NewStudent("John", "Dube", "john@example.com")
	require.NoError(t, err)

	accountRepo := newFakeAccountRepo(chartAccounts(t)...)
	entryRepo := &fakeEntryRepo{}
	tx := &fakeTxManager{}
	chart := testChart()
	logger := zap.NewNop()

	ledger := appaccounting.NewLedgerService(entryRepo, accountRepo, tx, noopCache{}, logger)
	accrual := appaccounting.NewAccrualService(newFakeLeaseRepo(), entryRepo, accountRepo, ledger, tx, chart, logger)

	paymentRepo := newFakePaymentRepo()
	svc := NewPaymentService(paymentRepo, newFakeStudentRepo(student), accountRepo, accrual, ledger, tx, chart, logger)
	return &paymentFixture{svc: svc, paymentRepo: paymentRepo, entryRepo: entryRepo, accountRepo: accountRepo, student: student}
}

func TestPaymentService_RecordPayment(t *testing.T) {
	f := newPaymentFixture(t)

	resp, err := f.svc.RecordPayment(context.Background(), RecordPaymentRequest{
		StudentID:       f.student.ID,
		Amount:          decimal.NewFromInt(200),
		Method:          "ecocash",
		Date:            time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC),
		Reference:       "ECO-12345",
		AllocationMonth: "2024-03",
		CreatedBy:       "admin",
	})
	require.NoError(t, err)

	assert.Equal(t, "John Dube", resp.StudentName)
	assert.NotEmpty(t, resp.TransactionID)

	// The payment record and the ledger entry both exist.
	require.Len(t, f.entryRepo.entries, 1)
	entry := f.entryRepo.entries[0]
	assert.Equal(t, accounting.SourceRentalPayment, entry.Source)
	assert.Equal(t, "ECO-12345", entry.Reference)
	assert.Equal(t, "2024-03", entry.Metadata.GetString(accounting.MetaMonthSettled))

	// Debit cash, credit the student's receivable sub-account.
	arCode := testChart().StudentReceivableCode(f.student.ID)
	assert.True(t, entry.DebitTotalFor("1000").Equal(decimal.NewFromInt(200)))
	assert.True(t, entry.CreditTotalFor(arCode).Equal(decimal.NewFromInt(200)))

	// The receivable sub-account was created on demand.
	_, err = f.accountRepo.FindByCode(context.Background(), arCode)
	assert.NoError(t, err)
}

func TestPaymentService_RecordPayment_UnknownStudent(t *testing.T) {
	f := newPaymentFixture(t)

	_, err := f.svc.RecordPayment(context.Background(), RecordPaymentRequest{
		StudentID: uuid.New(),
		Amount:    decimal.NewFromInt(200),
		Method:    "cash",
		Date:      time.Now(),
		Reference: "REF-1",
	})
	assert.Error(t, err)
	assert.Empty(t, f.entryRepo.entries)
}

func TestPaymentService_RecordPayment_Validation(t *testing.T) {
	f := newPaymentFixture(t)

	cases := []struct {
		name string
		req  RecordPaymentRequest
	}{
		{"zero amount", RecordPaymentRequest{
			StudentID: f.student.ID, Amount: decimal.Zero, Method: "cash",
			Date: time.Now(), Reference: "REF-1",
		}},
		{"invalid method", RecordPaymentRequest{
			StudentID: f.student.ID, Amount: decimal.NewFromInt(50), Method: "barter",
			Date: time.Now(), Reference: "REF-1",
		}},
		{"missing reference", RecordPaymentRequest{
			StudentID: f.student.ID, Amount: decimal.NewFromInt(50), Method: "cash",
			Date: time.Now(),
		}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := f.svc.RecordPayment(context.Background(), tc.req)
			assert.Error(t, err)
		})
	}
	assert.Empty(t, f.entryRepo.entries)
}

func TestPaymentService_ListByStudent(t *testing.T) {
	f := newPaymentFixture(t)

	for _, ref := range []string{"REF-1", "REF-2"} {
		_, err := f.svc.RecordPayment(context.Background(), RecordPaymentRequest{
			StudentID: f.student.ID,
			Amount:    decimal.NewFromInt(100),
			Method:    "cash",
			Date:      time.Now(),
			Reference: ref,
		})
		require.NoError(t, err)
	}

	payments, err := f.svc.ListByStudent(context.Background(), f.student.ID)
	require.NoError(t, err)
	assert.Len(t, payments, 2)
}
