package residence

import (
	"context"
	"testing"
	"time"

	appaccounting "github.com/alamait/backend/internal/application/accounting"
	"github.com/alamait/backend/internal/domain/accounting"
	"github.com/alamait/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type installmentFixture struct {
	svc       *InstallmentService
	planRepo  *fakePlanRepo
	entryRepo *fakeEntryRepo
}

func newInstallmentFixture(t *testing.T) *installmentFixture {
	t.Helper()
	accountRepo := newFakeAccountRepo(chartAccounts(t)...)
	entryRepo := &fakeEntryRepo{}
	tx := &fakeTxManager{}
	logger := zap.NewNop()

	ledger := appaccounting.NewLedgerService(entryRepo, accountRepo, tx, noopCache{}, logger)
	planRepo := newFakePlanRepo()
	svc := NewInstallmentService(planRepo, accountRepo, ledger, tx, testChart(), logger)
	return &installmentFixture{svc: svc, planRepo: planRepo, entryRepo: entryRepo}
}

func requestInstallment(t *testing.T, f *installmentFixture, requestID uuid.UUID, amount int64) *InstallmentPlanResponse {
	t.Helper()
	resp, err := f.svc.RequestInstallment(context.Background(), RequestInstallmentRequest{
		MonthlyRequestID: requestID,
		ItemIndex:        0,
		ItemDescription:  "Geyser replacement",
		TotalCost:        decimal.NewFromInt(140),
		Amount:           decimal.NewFromInt(amount),
	})
	require.NoError(t, err)
	return resp
}

func payLatest(t *testing.T, f *installmentFixture, plan *InstallmentPlanResponse) *InstallmentPlanResponse {
	t.Helper()
	latest := plan.Installments[len(plan.Installments)-1]
	resp, err := f.svc.PayInstallment(context.Background(), PayInstallmentRequest{
		PlanID:        plan.ID,
		InstallmentID: latest.ID,
		Date:          time.Date(2024, 4, 10, 0, 0, 0, 0, time.UTC),
		CreatedBy:     "admin",
	})
	require.NoError(t, err)
	return resp
}

// Two $50 installments against a $140 item leave $40; a third $50 request is
// rejected before anything posts.
func TestInstallmentService_PartialPaymentFlow(t *testing.T) {
	f := newInstallmentFixture(t)
	requestID := uuid.New()

	plan := requestInstallment(t, f, requestID, 50)
	plan = payLatest(t, f, plan)

	plan, err := f.svc.RequestInstallment(context.Background(), RequestInstallmentRequest{
		MonthlyRequestID: requestID,
		Amount:           decimal.NewFromInt(50),
	})
	require.NoError(t, err)
	plan = payLatest(t, f, plan)

	assert.True(t, plan.PaidTotal.Equal(decimal.NewFromInt(100)))
	assert.True(t, plan.RemainingBalance.Equal(decimal.NewFromInt(40)))

	_, err = f.svc.RequestInstallment(context.Background(), RequestInstallmentRequest{
		MonthlyRequestID: requestID,
		Amount:           decimal.NewFromInt(50),
	})
	assert.ErrorIs(t, err, shared.ErrInstallmentExceeded)

	// Each paid installment posted one expense entry.
	require.Len(t, f.entryRepo.entries, 2)
	for _, entry := range f.entryRepo.entries {
		assert.Equal(t, accounting.SourceInstallmentPayment, entry.Source)
		assert.True(t, entry.DebitTotalFor("5000").Equal(decimal.NewFromInt(50)))
		assert.True(t, entry.CreditTotalFor("1000").Equal(decimal.NewFromInt(50)))
	}
}

func TestInstallmentService_PayLinksTransaction(t *testing.T) {
	f := newInstallmentFixture(t)

	plan := requestInstallment(t, f, uuid.New(), 70)
	plan = payLatest(t, f, plan)

	paid := plan.Installments[0]
	assert.Equal(t, "paid", string(paid.Status))
	require.Len(t, f.entryRepo.entries, 1)
	assert.Equal(t, f.entryRepo.entries[0].TransactionID, paid.TransactionID)
	assert.NotNil(t, paid.PaidAt)
}

// Pending installments do not reserve balance; the guard re-runs at pay time
// and rejects a pending amount the remaining balance no longer covers.
func TestInstallmentService_PayTimeBalanceGuard(t *testing.T) {
	f := newInstallmentFixture(t)
	requestID := uuid.New()

	plan := requestInstallment(t, f, requestID, 100)
	firstID := plan.Installments[0].ID

	plan, err := f.svc.RequestInstallment(context.Background(), RequestInstallmentRequest{
		MonthlyRequestID: requestID,
		Amount:           decimal.NewFromInt(100),
	})
	require.NoError(t, err)
	secondID := plan.Installments[1].ID

	_, err = f.svc.PayInstallment(context.Background(), PayInstallmentRequest{
		PlanID: plan.ID, InstallmentID: firstID, Date: time.Now(), CreatedBy: "admin",
	})
	require.NoError(t, err)

	_, err = f.svc.PayInstallment(context.Background(), PayInstallmentRequest{
		PlanID: plan.ID, InstallmentID: secondID, Date: time.Now(), CreatedBy: "admin",
	})
	assert.ErrorIs(t, err, shared.ErrInstallmentExceeded)
	assert.Len(t, f.entryRepo.entries, 1, "rejected installment must not post")
}

func TestInstallmentService_UnknownExpenseAccount(t *testing.T) {
	f := newInstallmentFixture(t)

	plan := requestInstallment(t, f, uuid.New(), 50)
	_, err := f.svc.PayInstallment(context.Background(), PayInstallmentRequest{
		PlanID:        plan.ID,
		InstallmentID: plan.Installments[0].ID,
		Date:          time.Now(),
		ExpenseCode:   "5999",
		CreatedBy:     "admin",
	})
	assert.Error(t, err)
	assert.Empty(t, f.entryRepo.entries)
}

func TestInstallmentService_CancelAndFail(t *testing.T) {
	f := newInstallmentFixture(t)

	plan := requestInstallment(t, f, uuid.New(), 50)
	instID := plan.Installments[0].ID

	resp, err := f.svc.CancelInstallment(context.Background(), plan.ID, instID)
	require.NoError(t, err)
	assert.Equal(t, "cancelled", string(resp.Installments[0].Status))

	_, err = f.svc.FailInstallment(context.Background(), plan.ID, instID)
	assert.Error(t, err, "cancelled installment cannot fail")
}
