package residence

import (
	"testing"

	"github.com/alamait/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createTestPlan(t *testing.T, totalCost float64) *InstallmentPlan {
	t.Helper()
	plan, err := NewInstallmentPlan(uuid.New(), 0, "Geyser replacement", decimal.NewFromFloat(totalCost))
	require.NoError(t, err)
	return plan
}

func payInstallment(t *testing.T, plan *InstallmentPlan, amount float64) *Installment {
	t.Helper()
	inst, err := plan.RequestInstallment(decimal.NewFromFloat(amount))
	require.NoError(t, err)
	require.NoError(t, plan.MarkPaid(inst.ID, nil, "TXN-TEST"))
	return inst
}

func TestInstallmentPlan_SequentialNumbers(t *testing.T) {
	plan := createTestPlan(t, 140)

	first := payInstallment(t, plan, 50)
	second := payInstallment(t, plan, 50)

	assert.Equal(t, 1, first.InstallmentNumber)
	assert.Equal(t, 2, second.InstallmentNumber)
}

// Scenario from the payment flow: $50 + $50 paid against a $140 item leaves
// $40 remaining, so a third $50 request must be rejected.
func TestInstallmentPlan_RejectsOverpayment(t *testing.T) {
	plan := createTestPlan(t, 140)

	payInstallment(t, plan, 50)
	payInstallment(t, plan, 50)

	assert.True(t, plan.RemainingBalance().Equal(decimal.NewFromInt(40)))

	_, err := plan.RequestInstallment(decimal.NewFromInt(50))
	assert.ErrorIs(t, err, shared.ErrInstallmentExceeded)

	inst, err := plan.RequestInstallment(decimal.NewFromInt(40))
	require.NoError(t, err)
	require.NoError(t, plan.MarkPaid(inst.ID, nil, "TXN-FINAL"))
	assert.True(t, plan.RemainingBalance().IsZero())
}

func TestInstallmentPlan_PendingDoesNotConsumeBalance(t *testing.T) {
	plan := createTestPlan(t, 100)

	pendingA, err := plan.RequestInstallment(decimal.NewFromInt(60))
	require.NoError(t, err)
	pendingB, err := plan.RequestInstallment(decimal.NewFromInt(60))
	require.NoError(t, err, "pending installments do not reserve balance")

	require.NoError(t, plan.MarkPaid(pendingA.ID, nil, "TXN-A"))

	// The second pending installment now exceeds the $40 remaining.
	err = plan.MarkPaid(pendingB.ID, nil, "TXN-B")
	assert.ErrorIs(t, err, shared.ErrInstallmentExceeded)
}

func TestInstallmentPlan_StatusGuards(t *testing.T) {
	plan := createTestPlan(t, 100)

	inst, err := plan.RequestInstallment(decimal.NewFromInt(30))
	require.NoError(t, err)

	require.NoError(t, plan.MarkFailed(inst.ID))
	assert.Error(t, plan.MarkPaid(inst.ID, nil, "TXN-X"), "failed installment cannot be paid")
	assert.Error(t, plan.Cancel(inst.ID), "failed installment cannot be cancelled")

	assert.ErrorIs(t, plan.MarkPaid(uuid.New(), nil, "TXN-Y"), shared.ErrNotFound)
}
