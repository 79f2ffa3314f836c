package residence

import (
	"time"

	"github.com/alamait/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// InstallmentStatus represents the lifecycle status of a single installment
type InstallmentStatus string

const (
	InstallmentStatusPending   InstallmentStatus = "pending"
	InstallmentStatusPaid      InstallmentStatus = "paid"
	InstallmentStatusFailed    InstallmentStatus = "failed"
	InstallmentStatusCancelled InstallmentStatus = "cancelled"
)

// IsValid checks if the status is valid
func (s InstallmentStatus) IsValid() bool {
	switch s {
	case InstallmentStatusPending, InstallmentStatusPaid, InstallmentStatusFailed, InstallmentStatusCancelled:
		return true
	}
	return false
}

// Installment is one partial payment against a monthly-request item
type Installment struct {
	ID                uuid.UUID         `json:"id"`
	InstallmentNumber int               `json:"installment_number"`
	Amount            decimal.Decimal   `json:"amount"`
	Status            InstallmentStatus `json:"status"`
	ExpenseID         *uuid.UUID        `json:"expense_id,omitempty"`
	TransactionID     string            `json:"transaction_id,omitempty"`
	RequestedAt       time.Time         `json:"requested_at"`
	PaidAt            *time.Time        `json:"paid_at,omitempty"`
}

// InstallmentPlan tracks the installments paid against one item of a monthly
// request. The paid total never exceeds the item's cost, and installment
// numbers are assigned sequentially from the count of existing installments.
type InstallmentPlan struct {
	shared.BaseAggregateRoot
	MonthlyRequestID uuid.UUID
	ItemIndex        int
	ItemDescription  string
	TotalCost        decimal.Decimal
	Installments     []Installment
}

// NewInstallmentPlan creates an empty plan for a request item
func NewInstallmentPlan(monthlyRequestID uuid.UUID, itemIndex int, description string, totalCost decimal.Decimal) (*InstallmentPlan, error) {
	if monthlyRequestID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_INPUT", "Installment plan requires a monthly request")
	}
	if !totalCost.IsPositive() {
		return nil, shared.NewDomainError("INVALID_INPUT", "Item total cost must be positive")
	}
	return &InstallmentPlan{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		MonthlyRequestID:  monthlyRequestID,
		ItemIndex:         itemIndex,
		ItemDescription:   description,
		TotalCost:         totalCost,
		Installments:      make([]Installment, 0),
	}, nil
}

// PaidTotal sums the amounts of paid installments
func (p *InstallmentPlan) PaidTotal() decimal.Decimal {
	total := decimal.Zero
	for _, inst := range p.Installments {
		if inst.Status == InstallmentStatusPaid {
			total = total.Add(inst.Amount)
		}
	}
	return total
}

// RemainingBalance returns the item cost not yet covered by paid installments
func (p *InstallmentPlan) RemainingBalance() decimal.Decimal {
	return p.TotalCost.Sub(p.PaidTotal())
}

// RequestInstallment appends a pending installment after checking the amount
// against the remaining balance. Pending and failed installments do not count
// against the balance; only paid ones do.
func (p *InstallmentPlan) RequestInstallment(amount decimal.Decimal) (*Installment, error) {
	if !amount.IsPositive() {
		return nil, shared.NewDomainError("INVALID_INPUT", "Installment amount must be positive")
	}
	if amount.GreaterThan(p.RemainingBalance()) {
		return nil, shared.ErrInstallmentExceeded
	}
	installment := Installment{
		ID:                uuid.New(),
		InstallmentNumber: len(p.Installments) + 1,
		Amount:            amount,
		Status:            InstallmentStatusPending,
		RequestedAt:       time.Now(),
	}
	p.Installments = append(p.Installments, installment)
	p.UpdatedAt = time.Now()
	return &p.Installments[len(p.Installments)-1], nil
}

// MarkPaid marks an installment paid and links the posted ledger entry.
// The remaining-balance guard runs again because other installments may have
// been paid since the request was made.
func (p *InstallmentPlan) MarkPaid(installmentID uuid.UUID, expenseID *uuid.UUID, transactionID string) error {
	inst := p.find(installmentID)
	if inst == nil {
		return shared.ErrNotFound
	}
	if inst.Status != InstallmentStatusPending {
		return shared.NewDomainError("INVALID_STATE", "Only pending installments can be marked paid")
	}
	if inst.Amount.GreaterThan(p.RemainingBalance()) {
		return shared.ErrInstallmentExceeded
	}
	now := time.Now()
	inst.Status = InstallmentStatusPaid
	inst.ExpenseID = expenseID
	inst.TransactionID = transactionID
	inst.PaidAt = &now
	p.UpdatedAt = now
	return nil
}

// MarkFailed marks a pending installment as failed
func (p *InstallmentPlan) MarkFailed(installmentID uuid.UUID) error {
	inst := p.find(installmentID)
	if inst == nil {
		return shared.ErrNotFound
	}
	if inst.Status != InstallmentStatusPending {
		return shared.NewDomainError("INVALID_STATE", "Only pending installments can be marked failed")
	}
	inst.Status = InstallmentStatusFailed
	p.UpdatedAt = time.Now()
	return nil
}

// Cancel cancels a pending installment
func (p *InstallmentPlan) Cancel(installmentID uuid.UUID) error {
	inst := p.find(installmentID)
	if inst == nil {
		return shared.ErrNotFound
	}
	if inst.Status != InstallmentStatusPending {
		return shared.NewDomainError("INVALID_STATE", "Only pending installments can be cancelled")
	}
	inst.Status = InstallmentStatusCancelled
	p.UpdatedAt = time.Now()
	return nil
}

func (p *InstallmentPlan) find(installmentID uuid.UUID) *Installment {
	for i := range p.Installments {
		if p.Installments[i].ID == installmentID {
			return &p.Installments[i]
		}
	}
	return nil
}
