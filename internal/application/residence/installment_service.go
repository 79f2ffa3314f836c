package residence

import (
	"context"
	"fmt"
	"time"

	appaccounting "github.com/alamait/backend/internal/application/accounting"
	"github.com/alamait/backend/internal/domain/accounting"
	"github.com/alamait/backend/internal/domain/residence"
	"github.com/alamait/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// InstallmentPlanResponse represents a plan with its installments
type InstallmentPlanResponse struct {
	ID               uuid.UUID               `json:"id"`
	MonthlyRequestID uuid.UUID               `json:"monthly_request_id"`
	ItemIndex        int                     `json:"item_index"`
	ItemDescription  string                  `json:"item_description"`
	TotalCost        decimal.Decimal         `json:"total_cost"`
	PaidTotal        decimal.Decimal         `json:"paid_total"`
	RemainingBalance decimal.Decimal         `json:"remaining_balance"`
	Installments     []residence.Installment `json:"installments"`
}

// NewInstallmentPlanResponse maps a domain plan to its API shape
func NewInstallmentPlanResponse(p *residence.InstallmentPlan) InstallmentPlanResponse {
	return InstallmentPlanResponse{
		ID:               p.ID,
		MonthlyRequestID: p.MonthlyRequestID,
		ItemIndex:        p.ItemIndex,
		ItemDescription:  p.ItemDescription,
		TotalCost:        p.TotalCost,
		PaidTotal:        p.PaidTotal(),
		RemainingBalance: p.RemainingBalance(),
		Installments:     p.Installments,
	}
}

// RequestInstallmentRequest asks for a partial payment against a request item.
// The plan is created on first use for the item.
type RequestInstallmentRequest struct {
	MonthlyRequestID uuid.UUID       `json:"monthly_request_id" binding:"required"`
	ItemIndex        int             `json:"item_index"`
	ItemDescription  string          `json:"item_description"`
	TotalCost        decimal.Decimal `json:"total_cost"`
	Amount           decimal.Decimal `json:"amount" binding:"required"`
}

// PayInstallmentRequest settles one pending installment
type PayInstallmentRequest struct {
	PlanID        uuid.UUID  `json:"plan_id" binding:"required"`
	InstallmentID uuid.UUID  `json:"installment_id" binding:"required"`
	Date          time.Time  `json:"date" binding:"required" time_format:"2006-01-02"`
	ResidenceID   *uuid.UUID `json:"residence_id"`
	ExpenseCode   string     `json:"expense_code"`
	CreatedBy     string     `json:"-"`
}

// InstallmentService manages partial payments against monthly-request items.
// Paying an installment posts an expense entry; the plan's balance guard
// ensures the paid total never exceeds the item's cost.
type InstallmentService struct {
	planRepo    residence.InstallmentPlanRepository
	accountRepo accounting.AccountRepository
	ledger      *appaccounting.LedgerService
	txManager   appaccounting.TransactionManager
	chart       accounting.ChartMap
	logger      *zap.Logger
}

// NewInstallmentService creates a new InstallmentService
func NewInstallmentService(
	planRepo residence.InstallmentPlanRepository,
	accountRepo accounting.AccountRepository,
	ledger *appaccounting.LedgerService,
	txManager appaccounting.TransactionManager,
	chart accounting.ChartMap,
	logger *zap.Logger,
) *InstallmentService {
	return &InstallmentService{
		planRepo:    planRepo,
		accountRepo: accountRepo,
		ledger:      ledger,
		txManager:   txManager,
		chart:       chart,
		logger:      logger.Named("installments"),
	}
}

// RequestInstallment appends a pending installment, creating the plan for the
// request item on first use. Amount validation runs in the aggregate.
func (s *InstallmentService) RequestInstallment(ctx context.Context, req RequestInstallmentRequest) (*InstallmentPlanResponse, error) {
	plan, err := s.planRepo.FindByRequestItem(ctx, req.MonthlyRequestID, req.ItemIndex)
	if err != nil {
		plan, err = residence.NewInstallmentPlan(req.MonthlyRequestID, req.ItemIndex, req.ItemDescription, req.TotalCost)
		if err != nil {
			return nil, err
		}
	}

	if _, err := plan.RequestInstallment(req.Amount); err != nil {
		return nil, err
	}
	if err := s.planRepo.Save(ctx, plan); err != nil {
		return nil, err
	}

	s.logger.Info("installment requested",
		zap.String("plan_id", plan.ID.String()),
		zap.String("amount", req.Amount.StringFixed(2)),
		zap.String("remaining", plan.RemainingBalance().StringFixed(2)))
	resp := NewInstallmentPlanResponse(plan)
	return &resp, nil
}

// PayInstallment marks the installment paid and posts the expense entry in one
// transaction: debit the expense account, credit cash. The balance guard runs
// again inside MarkPaid because other installments may have settled since the
// request.
func (s *InstallmentService) PayInstallment(ctx context.Context, req PayInstallmentRequest) (*InstallmentPlanResponse, error) {
	plan, err := s.planRepo.FindByID(ctx, req.PlanID)
	if err != nil {
		return nil, err
	}

	expenseCode := req.ExpenseCode
	if expenseCode == "" {
		expenseCode = s.chart.DefaultExpense
	}
	expense, err := s.accountRepo.FindByCode(ctx, expenseCode)
	if err != nil {
		return nil, shared.NewDomainError("INVALID_INPUT", "Unknown expense account "+expenseCode)
	}
	cash, err := s.accountRepo.FindByCode(ctx, s.chart.Cash)
	if err != nil {
		return nil, shared.ErrChartNotConfigured
	}

	installment := findInstallment(plan, req.InstallmentID)
	if installment == nil {
		return nil, shared.ErrNotFound
	}

	entry, err := s.buildInstallmentEntry(plan, installment, expense, cash, req)
	if err != nil {
		return nil, err
	}

	err = s.txManager.WithinTransaction(ctx, func(ctx context.Context) error {
		if err := plan.MarkPaid(req.InstallmentID, nil, entry.TransactionID); err != nil {
			return err
		}
		if err := s.planRepo.Save(ctx, plan); err != nil {
			return err
		}
		return s.ledger.PostEntry(ctx, entry)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("installment paid",
		zap.String("plan_id", plan.ID.String()),
		zap.Int("installment_number", installment.InstallmentNumber),
		zap.String("amount", installment.Amount.StringFixed(2)),
		zap.String("transaction_id", entry.TransactionID))
	resp := NewInstallmentPlanResponse(plan)
	return &resp, nil
}

func (s *InstallmentService) buildInstallmentEntry(
	plan *residence.InstallmentPlan,
	installment *residence.Installment,
	expense, cash *accounting.Account,
	req PayInstallmentRequest,
) (*accounting.TransactionEntry, error) {
	planID := plan.ID
	description := fmt.Sprintf("Installment %d of %s - %s",
		installment.InstallmentNumber, plan.TotalCost.StringFixed(2), plan.ItemDescription)

	entry, err := accounting.NewTransactionEntry(
		req.Date,
		description,
		[]accounting.EntryLine{
			{AccountCode: expense.Code, AccountName: expense.Name, AccountType: expense.Type, Debit: installment.Amount, Credit: decimal.Zero},
			{AccountCode: cash.Code, AccountName: cash.Name, AccountType: cash.Type, Debit: decimal.Zero, Credit: installment.Amount},
		},
		accounting.SourceInstallmentPayment,
		&planID,
		"InstallmentPlan",
		req.CreatedBy,
	)
	if err != nil {
		return nil, err
	}
	entry.ResidenceID = req.ResidenceID
	entry.CashFlowCategory = accounting.CashFlowOperating
	entry.Metadata = accounting.Metadata{
		"installmentId":     installment.ID.String(),
		"installmentNumber": installment.InstallmentNumber,
		"itemDescription":   plan.ItemDescription,
	}
	return entry, nil
}

// FailInstallment marks a pending installment as failed
func (s *InstallmentService) FailInstallment(ctx context.Context, planID, installmentID uuid.UUID) (*InstallmentPlanResponse, error) {
	return s.mutate(ctx, planID, func(plan *residence.InstallmentPlan) error {
		return plan.MarkFailed(installmentID)
	})
}

// CancelInstallment cancels a pending installment
func (s *InstallmentService) CancelInstallment(ctx context.Context, planID, installmentID uuid.UUID) (*InstallmentPlanResponse, error) {
	return s.mutate(ctx, planID, func(plan *residence.InstallmentPlan) error {
		return plan.Cancel(installmentID)
	})
}

func (s *InstallmentService) mutate(ctx context.Context, planID uuid.UUID, apply func(*residence.InstallmentPlan) error) (*InstallmentPlanResponse, error) {
	plan, err := s.planRepo.FindByID(ctx, planID)
	if err != nil {
		return nil, err
	}
	if err := apply(plan); err != nil {
		return nil, err
	}
	if err := s.planRepo.Save(ctx, plan); err != nil {
		return nil, err
	}
	resp := NewInstallmentPlanResponse(plan)
	return &resp, nil
}

// GetPlan returns one plan by ID
func (s *InstallmentService) GetPlan(ctx context.Context, planID uuid.UUID) (*InstallmentPlanResponse, error) {
	plan, err := s.planRepo.FindByID(ctx, planID)
	if err != nil {
		return nil, err
	}
	resp := NewInstallmentPlanResponse(plan)
	return &resp, nil
}

// ListPlansForRequest returns every plan under a monthly request
func (s *InstallmentService) ListPlansForRequest(ctx context.Context, monthlyRequestID uuid.UUID) ([]InstallmentPlanResponse, error) {
	plans, err := s.planRepo.FindByRequest(ctx, monthlyRequestID)
	if err != nil {
		return nil, err
	}
	responses := make([]InstallmentPlanResponse, len(plans))
	for i := range plans {
		responses[i] = NewInstallmentPlanResponse(&plans[i])
	}
	return responses, nil
}

func findInstallment(plan *residence.InstallmentPlan, installmentID uuid.UUID) *residence.Installment {
	for i := range plan.Installments {
		if plan.Installments[i].ID == installmentID {
			return &plan.Installments[i]
		}
	}
	return nil
}
