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

// RecordPaymentRequest represents cash received from a student
type RecordPaymentRequest struct {
	StudentID       uuid.UUID       `json:"student_id" binding:"required"`
	LeaseID         *uuid.UUID      `json:"lease_id"`
	ResidenceID     *uuid.UUID      `json:"residence_id"`
	Amount          decimal.Decimal `json:"amount" binding:"required"`
	Method          string          `json:"method" binding:"required"`
	Date            time.Time       `json:"date" binding:"required" time_format:"2006-01-02"`
	Reference       string          `json:"reference" binding:"required"`
	AllocationMonth string          `json:"allocation_month"`
	CreatedBy       string          `json:"-"`
}

// PaymentResponse represents a recorded payment with its ledger entry
type PaymentResponse struct {
	ID              uuid.UUID       `json:"id"`
	StudentID       uuid.UUID       `json:"student_id"`
	StudentName     string          `json:"student_name"`
	Amount          decimal.Decimal `json:"amount"`
	Method          string          `json:"method"`
	Date            time.Time       `json:"date"`
	Reference       string          `json:"reference"`
	AllocationMonth string          `json:"allocation_month,omitempty"`
	TransactionID   string          `json:"transaction_id"`
}

// PaymentService records student payments. Every payment writes two things
// atomically: the payment record and the ledger entry moving cash against the
// student's receivable.
type PaymentService struct {
	paymentRepo residence.PaymentRepository
	studentRepo residence.StudentRepository
	accountRepo accounting.AccountRepository
	accrual     *appaccounting.AccrualService
	ledger      *appaccounting.LedgerService
	txManager   appaccounting.TransactionManager
	chart       accounting.ChartMap
	logger      *zap.Logger
}

// NewPaymentService creates a new PaymentService
func NewPaymentService(
	paymentRepo residence.PaymentRepository,
	studentRepo residence.StudentRepository,
	accountRepo accounting.AccountRepository,
	accrual *appaccounting.AccrualService,
	ledger *appaccounting.LedgerService,
	txManager appaccounting.TransactionManager,
	chart accounting.ChartMap,
	logger *zap.Logger,
) *PaymentService {
	return &PaymentService{
		paymentRepo: paymentRepo,
		studentRepo: studentRepo,
		accountRepo: accountRepo,
		accrual:     accrual,
		ledger:      ledger,
		txManager:   txManager,
		chart:       chart,
		logger:      logger.Named("payments"),
	}
}

// RecordPayment stores the payment and posts its ledger entry: debit cash,
// credit the student's receivable sub-account. The receivable account is
// created on demand because a payment can arrive before any accrual ran.
func (s *PaymentService) RecordPayment(ctx context.Context, req RecordPaymentRequest) (*PaymentResponse, error) {
	method := residence.PaymentMethod(req.Method)
	student, err := s.studentRepo.FindByID(ctx, req.StudentID)
	if err != nil {
		return nil, shared.NewDomainError("INVALID_INPUT", "Unknown student")
	}

	payment, err := residence.NewPayment(req.StudentID, student.FullName(), req.Amount, method, req.Date, req.Reference)
	if err != nil {
		return nil, err
	}
	payment.LeaseID = req.LeaseID
	payment.ResidenceID = req.ResidenceID
	payment.AllocationMonth = req.AllocationMonth

	var entry *accounting.TransactionEntry
	err = s.txManager.WithinTransaction(ctx, func(ctx context.Context) error {
		if err := s.paymentRepo.Save(ctx, payment); err != nil {
			return err
		}
		entry, err = s.buildPaymentEntry(ctx, payment, req.CreatedBy)
		if err != nil {
			return err
		}
		return s.ledger.PostEntry(ctx, entry)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("payment recorded",
		zap.String("payment_id", payment.ID.String()),
		zap.String("student", payment.StudentName),
		zap.String("amount", payment.Amount.StringFixed(2)),
		zap.String("transaction_id", entry.TransactionID))

	return &PaymentResponse{
		ID:              payment.ID,
		StudentID:       payment.StudentID,
		StudentName:     payment.StudentName,
		Amount:          payment.Amount,
		Method:          string(payment.Method),
		Date:            payment.Date,
		Reference:       payment.Reference,
		AllocationMonth: payment.AllocationMonth,
		TransactionID:   entry.TransactionID,
	}, nil
}

func (s *PaymentService) buildPaymentEntry(ctx context.Context, payment *residence.Payment, createdBy string) (*accounting.TransactionEntry, error) {
	cash, err := s.accountRepo.FindByCode(ctx, s.chart.Cash)
	if err != nil {
		return nil, shared.ErrChartNotConfigured
	}
	ar, err := s.accrual.EnsureStudentReceivableAccount(ctx, payment.StudentID, payment.StudentName)
	if err != nil {
		return nil, err
	}

	description := fmt.Sprintf("Rent received - %s", payment.StudentName)
	if payment.AllocationMonth != "" {
		description = fmt.Sprintf("Rent received for %s - %s", payment.AllocationMonth, payment.StudentName)
	}

	paymentID := payment.ID
	entry, err := accounting.NewTransactionEntry(
		payment.Date,
		description,
		[]accounting.EntryLine{
			{AccountCode: cash.Code, AccountName: cash.Name, AccountType: cash.Type, Debit: payment.Amount, Credit: decimal.Zero},
			{AccountCode: ar.Code, AccountName: ar.Name, AccountType: ar.Type, Debit: decimal.Zero, Credit: payment.Amount},
		},
		accounting.SourceRentalPayment,
		&paymentID,
		"Payment",
		createdBy,
	)
	if err != nil {
		return nil, err
	}
	entry.Reference = payment.Reference
	entry.ResidenceID = payment.ResidenceID
	entry.CashFlowCategory = accounting.CashFlowOperating
	entry.Metadata = accounting.Metadata{
		accounting.MetaStudentID:   payment.StudentID.String(),
		accounting.MetaStudentName: payment.StudentName,
	}
	if payment.AllocationMonth != "" {
		entry.Metadata[accounting.MetaMonthSettled] = payment.AllocationMonth
	}
	return entry, nil
}

// Get returns one payment by ID
func (s *PaymentService) Get(ctx context.Context, id uuid.UUID) (*PaymentResponse, error) {
	payment, err := s.paymentRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return &PaymentResponse{
		ID:              payment.ID,
		StudentID:       payment.StudentID,
		StudentName:     payment.StudentName,
		Amount:          payment.Amount,
		Method:          string(payment.Method),
		Date:            payment.Date,
		Reference:       payment.Reference,
		AllocationMonth: payment.AllocationMonth,
	}, nil
}

// ListByStudent returns a student's payments
func (s *PaymentService) ListByStudent(ctx context.Context, studentID uuid.UUID) ([]PaymentResponse, error) {
	payments, err := s.paymentRepo.FindByStudent(ctx, studentID)
	if err != nil {
		return nil, err
	}
	responses := make([]PaymentResponse, len(payments))
	for i := range payments {
		p := &payments[i]
		responses[i] = PaymentResponse{
			ID:              p.ID,
			StudentID:       p.StudentID,
			StudentName:     p.StudentName,
			Amount:          p.Amount,
			Method:          string(p.Method),
			Date:            p.Date,
			Reference:       p.Reference,
			AllocationMonth: p.AllocationMonth,
		}
	}
	return responses, nil
}
