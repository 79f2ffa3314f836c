package residence

import (
	"strings"
	"time"

	"github.com/alamait/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PaymentMethod represents how a payment was made
type PaymentMethod string

const (
	PaymentMethodCash         PaymentMethod = "cash"
	PaymentMethodBankTransfer PaymentMethod = "bank_transfer"
	PaymentMethodEcocash      PaymentMethod = "ecocash"
	PaymentMethodCard         PaymentMethod = "card"
)

// IsValid checks if the payment method is valid
func (m PaymentMethod) IsValid() bool {
	switch m {
	case PaymentMethodCash, PaymentMethodBankTransfer, PaymentMethodEcocash, PaymentMethodCard:
		return true
	}
	return false
}

// Payment records cash received from a student. Date is the receipt date,
// which the cash-basis cash flow statement uses instead of the booking date.
type Payment struct {
	shared.BaseAggregateRoot
	StudentID       uuid.UUID
	StudentName     string
	LeaseID         *uuid.UUID
	ResidenceID     *uuid.UUID
	Amount          decimal.Decimal
	Method          PaymentMethod
	Date            time.Time
	Reference       string
	AllocationMonth string // "YYYY-MM" the payment settles, when known
}

// NewPayment creates a new payment record
func NewPayment(studentID uuid.UUID, studentName string, amount decimal.Decimal, method PaymentMethod, date time.Time, reference string) (*Payment, error) {
	if studentID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_INPUT", "Payment requires a student")
	}
	if !amount.IsPositive() {
		return nil, shared.NewDomainError("INVALID_INPUT", "Payment amount must be positive")
	}
	if !method.IsValid() {
		return nil, shared.NewDomainError("INVALID_INPUT", "Invalid payment method")
	}
	if strings.TrimSpace(reference) == "" {
		return nil, shared.NewDomainError("INVALID_INPUT", "Payment reference is required")
	}
	return &Payment{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		StudentID:         studentID,
		StudentName:       studentName,
		Amount:            amount,
		Method:            method,
		Date:              date,
		Reference:         strings.TrimSpace(reference),
	}, nil
}
