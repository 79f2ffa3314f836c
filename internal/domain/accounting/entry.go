package accounting

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/alamait/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// EntrySource identifies the business operation that produced a ledger entry
type EntrySource string

const (
	SourceRentalAccrual           EntrySource = "rental_accrual"
	SourceRentalAccrualReversal   EntrySource = "rental_accrual_reversal"
	SourcePayment                 EntrySource = "payment"
	SourceRentalPayment           EntrySource = "rental_payment"
	SourceExpensePayment          EntrySource = "expense_payment"
	SourceManual                  EntrySource = "manual"
	SourceInstallmentPayment      EntrySource = "installment_payment"
	SourceVendorPayment           EntrySource = "vendor_payment"
	SourceVendorPaymentSettlement EntrySource = "vendor_payment_settlement"
	SourceMaintenanceExpense      EntrySource = "maintenance_expense"
	SourcePaymentCollection       EntrySource = "payment_collection"
	SourceBankTransfer            EntrySource = "bank_transfer"
	SourceAdvancePayment          EntrySource = "advance_payment"
	SourceDebtSettlement          EntrySource = "debt_settlement"
	SourceCurrentPayment          EntrySource = "current_payment"
	SourceOpeningBalance          EntrySource = "opening_balance"
)

// ReversalSource returns the source tag used for reversals of this source
func (s EntrySource) ReversalSource() EntrySource {
	return EntrySource(string(s) + "_reversal")
}

// IsReversal returns true if the source tags a reversal entry
func (s EntrySource) IsReversal() bool {
	return strings.HasSuffix(string(s), "_reversal")
}

// CashRelevantSources is the fixed set of sources that represent cash movement
// and therefore participate in the cash flow statement.
var CashRelevantSources = []EntrySource{
	SourceRentalPayment,
	SourceExpensePayment,
	SourceManual,
	SourcePaymentCollection,
	SourceBankTransfer,
	SourcePayment,
	SourceAdvancePayment,
	SourceDebtSettlement,
	SourceCurrentPayment,
}

// IsCashRelevant returns true if the source participates in cash flow reporting
func (s EntrySource) IsCashRelevant() bool {
	for _, cs := range CashRelevantSources {
		if s == cs {
			return true
		}
	}
	return false
}

// EntryStatus represents the lifecycle status of a transaction entry
type EntryStatus string

const (
	EntryStatusPosted EntryStatus = "posted"
	EntryStatusVoided EntryStatus = "voided"
)

// IsValid checks if the status is valid
func (s EntryStatus) IsValid() bool {
	return s == EntryStatusPosted || s == EntryStatusVoided
}

// CashFlowCategory classifies an entry for the cash flow statement.
// It is stamped at posting time; the heuristic classifier only backfills
// legacy rows that predate the field.
type CashFlowCategory string

const (
	CashFlowOperating    CashFlowCategory = "operating"
	CashFlowInvesting    CashFlowCategory = "investing"
	CashFlowFinancing    CashFlowCategory = "financing"
	CashFlowUnclassified CashFlowCategory = ""
)

// IsValid checks if the category is valid
func (c CashFlowCategory) IsValid() bool {
	switch c {
	case CashFlowOperating, CashFlowInvesting, CashFlowFinancing, CashFlowUnclassified:
		return true
	}
	return false
}

// Metadata carries free-form context on a ledger entry, stored as JSONB
type Metadata map[string]interface{}

// Value implements driver.Valuer for JSONB storage
func (m Metadata) Value() (driver.Value, error) {
	if m == nil {
		return "{}", nil
	}
	return json.Marshal(m)
}

// Scan implements sql.Scanner for JSONB storage
func (m *Metadata) Scan(value interface{}) error {
	if value == nil {
		*m = Metadata{}
		return nil
	}
	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	default:
		return errors.New("failed to scan Metadata: unsupported type")
	}
	if len(bytes) == 0 {
		*m = Metadata{}
		return nil
	}
	return json.Unmarshal(bytes, m)
}

// GetString returns a string metadata value, or "" when absent
func (m Metadata) GetString(key string) string {
	if v, ok := m[key].(string); ok {
		return v
	}
	return ""
}

// GetBool returns a boolean metadata value, or false when absent
func (m Metadata) GetBool(key string) bool {
	if v, ok := m[key].(bool); ok {
		return v
	}
	return false
}

// Well-known metadata keys
const (
	MetaOriginalTransactionID = "originalTransactionId"
	MetaType                  = "type"
	MetaMonthSettled          = "monthSettled"
	MetaAccrualMonth          = "accrualMonth"
	MetaAccrualYear           = "accrualYear"
	MetaIsForfeiture          = "isForfeiture"
	MetaStudentID             = "studentId"
	MetaStudentName           = "studentName"
	MetaNegotiatedAdjustment  = "negotiated_payment_adjustment"
)

// EntryLine is a single debit or credit against one account within an entry
type EntryLine struct {
	AccountCode string          `json:"account_code"`
	AccountName string          `json:"account_name"`
	AccountType AccountType     `json:"account_type"`
	Debit       decimal.Decimal `json:"debit"`
	Credit      decimal.Decimal `json:"credit"`
	Description string          `json:"description,omitempty"`
}

// Validate checks that the line has exactly one positive side and no negatives
func (l EntryLine) Validate() error {
	if l.AccountCode == "" {
		return shared.NewDomainError("INVALID_INPUT", "Entry line account code is required")
	}
	if l.Debit.IsNegative() || l.Credit.IsNegative() {
		return shared.NewDomainError("INVALID_INPUT", "Entry line amounts cannot be negative")
	}
	debitSet := l.Debit.IsPositive()
	creditSet := l.Credit.IsPositive()
	if debitSet == creditSet {
		return shared.NewDomainError("INVALID_INPUT", "Entry line must have exactly one of debit or credit greater than zero")
	}
	return nil
}

// Swapped returns a copy of the line with debit and credit sides exchanged
func (l EntryLine) Swapped() EntryLine {
	return EntryLine{
		AccountCode: l.AccountCode,
		AccountName: l.AccountName,
		AccountType: l.AccountType,
		Debit:       l.Credit,
		Credit:      l.Debit,
		Description: l.Description,
	}
}

// EntryLines is a slice of EntryLine stored as JSONB
type EntryLines []EntryLine

// Value implements driver.Valuer for JSONB storage
func (l EntryLines) Value() (driver.Value, error) {
	if l == nil {
		return "[]", nil
	}
	return json.Marshal(l)
}

// Scan implements sql.Scanner for JSONB storage
func (l *EntryLines) Scan(value interface{}) error {
	if value == nil {
		*l = EntryLines{}
		return nil
	}
	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	default:
		return errors.New("failed to scan EntryLines: unsupported type")
	}
	if len(bytes) == 0 {
		*l = EntryLines{}
		return nil
	}
	return json.Unmarshal(bytes, l)
}

// PeriodKey formats a date as the accounting period key "YYYY-MM"
func PeriodKey(date time.Time) string {
	return date.Format("2006-01")
}

// NewTransactionID generates a human-scannable unique transaction identifier
func NewTransactionID(date time.Time) string {
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:6])
	return "TXN-" + date.Format("20060102") + "-" + suffix
}

// TransactionEntry is an immutable, balanced double-entry ledger record.
// Corrections are made by posting new offsetting entries, never by mutation.
type TransactionEntry struct {
	shared.BaseAggregateRoot
	TransactionID    string
	Date             time.Time
	Description      string
	Reference        string
	ResidenceID      *uuid.UUID
	Lines            EntryLines
	TotalDebit       decimal.Decimal
	TotalCredit      decimal.Decimal
	Source           EntrySource
	SourceID         *uuid.UUID
	SourceModel      string
	CreatedBy        string
	Status           EntryStatus
	AccountingPeriod string
	CashFlowCategory CashFlowCategory
	Metadata         Metadata
}

// NewTransactionEntry constructs a balanced entry or rejects it before it can
// ever reach persistence. Sum of debits must equal sum of credits and every
// line must carry exactly one positive side.
func NewTransactionEntry(
	date time.Time,
	description string,
	lines []EntryLine,
	source EntrySource,
	sourceID *uuid.UUID,
	sourceModel string,
	createdBy string,
) (*TransactionEntry, error) {
	if len(lines) == 0 {
		return nil, shared.NewDomainError("INVALID_INPUT", "Transaction entry requires at least one line")
	}
	if source == "" {
		return nil, shared.NewDomainError("INVALID_INPUT", "Transaction entry source is required")
	}

	totalDebit := decimal.Zero
	totalCredit := decimal.Zero
	for _, line := range lines {
		if err := line.Validate(); err != nil {
			return nil, err
		}
		totalDebit = totalDebit.Add(line.Debit)
		totalCredit = totalCredit.Add(line.Credit)
	}
	if !totalDebit.Equal(totalCredit) {
		return nil, shared.ErrUnbalancedEntry
	}

	return &TransactionEntry{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		TransactionID:     NewTransactionID(date),
		Date:              date,
		Description:       description,
		Lines:             append(EntryLines{}, lines...),
		TotalDebit:        totalDebit,
		TotalCredit:       totalCredit,
		Source:            source,
		SourceID:          sourceID,
		SourceModel:       sourceModel,
		CreatedBy:         createdBy,
		Status:            EntryStatusPosted,
		AccountingPeriod:  PeriodKey(date),
		Metadata:          Metadata{},
	}, nil
}

// Reverse produces a new entry with every line's debit and credit swapped,
// tagged with the reversal source and a reference back to the original.
// The original entry is left untouched.
func (e *TransactionEntry) Reverse(createdBy string, reversalDate time.Time) (*TransactionEntry, error) {
	if e.Status != EntryStatusPosted {
		return nil, shared.NewDomainError("INVALID_STATE", "Only posted entries can be reversed")
	}
	if e.Source.IsReversal() {
		return nil, shared.NewDomainError("INVALID_STATE", "A reversal entry cannot be reversed again")
	}

	swapped := make([]EntryLine, len(e.Lines))
	for i, line := range e.Lines {
		swapped[i] = line.Swapped()
	}

	reversal, err := NewTransactionEntry(
		reversalDate,
		"Reversal of "+e.TransactionID+": "+e.Description,
		swapped,
		e.Source.ReversalSource(),
		e.SourceID,
		e.SourceModel,
		createdBy,
	)
	if err != nil {
		return nil, err
	}
	reversal.Reference = e.TransactionID
	reversal.ResidenceID = e.ResidenceID
	reversal.CashFlowCategory = e.CashFlowCategory
	reversal.Metadata = Metadata{MetaOriginalTransactionID: e.TransactionID}
	return reversal, nil
}

// Void marks the entry as voided without mutating its financial content
func (e *TransactionEntry) Void() error {
	if e.Status == EntryStatusVoided {
		return shared.NewDomainError("INVALID_STATE", "Transaction entry is already voided")
	}
	e.Status = EntryStatusVoided
	e.UpdatedAt = time.Now()
	return nil
}

// TouchesAccount returns true if any line debits or credits the account code
func (e *TransactionEntry) TouchesAccount(code string) bool {
	for _, line := range e.Lines {
		if line.AccountCode == code {
			return true
		}
	}
	return false
}

// DebitTotalFor sums the debits posted to the account code
func (e *TransactionEntry) DebitTotalFor(code string) decimal.Decimal {
	total := decimal.Zero
	for _, line := range e.Lines {
		if line.AccountCode == code {
			total = total.Add(line.Debit)
		}
	}
	return total
}

// CreditTotalFor sums the credits posted to the account code
func (e *TransactionEntry) CreditTotalFor(code string) decimal.Decimal {
	total := decimal.Zero
	for _, line := range e.Lines {
		if line.AccountCode == code {
			total = total.Add(line.Credit)
		}
	}
	return total
}
