package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/alamait/backend/internal/domain/accounting"
	"github.com/alamait/backend/internal/domain/shared/valueobject"
)

// AccountModel is the persistence model for the chart-of-accounts Account
type AccountModel struct {
	AggregateModel
	Code               string                 `gorm:"type:varchar(30);not null;uniqueIndex:idx_accounts_code"`
	Name               string                 `gorm:"type:varchar(200);not null"`
	Type               accounting.AccountType `gorm:"type:varchar(20);not null;index"`
	Category           string                 `gorm:"type:varchar(100)"`
	Subcategory        string                 `gorm:"type:varchar(100)"`
	ParentCode         string                 `gorm:"type:varchar(30);index"`
	Level              int                    `gorm:"not null;default:1"`
	IsActive           bool                   `gorm:"not null;default:true;index"`
	OpeningBalance     decimal.Decimal        `gorm:"type:decimal(18,4);not null;default:0"`
	OpeningBalanceDate *time.Time
	Currency           string `gorm:"type:varchar(3);not null;default:'USD'"`
}

func (AccountModel) TableName() string {
	return "accounts"
}

// ToDomain converts the persistence model to a domain Account
func (m *AccountModel) ToDomain() *accounting.Account {
	currency := valueobject.Currency(m.Currency)
	if currency == "" {
		currency = valueobject.DefaultCurrency
	}
	opening, _ := valueobject.NewMoney(m.OpeningBalance, currency)

	return &accounting.Account{
		BaseAggregateRoot:  m.ToDomainAggregateRoot(),
		Code:               m.Code,
		Name:               m.Name,
		Type:               m.Type,
		Category:           m.Category,
		Subcategory:        m.Subcategory,
		ParentCode:         m.ParentCode,
		Level:              m.Level,
		IsActive:           m.IsActive,
		OpeningBalance:     opening,
		OpeningBalanceDate: m.OpeningBalanceDate,
	}
}

// FromDomain populates the persistence model from a domain Account
func (m *AccountModel) FromDomain(a *accounting.Account) {
	m.FromDomainAggregateRoot(a.BaseAggregateRoot)
	m.Code = a.Code
	m.Name = a.Name
	m.Type = a.Type
	m.Category = a.Category
	m.Subcategory = a.Subcategory
	m.ParentCode = a.ParentCode
	m.Level = a.Level
	m.IsActive = a.IsActive
	m.OpeningBalance = a.OpeningBalance.Amount()
	m.OpeningBalanceDate = a.OpeningBalanceDate
	m.Currency = string(a.Currency())
}

// TransactionEntryModel is the persistence model for a ledger entry. Lines
// and metadata are stored as JSONB; the partial unique index on
// (source, source_id) for accrual sources backs the accrual idempotency
// guarantee at the storage level.
type TransactionEntryModel struct {
	AggregateModel
	TransactionID    string                 `gorm:"type:varchar(40);not null;uniqueIndex:idx_entries_txn_id"`
	Date             time.Time              `gorm:"not null;index"`
	Description      string                 `gorm:"type:text"`
	Reference        string                 `gorm:"type:varchar(100);index"`
	ResidenceID      *uuid.UUID             `gorm:"type:uuid;index"`
	Lines            accounting.EntryLines  `gorm:"type:jsonb;not null;default:'[]'"`
	TotalDebit       decimal.Decimal        `gorm:"type:decimal(18,4);not null"`
	TotalCredit      decimal.Decimal        `gorm:"type:decimal(18,4);not null"`
	Source           accounting.EntrySource `gorm:"type:varchar(40);not null;index"`
	SourceID         *uuid.UUID             `gorm:"type:uuid;index"`
	SourceModel      string                 `gorm:"type:varchar(60)"`
	CreatedBy        string                 `gorm:"type:varchar(100)"`
	Status           accounting.EntryStatus `gorm:"type:varchar(10);not null;default:'posted';index"`
	AccountingPeriod string                 `gorm:"type:varchar(7);not null;index"`
	CashFlowCategory string                 `gorm:"type:varchar(10)"`
	Metadata         accounting.Metadata    `gorm:"type:jsonb;default:'{}'"`
}

func (TransactionEntryModel) TableName() string {
	return "transaction_entries"
}

// ToDomain converts the persistence model to a domain TransactionEntry
func (m *TransactionEntryModel) ToDomain() *accounting.TransactionEntry {
	return &accounting.TransactionEntry{
		BaseAggregateRoot: m.ToDomainAggregateRoot(),
		TransactionID:     m.TransactionID,
		Date:              m.Date,
		Description:       m.Description,
		Reference:         m.Reference,
		ResidenceID:       m.ResidenceID,
		Lines:             m.Lines,
		TotalDebit:        m.TotalDebit,
		TotalCredit:       m.TotalCredit,
		Source:            m.Source,
		SourceID:          m.SourceID,
		SourceModel:       m.SourceModel,
		CreatedBy:         m.CreatedBy,
		Status:            m.Status,
		AccountingPeriod:  m.AccountingPeriod,
		CashFlowCategory:  accounting.CashFlowCategory(m.CashFlowCategory),
		Metadata:          m.Metadata,
	}
}

// FromDomain populates the persistence model from a domain TransactionEntry
func (m *TransactionEntryModel) FromDomain(e *accounting.TransactionEntry) {
	m.FromDomainAggregateRoot(e.BaseAggregateRoot)
	m.TransactionID = e.TransactionID
	m.Date = e.Date
	m.Description = e.Description
	m.Reference = e.Reference
	m.ResidenceID = e.ResidenceID
	m.Lines = e.Lines
	m.TotalDebit = e.TotalDebit
	m.TotalCredit = e.TotalCredit
	m.Source = e.Source
	m.SourceID = e.SourceID
	m.SourceModel = e.SourceModel
	m.CreatedBy = e.CreatedBy
	m.Status = e.Status
	m.AccountingPeriod = e.AccountingPeriod
	m.CashFlowCategory = string(e.CashFlowCategory)
	m.Metadata = e.Metadata
}
