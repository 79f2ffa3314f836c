package models

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/alamait/backend/internal/domain/residence"
)

// StudentModel is the persistence model for the student directory
type StudentModel struct {
	AggregateModel
	FirstName string `gorm:"type:varchar(100);not null"`
	LastName  string `gorm:"type:varchar(100);not null"`
	Email     string `gorm:"type:varchar(200);index"`
	Phone     string `gorm:"type:varchar(30)"`
}

func (StudentModel) TableName() string {
	return "students"
}

func (m *StudentModel) ToDomain() *residence.Student {
	return &residence.Student{
		BaseAggregateRoot: m.ToDomainAggregateRoot(),
		FirstName:         m.FirstName,
		LastName:          m.LastName,
		Email:             m.Email,
		Phone:             m.Phone,
	}
}

func (m *StudentModel) FromDomain(s *residence.Student) {
	m.FromDomainAggregateRoot(s.BaseAggregateRoot)
	m.FirstName = s.FirstName
	m.LastName = s.LastName
	m.Email = s.Email
	m.Phone = s.Phone
}

// LeaseModel is the persistence model for the Lease aggregate
type LeaseModel struct {
	AggregateModel
	StudentID   uuid.UUID             `gorm:"type:uuid;not null;index"`
	StudentName string                `gorm:"type:varchar(200);not null"`
	ResidenceID uuid.UUID             `gorm:"type:uuid;not null;index"`
	RoomID      uuid.UUID             `gorm:"type:uuid;not null"`
	StartDate   time.Time             `gorm:"not null;index"`
	EndDate     time.Time             `gorm:"not null"`
	MonthlyRent decimal.Decimal       `gorm:"type:decimal(18,4);not null"`
	Status      residence.LeaseStatus `gorm:"type:varchar(20);not null;index"`
}

func (LeaseModel) TableName() string {
	return "leases"
}

func (m *LeaseModel) ToDomain() *residence.Lease {
	return &residence.Lease{
		BaseAggregateRoot: m.ToDomainAggregateRoot(),
		StudentID:         m.StudentID,
		StudentName:       m.StudentName,
		ResidenceID:       m.ResidenceID,
		RoomID:            m.RoomID,
		StartDate:         m.StartDate,
		EndDate:           m.EndDate,
		MonthlyRent:       m.MonthlyRent,
		Status:            m.Status,
	}
}

func (m *LeaseModel) FromDomain(l *residence.Lease) {
	m.FromDomainAggregateRoot(l.BaseAggregateRoot)
	m.StudentID = l.StudentID
	m.StudentName = l.StudentName
	m.ResidenceID = l.ResidenceID
	m.RoomID = l.RoomID
	m.StartDate = l.StartDate
	m.EndDate = l.EndDate
	m.MonthlyRent = l.MonthlyRent
	m.Status = l.Status
}

// PaymentModel is the persistence model for student payments
type PaymentModel struct {
	AggregateModel
	StudentID       uuid.UUID               `gorm:"type:uuid;not null;index"`
	StudentName     string                  `gorm:"type:varchar(200);not null"`
	LeaseID         *uuid.UUID              `gorm:"type:uuid;index"`
	ResidenceID     *uuid.UUID              `gorm:"type:uuid;index"`
	Amount          decimal.Decimal         `gorm:"type:decimal(18,4);not null"`
	Method          residence.PaymentMethod `gorm:"type:varchar(20);not null"`
	Date            time.Time               `gorm:"not null;index"`
	Reference       string                  `gorm:"type:varchar(100);not null;index"`
	AllocationMonth string                  `gorm:"type:varchar(7)"`
}

func (PaymentModel) TableName() string {
	return "payments"
}

func (m *PaymentModel) ToDomain() *residence.Payment {
	return &residence.Payment{
		BaseAggregateRoot: m.ToDomainAggregateRoot(),
		StudentID:         m.StudentID,
		StudentName:       m.StudentName,
		LeaseID:           m.LeaseID,
		ResidenceID:       m.ResidenceID,
		Amount:            m.Amount,
		Method:            m.Method,
		Date:              m.Date,
		Reference:         m.Reference,
		AllocationMonth:   m.AllocationMonth,
	}
}

func (m *PaymentModel) FromDomain(p *residence.Payment) {
	m.FromDomainAggregateRoot(p.BaseAggregateRoot)
	m.StudentID = p.StudentID
	m.StudentName = p.StudentName
	m.LeaseID = p.LeaseID
	m.ResidenceID = p.ResidenceID
	m.Amount = p.Amount
	m.Method = p.Method
	m.Date = p.Date
	m.Reference = p.Reference
	m.AllocationMonth = p.AllocationMonth
}

// VendorModel is the persistence model for vendors
type VendorModel struct {
	AggregateModel
	VendorCode          string          `gorm:"type:varchar(30);not null;uniqueIndex:idx_vendors_code"`
	Name                string          `gorm:"type:varchar(200);not null"`
	ContactEmail        string          `gorm:"type:varchar(200)"`
	ChartOfAccountsCode string          `gorm:"type:varchar(30);not null;uniqueIndex:idx_vendors_account_code"`
	CurrentBalance      decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	BalanceSyncedAt     *time.Time
	IsActive            bool `gorm:"not null;default:true;index"`
}

func (VendorModel) TableName() string {
	return "vendors"
}

func (m *VendorModel) ToDomain() *residence.Vendor {
	return &residence.Vendor{
		BaseAggregateRoot:   m.ToDomainAggregateRoot(),
		VendorCode:          m.VendorCode,
		Name:                m.Name,
		ContactEmail:        m.ContactEmail,
		ChartOfAccountsCode: m.ChartOfAccountsCode,
		CurrentBalance:      m.CurrentBalance,
		BalanceSyncedAt:     m.BalanceSyncedAt,
		IsActive:            m.IsActive,
	}
}

func (m *VendorModel) FromDomain(v *residence.Vendor) {
	m.FromDomainAggregateRoot(v.BaseAggregateRoot)
	m.VendorCode = v.VendorCode
	m.Name = v.Name
	m.ContactEmail = v.ContactEmail
	m.ChartOfAccountsCode = v.ChartOfAccountsCode
	m.CurrentBalance = v.CurrentBalance
	m.BalanceSyncedAt = v.BalanceSyncedAt
	m.IsActive = v.IsActive
}

// InstallmentsJSON stores a plan's installments as a JSONB document
type InstallmentsJSON []residence.Installment

// Value implements driver.Valuer for JSONB storage
func (j InstallmentsJSON) Value() (driver.Value, error) {
	if j == nil {
		return "[]", nil
	}
	return json.Marshal(j)
}

// Scan implements sql.Scanner for JSONB storage
func (j *InstallmentsJSON) Scan(value interface{}) error {
	if value == nil {
		*j = InstallmentsJSON{}
		return nil
	}
	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	default:
		return errors.New("failed to scan InstallmentsJSON: unsupported type")
	}
	if len(bytes) == 0 {
		*j = InstallmentsJSON{}
		return nil
	}
	return json.Unmarshal(bytes, j)
}

// InstallmentPlanModel is the persistence model for installment plans. One
// plan per monthly-request item, enforced by the unique index on
// (monthly_request_id, item_index).
type InstallmentPlanModel struct {
	AggregateModel
	MonthlyRequestID uuid.UUID        `gorm:"type:uuid;not null;uniqueIndex:idx_plans_request_item,priority:1"`
	ItemIndex        int              `gorm:"not null;uniqueIndex:idx_plans_request_item,priority:2"`
	ItemDescription  string           `gorm:"type:varchar(500)"`
	TotalCost        decimal.Decimal  `gorm:"type:decimal(18,4);not null"`
	Installments     InstallmentsJSON `gorm:"type:jsonb;not null;default:'[]'"`
}

func (InstallmentPlanModel) TableName() string {
	return "installment_plans"
}

func (m *InstallmentPlanModel) ToDomain() *residence.InstallmentPlan {
	return &residence.InstallmentPlan{
		BaseAggregateRoot: m.ToDomainAggregateRoot(),
		MonthlyRequestID:  m.MonthlyRequestID,
		ItemIndex:         m.ItemIndex,
		ItemDescription:   m.ItemDescription,
		TotalCost:         m.TotalCost,
		Installments:      m.Installments,
	}
}

func (m *InstallmentPlanModel) FromDomain(p *residence.InstallmentPlan) {
	m.FromDomainAggregateRoot(p.BaseAggregateRoot)
	m.MonthlyRequestID = p.MonthlyRequestID
	m.ItemIndex = p.ItemIndex
	m.ItemDescription = p.ItemDescription
	m.TotalCost = p.TotalCost
	m.Installments = p.Installments
}
