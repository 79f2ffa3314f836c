package residence

import (
	"time"

	"github.com/alamait/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// LeaseStatus represents the lifecycle status of a lease
type LeaseStatus string

const (
	LeaseStatusDraft     LeaseStatus = "draft"
	LeaseStatusSigned    LeaseStatus = "signed"
	LeaseStatusActive    LeaseStatus = "active"
	LeaseStatusExpired   LeaseStatus = "expired"
	LeaseStatusCancelled LeaseStatus = "cancelled"
)

// IsValid checks if the status is valid
func (s LeaseStatus) IsValid() bool {
	switch s {
	case LeaseStatusDraft, LeaseStatusSigned, LeaseStatusActive, LeaseStatusExpired, LeaseStatusCancelled:
		return true
	}
	return false
}

// String returns the string representation
func (s LeaseStatus) String() string {
	return string(s)
}

// IsAccruable returns true if rental income may be accrued for this status
func (s LeaseStatus) IsAccruable() bool {
	return s == LeaseStatusSigned || s == LeaseStatusActive
}

// Lease binds a student to a room for a term at a monthly rent.
// It drives the rental income accrual schedule.
type Lease struct {
	shared.BaseAggregateRoot
	StudentID   uuid.UUID
	StudentName string
	ResidenceID uuid.UUID
	RoomID      uuid.UUID
	StartDate   time.Time
	EndDate     time.Time
	MonthlyRent decimal.Decimal
	Status      LeaseStatus
}

// NewLease creates a new draft lease after validating the term and rent
func NewLease(studentID uuid.UUID, studentName string, residenceID, roomID uuid.UUID, start, end time.Time, monthlyRent decimal.Decimal) (*Lease, error) {
	if studentID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_INPUT", "Lease requires a student")
	}
	if !end.After(start) {
		return nil, shared.NewDomainError("INVALID_INPUT", "Lease end date must be after start date")
	}
	if !monthlyRent.IsPositive() {
		return nil, shared.NewDomainError("INVALID_INPUT", "Monthly rent must be positive")
	}
	return &Lease{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		StudentID:         studentID,
		StudentName:       studentName,
		ResidenceID:       residenceID,
		RoomID:            roomID,
		StartDate:         start,
		EndDate:           end,
		MonthlyRent:       monthlyRent,
		Status:            LeaseStatusDraft,
	}, nil
}

// Sign transitions the lease from draft to signed
func (l *Lease) Sign() error {
	if l.Status != LeaseStatusDraft {
		return shared.NewDomainError("INVALID_STATE", "Only draft leases can be signed")
	}
	l.Status = LeaseStatusSigned
	l.UpdatedAt = time.Now()
	return nil
}

// Activate transitions the lease from signed to active
func (l *Lease) Activate() error {
	if l.Status != LeaseStatusSigned {
		return shared.NewDomainError("INVALID_STATE", "Only signed leases can be activated")
	}
	l.Status = LeaseStatusActive
	l.UpdatedAt = time.Now()
	return nil
}

// Expire transitions an active lease to expired
func (l *Lease) Expire() error {
	if l.Status != LeaseStatusActive {
		return shared.NewDomainError("INVALID_STATE", "Only active leases can expire")
	}
	l.Status = LeaseStatusExpired
	l.UpdatedAt = time.Now()
	return nil
}

// Cancel cancels a lease that has not yet expired
func (l *Lease) Cancel() error {
	if l.Status == LeaseStatusExpired || l.Status == LeaseStatusCancelled {
		return shared.NewDomainError("INVALID_STATE", "Lease is already terminal")
	}
	l.Status = LeaseStatusCancelled
	l.UpdatedAt = time.Now()
	return nil
}

// AccrualPeriods returns the first day of each calendar month in the lease
// term, start month through end month inclusive.
func (l *Lease) AccrualPeriods() []time.Time {
	periods := make([]time.Time, 0, 12)
	cursor := time.Date(l.StartDate.Year(), l.StartDate.Month(), 1, 0, 0, 0, 0, time.UTC)
	last := time.Date(l.EndDate.Year(), l.EndDate.Month(), 1, 0, 0, 0, 0, time.UTC)
	for !cursor.After(last) {
		periods = append(periods, cursor)
		cursor = cursor.AddDate(0, 1, 0)
	}
	return periods
}
