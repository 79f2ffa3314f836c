package residence

import (
	"context"
	"time"

	"github.com/alamait/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// LeaseFilter defines filtering options for lease queries
type LeaseFilter struct {
	shared.Filter
	StudentID   *uuid.UUID
	ResidenceID *uuid.UUID
	Status      *LeaseStatus
	StartFrom   *time.Time
	StartTo     *time.Time
}

// LeaseRepository defines the interface for lease persistence
type LeaseRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Lease, error)
	FindAll(ctx context.Context, filter LeaseFilter) ([]Lease, error)
	FindAccruable(ctx context.Context, residenceID uuid.UUID, from, to time.Time) ([]Lease, error)
	Save(ctx context.Context, lease *Lease) error
	Count(ctx context.Context, filter LeaseFilter) (int64, error)
}

// PaymentRepository defines the interface for payment persistence
type PaymentRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Payment, error)
	// FindByReference resolves a payment from a ledger entry reference,
	// used by cash-basis reporting to date entries on receipt.
	FindByReference(ctx context.Context, reference string) (*Payment, error)
	FindByStudent(ctx context.Context, studentID uuid.UUID) ([]Payment, error)
	Save(ctx context.Context, payment *Payment) error
}

// VendorRepository defines the interface for vendor persistence
type VendorRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Vendor, error)
	FindByVendorCode(ctx context.Context, vendorCode string) (*Vendor, error)
	FindAllActive(ctx context.Context) ([]Vendor, error)
	FindByAccountCode(ctx context.Context, accountCode string) (*Vendor, error)
	Save(ctx context.Context, vendor *Vendor) error
}

// InstallmentPlanRepository defines the interface for installment persistence
type InstallmentPlanRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*InstallmentPlan, error)
	FindByRequestItem(ctx context.Context, monthlyRequestID uuid.UUID, itemIndex int) (*InstallmentPlan, error)
	FindByRequest(ctx context.Context, monthlyRequestID uuid.UUID) ([]InstallmentPlan, error)
	Save(ctx context.Context, plan *InstallmentPlan) error
}

// StudentRepository defines the interface for student directory lookups
type StudentRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Student, error)
	FindByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]Student, error)
	Save(ctx context.Context, student *Student) error
}
