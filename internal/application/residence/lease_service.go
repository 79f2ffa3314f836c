package residence

import (
	"context"
	"time"

	"github.com/alamait/backend/internal/domain/residence"
	"github.com/alamait/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// LeaseResponse represents a lease in API responses
type LeaseResponse struct {
	ID          uuid.UUID       `json:"id"`
	StudentID   uuid.UUID       `json:"student_id"`
	StudentName string          `json:"student_name"`
	ResidenceID uuid.UUID       `json:"residence_id"`
	RoomID      uuid.UUID       `json:"room_id"`
	StartDate   time.Time       `json:"start_date"`
	EndDate     time.Time       `json:"end_date"`
	MonthlyRent decimal.Decimal `json:"monthly_rent"`
	Status      string          `json:"status"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// NewLeaseResponse maps a domain lease to its API shape
func NewLeaseResponse(l *residence.Lease) LeaseResponse {
	return LeaseResponse{
		ID:          l.ID,
		StudentID:   l.StudentID,
		StudentName: l.StudentName,
		ResidenceID: l.ResidenceID,
		RoomID:      l.RoomID,
		StartDate:   l.StartDate,
		EndDate:     l.EndDate,
		MonthlyRent: l.MonthlyRent,
		Status:      string(l.Status),
		CreatedAt:   l.CreatedAt,
		UpdatedAt:   l.UpdatedAt,
	}
}

// CreateLeaseRequest represents a request to create a lease
type CreateLeaseRequest struct {
	StudentID   uuid.UUID       `json:"student_id" binding:"required"`
	ResidenceID uuid.UUID       `json:"residence_id" binding:"required"`
	RoomID      uuid.UUID       `json:"room_id" binding:"required"`
	StartDate   time.Time       `json:"start_date" binding:"required" time_format:"2006-01-02"`
	EndDate     time.Time       `json:"end_date" binding:"required" time_format:"2006-01-02"`
	MonthlyRent decimal.Decimal `json:"monthly_rent" binding:"required"`
}

// LeaseService manages the lease lifecycle
type LeaseService struct {
	leaseRepo   residence.LeaseRepository
	studentRepo residence.StudentRepository
	logger      *zap.Logger
}

// NewLeaseService creates a new LeaseService
func NewLeaseService(leaseRepo residence.LeaseRepository, studentRepo residence.StudentRepository, logger *zap.Logger) *LeaseService {
	return &LeaseService{
		leaseRepo:   leaseRepo,
		studentRepo: studentRepo,
		logger:      logger.Named("leases"),
	}
}

// Create creates a draft lease, resolving the student's display name from the
// directory so ledger descriptions stay consistent with one spelling.
func (s *LeaseService) Create(ctx context.Context, req CreateLeaseRequest) (*LeaseResponse, error) {
	student, err := s.studentRepo.FindByID(ctx, req.StudentID)
	if err != nil {
		return nil, shared.NewDomainError("INVALID_INPUT", "Unknown student")
	}

	lease, err := residence.NewLease(req.StudentID, student.FullName(), req.ResidenceID, req.RoomID, req.StartDate, req.EndDate, req.MonthlyRent)
	if err != nil {
		return nil, err
	}
	if err := s.leaseRepo.Save(ctx, lease); err != nil {
		return nil, err
	}

	s.logger.Info("lease created",
		zap.String("lease_id", lease.ID.String()),
		zap.String("student", lease.StudentName),
		zap.String("monthly_rent", lease.MonthlyRent.StringFixed(2)))
	resp := NewLeaseResponse(lease)
	return &resp, nil
}

// Get returns one lease by ID
func (s *LeaseService) Get(ctx context.Context, id uuid.UUID) (*LeaseResponse, error) {
	lease, err := s.leaseRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := NewLeaseResponse(lease)
	return &resp, nil
}

// LeaseListFilter defines the query surface for listing leases
type LeaseListFilter struct {
	StudentID   *uuid.UUID `form:"student_id"`
	ResidenceID *uuid.UUID `form:"residence_id"`
	Status      string     `form:"status"`
	Page        int        `form:"page"`
	PageSize    int        `form:"page_size"`
}

// List returns leases matching the filter with a total count
func (s *LeaseService) List(ctx context.Context, filter LeaseListFilter) ([]LeaseResponse, int64, error) {
	domainFilter := residence.LeaseFilter{
		Filter:      shared.DefaultFilter(),
		StudentID:   filter.StudentID,
		ResidenceID: filter.ResidenceID,
	}
	if filter.Page > 0 {
		domainFilter.Page = filter.Page
	}
	if filter.PageSize > 0 {
		domainFilter.PageSize = filter.PageSize
	}
	if filter.Status != "" {
		status := residence.LeaseStatus(filter.Status)
		if !status.IsValid() {
			return nil, 0, shared.NewDomainError("INVALID_INPUT", "Invalid lease status")
		}
		domainFilter.Status = &status
	}

	leases, err := s.leaseRepo.FindAll(ctx, domainFilter)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.leaseRepo.Count(ctx, domainFilter)
	if err != nil {
		return nil, 0, err
	}

	responses := make([]LeaseResponse, len(leases))
	for i := range leases {
		responses[i] = NewLeaseResponse(&leases[i])
	}
	return responses, total, nil
}

// transition applies one lifecycle mutation and persists the result
func (s *LeaseService) transition(ctx context.Context, id uuid.UUID, apply func(*residence.Lease) error) (*LeaseResponse, error) {
	lease, err := s.leaseRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := apply(lease); err != nil {
		return nil, err
	}
	if err := s.leaseRepo.Save(ctx, lease); err != nil {
		return nil, err
	}
	s.logger.Info("lease status changed",
		zap.String("lease_id", lease.ID.String()),
		zap.String("status", string(lease.Status)))
	resp := NewLeaseResponse(lease)
	return &resp, nil
}

// Sign transitions a draft lease to signed, making it accruable
func (s *LeaseService) Sign(ctx context.Context, id uuid.UUID) (*LeaseResponse, error) {
	return s.transition(ctx, id, (*residence.Lease).Sign)
}

// Activate transitions a signed lease to active
func (s *LeaseService) Activate(ctx context.Context, id uuid.UUID) (*LeaseResponse, error) {
	return s.transition(ctx, id, (*residence.Lease).Activate)
}

// Expire transitions an active lease to expired
func (s *LeaseService) Expire(ctx context.Context, id uuid.UUID) (*LeaseResponse, error) {
	return s.transition(ctx, id, (*residence.Lease).Expire)
}

// Cancel cancels a non-terminal lease
func (s *LeaseService) Cancel(ctx context.Context, id uuid.UUID) (*LeaseResponse, error) {
	return s.transition(ctx, id, (*residence.Lease).Cancel)
}
