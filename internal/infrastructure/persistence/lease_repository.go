package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/alamait/backend/internal/domain/residence"
	"github.com/alamait/backend/internal/domain/shared"
	"github.com/alamait/backend/internal/infrastructure/persistence/models"
)

// GormLeaseRepository implements residence.LeaseRepository using GORM
type GormLeaseRepository struct {
	db *gorm.DB
}

// NewGormLeaseRepository creates a new GormLeaseRepository
func NewGormLeaseRepository(db *gorm.DB) *GormLeaseRepository {
	return &GormLeaseRepository{db: db}
}

func (r *GormLeaseRepository) FindByID(ctx context.Context, id uuid.UUID) (*residence.Lease, error) {
	var model models.LeaseModel
	if err := dbFromContext(ctx, r.db).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

func (r *GormLeaseRepository) FindAll(ctx context.Context, filter residence.LeaseFilter) ([]residence.Lease, error) {
	var rows []models.LeaseModel
	query := r.applyFilter(dbFromContext(ctx, r.db).Model(&models.LeaseModel{}), filter)
	query = applyPagination(query, filter.Filter, "start_date DESC")
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	return toDomainLeases(rows), nil
}

// FindAccruable finds the signed and active leases of a residence whose term
// overlaps the given window. These are the leases the accrual run considers.
func (r *GormLeaseRepository) FindAccruable(ctx context.Context, residenceID uuid.UUID, from, to time.Time) ([]residence.Lease, error) {
	var rows []models.LeaseModel
	if err := dbFromContext(ctx, r.db).
		Where("residence_id = ?", residenceID).
		Where("status IN ?", []residence.LeaseStatus{residence.LeaseStatusSigned, residence.LeaseStatusActive}).
		Where("start_date <= ? AND end_date >= ?", to, from).
		Order("start_date ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return toDomainLeases(rows), nil
}

func (r *GormLeaseRepository) Save(ctx context.Context, lease *residence.Lease) error {
	var model models.LeaseModel
	model.FromDomain(lease)
	return dbFromContext(ctx, r.db).Save(&model).Error
}

func (r *GormLeaseRepository) Count(ctx context.Context, filter residence.LeaseFilter) (int64, error) {
	var count int64
	query := r.applyFilter(dbFromContext(ctx, r.db).Model(&models.LeaseModel{}), filter)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *GormLeaseRepository) applyFilter(query *gorm.DB, filter residence.LeaseFilter) *gorm.DB {
	if filter.StudentID != nil {
		query = query.Where("student_id = ?", *filter.StudentID)
	}
	if filter.ResidenceID != nil {
		query = query.Where("residence_id = ?", *filter.ResidenceID)
	}
	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}
	if filter.StartFrom != nil {
		query = query.Where("start_date >= ?", *filter.StartFrom)
	}
	if filter.StartTo != nil {
		query = query.Where("start_date <= ?", *filter.StartTo)
	}
	return query
}

func toDomainLeases(rows []models.LeaseModel) []residence.Lease {
	leases := make([]residence.Lease, len(rows))
	for i := range rows {
		leases[i] = *rows[i].ToDomain()
	}
	return leases
}

var _ residence.LeaseRepository = (*GormLeaseRepository)(nil)
