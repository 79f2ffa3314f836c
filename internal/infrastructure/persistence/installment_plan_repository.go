package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/alamait/backend/internal/domain/residence"
	"github.com/alamait/backend/internal/domain/shared"
	"github.com/alamait/backend/internal/infrastructure/persistence/models"
)

// GormInstallmentPlanRepository implements residence.InstallmentPlanRepository using GORM
type GormInstallmentPlanRepository struct {
	db *gorm.DB
}

// NewGormInstallmentPlanRepository creates a new GormInstallmentPlanRepository
func NewGormInstallmentPlanRepository(db *gorm.DB) *GormInstallmentPlanRepository {
	return &GormInstallmentPlanRepository{db: db}
}

func (r *GormInstallmentPlanRepository) FindByID(ctx context.Context, id uuid.UUID) (*residence.InstallmentPlan, error) {
	var model models.InstallmentPlanModel
	if err := dbFromContext(ctx, r.db).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

func (r *GormInstallmentPlanRepository) FindByRequestItem(ctx context.Context, monthlyRequestID uuid.UUID, itemIndex int) (*residence.InstallmentPlan, error) {
	var model models.InstallmentPlanModel
	if err := dbFromContext(ctx, r.db).
		First(&model, "monthly_request_id = ? AND item_index = ?", monthlyRequestID, itemIndex).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

func (r *GormInstallmentPlanRepository) FindByRequest(ctx context.Context, monthlyRequestID uuid.UUID) ([]residence.InstallmentPlan, error) {
	var rows []models.InstallmentPlanModel
	if err := dbFromContext(ctx, r.db).
		Where("monthly_request_id = ?", monthlyRequestID).
		Order("item_index ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	plans := make([]residence.InstallmentPlan, len(rows))
	for i := range rows {
		plans[i] = *rows[i].ToDomain()
	}
	return plans, nil
}

func (r *GormInstallmentPlanRepository) Save(ctx context.Context, plan *residence.InstallmentPlan) error {
	var model models.InstallmentPlanModel
	model.FromDomain(plan)
	if err := dbFromContext(ctx, r.db).Save(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return shared.ErrAlreadyExists
		}
		return err
	}
	return nil
}

var _ residence.InstallmentPlanRepository = (*GormInstallmentPlanRepository)(nil)
