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

// GormPaymentRepository implements residence.PaymentRepository using GORM
type GormPaymentRepository struct {
	db *gorm.DB
}

// NewGormPaymentRepository creates a new GormPaymentRepository
func NewGormPaymentRepository(db *gorm.DB) *GormPaymentRepository {
	return &GormPaymentRepository{db: db}
}

func (r *GormPaymentRepository) FindByID(ctx context.Context, id uuid.UUID) (*residence.Payment, error) {
	var model models.PaymentModel
	if err := dbFromContext(ctx, r.db).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

func (r *GormPaymentRepository) FindByReference(ctx context.Context, reference string) (*residence.Payment, error) {
	var model models.PaymentModel
	if err := dbFromContext(ctx, r.db).First(&model, "reference = ?", reference).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

func (r *GormPaymentRepository) FindByStudent(ctx context.Context, studentID uuid.UUID) ([]residence.Payment, error) {
	var rows []models.PaymentModel
	if err := dbFromContext(ctx, r.db).
		Where("student_id = ?", studentID).
		Order("date DESC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	payments := make([]residence.Payment, len(rows))
	for i := range rows {
		payments[i] = *rows[i].ToDomain()
	}
	return payments, nil
}

func (r *GormPaymentRepository) Save(ctx context.Context, payment *residence.Payment) error {
	var model models.PaymentModel
	model.FromDomain(payment)
	return dbFromContext(ctx, r.db).Save(&model).Error
}

var _ residence.PaymentRepository = (*GormPaymentRepository)(nil)
