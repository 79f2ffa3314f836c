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

// GormStudentRepository implements residence.StudentRepository using GORM
type GormStudentRepository struct {
	db *gorm.DB
}

// NewGormStudentRepository creates a new GormStudentRepository
func NewGormStudentRepository(db *gorm.DB) *GormStudentRepository {
	return &GormStudentRepository{db: db}
}

func (r *GormStudentRepository) FindByID(ctx context.Context, id uuid.UUID) (*residence.Student, error) {
	var model models.StudentModel
	if err := dbFromContext(ctx, r.db).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

func (r *GormStudentRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]residence.Student, error) {
	result := make(map[uuid.UUID]residence.Student, len(ids))
	if len(ids) == 0 {
		return result, nil
	}
	var rows []models.StudentModel
	if err := dbFromContext(ctx, r.db).Where("id IN ?", ids).Find(&rows).Error; err != nil {
		return nil, err
	}
	for i := range rows {
		result[rows[i].ID] = *rows[i].ToDomain()
	}
	return result, nil
}

func (r *GormStudentRepository) Save(ctx context.Context, student *residence.Student) error {
	var model models.StudentModel
	model.FromDomain(student)
	return dbFromContext(ctx, r.db).Save(&model).Error
}

var _ residence.StudentRepository = (*GormStudentRepository)(nil)
