package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/alamait/backend/internal/domain/accounting"
	"github.com/alamait/backend/internal/domain/shared"
	"github.com/alamait/backend/internal/infrastructure/persistence/models"
)

// GormAccountRepository implements accounting.AccountRepository using GORM
type GormAccountRepository struct {
	db *gorm.DB
}

// NewGormAccountRepository creates a new GormAccountRepository
func NewGormAccountRepository(db *gorm.DB) *GormAccountRepository {
	return &GormAccountRepository{db: db}
}

func (r *GormAccountRepository) FindByID(ctx context.Context, id uuid.UUID) (*accounting.Account, error) {
	var model models.AccountModel
	if err := dbFromContext(ctx, r.db).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

func (r *GormAccountRepository) FindByCode(ctx context.Context, code string) (*accounting.Account, error) {
	var model models.AccountModel
	if err := dbFromContext(ctx, r.db).First(&model, "code = ?", code).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

func (r *GormAccountRepository) FindAll(ctx context.Context, filter accounting.AccountFilter) ([]accounting.Account, error) {
	var rows []models.AccountModel
	query := r.applyFilter(dbFromContext(ctx, r.db).Model(&models.AccountModel{}), filter)
	query = applyPagination(query, filter.Filter, "code ASC")
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	accounts := make([]accounting.Account, len(rows))
	for i := range rows {
		accounts[i] = *rows[i].ToDomain()
	}
	return accounts, nil
}

func (r *GormAccountRepository) FindByParent(ctx context.Context, parentCode string) ([]accounting.Account, error) {
	var rows []models.AccountModel
	if err := dbFromContext(ctx, r.db).
		Where("parent_code = ?", parentCode).
		Order("code ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	accounts := make([]accounting.Account, len(rows))
	for i := range rows {
		accounts[i] = *rows[i].ToDomain()
	}
	return accounts, nil
}

func (r *GormAccountRepository) ListCodes(ctx context.Context) ([]string, error) {
	var codes []string
	if err := dbFromContext(ctx, r.db).
		Model(&models.AccountModel{}).
		Order("code ASC").
		Pluck("code", &codes).Error; err != nil {
		return nil, err
	}
	return codes, nil
}

func (r *GormAccountRepository) Save(ctx context.Context, account *accounting.Account) error {
	var model models.AccountModel
	model.FromDomain(account)
	if err := dbFromContext(ctx, r.db).Save(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return shared.ErrDuplicateCode
		}
		return err
	}
	return nil
}

func (r *GormAccountRepository) Count(ctx context.Context, filter accounting.AccountFilter) (int64, error) {
	var count int64
	query := r.applyFilter(dbFromContext(ctx, r.db).Model(&models.AccountModel{}), filter)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *GormAccountRepository) applyFilter(query *gorm.DB, filter accounting.AccountFilter) *gorm.DB {
	if filter.Type != nil {
		query = query.Where("type = ?", *filter.Type)
	}
	if filter.Category != "" {
		query = query.Where("category = ?", filter.Category)
	}
	if filter.ParentCode != "" {
		query = query.Where("parent_code = ?", filter.ParentCode)
	}
	if !filter.IncludeInactive {
		query = query.Where("is_active = ?", true)
	}
	if filter.Search != "" {
		pattern := "%" + filter.Search + "%"
		query = query.Where("name ILIKE ? OR code LIKE ?", pattern, pattern)
	}
	return query
}

var _ accounting.AccountRepository = (*GormAccountRepository)(nil)
