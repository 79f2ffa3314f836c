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

// GormVendorRepository implements residence.VendorRepository using GORM
type GormVendorRepository struct {
	db *gorm.DB
}

// NewGormVendorRepository creates a new GormVendorRepository
func NewGormVendorRepository(db *gorm.DB) *GormVendorRepository {
	return &GormVendorRepository{db: db}
}

func (r *GormVendorRepository) FindByID(ctx context.Context, id uuid.UUID) (*residence.Vendor, error) {
	return r.findOne(ctx, "id = ?", id)
}

func (r *GormVendorRepository) FindByVendorCode(ctx context.Context, vendorCode string) (*residence.Vendor, error) {
	return r.findOne(ctx, "vendor_code = ?", vendorCode)
}

func (r *GormVendorRepository) FindByAccountCode(ctx context.Context, accountCode string) (*residence.Vendor, error) {
	return r.findOne(ctx, "chart_of_accounts_code = ?", accountCode)
}

func (r *GormVendorRepository) findOne(ctx context.Context, cond string, arg interface{}) (*residence.Vendor, error) {
	var model models.VendorModel
	if err := dbFromContext(ctx, r.db).First(&model, cond, arg).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

func (r *GormVendorRepository) FindAllActive(ctx context.Context) ([]residence.Vendor, error) {
	var rows []models.VendorModel
	if err := dbFromContext(ctx, r.db).
		Where("is_active = ?", true).
		Order("vendor_code ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	vendors := make([]residence.Vendor, len(rows))
	for i := range rows {
		vendors[i] = *rows[i].ToDomain()
	}
	return vendors, nil
}

func (r *GormVendorRepository) Save(ctx context.Context, vendor *residence.Vendor) error {
	var model models.VendorModel
	model.FromDomain(vendor)
	if err := dbFromContext(ctx, r.db).Save(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return shared.ErrAlreadyExists
		}
		return err
	}
	return nil
}

var _ residence.VendorRepository = (*GormVendorRepository)(nil)
