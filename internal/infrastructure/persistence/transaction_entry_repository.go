package persistence

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/alamait/backend/internal/domain/accounting"
	"github.com/alamait/backend/internal/domain/shared"
	"github.com/alamait/backend/internal/infrastructure/persistence/models"
)

// GormTransactionEntryRepository implements the append-only ledger store.
// Financial content is never updated in place; only the status column may
// change after insert.
type GormTransactionEntryRepository struct {
	db *gorm.DB
}

// NewGormTransactionEntryRepository creates a new GormTransactionEntryRepository
func NewGormTransactionEntryRepository(db *gorm.DB) *GormTransactionEntryRepository {
	return &GormTransactionEntryRepository{db: db}
}

func (r *GormTransactionEntryRepository) FindByID(ctx context.Context, id uuid.UUID) (*accounting.TransactionEntry, error) {
	var model models.TransactionEntryModel
	if err := dbFromContext(ctx, r.db).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

func (r *GormTransactionEntryRepository) FindByTransactionID(ctx context.Context, transactionID string) (*accounting.TransactionEntry, error) {
	var model models.TransactionEntryModel
	if err := dbFromContext(ctx, r.db).First(&model, "transaction_id = ?", transactionID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

func (r *GormTransactionEntryRepository) FindBySource(ctx context.Context, source accounting.EntrySource, sourceID uuid.UUID) ([]accounting.TransactionEntry, error) {
	var rows []models.TransactionEntryModel
	if err := dbFromContext(ctx, r.db).
		Where("source = ? AND source_id = ?", source, sourceID).
		Order("date ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return toDomainEntries(rows), nil
}

func (r *GormTransactionEntryRepository) FindByAccountAndDateRange(ctx context.Context, accountCode string, from, to time.Time) ([]accounting.TransactionEntry, error) {
	var rows []models.TransactionEntryModel
	if err := dbFromContext(ctx, r.db).
		Where("status = ?", accounting.EntryStatusPosted).
		Where("date >= ? AND date <= ?", from, to).
		Where("lines @> ?", accountLineMatch(accountCode)).
		Order("date ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return toDomainEntries(rows), nil
}

func (r *GormTransactionEntryRepository) FindPostedBefore(ctx context.Context, asOf time.Time, residenceID *uuid.UUID) ([]accounting.TransactionEntry, error) {
	query := dbFromContext(ctx, r.db).
		Where("status = ?", accounting.EntryStatusPosted).
		Where("date <= ?", asOf)
	if residenceID != nil {
		query = query.Where("residence_id = ?", *residenceID)
	}
	var rows []models.TransactionEntryModel
	if err := query.Order("date ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	return toDomainEntries(rows), nil
}

func (r *GormTransactionEntryRepository) FindAll(ctx context.Context, filter accounting.EntryFilter) ([]accounting.TransactionEntry, error) {
	var rows []models.TransactionEntryModel
	query := r.applyFilter(dbFromContext(ctx, r.db).Model(&models.TransactionEntryModel{}), filter)
	query = applyPagination(query, filter.Filter, "date ASC, created_at ASC")
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	return toDomainEntries(rows), nil
}

// Save inserts a new entry. The partial unique index on (source, source_id)
// for accrual sources turns a double accrual into shared.ErrAlreadyAccrued
// even under concurrent posting.
func (r *GormTransactionEntryRepository) Save(ctx context.Context, entry *accounting.TransactionEntry) error {
	var model models.TransactionEntryModel
	model.FromDomain(entry)
	if err := dbFromContext(ctx, r.db).Create(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			if entry.Source == accounting.SourceRentalAccrual {
				return shared.ErrAlreadyAccrued
			}
			return shared.ErrAlreadyExists
		}
		return err
	}
	return nil
}

func (r *GormTransactionEntryRepository) SaveStatus(ctx context.Context, entry *accounting.TransactionEntry) error {
	result := dbFromContext(ctx, r.db).
		Model(&models.TransactionEntryModel{}).
		Where("id = ?", entry.ID).
		Updates(map[string]interface{}{
			"status":     entry.Status,
			"updated_at": entry.UpdatedAt,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func (r *GormTransactionEntryRepository) Count(ctx context.Context, filter accounting.EntryFilter) (int64, error) {
	var count int64
	query := r.applyFilter(dbFromContext(ctx, r.db).Model(&models.TransactionEntryModel{}), filter)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *GormTransactionEntryRepository) applyFilter(query *gorm.DB, filter accounting.EntryFilter) *gorm.DB {
	if filter.AccountCode != "" {
		query = query.Where("lines @> ?", accountLineMatch(filter.AccountCode))
	}
	if filter.Source != nil {
		query = query.Where("source = ?", *filter.Source)
	}
	if len(filter.Sources) > 0 {
		query = query.Where("source IN ?", filter.Sources)
	}
	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}
	if filter.ResidenceID != nil {
		query = query.Where("residence_id = ?", *filter.ResidenceID)
	}
	if filter.FromDate != nil {
		query = query.Where("date >= ?", *filter.FromDate)
	}
	if filter.ToDate != nil {
		query = query.Where("date <= ?", *filter.ToDate)
	}
	if filter.Year > 0 {
		start := time.Date(filter.Year, 1, 1, 0, 0, 0, 0, time.UTC)
		query = query.Where("date >= ? AND date < ?", start, start.AddDate(1, 0, 0))
	}
	return query
}

// accountLineMatch builds a JSONB containment document matching any line
// posted against the account code.
func accountLineMatch(accountCode string) string {
	return fmt.Sprintf(`[{"account_code": %q}]`, accountCode)
}

func toDomainEntries(rows []models.TransactionEntryModel) []accounting.TransactionEntry {
	entries := make([]accounting.TransactionEntry, len(rows))
	for i := range rows {
		entries[i] = *rows[i].ToDomain()
	}
	return entries
}

var _ accounting.TransactionEntryRepository = (*GormTransactionEntryRepository)(nil)
