package archive

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/wekezahq/coopledger-backend/pkg/db/models"
)

// Repository manages persistence for the reversal archive.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, record *models.DeletedRecord) error
	FindByOriginalID(ctx context.Context, originalID uuid.UUID) ([]models.DeletedRecord, error)
	List(ctx context.Context, collection string, limit int) ([]models.DeletedRecord, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns an archive repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, record *models.DeletedRecord) error {
	return r.db.WithContext(ctx).Create(record).Error
}

func (r *repository) FindByOriginalID(ctx context.Context, originalID uuid.UUID) ([]models.DeletedRecord, error) {
	var records []models.DeletedRecord
	err := r.db.WithContext(ctx).
		Where("original_id = ?", originalID).
		Order("deleted_at ASC").
		Find(&records).Error
	if err != nil {
		return nil, err
	}
	return records, nil
}

func (r *repository) List(ctx context.Context, collection string, limit int) ([]models.DeletedRecord, error) {
	query := r.db.WithContext(ctx).Order("deleted_at DESC")
	if collection != "" {
		query = query.Where("collection = ?", collection)
	}
	if limit > 0 {
		query = query.Limit(limit)
	}
	var records []models.DeletedRecord
	if err := query.Find(&records).Error; err != nil {
		return nil, err
	}
	return records, nil
}
