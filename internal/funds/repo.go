package funds

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/wekezahq/coopledger-backend/pkg/db/models"
	"github.com/wekezahq/coopledger-backend/pkg/enums"
	"github.com/wekezahq/coopledger-backend/pkg/pagination"
)

// Repository manages fund persistence.
type Repository interface {
	WithTx(tx *gorm.DB) Repository

	Create(ctx context.Context, fund *models.Fund) error
	Find(ctx context.Context, id uuid.UUID) (*models.Fund, error)
	List(ctx context.Context, status enums.FundStatus, params pagination.Params) ([]models.Fund, error)
	Update(ctx context.Context, id uuid.UUID, updates map[string]any) error
	Delete(ctx context.Context, id uuid.UUID) error
	CountTransactions(ctx context.Context, fundID uuid.UUID) (int64, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a fund repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, fund *models.Fund) error {
	return r.db.WithContext(ctx).Create(fund).Error
}

func (r *repository) Find(ctx context.Context, id uuid.UUID) (*models.Fund, error) {
	var fund models.Fund
	if err := r.db.WithContext(ctx).First(&fund, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &fund, nil
}

func (r *repository) List(ctx context.Context, status enums.FundStatus, params pagination.Params) ([]models.Fund, error) {
	query := r.db.WithContext(ctx).Model(&models.Fund{})
	if status != "" {
		query = query.Where("status = ?", status)
	}
	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, err
	}
	if cursor != nil {
		query = query.Where(
			"(created_at < ?) OR (created_at = ? AND id < ?)",
			cursor.CreatedAt, cursor.CreatedAt, cursor.ID,
		)
	}

	var funds []models.Fund
	err = query.
		Order("created_at DESC, id DESC").
		Limit(pagination.LimitWithBuffer(params.Limit)).
		Find(&funds).Error
	if err != nil {
		return nil, err
	}
	return funds, nil
}

func (r *repository) Update(ctx context.Context, id uuid.UUID, updates map[string]any) error {
	return r.db.WithContext(ctx).
		Model(&models.Fund{}).
		Where("id = ?", id).
		Updates(updates).Error
}

func (r *repository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&models.Fund{}, "id = ?", id).Error
}

func (r *repository) CountTransactions(ctx context.Context, fundID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Transaction{}).
		Where("fund_id = ?", fundID).
		Count(&count).Error
	if err != nil {
		return 0, err
	}
	return count, nil
}
