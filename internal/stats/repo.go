package stats

import (
	"context"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/wekezahq/coopledger-backend/pkg/db/models"
	"github.com/wekezahq/coopledger-backend/pkg/enums"
)

// Repository reads the aggregates the dashboard summary is built from.
// It is read-only: stats never mutate ledger state.
type Repository interface {
	FundTotals(ctx context.Context) (int64, decimal.Decimal, error)
	MemberTotals(ctx context.Context) (MemberTotals, error)
	CountProjects(ctx context.Context, status enums.ProjectStatus) (int64, error)
	TransactionTotals(ctx context.Context) (map[enums.TransactionType]decimal.Decimal, int64, error)
}

// MemberTotals aggregates the member table.
type MemberTotals struct {
	Total            int64
	Active           int64
	TotalShares      int64
	TotalContributed decimal.Decimal
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a stats repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) FundTotals(ctx context.Context) (int64, decimal.Decimal, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Fund{}).
		Where("status = ?", enums.FundStatusActive).
		Count(&count).Error
	if err != nil {
		return 0, decimal.Zero, err
	}

	var balance decimal.Decimal
	err = r.db.WithContext(ctx).
		Model(&models.Fund{}).
		Where("status = ?", enums.FundStatusActive).
		Select("COALESCE(SUM(balance), 0)").
		Scan(&balance).Error
	if err != nil {
		return 0, decimal.Zero, err
	}
	return count, balance, nil
}

func (r *repository) MemberTotals(ctx context.Context) (MemberTotals, error) {
	var totals MemberTotals
	err := r.db.WithContext(ctx).
		Model(&models.Member{}).
		Count(&totals.Total).Error
	if err != nil {
		return MemberTotals{}, err
	}
	err = r.db.WithContext(ctx).
		Model(&models.Member{}).
		Where("status = ?", enums.MemberStatusActive).
		Count(&totals.Active).Error
	if err != nil {
		return MemberTotals{}, err
	}

	row := struct {
		Shares      int64
		Contributed decimal.Decimal
	}{}
	err = r.db.WithContext(ctx).
		Model(&models.Member{}).
		Select("COALESCE(SUM(shares), 0) AS shares, COALESCE(SUM(total_contributed), 0) AS contributed").
		Scan(&row).Error
	if err != nil {
		return MemberTotals{}, err
	}
	totals.TotalShares = row.Shares
	totals.TotalContributed = row.Contributed
	return totals, nil
}

func (r *repository) CountProjects(ctx context.Context, status enums.ProjectStatus) (int64, error) {
	query := r.db.WithContext(ctx).Model(&models.Project{})
	if status != "" {
		query = query.Where("status = ?", status)
	}
	var count int64
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *repository) TransactionTotals(ctx context.Context) (map[enums.TransactionType]decimal.Decimal, int64, error) {
	rows := []struct {
		Type  enums.TransactionType
		Total decimal.Decimal
	}{}
	err := r.db.WithContext(ctx).
		Model(&models.Transaction{}).
		Where("status = ?", enums.TransactionStatusCompleted).
		Select("type, COALESCE(SUM(amount), 0) AS total").
		Group("type").
		Scan(&rows).Error
	if err != nil {
		return nil, 0, err
	}

	var count int64
	err = r.db.WithContext(ctx).
		Model(&models.Transaction{}).
		Count(&count).Error
	if err != nil {
		return nil, 0, err
	}

	totals := make(map[enums.TransactionType]decimal.Decimal, len(rows))
	for _, row := range rows {
		totals[row.Type] = row.Total
	}
	return totals, count, nil
}
