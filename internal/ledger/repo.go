package ledger

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/wekezahq/coopledger-backend/pkg/db/models"
	"github.com/wekezahq/coopledger-backend/pkg/enums"
	"github.com/wekezahq/coopledger-backend/pkg/pagination"
)

// Repository manages persistence for the ledger engine. All mutating
// methods are expected to run on a transaction-bound instance obtained
// through WithTx.
type Repository interface {
	WithTx(tx *gorm.DB) Repository

	FindFund(ctx context.Context, id uuid.UUID) (*models.Fund, error)
	FindMember(ctx context.Context, id uuid.UUID) (*models.Member, error)
	FindProject(ctx context.Context, id uuid.UUID) (*models.Project, error)
	FindTransaction(ctx context.Context, id uuid.UUID) (*models.Transaction, error)

	CreateTransaction(ctx context.Context, txn *models.Transaction) error
	CreateTransactions(ctx context.Context, txns []models.Transaction) error
	UpdateTransaction(ctx context.Context, id uuid.UUID, updates map[string]any) error
	DeleteTransaction(ctx context.Context, id uuid.UUID) error

	UpdateFund(ctx context.Context, id uuid.UUID, updates map[string]any) error
	UpdateMember(ctx context.Context, id uuid.UUID, updates map[string]any) error
	UpdateProject(ctx context.Context, id uuid.UUID, updates map[string]any) error

	NextProjectUpdateSequence(ctx context.Context, projectID uuid.UUID) (int64, error)
	CreateProjectUpdate(ctx context.Context, update *models.ProjectUpdate) error

	ListActiveShareholders(ctx context.Context) ([]models.Member, error)
	SumCompletedByFund(ctx context.Context, fundID uuid.UUID) (FundFlows, error)
	ListTransactions(ctx context.Context, filter TransactionFilter, params pagination.Params) ([]models.Transaction, error)
}

// TransactionFilter narrows the transaction listing.
type TransactionFilter struct {
	FundID    *uuid.UUID
	MemberID  *uuid.UUID
	ProjectID *uuid.UUID
	Type      enums.TransactionType
	Status    enums.TransactionStatus
	Reference string
}

// FundFlows aggregates a fund's completed transaction history by flow
// direction.
type FundFlows struct {
	TotalIn  decimal.Decimal
	TotalOut decimal.Decimal
}

// Net returns inflows minus outflows.
func (f FundFlows) Net() decimal.Decimal {
	return f.TotalIn.Sub(f.TotalOut)
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a ledger repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) FindFund(ctx context.Context, id uuid.UUID) (*models.Fund, error) {
	var fund models.Fund
	if err := r.db.WithContext(ctx).First(&fund, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &fund, nil
}

func (r *repository) FindMember(ctx context.Context, id uuid.UUID) (*models.Member, error) {
	var member models.Member
	if err := r.db.WithContext(ctx).First(&member, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &member, nil
}

func (r *repository) FindProject(ctx context.Context, id uuid.UUID) (*models.Project, error) {
	var project models.Project
	if err := r.db.WithContext(ctx).First(&project, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &project, nil
}

func (r *repository) FindTransaction(ctx context.Context, id uuid.UUID) (*models.Transaction, error) {
	var txn models.Transaction
	if err := r.db.WithContext(ctx).First(&txn, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &txn, nil
}

func (r *repository) CreateTransaction(ctx context.Context, txn *models.Transaction) error {
	return r.db.WithContext(ctx).Create(txn).Error
}

func (r *repository) CreateTransactions(ctx context.Context, txns []models.Transaction) error {
	if len(txns) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(&txns).Error
}

func (r *repository) UpdateTransaction(ctx context.Context, id uuid.UUID, updates map[string]any) error {
	return r.db.WithContext(ctx).
		Model(&models.Transaction{}).
		Where("id = ?", id).
		Updates(updates).Error
}

func (r *repository) DeleteTransaction(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&models.Transaction{}, "id = ?", id).Error
}

func (r *repository) UpdateFund(ctx context.Context, id uuid.UUID, updates map[string]any) error {
	return r.db.WithContext(ctx).
		Model(&models.Fund{}).
		Where("id = ?", id).
		Updates(updates).Error
}

func (r *repository) UpdateMember(ctx context.Context, id uuid.UUID, updates map[string]any) error {
	return r.db.WithContext(ctx).
		Model(&models.Member{}).
		Where("id = ?", id).
		Updates(updates).Error
}

func (r *repository) UpdateProject(ctx context.Context, id uuid.UUID, updates map[string]any) error {
	return r.db.WithContext(ctx).
		Model(&models.Project{}).
		Where("id = ?", id).
		Updates(updates).Error
}

func (r *repository) NextProjectUpdateSequence(ctx context.Context, projectID uuid.UUID) (int64, error) {
	var max int64
	err := r.db.WithContext(ctx).
		Model(&models.ProjectUpdate{}).
		Where("project_id = ?", projectID).
		Select("COALESCE(MAX(sequence), 0)").
		Scan(&max).Error
	if err != nil {
		return 0, err
	}
	return max + 1, nil
}

func (r *repository) CreateProjectUpdate(ctx context.Context, update *models.ProjectUpdate) error {
	return r.db.WithContext(ctx).Create(update).Error
}

func (r *repository) ListActiveShareholders(ctx context.Context) ([]models.Member, error) {
	var members []models.Member
	err := r.db.WithContext(ctx).
		Where("status = ? AND shares > 0", enums.MemberStatusActive).
		Order("created_at ASC").
		Find(&members).Error
	if err != nil {
		return nil, err
	}
	return members, nil
}

func (r *repository) ListTransactions(ctx context.Context, filter TransactionFilter, params pagination.Params) ([]models.Transaction, error) {
	query := r.db.WithContext(ctx).Model(&models.Transaction{})
	if filter.FundID != nil {
		query = query.Where("fund_id = ?", *filter.FundID)
	}
	if filter.MemberID != nil {
		query = query.Where("member_id = ?", *filter.MemberID)
	}
	if filter.ProjectID != nil {
		query = query.Where("project_id = ?", *filter.ProjectID)
	}
	if filter.Type != "" {
		query = query.Where("type = ?", filter.Type)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.Reference != "" {
		query = query.Where("reference = ?", filter.Reference)
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

	var txns []models.Transaction
	err = query.
		Order("created_at DESC, id DESC").
		Limit(pagination.LimitWithBuffer(params.Limit)).
		Find(&txns).Error
	if err != nil {
		return nil, err
	}
	return txns, nil
}

func (r *repository) SumCompletedByFund(ctx context.Context, fundID uuid.UUID) (FundFlows, error) {
	var txns []models.Transaction
	err := r.db.WithContext(ctx).
		Where("fund_id = ? AND status = ?", fundID, enums.TransactionStatusCompleted).
		Find(&txns).Error
	if err != nil {
		return FundFlows{}, err
	}

	flows := FundFlows{TotalIn: decimal.Zero, TotalOut: decimal.Zero}
	for _, txn := range txns {
		switch {
		case txn.Type.IsFundInflow():
			flows.TotalIn = flows.TotalIn.Add(txn.Amount)
		case txn.Type.IsFundOutflow():
			flows.TotalOut = flows.TotalOut.Add(txn.Amount)
		case txn.Type == enums.TransactionTypeAdjustment:
			// adjustments carry their sign in the snapshot delta
			flows.TotalIn = flows.TotalIn.Add(txn.BalanceAfter.Sub(txn.BalanceBefore))
		}
	}
	return flows, nil
}
