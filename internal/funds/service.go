package funds

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/wekezahq/coopledger-backend/internal/audit"
	"github.com/wekezahq/coopledger-backend/pkg/db/models"
	"github.com/wekezahq/coopledger-backend/pkg/db/types"
	"github.com/wekezahq/coopledger-backend/pkg/enums"
	pkgerrors "github.com/wekezahq/coopledger-backend/pkg/errors"
	"github.com/wekezahq/coopledger-backend/pkg/identity"
	"github.com/wekezahq/coopledger-backend/pkg/pagination"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// CreateInput describes a new fund.
type CreateInput struct {
	Actor identity.Actor
	Name  string
	Type  enums.FundType
}

// ListInput filters the fund listing.
type ListInput struct {
	Status     enums.FundStatus
	Pagination pagination.Params
}

// ListResult is one page of funds.
type ListResult struct {
	Funds      []models.Fund
	NextCursor string
}

// Service manages the fund catalog. Balance changes never happen here;
// only the ledger engine moves money.
type Service interface {
	Create(ctx context.Context, input CreateInput) (*models.Fund, error)
	Get(ctx context.Context, id uuid.UUID) (*models.Fund, error)
	List(ctx context.Context, input ListInput) (*ListResult, error)
	Archive(ctx context.Context, actor identity.Actor, id uuid.UUID) (*models.Fund, error)
	Delete(ctx context.Context, actor identity.Actor, id uuid.UUID) error
}

type service struct {
	repo    Repository
	tx      txRunner
	auditor audit.Recorder
}

// NewService wires the fund catalog service.
func NewService(repo Repository, tx txRunner, auditor audit.Recorder) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("fund repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if auditor == nil {
		return nil, fmt.Errorf("audit recorder required")
	}
	return &service{repo: repo, tx: tx, auditor: auditor}, nil
}

func (s *service) Create(ctx context.Context, input CreateInput) (*models.Fund, error) {
	if !input.Actor.Valid() {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "acting identity is required")
	}
	if input.Name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "fund name is required")
	}
	fundType := input.Type
	if fundType == "" {
		fundType = enums.FundTypeGeneral
	}
	if !fundType.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid fund type")
	}
	if fundType == enums.FundTypeProject {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "project funds are created with their project")
	}

	fund := &models.Fund{
		Name:   input.Name,
		Type:   fundType,
		Status: enums.FundStatusActive,
	}
	if err := s.repo.Create(ctx, fund); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "creating fund")
	}

	s.record(ctx, input.Actor, enums.AuditActionEntityCreated, fund.ID, types.Document{
		"name": fund.Name,
		"type": string(fund.Type),
	})
	return fund, nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*models.Fund, error) {
	fund, err := s.repo.Find(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "fund not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading fund")
	}
	return fund, nil
}

func (s *service) List(ctx context.Context, input ListInput) (*ListResult, error) {
	if input.Status != "" && !input.Status.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid fund status")
	}
	funds, err := s.repo.List(ctx, input.Status, input.Pagination)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "listing funds")
	}

	limit := pagination.NormalizeLimit(input.Pagination.Limit)
	result := &ListResult{Funds: funds}
	if len(funds) > limit {
		result.Funds = funds[:limit]
		last := result.Funds[limit-1]
		result.NextCursor = pagination.EncodeCursor(pagination.Cursor{CreatedAt: last.CreatedAt, ID: last.ID})
	}
	return result, nil
}

func (s *service) Archive(ctx context.Context, actor identity.Actor, id uuid.UUID) (*models.Fund, error) {
	if !actor.Valid() {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "acting identity is required")
	}
	fund, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if fund.Status == enums.FundStatusArchived {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "fund is already archived")
	}
	if err := s.repo.Update(ctx, id, map[string]any{"status": enums.FundStatusArchived}); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "archiving fund")
	}
	fund.Status = enums.FundStatusArchived

	s.record(ctx, actor, enums.AuditActionEntityUpdated, id, types.Document{"status": "archived"})
	return fund, nil
}

// Delete removes a fund. Allowed only when the balance is zero and no
// transaction references it, so history always keeps its fund.
func (s *service) Delete(ctx context.Context, actor identity.Actor, id uuid.UUID) error {
	if !actor.Valid() {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "acting identity is required")
	}

	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		fund, err := repo.Find(ctx, id)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "fund not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading fund")
		}
		if !fund.Balance.IsZero() {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "fund balance must be zero before deletion")
		}
		count, err := repo.CountTransactions(ctx, id)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "counting fund transactions")
		}
		if count > 0 {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "fund has transaction history")
		}
		if err := repo.Delete(ctx, id); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "deleting fund")
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.record(ctx, actor, enums.AuditActionEntityDeleted, id, nil)
	return nil
}

func (s *service) record(ctx context.Context, actor identity.Actor, action enums.AuditAction, id uuid.UUID, detail types.Document) {
	_, _ = s.auditor.Record(ctx, audit.Entry{
		Actor:        actor,
		Action:       action,
		ResourceType: "fund",
		ResourceID:   id.String(),
		Detail:       detail,
	})
}
