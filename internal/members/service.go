package members

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/wekezahq/coopledger-backend/internal/audit"
	"github.com/wekezahq/coopledger-backend/pkg/db"
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

// CreateInput describes a new member.
type CreateInput struct {
	Actor  identity.Actor
	Name   string
	Email  string
	Phone  string
	UserID *uuid.UUID
}

// UpdateInput changes a member's contact details or status. Shares and
// contributions are never edited here; they only move through ledger
// operations.
type UpdateInput struct {
	Actor  identity.Actor
	ID     uuid.UUID
	Name   *string
	Email  *string
	Phone  *string
	Status *enums.MemberStatus
}

// ListInput filters the member listing.
type ListInput struct {
	Status     enums.MemberStatus
	Pagination pagination.Params
}

// ListResult is one page of members.
type ListResult struct {
	Members    []models.Member
	NextCursor string
}

// Service manages the member registry.
type Service interface {
	Create(ctx context.Context, input CreateInput) (*models.Member, error)
	Get(ctx context.Context, id uuid.UUID) (*models.Member, error)
	List(ctx context.Context, input ListInput) (*ListResult, error)
	Update(ctx context.Context, input UpdateInput) (*models.Member, error)
	Delete(ctx context.Context, actor identity.Actor, id uuid.UUID) error
}

type service struct {
	repo    Repository
	tx      txRunner
	auditor audit.Recorder
}

// NewService wires the member registry service.
func NewService(repo Repository, tx txRunner, auditor audit.Recorder) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("member repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if auditor == nil {
		return nil, fmt.Errorf("audit recorder required")
	}
	return &service{repo: repo, tx: tx, auditor: auditor}, nil
}

func (s *service) Create(ctx context.Context, input CreateInput) (*models.Member, error) {
	if !input.Actor.Valid() {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "acting identity is required")
	}
	if strings.TrimSpace(input.Name) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "member name is required")
	}

	member := &models.Member{
		Name:   strings.TrimSpace(input.Name),
		Status: enums.MemberStatusActive,
		UserID: input.UserID,
	}
	if email := strings.TrimSpace(input.Email); email != "" {
		member.Email = &email
	}
	if phone := strings.TrimSpace(input.Phone); phone != "" {
		member.Phone = &phone
	}

	if err := s.repo.Create(ctx, member); err != nil {
		if db.IsUniqueViolation(err, "") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "a member with this email already exists")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "creating member")
	}

	s.record(ctx, input.Actor, enums.AuditActionEntityCreated, member.ID, types.Document{"name": member.Name})
	return member, nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*models.Member, error) {
	member, err := s.repo.Find(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "member not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading member")
	}
	return member, nil
}

func (s *service) List(ctx context.Context, input ListInput) (*ListResult, error) {
	if input.Status != "" && !input.Status.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid member status")
	}
	members, err := s.repo.List(ctx, input.Status, input.Pagination)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "listing members")
	}

	limit := pagination.NormalizeLimit(input.Pagination.Limit)
	result := &ListResult{Members: members}
	if len(members) > limit {
		result.Members = members[:limit]
		last := result.Members[limit-1]
		result.NextCursor = pagination.EncodeCursor(pagination.Cursor{CreatedAt: last.CreatedAt, ID: last.ID})
	}
	return result, nil
}

func (s *service) Update(ctx context.Context, input UpdateInput) (*models.Member, error) {
	if !input.Actor.Valid() {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "acting identity is required")
	}

	member, err := s.Get(ctx, input.ID)
	if err != nil {
		return nil, err
	}

	updates := map[string]any{}
	detail := types.Document{}
	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "member name cannot be empty")
		}
		updates["name"] = name
		detail["name"] = name
		member.Name = name
	}
	if input.Email != nil {
		email := strings.TrimSpace(*input.Email)
		updates["email"] = email
		detail["email"] = email
		member.Email = &email
	}
	if input.Phone != nil {
		phone := strings.TrimSpace(*input.Phone)
		updates["phone"] = phone
		member.Phone = &phone
	}
	if input.Status != nil {
		if !input.Status.IsValid() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid member status")
		}
		updates["status"] = *input.Status
		detail["status"] = string(*input.Status)
		member.Status = *input.Status
	}
	if len(updates) == 0 {
		return member, nil
	}

	if err := s.repo.Update(ctx, input.ID, updates); err != nil {
		if db.IsUniqueViolation(err, "") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "a member with this email already exists")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "updating member")
	}

	s.record(ctx, input.Actor, enums.AuditActionEntityUpdated, input.ID, detail)
	return member, nil
}

// Delete removes a member. Allowed only when the member has no
// transaction history and no project involvement.
func (s *service) Delete(ctx context.Context, actor identity.Actor, id uuid.UUID) error {
	if !actor.Valid() {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "acting identity is required")
	}

	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		if _, err := repo.Find(ctx, id); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "member not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading member")
		}
		txnCount, err := repo.CountTransactions(ctx, id)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "counting member transactions")
		}
		if txnCount > 0 {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "member has transaction history")
		}
		linkCount, err := repo.CountProjectLinks(ctx, id)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "counting project links")
		}
		if linkCount > 0 {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "member is involved in projects")
		}
		if err := repo.Delete(ctx, id); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "deleting member")
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
		ResourceType: "member",
		ResourceID:   id.String(),
		Detail:       detail,
	})
}
