package projects

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/wekezahq/coopledger-backend/internal/audit"
	"github.com/wekezahq/coopledger-backend/internal/funds"
	"github.com/wekezahq/coopledger-backend/internal/members"
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

// CreateInput describes a new project. Its scoped fund is created with it
// in the same transaction; funding arrives later through ledger transfers.
type CreateInput struct {
	Actor             identity.Actor
	Title             string
	Category          string
	Tags              []string
	InitialInvestment decimal.Decimal
	Budget            decimal.Decimal
	ExpectedReturn    decimal.Decimal
	TotalShares       int64
}

// UpdateInput changes project lifecycle fields.
type UpdateInput struct {
	Actor  identity.Actor
	ID     uuid.UUID
	Status *enums.ProjectStatus
	Health *enums.ProjectHealth
}

// AssignSharesInput sets a member's invested shares on a project.
type AssignSharesInput struct {
	Actor     identity.Actor
	ProjectID uuid.UUID
	MemberID  uuid.UUID
	Shares    int64
}

// ListInput filters the project listing.
type ListInput struct {
	Status     enums.ProjectStatus
	Pagination pagination.Params
}

// ListResult is one page of projects.
type ListResult struct {
	Projects   []models.Project
	NextCursor string
}

// Detail is a project with its fund, timeline and member breakdown.
type Detail struct {
	Project *models.Project
	Fund    *models.Fund
	Updates []models.ProjectUpdate
	Members []models.ProjectMember
}

// Service manages the project portfolio and its member share links.
type Service interface {
	Create(ctx context.Context, input CreateInput) (*models.Project, error)
	Get(ctx context.Context, id uuid.UUID) (*Detail, error)
	List(ctx context.Context, input ListInput) (*ListResult, error)
	Update(ctx context.Context, input UpdateInput) (*models.Project, error)
	AssignShares(ctx context.Context, input AssignSharesInput) ([]models.ProjectMember, error)
}

type service struct {
	repo       Repository
	fundRepo   funds.Repository
	memberRepo members.Repository
	tx         txRunner
	auditor    audit.Recorder
}

// NewService wires the project service.
func NewService(repo Repository, fundRepo funds.Repository, memberRepo members.Repository, tx txRunner, auditor audit.Recorder) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("project repository required")
	}
	if fundRepo == nil {
		return nil, fmt.Errorf("fund repository required")
	}
	if memberRepo == nil {
		return nil, fmt.Errorf("member repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if auditor == nil {
		return nil, fmt.Errorf("audit recorder required")
	}
	return &service{
		repo:       repo,
		fundRepo:   fundRepo,
		memberRepo: memberRepo,
		tx:         tx,
		auditor:    auditor,
	}, nil
}

func (s *service) Create(ctx context.Context, input CreateInput) (*models.Project, error) {
	if !input.Actor.Valid() {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "acting identity is required")
	}
	if strings.TrimSpace(input.Title) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "project title is required")
	}
	if input.InitialInvestment.IsNegative() || input.Budget.IsNegative() || input.ExpectedReturn.IsNegative() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "project amounts must not be negative")
	}
	if input.TotalShares < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "total shares must not be negative")
	}

	var project *models.Project
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		fundRepo := s.fundRepo.WithTx(tx)
		projectRepo := s.repo.WithTx(tx)

		fund := &models.Fund{
			Name:   strings.TrimSpace(input.Title) + " fund",
			Type:   enums.FundTypeProject,
			Status: enums.FundStatusActive,
		}
		if err := fundRepo.Create(ctx, fund); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "creating project fund")
		}

		project = &models.Project{
			Title:             strings.TrimSpace(input.Title),
			Category:          input.Category,
			Tags:              pq.StringArray(input.Tags),
			InitialInvestment: input.InitialInvestment,
			Budget:            input.Budget,
			ExpectedReturn:    input.ExpectedReturn,
			TotalShares:       input.TotalShares,
			Status:            enums.ProjectStatusPlanned,
			Health:            enums.ProjectHealthOnTrack,
			FundID:            fund.ID,
		}
		if err := projectRepo.Create(ctx, project); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "creating project")
		}

		// Back-link so ledger operations can find the owner of the fund.
		if err := fundRepo.Update(ctx, fund.ID, map[string]any{"project_id": project.ID}); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "linking project fund")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.record(ctx, input.Actor, enums.AuditActionEntityCreated, project.ID, types.Document{
		"title":   project.Title,
		"fund_id": project.FundID.String(),
	})
	return project, nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*Detail, error) {
	project, err := s.repo.Find(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "project not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading project")
	}
	fund, err := s.fundRepo.Find(ctx, project.FundID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading project fund")
	}
	updates, err := s.repo.ListUpdates(ctx, id)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading project timeline")
	}
	links, err := s.repo.ListMemberLinks(ctx, id)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading project members")
	}
	return &Detail{Project: project, Fund: fund, Updates: updates, Members: links}, nil
}

func (s *service) List(ctx context.Context, input ListInput) (*ListResult, error) {
	if input.Status != "" && !input.Status.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid project status")
	}
	projects, err := s.repo.List(ctx, input.Status, input.Pagination)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "listing projects")
	}

	limit := pagination.NormalizeLimit(input.Pagination.Limit)
	result := &ListResult{Projects: projects}
	if len(projects) > limit {
		result.Projects = projects[:limit]
		last := result.Projects[limit-1]
		result.NextCursor = pagination.EncodeCursor(pagination.Cursor{CreatedAt: last.CreatedAt, ID: last.ID})
	}
	return result, nil
}

func (s *service) Update(ctx context.Context, input UpdateInput) (*models.Project, error) {
	if !input.Actor.Valid() {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "acting identity is required")
	}

	project, err := s.repo.Find(ctx, input.ID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "project not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading project")
	}

	updates := map[string]any{}
	detail := types.Document{}
	if input.Status != nil {
		if !input.Status.IsValid() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid project status")
		}
		updates["status"] = *input.Status
		detail["status"] = string(*input.Status)
		project.Status = *input.Status
	}
	if input.Health != nil {
		if !input.Health.IsValid() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid project health")
		}
		updates["health"] = *input.Health
		detail["health"] = string(*input.Health)
		project.Health = *input.Health
	}
	if len(updates) == 0 {
		return project, nil
	}

	if err := s.repo.Update(ctx, input.ID, updates); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "updating project")
	}

	s.record(ctx, input.Actor, enums.AuditActionEntityUpdated, input.ID, detail)
	return project, nil
}

// AssignShares sets a member's invested shares and recomputes every
// ownership percentage on the project. Setting zero removes the link.
func (s *service) AssignShares(ctx context.Context, input AssignSharesInput) ([]models.ProjectMember, error) {
	if !input.Actor.Valid() {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "acting identity is required")
	}
	if input.Shares < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "shares must not be negative")
	}

	var links []models.ProjectMember
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		memberRepo := s.memberRepo.WithTx(tx)

		project, err := repo.Find(ctx, input.ProjectID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "project not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading project")
		}
		if _, err := memberRepo.Find(ctx, input.MemberID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "member not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading member")
		}

		link, err := repo.FindMemberLink(ctx, input.ProjectID, input.MemberID)
		switch {
		case err == nil && input.Shares == 0:
			if err := repo.DeleteMemberLink(ctx, link.ID); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "removing member link")
			}
		case err == nil:
			if err := repo.UpdateMemberLink(ctx, link.ID, map[string]any{"shares_invested": input.Shares}); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "updating member link")
			}
		case errors.Is(err, gorm.ErrRecordNotFound):
			if input.Shares == 0 {
				return pkgerrors.New(pkgerrors.CodeValidation, "member holds no shares in this project")
			}
			created := &models.ProjectMember{
				ProjectID:        input.ProjectID,
				MemberID:         input.MemberID,
				SharesInvested:   input.Shares,
				OwnershipPercent: decimal.Zero,
			}
			if err := repo.CreateMemberLink(ctx, created); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "creating member link")
			}
		default:
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading member link")
		}

		links, err = s.recomputeOwnership(ctx, repo, project)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.record(ctx, input.Actor, enums.AuditActionEntityUpdated, input.ProjectID, types.Document{
		"member_id": input.MemberID.String(),
		"shares":    input.Shares,
	})
	return links, nil
}

// recomputeOwnership recalculates every link's percentage. The declared
// total shares is the denominator when set; otherwise the invested sum.
func (s *service) recomputeOwnership(ctx context.Context, repo Repository, project *models.Project) ([]models.ProjectMember, error) {
	links, err := repo.ListMemberLinks(ctx, project.ID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "listing member links")
	}

	var invested int64
	for _, link := range links {
		invested += link.SharesInvested
	}
	denominator := project.TotalShares
	if denominator == 0 {
		denominator = invested
	}

	for i := range links {
		percent := decimal.Zero
		if denominator > 0 {
			percent = decimal.NewFromInt(links[i].SharesInvested).
				Div(decimal.NewFromInt(denominator)).
				Mul(decimal.NewFromInt(100)).
				Round(4)
		}
		if err := repo.UpdateMemberLink(ctx, links[i].ID, map[string]any{"ownership_percent": percent}); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "updating ownership percent")
		}
		links[i].OwnershipPercent = percent
	}
	return links, nil
}

func (s *service) record(ctx context.Context, actor identity.Actor, action enums.AuditAction, id uuid.UUID, detail types.Document) {
	_, _ = s.auditor.Record(ctx, audit.Entry{
		Actor:        actor,
		Action:       action,
		ResourceType: "project",
		ResourceID:   id.String(),
		Detail:       detail,
	})
}
