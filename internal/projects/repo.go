package projects

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/wekezahq/coopledger-backend/pkg/db/models"
	"github.com/wekezahq/coopledger-backend/pkg/enums"
	"github.com/wekezahq/coopledger-backend/pkg/pagination"
)

// Repository manages project persistence, including the member share
// links and the inline update timeline.
type Repository interface {
	WithTx(tx *gorm.DB) Repository

	Create(ctx context.Context, project *models.Project) error
	Find(ctx context.Context, id uuid.UUID) (*models.Project, error)
	List(ctx context.Context, status enums.ProjectStatus, params pagination.Params) ([]models.Project, error)
	Update(ctx context.Context, id uuid.UUID, updates map[string]any) error

	ListUpdates(ctx context.Context, projectID uuid.UUID) ([]models.ProjectUpdate, error)

	ListMemberLinks(ctx context.Context, projectID uuid.UUID) ([]models.ProjectMember, error)
	FindMemberLink(ctx context.Context, projectID, memberID uuid.UUID) (*models.ProjectMember, error)
	CreateMemberLink(ctx context.Context, link *models.ProjectMember) error
	UpdateMemberLink(ctx context.Context, id uuid.UUID, updates map[string]any) error
	DeleteMemberLink(ctx context.Context, id uuid.UUID) error
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a project repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, project *models.Project) error {
	return r.db.WithContext(ctx).Create(project).Error
}

func (r *repository) Find(ctx context.Context, id uuid.UUID) (*models.Project, error) {
	var project models.Project
	if err := r.db.WithContext(ctx).First(&project, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &project, nil
}

func (r *repository) List(ctx context.Context, status enums.ProjectStatus, params pagination.Params) ([]models.Project, error) {
	query := r.db.WithContext(ctx).Model(&models.Project{})
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

	var projects []models.Project
	err = query.
		Order("created_at DESC, id DESC").
		Limit(pagination.LimitWithBuffer(params.Limit)).
		Find(&projects).Error
	if err != nil {
		return nil, err
	}
	return projects, nil
}

func (r *repository) Update(ctx context.Context, id uuid.UUID, updates map[string]any) error {
	return r.db.WithContext(ctx).
		Model(&models.Project{}).
		Where("id = ?", id).
		Updates(updates).Error
}

func (r *repository) ListUpdates(ctx context.Context, projectID uuid.UUID) ([]models.ProjectUpdate, error) {
	var updates []models.ProjectUpdate
	err := r.db.WithContext(ctx).
		Where("project_id = ?", projectID).
		Order("sequence ASC").
		Find(&updates).Error
	if err != nil {
		return nil, err
	}
	return updates, nil
}

func (r *repository) ListMemberLinks(ctx context.Context, projectID uuid.UUID) ([]models.ProjectMember, error) {
	var links []models.ProjectMember
	err := r.db.WithContext(ctx).
		Where("project_id = ?", projectID).
		Order("created_at ASC").
		Find(&links).Error
	if err != nil {
		return nil, err
	}
	return links, nil
}

func (r *repository) FindMemberLink(ctx context.Context, projectID, memberID uuid.UUID) (*models.ProjectMember, error) {
	var link models.ProjectMember
	err := r.db.WithContext(ctx).
		First(&link, "project_id = ? AND member_id = ?", projectID, memberID).Error
	if err != nil {
		return nil, err
	}
	return &link, nil
}

func (r *repository) CreateMemberLink(ctx context.Context, link *models.ProjectMember) error {
	return r.db.WithContext(ctx).Create(link).Error
}

func (r *repository) UpdateMemberLink(ctx context.Context, id uuid.UUID, updates map[string]any) error {
	return r.db.WithContext(ctx).
		Model(&models.ProjectMember{}).
		Where("id = ?", id).
		Updates(updates).Error
}

func (r *repository) DeleteMemberLink(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&models.ProjectMember{}, "id = ?", id).Error
}
