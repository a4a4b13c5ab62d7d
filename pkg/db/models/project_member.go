package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ProjectMember links a member to a project with their invested shares.
// OwnershipPercent is sharesInvested / project.TotalShares * 100 and is
// recomputed whenever share counts change.
type ProjectMember struct {
	ID               uuid.UUID       `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	ProjectID        uuid.UUID       `gorm:"column:project_id;type:uuid;not null;index;uniqueIndex:idx_project_member"`
	MemberID         uuid.UUID       `gorm:"column:member_id;type:uuid;not null;index;uniqueIndex:idx_project_member"`
	SharesInvested   int64           `gorm:"column:shares_invested;not null;default:0"`
	OwnershipPercent decimal.Decimal `gorm:"column:ownership_percent;type:numeric(7,4);not null;default:0"`
	CreatedAt        time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt        time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}
