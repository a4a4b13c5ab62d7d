package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/wekezahq/coopledger-backend/pkg/enums"
)

// Member is a cooperative stakeholder. TotalContributed tracks cumulative
// completed inflows attributed to the member; Shares is administered
// independently through equity operations and is never minted by deposits.
type Member struct {
	ID               uuid.UUID          `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Name             string             `gorm:"column:name;not null"`
	Email            *string            `gorm:"column:email;uniqueIndex"`
	Phone            *string            `gorm:"column:phone"`
	Shares           int64              `gorm:"column:shares;not null;default:0"`
	TotalContributed decimal.Decimal    `gorm:"column:total_contributed;type:numeric(14,2);not null;default:0"`
	Status           enums.MemberStatus `gorm:"column:status;type:member_status;not null;default:'active'"`
	UserID           *uuid.UUID         `gorm:"column:user_id;type:uuid"`
	JoinedAt         time.Time          `gorm:"column:joined_at;autoCreateTime"`
	CreatedAt        time.Time          `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt        time.Time          `gorm:"column:updated_at;autoUpdateTime"`
}
