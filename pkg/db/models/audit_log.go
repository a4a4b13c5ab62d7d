package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/wekezahq/coopledger-backend/pkg/db/types"
	"github.com/wekezahq/coopledger-backend/pkg/enums"
)

// AuditLog is an append-only record of who did what. Rows are never
// updated or deleted by application code.
type AuditLog struct {
	ID           uuid.UUID          `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	ActorID      string             `gorm:"column:actor_id;not null;index"`
	ActorName    string             `gorm:"column:actor_name;not null"`
	Action       enums.AuditAction  `gorm:"column:action;type:audit_action;not null;index"`
	ResourceType string             `gorm:"column:resource_type;not null"`
	ResourceID   string             `gorm:"column:resource_id;not null;index"`
	Detail       types.Document     `gorm:"column:detail;type:jsonb"`
	Outcome      enums.AuditOutcome `gorm:"column:outcome;type:audit_outcome;not null;default:'success'"`
	CreatedAt    time.Time          `gorm:"column:created_at;autoCreateTime"`
}
