package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/wekezahq/coopledger-backend/pkg/enums"
)

// ProjectUpdate is one entry in a project's ordered event sequence,
// appended whenever an earning or expense touches the project. Sequence is
// strictly increasing per project.
type ProjectUpdate struct {
	ID            uuid.UUID               `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	ProjectID     uuid.UUID               `gorm:"column:project_id;type:uuid;not null;index"`
	Sequence      int64                   `gorm:"column:sequence;not null"`
	Type          enums.ProjectUpdateType `gorm:"column:type;type:project_update_type;not null"`
	Amount        decimal.Decimal         `gorm:"column:amount;type:numeric(14,2);not null"`
	Description   string                  `gorm:"column:description;not null"`
	BalanceBefore decimal.Decimal         `gorm:"column:balance_before;type:numeric(14,2);not null"`
	BalanceAfter  decimal.Decimal         `gorm:"column:balance_after;type:numeric(14,2);not null"`
	TransactionID *uuid.UUID              `gorm:"column:transaction_id;type:uuid"`
	CreatedAt     time.Time               `gorm:"column:created_at;autoCreateTime"`
}
