package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/wekezahq/coopledger-backend/pkg/enums"
)

// Fund is a named pool of money. Its balance is mutated only by ledger
// engine operations; it must always equal the signed sum of completed
// transactions referencing it (verified by reconciliation).
type Fund struct {
	ID                   uuid.UUID                  `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Name                 string                     `gorm:"column:name;not null"`
	Type                 enums.FundType             `gorm:"column:type;type:fund_type;not null;default:'general'"`
	Status               enums.FundStatus           `gorm:"column:status;type:fund_status;not null;default:'active'"`
	Balance              decimal.Decimal            `gorm:"column:balance;type:numeric(14,2);not null;default:0"`
	ProjectID            *uuid.UUID                 `gorm:"column:project_id;type:uuid;index"`
	ReconciliationStatus enums.ReconciliationStatus `gorm:"column:reconciliation_status;type:reconciliation_status;not null;default:'unverified'"`
	ReconciledAt         *time.Time                 `gorm:"column:reconciled_at"`
	CreatedAt            time.Time                  `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt            time.Time                  `gorm:"column:updated_at;autoUpdateTime"`
}
