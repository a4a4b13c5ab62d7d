package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/wekezahq/coopledger-backend/pkg/enums"
)

// Transaction is the record of one money movement. Once completed it is
// immutable; removal goes through the type-aware reversal path which
// archives the record first. BalanceBefore/BalanceAfter snapshot the
// affected fund balance at the moment the movement applied.
type Transaction struct {
	ID            uuid.UUID               `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Type          enums.TransactionType   `gorm:"column:type;type:transaction_type;not null"`
	Amount        decimal.Decimal         `gorm:"column:amount;type:numeric(14,2);not null"`
	Description   string                  `gorm:"column:description;not null"`
	Status        enums.TransactionStatus `gorm:"column:status;type:transaction_status;not null;default:'pending'"`
	Date          time.Time               `gorm:"column:date;not null"`
	MemberID      *uuid.UUID              `gorm:"column:member_id;type:uuid;index"`
	ProjectID     *uuid.UUID              `gorm:"column:project_id;type:uuid;index"`
	FundID        *uuid.UUID              `gorm:"column:fund_id;type:uuid;index"`
	Method        *enums.DepositMethod    `gorm:"column:method;type:deposit_method"`
	AuthorizedBy  string                  `gorm:"column:authorized_by;not null"`
	Reference     string                  `gorm:"column:reference;index"`
	BalanceBefore decimal.Decimal         `gorm:"column:balance_before;type:numeric(14,2);not null;default:0"`
	BalanceAfter  decimal.Decimal         `gorm:"column:balance_after;type:numeric(14,2);not null;default:0"`
	Metadata      json.RawMessage         `gorm:"column:metadata;type:jsonb"`
	CreatedAt     time.Time               `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt     time.Time               `gorm:"column:updated_at;autoUpdateTime"`
}
