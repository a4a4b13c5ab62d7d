package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"

	"github.com/wekezahq/coopledger-backend/pkg/enums"
)

// Project is a funded venture. It owns its linked fund; CurrentFundBalance
// mirrors that fund's balance and the two are always updated inside the
// same transaction.
type Project struct {
	ID                 uuid.UUID           `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Title              string              `gorm:"column:title;not null"`
	Category           string              `gorm:"column:category;not null"`
	Tags               pq.StringArray      `gorm:"column:tags;type:text[]"`
	InitialInvestment  decimal.Decimal     `gorm:"column:initial_investment;type:numeric(14,2);not null;default:0"`
	Budget             decimal.Decimal     `gorm:"column:budget;type:numeric(14,2);not null;default:0"`
	ExpectedReturn     decimal.Decimal     `gorm:"column:expected_return;type:numeric(14,2);not null;default:0"`
	TotalShares        int64               `gorm:"column:total_shares;not null;default:0"`
	Status             enums.ProjectStatus `gorm:"column:status;type:project_status;not null;default:'planned'"`
	Health             enums.ProjectHealth `gorm:"column:health;type:project_health;not null;default:'on_track'"`
	FundID             uuid.UUID           `gorm:"column:fund_id;type:uuid;not null"`
	CurrentFundBalance decimal.Decimal     `gorm:"column:current_fund_balance;type:numeric(14,2);not null;default:0"`
	TotalEarnings      decimal.Decimal     `gorm:"column:total_earnings;type:numeric(14,2);not null;default:0"`
	TotalExpenses      decimal.Decimal     `gorm:"column:total_expenses;type:numeric(14,2);not null;default:0"`
	CreatedAt          time.Time           `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt          time.Time           `gorm:"column:updated_at;autoUpdateTime"`
}
