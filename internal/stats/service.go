package stats

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/wekezahq/coopledger-backend/pkg/enums"
	"github.com/wekezahq/coopledger-backend/pkg/logger"
	pkgredis "github.com/wekezahq/coopledger-backend/pkg/redis"
)

const dashboardSummaryName = "dashboard"

// summaryTTL bounds staleness if recomputation stops firing; the next
// ledger change rebuilds the key anyway.
const summaryTTL = 24 * time.Hour

// Summary is the dashboard aggregate, recomputed from the whole dataset
// after every ledger change rather than maintained incrementally, so it
// can never drift from the source of truth.
type Summary struct {
	GeneratedAt      time.Time       `json:"generated_at"`
	ActiveFunds      int64           `json:"active_funds"`
	TotalBalance     decimal.Decimal `json:"total_balance"`
	Members          int64           `json:"members"`
	ActiveMembers    int64           `json:"active_members"`
	TotalShares      int64           `json:"total_shares"`
	TotalContributed decimal.Decimal `json:"total_contributed"`
	Projects         int64           `json:"projects"`
	ActiveProjects   int64           `json:"active_projects"`
	Transactions     int64           `json:"transactions"`
	TotalDeposits    decimal.Decimal `json:"total_deposits"`
	TotalExpenses    decimal.Decimal `json:"total_expenses"`
	TotalEarnings    decimal.Decimal `json:"total_earnings"`
	TotalDividends   decimal.Decimal `json:"total_dividends"`
}

// Service rebuilds the dashboard summary and stores it for readers.
type Service interface {
	Recompute(ctx context.Context) (*Summary, error)
	Latest(ctx context.Context) (*Summary, error)
}

type service struct {
	repo  Repository
	store pkgredis.SummaryStore
	logg  *logger.Logger
}

// NewService wires the stats recomputation service.
func NewService(repo Repository, store pkgredis.SummaryStore, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("stats repository required")
	}
	if store == nil {
		return nil, fmt.Errorf("summary store required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{repo: repo, store: store, logg: logg}, nil
}

func (s *service) Recompute(ctx context.Context) (*Summary, error) {
	fundCount, totalBalance, err := s.repo.FundTotals(ctx)
	if err != nil {
		return nil, fmt.Errorf("aggregating funds: %w", err)
	}
	members, err := s.repo.MemberTotals(ctx)
	if err != nil {
		return nil, fmt.Errorf("aggregating members: %w", err)
	}
	projects, err := s.repo.CountProjects(ctx, "")
	if err != nil {
		return nil, fmt.Errorf("counting projects: %w", err)
	}
	activeProjects, err := s.repo.CountProjects(ctx, enums.ProjectStatusActive)
	if err != nil {
		return nil, fmt.Errorf("counting active projects: %w", err)
	}
	txnTotals, txnCount, err := s.repo.TransactionTotals(ctx)
	if err != nil {
		return nil, fmt.Errorf("aggregating transactions: %w", err)
	}

	summary := &Summary{
		GeneratedAt:      time.Now().UTC(),
		ActiveFunds:      fundCount,
		TotalBalance:     totalBalance,
		Members:          members.Total,
		ActiveMembers:    members.Active,
		TotalShares:      members.TotalShares,
		TotalContributed: members.TotalContributed,
		Projects:         projects,
		ActiveProjects:   activeProjects,
		Transactions:     txnCount,
		TotalDeposits:    txnTotals[enums.TransactionTypeDeposit],
		TotalExpenses:    txnTotals[enums.TransactionTypeExpense],
		TotalEarnings:    txnTotals[enums.TransactionTypeEarning],
		TotalDividends:   txnTotals[enums.TransactionTypeDividend],
	}

	payload, err := json.Marshal(summary)
	if err != nil {
		return nil, fmt.Errorf("encoding summary: %w", err)
	}
	key := s.store.SummaryKey(dashboardSummaryName)
	if err := s.store.Set(ctx, key, payload, summaryTTL); err != nil {
		return nil, fmt.Errorf("storing summary: %w", err)
	}

	s.logg.Info(s.logg.WithField(ctx, "summary_key", key), "dashboard summary recomputed")
	return summary, nil
}

func (s *service) Latest(ctx context.Context) (*Summary, error) {
	raw, err := s.store.Get(ctx, s.store.SummaryKey(dashboardSummaryName))
	if err != nil {
		return nil, fmt.Errorf("reading summary: %w", err)
	}
	var summary Summary
	if err := json.Unmarshal([]byte(raw), &summary); err != nil {
		return nil, fmt.Errorf("decoding summary: %w", err)
	}
	return &summary, nil
}
