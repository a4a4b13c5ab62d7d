package ledger

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/wekezahq/coopledger-backend/internal/archive"
	"github.com/wekezahq/coopledger-backend/internal/audit"
	"github.com/wekezahq/coopledger-backend/pkg/db/models"
	"github.com/wekezahq/coopledger-backend/pkg/enums"
	pkgerrors "github.com/wekezahq/coopledger-backend/pkg/errors"
	"github.com/wekezahq/coopledger-backend/pkg/identity"
	"github.com/wekezahq/coopledger-backend/pkg/logger"
	"github.com/wekezahq/coopledger-backend/pkg/metrics"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type archiveWriter interface {
	Archive(ctx context.Context, tx *gorm.DB, input archive.Input) (*models.DeletedRecord, error)
}

// StatsNotifier signals that ledger state changed and dashboard summaries
// should be rebuilt. Implementations must be safe to call after commit and
// must never fail the operation that triggered them.
type StatsNotifier interface {
	NotifyChanged(ctx context.Context)
}

// Service is the ledger engine. Every operation runs as one atomic unit
// of work: all balance mutations plus the transaction record commit or
// roll back together. Audit and stats side effects happen after commit
// and are best-effort.
type Service interface {
	Deposit(ctx context.Context, input DepositInput) (*models.Transaction, error)
	ApproveDeposit(ctx context.Context, input ApproveDepositInput) (*models.Transaction, error)
	EditDeposit(ctx context.Context, input EditDepositInput) (*models.Transaction, error)
	Expense(ctx context.Context, input ExpenseInput) (*models.Transaction, error)
	Earning(ctx context.Context, input EarningInput) (*models.Transaction, error)
	Transfer(ctx context.Context, input TransferInput) (*TransferResult, error)
	DistributeDividends(ctx context.Context, input DividendInput) (*DividendResult, error)
	TransferEquity(ctx context.Context, input EquityTransferInput) (*EquityTransferResult, error)
	DeleteTransaction(ctx context.Context, input DeleteTransactionInput) error
	ReconcileFund(ctx context.Context, input ReconcileFundInput) (*ReconciliationResult, error)
	ListTransactions(ctx context.Context, input ListTransactionsInput) (*TransactionPage, error)
}

type service struct {
	repo    Repository
	tx      txRunner
	auditor audit.Recorder
	archive archiveWriter
	stats   StatsNotifier
	logg    *logger.Logger
	metrics *metrics.LedgerMetrics
	epsilon decimal.Decimal
}

// ServiceParams collects the ledger engine dependencies.
type ServiceParams struct {
	Repo             Repository
	Tx               txRunner
	Auditor          audit.Recorder
	Archive          archiveWriter
	Stats            StatsNotifier
	Logger           *logger.Logger
	Metrics          *metrics.LedgerMetrics
	ReconcileEpsilon string
}

// NewService builds the ledger engine with the required dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("ledger repository required")
	}
	if params.Tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if params.Auditor == nil {
		return nil, fmt.Errorf("audit recorder required")
	}
	if params.Archive == nil {
		return nil, fmt.Errorf("reversal archive required")
	}
	if params.Stats == nil {
		return nil, fmt.Errorf("stats notifier required")
	}
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}

	epsilon := decimal.New(1, -2)
	if params.ReconcileEpsilon != "" {
		parsed, err := decimal.NewFromString(params.ReconcileEpsilon)
		if err != nil {
			return nil, fmt.Errorf("invalid reconcile epsilon %q: %w", params.ReconcileEpsilon, err)
		}
		epsilon = parsed
	}

	return &service{
		repo:    params.Repo,
		tx:      params.Tx,
		auditor: params.Auditor,
		archive: params.Archive,
		stats:   params.Stats,
		logg:    params.Logger,
		metrics: params.Metrics,
		epsilon: epsilon,
	}, nil
}

// observe wraps an operation with metric bookkeeping.
func (s *service) observe(operation string, start time.Time, err error) {
	s.metrics.ObserveDuration(operation, time.Since(start))
	if err != nil {
		s.metrics.IncFailure(operation)
		return
	}
	s.metrics.IncSuccess(operation)
}

// sideEffects records the audit entry and pokes the stats collaborator.
// Both run outside the committed transaction: a failure here is logged
// and surfaced to operators but never unwinds the financial mutation.
func (s *service) sideEffects(ctx context.Context, entry audit.Entry) {
	if _, err := s.auditor.Record(ctx, entry); err != nil {
		logCtx := s.logg.WithField(ctx, "audit_action", string(entry.Action))
		s.logg.Error(logCtx, "audit record failed after commit", err)
	}
	s.stats.NotifyChanged(ctx)
}

func notFoundOr(err error, code pkgerrors.Code, notFoundMsg, wrapMsg string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return pkgerrors.New(pkgerrors.CodeNotFound, notFoundMsg)
	}
	return pkgerrors.Wrap(code, err, wrapMsg)
}

func requirePositive(amount decimal.Decimal, what string) error {
	if !amount.IsPositive() {
		return pkgerrors.New(pkgerrors.CodeValidation, what+" must be greater than zero")
	}
	return nil
}

func decString(d decimal.Decimal) string {
	return d.StringFixed(2)
}

func authorizedBy(actor identity.Actor) string {
	if strings.TrimSpace(actor.Name) != "" {
		return actor.Name
	}
	return actor.ID
}

func newReference(prefix string) string {
	return prefix + "-" + strings.ToUpper(uuid.NewString()[:8])
}

// loadActiveFund fetches a fund and refuses mutations against archived ones.
func loadActiveFund(ctx context.Context, repo Repository, id uuid.UUID) (*models.Fund, error) {
	fund, err := repo.FindFund(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, pkgerrors.CodeInternal, "fund not found", "loading fund")
	}
	if fund.Status == enums.FundStatusArchived {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "fund is archived")
	}
	return fund, nil
}

// setFundBalance writes a fund's new balance and, when the fund belongs to
// a project, keeps the project's mirrored balance in step inside the same
// transaction.
func setFundBalance(ctx context.Context, repo Repository, fund *models.Fund, balance decimal.Decimal) error {
	if err := repo.UpdateFund(ctx, fund.ID, map[string]any{"balance": balance}); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "updating fund balance")
	}
	if fund.ProjectID != nil {
		err := repo.UpdateProject(ctx, *fund.ProjectID, map[string]any{"current_fund_balance": balance})
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "mirroring project balance")
		}
	}
	return nil
}

func txnMetadata(fields map[string]any) json.RawMessage {
	if len(fields) == 0 {
		return nil
	}
	raw, err := json.Marshal(fields)
	if err != nil {
		return nil
	}
	return raw
}
