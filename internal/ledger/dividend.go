package ledger

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/wekezahq/coopledger-backend/internal/audit"
	"github.com/wekezahq/coopledger-backend/pkg/db/models"
	"github.com/wekezahq/coopledger-backend/pkg/db/types"
	"github.com/wekezahq/coopledger-backend/pkg/enums"
	pkgerrors "github.com/wekezahq/coopledger-backend/pkg/errors"
)

// DistributeDividends pays out of a pool (a project's linked fund or a
// standalone fund) across all active shareholders. Per-member rewards are
// truncated to two decimals so their sum can never exceed the requested
// amount; the pool is debited by the disbursed total only and the
// truncation residual simply stays in the pool.
func (s *service) DistributeDividends(ctx context.Context, input DividendInput) (result *DividendResult, err error) {
	defer func(start time.Time) { s.observe("distribute_dividends", start, err) }(time.Now())

	if !input.Actor.Valid() {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "acting identity is required")
	}
	if err := requirePositive(input.Amount, "dividend amount"); err != nil {
		return nil, err
	}
	if input.ProjectID == nil && input.FundID == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "a distribution pool is required")
	}

	reference := newReference("DIV")
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		var project *models.Project
		var fund *models.Fund
		var err error
		if input.ProjectID != nil {
			project, err = repo.FindProject(ctx, *input.ProjectID)
			if err != nil {
				return notFoundOr(err, pkgerrors.CodeInternal, "project not found", "loading project")
			}
			fund, err = loadActiveFund(ctx, repo, project.FundID)
		} else {
			fund, err = loadActiveFund(ctx, repo, *input.FundID)
		}
		if err != nil {
			return err
		}

		shareholders, err := repo.ListActiveShareholders(ctx)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "listing shareholders")
		}
		var totalShares int64
		for _, member := range shareholders {
			totalShares += member.Shares
		}
		if totalShares == 0 {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "no active members hold shares")
		}

		rate := input.Amount.Div(decimal.NewFromInt(totalShares))
		totalDisbursed := decimal.Zero
		rewards := make([]decimal.Decimal, len(shareholders))
		for i, member := range shareholders {
			reward := rate.Mul(decimal.NewFromInt(member.Shares)).Truncate(2)
			rewards[i] = reward
			totalDisbursed = totalDisbursed.Add(reward)
		}
		if totalDisbursed.IsZero() {
			return pkgerrors.New(pkgerrors.CodeValidation, "amount is too small to distribute")
		}
		if fund.Balance.LessThan(totalDisbursed) {
			return pkgerrors.InsufficientFunds(decString(totalDisbursed), decString(fund.Balance))
		}

		fundID := fund.ID
		running := fund.Balance
		txns := make([]models.Transaction, 0, len(shareholders))
		for i, member := range shareholders {
			if rewards[i].IsZero() {
				continue
			}
			memberID := member.ID
			after := running.Sub(rewards[i])
			txn := models.Transaction{
				Type:          enums.TransactionTypeDividend,
				Amount:        rewards[i],
				Description:   input.Description,
				Status:        enums.TransactionStatusCompleted,
				Date:          time.Now().UTC(),
				MemberID:      &memberID,
				FundID:        &fundID,
				AuthorizedBy:  authorizedBy(input.Actor),
				Reference:     reference,
				BalanceBefore: running,
				BalanceAfter:  after,
				Metadata:      txnMetadata(map[string]any{"shares": member.Shares}),
			}
			if project != nil {
				projectID := project.ID
				txn.ProjectID = &projectID
			}
			txns = append(txns, txn)
			running = after
		}
		if err := repo.CreateTransactions(ctx, txns); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "creating dividend transactions")
		}
		if err := setFundBalance(ctx, repo, fund, running); err != nil {
			return err
		}

		result = &DividendResult{
			Transactions:   txns,
			RatePerShare:   rate,
			TotalDisbursed: totalDisbursed,
			Residual:       input.Amount.Sub(totalDisbursed),
			Recipients:     len(txns),
			Reference:      reference,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	poolType, poolID := "fund", ""
	if input.ProjectID != nil {
		poolType, poolID = "project", input.ProjectID.String()
	} else {
		poolID = input.FundID.String()
	}
	s.sideEffects(ctx, audit.Entry{
		Actor:        input.Actor,
		Action:       enums.AuditActionDividendsDistributed,
		ResourceType: poolType,
		ResourceID:   poolID,
		Detail: types.Document{
			"rate_per_share":  result.RatePerShare.String(),
			"recipients":      result.Recipients,
			"total_disbursed": decString(result.TotalDisbursed),
			"residual":        decString(result.Residual),
			"reference":       reference,
		},
	})
	return result, nil
}
