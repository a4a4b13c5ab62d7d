package ledger

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/wekezahq/coopledger-backend/internal/archive"
	"github.com/wekezahq/coopledger-backend/internal/audit"
	"github.com/wekezahq/coopledger-backend/pkg/db/models"
	"github.com/wekezahq/coopledger-backend/pkg/db/types"
	"github.com/wekezahq/coopledger-backend/pkg/enums"
	pkgerrors "github.com/wekezahq/coopledger-backend/pkg/errors"
)

// DeleteTransaction removes a transaction after archiving its full
// snapshot. A completed transaction has its balance impact reversed by
// type before removal; pending and failed ones are removed as-is. Any
// failure mid-reversal rolls the whole deletion back.
func (s *service) DeleteTransaction(ctx context.Context, input DeleteTransactionInput) (err error) {
	defer func(start time.Time) { s.observe("delete_transaction", start, err) }(time.Now())

	if !input.Actor.Valid() {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "acting identity is required")
	}

	var snapshot *models.Transaction
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		found, err := repo.FindTransaction(ctx, input.TransactionID)
		if err != nil {
			return notFoundOr(err, pkgerrors.CodeInternal, "transaction not found", "loading transaction")
		}
		snapshot = found

		if _, err := s.archive.Archive(ctx, tx, archive.Input{
			OriginalID: found.ID,
			Collection: "transactions",
			Snapshot:   found,
			Actor:      input.Actor,
			Reason:     input.Reason,
		}); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "archiving transaction")
		}

		if found.Status == enums.TransactionStatusCompleted {
			if err := s.reverse(ctx, repo, found); err != nil {
				return err
			}
		}

		if err := repo.DeleteTransaction(ctx, found.ID); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "deleting transaction")
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.sideEffects(ctx, audit.Entry{
		Actor:        input.Actor,
		Action:       enums.AuditActionTransactionDeleted,
		ResourceType: "transaction",
		ResourceID:   input.TransactionID.String(),
		Detail: types.Document{
			"type":   string(snapshot.Type),
			"status": string(snapshot.Status),
			"amount": decString(snapshot.Amount),
			"reason": input.Reason,
		},
	})
	return nil
}

// reverse undoes the balance impact of a completed transaction. Inflows
// subtract from the fund, outflows add back, project and member totals
// reverse symmetrically. Shares are never touched here: they are
// administered only by explicit equity operations.
func (s *service) reverse(ctx context.Context, repo Repository, txn *models.Transaction) error {
	switch txn.Type {
	case enums.TransactionTypeDeposit:
		if err := s.reverseFundDelta(ctx, repo, txn, true); err != nil {
			return err
		}
		if txn.MemberID != nil {
			member, err := repo.FindMember(ctx, *txn.MemberID)
			if err != nil {
				return notFoundOr(err, pkgerrors.CodeInternal, "member not found", "loading member")
			}
			reduced := member.TotalContributed.Sub(txn.Amount)
			if err := repo.UpdateMember(ctx, member.ID, map[string]any{"total_contributed": reduced}); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "reversing member contribution")
			}
		}
		return nil

	case enums.TransactionTypeEarning, enums.TransactionTypeInvestment:
		if err := s.reverseFundDelta(ctx, repo, txn, true); err != nil {
			return err
		}
		return s.reverseProjectTotals(ctx, repo, txn)

	case enums.TransactionTypeExpense, enums.TransactionTypeWithdrawal, enums.TransactionTypeDividend:
		if err := s.reverseFundDelta(ctx, repo, txn, false); err != nil {
			return err
		}
		return s.reverseProjectTotals(ctx, repo, txn)

	case enums.TransactionTypeAdjustment:
		if txn.FundID == nil {
			return nil
		}
		fund, err := repo.FindFund(ctx, *txn.FundID)
		if err != nil {
			return notFoundOr(err, pkgerrors.CodeInternal, "fund not found", "loading fund")
		}
		delta := txn.BalanceAfter.Sub(txn.BalanceBefore)
		return setFundBalance(ctx, repo, fund, fund.Balance.Sub(delta))

	case enums.TransactionTypeEquityTransfer:
		// One record is half of a zero-sum pair; reversing it alone would
		// unbalance member holdings. Issue a compensating transfer instead.
		return pkgerrors.New(pkgerrors.CodeStateConflict, "equity transfers cannot be deleted")

	default:
		return pkgerrors.New(pkgerrors.CodeStateConflict, "transaction type does not support deletion")
	}
}

// reverseFundDelta undoes the fund-side impact: wasInflow subtracts the
// amount, otherwise it is added back.
func (s *service) reverseFundDelta(ctx context.Context, repo Repository, txn *models.Transaction, wasInflow bool) error {
	if txn.FundID == nil {
		return nil
	}
	fund, err := repo.FindFund(ctx, *txn.FundID)
	if err != nil {
		return notFoundOr(err, pkgerrors.CodeInternal, "fund not found", "loading fund")
	}
	balance := fund.Balance
	if wasInflow {
		balance = balance.Sub(txn.Amount)
	} else {
		balance = balance.Add(txn.Amount)
	}
	return setFundBalance(ctx, repo, fund, balance)
}

// reverseProjectTotals undoes a project-linked earning or expense total.
// The mirrored balance is already handled by the fund-side reversal.
func (s *service) reverseProjectTotals(ctx context.Context, repo Repository, txn *models.Transaction) error {
	if txn.ProjectID == nil {
		return nil
	}
	project, err := repo.FindProject(ctx, *txn.ProjectID)
	if err != nil {
		return notFoundOr(err, pkgerrors.CodeInternal, "project not found", "loading project")
	}

	var updates map[string]any
	switch txn.Type {
	case enums.TransactionTypeEarning:
		updates = map[string]any{"total_earnings": project.TotalEarnings.Sub(txn.Amount)}
	case enums.TransactionTypeExpense:
		updates = map[string]any{"total_expenses": project.TotalExpenses.Sub(txn.Amount)}
	default:
		return nil
	}
	if err := repo.UpdateProject(ctx, project.ID, updates); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "reversing project totals")
	}
	return nil
}
