package ledger

import (
	"context"
	"encoding/json"
	"time"

	"gorm.io/gorm"

	"github.com/wekezahq/coopledger-backend/internal/audit"
	"github.com/wekezahq/coopledger-backend/pkg/db/models"
	"github.com/wekezahq/coopledger-backend/pkg/db/types"
	"github.com/wekezahq/coopledger-backend/pkg/enums"
	pkgerrors "github.com/wekezahq/coopledger-backend/pkg/errors"
)

// Deposit records a member contribution into a fund. A completed deposit
// credits the fund balance and the member's cumulative contribution in the
// same transaction; a pending one only records the movement. Shares are
// never minted here.
func (s *service) Deposit(ctx context.Context, input DepositInput) (txn *models.Transaction, err error) {
	defer func(start time.Time) { s.observe("deposit", start, err) }(time.Now())

	if !input.Actor.Valid() {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "acting identity is required")
	}
	if err := requirePositive(input.Amount, "deposit amount"); err != nil {
		return nil, err
	}
	status := input.Status
	if status == "" {
		status = enums.TransactionStatusCompleted
	}
	if status != enums.TransactionStatusPending && status != enums.TransactionStatusCompleted {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "deposit status must be pending or completed")
	}
	if !input.Method.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid deposit method")
	}

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		member, err := repo.FindMember(ctx, input.MemberID)
		if err != nil {
			return notFoundOr(err, pkgerrors.CodeInternal, "member not found", "loading member")
		}
		fund, err := loadActiveFund(ctx, repo, input.FundID)
		if err != nil {
			return err
		}

		balanceBefore := fund.Balance
		balanceAfter := balanceBefore
		if status == enums.TransactionStatusCompleted {
			balanceAfter = balanceBefore.Add(input.Amount)
			if err := setFundBalance(ctx, repo, fund, balanceAfter); err != nil {
				return err
			}
			contributed := member.TotalContributed.Add(input.Amount)
			err := repo.UpdateMember(ctx, member.ID, map[string]any{"total_contributed": contributed})
			if err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "updating member contribution")
			}
		}

		memberID := member.ID
		fundID := fund.ID
		method := input.Method
		txn = &models.Transaction{
			Type:          enums.TransactionTypeDeposit,
			Amount:        input.Amount,
			Description:   input.Description,
			Status:        status,
			Date:          time.Now().UTC(),
			MemberID:      &memberID,
			FundID:        &fundID,
			Method:        &method,
			AuthorizedBy:  authorizedBy(input.Actor),
			Reference:     input.Reference,
			BalanceBefore: balanceBefore,
			BalanceAfter:  balanceAfter,
		}
		if err := repo.CreateTransaction(ctx, txn); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "creating deposit transaction")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.sideEffects(ctx, audit.Entry{
		Actor:        input.Actor,
		Action:       enums.AuditActionDepositCreated,
		ResourceType: "transaction",
		ResourceID:   txn.ID.String(),
		Detail: types.Document{
			"member_id": input.MemberID.String(),
			"fund_id":   input.FundID.String(),
			"amount":    decString(input.Amount),
			"status":    string(txn.Status),
			"method":    string(input.Method),
		},
	})
	return txn, nil
}

// ApproveDeposit transitions a pending deposit to completed and applies the
// balance deltas that were deferred at creation time.
func (s *service) ApproveDeposit(ctx context.Context, input ApproveDepositInput) (txn *models.Transaction, err error) {
	defer func(start time.Time) { s.observe("approve_deposit", start, err) }(time.Now())

	if !input.Actor.Valid() {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "acting identity is required")
	}

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		found, err := repo.FindTransaction(ctx, input.TransactionID)
		if err != nil {
			return notFoundOr(err, pkgerrors.CodeInternal, "transaction not found", "loading transaction")
		}
		if found.Type != enums.TransactionTypeDeposit {
			return pkgerrors.New(pkgerrors.CodeValidation, "only deposits can be approved")
		}
		if found.Status == enums.TransactionStatusCompleted {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "deposit is already completed")
		}
		if found.Status != enums.TransactionStatusPending {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "only pending deposits can be approved")
		}
		if found.FundID == nil || found.MemberID == nil {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "deposit is missing its fund or member link")
		}

		member, err := repo.FindMember(ctx, *found.MemberID)
		if err != nil {
			return notFoundOr(err, pkgerrors.CodeInternal, "member not found", "loading member")
		}
		fund, err := loadActiveFund(ctx, repo, *found.FundID)
		if err != nil {
			return err
		}

		balanceBefore := fund.Balance
		balanceAfter := balanceBefore.Add(found.Amount)
		if err := setFundBalance(ctx, repo, fund, balanceAfter); err != nil {
			return err
		}
		contributed := member.TotalContributed.Add(found.Amount)
		if err := repo.UpdateMember(ctx, member.ID, map[string]any{"total_contributed": contributed}); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "updating member contribution")
		}

		updates := map[string]any{
			"status":         enums.TransactionStatusCompleted,
			"authorized_by":  authorizedBy(input.Actor),
			"balance_before": balanceBefore,
			"balance_after":  balanceAfter,
		}
		if err := repo.UpdateTransaction(ctx, found.ID, updates); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "completing deposit")
		}

		found.Status = enums.TransactionStatusCompleted
		found.AuthorizedBy = authorizedBy(input.Actor)
		found.BalanceBefore = balanceBefore
		found.BalanceAfter = balanceAfter
		txn = found
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.sideEffects(ctx, audit.Entry{
		Actor:        input.Actor,
		Action:       enums.AuditActionDepositApproved,
		ResourceType: "transaction",
		ResourceID:   txn.ID.String(),
		Detail: types.Document{
			"amount":  decString(txn.Amount),
			"fund_id": txn.FundID.String(),
		},
	})
	return txn, nil
}

// EditDeposit rewrites an existing deposit using undo then redo: the old
// balance impact is reversed against the old fund and member when it had
// applied, then the new combination is applied when the new status is
// completed. Deltas are never stacked on top of each other.
func (s *service) EditDeposit(ctx context.Context, input EditDepositInput) (txn *models.Transaction, err error) {
	defer func(start time.Time) { s.observe("edit_deposit", start, err) }(time.Now())

	if !input.Actor.Valid() {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "acting identity is required")
	}
	if err := requirePositive(input.Amount, "deposit amount"); err != nil {
		return nil, err
	}
	if input.Status != enums.TransactionStatusPending && input.Status != enums.TransactionStatusCompleted {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "deposit status must be pending or completed")
	}
	if !input.Method.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid deposit method")
	}

	var previous types.Document
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		found, err := repo.FindTransaction(ctx, input.TransactionID)
		if err != nil {
			return notFoundOr(err, pkgerrors.CodeInternal, "transaction not found", "loading transaction")
		}
		if found.Type != enums.TransactionTypeDeposit {
			return pkgerrors.New(pkgerrors.CodeValidation, "only deposits can be edited")
		}
		if found.FundID == nil || found.MemberID == nil {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "deposit is missing its fund or member link")
		}
		previous = types.Document{
			"member_id": found.MemberID.String(),
			"fund_id":   found.FundID.String(),
			"amount":    decString(found.Amount),
			"status":    string(found.Status),
		}

		// Layer the edit marker over any metadata already stored on the row.
		var meta types.Document
		if len(found.Metadata) > 0 {
			if err := json.Unmarshal(found.Metadata, &meta); err != nil {
				meta = nil
			}
		}
		meta = meta.Merge(types.Document{"last_edit": previous.Merge(types.Document{
			"edited_by": input.Actor.ID,
		})})

		// Undo the applied impact against the old fund and member.
		if found.Status == enums.TransactionStatusCompleted {
			oldFund, err := repo.FindFund(ctx, *found.FundID)
			if err != nil {
				return notFoundOr(err, pkgerrors.CodeInternal, "fund not found", "loading fund")
			}
			oldMember, err := repo.FindMember(ctx, *found.MemberID)
			if err != nil {
				return notFoundOr(err, pkgerrors.CodeInternal, "member not found", "loading member")
			}
			if err := setFundBalance(ctx, repo, oldFund, oldFund.Balance.Sub(found.Amount)); err != nil {
				return err
			}
			reduced := oldMember.TotalContributed.Sub(found.Amount)
			if err := repo.UpdateMember(ctx, oldMember.ID, map[string]any{"total_contributed": reduced}); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "reversing member contribution")
			}
		}

		// Redo with the new values. The reads below run on the same
		// transaction, so they already observe the reversal above even
		// when the fund or member is unchanged.
		member, err := repo.FindMember(ctx, input.MemberID)
		if err != nil {
			return notFoundOr(err, pkgerrors.CodeInternal, "member not found", "loading member")
		}
		fund, err := loadActiveFund(ctx, repo, input.FundID)
		if err != nil {
			return err
		}

		balanceBefore := fund.Balance
		balanceAfter := balanceBefore
		if input.Status == enums.TransactionStatusCompleted {
			balanceAfter = balanceBefore.Add(input.Amount)
			if err := setFundBalance(ctx, repo, fund, balanceAfter); err != nil {
				return err
			}
			contributed := member.TotalContributed.Add(input.Amount)
			if err := repo.UpdateMember(ctx, member.ID, map[string]any{"total_contributed": contributed}); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "updating member contribution")
			}
		}

		memberID := member.ID
		fundID := fund.ID
		method := input.Method
		updates := map[string]any{
			"member_id":      memberID,
			"fund_id":        fundID,
			"amount":         input.Amount,
			"status":         input.Status,
			"method":         method,
			"description":    input.Description,
			"authorized_by":  authorizedBy(input.Actor),
			"balance_before": balanceBefore,
			"balance_after":  balanceAfter,
			"metadata":       txnMetadata(meta),
		}
		if err := repo.UpdateTransaction(ctx, found.ID, updates); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "rewriting deposit")
		}

		found.MemberID = &memberID
		found.FundID = &fundID
		found.Amount = input.Amount
		found.Status = input.Status
		found.Method = &method
		found.Description = input.Description
		found.AuthorizedBy = authorizedBy(input.Actor)
		found.BalanceBefore = balanceBefore
		found.BalanceAfter = balanceAfter
		found.Metadata = txnMetadata(meta)
		txn = found
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.sideEffects(ctx, audit.Entry{
		Actor:        input.Actor,
		Action:       enums.AuditActionDepositEdited,
		ResourceType: "transaction",
		ResourceID:   txn.ID.String(),
		Detail: types.Document{
			"previous": previous,
			"current": types.Document{
				"member_id": txn.MemberID.String(),
				"fund_id":   txn.FundID.String(),
				"amount":    decString(txn.Amount),
				"status":    string(txn.Status),
			},
		},
	})
	return txn, nil
}
