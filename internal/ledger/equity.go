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

// TransferEquity moves contributed capital and shares from one member to
// one or more others. No fund balance changes: the operation is zero-sum
// across members. The source is auto-deactivated when both holdings land
// on exactly zero.
func (s *service) TransferEquity(ctx context.Context, input EquityTransferInput) (result *EquityTransferResult, err error) {
	defer func(start time.Time) { s.observe("transfer_equity", start, err) }(time.Now())

	if !input.Actor.Valid() {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "acting identity is required")
	}
	if len(input.Allocations) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "at least one allocation is required")
	}

	totalAmount := decimal.Zero
	var totalShares int64
	for _, alloc := range input.Allocations {
		if alloc.TargetMemberID == input.SourceMemberID {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "a member cannot transfer equity to itself")
		}
		if alloc.Amount.IsNegative() || alloc.Shares < 0 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "allocation amount and shares must not be negative")
		}
		if alloc.Amount.IsZero() && alloc.Shares == 0 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "allocation must move an amount or shares")
		}
		totalAmount = totalAmount.Add(alloc.Amount)
		totalShares += alloc.Shares
	}

	reference := newReference("EQT")
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		source, err := repo.FindMember(ctx, input.SourceMemberID)
		if err != nil {
			return notFoundOr(err, pkgerrors.CodeInternal, "source member not found", "loading source member")
		}
		if source.TotalContributed.LessThan(totalAmount) {
			return pkgerrors.InsufficientFunds(decString(totalAmount), decString(source.TotalContributed))
		}
		if source.Shares < totalShares {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "source member holds fewer shares than requested")
		}

		now := time.Now().UTC()
		targets := make([]models.Transaction, 0, len(input.Allocations))
		for _, alloc := range input.Allocations {
			target, err := repo.FindMember(ctx, alloc.TargetMemberID)
			if err != nil {
				return notFoundOr(err, pkgerrors.CodeInternal, "target member not found", "loading target member")
			}
			if target.Status != enums.MemberStatusActive {
				return pkgerrors.New(pkgerrors.CodeStateConflict, "target member is not active")
			}

			updates := map[string]any{
				"total_contributed": target.TotalContributed.Add(alloc.Amount),
				"shares":            target.Shares + alloc.Shares,
			}
			if err := repo.UpdateMember(ctx, target.ID, updates); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "crediting target member")
			}

			targetID := target.ID
			targets = append(targets, models.Transaction{
				Type:         enums.TransactionTypeEquityTransfer,
				Amount:       alloc.Amount,
				Description:  input.Description,
				Status:       enums.TransactionStatusCompleted,
				Date:         now,
				MemberID:     &targetID,
				AuthorizedBy: authorizedBy(input.Actor),
				Reference:    reference,
				Metadata: txnMetadata(map[string]any{
					"direction":        "in",
					"shares":           alloc.Shares,
					"source_member_id": source.ID.String(),
				}),
			})
		}
		if err := repo.CreateTransactions(ctx, targets); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "creating target transactions")
		}

		remainingAmount := source.TotalContributed.Sub(totalAmount)
		remainingShares := source.Shares - totalShares
		deactivated := remainingAmount.IsZero() && remainingShares == 0
		updates := map[string]any{
			"total_contributed": remainingAmount,
			"shares":            remainingShares,
		}
		if deactivated {
			updates["status"] = enums.MemberStatusInactive
		}
		if err := repo.UpdateMember(ctx, source.ID, updates); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "debiting source member")
		}

		sourceID := source.ID
		sourceTxn := &models.Transaction{
			Type:         enums.TransactionTypeEquityTransfer,
			Amount:       totalAmount,
			Description:  input.Description,
			Status:       enums.TransactionStatusCompleted,
			Date:         now,
			MemberID:     &sourceID,
			AuthorizedBy: authorizedBy(input.Actor),
			Reference:    reference,
			Metadata: txnMetadata(map[string]any{
				"direction":  "out",
				"shares":     totalShares,
				"recipients": len(input.Allocations),
			}),
		}
		if err := repo.CreateTransaction(ctx, sourceTxn); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "creating source transaction")
		}

		result = &EquityTransferResult{
			SourceTransaction:  sourceTxn,
			TargetTransactions: targets,
			SourceDeactivated:  deactivated,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.sideEffects(ctx, audit.Entry{
		Actor:        input.Actor,
		Action:       enums.AuditActionEquityTransferred,
		ResourceType: "member",
		ResourceID:   input.SourceMemberID.String(),
		Detail: types.Document{
			"total_amount": decString(totalAmount),
			"total_shares": totalShares,
			"recipients":   len(input.Allocations),
			"deactivated":  result.SourceDeactivated,
			"reference":    reference,
		},
	})
	return result, nil
}
