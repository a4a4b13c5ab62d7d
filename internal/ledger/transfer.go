package ledger

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/wekezahq/coopledger-backend/internal/audit"
	"github.com/wekezahq/coopledger-backend/pkg/db/models"
	"github.com/wekezahq/coopledger-backend/pkg/db/types"
	"github.com/wekezahq/coopledger-backend/pkg/enums"
	pkgerrors "github.com/wekezahq/coopledger-backend/pkg/errors"
)

// Transfer moves money between two funds. One transaction record ties to
// one fund, so the move is written as a pair: a withdrawal on the source
// and an investment on the target, linked by a shared reference.
func (s *service) Transfer(ctx context.Context, input TransferInput) (result *TransferResult, err error) {
	defer func(start time.Time) { s.observe("transfer", start, err) }(time.Now())

	if !input.Actor.Valid() {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "acting identity is required")
	}
	if err := requirePositive(input.Amount, "transfer amount"); err != nil {
		return nil, err
	}
	if input.SourceFundID == input.TargetFundID {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "source and target funds must differ")
	}

	reference := newReference("TRF")
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		source, err := loadActiveFund(ctx, repo, input.SourceFundID)
		if err != nil {
			return err
		}
		target, err := loadActiveFund(ctx, repo, input.TargetFundID)
		if err != nil {
			return err
		}
		if source.Balance.LessThan(input.Amount) {
			return pkgerrors.InsufficientFunds(decString(input.Amount), decString(source.Balance))
		}

		sourceAfter := source.Balance.Sub(input.Amount)
		targetAfter := target.Balance.Add(input.Amount)

		sourceID := source.ID
		outflow := models.Transaction{
			Type:          enums.TransactionTypeWithdrawal,
			Amount:        input.Amount,
			Description:   input.Description,
			Status:        enums.TransactionStatusCompleted,
			Date:          time.Now().UTC(),
			FundID:        &sourceID,
			AuthorizedBy:  authorizedBy(input.Actor),
			Reference:     reference,
			BalanceBefore: source.Balance,
			BalanceAfter:  sourceAfter,
		}
		targetID := target.ID
		inflow := models.Transaction{
			Type:          enums.TransactionTypeInvestment,
			Amount:        input.Amount,
			Description:   input.Description,
			Status:        enums.TransactionStatusCompleted,
			Date:          time.Now().UTC(),
			FundID:        &targetID,
			AuthorizedBy:  authorizedBy(input.Actor),
			Reference:     reference,
			BalanceBefore: target.Balance,
			BalanceAfter:  targetAfter,
		}
		if source.ProjectID != nil {
			outflow.ProjectID = source.ProjectID
		}
		if target.ProjectID != nil {
			inflow.ProjectID = target.ProjectID
		}

		if err := repo.CreateTransaction(ctx, &outflow); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "creating source transaction")
		}
		if err := repo.CreateTransaction(ctx, &inflow); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "creating target transaction")
		}
		if err := setFundBalance(ctx, repo, source, sourceAfter); err != nil {
			return err
		}
		if err := setFundBalance(ctx, repo, target, targetAfter); err != nil {
			return err
		}

		result = &TransferResult{Outflow: &outflow, Inflow: &inflow}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.sideEffects(ctx, audit.Entry{
		Actor:        input.Actor,
		Action:       enums.AuditActionFundsTransferred,
		ResourceType: "fund",
		ResourceID:   input.SourceFundID.String(),
		Detail: types.Document{
			"source_fund_id": input.SourceFundID.String(),
			"target_fund_id": input.TargetFundID.String(),
			"amount":         decString(input.Amount),
			"reference":      reference,
		},
	})
	return result, nil
}
