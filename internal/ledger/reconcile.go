package ledger

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/wekezahq/coopledger-backend/internal/audit"
	"github.com/wekezahq/coopledger-backend/pkg/db/types"
	"github.com/wekezahq/coopledger-backend/pkg/enums"
	pkgerrors "github.com/wekezahq/coopledger-backend/pkg/errors"
)

// ReconcileFund verifies a fund's stored balance against its completed
// transaction history. A discrepancy is reported as data and stamped on
// the fund; the balance itself is never corrected here.
func (s *service) ReconcileFund(ctx context.Context, input ReconcileFundInput) (result *ReconciliationResult, err error) {
	defer func(start time.Time) { s.observe("reconcile_fund", start, err) }(time.Now())

	if !input.Actor.Valid() {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "acting identity is required")
	}

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		fund, err := repo.FindFund(ctx, input.FundID)
		if err != nil {
			return notFoundOr(err, pkgerrors.CodeInternal, "fund not found", "loading fund")
		}
		flows, err := repo.SumCompletedByFund(ctx, fund.ID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "aggregating fund history")
		}

		calculated := flows.Net()
		delta := fund.Balance.Sub(calculated)
		status := enums.ReconciliationStatusVerified
		if delta.Abs().GreaterThan(s.epsilon) {
			status = enums.ReconciliationStatusDiscrepant
		}

		now := time.Now().UTC()
		updates := map[string]any{
			"reconciliation_status": status,
			"reconciled_at":         now,
		}
		if err := repo.UpdateFund(ctx, fund.ID, updates); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "stamping reconciliation status")
		}

		result = &ReconciliationResult{
			FundID:            fund.ID,
			StoredBalance:     fund.Balance,
			CalculatedBalance: calculated,
			TotalIn:           flows.TotalIn,
			TotalOut:          flows.TotalOut,
			Delta:             delta,
			Status:            status,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.sideEffects(ctx, audit.Entry{
		Actor:        input.Actor,
		Action:       enums.AuditActionFundReconciled,
		ResourceType: "fund",
		ResourceID:   input.FundID.String(),
		Detail: types.Document{
			"stored_balance":     decString(result.StoredBalance),
			"calculated_balance": decString(result.CalculatedBalance),
			"delta":              decString(result.Delta),
			"status":             string(result.Status),
		},
	})
	return result, nil
}
