package ledger

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/wekezahq/coopledger-backend/internal/audit"
	"github.com/wekezahq/coopledger-backend/pkg/db/models"
	"github.com/wekezahq/coopledger-backend/pkg/db/types"
	"github.com/wekezahq/coopledger-backend/pkg/enums"
	pkgerrors "github.com/wekezahq/coopledger-backend/pkg/errors"
	"github.com/wekezahq/coopledger-backend/pkg/identity"
)

// Expense debits a fund, optionally charging a project. Project-side
// mutations are validated and applied before the fund debit so a project
// failure never leaves the fund partially debited.
func (s *service) Expense(ctx context.Context, input ExpenseInput) (txn *models.Transaction, err error) {
	defer func(start time.Time) { s.observe("expense", start, err) }(time.Now())

	txn, err = s.recordFundFlow(ctx, fundFlow{
		actor:       input.Actor,
		fundID:      input.FundID,
		projectID:   input.ProjectID,
		amount:      input.Amount,
		description: input.Description,
		category:    input.Category,
		txnType:     enums.TransactionTypeExpense,
		updateType:  enums.ProjectUpdateTypeExpense,
		auditAction: enums.AuditActionExpenseCreated,
		outflow:     true,
	})
	return txn, err
}

// Earning credits a fund, optionally crediting a project and appending to
// its update sequence.
func (s *service) Earning(ctx context.Context, input EarningInput) (txn *models.Transaction, err error) {
	defer func(start time.Time) { s.observe("earning", start, err) }(time.Now())

	txn, err = s.recordFundFlow(ctx, fundFlow{
		actor:       input.Actor,
		fundID:      input.FundID,
		projectID:   input.ProjectID,
		amount:      input.Amount,
		description: input.Description,
		category:    input.Category,
		txnType:     enums.TransactionTypeEarning,
		updateType:  enums.ProjectUpdateTypeEarning,
		auditAction: enums.AuditActionEarningCreated,
		outflow:     false,
	})
	return txn, err
}

type fundFlow struct {
	actor       identity.Actor
	fundID      *uuid.UUID
	projectID   *uuid.UUID
	amount      decimal.Decimal
	description string
	category    string
	txnType     enums.TransactionType
	updateType  enums.ProjectUpdateType
	auditAction enums.AuditAction
	outflow     bool
}

func (s *service) recordFundFlow(ctx context.Context, flow fundFlow) (*models.Transaction, error) {
	if !flow.actor.Valid() {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "acting identity is required")
	}
	if err := requirePositive(flow.amount, "amount"); err != nil {
		return nil, err
	}
	if flow.fundID == nil && flow.projectID == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "a fund or a project is required")
	}

	var txn *models.Transaction
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		var project *models.Project
		var fund *models.Fund
		var err error
		if flow.projectID != nil {
			project, err = repo.FindProject(ctx, *flow.projectID)
			if err != nil {
				return notFoundOr(err, pkgerrors.CodeInternal, "project not found", "loading project")
			}
			if flow.fundID != nil && *flow.fundID != project.FundID {
				return pkgerrors.New(pkgerrors.CodeValidation, "fund does not belong to the project")
			}
			fund, err = loadActiveFund(ctx, repo, project.FundID)
			if err != nil {
				return err
			}
		} else {
			fund, err = loadActiveFund(ctx, repo, *flow.fundID)
			if err != nil {
				return err
			}
			// A project's own fund is only moved through project entries
			// so that the project totals stay in step.
			if fund.Type == enums.FundTypeProject || fund.ProjectID != nil {
				return pkgerrors.New(pkgerrors.CodeValidation, "project fund requires a project entry")
			}
		}

		balanceBefore := fund.Balance
		var balanceAfter decimal.Decimal
		if flow.outflow {
			if fund.Balance.LessThan(flow.amount) {
				return pkgerrors.InsufficientFunds(decString(flow.amount), decString(fund.Balance))
			}
			balanceAfter = balanceBefore.Sub(flow.amount)
		} else {
			balanceAfter = balanceBefore.Add(flow.amount)
		}

		fundID := fund.ID
		txn = &models.Transaction{
			Type:          flow.txnType,
			Amount:        flow.amount,
			Description:   flow.description,
			Status:        enums.TransactionStatusCompleted,
			Date:          time.Now().UTC(),
			FundID:        &fundID,
			AuthorizedBy:  authorizedBy(flow.actor),
			BalanceBefore: balanceBefore,
			BalanceAfter:  balanceAfter,
		}
		if flow.category != "" {
			txn.Metadata = txnMetadata(map[string]any{"category": flow.category})
		}
		if project != nil {
			projectID := project.ID
			txn.ProjectID = &projectID
		}
		if err := repo.CreateTransaction(ctx, txn); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "creating transaction")
		}

		// Project side first. The fund debit below only runs once the
		// project mutation has fully succeeded.
		if project != nil {
			seq, err := repo.NextProjectUpdateSequence(ctx, project.ID)
			if err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "sequencing project update")
			}
			txnID := txn.ID
			update := &models.ProjectUpdate{
				ProjectID:     project.ID,
				Sequence:      seq,
				Type:          flow.updateType,
				Amount:        flow.amount,
				Description:   flow.description,
				BalanceBefore: balanceBefore,
				BalanceAfter:  balanceAfter,
				TransactionID: &txnID,
			}
			if err := repo.CreateProjectUpdate(ctx, update); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "appending project update")
			}

			updates := map[string]any{"current_fund_balance": balanceAfter}
			if flow.outflow {
				updates["total_expenses"] = project.TotalExpenses.Add(flow.amount)
			} else {
				updates["total_earnings"] = project.TotalEarnings.Add(flow.amount)
			}
			if err := repo.UpdateProject(ctx, project.ID, updates); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "updating project totals")
			}
			if err := repo.UpdateFund(ctx, fund.ID, map[string]any{"balance": balanceAfter}); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "updating fund balance")
			}
			return nil
		}

		return setFundBalance(ctx, repo, fund, balanceAfter)
	})
	if err != nil {
		return nil, err
	}

	detail := types.Document{
		"fund_id": txn.FundID.String(),
		"amount":  decString(txn.Amount),
	}
	if flow.category != "" {
		detail["category"] = flow.category
	}
	if txn.ProjectID != nil {
		detail["project_id"] = txn.ProjectID.String()
	}
	s.sideEffects(ctx, audit.Entry{
		Actor:        flow.actor,
		Action:       flow.auditAction,
		ResourceType: "transaction",
		ResourceID:   txn.ID.String(),
		Detail:       detail,
	})
	return txn, nil
}
