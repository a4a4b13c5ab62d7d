package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/wekezahq/coopledger-backend/api/responses"
	"github.com/wekezahq/coopledger-backend/api/validators"
	"github.com/wekezahq/coopledger-backend/internal/ledger"
	"github.com/wekezahq/coopledger-backend/pkg/enums"
	pkgerrors "github.com/wekezahq/coopledger-backend/pkg/errors"
	"github.com/wekezahq/coopledger-backend/pkg/identity"
	"github.com/wekezahq/coopledger-backend/pkg/logger"
	"github.com/wekezahq/coopledger-backend/pkg/pagination"
)

type depositRequest struct {
	MemberID    string `json:"member_id" validate:"required,uuid"`
	FundID      string `json:"fund_id" validate:"required,uuid"`
	Amount      string `json:"amount" validate:"required"`
	Status      string `json:"status,omitempty" validate:"omitempty,oneof=pending completed"`
	Method      string `json:"method" validate:"required"`
	Reference   string `json:"reference,omitempty"`
	Description string `json:"description,omitempty"`
}

// LedgerDeposit records a member deposit into a fund.
func LedgerDeposit(svc ledger.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, ok := identity.ActorFromContext(r.Context())
		if !ok {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "actor context missing"))
			return
		}

		var payload depositRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		memberID, fundID, amount, err := parseDepositFields(payload.MemberID, payload.FundID, payload.Amount)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		txn, err := svc.Deposit(r.Context(), ledger.DepositInput{
			Actor:       actor,
			MemberID:    memberID,
			FundID:      fundID,
			Amount:      amount,
			Status:      enums.TransactionStatus(payload.Status),
			Method:      enums.DepositMethod(payload.Method),
			Reference:   payload.Reference,
			Description: payload.Description,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, txn)
	}
}

// LedgerApproveDeposit transitions a pending deposit to completed.
func LedgerApproveDeposit(svc ledger.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, ok := identity.ActorFromContext(r.Context())
		if !ok {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "actor context missing"))
			return
		}
		txnID, err := validators.PathUUID(chi.URLParam(r, "transactionId"), "transactionId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		txn, err := svc.ApproveDeposit(r.Context(), ledger.ApproveDepositInput{Actor: actor, TransactionID: txnID})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, txn)
	}
}

// LedgerEditDeposit rewrites a recorded deposit, reversing the old
// balance impact before applying the new values.
func LedgerEditDeposit(svc ledger.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, ok := identity.ActorFromContext(r.Context())
		if !ok {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "actor context missing"))
			return
		}
		txnID, err := validators.PathUUID(chi.URLParam(r, "transactionId"), "transactionId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload depositRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		memberID, fundID, amount, err := parseDepositFields(payload.MemberID, payload.FundID, payload.Amount)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		txn, err := svc.EditDeposit(r.Context(), ledger.EditDepositInput{
			Actor:         actor,
			TransactionID: txnID,
			MemberID:      memberID,
			FundID:        fundID,
			Amount:        amount,
			Status:        enums.TransactionStatus(payload.Status),
			Method:        enums.DepositMethod(payload.Method),
			Description:   payload.Description,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, txn)
	}
}

type fundFlowRequest struct {
	FundID      string `json:"fund_id,omitempty" validate:"omitempty,uuid"`
	ProjectID   string `json:"project_id,omitempty" validate:"omitempty,uuid"`
	Amount      string `json:"amount" validate:"required"`
	Description string `json:"description,omitempty"`
	Category    string `json:"category,omitempty"`
}

// LedgerExpense debits a fund, optionally charging a project.
func LedgerExpense(svc ledger.Service, logg *logger.Logger) http.HandlerFunc {
	return fundFlowHandler(logg, func(r *http.Request, actor identity.Actor, fundID, projectID *uuid.UUID, amount decimal.Decimal, payload fundFlowRequest) (any, error) {
		return svc.Expense(r.Context(), ledger.ExpenseInput{
			Actor:       actor,
			FundID:      fundID,
			ProjectID:   projectID,
			Amount:      amount,
			Description: payload.Description,
			Category:    payload.Category,
		})
	})
}

// LedgerEarning credits a fund, optionally crediting a project.
func LedgerEarning(svc ledger.Service, logg *logger.Logger) http.HandlerFunc {
	return fundFlowHandler(logg, func(r *http.Request, actor identity.Actor, fundID, projectID *uuid.UUID, amount decimal.Decimal, payload fundFlowRequest) (any, error) {
		return svc.Earning(r.Context(), ledger.EarningInput{
			Actor:       actor,
			FundID:      fundID,
			ProjectID:   projectID,
			Amount:      amount,
			Description: payload.Description,
			Category:    payload.Category,
		})
	})
}

func fundFlowHandler(logg *logger.Logger, call func(*http.Request, identity.Actor, *uuid.UUID, *uuid.UUID, decimal.Decimal, fundFlowRequest) (any, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, ok := identity.ActorFromContext(r.Context())
		if !ok {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "actor context missing"))
			return
		}

		var payload fundFlowRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		fundID, err := optionalUUID(payload.FundID, "fund_id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		projectID, err := optionalUUID(payload.ProjectID, "project_id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		amount, err := parseAmount(payload.Amount)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := call(r, actor, fundID, projectID, amount, payload)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, result)
	}
}

type transferRequest struct {
	SourceFundID string `json:"source_fund_id" validate:"required,uuid"`
	TargetFundID string `json:"target_fund_id" validate:"required,uuid"`
	Amount       string `json:"amount" validate:"required"`
	Description  string `json:"description,omitempty"`
}

// LedgerTransfer moves money between two funds as a paired withdrawal
// and investment.
func LedgerTransfer(svc ledger.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, ok := identity.ActorFromContext(r.Context())
		if !ok {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "actor context missing"))
			return
		}

		var payload transferRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		sourceID, err := uuid.Parse(payload.SourceFundID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid source fund id"))
			return
		}
		targetID, err := uuid.Parse(payload.TargetFundID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid target fund id"))
			return
		}
		amount, err := parseAmount(payload.Amount)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.Transfer(r.Context(), ledger.TransferInput{
			Actor:        actor,
			SourceFundID: sourceID,
			TargetFundID: targetID,
			Amount:       amount,
			Description:  payload.Description,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, result)
	}
}

type dividendRequest struct {
	ProjectID   string `json:"project_id,omitempty" validate:"omitempty,uuid"`
	FundID      string `json:"fund_id,omitempty" validate:"omitempty,uuid"`
	Amount      string `json:"amount" validate:"required"`
	Description string `json:"description,omitempty"`
}

// LedgerDistributeDividends splits an amount across active shareholders.
func LedgerDistributeDividends(svc ledger.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, ok := identity.ActorFromContext(r.Context())
		if !ok {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "actor context missing"))
			return
		}

		var payload dividendRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		projectID, err := optionalUUID(payload.ProjectID, "project_id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		fundID, err := optionalUUID(payload.FundID, "fund_id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		amount, err := parseAmount(payload.Amount)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.DistributeDividends(r.Context(), ledger.DividendInput{
			Actor:       actor,
			ProjectID:   projectID,
			FundID:      fundID,
			Amount:      amount,
			Description: payload.Description,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, result)
	}
}

type equityAllocationRequest struct {
	TargetMemberID string `json:"target_member_id" validate:"required,uuid"`
	Amount         string `json:"amount,omitempty"`
	Shares         int64  `json:"shares,omitempty"`
}

type equityTransferRequest struct {
	SourceMemberID string                    `json:"source_member_id" validate:"required,uuid"`
	Allocations    []equityAllocationRequest `json:"allocations" validate:"required,min=1,dive"`
	Description    string                    `json:"description,omitempty"`
}

// LedgerTransferEquity moves contributed capital and shares between members.
func LedgerTransferEquity(svc ledger.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, ok := identity.ActorFromContext(r.Context())
		if !ok {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "actor context missing"))
			return
		}

		var payload equityTransferRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		sourceID, err := uuid.Parse(payload.SourceMemberID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid source member id"))
			return
		}

		allocations := make([]ledger.EquityAllocation, 0, len(payload.Allocations))
		for _, alloc := range payload.Allocations {
			targetID, err := uuid.Parse(alloc.TargetMemberID)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid target member id"))
				return
			}
			amount := decimal.Zero
			if alloc.Amount != "" {
				amount, err = parseAmount(alloc.Amount)
				if err != nil {
					responses.WriteError(r.Context(), logg, w, err)
					return
				}
			}
			allocations = append(allocations, ledger.EquityAllocation{
				TargetMemberID: targetID,
				Amount:         amount,
				Shares:         alloc.Shares,
			})
		}

		result, err := svc.TransferEquity(r.Context(), ledger.EquityTransferInput{
			Actor:          actor,
			SourceMemberID: sourceID,
			Allocations:    allocations,
			Description:    payload.Description,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, result)
	}
}

type deleteTransactionRequest struct {
	Reason string `json:"reason" validate:"required"`
}

// LedgerDeleteTransaction archives a transaction and reverses its
// balance impact.
func LedgerDeleteTransaction(svc ledger.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, ok := identity.ActorFromContext(r.Context())
		if !ok {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "actor context missing"))
			return
		}
		txnID, err := validators.PathUUID(chi.URLParam(r, "transactionId"), "transactionId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload deleteTransactionRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.DeleteTransaction(r.Context(), ledger.DeleteTransactionInput{
			Actor:         actor,
			TransactionID: txnID,
			Reason:        payload.Reason,
		}); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "deleted"})
	}
}

// LedgerReconcileFund verifies a fund balance against its history.
func LedgerReconcileFund(svc ledger.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, ok := identity.ActorFromContext(r.Context())
		if !ok {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "actor context missing"))
			return
		}
		fundID, err := validators.PathUUID(chi.URLParam(r, "fundId"), "fundId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.ReconcileFund(r.Context(), ledger.ReconcileFundInput{Actor: actor, FundID: fundID})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

// LedgerListTransactions returns a filtered page of transaction history.
func LedgerListTransactions(svc ledger.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		fundID, err := validators.ParseQueryUUID(r, "fund_id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		memberID, err := validators.ParseQueryUUID(r, "member_id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		projectID, err := validators.ParseQueryUUID(r, "project_id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		limit, err := validators.ParseQueryInt(r, "limit", 0, 0, pagination.MaxLimit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		page, err := svc.ListTransactions(r.Context(), ledger.ListTransactionsInput{
			Filter: ledger.TransactionFilter{
				FundID:    fundID,
				MemberID:  memberID,
				ProjectID: projectID,
				Type:      enums.TransactionType(r.URL.Query().Get("type")),
				Status:    enums.TransactionStatus(r.URL.Query().Get("status")),
				Reference: r.URL.Query().Get("reference"),
			},
			Pagination: pagination.Params{
				Limit:  limit,
				Cursor: r.URL.Query().Get("cursor"),
			},
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, page)
	}
}

func parseDepositFields(member, fund, amount string) (uuid.UUID, uuid.UUID, decimal.Decimal, error) {
	memberID, err := uuid.Parse(member)
	if err != nil {
		return uuid.Nil, uuid.Nil, decimal.Zero, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid member id")
	}
	fundID, err := uuid.Parse(fund)
	if err != nil {
		return uuid.Nil, uuid.Nil, decimal.Zero, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid fund id")
	}
	value, err := parseAmount(amount)
	if err != nil {
		return uuid.Nil, uuid.Nil, decimal.Zero, err
	}
	return memberID, fundID, value, nil
}

func parseAmount(raw string) (decimal.Decimal, error) {
	value, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "amount must be a decimal string")
	}
	return value, nil
}

func optionalUUID(raw, field string) (*uuid.UUID, error) {
	if raw == "" {
		return nil, nil
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid uuid").WithDetails(map[string]string{"field": field})
	}
	return &id, nil
}
