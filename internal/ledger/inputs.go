package ledger

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/wekezahq/coopledger-backend/pkg/db/models"
	"github.com/wekezahq/coopledger-backend/pkg/enums"
	"github.com/wekezahq/coopledger-backend/pkg/identity"
)

// DepositInput captures a member deposit into a fund. Status may be
// pending (awaiting approval) or completed; completed is the default.
type DepositInput struct {
	Actor       identity.Actor
	MemberID    uuid.UUID
	FundID      uuid.UUID
	Amount      decimal.Decimal
	Status      enums.TransactionStatus
	Method      enums.DepositMethod
	Reference   string
	Description string
}

// ApproveDepositInput transitions a pending deposit to completed.
type ApproveDepositInput struct {
	Actor         identity.Actor
	TransactionID uuid.UUID
}

// EditDepositInput rewrites an existing deposit. The engine reverses the
// old balance impact (when it had applied) and re-applies the new values.
type EditDepositInput struct {
	Actor         identity.Actor
	TransactionID uuid.UUID
	MemberID      uuid.UUID
	FundID        uuid.UUID
	Amount        decimal.Decimal
	Status        enums.TransactionStatus
	Method        enums.DepositMethod
	Description   string
}

// ExpenseInput debits a fund, optionally charging a project. When a
// project is given the project's linked fund is used and FundID must be
// empty or match it.
type ExpenseInput struct {
	Actor       identity.Actor
	FundID      *uuid.UUID
	ProjectID   *uuid.UUID
	Amount      decimal.Decimal
	Description string
	Category    string
}

// EarningInput credits a fund, optionally crediting a project.
type EarningInput struct {
	Actor       identity.Actor
	FundID      *uuid.UUID
	ProjectID   *uuid.UUID
	Amount      decimal.Decimal
	Description string
	Category    string
}

// TransferInput moves money between two distinct funds.
type TransferInput struct {
	Actor        identity.Actor
	SourceFundID uuid.UUID
	TargetFundID uuid.UUID
	Amount       decimal.Decimal
	Description  string
}

// DividendInput distributes an amount from a pool (a project's linked
// fund or a standalone fund) across active shareholders.
type DividendInput struct {
	Actor       identity.Actor
	ProjectID   *uuid.UUID
	FundID      *uuid.UUID
	Amount      decimal.Decimal
	Description string
}

// EquityAllocation is one target slice of an equity transfer.
type EquityAllocation struct {
	TargetMemberID uuid.UUID
	Amount         decimal.Decimal
	Shares         int64
}

// EquityTransferInput moves contributed capital and shares from one
// member to one or more others without touching any fund.
type EquityTransferInput struct {
	Actor          identity.Actor
	SourceMemberID uuid.UUID
	Allocations    []EquityAllocation
	Description    string
}

// DeleteTransactionInput reverses and archives a transaction.
type DeleteTransactionInput struct {
	Actor         identity.Actor
	TransactionID uuid.UUID
	Reason        string
}

// ReconcileFundInput verifies a fund's balance against its history.
type ReconcileFundInput struct {
	Actor  identity.Actor
	FundID uuid.UUID
}

// TransferResult carries the paired records a fund transfer creates.
type TransferResult struct {
	Outflow *models.Transaction
	Inflow  *models.Transaction
}

// DividendResult summarizes one distribution batch.
type DividendResult struct {
	Transactions   []models.Transaction
	RatePerShare   decimal.Decimal
	TotalDisbursed decimal.Decimal
	Residual       decimal.Decimal
	Recipients     int
	Reference      string
}

// EquityTransferResult summarizes an equity transfer batch.
type EquityTransferResult struct {
	SourceTransaction  *models.Transaction
	TargetTransactions []models.Transaction
	SourceDeactivated  bool
}

// ReconciliationResult reports the outcome of a fund verification. The
// discrepancy is data, not an error: callers decide what to do with it.
type ReconciliationResult struct {
	FundID            uuid.UUID
	StoredBalance     decimal.Decimal
	CalculatedBalance decimal.Decimal
	TotalIn           decimal.Decimal
	TotalOut          decimal.Decimal
	Delta             decimal.Decimal
	Status            enums.ReconciliationStatus
}
