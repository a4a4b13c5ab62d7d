package enums

import "fmt"

// TransactionType maps to the transaction_type enum in Postgres.
type TransactionType string

const (
	TransactionTypeDeposit        TransactionType = "deposit"
	TransactionTypeWithdrawal     TransactionType = "withdrawal"
	TransactionTypeInvestment     TransactionType = "investment"
	TransactionTypeExpense        TransactionType = "expense"
	TransactionTypeEarning        TransactionType = "earning"
	TransactionTypeDividend       TransactionType = "dividend"
	TransactionTypeEquityTransfer TransactionType = "equity_transfer"
	TransactionTypeAdjustment     TransactionType = "adjustment"
	TransactionTypeTransfer       TransactionType = "transfer"
)

var validTransactionTypes = []TransactionType{
	TransactionTypeDeposit,
	TransactionTypeWithdrawal,
	TransactionTypeInvestment,
	TransactionTypeExpense,
	TransactionTypeEarning,
	TransactionTypeDividend,
	TransactionTypeEquityTransfer,
	TransactionTypeAdjustment,
	TransactionTypeTransfer,
}

// IsValid reports whether the value matches the canonical transaction type enum.
func (t TransactionType) IsValid() bool {
	for _, candidate := range validTransactionTypes {
		if candidate == t {
			return true
		}
	}
	return false
}

// ParseTransactionType converts raw input into TransactionType.
func ParseTransactionType(value string) (TransactionType, error) {
	for _, candidate := range validTransactionTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid transaction type %q", value)
}

// IsFundInflow reports whether a completed transaction of this type credits
// the referenced fund.
func (t TransactionType) IsFundInflow() bool {
	switch t {
	case TransactionTypeDeposit, TransactionTypeEarning, TransactionTypeInvestment:
		return true
	default:
		return false
	}
}

// IsFundOutflow reports whether a completed transaction of this type debits
// the referenced fund.
func (t TransactionType) IsFundOutflow() bool {
	switch t {
	case TransactionTypeWithdrawal, TransactionTypeExpense, TransactionTypeDividend:
		return true
	default:
		return false
	}
}
