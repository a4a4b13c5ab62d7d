package enums

import "fmt"

// DepositMethod maps to the deposit_method enum in Postgres.
type DepositMethod string

const (
	DepositMethodCash         DepositMethod = "cash"
	DepositMethodBankTransfer DepositMethod = "bank_transfer"
	DepositMethodMobileMoney  DepositMethod = "mobile_money"
	DepositMethodCheque       DepositMethod = "cheque"
	DepositMethodInternal     DepositMethod = "internal"
)

var validDepositMethods = []DepositMethod{
	DepositMethodCash,
	DepositMethodBankTransfer,
	DepositMethodMobileMoney,
	DepositMethodCheque,
	DepositMethodInternal,
}

// IsValid reports whether the value matches the canonical deposit method enum.
func (m DepositMethod) IsValid() bool {
	for _, candidate := range validDepositMethods {
		if candidate == m {
			return true
		}
	}
	return false
}

// ParseDepositMethod converts raw input into DepositMethod.
func ParseDepositMethod(value string) (DepositMethod, error) {
	for _, candidate := range validDepositMethods {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid deposit method %q", value)
}
