package enums

import "fmt"

// FundType maps to the fund_type enum in Postgres.
type FundType string

const (
	FundTypeGeneral     FundType = "general"
	FundTypeDepositPool FundType = "deposit_pool"
	FundTypeProject     FundType = "project"
	FundTypeReserve     FundType = "reserve"
)

var validFundTypes = []FundType{
	FundTypeGeneral,
	FundTypeDepositPool,
	FundTypeProject,
	FundTypeReserve,
}

// IsValid reports whether the value matches the canonical fund type enum.
func (t FundType) IsValid() bool {
	for _, candidate := range validFundTypes {
		if candidate == t {
			return true
		}
	}
	return false
}

// ParseFundType converts raw input into FundType.
func ParseFundType(value string) (FundType, error) {
	for _, candidate := range validFundTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid fund type %q", value)
}
