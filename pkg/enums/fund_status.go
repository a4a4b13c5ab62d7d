package enums

import "fmt"

// FundStatus maps to the fund_status enum in Postgres.
type FundStatus string

const (
	FundStatusActive   FundStatus = "active"
	FundStatusArchived FundStatus = "archived"
)

var validFundStatuses = []FundStatus{
	FundStatusActive,
	FundStatusArchived,
}

// IsValid reports whether the value matches the canonical fund status enum.
func (s FundStatus) IsValid() bool {
	for _, candidate := range validFundStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// ParseFundStatus converts raw input into FundStatus.
func ParseFundStatus(value string) (FundStatus, error) {
	for _, candidate := range validFundStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid fund status %q", value)
}
