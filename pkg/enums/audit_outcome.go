package enums

import "fmt"

// AuditOutcome records whether the audited action succeeded.
type AuditOutcome string

const (
	AuditOutcomeSuccess AuditOutcome = "success"
	AuditOutcomeFailure AuditOutcome = "failure"
)

var validAuditOutcomes = []AuditOutcome{
	AuditOutcomeSuccess,
	AuditOutcomeFailure,
}

// IsValid reports whether the value matches the canonical audit outcome enum.
func (o AuditOutcome) IsValid() bool {
	for _, candidate := range validAuditOutcomes {
		if candidate == o {
			return true
		}
	}
	return false
}

// ParseAuditOutcome converts raw input into AuditOutcome.
func ParseAuditOutcome(value string) (AuditOutcome, error) {
	for _, candidate := range validAuditOutcomes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid audit outcome %q", value)
}
