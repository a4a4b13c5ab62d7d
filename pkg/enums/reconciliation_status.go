package enums

import "fmt"

// ReconciliationStatus records the result of the latest fund reconciliation.
type ReconciliationStatus string

const (
	ReconciliationStatusUnverified ReconciliationStatus = "unverified"
	ReconciliationStatusVerified   ReconciliationStatus = "verified"
	ReconciliationStatusDiscrepant ReconciliationStatus = "discrepant"
)

var validReconciliationStatuses = []ReconciliationStatus{
	ReconciliationStatusUnverified,
	ReconciliationStatusVerified,
	ReconciliationStatusDiscrepant,
}

// IsValid reports whether the value matches the reconciliation status enum.
func (s ReconciliationStatus) IsValid() bool {
	for _, candidate := range validReconciliationStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// ParseReconciliationStatus converts raw input into ReconciliationStatus.
func ParseReconciliationStatus(value string) (ReconciliationStatus, error) {
	for _, candidate := range validReconciliationStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid reconciliation status %q", value)
}
