package enums

import "fmt"

// MemberStatus maps to the member_status enum in Postgres.
type MemberStatus string

const (
	MemberStatusActive    MemberStatus = "active"
	MemberStatusInactive  MemberStatus = "inactive"
	MemberStatusSuspended MemberStatus = "suspended"
)

var validMemberStatuses = []MemberStatus{
	MemberStatusActive,
	MemberStatusInactive,
	MemberStatusSuspended,
}

// IsValid reports whether the value matches the canonical member status enum.
func (s MemberStatus) IsValid() bool {
	for _, candidate := range validMemberStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// ParseMemberStatus converts raw input into MemberStatus.
func ParseMemberStatus(value string) (MemberStatus, error) {
	for _, candidate := range validMemberStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid member status %q", value)
}
