package enums

import "fmt"

// ProjectUpdateType classifies an inline project event.
type ProjectUpdateType string

const (
	ProjectUpdateTypeEarning ProjectUpdateType = "earning"
	ProjectUpdateTypeExpense ProjectUpdateType = "expense"
)

var validProjectUpdateTypes = []ProjectUpdateType{
	ProjectUpdateTypeEarning,
	ProjectUpdateTypeExpense,
}

// IsValid reports whether the value matches the project update type enum.
func (t ProjectUpdateType) IsValid() bool {
	for _, candidate := range validProjectUpdateTypes {
		if candidate == t {
			return true
		}
	}
	return false
}

// ParseProjectUpdateType converts raw input into ProjectUpdateType.
func ParseProjectUpdateType(value string) (ProjectUpdateType, error) {
	for _, candidate := range validProjectUpdateTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid project update type %q", value)
}
