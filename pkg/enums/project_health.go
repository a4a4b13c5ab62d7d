package enums

import "fmt"

// ProjectHealth maps to the project_health enum in Postgres.
type ProjectHealth string

const (
	ProjectHealthOnTrack ProjectHealth = "on_track"
	ProjectHealthAtRisk  ProjectHealth = "at_risk"
	ProjectHealthDelayed ProjectHealth = "delayed"
)

var validProjectHealths = []ProjectHealth{
	ProjectHealthOnTrack,
	ProjectHealthAtRisk,
	ProjectHealthDelayed,
}

// IsValid reports whether the value matches the canonical project health enum.
func (h ProjectHealth) IsValid() bool {
	for _, candidate := range validProjectHealths {
		if candidate == h {
			return true
		}
	}
	return false
}

// ParseProjectHealth converts raw input into ProjectHealth.
func ParseProjectHealth(value string) (ProjectHealth, error) {
	for _, candidate := range validProjectHealths {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid project health %q", value)
}
