package optimization

import (
	"fmt"
	"strings"
)

// Priority scales the pull of readiness objectives.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

// DefaultPriority applies when a request leaves the priority empty.
const DefaultPriority = PriorityMedium

// ParsePriority validates a priority level. An empty value yields DefaultPriority.
func ParsePriority(value string) (Priority, error) {
	switch p := Priority(strings.ToLower(strings.TrimSpace(value))); p {
	case "":
		return DefaultPriority, nil
	case PriorityLow, PriorityMedium, PriorityHigh:
		return p, nil
	default:
		return "", fmt.Errorf("expected priority of %s, %s or %s, got %q", PriorityLow, PriorityMedium, PriorityHigh, value)
	}
}
