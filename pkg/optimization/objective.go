// Package optimization defines the closed set of objective kinds and priority
// levels understood by the optimization engine.
package optimization

import "strings"

// Objective is a known optimization goal. Tags outside the known set parse to
// ObjectiveUnknown and carry no weight.
type Objective int

const (
	ObjectiveUnknown Objective = iota
	ObjectiveMinimizeCost
	ObjectiveMinimizeWaste
	ObjectiveMaximizeReadiness
	ObjectiveMaximizeAvailability
	ObjectiveMinimizeRisk
)

// PullKind classifies which way an objective moves the adjustment factor.
type PullKind int

const (
	// PullNeutral objectives leave the factor untouched.
	PullNeutral PullKind = iota
	// PullConserve objectives push allocation below current stock.
	PullConserve
	// PullReadiness objectives push allocation above current stock.
	PullReadiness
)

var objectiveTags = map[string]Objective{
	"minimize_cost":         ObjectiveMinimizeCost,
	"minimize_waste":        ObjectiveMinimizeWaste,
	"maximize_readiness":    ObjectiveMaximizeReadiness,
	"maximize_availability": ObjectiveMaximizeAvailability,
	"minimize_risk":         ObjectiveMinimizeRisk,
}

// ParseObjective maps a tag such as "minimize_cost" to its Objective. Matching
// ignores case, surrounding space and the choice of '-' or '_'.
func ParseObjective(tag string) Objective {
	key := strings.ToLower(strings.TrimSpace(tag))
	key = strings.ReplaceAll(key, "-", "_")
	if objective, ok := objectiveTags[key]; ok {
		return objective
	}
	return ObjectiveUnknown
}

// Pull returns the direction in which the objective moves allocation.
func (o Objective) Pull() PullKind {
	switch o {
	case ObjectiveMinimizeCost, ObjectiveMinimizeWaste:
		return PullConserve
	case ObjectiveMaximizeReadiness, ObjectiveMaximizeAvailability, ObjectiveMinimizeRisk:
		return PullReadiness
	default:
		return PullNeutral
	}
}

// Known reports whether the objective belongs to the known set.
func (o Objective) Known() bool {
	return o != ObjectiveUnknown
}

func (o Objective) String() string {
	for tag, objective := range objectiveTags {
		if objective == o {
			return tag
		}
	}
	return "unknown"
}
