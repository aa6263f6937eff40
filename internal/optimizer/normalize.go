package optimizer

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/iwvelando/open-logistics/pkg/optimization"
	"github.com/iwvelando/open-logistics/pkg/validation"
)

// normalized is a validated request with parsed objectives and constraints.
type normalized struct {
	items         []string
	inventory     map[string]float64
	unitCosts     map[string]float64
	demandHistory map[string][]float64
	objectives    []optimization.Objective
	objectiveTags []string
	hasReadiness  bool
	priority      optimization.Priority
	horizon       int
	budget        *float64
	timeline      *float64
}

func normalize(op string, req Request, maxHorizon int) (*normalized, error) {
	data := req.SupplyChainData
	if data == nil {
		return nil, validation.Rejectf(op, "supply_chain_data", "is required")
	}
	if data.Inventory == nil {
		return nil, validation.Rejectf(op, "supply_chain_data.inventory", "is required")
	}
	if len(data.Inventory) == 0 {
		return nil, validation.Rejectf(op, "supply_chain_data.inventory", "must contain at least one item")
	}
	if err := validation.RequireHorizon(op, req.TimeHorizon, maxHorizon); err != nil {
		return nil, err
	}
	if len(req.Objectives) == 0 {
		return nil, validation.Rejectf(op, "objectives", "must contain at least one objective")
	}
	priority, err := optimization.ParsePriority(req.PriorityLevel)
	if err != nil {
		return nil, validation.Rejectf(op, "priority_level", "%v", err)
	}

	in := &normalized{
		items:         sortedKeys(data.Inventory),
		inventory:     data.Inventory,
		unitCosts:     data.UnitCosts,
		demandHistory: data.DemandHistory,
		objectiveTags: req.Objectives,
		priority:      priority,
		horizon:       req.TimeHorizon,
	}

	for _, item := range in.items {
		if strings.TrimSpace(item) == "" {
			return nil, validation.Rejectf(op, "supply_chain_data.inventory", "contains an empty item identifier")
		}
		if err := validation.RequireQuantity(op, "supply_chain_data.inventory."+item, data.Inventory[item]); err != nil {
			return nil, err
		}
	}
	for _, item := range sortedKeys(data.UnitCosts) {
		if err := validation.RequireQuantity(op, "supply_chain_data.unit_costs."+item, data.UnitCosts[item]); err != nil {
			return nil, err
		}
	}

	in.objectives = make([]optimization.Objective, len(req.Objectives))
	for i, tag := range req.Objectives {
		in.objectives[i] = optimization.ParseObjective(tag)
		if in.objectives[i].Pull() == optimization.PullReadiness {
			in.hasReadiness = true
		}
	}

	if in.budget, err = numericConstraint(op, data.Constraints, ConstraintBudget); err != nil {
		return nil, err
	}
	if in.timeline, err = numericConstraint(op, data.Constraints, ConstraintTimeline); err != nil {
		return nil, err
	}

	return in, nil
}

// numericConstraint reads a non-negative numeric constraint. It returns nil
// when the constraint is absent.
func numericConstraint(op string, constraints map[string]interface{}, name string) (*float64, error) {
	raw, ok := constraints[name]
	if !ok || raw == nil {
		return nil, nil
	}
	field := "supply_chain_data.constraints." + name
	value, err := toFloat(raw)
	if err != nil {
		return nil, validation.Rejectf(op, field, "must be numeric: %v", err)
	}
	if err := validation.RequireQuantity(op, field, value); err != nil {
		return nil, err
	}
	return &value, nil
}

func toFloat(raw interface{}) (float64, error) {
	switch v := raw.(type) {
	case float64:
		return v, nil
	case float32:
		return float64(v), nil
	case int:
		return float64(v), nil
	case int64:
		return float64(v), nil
	case int32:
		return float64(v), nil
	case uint64:
		return float64(v), nil
	case json.Number:
		return v.Float64()
	case string:
		return strconv.ParseFloat(strings.TrimSpace(v), 64)
	default:
		return 0, fmt.Errorf("unsupported value %v of type %T", raw, raw)
	}
}
