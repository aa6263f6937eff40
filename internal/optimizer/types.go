package optimizer

// SupplyChainData is a snapshot of the supply network being planned.
type SupplyChainData struct {
	// Inventory maps item identifiers to non-negative on-hand quantities.
	Inventory map[string]float64 `json:"inventory" yaml:"inventory"`
	// Constraints holds named limits. Numeric "budget" and "timeline" are
	// modelled; other entries, including categorical ones such as
	// "security_clearance", are carried through untouched.
	Constraints map[string]interface{} `json:"constraints,omitempty" yaml:"constraints,omitempty"`
	// UnitCosts optionally prices items; missing items use the default unit cost.
	UnitCosts map[string]float64 `json:"unit_costs,omitempty" yaml:"unit_costs,omitempty"`
	// DemandHistory optionally holds a historical demand series per item,
	// forecast over the horizon when a readiness objective is declared.
	DemandHistory map[string][]float64 `json:"demand_history,omitempty" yaml:"demand_history,omitempty"`
}

// Request describes one optimization run.
type Request struct {
	SupplyChainData *SupplyChainData `json:"supply_chain_data" yaml:"supply_chain_data"`
	// Objectives is ordered by priority: earlier objectives weigh more.
	Objectives    []string `json:"objectives" yaml:"objectives"`
	TimeHorizon   int      `json:"time_horizon" yaml:"time_horizon"`
	PriorityLevel string   `json:"priority_level,omitempty" yaml:"priority_level,omitempty"`
}

// Result is the recommended allocation and its quality measures.
type Result struct {
	OptimizedPlan       map[string]float64 `json:"optimized_plan"`
	ConfidenceScore     float64            `json:"confidence_score"`
	ExecutionTimeMS     float64            `json:"execution_time_ms"`
	ResourceUtilization map[string]float64 `json:"resource_utilization"`

	AdjustmentFactor float64            `json:"adjustment_factor"`
	EstimatedCost    float64            `json:"estimated_cost"`
	ProjectedDemand  map[string]float64 `json:"projected_demand,omitempty"`
	Warnings         []string           `json:"warnings,omitempty"`
}

// Resource names reported in Result.ResourceUtilization.
const (
	ResourceBudget    = "budget"
	ResourceInventory = "inventory"
	ResourceTimeline  = "timeline"
)

// Constraint names with modelled semantics.
const (
	ConstraintBudget   = "budget"
	ConstraintTimeline = "timeline"
)
