package optimizer

import (
	"fmt"

	"github.com/iwvelando/open-logistics/pkg/constants"
	"github.com/iwvelando/open-logistics/pkg/optimization"
)

// Config holds the tunable constants of the optimization engine.
type Config struct {
	// CostPull is the adjustment factor contributed by stock-conserving objectives.
	CostPull float64
	// PriorityMultipliers is the factor contributed by readiness objectives at each priority.
	PriorityMultipliers map[optimization.Priority]float64
	// DefaultUnitCost prices items missing from the request's cost table.
	DefaultUnitCost float64
	// DefaultUtilization is reported for the budget resource when no budget is declared.
	DefaultUtilization float64

	HorizonFullConfidence float64
	HorizonDecayEnd       float64
	HorizonFloor          float64

	TightnessThreshold float64
	TightnessFloor     float64

	// MaxHorizon is the largest accepted time horizon.
	MaxHorizon int
}

// DefaultConfig returns the documented defaults.
func DefaultConfig() Config {
	return Config{
		CostPull: constants.DefaultCostPull,
		PriorityMultipliers: map[optimization.Priority]float64{
			optimization.PriorityLow:    constants.DefaultLowPriorityPull,
			optimization.PriorityMedium: constants.DefaultMediumPriorityPull,
			optimization.PriorityHigh:   constants.DefaultHighPriorityPull,
		},
		DefaultUnitCost:       constants.DefaultUnitCost,
		DefaultUtilization:    constants.DefaultUtilization,
		HorizonFullConfidence: constants.DefaultHorizonFullConfidence,
		HorizonDecayEnd:       constants.DefaultHorizonDecayEnd,
		HorizonFloor:          constants.DefaultHorizonFloor,
		TightnessThreshold:    constants.DefaultTightnessThreshold,
		TightnessFloor:        constants.DefaultTightnessFloor,
		MaxHorizon:            constants.DefaultMaxHorizon,
	}
}

// Validate checks that every constant keeps the result bounded.
func (c Config) Validate() error {
	if c.CostPull <= 0 || c.CostPull > 1 {
		return fmt.Errorf("cost pull must be in (0, 1], got %v", c.CostPull)
	}
	for _, p := range []optimization.Priority{optimization.PriorityLow, optimization.PriorityMedium, optimization.PriorityHigh} {
		m, ok := c.PriorityMultipliers[p]
		if !ok {
			return fmt.Errorf("missing readiness multiplier for priority %s", p)
		}
		if m < 1 {
			return fmt.Errorf("readiness multiplier for priority %s must be >= 1, got %v", p, m)
		}
	}
	if c.DefaultUnitCost < 0 {
		return fmt.Errorf("default unit cost must be >= 0, got %v", c.DefaultUnitCost)
	}
	if c.DefaultUtilization < 0 || c.DefaultUtilization > 1 {
		return fmt.Errorf("default utilization must be in [0, 1], got %v", c.DefaultUtilization)
	}
	if c.HorizonFullConfidence < 0 || c.HorizonDecayEnd <= c.HorizonFullConfidence {
		return fmt.Errorf("horizon decay must end after it starts, got %v..%v", c.HorizonFullConfidence, c.HorizonDecayEnd)
	}
	if c.HorizonFloor < 0 || c.HorizonFloor > 1 {
		return fmt.Errorf("horizon floor must be in [0, 1], got %v", c.HorizonFloor)
	}
	if c.TightnessThreshold <= 0 || c.TightnessThreshold >= 1 {
		return fmt.Errorf("tightness threshold must be in (0, 1), got %v", c.TightnessThreshold)
	}
	if c.TightnessFloor < 0 || c.TightnessFloor > 1 {
		return fmt.Errorf("tightness floor must be in [0, 1], got %v", c.TightnessFloor)
	}
	if c.MaxHorizon < 1 {
		return fmt.Errorf("max horizon must be >= 1, got %d", c.MaxHorizon)
	}
	return nil
}

func (c Config) clone() Config {
	multipliers := make(map[optimization.Priority]float64, len(c.PriorityMultipliers))
	for k, v := range c.PriorityMultipliers {
		multipliers[k] = v
	}
	c.PriorityMultipliers = multipliers
	return c
}
