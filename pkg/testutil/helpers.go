// Package testutil provides common fixtures for testing.
package testutil

import (
	"strings"

	"github.com/iwvelando/open-logistics/internal/forecast"
	"github.com/iwvelando/open-logistics/internal/optimizer"
)

// SampleOptimizationRequest returns the reference munitions request: three
// stocked items, a budget, a timeline and a categorical clearance constraint.
// Every call returns fresh maps.
func SampleOptimizationRequest() optimizer.Request {
	return optimizer.Request{
		SupplyChainData: &optimizer.SupplyChainData{
			Inventory: map[string]float64{
				"missiles":            1000,
				"radar_systems":       50,
				"communication_units": 200,
			},
			Constraints: map[string]interface{}{
				"budget":             10000000,
				"timeline":           30,
				"security_clearance": "SECRET",
			},
		},
		Objectives:    []string{"minimize_cost", "maximize_readiness"},
		TimeHorizon:   30,
		PriorityLevel: "high",
	}
}

// SampleDemandHistory returns the reference demand series used by forecast examples.
func SampleDemandHistory() []float64 {
	return []float64{100, 120, 110, 130, 125, 140, 135}
}

// SampleForecastRequest wraps SampleDemandHistory with a horizon.
func SampleForecastRequest(horizon int) forecast.Request {
	return forecast.Request{HistoricalData: SampleDemandHistory(), TimeHorizon: horizon}
}

// FindWarning returns the first warning containing substr, or "" when none does.
func FindWarning(warnings []string, substr string) string {
	for _, w := range warnings {
		if strings.Contains(w, substr) {
			return w
		}
	}
	return ""
}
