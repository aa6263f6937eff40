// Package optimizer implements the allocation engine: it scales current
// inventory by an objective-weighted adjustment factor and scores how well
// conditioned the request was.
package optimizer

import (
	"fmt"
	"sort"
	"time"

	"github.com/iwvelando/open-logistics/internal/forecast"
	"github.com/iwvelando/open-logistics/pkg/mathutil"
	"github.com/iwvelando/open-logistics/pkg/optimization"
	"go.uber.org/zap"
)

// Optimizer computes allocation plans. It holds no mutable state and is safe
// for concurrent use.
type Optimizer struct {
	logger     *zap.Logger
	cfg        Config
	forecaster *forecast.Forecaster
}

// New constructs an Optimizer. forecaster may be nil, in which case demand
// history in requests is ignored.
func New(logger *zap.Logger, cfg Config, forecaster *forecast.Forecaster) (*Optimizer, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid optimizer configuration: %w", err)
	}
	return &Optimizer{logger: logger, cfg: cfg.clone(), forecaster: forecaster}, nil
}

// Config returns a copy of the configuration the Optimizer was built with.
func (o *Optimizer) Config() Config {
	return o.cfg.clone()
}

// Optimize produces an allocation plan for req. Infeasible or poorly
// conditioned requests still yield a plan with a low confidence score; only
// structurally invalid requests fail, with a *validation.RejectedInputError.
func (o *Optimizer) Optimize(req Request) (*Result, error) {
	const op = "optimizer.Optimize"
	start := time.Now()

	in, err := normalize(op, req, o.cfg.MaxHorizon)
	if err != nil {
		return nil, err
	}

	factor, warnings := o.adjustmentFactor(in)

	plan := make(map[string]float64, len(in.items))
	for _, item := range in.items {
		plan[item] = mathutil.Round(mathutil.NonNegative(in.inventory[item] * factor))
	}

	projected, projectionWarnings, err := o.projectDemand(op, in)
	if err != nil {
		return nil, err
	}
	warnings = append(warnings, projectionWarnings...)
	for item, demand := range projected {
		if demand > plan[item] {
			plan[item] = demand
		}
	}

	cost := o.estimatedCost(in, plan)
	utilization, tightest := o.utilization(in, plan, cost)
	confidence := o.confidence(in, tightest)

	result := &Result{
		OptimizedPlan:       plan,
		ConfidenceScore:     confidence,
		ResourceUtilization: utilization,
		AdjustmentFactor:    factor,
		EstimatedCost:       mathutil.Round(cost),
		ProjectedDemand:     projected,
		Warnings:            warnings,
	}
	result.ExecutionTimeMS = float64(time.Since(start).Nanoseconds()) / float64(time.Millisecond)

	o.logger.Debug("optimization computed",
		zap.String("op", op),
		zap.Int("items", len(in.items)),
		zap.Int("objectives", len(in.objectives)),
		zap.String("priority", string(in.priority)),
		zap.Int("horizon", in.horizon),
		zap.Float64("factor", factor),
		zap.Float64("confidence", confidence),
		zap.Float64("executionTimeMs", result.ExecutionTimeMS),
	)

	return result, nil
}

// adjustmentFactor averages the pulls of the known objectives, weighting the
// objective at position rank by 1/(rank+1).
func (o *Optimizer) adjustmentFactor(in *normalized) (float64, []string) {
	var pulls, weights []float64
	var warnings []string

	for rank, objective := range in.objectives {
		var pull float64
		switch objective.Pull() {
		case optimization.PullConserve:
			pull = o.cfg.CostPull
		case optimization.PullReadiness:
			pull = o.cfg.PriorityMultipliers[in.priority]
		default:
			warnings = append(warnings, fmt.Sprintf("objective %q is not recognised and carries no weight", in.objectiveTags[rank]))
			continue
		}
		pulls = append(pulls, pull)
		weights = append(weights, 1/float64(rank+1))
	}

	return mathutil.WeightedMean(pulls, weights, 1), warnings
}

// projectDemand forecasts total demand over the horizon for items with a
// demand history. It only runs when a readiness objective is declared.
func (o *Optimizer) projectDemand(op string, in *normalized) (map[string]float64, []string, error) {
	if len(in.demandHistory) == 0 || !in.hasReadiness {
		return nil, nil, nil
	}
	if o.forecaster == nil {
		return nil, []string{"demand history ignored: no forecaster configured"}, nil
	}

	var warnings []string
	projected := make(map[string]float64)
	for _, item := range sortedKeys(in.demandHistory) {
		if _, ok := in.inventory[item]; !ok {
			warnings = append(warnings, fmt.Sprintf("demand history for %q ignored: item not in inventory", item))
			continue
		}
		fc, err := o.forecaster.Forecast(forecast.Request{
			HistoricalData: in.demandHistory[item],
			TimeHorizon:    in.horizon,
		})
		if err != nil {
			return nil, nil, fmt.Errorf("%s: demand_history[%q]: %w", op, item, err)
		}
		projected[item] = mathutil.Round(mathutil.Sum(fc.Predictions))
	}
	if len(projected) == 0 {
		return nil, warnings, nil
	}
	return projected, warnings, nil
}

func (o *Optimizer) estimatedCost(in *normalized, plan map[string]float64) float64 {
	cost := 0.0
	for _, item := range in.items {
		unitCost, ok := in.unitCosts[item]
		if !ok {
			unitCost = o.cfg.DefaultUnitCost
		}
		cost += plan[item] * unitCost
	}
	return cost
}

// utilization reports the fraction of each modelled resource the plan
// consumes, and the largest constraint-derived fraction.
func (o *Optimizer) utilization(in *normalized, plan map[string]float64, cost float64) (map[string]float64, float64) {
	utilization := make(map[string]float64, 3)
	tightest := 0.0

	if in.budget != nil {
		u := ratio(cost, *in.budget)
		utilization[ResourceBudget] = u
		tightest = u
	} else {
		utilization[ResourceBudget] = o.cfg.DefaultUtilization
	}

	if in.timeline != nil {
		u := ratio(float64(in.horizon), *in.timeline)
		utilization[ResourceTimeline] = u
		if u > tightest {
			tightest = u
		}
	}

	total := 0.0
	allocated := 0.0
	for _, item := range in.items {
		total += in.inventory[item]
		allocated += plan[item]
	}
	utilization[ResourceInventory] = ratio(allocated, total)

	return utilization, tightest
}

// confidence is the product of the data-completeness, horizon and
// constraint-tightness terms.
func (o *Optimizer) confidence(in *normalized, tightest float64) float64 {
	stocked := 0
	for _, item := range in.items {
		if in.inventory[item] > 0 {
			stocked++
		}
	}
	completeness := float64(stocked) / float64(len(in.items))
	horizon := mathutil.LinearDecay(float64(in.horizon), o.cfg.HorizonFullConfidence, o.cfg.HorizonDecayEnd, o.cfg.HorizonFloor)
	tightness := mathutil.LinearDecay(tightest, o.cfg.TightnessThreshold, 1, o.cfg.TightnessFloor)

	return mathutil.Clamp01(completeness * horizon * tightness)
}

// ratio returns used/limit clamped to [0, 1]. A zero limit is fully consumed
// by any positive use.
func ratio(used, limit float64) float64 {
	if limit <= 0 {
		if used > 0 {
			return 1
		}
		return 0
	}
	return mathutil.Clamp01(used / limit)
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
