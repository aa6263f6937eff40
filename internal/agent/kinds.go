package agent

import (
	"fmt"
	"sort"

	"github.com/iwvelando/open-logistics/internal/forecast"
	"github.com/iwvelando/open-logistics/internal/optimizer"
	"github.com/iwvelando/open-logistics/pkg/format"
	"github.com/iwvelando/open-logistics/pkg/mathutil"
)

// Attribute keys set on responses.
const (
	AttrOptimizationScore = "optimization_score"
	AttrRiskLevel         = "risk_level"
	AttrMissionStatus     = "mission_status"
)

// Risk levels reported by threat-assessment agents.
const (
	RiskLow        = "low"
	RiskMedium     = "medium"
	RiskHigh       = "high"
	RiskUnassessed = "unassessed"
)

// Mission states reported by mission-coordinator agents.
const (
	MissionPlanning   = "planning"
	MissionInProgress = "in_progress"
	MissionAtRisk     = "at_risk"
)

const (
	lowRiskConfidence    = 0.8
	mediumRiskConfidence = 0.5
	saturatedUtilization = 0.9
)

// RiskLevel grades a confidence score: at least 0.8 is low risk, at least
// 0.5 is medium, anything lower is high.
func RiskLevel(confidence float64) string {
	switch {
	case confidence >= lowRiskConfidence:
		return RiskLow
	case confidence >= mediumRiskConfidence:
		return RiskMedium
	default:
		return RiskHigh
	}
}

func derive(kind Kind, req *optimizer.Request, resp *Response) {
	switch kind {
	case KindSupplyChain:
		resp.Recommendations = append(stockRecommendations(req, resp.Optimization), demandRecommendations(resp.Forecast)...)

	case KindResourceOptimizer:
		if resp.Optimization != nil {
			resp.Attributes[AttrOptimizationScore] = resp.Optimization.ConfidenceScore
		}
		resp.Recommendations = utilizationRecommendations(resp.Optimization)

	case KindThreatAssessment:
		level := RiskUnassessed
		if confidence, ok := assessedConfidence(resp); ok {
			level = RiskLevel(confidence)
		}
		resp.Attributes[AttrRiskLevel] = level
		resp.Recommendations = riskRecommendations(level)

	case KindMissionCoordinator:
		status := MissionPlanning
		if confidence, ok := assessedConfidence(resp); ok {
			status = MissionInProgress
			if confidence < mediumRiskConfidence {
				status = MissionAtRisk
			}
		}
		resp.Attributes[AttrMissionStatus] = status
		resp.Recommendations = append(stockRecommendations(req, resp.Optimization), utilizationRecommendations(resp.Optimization)...)
	}
}

// assessedConfidence is the weakest confidence among the results present:
// the optimization score and the mean forecast confidence.
func assessedConfidence(resp *Response) (float64, bool) {
	var scores []float64
	if resp.Optimization != nil {
		scores = append(scores, resp.Optimization.ConfidenceScore)
	}
	if resp.Forecast != nil && len(resp.Forecast.ConfidenceScores) > 0 {
		scores = append(scores, mathutil.Mean(resp.Forecast.ConfidenceScores))
	}
	if len(scores) == 0 {
		return 0, false
	}
	lowest := scores[0]
	for _, s := range scores[1:] {
		if s < lowest {
			lowest = s
		}
	}
	return lowest, true
}

func stockRecommendations(req *optimizer.Request, result *optimizer.Result) []string {
	if req == nil || req.SupplyChainData == nil || result == nil {
		return nil
	}
	var recs []string
	for _, item := range sortedItems(result.OptimizedPlan) {
		onHand := req.SupplyChainData.Inventory[item]
		planned := result.OptimizedPlan[item]
		switch {
		case planned > onHand:
			recs = append(recs, fmt.Sprintf("raise %s from %s to %s", item, format.Quantity(onHand), format.Quantity(planned)))
		case planned < onHand:
			recs = append(recs, fmt.Sprintf("draw %s down from %s to %s", item, format.Quantity(onHand), format.Quantity(planned)))
		}
		if projected, ok := result.ProjectedDemand[item]; ok && projected > onHand {
			recs = append(recs, fmt.Sprintf("projected demand for %s (%s) exceeds stock on hand (%s)", item, format.Quantity(projected), format.Quantity(onHand)))
		}
	}
	return recs
}

func demandRecommendations(result *forecast.Result) []string {
	if result == nil || len(result.Predictions) == 0 {
		return nil
	}
	var recs []string
	switch {
	case result.Trend > 0:
		recs = append(recs, fmt.Sprintf("demand is rising by %.2f per period; schedule replenishment ahead of period %d", result.Trend, len(result.Predictions)))
	case result.Trend < 0:
		recs = append(recs, fmt.Sprintf("demand is falling by %.2f per period; defer new orders", -result.Trend))
	}
	if n := len(result.ConfidenceScores); n > 0 && result.ConfidenceScores[n-1] < mediumRiskConfidence {
		last := result.ConfidenceScores[n-1]
		recs = append(recs, fmt.Sprintf("forecast confidence ends at %s; refresh the forecast before committing late periods", format.Percent(last)))
	}
	return recs
}

func utilizationRecommendations(result *optimizer.Result) []string {
	if result == nil {
		return nil
	}
	var recs []string
	for _, resource := range sortedItems(result.ResourceUtilization) {
		if u := result.ResourceUtilization[resource]; u >= saturatedUtilization {
			recs = append(recs, fmt.Sprintf("%s is %s utilized", resource, format.Percent(u)))
		}
	}
	return recs
}

func riskRecommendations(level string) []string {
	switch level {
	case RiskHigh:
		return []string{"shorten the planning horizon or relax the binding constraint before committing"}
	case RiskMedium:
		return []string{"review constrained resources before committing"}
	case RiskUnassessed:
		return []string{"attach an optimization or forecast request to assess risk"}
	}
	return nil
}

func sortedItems(m map[string]float64) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
