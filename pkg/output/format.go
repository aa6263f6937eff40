// Package output provides utilities for formatting and displaying optimization
// and forecast results.
package output

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strconv"

	"github.com/iwvelando/open-logistics/internal/forecast"
	"github.com/iwvelando/open-logistics/internal/optimizer"
	"github.com/iwvelando/open-logistics/pkg/constants"
	"github.com/iwvelando/open-logistics/pkg/datetime"
	"github.com/iwvelando/open-logistics/pkg/format"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// ForecastView is a forecast keyed by period label, the shape reported by
// the JSON renderer and the HTTP API.
type ForecastView struct {
	Periods          []string           `json:"periods"`
	Predictions      map[string]float64 `json:"predictions"`
	ConfidenceScores map[string]float64 `json:"confidence_scores"`
	Level            float64            `json:"level"`
	Trend            float64            `json:"trend"`
	SeasonalPeriod   int                `json:"seasonal_period,omitempty"`
	SeasonalFactors  []float64          `json:"seasonal_factors,omitempty"`
}

// NewForecastView labels each forecast step. A nil labeler yields period_k labels.
func NewForecastView(result *forecast.Result, labels *datetime.Labeler) ForecastView {
	view := ForecastView{
		Periods:          make([]string, len(result.Predictions)),
		Predictions:      make(map[string]float64, len(result.Predictions)),
		ConfidenceScores: make(map[string]float64, len(result.ConfidenceScores)),
		Level:            result.Level,
		Trend:            result.Trend,
		SeasonalPeriod:   result.SeasonalPeriod,
		SeasonalFactors:  result.SeasonalFactors,
	}
	for i, prediction := range result.Predictions {
		label := labels.Label(i + 1)
		view.Periods[i] = label
		view.Predictions[label] = prediction
		if i < len(result.ConfidenceScores) {
			view.ConfidenceScores[label] = result.ConfidenceScores[i]
		}
	}
	return view
}

// WriteOptimization renders an optimization result in the named format.
func WriteOptimization(w io.Writer, outputFormat string, result *optimizer.Result) error {
	switch outputFormat {
	case constants.OutputFormatPretty, "":
		return PrettyOptimization(w, result)
	case constants.OutputFormatCSV:
		return CsvOptimization(w, result)
	case constants.OutputFormatJSON:
		return writeJSON(w, result)
	default:
		return fmt.Errorf("unsupported output format %q", outputFormat)
	}
}

// WriteForecast renders a forecast result in the named format.
func WriteForecast(w io.Writer, outputFormat string, result *forecast.Result, labels *datetime.Labeler) error {
	switch outputFormat {
	case constants.OutputFormatPretty, "":
		return PrettyForecast(w, result, labels)
	case constants.OutputFormatCSV:
		return CsvForecast(w, result, labels)
	case constants.OutputFormatJSON:
		return writeJSON(w, NewForecastView(result, labels))
	default:
		return fmt.Errorf("unsupported output format %q", outputFormat)
	}
}

// PrettyOptimization outputs a human-readable rather than machine-readable table.
func PrettyOptimization(w io.Writer, result *optimizer.Result) error {
	ew := &errWriter{w: w}

	ew.printf("--- Optimized plan ---\n")
	ew.printf("Item | Planned | Projected demand\n")
	ew.printf("____ | _______ | ________________\n")
	for _, item := range sortedKeys(result.OptimizedPlan) {
		projected := "-"
		if d, ok := result.ProjectedDemand[item]; ok {
			projected = format.Quantity(d)
		}
		ew.printf("%s | %s | %s\n", item, format.Quantity(result.OptimizedPlan[item]), projected)
	}

	ew.printf("\n")
	ew.printf("Confidence: %s\n", format.Percent(result.ConfidenceScore))
	ew.printf("Adjustment factor: %.4f\n", result.AdjustmentFactor)
	ew.printf("Estimated cost: %s\n", format.Currency(result.EstimatedCost))
	ew.printf("Execution time: %.3f ms\n", result.ExecutionTimeMS)
	ew.printf("Resource utilization:\n")
	for _, resource := range sortedKeys(result.ResourceUtilization) {
		ew.printf("  %s: %s\n", resource, format.Percent(result.ResourceUtilization[resource]))
	}
	if len(result.Warnings) > 0 {
		ew.printf("Warnings:\n")
		for _, warning := range result.Warnings {
			ew.printf("  - %s\n", warning)
		}
	}
	return ew.err
}

// PrettyForecast outputs a human-readable forecast table.
func PrettyForecast(w io.Writer, result *forecast.Result, labels *datetime.Labeler) error {
	p := message.NewPrinter(language.English)
	ew := &errWriter{w: w}

	ew.printf("--- Demand forecast ---\n")
	ew.printf("Period | Predicted | Confidence\n")
	ew.printf("______ | _________ | __________\n")
	for i, prediction := range result.Predictions {
		confidence := 0.0
		if i < len(result.ConfidenceScores) {
			confidence = result.ConfidenceScores[i]
		}
		ew.printf("%s | %s | %s\n", labels.Label(i+1), p.Sprintf("%.2f", prediction), format.Percent(confidence))
	}
	ew.printf("\n")
	ew.printf("Level: %s\n", p.Sprintf("%.2f", result.Level))
	ew.printf("Trend: %s per period\n", p.Sprintf("%.2f", result.Trend))
	if result.SeasonalPeriod > 0 {
		ew.printf("Seasonal period: %d\n", result.SeasonalPeriod)
	}
	return ew.err
}

// CsvOptimization outputs the plan in comma-separated value format.
func CsvOptimization(w io.Writer, result *optimizer.Result) error {
	cw := csv.NewWriter(w)
	_ = cw.Write([]string{"item", "planned", "projected_demand"})
	for _, item := range sortedKeys(result.OptimizedPlan) {
		projected := ""
		if d, ok := result.ProjectedDemand[item]; ok {
			projected = formatFloat(d)
		}
		_ = cw.Write([]string{item, formatFloat(result.OptimizedPlan[item]), projected})
	}
	cw.Flush()
	return cw.Error()
}

// CsvForecast outputs the forecast in comma-separated value format.
func CsvForecast(w io.Writer, result *forecast.Result, labels *datetime.Labeler) error {
	cw := csv.NewWriter(w)
	_ = cw.Write([]string{"period", "prediction", "confidence"})
	for i, prediction := range result.Predictions {
		confidence := ""
		if i < len(result.ConfidenceScores) {
			confidence = formatFloat(result.ConfidenceScores[i])
		}
		_ = cw.Write([]string{labels.Label(i + 1), formatFloat(prediction), confidence})
	}
	cw.Flush()
	return cw.Error()
}

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func sortedKeys(m map[string]float64) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// errWriter keeps the first write error so table rendering stays linear.
type errWriter struct {
	w   io.Writer
	err error
}

func (ew *errWriter) printf(layout string, args ...interface{}) {
	if ew.err != nil {
		return
	}
	_, ew.err = fmt.Fprintf(ew.w, layout, args...)
}
