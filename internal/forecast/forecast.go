// Package forecast implements the demand forecasting engine: exponential
// smoothing with a linear trend and optional multiplicative seasonality.
package forecast

import (
	"fmt"
	"math"

	"github.com/iwvelando/open-logistics/pkg/mathutil"
	"github.com/iwvelando/open-logistics/pkg/validation"
	"go.uber.org/zap"
)

// Request is a historical series and the number of future periods to predict.
type Request struct {
	HistoricalData []float64 `json:"historical_data" yaml:"historical_data"`
	TimeHorizon    int       `json:"time_horizon" yaml:"time_horizon"`
}

// Result holds one prediction and one confidence score per future period,
// plus the fitted components that produced them.
type Result struct {
	Predictions      []float64 `json:"predictions"`
	ConfidenceScores []float64 `json:"confidence_scores"`
	Level            float64   `json:"level"`
	Trend            float64   `json:"trend"`
	SeasonalPeriod   int       `json:"seasonal_period,omitempty"`
	SeasonalFactors  []float64 `json:"seasonal_factors,omitempty"`
}

// Forecaster computes forecasts. It holds no mutable state and is safe for
// concurrent use.
type Forecaster struct {
	logger *zap.Logger
	cfg    Config
}

// New constructs a Forecaster from cfg.
func New(logger *zap.Logger, cfg Config) (*Forecaster, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid forecast configuration: %w", err)
	}
	return &Forecaster{logger: logger, cfg: cfg}, nil
}

// Config returns the configuration the Forecaster was built with.
func (f *Forecaster) Config() Config {
	return f.cfg
}

// Forecast predicts req.TimeHorizon future periods from req.HistoricalData.
// It returns a *validation.RejectedInputError for an empty series, a
// horizon outside [1, MaxHorizon], or a negative or non-finite observation.
func (f *Forecaster) Forecast(req Request) (*Result, error) {
	const op = "forecast.Forecast"

	if err := validateRequest(op, req, f.cfg.MaxHorizon); err != nil {
		return nil, err
	}

	series := req.HistoricalData
	n := len(series)
	level := mathutil.EWMA(series, f.cfg.Alpha)
	trend := mathutil.MeanDelta(series)
	factors := f.seasonalFactors(series)
	period := len(factors)

	result := &Result{
		Predictions:      make([]float64, req.TimeHorizon),
		ConfidenceScores: make([]float64, req.TimeHorizon),
		Level:            level,
		Trend:            trend,
		SeasonalPeriod:   period,
		SeasonalFactors:  factors,
	}

	for k := 1; k <= req.TimeHorizon; k++ {
		seasonal := 1.0
		if period > 0 {
			seasonal = factors[(n-1+k)%period]
		}
		result.Predictions[k-1] = mathutil.NonNegative((level + float64(k)*trend) * seasonal)
		result.ConfidenceScores[k-1] = f.confidence(k)
	}

	f.logger.Debug("forecast computed",
		zap.String("op", op),
		zap.Int("observations", n),
		zap.Int("horizon", req.TimeHorizon),
		zap.Float64("level", level),
		zap.Float64("trend", trend),
		zap.Int("seasonalPeriod", period),
	)

	return result, nil
}

// confidence returns the score of step k (1-indexed).
func (f *Forecaster) confidence(k int) float64 {
	c := f.cfg.InitialConfidence * math.Pow(f.cfg.ConfidenceDecay, float64(k-1))
	return mathutil.Clamp(c, f.cfg.ConfidenceFloor, 1)
}

// seasonalFactors returns one multiplicative factor per phase of the seasonal
// cycle, normalised to average 1, or nil when seasonality does not apply.
func (f *Forecaster) seasonalFactors(series []float64) []float64 {
	period := f.cfg.SeasonalPeriod
	if period < 2 || len(series) < period*f.cfg.MinSeasonalCycles {
		return nil
	}
	mean := mathutil.Mean(series)
	if mean <= 0 {
		return nil
	}

	sums := make([]float64, period)
	counts := make([]float64, period)
	for i, x := range series {
		sums[i%period] += x / mean
		counts[i%period]++
	}

	factors := make([]float64, period)
	for j := range factors {
		factors[j] = sums[j] / counts[j]
	}

	// Keep the level unbiased over a full cycle.
	if norm := mathutil.Mean(factors); norm > 0 {
		for j := range factors {
			factors[j] /= norm
		}
	}
	return factors
}

func validateRequest(op string, req Request, maxHorizon int) error {
	if len(req.HistoricalData) == 0 {
		return validation.Rejectf(op, "historical_data", "must contain at least one observation")
	}
	if err := validation.RequireHorizon(op, req.TimeHorizon, maxHorizon); err != nil {
		return err
	}
	for i, x := range req.HistoricalData {
		if err := validation.RequireQuantity(op, fmt.Sprintf("historical_data[%d]", i), x); err != nil {
			return err
		}
	}
	return nil
}
