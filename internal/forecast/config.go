package forecast

import (
	"fmt"

	"github.com/iwvelando/open-logistics/pkg/constants"
)

// Config holds the tunable constants of the forecasting engine.
type Config struct {
	// Alpha is the smoothing constant of the level EWMA, in (0, 1].
	Alpha float64
	// SeasonalPeriod is the cycle length of seasonal factors; values below 2
	// disable seasonality.
	SeasonalPeriod int
	// MinSeasonalCycles is the number of complete cycles the history must
	// span before seasonal factors are applied.
	MinSeasonalCycles int
	// InitialConfidence is the confidence of the first forecast step.
	InitialConfidence float64
	// ConfidenceDecay multiplies confidence once per additional step.
	ConfidenceDecay float64
	// ConfidenceFloor bounds confidence from below.
	ConfidenceFloor float64
	// MaxHorizon is the largest accepted time horizon.
	MaxHorizon int
}

// DefaultConfig returns the documented defaults.
func DefaultConfig() Config {
	return Config{
		Alpha:             constants.DefaultSmoothingAlpha,
		SeasonalPeriod:    constants.DefaultSeasonalPeriod,
		MinSeasonalCycles: constants.DefaultMinSeasonalCycles,
		InitialConfidence: constants.DefaultInitialConfidence,
		ConfidenceDecay:   constants.DefaultConfidenceDecay,
		ConfidenceFloor:   constants.DefaultConfidenceFloor,
		MaxHorizon:        constants.DefaultMaxHorizon,
	}
}

// Validate checks that the constants keep confidence bounded and non-increasing.
func (c Config) Validate() error {
	if c.Alpha <= 0 || c.Alpha > 1 {
		return fmt.Errorf("alpha must be in (0, 1], got %v", c.Alpha)
	}
	if c.SeasonalPeriod < 0 {
		return fmt.Errorf("seasonal period must be >= 0, got %d", c.SeasonalPeriod)
	}
	if c.MinSeasonalCycles < 1 {
		return fmt.Errorf("minimum seasonal cycles must be >= 1, got %d", c.MinSeasonalCycles)
	}
	if c.InitialConfidence < 0 || c.InitialConfidence > 1 {
		return fmt.Errorf("initial confidence must be in [0, 1], got %v", c.InitialConfidence)
	}
	if c.ConfidenceDecay <= 0 || c.ConfidenceDecay > 1 {
		return fmt.Errorf("confidence decay must be in (0, 1], got %v", c.ConfidenceDecay)
	}
	if c.ConfidenceFloor < 0 || c.ConfidenceFloor > c.InitialConfidence {
		return fmt.Errorf("confidence floor must be in [0, %v], got %v", c.InitialConfidence, c.ConfidenceFloor)
	}
	if c.MaxHorizon < 1 {
		return fmt.Errorf("max horizon must be >= 1, got %d", c.MaxHorizon)
	}
	return nil
}
