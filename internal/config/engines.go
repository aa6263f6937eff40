package config

import (
	"fmt"

	"github.com/iwvelando/open-logistics/internal/agent"
	"github.com/iwvelando/open-logistics/internal/forecast"
	"github.com/iwvelando/open-logistics/internal/optimizer"
	"github.com/iwvelando/open-logistics/pkg/datetime"
	"github.com/iwvelando/open-logistics/pkg/optimization"
)

// ForecastSettings overrides forecasting engine constants. Unset fields keep
// the engine defaults.
type ForecastSettings struct {
	Alpha             *float64 `yaml:"alpha,omitempty" mapstructure:"alpha" validate:"omitempty,gt=0,lte=1"`
	SeasonalPeriod    *int     `yaml:"seasonalPeriod,omitempty" mapstructure:"seasonalPeriod" validate:"omitempty,gte=0"`
	MinSeasonalCycles *int     `yaml:"minSeasonalCycles,omitempty" mapstructure:"minSeasonalCycles" validate:"omitempty,gte=1"`
	InitialConfidence *float64 `yaml:"initialConfidence,omitempty" mapstructure:"initialConfidence" validate:"omitempty,gte=0,lte=1"`
	ConfidenceDecay   *float64 `yaml:"confidenceDecay,omitempty" mapstructure:"confidenceDecay" validate:"omitempty,gt=0,lte=1"`
	ConfidenceFloor   *float64 `yaml:"confidenceFloor,omitempty" mapstructure:"confidenceFloor" validate:"omitempty,gte=0,lte=1"`
	MaxHorizon        *int     `yaml:"maxHorizon,omitempty" mapstructure:"maxHorizon" validate:"omitempty,gte=1"`
}

// OptimizerSettings overrides optimization engine constants. Unset fields
// keep the engine defaults.
type OptimizerSettings struct {
	CostPull              *float64           `yaml:"costPull,omitempty" mapstructure:"costPull" validate:"omitempty,gt=0,lte=1"`
	PriorityMultipliers   map[string]float64 `yaml:"priorityMultipliers,omitempty" mapstructure:"priorityMultipliers" validate:"omitempty,dive,keys,oneof=low medium high,endkeys,gte=1"`
	DefaultUnitCost       *float64           `yaml:"defaultUnitCost,omitempty" mapstructure:"defaultUnitCost" validate:"omitempty,gte=0"`
	DefaultUtilization    *float64           `yaml:"defaultUtilization,omitempty" mapstructure:"defaultUtilization" validate:"omitempty,gte=0,lte=1"`
	HorizonFullConfidence *float64           `yaml:"horizonFullConfidence,omitempty" mapstructure:"horizonFullConfidence" validate:"omitempty,gte=0"`
	HorizonDecayEnd       *float64           `yaml:"horizonDecayEnd,omitempty" mapstructure:"horizonDecayEnd" validate:"omitempty,gt=0"`
	HorizonFloor          *float64           `yaml:"horizonFloor,omitempty" mapstructure:"horizonFloor" validate:"omitempty,gte=0,lte=1"`
	TightnessThreshold    *float64           `yaml:"tightnessThreshold,omitempty" mapstructure:"tightnessThreshold" validate:"omitempty,gt=0,lt=1"`
	TightnessFloor        *float64           `yaml:"tightnessFloor,omitempty" mapstructure:"tightnessFloor" validate:"omitempty,gte=0,lte=1"`
	MaxHorizon            *int               `yaml:"maxHorizon,omitempty" mapstructure:"maxHorizon" validate:"omitempty,gte=1"`
}

// ForecastConfig converts the forecast section into an engine config.
func (c *Configuration) ForecastConfig() (forecast.Config, error) {
	cfg := forecast.DefaultConfig()
	s := c.Forecast
	setFloat(&cfg.Alpha, s.Alpha)
	setInt(&cfg.SeasonalPeriod, s.SeasonalPeriod)
	setInt(&cfg.MinSeasonalCycles, s.MinSeasonalCycles)
	setFloat(&cfg.InitialConfidence, s.InitialConfidence)
	setFloat(&cfg.ConfidenceDecay, s.ConfidenceDecay)
	setFloat(&cfg.ConfidenceFloor, s.ConfidenceFloor)
	setInt(&cfg.MaxHorizon, s.MaxHorizon)

	if err := cfg.Validate(); err != nil {
		return forecast.Config{}, fmt.Errorf("forecast: %w", err)
	}
	return cfg, nil
}

// OptimizerConfig converts the optimizer section into an engine config.
func (c *Configuration) OptimizerConfig() (optimizer.Config, error) {
	cfg := optimizer.DefaultConfig()
	s := c.Optimizer
	setFloat(&cfg.CostPull, s.CostPull)
	for level, m := range s.PriorityMultipliers {
		p, err := optimization.ParsePriority(level)
		if err != nil {
			return optimizer.Config{}, fmt.Errorf("optimizer: %w", err)
		}
		cfg.PriorityMultipliers[p] = m
	}
	setFloat(&cfg.DefaultUnitCost, s.DefaultUnitCost)
	setFloat(&cfg.DefaultUtilization, s.DefaultUtilization)
	setFloat(&cfg.HorizonFullConfidence, s.HorizonFullConfidence)
	setFloat(&cfg.HorizonDecayEnd, s.HorizonDecayEnd)
	setFloat(&cfg.HorizonFloor, s.HorizonFloor)
	setFloat(&cfg.TightnessThreshold, s.TightnessThreshold)
	setFloat(&cfg.TightnessFloor, s.TightnessFloor)
	setInt(&cfg.MaxHorizon, s.MaxHorizon)

	if err := cfg.Validate(); err != nil {
		return optimizer.Config{}, fmt.Errorf("optimizer: %w", err)
	}
	return cfg, nil
}

// AgentConfigs converts the agents section into manager registrations. When
// no agents are configured the four default agents are returned.
func (c *Configuration) AgentConfigs() []agent.Config {
	if len(c.Agents) == 0 {
		return agent.DefaultConfigs()
	}
	configs := make([]agent.Config, 0, len(c.Agents))
	for _, a := range c.Agents {
		configs = append(configs, agent.Config{
			Name:        a.Name,
			Kind:        agent.Kind(a.Type),
			Enabled:     a.Enabled == nil || *a.Enabled,
			Description: a.Description,
		})
	}
	return configs
}

// Labeler builds the period labeler for forecast output. A calendar unit
// without a start date falls back to index labels.
func (c *Configuration) Labeler() (*datetime.Labeler, error) {
	unit := c.Output.PeriodUnit
	if c.Output.StartDate == "" {
		unit = datetime.UnitIndex
	}
	return datetime.NewLabeler(unit, c.Output.StartDate)
}

func setFloat(dst *float64, src *float64) {
	if src != nil {
		*dst = *src
	}
}

func setInt(dst *int, src *int) {
	if src != nil {
		*dst = *src
	}
}
