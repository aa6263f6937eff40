package config

import (
	"strings"
	"testing"

	"github.com/iwvelando/open-logistics/internal/agent"
	"github.com/iwvelando/open-logistics/internal/forecast"
	"github.com/iwvelando/open-logistics/internal/optimizer"
	"github.com/iwvelando/open-logistics/pkg/optimization"
)

func TestForecastConfigDefaults(t *testing.T) {
	conf := Default()
	got, err := conf.ForecastConfig()
	if err != nil {
		t.Fatalf("ForecastConfig() error = %v", err)
	}
	if got != forecast.DefaultConfig() {
		t.Errorf("ForecastConfig() = %+v, expected %+v", got, forecast.DefaultConfig())
	}
}

func TestOptimizerConfigOverrides(t *testing.T) {
	pull := 0.85
	floor := 0.4
	conf := &Configuration{Optimizer: OptimizerSettings{
		CostPull:            &pull,
		HorizonFloor:        &floor,
		PriorityMultipliers: map[string]float64{"HIGH": 1.6},
	}}

	got, err := conf.OptimizerConfig()
	if err != nil {
		t.Fatalf("OptimizerConfig() error = %v", err)
	}
	if got.CostPull != pull {
		t.Errorf("CostPull = %v, expected %v", got.CostPull, pull)
	}
	if got.HorizonFloor != floor {
		t.Errorf("HorizonFloor = %v, expected %v", got.HorizonFloor, floor)
	}
	if got.PriorityMultipliers[optimization.PriorityHigh] != 1.6 {
		t.Errorf("PriorityMultipliers[high] = %v, expected 1.6", got.PriorityMultipliers[optimization.PriorityHigh])
	}
	defaults := optimizer.DefaultConfig()
	if got.PriorityMultipliers[optimization.PriorityLow] != defaults.PriorityMultipliers[optimization.PriorityLow] {
		t.Errorf("PriorityMultipliers[low] = %v, expected default", got.PriorityMultipliers[optimization.PriorityLow])
	}
}

func TestOptimizerConfigRejectsInvertedHorizon(t *testing.T) {
	start := 200.0
	conf := &Configuration{Optimizer: OptimizerSettings{HorizonFullConfidence: &start}}
	if _, err := conf.OptimizerConfig(); err == nil {
		t.Errorf("OptimizerConfig() expected error when decay ends before it starts")
	}
}

func TestMaxHorizonSettings(t *testing.T) {
	conf, err := LoadConfigurationFromReader(strings.NewReader(`
forecast:
  maxHorizon: 90
optimizer:
  maxHorizon: 365
`))
	if err != nil {
		t.Fatalf("LoadConfigurationFromReader() error = %v", err)
	}

	fc, err := conf.ForecastConfig()
	if err != nil {
		t.Fatalf("ForecastConfig() error = %v", err)
	}
	if fc.MaxHorizon != 90 {
		t.Errorf("forecast MaxHorizon = %d, expected 90", fc.MaxHorizon)
	}
	oc, err := conf.OptimizerConfig()
	if err != nil {
		t.Fatalf("OptimizerConfig() error = %v", err)
	}
	if oc.MaxHorizon != 365 {
		t.Errorf("optimizer MaxHorizon = %d, expected 365", oc.MaxHorizon)
	}

	if _, err := LoadConfigurationFromReader(strings.NewReader("forecast:\n  maxHorizon: 0\n")); err == nil {
		t.Errorf("LoadConfigurationFromReader() expected error for a zero forecast maxHorizon")
	}
}

func TestAgentConfigs(t *testing.T) {
	off := false
	tests := []struct {
		name     string
		agents   []AgentConfig
		expected []agent.Config
	}{
		{
			name:     "Defaults when none configured",
			agents:   nil,
			expected: agent.DefaultConfigs(),
		},
		{
			name: "Enabled unless disabled",
			agents: []AgentConfig{
				{Name: "alpha", Type: "resource-optimizer"},
				{Name: "bravo", Type: "mission-coordinator", Enabled: &off, Description: "standby"},
			},
			expected: []agent.Config{
				{Name: "alpha", Kind: agent.KindResourceOptimizer, Enabled: true},
				{Name: "bravo", Kind: agent.KindMissionCoordinator, Enabled: false, Description: "standby"},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			conf := &Configuration{Agents: tt.agents}
			got := conf.AgentConfigs()
			if len(got) != len(tt.expected) {
				t.Fatalf("AgentConfigs() returned %d agents, expected %d", len(got), len(tt.expected))
			}
			for i := range got {
				if got[i] != tt.expected[i] {
					t.Errorf("AgentConfigs()[%d] = %+v, expected %+v", i, got[i], tt.expected[i])
				}
			}
		})
	}
}

func TestLabeler(t *testing.T) {
	tests := []struct {
		name   string
		output OutputConfig
		first  string
	}{
		{name: "Index", output: OutputConfig{PeriodUnit: "index"}, first: "period_1"},
		{name: "Month", output: OutputConfig{PeriodUnit: "month", StartDate: "2024-01-31"}, first: "2024-03-02"},
		{name: "Week", output: OutputConfig{PeriodUnit: "week", StartDate: "2024-01-01"}, first: "2024-01-08"},
		{name: "Calendar unit without start date", output: OutputConfig{PeriodUnit: "day"}, first: "period_1"},
		{name: "Start date with index unit", output: OutputConfig{PeriodUnit: "index", StartDate: "2024-01-01"}, first: "period_1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			conf := &Configuration{Output: tt.output}
			labels, err := conf.Labeler()
			if err != nil {
				t.Fatalf("Labeler() error = %v", err)
			}
			if got := labels.Label(1); got != tt.first {
				t.Errorf("Label(1) = %s, expected %s", got, tt.first)
			}
		})
	}
}
