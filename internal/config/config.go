// Package config defines the data structures related to configuration and
// includes functions for loading and validating the config.
package config

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/iwvelando/open-logistics/pkg/constants"
	"github.com/iwvelando/open-logistics/pkg/datetime"
	"github.com/spf13/viper"
)

// Configuration holds all configuration for open-logistics.
type Configuration struct {
	Logging   LoggingConfig     `yaml:"logging,omitempty" mapstructure:"logging"`
	Output    OutputConfig      `yaml:"output,omitempty" mapstructure:"output"`
	Forecast  ForecastSettings  `yaml:"forecast,omitempty" mapstructure:"forecast"`
	Optimizer OptimizerSettings `yaml:"optimizer,omitempty" mapstructure:"optimizer"`
	Server    ServerConfig      `yaml:"server,omitempty" mapstructure:"server"`
	Agents    []AgentConfig     `yaml:"agents,omitempty" mapstructure:"agents" validate:"dive"`
}

// LoggingConfig holds logging configuration options
type LoggingConfig struct {
	Level      string `yaml:"level,omitempty" mapstructure:"level" validate:"omitempty,oneof=debug info warn warning error"`
	Format     string `yaml:"format,omitempty" mapstructure:"format" validate:"omitempty,oneof=json console"`
	OutputFile string `yaml:"outputFile,omitempty" mapstructure:"outputFile"` // optional file output
}

// OutputConfig holds output format configuration options
type OutputConfig struct {
	Format     string `yaml:"format,omitempty" mapstructure:"format" validate:"omitempty,oneof=pretty csv json"`
	PeriodUnit string `yaml:"periodUnit,omitempty" mapstructure:"periodUnit" validate:"omitempty,oneof=index day week month"`
	StartDate  string `yaml:"startDate,omitempty" mapstructure:"startDate" validate:"omitempty,datetime=2006-01-02"`
}

// ServerConfig holds runtime parameters for the HTTP server.
type ServerConfig struct {
	Address        string   `yaml:"address,omitempty" mapstructure:"address"`
	MaxBodySize    string   `yaml:"maxBodySize,omitempty" mapstructure:"maxBodySize"`
	RequestTimeout string   `yaml:"requestTimeout,omitempty" mapstructure:"requestTimeout"`
	AllowedOrigins []string `yaml:"allowedOrigins,omitempty" mapstructure:"allowedOrigins"`
	MetricsEnabled *bool    `yaml:"metricsEnabled,omitempty" mapstructure:"metricsEnabled"`
}

// MetricsOn reports whether /metrics should be served. Metrics are on unless
// explicitly disabled.
func (s ServerConfig) MetricsOn() bool {
	return s.MetricsEnabled == nil || *s.MetricsEnabled
}

// AgentConfig declares one agent instance.
type AgentConfig struct {
	Name        string `yaml:"name" mapstructure:"name" validate:"required"`
	Type        string `yaml:"type" mapstructure:"type" validate:"required,oneof=supply-chain resource-optimizer threat-assessment mission-coordinator"`
	Enabled     *bool  `yaml:"enabled,omitempty" mapstructure:"enabled"`
	Description string `yaml:"description,omitempty" mapstructure:"description"`
}

// Default returns a configuration with every default applied.
func Default() *Configuration {
	conf := &Configuration{}
	conf.ApplyDefaults()
	return conf
}

// LoadConfiguration takes a file path as input and loads the YAML-formatted
// configuration there. Environment variables prefixed with OPENLOGISTICS_
// override file values, e.g. OPENLOGISTICS_SERVER_ADDRESS.
func LoadConfiguration(configPath string) (*Configuration, error) {
	v := newViper()
	v.SetConfigFile(configPath)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("error reading config file, %s", err)
	}
	return decode(v)
}

// LoadConfigurationFromReader loads a YAML configuration from r.
func LoadConfigurationFromReader(r io.Reader) (*Configuration, error) {
	if r == nil {
		r = bytes.NewReader(nil)
	}
	v := newViper()
	if err := v.ReadConfig(r); err != nil {
		return nil, fmt.Errorf("error reading config, %s", err)
	}
	return decode(v)
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetConfigType("yaml")
	v.SetEnvPrefix(constants.EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Keys must be known to viper for environment overrides to reach Unmarshal.
	v.SetDefault("logging.level", "")
	v.SetDefault("logging.format", "")
	v.SetDefault("logging.outputFile", "")
	v.SetDefault("output.format", constants.OutputFormatPretty)
	v.SetDefault("output.periodUnit", datetime.UnitIndex)
	v.SetDefault("output.startDate", "")
	v.SetDefault("server.address", constants.DefaultServerAddress)
	v.SetDefault("server.maxBodySize", fmt.Sprintf("%d", constants.DefaultMaxBodySizeBytes))
	v.SetDefault("server.requestTimeout", constants.DefaultRequestTimeout)
	return v
}

func decode(v *viper.Viper) (*Configuration, error) {
	var configuration Configuration
	if err := v.Unmarshal(&configuration); err != nil {
		return nil, fmt.Errorf("unable to decode into struct, %s", err)
	}
	configuration.ApplyDefaults()
	if err := configuration.Validate(); err != nil {
		return nil, err
	}
	return &configuration, nil
}

// ApplyDefaults fills every unset field that has a documented default.
func (c *Configuration) ApplyDefaults() {
	if c.Output.Format == "" {
		c.Output.Format = constants.OutputFormatPretty
	}
	if c.Output.PeriodUnit == "" {
		c.Output.PeriodUnit = datetime.UnitIndex
	}
	if c.Server.Address == "" {
		c.Server.Address = constants.DefaultServerAddress
	}
	if strings.TrimSpace(c.Server.MaxBodySize) == "" {
		c.Server.MaxBodySize = fmt.Sprintf("%d", constants.DefaultMaxBodySizeBytes)
	}
	if strings.TrimSpace(c.Server.RequestTimeout) == "" {
		c.Server.RequestTimeout = constants.DefaultRequestTimeout
	}
	for i := range c.Agents {
		c.Agents[i].Name = strings.TrimSpace(c.Agents[i].Name)
		c.Agents[i].Type = strings.ToLower(strings.TrimSpace(c.Agents[i].Type))
	}
}

// Validate checks the struct tags and returns the first set of violations as
// a single error.
func (c *Configuration) Validate() error {
	validate := validator.New()
	if err := validate.Struct(c); err != nil {
		if verrs, ok := err.(validator.ValidationErrors); ok {
			msgs := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				msgs = append(msgs, fmt.Sprintf("%s failed %q (value %v)", fe.Namespace(), fe.Tag(), fe.Value()))
			}
			return fmt.Errorf("invalid configuration: %s", strings.Join(msgs, "; "))
		}
		return fmt.Errorf("invalid configuration: %w", err)
	}

	seen := make(map[string]struct{}, len(c.Agents))
	for _, a := range c.Agents {
		if _, dup := seen[a.Name]; dup {
			return fmt.Errorf("invalid configuration: duplicate agent name %q", a.Name)
		}
		seen[a.Name] = struct{}{}
	}

	if _, err := c.ForecastConfig(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	if _, err := c.OptimizerConfig(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}

// ValidateConfiguration performs general validation of the configuration and returns warnings
func (c *Configuration) ValidateConfiguration() []string {
	var warnings []string

	if c.Output.StartDate != "" && (c.Output.PeriodUnit == "" || c.Output.PeriodUnit == datetime.UnitIndex) {
		warnings = append(warnings, "output.startDate is ignored when output.periodUnit is index")
	}
	if c.Output.StartDate == "" && c.Output.PeriodUnit != "" && c.Output.PeriodUnit != datetime.UnitIndex {
		warnings = append(warnings, fmt.Sprintf("output.periodUnit %s has no output.startDate; periods are labelled by index", c.Output.PeriodUnit))
	}
	if c.Forecast.Alpha != nil && *c.Forecast.Alpha > 0.8 {
		warnings = append(warnings, fmt.Sprintf("forecast.alpha %.2f makes the level follow the most recent point almost exactly", *c.Forecast.Alpha))
	}
	if c.Forecast.SeasonalPeriod != nil && *c.Forecast.SeasonalPeriod == 1 {
		warnings = append(warnings, "forecast.seasonalPeriod 1 disables seasonality; use 0 to make that explicit")
	}
	forecastMax, optimizerMax := constants.DefaultMaxHorizon, constants.DefaultMaxHorizon
	setInt(&forecastMax, c.Forecast.MaxHorizon)
	setInt(&optimizerMax, c.Optimizer.MaxHorizon)
	if optimizerMax > forecastMax {
		warnings = append(warnings, fmt.Sprintf("optimizer.maxHorizon %d exceeds forecast.maxHorizon %d; demand projection rejects the longer horizons", optimizerMax, forecastMax))
	}
	for _, origin := range c.Server.AllowedOrigins {
		if strings.TrimSpace(origin) == "*" {
			warnings = append(warnings, "server.allowedOrigins contains *; any site may call the API from a browser")
			break
		}
	}

	enabled := 0
	for _, a := range c.Agents {
		if a.Enabled == nil || *a.Enabled {
			enabled++
		}
	}
	if len(c.Agents) > 0 && enabled == 0 {
		warnings = append(warnings, "every configured agent is disabled")
	}

	return warnings
}
